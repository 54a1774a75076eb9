package source

import (
	"encoding/xml"

	"github.com/xtconv/xtconv/internal/container"
)

// comicInfo mirrors the handful of ComicInfo.xml fields this pipeline
// actually uses; the format carries many more that aren't relevant to a
// BookMetadata block.
type comicInfo struct {
	XMLName   xml.Name `xml:"ComicInfo"`
	Title     string   `xml:"Title"`
	Writer    string   `xml:"Writer"`
	Publisher string   `xml:"Publisher"`
	LanguageISO string `xml:"LanguageISO"`
}

func parseComicInfo(data []byte) (*container.Metadata, error) {
	var ci comicInfo
	if err := xml.Unmarshal(data, &ci); err != nil {
		return nil, err
	}
	return &container.Metadata{
		Title:     ci.Title,
		Author:    ci.Writer,
		Publisher: ci.Publisher,
		Language:  ci.LanguageISO,
		CoverPage: container.NoCoverPage,
	}, nil
}
