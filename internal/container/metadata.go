package container

import (
	"encoding/binary"

	"github.com/xtconv/xtconv/internal/xerrors"
)

const (
	titleFieldSize      = 128
	authorFieldSize     = 64
	publisherFieldSize  = 32
	languageFieldSize   = 16
	tocHeaderSize       = 16
	tocEntrySize        = 96
	tocEntryTitleSize   = 80
	noCoverPage         = 0xFFFF
)

// TocEntry is one table-of-contents record, with page numbers referring to
// emitted (post-fan-out) pages, 1-indexed (spec.md §3).
type TocEntry struct {
	Title      string
	StartPage  uint16
	EndPage    uint16
}

// Metadata is the optional book metadata block of spec.md §3/§4.8.
type Metadata struct {
	Title      string
	Author     string
	Publisher  string
	Language   string
	CreateTime uint32
	CoverPage  uint16 // noCoverPage (0xFFFF) means no cover
	Toc        []TocEntry
}

// NoCoverPage is the sentinel CoverPage value meaning "no cover assigned".
const NoCoverPage = noCoverPage

func truncateUTF8(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	b := []byte(s)[:maxBytes]
	// Avoid splitting a multi-byte UTF-8 sequence in half.
	for len(b) > 0 && b[len(b)-1]&0xC0 == 0x80 {
		b = b[:len(b)-1]
	}
	return string(b)
}

func putNulPadded(dst []byte, s string) {
	b := []byte(s)
	n := copy(dst, b)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func cStr(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}

// marshal encodes the metadata block: title/author/publisher/language
// fields, the TOC header, then one 96-byte record per TOC entry.
func (m Metadata) marshal() []byte {
	size := titleFieldSize + authorFieldSize + publisherFieldSize + languageFieldSize +
		tocHeaderSize + tocEntrySize*len(m.Toc)
	buf := make([]byte, size)
	off := 0

	putNulPadded(buf[off:off+titleFieldSize], truncateUTF8(m.Title, titleFieldSize-1))
	off += titleFieldSize
	putNulPadded(buf[off:off+authorFieldSize], truncateUTF8(m.Author, authorFieldSize-1))
	off += authorFieldSize
	putNulPadded(buf[off:off+publisherFieldSize], truncateUTF8(m.Publisher, publisherFieldSize-1))
	off += publisherFieldSize
	putNulPadded(buf[off:off+languageFieldSize], truncateUTF8(m.Language, languageFieldSize-1))
	off += languageFieldSize

	binary.LittleEndian.PutUint32(buf[off:off+4], m.CreateTime)
	binary.LittleEndian.PutUint16(buf[off+4:off+6], m.CoverPage)
	binary.LittleEndian.PutUint16(buf[off+6:off+8], uint16(len(m.Toc)))
	// 8 bytes zero padding already zero-valued.
	off += tocHeaderSize

	for _, e := range m.Toc {
		entry := buf[off : off+tocEntrySize]
		putNulPadded(entry[:tocEntryTitleSize], truncateUTF8(e.Title, tocEntryTitleSize-1))
		binary.LittleEndian.PutUint16(entry[80:82], e.StartPage)
		binary.LittleEndian.PutUint16(entry[82:84], e.EndPage)
		off += tocEntrySize
	}

	return buf
}

func unmarshalMetadata(b []byte) (Metadata, error) {
	minSize := titleFieldSize + authorFieldSize + publisherFieldSize + languageFieldSize + tocHeaderSize
	if len(b) < minSize {
		return Metadata{}, xerrors.Newf(xerrors.KindMalformedContainer, "metadata block too short: %d bytes", len(b))
	}

	var m Metadata
	off := 0
	m.Title = cStr(b[off : off+titleFieldSize])
	off += titleFieldSize
	m.Author = cStr(b[off : off+authorFieldSize])
	off += authorFieldSize
	m.Publisher = cStr(b[off : off+publisherFieldSize])
	off += publisherFieldSize
	m.Language = cStr(b[off : off+languageFieldSize])
	off += languageFieldSize

	m.CreateTime = binary.LittleEndian.Uint32(b[off : off+4])
	m.CoverPage = binary.LittleEndian.Uint16(b[off+4 : off+6])
	chapterCount := int(binary.LittleEndian.Uint16(b[off+6 : off+8]))
	off += tocHeaderSize

	if off+tocEntrySize*chapterCount > len(b) {
		return Metadata{}, xerrors.Newf(xerrors.KindMalformedContainer,
			"metadata declares %d TOC entries but block is too short", chapterCount)
	}

	m.Toc = make([]TocEntry, chapterCount)
	for i := 0; i < chapterCount; i++ {
		entry := b[off : off+tocEntrySize]
		m.Toc[i] = TocEntry{
			Title:     cStr(entry[:tocEntryTitleSize]),
			StartPage: binary.LittleEndian.Uint16(entry[80:82]),
			EndPage:   binary.LittleEndian.Uint16(entry[82:84]),
		}
		off += tocEntrySize
	}

	return m, nil
}

// ValidateToc enforces spec.md §3's TOC invariants: startPage<=endPage,
// ranges pairwise disjoint, and the last entry's endPage equals the total
// emitted page count.
func ValidateToc(toc []TocEntry, totalPages int) error {
	for i, e := range toc {
		if e.StartPage > e.EndPage {
			return xerrors.Newf(xerrors.KindInternalInvariant,
				"toc entry %d: startPage %d > endPage %d", i, e.StartPage, e.EndPage)
		}
		if i > 0 && e.StartPage <= toc[i-1].EndPage {
			return xerrors.Newf(xerrors.KindInternalInvariant,
				"toc entry %d overlaps previous entry ending at %d", i, toc[i-1].EndPage)
		}
	}
	if len(toc) > 0 {
		last := toc[len(toc)-1]
		if int(last.EndPage) != totalPages {
			return xerrors.Newf(xerrors.KindInternalInvariant,
				"last toc entry ends at %d, but %d pages were emitted", last.EndPage, totalPages)
		}
	}
	return nil
}
