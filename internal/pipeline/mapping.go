package pipeline

import (
	"github.com/xtconv/xtconv/internal/container"
	"github.com/xtconv/xtconv/internal/xerrors"
)

// PageMapping records how one original source page expanded into a run of
// emitted (post-fan-out) pages, per spec.md §3's PageMapping entity.
type PageMapping struct {
	OriginalPage int // 1-indexed
	StartPage    int // 1-indexed, first emitted page for this source page
	PageCount    int
}

// RemapToc rewrites a TOC expressed in original (pre-fan-out) page numbers
// into one expressed in emitted page numbers, using the mapping built
// during emission. Entries are assumed 1-indexed and ordered, matching
// mappings' OriginalPage order.
func RemapToc(original []container.TocEntry, mappings []PageMapping) ([]container.TocEntry, error) {
	out := make([]container.TocEntry, len(original))
	for i, e := range original {
		start, err := startPageFor(mappings, int(e.StartPage))
		if err != nil {
			return nil, err
		}
		end, err := endPageFor(mappings, int(e.EndPage))
		if err != nil {
			return nil, err
		}
		out[i] = container.TocEntry{Title: e.Title, StartPage: uint16(start), EndPage: uint16(end)}
	}
	return out, nil
}

func startPageFor(mappings []PageMapping, originalPage int) (int, error) {
	for _, m := range mappings {
		if m.OriginalPage == originalPage {
			return m.StartPage, nil
		}
	}
	return 0, xerrors.Newf(xerrors.KindInternalInvariant, "no page mapping for original page %d", originalPage)
}

func endPageFor(mappings []PageMapping, originalPage int) (int, error) {
	for _, m := range mappings {
		if m.OriginalPage == originalPage {
			return m.StartPage + m.PageCount - 1, nil
		}
	}
	return 0, xerrors.Newf(xerrors.KindInternalInvariant, "no page mapping for original page %d", originalPage)
}
