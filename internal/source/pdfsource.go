package source

import (
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/xtconv/xtconv/internal/container"
	"github.com/xtconv/xtconv/internal/raster"
	"github.com/xtconv/xtconv/internal/xerrors"
)

// Rasterizer renders one PDF page (0-indexed) to an RGBA frame at scale
// 2.0 with a white background, per spec.md §6. Rasterization itself is an
// external collaborator this package doesn't implement; PdfSource only
// owns page counting, backed by pdfcpu, and delegates actual page
// rendering to whatever Rasterizer the caller wires in (a CGO-bound
// renderer, an external process, etc).
type Rasterizer func(pageIndex int) (*raster.Frame, error)

// PdfSource walks a PDF document's pages in order, using pdfcpu for the
// page count and deferring to an injected Rasterizer for pixels.
type PdfSource struct {
	path       string
	pageCount  int
	rasterize  Rasterizer
	next       int
}

// OpenPdf opens path just far enough to read its page count via pdfcpu;
// it does not rasterize anything itself.
func OpenPdf(path string, rasterize Rasterizer) (*PdfSource, error) {
	n, err := api.PageCountFile(path)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindFrameDecodeFailure, "reading pdf page count", err)
	}
	return &PdfSource{path: path, pageCount: n, rasterize: rasterize}, nil
}

func (s *PdfSource) Next() (*raster.Frame, error) {
	if s.next >= s.pageCount {
		return nil, ErrDone
	}
	f, err := s.rasterize(s.next)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindFrameDecodeFailure, "rasterizing pdf page", err)
	}
	s.next++
	return f, nil
}

// Metadata never parses PDF document info into BookMetadata today: pdfcpu
// exposes it via ListProperties/Info, whose key set maps unpredictably
// across producers. Left nil rather than guessing a mapping.
func (s *PdfSource) Metadata() *container.Metadata { return nil }

func (s *PdfSource) Close() error { return nil }

// PageCount reports the page count read by OpenPdf.
func (s *PdfSource) PageCount() int { return s.pageCount }
