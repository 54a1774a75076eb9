package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xtconv/xtconv/internal/raster"
)

// minimalTwoPagePDF is a hand-assembled, byte-exact PDF: two pages, a
// correct object/xref/trailer structure, no external generator involved.
const minimalTwoPagePDF = "%PDF-1.4\n" +
	"1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n" +
	"2 0 obj\n<< /Type /Pages /Kids [3 0 R 5 0 R] /Count 2 >>\nendobj\n" +
	"3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents 4 0 R >>\nendobj\n" +
	"4 0 obj\n<< /Length 40 >>\nstream\nBT /F1 24 Tf 100 700 Td (Page One) Tj ET\nendstream\nendobj\n" +
	"5 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> /Contents 6 0 R >>\nendobj\n" +
	"6 0 obj\n<< /Length 40 >>\nstream\nBT /F1 24 Tf 100 700 Td (Page Two) Tj ET\nendstream\nendobj\n" +
	"xref\n0 7\n" +
	"0000000000 65535 f \n" +
	"0000000009 00000 n \n" +
	"0000000058 00000 n \n" +
	"0000000121 00000 n \n" +
	"0000000225 00000 n \n" +
	"0000000315 00000 n \n" +
	"0000000419 00000 n \n" +
	"trailer\n<< /Size 7 /Root 1 0 R >>\n" +
	"startxref\n509\n" +
	"%%EOF"

func TestPDFSourcePageCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.pdf")
	if err := os.WriteFile(path, []byte(minimalTwoPagePDF), 0o644); err != nil {
		t.Fatalf("writing fixture pdf: %v", err)
	}

	s, err := OpenPdf(path, func(pageIndex int) (*raster.Frame, error) {
		t.Fatalf("rasterize should not be called just to read the page count")
		return nil, nil
	})
	if err != nil {
		t.Fatalf("OpenPdf: %v", err)
	}
	if s.PageCount() != 2 {
		t.Fatalf("PageCount() = %d, want 2", s.PageCount())
	}
}

func TestPDFSourceNextUsesRasterizer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fixture.pdf")
	if err := os.WriteFile(path, []byte(minimalTwoPagePDF), 0o644); err != nil {
		t.Fatalf("writing fixture pdf: %v", err)
	}

	calls := 0
	s, err := OpenPdf(path, func(pageIndex int) (*raster.Frame, error) {
		calls++
		return raster.NewFrame(1, 1), nil
	})
	if err != nil {
		t.Fatalf("OpenPdf: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := s.Next(); err != nil {
			t.Fatalf("Next() page %d: %v", i, err)
		}
	}
	if _, err := s.Next(); err != ErrDone {
		t.Fatalf("Next() past last page: got %v, want ErrDone", err)
	}
	if calls != 2 {
		t.Fatalf("rasterize called %d times, want 2", calls)
	}
}
