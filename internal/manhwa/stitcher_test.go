package manhwa

import (
	"testing"

	"github.com/xtconv/xtconv/internal/raster"
)

func grayStrip(w, h int, v byte) *raster.Frame {
	f := raster.NewFrame(w, h)
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = v, v, v, 255
	}
	return f
}

func TestAppendEmitsFullSlicesWithOverlap(t *testing.T) {
	s := NewStitcher(480, 800, 50, false)
	// A single tall strip, already at device width, much taller than devH.
	// Alternating black/white rows keep every slice non-blank, so each step
	// is devH - 50% = 400 rows: 2500 -> 2100 -> 1700 -> 1300 -> 900 -> 500.
	strip := grayStrip(480, 2500, 0)
	for y := 0; y < strip.Height; y += 2 {
		for x := 0; x < strip.Width; x++ {
			strip.Set(x, y, 255, 255, 255, 255)
		}
	}
	pages := s.Append(strip)
	if len(pages) != 5 {
		t.Fatalf("expected 5 overlapping slices, got %d", len(pages))
	}
	for _, p := range pages {
		if p.Width != 480 || p.Height != 800 {
			t.Fatalf("slice size = %dx%d, want 480x800", p.Width, p.Height)
		}
	}
}

func TestBlankRegionStepsWithoutOverlap(t *testing.T) {
	s := NewStitcher(480, 800, 50, false)
	blank := grayStrip(480, 1600, 255) // uniform, stddev == 0
	pages := s.Append(blank)
	if len(pages) != 2 {
		t.Fatalf("expected 2 blank slices from a 1600-row uniform strip, got %d", len(pages))
	}
}

func TestFinishEmitsPaddedResidual(t *testing.T) {
	s := NewStitcher(480, 800, 50, true)
	short := grayStrip(480, 300, 64)
	pages := s.Append(short)
	if len(pages) != 0 {
		t.Fatalf("expected no full slices yet, got %d", len(pages))
	}
	final := s.Finish()
	if final == nil {
		t.Fatal("expected a residual page")
	}
	if final.Width != 480 || final.Height != 800 {
		t.Fatalf("residual size = %dx%d, want 480x800", final.Width, final.Height)
	}
	r, _, _, _ := final.At(0, 799)
	if r != 0 {
		t.Fatalf("expected black padding (padBlack) in untouched rows, got %d", r)
	}
}

func TestFinishWithNoResidualReturnsNil(t *testing.T) {
	s := NewStitcher(480, 800, 50, false)
	strip := grayStrip(480, 800, 128)
	pages := s.Append(strip)
	if len(pages) != 1 {
		t.Fatalf("expected exactly 1 slice for an exact-devH buffer, got %d", len(pages))
	}
	if final := s.Finish(); final != nil {
		t.Fatal("expected nil residual after an exact devH drain")
	}
}
