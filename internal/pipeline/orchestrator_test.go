package pipeline

import (
	"context"
	"testing"

	"github.com/xtconv/xtconv/internal/dither"
	"github.com/xtconv/xtconv/internal/geometry"
	"github.com/xtconv/xtconv/internal/raster"
)

func solidRGBA(w, h int, v byte) *raster.Frame {
	f := raster.NewFrame(w, h)
	for i := 0; i < len(f.Pix); i += 4 {
		f.Pix[i], f.Pix[i+1], f.Pix[i+2], f.Pix[i+3] = v, v, v, 255
	}
	return f
}

func baseOptions() ConversionOptions {
	return ConversionOptions{
		Device:          DeviceX4,
		SourceType:      SourceCBZ,
		DitherAlgorithm: dither.None,
		Contrast:        0,
		Gamma:           1.0,
		Orientation:     geometry.Portrait,
		SplitMode:       SplitNone,
		ImageMode:       raster.ModeLetterbox,
	}
}

func TestProcessFrameWhiteFrameScenario(t *testing.T) {
	// spec.md §8 scenario 1.
	opt := baseOptions()
	opt.Is2Bit = false
	src := solidRGBA(480, 800, 255)
	defer src.Release()

	pages, err := ProcessFrame(src, opt, nil)
	if err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page, got %d", len(pages))
	}
	if want := 22 + 60*800; len(pages[0].Chunk) != want {
		t.Fatalf("chunk size = %d, want %d", len(pages[0].Chunk), want)
	}
}

func TestProcessFrameLandscapeOverlapSplitScenario(t *testing.T) {
	// spec.md §8 scenario 3: 1200x800 landscape, overlap split -> 3 pages.
	opt := baseOptions()
	opt.Orientation = geometry.Landscape
	opt.SplitMode = SplitOverlap
	src := solidRGBA(1200, 800, 128)
	defer src.Release()

	pages, err := ProcessFrame(src, opt, nil)
	if err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	for _, p := range pages {
		if p.Width != 480 || p.Height != 800 {
			t.Fatalf("page size = %dx%d, want 480x800", p.Width, p.Height)
		}
	}
}

func TestProcessFrameLandscapeNoSplitSingePage(t *testing.T) {
	opt := baseOptions()
	opt.Orientation = geometry.Landscape
	opt.SplitMode = SplitNone
	src := solidRGBA(1600, 800, 0)
	defer src.Release()

	pages, err := ProcessFrame(src, opt, nil)
	if err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	if len(pages) != 1 {
		t.Fatalf("expected 1 page for nosplit landscape, got %d", len(pages))
	}
}

func TestProcessFrameOverviewsAddExtraPages(t *testing.T) {
	opt := baseOptions()
	opt.IncludeOverviews = true
	opt.SidewaysOverviews = true
	src := solidRGBA(480, 800, 200)
	defer src.Release()

	pages, err := ProcessFrame(src, opt, nil)
	if err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}
	if len(pages) != 3 {
		t.Fatalf("expected 3 pages (2 overviews + main), got %d", len(pages))
	}
}

func TestRunConcurrentPreservesSourceOrder(t *testing.T) {
	opt := baseOptions()
	var jobs []FrameJob
	vals := []byte{10, 250, 64, 192}
	for i, v := range vals {
		jobs = append(jobs, FrameJob{Frame: solidRGBA(480, 800, v), Index: i})
	}

	results, trailing, err := RunConcurrent(context.Background(), jobs, opt, 4)
	if err != nil {
		t.Fatalf("RunConcurrent: %v", err)
	}
	if trailing != nil {
		t.Fatal("expected no trailing manhwa page in non-manhwa mode")
	}
	if len(results) != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), len(results))
	}
	start := 1
	for i, r := range results {
		if r.Err != nil {
			t.Fatalf("result %d errored: %v", i, r.Err)
		}
		if r.Mapping.OriginalPage != i+1 {
			t.Fatalf("result %d mapping.OriginalPage = %d, want %d", i, r.Mapping.OriginalPage, i+1)
		}
		if r.Mapping.StartPage != start {
			t.Fatalf("result %d mapping.StartPage = %d, want %d", i, r.Mapping.StartPage, start)
		}
		start += r.Mapping.PageCount
	}
}

func TestRunConcurrentManhwaForcesSequentialAndEmitsTrailing(t *testing.T) {
	opt := baseOptions()
	opt.Manhwa = true
	opt.ManhwaOverlapPercent = 50

	var jobs []FrameJob
	for i := 0; i < 2; i++ {
		jobs = append(jobs, FrameJob{Frame: solidRGBA(480, 500, 128), Index: i})
	}

	results, trailing, err := RunConcurrent(context.Background(), jobs, opt, 8)
	if err != nil {
		t.Fatalf("RunConcurrent: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if trailing == nil {
		t.Fatal("expected a trailing manhwa residual page (1000 rows < devH multiple)")
	}
}
