package raster

import "testing"

func TestResizeLetterboxPadsRemainder(t *testing.T) {
	src := solid(100, 50, 0, 0, 0, 255) // 2:1, device is 480x800 (portrait)
	out := ResizeLetterbox(src, 480, 800, 255)
	if out.Width != 480 || out.Height != 800 {
		t.Fatalf("letterbox dims = %dx%d, want 480x800", out.Width, out.Height)
	}
	// Top row should be padding (white) since a very wide short source
	// letterboxed into a tall device leaves big top/bottom bars.
	r, g, b, _ := out.At(240, 0)
	if r != 255 || g != 255 || b != 255 {
		t.Fatalf("expected pad color at top row, got %d,%d,%d", r, g, b)
	}
}

func TestResizeFillExactDims(t *testing.T) {
	src := solid(300, 100, 128, 128, 128, 255)
	out := ResizeFill(src, 480, 800)
	if out.Width != 480 || out.Height != 800 {
		t.Fatalf("fill dims = %dx%d, want 480x800", out.Width, out.Height)
	}
}

func TestResizeCoverCropsOverflow(t *testing.T) {
	src := solid(100, 100, 10, 10, 10, 255)
	out := ResizeCover(src, 480, 800)
	if out.Width != 480 || out.Height != 800 {
		t.Fatalf("cover dims = %dx%d, want 480x800", out.Width, out.Height)
	}
}

func TestResizeCropNoScale(t *testing.T) {
	src := solid(100, 100, 5, 5, 5, 255)
	out := ResizeCrop(src, 480, 800, 0)
	if out.Width != 480 || out.Height != 800 {
		t.Fatalf("crop dims = %dx%d, want 480x800", out.Width, out.Height)
	}
	// Source is smaller than device on both axes: centered, surrounded by
	// pad, and not scaled (still a 100x100 block of the original color).
	r, _, _, _ := out.At(240, 400)
	if r != 5 {
		t.Fatalf("expected unscaled source pixel at center, got r=%d", r)
	}
	r, _, _, _ = out.At(0, 0)
	if r != 0 {
		t.Fatalf("expected pad color at corner, got r=%d", r)
	}
}

func TestBoxDownsampleAverages(t *testing.T) {
	src := NewFrame(4, 4)
	// Checkerboard of black/white; box downsample to 2x2 should average
	// each 2x2 block to mid-gray.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			v := byte(0)
			if (x+y)%2 == 0 {
				v = 255
			}
			src.Set(x, y, v, v, v, 255)
		}
	}
	out := BoxDownsample(src, 2, 2)
	if out.Width != 2 || out.Height != 2 {
		t.Fatalf("downsample dims = %dx%d, want 2x2", out.Width, out.Height)
	}
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			if r, _, _, _ := out.At(x, y); r != 127 {
				t.Fatalf("pixel (%d,%d) = %d, want 127 (average of 2 white + 2 black)", x, y, r)
			}
		}
	}
}
