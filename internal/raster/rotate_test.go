package raster

import "testing"

func solid(w, h int, r, g, b, a byte) *Frame {
	f := NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, r, g, b, a)
		}
	}
	return f
}

func TestRotate90SwapsDimensions(t *testing.T) {
	src := NewFrame(3, 5)
	src.Set(0, 0, 10, 20, 30, 255) // top-left marker
	out := Rotate(src, 90)
	if out.Width != 5 || out.Height != 3 {
		t.Fatalf("rotated dims = %dx%d, want 5x3", out.Width, out.Height)
	}
	r, g, b, a := out.At(out.Width-1, 0)
	if r != 10 || g != 20 || b != 30 || a != 255 {
		t.Fatalf("marker pixel moved to unexpected location: %d,%d,%d,%d", r, g, b, a)
	}
}

func TestRotateNeg90IsInverseOf90(t *testing.T) {
	src := solid(4, 6, 1, 2, 3, 255)
	src.Set(1, 1, 9, 9, 9, 255)
	roundTrip := Rotate(Rotate(src, 90), -90)
	if roundTrip.Width != src.Width || roundTrip.Height != src.Height {
		t.Fatalf("round trip dims = %dx%d, want %dx%d", roundTrip.Width, roundTrip.Height, src.Width, src.Height)
	}
	for y := 0; y < src.Height; y++ {
		for x := 0; x < src.Width; x++ {
			wr, wg, wb, wa := src.At(x, y)
			gr, gg, gb, ga := roundTrip.At(x, y)
			if wr != gr || wg != gg || wb != gb || wa != ga {
				t.Fatalf("pixel (%d,%d) mismatch after round trip", x, y)
			}
		}
	}
}

func TestRotate180(t *testing.T) {
	src := NewFrame(2, 2)
	src.Set(0, 0, 1, 0, 0, 255)
	out := Rotate(src, 180)
	r, _, _, _ := out.At(1, 1)
	if r != 1 {
		t.Fatalf("rotate180 did not move corner pixel correctly")
	}
}

func TestExtractRegionExactCopy(t *testing.T) {
	src := NewFrame(10, 10)
	src.Set(5, 5, 42, 42, 42, 255)
	region := ExtractRegion(src, 3, 3, 4, 4)
	if region.Width != 4 || region.Height != 4 {
		t.Fatalf("region dims = %dx%d, want 4x4", region.Width, region.Height)
	}
	r, _, _, _ := region.At(2, 2)
	if r != 42 {
		t.Fatalf("extracted region missing expected marker pixel")
	}
}
