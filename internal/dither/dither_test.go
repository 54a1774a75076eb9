package dither

import (
	"testing"

	"github.com/xtconv/xtconv/internal/raster"
)

func grayFrame(w, h int, v byte) *raster.Frame {
	f := raster.NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			f.Set(x, y, v, v, v, 255)
		}
	}
	return f
}

func assertOnlyLevels(t *testing.T, f *raster.Frame, levels ...byte) {
	t.Helper()
	allowed := map[byte]bool{}
	for _, l := range levels {
		allowed[l] = true
	}
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			r, _, _, _ := f.At(x, y)
			if !allowed[r] {
				t.Fatalf("pixel (%d,%d) = %d, not in allowed set %v", x, y, r, levels)
			}
		}
	}
}

func TestThresholdNoneOneBit(t *testing.T) {
	f := grayFrame(4, 4, 100)
	Apply(f, None, OneBit)
	assertOnlyLevels(t, f, 0)

	f2 := grayFrame(4, 4, 200)
	Apply(f2, None, OneBit)
	assertOnlyLevels(t, f2, 255)
}

func TestThresholdNoneTwoBit(t *testing.T) {
	f := grayFrame(1, 1, 130)
	Apply(f, None, TwoBit)
	assertOnlyLevels(t, f, 170)
}

func TestOneByOneImageNoPropagation(t *testing.T) {
	// spec.md §8: dither on a 1x1 image performs no propagation, just the
	// quantizer. Ordered dithering has no quantizer: it compares against the
	// Bayer threshold at (0,0), which is 0, so 60 becomes white.
	for _, algo := range []Algorithm{FloydSteinberg, Atkinson, Stucki, ZhouFang, SierraLite, Ostromoukhov, Ordered, Stochastic} {
		f := grayFrame(1, 1, 60)
		Apply(f, algo, OneBit)
		want := byte(0)
		if algo == Ordered {
			want = 255
		}
		r, _, _, _ := f.At(0, 0)
		if r != want {
			t.Fatalf("algo %v on 1x1 image = %d, want %d (no propagation possible)", algo, r, want)
		}
	}
}

func TestErrorDiffusionProducesOnlyQuantizedLevels(t *testing.T) {
	for _, algo := range []Algorithm{FloydSteinberg, Atkinson, Stucki, ZhouFang, SierraLite} {
		f := grayFrame(16, 16, 96)
		Apply(f, algo, OneBit)
		assertOnlyLevels(t, f, 0, 255)
	}
}

func TestErrorDiffusionTwoBitLevels(t *testing.T) {
	for _, algo := range []Algorithm{FloydSteinberg, Stucki, Ostromoukhov} {
		f := grayFrame(16, 16, 96)
		Apply(f, algo, TwoBit)
		assertOnlyLevels(t, f, 0, 85, 170, 255)
	}
}

func TestOrderedIgnoresBitDepth(t *testing.T) {
	f1 := grayFrame(8, 8, 140)
	Apply(f1, Ordered, OneBit)
	f2 := grayFrame(8, 8, 140)
	Apply(f2, Ordered, TwoBit)
	assertOnlyLevels(t, f1, 0, 255)
	assertOnlyLevels(t, f2, 0, 255) // spec.md: 2-bit ordered uses the same quantizer
}

func TestHilbertVisitsEveryPixel(t *testing.T) {
	f := grayFrame(5, 3, 10)
	Apply(f, Stochastic, OneBit)
	assertOnlyLevels(t, f, 0, 255)
}

func TestQuantize2BitBoundaries(t *testing.T) {
	cases := []struct {
		v    float64
		want byte
	}{
		{0, 0}, {41.9, 0}, {42, 85}, {126.9, 85}, {127, 170}, {211.9, 170}, {212, 255}, {255, 255},
	}
	for _, c := range cases {
		if got := quantize2Bit(c.v); got != c.want {
			t.Fatalf("quantize2Bit(%v) = %d, want %d", c.v, got, c.want)
		}
	}
}
