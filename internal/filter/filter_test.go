package filter

import (
	"testing"

	"github.com/xtconv/xtconv/internal/raster"
)

func TestApplyGrayscaleLeavesAlphaUntouched(t *testing.T) {
	f := raster.NewFrame(2, 2)
	f.Set(0, 0, 255, 0, 0, 200)
	Apply(f, Options{Gamma: 1.0})
	_, _, _, a := f.At(0, 0)
	if a != 200 {
		t.Fatalf("alpha changed by grayscale pass: got %d, want 200", a)
	}
	r, g, b, _ := f.At(0, 0)
	if r != g || g != b {
		t.Fatalf("pixel not grayscale after Apply: %d,%d,%d", r, g, b)
	}
}

func TestApplyInvert(t *testing.T) {
	f := raster.NewFrame(1, 1)
	f.Set(0, 0, 0, 0, 0, 255)
	Apply(f, Options{Invert: true, Gamma: 1.0})
	r, _, _, _ := f.At(0, 0)
	if r != 255 {
		t.Fatalf("inverted black pixel = %d, want 255", r)
	}
}

func TestApplyContrastStretchesToFullRange(t *testing.T) {
	// spec.md §8 scenario 4: a 100x100 image whose histogram concentrates
	// in [50,200]; after contrast:8 the min channel is 0 and max is 255.
	f := raster.NewFrame(100, 100)
	i := 0
	for y := 0; y < 100; y++ {
		for x := 0; x < 100; x++ {
			v := byte(50 + (i % 151)) // spans [50,200]
			f.Set(x, y, v, v, v, 255)
			i++
		}
	}
	Apply(f, Options{Contrast: 8, Gamma: 1.0})

	minV, maxV := byte(255), byte(0)
	for p := 0; p+3 < len(f.Pix); p += 4 {
		v := f.Pix[p]
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}
	if minV > 1 {
		t.Fatalf("min channel after contrast stretch = %d, want ~0", minV)
	}
	if maxV < 254 {
		t.Fatalf("max channel after contrast stretch = %d, want ~255", maxV)
	}
}

func TestApplyGammaIdentityAtOne(t *testing.T) {
	f := raster.NewFrame(1, 1)
	f.Set(0, 0, 123, 123, 123, 255)
	Apply(f, Options{Gamma: 1.0})
	r, _, _, _ := f.At(0, 0)
	if r != 123 {
		t.Fatalf("gamma 1.0 should be a no-op, got %d, want 123", r)
	}
}
