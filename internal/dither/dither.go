// Package dither implements the quantizers and dithering algorithms of
// spec.md §4.4: error-diffusion kernels, ordered Bayer, a Hilbert-curve
// serpentine, and direct threshold, each reducing a grayscale raster to
// either 2 or 4 gray levels ahead of bit-packing.
package dither

import "github.com/xtconv/xtconv/internal/raster"

// Algorithm selects which dithering kernel Apply uses.
type Algorithm int

const (
	FloydSteinberg Algorithm = iota
	Atkinson
	Stucki
	ZhouFang
	Ostromoukhov
	SierraLite
	Ordered
	Stochastic
	None
)

// Depth selects the quantizer: OneBit collapses to {0,255}, TwoBit to
// {0,85,170,255}.
type Depth int

const (
	OneBit Depth = iota
	TwoBit
)

func quantize(v float64, depth Depth) byte {
	if depth == TwoBit {
		return quantize2Bit(v)
	}
	return quantize1Bit(v)
}

// quantize1Bit implements spec.md §4.4's 1-bit quantizer: q(v) = v<128 ? 0
// : 255.
func quantize1Bit(v float64) byte {
	if v < 128 {
		return 0
	}
	return 255
}

// quantize2Bit implements spec.md §4.4's 2-bit quantizer: thresholds
// {42,127,212} map to levels {0,85,170,255} via strict-less-than
// comparisons.
func quantize2Bit(v float64) byte {
	switch {
	case v < 42:
		return 0
	case v < 127:
		return 85
	case v < 212:
		return 170
	default:
		return 255
	}
}

// Apply dithers f's grayscale content (R=G=B is assumed, as produced by
// internal/filter) in place according to algo and depth.
func Apply(f *raster.Frame, algo Algorithm, depth Depth) {
	switch algo {
	case None:
		thresholdPass(f, depth)
	case Ordered:
		orderedPass(f)
	case Stochastic:
		hilbertPass(f, depth)
	case Ostromoukhov:
		ostromoukhovPass(f, depth)
	default:
		kernel, ok := kernels[algo]
		if !ok {
			panic("dither: unknown algorithm")
		}
		diffusionPass(f, depth, kernel)
	}
}

func grayAt(f *raster.Frame, x, y int) float64 {
	i := (y*f.Width + x) * 4
	return float64(f.Pix[i])
}

func setGray(f *raster.Frame, x, y int, v byte) {
	i := (y*f.Width + x) * 4
	f.Pix[i] = v
	f.Pix[i+1] = v
	f.Pix[i+2] = v
}
