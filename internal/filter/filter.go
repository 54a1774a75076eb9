// Package filter implements the fused grayscale/contrast/gamma/invert
// pass of spec.md §4.3: a single read-once, write-once loop over an RGBA
// raster, with the histogram stretch and gamma curve precomputed as
// lookup tables before the pixel loop starts.
package filter

import (
	"math"

	"github.com/xtconv/xtconv/internal/raster"
)

// Options controls the fused filter pass.
type Options struct {
	Contrast int     // one of 0, 2, 4, 6, 8
	Gamma    float64 // clamped to [0.1, 3.0]; 1.0 disables the gamma LUT
	Invert   bool
}

// Apply runs the fused filter pass over f in place, converting it to
// grayscale (R=G=B, alpha untouched) and applying contrast stretch, gamma,
// and invert per spec.md §4.3's fixed order.
func Apply(f *raster.Frame, opt Options) {
	var blackPoint, whitePoint int
	rng := 0
	if opt.Contrast > 0 {
		blackPoint, whitePoint = histogramStretchPoints(f, opt.Contrast, opt.Invert)
		rng = whitePoint - blackPoint
	}

	var gammaLUT [256]byte
	useGamma := opt.Gamma != 1.0 && opt.Gamma > 0
	if useGamma {
		gammaLUT = buildGammaLUT(opt.Gamma)
	}

	for i := 0; i+3 < len(f.Pix); i += 4 {
		r, g, b := f.Pix[i], f.Pix[i+1], f.Pix[i+2]

		if opt.Invert {
			r, g, b = 255-r, 255-g, 255-b
		}

		if opt.Contrast > 0 && rng > 0 {
			r = stretch(r, blackPoint, rng)
			g = stretch(g, blackPoint, rng)
			b = stretch(b, blackPoint, rng)
		}

		gray := luminosity(r, g, b)

		if useGamma {
			gray = gammaLUT[gray]
		}

		f.Pix[i] = gray
		f.Pix[i+1] = gray
		f.Pix[i+2] = gray
	}
}

// luminosity computes round(0.299R + 0.587G + 0.114B), the ITU-R luma
// weights specified throughout §4.3 and §4.4.
func luminosity(r, g, b byte) byte {
	v := 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
	return clampByte(v + 0.5)
}

func stretch(v byte, blackPoint, rng int) byte {
	stretched := (int(v) - blackPoint) * 255 / rng
	if stretched < 0 {
		return 0
	}
	if stretched > 255 {
		return 255
	}
	return byte(stretched)
}

func clampByte(v float64) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

func buildGammaLUT(gamma float64) [256]byte {
	var lut [256]byte
	for i := 0; i < 256; i++ {
		normalized := float64(i) / 255.0
		v := math.Pow(normalized, gamma) * 255.0
		lut[i] = clampByte(v + 0.5)
	}
	return lut
}

// histogramStretchPoints builds a 256-bin luminosity histogram and finds
// the black/white points per spec.md §4.3 step 1. The invert flag is
// applied consistently with the main pass: the histogram is built from the
// same (possibly inverted) channel values the pixel loop will stretch.
func histogramStretchPoints(f *raster.Frame, contrast int, invert bool) (blackPoint, whitePoint int) {
	var hist [256]int
	total := 0
	for i := 0; i+3 < len(f.Pix); i += 4 {
		r, g, b := f.Pix[i], f.Pix[i+1], f.Pix[i+2]
		if invert {
			r, g, b = 255-r, 255-g, 255-b
		}
		hist[luminosity(r, g, b)]++
		total++
	}

	blackThreshold := total * (3 * contrast) / 100
	whiteThreshold := total * (3 + 9*contrast) / 100

	cum := 0
	blackPoint = 0
	for i := 0; i < 256; i++ {
		cum += hist[i]
		if cum >= blackThreshold {
			blackPoint = i
			break
		}
	}

	cum = 0
	whitePoint = 255
	for i := 255; i >= 0; i-- {
		cum += hist[i]
		if cum >= whiteThreshold {
			whitePoint = i
			break
		}
	}

	return blackPoint, whitePoint
}
