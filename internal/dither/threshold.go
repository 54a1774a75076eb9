package dither

import "github.com/xtconv/xtconv/internal/raster"

// thresholdPass applies the bare quantizer with no error propagation at
// all ("none" in the CLI, spec.md §4.4).
func thresholdPass(f *raster.Frame, depth Depth) {
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			v := grayAt(f, x, y)
			setGray(f, x, y, quantize(v, depth))
		}
	}
}
