package dither

import "github.com/xtconv/xtconv/internal/raster"

// bayer4x4 is the fixed ordered-dither threshold matrix from spec.md
// §4.4.
var bayer4x4 = [4][4]int{
	{0, 8, 2, 10},
	{12, 4, 14, 6},
	{3, 11, 1, 9},
	{15, 7, 13, 5},
}

// orderedPass applies the 4x4 Bayer matrix as a per-pixel threshold. Per
// spec.md §4.4, 2-bit mode reuses the same binary threshold rather than a
// true 4-level ordered matrix.
func orderedPass(f *raster.Frame) {
	for y := 0; y < f.Height; y++ {
		for x := 0; x < f.Width; x++ {
			threshold := bayer4x4[y%4][x%4] * 16
			v := grayAt(f, x, y)
			if v > float64(threshold) {
				setGray(f, x, y, 255)
			} else {
				setGray(f, x, y, 0)
			}
		}
	}
}
