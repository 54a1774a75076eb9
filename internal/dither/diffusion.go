package dither

import "github.com/xtconv/xtconv/internal/raster"

// tap is one weighted neighbor offset in an error-diffusion kernel.
type tap struct {
	dx, dy int
	weight float64
}

// kernel is a full error-diffusion matrix: taps are distributed to
// unvisited neighbors (dy>0, or dy==0 && dx>0) scaled by weight/divisor.
type kernel struct {
	taps    []tap
	divisor float64
}

var kernels = map[Algorithm]kernel{
	// Floyd-Steinberg, divisor 16:
	//          X  7
	//       3  5  1
	FloydSteinberg: {
		divisor: 16,
		taps: []tap{
			{1, 0, 7},
			{-1, 1, 3},
			{0, 1, 5},
			{1, 1, 1},
		},
	},
	// Atkinson, divisor 8. Only 6/8 of the error is distributed; this is
	// intentional, not a bug (spec.md §4.4).
	//          X  1  1
	//       1  1  1
	//          1
	Atkinson: {
		divisor: 8,
		taps: []tap{
			{1, 0, 1},
			{2, 0, 1},
			{-1, 1, 1},
			{0, 1, 1},
			{1, 1, 1},
			{0, 2, 1},
		},
	},
	// Stucki, divisor 42:
	//             X   8   4
	//       2   4   8   4   2
	//       1   2   4   2   1
	Stucki: {
		divisor: 42,
		taps: []tap{
			{1, 0, 8}, {2, 0, 4},
			{-2, 1, 2}, {-1, 1, 4}, {0, 1, 8}, {1, 1, 4}, {2, 1, 2},
			{-2, 2, 1}, {-1, 2, 2}, {0, 2, 4}, {1, 2, 2}, {2, 2, 1},
		},
	},
	// Zhou-Fang, divisor 103. Per spec.md §4.4, the listed weights
	// (98 total) intentionally don't sum to the divisor, the same way
	// Atkinson's 6/8 distribution is intentional.
	//             X  16   9
	//       5  11  16  11   5
	//       3   5   9   5   3
	ZhouFang: {
		divisor: 103,
		taps: []tap{
			{1, 0, 16}, {2, 0, 9},
			{-2, 1, 5}, {-1, 1, 11}, {0, 1, 16}, {1, 1, 11}, {2, 1, 5},
			{-2, 2, 3}, {-1, 2, 5}, {0, 2, 9}, {1, 2, 5}, {2, 2, 3},
		},
	},
	// Sierra-Lite, divisor 4:
	//          X  2
	//       1  1
	SierraLite: {
		divisor: 4,
		taps: []tap{
			{1, 0, 2},
			{-1, 1, 1},
			{0, 1, 1},
		},
	},
}

// diffusionPass runs a fixed error-diffusion kernel left-to-right,
// top-to-bottom over f, quantizing each pixel and distributing
// old-new error into a floating accumulation buffer so fractional error
// (e.g. 1/42) doesn't get truncated away between rows (spec.md §4.4).
func diffusionPass(f *raster.Frame, depth Depth, k kernel) {
	w, h := f.Width, f.Height
	buf := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf[y*w+x] = float32(grayAt(f, x, y))
		}
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			old := float64(buf[y*w+x])
			newV := quantize(old, depth)
			setGray(f, x, y, newV)

			errV := old - float64(newV)
			for _, t := range k.taps {
				nx, ny := x+t.dx, y+t.dy
				if nx < 0 || nx >= w || ny < 0 || ny >= h {
					continue
				}
				buf[ny*w+nx] += float32(errV * t.weight / k.divisor)
			}
		}
	}
}
