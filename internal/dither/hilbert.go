package dither

import "github.com/xtconv/xtconv/internal/raster"

// nextPowerOfTwo returns the smallest power of two >= v.
func nextPowerOfTwo(v int) int {
	n := 1
	for n < v {
		n *= 2
	}
	return n
}

// hilbertD2XY converts a distance d along an order-n (n x n, n a power of
// two) Hilbert curve into (x,y) coordinates.
func hilbertD2XY(n, d int) (x, y int) {
	t := d
	for s := 1; s < n; s *= 2 {
		rx := 1 & (t / 2)
		ry := 1 & (t ^ rx)
		x, y = hilbertRot(s, x, y, rx, ry)
		x += s * rx
		y += s * ry
		t /= 4
	}
	return x, y
}

func hilbertRot(n, x, y, rx, ry int) (int, int) {
	if ry == 0 {
		if rx == 1 {
			x = n - 1 - x
			y = n - 1 - y
		}
		x, y = y, x
	}
	return x, y
}

// hilbertPass implements spec.md §4.4's "stochastic" algorithm: a
// Hilbert-curve serpentine traversal carrying a single scalar error value
// forward from each visited pixel to the next, skipping points that fall
// outside the frame.
func hilbertPass(f *raster.Frame, depth Depth) {
	w, h := f.Width, f.Height
	n := nextPowerOfTwo(max(w, h))

	var carried float64
	total := n * n
	for d := 0; d < total; d++ {
		x, y := hilbertD2XY(n, d)
		if x >= w || y >= h {
			continue
		}
		current := grayAt(f, x, y)
		input := current + carried
		quantized := quantize(input, depth)
		setGray(f, x, y, quantized)
		carried = input - float64(quantized)
	}
}
