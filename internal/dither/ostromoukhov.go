package dither

import "github.com/xtconv/xtconv/internal/raster"

// ostromoukhovCoeffs are the (right, down-left, down) error fractions at
// the three anchor points spec.md §4.4 defines: v=0 and v=255 share the
// same anchor, v=128 is the opposite extreme, each segment interpolated
// linearly.
var (
	ostroLowHigh = [3]float64{0.7, 0.2, 0.1}
	ostroMid     = [3]float64{0.3, 0.4, 0.3}
)

func ostromoukhovCoeffs(v float64) (right, downLeft, down float64) {
	if v < 0 {
		v = 0
	}
	if v > 255 {
		v = 255
	}

	var a, b [3]float64
	var t float64
	if v <= 128 {
		a, b = ostroLowHigh, ostroMid
		t = v / 128
	} else {
		a, b = ostroMid, ostroLowHigh
		t = (v - 128) / 127
	}

	right = a[0] + (b[0]-a[0])*t
	downLeft = a[1] + (b[1]-a[1])*t
	down = a[2] + (b[2]-a[2])*t
	return right, downLeft, down
}

// ostromoukhovPass runs error diffusion with per-pixel coefficients
// derived from the pixel's own value before quantization, rather than a
// single fixed kernel.
func ostromoukhovPass(f *raster.Frame, depth Depth) {
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
			clamped := old
			if clamped < 0 {
				clamped = 0
			} else if clamped > 255 {
				clamped = 255
			}

			newV := quantize(clamped, depth)
			setGray(f, x, y, newV)

			errV := clamped - float64(newV)
			right, downLeft, down := ostromoukhovCoeffs(clamped)

			if x+1 < w {
				buf[y*w+x+1] += float32(errV * right)
			}
			if y+1 < h {
				if x-1 >= 0 {
					buf[(y+1)*w+x-1] += float32(errV * downLeft)
				}
				buf[(y+1)*w+x] += float32(errV * down)
			}
		}
	}
}
