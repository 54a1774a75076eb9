package pack

import "github.com/xtconv/xtconv/internal/raster"

// PackXTG packs a dithered 1-bit grayscale frame into row-major,
// MSB-first bits (1 = white, gray>=128; 0 = black) and prepends the
// chunk header.
func PackXTG(f *raster.Frame) []byte {
	w, h := f.Width, f.Height
	rowBytes := ceilDiv(w, 8)
	payload := make([]byte, rowBytes*h)

	for y := 0; y < h; y++ {
		rowOff := y * rowBytes
		for x := 0; x < w; x++ {
			gray := f.Pix[(y*w+x)*4]
			if gray >= 128 {
				byteIdx := rowOff + x/8
				bit := 7 - (x & 7)
				payload[byteIdx] |= 1 << uint(bit)
			}
		}
	}

	return writeHeader(MagicXTG, w, h, payload)
}

// UnpackXTG decodes an XTG chunk's payload back into an RGBA frame where
// set bits become white (255) and clear bits become black (0).
func UnpackXTG(hdr Header, payload []byte) *raster.Frame {
	w, h := int(hdr.Width), int(hdr.Height)
	rowBytes := ceilDiv(w, 8)
	out := raster.NewFrame(w, h)

	for y := 0; y < h; y++ {
		rowOff := y * rowBytes
		for x := 0; x < w; x++ {
			byteIdx := rowOff + x/8
			bit := 7 - (x & 7)
			var gray byte
			if byteIdx < len(payload) && payload[byteIdx]&(1<<uint(bit)) != 0 {
				gray = 255
			}
			out.Set(x, y, gray, gray, gray, 255)
		}
	}
	return out
}
