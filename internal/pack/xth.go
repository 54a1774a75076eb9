package pack

import "github.com/xtconv/xtconv/internal/raster"

// xthLevel maps a final grayscale value to the 2-bit plane level per
// spec.md §4.5: 0=white, 1=light, 2=dark, 3=black.
func xthLevel(gray byte) byte {
	switch {
	case gray >= 212:
		return 0
	case gray >= 127:
		return 1
	case gray >= 42:
		return 2
	default:
		return 3
	}
}

// PackXTH packs a dithered 2-bit grayscale frame into two column-major
// bit-planes, columns written right-to-left, and prepends the chunk
// header.
func PackXTH(f *raster.Frame) []byte {
	w, h := f.Width, f.Height
	colBytes := ceilDiv(h, 8)
	planeSize := colBytes * w
	payload := make([]byte, 2*planeSize)
	plane0 := payload[:planeSize]
	plane1 := payload[planeSize:]

	for x := 0; x < w; x++ {
		col := w - 1 - x
		colOffset := col * colBytes
		for y := 0; y < h; y++ {
			gray := f.Pix[(y*w+x)*4]
			level := xthLevel(gray)
			byteIdx := colOffset + y/8
			bit := 7 - (y & 7)
			if level&1 != 0 {
				plane0[byteIdx] |= 1 << uint(bit)
			}
			if level&2 != 0 {
				plane1[byteIdx] |= 1 << uint(bit)
			}
		}
	}

	return writeHeader(MagicXTH, w, h, payload)
}

// levelToGray is the inverse of xthLevel, used when unpacking.
func levelToGray(level byte) byte {
	switch level {
	case 0:
		return 255
	case 1:
		return 170
	case 2:
		return 85
	default:
		return 0
	}
}

// UnpackXTH decodes an XTH chunk's payload back into an RGBA frame.
func UnpackXTH(hdr Header, payload []byte) *raster.Frame {
	w, h := int(hdr.Width), int(hdr.Height)
	colBytes := ceilDiv(h, 8)
	planeSize := colBytes * w
	var plane0, plane1 []byte
	if planeSize <= len(payload) {
		plane0 = payload[:planeSize]
	}
	if 2*planeSize <= len(payload) {
		plane1 = payload[planeSize : 2*planeSize]
	}

	out := raster.NewFrame(w, h)
	for x := 0; x < w; x++ {
		col := w - 1 - x
		colOffset := col * colBytes
		for y := 0; y < h; y++ {
			byteIdx := colOffset + y/8
			bit := 7 - (y & 7)
			var level byte
			if byteIdx < len(plane0) && plane0[byteIdx]&(1<<uint(bit)) != 0 {
				level |= 1
			}
			if byteIdx < len(plane1) && plane1[byteIdx]&(1<<uint(bit)) != 0 {
				level |= 2
			}
			gray := levelToGray(level)
			out.Set(x, y, gray, gray, gray, 255)
		}
	}
	return out
}
