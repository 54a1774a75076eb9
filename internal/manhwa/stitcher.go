// Package manhwa implements the infinite vertical-strip stitcher of
// spec.md §4.7: incoming frames are scaled to the device width and
// accumulated into a running buffer, which is sliced into device-height
// pages as soon as enough rows are available, skipping overlap across
// blank regions.
package manhwa

import (
	"math"

	"github.com/xtconv/xtconv/internal/raster"
)

// blankStddevThreshold is the luminance standard deviation below which a
// slice is treated as blank filler and emitted with no overlap into the
// next slice.
const blankStddevThreshold = 5.0

// Stitcher holds the running vertical buffer for one manhwa-mode source.
// It is not safe for concurrent use: manhwa mode is inherently sequential,
// since each append depends on the buffer left by the previous one.
type Stitcher struct {
	devW, devH     int
	overlapPercent int
	padBlack       bool
	buf            *raster.Frame // width == devW, height grows/shrinks as slices drain
}

// NewStitcher creates a stitcher for a devW x devH device, using
// overlapPercent for non-blank slice steps.
func NewStitcher(devW, devH, overlapPercent int, padBlack bool) *Stitcher {
	return &Stitcher{
		devW:           devW,
		devH:           devH,
		overlapPercent: overlapPercent,
		padBlack:       padBlack,
		buf:            raster.NewFrame(devW, 0),
	}
}

// Append scales src to the device width, appends it to the running buffer,
// and drains as many full devH-row slices as are now available, in order.
func (s *Stitcher) Append(src *raster.Frame) []*raster.Frame {
	scaled := raster.ScaleToWidth(src, s.devW)
	s.buf = appendVertically(s.buf, scaled)
	scaled.Release()

	var out []*raster.Frame
	for s.buf.Height >= s.devH {
		slice := extractTop(s.buf, s.devH)
		step := s.devH
		if !isBlank(slice) {
			step = s.devH - s.devH*s.overlapPercent/100
		}
		out = append(out, slice)
		s.buf = removeTop(s.buf, step)
	}
	return out
}

// Finish drains any residual buffer shorter than devH rows, aligning it to
// the top of a devW x devH canvas padded with black or white, and returns
// it as the final page. It returns nil if no residual remains.
func (s *Stitcher) Finish() *raster.Frame {
	if s.buf.Height == 0 {
		return nil
	}
	pad := byte(255)
	if s.padBlack {
		pad = 0
	}
	canvas := raster.NewFrame(s.devW, s.devH)
	for i := 0; i < len(canvas.Pix); i += 4 {
		canvas.Pix[i], canvas.Pix[i+1], canvas.Pix[i+2], canvas.Pix[i+3] = pad, pad, pad, 255
	}
	rows := min(s.buf.Height, s.devH)
	copy(canvas.Pix[:rows*s.devW*4], s.buf.Pix[:rows*s.devW*4])
	s.buf.Release()
	s.buf = raster.NewFrame(s.devW, 0)
	return canvas
}

func appendVertically(buf, next *raster.Frame) *raster.Frame {
	out := raster.NewFrame(buf.Width, buf.Height+next.Height)
	copy(out.Pix, buf.Pix)
	copy(out.Pix[len(buf.Pix):], next.Pix)
	buf.Release()
	return out
}

func extractTop(buf *raster.Frame, n int) *raster.Frame {
	return raster.ExtractRegion(buf, 0, 0, buf.Width, n)
}

func removeTop(buf *raster.Frame, n int) *raster.Frame {
	remaining := buf.Height - n
	if remaining <= 0 {
		buf.Release()
		return raster.NewFrame(buf.Width, 0)
	}
	out := raster.ExtractRegion(buf, 0, n, buf.Width, remaining)
	buf.Release()
	return out
}

// isBlank reports whether a slice's luminance standard deviation falls
// below blankStddevThreshold. The slice is assumed already grayscale
// (R==G==B), as produced by internal/filter.
func isBlank(f *raster.Frame) bool {
	n := f.Width * f.Height
	if n == 0 {
		return true
	}
	var sum float64
	for i := 0; i < len(f.Pix); i += 4 {
		sum += float64(f.Pix[i])
	}
	mean := sum / float64(n)

	var sqDiff float64
	for i := 0; i < len(f.Pix); i += 4 {
		d := float64(f.Pix[i]) - mean
		sqDiff += d * d
	}
	variance := sqDiff / float64(n)
	return math.Sqrt(variance) < blankStddevThreshold
}
