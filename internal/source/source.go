// Package source adapts the external collaborators spec.md §6 calls out
// (comic archive, PDF, single image, video frame extractor) into a single
// Source interface producing decoded RGBA frames in natural order, plus
// whatever book metadata each kind can supply.
package source

import (
	"errors"
	"image"

	"github.com/xtconv/xtconv/internal/container"
	"github.com/xtconv/xtconv/internal/raster"
)

// ErrDone is returned by Next once every frame has been produced.
var ErrDone = errors.New("source: no more frames")

// Source produces decoded frames in natural page order.
type Source interface {
	// Next decodes and returns the next frame, or ErrDone when exhausted.
	Next() (*raster.Frame, error)
	// Metadata returns whatever book metadata this source can supply
	// (e.g. ComicInfo.xml for CBZ), or nil if none is available.
	Metadata() *container.Metadata
	Close() error
}

// FrameFromImage converts a decoded image.Image into an RGBA raster.Frame,
// taking the fast path for image.RGBA/NRGBA and falling back to the
// generic At() path for anything else golang.org/x/image hands back.
func FrameFromImage(img image.Image) *raster.Frame {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	f := raster.NewFrame(w, h)

	switch src := img.(type) {
	case *image.RGBA:
		for y := 0; y < h; y++ {
			srcOff := (y) * src.Stride
			dstOff := y * w * 4
			copy(f.Pix[dstOff:dstOff+w*4], src.Pix[srcOff:srcOff+w*4])
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				i := y*src.Stride + x*4
				f.Set(x, y, src.Pix[i], src.Pix[i+1], src.Pix[i+2], src.Pix[i+3])
			}
		}
	default:
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
				f.Set(x, y, byte(r>>8), byte(g>>8), byte(bl>>8), byte(a>>8))
			}
		}
	}
	return f
}
