package source

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/xtconv/xtconv/internal/container"
	"github.com/xtconv/xtconv/internal/raster"
	"github.com/xtconv/xtconv/internal/xerrors"
)

func init() {
	// golang.org/x/image ships decode-only codecs that, unlike the stdlib
	// image/* packages, don't self-register; wiring them through
	// image.RegisterFormat here is what lets a plain image.Decode handle
	// comic-archive pages saved as webp/bmp/tiff.
	image.RegisterFormat("webp", "RIFF????WEBP", webp.Decode, webp.DecodeConfig)
	image.RegisterFormat("bmp", "BM", bmp.Decode, bmp.DecodeConfig)
	image.RegisterFormat("tiff", "II*\x00", tiff.Decode, tiff.DecodeConfig)
	image.RegisterFormat("tiff", "MM\x00*", tiff.Decode, tiff.DecodeConfig)
}

// ImageSource is a single-image source: exactly one frame.
type ImageSource struct {
	r      io.ReadCloser
	served bool
}

// NewImageSource wraps a single already-open image stream.
func NewImageSource(r io.ReadCloser) *ImageSource {
	return &ImageSource{r: r}
}

func (s *ImageSource) Next() (*raster.Frame, error) {
	if s.served {
		return nil, ErrDone
	}
	s.served = true
	img, _, err := image.Decode(s.r)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindFrameDecodeFailure, "decoding image", err)
	}
	return FrameFromImage(img), nil
}

func (s *ImageSource) Metadata() *container.Metadata { return nil }

func (s *ImageSource) Close() error { return s.r.Close() }
