package pack

import (
	"github.com/xtconv/xtconv/internal/raster"
	"github.com/xtconv/xtconv/internal/xerrors"
)

// Page is a packed, device-sized page ready for container assembly
// (spec.md §3 ProcessedPage), plus an optional preview raster for
// telemetry (never required by the codec).
type Page struct {
	Width, Height int
	Chunk         []byte // header + payload, per spec.md §4.5
	Preview       *raster.Frame
}

// Pack dithers-and-packs a device-sized grayscale frame into a Page. The
// frame must already have its final device dimensions and be fully
// dithered (internal/dither.Apply).
func Pack(f *raster.Frame, is2bit bool) Page {
	var chunk []byte
	if is2bit {
		chunk = PackXTH(f)
	} else {
		chunk = PackXTG(f)
	}
	return Page{Width: f.Width, Height: f.Height, Chunk: chunk}
}

// Unpack reverses Pack, decoding a full chunk (header + payload) back
// into an RGBA frame.
func Unpack(chunk []byte) (*raster.Frame, error) {
	hdr, payload, err := ParseHeader(chunk)
	if err != nil {
		return nil, err
	}
	if hdr.Is2Bit() {
		return UnpackXTH(hdr, payload), nil
	}
	return UnpackXTG(hdr, payload), nil
}

// ValidateDimensions enforces spec.md §3's invariant that every packed
// page's declared dimensions equal the device dimensions.
func ValidateDimensions(p Page, devW, devH int) error {
	if p.Width != devW || p.Height != devH {
		return xerrors.Newf(xerrors.KindInternalInvariant,
			"packed page is %dx%d, device is %dx%d", p.Width, p.Height, devW, devH)
	}
	return nil
}
