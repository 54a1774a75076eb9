// Package pipeline implements the per-frame fan-out orchestrator of
// spec.md §4.6: crop, filter, the fixed emission order (overviews,
// single-image scaling, manhwa slicing, or landscape split), dither, and
// pack, plus the bounded worker pool that runs independent frames
// concurrently while preserving source order.
package pipeline

import (
	"github.com/xtconv/xtconv/internal/dither"
	"github.com/xtconv/xtconv/internal/geometry"
	"github.com/xtconv/xtconv/internal/raster"
	"github.com/xtconv/xtconv/internal/xerrors"
)

// Device is a fixed e-ink panel geometry.
type Device struct {
	Width, Height int
}

var (
	DeviceX4 = Device{Width: 480, Height: 800}
	DeviceX3 = Device{Width: 528, Height: 792}
)

// SourceType identifies the shape of the upstream collaborator feeding
// frames into the pipeline; it changes fan-out behavior (§4.6's
// single-image branch is gated on SourceType == Image).
type SourceType int

const (
	SourceCBZ SourceType = iota
	SourcePDF
	SourceImage
	SourceVideo
)

// SplitMode controls landscape page handling when orientation is
// landscape and the cropped page is taller than it is wide post-rotation.
type SplitMode int

const (
	SplitOverlap SplitMode = iota
	SplitHalf
	SplitNone
)

// ConversionOptions is the immutable value object describing one
// conversion run, matching spec.md §3's ConversionOptions entity
// one field at a time.
type ConversionOptions struct {
	Device     Device
	SourceType SourceType
	Is2Bit     bool

	DitherAlgorithm dither.Algorithm
	Contrast        int     // one of 0, 2, 4, 6, 8
	Gamma           float64 // [0.1, 3.0]
	Invert          bool
	PadBlack        bool

	Orientation geometry.Orientation
	SplitMode   SplitMode

	IncludeOverviews  bool
	SidewaysOverviews bool

	Manhwa               bool
	ManhwaOverlapPercent int // one of 30, 50, 75

	ImageMode raster.ImageMode
	VideoFps  float64

	HorizontalMarginPercent float64 // [0, 20]
	VerticalMarginPercent   float64 // [0, 20]

	Streamed bool
}

// Validate enforces the enumerated/clamped ranges spec.md §3 assigns to
// ConversionOptions fields, returning xerrors.InvalidOption on the first
// violation found.
func (o ConversionOptions) Validate() error {
	if o.Device != DeviceX4 && o.Device != DeviceX3 {
		return xerrors.Newf(xerrors.KindInvalidOption, "device must be X4 (480x800) or X3 (528x792), got %+v", o.Device)
	}
	switch o.Contrast {
	case 0, 2, 4, 6, 8:
	default:
		return xerrors.Newf(xerrors.KindInvalidOption, "contrast must be one of 0,2,4,6,8, got %d", o.Contrast)
	}
	if o.Gamma < 0.1 || o.Gamma > 3.0 {
		return xerrors.Newf(xerrors.KindInvalidOption, "gamma must be in [0.1, 3.0], got %f", o.Gamma)
	}
	if o.Manhwa {
		switch o.ManhwaOverlapPercent {
		case 30, 50, 75:
		default:
			return xerrors.Newf(xerrors.KindInvalidOption, "manhwa overlap must be one of 30,50,75, got %d", o.ManhwaOverlapPercent)
		}
	}
	if o.HorizontalMarginPercent < 0 || o.HorizontalMarginPercent > 20 {
		return xerrors.Newf(xerrors.KindInvalidOption, "horizontal margin must be in [0,20], got %f", o.HorizontalMarginPercent)
	}
	if o.VerticalMarginPercent < 0 || o.VerticalMarginPercent > 20 {
		return xerrors.Newf(xerrors.KindInvalidOption, "vertical margin must be in [0,20], got %f", o.VerticalMarginPercent)
	}
	if o.SourceType == SourceVideo && o.VideoFps <= 0 {
		return xerrors.Newf(xerrors.KindInvalidOption, "video fps must be positive, got %f", o.VideoFps)
	}
	return nil
}
