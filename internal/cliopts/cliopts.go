// Package cliopts parses CLI flags (spec.md §6) into a
// pipeline.ConversionOptions, layered on top of internal/config defaults.
package cliopts

import (
	"flag"

	"github.com/xtconv/xtconv/internal/config"
	"github.com/xtconv/xtconv/internal/dither"
	"github.com/xtconv/xtconv/internal/geometry"
	"github.com/xtconv/xtconv/internal/pipeline"
	"github.com/xtconv/xtconv/internal/raster"
	"github.com/xtconv/xtconv/internal/xerrors"
)

// Flags is the parsed, still-stringly-typed CLI surface; Resolve converts
// it into a pipeline.ConversionOptions against a config.Config baseline.
type Flags struct {
	Device            string
	TwoBit            bool
	Dither            string
	Contrast          int
	Gamma             float64
	Invert            bool
	PadBlack          bool
	Orientation       string
	Split             string
	Manhwa            bool
	Overlap           int
	Sideways          bool
	IncludeOverviews  bool
	ImageMode         string
	Fps               float64
	Streamed          bool
	Output            string
}

// Register binds Flags' fields to a flag.FlagSet using the exact flag
// names spec.md §6 lists, defaulted from cfg.
func Register(fs *flag.FlagSet, cfg *config.Config) *Flags {
	f := &Flags{}
	fs.StringVar(&f.Device, "device", cfg.Device.Name, "device geometry: X4 or X3")
	fs.BoolVar(&f.TwoBit, "2bit", cfg.Dither.Is2Bit, "produce XTCH (2-bit) container")
	fs.StringVar(&f.Dither, "dither", cfg.Dither.Algorithm, "dither algorithm")
	fs.IntVar(&f.Contrast, "contrast", cfg.Dither.Contrast, "contrast level: 0,2,4,6,8")
	fs.Float64Var(&f.Gamma, "gamma", cfg.Dither.Gamma, "gamma, clamped to [0.1,3.0]")
	fs.BoolVar(&f.Invert, "invert", cfg.Dither.Invert, "invert before grayscale")
	fs.BoolVar(&f.PadBlack, "pad-black", cfg.Layout.PadBlack, "pad with black instead of white")
	fs.StringVar(&f.Orientation, "orientation", "", "portrait or landscape (default: landscape for comics/pdf, portrait for image/video, per spec.md §6)")
	fs.StringVar(&f.Split, "split", cfg.Layout.SplitMode, "overlap, split, or nosplit")
	fs.BoolVar(&f.Manhwa, "manhwa", cfg.Layout.Manhwa, "enable the manhwa stitcher")
	fs.IntVar(&f.Overlap, "overlap", cfg.Layout.ManhwaOverlapPercent, "manhwa overlap percent: 30,50,75")
	fs.BoolVar(&f.Sideways, "sideways", cfg.Layout.SidewaysOverviews, "emit sideways overview pages")
	fs.BoolVar(&f.IncludeOverviews, "include-overviews", cfg.Layout.IncludeOverviews, "emit letterboxed overview pages")
	fs.StringVar(&f.ImageMode, "image-mode", cfg.Layout.ImageMode, "cover, letterbox, fill, or crop")
	fs.Float64Var(&f.Fps, "fps", 1.0, "video frame rate")
	fs.BoolVar(&f.Streamed, "streamed", false, "use streaming container mode")
	fs.StringVar(&f.Output, "o", "", "output file path")
	return f
}

func deviceFor(name string) (pipeline.Device, error) {
	switch name {
	case "X4", "":
		return pipeline.DeviceX4, nil
	case "X3":
		return pipeline.DeviceX3, nil
	default:
		return pipeline.Device{}, xerrors.Newf(xerrors.KindInvalidOption, "unknown device %q", name)
	}
}

func ditherFor(name string) (dither.Algorithm, error) {
	switch name {
	case "floyd", "":
		return dither.FloydSteinberg, nil
	case "atkinson":
		return dither.Atkinson, nil
	case "stucki":
		return dither.Stucki, nil
	case "zhoufang":
		return dither.ZhouFang, nil
	case "ostromoukhov":
		return dither.Ostromoukhov, nil
	case "sierra-lite":
		return dither.SierraLite, nil
	case "ordered":
		return dither.Ordered, nil
	case "stochastic":
		return dither.Stochastic, nil
	case "none":
		return dither.None, nil
	default:
		return 0, xerrors.Newf(xerrors.KindInvalidOption, "unknown dither algorithm %q", name)
	}
}

func orientationFor(name string) (geometry.Orientation, error) {
	switch name {
	case "landscape":
		return geometry.Landscape, nil
	case "portrait":
		return geometry.Portrait, nil
	default:
		return 0, xerrors.Newf(xerrors.KindInvalidOption, "unknown orientation %q", name)
	}
}

// defaultOrientationFor implements spec.md §6's per-source-type default:
// landscape for paginated comic sources, portrait for single images and
// video frames.
func defaultOrientationFor(st pipeline.SourceType) string {
	switch st {
	case pipeline.SourceImage, pipeline.SourceVideo:
		return "portrait"
	default:
		return "landscape"
	}
}

func splitModeFor(name string) (pipeline.SplitMode, error) {
	switch name {
	case "overlap", "":
		return pipeline.SplitOverlap, nil
	case "split":
		return pipeline.SplitHalf, nil
	case "nosplit":
		return pipeline.SplitNone, nil
	default:
		return 0, xerrors.Newf(xerrors.KindInvalidOption, "unknown split mode %q", name)
	}
}

func imageModeFor(name string) (raster.ImageMode, error) {
	switch name {
	case "cover", "":
		return raster.ModeCover, nil
	case "letterbox":
		return raster.ModeLetterbox, nil
	case "fill":
		return raster.ModeFill, nil
	case "crop":
		return raster.ModeCrop, nil
	default:
		return 0, xerrors.Newf(xerrors.KindInvalidOption, "unknown image mode %q", name)
	}
}

// Resolve converts Flags plus the inferred source type/margins into a
// validated pipeline.ConversionOptions.
func Resolve(f *Flags, sourceType pipeline.SourceType, hMarginPct, vMarginPct float64) (pipeline.ConversionOptions, error) {
	device, err := deviceFor(f.Device)
	if err != nil {
		return pipeline.ConversionOptions{}, err
	}
	algo, err := ditherFor(f.Dither)
	if err != nil {
		return pipeline.ConversionOptions{}, err
	}
	orientationName := f.Orientation
	if orientationName == "" {
		orientationName = defaultOrientationFor(sourceType)
	}
	orientation, err := orientationFor(orientationName)
	if err != nil {
		return pipeline.ConversionOptions{}, err
	}
	split, err := splitModeFor(f.Split)
	if err != nil {
		return pipeline.ConversionOptions{}, err
	}
	imageMode, err := imageModeFor(f.ImageMode)
	if err != nil {
		return pipeline.ConversionOptions{}, err
	}

	opt := pipeline.ConversionOptions{
		Device:                  device,
		SourceType:              sourceType,
		Is2Bit:                  f.TwoBit,
		DitherAlgorithm:         algo,
		Contrast:                f.Contrast,
		Gamma:                   f.Gamma,
		Invert:                  f.Invert,
		PadBlack:                f.PadBlack,
		Orientation:             orientation,
		SplitMode:               split,
		IncludeOverviews:        f.IncludeOverviews,
		SidewaysOverviews:       f.Sideways,
		Manhwa:                  f.Manhwa,
		ManhwaOverlapPercent:    f.Overlap,
		ImageMode:               imageMode,
		VideoFps:                f.Fps,
		HorizontalMarginPercent: hMarginPct,
		VerticalMarginPercent:   vMarginPct,
		Streamed:                f.Streamed,
	}

	if err := opt.Validate(); err != nil {
		return pipeline.ConversionOptions{}, err
	}
	return opt, nil
}
