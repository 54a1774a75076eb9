package pipeline

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/xtconv/xtconv/internal/dither"
	"github.com/xtconv/xtconv/internal/filter"
	"github.com/xtconv/xtconv/internal/geometry"
	"github.com/xtconv/xtconv/internal/manhwa"
	"github.com/xtconv/xtconv/internal/pack"
	"github.com/xtconv/xtconv/internal/raster"
	"github.com/xtconv/xtconv/internal/xerrors"
)

func depthFor(opt ConversionOptions) dither.Depth {
	if opt.Is2Bit {
		return dither.TwoBit
	}
	return dither.OneBit
}

func padColor(opt ConversionOptions) byte {
	if opt.PadBlack {
		return 0
	}
	return 255
}

// ProcessFrame runs one source frame through the full §4.6 fan-out: crop,
// fused filter, the fixed emission order, dither, pack. stitcher must be
// non-nil when opt.Manhwa is set, and is ignored otherwise. The caller
// owns src and must Release it after this call returns.
func ProcessFrame(src *raster.Frame, opt ConversionOptions, stitcher *manhwa.Stitcher) ([]pack.Page, error) {
	if opt.Manhwa && stitcher == nil {
		return nil, xerrors.Newf(xerrors.KindInternalInvariant, "manhwa mode requires a stitcher")
	}

	crop := geometry.AxisCropRect(src.Width, src.Height, opt.HorizontalMarginPercent, opt.VerticalMarginPercent, opt.Manhwa)
	cropped := raster.ExtractRegion(src, crop.X, crop.Y, crop.Width, crop.Height)
	defer cropped.Release()

	filter.Apply(cropped, filter.Options{Contrast: opt.Contrast, Gamma: opt.Gamma, Invert: opt.Invert})

	devW, devH := opt.Device.Width, opt.Device.Height
	pad := padColor(opt)

	var pending []*raster.Frame

	if opt.SidewaysOverviews && !opt.Manhwa {
		rotated := raster.Rotate(cropped, 90)
		pending = append(pending, raster.ResizeLetterbox(rotated, devW, devH, pad))
		rotated.Release()
	}
	if opt.IncludeOverviews && !opt.Manhwa {
		pending = append(pending, raster.ResizeLetterbox(cropped, devW, devH, pad))
	}

	switch {
	case opt.SourceType == SourceImage && opt.SplitMode == SplitNone && !opt.Manhwa:
		angle := geometry.OrientationAngle(opt.Orientation)
		rotated := raster.Rotate(cropped, angle)
		var scaled *raster.Frame
		switch opt.ImageMode {
		case raster.ModeCover:
			scaled = raster.ResizeCover(rotated, devW, devH)
		case raster.ModeLetterbox:
			scaled = raster.ResizeLetterbox(rotated, devW, devH, pad)
		case raster.ModeFill:
			scaled = raster.ResizeFill(rotated, devW, devH)
		case raster.ModeCrop:
			scaled = raster.ResizeCrop(rotated, devW, devH, pad)
		}
		rotated.Release()
		pending = append(pending, scaled)

	case opt.Manhwa:
		pending = append(pending, stitcher.Append(cropped)...)

	case opt.Orientation == geometry.Portrait:
		pending = append(pending, raster.ResizeLetterbox(cropped, devW, devH, pad))

	default:
		// Landscape. §4.6's "cropW < cropH" split test is evaluated on the
		// rotated dimensions: after rotate(90) swaps width and height, a
		// genuinely landscape-shaped crop (wider than tall) becomes taller
		// than wide, and that's what should trigger a multi-page split.
		rotatedW, rotatedH := crop.Height, crop.Width
		if rotatedW < rotatedH && opt.SplitMode != SplitNone {
			switch opt.SplitMode {
			case SplitOverlap:
				// Segments are laid out along the axis that becomes the
				// "tall page" height once rotated (crop.Width here), per
				// geometry.OverlapSegments' own (w,h) = post-rotation
				// (width,height) convention.
				for _, seg := range geometry.OverlapSegments(crop.Height, crop.Width, devW, devH) {
					pending = append(pending, extractRotateLetterbox(cropped, seg.Y, 0, seg.Height, crop.Height, devW, devH, pad))
				}
			case SplitHalf:
				half := crop.Width / 2
				pending = append(pending, extractRotateLetterbox(cropped, 0, 0, half, crop.Height, devW, devH, pad))
				pending = append(pending, extractRotateLetterbox(cropped, half, 0, crop.Width-half, crop.Height, devW, devH, pad))
			}
		} else {
			rotated := raster.Rotate(cropped, 90)
			pending = append(pending, raster.ResizeLetterbox(rotated, devW, devH, pad))
			rotated.Release()
		}
	}

	pages := make([]pack.Page, len(pending))
	depth := depthFor(opt)
	for i, p := range pending {
		dither.Apply(p, opt.DitherAlgorithm, depth)
		pages[i] = pack.Pack(p, opt.Is2Bit)
		p.Release()
	}
	return pages, nil
}

func extractRotateLetterbox(cropped *raster.Frame, x, y, w, h, devW, devH int, pad byte) *raster.Frame {
	region := raster.ExtractRegion(cropped, x, y, w, h)
	rotated := raster.Rotate(region, 90)
	region.Release()
	out := raster.ResizeLetterbox(rotated, devW, devH, pad)
	rotated.Release()
	return out
}

// FrameJob pairs a source frame with its 0-indexed position in the
// original source order.
type FrameJob struct {
	Frame *raster.Frame
	Index int
}

// FrameResult is one job's outcome, carrying its original index so the
// caller can restore source order after concurrent processing.
type FrameResult struct {
	Index   int
	Pages   []pack.Page
	Mapping PageMapping
	Err     error
}

// RunConcurrent fans jobs out across a bounded worker pool (grounded on
// the same semaphore+WaitGroup+atomic-counter pattern used for directory
// batch jobs elsewhere in this codebase), then returns results reordered
// by source index. Manhwa mode is forced to a single worker regardless of
// workers, since the stitcher carries state across frames and its slicing
// must be strictly sequential.
func RunConcurrent(ctx context.Context, jobs []FrameJob, opt ConversionOptions, workers int) ([]FrameResult, *pack.Page, error) {
	if opt.Manhwa {
		workers = 1
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]FrameResult, len(jobs))
	var stitcher *manhwa.Stitcher
	if opt.Manhwa {
		stitcher = manhwa.NewStitcher(opt.Device.Width, opt.Device.Height, opt.ManhwaOverlapPercent, opt.PadBlack)
	}

	var (
		wg        sync.WaitGroup
		completed atomic.Int64
		cancelled atomic.Bool
	)
	sem := make(chan struct{}, workers)

	cursor := 0
	for _, job := range jobs {
		select {
		case <-ctx.Done():
			cancelled.Store(true)
		default:
		}
		if cancelled.Load() {
			break
		}

		wg.Add(1)
		sem <- struct{}{}
		go func(j FrameJob) {
			defer func() { <-sem; wg.Done() }()

			select {
			case <-ctx.Done():
				results[j.Index] = FrameResult{Index: j.Index, Err: xerrors.Wrap(xerrors.KindCancelled, "frame processing cancelled", ctx.Err())}
				return
			default:
			}

			pages, err := ProcessFrame(j.Frame, opt, stitcher)
			results[j.Index] = FrameResult{Index: j.Index, Pages: pages, Err: err}
			completed.Add(1)
		}(job)

		// Manhwa's shared stitcher state makes true concurrency unsafe;
		// workers is pinned to 1 above, so each iteration runs to
		// completion before the next begins.
		if opt.Manhwa {
			wg.Wait()
		}
		cursor++
	}
	wg.Wait()

	if cancelled.Load() {
		return results[:cursor], nil, xerrors.Newf(xerrors.KindCancelled, "cancelled after %d of %d frames", completed.Load(), len(jobs))
	}

	// Assign sequential page ranges now that every frame's emitted page
	// count is known, in source order.
	start := 1
	for i := range results {
		if results[i].Err != nil {
			continue
		}
		results[i].Mapping = PageMapping{OriginalPage: i + 1, StartPage: start, PageCount: len(results[i].Pages)}
		start += len(results[i].Pages)
	}

	var trailing *pack.Page
	if opt.Manhwa {
		if residual := stitcher.Finish(); residual != nil {
			dither.Apply(residual, opt.DitherAlgorithm, depthFor(opt))
			page := pack.Pack(residual, opt.Is2Bit)
			residual.Release()
			trailing = &page
		}
	}

	return results, trailing, nil
}
