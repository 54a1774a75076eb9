package source

import (
	"math"

	"github.com/xtconv/xtconv/internal/container"
	"github.com/xtconv/xtconv/internal/raster"
	"github.com/xtconv/xtconv/internal/xerrors"
)

// FrameSampler returns the frame sampled at timestamp t (seconds) into the
// video. Demuxing/decoding is an external collaborator (spec.md §6); this
// package only owns the sample-count arithmetic and ordering.
type FrameSampler func(t float64) (*raster.Frame, error)

// VideoSource samples durationSec of video at fps, producing
// max(1, floor(durationSec*fps)) frames in timestamp order.
type VideoSource struct {
	sample FrameSampler
	fps    float64
	total  int
	next   int
}

// OpenVideo computes the sample count per spec.md §6 and returns a
// VideoSource that calls sample for each timestamp in order.
func OpenVideo(durationSec, fps float64, sample FrameSampler) (*VideoSource, error) {
	if fps <= 0 {
		return nil, xerrors.Newf(xerrors.KindInvalidOption, "fps must be positive, got %f", fps)
	}
	total := int(math.Floor(durationSec * fps))
	if total < 1 {
		total = 1
	}
	return &VideoSource{sample: sample, fps: fps, total: total}, nil
}

func (s *VideoSource) Next() (*raster.Frame, error) {
	if s.next >= s.total {
		return nil, ErrDone
	}
	t := float64(s.next) / s.fps
	f, err := s.sample(t)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.KindFrameDecodeFailure, "sampling video frame", err)
	}
	s.next++
	return f, nil
}

func (s *VideoSource) Metadata() *container.Metadata { return nil }

func (s *VideoSource) Close() error { return nil }

// TotalFrames reports the sample count computed by OpenVideo.
func (s *VideoSource) TotalFrames() int { return s.total }
