// Package xerrors defines the error taxonomy shared by every stage of the
// conversion pipeline, from option validation through container assembly.
package xerrors

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies which bucket of the taxonomy an error belongs to. The CLI
// maps a Kind to a process exit code; callers elsewhere should match on the
// sentinel values below with errors.Is, not on Kind directly.
type Kind int

const (
	// KindInvalidOption means an option value fell outside its enumerated
	// or clamped range.
	KindInvalidOption Kind = iota
	// KindFrameDecodeFailure means a source produced no frame, or a
	// malformed one.
	KindFrameDecodeFailure
	// KindMalformedContainer means a container file's header, declared
	// sizes, or index entries are inconsistent with its actual bytes.
	KindMalformedContainer
	// KindMalformedChunk means a single page chunk's header or length
	// doesn't match its declared payload.
	KindMalformedChunk
	// KindIoFailure means a read or write against the backing store
	// failed.
	KindIoFailure
	// KindCancelled means the caller's cancellation token fired.
	KindCancelled
	// KindResourceExhausted means an allocation failed after one retry.
	KindResourceExhausted
	// KindInternalInvariant means a container invariant (§3) was about to
	// be violated; always a programming bug, never user-caused.
	KindInternalInvariant
)

func (k Kind) String() string {
	switch k {
	case KindInvalidOption:
		return "InvalidOption"
	case KindFrameDecodeFailure:
		return "FrameDecodeFailure"
	case KindMalformedContainer:
		return "MalformedContainer"
	case KindMalformedChunk:
		return "MalformedChunk"
	case KindIoFailure:
		return "IoFailure"
	case KindCancelled:
		return "Cancelled"
	case KindResourceExhausted:
		return "ResourceExhausted"
	case KindInternalInvariant:
		return "InternalInvariant"
	default:
		return "Unknown"
	}
}

// Error is a taxonomy-tagged error. It wraps an underlying cause (often
// produced by github.com/pkg/errors so a stack trace survives) with the
// Kind the CLI and callers switch on.
type Error struct {
	Kind    Kind
	Context string
	Cause   error
}

func (e *Error) Error() string {
	if e.Context == "" {
		return fmt.Sprintf("%s: %v", e.Kind, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", e.Kind, e.Context, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }

// Is supports errors.Is(err, xerrors.InvalidOption) style sentinel checks:
// any *Error with a matching Kind is considered equal to the zero-value
// sentinel of that Kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Sentinels usable with errors.Is(err, xerrors.InvalidOption).
var (
	InvalidOption      = &Error{Kind: KindInvalidOption}
	FrameDecodeFailure = &Error{Kind: KindFrameDecodeFailure}
	MalformedContainer = &Error{Kind: KindMalformedContainer}
	MalformedChunk     = &Error{Kind: KindMalformedChunk}
	IoFailure          = &Error{Kind: KindIoFailure}
	Cancelled          = &Error{Kind: KindCancelled}
	ResourceExhausted  = &Error{Kind: KindResourceExhausted}
	InternalInvariant  = &Error{Kind: KindInternalInvariant}
)

// Wrap attaches kind and context to cause, preserving a stack trace via
// github.com/pkg/errors when cause doesn't already carry one.
func Wrap(kind Kind, context string, cause error) error {
	if cause == nil {
		return nil
	}
	if _, ok := cause.(stackTracer); !ok {
		cause = errors.WithStack(cause)
	}
	return &Error{Kind: kind, Context: context, Cause: cause}
}

// Newf builds a taxonomy error directly from a format string, with a stack
// trace attached at the call site.
func Newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Cause: errors.Errorf(format, args...)}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}
