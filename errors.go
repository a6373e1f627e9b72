package lightcookie

import (
	"context"
	"errors"
	"io/fs"
	"strconv"

	"github.com/lfe999/lightcookie/assets"
	"github.com/lfe999/lightcookie/internal/cubemap"
	"github.com/lfe999/lightcookie/internal/image"
	"github.com/lfe999/lightcookie/internal/overlay"
	"github.com/lfe999/lightcookie/internal/parallel"
)

// Error kinds. Every error returned by Process and Light carries one of these
// as its Kind, or the context error when the caller's context ended.
var (
	// ErrIO means the input bytes or an overlay asset could not be read.
	ErrIO = errors.New("lightcookie: i/o error")

	// ErrDecode means the bytes are not a supported image encoding.
	ErrDecode = errors.New("lightcookie: decode error")

	// ErrValidation means an option or a dimension precondition was violated.
	ErrValidation = errors.New("lightcookie: validation error")

	// ErrUnsupportedAspectRatio means a point light atlas matches no cubemap layout.
	ErrUnsupportedAspectRatio = errors.New("lightcookie: unsupported aspect ratio")

	// ErrCompositeMismatch means an overlay could not be sized to the base.
	// The pipeline logs and skips this case, so it is only seen from
	// lower-level calls.
	ErrCompositeMismatch = errors.New("lightcookie: composite mismatch")

	// ErrSuperseded means a newer produce on the same light replaced this one.
	ErrSuperseded = errors.New("lightcookie: superseded")

	// ErrClosed means the light has been closed.
	ErrClosed = errors.New("lightcookie: light closed")
)

// Stage names the pipeline step an error came from.
type Stage string

// Pipeline stages, in execution order.
const (
	StageValidate  Stage = "validate"
	StageRead      Stage = "read"
	StageDecode    Stage = "decode"
	StageGrayscale Stage = "grayscale-to-alpha"
	StageInvert    Stage = "invert"
	StageBright    Stage = "brightness"
	StageBorder    Stage = "black-border"
	StageVignette  Stage = "vignette"
	StageCubemap   Stage = "cubemap"
	StageInstall   Stage = "install"
)

// Error describes a failed produce: which stage failed, for which path, and why.
type Error struct {
	Kind  error
	Stage Stage
	Path  string
	Err   error
}

func (e *Error) Error() string {
	msg := "lightcookie: " + string(e.Stage) + " failed"
	if e.Path != "" {
		msg += " for " + strconv.Quote(e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the kind and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// newError wraps err with its stage and a kind derived from the cause.
// An *Error is returned unchanged apart from a missing path being filled in.
func newError(stage Stage, path string, err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		if e.Path == "" {
			e.Path = path
		}
		return e
	}
	return &Error{Kind: classify(stage, err), Stage: stage, Path: path, Err: err}
}

// classify maps an internal error onto one of the kind sentinels.
func classify(stage Stage, err error) error {
	var ratioErr *cubemap.UnsupportedAspectRatioError
	switch {
	case errors.Is(err, ErrSuperseded):
		return ErrSuperseded
	case errors.Is(err, parallel.ErrClosed), errors.Is(err, ErrClosed):
		return ErrClosed
	case errors.Is(err, context.Canceled):
		return context.Canceled
	case errors.Is(err, context.DeadlineExceeded):
		return context.DeadlineExceeded
	case errors.As(err, &ratioErr):
		return ErrUnsupportedAspectRatio
	case errors.Is(err, overlay.ErrCompositeMismatch):
		return ErrCompositeMismatch
	case errors.Is(err, image.ErrDecode), errors.Is(err, image.ErrEmptyData):
		return ErrDecode
	case errors.Is(err, overlay.ErrUnknownAsset), errors.Is(err, assets.ErrNotFound),
		errors.Is(err, fs.ErrNotExist), errors.Is(err, fs.ErrPermission):
		return ErrIO
	case errors.Is(err, image.ErrInvalidDimensions), errors.Is(err, ErrValidation):
		return ErrValidation
	}

	switch stage {
	case StageRead, StageInstall:
		return ErrIO
	case StageDecode:
		return ErrDecode
	default:
		return ErrValidation
	}
}
