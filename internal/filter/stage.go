package filter

import (
	"context"
	"fmt"

	"github.com/lfe999/lightcookie/internal/image"
)

// Stage is one step of the alpha pipeline. Apply takes ownership of its input.
// On success the input has either been released or returned as the output;
// on failure the input is still owned by the caller.
type Stage interface {
	Name() string
	Apply(*image.PixelBuffer) (*image.PixelBuffer, error)
}

// StageError reports which stage failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("filter: %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Run applies stages in order. Cancellation is checked between stages.
// On failure the current buffer is released and a *StageError is returned.
func Run(ctx context.Context, buf *image.PixelBuffer, stages ...Stage) (*image.PixelBuffer, error) {
	for _, s := range stages {
		if err := ctx.Err(); err != nil {
			buf.Release()
			return nil, &StageError{Stage: s.Name(), Err: err}
		}
		next, err := s.Apply(buf)
		if err != nil {
			buf.Release()
			return nil, &StageError{Stage: s.Name(), Err: err}
		}
		buf = next
	}
	return buf, nil
}
