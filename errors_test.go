package lightcookie

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lfe999/lightcookie/internal/cubemap"
	"github.com/lfe999/lightcookie/internal/image"
	"github.com/lfe999/lightcookie/internal/overlay"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		stage Stage
		err   error
		want  error
	}{
		{"decode", StageDecode, fmt.Errorf("%w: bad", image.ErrDecode), ErrDecode},
		{"empty", StageDecode, image.ErrEmptyData, ErrDecode},
		{"ratio", StageCubemap, &cubemap.UnsupportedAspectRatioError{Width: 5, Height: 2, Ratio: cubemap.Ratio{W: 5, H: 2}}, ErrUnsupportedAspectRatio},
		{"mismatch", StageBorder, overlay.ErrCompositeMismatch, ErrCompositeMismatch},
		{"missing asset", StageVignette, overlay.ErrUnknownAsset, ErrIO},
		{"missing file", StageRead, &fs.PathError{Op: "open", Path: "x", Err: fs.ErrNotExist}, ErrIO},
		{"dimensions", StageDecode, image.ErrInvalidDimensions, ErrValidation},
		{"canceled", StageInvert, context.Canceled, context.Canceled},
		{"deadline", StageDecode, context.DeadlineExceeded, context.DeadlineExceeded},
		{"superseded", StageInstall, ErrSuperseded, ErrSuperseded},
		{"unknown read", StageRead, errors.New("disk on fire"), ErrIO},
		{"unknown install", StageInstall, errors.New("gpu lost"), ErrIO},
		{"unknown stage", StageBright, errors.New("odd"), ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classify(tt.stage, tt.err))
		})
	}
}

func TestError_IsAndAs(t *testing.T) {
	cause := &cubemap.UnsupportedAspectRatioError{Width: 160, Height: 64, Ratio: cubemap.Ratio{W: 5, H: 2}}
	err := error(newError(StageCubemap, "atlas.png", cause))

	assert.ErrorIs(t, err, ErrUnsupportedAspectRatio)
	assert.NotErrorIs(t, err, ErrDecode)

	var ratioErr *cubemap.UnsupportedAspectRatioError
	assert.ErrorAs(t, err, &ratioErr)
	assert.Equal(t, 160, ratioErr.Width)

	var e *Error
	assert.ErrorAs(t, err, &e)
	assert.Equal(t, StageCubemap, e.Stage)
	assert.Equal(t, `lightcookie: cubemap failed for "atlas.png": cubemap: unsupported atlas aspect ratio 5:2 (160x64)`, err.Error())
}

func TestNewError_KeepsExisting(t *testing.T) {
	inner := &Error{Kind: ErrDecode, Stage: StageDecode, Err: image.ErrDecode}
	got := newError(StageRead, "cookie.png", fmt.Errorf("wrapped: %w", inner))

	assert.Same(t, inner, got)
	assert.Equal(t, StageDecode, got.Stage)
	assert.Equal(t, "cookie.png", got.Path)
}

func TestError_MessageWithoutPath(t *testing.T) {
	err := &Error{Kind: ErrValidation, Stage: StageValidate, Err: errors.New("scale 0")}
	assert.Equal(t, "lightcookie: validate failed: scale 0", err.Error())
}
