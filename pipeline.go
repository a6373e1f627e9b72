package lightcookie

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lfe999/lightcookie/assets"
	"github.com/lfe999/lightcookie/internal/cubemap"
	"github.com/lfe999/lightcookie/internal/filter"
	"github.com/lfe999/lightcookie/internal/image"
	"github.com/lfe999/lightcookie/internal/overlay"
)

// DefaultMaskCacheSize is the number of resampled overlay masks a pipeline keeps.
const DefaultMaskCacheSize = 16

// AssetSource supplies the encoded overlay masks ("black-border" and
// "vignette-large-soft") by name.
type AssetSource interface {
	Asset(name string) ([]byte, error)
}

// Pipeline turns encoded image bytes into cookie resources.
// It holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	compositor *overlay.Compositor
	projector  *cubemap.Projector
}

// NewPipeline creates a pipeline reading overlay masks from src.
// A nil src uses the built-in masks. cacheSize bounds the mask cache;
// values below 1 use DefaultMaskCacheSize.
func NewPipeline(src AssetSource, cacheSize int) *Pipeline {
	if src == nil {
		src = assets.Builtin()
	}
	if cacheSize < 1 {
		cacheSize = DefaultMaskCacheSize
	}
	return &Pipeline{
		compositor: overlay.New(src, cacheSize, Logger()),
		projector:  cubemap.NewProjector(),
	}
}

var (
	defaultPipelineCreated atomic.Bool
	defaultPipeline        = sync.OnceValue(func() *Pipeline {
		defer defaultPipelineCreated.Store(true)
		return NewPipeline(nil, DefaultMaskCacheSize)
	})
)

// Process runs the shared default pipeline. See Pipeline.Process.
func Process(ctx context.Context, data []byte, shape LightShape, opts OptionSet) (*CookieResource, error) {
	return defaultPipeline().Process(ctx, data, shape, opts)
}

// stages returns the enabled alpha stages in their fixed order:
// grayscale-to-alpha, invert, brightness, black-border, vignette.
// Overlays apply to projective shapes only.
func (p *Pipeline) stages(shape LightShape, opts OptionSet) []filter.Stage {
	var stages []filter.Stage
	if opts.GrayscaleToAlpha {
		stages = append(stages, filter.GrayscaleToAlpha())
	}
	if opts.Invert {
		stages = append(stages, filter.Invert())
	}
	if opts.Brightness != 0 {
		stages = append(stages, filter.Brightness(opts.Brightness))
	}
	if !shape.IsProjective() {
		return stages
	}
	if opts.AddBorder {
		stages = append(stages, overlay.Stage{Compositor: p.compositor, Asset: assets.BlackBorder, StageName: string(StageBorder)})
	}
	if opts.AddVignette {
		stages = append(stages, overlay.Stage{Compositor: p.compositor, Asset: assets.VignetteLargeSoft, StageName: string(StageVignette)})
	}
	return stages
}

// Process decodes data, runs the enabled alpha stages and, for Point lights,
// unfolds the result into six cube faces.
//
// The same data, shape and options always produce bit-identical pixels.
// On failure no buffers remain allocated and the error is an *Error.
func (p *Pipeline) Process(ctx context.Context, data []byte, shape LightShape, opts OptionSet) (*CookieResource, error) {
	if !shape.Valid() {
		return nil, &Error{Kind: ErrValidation, Stage: StageValidate, Err: errors.New("unknown light shape " + shape.String())}
	}
	if err := opts.Validate(); err != nil {
		return nil, newError(StageValidate, "", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, newError(StageDecode, "", err)
	}

	log := Logger()
	start := time.Now()

	buf, err := image.Decode(data)
	if err != nil {
		return nil, newError(StageDecode, "", err)
	}
	log.Debug("lightcookie: decoded", "width", buf.Width(), "height", buf.Height(), "elapsed", time.Since(start))

	buf, err = filter.Run(ctx, buf, p.stages(shape, opts)...)
	if err != nil {
		var se *filter.StageError
		if errors.As(err, &se) {
			return nil, newError(Stage(se.Stage), "", se.Err)
		}
		return nil, newError(StageValidate, "", err)
	}

	if shape.IsProjective() {
		log.Debug("lightcookie: processed", "shape", shape, "elapsed", time.Since(start))
		return newImageResource(buf, opts), nil
	}

	if err := ctx.Err(); err != nil {
		buf.Release()
		return nil, newError(StageCubemap, "", err)
	}
	atlasWidth := buf.Width()
	faces, layout, err := p.projector.Project(buf)
	buf.Release()
	if err != nil {
		return nil, newError(StageCubemap, "", err)
	}
	log.Debug("lightcookie: processed", "shape", shape, "layout", layout.Name,
		"face", layout.SquareSize(atlasWidth), "elapsed", time.Since(start))
	return newCubeResource(faces, layout.Name, opts), nil
}
