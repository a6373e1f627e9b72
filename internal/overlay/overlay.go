// Package overlay multiplies a base buffer's alpha by a named mask.
//
// Masks are loaded from a Source as encoded bytes, decoded once, resampled to
// the base buffer's size when they differ, and cached by (name, size).
// Concurrent requests for the same mask share a single load.
package overlay

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/lfe999/lightcookie/internal/cache"
	"github.com/lfe999/lightcookie/internal/image"
)

// Errors returned by the compositor.
var (
	// ErrCompositeMismatch is returned when a mask cannot be brought to the
	// base buffer's dimensions.
	ErrCompositeMismatch = errors.New("overlay: mask dimensions do not match base")

	// ErrUnknownAsset is returned when the source has no mask under a name.
	ErrUnknownAsset = errors.New("overlay: unknown asset")
)

// Source supplies encoded mask images by name.
type Source interface {
	Asset(name string) ([]byte, error)
}

// maskKey identifies a decoded mask at a particular size.
type maskKey struct {
	name          string
	width, height int
}

// Compositor applies overlay masks. The zero value is not usable; use New.
//
// Thread safety: all methods are safe for concurrent use. Cached masks are
// shared read-only between callers.
type Compositor struct {
	source Source
	masks  *cache.Cache[maskKey, *image.PixelBuffer]
	group  singleflight.Group
	logger atomic.Pointer[slog.Logger]

	// resize is replaceable so tests can force a size mismatch.
	resize func(*image.PixelBuffer, int, int) (*image.PixelBuffer, error)
}

// New creates a compositor reading masks from source and caching up to
// capacity decoded masks.
func New(source Source, capacity int, logger *slog.Logger) *Compositor {
	c := &Compositor{
		source: source,
		masks:  cache.New[maskKey, *image.PixelBuffer](capacity),
		resize: image.Resize,
	}
	c.SetLogger(logger)
	c.masks.OnEvict(func(k maskKey, _ *image.PixelBuffer) {
		c.log().Debug("overlay: mask evicted", "asset", k.name, "width", k.width, "height", k.height)
	})
	return c
}

// SetLogger replaces the compositor's logger. A nil logger discards output.
func (c *Compositor) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	c.logger.Store(l)
}

func (c *Compositor) log() *slog.Logger {
	return c.logger.Load()
}

// Mask returns the named mask at the given size. The returned buffer is
// shared and must not be modified or released.
func (c *Compositor) Mask(name string, width, height int) (*image.PixelBuffer, error) {
	key := maskKey{name: name, width: width, height: height}
	if m, ok := c.masks.Get(key); ok {
		return m, nil
	}

	v, err, _ := c.group.Do(fmt.Sprintf("%s@%dx%d", name, width, height), func() (any, error) {
		return c.masks.GetOrCreate(key, func() (*image.PixelBuffer, error) {
			return c.load(name, width, height)
		})
	})
	if err != nil {
		return nil, err
	}
	return v.(*image.PixelBuffer), nil
}

// load decodes the named mask and resamples it to width x height.
func (c *Compositor) load(name string, width, height int) (*image.PixelBuffer, error) {
	data, err := c.source.Asset(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrUnknownAsset, name, err)
	}
	mask, err := image.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("overlay: %q: %w", name, err)
	}
	if mask.Width() == width && mask.Height() == height {
		return mask, nil
	}

	c.log().Debug("overlay: resampling mask",
		"asset", name,
		"from", fmt.Sprintf("%dx%d", mask.Width(), mask.Height()),
		"to", fmt.Sprintf("%dx%d", width, height))

	resized, err := c.resize(mask, width, height)
	mask.Release()
	if err != nil {
		return nil, fmt.Errorf("overlay: %q: %w", name, err)
	}
	return resized, nil
}

// Composite multiplies base alpha by the named mask's alpha in place.
// RGB samples are untouched. If the mask cannot be matched to the base size
// the base is left unchanged and ErrCompositeMismatch is returned.
func (c *Compositor) Composite(base *image.PixelBuffer, name string) error {
	if base == nil || base.Released() {
		return image.ErrReleased
	}
	mask, err := c.Mask(name, base.Width(), base.Height())
	if err != nil {
		return err
	}
	return Multiply(base, mask)
}

// Multiply sets base.alpha[i] *= mask.alpha[i] for every pixel.
func Multiply(base, mask *image.PixelBuffer) error {
	if !base.SameSize(mask) {
		return fmt.Errorf("%w: base %dx%d, mask %dx%d", ErrCompositeMismatch,
			base.Width(), base.Height(), mask.Width(), mask.Height())
	}
	for i := range base.Len() {
		base.SetAlpha(i, base.Alpha(i)*mask.Alpha(i))
	}
	return nil
}

// Stage binds a compositor to one asset so it can run as a pipeline stage.
type Stage struct {
	Compositor *Compositor
	Asset      string
	StageName  string
}

// Name returns the stage name.
func (s Stage) Name() string {
	return s.StageName
}

// Apply composites the asset onto buf. A size mismatch is logged and the
// buffer passes through unchanged; any other failure aborts the stage.
func (s Stage) Apply(buf *image.PixelBuffer) (*image.PixelBuffer, error) {
	err := s.Compositor.Composite(buf, s.Asset)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, ErrCompositeMismatch):
		s.Compositor.log().Warn("overlay: skipped", "stage", s.StageName, "asset", s.Asset, "error", err)
		return buf, nil
	default:
		return nil, err
	}
}
