package lightcookie

import (
	"fmt"
	"io/fs"
	"math"
	"strings"

	"github.com/gogpu/gputypes"
	"golang.org/x/text/cases"
)

// WrapMode is the edge-sampling behavior recorded on a cookie.
type WrapMode uint8

// Wrap modes.
const (
	WrapClamp WrapMode = iota
	WrapMirror
	WrapMirrorOnce
	WrapRepeat
)

var wrapModeNames = [...]string{
	WrapClamp:      "Clamp",
	WrapMirror:     "Mirror",
	WrapMirrorOnce: "MirrorOnce",
	WrapRepeat:     "Repeat",
}

// String returns the wrap mode name.
func (m WrapMode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("WrapMode(%d)", m)
	}
	return wrapModeNames[m]
}

// Valid reports whether m is a known wrap mode.
func (m WrapMode) Valid() bool {
	return int(m) < len(wrapModeNames)
}

// AddressMode returns the sampler address mode for m.
// MirrorOnce has no sampler equivalent and maps to MirrorRepeat.
func (m WrapMode) AddressMode() gputypes.AddressMode {
	switch m {
	case WrapMirror, WrapMirrorOnce:
		return gputypes.AddressModeMirrorRepeat
	case WrapRepeat:
		return gputypes.AddressModeRepeat
	default:
		return gputypes.AddressModeClampToEdge
	}
}

// foldKey normalizes an enum name for case-insensitive matching.
// A Caser is stateful, so each call gets its own.
func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// ParseWrapMode parses a wrap mode name case-insensitively.
// Unknown names yield WrapClamp and ok == false.
func ParseWrapMode(s string) (mode WrapMode, ok bool) {
	key := foldKey(s)
	for i, name := range wrapModeNames {
		if foldKey(name) == key {
			return WrapMode(i), true
		}
	}
	return WrapClamp, false
}

// LightShape is the category of light a cookie is produced for.
type LightShape uint8

// Light shapes. Directional, Spot and Area are projective and take a 2D
// cookie; Point is omnidirectional and takes a cubemap.
const (
	Directional LightShape = iota
	Spot
	Area
	Point
)

var lightShapeNames = [...]string{
	Directional: "Directional",
	Spot:        "Spot",
	Area:        "Area",
	Point:       "Point",
}

// String returns the shape name.
func (s LightShape) String() string {
	if !s.Valid() {
		return fmt.Sprintf("LightShape(%d)", s)
	}
	return lightShapeNames[s]
}

// Valid reports whether s is a known light shape.
func (s LightShape) Valid() bool {
	return int(s) < len(lightShapeNames)
}

// IsProjective reports whether s consumes a single 2D cookie.
func (s LightShape) IsProjective() bool {
	return s.Valid() && s != Point
}

// ParseLightShape parses a light shape name case-insensitively.
// "omni" is accepted as an alias for Point.
func ParseLightShape(s string) (LightShape, error) {
	key := foldKey(s)
	if key == "omni" {
		return Point, nil
	}
	for i, name := range lightShapeNames {
		if foldKey(name) == key {
			return LightShape(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown light shape %q", ErrValidation, s)
}

// Option limits.
const (
	MinBrightness = -1
	MaxBrightness = 1
	MinScale      = 0.01
	MaxScale      = 5
)

// OptionSet is the per-invocation snapshot of cookie options.
// It is a plain value; copies are independent.
type OptionSet struct {
	// GrayscaleToAlpha replaces alpha with the pixel's luma.
	GrayscaleToAlpha bool
	// Invert replaces alpha with 1 - alpha.
	Invert bool
	// Brightness in [-1,1] remaps alpha; 0 disables the stage.
	Brightness float32
	// AddBorder multiplies alpha by the black-border overlay.
	AddBorder bool
	// AddVignette multiplies alpha by the vignette-large-soft overlay.
	AddVignette bool

	// WrapMode and Scale are recorded on the resource for the renderer.
	WrapMode WrapMode
	Scale    float32
}

// DefaultOptions returns options with every stage disabled, Clamp wrapping
// and unit scale.
func DefaultOptions() OptionSet {
	return OptionSet{WrapMode: WrapClamp, Scale: 1}
}

// Validate checks every field against its allowed range.
func (o OptionSet) Validate() error {
	if o.Brightness < MinBrightness || o.Brightness > MaxBrightness || math.IsNaN(float64(o.Brightness)) {
		return fmt.Errorf("%w: brightness %v outside [%d,%d]", ErrValidation, o.Brightness, MinBrightness, MaxBrightness)
	}
	if o.Scale < MinScale || o.Scale > MaxScale || math.IsNaN(float64(o.Scale)) {
		return fmt.Errorf("%w: scale %v outside [%v,%v]", ErrValidation, o.Scale, MinScale, MaxScale)
	}
	if !o.WrapMode.Valid() {
		return fmt.Errorf("%w: unknown wrap mode %d", ErrValidation, o.WrapMode)
	}
	return nil
}

// Option configures a Light during creation.
//
// Example:
//
//	light := lightcookie.NewLight(
//	    lightcookie.WithReader(os.DirFS("cookies")),
//	    lightcookie.WithBinder(binder),
//	)
type Option func(*lightOptions)

// lightOptions holds optional configuration for Light creation.
type lightOptions struct {
	reader         fs.FS
	assets         AssetSource
	binder         Binder
	computeWorkers int
	maskCacheSize  int
}

func defaultLightOptions() lightOptions {
	return lightOptions{
		reader:         nil, // paths are read from the OS filesystem
		assets:         nil, // built-in masks
		binder:         nil, // no renderer binding
		computeWorkers: 1,
		maskCacheSize:  DefaultMaskCacheSize,
	}
}

// WithReader makes the light read cookie paths from fsys instead of the
// OS filesystem. Paths must then be valid fs.FS paths.
func WithReader(fsys fs.FS) Option {
	return func(o *lightOptions) {
		o.reader = fsys
	}
}

// WithAssets sets the source of the overlay masks.
func WithAssets(src AssetSource) Option {
	return func(o *lightOptions) {
		o.assets = src
	}
}

// WithBinder sets the renderer binding that receives installed cookies.
func WithBinder(b Binder) Option {
	return func(o *lightOptions) {
		o.binder = b
	}
}

// WithComputePool sets the number of workers running asynchronous produces.
// Values below 1 use GOMAXPROCS.
func WithComputePool(workers int) Option {
	return func(o *lightOptions) {
		o.computeWorkers = workers
	}
}

// WithMaskCacheSize sets how many resampled overlay masks are kept.
func WithMaskCacheSize(n int) Option {
	return func(o *lightOptions) {
		if n > 0 {
			o.maskCacheSize = n
		}
	}
}
