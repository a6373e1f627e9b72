package lightcookie

import (
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"github.com/google/uuid"

	"github.com/lfe999/lightcookie/internal/cubemap"
	"github.com/lfe999/lightcookie/internal/image"
)

// ErrReleased is returned when a released resource is used.
var ErrReleased = errors.New("lightcookie: resource released")

// Face identifies one side of a cubemap cookie.
type Face = cubemap.Face

// Cube faces.
const (
	FacePosX = cubemap.FacePosX
	FaceNegX = cubemap.FaceNegX
	FacePosY = cubemap.FacePosY
	FaceNegY = cubemap.FaceNegY
	FacePosZ = cubemap.FacePosZ
	FaceNegZ = cubemap.FaceNegZ
)

// AllFaces lists the cube faces in layer order.
var AllFaces = cubemap.AllFaces

// Dimension tells whether a cookie is a single texture or a cubemap.
type Dimension uint8

// Cookie dimensions.
const (
	Dimension2D Dimension = iota
	DimensionCube
)

// String returns "2D" or "Cube".
func (d Dimension) String() string {
	switch d {
	case Dimension2D:
		return "2D"
	case DimensionCube:
		return "Cube"
	default:
		return fmt.Sprintf("Dimension(%d)", d)
	}
}

// CookieResource is a finished cookie: one 2D buffer or six cube faces,
// plus the wrap mode and scale the renderer should apply.
//
// A resource owns its pixel buffers until Release. Accessors return copies.
// A resource installed on a Light is released when the light replaces or
// clears it; callers must not read it after that.
type CookieResource struct {
	id        uuid.UUID
	dimension Dimension
	scale     float32
	wrapMode  atomic.Uint32
	layout    string

	image *image.PixelBuffer
	faces *cubemap.Faces

	released atomic.Bool
}

func newImageResource(buf *image.PixelBuffer, opts OptionSet) *CookieResource {
	r := &CookieResource{
		id:        uuid.New(),
		dimension: Dimension2D,
		scale:     opts.Scale,
		image:     buf,
	}
	r.wrapMode.Store(uint32(opts.WrapMode))
	return r
}

func newCubeResource(faces *cubemap.Faces, layout string, opts OptionSet) *CookieResource {
	r := &CookieResource{
		id:        uuid.New(),
		dimension: DimensionCube,
		scale:     opts.Scale,
		layout:    layout,
		faces:     faces,
	}
	r.wrapMode.Store(uint32(opts.WrapMode))
	return r
}

// ID uniquely identifies this resource.
func (r *CookieResource) ID() uuid.UUID { return r.id }

// Dimension reports whether the cookie is 2D or a cubemap.
func (r *CookieResource) Dimension() Dimension { return r.dimension }

// Scale returns the cookie scale recorded from the options.
func (r *CookieResource) Scale() float32 { return r.scale }

// WrapMode returns the current wrap mode.
func (r *CookieResource) WrapMode() WrapMode { return WrapMode(r.wrapMode.Load()) }

func (r *CookieResource) setWrapMode(m WrapMode) { r.wrapMode.Store(uint32(m)) }

// Layout names the atlas layout a cubemap was unfolded from.
// It is empty for 2D cookies.
func (r *CookieResource) Layout() string { return r.layout }

// Width returns the texture width; for cubemaps, the face edge length.
func (r *CookieResource) Width() int {
	if b := r.first(); b != nil {
		return b.Width()
	}
	return 0
}

// Height returns the texture height; for cubemaps, the face edge length.
func (r *CookieResource) Height() int {
	if b := r.first(); b != nil {
		return b.Height()
	}
	return 0
}

func (r *CookieResource) first() *image.PixelBuffer {
	if r.released.Load() {
		return nil
	}
	if r.dimension == DimensionCube {
		return r.faces.Get(FacePosX)
	}
	return r.image
}

// buffer returns the 2D buffer, or an error for released or cube resources.
func (r *CookieResource) buffer() (*image.PixelBuffer, error) {
	if r.released.Load() {
		return nil, ErrReleased
	}
	if r.dimension != Dimension2D {
		return nil, fmt.Errorf("%w: cubemap cookie has no single image", ErrValidation)
	}
	return r.image, nil
}

// face returns one cube face buffer.
func (r *CookieResource) face(f Face) (*image.PixelBuffer, error) {
	if r.released.Load() {
		return nil, ErrReleased
	}
	if r.dimension != DimensionCube {
		return nil, fmt.Errorf("%w: 2D cookie has no faces", ErrValidation)
	}
	if f >= cubemap.FaceCount {
		return nil, fmt.Errorf("%w: unknown face %d", ErrValidation, f)
	}
	return r.faces.Get(f), nil
}

// Pixels returns a copy of the 2D cookie as float RGBA samples in [0,1],
// four per pixel, row-major.
func (r *CookieResource) Pixels() ([]float32, error) {
	b, err := r.buffer()
	if err != nil {
		return nil, err
	}
	return append([]float32(nil), b.Pix()...), nil
}

// FacePixels returns a copy of one cube face as float RGBA samples.
func (r *CookieResource) FacePixels(f Face) ([]float32, error) {
	b, err := r.face(f)
	if err != nil {
		return nil, err
	}
	return append([]float32(nil), b.Pix()...), nil
}

// RGBA8 returns tightly packed 8-bit RGBA upload data. Cubemaps return the
// six faces concatenated in layer order.
func (r *CookieResource) RGBA8() ([]byte, error) {
	if r.dimension == Dimension2D {
		b, err := r.buffer()
		if err != nil {
			return nil, err
		}
		return b.RGBA8(), nil
	}

	var out []byte
	for _, f := range AllFaces {
		data, err := r.FaceRGBA8(f)
		if err != nil {
			return nil, err
		}
		out = append(out, data...)
	}
	return out, nil
}

// FaceRGBA8 returns 8-bit RGBA data for one cube face.
func (r *CookieResource) FaceRGBA8(f Face) ([]byte, error) {
	b, err := r.face(f)
	if err != nil {
		return nil, err
	}
	return b.RGBA8(), nil
}

// EncodePNG writes a 2D cookie as PNG.
func (r *CookieResource) EncodePNG(w io.Writer) error {
	b, err := r.buffer()
	if err != nil {
		return err
	}
	return b.EncodePNG(w)
}

// FacePNG writes one cube face as PNG.
func (r *CookieResource) FacePNG(f Face, w io.Writer) error {
	b, err := r.face(f)
	if err != nil {
		return err
	}
	return b.EncodePNG(w)
}

// Equal reports whether two resources hold bit-identical pixels with the
// same dimension, wrap mode and scale. IDs are not compared.
func (r *CookieResource) Equal(o *CookieResource) bool {
	if r == nil || o == nil {
		return r == o
	}
	if r.Released() || o.Released() {
		return false
	}
	if r.dimension != o.dimension || r.scale != o.scale || r.WrapMode() != o.WrapMode() {
		return false
	}
	if r.dimension == Dimension2D {
		return r.image.Equal(o.image)
	}
	for _, f := range AllFaces {
		if !r.faces.Get(f).Equal(o.faces.Get(f)) {
			return false
		}
	}
	return true
}

// TextureDescriptor describes the GPU texture for this cookie.
// Cubemaps are six array layers.
func (r *CookieResource) TextureDescriptor() gputypes.TextureDescriptor {
	layers := uint32(1)
	if r.dimension == DimensionCube {
		layers = cubemap.FaceCount
	}
	return gputypes.TextureDescriptor{
		Label:         "cookie-" + r.id.String(),
		Size:          gputypes.NewExtent3D(uint32(r.Width()), uint32(r.Height()), layers),
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	}
}

// ViewDimension returns the texture view dimension the cookie is sampled with.
func (r *CookieResource) ViewDimension() gputypes.TextureViewDimension {
	if r.dimension == DimensionCube {
		return gputypes.TextureViewDimensionCube
	}
	return gputypes.TextureViewDimension2D
}

// SamplerDescriptor returns a linear sampler using the cookie's wrap mode.
func (r *CookieResource) SamplerDescriptor() gputypes.SamplerDescriptor {
	desc := gputypes.LinearSamplerDescriptor()
	desc.Label = "cookie-sampler-" + r.WrapMode().String()
	mode := r.WrapMode().AddressMode()
	desc.AddressModeU = mode
	desc.AddressModeV = mode
	desc.AddressModeW = mode
	return desc
}

// Release frees the pixel buffers. It is safe to call more than once.
func (r *CookieResource) Release() {
	if r == nil || !r.released.CompareAndSwap(false, true) {
		return
	}
	if r.image != nil {
		r.image.Release()
	}
	if r.faces != nil {
		r.faces.Release()
	}
}

// Released reports whether Release has been called.
func (r *CookieResource) Released() bool {
	return r.released.Load()
}

func (r *CookieResource) String() string {
	return fmt.Sprintf("cookie %s (%s %dx%d, %s, scale %g)",
		r.id, r.dimension, r.Width(), r.Height(), r.WrapMode(), r.scale)
}
