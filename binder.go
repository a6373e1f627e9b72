package lightcookie

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/google/uuid"
)

// Binder attaches cookies to the renderer's light.
//
// A Light calls its Binder only from its binding worker, so calls never
// overlap. Bind may be called again with an already bound resource when only
// its wrap mode changed.
type Binder interface {
	// Bind makes res the light's cookie.
	Bind(res *CookieResource) error
	// Unbind removes the light's cookie.
	Unbind()
}

// destroyer is implemented by textures that hold GPU memory.
type destroyer interface {
	Destroy()
}

// TextureBinder uploads cookies through a gpucontext.TextureCreator.
// A 2D cookie becomes one texture; a cubemap becomes six, one per face in
// layer order.
//
// Thread safety: TextureBinder is safe for concurrent use.
type TextureBinder struct {
	creator gpucontext.TextureCreator

	mu       sync.Mutex
	current  uuid.UUID
	textures []gpucontext.Texture
	sampler  gputypes.SamplerDescriptor
	view     gputypes.TextureViewDimension
}

// NewTextureBinder returns a binder that creates textures with creator.
func NewTextureBinder(creator gpucontext.TextureCreator) *TextureBinder {
	return &TextureBinder{creator: creator}
}

// Bind uploads res unless it is already bound, then records its sampler.
func (b *TextureBinder) Bind(res *CookieResource) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if res.ID() == b.current && b.textures != nil {
		b.sampler = res.SamplerDescriptor()
		Logger().Debug("lightcookie: sampler updated", "id", res.ID(), "wrap", res.WrapMode())
		return nil
	}

	var textures []gpucontext.Texture
	upload := func(data []byte, err error) error {
		if err != nil {
			return err
		}
		tex, err := b.creator.NewTextureFromRGBA(res.Width(), res.Height(), data)
		if err != nil {
			return err
		}
		textures = append(textures, tex)
		return nil
	}

	var err error
	if res.Dimension() == DimensionCube {
		for _, f := range AllFaces {
			if err = upload(res.FaceRGBA8(f)); err != nil {
				err = fmt.Errorf("face %s: %w", f, err)
				break
			}
		}
	} else {
		err = upload(res.RGBA8())
	}
	if err != nil {
		destroyAll(textures)
		return fmt.Errorf("lightcookie: upload %s: %w", res.ID(), err)
	}

	destroyAll(b.textures)
	b.current = res.ID()
	b.textures = textures
	b.sampler = res.SamplerDescriptor()
	b.view = res.ViewDimension()
	return nil
}

// Unbind destroys the bound textures.
func (b *TextureBinder) Unbind() {
	b.mu.Lock()
	defer b.mu.Unlock()

	destroyAll(b.textures)
	b.current = uuid.Nil
	b.textures = nil
	b.sampler = gputypes.SamplerDescriptor{}
	b.view = gputypes.TextureViewDimensionUndefined
}

// Textures returns the bound textures: one for 2D cookies, six for cubemaps.
func (b *TextureBinder) Textures() []gpucontext.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]gpucontext.Texture(nil), b.textures...)
}

// Sampler returns the sampler descriptor of the bound cookie.
func (b *TextureBinder) Sampler() gputypes.SamplerDescriptor {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sampler
}

// ViewDimension returns the view dimension of the bound cookie.
func (b *TextureBinder) ViewDimension() gputypes.TextureViewDimension {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.view
}

// Bound returns the ID of the bound cookie, or uuid.Nil.
func (b *TextureBinder) Bound() uuid.UUID {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func destroyAll(textures []gpucontext.Texture) {
	for _, t := range textures {
		if d, ok := t.(destroyer); ok {
			d.Destroy()
		}
	}
}
