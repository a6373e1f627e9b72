package lightcookie

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/gogpu/gpucontext"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// faceColors are the six squares of the test atlas, left to right.
var faceColors = [6]color.NRGBA{
	{R: 255, A: 255},
	{G: 255, A: 255},
	{B: 255, A: 255},
	{R: 255, G: 255, A: 255},
	{G: 255, B: 255, A: 255},
	{R: 255, B: 255, A: 255},
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// gradientPNG is 32x32 with alpha ramping 0 to 1 left to right over a fixed
// RGB color.
func gradientPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 32, 32))
	for y := range 32 {
		for x := range 32 {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: uint8(x * 255 / 31)})
		}
	}
	return encodePNG(t, img)
}

// atlasPNG is a size*6 x size horizontal strip of faceColors.
func atlasPNG(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size*6, size))
	for y := range size {
		for x := range size * 6 {
			img.SetNRGBA(x, y, faceColors[x/size])
		}
	}
	return encodePNG(t, img)
}

// solidPNG is a w x h image of one color.
func solidPNG(t *testing.T, w, h int, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return encodePNG(t, img)
}

func testFS(t *testing.T) fstest.MapFS {
	t.Helper()
	return fstest.MapFS{
		"gradient.png": {Data: gradientPNG(t)},
		"atlas.png":    {Data: atlasPNG(t, 32)},
		"wide.png":     {Data: solidPNG(t, 50, 20, color.NRGBA{R: 10, A: 255})},
		"bad.png":      {Data: []byte("definitely not an image")},
	}
}

// nrgbaToFloat converts an 8-bit color to the pipeline's float samples.
func nrgbaToFloat(c color.NRGBA) [4]float32 {
	return [4]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255, float32(c.A) / 255}
}

// recordingBinder records binder calls for assertions.
type recordingBinder struct {
	mu      sync.Mutex
	bound   []uuid.UUID
	unbinds int
	err     error
}

func (b *recordingBinder) Bind(res *CookieResource) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return b.err
	}
	b.bound = append(b.bound, res.ID())
	return nil
}

func (b *recordingBinder) Unbind() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.unbinds++
}

func (b *recordingBinder) calls() ([]uuid.UUID, int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]uuid.UUID(nil), b.bound...), b.unbinds
}

// fakeTexture is a gpucontext.Texture that records destruction.
type fakeTexture struct {
	w, h      int
	data      []byte
	destroyed bool
}

func (t *fakeTexture) Width() int  { return t.w }
func (t *fakeTexture) Height() int { return t.h }
func (t *fakeTexture) Destroy()    { t.destroyed = true }

// fakeCreator is a gpucontext.TextureCreator backed by memory.
type fakeCreator struct {
	created []*fakeTexture
	failAt  int // fail the n-th creation (1-based); 0 never fails
}

func (c *fakeCreator) NewTextureFromRGBA(w, h int, data []byte) (gpucontext.Texture, error) {
	if c.failAt > 0 && len(c.created)+1 == c.failAt {
		return nil, errors.New("out of texture memory")
	}
	if len(data) != w*h*4 {
		return nil, errors.New("bad data size")
	}
	tex := &fakeTexture{w: w, h: h, data: data}
	c.created = append(c.created, tex)
	return tex, nil
}

var _ gpucontext.TextureCreator = (*fakeCreator)(nil)
