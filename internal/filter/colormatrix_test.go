package filter

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lfe999/lightcookie/internal/image"
)

// randomBuffer fills a buffer with reproducible samples in [0,1].
func randomBuffer(t *testing.T, w, h int, seed int64) *image.PixelBuffer {
	t.Helper()
	buf, err := image.New(w, h)
	require.NoError(t, err)
	rng := rand.New(rand.NewSource(seed))
	for i := range buf.Pix() {
		buf.Pix()[i] = rng.Float32()
	}
	return buf
}

func rgbOf(buf *image.PixelBuffer) []float32 {
	var out []float32
	pix := buf.Pix()
	for i := 0; i < len(pix); i += image.Channels {
		out = append(out, pix[i], pix[i+1], pix[i+2])
	}
	return out
}

func TestGrayscaleToAlpha(t *testing.T) {
	src := randomBuffer(t, 7, 5, 1)
	want := make([]float32, src.Len())
	for i := range want {
		px := src.Pix()[i*4 : i*4+4]
		want[i] = 0.2126*px[0] + 0.7152*px[1] + 0.0722*px[2]
	}
	rgb := rgbOf(src)

	out, err := GrayscaleToAlpha().Apply(src)
	require.NoError(t, err)

	assert.True(t, src.Released())
	assert.Equal(t, rgb, rgbOf(out))
	for i, w := range want {
		assert.InDelta(t, w, out.Alpha(i), 1e-6)
	}
}

func TestInvert(t *testing.T) {
	src := randomBuffer(t, 4, 4, 2)
	before := src.Clone()

	out, err := Invert().Apply(src)
	require.NoError(t, err)

	for i := range out.Len() {
		assert.Equal(t, 1-before.Alpha(i), out.Alpha(i))
	}
	assert.Equal(t, rgbOf(before), rgbOf(out))
}

func TestGrayscaleThenInvert(t *testing.T) {
	for seed := range int64(5) {
		src := randomBuffer(t, 6, 3, seed)
		orig := src.Clone()

		out, err := Run(t.Context(), src, GrayscaleToAlpha(), Invert())
		require.NoError(t, err)

		for i := range out.Len() {
			px := orig.Pix()[i*4 : i*4+4]
			luma := 0.2126*px[0] + 0.7152*px[1] + 0.0722*px[2]
			assert.InDelta(t, 1-luma, out.Alpha(i), 1e-6)
		}
	}
}

func TestBrightness(t *testing.T) {
	tests := []struct {
		name       string
		brightness float32
		alpha      float32
		want       float32
	}{
		{"positive raises floor at zero", 0.25, 0, 0.25},
		{"positive keeps one", 0.25, 1, 1},
		{"positive midpoint", 0.5, 0.5, 0.75},
		{"negative lowers ceiling", -0.25, 1, 0.75},
		{"negative keeps zero", -0.25, 0, 0},
		{"negative midpoint", -0.5, 0.5, 0.25},
		{"full positive", 1, 0.3, 1},
		{"full negative", -1, 0.3, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src, err := image.New(1, 1)
			require.NoError(t, err)
			src.Fill([4]float32{0.1, 0.2, 0.3, tt.alpha})

			out, err := Brightness(tt.brightness).Apply(src)
			require.NoError(t, err)

			assert.InDelta(t, tt.want, out.Alpha(0), 1e-6)
			assert.Equal(t, [4]float32{0.1, 0.2, 0.3, out.Alpha(0)}, out.Pixel(0, 0))
		})
	}
}

func TestBrightnessZeroIsNoOp(t *testing.T) {
	src := randomBuffer(t, 5, 5, 9)
	before := src.Clone()

	f := Brightness(0)
	assert.True(t, f.IsIdentity())

	out, err := f.Apply(src)
	require.NoError(t, err)

	assert.Same(t, src, out)
	assert.False(t, src.Released())
	assert.True(t, before.Equal(out))
}

func TestApply_Released(t *testing.T) {
	src := randomBuffer(t, 1, 1, 3)
	src.Release()

	_, err := Invert().Apply(src)
	assert.ErrorIs(t, err, image.ErrReleased)
}

func TestEval(t *testing.T) {
	m := NewAlphaMatrix("custom", [5]float32{1, 0, 0, 0.5, 0.1})
	assert.InDelta(t, 0.2+0.25+0.1, m.Eval([4]float32{0.2, 0.9, 0.9, 0.5}), 1e-6)
	assert.Equal(t, "custom", m.Name())
	assert.True(t, Identity().IsIdentity())
}
