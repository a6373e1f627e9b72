package image

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidDimensions(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
	}{
		{"zero width", 0, 4},
		{"zero height", 4, 0},
		{"negative", -1, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.width, tt.height)
			assert.ErrorIs(t, err, ErrInvalidDimensions)
		})
	}
}

func TestNew_Transparent(t *testing.T) {
	buf, err := New(3, 2)
	require.NoError(t, err)

	assert.Equal(t, 3, buf.Width())
	assert.Equal(t, 2, buf.Height())
	assert.Len(t, buf.Pix(), 3*2*Channels)
	for _, v := range buf.Pix() {
		assert.Zero(t, v)
	}
}

func TestFromPix_LengthMismatch(t *testing.T) {
	_, err := FromPix(make([]float32, 7), 2, 1)
	assert.ErrorIs(t, err, ErrDataTooSmall)
}

func TestPixelBuffer_SetPixel(t *testing.T) {
	buf, err := New(4, 4)
	require.NoError(t, err)

	px := [4]float32{0.1, 0.2, 0.3, 0.4}
	require.NoError(t, buf.SetPixel(2, 3, px))
	assert.Equal(t, px, buf.Pixel(2, 3))
	assert.InDelta(t, 0.4, buf.Alpha(3*4+2), 1e-7)

	assert.ErrorIs(t, buf.SetPixel(4, 0, px), ErrOutOfBounds)
	assert.Equal(t, [4]float32{}, buf.Pixel(-1, 0))
}

func TestPixelBuffer_FillAlphaKeepsRGB(t *testing.T) {
	buf, err := New(2, 2)
	require.NoError(t, err)
	buf.Fill([4]float32{0.5, 0.25, 0.75, 1})

	buf.FillAlpha(0.3)

	for y := range 2 {
		for x := range 2 {
			assert.Equal(t, [4]float32{0.5, 0.25, 0.75, 0.3}, buf.Pixel(x, y))
		}
	}
}

func TestPixelBuffer_CloneIsIndependent(t *testing.T) {
	buf, err := New(2, 2)
	require.NoError(t, err)
	buf.Fill([4]float32{1, 1, 1, 1})

	c := buf.Clone()
	c.SetAlpha(0, 0)

	assert.Equal(t, float32(1), buf.Alpha(0))
	assert.False(t, buf.Equal(c))
}

func TestPixelBuffer_Crop(t *testing.T) {
	buf, err := New(4, 2)
	require.NoError(t, err)
	for y := range 2 {
		for x := range 4 {
			require.NoError(t, buf.SetPixel(x, y, [4]float32{float32(x), float32(y), 0, 1}))
		}
	}

	c, err := buf.Crop(2, 1, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Width())
	assert.Equal(t, 1, c.Height())
	assert.Equal(t, [4]float32{2, 1, 0, 1}, c.Pixel(0, 0))
	assert.Equal(t, [4]float32{3, 1, 0, 1}, c.Pixel(1, 0))

	_, err = buf.Crop(3, 0, 2, 1)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestPixelBuffer_Rotate180(t *testing.T) {
	buf, err := New(2, 1)
	require.NoError(t, err)
	require.NoError(t, buf.SetPixel(0, 0, [4]float32{1, 0, 0, 1}))
	require.NoError(t, buf.SetPixel(1, 0, [4]float32{0, 1, 0, 1}))

	r := buf.Rotate180()
	assert.Equal(t, [4]float32{0, 1, 0, 1}, r.Pixel(0, 0))
	assert.Equal(t, [4]float32{1, 0, 0, 1}, r.Pixel(1, 0))
}

func TestPixelBuffer_MeanColor(t *testing.T) {
	buf, err := New(2, 1)
	require.NoError(t, err)
	require.NoError(t, buf.SetPixel(0, 0, [4]float32{1, 0, 0, 1}))
	require.NoError(t, buf.SetPixel(1, 0, [4]float32{0, 0, 1, 0}))

	mean := buf.MeanColor()
	assert.InDelta(t, 0.5, mean[0], 1e-9)
	assert.InDelta(t, 0.0, mean[1], 1e-9)
	assert.InDelta(t, 0.5, mean[2], 1e-9)
	assert.InDelta(t, 0.5, mean[3], 1e-9)
}

func TestPixelBuffer_ReleaseTwice(t *testing.T) {
	buf, err := New(5, 3)
	require.NoError(t, err)

	buf.Release()
	assert.True(t, buf.Released())
	assert.Nil(t, buf.Pix())

	assert.NotPanics(t, buf.Release)
}
