// Package image provides the canonical pixel buffer used by the cookie
// pipeline.
//
// Pixels are stored as unassociated RGBA float32 samples in [0,1], row-major
// from the top-left corner. Buffers are single-owner values: a pipeline stage
// that produces a new buffer releases the one it consumed, and released
// buffers go back to a size-bucketed pool for reuse.
package image

import (
	"errors"
	"math"
)

// Common errors for buffer operations.
var (
	// ErrInvalidDimensions is returned when width or height is non-positive.
	ErrInvalidDimensions = errors.New("image: invalid dimensions")

	// ErrDataTooSmall is returned when provided samples do not cover width*height pixels.
	ErrDataTooSmall = errors.New("image: sample slice does not match dimensions")

	// ErrOutOfBounds is returned when a rectangle or coordinate lies outside the buffer.
	ErrOutOfBounds = errors.New("image: coordinates out of bounds")

	// ErrReleased is returned when a buffer is used after Release.
	ErrReleased = errors.New("image: buffer already released")
)

// Channel offsets inside a pixel quadruplet.
const (
	ChannelR = 0
	ChannelG = 1
	ChannelB = 2
	ChannelA = 3

	// Channels is the number of samples per pixel.
	Channels = 4
)

// PixelBuffer is a width*height grid of RGBA float32 pixels.
//
// Invariant: len(Pix) == Channels*width*height while the buffer is live.
//
// Thread safety: a PixelBuffer has exactly one owner at a time and is not
// safe for concurrent mutation.
type PixelBuffer struct {
	pix      []float32
	width    int
	height   int
	released bool
}

// New returns a transparent black buffer of the given size.
func New(width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	return defaultPool.Get(width, height), nil
}

// FromPix wraps existing samples without copying. The caller hands ownership
// of pix to the returned buffer.
func FromPix(pix []float32, width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(pix) != Channels*width*height {
		return nil, ErrDataTooSmall
	}
	return &PixelBuffer{pix: pix, width: width, height: height}, nil
}

// Width returns the buffer width in pixels.
func (b *PixelBuffer) Width() int {
	return b.width
}

// Height returns the buffer height in pixels.
func (b *PixelBuffer) Height() int {
	return b.height
}

// Bounds returns the buffer dimensions as (width, height).
func (b *PixelBuffer) Bounds() (int, int) {
	return b.width, b.height
}

// Len returns the number of pixels.
func (b *PixelBuffer) Len() int {
	return b.width * b.height
}

// Pix returns the raw samples. Modifying the slice modifies the buffer.
func (b *PixelBuffer) Pix() []float32 {
	return b.pix
}

// SameSize reports whether both buffers have identical dimensions.
func (b *PixelBuffer) SameSize(o *PixelBuffer) bool {
	return b.width == o.width && b.height == o.height
}

// Offset returns the sample offset of pixel (x, y), or -1 if out of bounds.
func (b *PixelBuffer) Offset(x, y int) int {
	if x < 0 || x >= b.width || y < 0 || y >= b.height {
		return -1
	}
	return (y*b.width + x) * Channels
}

// Pixel returns the RGBA samples at (x, y).
// Returns zeros if the coordinates are out of bounds.
func (b *PixelBuffer) Pixel(x, y int) [4]float32 {
	off := b.Offset(x, y)
	if off < 0 {
		return [4]float32{}
	}
	return [4]float32{b.pix[off], b.pix[off+1], b.pix[off+2], b.pix[off+3]}
}

// SetPixel stores RGBA samples at (x, y).
func (b *PixelBuffer) SetPixel(x, y int, px [4]float32) error {
	off := b.Offset(x, y)
	if off < 0 {
		return ErrOutOfBounds
	}
	copy(b.pix[off:off+Channels], px[:])
	return nil
}

// Alpha returns the alpha sample of the i-th pixel in row-major order.
func (b *PixelBuffer) Alpha(i int) float32 {
	return b.pix[i*Channels+ChannelA]
}

// SetAlpha stores the alpha sample of the i-th pixel in row-major order.
func (b *PixelBuffer) SetAlpha(i int, a float32) {
	b.pix[i*Channels+ChannelA] = a
}

// Fill sets every pixel to the given samples.
func (b *PixelBuffer) Fill(px [4]float32) {
	for i := 0; i < len(b.pix); i += Channels {
		copy(b.pix[i:i+Channels], px[:])
	}
}

// FillAlpha sets every alpha sample to a, leaving RGB untouched.
func (b *PixelBuffer) FillAlpha(a float32) {
	for i := ChannelA; i < len(b.pix); i += Channels {
		b.pix[i] = a
	}
}

// Clear zeroes every sample.
func (b *PixelBuffer) Clear() {
	clear(b.pix)
}

// Clone returns a deep copy drawn from the default pool.
func (b *PixelBuffer) Clone() *PixelBuffer {
	c := defaultPool.Get(b.width, b.height)
	copy(c.pix, b.pix)
	return c
}

// Crop copies the rectangle at (x, y) with the given size into a new buffer.
func (b *PixelBuffer) Crop(x, y, width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if x < 0 || y < 0 || x+width > b.width || y+height > b.height {
		return nil, ErrOutOfBounds
	}

	dst := defaultPool.Get(width, height)
	rowLen := width * Channels
	for row := range height {
		src := b.Offset(x, y+row)
		copy(dst.pix[row*rowLen:(row+1)*rowLen], b.pix[src:src+rowLen])
	}
	return dst, nil
}

// Rotate180 returns a copy of the buffer turned half a revolution.
func (b *PixelBuffer) Rotate180() *PixelBuffer {
	dst := defaultPool.Get(b.width, b.height)
	n := b.Len()
	for i := range n {
		src := (n - 1 - i) * Channels
		copy(dst.pix[i*Channels:(i+1)*Channels], b.pix[src:src+Channels])
	}
	return dst
}

// Equal reports whether both buffers have the same size and bit-identical samples.
func (b *PixelBuffer) Equal(o *PixelBuffer) bool {
	if b == nil || o == nil {
		return b == o
	}
	if !b.SameSize(o) || len(b.pix) != len(o.pix) {
		return false
	}
	for i, v := range b.pix {
		if math.Float32bits(v) != math.Float32bits(o.pix[i]) {
			return false
		}
	}
	return true
}

// MeanColor returns the average of every channel.
func (b *PixelBuffer) MeanColor() [4]float64 {
	var sum [4]float64
	for i := 0; i < len(b.pix); i += Channels {
		for c := range Channels {
			sum[c] += float64(b.pix[i+c])
		}
	}
	n := float64(b.Len())
	if n == 0 {
		return sum
	}
	for c := range sum {
		sum[c] /= n
	}
	return sum
}

// Release returns the buffer's storage to the default pool. The buffer must
// not be used afterwards. Releasing twice is a no-op.
func (b *PixelBuffer) Release() {
	if b == nil || b.released {
		return
	}
	b.released = true
	defaultPool.put(b.width, b.height, b.pix)
	b.pix = nil
}

// Released reports whether Release has been called.
func (b *PixelBuffer) Released() bool {
	return b.released
}
