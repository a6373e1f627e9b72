package filter

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/lfe999/lightcookie/internal/image"
)

// Rec. 709 luma weights.
const (
	LumaR = 0.2126
	LumaG = 0.7152
	LumaB = 0.0722
)

// AlphaMatrix is the alpha row of a 4x5 color matrix:
//
//	A' = m[0]*R + m[1]*G + m[2]*B + m[3]*A + m[4]
//
// Only the alpha channel is rewritten; RGB samples pass through unchanged.
// Results are not clamped.
type AlphaMatrix struct {
	name   string
	Matrix [5]float32
}

// NewAlphaMatrix creates a named alpha matrix stage.
func NewAlphaMatrix(name string, matrix [5]float32) *AlphaMatrix {
	return &AlphaMatrix{name: name, Matrix: matrix}
}

// GrayscaleToAlpha replaces alpha with the Rec. 709 luma of the pixel.
func GrayscaleToAlpha() *AlphaMatrix {
	return NewAlphaMatrix("grayscale-to-alpha", [5]float32{LumaR, LumaG, LumaB, 0, 0})
}

// Invert replaces alpha with 1 - alpha.
func Invert() *AlphaMatrix {
	return NewAlphaMatrix("invert", [5]float32{0, 0, 0, -1, 1})
}

// Brightness remaps alpha from [0,1] into [lo,hi] where lo = max(b, 0) and
// hi = 1 + min(b, 0). A brightness of 0 yields the identity.
func Brightness(b float32) *AlphaMatrix {
	var lo, hi float32 = 0, 1
	if b > 0 {
		lo = b
	}
	if b < 0 {
		hi = 1 + b
	}
	return NewAlphaMatrix("brightness", [5]float32{0, 0, 0, hi - lo, lo})
}

// Identity leaves alpha unchanged.
func Identity() *AlphaMatrix {
	return NewAlphaMatrix("identity", [5]float32{0, 0, 0, 1, 0})
}

// Name returns the stage name.
func (f *AlphaMatrix) Name() string {
	return f.name
}

// IsIdentity reports whether applying the matrix cannot change any sample.
func (f *AlphaMatrix) IsIdentity() bool {
	return f.Matrix == [5]float32{0, 0, 0, 1, 0}
}

// Eval computes the new alpha for one pixel.
func (f *AlphaMatrix) Eval(px [4]float32) float32 {
	m := &f.Matrix
	return mgl32.Vec4{m[0], m[1], m[2], m[3]}.Dot(mgl32.Vec4(px)) + m[4]
}

// Apply consumes src and returns a new buffer with the transformed alpha.
// src is released unless the matrix is the identity, in which case src is
// returned as-is without allocating.
func (f *AlphaMatrix) Apply(src *image.PixelBuffer) (*image.PixelBuffer, error) {
	if src == nil || src.Released() {
		return nil, image.ErrReleased
	}
	if f.IsIdentity() {
		return src, nil
	}

	dst, err := image.New(src.Width(), src.Height())
	if err != nil {
		return nil, err
	}

	in := src.Pix()
	out := dst.Pix()
	copy(out, in)
	for i := 0; i < len(in); i += image.Channels {
		out[i+image.ChannelA] = f.Eval([4]float32(in[i : i+image.Channels]))
	}

	src.Release()
	return dst, nil
}
