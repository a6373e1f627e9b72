package image

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif" // register GIF
	_ "image/jpeg" // register JPEG
	"image/png"
	"io"

	"github.com/go-gl/mathgl/mgl32"
	_ "golang.org/x/image/bmp" // register BMP
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff" // register TIFF
	_ "golang.org/x/image/webp" // register WebP
)

// I/O errors.
var (
	// ErrEmptyData is returned when the encoded input is empty.
	ErrEmptyData = errors.New("image: empty data")

	// ErrDecode is returned when the input is not a supported raster encoding.
	ErrDecode = errors.New("image: cannot decode")
)

// Decode parses an encoded PNG, JPEG, GIF, BMP, TIFF or WebP image into a
// canonical buffer. The result always carries a per-pixel alpha channel;
// encodings without one decode as fully opaque.
func Decode(data []byte) (*PixelBuffer, error) {
	if len(data) == 0 {
		return nil, ErrEmptyData
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: %s image has no pixels", ErrDecode, format)
	}

	return FromNRGBA(EnsureAlpha(img)), nil
}

// DecodeConfig reports the dimensions and format name of an encoded image
// without decoding its pixels.
func DecodeConfig(data []byte) (width, height int, format string, err error) {
	if len(data) == 0 {
		return 0, 0, "", ErrEmptyData
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return cfg.Width, cfg.Height, format, nil
}

// EnsureAlpha converts any decoded image into a non-premultiplied RGBA
// intermediate with a real alpha sample per pixel. Gray, paletted, YCbCr and
// CMYK sources become opaque; premultiplied sources are unpremultiplied.
// The returned image always has its origin at (0, 0).
func EnsureAlpha(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	if nrgba, ok := img.(*image.NRGBA); ok && bounds.Min == (image.Point{}) {
		return nrgba
	}

	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// FromNRGBA converts an 8-bit non-premultiplied image to a canonical buffer.
func FromNRGBA(img *image.NRGBA) *PixelBuffer {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	buf := defaultPool.Get(width, height)

	for y := range height {
		src := img.Pix[y*img.Stride : y*img.Stride+width*Channels]
		dst := buf.pix[y*width*Channels : (y+1)*width*Channels]
		for i, v := range src {
			dst[i] = float32(v) / 255
		}
	}
	return buf
}

// FromImage converts any image.Image to a canonical buffer.
func FromImage(img image.Image) (*PixelBuffer, error) {
	if img.Bounds().Empty() {
		return nil, ErrInvalidDimensions
	}
	return FromNRGBA(EnsureAlpha(img)), nil
}

// quantize maps a sample to 8 bits, clamping out-of-range values.
func quantize(v float32) uint8 {
	return uint8(mgl32.Clamp(v, 0, 1)*255 + 0.5)
}

// RGBA8 returns tightly packed 8-bit RGBA samples suitable for texture upload.
func (b *PixelBuffer) RGBA8() []byte {
	out := make([]byte, len(b.pix))
	for i, v := range b.pix {
		out[i] = quantize(v)
	}
	return out
}

// ToNRGBA converts the buffer to an 8-bit non-premultiplied image.
func (b *PixelBuffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.width, b.height))
	for i, v := range b.pix {
		img.Pix[i] = quantize(v)
	}
	return img
}

// At returns the 8-bit color at (x, y) for interoperability with image/color.
func (b *PixelBuffer) At(x, y int) color.NRGBA {
	px := b.Pixel(x, y)
	return color.NRGBA{R: quantize(px[0]), G: quantize(px[1]), B: quantize(px[2]), A: quantize(px[3])}
}

// EncodePNG writes the buffer as an 8-bit RGBA PNG.
func (b *PixelBuffer) EncodePNG(w io.Writer) error {
	if b.released {
		return ErrReleased
	}
	if err := png.Encode(w, b.ToNRGBA()); err != nil {
		return fmt.Errorf("image: encode PNG: %w", err)
	}
	return nil
}

// EncodeToBytes encodes the buffer as PNG and returns the bytes.
func (b *PixelBuffer) EncodeToBytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := b.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
