// Package assets provides the built-in overlay masks applied by the cookie
// pipeline and a registry the host can extend or replace.
//
// Masks are generated procedurally and handed out as PNG bytes, exactly like
// user-supplied textures, so the pipeline decodes them through the same path.
package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"

	"github.com/tanema/gween/ease"
)

// Built-in overlay names.
const (
	BlackBorder       = "black-border"
	VignetteLargeSoft = "vignette-large-soft"
)

// DefaultSize is the edge length of the generated masks.
const DefaultSize = 256

// BorderMask returns a size x size mask that is opaque everywhere except a
// transparent frame of the given width along every edge.
func BorderMask(size, width int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			var a uint8 = 255
			if x < width || y < width || x >= size-width || y >= size-width {
				a = 0
			}
			img.SetNRGBA(x, y, color.NRGBA{A: a})
		}
	}
	return img
}

// VignetteMask returns a size x size radial mask: opaque inside inner, fading
// to transparent at outer, both given as fractions of the half-size. The fade
// follows a sine in-out curve.
func VignetteMask(size int, inner, outer float32) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	half := float64(size) / 2
	span := outer - inner

	for y := range size {
		for x := range size {
			dx := (float64(x) + 0.5 - half) / half
			dy := (float64(y) + 0.5 - half) / half
			d := float32(math.Hypot(dx, dy))

			var a float32 = 1
			switch {
			case d >= outer:
				a = 0
			case d > inner:
				a = 1 - ease.InOutSine(d-inner, 0, 1, span)
			}
			img.SetNRGBA(x, y, color.NRGBA{A: uint8(a*255 + 0.5)})
		}
	}
	return img
}

// encode returns img as PNG bytes, or nil if encoding fails.
func encode(img image.Image) []byte {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil
	}
	return buf.Bytes()
}
