package image

// Resize returns a new buffer of exactly width x height using corner-anchored
// bilinear interpolation.
//
// For an output column x the source coordinate is x * (srcW-1) / width, so the
// first output pixel samples the first source pixel and the mapping never
// reaches past the last source column. Rows use the same mapping. Channels are
// interpolated without clamping.
//
// When the requested size equals the source size the result is an exact copy.
func Resize(src *PixelBuffer, width, height int) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if src == nil || src.released {
		return nil, ErrReleased
	}
	if src.width == width && src.height == height {
		return src.Clone(), nil
	}

	dst := defaultPool.Get(width, height)

	ratioX := 1 / (float64(width) / float64(src.width-1))
	ratioY := 1 / (float64(height) / float64(src.height-1))
	maxX := src.width - 1
	maxY := src.height - 1

	for y := range height {
		fy := float64(y) * ratioY
		y0 := int(fy)
		ty := float32(fy - float64(y0))
		y1 := min(y0+1, maxY)

		for x := range width {
			fx := float64(x) * ratioX
			x0 := int(fx)
			tx := float32(fx - float64(x0))
			x1 := min(x0+1, maxX)

			o00 := (y0*src.width + x0) * Channels
			o10 := (y0*src.width + x1) * Channels
			o01 := (y1*src.width + x0) * Channels
			o11 := (y1*src.width + x1) * Channels
			out := (y*width + x) * Channels

			for c := range Channels {
				top := lerp(src.pix[o00+c], src.pix[o10+c], tx)
				bottom := lerp(src.pix[o01+c], src.pix[o11+c], tx)
				dst.pix[out+c] = lerp(top, bottom, ty)
			}
		}
	}

	return dst, nil
}

// lerp performs unclamped linear interpolation between a and b.
func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}
