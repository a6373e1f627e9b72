// Package lightcookie turns ordinary raster images into light cookies.
//
// # Overview
//
// A cookie is a mask texture that shapes the intensity a light emits. Only
// the alpha channel carries lighting information; RGB passes through
// untouched. Projective lights (Directional, Spot, Area) take a single 2D
// cookie. Point lights take a cubemap unfolded from a 2D atlas.
//
// # Quick Start
//
//	data, _ := os.ReadFile("window.png")
//
//	opts := lightcookie.DefaultOptions()
//	opts.GrayscaleToAlpha = true
//	opts.AddVignette = true
//
//	res, err := lightcookie.Process(ctx, data, lightcookie.Spot, opts)
//	if err != nil {
//	    log.Fatal(err) // *lightcookie.Error names the failing stage
//	}
//	defer res.Release()
//
//	f, _ := os.Create("cookie.png")
//	res.EncodePNG(f)
//
// # Pipeline
//
// Process decodes PNG, JPEG, GIF, BMP, TIFF or WebP into a float RGBA buffer
// with a real alpha channel, then runs the enabled stages in a fixed order:
//
//  1. grayscale-to-alpha: alpha = BT.709 luma of RGB
//  2. invert: alpha = 1 - alpha
//  3. brightness: alpha remapped into [max(b,0), 1+min(b,0)]
//  4. black-border: alpha multiplied by the border mask
//  5. vignette: alpha multiplied by the soft vignette mask
//
// Overlay masks are resampled to the image size with corner-anchored
// bilinear filtering. Point lights skip both overlays and are then sliced by
// atlas aspect ratio: 1:1, 6:1, 1:6, 4:3 and 3:4 are recognised.
//
// # Lights
//
// Light owns one cookie at a time and drives the Idle, Loading, Ready and
// Failed states. Installs are serialized on a binding worker and hand the
// cookie to a Binder; TextureBinder uploads through a gpucontext.TextureCreator.
// A newer Produce supersedes an older one still in flight.
//
// # Logging
//
// lightcookie is silent by default. See SetLogger.
package lightcookie
