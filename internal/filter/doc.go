// Package filter provides the alpha transform stages of the cookie pipeline.
//
// Every stage rewrites only the alpha channel. Photometric stages are
// expressed as the alpha row of a color matrix:
//   - GrayscaleToAlpha (Rec. 709 luma)
//   - Invert
//   - Brightness (range remap)
//
// Stages consume their input buffer and hand back a new one; Run chains
// stages in order and releases intermediate buffers on failure.
package filter
