package cubemap

import (
	"fmt"

	"github.com/lfe999/lightcookie/internal/image"
)

// UnsupportedAspectRatioError is returned when an atlas ratio matches no layout.
type UnsupportedAspectRatioError struct {
	Width, Height int
	Ratio         Ratio
}

func (e *UnsupportedAspectRatioError) Error() string {
	return fmt.Sprintf("cubemap: unsupported atlas aspect ratio %s (%dx%d)", e.Ratio, e.Width, e.Height)
}

// Faces holds one independent buffer per cube face, indexed by Face.
type Faces [FaceCount]*image.PixelBuffer

// Get returns the buffer for face.
func (f *Faces) Get(face Face) *image.PixelBuffer {
	return f[face]
}

// Release releases every face buffer.
func (f *Faces) Release() {
	for i, b := range f {
		b.Release()
		f[i] = nil
	}
}

// Projector slices atlases using a layout table.
type Projector struct {
	Layouts map[Ratio]Layout
}

// NewProjector returns a projector using DefaultLayouts.
func NewProjector() *Projector {
	return &Projector{Layouts: DefaultLayouts}
}

// Detect returns the layout matching the atlas dimensions.
func (p *Projector) Detect(width, height int) (Layout, error) {
	if width <= 0 || height <= 0 {
		return Layout{}, image.ErrInvalidDimensions
	}
	ratio := ReduceRatio(width, height)
	layout, ok := p.Layouts[ratio]
	if !ok {
		return Layout{}, &UnsupportedAspectRatioError{Width: width, Height: height, Ratio: ratio}
	}
	return layout, nil
}

// Project extracts the six faces of atlas. The atlas is not modified or
// released. On failure no face buffers remain allocated.
func (p *Projector) Project(atlas *image.PixelBuffer) (*Faces, Layout, error) {
	if atlas == nil || atlas.Released() {
		return nil, Layout{}, image.ErrReleased
	}
	layout, err := p.Detect(atlas.Width(), atlas.Height())
	if err != nil {
		return nil, Layout{}, err
	}

	size := layout.SquareSize(atlas.Width())
	faces := &Faces{}
	for _, face := range AllFaces {
		cell := layout.Cells[face]
		crop, err := atlas.Crop(cell.Col*size, cell.Row*size, size, size)
		if err != nil {
			faces.Release()
			return nil, Layout{}, fmt.Errorf("cubemap: %s face of %s: %w", face, layout.Name, err)
		}
		if cell.Rot180 {
			rotated := crop.Rotate180()
			crop.Release()
			crop = rotated
		}
		faces[face] = crop
	}
	return faces, layout, nil
}

// Project slices atlas with the default layout table.
func Project(atlas *image.PixelBuffer) (*Faces, Layout, error) {
	return NewProjector().Project(atlas)
}
