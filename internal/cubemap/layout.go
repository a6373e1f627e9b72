// Package cubemap unfolds a 2D atlas into six cube-face buffers.
//
// Atlases are recognised by their reduced aspect ratio. Each recognised
// ratio maps to a Layout: a grid of equally sized square cells and a table
// saying which cell holds which face. Adding a layout means adding a table
// entry; there is no per-layout code.
package cubemap

import "fmt"

// Face identifies one side of a cube.
type Face uint8

// Cube faces.
const (
	FacePosX Face = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ

	// FaceCount is the number of faces of a cube.
	FaceCount = 6
)

// AllFaces lists every face in enumeration order.
var AllFaces = [FaceCount]Face{FacePosX, FaceNegX, FacePosY, FaceNegY, FacePosZ, FaceNegZ}

// String returns the conventional axis name of the face.
func (f Face) String() string {
	switch f {
	case FacePosX:
		return "+X"
	case FaceNegX:
		return "-X"
	case FacePosY:
		return "+Y"
	case FaceNegY:
		return "-Y"
	case FacePosZ:
		return "+Z"
	case FaceNegZ:
		return "-Z"
	default:
		return "Unknown"
	}
}

// Suffix returns a file-name friendly face name such as "px" or "nz".
func (f Face) Suffix() string {
	switch f {
	case FacePosX:
		return "px"
	case FaceNegX:
		return "nx"
	case FacePosY:
		return "py"
	case FaceNegY:
		return "ny"
	case FacePosZ:
		return "pz"
	case FaceNegZ:
		return "nz"
	default:
		return "unknown"
	}
}

// Ratio is a reduced width:height aspect ratio.
type Ratio struct {
	W, H int
}

// String formats the ratio as "W:H".
func (r Ratio) String() string {
	return fmt.Sprintf("%d:%d", r.W, r.H)
}

// ReduceRatio divides width and height by their greatest common divisor.
func ReduceRatio(width, height int) Ratio {
	g := gcd(width, height)
	if g == 0 {
		return Ratio{}
	}
	return Ratio{W: width / g, H: height / g}
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

// Cell locates a face inside a layout grid, in units of the square size.
type Cell struct {
	Col, Row int
	// Rot180 turns the crop half a revolution after extraction.
	Rot180 bool
}

// Layout describes how six faces are packed into an atlas.
// The square size is width/Cols, which equals height/Rows for any atlas
// whose reduced ratio matches the layout.
type Layout struct {
	Name  string
	Cols  int
	Rows  int
	Cells [FaceCount]Cell
}

// SquareSize returns the face edge length for an atlas of the given width.
func (l Layout) SquareSize(width int) int {
	return width / l.Cols
}

// DefaultLayouts is the table of recognised atlas layouts keyed by reduced ratio.
var DefaultLayouts = map[Ratio]Layout{
	{W: 1, H: 1}: {
		Name: "single",
		Cols: 1, Rows: 1,
		// Every face reuses the whole square.
		Cells: [FaceCount]Cell{},
	},
	{W: 6, H: 1}: {
		Name: "horizontal-strip",
		Cols: 6, Rows: 1,
		Cells: [FaceCount]Cell{
			FacePosX: {Col: 0}, FaceNegX: {Col: 1},
			FacePosY: {Col: 2}, FaceNegY: {Col: 3},
			FacePosZ: {Col: 4}, FaceNegZ: {Col: 5},
		},
	},
	{W: 1, H: 6}: {
		Name: "vertical-strip",
		Cols: 1, Rows: 6,
		Cells: [FaceCount]Cell{
			FacePosX: {Row: 0}, FaceNegX: {Row: 1},
			FacePosY: {Row: 2}, FaceNegY: {Row: 3},
			FacePosZ: {Row: 4}, FaceNegZ: {Row: 5},
		},
	},
	//	   +Y
	//	-X +Z +X -Z
	//	   -Y
	{W: 4, H: 3}: {
		Name: "horizontal-cross",
		Cols: 4, Rows: 3,
		Cells: [FaceCount]Cell{
			FacePosY: {Col: 1, Row: 0},
			FaceNegX: {Col: 0, Row: 1},
			FacePosZ: {Col: 1, Row: 1},
			FacePosX: {Col: 2, Row: 1},
			FaceNegZ: {Col: 3, Row: 1},
			FaceNegY: {Col: 1, Row: 2},
		},
	},
	//	   +Y
	//	-X +Z +X
	//	   -Y
	//	   -Z (stored upside down)
	{W: 3, H: 4}: {
		Name: "vertical-cross",
		Cols: 3, Rows: 4,
		Cells: [FaceCount]Cell{
			FacePosY: {Col: 1, Row: 0},
			FaceNegX: {Col: 0, Row: 1},
			FacePosZ: {Col: 1, Row: 1},
			FacePosX: {Col: 2, Row: 1},
			FaceNegY: {Col: 1, Row: 2},
			FaceNegZ: {Col: 1, Row: 3, Rot180: true},
		},
	},
}
