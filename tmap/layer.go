package tmap

// Layer is one entry of Map.Layers: a TileLayer, ObjectLayer or ImageLayer.
type Layer interface {
	Common() *LayerCommon
}

// LayerCommon holds the fields shared by all layer kinds.
type LayerCommon struct {
	Name       string
	X          int
	Y          int
	Visible    bool
	Opacity    float64
	Properties Properties
}

func (c *LayerCommon) Common() *LayerCommon { return c }

// Cell references one placed tile: the index of its tileset in
// Map.Tilesets, the local tile id within that set, and flip flags.
// The zero-value-like empty cell has Tileset == -1.
type Cell struct {
	Tileset int
	ID      int

	FlipH bool
	FlipV bool
	FlipD bool
}

// EmptyCell is the "no tile" placement.
var EmptyCell = Cell{Tileset: -1}

func (c Cell) Empty() bool { return c.Tileset < 0 }

// TileLayer is a Width x Height grid of cells in row-major order.
type TileLayer struct {
	LayerCommon
	Width  int
	Height int
	Cells  []Cell
}

// CellAt returns the cell at (x, y), or the empty cell when out of bounds.
func (l *TileLayer) CellAt(x, y int) Cell {
	if x < 0 || y < 0 || x >= l.Width || y >= l.Height {
		return EmptyCell
	}
	return l.Cells[y*l.Width+x]
}

type ObjectLayer struct {
	LayerCommon
	Objects []*Object
}

type ImageLayer struct {
	LayerCommon
	ImageSource      string
	TransparentColor *Color
}

type Shape int

const (
	Rectangle Shape = iota
	Polygon
	Polyline
	Ellipse
)

func (s Shape) String() string {
	switch s {
	case Rectangle:
		return "rectangle"
	case Polygon:
		return "polygon"
	case Polyline:
		return "polyline"
	case Ellipse:
		return "ellipse"
	}
	return "unknown"
}

type Point struct {
	X float64
	Y float64
}

// Object is one positioned shape on an object layer. Cell is the empty
// cell unless the object places a tile.
type Object struct {
	ID         int
	Name       string
	Type       string
	Shape      Shape
	X          float64
	Y          float64
	Width      float64
	Height     float64
	Rotation   float64
	Visible    bool
	Cell       Cell
	Points     []Point
	Properties Properties
}
