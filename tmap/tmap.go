// Package tmap provides the in-memory tile map model shared by the
// format readers and writers.
package tmap

import (
	"fmt"
	"sort"
)

type Orientation int

const (
	Orthogonal Orientation = iota
	Isometric
	Staggered
	Hexagonal
)

func (o Orientation) String() string {
	switch o {
	case Orthogonal:
		return "orthogonal"
	case Isometric:
		return "isometric"
	case Staggered:
		return "staggered"
	case Hexagonal:
		return "hexagonal"
	}
	return "unknown"
}

type StaggerAxis int

const (
	StaggerX StaggerAxis = iota
	StaggerY
)

func (a StaggerAxis) String() string {
	if a == StaggerX {
		return "x"
	}
	return "y"
}

type StaggerIndex int

const (
	StaggerOdd StaggerIndex = iota
	StaggerEven
)

func (i StaggerIndex) String() string {
	if i == StaggerOdd {
		return "odd"
	}
	return "even"
}

// Map is the root of the model. Width and Height are in tiles,
// TileWidth and TileHeight in pixels.
type Map struct {
	Orientation   Orientation
	Width         int
	Height        int
	TileWidth     int
	TileHeight    int
	HexSideLength int
	StaggerAxis   StaggerAxis
	StaggerIndex  StaggerIndex

	BackgroundColor *Color
	NextObjectID    int
	TiledVersion    string

	Properties Properties
	Tilesets   []*Tileset
	Layers     []Layer
}

// Color is an RGBA color. A nil *Color in the model means "not set".
type Color struct {
	R, G, B, A uint8
}

// Hex returns the "#rrggbb" form used for named color fields.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Opaque reports whether the alpha channel is fully opaque.
func (c Color) Opaque() bool {
	return c.A == 255
}

// Properties holds custom key/value pairs attached to maps, tilesets,
// tiles, layers and objects. Values are bool, int, float64 or string.
type Properties map[string]any

// SortedKeys returns the property names in a stable order. Emitters
// iterate properties through this to keep output deterministic.
func (p Properties) SortedKeys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
