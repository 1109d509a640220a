package tmap

// NoTerrain marks an unset terrain corner.
const NoTerrain = -1

type Tileset struct {
	Name     string
	FileName string // external tileset reference, empty when embedded

	ImageSource string
	ImageWidth  int
	ImageHeight int

	TileWidth  int
	TileHeight int
	Spacing    int
	Margin     int

	OffsetX int
	OffsetY int

	TransparentColor *Color
	Properties       Properties
	Terrains         []*Terrain

	// Tiles maps local tile ids to per-tile data. Only tiles that carry
	// data beyond their image region appear here.
	Tiles map[int]*Tile

	// TileCount is the total number of tiles in the set, including the
	// plain ones absent from Tiles.
	TileCount int
}

// TileAt returns per-tile data for a local id, or nil for a plain tile.
func (ts *Tileset) TileAt(id int) *Tile {
	if ts.Tiles == nil {
		return nil
	}
	return ts.Tiles[id]
}

type Tile struct {
	Properties  Properties
	ImageSource string
	Width       int
	Height      int

	// Terrain holds the terrain ids of the four corners
	// (top-left, top-right, bottom-left, bottom-right), NoTerrain when unset.
	Terrain [4]int

	// Probability is the chance this tile is picked by terrain fills,
	// negative when left at the default.
	Probability float64

	ObjectGroup *ObjectLayer
	Animation   []Frame
}

// NewTile returns a Tile with terrain and probability at their
// "not set" defaults.
func NewTile() *Tile {
	return &Tile{
		Terrain:     [4]int{NoTerrain, NoTerrain, NoTerrain, NoTerrain},
		Probability: -1,
	}
}

// HasTerrain reports whether any corner carries a terrain id.
func (t *Tile) HasTerrain() bool {
	for _, c := range t.Terrain {
		if c != NoTerrain {
			return true
		}
	}
	return false
}

// Animated reports whether the tile has animation frames.
func (t *Tile) Animated() bool {
	return len(t.Animation) > 0
}

// Frame is one step of a tile animation. Duration is in milliseconds.
type Frame struct {
	TileID   int
	Duration int
}

// Terrain is one terrain type defined by a tileset.
type Terrain struct {
	Name        string
	ImageTileID int
	Properties  Properties
}
