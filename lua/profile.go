package lua

// Dialect selects the overall shape of the emitted document.
type Dialect int

const (
	// DialectStandard is the plain Tiled Lua export: positional layer and
	// tileset tables with name fields, firstgid, tilewidth/tileheight keys.
	DialectStandard Dialect = iota

	// DialectMoai keys tilesets and layers by name, writes
	// cellwidth/cellheight and prio fields, and tags layers with their
	// tileset image for MOAI-style loaders.
	DialectMoai
)

// PolygonFormat selects one of the interchangeable encodings for
// polygon/polyline point sequences. All are lossless; they differ only
// in output size and readability.
type PolygonFormat int

const (
	// PolygonPoints writes one { x = ..., y = ... } table per point.
	PolygonPoints PolygonFormat = iota
	// PolygonPairs writes one positional { x, y } pair per point.
	PolygonPairs
	// PolygonParallel writes two parallel arrays keyed x and y.
	PolygonParallel
	// PolygonInterleaved writes a single flat { x0, y0, x1, y1, ... } run.
	PolygonInterleaved
)

// DataFormat selects the encoding of tile layer cell grids.
type DataFormat int

const (
	// DataRows writes one compact positional table per map row, with
	// flip flags preserved in the gids.
	DataRows DataFormat = iota
	// DataFlat writes a single flat run of gids, one source row per line.
	DataFlat
	// DataIndexedRows writes compact row tables prefixed with the 1-based
	// row number and flag-stripped gids, plus a specialtiles table for
	// cells whose tile carries custom properties.
	DataIndexedRows
)

// LayerImageMode selects how tile layers reference their tileset images
// in the Moai dialect.
type LayerImageMode int

const (
	LayerImageNone LayerImageMode = iota
	// LayerImageFirst writes an image field when the layer uses exactly
	// one tileset.
	LayerImageFirst
	// LayerImageAll writes an images table listing every used tileset.
	LayerImageAll
)

// Profile bundles the output format choices; one value selects the
// whole variant per export.
type Profile struct {
	Dialect           Dialect
	PolygonFormat     PolygonFormat
	DataFormat        DataFormat
	LayerImage        LayerImageMode
	FlattenTileOffset bool
}

// DefaultProfile is the standard Tiled-style output.
func DefaultProfile() Profile {
	return Profile{
		Dialect:       DialectStandard,
		PolygonFormat: PolygonPoints,
		DataFormat:    DataRows,
	}
}

// MoaiProfile is the output variant MOAI-based loaders expect.
func MoaiProfile() Profile {
	return Profile{
		Dialect:           DialectMoai,
		PolygonFormat:     PolygonInterleaved,
		DataFormat:        DataIndexedRows,
		LayerImage:        LayerImageFirst,
		FlattenTileOffset: true,
	}
}

// ProfileByName resolves the named built-in profiles ("default", "moai").
func ProfileByName(name string) (Profile, bool) {
	switch name {
	case "", "default":
		return DefaultProfile(), true
	case "moai":
		return MoaiProfile(), true
	}
	return Profile{}, false
}
