package lua

import (
	"fmt"
	"path"

	"github.com/kvisli/go-luamap/tmap"
)

func (s *session) writeTileset(ts *tmap.Tileset, firstGID uint32) error {
	w := s.w

	if s.profile.Dialect == DialectMoai && ts.ImageSource != "" {
		w.StartQuotedTable(path.Base(s.relPath(ts.ImageSource)))
	} else {
		w.StartTable()
	}

	w.WriteKeyAndValue("name", ts.Name)
	if s.profile.Dialect == DialectStandard {
		w.WriteKeyAndValue("firstgid", firstGID)
	}

	if ts.FileName != "" {
		w.WriteKeyAndValue("filename", s.relPath(ts.FileName))
	}

	// All tileset information is written even for external tilesets,
	// since the external reference is a .tsx file the consumer of the
	// Lua document cannot read.
	w.WriteKeyAndValue("tilewidth", ts.TileWidth)
	w.WriteKeyAndValue("tileheight", ts.TileHeight)
	w.WriteKeyAndValue("spacing", ts.Spacing)
	w.WriteKeyAndValue("margin", ts.Margin)

	if ts.ImageSource != "" {
		if s.profile.Dialect == DialectStandard {
			w.WriteKeyAndValue("image", s.relPath(ts.ImageSource))
		}
		w.WriteKeyAndValue("imagewidth", ts.ImageWidth)
		w.WriteKeyAndValue("imageheight", ts.ImageHeight)
		if s.profile.Dialect == DialectMoai && ts.TileWidth > 0 && ts.TileHeight > 0 {
			w.WriteKeyAndValue("deckwidth", ts.ImageWidth/ts.TileWidth)
			w.WriteKeyAndValue("deckheight", ts.ImageHeight/ts.TileHeight)
		}
	}

	if tc := ts.TransparentColor; tc != nil {
		w.WriteKeyAndValue("transparentcolor", tc.Hex())
	}

	if s.profile.FlattenTileOffset {
		w.WriteKeyAndValue("xoffset", ts.OffsetX)
		w.WriteKeyAndValue("yoffset", ts.OffsetY)
	} else {
		w.StartNamedTable("tileoffset")
		w.WriteKeyAndValue("x", ts.OffsetX)
		w.WriteKeyAndValue("y", ts.OffsetY)
		w.EndTable()
	}

	s.writeProperties(ts.Properties)

	w.StartNamedTable("terrains")
	for _, t := range ts.Terrains {
		w.StartTable()
		w.WriteKeyAndValue("name", t.Name)
		w.WriteKeyAndValue("tile", t.ImageTileID)
		s.writeProperties(t.Properties)
		w.EndTable()
	}
	w.EndTable()

	w.StartNamedTable("tiles")
	for id := 0; id < ts.TileCount; id++ {
		tile := ts.TileAt(id)
		// For brevity only tiles with interesting data are written.
		if !includeTile(tile) {
			continue
		}
		if err := s.writeTile(id, tile); err != nil {
			return err
		}
	}
	w.EndTable()

	w.EndTable()
	return nil
}

// includeTile reports whether a tile carries anything beyond its image
// region and so earns an entry in the tiles table.
func includeTile(t *tmap.Tile) bool {
	if t == nil {
		return false
	}
	return len(t.Properties) > 0 ||
		t.ImageSource != "" ||
		t.ObjectGroup != nil ||
		t.Animated() ||
		t.HasTerrain() ||
		t.Probability >= 0
}

func (s *session) writeTile(id int, t *tmap.Tile) error {
	w := s.w

	if s.profile.Dialect == DialectMoai {
		w.StartQuotedTable(fmt.Sprintf("id = %d", id+1))
	} else {
		w.StartTable()
		w.WriteKeyAndValue("id", id)
	}

	if len(t.Properties) > 0 {
		s.writeProperties(t.Properties)
	}

	if t.ImageSource != "" {
		w.WriteKeyAndValue("image", s.relPath(t.ImageSource))
		if t.Width > 0 && t.Height > 0 {
			w.WriteKeyAndValue("width", t.Width)
			w.WriteKeyAndValue("height", t.Height)
		}
	}

	if t.HasTerrain() {
		w.StartNamedTable("terrain")
		w.SetCompact(true)
		for _, corner := range t.Terrain {
			w.WriteValue(corner)
		}
		w.EndTable()
		w.SetCompact(false)
	}

	if t.Probability >= 0 {
		w.WriteKeyAndValue("probability", t.Probability)
	}

	if t.ObjectGroup != nil {
		if err := s.writeObjectLayer(0, t.ObjectGroup, "objectGroup"); err != nil {
			return err
		}
	}

	if t.Animated() {
		w.StartNamedTable("animation")
		for _, frame := range t.Animation {
			w.StartTable()
			w.WriteKeyAndValue("tileid", frame.TileID)
			w.WriteKeyAndValue("duration", frame.Duration)
			w.EndTable()
		}
		w.EndTable()
	}

	w.EndTable()
	return nil
}
