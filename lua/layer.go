package lua

import (
	"fmt"
	"path"
	"slices"

	"github.com/kvisli/go-luamap/tmap"
)

func (s *session) writeTileLayer(prio int, l *tmap.TileLayer) error {
	w := s.w

	if s.profile.Dialect == DialectMoai {
		w.StartQuotedTable(l.Name)
		w.WriteKeyAndValue("prio", prio)
	} else {
		w.StartTable()
		w.WriteKeyAndValue("name", l.Name)
	}
	w.WriteKeyAndValue("type", "tilelayer")

	if s.profile.Dialect == DialectMoai {
		s.writeLayerImages(l)
	}

	w.WriteKeyAndValue("x", l.X)
	w.WriteKeyAndValue("y", l.Y)
	w.WriteKeyAndValue("width", l.Width)
	w.WriteKeyAndValue("height", l.Height)
	w.WriteKeyAndValue("visible", l.Visible)
	w.WriteKeyAndValue("opacity", l.Opacity)
	s.writeProperties(l.Properties)

	w.WriteKeyAndValue("encoding", "lua")

	if s.profile.DataFormat == DataIndexedRows {
		if err := s.writeSpecialTiles(l); err != nil {
			return err
		}
	}

	return s.writeTileData(l)
}

// writeLayerImages tags the layer with the tileset images it draws from.
func (s *session) writeLayerImages(l *tmap.TileLayer) {
	mode := s.profile.LayerImage
	if mode == LayerImageNone {
		return
	}

	used := usedTilesets(l)
	switch mode {
	case LayerImageFirst:
		if len(used) == 1 {
			ts := s.tilesetAt(used[0])
			if ts != nil && ts.ImageSource != "" {
				s.w.WriteKeyAndValue("image", path.Base(s.relPath(ts.ImageSource)))
			}
		}
	case LayerImageAll:
		s.w.StartNamedTable("images")
		for _, idx := range used {
			if ts := s.tilesetAt(idx); ts != nil && ts.ImageSource != "" {
				s.w.WriteValue(path.Base(s.relPath(ts.ImageSource)))
			}
		}
		s.w.EndTable()
	}
}

// writeSpecialTiles lists the cells whose tile carries custom
// properties, so loaders of the indexed-rows encoding can find them
// without per-cell tables. Rows and columns are 1-based.
func (s *session) writeSpecialTiles(l *tmap.TileLayer) error {
	w := s.w
	open := false

	for y := 0; y < l.Height; y++ {
		for x := 0; x < l.Width; x++ {
			cell := l.CellAt(x, y)
			if cell.Empty() {
				continue
			}
			ts := s.tilesetAt(cell.Tileset)
			if ts == nil {
				continue
			}
			tile := ts.TileAt(cell.ID)
			if tile == nil || len(tile.Properties) == 0 {
				continue
			}
			id, err := s.mapper.CellToGIDOrigin(cell)
			if err != nil {
				return err
			}
			if !open {
				w.StartNamedTable("specialtiles")
				open = true
			}
			w.StartQuotedTable(fmt.Sprintf("y = %d, x = %d", y+1, x+1))
			w.WriteKeyAndValue("id", id)
			w.EndTable()
		}
	}
	if open {
		w.EndTable()
	}
	return nil
}

func (s *session) writeTileData(l *tmap.TileLayer) error {
	w := s.w
	w.StartNamedTable("data")

	switch s.profile.DataFormat {
	case DataFlat:
		for y := 0; y < l.Height; y++ {
			if y > 0 {
				w.PrepareNewLine()
			}
			for x := 0; x < l.Width; x++ {
				id, err := s.mapper.CellToGID(l.CellAt(x, y))
				if err != nil {
					return err
				}
				w.WriteValue(id)
			}
		}

	case DataIndexedRows:
		for y := 0; y < l.Height; y++ {
			w.PrepareNewLine()
			w.SetCompact(true)
			w.StartTable()
			w.WriteValue(y + 1)
			for x := 0; x < l.Width; x++ {
				id, err := s.mapper.CellToGIDOrigin(l.CellAt(x, y))
				if err != nil {
					return err
				}
				w.WriteValue(id)
			}
			w.EndTable()
			w.SetCompact(false)
		}

	default: // DataRows
		for y := 0; y < l.Height; y++ {
			w.PrepareNewLine()
			w.SetCompact(true)
			w.StartTable()
			for x := 0; x < l.Width; x++ {
				id, err := s.mapper.CellToGID(l.CellAt(x, y))
				if err != nil {
					return err
				}
				w.WriteValue(id)
			}
			w.EndTable()
			w.SetCompact(false)
		}
	}

	w.EndTable()
	w.EndTable() // layer
	return nil
}

func (s *session) writeObjectLayer(prio int, l *tmap.ObjectLayer, key string) error {
	w := s.w

	if s.profile.Dialect == DialectMoai {
		w.StartQuotedTable(l.Name)
		if prio > 0 {
			w.WriteKeyAndValue("prio", prio)
		}
	} else {
		if key == "" {
			w.StartTable()
		} else {
			w.StartNamedTable(key)
		}
		w.WriteKeyAndValue("name", l.Name)
	}
	w.WriteKeyAndValue("type", "objectgroup")
	w.WriteKeyAndValue("visible", l.Visible)
	w.WriteKeyAndValue("opacity", l.Opacity)
	s.writeProperties(l.Properties)

	w.StartNamedTable("objects")
	for _, obj := range l.Objects {
		if err := s.writeObject(obj); err != nil {
			return err
		}
	}
	w.EndTable()

	w.EndTable()
	return nil
}

func (s *session) writeObject(o *tmap.Object) error {
	w := s.w
	w.StartTable()

	if s.profile.Dialect == DialectStandard {
		w.WriteKeyAndValue("id", o.ID)
	}
	w.WriteKeyAndValue("name", o.Name)
	w.WriteKeyAndValue("type", o.Type)
	w.WriteKeyAndValue("shape", o.Shape.String())

	w.WriteKeyAndValue("x", o.X)
	w.WriteKeyAndValue("y", o.Y)
	w.WriteKeyAndValue("width", o.Width)
	w.WriteKeyAndValue("height", o.Height)
	w.WriteKeyAndValue("rotation", o.Rotation)

	if !o.Cell.Empty() {
		id, err := s.mapper.CellToGID(o.Cell)
		if err != nil {
			return err
		}
		w.WriteKeyAndValue("gid", id)
	}

	w.WriteKeyAndValue("visible", o.Visible)

	if len(o.Points) > 0 {
		s.writePoints(o)
	}

	s.writeProperties(o.Properties)

	w.EndTable()
	return nil
}

func (s *session) writePoints(o *tmap.Object) {
	w := s.w

	if o.Shape == tmap.Polygon {
		w.StartNamedTable("polygon")
	} else {
		w.StartNamedTable("polyline")
	}

	switch s.profile.PolygonFormat {
	case PolygonPairs:
		for _, p := range o.Points {
			w.StartTable()
			w.SetCompact(true)
			w.WriteValue(p.X)
			w.WriteValue(p.Y)
			w.EndTable()
			w.SetCompact(false)
		}
		w.EndTable()

	case PolygonParallel:
		w.StartNamedTable("x")
		w.SetCompact(true)
		for _, p := range o.Points {
			w.WriteValue(p.X)
		}
		w.EndTable()
		w.SetCompact(false)

		w.StartNamedTable("y")
		w.SetCompact(true)
		for _, p := range o.Points {
			w.WriteValue(p.Y)
		}
		w.EndTable()
		w.SetCompact(false)
		w.EndTable()

	case PolygonInterleaved:
		w.SetCompact(true)
		for _, p := range o.Points {
			w.WriteValue(p.X)
			w.WriteValue(p.Y)
		}
		w.EndTable()
		w.SetCompact(false)

	default: // PolygonPoints
		for _, p := range o.Points {
			w.StartTable()
			w.SetCompact(true)
			w.WriteKeyAndValue("x", p.X)
			w.WriteKeyAndValue("y", p.Y)
			w.EndTable()
			w.SetCompact(false)
		}
		w.EndTable()
	}
}

func (s *session) writeImageLayer(prio int, l *tmap.ImageLayer) {
	w := s.w

	if s.profile.Dialect == DialectMoai {
		w.StartQuotedTable(l.Name)
		w.WriteKeyAndValue("prio", prio)
	} else {
		w.StartTable()
		w.WriteKeyAndValue("name", l.Name)
	}
	w.WriteKeyAndValue("type", "imagelayer")
	w.WriteKeyAndValue("x", l.X)
	w.WriteKeyAndValue("y", l.Y)
	w.WriteKeyAndValue("visible", l.Visible)
	w.WriteKeyAndValue("opacity", l.Opacity)

	w.WriteKeyAndValue("image", s.relPath(l.ImageSource))

	if tc := l.TransparentColor; tc != nil {
		w.WriteKeyAndValue("transparentcolor", tc.Hex())
	}

	s.writeProperties(l.Properties)

	w.EndTable()
}

// usedTilesets returns the distinct tileset indices a layer draws from,
// in ascending firstgid order.
func usedTilesets(l *tmap.TileLayer) []int {
	var used []int
	for _, c := range l.Cells {
		if !c.Empty() && !slices.Contains(used, c.Tileset) {
			used = append(used, c.Tileset)
		}
	}
	slices.Sort(used)
	return used
}
