// Package tmx reads tile maps in the TMX (Tiled XML) format into the
// tmap model. Only embedded tilesets are supported; layer data may be
// encoded as csv or base64 with optional gzip or zlib compression.
package tmx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/kvisli/go-luamap/gid"
	"github.com/kvisli/go-luamap/tmap"
)

var (
	ErrUnsupportedEncoding = errors.New("tmx: unsupported layer data encoding")
	ErrExternalTileset     = errors.New("tmx: external tilesets are not supported")
	ErrBadMap              = errors.New("tmx: malformed map")
)

// ReadFile reads a TMX map from a file.
func ReadFile(filePath string) (*tmap.Map, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", filePath, err)
	}
	return m, nil
}

// Read reads a TMX map from r.
func Read(r io.Reader) (*tmap.Map, error) {
	var doc xmlMap
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadMap, err)
	}
	return buildMap(&doc)
}

// The xml* types mirror the TMX schema subset the model covers. Layer
// kinds must stay in document order, so the map element is decoded by
// hand below rather than into per-kind slices.

type xmlMap struct {
	Orientation     string
	TiledVersion    string
	Width           int
	Height          int
	TileWidth       int
	TileHeight      int
	HexSideLength   int
	StaggerAxis     string
	StaggerIndex    string
	BackgroundColor string
	NextObjectID    int

	Properties xmlProperties
	Tilesets   []xmlTileset
	Layers     []any // *xmlLayer | *xmlObjectGroup | *xmlImageLayer
}

func (m *xmlMap) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, a := range start.Attr {
		switch a.Name.Local {
		case "orientation":
			m.Orientation = a.Value
		case "tiledversion":
			m.TiledVersion = a.Value
		case "width":
			m.Width, _ = strconv.Atoi(a.Value)
		case "height":
			m.Height, _ = strconv.Atoi(a.Value)
		case "tilewidth":
			m.TileWidth, _ = strconv.Atoi(a.Value)
		case "tileheight":
			m.TileHeight, _ = strconv.Atoi(a.Value)
		case "hexsidelength":
			m.HexSideLength, _ = strconv.Atoi(a.Value)
		case "staggeraxis":
			m.StaggerAxis = a.Value
		case "staggerindex":
			m.StaggerIndex = a.Value
		case "backgroundcolor":
			m.BackgroundColor = a.Value
		case "nextobjectid":
			m.NextObjectID, _ = strconv.Atoi(a.Value)
		}
	}

	for {
		tok, err := d.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if end, ok := tok.(xml.EndElement); ok && end.Name == start.Name {
			return nil
		}
		el, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch el.Name.Local {
		case "properties":
			if err := d.DecodeElement(&m.Properties, &el); err != nil {
				return err
			}
		case "tileset":
			var ts xmlTileset
			if err := d.DecodeElement(&ts, &el); err != nil {
				return err
			}
			m.Tilesets = append(m.Tilesets, ts)
		case "layer":
			var l xmlLayer
			if err := d.DecodeElement(&l, &el); err != nil {
				return err
			}
			m.Layers = append(m.Layers, &l)
		case "objectgroup":
			var g xmlObjectGroup
			if err := d.DecodeElement(&g, &el); err != nil {
				return err
			}
			m.Layers = append(m.Layers, &g)
		case "imagelayer":
			var il xmlImageLayer
			if err := d.DecodeElement(&il, &el); err != nil {
				return err
			}
			m.Layers = append(m.Layers, &il)
		default:
			if err := d.Skip(); err != nil {
				return err
			}
		}
	}
}

type xmlProperties struct {
	Properties []xmlProperty `xml:"property"`
}

type xmlProperty struct {
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	Value string `xml:"value,attr"`
	Body  string `xml:",chardata"`
}

type xmlTileset struct {
	FirstGID   uint32        `xml:"firstgid,attr"`
	Source     string        `xml:"source,attr"`
	Name       string        `xml:"name,attr"`
	TileWidth  int           `xml:"tilewidth,attr"`
	TileHeight int           `xml:"tileheight,attr"`
	Spacing    int           `xml:"spacing,attr"`
	Margin     int           `xml:"margin,attr"`
	TileCount  int           `xml:"tilecount,attr"`
	Offset     *xmlOffset    `xml:"tileoffset"`
	Image      *xmlImage     `xml:"image"`
	Properties xmlProperties `xml:"properties"`
	Terrains   []xmlTerrain  `xml:"terraintypes>terrain"`
	Tiles      []xmlTile     `xml:"tile"`
}

type xmlOffset struct {
	X int `xml:"x,attr"`
	Y int `xml:"y,attr"`
}

type xmlImage struct {
	Source string `xml:"source,attr"`
	Trans  string `xml:"trans,attr"`
	Width  int    `xml:"width,attr"`
	Height int    `xml:"height,attr"`
}

type xmlTerrain struct {
	Name       string        `xml:"name,attr"`
	Tile       int           `xml:"tile,attr"`
	Properties xmlProperties `xml:"properties"`
}

type xmlTile struct {
	ID          int             `xml:"id,attr"`
	Terrain     string          `xml:"terrain,attr"`
	Probability *float64        `xml:"probability,attr"`
	Properties  xmlProperties   `xml:"properties"`
	Image       *xmlImage       `xml:"image"`
	ObjectGroup *xmlObjectGroup `xml:"objectgroup"`
	Frames      []xmlFrame      `xml:"animation>frame"`
}

type xmlFrame struct {
	TileID   int `xml:"tileid,attr"`
	Duration int `xml:"duration,attr"`
}

type xmlLayer struct {
	Name       string        `xml:"name,attr"`
	X          int           `xml:"x,attr"`
	Y          int           `xml:"y,attr"`
	Width      int           `xml:"width,attr"`
	Height     int           `xml:"height,attr"`
	Visible    *bool         `xml:"visible,attr"`
	Opacity    *float64      `xml:"opacity,attr"`
	Properties xmlProperties `xml:"properties"`
	Data       xmlData       `xml:"data"`
}

type xmlData struct {
	Encoding    string        `xml:"encoding,attr"`
	Compression string        `xml:"compression,attr"`
	Tiles       []xmlDataTile `xml:"tile"`
	Body        string        `xml:",chardata"`
}

type xmlDataTile struct {
	GID uint32 `xml:"gid,attr"`
}

type xmlObjectGroup struct {
	Name       string        `xml:"name,attr"`
	Visible    *bool         `xml:"visible,attr"`
	Opacity    *float64      `xml:"opacity,attr"`
	Properties xmlProperties `xml:"properties"`
	Objects    []xmlObject   `xml:"object"`
}

type xmlObject struct {
	ID         int           `xml:"id,attr"`
	Name       string        `xml:"name,attr"`
	Type       string        `xml:"type,attr"`
	X          float64       `xml:"x,attr"`
	Y          float64       `xml:"y,attr"`
	Width      float64       `xml:"width,attr"`
	Height     float64       `xml:"height,attr"`
	Rotation   float64       `xml:"rotation,attr"`
	GID        *uint32       `xml:"gid,attr"`
	Visible    *bool         `xml:"visible,attr"`
	Ellipse    *struct{}     `xml:"ellipse"`
	Polygon    *xmlPoints    `xml:"polygon"`
	Polyline   *xmlPoints    `xml:"polyline"`
	Properties xmlProperties `xml:"properties"`
}

type xmlPoints struct {
	Points string `xml:"points,attr"`
}

type xmlImageLayer struct {
	Name       string        `xml:"name,attr"`
	X          int           `xml:"x,attr"`
	Y          int           `xml:"y,attr"`
	Visible    *bool         `xml:"visible,attr"`
	Opacity    *float64      `xml:"opacity,attr"`
	Image      *xmlImage     `xml:"image"`
	Properties xmlProperties `xml:"properties"`
}

// gidResolver finds the owning tileset of raw gid values using the
// firstgid attributes of the document.
type gidResolver struct {
	mapper *gid.Mapper
}

func newGIDResolver(tilesets []xmlTileset) (*gidResolver, error) {
	m := gid.NewMapper()
	next := uint32(1)
	for i, ts := range tilesets {
		first := ts.FirstGID
		if first == 0 {
			// attribute missing; gids continue from the previous range
			first = next
		}
		count := ts.TileCount
		if n := i + 1; n < len(tilesets) && tilesets[n].FirstGID > first {
			// firstgid gaps are authoritative over tilecount attrs
			count = int(tilesets[n].FirstGID - first)
		} else if count == 0 {
			count = derivedTileCount(&ts)
		}
		if err := m.RegisterTilesetAt(first, count); err != nil {
			return nil, fmt.Errorf("%w: tileset %q: %v", ErrBadMap, ts.Name, err)
		}
		next = first + uint32(count)
	}
	return &gidResolver{mapper: m}, nil
}

func (r *gidResolver) cell(raw uint32) (tmap.Cell, error) {
	return r.mapper.GIDToCell(raw)
}

func derivedTileCount(ts *xmlTileset) int {
	if ts.Image == nil || ts.TileWidth <= 0 || ts.TileHeight <= 0 {
		return 0
	}
	cols := (ts.Image.Width - 2*ts.Margin + ts.Spacing) / (ts.TileWidth + ts.Spacing)
	rows := (ts.Image.Height - 2*ts.Margin + ts.Spacing) / (ts.TileHeight + ts.Spacing)
	return cols * rows
}

func buildMap(doc *xmlMap) (*tmap.Map, error) {
	m := &tmap.Map{
		Width:         doc.Width,
		Height:        doc.Height,
		TileWidth:     doc.TileWidth,
		TileHeight:    doc.TileHeight,
		HexSideLength: doc.HexSideLength,
		TiledVersion:  doc.TiledVersion,
		NextObjectID:  doc.NextObjectID,
		Properties:    buildProperties(doc.Properties),
	}

	switch doc.Orientation {
	case "", "orthogonal":
		m.Orientation = tmap.Orthogonal
	case "isometric":
		m.Orientation = tmap.Isometric
	case "staggered":
		m.Orientation = tmap.Staggered
	case "hexagonal":
		m.Orientation = tmap.Hexagonal
	default:
		return nil, fmt.Errorf("%w: orientation %q", ErrBadMap, doc.Orientation)
	}
	if doc.StaggerAxis == "y" {
		m.StaggerAxis = tmap.StaggerY
	}
	if doc.StaggerIndex == "even" {
		m.StaggerIndex = tmap.StaggerEven
	}
	m.BackgroundColor = parseColor(doc.BackgroundColor)

	for _, ts := range doc.Tilesets {
		if ts.Source != "" {
			return nil, fmt.Errorf("%w: %v", ErrExternalTileset, ts.Source)
		}
		built, err := buildTileset(&ts)
		if err != nil {
			return nil, err
		}
		m.Tilesets = append(m.Tilesets, built)
	}

	resolver, err := newGIDResolver(doc.Tilesets)
	if err != nil {
		return nil, err
	}
	for _, raw := range doc.Layers {
		var (
			layer tmap.Layer
			err   error
		)
		switch l := raw.(type) {
		case *xmlLayer:
			layer, err = buildTileLayer(l, doc, resolver)
		case *xmlObjectGroup:
			layer, err = buildObjectLayer(l, resolver)
		case *xmlImageLayer:
			layer = buildImageLayer(l)
		}
		if err != nil {
			return nil, err
		}
		m.Layers = append(m.Layers, layer)
	}

	return m, nil
}

func buildTileset(ts *xmlTileset) (*tmap.Tileset, error) {
	out := &tmap.Tileset{
		Name:       ts.Name,
		TileWidth:  ts.TileWidth,
		TileHeight: ts.TileHeight,
		Spacing:    ts.Spacing,
		Margin:     ts.Margin,
		TileCount:  ts.TileCount,
		Properties: buildProperties(ts.Properties),
	}
	if ts.Offset != nil {
		out.OffsetX = ts.Offset.X
		out.OffsetY = ts.Offset.Y
	}
	if ts.Image != nil {
		out.ImageSource = ts.Image.Source
		out.ImageWidth = ts.Image.Width
		out.ImageHeight = ts.Image.Height
		out.TransparentColor = parseColor(ts.Image.Trans)
	}
	if out.TileCount == 0 {
		out.TileCount = derivedTileCount(ts)
	}

	for _, t := range ts.Terrains {
		out.Terrains = append(out.Terrains, &tmap.Terrain{
			Name:        t.Name,
			ImageTileID: t.Tile,
			Properties:  buildProperties(t.Properties),
		})
	}

	for _, t := range ts.Tiles {
		tile, err := buildTile(&t)
		if err != nil {
			return nil, err
		}
		if out.Tiles == nil {
			out.Tiles = make(map[int]*tmap.Tile)
		}
		out.Tiles[t.ID] = tile
		if t.ID >= out.TileCount {
			out.TileCount = t.ID + 1
		}
	}

	return out, nil
}

func buildTile(t *xmlTile) (*tmap.Tile, error) {
	tile := tmap.NewTile()
	tile.Properties = buildProperties(t.Properties)
	if t.Image != nil {
		tile.ImageSource = t.Image.Source
		tile.Width = t.Image.Width
		tile.Height = t.Image.Height
	}
	if t.Probability != nil {
		tile.Probability = *t.Probability
	}
	if t.Terrain != "" {
		corners := strings.Split(t.Terrain, ",")
		if len(corners) != 4 {
			return nil, fmt.Errorf("%w: terrain %q", ErrBadMap, t.Terrain)
		}
		for i, c := range corners {
			if c == "" {
				continue
			}
			id, err := strconv.Atoi(c)
			if err != nil {
				return nil, fmt.Errorf("%w: terrain %q", ErrBadMap, t.Terrain)
			}
			tile.Terrain[i] = id
		}
	}
	for _, f := range t.Frames {
		tile.Animation = append(tile.Animation, tmap.Frame{TileID: f.TileID, Duration: f.Duration})
	}
	if t.ObjectGroup != nil {
		// Tile collision shapes never reference tiles, so no resolver
		// is needed here.
		group, err := buildObjectLayer(t.ObjectGroup, nil)
		if err != nil {
			return nil, err
		}
		tile.ObjectGroup = group
	}
	return tile, nil
}

func buildTileLayer(l *xmlLayer, doc *xmlMap, resolver *gidResolver) (*tmap.TileLayer, error) {
	width, height := l.Width, l.Height
	if width == 0 {
		width = doc.Width
	}
	if height == 0 {
		height = doc.Height
	}

	rawGIDs, err := decodeData(&l.Data, width, height)
	if err != nil {
		return nil, fmt.Errorf("layer %q: %w", l.Name, err)
	}

	cells := make([]tmap.Cell, len(rawGIDs))
	for i, raw := range rawGIDs {
		cell, err := resolver.cell(raw)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", l.Name, err)
		}
		cells[i] = cell
	}

	return &tmap.TileLayer{
		LayerCommon: layerCommon(l.Name, l.X, l.Y, l.Visible, l.Opacity, l.Properties),
		Width:       width,
		Height:      height,
		Cells:       cells,
	}, nil
}

func buildObjectLayer(g *xmlObjectGroup, resolver *gidResolver) (*tmap.ObjectLayer, error) {
	out := &tmap.ObjectLayer{
		LayerCommon: layerCommon(g.Name, 0, 0, g.Visible, g.Opacity, g.Properties),
	}
	for _, o := range g.Objects {
		obj := &tmap.Object{
			ID:         o.ID,
			Name:       o.Name,
			Type:       o.Type,
			X:          o.X,
			Y:          o.Y,
			Width:      o.Width,
			Height:     o.Height,
			Rotation:   o.Rotation,
			Visible:    o.Visible == nil || *o.Visible,
			Cell:       tmap.EmptyCell,
			Properties: buildProperties(o.Properties),
		}
		switch {
		case o.Ellipse != nil:
			obj.Shape = tmap.Ellipse
		case o.Polygon != nil:
			obj.Shape = tmap.Polygon
			points, err := parsePoints(o.Polygon.Points)
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", o.ID, err)
			}
			obj.Points = points
		case o.Polyline != nil:
			obj.Shape = tmap.Polyline
			points, err := parsePoints(o.Polyline.Points)
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", o.ID, err)
			}
			obj.Points = points
		default:
			obj.Shape = tmap.Rectangle
		}
		if o.GID != nil {
			if resolver == nil {
				return nil, fmt.Errorf("%w: tile object %d outside a map", ErrBadMap, o.ID)
			}
			cell, err := resolver.cell(*o.GID)
			if err != nil {
				return nil, fmt.Errorf("object %d: %w", o.ID, err)
			}
			obj.Cell = cell
		}
		out.Objects = append(out.Objects, obj)
	}
	return out, nil
}

func buildImageLayer(l *xmlImageLayer) *tmap.ImageLayer {
	out := &tmap.ImageLayer{
		LayerCommon: layerCommon(l.Name, l.X, l.Y, l.Visible, l.Opacity, l.Properties),
	}
	if l.Image != nil {
		out.ImageSource = l.Image.Source
		out.TransparentColor = parseColor(l.Image.Trans)
	}
	return out
}

func layerCommon(name string, x, y int, visible *bool, opacity *float64, props xmlProperties) tmap.LayerCommon {
	c := tmap.LayerCommon{
		Name:       name,
		X:          x,
		Y:          y,
		Visible:    visible == nil || *visible,
		Opacity:    1,
		Properties: buildProperties(props),
	}
	if opacity != nil {
		c.Opacity = *opacity
	}
	return c
}

func buildProperties(p xmlProperties) tmap.Properties {
	props := make(tmap.Properties, len(p.Properties))
	for _, prop := range p.Properties {
		value := prop.Value
		if value == "" {
			value = strings.TrimSpace(prop.Body)
		}
		switch prop.Type {
		case "bool":
			props[prop.Name] = value == "true"
		case "int":
			n, _ := strconv.Atoi(value)
			props[prop.Name] = n
		case "float":
			f, _ := strconv.ParseFloat(value, 64)
			props[prop.Name] = f
		default:
			props[prop.Name] = value
		}
	}
	return props
}

func parsePoints(s string) ([]tmap.Point, error) {
	fields := strings.Fields(s)
	points := make([]tmap.Point, 0, len(fields))
	for _, f := range fields {
		xs, ys, ok := strings.Cut(f, ",")
		if !ok {
			return nil, fmt.Errorf("%w: point %q", ErrBadMap, f)
		}
		x, errX := strconv.ParseFloat(xs, 64)
		y, errY := strconv.ParseFloat(ys, 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("%w: point %q", ErrBadMap, f)
		}
		points = append(points, tmap.Point{X: x, Y: y})
	}
	return points, nil
}

// parseColor accepts "#rrggbb" or "#aarrggbb" with an optional leading
// hash, returning nil for an empty or malformed value.
func parseColor(s string) *tmap.Color {
	s = strings.TrimPrefix(s, "#")
	var c tmap.Color
	switch len(s) {
	case 6:
		c.A = 255
	case 8:
		a, err := strconv.ParseUint(s[:2], 16, 8)
		if err != nil {
			return nil
		}
		c.A = uint8(a)
		s = s[2:]
	default:
		return nil
	}
	r, errR := strconv.ParseUint(s[0:2], 16, 8)
	g, errG := strconv.ParseUint(s[2:4], 16, 8)
	b, errB := strconv.ParseUint(s[4:6], 16, 8)
	if errR != nil || errG != nil || errB != nil {
		return nil
	}
	c.R, c.G, c.B = uint8(r), uint8(g), uint8(b)
	return &c
}
