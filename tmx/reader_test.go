package tmx_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kvisli/go-luamap/internal"
	"github.com/kvisli/go-luamap/tmap"
	"github.com/kvisli/go-luamap/tmx"
)

const sampleTMX = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.0" tiledversion="1.1.5" orientation="orthogonal" renderorder="right-down" width="2" height="2" tilewidth="16" tileheight="16" backgroundcolor="#ff8000" nextobjectid="3">
 <properties>
  <property name="author" value="kvisli"/>
 </properties>
 <tileset firstgid="1" name="ground" tilewidth="16" tileheight="16" tilecount="2">
  <image source="ground.png" width="32" height="16"/>
  <tile id="1">
   <properties>
    <property name="solid" type="bool" value="true"/>
   </properties>
  </tile>
 </tileset>
 <layer name="ground" width="2" height="2">
  <data encoding="csv">
1,0,
2,0
  </data>
 </layer>
 <objectgroup name="objects">
  <object id="1" name="spawn" x="16" y="8" width="16" height="16"/>
 </objectgroup>
</map>
`

func TestReadSample(t *testing.T) {
	t.Parallel()

	got, err := tmx.Read(strings.NewReader(sampleTMX))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if diff := cmp.Diff(internal.SampleMap(), got); diff != "" {
		t.Errorf("map mismatch (-want+got):\n%v", diff)
	}
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), "sample.tmx")
	if err := os.WriteFile(filePath, []byte(sampleTMX), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := tmx.ReadFile(filePath)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if diff := cmp.Diff(internal.SampleMap(), got); diff != "" {
		t.Errorf("map mismatch (-want+got):\n%v", diff)
	}

	if _, err := tmx.ReadFile(filepath.Join(t.TempDir(), "missing.tmx")); err == nil {
		t.Error("ReadFile succeeded on a missing file")
	}
}

// layerDoc wraps a data element in a minimal 2x2 map with one two-tile
// tileset, for exercising the layer data decoders.
func layerDoc(data string) string {
	return `<map orientation="orthogonal" width="2" height="2" tilewidth="16" tileheight="16" nextobjectid="1">
 <tileset firstgid="1" name="t" tilewidth="16" tileheight="16" tilecount="2">
  <image source="t.png" width="32" height="16"/>
 </tileset>
 <layer name="l" width="2" height="2">
  ` + data + `
 </layer>
</map>`
}

func readCells(t *testing.T, doc string) []tmap.Cell {
	t.Helper()
	m, err := tmx.Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	layer, ok := m.Layers[0].(*tmap.TileLayer)
	if !ok {
		t.Fatalf("layer is %T, want *tmap.TileLayer", m.Layers[0])
	}
	return layer.Cells
}

func TestDataEncodings(t *testing.T) {
	t.Parallel()

	want := []tmap.Cell{{Tileset: 0, ID: 0}, tmap.EmptyCell, {Tileset: 0, ID: 1}, tmap.EmptyCell}

	for _, tc := range []struct {
		name string
		data string
	}{
		{"xml", `<data>
   <tile gid="1"/><tile gid="0"/><tile gid="2"/><tile gid="0"/>
  </data>`},
		{"csv", `<data encoding="csv">1,0,2,0</data>`},
		{"base64", `<data encoding="base64">AQAAAAAAAAACAAAAAAAAAA==</data>`},
		{"base64-zlib", `<data encoding="base64" compression="zlib">eJxjZIAAJigNAAAwAAQ=</data>`},
		{"base64-gzip", `<data encoding="base64" compression="gzip">H4sIAAAAAAAC/2NkgAAmKA0Aud32ABAAAAA=</data>`},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := readCells(t, layerDoc(tc.data)); !cmp.Equal(got, want) {
				t.Errorf("cells = %v, want %v", got, want)
			}
		})
	}
}

func TestDeclaredFirstGIDs(t *testing.T) {
	t.Parallel()

	// gids must resolve by the document's firstgid values, not by
	// assuming ranges start at 1.
	doc := `<map orientation="orthogonal" width="2" height="2" tilewidth="16" tileheight="16">
 <tileset firstgid="5" name="a" tilewidth="16" tileheight="16" tilecount="4">
  <image source="a.png" width="64" height="16"/>
 </tileset>
 <tileset firstgid="20" name="b" tilewidth="16" tileheight="16" tilecount="2">
  <image source="b.png" width="32" height="16"/>
 </tileset>
 <layer name="l" width="2" height="2">
  <data encoding="csv">5,0,8,21</data>
 </layer>
</map>`

	want := []tmap.Cell{
		{Tileset: 0, ID: 0},
		tmap.EmptyCell,
		{Tileset: 0, ID: 3},
		{Tileset: 1, ID: 1},
	}
	if got := readCells(t, doc); !cmp.Equal(got, want) {
		t.Errorf("cells = %v, want %v", got, want)
	}
}

func TestOverlappingFirstGIDs(t *testing.T) {
	t.Parallel()

	doc := `<map orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="5" name="a" tilewidth="16" tileheight="16" tilecount="4">
  <image source="a.png" width="64" height="16"/>
 </tileset>
 <tileset firstgid="4" name="b" tilewidth="16" tileheight="16" tilecount="2">
  <image source="b.png" width="32" height="16"/>
 </tileset>
 <layer name="l" width="1" height="1">
  <data encoding="csv">5</data>
 </layer>
</map>`

	if _, err := tmx.Read(strings.NewReader(doc)); !errors.Is(err, tmx.ErrBadMap) {
		t.Errorf("Read = %v, want ErrBadMap", err)
	}
}

func TestFlipFlags(t *testing.T) {
	t.Parallel()

	// First cell carries the horizontal flip bit.
	doc := layerDoc(`<data encoding="base64">AQAAgAAAAAACAAAAAAAAAA==</data>`)
	cells := readCells(t, doc)
	if got, want := cells[0], (tmap.Cell{Tileset: 0, ID: 0, FlipH: true}); got != want {
		t.Errorf("cells[0] = %v, want %v", got, want)
	}
}

func TestReadErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name string
		doc  string
		want error
	}{
		{
			"external tileset",
			`<map orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" source="ground.tsx"/>
</map>`,
			tmx.ErrExternalTileset,
		},
		{
			"unknown encoding",
			layerDoc(`<data encoding="hex">01</data>`),
			tmx.ErrUnsupportedEncoding,
		},
		{
			"unknown compression",
			layerDoc(`<data encoding="base64" compression="snappy">AQAAAAAAAAACAAAAAAAAAA==</data>`),
			tmx.ErrUnsupportedEncoding,
		},
		{
			"cell count mismatch",
			layerDoc(`<data encoding="csv">1,0,2</data>`),
			tmx.ErrBadMap,
		},
		{
			"bad orientation",
			`<map orientation="spherical" width="1" height="1" tilewidth="16" tileheight="16"/>`,
			tmx.ErrBadMap,
		},
		{
			"not xml",
			`return {}`,
			tmx.ErrBadMap,
		},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := tmx.Read(strings.NewReader(tc.doc))
			if !errors.Is(err, tc.want) {
				t.Errorf("Read = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestImageLayer(t *testing.T) {
	t.Parallel()

	doc := `<map orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <imagelayer name="backdrop" opacity="0.5">
  <image source="backdrop.png" trans="ff0000"/>
 </imagelayer>
</map>`

	m, err := tmx.Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	want := &tmap.ImageLayer{
		LayerCommon: tmap.LayerCommon{
			Name:       "backdrop",
			Visible:    true,
			Opacity:    0.5,
			Properties: tmap.Properties{},
		},
		ImageSource:      "backdrop.png",
		TransparentColor: &tmap.Color{R: 255, A: 255},
	}
	if diff := cmp.Diff(want, m.Layers[0]); diff != "" {
		t.Errorf("image layer mismatch (-want+got):\n%v", diff)
	}
}

func TestPropertyTypes(t *testing.T) {
	t.Parallel()

	doc := `<map orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <properties>
  <property name="flag" type="bool" value="true"/>
  <property name="count" type="int" value="42"/>
  <property name="scale" type="float" value="1.5"/>
  <property name="title" value="level one"/>
  <property name="note">multi
line</property>
 </properties>
</map>`

	m, err := tmx.Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	want := tmap.Properties{
		"flag":  true,
		"count": 42,
		"scale": 1.5,
		"title": "level one",
		"note":  "multi\nline",
	}
	if diff := cmp.Diff(want, m.Properties); diff != "" {
		t.Errorf("properties mismatch (-want+got):\n%v", diff)
	}
}

func TestObjectShapes(t *testing.T) {
	t.Parallel()

	doc := `<map orientation="orthogonal" width="1" height="1" tilewidth="16" tileheight="16">
 <tileset firstgid="1" name="t" tilewidth="16" tileheight="16" tilecount="2">
  <image source="t.png" width="32" height="16"/>
 </tileset>
 <objectgroup name="shapes">
  <object id="1" x="0" y="0" width="8" height="8"/>
  <object id="2" x="0" y="0" width="8" height="8">
   <ellipse/>
  </object>
  <object id="3" x="0" y="0">
   <polygon points="0,0 16,0 16,8"/>
  </object>
  <object id="4" x="0" y="0">
   <polyline points="0,0 8,8"/>
  </object>
  <object id="5" x="0" y="16" gid="2"/>
 </objectgroup>
</map>`

	m, err := tmx.Read(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	layer := m.Layers[0].(*tmap.ObjectLayer)

	shapes := make([]tmap.Shape, len(layer.Objects))
	for i, o := range layer.Objects {
		shapes[i] = o.Shape
	}
	want := []tmap.Shape{tmap.Rectangle, tmap.Ellipse, tmap.Polygon, tmap.Polyline, tmap.Rectangle}
	if !cmp.Equal(shapes, want) {
		t.Errorf("shapes = %v, want %v", shapes, want)
	}

	if got, want := layer.Objects[2].Points, []tmap.Point{{X: 0, Y: 0}, {X: 16, Y: 0}, {X: 16, Y: 8}}; !cmp.Equal(got, want) {
		t.Errorf("polygon points = %v, want %v", got, want)
	}
	if got, want := layer.Objects[4].Cell, (tmap.Cell{Tileset: 0, ID: 1}); got != want {
		t.Errorf("tile object cell = %v, want %v", got, want)
	}
}
