// Package internal holds shared test fixtures.
package internal

import "github.com/kvisli/go-luamap/tmap"

// SampleMap returns a small orthogonal map with one tileset, a tile
// grid layer and an object layer. It matches the TMX document in the
// tmx package tests field for field.
func SampleMap() *tmap.Map {
	solid := tmap.NewTile()
	solid.Properties = tmap.Properties{"solid": true}

	return &tmap.Map{
		Orientation:     tmap.Orthogonal,
		Width:           2,
		Height:          2,
		TileWidth:       16,
		TileHeight:      16,
		BackgroundColor: &tmap.Color{R: 255, G: 128, B: 0, A: 255},
		NextObjectID:    3,
		TiledVersion:    "1.1.5",
		Properties:      tmap.Properties{"author": "kvisli"},
		Tilesets: []*tmap.Tileset{
			{
				Name:        "ground",
				ImageSource: "ground.png",
				ImageWidth:  32,
				ImageHeight: 16,
				TileWidth:   16,
				TileHeight:  16,
				Properties:  tmap.Properties{},
				Tiles:       map[int]*tmap.Tile{1: solid},
				TileCount:   2,
			},
		},
		Layers: []tmap.Layer{
			&tmap.TileLayer{
				LayerCommon: tmap.LayerCommon{
					Name:       "ground",
					Visible:    true,
					Opacity:    1,
					Properties: tmap.Properties{},
				},
				Width:  2,
				Height: 2,
				Cells: []tmap.Cell{
					{Tileset: 0, ID: 0},
					tmap.EmptyCell,
					{Tileset: 0, ID: 1},
					tmap.EmptyCell,
				},
			},
			&tmap.ObjectLayer{
				LayerCommon: tmap.LayerCommon{
					Name:       "objects",
					Visible:    true,
					Opacity:    1,
					Properties: tmap.Properties{},
				},
				Objects: []*tmap.Object{
					{
						ID:         1,
						Name:       "spawn",
						Shape:      tmap.Rectangle,
						X:          16,
						Y:          8,
						Width:      16,
						Height:     16,
						Visible:    true,
						Cell:       tmap.EmptyCell,
						Properties: tmap.Properties{},
					},
				},
			},
		},
	}
}
