package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/google/subcommands"
	"github.com/kvisli/go-luamap/tmap"
	"github.com/kvisli/go-luamap/tmx"
)

type inspectCmd struct{}

func (c *inspectCmd) Name() string     { return "inspect" }
func (c *inspectCmd) Synopsis() string { return "print a summary of a TMX map" }
func (c *inspectCmd) Usage() string {
	return "maplua inspect <map.tmx>...\n"
}
func (c *inspectCmd) SetFlags(f *flag.FlagSet) {}

func (c *inspectCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if len(f.Args()) == 0 {
		log.Println("no input maps given")
		return subcommands.ExitUsageError
	}

	for _, input := range f.Args() {
		m, err := tmx.ReadFile(input)
		if err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
		printSummary(input, m)
	}
	return subcommands.ExitSuccess
}

func printSummary(name string, m *tmap.Map) {
	fmt.Printf("%v: %v %dx%d, tile %dx%d\n",
		name, m.Orientation, m.Width, m.Height, m.TileWidth, m.TileHeight)
	for _, ts := range m.Tilesets {
		fmt.Printf("  tileset %q: %d tiles (%dx%d)\n",
			ts.Name, ts.TileCount, ts.TileWidth, ts.TileHeight)
	}
	for _, layer := range m.Layers {
		switch l := layer.(type) {
		case *tmap.TileLayer:
			fmt.Printf("  tilelayer %q: %dx%d\n", l.Name, l.Width, l.Height)
		case *tmap.ObjectLayer:
			fmt.Printf("  objectgroup %q: %d objects\n", l.Name, len(l.Objects))
		case *tmap.ImageLayer:
			fmt.Printf("  imagelayer %q: %v\n", l.Name, l.ImageSource)
		}
	}
}
