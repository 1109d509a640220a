package main

import (
	"fmt"
	"os"

	"github.com/kvisli/go-luamap/lua"
	"gopkg.in/yaml.v3"
)

// profileConfig is the YAML shape of a profile file. Every field is
// optional; unset fields keep the values of the base profile.
type profileConfig struct {
	Profile           string `yaml:"profile"`
	PolygonFormat     string `yaml:"polygon_format"`
	DataFormat        string `yaml:"data_format"`
	LayerImage        string `yaml:"layer_image"`
	FlattenTileOffset *bool  `yaml:"flatten_tileoffset"`
}

// loadProfile resolves the output profile from the -profile flag and an
// optional YAML config file. The flag names the base profile; the file
// may rename it and override individual format choices.
func loadProfile(configPath, name string) (lua.Profile, error) {
	var cfg profileConfig
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return lua.Profile{}, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return lua.Profile{}, fmt.Errorf("%v: %w", configPath, err)
		}
	}
	if name == "" {
		name = cfg.Profile
	}

	profile, ok := lua.ProfileByName(name)
	if !ok {
		return lua.Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return applyOverrides(profile, &cfg)
}

func applyOverrides(p lua.Profile, cfg *profileConfig) (lua.Profile, error) {
	switch cfg.PolygonFormat {
	case "":
	case "points":
		p.PolygonFormat = lua.PolygonPoints
	case "pairs":
		p.PolygonFormat = lua.PolygonPairs
	case "parallel":
		p.PolygonFormat = lua.PolygonParallel
	case "interleaved":
		p.PolygonFormat = lua.PolygonInterleaved
	default:
		return p, fmt.Errorf("unknown polygon_format %q", cfg.PolygonFormat)
	}

	switch cfg.DataFormat {
	case "":
	case "rows":
		p.DataFormat = lua.DataRows
	case "flat":
		p.DataFormat = lua.DataFlat
	case "indexed_rows":
		p.DataFormat = lua.DataIndexedRows
	default:
		return p, fmt.Errorf("unknown data_format %q", cfg.DataFormat)
	}

	switch cfg.LayerImage {
	case "":
	case "none":
		p.LayerImage = lua.LayerImageNone
	case "first":
		p.LayerImage = lua.LayerImageFirst
	case "all":
		p.LayerImage = lua.LayerImageAll
	default:
		return p, fmt.Errorf("unknown layer_image %q", cfg.LayerImage)
	}

	if cfg.FlattenTileOffset != nil {
		p.FlattenTileOffset = *cfg.FlattenTileOffset
	}
	return p, nil
}
