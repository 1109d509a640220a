package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kvisli/go-luamap/lua"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadProfileDefaults(t *testing.T) {
	profile, err := loadProfile("", "")
	require.NoError(t, err)
	assert.Equal(t, lua.DefaultProfile(), profile)

	profile, err = loadProfile("", "moai")
	require.NoError(t, err)
	assert.Equal(t, lua.MoaiProfile(), profile)
}

func TestLoadProfileUnknown(t *testing.T) {
	_, err := loadProfile("", "rpgmaker")
	assert.ErrorContains(t, err, "unknown profile")
}

func TestLoadProfileFromConfig(t *testing.T) {
	path := writeConfig(t, `
profile: default
polygon_format: interleaved
data_format: flat
layer_image: all
flatten_tileoffset: true
`)

	profile, err := loadProfile(path, "")
	require.NoError(t, err)

	want := lua.DefaultProfile()
	want.PolygonFormat = lua.PolygonInterleaved
	want.DataFormat = lua.DataFlat
	want.LayerImage = lua.LayerImageAll
	want.FlattenTileOffset = true
	assert.Equal(t, want, profile)
}

func TestLoadProfileFlagBeatsConfig(t *testing.T) {
	path := writeConfig(t, "profile: default\n")

	profile, err := loadProfile(path, "moai")
	require.NoError(t, err)
	assert.Equal(t, lua.MoaiProfile(), profile)
}

func TestLoadProfileBadValues(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"polygon", "polygon_format: spiral\n", "unknown polygon_format"},
		{"data", "data_format: columns\n", "unknown data_format"},
		{"layer image", "layer_image: last\n", "unknown layer_image"},
		{"not yaml", "{{nope\n", "profile.yaml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadProfile(writeConfig(t, tt.body), "")
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestLoadProfileMissingConfig(t *testing.T) {
	_, err := loadProfile(filepath.Join(t.TempDir(), "missing.yaml"), "")
	assert.Error(t, err)
}
