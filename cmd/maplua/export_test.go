package main

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTMX = `<map orientation="orthogonal" width="2" height="2" tilewidth="16" tileheight="16" nextobjectid="1">
 <tileset firstgid="1" name="ground" tilewidth="16" tileheight="16" tilecount="2">
  <image source="ground.png" width="32" height="16"/>
 </tileset>
 <layer name="ground" width="2" height="2">
  <data encoding="csv">1,0,2,0</data>
 </layer>
</map>`

func TestOutputName(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		outputPath string
		outputDir  string
		want       string
	}{
		{"explicit path wins", "maps/a.tmx", "out/custom.lua", "out", "out/custom.lua"},
		{"sibling by default", "maps/a.tmx", "", "", filepath.Join("maps", "a.lua")},
		{"output dir", "maps/a.tmx", "", "out", filepath.Join("out", "a.lua")},
		{"no extension", "maps/a", "", "", filepath.Join("maps", "a.lua")},
		{"bare name", "a.tmx", "", "", "a.lua"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, outputName(tt.input, tt.outputPath, tt.outputDir))
		})
	}
}

func TestExportExecute(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "level.tmx")
	require.NoError(t, os.WriteFile(input, []byte(testTMX), 0o644))

	cmd := &exportCmd{}
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{input}))

	status := cmd.Execute(context.Background(), fs)
	require.Equal(t, subcommands.ExitSuccess, status)

	data, err := os.ReadFile(filepath.Join(dir, "level.lua"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "return {"))
	assert.Contains(t, string(data), `image = "ground.png"`)
}

func TestExportExecuteUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no inputs", nil},
		{"-o with multiple inputs", []string{"-o", "out.lua", "a.tmx", "b.tmx"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &exportCmd{}
			fs := flag.NewFlagSet("export", flag.ContinueOnError)
			cmd.SetFlags(fs)
			require.NoError(t, fs.Parse(tt.args))

			assert.Equal(t, subcommands.ExitUsageError, cmd.Execute(context.Background(), fs))
		})
	}
}

func TestExportExecuteMissingInput(t *testing.T) {
	cmd := &exportCmd{}
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	cmd.SetFlags(fs)
	require.NoError(t, fs.Parse([]string{filepath.Join(t.TempDir(), "missing.tmx")}))

	assert.Equal(t, subcommands.ExitFailure, cmd.Execute(context.Background(), fs))
}
