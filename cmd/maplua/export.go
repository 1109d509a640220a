package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/subcommands"
	"github.com/kvisli/go-luamap/lua"
	"github.com/kvisli/go-luamap/tmx"
	"github.com/schollz/progressbar/v3"
)

type exportCmd struct {
	outputPath string
	outputDir  string
	profile    string
	configPath string
	verbose    bool
}

func (c *exportCmd) Name() string     { return "export" }
func (c *exportCmd) Synopsis() string { return "export TMX maps as Lua documents" }
func (c *exportCmd) Usage() string {
	return "maplua export [-o <path> | -d <dir>] [-profile <name>] [-config <path>] <map.tmx>...\n"
}
func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.outputPath, "o", "", "Output file path (single input only)")
	f.StringVar(&c.outputDir, "d", "", "Output directory")
	f.StringVar(&c.profile, "profile", "", "Output profile (default, moai)")
	f.StringVar(&c.configPath, "config", "", "Profile config file (YAML)")
	f.BoolVar(&c.verbose, "v", false, "Log export details")
}

func (c *exportCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	inputs := f.Args()
	if len(inputs) == 0 {
		log.Println("no input maps given")
		return subcommands.ExitUsageError
	}
	if c.outputPath != "" && len(inputs) > 1 {
		log.Println("-o requires a single input, use -d for batches")
		return subcommands.ExitUsageError
	}

	profile, err := loadProfile(c.configPath, c.profile)
	if err != nil {
		log.Println(err)
		return subcommands.ExitFailure
	}

	opts := []lua.Option{lua.WithProfile(profile)}
	if c.verbose {
		opts = append(opts, lua.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))))
	}
	exporter := lua.NewExporter(opts...)

	var bar *progressbar.ProgressBar
	if len(inputs) > 1 {
		bar = progressbar.NewOptions(len(inputs), progressbar.OptionShowIts(), progressbar.OptionShowCount())
	}

	for _, input := range inputs {
		if err := c.exportOne(exporter, input); err != nil {
			log.Println(err)
			return subcommands.ExitFailure
		}
		if bar != nil {
			bar.Add(1)
		}
	}
	if bar != nil {
		bar.Finish()
		fmt.Println()
	}

	return subcommands.ExitSuccess
}

func (c *exportCmd) exportOne(exporter *lua.Exporter, input string) error {
	m, err := tmx.ReadFile(input)
	if err != nil {
		return err
	}
	return exporter.WriteFile(m, outputName(input, c.outputPath, c.outputDir))
}

// outputName decides the destination of one export: an explicit output
// path wins, otherwise the input name with a .lua extension, placed in
// the output directory when one is given.
func outputName(input, outputPath, outputDir string) string {
	if outputPath != "" {
		return outputPath
	}
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base)) + ".lua"
	if outputDir != "" {
		return filepath.Join(outputDir, base)
	}
	return filepath.Join(filepath.Dir(input), base)
}
