// Package lua writes tile maps as Lua table documents.
package lua

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kvisli/go-luamap/gid"
	"github.com/kvisli/go-luamap/internal/safefile"
	"github.com/kvisli/go-luamap/luatable"
	"github.com/kvisli/go-luamap/tmap"
)

const (
	// FormatVersion is the map format version written to every document.
	FormatVersion = "1.1"
	// LuaVersion is the Lua language version the output targets.
	LuaVersion = "5.1"
)

// Exporter writes tmap.Map values as Lua documents. An Exporter is
// immutable after construction and safe for concurrent use; all
// per-export state lives in a session created per call.
type Exporter struct {
	profile Profile
	logger  *slog.Logger
	version string
}

type Option func(*Exporter)

// WithProfile selects the output profile.
func WithProfile(p Profile) Option {
	return func(e *Exporter) { e.profile = p }
}

// WithLogger sets the logger for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Exporter) { e.logger = logger }
}

// WithTiledVersion overrides the tiledversion field of the output.
func WithTiledVersion(version string) Option {
	return func(e *Exporter) { e.version = version }
}

func NewExporter(opts ...Option) *Exporter {
	e := &Exporter{
		profile: DefaultProfile(),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Write emits the map as a single Lua document to w. Asset references
// are written as given in the model.
func (e *Exporter) Write(m *tmap.Map, w io.Writer) error {
	return e.export(m, w, "")
}

// WriteFile writes the map to filePath through a temporary file and an
// atomic rename, so a failed export never clobbers a previous document.
// Asset references are written relative to the file's directory.
func (e *Exporter) WriteFile(m *tmap.Map, filePath string) error {
	return safefile.Write(filePath, func(f *os.File) error {
		return e.export(m, f, filepath.Dir(filePath))
	})
}

// session holds the per-export state: one mapper, one writer, one base
// directory. Nothing outlives the export call.
type session struct {
	profile Profile
	logger  *slog.Logger
	version string
	baseDir string

	m      *tmap.Map
	w      *luatable.Writer
	mapper *gid.Mapper
}

func (s *session) tilesetAt(i int) *tmap.Tileset {
	if i < 0 || i >= len(s.m.Tilesets) {
		return nil
	}
	return s.m.Tilesets[i]
}

func (e *Exporter) export(m *tmap.Map, w io.Writer, baseDir string) error {
	s := &session{
		profile: e.profile,
		logger:  e.logger,
		version: e.version,
		baseDir: baseDir,
		m:       m,
		w:       luatable.NewWriter(w),
		mapper:  gid.NewMapper(),
	}

	s.w.StartDocument()
	if err := s.writeMap(m); err != nil {
		return err
	}
	return s.w.EndDocument()
}

func (s *session) writeMap(m *tmap.Map) error {
	w := s.w
	w.StartReturnTable()

	w.WriteKeyAndValue("version", FormatVersion)
	w.WriteKeyAndValue("luaversion", LuaVersion)
	w.WriteKeyAndValue("tiledversion", s.tiledVersion(m))

	w.WriteKeyAndValue("orientation", m.Orientation.String())
	w.WriteKeyAndValue("width", m.Width)
	w.WriteKeyAndValue("height", m.Height)
	if s.profile.Dialect == DialectMoai {
		w.WriteKeyAndValue("cellwidth", m.TileWidth)
		w.WriteKeyAndValue("cellheight", m.TileHeight)
	} else {
		w.WriteKeyAndValue("tilewidth", m.TileWidth)
		w.WriteKeyAndValue("tileheight", m.TileHeight)
	}
	w.WriteKeyAndValue("nextobjectid", m.NextObjectID)

	if m.Orientation == tmap.Hexagonal {
		w.WriteKeyAndValue("hexsidelength", m.HexSideLength)
	}
	if m.Orientation == tmap.Staggered || m.Orientation == tmap.Hexagonal {
		w.WriteKeyAndValue("staggeraxis", m.StaggerAxis.String())
		w.WriteKeyAndValue("staggerindex", m.StaggerIndex.String())
	}

	if bg := m.BackgroundColor; bg != nil {
		w.StartNamedTable("backgroundcolor")
		w.SetCompact(true)
		w.WriteValue(int(bg.R))
		w.WriteValue(int(bg.G))
		w.WriteValue(int(bg.B))
		if !bg.Opaque() {
			w.WriteValue(int(bg.A))
		}
		w.EndTable()
		w.SetCompact(false)
	}

	s.writeProperties(m.Properties)

	w.StartNamedTable("tilesets")
	for i, ts := range m.Tilesets {
		firstGID := s.mapper.RegisterTileset(ts.TileCount)
		s.logger.Debug("luamap: tileset registered",
			"index", i, "name", ts.Name, "firstgid", firstGID, "tiles", ts.TileCount)
		if err := s.writeTileset(ts, firstGID); err != nil {
			return err
		}
	}
	w.EndTable()
	if err := w.Err(); err != nil {
		return err
	}

	w.StartNamedTable("layers")
	for i, layer := range m.Layers {
		prio := i + 1
		var err error
		switch l := layer.(type) {
		case *tmap.TileLayer:
			err = s.writeTileLayer(prio, l)
		case *tmap.ObjectLayer:
			err = s.writeObjectLayer(prio, l, "")
		case *tmap.ImageLayer:
			s.writeImageLayer(prio, l)
		default:
			err = fmt.Errorf("luamap: unsupported layer type %T", layer)
		}
		if err != nil {
			return err
		}
		if err := w.Err(); err != nil {
			return err
		}
	}
	w.EndTable()

	w.EndTable()
	return w.Err()
}

func (s *session) tiledVersion(m *tmap.Map) string {
	if s.version != "" {
		return s.version
	}
	return m.TiledVersion
}

// writeProperties emits the custom properties table. Keys are arbitrary
// user data, so they are always quoted, and emitted in sorted order to
// keep the document deterministic.
func (s *session) writeProperties(props tmap.Properties) {
	s.w.StartNamedTable("properties")
	for _, k := range props.SortedKeys() {
		s.w.WriteQuotedKeyAndValue(k, props[k])
	}
	s.w.EndTable()
}

// relPath rewrites an asset reference relative to the export directory,
// with forward slashes. References that cannot be relativized are kept
// as given.
func (s *session) relPath(src string) string {
	if s.baseDir == "" || src == "" {
		return filepath.ToSlash(src)
	}
	rel, err := filepath.Rel(s.baseDir, src)
	if err != nil {
		return filepath.ToSlash(src)
	}
	return filepath.ToSlash(rel)
}
