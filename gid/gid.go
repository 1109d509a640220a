// Package gid maps (tileset, local tile id) pairs to map-wide global
// tile ids and back. Global ids start at 1 and are assigned to tilesets
// in registration order; 0 means "no tile". The three high bits of a
// raw gid value carry flip flags, which never overlap the id bits.
package gid

import (
	"errors"
	"fmt"

	"github.com/kvisli/go-luamap/tmap"
)

const (
	FlipHorizontal uint32 = 1 << 31
	FlipVertical   uint32 = 1 << 30
	FlipDiagonal   uint32 = 1 << 29

	flagMask = FlipHorizontal | FlipVertical | FlipDiagonal
	gidMask  = ^flagMask
)

var ErrOutOfRange = errors.New("luamap: tile id out of registered range")

// EncodeGID packs flip flags into the high bits of a global id.
func EncodeGID(id uint32, flipH, flipV, flipD bool) uint32 {
	raw := id & gidMask
	if flipH {
		raw |= FlipHorizontal
	}
	if flipV {
		raw |= FlipVertical
	}
	if flipD {
		raw |= FlipDiagonal
	}
	return raw
}

// DecodeGID splits a raw gid value into the global id and flip flags.
func DecodeGID(raw uint32) (id uint32, flipH, flipV, flipD bool) {
	return raw & gidMask,
		raw&FlipHorizontal != 0,
		raw&FlipVertical != 0,
		raw&FlipDiagonal != 0
}

type tilesetRange struct {
	firstGID uint32
	count    uint32
}

// Mapper assigns ascending global id ranges to tilesets and translates
// cells in both directions. The zero value is ready to use; a Mapper is
// built once per export and reused across exports only after Clear.
type Mapper struct {
	ranges []tilesetRange
}

func NewMapper() *Mapper {
	return &Mapper{}
}

// Clear drops all registered ranges, keeping allocations for reuse.
func (m *Mapper) Clear() {
	m.ranges = m.ranges[:0]
}

// nextID is the first global id past the registered ranges.
func (m *Mapper) nextID() uint32 {
	if len(m.ranges) == 0 {
		return 1
	}
	last := m.ranges[len(m.ranges)-1]
	return last.firstGID + last.count
}

// RegisterTileset appends a range of tileCount ids and returns its first
// global id. The first registration returns 1. Every tileset must be
// registered, in Map.Tilesets order, before any translation.
func (m *Mapper) RegisterTileset(tileCount int) uint32 {
	first := m.nextID()
	m.ranges = append(m.ranges, tilesetRange{firstGID: first, count: uint32(tileCount)})
	return first
}

// RegisterTilesetAt appends a range starting at an explicit first global
// id, for documents that declare their own firstgid values. Ranges must
// stay ascending; gaps between them are allowed and resolve to no tileset.
func (m *Mapper) RegisterTilesetAt(firstGID uint32, tileCount int) error {
	if firstGID < m.nextID() {
		return fmt.Errorf("%w: firstgid %d overlaps the previous range", ErrOutOfRange, firstGID)
	}
	m.ranges = append(m.ranges, tilesetRange{firstGID: firstGID, count: uint32(tileCount)})
	return nil
}

// FirstGID returns the first global id of a registered tileset.
func (m *Mapper) FirstGID(tileset int) (uint32, error) {
	if tileset < 0 || tileset >= len(m.ranges) {
		return 0, fmt.Errorf("%w: tileset %d of %d", ErrOutOfRange, tileset, len(m.ranges))
	}
	return m.ranges[tileset].firstGID, nil
}

// CellToGID translates a cell into a raw gid with its flip flags packed
// into the high bits. The empty cell translates to 0.
func (m *Mapper) CellToGID(c tmap.Cell) (uint32, error) {
	id, err := m.CellToGIDOrigin(c)
	if err != nil || id == 0 {
		return id, err
	}
	return EncodeGID(id, c.FlipH, c.FlipV, c.FlipD), nil
}

// CellToGIDOrigin translates a cell into a pure global id with no flag
// bits, for callers that look tiles up rather than render them.
func (m *Mapper) CellToGIDOrigin(c tmap.Cell) (uint32, error) {
	if c.Empty() {
		return 0, nil
	}
	if c.Tileset >= len(m.ranges) {
		return 0, fmt.Errorf("%w: tileset %d of %d", ErrOutOfRange, c.Tileset, len(m.ranges))
	}
	r := m.ranges[c.Tileset]
	if c.ID < 0 || uint32(c.ID) >= r.count {
		return 0, fmt.Errorf("%w: tile %d of %d in tileset %d", ErrOutOfRange, c.ID, r.count, c.Tileset)
	}
	return r.firstGID + uint32(c.ID), nil
}

// GIDToCell recovers the owning tileset and local tile id of a raw gid,
// decoding flip flags. 0 maps to the empty cell. Tileset counts are
// small, so a linear scan over the ordered ranges beats a map here.
func (m *Mapper) GIDToCell(raw uint32) (tmap.Cell, error) {
	id, flipH, flipV, flipD := DecodeGID(raw)
	if id == 0 {
		return tmap.EmptyCell, nil
	}
	for i, r := range m.ranges {
		if id >= r.firstGID && id < r.firstGID+r.count {
			return tmap.Cell{
				Tileset: i,
				ID:      int(id - r.firstGID),
				FlipH:   flipH,
				FlipV:   flipV,
				FlipD:   flipD,
			}, nil
		}
	}
	return tmap.EmptyCell, fmt.Errorf("%w: gid %d", ErrOutOfRange, id)
}
