package ttf

import (
	"github.com/timheilig/pfloppy/fontbin"
)

// LocaTable stores the offsets to the locations of the glyphs in the font,
// relative to the beginning of the glyph data table.
// By definition, index zero points to the “missing character”, which is the character
// that appears if a character is not found in the font.
//
// A loca table is decoded once head and maxp are known: it holds numGlyphs+1
// offsets, either as uint32 (long format) or as uint16 halved (short format).
type LocaTable struct {
	tableBase
	locations []uint32
}

// GlyphRange is the byte range of a glyph within the glyf table.
// An empty range denotes a glyph without outline.
type GlyphRange struct {
	Start, End uint32
}

// Len returns the byte length of the glyph data.
func (r GlyphRange) Len() uint32 {
	return r.End - r.Start
}

func newLocaTable(tag Tag, b []byte, offset, size uint32) *LocaTable {
	t := &LocaTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// decode reads the glyph locations of t, given the format flag from
// head and the glyph count from maxp.
func (t *LocaTable) decode(indexToLocFormat int16, numGlyphs uint16) error {
	n := int(numGlyphs) + 1
	s := t.span()
	locs := make([]uint32, n)
	for i := range locs {
		var err error
		if indexToLocFormat == 1 {
			locs[i], err = s.U32()
		} else {
			var loc uint16
			loc, err = s.U16()
			locs[i] = uint32(loc) * 2
		}
		if err != nil {
			return fontbin.Wrap(err, "loca", "offsets")
		}
		if i > 0 && locs[i] < locs[i-1] {
			return fontbin.Structural("loca", "offsets", "offsets not ascending at glyph %d", i-1)
		}
	}
	t.locations = locs
	return nil
}

// NumGlyphs returns the number of glyphs located by this table.
func (t *LocaTable) NumGlyphs() int {
	if len(t.locations) == 0 {
		return 0
	}
	return len(t.locations) - 1
}

// IndexToLocation returns the offset of glyph gid's data block within the
// 'glyf' table. For glyph indices out of range, the location of the
// 'missing character' is returned.
func (t *LocaTable) IndexToLocation(gid GlyphIndex) uint32 {
	if int(gid) >= t.NumGlyphs() {
		return 0
	}
	return t.locations[gid]
}

// Range returns the glyf byte range of glyph gid.
func (t *LocaTable) Range(gid GlyphIndex) (GlyphRange, bool) {
	if int(gid) >= t.NumGlyphs() {
		return GlyphRange{}, false
	}
	return GlyphRange{Start: t.locations[gid], End: t.locations[gid+1]}, true
}

// Ranges returns one glyf byte range per glyph, in glyph order.
func (t *LocaTable) Ranges() []GlyphRange {
	rs := make([]GlyphRange, t.NumGlyphs())
	for i := range rs {
		rs[i] = GlyphRange{Start: t.locations[i], End: t.locations[i+1]}
	}
	return rs
}
