package ttf

import (
	"time"

	"github.com/timheilig/pfloppy/fontbin"
)

// Seconds between 1904-01-01 (the epoch of font timestamps) and 1970-01-01.
const macEpochOffset = 2082844800

// HeadTable gives global information about the font.
type HeadTable struct {
	tableBase
	Version          uint32  // 16.16 fixed
	FontRevision     float64 // from 16.16 fixed
	Flags            uint16  // see https://docs.microsoft.com/en-us/typography/opentype/spec/head
	UnitsPerEm       uint16  // values 16 … 16384 are valid
	Created          time.Time
	Modified         time.Time
	XMin, YMin       int16
	XMax, YMax       int16
	MacStyle         uint16
	IndexToLocFormat int16 // needed to interpret loca table
	GlyphDataFormat  int16
}

// ClearType reports flag bit 13: the font is optimized for ClearType.
func (h *HeadTable) ClearType() bool {
	return h.Flags&(1<<13) != 0
}

// ApplyLSB reports flag bit 1: the left sidebearing point is at x=0.
func (h *HeadTable) ApplyLSB() bool {
	return h.Flags&(1<<1) != 0
}

// Ascent is a nominal ascent of 80% of the em.
func (h *HeadTable) Ascent() float64 {
	return 0.8 * float64(h.UnitsPerEm)
}

// Descent is the part of the em below the nominal ascent.
func (h *HeadTable) Descent() float64 {
	return float64(h.UnitsPerEm) - h.Ascent()
}

func newHeadTable(tag Tag, b []byte, offset, size uint32) *HeadTable {
	t := &HeadTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

func parseHead(tag Tag, b []byte, offset, size uint32) (Table, error) {
	t := newHeadTable(tag, b, offset, size)
	s := t.span()
	var err error
	read16 := func() uint16 {
		var v uint16
		if err == nil {
			v, err = s.U16()
		}
		return v
	}
	read32 := func() uint32 {
		var v uint32
		if err == nil {
			v, err = s.U32()
		}
		return v
	}
	skip := func(n int) {
		if err == nil {
			err = s.Skip(n)
		}
	}
	t.Version = read32()
	t.FontRevision = float64(int32(read32())) / 65536
	skip(8) // checksum adjustment, magic number
	t.Flags = read16()
	t.UnitsPerEm = read16()
	t.Created = macTime(uint64(read32())<<32 | uint64(read32()))
	t.Modified = macTime(uint64(read32())<<32 | uint64(read32()))
	t.XMin, t.YMin = int16(read16()), int16(read16())
	t.XMax, t.YMax = int16(read16()), int16(read16())
	t.MacStyle = read16()
	skip(4) // lowestRecPPEM, fontDirectionHint
	t.IndexToLocFormat = int16(read16())
	t.GlyphDataFormat = int16(read16())
	if err != nil {
		return nil, fontbin.Wrap(err, "head", "header")
	}
	if !s.Exhausted() {
		return nil, fontbin.Structural("head", "header", "%d trailing bytes", s.Remaining())
	}
	if t.GlyphDataFormat != 0 {
		return nil, fontbin.Structural("head", "glyphDataFormat", "unknown glyph data format %d", t.GlyphDataFormat)
	}
	if t.IndexToLocFormat != 0 && t.IndexToLocFormat != 1 {
		return nil, fontbin.Structural("head", "indexToLocFormat", "unknown loca format %d", t.IndexToLocFormat)
	}
	tracer().Debugf("head: %d units per em, loca format %d", t.UnitsPerEm, t.IndexToLocFormat)
	return t, nil
}

func macTime(secs uint64) time.Time {
	return time.Unix(int64(secs)-macEpochOffset, 0).UTC()
}

// --- hhea ------------------------------------------------------------------

// HHeaTable contains information for horizontal layout.
type HHeaTable struct {
	tableBase
	Version          uint32
	Ascender         int16
	Descender        int16
	LineGap          int16
	AdvanceWidthMax  uint16
	NumberOfHMetrics uint16
}

func newHHeaTable(tag Tag, b []byte, offset, size uint32) *HHeaTable {
	t := &HHeaTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

func parseHHea(tag Tag, b []byte, offset, size uint32) (Table, error) {
	t := newHHeaTable(tag, b, offset, size)
	s := t.span()
	var err error
	read16 := func() uint16 {
		var v uint16
		if err == nil {
			v, err = s.U16()
		}
		return v
	}
	if t.Version, err = s.U32(); err != nil {
		return nil, fontbin.Wrap(err, "hhea", "header")
	}
	t.Ascender = int16(read16())
	t.Descender = int16(read16())
	t.LineGap = int16(read16())
	t.AdvanceWidthMax = read16()
	if err == nil {
		// min/max extents, caret, reserved fields, metricDataFormat
		err = s.Skip(22)
	}
	t.NumberOfHMetrics = read16()
	if err != nil {
		return nil, fontbin.Wrap(err, "hhea", "header")
	}
	if !s.Exhausted() {
		return nil, fontbin.Structural("hhea", "header", "%d trailing bytes", s.Remaining())
	}
	return t, nil
}

// --- maxp ------------------------------------------------------------------

// MaxPTable establishes the memory requirements for this font.
// Only the glyph count is interpreted.
type MaxPTable struct {
	tableBase
	Version   uint32
	NumGlyphs uint16
}

func newMaxPTable(tag Tag, b []byte, offset, size uint32) *MaxPTable {
	t := &MaxPTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// parseMaxP accepts version 1.0 (32 bytes) and version 0.5 (6 bytes, the
// variant used by CFF-flavoured fonts).
func parseMaxP(tag Tag, b []byte, offset, size uint32) (Table, error) {
	t := newMaxPTable(tag, b, offset, size)
	s := t.span()
	var err error
	if t.Version, err = s.U32(); err != nil {
		return nil, fontbin.Wrap(err, "maxp", "header")
	}
	if t.NumGlyphs, err = s.U16(); err != nil {
		return nil, fontbin.Wrap(err, "maxp", "header")
	}
	switch t.Version {
	case 0x00005000:
	case 0x00010000:
		if err = s.Skip(26); err != nil {
			return nil, fontbin.Wrap(err, "maxp", "header")
		}
	default:
		return nil, fontbin.Structural("maxp", "header", "unknown version %#x", t.Version)
	}
	if !s.Exhausted() {
		return nil, fontbin.Structural("maxp", "header", "%d trailing bytes", s.Remaining())
	}
	return t, nil
}
