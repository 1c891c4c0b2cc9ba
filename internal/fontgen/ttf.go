package fontgen

import (
	"encoding/binary"
	"sort"
)

// SFNT assembles a TrueType font from tagged table data. Tables are sorted by
// tag and aligned to four bytes. A table with nil data gets a directory record
// of offset 0 and length 0.
func SFNT(version uint32, tables map[string][]byte) []byte {
	tags := make([]string, 0, len(tables))
	for tag := range tables {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	n := len(tags)
	b := binary.BigEndian.AppendUint32(nil, version)
	b = binary.BigEndian.AppendUint16(b, uint16(n))
	b = append(b, 0, 0, 0, 0, 0, 0) // search range, entry selector, range shift
	off := 12 + 16*n
	var body []byte
	for _, tag := range tags {
		data := tables[tag]
		b = append(b, (tag + "    ")[:4]...)
		b = append(b, 0, 0, 0, 0) // checksum
		if data == nil {
			b = append(b, 0, 0, 0, 0, 0, 0, 0, 0)
			continue
		}
		b = binary.BigEndian.AppendUint32(b, uint32(off+len(body)))
		b = binary.BigEndian.AppendUint32(b, uint32(len(data)))
		body = append(body, data...)
		for len(body)%4 != 0 {
			body = append(body, 0)
		}
	}
	return append(b, body...)
}

// Head encodes a 54-byte head table.
type Head struct {
	FontRevision     uint32
	Flags            uint16
	UnitsPerEm       uint16
	Created          int64 // seconds since 1904-01-01
	Modified         int64
	XMin, YMin       int16
	XMax, YMax       int16
	MacStyle         uint16
	IndexToLocFormat int16
	GlyphDataFormat  int16
}

// Bytes encodes h.
func (h Head) Bytes() []byte {
	b := binary.BigEndian.AppendUint32(nil, 0x00010000)
	b = binary.BigEndian.AppendUint32(b, h.FontRevision)
	b = binary.BigEndian.AppendUint32(b, 0)          // checksum adjustment
	b = binary.BigEndian.AppendUint32(b, 0x5f0f3cf5) // magic
	b = binary.BigEndian.AppendUint16(b, h.Flags)
	b = binary.BigEndian.AppendUint16(b, h.UnitsPerEm)
	b = binary.BigEndian.AppendUint64(b, uint64(h.Created))
	b = binary.BigEndian.AppendUint64(b, uint64(h.Modified))
	for _, v := range []int16{h.XMin, h.YMin, h.XMax, h.YMax} {
		b = binary.BigEndian.AppendUint16(b, uint16(v))
	}
	b = binary.BigEndian.AppendUint16(b, h.MacStyle)
	b = binary.BigEndian.AppendUint16(b, 8) // lowest rec. ppem
	b = binary.BigEndian.AppendUint16(b, 2) // font direction hint
	b = binary.BigEndian.AppendUint16(b, uint16(h.IndexToLocFormat))
	return binary.BigEndian.AppendUint16(b, uint16(h.GlyphDataFormat))
}

// HHea encodes a 36-byte hhea table.
type HHea struct {
	Ascender, Descender, LineGap int16
	AdvanceWidthMax              uint16
	NumberOfHMetrics             uint16
}

// Bytes encodes h.
func (h HHea) Bytes() []byte {
	b := binary.BigEndian.AppendUint32(nil, 0x00010000)
	for _, v := range []int16{h.Ascender, h.Descender, h.LineGap} {
		b = binary.BigEndian.AppendUint16(b, uint16(v))
	}
	b = binary.BigEndian.AppendUint16(b, h.AdvanceWidthMax)
	b = append(b, make([]byte, 22)...)
	return binary.BigEndian.AppendUint16(b, h.NumberOfHMetrics)
}

// MaxP encodes a version 1.0 maxp table (32 bytes) for numGlyphs glyphs.
func MaxP(numGlyphs int) []byte {
	b := binary.BigEndian.AppendUint32(nil, 0x00010000)
	b = binary.BigEndian.AppendUint16(b, uint16(numGlyphs))
	return append(b, make([]byte, 26)...)
}

// Glyf concatenates glyph data and returns the glyf table together with the
// matching loca offsets (one more than there are glyphs).
func Glyf(glyphs ...[]byte) ([]byte, []uint32) {
	var b []byte
	offsets := []uint32{0}
	for _, g := range glyphs {
		b = append(b, g...)
		if len(b)%2 != 0 {
			b = append(b, 0)
		}
		offsets = append(offsets, uint32(len(b)))
	}
	return b, offsets
}

// Loca encodes glyph offsets, with 32-bit entries if long is set and halved
// 16-bit entries otherwise.
func Loca(offsets []uint32, long bool) []byte {
	var b []byte
	for _, off := range offsets {
		if long {
			b = binary.BigEndian.AppendUint32(b, off)
		} else {
			b = binary.BigEndian.AppendUint16(b, uint16(off/2))
		}
	}
	return b
}

// SimpleGlyph encodes a glyph with contours. Flags and coordinate data are
// given pre-encoded, so tests control the compression.
type SimpleGlyph struct {
	XMin, YMin, XMax, YMax int16
	EndPts                 []uint16
	Instructions           []byte
	Flags                  []byte
	XData, YData           []byte
}

// Bytes encodes g.
func (g SimpleGlyph) Bytes() []byte {
	b := binary.BigEndian.AppendUint16(nil, uint16(len(g.EndPts)))
	for _, v := range []int16{g.XMin, g.YMin, g.XMax, g.YMax} {
		b = binary.BigEndian.AppendUint16(b, uint16(v))
	}
	for _, e := range g.EndPts {
		b = binary.BigEndian.AppendUint16(b, e)
	}
	b = binary.BigEndian.AppendUint16(b, uint16(len(g.Instructions)))
	b = append(b, g.Instructions...)
	b = append(b, g.Flags...)
	b = append(b, g.XData...)
	return append(b, g.YData...)
}

// CMapEntry is an encoding record of a cmap table together with its subtable.
type CMapEntry struct {
	PlatformID, EncodingID uint16
	Subtable               []byte
}

// CMap encodes a cmap table. Subtables follow the encoding records in the
// order given.
func CMap(entries ...CMapEntry) []byte {
	b := binary.BigEndian.AppendUint16(nil, 0)
	b = binary.BigEndian.AppendUint16(b, uint16(len(entries)))
	off := 4 + 8*len(entries)
	for _, e := range entries {
		b = binary.BigEndian.AppendUint16(b, e.PlatformID)
		b = binary.BigEndian.AppendUint16(b, e.EncodingID)
		b = binary.BigEndian.AppendUint32(b, uint32(off))
		off += len(e.Subtable)
	}
	for _, e := range entries {
		b = append(b, e.Subtable...)
	}
	return b
}

// CMapFormat0 encodes a byte encoding table. Codes missing from ids map to 0.
func CMapFormat0(ids map[byte]byte) []byte {
	b := binary.BigEndian.AppendUint16(nil, 0)
	b = binary.BigEndian.AppendUint16(b, 6+256)
	b = binary.BigEndian.AppendUint16(b, 0)
	glyphs := make([]byte, 256)
	for c, g := range ids {
		glyphs[c] = g
	}
	return append(b, glyphs...)
}

// Segment is a format 4 segment. If Glyphs is non-empty, the segment uses the
// glyph ID array, with one entry per code from Start to End.
type Segment struct {
	Start, End uint16
	Delta      int16
	Glyphs     []uint16
}

// CMapFormat4 encodes a segment mapping table. The closing 0xFFFF segment is
// appended.
func CMapFormat4(segs ...Segment) []byte {
	segs = append(segs, Segment{Start: 0xffff, End: 0xffff, Delta: 1})
	n := len(segs)
	var ends, starts, deltas, rangeOffsets, glyphIDs []byte
	glyphCount := 0
	for i, s := range segs {
		ends = binary.BigEndian.AppendUint16(ends, s.End)
		starts = binary.BigEndian.AppendUint16(starts, s.Start)
		deltas = binary.BigEndian.AppendUint16(deltas, uint16(s.Delta))
		if len(s.Glyphs) == 0 {
			rangeOffsets = binary.BigEndian.AppendUint16(rangeOffsets, 0)
			continue
		}
		// distance from this idRangeOffset word to the segment's first glyph ID
		ro := 2 * (n - i + glyphCount)
		rangeOffsets = binary.BigEndian.AppendUint16(rangeOffsets, uint16(ro))
		for _, g := range s.Glyphs {
			glyphIDs = binary.BigEndian.AppendUint16(glyphIDs, g)
		}
		glyphCount += len(s.Glyphs)
	}
	length := 16 + 8*n + len(glyphIDs)
	b := binary.BigEndian.AppendUint16(nil, 4)
	b = binary.BigEndian.AppendUint16(b, uint16(length))
	b = binary.BigEndian.AppendUint16(b, 0) // language
	b = binary.BigEndian.AppendUint16(b, uint16(2*n))
	b = append(b, 0, 0, 0, 0, 0, 0) // search range, entry selector, range shift
	b = append(b, ends...)
	b = append(b, 0, 0) // reserved pad
	b = append(b, starts...)
	b = append(b, deltas...)
	b = append(b, rangeOffsets...)
	return append(b, glyphIDs...)
}

// CMapFormat6 encodes a trimmed table mapping.
func CMapFormat6(firstCode uint16, ids ...uint16) []byte {
	b := binary.BigEndian.AppendUint16(nil, 6)
	b = binary.BigEndian.AppendUint16(b, uint16(10+2*len(ids)))
	b = binary.BigEndian.AppendUint16(b, 0)
	b = binary.BigEndian.AppendUint16(b, firstCode)
	b = binary.BigEndian.AppendUint16(b, uint16(len(ids)))
	for _, id := range ids {
		b = binary.BigEndian.AppendUint16(b, id)
	}
	return b
}

// Group is a format 12 sequential map group.
type Group struct {
	StartChar, EndChar, StartGlyph uint32
}

// CMapFormat12 encodes a segmented coverage table.
func CMapFormat12(groups ...Group) []byte {
	b := binary.BigEndian.AppendUint16(nil, 12)
	b = binary.BigEndian.AppendUint16(b, 0)
	b = binary.BigEndian.AppendUint32(b, uint32(16+12*len(groups)))
	b = binary.BigEndian.AppendUint32(b, 0) // language
	b = binary.BigEndian.AppendUint32(b, uint32(len(groups)))
	for _, g := range groups {
		b = binary.BigEndian.AppendUint32(b, g.StartChar)
		b = binary.BigEndian.AppendUint32(b, g.EndChar)
		b = binary.BigEndian.AppendUint32(b, g.StartGlyph)
	}
	return b
}

// CMapFormat14 encodes a variation sequence table with no records.
func CMapFormat14() []byte {
	b := binary.BigEndian.AppendUint16(nil, 14)
	b = binary.BigEndian.AppendUint32(b, 10)
	return binary.BigEndian.AppendUint32(b, 0)
}
