package ttf

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/timheilig/pfloppy/fontbin"
	"golang.org/x/text/encoding/charmap"
)

// CMapTable represents a cmap table, i.e. the table to receive glyphs
// from code-points.
//
// See https://docs.microsoft.com/de-de/typography/opentype/spec/cmap
//
// A cmap table may contain more than one lookup table, each one keyed by
// platform and encoding. All of them are decoded; the code to glyph maps are
// built on first use.
type CMapTable struct {
	tableBase
	keys      []CMapKey
	subtables map[CMapKey]CMapSubtable
}

// CMapKey identifies a cmap subtable by platform and platform-specific encoding.
type CMapKey struct {
	PlatformID uint16
	EncodingID uint16
}

func (k CMapKey) String() string {
	return fmt.Sprintf("(%d,%d)", k.PlatformID, k.EncodingID)
}

// CMapSubtable maps character codes to glyph indices.
//
// Lookups on subtables of format 14 (Unicode variation sequences) return an
// error of kind Unsupported.
type CMapSubtable interface {
	Format() uint16
	Language() uint32
	Lookup(code uint32) (GlyphIndex, error)     // glyph for a code, 0 for unmapped codes
	Map() (map[uint32]GlyphIndex, error)        // all mapped codes; clients must not modify it
	ReverseLookup(gid GlyphIndex) (rune, error) // this is non-standard, but helps with tests
}

func newCMapTable(tag Tag, b []byte, offset, size uint32) *CMapTable {
	t := &CMapTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.subtables = make(map[CMapKey]CMapSubtable)
	t.self = t
	return t
}

// Keys returns the keys of all subtables, in the order of the cmap directory.
func (t *CMapTable) Keys() []CMapKey {
	return t.keys
}

// Subtable returns the subtable for a key, or nil.
func (t *CMapTable) Subtable(key CMapKey) CMapSubtable {
	return t.subtables[key]
}

// Preferred returns the subtable LookupRune will use.
//
// Unicode subtables are preferred, full repertoire before BMP, Windows before
// the Unicode platform. The Macintosh Roman subtable (1,0) is the last resort.
// Format 14 subtables are never selected.
func (t *CMapTable) Preferred() (CMapKey, CMapSubtable, bool) {
	usable := func(key CMapKey) bool {
		st, ok := t.subtables[key]
		return ok && st.Format() != 14
	}
	for _, key := range []CMapKey{{3, 10}, {0, 4}, {3, 1}, {0, 3}} {
		if usable(key) {
			return key, t.subtables[key], true
		}
	}
	for _, key := range t.keys {
		if key.PlatformID == 0 && usable(key) {
			return key, t.subtables[key], true
		}
	}
	if mac := (CMapKey{1, 0}); usable(mac) {
		return mac, t.subtables[mac], true
	}
	return CMapKey{}, nil, false
}

// LookupRune returns the glyph for a Unicode code-point, using the preferred
// subtable. It returns 0, the 'missing character', if the rune is not mapped.
func (t *CMapTable) LookupRune(r rune) GlyphIndex {
	key, st, ok := t.Preferred()
	if !ok {
		return 0
	}
	code := uint32(r)
	if key.PlatformID == 1 {
		b, ok := charmap.Macintosh.EncodeRune(r)
		if !ok {
			return 0
		}
		code = uint32(b)
	}
	gid, err := st.Lookup(code)
	if err != nil {
		tracer().Errorf("cmap %s lookup: %v", key, err)
		return 0
	}
	return gid
}

// ReverseLookup retrieves a code-point for a given glyph from the preferred
// subtable. This is an inefficient operation, meant for tests and debugging.
func (t *CMapTable) ReverseLookup(gid GlyphIndex) rune {
	key, st, ok := t.Preferred()
	if !ok {
		return 0
	}
	r, err := st.ReverseLookup(gid)
	if err != nil {
		return 0
	}
	if key.PlatformID == 1 {
		return charmap.Macintosh.DecodeByte(byte(r))
	}
	return r
}

// parseCMap reads the cmap directory and decodes every subtable it
// references. Subtable offsets are relative to the start of the cmap table.
func parseCMap(tag Tag, b []byte, offset, size uint32, ec *errorCollector) (Table, error) {
	t := newCMapTable(tag, b, offset, size)
	s := t.span()
	if _, err := s.U16(); err != nil { // version
		return nil, fontbin.Wrap(err, "cmap", "header")
	}
	n, err := s.U16()
	if err != nil {
		return nil, fontbin.Wrap(err, "cmap", "header")
	}
	tracer().Debugf("font cmap has %d sub-tables in %d bytes", n, size)
	for i := 0; i < int(n); i++ {
		var key CMapKey
		var suboffset uint32
		if key.PlatformID, err = s.U16(); err == nil {
			if key.EncodingID, err = s.U16(); err == nil {
				suboffset, err = s.U32()
			}
		}
		if err != nil {
			return nil, fontbin.Wrap(err, "cmap", "encoding records")
		}
		if int64(suboffset) >= int64(len(b)) {
			ec.warnf(tag, offset, "sub-table %d %s lies outside of table", i, key)
			continue
		}
		if _, dup := t.subtables[key]; dup {
			ec.warnf(tag, offset+suboffset, "duplicate sub-table %s", key)
			continue
		}
		st, err := parseCMapSubtable(s, int(suboffset))
		if err != nil {
			return nil, fontbin.Wrap(err, "cmap", fmt.Sprintf("sub-table %s", key))
		}
		tracer().Debugf("cmap sub-table %s has format %d", key, st.Format())
		t.keys = append(t.keys, key)
		t.subtables[key] = st
	}
	return t, nil
}

// parseCMapSubtable cuts a subtable out of the cmap table and decodes its
// structure. Formats below 8 have a 16-bit length, later formats a reserved
// field and a 32-bit length. Format 14 has no language field.
func parseCMapSubtable(cmap fontbin.Span, at int) (CMapSubtable, error) {
	s, err := cmap.From(at)
	if err != nil {
		return nil, err
	}
	format, err := s.U16()
	if err != nil {
		return nil, err
	}
	var length uint32
	var language uint32
	switch {
	case format == 14:
		length, err = s.U32()
	case format < 8:
		var l, lang uint16
		if l, err = s.U16(); err == nil {
			lang, err = s.U16()
		}
		length, language = uint32(l), uint32(lang)
	default:
		if err = s.Skip(2); err == nil {
			if length, err = s.U32(); err == nil {
				language, err = s.U32()
			}
		}
	}
	if err != nil {
		return nil, err
	}
	header := s.Pos()
	if int64(length) < int64(header) {
		return nil, fontbin.Structural("cmap", fmt.Sprintf("format%d", format), "sub-table length %d too small", length)
	}
	body, err := s.Slice(header, int(length)-header)
	if err != nil {
		return nil, err
	}
	base := cmapBase{format: format, language: language}
	switch format {
	case 0:
		return parseCMapFormat0(base, body)
	case 4:
		return parseCMapFormat4(base, body)
	case 6:
		return parseCMapFormat6(base, body)
	case 12:
		return parseCMapFormat12(base, body)
	case 14:
		return &cmapFormat14{cmapBase: base, data: body.Bytes()}, nil
	}
	return nil, fontbin.Structural("cmap", "format", "unknown sub-table format %d", format)
}

type cmapBase struct {
	format   uint16
	language uint32
}

func (cb *cmapBase) Format() uint16 {
	return cb.format
}

func (cb *cmapBase) Language() uint32 {
	return cb.language
}

// lazyMap is a code to glyph map which is built once, on first request.
// Before it is built, lookups walk the subtable structure.
type lazyMap struct {
	once sync.Once
	m    atomic.Pointer[map[uint32]GlyphIndex]
	err  error
}

func (lm *lazyMap) get(build func() (map[uint32]GlyphIndex, error)) (map[uint32]GlyphIndex, error) {
	lm.once.Do(func() {
		m, err := build()
		if err != nil {
			lm.err = err
			return
		}
		lm.m.Store(&m)
	})
	if lm.err != nil {
		return nil, lm.err
	}
	return *lm.m.Load(), nil
}

// lookup returns the glyph for c if the map has been built.
func (lm *lazyMap) lookup(c uint32) (GlyphIndex, bool) {
	if m := lm.m.Load(); m != nil {
		return (*m)[c], true
	}
	return 0, false
}

// --- Format 0 --------------------------------------------------------------

// Format 0: Byte encoding table. A simple 1 to 1 mapping of 256 character
// codes to glyph indices.
type cmapFormat0 struct {
	cmapBase
	glyphs [256]byte
	lazy   lazyMap
}

func parseCMapFormat0(base cmapBase, s fontbin.Span) (CMapSubtable, error) {
	t := &cmapFormat0{cmapBase: base}
	b, err := s.ReadBytes(256)
	if err != nil {
		return nil, err
	}
	copy(t.glyphs[:], b)
	return t, nil
}

func (t *cmapFormat0) Lookup(code uint32) (GlyphIndex, error) {
	if code > 0xff {
		return 0, nil
	}
	return GlyphIndex(t.glyphs[code]), nil
}

func (t *cmapFormat0) Map() (map[uint32]GlyphIndex, error) {
	return t.lazy.get(func() (map[uint32]GlyphIndex, error) {
		m := make(map[uint32]GlyphIndex)
		for c, g := range t.glyphs {
			if g != 0 {
				m[uint32(c)] = GlyphIndex(g)
			}
		}
		return m, nil
	})
}

func (t *cmapFormat0) ReverseLookup(gid GlyphIndex) (rune, error) {
	if gid == 0 || gid > 0xff {
		return 0, nil
	}
	for c, g := range t.glyphs {
		if GlyphIndex(g) == gid {
			return rune(c), nil
		}
	}
	return 0, nil
}

// --- Format 4 --------------------------------------------------------------

// Format 4: Segment mapping to delta values
// This is the standard character-to-glyph-index mapping subtable for fonts that support
// only Unicode Basic Multilingual Plane characters (U+0000 to U+FFFF).
//
// This format is used when the character codes for the characters represented by a font
// fall into several contiguous ranges, possibly with holes in some or all of the ranges
// (that is, some of the codes in a range may not have a representation in the font).
type cmapFormat4 struct {
	cmapBase
	segments []cmapSegment
	glyphIDs []uint16
	lazy     lazyMap
}

// Format 4 holds four parallel arrays to describe the segments (one segment for
// each contiguous range of codes).
type cmapSegment struct {
	end, start, delta, rangeOffset uint16
}

// The format's data is divided into three parts, which must occur in the following order:
//
// - A four-word header gives parameters for an optimized search of the segment list;
// - Four parallel arrays describe the segments (one segment for each contiguous range of codes);
// - A variable-length array of glyph IDs (unsigned words).
func parseCMapFormat4(base cmapBase, s fontbin.Span) (CMapSubtable, error) {
	segCountX2, err := s.U16()
	if err != nil {
		return nil, err
	}
	if segCountX2&1 != 0 {
		return nil, fontbin.Structural("cmap", "format4", "illegal segment count %d/2", segCountX2)
	}
	if err = s.Skip(6); err != nil { // searchRange, entrySelector, rangeShift
		return nil, err
	}
	segs := make([]cmapSegment, segCountX2/2)
	arrays := []func(*cmapSegment) *uint16{
		func(seg *cmapSegment) *uint16 { return &seg.end },
		func(seg *cmapSegment) *uint16 { return &seg.start },
		func(seg *cmapSegment) *uint16 { return &seg.delta },
		func(seg *cmapSegment) *uint16 { return &seg.rangeOffset },
	}
	for a, field := range arrays {
		for i := range segs {
			if *field(&segs[i]), err = s.U16(); err != nil {
				return nil, err
			}
		}
		if a == 0 {
			if err = s.Skip(2); err != nil { // reservedPad
				return nil, err
			}
		}
	}
	t := &cmapFormat4{cmapBase: base, segments: segs}
	t.glyphIDs = make([]uint16, s.Remaining()/2)
	for i := range t.glyphIDs {
		t.glyphIDs[i], _ = s.U16()
	}
	return t, nil
}

// glyph maps c within segment i. Delta arithmetic is modulo 65536.
func (t *cmapFormat4) glyph(i int, c uint16) GlyphIndex {
	seg := &t.segments[i]
	if seg.rangeOffset == 0 {
		return GlyphIndex(c + seg.delta)
	}
	// The range offset points from the location of the offset itself into the
	// glyph ID array, which follows the range offsets immediately. We sliced
	// the arrays apart, so translate it to an index into the glyph ID array.
	index := int(seg.rangeOffset)/2 + i - len(t.segments) + int(c-seg.start)
	if index < 0 || index >= len(t.glyphIDs) {
		return 0
	}
	g := t.glyphIDs[index]
	if g != 0 {
		// If the value obtained from the indexing operation is not 0 (which indicates
		// missingGlyph), idDelta[i] is added to it to get the glyph index
		g += seg.delta
	}
	return GlyphIndex(g)
}

func (t *cmapFormat4) Lookup(code uint32) (GlyphIndex, error) {
	if code > 0xffff { // format 4 is for BMP code-points only
		return 0, nil
	}
	if g, ok := t.lazy.lookup(code); ok {
		return g, nil
	}
	c := uint16(code)
	for i := range t.segments {
		seg := &t.segments[i]
		if c > seg.end {
			continue
		}
		if c < seg.start {
			break
		}
		return t.glyph(i, c), nil
	}
	return 0, nil
}

func (t *cmapFormat4) Map() (map[uint32]GlyphIndex, error) {
	return t.lazy.get(func() (map[uint32]GlyphIndex, error) {
		m := make(map[uint32]GlyphIndex)
		for i, seg := range t.segments {
			for c := uint32(seg.start); c <= uint32(seg.end); c++ {
				if g := t.glyph(i, uint16(c)); g != 0 {
					m[c] = g
				}
			}
		}
		return m, nil
	})
}

func (t *cmapFormat4) ReverseLookup(gid GlyphIndex) (rune, error) {
	if gid == 0 {
		return 0, nil
	}
	for i, seg := range t.segments {
		if seg.end < seg.start || seg.start == 0xffff {
			break
		}
		for c := uint32(seg.start); c <= uint32(seg.end); c++ {
			if t.glyph(i, uint16(c)) == gid {
				return rune(c), nil
			}
		}
	}
	return 0, nil
}

// --- Format 6 --------------------------------------------------------------

// Format 6: Trimmed table mapping. A dense array of glyph indices for a
// single range of codes.
type cmapFormat6 struct {
	cmapBase
	firstCode uint16
	glyphIDs  []uint16
	lazy      lazyMap
}

func parseCMapFormat6(base cmapBase, s fontbin.Span) (CMapSubtable, error) {
	t := &cmapFormat6{cmapBase: base}
	var err error
	var count uint16
	if t.firstCode, err = s.U16(); err == nil {
		count, err = s.U16()
	}
	if err != nil {
		return nil, err
	}
	t.glyphIDs = make([]uint16, count)
	for i := range t.glyphIDs {
		if t.glyphIDs[i], err = s.U16(); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *cmapFormat6) Lookup(code uint32) (GlyphIndex, error) {
	if code < uint32(t.firstCode) || code-uint32(t.firstCode) >= uint32(len(t.glyphIDs)) {
		return 0, nil
	}
	return GlyphIndex(t.glyphIDs[code-uint32(t.firstCode)]), nil
}

func (t *cmapFormat6) Map() (map[uint32]GlyphIndex, error) {
	return t.lazy.get(func() (map[uint32]GlyphIndex, error) {
		m := make(map[uint32]GlyphIndex, len(t.glyphIDs))
		for i, g := range t.glyphIDs {
			if g != 0 {
				m[uint32(t.firstCode)+uint32(i)] = GlyphIndex(g)
			}
		}
		return m, nil
	})
}

func (t *cmapFormat6) ReverseLookup(gid GlyphIndex) (rune, error) {
	if gid == 0 {
		return 0, nil
	}
	for i, g := range t.glyphIDs {
		if GlyphIndex(g) == gid {
			return rune(t.firstCode) + rune(i), nil
		}
	}
	return 0, nil
}

// --- Format 12 -------------------------------------------------------------

// Largest number of codes a format 12 map will be expanded to; this is the
// size of the Unicode code space.
const maxUnicodeCodes = 0x110000

// Format 12 is similar to format 4 in that it defines segments for sparse representation.
// It differs, however, in that it uses 32-bit character codes, and Glyph ID lookup
// and calculation is a lot simpler.
type cmapFormat12 struct {
	cmapBase
	groups []cmapGroup
	lazy   lazyMap
}

// Each sequential map group record specifies a character range and the starting glyph ID
// mapped from the first character. Glyph IDs for subsequent characters follow in sequence.
type cmapGroup struct {
	start, end, startGlyph uint32
}

func parseCMapFormat12(base cmapBase, s fontbin.Span) (CMapSubtable, error) {
	n, err := s.U32()
	if err != nil {
		return nil, err
	}
	size, err := fontbin.CheckedMulInt(int(n), 12)
	if err != nil || size > s.Remaining() {
		return nil, fontbin.Structural("cmap", "format12", "%d groups exceed sub-table", n)
	}
	t := &cmapFormat12{cmapBase: base, groups: make([]cmapGroup, n)}
	for i := range t.groups {
		g := &t.groups[i]
		g.start, _ = s.U32()
		g.end, _ = s.U32()
		g.startGlyph, _ = s.U32()
		if g.end < g.start {
			return nil, fontbin.Structural("cmap", "format12", "group %d has end %d < start %d", i, g.end, g.start)
		}
	}
	if !sort.SliceIsSorted(t.groups, func(i, j int) bool { return t.groups[i].start < t.groups[j].start }) {
		return nil, fontbin.Structural("cmap", "format12", "groups not sorted")
	}
	return t, nil
}

func (t *cmapFormat12) Lookup(code uint32) (GlyphIndex, error) {
	if g, ok := t.lazy.lookup(code); ok {
		return g, nil
	}
	for i, j := 0, len(t.groups); i < j; {
		h := i + (j-i)/2 // do a binary search on the groups (which may get large)
		group := &t.groups[h]
		if code < group.start {
			j = h
		} else if group.end < code {
			i = h + 1
		} else {
			return GlyphIndex(code - group.start + group.startGlyph), nil
		}
	}
	return 0, nil
}

func (t *cmapFormat12) Map() (map[uint32]GlyphIndex, error) {
	return t.lazy.get(func() (map[uint32]GlyphIndex, error) {
		total := 0
		for _, g := range t.groups {
			total += int(g.end-g.start) + 1
			if total > maxUnicodeCodes {
				return nil, fontbin.Structural("cmap", "format12", "groups map more than %d codes", maxUnicodeCodes)
			}
		}
		m := make(map[uint32]GlyphIndex, total)
		for _, g := range t.groups {
			for c := g.start; c <= g.end; c++ {
				if gid := GlyphIndex(c - g.start + g.startGlyph); gid != 0 {
					m[c] = gid
				}
			}
		}
		return m, nil
	})
}

func (t *cmapFormat12) ReverseLookup(gid GlyphIndex) (rune, error) {
	if gid == 0 {
		return 0, nil
	}
	for _, g := range t.groups {
		n := g.end - g.start
		if uint32(gid) >= g.startGlyph && uint32(gid)-g.startGlyph <= n {
			return rune(g.start + uint32(gid) - g.startGlyph), nil
		}
	}
	return 0, nil
}

// --- Format 14 -------------------------------------------------------------

// Format 14: Unicode variation sequences. The subtable is kept, but not
// interpreted.
type cmapFormat14 struct {
	cmapBase
	data []byte
}

func (t *cmapFormat14) unsupported() error {
	return fontbin.Unsupported("cmap", "format14", "variation sequences are not interpreted")
}

func (t *cmapFormat14) Lookup(code uint32) (GlyphIndex, error) {
	return 0, t.unsupported()
}

func (t *cmapFormat14) Map() (map[uint32]GlyphIndex, error) {
	return nil, t.unsupported()
}

func (t *cmapFormat14) ReverseLookup(gid GlyphIndex) (rune, error) {
	return 0, t.unsupported()
}

// Binary returns the raw variation sequence data, following the length field.
func (t *cmapFormat14) Binary() []byte {
	return t.data
}
