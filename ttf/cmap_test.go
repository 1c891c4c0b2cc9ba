package ttf

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timheilig/pfloppy/fontbin"
	"github.com/timheilig/pfloppy/internal/fontgen"
)

func parseCMapEntries(t *testing.T, entries ...fontgen.CMapEntry) *CMapTable {
	b := fontgen.CMap(entries...)
	ec := &errorCollector{}
	table, err := parseCMap(T("cmap"), b, 0, uint32(len(b)), ec)
	require.NoError(t, err)
	return table.Self().AsCMap()
}

func lookup(t *testing.T, st CMapSubtable, code uint32) GlyphIndex {
	gid, err := st.Lookup(code)
	require.NoError(t, err)
	return gid
}

func TestCMapFormat4(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	cmap := parseCMapEntries(t, fontgen.CMapEntry{PlatformID: 3, EncodingID: 1,
		Subtable: fontgen.CMapFormat4(
			fontgen.Segment{Start: 'A', End: 'C', Delta: 1 - 'A'},
			fontgen.Segment{Start: 'a', End: 'c', Delta: 2, Glyphs: []uint16{5, 0, 7}},
			fontgen.Segment{Start: 0xf000, End: 0xf000, Delta: 0x1001},
		)})
	st := cmap.Subtable(CMapKey{3, 1})
	require.NotNil(t, st)
	assert.Equal(t, uint16(4), st.Format())
	assert.Equal(t, uint32(0), st.Language())
	for code, gid := range map[uint32]GlyphIndex{
		'@': 0, 'A': 1, 'B': 2, 'C': 3, 'D': 0,
		'a': 7, 'b': 0, 'c': 9, // from the glyph ID array; 0 stays 0
		0xf000:  1, // delta wraps around
		0xffff:  0,
		0x10000: 0,
	} {
		assert.Equal(t, gid, lookup(t, st, code), "code %#x", code)
	}
	r, err := st.ReverseLookup(9)
	require.NoError(t, err)
	assert.Equal(t, 'c', r)
	//
	m, err := st.Map()
	require.NoError(t, err)
	assert.Equal(t, map[uint32]GlyphIndex{'A': 1, 'B': 2, 'C': 3, 'a': 7, 'c': 9, 0xf000: 1}, m)
	// lookups now go through the map
	assert.Equal(t, GlyphIndex(9), lookup(t, st, 'c'))
	assert.Equal(t, GlyphIndex(0), lookup(t, st, 'b'))
}

func TestCMapFormats(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	cmap := parseCMapEntries(t,
		fontgen.CMapEntry{PlatformID: 1, EncodingID: 0, Subtable: fontgen.CMapFormat0(map[byte]byte{65: 3, 0x8a: 9})},
		fontgen.CMapEntry{PlatformID: 0, EncodingID: 3, Subtable: fontgen.CMapFormat6(0x20, 4, 5, 0)},
		fontgen.CMapEntry{PlatformID: 3, EncodingID: 10, Subtable: fontgen.CMapFormat12(
			fontgen.Group{StartChar: 0x1f600, EndChar: 0x1f602, StartGlyph: 10},
			fontgen.Group{StartChar: 0x20000, EndChar: 0x20000, StartGlyph: 20},
		)},
		fontgen.CMapEntry{PlatformID: 0, EncodingID: 5, Subtable: fontgen.CMapFormat14()},
	)
	assert.Equal(t, []CMapKey{{1, 0}, {0, 3}, {3, 10}, {0, 5}}, cmap.Keys())
	//
	f0 := cmap.Subtable(CMapKey{1, 0})
	assert.Equal(t, GlyphIndex(3), lookup(t, f0, 65))
	assert.Equal(t, GlyphIndex(0), lookup(t, f0, 66))
	assert.Equal(t, GlyphIndex(0), lookup(t, f0, 0x100))
	m, err := f0.Map()
	require.NoError(t, err)
	assert.Equal(t, map[uint32]GlyphIndex{65: 3, 0x8a: 9}, m)
	//
	f6 := cmap.Subtable(CMapKey{0, 3})
	assert.Equal(t, uint16(6), f6.Format())
	assert.Equal(t, GlyphIndex(0), lookup(t, f6, 0x1f))
	assert.Equal(t, GlyphIndex(5), lookup(t, f6, 0x21))
	assert.Equal(t, GlyphIndex(0), lookup(t, f6, 0x22))
	assert.Equal(t, GlyphIndex(0), lookup(t, f6, 0x23))
	r, err := f6.ReverseLookup(5)
	require.NoError(t, err)
	assert.Equal(t, rune(0x21), r)
	//
	f12 := cmap.Subtable(CMapKey{3, 10})
	assert.Equal(t, GlyphIndex(11), lookup(t, f12, 0x1f601))
	assert.Equal(t, GlyphIndex(0), lookup(t, f12, 0x1f603))
	assert.Equal(t, GlyphIndex(20), lookup(t, f12, 0x20000))
	r, err = f12.ReverseLookup(20)
	require.NoError(t, err)
	assert.Equal(t, rune(0x20000), r)
	m, err = f12.Map()
	require.NoError(t, err)
	assert.Len(t, m, 4)
	assert.Equal(t, GlyphIndex(12), lookup(t, f12, 0x1f602))
	//
	f14 := cmap.Subtable(CMapKey{0, 5})
	assert.Equal(t, uint16(14), f14.Format())
	_, err = f14.Lookup(0x20)
	assert.True(t, fontbin.IsUnsupported(err))
	_, err = f14.Map()
	assert.True(t, fontbin.IsUnsupported(err))
	//
	assert.Nil(t, cmap.Subtable(CMapKey{7, 7}))
}

func TestCMapPreferredSubtable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	bmp := fontgen.CMapEntry{PlatformID: 0, EncodingID: 3,
		Subtable: fontgen.CMapFormat4(fontgen.Segment{Start: 'A', End: 'A', Delta: 1 - 'A'})}
	full := fontgen.CMapEntry{PlatformID: 3, EncodingID: 10,
		Subtable: fontgen.CMapFormat12(fontgen.Group{StartChar: 'A', EndChar: 'A', StartGlyph: 2})}
	mac := fontgen.CMapEntry{PlatformID: 1, EncodingID: 0,
		Subtable: fontgen.CMapFormat0(map[byte]byte{'A': 3, 0x8a: 4})}
	uvs := fontgen.CMapEntry{PlatformID: 0, EncodingID: 5, Subtable: fontgen.CMapFormat14()}
	//
	cmap := parseCMapEntries(t, mac, bmp, full)
	key, _, ok := cmap.Preferred()
	require.True(t, ok)
	assert.Equal(t, CMapKey{3, 10}, key)
	assert.Equal(t, GlyphIndex(2), cmap.LookupRune('A'))
	//
	cmap = parseCMapEntries(t, mac, bmp)
	assert.Equal(t, GlyphIndex(1), cmap.LookupRune('A'))
	assert.Equal(t, 'A', cmap.ReverseLookup(1))
	//
	cmap = parseCMapEntries(t, uvs, mac)
	key, _, _ = cmap.Preferred()
	assert.Equal(t, CMapKey{1, 0}, key, "variation sequences are never selected")
	assert.Equal(t, GlyphIndex(4), cmap.LookupRune('ä'), "Mac Roman 0x8a")
	assert.Equal(t, GlyphIndex(0), cmap.LookupRune('€'+1), "not in Mac Roman")
	assert.Equal(t, 'ä', cmap.ReverseLookup(4))
	//
	cmap = parseCMapEntries(t, uvs)
	_, _, ok = cmap.Preferred()
	assert.False(t, ok)
	assert.Equal(t, GlyphIndex(0), cmap.LookupRune('A'))
}

func TestCMapDirectoryAnomalies(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	entry := fontgen.CMapEntry{PlatformID: 3, EncodingID: 1, Subtable: fontgen.CMapFormat6(0x20, 4)}
	b := fontgen.CMap(entry, entry)
	ec := &errorCollector{}
	table, err := parseCMap(T("cmap"), b, 0, uint32(len(b)), ec)
	require.NoError(t, err)
	assert.Len(t, table.Self().AsCMap().Keys(), 1)
	require.Len(t, ec.warnings, 1)
	assert.Equal(t, "duplicate sub-table (3,1)", ec.warnings[0].Issue)
	//
	b = fontgen.CMap(fontgen.CMapEntry{PlatformID: 3, EncodingID: 1})
	ec = &errorCollector{}
	table, err = parseCMap(T("cmap"), b, 0, uint32(len(b)), ec)
	require.NoError(t, err)
	assert.Empty(t, table.Self().AsCMap().Keys(), "sub-table offset at end of table")
	assert.True(t, ec.hasWarnings())
	//
	for name, sub := range map[string][]byte{
		"length too small":  {0, 6, 0, 2, 0, 0},
		"length beyond end": {0, 6, 0, 99, 0, 0, 0, 0, 0, 0},
		"odd segment count": {0, 4, 0, 14, 0, 0, 0, 3, 0, 0, 0, 0, 0, 0},
		"format 12 groups":  {0, 12, 0, 0, 0, 0, 0, 16, 0, 0, 0, 0, 0, 0, 0, 1},
		"format 0 short":    {0, 0, 0, 10, 0, 0, 1, 2, 3, 4},
	} {
		b := fontgen.CMap(fontgen.CMapEntry{Subtable: sub})
		_, err := parseCMap(T("cmap"), b, 0, uint32(len(b)), &errorCollector{})
		assert.True(t, fontbin.IsStructural(err), name)
	}
}
