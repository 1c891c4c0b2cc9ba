package ttf

import (
	"encoding/binary"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timheilig/pfloppy/fontbin"
	"github.com/timheilig/pfloppy/internal/fontgen"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// square is a closed contour of 4 on-curve points, all coordinates as
// short vectors.
var square = fontgen.SimpleGlyph{
	XMin: 0, YMin: 0, XMax: 100, YMax: 100,
	EndPts: []uint16{3},
	Flags:  []byte{0x33, 0x33, 0x35, 0x23},
	XData:  []byte{0, 100, 100},
	YData:  []byte{100},
}

// testTables returns the tables of a font with 3 glyphs: a square, an empty
// glyph and another square. 'A' to 'C' are mapped to glyphs 1 to 3.
func testTables() map[string][]byte {
	glyf, offsets := fontgen.Glyf(square.Bytes(), nil, square.Bytes())
	return map[string][]byte{
		"head": fontgen.Head{UnitsPerEm: 1000, XMax: 100, YMax: 100}.Bytes(),
		"hhea": fontgen.HHea{Ascender: 800, Descender: -200, NumberOfHMetrics: 3}.Bytes(),
		"maxp": fontgen.MaxP(3),
		"loca": fontgen.Loca(offsets, false),
		"glyf": glyf,
		"cmap": fontgen.CMap(fontgen.CMapEntry{PlatformID: 3, EncodingID: 1,
			Subtable: fontgen.CMapFormat4(fontgen.Segment{Start: 'A', End: 'C', Delta: 1 - 'A'})}),
		"FFTM": {0, 0, 0, 1, 0, 0, 0, 0},
	}
}

func parseTables(t *testing.T, tables map[string][]byte, opts ...ParseOption) *Font {
	otf, err := Parse(fontgen.SFNT(0x00010000, tables), opts...)
	require.NoError(t, err)
	return otf
}

func TestParseFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	otf := parseTables(t, testTables())
	assert.Equal(t, uint16(7), otf.Header.TableCount)
	assert.Equal(t, []Tag{T("FFTM"), T("cmap"), T("glyf"), T("head"), T("hhea"), T("loca"), T("maxp")},
		otf.TableTags())
	assert.Equal(t, 3, otf.NumGlyphs())
	assert.Equal(t, uint16(1000), otf.Head().UnitsPerEm)
	assert.Equal(t, int16(800), otf.HHea().Ascender)
	assert.Equal(t, 3, otf.Loca().NumGlyphs())
	assert.Equal(t, 3, otf.Glyf().NumGlyphs())
	assert.Equal(t, GlyphIndex(2), otf.CMap().LookupRune('B'))
	assert.Empty(t, otf.Warnings())
	assert.Equal(t, "TrueType font (7 tables, 3 glyphs)", otf.String())
	//
	fftm := otf.Table(T("FFTM"))
	require.NotNil(t, fftm)
	assert.Equal(t, T("FFTM"), fftm.Self().NameTag())
	assert.Nil(t, fftm.Self().AsHead(), "FFTM is a generic table")
	assert.Equal(t, []byte{0, 0, 0, 1, 0, 0, 0, 0}, fftm.Binary())
	off, size := fftm.Extent()
	assert.Equal(t, uint32(12+7*16), off, "first table after the directory")
	assert.Equal(t, uint32(8), size)
	assert.Nil(t, otf.Table(T("OS/2")))
	assert.Same(t, otf.Head(), otf.Table(T("head")).Self().AsHead())
}

func TestParseSkipsEmptyRecords(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	tables := testTables()
	tables["DSIG"] = nil
	otf := parseTables(t, tables)
	assert.Equal(t, uint16(8), otf.Header.TableCount)
	assert.Nil(t, otf.Table(T("DSIG")))
	assert.Len(t, otf.TableTags(), 7)
}

func TestParseSkipCMap(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	otf := parseTables(t, testTables(), SkipCMap)
	assert.Nil(t, otf.CMap())
	cmap := otf.Table(T("cmap"))
	require.NotNil(t, cmap)
	assert.Nil(t, cmap.Self().AsCMap())
}

func TestParseOutlineFlavours(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	for _, version := range []uint32{0x00010000, 0x4f54544f, 0x74727565} {
		otf, err := Parse(fontgen.SFNT(version, testTables()))
		require.NoError(t, err)
		assert.Equal(t, version, otf.Header.FontType)
	}
}

func TestTableConflicts(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	tables := testTables()
	tables["kern"] = []byte{0, 0, 0, 0}
	tables["GPOS"] = []byte{0, 1, 0, 0}
	tables["CFF "] = []byte{1, 0, 4, 4}
	otf := parseTables(t, tables)
	warnings := otf.Warnings()
	require.Len(t, warnings, 2)
	assert.Equal(t, T("CFF "), warnings[0].Table)
	assert.Equal(t, "conflicting tables present: CFF, loca", warnings[0].Issue)
	assert.Equal(t, T("kern"), warnings[1].Table)
	assert.Equal(t, "warning: kern: conflicting tables present: kern, GPOS", warnings[1].String())
}

func TestParseErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	_, err := Parse([]byte("ttcf\x00\x01\x00\x00\x00\x00\x00\x01"))
	assert.True(t, fontbin.IsUnsupported(err), "font collection")
	_, err = Parse([]byte("wOFF\x00\x01\x00\x00\x00\x00\x00\x00"))
	assert.True(t, fontbin.IsStructural(err), "unknown flavour")
	_, err = Parse([]byte{0, 1})
	assert.True(t, fontbin.IsStructural(err), "short header")
	//
	font := fontgen.SFNT(0x00010000, testTables())
	_, err = Parse(font[:40])
	assert.True(t, fontbin.IsStructural(err), "truncated directory")
	bad := append([]byte(nil), font...)
	binary.BigEndian.PutUint32(bad[12+12:], 0xfffffff0) // length of first table
	_, err = Parse(bad)
	assert.True(t, fontbin.IsStructural(err), "table bounds")
	//
	for name, change := range map[string]func(map[string][]byte){
		"loca without maxp": func(m map[string][]byte) { delete(m, "maxp") },
		"loca without head": func(m map[string][]byte) { delete(m, "head") },
		"glyf without loca": func(m map[string][]byte) { delete(m, "loca") },
		"head trailing":     func(m map[string][]byte) { m["head"] = append(m["head"], 0, 0) },
		"head short":        func(m map[string][]byte) { m["head"] = m["head"][:50] },
		"glyph data format": func(m map[string][]byte) { m["head"] = fontgen.Head{UnitsPerEm: 1000, GlyphDataFormat: 1}.Bytes() },
		"hhea short":        func(m map[string][]byte) { m["hhea"] = m["hhea"][:30] },
		"maxp version":      func(m map[string][]byte) { m["maxp"][1] = 2 },
		"loca short":        func(m map[string][]byte) { m["loca"] = m["loca"][:6] },
		"glyph beyond glyf": func(m map[string][]byte) { m["glyf"] = m["glyf"][:20] },
		"cmap format":       func(m map[string][]byte) { m["cmap"] = fontgen.CMap(fontgen.CMapEntry{Subtable: []byte{0, 2, 0, 6, 0, 0}}) },
	} {
		tables := testTables()
		change(tables)
		_, err := Parse(fontgen.SFNT(0x00010000, tables))
		assert.True(t, fontbin.IsStructural(err), name)
	}
}

func TestGoRegular(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	otf, err := Parse(goregular.TTF)
	require.NoError(t, err)
	ref, err := sfnt.Parse(goregular.TTF)
	require.NoError(t, err)
	assert.Equal(t, ref.NumGlyphs(), otf.NumGlyphs())
	assert.Equal(t, int(ref.UnitsPerEm()), int(otf.Head().UnitsPerEm))
	//
	var buf sfnt.Buffer
	for r := rune(0x20); r < 0x7f; r++ {
		want, err := ref.GlyphIndex(&buf, r)
		require.NoError(t, err)
		assert.Equal(t, int(want), int(otf.CMap().LookupRune(r)), "rune %q", r)
	}
	//
	ranges := otf.Loca().Ranges()
	require.Len(t, ranges, otf.NumGlyphs())
	glyfLen := uint32(len(otf.Glyf().Binary()))
	for _, r := range ranges {
		assert.LessOrEqual(t, r.Start, r.End)
		assert.LessOrEqual(t, r.End, glyfLen)
	}
	outlines, err := otf.Glyf().Outlines()
	require.NoError(t, err)
	a := outlines[otf.CMap().LookupRune('A')]
	require.NotNil(t, a)
	assert.False(t, a.IsComposite())
	head := otf.Head()
	for i := 0; i < a.NumPoints(); i++ {
		assert.True(t, a.X[i] >= head.XMin && a.X[i] <= head.XMax)
		assert.True(t, a.Y[i] >= head.YMin && a.Y[i] <= head.YMax)
	}
	assert.Nil(t, outlines[otf.CMap().LookupRune(' ')], "space has no outline")
}
