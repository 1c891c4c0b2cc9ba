package cff

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timheilig/pfloppy/fontbin"
	"github.com/timheilig/pfloppy/internal/fontgen"
)

func csOp(o Op) fontgen.Op {
	return fontgen.Op(o)
}

// testFont has glyphs .notdef, A, B and C. A is encoded at 65, B is a
// supplement at 200, C gets an implied code.
func testFont() fontgen.CFF {
	return fontgen.CFF{
		Name:    "TestFont",
		Strings: []string{"Test Font Regular"},
		Top:     []any{391, fontgen.Op(2)},
		Private: []any{250, fontgen.Op(20), 400, fontgen.Op(21)},
		CharStrings: [][]byte{
			fontgen.CharString(csOp(OpEndChar)),
			fontgen.CharString(100, 10, 10, csOp(OpRMoveTo), 5, 0, csOp(OpRLineTo), csOp(OpEndChar)),
			fontgen.CharString(-100, 0, 0, csOp(OpRMoveTo), -107, csOp(OpCallSubr), csOp(OpEndChar)),
			fontgen.CharString(0, 0, csOp(OpRMoveTo), -107, csOp(OpCallGSubr), csOp(OpEndChar)),
		},
		LocalSubrs:  [][]byte{fontgen.CharString(0, 20, csOp(OpRLineTo), csOp(OpReturn))},
		GlobalSubrs: [][]byte{fontgen.CharString(-30, 0, csOp(OpRLineTo), csOp(OpReturn))},
		Charset:     []byte{0, 0, 34, 0, 35, 0, 36},
		Encoding:    []byte{0x80, 1, 65, 1, 200, 0, 35},
	}
}

func TestParseMinimalFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	f, err := Parse(fontgen.CFF{
		Name: "Minimal",
		CharStrings: [][]byte{
			fontgen.CharString(csOp(OpEndChar)),
			fontgen.CharString(0, 500, csOp(OpHsbw), 10, 10, csOp(OpRMoveTo), 5, 0, csOp(OpRLineTo), csOp(OpEndChar)),
		},
	}.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "Minimal", f.Name)
	require.Len(t, f.Glyphs(), 2)
	g := f.Glyphs()[1]
	assert.Equal(t, "space", g.Name, "ISOAdobe charset by default")
	assert.Equal(t, "Minimal", g.FontName)
	m, err := g.Metrics()
	require.NoError(t, err)
	assert.Equal(t, float64(500), m.Width)
	assert.Equal(t, BBox{0, 0, 15, 10}, m.BBox)
	assert.Equal(t, CharsetISOAdobe, f.Charset().Kind)
	assert.Equal(t, EncodingNone, f.Encoding().Kind)
	// implied code for the only named glyph
	require.Len(t, f.Mappings(), 1)
	assert.Equal(t, Mapping{Code: 256, SID: 1, Name: "space", CharString: g.CharString}, f.Mappings()[0])
}

func TestParseFont(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	f, err := Parse(testFont().Bytes())
	require.NoError(t, err)
	full, ok := f.Property("FullName")
	require.True(t, ok)
	assert.Equal(t, "Test Font Regular", full.Str)
	dw, ok := f.Property("defaultWidthX")
	require.True(t, ok)
	assert.Equal(t, float64(250), dw.Num)
	_, ok = f.Property("NoSuchKey")
	assert.False(t, ok)
	//
	names := make([]string, 0, 4)
	for _, g := range f.Glyphs() {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{".notdef", "A", "B", "C"}, names)
	//
	a, ok := f.Glyph("A")
	require.True(t, ok)
	assert.Equal(t, float64(500), a.Width(), "width is nominalWidthX + 100")
	b, _ := f.Glyph("B")
	mb, err := b.Metrics()
	require.NoError(t, err)
	assert.Equal(t, float64(300), mb.Width)
	assert.Equal(t, BBox{0, 0, 0, 20}, mb.BBox, "local subroutine draws the line")
	c, _ := f.Glyph("C")
	mc, err := c.Metrics()
	require.NoError(t, err)
	assert.Equal(t, float64(250), mc.Width, "no width operand")
	assert.Equal(t, BBox{-30, 0, 0, 0}, mc.BBox, "global subroutine draws the line")
}

func TestFontMappings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	f, err := Parse(testFont().Bytes())
	require.NoError(t, err)
	var codes []int
	var names []string
	for _, m := range f.Mappings() {
		codes = append(codes, m.Code)
		names = append(names, m.Name)
	}
	assert.Equal(t, []int{65, 200, 256}, codes)
	assert.Equal(t, []string{"A", "B", "C"}, names)
	assert.Equal(t, 35, f.SIDForName("B"))
	assert.Equal(t, 0, f.SIDForName("Z"))
	assert.Equal(t, float64(500), f.Width(34))
	assert.Equal(t, float64(250), f.Width(999), "unmapped SIDs fall back to .notdef")
}

func TestParseAll(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	fonts, err := ParseAll(testFont().Bytes())
	require.NoError(t, err)
	require.Len(t, fonts, 1)
	assert.Equal(t, "TestFont", fonts[0].Name)
	assert.Equal(t, `CFF font "TestFont" (4 glyphs)`, fonts[0].String())
}

func TestFontWithoutPrivate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	f, err := Parse(fontgen.CFF{
		Name:        "NoPrivate",
		CharStrings: [][]byte{fontgen.CharString(csOp(OpEndChar))},
		NoPrivate:   true,
	}.Bytes())
	require.NoError(t, err)
	w, ok := f.PrivateDict().Number("defaultWidthX")
	assert.True(t, ok)
	assert.Equal(t, float64(0), w)
	assert.Empty(t, f.Mappings())
}

func TestParseFontErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	good := testFont().Bytes()
	bad := append([]byte(nil), good...)
	bad[0] = 2
	_, err := Parse(bad)
	assert.True(t, fontbin.IsStructural(err), "major version")
	_, err = Parse(good[:3])
	assert.True(t, fontbin.IsStructural(err), "short header")
	_, err = Parse(good[:40])
	assert.True(t, fontbin.IsStructural(err), "truncated")
	_, err = Parse([]byte{1, 0, 4, 4, 0, 0, 0, 0, 0, 0, 0, 0})
	assert.True(t, fontbin.IsStructural(err), "no fonts")
	//
	f := testFont()
	f.Top = []any{1, fontgen.Esc(6)}
	_, err = Parse(f.Bytes())
	assert.True(t, fontbin.IsUnsupported(err), "Type 1 charstrings")
	//
	f = testFont()
	f.CharStrings[1] = fontgen.CharString(csOp(OpRLineTo))
	_, err = Parse(f.Bytes())
	assert.True(t, fontbin.IsStructural(err), "bad glyph program")
}
