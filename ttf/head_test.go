package ttf

import (
	"testing"
	"time"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timheilig/pfloppy/fontbin"
	"github.com/timheilig/pfloppy/internal/fontgen"
)

func TestHeadTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	b := fontgen.Head{
		FontRevision:     0x00018000,
		Flags:            1<<13 | 1<<1,
		UnitsPerEm:       1000,
		Created:          macEpochOffset + 86400,
		Modified:         macEpochOffset + 1700000000,
		XMin:             -50,
		YMin:             -200,
		XMax:             950,
		YMax:             800,
		MacStyle:         1,
		IndexToLocFormat: 1,
	}.Bytes()
	table, err := parseHead(T("head"), b, 0, uint32(len(b)))
	require.NoError(t, err)
	head := table.Self().AsHead()
	require.NotNil(t, head)
	assert.Equal(t, uint32(0x00010000), head.Version)
	assert.Equal(t, 1.5, head.FontRevision)
	assert.True(t, head.ClearType())
	assert.True(t, head.ApplyLSB())
	assert.Equal(t, 800.0, head.Ascent())
	assert.Equal(t, 200.0, head.Descent())
	assert.Equal(t, time.Date(1970, 1, 2, 0, 0, 0, 0, time.UTC), head.Created)
	assert.Equal(t, int64(1700000000), head.Modified.Unix())
	assert.Equal(t, int16(-50), head.XMin)
	assert.Equal(t, int16(800), head.YMax)
	assert.Equal(t, uint16(1), head.MacStyle)
	assert.Equal(t, int16(1), head.IndexToLocFormat)
	//
	b = fontgen.Head{UnitsPerEm: 1000, IndexToLocFormat: 2}.Bytes()
	_, err = parseHead(T("head"), b, 0, uint32(len(b)))
	assert.True(t, fontbin.IsStructural(err), "loca format")
}

func TestHHeaTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	b := fontgen.HHea{Ascender: 900, Descender: -250, LineGap: 67, AdvanceWidthMax: 1200, NumberOfHMetrics: 42}.Bytes()
	table, err := parseHHea(T("hhea"), b, 0, uint32(len(b)))
	require.NoError(t, err)
	hhea := table.Self().AsHHea()
	require.NotNil(t, hhea)
	assert.Equal(t, int16(900), hhea.Ascender)
	assert.Equal(t, int16(-250), hhea.Descender)
	assert.Equal(t, int16(67), hhea.LineGap)
	assert.Equal(t, uint16(1200), hhea.AdvanceWidthMax)
	assert.Equal(t, uint16(42), hhea.NumberOfHMetrics)
	_, err = parseHHea(T("hhea"), append(b, 0), 0, uint32(len(b)+1))
	assert.True(t, fontbin.IsStructural(err), "trailing bytes")
}

func TestMaxPTable(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	b := fontgen.MaxP(258)
	table, err := parseMaxP(T("maxp"), b, 0, uint32(len(b)))
	require.NoError(t, err)
	assert.Equal(t, uint16(258), table.Self().AsMaxP().NumGlyphs)
	//
	cff := []byte{0, 0, 0x50, 0, 1, 2} // version 0.5
	table, err = parseMaxP(T("maxp"), cff, 0, 6)
	require.NoError(t, err)
	assert.Equal(t, uint16(258), table.Self().AsMaxP().NumGlyphs)
	_, err = parseMaxP(T("maxp"), b[:20], 0, 20)
	assert.True(t, fontbin.IsStructural(err), "short version 1.0")
}

func TestTags(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	assert.Equal(t, T("cmap"), MakeTag([]byte("cmap")))
	assert.Equal(t, "CFF ", T("CFF").String())
	assert.Equal(t, "glyf", MakeTag([]byte("glyfx")).String())
	assert.Equal(t, Tag(0), MakeTag(nil))
	assert.Equal(t, Tag(0x00000041), MakeTag([]byte("A")))
}
