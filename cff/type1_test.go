package cff

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timheilig/pfloppy/fontbin"
)

func TestRenderSimpleGlyph(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	m, err := Render(prog(0, 500, OpHsbw, 10, 10, OpRMoveTo, 5, 0, OpRLineTo, OpClosePath, OpEndChar), 0)
	require.NoError(t, err)
	assert.Equal(t, float64(500), m.Width)
	assert.Equal(t, BBox{0, 0, 15, 10}, m.BBox)
	assert.Equal(t, "[0 0 15 10]", m.BBox.String())
}

func TestRenderSidebearing(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	m, err := Render(prog(20, 600, OpHsbw, 0, -30, OpRMoveTo, 100, OpHLineTo, OpEndChar), 0)
	require.NoError(t, err)
	assert.Equal(t, float64(20), m.LSB)
	assert.Equal(t, BBox{0, -30, 120, 0}, m.BBox)
	m, err = Render(prog(5, 7, 300, 0, OpSbw, OpEndChar), 0)
	require.NoError(t, err)
	assert.Equal(t, float64(300), m.Width)
	assert.Equal(t, BBox{}, m.BBox, "sbw moves the current point, it is no path point")
}

func TestRenderDefaultWidth(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	m, err := Render(prog(0, 0, OpHsbw, OpEndChar), 333)
	require.NoError(t, err)
	assert.Equal(t, float64(0), m.Width, "zero advance set by hsbw is kept")
	m, err = Render(prog(0, 0, 0, 0, OpSbw, OpEndChar), 333)
	require.NoError(t, err)
	assert.Equal(t, float64(0), m.Width, "zero advance set by sbw is kept")
	m, err = Render(prog(10, 10, OpRMoveTo, OpEndChar), 444)
	require.NoError(t, err)
	assert.Equal(t, float64(444), m.Width)
}

func TestRenderCurves(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	m, err := Render(prog(0, 400, OpHsbw, 0, 0, OpRMoveTo,
		10, 20, 30, 40, 50, -100, OpRRCurveTo,
		10, 20, 30, 40, OpVHCurveTo, OpEndChar), 0)
	require.NoError(t, err)
	// end points (90,-40) and (150,0); control points are not boxed
	assert.Equal(t, BBox{0, -40, 150, 0}, m.BBox)
	//
	m, err = Render(prog(0, 400, OpHsbw, 0, 0, OpRMoveTo,
		10, 20, 30, 40, 50, -100, OpRRCurveTo, OpEndChar), 0)
	require.NoError(t, err)
	assert.Equal(t, BBox{0, -40, 90, 0}, m.BBox)
	m, err = Render(prog(0, 400, OpHsbw, 0, 0, OpRMoveTo,
		0, 100, 50, 0, 0, -100, OpRRCurveTo, OpEndChar), 0)
	require.NoError(t, err)
	assert.Equal(t, BBox{0, 0, 50, 0}, m.BBox, "arch with its top only in control points")
}

func TestRenderFlex(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	p := prog(0, 500, OpHsbw, 0, 0, OpRMoveTo,
		0, 1, OpCallOtherSubr,
		10, 0, OpRMoveTo, 0, 2, OpCallOtherSubr, // reference point
		10, 5, OpRMoveTo, 0, 2, OpCallOtherSubr,
		10, 5, OpRMoveTo, 0, 2, OpCallOtherSubr,
		10, 0, OpRMoveTo, 0, 2, OpCallOtherSubr,
		10, -5, OpRMoveTo, 0, 2, OpCallOtherSubr,
		10, -5, OpRMoveTo, 0, 2, OpCallOtherSubr,
		10, 0, OpRMoveTo, 0, 2, OpCallOtherSubr,
		50, 60, 0, 3, 0, OpCallOtherSubr, OpPop, OpPop, OpSetCurrentPoint,
		OpEndChar)
	m, err := Render(p, 0)
	require.NoError(t, err)
	assert.Equal(t, BBox{0, 0, 70, 10}, m.BBox)
}

func TestRenderDiv(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	m, err := Render(prog(0, 1001, 2, OpDiv, OpHsbw, OpEndChar), 0)
	require.NoError(t, err)
	assert.Equal(t, 500.5, m.Width)
	_, err = Render(prog(0, 1, 0, OpDiv, OpHsbw), 0)
	assert.True(t, fontbin.IsStructural(err))
}

func TestRenderErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	for name, p := range map[string]Program{
		"type 2 operator":    prog(1, 2, 3, 4, OpHHCurveTo),
		"missing operands":   prog(1, OpRLineTo),
		"unknown othersubr":  prog(0, 7, OpCallOtherSubr),
		"flex end w/o start": prog(0, 0, OpCallOtherSubr),
		"short flex":         prog(0, 1, OpCallOtherSubr, 1, 1, OpRMoveTo, 0, 0, OpCallOtherSubr),
	} {
		_, err := Render(p, 0)
		assert.True(t, fontbin.IsStructural(err), name)
	}
}
