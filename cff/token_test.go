package cff

import (
	"errors"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timheilig/pfloppy/fontbin"
	"github.com/timheilig/pfloppy/internal/fontgen"
)

func TestDictNumberRoundTrip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	values := []float64{0, -107, 107, 108, -108, 1131, -1131, 1132, -1132,
		32767, -32768, 32768, -32769, 100000, -100000, 3.14159e+2, -2.5, 1e-05, 0.039625}
	for _, v := range values {
		s := fontbin.NewSpan(fontgen.AppendNumber(nil, v, false))
		tok, err := ReadToken(&s, false)
		require.NoError(t, err, "value %g", v)
		assert.False(t, tok.IsOp)
		assert.Equal(t, v, tok.Num, "round trip of %g", v)
		assert.True(t, s.Exhausted(), "value %g leaves bytes", v)
	}
}

func TestNumberEncodingLength(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	for v, n := range map[float64]int{0: 1, 107: 1, -107: 1, 108: 2, 1131: 2, -1131: 2, 1132: 3, -32768: 3, 40000: 5} {
		assert.Len(t, fontgen.AppendNumber(nil, v, false), n, "encoding of %g", v)
	}
}

func TestCharstringNumbers(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	// shortint is an operator in charstrings, the VM reads its operand
	code := fontgen.CharString(32767, -32768, 1132, 1.5, -0.25, fontgen.Op(OpEndChar))
	prog, err := Interpret(fontbin.NewSpan(code), nil, nil)
	require.NoError(t, err)
	require.Len(t, prog, 6)
	for i, want := range []float64{32767, -32768, 1132, 1.5, -0.25} {
		assert.Equal(t, want, prog[i].Num)
	}
	assert.Equal(t, OpEndChar, prog[5].Op)
}

func TestReadTokenOperators(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	s := fontbin.NewSpan([]byte{12, 6, 21, 29})
	tok, err := ReadToken(&s, true)
	require.NoError(t, err)
	assert.Equal(t, OpSeac, tok.Op)
	assert.Equal(t, "seac", tok.Op.String())
	tok, _ = ReadToken(&s, true)
	assert.Equal(t, OpRMoveTo, tok.Op)
	tok, _ = ReadToken(&s, true)
	assert.True(t, tok.IsOp)
	assert.Equal(t, OpCallGSubr, tok.Op)
	assert.Equal(t, "op(12 99)", Esc(99).String())
}

func TestReadTokenErrors(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	for name, data := range map[string][]byte{
		"reserved byte 31": {31},
		"fixed in DICT":    {255, 0, 1, 0, 0},
		"reserved nibble":  {30, 0x1d, 0xff},
		"truncated int16":  {28, 1},
		"truncated real":   {30, 0x12},
		"truncated escape": {12},
	} {
		s := fontbin.NewSpan(data)
		_, err := ReadToken(&s, false)
		assert.Error(t, err, name)
		assert.True(t, fontbin.IsStructural(err), name)
	}
	s := fontbin.NewSpan([]byte{28, 1})
	_, err := ReadToken(&s, false)
	assert.True(t, errors.Is(err, fontbin.ErrEndOfData))
}

func TestProgramString(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cff")
	defer teardown()
	//
	p := Program{Number(0), Number(500), Operator(OpHsbw), Number(1.5), Operator(OpHMoveTo)}
	assert.Equal(t, "0 500 hsbw 1.5 hmoveto", p.String())
}
