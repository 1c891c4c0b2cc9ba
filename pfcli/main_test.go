package main

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timheilig/pfloppy"
	"github.com/timheilig/pfloppy/internal/fontgen"
	"golang.org/x/image/font/gofont/goregular"
)

func interpreter(t *testing.T, data []byte) *Intp {
	f, err := pfloppy.Parse(data)
	require.NoError(t, err)
	return &Intp{font: f}
}

func run(intp *Intp, line string) (error, bool) {
	return intp.execute(parseCommand(line))
}

func TestParseCommand(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	cmd := parseCommand("table:head  glyph:12 frobnicate:x quit tables")
	require.Len(t, cmd.ops, 4)
	assert.Equal(t, Op{code: TABLE, arg: "head"}, cmd.ops[0])
	assert.Equal(t, Op{code: GLYPH, arg: "12"}, cmd.ops[1])
	assert.Equal(t, Op{code: HELP}, cmd.ops[2])
	assert.Equal(t, QUIT, cmd.ops[3].code)
	//
	cmd = parseCommand("cmap:U+0041:extra")
	assert.Equal(t, "U+0041:extra", cmd.ops[0].arg)
}

func TestTrueTypeCommands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	intp := interpreter(t, goregular.TTF)
	for _, line := range []string{"tables", "table:head", "table:maxp", "glyph:36", "glyph:0",
		"cmap", "cmap:A", "cmap:U+00E4", "map", "help", "help:cmap"} {
		err, quit := run(intp, line)
		assert.NoError(t, err, line)
		assert.False(t, quit, line)
	}
	assert.Equal(t, "( TTF table=maxp )", intp.String())
	for _, line := range []string{"table:XXXX", "table", "glyph:-1", "glyph:x", "glyph:99999",
		"cmap:AB", "dict", "font"} {
		err, _ := run(intp, line)
		assert.Error(t, err, line)
	}
	_, quit := run(intp, "tables quit")
	assert.True(t, quit)
}

func TestCFFCommands(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	intp := interpreter(t, fontgen.CFF{
		Name: "Minimal",
		CharStrings: [][]byte{ // endchar, hsbw
			fontgen.CharString(fontgen.Op(14)),
			fontgen.CharString(0, 500, fontgen.Op(13), fontgen.Op(14)),
		},
	}.Bytes())
	for _, line := range []string{"tables", "glyph:1", "glyph:space", "dict", "dict:private",
		"map", "font", "font:0", "help:glyph"} {
		err, _ := run(intp, line)
		assert.NoError(t, err, line)
	}
	assert.Equal(t, "( CFF )", intp.String())
	for _, line := range []string{"glyph:2", "glyph:nosuchglyph", "dict:other", "font:1",
		"table:head", "cmap"} {
		err, _ := run(intp, line)
		assert.Error(t, err, line)
	}
}

func TestParseRune(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.cli")
	defer teardown()
	//
	for arg, r := range map[string]rune{"A": 'A', "ä": 'ä', "U+20AC": '€', "0x41": 'A'} {
		got, err := parseRune(arg)
		require.NoError(t, err, arg)
		assert.Equal(t, r, got, arg)
	}
	_, err := parseRune("AB")
	assert.Error(t, err)
	_, err = parseRune("U+XYZ")
	assert.Error(t, err)
}
