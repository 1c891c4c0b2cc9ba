package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timheilig/pfloppy/fontdiff"
	"github.com/timheilig/pfloppy/internal/fontgen"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// fontDir writes a small font tree: two TrueType fonts, a CFF font and a
// broken file in a sub-directory.
func fontDir(t *testing.T) string {
	dir := t.TempDir()
	write := func(name string, data []byte) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, data, 0o644))
	}
	write("goregular.ttf", goregular.TTF)
	write("gomono.ttf", gomono.TTF)
	write("cff/minimal.cff", fontgen.CFF{
		Name:        "Minimal",
		CharStrings: [][]byte{fontgen.CharString(fontgen.Op(14))},
	}.Bytes())
	write("cff/broken.otf", []byte("OTTO\x00"))
	return dir
}

func TestCollectFiles(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.pfloppy")
	defer teardown()
	//
	dir := fontDir(t)
	files, err := collectFiles(dir)
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, filepath.Join(dir, "cff", "broken.otf"), files[0])
	files, err = collectFiles(filepath.Join(dir, "gomono.ttf"))
	require.NoError(t, err)
	assert.Len(t, files, 1)
	_, err = collectFiles(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}

func TestDumpFiles(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.pfloppy")
	defer teardown()
	//
	files, err := collectFiles(fontDir(t))
	require.NoError(t, err)
	var out strings.Builder
	failed := dumpFiles(&out, files, dumpOptions{})
	assert.Equal(t, 1, failed)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "broken.otf: error:")
	assert.Contains(t, lines[1], "CFF font Minimal, 1 glyphs")
	assert.Contains(t, lines[2], "TTF font")
	assert.Contains(t, lines[2], "tables: ")
	assert.Contains(t, lines[2], " cmap ")
	//
	out.Reset()
	failed = dumpFiles(&out, files, dumpOptions{errorsOnly: true})
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, strings.Count(out.String(), "\n"))
}

func TestDiffFiles(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.diff")
	defer teardown()
	//
	dir := fontDir(t)
	r, err := diffFiles(filepath.Join(dir, "goregular.ttf"), filepath.Join(dir, "goregular.ttf"), fontdiff.DefaultOptions)
	require.NoError(t, err)
	assert.True(t, r.Empty())
	r, err = diffFiles(filepath.Join(dir, "goregular.ttf"), filepath.Join(dir, "cff", "minimal.cff"), fontdiff.DefaultOptions)
	require.NoError(t, err)
	assert.Equal(t, []string{"font kinds differ: TTF vs CFF"}, r.Differences)
	_, err = diffFiles(filepath.Join(dir, "goregular.ttf"), filepath.Join(dir, "cff", "broken.otf"), fontdiff.DefaultOptions)
	assert.Error(t, err)
}

func TestCheckFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.ttf")
	defer teardown()
	//
	dir := fontDir(t)
	runes, err := parseRuneRange("20-7E")
	require.NoError(t, err)
	var out strings.Builder
	n, err := checkFile(&out, filepath.Join(dir, "gomono.ttf"), runes)
	require.NoError(t, err)
	assert.Equal(t, 0, n, out.String())
	n, err = checkFile(&out, filepath.Join(dir, "cff", "minimal.cff"), runes)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, out.String(), "skipped, CFF font")
}

func TestParseRuneRange(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.pfloppy")
	defer teardown()
	//
	runes, err := parseRuneRange("U+0041-0x43")
	require.NoError(t, err)
	assert.Equal(t, []rune{'A', 'B', 'C'}, runes)
	runes, err = parseRuneRange("20AC")
	require.NoError(t, err)
	assert.Equal(t, []rune{'€'}, runes)
	for _, bad := range []string{"", "43-41", "x-y", "110000"} {
		_, err = parseRuneRange(bad)
		assert.Error(t, err, bad)
	}
}
