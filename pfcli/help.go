package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "cmap", "cmaps":
		pterm.Info.Println("cmap / cmap:<char>")
		pterm.Println(`
	cmap lists the sub-tables of the character map:
	+----------+--------+----------+-------+
	| Encoding | Format | Language | Codes |
	+----------+--------+----------+-------+
	Encodings are (platform,encoding) pairs, e.g. (3,1) for Windows Unicode BMP.

	cmap:A or cmap:U+00E4 looks up a character in every sub-table, and in
	the preferred one. Format 14 sub-tables hold variation sequences and
	cannot map single characters.
	`)
	case "glyph", "glyphs":
		pterm.Info.Println("glyph:<index> / glyph:<name>")
		pterm.Println(`
	For TrueType fonts, glyph:12 decodes the outline of glyph 12 and lists
	its points. Composite glyphs are shown as a summary only.

	For CFF fonts, a glyph is selected by index or by name, e.g. glyph:A.
	The lowered Type 1 program is printed together with width and
	bounding box.
	`)
	case "dict", "dicts":
		pterm.Info.Println("dict / dict:private")
		pterm.Println(`
	Prints the Top DICT (default) or the Private DICT of the current font of
	a CFF font set. Select another font of the set with font:<index>.
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	tables           list tables (TrueType) or fonts (CFF)
	table:<tag>      select and print a table, e.g. table:head
	glyph:<gid|name> print a glyph
	cmap[:<char>]    list cmap sub-tables or look up a character
	dict[:private]   print a CFF DICT
	map              print the code mappings of a CFF font or the preferred cmap
	font[:<n>]       show or select the font of a CFF font set
	help[:<topic>]   help on cmap, glyph or dict
	quit             leave
	`)
	}
}
