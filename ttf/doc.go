/*
Package ttf decodes TrueType fonts: the table directory, the font header and
metrics headers, glyph locations and outlines, and the character to glyph
mappings of the cmap table.

Tables this package does not interpret are kept as raw binary segments. Like
the tables it interprets, they are views into the font data, which has to stay
unmodified while a Font is in use.

Decoding is strict about structure: a table which does not have the layout
its tag promises makes Parse fail. Soft anomalies, such as tables which are
not supposed to occur together, are collected as warnings on the font.

Outlines and cmap lookup maps are decoded on demand and cached. A Font is
safe for concurrent use.

# Status

Font collections ('ttcf') are recognized and rejected. Composite glyphs are
kept as raw component data and are not resolved.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Some of the cmap lookup code follows golang.org/x/image/font/sfnt/cmap.go.

	Copyright 2017 The Go Authors. All rights reserved.
	Use of this source code is governed by a BSD-style
	license that can be found in the LICENSE file.
*/
package ttf

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.ttf'
func tracer() tracing.Trace {
	return tracing.Select("font.ttf")
}
