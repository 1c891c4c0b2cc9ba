/*
Package cff decodes fonts in the Compact Font Format (CFF, version 1) and
interprets their Type 2 charstrings.

A CFF font set is a sequence of INDEX structures and DICTs (see the Adobe
Technical Note #5176). Parse walks the header, the Name, Top DICT, String
and Global Subr INDEXes, and then, per font, the CharStrings INDEX, the
encoding, the charset and the Private DICT with its local subroutines.

Glyph programs are processed in three stages:

▪︎ Interpret runs the Type 2 charstring bytecode (Adobe Technical Note #5177)
as far as needed to flatten subroutine calls and to skip hint masks. The result
is a Program, a flat sequence of operands and operators.

▪︎ Lower rewrites the Type 2 program into an equivalent Type 1 program: the
advance width becomes an explicit hsbw command, the compact curve and flex
operators are expanded into rrcurveto commands, and hints are dropped.

▪︎ Render replays a Type 1 program to compute the advance width and bounding
box of a glyph. Control points of curves are not included in the box.

Glyph metrics are computed lazily, at most once per glyph.

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package cff

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.cff'
func tracer() tracing.Trace {
	return tracing.Select("font.cff")
}
