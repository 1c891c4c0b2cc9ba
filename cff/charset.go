package cff

import (
	"fmt"

	"github.com/timheilig/pfloppy/fontbin"
)

// CharsetKind tells predefined charsets from custom ones.
type CharsetKind int

const (
	CharsetISOAdobe     CharsetKind = iota // predefined, charset offset 0
	CharsetExpert                          // predefined, charset offset 1
	CharsetExpertSubset                    // predefined, charset offset 2
	CharsetCustom                          // formats 0, 1 or 2
)

func (k CharsetKind) String() string {
	switch k {
	case CharsetISOAdobe:
		return "ISOAdobe"
	case CharsetExpert:
		return "Expert"
	case CharsetExpertSubset:
		return "ExpertSubset"
	}
	return "custom"
}

// Charset maps glyph indices to string IDs. Glyph 0 is always ".notdef" and
// is not part of the charset; entry i of SIDs names glyph i+1.
type Charset struct {
	Kind       CharsetKind
	Format     int // custom format 0, 1 or 2; -1 for predefined charsets
	SIDs       []int
	names      []string
	consistent bool
}

// Len returns the number of glyphs named by the charset, excluding .notdef.
func (cs *Charset) Len() int {
	return len(cs.SIDs)
}

// Name returns the name of glyph gid. Glyph 0 is ".notdef".
func (cs *Charset) Name(gid int) string {
	if gid == 0 {
		return ".notdef"
	}
	if gid < 0 || gid > len(cs.names) {
		return ""
	}
	return cs.names[gid-1]
}

// SID returns the string ID of glyph gid.
func (cs *Charset) SID(gid int) (int, bool) {
	if gid == 0 {
		return 0, true
	}
	if gid < 0 || gid > len(cs.SIDs) {
		return 0, false
	}
	return cs.SIDs[gid-1], true
}

// GID returns the glyph index for a string ID, or false if no glyph has it.
func (cs *Charset) GID(sid int) (int, bool) {
	if sid == 0 {
		return 0, true
	}
	for i, s := range cs.SIDs {
		if s == sid {
			return i + 1, true
		}
	}
	return 0, false
}

// Consistent is false if the ranges of a custom charset did not add up to
// exactly the number of glyphs of the font. Decoding accepts such charsets.
func (cs *Charset) Consistent() bool {
	return cs.consistent
}

func (cs *Charset) resolveNames(strs *Strings) {
	cs.names = make([]string, len(cs.SIDs))
	for i, sid := range cs.SIDs {
		cs.names[i] = strs.Lookup(sid)
	}
}

// --- Predefined charsets ---------------------------------------------------

// stockCharsets holds the SID sequences of the predefined charsets without
// .notdef, in glyph order of CFF specification appendix C.
var stockCharsets = [3][]int{
	CharsetISOAdobe:     sidRange(nil, 1, 228),
	CharsetExpert:       expertCharset,
	CharsetExpertSubset: expertSubsetCharset,
}

var expertCharset = []int{
	1, 229, 230, 231, 232, 233, 234, 235, 236, 237, 238, 13, 14, 15, 99, 239, 240,
	241, 242, 243, 244, 245, 246, 247, 248, 27, 28, 249, 250, 251, 252, 253, 254,
	255, 256, 257, 258, 259, 260, 261, 262, 263, 264, 265, 266, 109, 110, 267,
	268, 269, 270, 271, 272, 273, 274, 275, 276, 277, 278, 279, 280, 281, 282,
	283, 284, 285, 286, 287, 288, 289, 290, 291, 292, 293, 294, 295, 296, 297,
	298, 299, 300, 301, 302, 303, 304, 305, 306, 307, 308, 309, 310, 311, 312,
	313, 314, 315, 316, 317, 318, 158, 155, 163, 319, 320, 321, 322, 323, 324,
	325, 326, 150, 164, 169, 327, 328, 329, 330, 331, 332, 333, 334, 335, 336,
	337, 338, 339, 340, 341, 342, 343, 344, 345, 346, 347, 348, 349, 350, 351,
	352, 353, 354, 355, 356, 357, 358, 359, 360, 361, 362, 363, 364, 365, 366,
	367, 368, 369, 370, 371, 372, 373, 374, 375, 376, 377, 378,
}

var expertSubsetCharset = []int{
	1, 231, 232, 235, 236, 237, 238, 13, 14, 15, 99, 239, 240, 241, 242, 243, 244,
	245, 246, 247, 248, 27, 28, 249, 250, 251, 253, 254, 255, 256, 257, 258, 259,
	260, 261, 262, 263, 264, 265, 266, 109, 110, 267, 268, 269, 270, 272, 300,
	301, 302, 305, 314, 315, 158, 155, 163, 320, 321, 322, 323, 324, 325, 326,
	150, 164, 169, 327, 328, 329, 330, 331, 332, 333, 334, 335, 336, 337, 338,
	339, 340, 341, 342, 343, 344, 345, 346,
}

func sidRange(sids []int, first, last int) []int {
	for sid := first; sid <= last; sid++ {
		sids = append(sids, sid)
	}
	return sids
}

// --- Decoding --------------------------------------------------------------

// readCharset decodes the charset at offset for a font with numGlyphs glyphs
// (including .notdef). Offsets 0, 1 and 2 select the predefined charsets.
func readCharset(data fontbin.Span, offset int, numGlyphs int, strs *Strings) (*Charset, error) {
	want := numGlyphs - 1
	if want < 0 {
		want = 0
	}
	if offset >= 0 && offset <= 2 {
		stock := stockCharsets[offset]
		n := min(want, len(stock))
		cs := &Charset{
			Kind:       CharsetKind(offset),
			Format:     -1,
			SIDs:       stock[:n:n],
			consistent: n == want,
		}
		cs.resolveNames(strs)
		return cs, nil
	}
	s, err := data.From(offset)
	if err != nil {
		return nil, fontbin.Wrap(err, "CFF", "charset")
	}
	format, err := s.U8()
	if err != nil {
		return nil, fontbin.Wrap(err, "CFF", "charset")
	}
	cs := &Charset{Kind: CharsetCustom, Format: int(format), SIDs: make([]int, 0, want)}
	switch format {
	case 0:
		for k := 0; k < want; k++ {
			sid, err := s.U16()
			if err != nil {
				return nil, fontbin.Wrap(err, "CFF", "charset")
			}
			cs.SIDs = append(cs.SIDs, int(sid))
		}
		cs.consistent = true
	case 1, 2:
		cs.consistent = readCharsetRanges(cs, &s, int(format), want)
	default:
		return nil, fontbin.Structural("CFF", "charset", "unknown charset format %d", format).At(data.Offset() + offset)
	}
	if !cs.consistent {
		tracer().Infof("CFF charset format %d names %d glyphs, font has %d", format, len(cs.SIDs), want)
	}
	cs.resolveNames(strs)
	return cs, nil
}

// Ranges of format 1 and 2 charsets have a 1- or 2-byte count of glyphs
// following the first one. They have to account for exactly want glyphs.
// A range overshooting the glyph count or a table ending early is accepted,
// but reported as inconsistent.
func readCharsetRanges(cs *Charset, s *fontbin.Span, countSize int, want int) bool {
	remaining := want
	for remaining > 0 {
		first, err := s.U16()
		if err != nil {
			return false
		}
		nLeft, err := s.ReadUint(countSize)
		if err != nil {
			return false
		}
		for i := 0; i <= int(nLeft); i++ {
			cs.SIDs = append(cs.SIDs, int(first)+i)
		}
		remaining -= int(nLeft) + 1
	}
	return remaining == 0
}

func (cs *Charset) String() string {
	return fmt.Sprintf("charset(%s, %d glyphs)", cs.Kind, len(cs.SIDs))
}
