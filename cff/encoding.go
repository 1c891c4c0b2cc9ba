package cff

import (
	"fmt"
	"sort"

	"github.com/timheilig/pfloppy/fontbin"
)

// EncodingKind tells predefined encodings from custom ones.
type EncodingKind int

const (
	EncodingNone     EncodingKind = iota // no Encoding entry in the Top DICT
	EncodingStandard                     // predefined, Encoding = 0
	EncodingExpert                       // predefined, Encoding = 1
	EncodingCustom                       // format 0 or 1, possibly with supplements
)

func (k EncodingKind) String() string {
	switch k {
	case EncodingNone:
		return "none"
	case EncodingStandard:
		return "Standard"
	case EncodingExpert:
		return "Expert"
	}
	return "custom"
}

// Supplement is an additional code for a glyph, given by its string ID.
type Supplement struct {
	Code int
	SID  int
}

// Encoding maps character codes to glyphs. Custom encodings map codes to
// glyph indices; predefined encodings map codes to string IDs.
type Encoding struct {
	Kind        EncodingKind
	Format      int         // custom format 0 or 1; -1 otherwise
	gids        map[int]int // custom: code → glyph index
	Supplements []Supplement
}

// EncodingEntry is one code of an encoding, resolved to a string ID.
type EncodingEntry struct {
	Code int
	SID  int
}

// Entries returns the codes of enc in ascending order, resolved to string
// IDs. Custom encodings need the charset to translate glyph indices;
// unresolvable glyph indices are dropped. Supplements are not included.
func (enc *Encoding) Entries(cs *Charset) []EncodingEntry {
	var entries []EncodingEntry
	switch enc.Kind {
	case EncodingStandard, EncodingExpert:
		table := &standardEncoding
		if enc.Kind == EncodingExpert {
			table = &expertEncoding
		}
		for code, sid := range table {
			if sid != 0 {
				entries = append(entries, EncodingEntry{Code: code, SID: int(sid)})
			}
		}
	case EncodingCustom:
		for code, gid := range enc.gids {
			if cs == nil {
				continue
			}
			if sid, ok := cs.SID(gid); ok {
				entries = append(entries, EncodingEntry{Code: code, SID: sid})
			}
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].Code < entries[j].Code })
	}
	return entries
}

// GID returns the glyph index a custom encoding assigns to code.
func (enc *Encoding) GID(code int) (int, bool) {
	gid, ok := enc.gids[code]
	return gid, ok
}

func (enc *Encoding) String() string {
	return fmt.Sprintf("encoding(%s, %d codes, %d supplements)", enc.Kind, len(enc.gids), len(enc.Supplements))
}

// readEncoding decodes the encoding selected by the Top DICT entry. A missing
// entry yields an empty encoding.
func readEncoding(data fontbin.Span, top *Dict) (*Encoding, error) {
	e, ok := top.Number("Encoding")
	if !ok {
		return &Encoding{Kind: EncodingNone, Format: -1}, nil
	}
	switch offset := int(e); offset {
	case 0:
		return &Encoding{Kind: EncodingStandard, Format: -1}, nil
	case 1:
		return &Encoding{Kind: EncodingExpert, Format: -1}, nil
	default:
		s, err := data.From(offset)
		if err != nil {
			return nil, fontbin.Wrap(err, "CFF", "Encoding")
		}
		enc, err := readCustomEncoding(&s)
		return enc, fontbin.Wrap(err, "CFF", "Encoding")
	}
}

func readCustomEncoding(s *fontbin.Span) (*Encoding, error) {
	at := s.Offset()
	format, err := s.U8()
	if err != nil {
		return nil, err
	}
	enc := &Encoding{Kind: EncodingCustom, Format: int(format & 0x7f), gids: make(map[int]int)}
	switch enc.Format {
	case 0:
		n, err := s.U8()
		if err != nil {
			return nil, err
		}
		for gid := 1; gid <= int(n); gid++ {
			code, err := s.U8()
			if err != nil {
				return nil, err
			}
			enc.gids[int(code)] = gid
		}
	case 1:
		nRanges, err := s.U8()
		if err != nil {
			return nil, err
		}
		gid := 1
		for k := 0; k < int(nRanges); k++ {
			first, err := s.U8()
			if err != nil {
				return nil, err
			}
			nLeft, err := s.U8()
			if err != nil {
				return nil, err
			}
			for code := int(first); code <= int(first)+int(nLeft); code++ {
				enc.gids[code] = gid
				gid++
			}
		}
	default:
		return nil, fontbin.Structural("CFF", "Encoding", "unknown encoding format %d", enc.Format).At(at)
	}
	if format&0x80 != 0 {
		n, err := s.U8()
		if err != nil {
			return nil, err
		}
		enc.Supplements = make([]Supplement, 0, n)
		for k := 0; k < int(n); k++ {
			code, err := s.U8()
			if err != nil {
				return nil, err
			}
			sid, err := s.U16()
			if err != nil {
				return nil, err
			}
			enc.Supplements = append(enc.Supplements, Supplement{Code: int(code), SID: int(sid)})
		}
	}
	return enc, nil
}

// --- Predefined encodings --------------------------------------------------

// Predefined encodings map codes to SIDs, CFF specification appendix B.
var standardEncoding = buildEncoding([]encRun{
	{32, 126, 1}, {161, 175, 96}, {177, 180, 111}, {182, 189, 115}, {191, 191, 123},
	{193, 200, 124}, {202, 203, 132}, {205, 208, 134}, {225, 225, 138}, {227, 227, 139},
	{232, 235, 140}, {241, 241, 144}, {245, 245, 145}, {248, 251, 146},
})

var expertEncoding = buildEncoding([]encRun{
	{32, 32, 1}, {33, 34, 229}, {36, 43, 231}, {44, 44, 13}, {45, 45, 14}, {46, 46, 15},
	{47, 47, 99}, {48, 57, 239}, {58, 58, 27}, {59, 59, 28}, {60, 63, 249}, {65, 69, 253},
	{73, 73, 258}, {76, 79, 259}, {82, 84, 263}, {86, 86, 266}, {87, 87, 109},
	{88, 88, 110}, {89, 91, 267}, {93, 96, 270}, {97, 122, 274}, {123, 126, 300},
	{161, 163, 304}, {166, 170, 307}, {172, 172, 312}, {175, 175, 313}, {178, 179, 314},
	{182, 184, 316}, {188, 188, 158}, {189, 189, 155}, {190, 190, 163}, {191, 197, 319},
	{200, 200, 326}, {201, 201, 150}, {202, 202, 164}, {203, 203, 169}, {204, 255, 327},
})

// encRun assigns consecutive SIDs, starting at sid, to codes first…last.
type encRun struct {
	first, last, sid int
}

func buildEncoding(runs []encRun) [256]uint16 {
	var table [256]uint16
	for _, r := range runs {
		for code := r.first; code <= r.last; code++ {
			table[code] = uint16(r.sid + code - r.first)
		}
	}
	return table
}
