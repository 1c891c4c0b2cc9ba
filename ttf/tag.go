package ttf

import "github.com/timheilig/pfloppy/fontbin"

// GlyphIndex is a glyph index in a font.
type GlyphIndex uint16

// Tag identifies a table of a font: four bytes, usually printable ASCII,
// read as a big-endian uint32.
type Tag uint32

// MakeTag creates a Tag from the first 4 bytes of b. Shorter input is padded
// with leading zeros.
//
//	MakeTag([]byte("cmap"))
func MakeTag(b []byte) Tag {
	var t [4]byte
	if len(b) >= 4 {
		copy(t[:], b[:4])
	} else {
		copy(t[4-len(b):], b)
	}
	return Tag(fontbin.U32(t[:]))
}

// T returns a Tag for a table name. Names with less than 4 letters are padded
// with spaces, as for "CFF ".
func T(name string) Tag {
	return MakeTag([]byte((name + "    ")[:4]))
}

func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}
