/*
Package fontgen builds small synthetic fonts for tests. It knows just enough
about the binary layout of CFF and TrueType to produce well-formed (or, if
asked to, deliberately broken) input for the decoders of this module.

Builders panic on impossible input; they are meant for tests only.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package fontgen

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
)

// Op is a charstring or DICT operator. Two-byte operators are 0x0c00|b1.
type Op uint16

// Esc returns the two-byte operator 12 b.
func Esc(b byte) Op {
	return Op(0x0c00 | uint16(b))
}

// Int32 is a DICT operand which is always encoded with 5 bytes. It is used for
// offsets, which must not change size once the layout is computed.
type Int32 int32

// Raw is copied as it is into a charstring or DICT.
type Raw []byte

// AppendNumber encodes v as a CFF operand. Integers use the shortest
// encoding; other values are reals in DICT context and 16.16 fixed-point
// numbers in charstrings.
func AppendNumber(dst []byte, v float64, charstring bool) []byte {
	if v != math.Trunc(v) {
		if charstring {
			f := int32(math.Round(v * 65536))
			return binary.BigEndian.AppendUint32(append(dst, 255), uint32(f))
		}
		return appendReal(dst, v)
	}
	n := int(v)
	switch {
	case n >= -107 && n <= 107:
		return append(dst, byte(n+139))
	case n >= 108 && n <= 1131:
		n -= 108
		return append(dst, byte(n>>8+247), byte(n))
	case n >= -1131 && n <= -108:
		n = -n - 108
		return append(dst, byte(n>>8+251), byte(n))
	case n >= math.MinInt16 && n <= math.MaxInt16:
		return binary.BigEndian.AppendUint16(append(dst, 28), uint16(int16(n)))
	case charstring:
		if n < -32768 || n > 32767 {
			panic(fmt.Sprintf("fontgen: %d does not fit into a charstring operand", n))
		}
	}
	return binary.BigEndian.AppendUint32(append(dst, 29), uint32(int32(n)))
}

func appendReal(dst []byte, v float64) []byte {
	s := strconv.FormatFloat(v, 'g', -1, 64)
	var nibbles []byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			nibbles = append(nibbles, c-'0')
		case c == '.':
			nibbles = append(nibbles, 0xa)
		case c == '-':
			nibbles = append(nibbles, 0xe)
		case c == 'e':
			if s[i+1] == '-' {
				nibbles = append(nibbles, 0xc)
				i++
			} else {
				nibbles = append(nibbles, 0xb)
				if s[i+1] == '+' {
					i++
				}
			}
		}
	}
	nibbles = append(nibbles, 0xf)
	if len(nibbles)%2 != 0 {
		nibbles = append(nibbles, 0xf)
	}
	dst = append(dst, 30)
	for i := 0; i < len(nibbles); i += 2 {
		dst = append(dst, nibbles[i]<<4|nibbles[i+1])
	}
	return dst
}

func appendOp(dst []byte, op Op) []byte {
	if op > 0xff {
		return append(dst, 12, byte(op))
	}
	return append(dst, byte(op))
}

func encode(items []any, charstring bool) []byte {
	var b []byte
	for _, item := range items {
		switch x := item.(type) {
		case Op:
			b = appendOp(b, x)
		case int:
			b = AppendNumber(b, float64(x), charstring)
		case float64:
			b = AppendNumber(b, x, charstring)
		case Int32:
			b = binary.BigEndian.AppendUint32(append(b, 29), uint32(x))
		case Raw:
			b = append(b, x...)
		default:
			panic(fmt.Sprintf("fontgen: cannot encode %T", item))
		}
	}
	return b
}

// CharString encodes a Type 2 charstring from numbers (int or float64),
// operators and raw bytes.
func CharString(items ...any) []byte {
	return encode(items, true)
}

// Dict encodes DICT data from numbers, operators and raw bytes.
func Dict(items ...any) []byte {
	return encode(items, false)
}

// Index encodes a CFF INDEX with the smallest possible offset size.
func Index(entries ...[]byte) []byte {
	b := binary.BigEndian.AppendUint16(nil, uint16(len(entries)))
	if len(entries) == 0 {
		return b
	}
	total := 1
	for _, e := range entries {
		total += len(e)
	}
	offSize := 1
	for total >= 1<<(8*offSize) {
		offSize++
	}
	b = append(b, byte(offSize))
	off := 1
	b = appendOffset(b, off, offSize)
	for _, e := range entries {
		off += len(e)
		b = appendOffset(b, off, offSize)
	}
	for _, e := range entries {
		b = append(b, e...)
	}
	return b
}

func appendOffset(b []byte, off, size int) []byte {
	for i := size - 1; i >= 0; i-- {
		b = append(b, byte(off>>(8*i)))
	}
	return b
}

// CFF describes a single-font CFF font set.
//
// Charset and Encoding are either nil (no DICT entry), an int (a predefined
// table) or a []byte (a custom table, written into the font and referenced
// by offset).
type CFF struct {
	Name        string
	Strings     []string
	Top         []any // extra Top DICT entries
	Private     []any // Private DICT entries, without Subrs
	GlobalSubrs [][]byte
	LocalSubrs  [][]byte
	CharStrings [][]byte
	Charset     any
	Encoding    any
	NoPrivate   bool
}

// Bytes lays out the font set: header, Name, Top DICT, String and Global
// Subr INDEXes, then charset, encoding, CharStrings, Private DICT and local
// subroutines. All offsets in the DICTs are 5-byte integers, so the Top DICT
// has the same size for every layout.
func (f CFF) Bytes() []byte {
	header := []byte{1, 0, 4, 4}
	names := Index([]byte(f.Name))
	strs := make([][]byte, len(f.Strings))
	for i, s := range f.Strings {
		strs[i] = []byte(s)
	}
	strIndex := Index(strs...)
	gsubrs := Index(f.GlobalSubrs...)
	charset, _ := f.Charset.([]byte)
	encoding, _ := f.Encoding.([]byte)
	charStrings := Index(f.CharStrings...)
	private := f.privateDict(0)
	if len(f.LocalSubrs) > 0 {
		// Subrs has a fixed-size operand, the first pass has the final size
		private = f.privateDict(len(private))
	}
	local := Index(f.LocalSubrs...)
	top := func(base int) []byte {
		return Index(f.topDict(base, len(charset), len(encoding), len(charStrings), len(private)))
	}
	base := len(header) + len(names) + len(top(0)) + len(strIndex) + len(gsubrs)
	var b []byte
	b = append(b, header...)
	b = append(b, names...)
	b = append(b, top(base)...)
	b = append(b, strIndex...)
	b = append(b, gsubrs...)
	b = append(b, charset...)
	b = append(b, encoding...)
	b = append(b, charStrings...)
	if !f.NoPrivate {
		b = append(b, private...)
		if len(f.LocalSubrs) > 0 {
			b = append(b, local...)
		}
	}
	return b
}

func (f CFF) topDict(base, charsetLen, encodingLen, charStringsLen, privateLen int) []byte {
	items := append([]any(nil), f.Top...)
	off := base
	switch cs := f.Charset.(type) {
	case int:
		items = append(items, cs, Op(15))
	case []byte:
		items = append(items, Int32(off), Op(15))
	}
	off += charsetLen
	switch enc := f.Encoding.(type) {
	case int:
		items = append(items, enc, Op(16))
	case []byte:
		items = append(items, Int32(off), Op(16))
	}
	off += encodingLen
	items = append(items, Int32(off), Op(17))
	off += charStringsLen
	if !f.NoPrivate {
		items = append(items, Int32(privateLen), Int32(off), Op(18))
	}
	return Dict(items...)
}

func (f CFF) privateDict(size int) []byte {
	items := append([]any(nil), f.Private...)
	if len(f.LocalSubrs) > 0 {
		items = append(items, Int32(size), Op(19))
	}
	return Dict(items...)
}
