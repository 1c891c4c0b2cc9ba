/*
Package fontbin holds the binary reading primitives shared by the CFF and
TrueType decoders of this module.

The central type is Span, an immutable view onto a range of font bytes with
its own read cursor. Spans are cheap to copy; copies share the underlying
bytes but not the cursor. Every read is bounds-checked against the span, so
a declared length inside a font can never lead to reading past the data.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package fontbin

import (
	"fmt"
	"io"
)

// U16 returns the big-endian uint16 at the start of b.
func U16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])
}

// U32 returns the big-endian uint32 at the start of b.
func U32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

// Span is a view onto a segment of font data, together with a read position.
//
// The zero value is an empty span. Spans never modify the bytes they look at;
// clients should treat the result of Bytes as read-only.
type Span struct {
	data []byte
	pos  int
	base int // offset of data[0] within the top-level buffer, for error reports
}

// NewSpan creates a span over b, positioned at 0.
func NewSpan(b []byte) Span {
	return Span{data: b}
}

// Len returns the total size of the span in bytes.
func (s *Span) Len() int {
	return len(s.data)
}

// Pos returns the current read position, relative to the start of the span.
func (s *Span) Pos() int {
	return s.pos
}

// Offset returns the current read position relative to the top-level buffer
// the span has been cut from.
func (s *Span) Offset() int {
	return s.base + s.pos
}

// Remaining returns the number of unread bytes.
func (s *Span) Remaining() int {
	return len(s.data) - s.pos
}

// Exhausted is true if every byte of the span has been read.
func (s *Span) Exhausted() bool {
	return s.pos >= len(s.data)
}

// Bytes returns all bytes of the span, independent of the read position.
func (s *Span) Bytes() []byte {
	return s.data
}

// Rewind sets the read position back to the start of the span.
func (s *Span) Rewind() {
	s.pos = 0
}

// Seek moves the read position. whence is one of io.SeekStart, io.SeekCurrent
// or io.SeekEnd, with the same meaning as for io.Seeker. Seeking exactly to
// the end of the span is allowed, seeking beyond it is not.
func (s *Span) Seek(offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = int64(s.pos) + offset
	case io.SeekEnd:
		abs = int64(len(s.data)) + offset
	default:
		return int64(s.pos), fmt.Errorf("fontbin: invalid whence %d", whence)
	}
	if abs < 0 || abs > int64(len(s.data)) {
		return int64(s.pos), s.endOfData(int(abs))
	}
	s.pos = int(abs)
	return abs, nil
}

// Skip advances the read position by n bytes.
func (s *Span) Skip(n int) error {
	_, err := s.Seek(int64(n), io.SeekCurrent)
	return err
}

// ReadBytes returns the next n bytes and advances the read position.
// The result aliases the span's data.
func (s *Span) ReadBytes(n int) ([]byte, error) {
	if n < 0 || n > s.Remaining() {
		return nil, s.endOfData(s.pos + n)
	}
	b := s.data[s.pos : s.pos+n]
	s.pos += n
	return b, nil
}

// Chunk cuts the next n bytes into a new span and advances the read position
// past them. The new span starts reading at its own position 0.
func (s *Span) Chunk(n int) (Span, error) {
	off := s.Offset()
	b, err := s.ReadBytes(n)
	if err != nil {
		return Span{}, err
	}
	return Span{data: b, base: off}, nil
}

// Slice returns a sub-span of n bytes starting at offset, relative to the
// start of s. The read position of s is not changed.
func (s *Span) Slice(offset, n int) (Span, error) {
	if offset < 0 || n < 0 || offset > len(s.data) || n > len(s.data)-offset {
		return Span{}, s.endOfData(offset + n)
	}
	return Span{data: s.data[offset : offset+n], base: s.base + offset}, nil
}

// From returns the sub-span from offset to the end of s.
func (s *Span) From(offset int) (Span, error) {
	if offset < 0 || offset > len(s.data) {
		return Span{}, s.endOfData(offset)
	}
	return s.Slice(offset, len(s.data)-offset)
}

// ReadUint reads an n-byte big-endian unsigned integer, 1 ≤ n ≤ 4.
func (s *Span) ReadUint(n int) (uint32, error) {
	if n < 1 || n > 4 {
		return 0, fmt.Errorf("fontbin: cannot read integer of size %d", n)
	}
	b, err := s.ReadBytes(n)
	if err != nil {
		return 0, err
	}
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v, nil
}

// ReadInt reads an n-byte big-endian two's complement integer, 1 ≤ n ≤ 4.
func (s *Span) ReadInt(n int) (int32, error) {
	v, err := s.ReadUint(n)
	if err != nil {
		return 0, err
	}
	shift := uint(32 - 8*n)
	return int32(v<<shift) >> shift, nil
}

// U8 reads one unsigned byte.
func (s *Span) U8() (uint8, error) {
	if s.pos >= len(s.data) {
		return 0, s.endOfData(s.pos + 1)
	}
	c := s.data[s.pos]
	s.pos++
	return c, nil
}

// U16 reads a big-endian uint16.
func (s *Span) U16() (uint16, error) {
	v, err := s.ReadUint(2)
	return uint16(v), err
}

// U32 reads a big-endian uint32.
func (s *Span) U32() (uint32, error) {
	return s.ReadUint(4)
}

// I8 reads a signed byte.
func (s *Span) I8() (int8, error) {
	v, err := s.U8()
	return int8(v), err
}

// I16 reads a big-endian int16.
func (s *Span) I16() (int16, error) {
	v, err := s.ReadUint(2)
	return int16(v), err
}

// I32 reads a big-endian int32.
func (s *Span) I32() (int32, error) {
	v, err := s.ReadUint(4)
	return int32(v), err
}

// PeekU8 returns the next byte without consuming it.
func (s *Span) PeekU8() (uint8, error) {
	if s.pos >= len(s.data) {
		return 0, s.endOfData(s.pos + 1)
	}
	return s.data[s.pos], nil
}

func (s *Span) endOfData(at int) error {
	return fmt.Errorf("%w: need byte %d of span [%d,%d)", ErrEndOfData,
		at, s.base, s.base+len(s.data))
}
