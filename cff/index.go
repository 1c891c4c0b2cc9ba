package cff

import (
	"github.com/timheilig/pfloppy/fontbin"
)

// Index is a decoded CFF INDEX: an array of variable-sized byte blocks.
// Each entry is a span of its own, aliasing the font data.
type Index []fontbin.Span

// Len returns the number of entries.
func (x Index) Len() int {
	return len(x)
}

// At returns entry i with a fresh read position. The caller is responsible
// for a valid i.
func (x Index) At(i int) fontbin.Span {
	sp := x[i]
	sp.Rewind()
	return sp
}

// ReadIndex decodes an INDEX at the current position of s and advances s past
// its data.
//
// An INDEX consists of a 2-byte count, followed by the size of offsets
// (1…4 bytes), count+1 offsets and the data. Offsets are relative to the byte
// preceding the data, i.e. the first offset is 1. An empty INDEX is just a
// count of 0.
func ReadIndex(s *fontbin.Span) (Index, error) {
	at := s.Offset()
	count, err := s.U16()
	if err != nil {
		return nil, fontbin.Wrap(err, "CFF", "INDEX")
	}
	if count == 0 {
		return Index{}, nil
	}
	offSize, err := s.U8()
	if err != nil {
		return nil, fontbin.Wrap(err, "CFF", "INDEX")
	}
	if offSize < 1 || offSize > 4 {
		return nil, fontbin.Structural("CFF", "INDEX", "invalid offset size %d", offSize).At(at)
	}
	if need, err := fontbin.CheckedMulInt(int(count)+1, int(offSize)); err != nil || need > s.Remaining() {
		return nil, fontbin.Structural("CFF", "INDEX", "offset array of %d entries exceeds data", count+1).At(at)
	}
	offsets := make([]int, int(count)+1)
	for i := range offsets {
		o, err := s.ReadUint(int(offSize))
		if err != nil {
			return nil, fontbin.Wrap(err, "CFF", "INDEX")
		}
		offsets[i] = int(o)
		if i == 0 && o != 1 {
			tracer().Infof("CFF INDEX at %d: first offset is %d instead of 1", at, o)
		}
		if i > 0 && offsets[i] < offsets[i-1] {
			return nil, fontbin.Structural("CFF", "INDEX", "offsets not ascending at entry %d", i).At(at)
		}
	}
	dataStart := s.Pos() - 1
	index := make(Index, count)
	for i := range index {
		index[i], err = s.Slice(dataStart+offsets[i], offsets[i+1]-offsets[i])
		if err != nil {
			return nil, fontbin.Wrap(err, "CFF", "INDEX")
		}
	}
	if err := s.Skip(offsets[count] - 1); err != nil {
		return nil, fontbin.Wrap(err, "CFF", "INDEX")
	}
	return index, nil
}
