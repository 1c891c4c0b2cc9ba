package fontbin

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpanReads(t *testing.T) {
	s := NewSpan([]byte{0x01, 0xff, 0xfe, 0x80, 0x00, 0x00, 0x00, 0x01, 0x7f})
	v, err := s.U8()
	require.NoError(t, err)
	assert.Equal(t, uint8(1), v)
	i16, err := s.I16()
	require.NoError(t, err)
	assert.Equal(t, int16(-2), i16)
	i24, err := s.ReadInt(3)
	require.NoError(t, err)
	assert.Equal(t, int32(-8388608), i24)
	u16, err := s.U16()
	require.NoError(t, err)
	assert.Equal(t, uint16(1), u16)
	assert.Equal(t, 1, s.Remaining())
	i8, err := s.I8()
	require.NoError(t, err)
	assert.Equal(t, int8(127), i8)
	assert.True(t, s.Exhausted())
	_, err = s.U8()
	assert.True(t, errors.Is(err, ErrEndOfData))
	assert.True(t, IsStructural(err))
}

func TestSpanSeek(t *testing.T) {
	s := NewSpan([]byte{0, 1, 2, 3, 4, 5, 6, 7})
	_, err := s.Seek(6, io.SeekStart)
	require.NoError(t, err)
	b, _ := s.U8()
	assert.Equal(t, uint8(6), b)
	_, err = s.Seek(-3, io.SeekCurrent)
	require.NoError(t, err)
	b, _ = s.U8()
	assert.Equal(t, uint8(4), b)
	_, err = s.Seek(-1, io.SeekEnd)
	require.NoError(t, err)
	b, _ = s.U8()
	assert.Equal(t, uint8(7), b)
	_, err = s.Seek(9, io.SeekStart)
	assert.Error(t, err)
	assert.Equal(t, 8, s.Pos(), "failed seek must not move the cursor")
}

func TestSpanChunks(t *testing.T) {
	s := NewSpan([]byte{9, 9, 1, 2, 3, 4, 9})
	require.NoError(t, s.Skip(2))
	c, err := s.Chunk(4)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Len())
	assert.Equal(t, 2, c.Offset())
	v, err := c.U32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x01020304), v)
	assert.True(t, c.Exhausted())
	assert.Equal(t, 6, s.Pos())
	_, err = s.Chunk(2)
	assert.Error(t, err)
	sub, err := s.Slice(3, 2)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 3}, sub.Bytes())
	_, err = s.Slice(6, 2)
	assert.Error(t, err)
}

func TestFontErrorFormatting(t *testing.T) {
	tests := []struct {
		name     string
		err      *FontError
		expected string
	}{
		{"with offset", Structural("cmap", "format4", "odd segCount").At(128),
			"[STRUCTURAL] cmap/format4 at offset 128: odd segCount"},
		{"without offset", Unsupported("sfnt", "header", "font collections"),
			"[UNSUPPORTED] sfnt/header: font collections"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
	assert.True(t, IsUnsupported(Unsupported("a", "b", "c")))
	assert.False(t, IsStructural(Unsupported("a", "b", "c")))
	wrapped := Wrap(io.ErrUnexpectedEOF, "CFF", "INDEX")
	assert.True(t, IsStructural(wrapped))
	assert.True(t, errors.Is(wrapped, io.ErrUnexpectedEOF))
	assert.Nil(t, Wrap(nil, "x", "y"))
}

func TestCheckedArithmetic(t *testing.T) {
	_, err := CheckedMulInt(1<<62, 4)
	assert.Error(t, err)
	v, err := CheckedAddUint32(1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), v)
	_, err = CheckedAddUint32(0xffffffff, 1)
	assert.Error(t, err)
}
