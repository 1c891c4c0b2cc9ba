package pfloppy

import (
	"bytes"

	"github.com/timheilig/pfloppy/cff"
	"github.com/timheilig/pfloppy/fontbin"
	"github.com/timheilig/pfloppy/ttf"
)

// Kind is the container format of a font file.
type Kind int

const (
	KindUnknown Kind = iota
	KindCFF          // bare CFF font set
	KindTTF          // SFNT container: TrueType, OpenType or Apple 'true'
)

func (k Kind) String() string {
	switch k {
	case KindCFF:
		return "CFF"
	case KindTTF:
		return "TTF"
	}
	return "unknown"
}

var (
	magicCFF      = []byte{1, 0, 4}
	magicTrueType = []byte{0, 1, 0, 0}
	magicOpenType = []byte("OTTO")
	magicApple    = []byte("true")
)

// Sniff recognizes the format of font data from its first bytes.
func Sniff(data []byte) Kind {
	switch {
	case bytes.HasPrefix(data, magicCFF):
		return KindCFF
	case bytes.HasPrefix(data, magicTrueType),
		bytes.HasPrefix(data, magicOpenType),
		bytes.HasPrefix(data, magicApple):
		return KindTTF
	}
	return KindUnknown
}

// Parse decodes a font from data. The options are passed on to the TrueType
// decoder.
//
// The font needs ongoing access to data after Parse returns. data must not
// change while the font is in use.
func Parse(data []byte, opts ...ttf.ParseOption) (*Font, error) {
	f := &Font{Kind: Sniff(data), Binary: data}
	tracer().Debugf("font data of kind %s, %d bytes", f.Kind, len(data))
	var err error
	switch f.Kind {
	case KindCFF:
		if f.CFF, err = cff.ParseAll(data); err != nil {
			return nil, err
		}
	case KindTTF:
		if f.TTF, err = ttf.Parse(data, opts...); err != nil {
			return nil, err
		}
		if t := f.TTF.Table(ttf.T("CFF ")); t != nil {
			if f.CFF, err = cff.ParseAll(t.Binary()); err != nil {
				return nil, err
			}
		}
	default:
		prefix := data[:min(4, len(data))]
		return nil, fontbin.Unsupported("font", "header", "unknown font format % x", prefix)
	}
	return f, nil
}
