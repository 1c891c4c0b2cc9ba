// Package fontload loads fonts with third-party parsers, to cross-check the
// decoders of this module against them.
//
// Two reference parsers are used: golang.org/x/image/font/sfnt and
// github.com/go-text/typesetting/font. Neither supports bare CFF data, so only
// TrueType fonts can be checked.
package fontload

import (
	"bytes"
	"fmt"
	"os"

	"github.com/go-text/typesetting/font"
	"github.com/timheilig/pfloppy/ttf"
	"golang.org/x/image/font/sfnt"
)

// ScalableFont is a font as seen by the reference parsers.
type ScalableFont struct {
	Fontname string
	Filepath string
	Binary   []byte
	SFNT     *sfnt.Font
	Face     *font.Face
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	if f.SFNT, err = sfnt.Parse(f.Binary); err != nil {
		return nil, fmt.Errorf("sfnt: %w", err)
	}
	if f.Face, err = font.ParseTTF(bytes.NewReader(f.Binary)); err != nil {
		return nil, fmt.Errorf("go-text: %w", err)
	}
	// a font without a full name is still usable for cross-checks
	f.Fontname, _ = f.SFNT.Name(nil, sfnt.NameIDFull)
	return f, nil
}

// Mismatch is a disagreement between a decoded font and a reference parser.
type Mismatch struct {
	Rune   rune   // 0 for font-wide properties
	What   string // property or parser
	Got    int    // value from the decoded font
	Wanted int    // value from the reference parser
}

func (m Mismatch) String() string {
	if m.Rune == 0 {
		return fmt.Sprintf("%s: got %d, reference has %d", m.What, m.Got, m.Wanted)
	}
	return fmt.Sprintf("%U %s: got glyph %d, reference has %d", m.Rune, m.What, m.Got, m.Wanted)
}

// CrossCheck compares units per em, glyph count and the glyphs of runes of a
// decoded font with the reference parsers.
func CrossCheck(otf *ttf.Font, ref *ScalableFont, runes []rune) ([]Mismatch, error) {
	var mm []Mismatch
	var upem int
	if otf.Head() != nil {
		upem = int(otf.Head().UnitsPerEm)
	}
	if want := int(ref.SFNT.UnitsPerEm()); upem != want {
		mm = append(mm, Mismatch{What: "units per em (sfnt)", Got: upem, Wanted: want})
	}
	if want := int(ref.Face.Upem()); upem != want {
		mm = append(mm, Mismatch{What: "units per em (go-text)", Got: upem, Wanted: want})
	}
	if want := ref.SFNT.NumGlyphs(); otf.NumGlyphs() != want {
		mm = append(mm, Mismatch{What: "glyph count (sfnt)", Got: otf.NumGlyphs(), Wanted: want})
	}
	if otf.CMap() == nil {
		return mm, nil
	}
	var buf sfnt.Buffer
	for _, r := range runes {
		got := int(otf.CMap().LookupRune(r))
		x, err := ref.SFNT.GlyphIndex(&buf, r)
		if err != nil {
			return mm, fmt.Errorf("sfnt lookup of %U: %w", r, err)
		}
		if int(x) != got {
			mm = append(mm, Mismatch{Rune: r, What: "sfnt", Got: got, Wanted: int(x)})
		}
		gid, _ := ref.Face.NominalGlyph(r)
		if int(gid) != got {
			mm = append(mm, Mismatch{Rune: r, What: "go-text", Got: got, Wanted: int(gid)})
		}
	}
	return mm, nil
}
