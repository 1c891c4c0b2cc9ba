/*
Package pfloppy decodes font files of two unrelated binary formats: Compact
Font Format (CFF) font sets and TrueType/OpenType fonts.

The heavy lifting is done by packages cff and ttf. This package is the front
door: it recognizes the format of a font file from its first bytes, hands the
data to the matching decoder and wraps the result in a Font.

There is a certain confusion with the nomenclature of font formats. We will
stick to the following definitions:

▪︎ A "CFF font set" is the content of a bare CFF file, or of the 'CFF ' table
of an OpenType font. It may hold more than one font, though in practice it
almost always holds exactly one.

▪︎ A "TrueType font" is a font in the SFNT container format, i.e. a table
directory followed by tables. This includes OpenType fonts with CFF outlines
('OTTO'), whose 'CFF ' table is decoded as a CFF font set.

# Status

Does not contain methods for font collections (*.ttc); these are rejected as
unsupported.

# Links

CFF: https://adobe-type-tools.github.io/font-tech-notes/pdfs/5176.CFF.pdf

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package pfloppy

import (
	"fmt"
	"os"
	"sync"

	"github.com/npillmayer/schuko/tracing"
	"github.com/timheilig/pfloppy/cff"
	"github.com/timheilig/pfloppy/ttf"
	"golang.org/x/image/font/sfnt"
)

// tracer writes to trace with key 'font.pfloppy'
func tracer() tracing.Trace {
	return tracing.Select("font.pfloppy")
}

// Font is a decoded font file.
//
// For Kind CFF, CFF holds the fonts of the font set and TTF is nil. For Kind
// TTF, TTF holds the decoded table directory; if the font has CFF outlines,
// CFF holds the decoded 'CFF ' table.
type Font struct {
	Kind     Kind
	Filepath string    // file path, if loaded from a file
	Binary   []byte    // raw data
	CFF      []*cff.Font
	TTF      *ttf.Font
	names    sync.Once
	sfnt     *sfnt.Font // for name table lookups, may be nil
}

// LoadFont loads a font from a file.
func LoadFont(fontfile string, opts ...ttf.ParseOption) (*Font, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := Parse(bytez, opts...)
	if err != nil {
		return nil, fmt.Errorf("font %s: %w", fontfile, err)
	}
	f.Filepath = fontfile
	return f, nil
}

// Name returns the name of the font. For CFF font sets, this is the name of
// the first font. For TrueType fonts it is the full name from the 'name'
// table, or "" if the name table cannot be read.
func (f *Font) Name() string {
	if f.Kind == KindCFF && len(f.CFF) > 0 {
		return f.CFF[0].Name
	}
	return f.sfntName(sfnt.NameIDFull)
}

// FamilyName returns family and subfamily of the font.
//
// For TrueType fonts they are taken from the 'name' table. For CFF fonts, family
// is the FamilyName and subfamily the Weight of the Top DICT. Returned values
// are empty if no matching entries exist.
func (f *Font) FamilyName() (family, subfamily string) {
	if f.Kind == KindCFF {
		if len(f.CFF) > 0 {
			if o, ok := f.CFF[0].TopDict().Get("FamilyName"); ok {
				family = o.Str
			}
			if o, ok := f.CFF[0].TopDict().Get("Weight"); ok {
				subfamily = o.Str
			}
		}
		return
	}
	return f.sfntName(sfnt.NameIDFamily), f.sfntName(sfnt.NameIDSubfamily)
}

func (f *Font) sfntName(id sfnt.NameID) string {
	f.names.Do(func() {
		if f.TTF == nil || f.TTF.Table(ttf.T("name")) == nil {
			return
		}
		var err error
		if f.sfnt, err = sfnt.Parse(f.Binary); err != nil {
			tracer().Infof("name table not accessible: %v", err)
		}
	})
	if f.sfnt == nil {
		return ""
	}
	name, err := f.sfnt.Name(nil, id)
	if err != nil {
		return ""
	}
	return name
}

// NumGlyphs returns the number of glyphs of the font. For CFF font sets, the
// glyphs of all fonts in the set are counted.
func (f *Font) NumGlyphs() int {
	if f.Kind == KindTTF {
		return f.TTF.NumGlyphs()
	}
	n := 0
	for _, c := range f.CFF {
		n += len(c.Glyphs())
	}
	return n
}

func (f *Font) String() string {
	name := f.Name()
	if name == "" {
		name = "(unnamed)"
	}
	return fmt.Sprintf("%s font %s, %d glyphs", f.Kind, name, f.NumGlyphs())
}
