package cff

import (
	"fmt"
	"sync"

	"github.com/timheilig/pfloppy/fontbin"
)

// Font is one font of a CFF font set, with its glyphs lowered to Type 1
// programs.
type Font struct {
	Name        string
	top         *Dict
	private     *Dict
	strings     *Strings
	charset     *Charset
	encoding    *Encoding
	charStrings Index
	global      Index
	local       Index
	glyphs      []*Glyph
	byName      map[string]*Glyph
	mappings    []Mapping
}

// Glyph is a glyph of a CFF font. Its charstring has been interpreted and
// lowered while parsing the font; metrics are computed on first request.
type Glyph struct {
	Name       string
	FontName   string
	GID        int
	SID        int
	CharString []byte  // raw Type 2 charstring
	Program    Program // lowered Type 1 program
	defaultW   float64
	once       sync.Once
	metrics    Metrics
	err        error
}

// Metrics renders the glyph program once and returns the cached result.
func (g *Glyph) Metrics() (Metrics, error) {
	g.once.Do(func() {
		g.metrics, g.err = Render(g.Program, g.defaultW)
		if g.err != nil {
			tracer().Errorf("glyph %s/%s: %v", g.FontName, g.Name, g.err)
		}
	})
	return g.metrics, g.err
}

// Width returns the advance width of the glyph, or 0 if it cannot be
// rendered.
func (g *Glyph) Width() float64 {
	m, _ := g.Metrics()
	return m.Width
}

func (g *Glyph) String() string {
	return fmt.Sprintf("glyph(%s/%s, gid=%d)", g.FontName, g.Name, g.GID)
}

// Mapping connects a character code to a glyph.
type Mapping struct {
	Code       int
	SID        int
	Name       string
	CharString []byte
}

// Parse decodes the first font of a CFF font set.
func Parse(data []byte) (*Font, error) {
	fonts, err := parseFontSet(data, 1)
	if err != nil {
		return nil, err
	}
	return fonts[0], nil
}

// ParseAll decodes every font of a CFF font set.
func ParseAll(data []byte) ([]*Font, error) {
	return parseFontSet(data, -1)
}

// parseFontSet decodes at most limit fonts (all of them if limit < 0).
func parseFontSet(data []byte, limit int) ([]*Font, error) {
	root := fontbin.NewSpan(data)
	if len(data) < 4 {
		return nil, fontbin.Structural("CFF", "header", "font data too short: %d bytes", len(data))
	}
	if data[0] != 1 {
		return nil, fontbin.Structural("CFF", "header", "unsupported major version %d", data[0])
	}
	s, err := root.From(int(data[2]))
	if err != nil {
		return nil, fontbin.Wrap(err, "CFF", "header")
	}
	names, err := ReadIndex(&s)
	if err != nil {
		return nil, fontbin.Wrap(err, "CFF", "Name INDEX")
	}
	tops, err := ReadIndex(&s)
	if err != nil {
		return nil, fontbin.Wrap(err, "CFF", "Top DICT INDEX")
	}
	strIndex, err := ReadIndex(&s)
	if err != nil {
		return nil, fontbin.Wrap(err, "CFF", "String INDEX")
	}
	global, err := ReadIndex(&s)
	if err != nil {
		return nil, fontbin.Wrap(err, "CFF", "Global Subr INDEX")
	}
	if names.Len() == 0 {
		return nil, fontbin.Structural("CFF", "Name INDEX", "font set contains no fonts")
	}
	if tops.Len() < names.Len() {
		return nil, fontbin.Structural("CFF", "Top DICT INDEX", "%d Top DICTs for %d fonts", tops.Len(), names.Len())
	}
	strs := newStrings(strIndex)
	tracer().Debugf("CFF font set: %d fonts, %d strings, %d global subrs", names.Len(), strs.Len(), global.Len())
	n := names.Len()
	if limit >= 0 && limit < n {
		n = limit
	}
	fonts := make([]*Font, 0, n)
	for i := 0; i < n; i++ {
		name := string(names[i].Bytes())
		f, err := parseFont(root, name, tops.At(i), strs, global)
		if err != nil {
			return nil, err
		}
		fonts = append(fonts, f)
	}
	return fonts, nil
}

func parseFont(root fontbin.Span, name string, topData fontbin.Span, strs *Strings, global Index) (*Font, error) {
	top, err := parseDict("Top DICT", topData, topDictOps, strs)
	if err != nil {
		return nil, err
	}
	f := &Font{Name: name, top: top, strings: strs, global: global}
	if t, _ := top.Number("CharstringType"); t != 2 {
		return nil, fontbin.Unsupported("CFF", "Top DICT", "charstring type %g", t)
	}
	if _, ok := top.Get("ROS"); ok {
		tracer().Infof("CFF font %s is CID-keyed, glyph names are CIDs", name)
	}
	if off, ok := top.Number("CharStrings"); ok {
		s, err := root.From(int(off))
		if err != nil {
			return nil, fontbin.Wrap(err, "CFF", "CharStrings")
		}
		if f.charStrings, err = ReadIndex(&s); err != nil {
			return nil, fontbin.Wrap(err, "CFF", "CharStrings")
		}
	}
	csOffset, _ := top.Number("charset")
	if f.charset, err = readCharset(root, int(csOffset), f.charStrings.Len(), strs); err != nil {
		return nil, err
	}
	if f.encoding, err = readEncoding(root, top); err != nil {
		return nil, err
	}
	if err = f.readPrivate(root); err != nil {
		return nil, err
	}
	if err = f.buildGlyphs(); err != nil {
		return nil, err
	}
	f.mappings = f.buildMappings()
	tracer().Debugf("CFF font %s: %d glyphs, %s, %s", name, len(f.glyphs), f.charset, f.encoding)
	return f, nil
}

// readPrivate decodes the Private DICT and the local subroutines. A font
// without a Private entry gets a Private DICT of defaults.
func (f *Font) readPrivate(root fontbin.Span) error {
	p, ok := f.top.Get("Private")
	if !ok {
		f.private = newDict("Private DICT", privateDictOps)
		return nil
	}
	size, offset := p.Tuple[0].Int(), p.Tuple[1].Int()
	data, err := root.Slice(offset, size)
	if err != nil {
		return fontbin.Wrap(err, "CFF", "Private DICT")
	}
	if f.private, err = parseDict("Private DICT", data, privateDictOps, f.strings); err != nil {
		return err
	}
	if subrs, ok := f.private.Number("Subrs"); ok {
		// Subrs is relative to the start of the Private DICT
		s, err := root.From(offset + int(subrs))
		if err != nil {
			return fontbin.Wrap(err, "CFF", "Local Subr INDEX")
		}
		if f.local, err = ReadIndex(&s); err != nil {
			return fontbin.Wrap(err, "CFF", "Local Subr INDEX")
		}
	}
	return nil
}

func (f *Font) buildGlyphs() error {
	defaultW, nominalW := f.defaultWidth(), f.nominalWidth()
	f.glyphs = make([]*Glyph, f.charStrings.Len())
	f.byName = make(map[string]*Glyph, f.charStrings.Len())
	for gid := range f.glyphs {
		code := f.charStrings.At(gid)
		prog, err := Interpret(code, f.local, f.global)
		if err != nil {
			return fmt.Errorf("glyph %d of %s: %w", gid, f.Name, err)
		}
		lowered, err := Lower(prog, defaultW, nominalW)
		if err != nil {
			return fmt.Errorf("glyph %d of %s: %w", gid, f.Name, err)
		}
		g := &Glyph{
			Name:       f.charset.Name(gid),
			FontName:   f.Name,
			GID:        gid,
			CharString: code.Bytes(),
			Program:    lowered,
			defaultW:   defaultW,
		}
		if g.Name == "" {
			g.Name = fmt.Sprintf("gid%d", gid)
		}
		g.SID, _ = f.charset.SID(gid)
		f.glyphs[gid] = g
		if _, dup := f.byName[g.Name]; !dup {
			f.byName[g.Name] = g
		}
	}
	return nil
}

// buildMappings collects the codes of the font: codes of the encoding first,
// then supplements, then implied codes from 256 upwards for every named glyph
// not reached so far. Every glyph name is mapped at most once.
func (f *Font) buildMappings() []Mapping {
	var mappings []Mapping
	mapped := make(map[string]bool)
	add := func(code, sid int) bool {
		name := f.strings.Lookup(sid)
		if name == "" || mapped[name] {
			return false
		}
		g, ok := f.byName[name]
		if !ok || len(g.CharString) == 0 {
			return false
		}
		mappings = append(mappings, Mapping{Code: code, SID: sid, Name: name, CharString: g.CharString})
		mapped[name] = true
		return true
	}
	for _, e := range f.encoding.Entries(f.charset) {
		add(e.Code, e.SID)
	}
	for _, sup := range f.encoding.Supplements {
		add(sup.Code, sup.SID)
	}
	code := 256
	for _, sid := range f.charset.SIDs {
		if add(code, sid) {
			code++
		}
	}
	return mappings
}

// --- Accessors -------------------------------------------------------------

// Glyphs returns the glyphs of f in glyph index order.
func (f *Font) Glyphs() []*Glyph {
	return f.glyphs
}

// Glyph returns the glyph with the given name.
func (f *Font) Glyph(name string) (*Glyph, bool) {
	g, ok := f.byName[name]
	return g, ok
}

// Mappings returns the code to glyph mappings of f.
func (f *Font) Mappings() []Mapping {
	return f.mappings
}

// TopDict returns the Top DICT of f.
func (f *Font) TopDict() *Dict {
	return f.top
}

// PrivateDict returns the Private DICT of f.
func (f *Font) PrivateDict() *Dict {
	return f.private
}

// Charset returns the charset of f.
func (f *Font) Charset() *Charset {
	return f.charset
}

// Encoding returns the encoding of f.
func (f *Font) Encoding() *Encoding {
	return f.encoding
}

// Strings returns the string table of the font set f belongs to.
func (f *Font) Strings() *Strings {
	return f.strings
}

// Property looks up a DICT value, first in the Top DICT, then in the Private
// DICT.
func (f *Font) Property(name string) (Operand, bool) {
	if o, ok := f.top.Get(name); ok {
		return o, true
	}
	return f.private.Get(name)
}

// SIDForName returns the string ID of a mapped glyph. Unmapped names
// resolve to 0, i.e. .notdef.
func (f *Font) SIDForName(name string) int {
	for _, m := range f.mappings {
		if m.Name == name {
			return m.SID
		}
	}
	return 0
}

// Width returns the advance width of the glyph mapped for sid. For unmapped
// SIDs it falls back to the width of .notdef, or to defaultWidthX if .notdef
// has no width.
func (f *Font) Width(sid int) float64 {
	for _, m := range f.mappings {
		if m.SID == sid {
			return f.byName[m.Name].Width()
		}
	}
	if notdef, ok := f.byName[".notdef"]; ok {
		if w := notdef.Width(); w != 0 {
			return w
		}
	}
	return f.defaultWidth()
}

func (f *Font) defaultWidth() float64 {
	w, _ := f.private.Number("defaultWidthX")
	return w
}

func (f *Font) nominalWidth() float64 {
	w, _ := f.private.Number("nominalWidthX")
	return w
}

func (f *Font) String() string {
	return fmt.Sprintf("CFF font %q (%d glyphs)", f.Name, len(f.glyphs))
}
