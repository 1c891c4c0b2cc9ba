/*
Package fontdiff compares two decoded fonts and reports where they differ.

Tables are compared by content. Tables with typed decoders (head, hhea, maxp)
are compared field by field. If one of the glyph related tables (cmap, loca,
glyf) differs, glyphs are compared through the character maps: for every
character code of every encoding of either font, the outlines the two fonts map
the code to must match. Coordinates are allowed to be off by a small tolerance,
as round trips through font editors tend to move points by a unit.

CFF fonts are compared by their Top DICT entries and by the metrics of glyphs
with equal names.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.
*/
package fontdiff

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/npillmayer/schuko/tracing"
	"github.com/timheilig/pfloppy"
	"github.com/timheilig/pfloppy/cff"
	"github.com/timheilig/pfloppy/fontbin"
	"github.com/timheilig/pfloppy/ttf"
)

// tracer writes to trace with key 'font.diff'
func tracer() tracing.Trace {
	return tracing.Select("font.diff")
}

// Options control a comparison.
type Options struct {
	Tolerance  int       // allowed deviation of coordinates, in font units
	Ignore     []ttf.Tag // tables to skip
	Timestamps bool      // compare head.Created and head.Modified
}

// DefaultOptions ignores the FontForge timestamp table and tolerates
// coordinates being off by one unit.
var DefaultOptions = Options{
	Tolerance: 1,
	Ignore:    []ttf.Tag{ttf.T("FFTM")},
}

// Report lists the differences of two fonts, in the order they were found.
type Report struct {
	Name        string // name of the first font
	Differences []string
}

// Empty is true if no differences were found.
func (r *Report) Empty() bool {
	return r == nil || len(r.Differences) == 0
}

func (r *Report) add(format string, args ...any) {
	d := fmt.Sprintf(format, args...)
	tracer().Debugf("diff: %s", d)
	r.Differences = append(r.Differences, d)
}

// String renders the report with a heading line, or "" for an empty report.
func (r *Report) String() string {
	if r.Empty() {
		return ""
	}
	return "font " + r.Name + "\n" + strings.Join(r.Differences, "\n")
}

// Fonts compares two fonts of any kind.
func Fonts(a, b *pfloppy.Font, opt Options) (*Report, error) {
	r := &Report{Name: a.Name()}
	if a.Kind != b.Kind {
		r.add("font kinds differ: %s vs %s", a.Kind, b.Kind)
		return r, nil
	}
	if a.Kind == pfloppy.KindTTF {
		if err := compareTrueType(r, a.TTF, b.TTF, opt); err != nil {
			return nil, err
		}
		if a.TTF.Table(ttf.T("CFF ")) == nil || b.TTF.Table(ttf.T("CFF ")) == nil {
			return r, nil
		}
	}
	if len(a.CFF) != len(b.CFF) {
		r.add("font set sizes differ: %d vs %d", len(a.CFF), len(b.CFF))
		return r, nil
	}
	for i := range a.CFF {
		compareCFF(r, a.CFF[i], b.CFF[i], opt)
	}
	return r, nil
}

// TrueType compares two TrueType fonts.
func TrueType(a, b *ttf.Font, opt Options) (*Report, error) {
	r := &Report{Name: a.String()}
	if err := compareTrueType(r, a, b, opt); err != nil {
		return nil, err
	}
	return r, nil
}

// CFF compares two fonts of CFF font sets.
func CFF(a, b *cff.Font, opt Options) *Report {
	r := &Report{Name: a.Name}
	compareCFF(r, a, b, opt)
	return r
}

// --- TrueType --------------------------------------------------------------

var glyphTables = []ttf.Tag{ttf.T("cmap"), ttf.T("loca"), ttf.T("glyf")}

func compareTrueType(r *Report, a, b *ttf.Font, opt Options) error {
	ignored := make(map[ttf.Tag]bool, len(opt.Ignore))
	for _, tag := range opt.Ignore {
		ignored[tag] = true
	}
	compareGlyphs := false
	for _, tag := range unionOfTags(a, b) {
		if ignored[tag] {
			continue
		}
		ta, tb := a.Table(tag), b.Table(tag)
		switch {
		case ta == nil:
			r.add("table %s does not exist in first font", tag)
		case tb == nil:
			r.add("table %s does not exist in second font", tag)
		case isGlyphTable(tag):
			if !bytes.Equal(ta.Binary(), tb.Binary()) {
				compareGlyphs = true
			}
		default:
			compareTable(r, tag, ta, tb, opt)
		}
	}
	if !compareGlyphs || a.Glyf() == nil || b.Glyf() == nil {
		return nil
	}
	if a.CMap() == nil || b.CMap() == nil {
		return compareByGlyphIndex(r, a, b, opt)
	}
	return compareByCode(r, a, b, opt)
}

func unionOfTags(a, b *ttf.Font) []ttf.Tag {
	seen := make(map[ttf.Tag]bool)
	var tags []ttf.Tag
	for _, tag := range append(a.TableTags(), b.TableTags()...) {
		if !seen[tag] {
			seen[tag] = true
			tags = append(tags, tag)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

func isGlyphTable(tag ttf.Tag) bool {
	for _, t := range glyphTables {
		if t == tag {
			return true
		}
	}
	return false
}

func compareTable(r *Report, tag ttf.Tag, ta, tb ttf.Table, opt Options) {
	var x, y any
	switch tag {
	case ttf.T("head"):
		x, y = ta.Self().AsHead(), tb.Self().AsHead()
	case ttf.T("hhea"):
		x, y = ta.Self().AsHHea(), tb.Self().AsHHea()
	case ttf.T("maxp"):
		x, y = ta.Self().AsMaxP(), tb.Self().AsMaxP()
	default:
		if !bytes.Equal(ta.Binary(), tb.Binary()) {
			r.add("table %s differs (%d vs %d bytes)", tag, len(ta.Binary()), len(tb.Binary()))
		}
		return
	}
	opts := []cmp.Option{
		cmpopts.IgnoreUnexported(ttf.HeadTable{}, ttf.HHeaTable{}, ttf.MaxPTable{}),
	}
	if !opt.Timestamps {
		opts = append(opts, cmpopts.IgnoreFields(ttf.HeadTable{}, "Created", "Modified"))
	}
	if d := cmp.Diff(x, y, opts...); d != "" {
		r.add("table %s differs (-first +second):\n%s", tag, strings.TrimRight(d, "\n"))
	}
}

// compareByCode compares the outlines which both fonts map a code to, for all
// codes of all encodings of either font.
func compareByCode(r *Report, a, b *ttf.Font, opt Options) error {
	mapsA, err := codeMaps(a.CMap())
	if err != nil {
		return err
	}
	mapsB, err := codeMaps(b.CMap())
	if err != nil {
		return err
	}
	keys := unionOfKeys(mapsA, mapsB)
	eq := outlineOptions(opt)
	for _, key := range keys {
		codes := unionOfCodes(mapsA[key], mapsB[key])
		for _, code := range codes {
			oa, err := a.Glyf().Outline(mapsA[key][code])
			if err != nil {
				return err
			}
			ob, err := b.Glyf().Outline(mapsB[key][code])
			if err != nil {
				return err
			}
			if !cmp.Equal(oa, ob, eq...) {
				r.add("glyph for code %#x %s doesn't match", code, key)
			}
		}
	}
	return nil
}

func compareByGlyphIndex(r *Report, a, b *ttf.Font, opt Options) error {
	n := min(a.Glyf().NumGlyphs(), b.Glyf().NumGlyphs())
	if a.Glyf().NumGlyphs() != b.Glyf().NumGlyphs() {
		r.add("glyph counts differ: %d vs %d", a.Glyf().NumGlyphs(), b.Glyf().NumGlyphs())
	}
	eq := outlineOptions(opt)
	for gid := 0; gid < n; gid++ {
		oa, err := a.Glyf().Outline(ttf.GlyphIndex(gid))
		if err != nil {
			return err
		}
		ob, err := b.Glyf().Outline(ttf.GlyphIndex(gid))
		if err != nil {
			return err
		}
		if !cmp.Equal(oa, ob, eq...) {
			r.add("glyph %d doesn't match", gid)
		}
	}
	return nil
}

// outlineOptions lets coordinates deviate by opt.Tolerance. Point flags are
// compared by their on-curve bit only, as the other bits depend on the
// coordinate encoding.
func outlineOptions(opt Options) []cmp.Option {
	tol := opt.Tolerance
	coords := cmp.FilterPath(fieldIn("X", "Y", "XMin", "YMin", "XMax", "YMax"),
		cmp.Comparer(func(x, y int16) bool {
			d := int(x) - int(y)
			return d >= -tol && d <= tol
		}))
	flags := cmp.FilterPath(fieldIn("Flags"), cmp.Comparer(func(x, y byte) bool {
		return x&1 == y&1
	}))
	return []cmp.Option{coords, flags, cmpopts.EquateEmpty()}
}

func fieldIn(names ...string) func(cmp.Path) bool {
	return func(p cmp.Path) bool {
		for _, step := range p {
			if sf, ok := step.(cmp.StructField); ok {
				for _, n := range names {
					if sf.Name() == n {
						return true
					}
				}
			}
		}
		return false
	}
}

func codeMaps(cmap *ttf.CMapTable) (map[ttf.CMapKey]map[uint32]ttf.GlyphIndex, error) {
	maps := make(map[ttf.CMapKey]map[uint32]ttf.GlyphIndex)
	for _, key := range cmap.Keys() {
		m, err := cmap.Subtable(key).Map()
		if fontbin.IsUnsupported(err) {
			tracer().Debugf("cmap sub-table %s not compared", key)
			continue
		} else if err != nil {
			return nil, err
		}
		maps[key] = m
	}
	return maps, nil
}

func unionOfKeys(a, b map[ttf.CMapKey]map[uint32]ttf.GlyphIndex) []ttf.CMapKey {
	var keys []ttf.CMapKey
	for k := range a {
		keys = append(keys, k)
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].PlatformID != keys[j].PlatformID {
			return keys[i].PlatformID < keys[j].PlatformID
		}
		return keys[i].EncodingID < keys[j].EncodingID
	})
	return keys
}

func unionOfCodes(a, b map[uint32]ttf.GlyphIndex) []uint32 {
	var codes []uint32
	for c := range a {
		codes = append(codes, c)
	}
	for c := range b {
		if _, ok := a[c]; !ok {
			codes = append(codes, c)
		}
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// --- CFF -------------------------------------------------------------------

// offset operators differ between files with equal content
var offsetKeys = map[string]bool{
	"charset": true, "Encoding": true, "CharStrings": true, "Private": true,
	"Subrs": true, "FDArray": true, "FDSelect": true,
}

func compareCFF(r *Report, a, b *cff.Font, opt Options) {
	if a.Name != b.Name {
		r.add("< name %s", a.Name)
		r.add("> name %s", b.Name)
	}
	compareDicts(r, "top", a.TopDict(), b.TopDict())
	compareDicts(r, "private", a.PrivateDict(), b.PrivateDict())
	tol := float64(opt.Tolerance)
	approx := cmpopts.EquateApprox(0, tol)
	for _, ga := range a.Glyphs() {
		gb, ok := b.Glyph(ga.Name)
		if !ok {
			r.add("glyph %s does not exist in second font", ga.Name)
			continue
		}
		ma, erra := ga.Metrics()
		mb, errb := gb.Metrics()
		if (erra == nil) != (errb == nil) {
			r.add("glyph %s renders in one font only", ga.Name)
		} else if !cmp.Equal(ma, mb, approx) {
			r.add("glyph %s doesn't match: %v vs %v", ga.Name, ma, mb)
		}
	}
	for _, gb := range b.Glyphs() {
		if _, ok := a.Glyph(gb.Name); !ok {
			r.add("glyph %s does not exist in first font", gb.Name)
		}
	}
}

func compareDicts(r *Report, name string, a, b *cff.Dict) {
	keys := append(a.Keys(), b.Keys()...)
	sort.Strings(keys)
	keys = dedup(keys)
	for _, key := range keys {
		if offsetKeys[key] {
			continue
		}
		oa, oka := a.Get(key)
		ob, okb := b.Get(key)
		switch {
		case !oka:
			r.add("%s %s does not exist in first font", name, key)
		case !okb:
			r.add("%s %s does not exist in second font", name, key)
		case oa.String() != ob.String():
			r.add("< %s %s %s", name, key, oa)
			r.add("> %s %s %s", name, key, ob)
		}
	}
}

func dedup(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
