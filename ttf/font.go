package ttf

import (
	"fmt"
	"sort"
	"strings"

	"github.com/timheilig/pfloppy/fontbin"
)

// Font represents the internal structure of a TrueType font.
//
// A Font needs ongoing access to the font's byte-data after Parse returns.
// The data is assumed immutable while the Font remains in use.
type Font struct {
	Header        FontHeader
	tables        map[Tag]Table
	head          *HeadTable
	hhea          *HHeaTable
	maxp          *MaxPTable
	loca          *LocaTable
	glyf          *GlyfTable
	cmap          *CMapTable
	parseWarnings []FontWarning // Warnings accumulated during parsing
}

// FontHeader is the offset table at the start of a font file.
//
// TrueType fonts use 0x00010000 for FontType, fonts with CFF data
// 0x4F54544F ('OTTO', when re-interpreted as a Tag). Apple's TrueType
// specification allows for 'true' as well.
type FontHeader struct {
	FontType   uint32
	TableCount uint16
}

// ParseOption guides and influences the parsing of the font.
type ParseOption int

const (
	// SkipCMap keeps the cmap table as a generic table, without decoding
	// its subtables.
	SkipCMap ParseOption = iota + 1
)

const (
	sfntTrueType = 0x00010000
	sfntOpenType = 0x4f54544f // OTTO
	sfntApple    = 0x74727565 // true
	sfntTTC      = 0x74746366 // ttcf
)

// conflictingTables lists sets of tables which are not supposed to occur
// together in a font.
var conflictingTables = [][]string{
	{"CFF ", "loca", "CID ", "TYP1"}, // outline formats
	{"kern", "GPOS"},
	{"BASE", "bsln"},
	{"mort", "morx", "GSUB"},
}

// Parse parses a TrueType font from a byte slice.
func Parse(font []byte, opts ...ParseOption) (*Font, error) {
	skipCMap := false
	for _, opt := range opts {
		skipCMap = skipCMap || opt == SkipCMap
	}
	s := fontbin.NewSpan(font)
	h := FontHeader{}
	var err error
	if h.FontType, err = s.U32(); err != nil {
		return nil, fontbin.Wrap(err, "sfnt", "header")
	}
	tracer().Debugf("header tag = %x|%s", h.FontType, Tag(h.FontType).String())
	switch h.FontType {
	case sfntTrueType, sfntOpenType, sfntApple:
	case sfntTTC:
		return nil, fontbin.Unsupported("sfnt", "header", "font collections are not supported")
	default:
		return nil, fontbin.Structural("sfnt", "header", "font type not supported: %x", h.FontType)
	}
	if h.TableCount, err = s.U16(); err != nil {
		return nil, fontbin.Wrap(err, "sfnt", "header")
	}
	if err = s.Skip(6); err != nil { // searchRange, entrySelector, rangeShift
		return nil, fontbin.Wrap(err, "sfnt", "header")
	}
	ec := &errorCollector{}
	otf := &Font{Header: h, tables: make(map[Tag]Table)}
	// "The Offset Table is followed immediately by the Table Record entries …
	// sorted in ascending order by tag", 16 bytes each.
	size, err := fontbin.CheckedMulInt(16, int(h.TableCount))
	if err != nil {
		return nil, fontbin.Wrap(err, "sfnt", "table records")
	}
	records, err := s.Chunk(size)
	if err != nil {
		return nil, fontbin.Wrap(err, "sfnt", "table records")
	}
	for prevTag := Tag(0); !records.Exhausted(); {
		rec, _ := records.ReadBytes(16)
		tag := MakeTag(rec)
		off, length := fontbin.U32(rec[8:12]), fontbin.U32(rec[12:16])
		if tag < prevTag {
			ec.warnf(0, 0, "table %s out of order", tag)
		}
		prevTag = tag
		if off == 0 || length == 0 {
			tracer().Infof("skipping empty table record %s", tag)
			continue
		}
		if off&3 != 0 { // "all tables must begin on four byte boundries"
			ec.warnf(tag, off, "table offset not aligned to 4 bytes")
		}
		end, err := fontbin.CheckedAddUint32(off, length)
		if err != nil {
			return nil, fontbin.Structural("sfnt", tag.String(), "size calculation overflow: %v", err).At(int(off))
		}
		if end > uint32(len(font)) {
			return nil, fontbin.Structural("sfnt", tag.String(), "bounds [%d:%d] exceed font size %d",
				off, end, len(font)).At(int(off))
		}
		if _, dup := otf.tables[tag]; dup {
			ec.warnf(tag, off, "duplicate table record")
			continue
		}
		t, err := parseTable(tag, font[off:end], off, length, skipCMap, ec)
		if err != nil {
			return nil, err
		}
		otf.tables[tag] = t
	}
	if err := otf.linkTables(); err != nil {
		return nil, err
	}
	otf.checkConflicts(ec)
	if ec.hasWarnings() {
		tracer().Infof("font has %d warnings", len(ec.warnings))
	}
	otf.parseWarnings = ec.warnings
	return otf, nil
}

func parseTable(tag Tag, b []byte, offset, size uint32, skipCMap bool, ec *errorCollector) (Table, error) {
	switch tag {
	case T("head"):
		return parseHead(tag, b, offset, size)
	case T("hhea"):
		return parseHHea(tag, b, offset, size)
	case T("maxp"):
		return parseMaxP(tag, b, offset, size)
	case T("loca"):
		return newLocaTable(tag, b, offset, size), nil
	case T("glyf"):
		return newGlyfTable(tag, b, offset, size), nil
	case T("cmap"):
		if !skipCMap {
			return parseCMap(tag, b, offset, size, ec)
		}
	}
	tracer().Infof("font contains table (%s), will not be interpreted", tag)
	return newTable(tag, b, offset, size), nil
}

// linkTables resolves the tables which depend on each other, in the order
// head, maxp, loca, glyf.
func (otf *Font) linkTables() error {
	if t := otf.tables[T("head")]; t != nil {
		otf.head = t.Self().AsHead()
	}
	if t := otf.tables[T("hhea")]; t != nil {
		otf.hhea = t.Self().AsHHea()
	}
	if t := otf.tables[T("maxp")]; t != nil {
		otf.maxp = t.Self().AsMaxP()
	}
	if t := otf.tables[T("cmap")]; t != nil {
		otf.cmap = t.Self().AsCMap()
	}
	if t := otf.tables[T("loca")]; t != nil {
		if otf.head == nil || otf.maxp == nil {
			return fontbin.Structural("loca", "tables", "glyph locations require tables head and maxp")
		}
		loca := t.Self().AsLoca()
		if err := loca.decode(otf.head.IndexToLocFormat, otf.maxp.NumGlyphs); err != nil {
			return err
		}
		otf.loca = loca
	}
	if t := otf.tables[T("glyf")]; t != nil {
		if otf.loca == nil {
			return fontbin.Structural("glyf", "tables", "glyph data requires table loca")
		}
		glyf := t.Self().AsGlyf()
		if err := glyf.link(otf.loca); err != nil {
			return err
		}
		otf.glyf = glyf
	}
	return nil
}

func (otf *Font) checkConflicts(ec *errorCollector) {
	for _, set := range conflictingTables {
		var present []string
		for _, tag := range set {
			if _, ok := otf.tables[T(tag)]; ok {
				present = append(present, strings.TrimSpace(tag))
			}
		}
		if len(present) > 1 {
			ec.warnf(T(set[0]), 0, "conflicting tables present: %s", strings.Join(present, ", "))
		}
	}
}

// Table returns the font table for a given tag. If a table for a tag cannot
// be found in the font, nil is returned.
//
// For tables not interpreted by this package, `Table` will return a generic
// table type, giving access to the table's bytes.
// For example to receive the `OS/2` and the `loca` table, clients may call
//
//	os2  := otf.Table(ttf.T("OS/2"))
//	loca := otf.Table(ttf.T("loca")).Self().AsLoca()
//
// Table tag names are case-sensitive.
func (otf *Font) Table(tag Tag) Table {
	if t, ok := otf.tables[tag]; ok {
		return t
	}
	return nil
}

// TableTags returns a list of tags, one for each table contained in the font,
// in ascending order.
func (otf *Font) TableTags() []Tag {
	var tags = make([]Tag, 0, len(otf.tables))
	for tag := range otf.tables {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i] < tags[j] })
	return tags
}

// Head returns the font header table, or nil.
func (otf *Font) Head() *HeadTable {
	return otf.head
}

// HHea returns the horizontal header table, or nil.
func (otf *Font) HHea() *HHeaTable {
	return otf.hhea
}

// MaxP returns the maximum profile table, or nil.
func (otf *Font) MaxP() *MaxPTable {
	return otf.maxp
}

// Loca returns the glyph location table, or nil.
func (otf *Font) Loca() *LocaTable {
	return otf.loca
}

// Glyf returns the glyph data table, or nil.
func (otf *Font) Glyf() *GlyfTable {
	return otf.glyf
}

// CMap returns the character to glyph mapping table, or nil if the font
// has none or it has been skipped with option SkipCMap.
func (otf *Font) CMap() *CMapTable {
	return otf.cmap
}

// NumGlyphs returns the glyph count of table maxp, or 0 if the font has no
// maxp table.
func (otf *Font) NumGlyphs() int {
	if otf.maxp == nil {
		return 0
	}
	return int(otf.maxp.NumGlyphs)
}

// Warnings returns all warnings encountered during font parsing.
// Warnings indicate potential issues that are generally safe to ignore.
func (otf *Font) Warnings() []FontWarning {
	if otf.parseWarnings == nil {
		return []FontWarning{}
	}
	return otf.parseWarnings
}

func (otf *Font) String() string {
	return fmt.Sprintf("TrueType font (%d tables, %d glyphs)", len(otf.tables), otf.NumGlyphs())
}
