package ttf

import "github.com/timheilig/pfloppy/fontbin"

// Table represents one of the tables of a TrueType font.
//
// Tables interpreted by this package are 'head' (Font header), 'hhea'
// (Horizontal header), 'maxp' (Maximum profile), 'loca' (Index to location),
// 'glyf' (Glyph data) and 'cmap' (Character to glyph mapping). Every other
// table of a font is kept as a generic table, i.e. no table information will
// be dropped.
type Table interface {
	Extent() (uint32, uint32) // offset and byte size within the font's binary data
	Binary() []byte           // the bytes of this table; should be treated as read-only by clients
	Self() TableSelf          // reference to itself
}

func newTable(tag Tag, b []byte, offset, size uint32) *genericTable {
	t := &genericTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

type genericTable struct {
	tableBase
}

// tableBase is a common parent for all kinds of font tables.
type tableBase struct {
	data   []byte // view into the font binary
	name   Tag
	offset uint32 // position of data within the font
	length uint32
	self   any // the concrete table embedding this base
}

func newTableBase(tag Tag, b []byte, offset, size uint32) tableBase {
	return tableBase{
		data:   b,
		name:   tag,
		offset: offset,
		length: size,
	}
}

// Extent returns offset and byte size of this table within the font.
func (tb *tableBase) Extent() (uint32, uint32) {
	return tb.offset, tb.length
}

// Binary returns the bytes of this table. Should be treated as read-only by
// clients, as it is a view into the original data.
func (tb *tableBase) Binary() []byte {
	return tb.data
}

func (tb *tableBase) Self() TableSelf {
	return TableSelf{tableBase: tb}
}

// span returns a reader positioned at the start of the table. Error offsets
// reported by the span are relative to the table start.
func (tb *tableBase) span() fontbin.Span {
	return fontbin.NewSpan(tb.data)
}

// TableSelf lets clients narrow a Table to its concrete type and find its
// tag.
type TableSelf struct {
	tableBase *tableBase
}

// NameTag returns the 4-letter name of a table.
func (tself TableSelf) NameTag() Tag {
	if tself.tableBase == nil {
		return 0
	}
	return tself.tableBase.name
}

// selfAs returns the table as a T, or the zero T if the table is of another
// kind.
func selfAs[T any](tself TableSelf) (t T) {
	if tself.tableBase != nil {
		t, _ = tself.tableBase.self.(T)
	}
	return
}

// AsHead returns this table as a head table, or nil.
func (tself TableSelf) AsHead() *HeadTable { return selfAs[*HeadTable](tself) }

// AsHHea returns this table as a hhea table, or nil.
func (tself TableSelf) AsHHea() *HHeaTable { return selfAs[*HHeaTable](tself) }

// AsMaxP returns this table as a maxp table, or nil.
func (tself TableSelf) AsMaxP() *MaxPTable { return selfAs[*MaxPTable](tself) }

func (tself TableSelf) AsLoca() *LocaTable { return selfAs[*LocaTable](tself) }

func (tself TableSelf) AsGlyf() *GlyfTable { return selfAs[*GlyfTable](tself) }

// AsCMap returns this table as a cmap table, or nil. Sub-tables are reached
// through the result's Subtable method.
func (tself TableSelf) AsCMap() *CMapTable { return selfAs[*CMapTable](tself) }
