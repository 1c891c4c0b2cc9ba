package ttf

import (
	"fmt"
	"sync"

	"github.com/timheilig/pfloppy/fontbin"
)

// Simple glyph flags.
const (
	flagOnCurve    = 0x01
	flagXShort     = 0x02
	flagYShort     = 0x04
	flagRepeat     = 0x08
	flagXSameOrPos = 0x10
	flagYSameOrPos = 0x20
)

// Outline is the decoded glyph description of a glyph in table glyf.
//
// For simple glyphs, X and Y hold absolute point coordinates and OnCurve
// tells on-curve points from control points. Composite glyphs are not
// resolved: their component records are kept in Components.
type Outline struct {
	NumberOfContours int16
	XMin, YMin       int16
	XMax, YMax       int16
	EndPts           []uint16 // last point index of each contour
	Instructions     []byte
	Flags            []byte // one per point, with repeats expanded
	X, Y             []int16
	Components       []byte // raw component data of composite glyphs
}

// IsComposite is true for glyphs made of references to other glyphs.
func (o *Outline) IsComposite() bool {
	return o.NumberOfContours < 0
}

// NumPoints returns the number of points of a simple glyph.
func (o *Outline) NumPoints() int {
	return len(o.X)
}

// OnCurve reports whether point i is on the curve.
func (o *Outline) OnCurve(i int) bool {
	return o.Flags[i]&flagOnCurve != 0
}

func (o *Outline) String() string {
	if o.IsComposite() {
		return fmt.Sprintf("composite glyph [%d %d %d %d], %d bytes of components",
			o.XMin, o.YMin, o.XMax, o.YMax, len(o.Components))
	}
	return fmt.Sprintf("glyph [%d %d %d %d], %d contours, %d points",
		o.XMin, o.YMin, o.XMax, o.YMax, o.NumberOfContours, len(o.X))
}

// GlyfTable holds the glyph descriptions of a TrueType font. Outlines are
// decoded on demand and cached per glyph.
type GlyfTable struct {
	tableBase
	loca     *LocaTable
	mx       sync.Mutex
	outlines map[GlyphIndex]*Outline
}

func newGlyfTable(tag Tag, b []byte, offset, size uint32) *GlyfTable {
	t := &GlyfTable{}
	t.tableBase = newTableBase(tag, b, offset, size)
	t.self = t
	return t
}

// link connects the glyf table to its glyph locations, checking every range
// against the table size.
func (t *GlyfTable) link(loca *LocaTable) error {
	for gid, r := range loca.Ranges() {
		if r.End > uint32(len(t.data)) {
			return fontbin.Structural("glyf", "loca", "glyph %d range [%d:%d] exceeds table size %d",
				gid, r.Start, r.End, len(t.data))
		}
	}
	t.loca = loca
	t.outlines = make(map[GlyphIndex]*Outline)
	return nil
}

// NumGlyphs returns the number of glyphs in the table.
func (t *GlyfTable) NumGlyphs() int {
	if t.loca == nil {
		return 0
	}
	return t.loca.NumGlyphs()
}

// Outline returns the outline of glyph gid. Glyphs without data, e.g. a
// space, have a nil outline.
func (t *GlyfTable) Outline(gid GlyphIndex) (*Outline, error) {
	if t.loca == nil {
		return nil, fontbin.Structural("glyf", "outline", "glyph data without locations")
	}
	r, ok := t.loca.Range(gid)
	if !ok {
		return nil, fontbin.Structural("glyf", "outline", "glyph index %d out of range", gid)
	}
	t.mx.Lock()
	defer t.mx.Unlock()
	if o, ok := t.outlines[gid]; ok {
		return o, nil
	}
	var o *Outline
	if r.Len() > 0 {
		var err error
		if o, err = decodeOutline(fontbin.NewSpan(t.data[r.Start:r.End])); err != nil {
			return nil, fontbin.Wrap(err, "glyf", fmt.Sprintf("glyph %d", gid))
		}
	}
	t.outlines[gid] = o
	return o, nil
}

// Outlines decodes all glyphs, in glyph order.
func (t *GlyfTable) Outlines() ([]*Outline, error) {
	outlines := make([]*Outline, t.NumGlyphs())
	for i := range outlines {
		o, err := t.Outline(GlyphIndex(i))
		if err != nil {
			return nil, err
		}
		outlines[i] = o
	}
	return outlines, nil
}

func decodeOutline(s fontbin.Span) (*Outline, error) {
	o := &Outline{}
	var err error
	read16 := func() int16 {
		var v int16
		if err == nil {
			v, err = s.I16()
		}
		return v
	}
	o.NumberOfContours = read16()
	o.XMin, o.YMin = read16(), read16()
	o.XMax, o.YMax = read16(), read16()
	if err != nil {
		return nil, err
	}
	if o.IsComposite() {
		o.Components = s.Bytes()[s.Pos():]
		return o, nil
	}
	npoints := 0
	o.EndPts = make([]uint16, o.NumberOfContours)
	for i := range o.EndPts {
		if o.EndPts[i], err = s.U16(); err != nil {
			return nil, err
		}
		if int(o.EndPts[i])+1 > npoints {
			npoints = int(o.EndPts[i]) + 1
		}
	}
	var ilen uint16
	if ilen, err = s.U16(); err != nil {
		return nil, err
	}
	if o.Instructions, err = s.ReadBytes(int(ilen)); err != nil {
		return nil, err
	}
	if o.Flags, err = readFlags(&s, npoints); err != nil {
		return nil, err
	}
	if o.X, err = readCoordinates(&s, o.Flags, flagXShort, flagXSameOrPos); err != nil {
		return nil, err
	}
	if o.Y, err = readCoordinates(&s, o.Flags, flagYShort, flagYSameOrPos); err != nil {
		return nil, err
	}
	return o, nil
}

func readFlags(s *fontbin.Span, npoints int) ([]byte, error) {
	flags := make([]byte, 0, npoints)
	for len(flags) < npoints {
		f, err := s.U8()
		if err != nil {
			return nil, err
		}
		flags = append(flags, f)
		if f&flagRepeat == 0 {
			continue
		}
		n, err := s.U8()
		if err != nil {
			return nil, err
		}
		if len(flags)+int(n) > npoints {
			return nil, fontbin.Structural("glyf", "flags", "flag repeat count %d exceeds point count %d", n, npoints)
		}
		for ; n > 0; n-- {
			flags = append(flags, f)
		}
	}
	return flags, nil
}

// readCoordinates reads the delta-encoded coordinates for one axis and
// returns them as absolute values.
func readCoordinates(s *fontbin.Span, flags []byte, short, sameOrPos byte) ([]int16, error) {
	coords := make([]int16, len(flags))
	var v int16
	for i, f := range flags {
		switch {
		case f&short != 0:
			d, err := s.U8()
			if err != nil {
				return nil, err
			}
			if f&sameOrPos != 0 {
				v += int16(d)
			} else {
				v -= int16(d)
			}
		case f&sameOrPos != 0:
			// same as previous
		default:
			d, err := s.I16()
			if err != nil {
				return nil, err
			}
			v += d
		}
		coords[i] = v
	}
	return coords, nil
}
