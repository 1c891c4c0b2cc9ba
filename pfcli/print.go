package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/pterm/pterm"
	"github.com/timheilig/pfloppy/cff"
	"github.com/timheilig/pfloppy/ttf"
)

// printTable prints the fields of decoded header tables.
func printTable(t ttf.Table) {
	var data [][]string
	self := t.Self()
	if head := self.AsHead(); head != nil {
		data = [][]string{
			{"Field", "Value"},
			{"FontRevision", fmt.Sprintf("%.3f", head.FontRevision)},
			{"UnitsPerEm", strconv.Itoa(int(head.UnitsPerEm))},
			{"Created", head.Created.String()},
			{"Modified", head.Modified.String()},
			{"BBox", fmt.Sprintf("%d %d %d %d", head.XMin, head.YMin, head.XMax, head.YMax)},
			{"Flags", fmt.Sprintf("%#04x", head.Flags)},
			{"MacStyle", fmt.Sprintf("%#04x", head.MacStyle)},
			{"IndexToLocFormat", strconv.Itoa(int(head.IndexToLocFormat))},
		}
	} else if hhea := self.AsHHea(); hhea != nil {
		data = [][]string{
			{"Field", "Value"},
			{"Ascender", strconv.Itoa(int(hhea.Ascender))},
			{"Descender", strconv.Itoa(int(hhea.Descender))},
			{"LineGap", strconv.Itoa(int(hhea.LineGap))},
			{"AdvanceWidthMax", strconv.Itoa(int(hhea.AdvanceWidthMax))},
			{"NumberOfHMetrics", strconv.Itoa(int(hhea.NumberOfHMetrics))},
		}
	} else if maxp := self.AsMaxP(); maxp != nil {
		data = [][]string{
			{"Field", "Value"},
			{"Version", fmt.Sprintf("%#08x", maxp.Version)},
			{"NumGlyphs", strconv.Itoa(int(maxp.NumGlyphs))},
		}
	} else if loca := self.AsLoca(); loca != nil {
		pterm.Printf("%d glyph locations\n", loca.NumGlyphs())
		return
	}
	if data != nil {
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}
}

func glyphOp(intp *Intp, op *Op) (err error, stop bool) {
	arg, ok := op.hasArg()
	if !ok {
		return errors.New("glyph index or name required, e.g. glyph:12"), false
	}
	if intp.font != nil && len(intp.font.CFF) > 0 {
		return printCFFGlyph(intp.font.CFF[intp.fontx], arg), false
	}
	otf, err := intp.checkTTF()
	if err != nil {
		return
	}
	if otf.Glyf() == nil {
		return errors.New("font has no glyf table"), false
	}
	gid, err := strconv.Atoi(arg)
	if err != nil || gid < 0 {
		return fmt.Errorf("glyph index not numeric: %v", arg), false
	}
	o, err := otf.Glyf().Outline(ttf.GlyphIndex(gid))
	if err != nil {
		return err, false
	}
	if o == nil {
		pterm.Printf("glyph %d is empty\n", gid)
		return
	}
	pterm.Printf("glyph %d: %s\n", gid, o)
	if r := otf.CMap(); r != nil {
		if c := r.ReverseLookup(ttf.GlyphIndex(gid)); c != 0 {
			pterm.Printf("mapped from %U %q\n", c, c)
		}
	}
	if o.IsComposite() {
		return
	}
	data := [][]string{{"Point", "X", "Y", "On curve"}}
	for i := 0; i < o.NumPoints(); i++ {
		data = append(data, []string{strconv.Itoa(i), strconv.Itoa(int(o.X[i])),
			strconv.Itoa(int(o.Y[i])), strconv.FormatBool(o.OnCurve(i))})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return
}

func printCFFGlyph(f *cff.Font, arg string) error {
	var g *cff.Glyph
	if gid, err := strconv.Atoi(arg); err == nil {
		if gid < 0 || gid >= len(f.Glyphs()) {
			return fmt.Errorf("glyph index out of range: %d", gid)
		}
		g = f.Glyphs()[gid]
	} else if g, _ = f.Glyph(arg); g == nil {
		return fmt.Errorf("no glyph named %q", arg)
	}
	pterm.Printf("%s, SID %d\n", g, g.SID)
	pterm.Printf("program: %s\n", g.Program)
	m, err := g.Metrics()
	if err != nil {
		return err
	}
	pterm.Printf("width %g, lsb %g, bbox [%g %g %g %g]\n", m.Width, m.LSB,
		m.BBox.MinX, m.BBox.MinY, m.BBox.MaxX, m.BBox.MaxY)
	return nil
}

func dictOp(intp *Intp, op *Op) (err error, stop bool) {
	if intp.font == nil || len(intp.font.CFF) == 0 {
		return ERR_NO_CFF, false
	}
	f := intp.font.CFF[intp.fontx]
	d := f.TopDict()
	if op.arg == "private" {
		d = f.PrivateDict()
	} else if !op.noArg() && op.arg != "top" {
		return fmt.Errorf("unknown DICT %q, use top or private", op.arg), false
	}
	data := [][]string{{"Key", "Shape", "Value"}}
	for _, key := range d.Keys() {
		o, _ := d.Get(key)
		data = append(data, []string{key, o.Shape.String(), o.String()})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return
}

func mapOp(intp *Intp, op *Op) (err error, stop bool) {
	if intp.font != nil && len(intp.font.CFF) > 0 {
		f := intp.font.CFF[intp.fontx]
		data := [][]string{{"Code", "SID", "Glyph"}}
		for _, m := range f.Mappings() {
			data = append(data, []string{strconv.Itoa(m.Code), strconv.Itoa(m.SID), m.Name})
		}
		pterm.Printf("encoding: %v, charset: %v\n", f.Encoding().Kind, f.Charset().Kind)
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return
	}
	otf, err := intp.checkTTF()
	if err != nil {
		return
	}
	if otf.CMap() == nil {
		return errors.New("font has no decoded cmap table"), false
	}
	key, st, ok := otf.CMap().Preferred()
	if !ok {
		return errors.New("no usable cmap sub-table"), false
	}
	m, err := st.Map()
	if err != nil {
		return err, false
	}
	pterm.Printf("cmap %s, format %d: %d codes\n", key, st.Format(), len(m))
	return
}

func fontOp(intp *Intp, op *Op) (err error, stop bool) {
	if intp.font == nil || len(intp.font.CFF) == 0 {
		return ERR_NO_CFF, false
	}
	if op.noArg() {
		pterm.Printf("font %d of %d: %s\n", intp.fontx, len(intp.font.CFF), intp.font.CFF[intp.fontx])
		return
	}
	i, err := strconv.Atoi(op.arg)
	if err != nil || i < 0 || i >= len(intp.font.CFF) {
		return fmt.Errorf("no font %v in CFF set", op.arg), false
	}
	intp.fontx = i
	return nil, false
}
