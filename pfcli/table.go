package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pterm/pterm"
	"github.com/timheilig/pfloppy/ttf"
)

func tablesOp(intp *Intp, op *Op) (error, bool) {
	if intp.font != nil && intp.font.TTF == nil {
		data := [][]string{{"Index", "Font", "Glyphs"}}
		for i, f := range intp.font.CFF {
			data = append(data, []string{strconv.Itoa(i), f.Name, strconv.Itoa(len(f.Glyphs()))})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return nil, false
	}
	otf, err := intp.checkTTF()
	if err != nil {
		return err, false
	}
	data := [][]string{{"Tag", "Offset", "Size", "Decoded"}}
	for _, tag := range otf.TableTags() {
		t := otf.Table(tag)
		off, size := t.Extent()
		data = append(data, []string{tag.String(), strconv.Itoa(int(off)), strconv.Itoa(int(size)), decodedAs(t)})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	for _, w := range otf.Warnings() {
		pterm.Println(w.String())
	}
	return nil, false
}

func decodedAs(t ttf.Table) string {
	s := t.Self()
	switch {
	case s.AsHead() != nil, s.AsHHea() != nil, s.AsMaxP() != nil:
		return "header"
	case s.AsLoca() != nil:
		return "locations"
	case s.AsGlyf() != nil:
		return "outlines"
	case s.AsCMap() != nil:
		return "character map"
	}
	return "-"
}

func tableOp(intp *Intp, op *Op) (error, bool) {
	otf, err := intp.checkTTF()
	if err != nil {
		return err, false
	}
	tag, ok := op.hasArg()
	if !ok {
		return errors.New("table tag required, e.g. table:head"), false
	}
	if intp.table = otf.Table(ttf.T(tag)); intp.table == nil {
		return errors.New("table not found in font"), false
	}
	tracer().Infof("setting table: %v", tag)
	off, size := intp.table.Extent()
	pterm.Printf("table %s: offset=%d size=%d\n", intp.table.Self().NameTag(), off, size)
	printTable(intp.table)
	return nil, false
}

func cmapOp(intp *Intp, op *Op) (err error, stop bool) {
	otf, err := intp.checkTTF()
	if err != nil {
		return
	}
	cmap := otf.CMap()
	if cmap == nil {
		return errors.New("font has no decoded cmap table"), false
	}
	if op.noArg() {
		data := [][]string{{"Encoding", "Format", "Language", "Codes"}}
		for _, key := range cmap.Keys() {
			st := cmap.Subtable(key)
			codes := "-"
			if m, err := st.Map(); err == nil {
				codes = strconv.Itoa(len(m))
			}
			data = append(data, []string{key.String(), strconv.Itoa(int(st.Format())),
				strconv.Itoa(int(st.Language())), codes})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return
	}
	r, err := parseRune(op.arg)
	if err != nil {
		return err, false
	}
	data := [][]string{{"Encoding", "Format", "Glyph"}}
	for _, key := range cmap.Keys() {
		st := cmap.Subtable(key)
		gid, err := st.Lookup(uint32(r))
		g := strconv.Itoa(int(gid))
		if err != nil {
			g = err.Error()
		}
		data = append(data, []string{key.String(), strconv.Itoa(int(st.Format())), g})
	}
	pterm.Printf("%U maps to glyph %d\n", r, cmap.LookupRune(r))
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	return
}

// parseRune accepts a single character or a code point as U+hex or 0xhex.
func parseRune(arg string) (rune, error) {
	if utf8.RuneCountInString(arg) == 1 {
		r, _ := utf8.DecodeRuneInString(arg)
		return r, nil
	}
	hex := arg
	switch {
	case strings.HasPrefix(hex, "U+"), strings.HasPrefix(hex, "u+"):
		hex = hex[2:]
	case strings.HasPrefix(hex, "0x"), strings.HasPrefix(hex, "0X"):
		hex = hex[2:]
	default:
		return 0, fmt.Errorf("not a character or code point: %q", arg)
	}
	u, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid code point %q", arg)
	}
	return rune(u), nil
}
