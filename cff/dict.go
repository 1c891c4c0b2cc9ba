package cff

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/timheilig/pfloppy/fontbin"
)

// Shape is the declared operand shape of a DICT operator.
type Shape int

const (
	ShapeNumber  Shape = iota // one number
	ShapeSID                  // one string ID, resolved against the string table
	ShapeBoolean              // 0 or 1
	ShapeArray                // the whole operand stack
	ShapeDelta                // the whole operand stack, delta-encoded
	ShapeTuple                // a fixed sequence of scalars, e.g. ROS or Private
)

func (sh Shape) String() string {
	switch sh {
	case ShapeNumber:
		return "number"
	case ShapeSID:
		return "SID"
	case ShapeBoolean:
		return "boolean"
	case ShapeArray:
		return "array"
	case ShapeDelta:
		return "delta"
	case ShapeTuple:
		return "tuple"
	}
	return "unknown"
}

// Operand is the value of a DICT entry.
type Operand struct {
	Shape Shape
	Num   float64   // ShapeNumber, ShapeBoolean (0 or 1)
	SID   int       // ShapeSID
	Str   string    // ShapeSID: resolved string
	Array []float64 // ShapeArray, ShapeDelta (cumulative values)
	Tuple []Operand // ShapeTuple
}

// Int returns a numeric operand as an integer.
func (o Operand) Int() int {
	switch o.Shape {
	case ShapeSID:
		return o.SID
	case ShapeTuple:
		if len(o.Tuple) > 0 {
			return o.Tuple[0].Int()
		}
		return 0
	}
	return int(o.Num)
}

// Bool returns a boolean operand.
func (o Operand) Bool() bool {
	return o.Num != 0
}

// Numbers returns the values of an array-like operand. Scalars are returned as
// a one-element slice.
func (o Operand) Numbers() []float64 {
	switch o.Shape {
	case ShapeArray, ShapeDelta:
		return o.Array
	case ShapeTuple:
		nums := make([]float64, len(o.Tuple))
		for i, t := range o.Tuple {
			nums[i] = t.Num
			if t.Shape == ShapeSID {
				nums[i] = float64(t.SID)
			}
		}
		return nums
	case ShapeSID:
		return []float64{float64(o.SID)}
	}
	return []float64{o.Num}
}

func (o Operand) String() string {
	switch o.Shape {
	case ShapeSID:
		return o.Str
	case ShapeBoolean:
		return strconv.FormatBool(o.Bool())
	case ShapeArray, ShapeDelta:
		return fmt.Sprint(o.Array)
	case ShapeTuple:
		parts := make([]string, len(o.Tuple))
		for i, t := range o.Tuple {
			parts[i] = t.String()
		}
		return "(" + strings.Join(parts, " ") + ")"
	}
	return strconv.FormatFloat(o.Num, 'g', -1, 64)
}

// --- Operator tables -------------------------------------------------------

type dictOp struct {
	name   string
	shape  Shape
	tuple  []Shape // for ShapeTuple
	def    any     // nil, float64, bool or []float64
	absent bool
}

type dictOps map[Op]dictOp

func num(name string, def float64) dictOp { return dictOp{name: name, shape: ShapeNumber, def: def} }
func optNum(name string) dictOp { return dictOp{name: name, shape: ShapeNumber, absent: true} }
func sid(name string) dictOp { return dictOp{name: name, shape: ShapeSID, absent: true} }
func boolean(name string, def bool) dictOp { return dictOp{name: name, shape: ShapeBoolean, def: def} }
func array(name string, def []float64) dictOp { return dictOp{name: name, shape: ShapeArray, def: def, absent: def == nil} }
func delta(name string) dictOp { return dictOp{name: name, shape: ShapeDelta, absent: true} }
func tuple(name string, shapes ...Shape) dictOp {
	return dictOp{name: name, shape: ShapeTuple, tuple: shapes, absent: true}
}

// Top DICT operators, CFF specification table 9.
var topDictOps = dictOps{
	0:       sid("version"),
	1:       sid("Notice"),
	Esc(0):  sid("Copyright"),
	2:       sid("FullName"),
	3:       sid("FamilyName"),
	4:       sid("Weight"),
	Esc(1):  boolean("isFixedPitch", false),
	Esc(2):  num("ItalicAngle", 0),
	Esc(3):  num("UnderlinePosition", -100),
	Esc(4):  num("UnderlineThickness", 50),
	Esc(5):  num("PaintType", 0),
	Esc(6):  num("CharstringType", 2),
	Esc(7):  array("FontMatrix", []float64{0.001, 0, 0, 0.001, 0, 0}),
	13:      optNum("UniqueID"),
	5:       array("FontBBox", []float64{0, 0, 0, 0}),
	Esc(8):  num("StrokeWidth", 0),
	14:      array("XUID", nil),
	15:      num("charset", 0),
	16:      optNum("Encoding"),
	17:      optNum("CharStrings"),
	18:      tuple("Private", ShapeNumber, ShapeNumber),
	Esc(20): optNum("SyntheticBase"),
	Esc(21): sid("PostScript"),
	Esc(22): sid("BaseFontName"),
	Esc(23): delta("BaseFontBlend"),
	Esc(30): tuple("ROS", ShapeSID, ShapeSID, ShapeNumber),
	Esc(31): num("CIDFontVersion", 0),
	Esc(32): num("CIDFontRevision", 0),
	Esc(33): num("CIDFontType", 0),
	Esc(34): num("CIDCount", 8720),
	Esc(35): optNum("UIDBase"),
	Esc(36): optNum("FDArray"),
	Esc(37): optNum("FDSelect"),
	Esc(38): sid("FontName"),
}

// Private DICT operators, CFF specification table 23.
var privateDictOps = dictOps{
	6:       delta("BlueValues"),
	7:       delta("OtherBlues"),
	8:       delta("FamilyBlues"),
	9:       delta("FamilyOtherBlues"),
	Esc(9):  num("BlueScale", 0.039625),
	Esc(10): num("BlueShift", 7),
	Esc(11): num("BlueFuzz", 1),
	10:      optNum("StdHW"),
	11:      optNum("StdVW"),
	Esc(12): delta("StemSnapH"),
	Esc(13): delta("StemSnapV"),
	Esc(14): boolean("ForceBold", false),
	Esc(17): num("LanguageGroup", 0),
	Esc(18): num("ExpansionFactor", 0.06),
	Esc(19): num("initialRandomSeed", 0),
	19:      optNum("Subrs"),
	20:      num("defaultWidthX", 0),
	21:      num("nominalWidthX", 0),
}

// --- Dict ------------------------------------------------------------------

// Dict is a decoded Top or Private DICT. Operators not present in the font
// data resolve to their default values; operators without a default are
// absent unless present in the data.
type Dict struct {
	name    string
	entries map[string]Operand
}

func newDict(name string, ops dictOps) *Dict {
	d := &Dict{name: name, entries: make(map[string]Operand, len(ops))}
	for _, op := range ops {
		if op.absent {
			continue
		}
		switch v := op.def.(type) {
		case float64:
			d.entries[op.name] = Operand{Shape: op.shape, Num: v}
		case bool:
			d.entries[op.name] = Operand{Shape: ShapeBoolean, Num: b2f(v)}
		case []float64:
			d.entries[op.name] = Operand{Shape: op.shape, Array: v}
		}
	}
	return d
}

// Get returns the operand for a DICT key, e.g. "FontBBox".
func (d *Dict) Get(key string) (Operand, bool) {
	if d == nil {
		return Operand{}, false
	}
	o, ok := d.entries[key]
	return o, ok
}

// Number returns a numeric DICT value, or false if absent.
func (d *Dict) Number(key string) (float64, bool) {
	o, ok := d.Get(key)
	if !ok {
		return 0, false
	}
	if o.Shape == ShapeTuple || o.Shape == ShapeArray || o.Shape == ShapeDelta {
		return 0, false
	}
	if o.Shape == ShapeSID {
		return float64(o.SID), true
	}
	return o.Num, true
}

// Keys returns the keys present in d in lexical order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.entries))
	for k := range d.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of keys present in d.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

func (d *Dict) String() string {
	var sb strings.Builder
	sb.WriteString(d.name)
	sb.WriteByte('{')
	for i, k := range d.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s=%s", k, d.entries[k])
	}
	sb.WriteByte('}')
	return sb.String()
}

// parseDict runs the DICT stack machine over s. Operands are collected on a
// stack until an operator is seen; the operator then takes its operands
// according to its declared shape and the stack is cleared.
func parseDict(name string, s fontbin.Span, ops dictOps, strs *Strings) (*Dict, error) {
	d := newDict(name, ops)
	stack := make([]float64, 0, 48)
	for !s.Exhausted() {
		at := s.Offset()
		t, err := ReadToken(&s, false)
		if err != nil {
			return nil, fontbin.Wrap(err, "CFF", name)
		}
		if !t.IsOp {
			stack = append(stack, t.Num)
			continue
		}
		op, ok := ops[t.Op]
		if !ok {
			return nil, fontbin.Structural("CFF", name, "unknown operator %s", t.Op).At(at)
		}
		operand, err := takeOperands(op, stack, strs)
		if err != nil {
			e := fontbin.Structural("CFF", name, "operator %s: %v", op.name, err).At(at)
			return nil, e
		}
		d.entries[op.name] = operand
		stack = stack[:0]
	}
	if len(stack) > 0 {
		tracer().Infof("CFF %s: %d dangling operands at end of DICT", name, len(stack))
	}
	return d, nil
}

func takeOperands(op dictOp, stack []float64, strs *Strings) (Operand, error) {
	switch op.shape {
	case ShapeArray:
		return Operand{Shape: ShapeArray, Array: append([]float64(nil), stack...)}, nil
	case ShapeDelta:
		values := make([]float64, len(stack))
		var cur float64
		for i, v := range stack {
			cur += v
			values[i] = cur
		}
		return Operand{Shape: ShapeDelta, Array: values}, nil
	case ShapeTuple:
		if len(stack) < len(op.tuple) {
			return Operand{}, fmt.Errorf("expected %d operands, have %d", len(op.tuple), len(stack))
		}
		o := Operand{Shape: ShapeTuple, Tuple: make([]Operand, len(op.tuple))}
		for i, sh := range op.tuple {
			scalar, err := scalarOperand(sh, stack[i], strs)
			if err != nil {
				return Operand{}, err
			}
			o.Tuple[i] = scalar
		}
		return o, nil
	}
	if len(stack) == 0 {
		return Operand{}, fmt.Errorf("missing %s operand", op.shape)
	}
	return scalarOperand(op.shape, stack[0], strs)
}

func scalarOperand(sh Shape, v float64, strs *Strings) (Operand, error) {
	switch sh {
	case ShapeSID:
		if v != math.Trunc(v) || v < 0 {
			return Operand{}, fmt.Errorf("SID operand must be a non-negative integer, is %g", v)
		}
		return Operand{Shape: ShapeSID, SID: int(v), Str: strs.Lookup(int(v))}, nil
	case ShapeBoolean:
		if v != 0 && v != 1 {
			return Operand{}, fmt.Errorf("boolean operand must be 0 or 1, is %g", v)
		}
		return Operand{Shape: ShapeBoolean, Num: v}, nil
	}
	return Operand{Shape: ShapeNumber, Num: v}, nil
}

func b2f(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
