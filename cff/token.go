package cff

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/timheilig/pfloppy/fontbin"
)

// Op is a DICT or charstring operator. One-byte operators are represented by
// their byte value, two-byte operators (escape 12 followed by b1) by 0x0c00|b1.
type Op uint16

const escape Op = 0x0c00

// Esc returns the two-byte operator 12 b.
func Esc(b byte) Op {
	return escape | Op(b)
}

// IsEscaped is true for two-byte operators.
func (op Op) IsEscaped() bool {
	return op&0xff00 == escape
}

// Charstring operators. Type 1 and Type 2 share most of the opcodes; the
// Type 1 only ones are closepath, hsbw, sbw, seac (Type 2 uses endchar for
// it), the stem3 hints, dotsection and the othersubr mechanism.
const (
	OpHStem           Op = 1
	OpVStem           Op = 3
	OpVMoveTo         Op = 4
	OpRLineTo         Op = 5
	OpHLineTo         Op = 6
	OpVLineTo         Op = 7
	OpRRCurveTo       Op = 8
	OpClosePath       Op = 9
	OpCallSubr        Op = 10
	OpReturn          Op = 11
	OpHsbw            Op = 13
	OpEndChar         Op = 14
	OpHStemHM         Op = 18
	OpHintMask        Op = 19
	OpCntrMask        Op = 20
	OpRMoveTo         Op = 21
	OpHMoveTo         Op = 22
	OpVStemHM         Op = 23
	OpRCurveLine      Op = 24
	OpRLineCurve      Op = 25
	OpVVCurveTo       Op = 26
	OpHHCurveTo       Op = 27
	OpShortInt        Op = 28
	OpCallGSubr       Op = 29
	OpVHCurveTo       Op = 30
	OpHVCurveTo       Op = 31
	OpDotSection      Op = escape | 0
	OpVStem3          Op = escape | 1
	OpHStem3          Op = escape | 2
	OpAnd             Op = escape | 3
	OpOr              Op = escape | 4
	OpNot             Op = escape | 5
	OpSeac            Op = escape | 6
	OpSbw             Op = escape | 7
	OpAbs             Op = escape | 9
	OpAdd             Op = escape | 10
	OpSub             Op = escape | 11
	OpDiv             Op = escape | 12
	OpNeg             Op = escape | 14
	OpEq              Op = escape | 15
	OpCallOtherSubr   Op = escape | 16
	OpPop             Op = escape | 17
	OpDrop            Op = escape | 18
	OpPut             Op = escape | 20
	OpGet             Op = escape | 21
	OpIfElse          Op = escape | 22
	OpRandom          Op = escape | 23
	OpMul             Op = escape | 24
	OpSqrt            Op = escape | 26
	OpDup             Op = escape | 27
	OpExch            Op = escape | 28
	OpIndex           Op = escape | 29
	OpRoll            Op = escape | 30
	OpSetCurrentPoint Op = escape | 33
	OpHFlex           Op = escape | 34
	OpFlex            Op = escape | 35
	OpHFlex1          Op = escape | 36
	OpFlex1           Op = escape | 37
)

var opNames = map[Op]string{
	OpHStem: "hstem", OpVStem: "vstem", OpVMoveTo: "vmoveto", OpRLineTo: "rlineto",
	OpHLineTo: "hlineto", OpVLineTo: "vlineto", OpRRCurveTo: "rrcurveto",
	OpClosePath: "closepath", OpCallSubr: "callsubr", OpReturn: "return",
	OpHsbw: "hsbw", OpEndChar: "endchar", OpHStemHM: "hstemhm", OpHintMask: "hintmask",
	OpCntrMask: "cntrmask", OpRMoveTo: "rmoveto", OpHMoveTo: "hmoveto",
	OpVStemHM: "vstemhm", OpRCurveLine: "rcurveline", OpRLineCurve: "rlinecurve",
	OpVVCurveTo: "vvcurveto", OpHHCurveTo: "hhcurveto", OpShortInt: "shortint",
	OpCallGSubr: "callgsubr", OpVHCurveTo: "vhcurveto", OpHVCurveTo: "hvcurveto",
	OpDotSection: "dotsection", OpVStem3: "vstem3", OpHStem3: "hstem3",
	OpAnd: "and", OpOr: "or", OpNot: "not", OpSeac: "seac", OpSbw: "sbw",
	OpAbs: "abs", OpAdd: "add", OpSub: "sub", OpDiv: "div", OpNeg: "neg", OpEq: "eq",
	OpCallOtherSubr: "callothersubr", OpPop: "pop", OpDrop: "drop", OpPut: "put",
	OpGet: "get", OpIfElse: "ifelse", OpRandom: "random", OpMul: "mul",
	OpSqrt: "sqrt", OpDup: "dup", OpExch: "exch", OpIndex: "index", OpRoll: "roll",
	OpSetCurrentPoint: "setcurrentpoint", OpHFlex: "hflex", OpFlex: "flex",
	OpHFlex1: "hflex1", OpFlex1: "flex1",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	if op.IsEscaped() {
		return fmt.Sprintf("op(12 %d)", op&0xff)
	}
	return fmt.Sprintf("op(%d)", op)
}

// --- Tokens ----------------------------------------------------------------

// Token is either a numeric operand or an operator.
type Token struct {
	Num  float64 // operand value, if !IsOp
	Op   Op      // operator, if IsOp
	IsOp bool
}

// Number creates an operand token.
func Number(v float64) Token {
	return Token{Num: v}
}

// Operator creates an operator token.
func Operator(op Op) Token {
	return Token{Op: op, IsOp: true}
}

func (t Token) String() string {
	if t.IsOp {
		return t.Op.String()
	}
	return strconv.FormatFloat(t.Num, 'g', -1, 64)
}

// Program is a flat sequence of charstring tokens, in postfix order.
type Program []Token

func (p Program) String() string {
	var sb strings.Builder
	for i, t := range p {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}

// ReadToken decodes one operand or operator from s.
//
// DICT data and charstrings share the operand encoding, but differ in the
// range of one-byte operators: in charstrings, bytes 28…31 are operators
// (with 28, shortint, announcing a 16-bit operand which the caller has to
// read), and byte 255 introduces a 16.16 fixed-point number.
func ReadToken(s *fontbin.Span, charstring bool) (Token, error) {
	at := s.Offset()
	b0, err := s.U8()
	if err != nil {
		return Token{}, err
	}
	switch {
	case b0 == 12:
		b1, err := s.U8()
		if err != nil {
			return Token{}, err
		}
		return Operator(Esc(b1)), nil
	case b0 < 28 || (b0 < 32 && charstring):
		return Operator(Op(b0)), nil
	case b0 == 28:
		v, err := s.I16()
		return Number(float64(v)), err
	case b0 == 29:
		v, err := s.I32()
		return Number(float64(v)), err
	case b0 == 30:
		v, err := readReal(s)
		return Number(v), err
	case b0 == 31:
		return Token{}, fontbin.Structural("CFF", "operand", "invalid operand byte %d", b0).At(at)
	case b0 <= 246:
		return Number(float64(int(b0) - 139)), nil
	case b0 <= 250:
		b1, err := s.U8()
		return Number(float64((int(b0)-247)*256 + int(b1) + 108)), err
	case b0 <= 254:
		b1, err := s.U8()
		return Number(float64(-(int(b0)-251)*256 - int(b1) - 108)), err
	case charstring: // b0 == 255
		v, err := s.I32()
		return Number(float64(v) / 65536), err
	}
	return Token{}, fontbin.Structural("CFF", "operand", "invalid operand byte %d", b0).At(at)
}

// Real numbers are packed BCD, two nibbles per byte, terminated by nibble 0xf.
func readReal(s *fontbin.Span) (float64, error) {
	at := s.Offset()
	var sb strings.Builder
	for {
		b, err := s.U8()
		if err != nil {
			return 0, err
		}
		for _, nibble := range [2]byte{b >> 4, b & 0xf} {
			switch {
			case nibble <= 9:
				sb.WriteByte('0' + nibble)
			case nibble == 0xa:
				sb.WriteByte('.')
			case nibble == 0xb:
				sb.WriteByte('E')
			case nibble == 0xc:
				sb.WriteString("E-")
			case nibble == 0xe:
				sb.WriteByte('-')
			case nibble == 0xf:
				return parseReal(sb.String(), at)
			default:
				return 0, fontbin.Structural("CFF", "real", "reserved nibble 0xd").At(at)
			}
		}
	}
}

func parseReal(str string, at int) (float64, error) {
	if str == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(str, 64)
	if err != nil {
		e := fontbin.Structural("CFF", "real", "malformed real number %q", str).At(at)
		e.Err = err
		return 0, e
	}
	return v, nil
}
