package cff

import (
	"github.com/timheilig/pfloppy/fontbin"
)

// MaxSubrDepth is the maximum nesting of subroutine calls, as stated by the
// Type 2 charstring format.
const MaxSubrDepth = 10

// SubrBias returns the bias which is added to the operand of callsubr and
// callgsubr for a subroutine INDEX with count entries.
func SubrBias(count int) int {
	switch {
	case count < 1240:
		return 107
	case count < 33900:
		return 1131
	}
	return 32768
}

// Interpret runs the Type 2 charstring code as far as needed to produce a flat
// program: subroutine calls are inlined, shortint operands are decoded and
// hint mask bytes are skipped. Operators are emitted as they are; stack
// semantics are left to Lower.
//
// local and global are the local and global subroutine INDEXes. Either may be
// empty, in which case calls into it are dropped together with their operand.
func Interpret(code fontbin.Span, local, global Index) (Program, error) {
	m := &machine{out: make(Program, 0, 64)}
	if err := m.run(code, local, global, 0); err != nil {
		return nil, err
	}
	return m.out, nil
}

// machine holds the state of one charstring interpretation. Subroutine
// INDEXes are not part of the state but are handed down explicitly.
type machine struct {
	out    Program
	hstems int
	vstems int
}

func (m *machine) run(code fontbin.Span, local, global Index, depth int) error {
	for !code.Exhausted() {
		at := code.Offset()
		t, err := ReadToken(&code, true)
		if err != nil {
			return fontbin.Wrap(err, "CFF", "charstring")
		}
		if !t.IsOp {
			m.out = append(m.out, t)
			continue
		}
		switch t.Op {
		case OpShortInt:
			v, err := code.I16()
			if err != nil {
				return fontbin.Wrap(err, "CFF", "charstring")
			}
			m.out = append(m.out, Number(float64(v)))
		case OpCallSubr, OpCallGSubr:
			subrs := local
			if t.Op == OpCallGSubr {
				subrs = global
			}
			if err := m.call(t.Op, subrs, local, global, depth, at); err != nil {
				return err
			}
		case OpHStem, OpHStemHM:
			m.hstems += m.stackSize() / 2
			m.out = append(m.out, t)
		case OpVStem, OpVStemHM:
			m.vstems += m.stackSize() / 2
			m.out = append(m.out, t)
		case OpHintMask, OpCntrMask:
			// operands before a hintmask are an implied vstemhm
			m.vstems += m.stackSize() / 2
			m.out = append(m.out, t)
			if err := code.Skip(m.maskLength()); err != nil {
				return fontbin.Wrap(err, "CFF", "hintmask")
			}
		default:
			m.out = append(m.out, t)
		}
	}
	return nil
}

// call pops the subroutine number and runs the biased subroutine. Both INDEXes
// are passed on unchanged, a subroutine may call either kind of subroutine.
func (m *machine) call(op Op, subrs, local, global Index, depth, at int) error {
	n := len(m.out)
	if n == 0 || m.out[n-1].IsOp {
		return fontbin.Structural("CFF", "charstring", "%s without operand", op).At(at)
	}
	operand := int(m.out[n-1].Num)
	m.out = m.out[:n-1]
	if subrs.Len() == 0 {
		tracer().Debugf("%s into empty subroutine INDEX ignored", op)
		return nil
	}
	inx := operand + SubrBias(subrs.Len())
	if inx < 0 || inx >= subrs.Len() {
		tracer().Debugf("%s: subroutine %d out of range, ignored", op, inx)
		return nil
	}
	if depth+1 > MaxSubrDepth {
		return fontbin.Structural("CFF", "charstring", "subroutines nested deeper than %d", MaxSubrDepth).At(at)
	}
	if err := m.run(subrs.At(inx), local, global, depth+1); err != nil {
		return err
	}
	if n := len(m.out); n > 0 && m.out[n-1].IsOp && m.out[n-1].Op == OpReturn {
		m.out = m.out[:n-1]
	}
	return nil
}

// stackSize counts the operands emitted since the last operator.
func (m *machine) stackSize() int {
	count := 0
	for i := len(m.out) - 1; i >= 0 && !m.out[i].IsOp; i-- {
		count++
	}
	return count
}

// maskLength is the number of bytes of a hintmask, one bit per stem hint.
func (m *machine) maskLength() int {
	hints := m.hstems + m.vstems
	if hints == 0 {
		return 1
	}
	return (hints + 7) / 8
}
