package cff

import (
	"math"

	"github.com/timheilig/pfloppy/fontbin"
)

// Lower rewrites a Type 2 program, as produced by Interpret, into an
// equivalent Type 1 program.
//
// The advance width is taken from the first stack-clearing operator, which may
// carry one extra leading operand (the width relative to nominalWidth). If it
// does not, the width is defaultWidth. The width is emitted as a leading
// "0 width hsbw". Hints are dropped, sub-paths are closed explicitly, and the
// compact Type 2 line, curve and flex operators are expanded into rlineto,
// hlineto, vlineto and rrcurveto.
func Lower(p Program, defaultWidth, nominalWidth float64) (Program, error) {
	l := &lowering{
		out:          make(Program, 0, len(p)+8),
		defaultWidth: defaultWidth,
		nominalWidth: nominalWidth,
	}
	stack := make([]float64, 0, 48)
	for _, t := range p {
		if !t.IsOp {
			stack = append(stack, t.Num)
			continue
		}
		if err := l.convert(t.Op, stack); err != nil {
			return nil, err
		}
		stack = stack[:0]
	}
	return l.out, nil
}

type lowering struct {
	out          Program
	paths        int // number of sub-paths opened
	defaultWidth float64
	nominalWidth float64
}

func (l *lowering) convert(op Op, stack []float64) error {
	switch op {
	case OpHStem, OpVStem, OpHStemHM, OpVStemHM:
		l.clearStack(stack, len(stack)%2 != 0)
	case OpHintMask, OpCntrMask:
		l.clearStack(stack, len(stack)%2 != 0)
	case OpRMoveTo:
		stack = l.clearStack(stack, len(stack) > 2)
		if len(stack) < 2 {
			return errOperands(op, 2, len(stack))
		}
		l.markPath()
		l.emit(OpRMoveTo, stack[:2]...)
	case OpHMoveTo, OpVMoveTo:
		stack = l.clearStack(stack, len(stack) > 1)
		if len(stack) < 1 {
			return errOperands(op, 1, len(stack))
		}
		l.markPath()
		l.emit(op, stack[0])
	case OpEndChar:
		stack = l.clearStack(stack, len(stack)%2 != 0)
		l.closePath()
		if len(stack) == 4 {
			l.emit(OpSeac, 0, stack[0], stack[1], stack[2], stack[3])
		} else {
			l.emit(OpEndChar)
		}
	case OpRLineTo:
		return l.emitGroups(OpRLineTo, stack, 2)
	case OpRRCurveTo:
		return l.emitGroups(OpRRCurveTo, stack, 6)
	case OpHLineTo, OpVLineTo:
		if len(stack) == 0 {
			return errOperands(op, 1, 0)
		}
		horizontal := op == OpHLineTo
		for _, d := range stack {
			if horizontal {
				l.emit(OpHLineTo, d)
			} else {
				l.emit(OpVLineTo, d)
			}
			horizontal = !horizontal
		}
	case OpHVCurveTo, OpVHCurveTo:
		return l.alternatingCurves(op, stack)
	case OpHHCurveTo, OpVVCurveTo:
		return l.parallelCurves(op, stack)
	case OpRCurveLine:
		if len(stack) < 8 {
			return errOperands(op, 8, len(stack))
		}
		n := len(stack) - 2
		if err := l.emitGroups(OpRRCurveTo, stack[:n], 6); err != nil {
			return err
		}
		l.emit(OpRLineTo, stack[n:]...)
	case OpRLineCurve:
		if len(stack) < 8 {
			return errOperands(op, 8, len(stack))
		}
		n := len(stack) - 6
		if err := l.emitGroups(OpRLineTo, stack[:n], 2); err != nil {
			return err
		}
		l.emit(OpRRCurveTo, stack[n:]...)
	case OpHFlex:
		if len(stack) < 7 {
			return errOperands(op, 7, len(stack))
		}
		s := stack
		l.emit(OpRRCurveTo, s[0], 0, s[1], s[2], s[3], 0)
		l.emit(OpRRCurveTo, s[4], 0, s[5], -s[2], s[6], 0)
	case OpFlex:
		if len(stack) < 12 {
			return errOperands(op, 12, len(stack))
		}
		l.emit(OpRRCurveTo, stack[0:6]...)
		l.emit(OpRRCurveTo, stack[6:12]...)
	case OpHFlex1:
		if len(stack) < 9 {
			return errOperands(op, 9, len(stack))
		}
		s := stack
		l.emit(OpRRCurveTo, s[0], s[1], s[2], s[3], s[4], 0)
		l.emit(OpRRCurveTo, s[5], 0, s[6], s[7], s[8], -(s[1] + s[3] + s[7]))
	case OpFlex1:
		if len(stack) < 11 {
			return errOperands(op, 11, len(stack))
		}
		s := stack
		var dx, dy float64
		for i := 0; i < 10; i += 2 {
			dx += s[i]
			dy += s[i+1]
		}
		l.emit(OpRRCurveTo, s[0:6]...)
		if math.Abs(dx) > math.Abs(dy) {
			l.emit(OpRRCurveTo, s[6], s[7], s[8], s[9], s[10], -dy)
		} else {
			l.emit(OpRRCurveTo, s[6], s[7], s[8], s[9], -dx, s[10])
		}
	default:
		l.emit(op, stack...)
	}
	return nil
}

// clearStack handles the optional width operand of the first stack-clearing
// operator. Once anything has been emitted, the width is settled.
func (l *lowering) clearStack(stack []float64, widthPresent bool) []float64 {
	if len(l.out) > 0 {
		return stack
	}
	width := l.defaultWidth
	if widthPresent {
		width = stack[0] + l.nominalWidth
		stack = stack[1:]
	}
	l.emit(OpHsbw, 0, width)
	return stack
}

// markPath starts a new sub-path, closing the previous one.
func (l *lowering) markPath() {
	if l.paths > 0 {
		l.closePath()
	}
	l.paths++
}

func (l *lowering) closePath() {
	if l.paths == 0 || len(l.out) == 0 {
		return
	}
	if last := l.out[len(l.out)-1]; last.IsOp && last.Op == OpClosePath {
		return
	}
	l.emit(OpClosePath)
}

func (l *lowering) emit(op Op, operands ...float64) {
	for _, v := range operands {
		l.out = append(l.out, Number(v))
	}
	l.out = append(l.out, Operator(op))
}

// emitGroups emits op once per n operands.
func (l *lowering) emitGroups(op Op, stack []float64, n int) error {
	if len(stack) < n {
		return errOperands(op, n, len(stack))
	}
	for ; len(stack) >= n; stack = stack[n:] {
		l.emit(op, stack[:n]...)
	}
	if len(stack) > 0 {
		tracer().Debugf("%s: %d surplus operands dropped", op, len(stack))
	}
	return nil
}

// hvcurveto and vhcurveto alternate between curves starting horizontally and
// curves starting vertically. The last curve may carry a fifth operand for the
// otherwise implied zero end delta.
func (l *lowering) alternatingCurves(op Op, stack []float64) error {
	if len(stack) < 4 {
		return errOperands(op, 4, len(stack))
	}
	horizontal := op == OpHVCurveTo
	for len(stack) >= 4 {
		s := stack
		var last float64
		n := 4
		if len(stack) == 5 {
			last, n = s[4], 5
		}
		if horizontal {
			l.emit(OpRRCurveTo, s[0], 0, s[1], s[2], last, s[3])
		} else {
			l.emit(OpRRCurveTo, 0, s[0], s[1], s[2], s[3], last)
		}
		stack = stack[n:]
		horizontal = !horizontal
	}
	return nil
}

// hhcurveto and vvcurveto draw curves in groups of four operands; an odd
// operand count means the first curve starts with a cross-axis delta.
func (l *lowering) parallelCurves(op Op, stack []float64) error {
	var cross float64
	if len(stack)%2 != 0 {
		cross, stack = stack[0], stack[1:]
	}
	if len(stack) < 4 {
		return errOperands(op, 4, len(stack))
	}
	for ; len(stack) >= 4; stack = stack[4:] {
		s := stack
		if op == OpHHCurveTo {
			l.emit(OpRRCurveTo, s[0], cross, s[1], s[2], s[3], 0)
		} else {
			l.emit(OpRRCurveTo, cross, s[0], s[1], s[2], 0, s[3])
		}
		cross = 0
	}
	return nil
}

func errOperands(op Op, want, have int) error {
	return fontbin.Structural("CFF", "charstring", "%s needs %d operands, has %d", op, want, have)
}
