package cff

import (
	"fmt"
	"math"

	"github.com/timheilig/pfloppy/fontbin"
)

// BBox is a glyph bounding box in font units.
type BBox struct {
	MinX, MinY, MaxX, MaxY float64
}

func (b *BBox) extend(x, y float64) {
	b.MinX = math.Min(b.MinX, x)
	b.MinY = math.Min(b.MinY, y)
	b.MaxX = math.Max(b.MaxX, x)
	b.MaxY = math.Max(b.MaxY, y)
}

func (b BBox) String() string {
	return fmt.Sprintf("[%g %g %g %g]", b.MinX, b.MinY, b.MaxX, b.MaxY)
}

// Metrics are the results of rendering a Type 1 program.
type Metrics struct {
	Width float64 // advance width
	LSB   float64 // left side bearing, x of hsbw or sbw
	BBox  BBox    // bounds of all points on the path, including the origin
}

// Render runs a Type 1 program and collects its metrics. Only on-path points
// widen the bounding box: a curve moves the current point by the sum of its
// three deltas, and its control points are not boxed. The box is therefore
// not a tight bound of the outline. A program without hsbw or sbw gets
// defaultWidth; an explicit width of 0 is kept.
//
// Flex sequences (othersubrs 0, 1 and 2) are resolved into curves. Any other
// othersubr is an error, as are operators a Type 1 program may not contain.
func Render(p Program, defaultWidth float64) (Metrics, error) {
	r := renderer{}
	for _, t := range p {
		if !t.IsOp {
			r.stack = append(r.stack, t.Num)
			continue
		}
		if err := r.execute(t.Op); err != nil {
			return Metrics{}, err
		}
	}
	m := Metrics{Width: r.width, LSB: r.lsb, BBox: r.bbox}
	if !r.hasWidth {
		m.Width = defaultWidth
	}
	return m, nil
}

type renderer struct {
	stack    []float64
	results  []float64 // values returned by the last othersubr, retrieved by pop
	x, y     float64
	width    float64
	hasWidth bool // set by hsbw or sbw
	lsb      float64
	bbox     BBox
	flex     bool
	points   [][2]float64 // flex reference and control points
}

func (r *renderer) execute(op Op) error {
	s := r.stack
	arity := type1Arity(op)
	if arity < 0 {
		return fontbin.Structural("CFF", "Type 1", "unsupported operator %s", op)
	}
	if len(s) < arity {
		return fontbin.Structural("CFF", "Type 1", "%s needs %d operands, has %d", op, arity, len(s))
	}
	reset := true
	switch op {
	case OpHsbw:
		r.x, r.y = s[0], 0
		r.lsb, r.width, r.hasWidth = s[0], s[1], true
	case OpSbw:
		r.x, r.y = s[0], s[1]
		r.lsb, r.width, r.hasWidth = s[0], s[2], true
	case OpRMoveTo:
		r.moveTo(s[0], s[1])
	case OpHMoveTo:
		r.moveTo(s[0], 0)
	case OpVMoveTo:
		r.moveTo(0, s[0])
	case OpRLineTo:
		r.lineTo(s[0], s[1])
	case OpHLineTo:
		r.lineTo(s[0], 0)
	case OpVLineTo:
		r.lineTo(0, s[0])
	case OpRRCurveTo:
		r.curveTo(s[0], s[1], s[2], s[3], s[4], s[5])
	case OpVHCurveTo:
		r.curveTo(0, s[0], s[1], s[2], s[3], 0)
	case OpHVCurveTo:
		r.curveTo(s[0], 0, s[1], s[2], 0, s[3])
	case OpSetCurrentPoint:
		r.x, r.y = s[0], s[1]
		r.bbox.extend(r.x, r.y)
	case OpCallOtherSubr:
		if err := r.otherSubr(s[len(s)-1]); err != nil {
			return err
		}
	case OpPop:
		reset = false
		if len(r.results) > 0 {
			r.stack = append(r.stack, r.results[0])
			r.results = r.results[1:]
		}
	case OpDiv:
		reset = false
		n := len(s)
		if s[n-1] == 0 {
			return fontbin.Structural("CFF", "Type 1", "division by zero")
		}
		r.stack = append(s[:n-2], s[n-2]/s[n-1])
	}
	if reset {
		r.stack = r.stack[:0]
	}
	return nil
}

// type1Arity returns the minimum operand count of a Type 1 operator, or -1
// for operators which are not rendered.
func type1Arity(op Op) int {
	switch op {
	case OpHStem, OpVStem, OpHStem3, OpVStem3, OpDotSection, OpSeac, OpEndChar, OpClosePath, OpPop:
		return 0
	case OpHMoveTo, OpVMoveTo, OpHLineTo, OpVLineTo, OpCallOtherSubr:
		return 1
	case OpHsbw, OpRMoveTo, OpRLineTo, OpSetCurrentPoint, OpDiv:
		return 2
	case OpSbw:
		return 3
	case OpVHCurveTo, OpHVCurveTo:
		return 4
	case OpRRCurveTo:
		return 6
	}
	return -1
}

// While flex is active, moves are not drawn but collected as flex points.
func (r *renderer) moveTo(dx, dy float64) {
	if r.flex {
		r.points = append(r.points, [2]float64{dx, dy})
		return
	}
	r.lineTo(dx, dy)
}

func (r *renderer) lineTo(dx, dy float64) {
	r.x += dx
	r.y += dy
	r.bbox.extend(r.x, r.y)
}

func (r *renderer) curveTo(dx1, dy1, dx2, dy2, dx3, dy3 float64) {
	r.lineTo(dx1+dx2+dx3, dy1+dy2+dy3)
}

// othersubr 1 starts a flex sequence, othersubr 0 ends it. The first of the
// seven collected points is the flex reference point; it is folded into the
// first control point.
func (r *renderer) otherSubr(n float64) error {
	switch n {
	case 1:
		r.flex = true
		r.points = r.points[:0]
		return nil
	case 2: // marks a flex point, collected by the preceding move
		return nil
	case 0:
		if !r.flex {
			return fontbin.Structural("CFF", "Type 1", "end of flex without start")
		}
		r.flex = false
		if len(r.points) < 7 {
			return fontbin.Structural("CFF", "Type 1", "flex needs 7 points, has %d", len(r.points))
		}
		p := r.points
		p[1][0] += p[0][0]
		p[1][1] += p[0][1]
		r.curveTo(p[1][0], p[1][1], p[2][0], p[2][1], p[3][0], p[3][1])
		r.curveTo(p[4][0], p[4][1], p[5][0], p[5][1], p[6][0], p[6][1])
		r.results = append(r.results[:0], r.x, r.y)
		return nil
	}
	return fontbin.Structural("CFF", "Type 1", "unsupported othersubr %g", n)
}
