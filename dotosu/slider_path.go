package dotosu

import (
	"math"

	"maptools/mathutil"
)

type Vector2 = mathutil.Vector2

// Path approximation constants, matching the game's path approximator.
const (
	bezTolSq   = 0.25 * 0.25
	arcTol     = 0.10
	catmullDet = 50
)

type PathType byte

const (
	PathBezier  PathType = 'B'
	PathLinear  PathType = 'L'
	PathCatmull PathType = 'C'
	PathPerfect PathType = 'P'
)

// SliderPath is a polyline approximation of a slider curve.
type SliderPath struct {
	Points []Vector2
	// Cumulative distance at each point.
	lengths []float64
}

// NewSliderPath approximates the curve through controlPoints, which start at the
// slider head.
func NewSliderPath(typ PathType, controlPoints []Vector2) *SliderPath {
	var poly []Vector2
	add := func(pts []Vector2) {
		for _, v := range pts {
			if n := len(poly); n == 0 || poly[n-1] != v {
				poly = append(poly, v)
			}
		}
	}

	switch typ {
	case PathLinear:
		add(controlPoints)
	case PathCatmull:
		add(approximateCatmull(controlPoints))
	case PathPerfect:
		if len(controlPoints) == 3 && !collinear(controlPoints[0], controlPoints[1], controlPoints[2]) {
			add(approximateCircularArc(controlPoints[0], controlPoints[1], controlPoints[2]))
		} else {
			add(approximateBezierSegments(controlPoints))
		}
	default:
		add(approximateBezierSegments(controlPoints))
	}

	p := &SliderPath{Points: poly, lengths: make([]float64, len(poly))}
	for i := 1; i < len(poly); i++ {
		p.lengths[i] = p.lengths[i-1] + mathutil.Distance(poly[i-1], poly[i])
	}
	return p
}

// Length is the length of the approximated curve.
func (p *SliderPath) Length() float64 {
	if len(p.lengths) == 0 {
		return 0
	}
	return p.lengths[len(p.lengths)-1]
}

// PositionAt walks distance along the path. Past the end the last segment is extended.
func (p *SliderPath) PositionAt(distance float64) Vector2 {
	switch len(p.Points) {
	case 0:
		return mathutil.Zero
	case 1:
		return p.Points[0]
	}
	for i := 1; i < len(p.Points); i++ {
		if distance <= p.lengths[i] || i == len(p.Points)-1 {
			a, b := p.Points[i-1], p.Points[i]
			seg := p.lengths[i] - p.lengths[i-1]
			if seg == 0 {
				return b
			}
			return a.Lerp(b, (distance-p.lengths[i-1])/seg)
		}
	}
	return p.Points[len(p.Points)-1]
}

// approximateBezierSegments splits the control points at repeated points (red anchors)
// and approximates each piece.
func approximateBezierSegments(cps []Vector2) []Vector2 {
	var out []Vector2
	start := 0
	for i := 1; i <= len(cps); i++ {
		if i < len(cps) && cps[i] != cps[i-1] {
			continue
		}
		if i-start >= 2 {
			out = append(out, approximateBezier(cps[start:i])...)
		} else if i-start == 1 && len(out) == 0 {
			out = append(out, cps[start])
		}
		start = i
	}
	return out
}

func approximateBezier(cp []Vector2) []Vector2 {
	if len(cp) == 0 {
		return nil
	}
	var out []Vector2
	stack := [][]Vector2{cp}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if bezierFlatEnough(cur) {
			out = append(out, cur[0])
			continue
		}
		// Push the right half first so the left half is emitted first.
		l, r := bezierSubdivide(cur)
		stack = append(stack, r, l)
	}
	return append(out, cp[len(cp)-1])
}

func bezierFlatEnough(cp []Vector2) bool {
	for i := 1; i < len(cp)-1; i++ {
		if cp[i-1].Sub(cp[i].Scale(2)).Add(cp[i+1]).LengthSquared() > bezTolSq {
			return false
		}
	}
	return true
}

// bezierSubdivide splits cp at t = 0.5 with de Casteljau's algorithm.
func bezierSubdivide(cp []Vector2) (left, right []Vector2) {
	n := len(cp)
	mid := append([]Vector2(nil), cp...)
	left = make([]Vector2, n)
	right = make([]Vector2, n)
	for r := 0; r < n; r++ {
		left[r] = mid[0]
		right[n-1-r] = mid[n-1-r]
		for i := 0; i < n-1-r; i++ {
			mid[i] = mid[i].Add(mid[i+1]).Scale(0.5)
		}
	}
	return left, right
}

func approximateCatmull(pts []Vector2) []Vector2 {
	n := len(pts)
	if n <= 1 {
		return pts
	}
	out := make([]Vector2, 0, (n-1)*catmullDet+1)
	out = append(out, pts[0])
	for i := 0; i < n-1; i++ {
		p0 := pts[max(i-1, 0)]
		p1 := pts[i]
		p2 := pts[i+1]
		p3 := pts[min(i+2, n-1)]
		for s := 1; s <= catmullDet; s++ {
			out = append(out, catmullPoint(p0, p1, p2, p3, float64(s)/catmullDet))
		}
	}
	return out
}

func catmullPoint(p0, p1, p2, p3 Vector2, t float64) Vector2 {
	t2 := t * t
	t3 := t2 * t
	return Vector2{
		X: 0.5 * ((2 * p1.X) + (-p0.X+p2.X)*t + (2*p0.X-5*p1.X+4*p2.X-p3.X)*t2 + (-p0.X+3*p1.X-3*p2.X+p3.X)*t3),
		Y: 0.5 * ((2 * p1.Y) + (-p0.Y+p2.Y)*t + (2*p0.Y-5*p1.Y+4*p2.Y-p3.Y)*t2 + (-p0.Y+3*p1.Y-3*p2.Y+p3.Y)*t3),
	}
}

func approximateCircularArc(p1, p2, p3 Vector2) []Vector2 {
	c, ok := circumcenter(p1, p2, p3)
	if !ok {
		return []Vector2{p1, p3}
	}
	r := mathutil.Distance(c, p1)
	a1 := math.Atan2(p1.Y-c.Y, p1.X-c.X)
	a3 := math.Atan2(p3.Y-c.Y, p3.X-c.X)

	dir := 1.0
	if p2.Sub(p1).Cross(p3.Sub(p2)) < 0 {
		dir = -1.0
	}
	delta := angleDiff(a1, a3, dir)

	step := 2 * math.Acos(mathutil.Clamp(1-arcTol/r, -1, 1))
	if step <= 0 || math.IsNaN(step) || step > math.Pi {
		step = math.Pi
	}
	steps := max(int(math.Ceil(math.Abs(delta)/step)), 2)
	step = delta / float64(steps)

	out := make([]Vector2, 0, steps+1)
	out = append(out, p1)
	for i := 1; i < steps; i++ {
		a := a1 + float64(i)*step
		out = append(out, Vector2{X: c.X + math.Cos(a)*r, Y: c.Y + math.Sin(a)*r})
	}
	return append(out, p3)
}

func collinear(a, b, c Vector2) bool {
	return math.Abs(b.Sub(a).Cross(c.Sub(b))) < 1e-6
}

func circumcenter(a, b, c Vector2) (Vector2, bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < 1e-8 {
		return Vector2{}, false
	}
	a2, b2, c2 := a.LengthSquared(), b.LengthSquared(), c.LengthSquared()
	return Vector2{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}, true
}

// angleDiff is the signed sweep from aStart to aEnd in direction dir.
func angleDiff(aStart, aEnd, dir float64) float64 {
	d := aEnd - aStart
	for d <= -math.Pi {
		d += 2 * math.Pi
	}
	for d > math.Pi {
		d -= 2 * math.Pi
	}
	if dir < 0 && d > 0 {
		d -= 2 * math.Pi
	} else if dir > 0 && d < 0 {
		d += 2 * math.Pi
	}
	return d
}
