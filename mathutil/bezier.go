package mathutil

import "math"

// BinomialCoefficient returns n choose k, or 0 when k is out of range.
func BinomialCoefficient(n, k int) float64 {
	if k < 0 || k > n {
		return 0
	}
	if k == 0 || k == n {
		return 1
	}
	k = min(k, n-k)
	c := 1.0
	for i := 0; i < k; i++ {
		c = c * float64(n-i) / float64(i+1)
	}
	return c
}

func bernstein(points []Vector2, degree int, t float64) Vector2 {
	var r Vector2
	c := 1 - t
	for i := 0; i <= degree && i < len(points); i++ {
		w := BinomialCoefficient(degree, i) * math.Pow(t, float64(i)) * math.Pow(c, float64(degree-i))
		r = r.Add(points[i].Scale(w))
	}
	return r
}

// CalculatePoint evaluates the Bezier curve with the given control points at t.
// A non-zero parallel displaces the point along the curve's right-hand normal,
// tracing an approximate offset curve.
func CalculatePoint(points []Vector2, t, parallel float64) Vector2 {
	if len(points) == 0 {
		return Zero
	}
	r := bernstein(points, len(points)-1, t)
	if parallel == 0 || len(points) < 2 {
		return r
	}

	var perpendicular Vector2
	if t != 0 {
		perpendicular = r.Sub(derivativePoint(points, t))
	} else {
		perpendicular = points[1].Sub(points[0])
	}
	if perpendicular.Length() < DoubleEpsilon {
		return r
	}
	return r.Add(perpendicular.Normalize().PerpendicularRight().Scale(parallel))
}

// derivativePoint is the lower-degree curve over the same points; the direction from
// it to the curve point is tangent to the curve.
func derivativePoint(points []Vector2, t float64) Vector2 {
	return bernstein(points, len(points)-2, t)
}

// degenerate reports whether every point lies within DoubleEpsilon of the first.
func degenerate(points ...Vector2) bool {
	for _, p := range points[1:] {
		if Distance(p, points[0]) >= DoubleEpsilon {
			return false
		}
	}
	return true
}

// CalculateLength approximates the arc length by sampling the curve every precision
// units of t. Smaller precision is more accurate and slower.
func CalculateLength(points []Vector2, precision, parallel float64) float64 {
	if len(points) < 2 || precision <= 0 || degenerate(points...) {
		return 0
	}
	length := 0.0
	old := CalculatePoint(points, 0, parallel)
	for i := precision; i < 1+precision; i += precision {
		t := math.Min(i, 1)
		p := CalculatePoint(points, t, parallel)
		length += Distance(p, old)
		old = p
	}
	return length
}

// QuadricPoint evaluates the quadratic Bezier start, control, end at t.
func QuadricPoint(start, control, end Vector2, t, parallel float64) Vector2 {
	c := 1 - t
	r := start.Scale(c * c).Add(control.Scale(2 * t * c)).Add(end.Scale(t * t))
	if parallel == 0 {
		return r
	}

	var perpendicular Vector2
	if t != 0 {
		perpendicular = r.Sub(start.Scale(c).Add(control.Scale(t)))
	} else {
		perpendicular = control.Sub(start)
	}
	if perpendicular.Length() < DoubleEpsilon {
		return r
	}
	return r.Add(perpendicular.Normalize().PerpendicularRight().Scale(parallel))
}

// QuadricLength approximates the arc length of a quadratic Bezier.
func QuadricLength(start, control, end Vector2, precision, parallel float64) float64 {
	if precision <= 0 || degenerate(start, control, end) {
		return 0
	}
	length := 0.0
	old := QuadricPoint(start, control, end, 0, parallel)
	for i := precision; i < 1+precision; i += precision {
		p := QuadricPoint(start, control, end, math.Min(i, 1), parallel)
		length += Distance(p, old)
		old = p
	}
	return length
}
