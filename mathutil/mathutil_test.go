package mathutil

import (
	"math"
	"testing"
)

func approxEqual(a, b, tol float64) bool {
	return math.Abs(a-b) < tol
}

func TestPrecisionAtEpsilon(t *testing.T) {
	// Both pairs differ by exactly eps in floating point.
	cases := []struct{ a, b, eps float64 }{
		{0, DoubleEpsilon, DoubleEpsilon},
		{0.5, 0.5 + math.Ldexp(1, -24), math.Ldexp(1, -24)},
	}
	for _, c := range cases {
		if !AlmostEquals(c.a, c.b, c.eps) || !AlmostEquals(c.b, c.a, c.eps) {
			t.Errorf("expected %v and %v to be almost equal", c.a, c.b)
		}
		if DefinitelyBigger(c.b, c.a, c.eps) || DefinitelySmaller(c.a, c.b, c.eps) {
			t.Errorf("expected no definite order between %v and %v", c.a, c.b)
		}
		// The almost comparisons are strict at the boundary.
		if AlmostBigger(c.a, c.b, c.eps) || AlmostSmaller(c.b, c.a, c.eps) {
			t.Errorf("expected almost comparisons to be strict at the boundary for %v and %v", c.a, c.b)
		}
		if !AlmostBigger(c.a, c.a, c.eps) || !AlmostSmaller(c.a, c.a, c.eps) {
			t.Errorf("expected %v to be almost bigger and smaller than itself", c.a)
		}
		if !AlmostBigger(c.a, c.a+c.eps/2, c.eps) || !AlmostSmaller(c.a+c.eps/2, c.a, c.eps) {
			t.Errorf("expected almost comparisons to hold within eps of %v", c.a)
		}

		far := c.a + 2*c.eps
		if AlmostEquals(c.a, far, c.eps) {
			t.Errorf("expected %v and %v to differ", c.a, far)
		}
		if !DefinitelyBigger(far, c.a, c.eps) || !DefinitelySmaller(c.a, far, c.eps) {
			t.Errorf("expected definite comparisons past the epsilon for %v", c.a)
		}
	}
}

func TestVectorOps(t *testing.T) {
	v := V(3, 4)
	if v.Length() != 5 {
		t.Errorf("expected length 5, got %v", v.Length())
	}
	n := v.Normalize()
	if !approxEqual(n.X, 0.6, 1e-12) || !approxEqual(n.Y, 0.8, 1e-12) {
		t.Errorf("expected (0.6, 0.8), got %v", n)
	}
	if r := V(1, 0).PerpendicularRight(); r != V(0, -1) {
		t.Errorf("expected (0, -1), got %v", r)
	}
	if l := V(1, 0).PerpendicularLeft(); l != V(0, 1) {
		t.Errorf("expected (0, 1), got %v", l)
	}
	if d := Distance(V(0, 0), V(6, 8)); d != 10 {
		t.Errorf("expected distance 10, got %v", d)
	}
	if r := V(2.5, -2.5).Round(); r != V(3, -3) {
		t.Errorf("expected half away from zero rounding, got %v", r)
	}
}

func TestMatrix(t *testing.T) {
	p := Rotation(math.Pi / 2).Transform(V(1, 0))
	if !p.AlmostEquals(V(0, 1), 1e-12) {
		t.Errorf("expected (0, 1), got %v", p)
	}
	m := Scaling(2, 4)
	inv, ok := m.Inverse()
	if !ok {
		t.Fatalf("Inverse failed for %v", m)
	}
	if got := m.Mul(inv); !got.Row0.AlmostEquals(Identity.Row0, 1e-12) || !got.Row1.AlmostEquals(Identity.Row1, 1e-12) {
		t.Errorf("expected identity, got %v", got)
	}
	if _, ok := Scaling(0, 1).Inverse(); ok {
		t.Errorf("expected singular matrix to have no inverse")
	}
}

func TestBinomialCoefficient(t *testing.T) {
	cases := [][3]int{{4, 2, 6}, {5, 0, 1}, {5, 5, 1}, {10, 3, 120}, {3, 4, 0}, {3, -1, 0}}
	for _, c := range cases {
		if got := BinomialCoefficient(c[0], c[1]); got != float64(c[2]) {
			t.Errorf("expected C(%d,%d) = %d, got %v", c[0], c[1], c[2], got)
		}
	}
}

func TestBezierEndpoints(t *testing.T) {
	curves := [][]Vector2{
		{V(0, 0), V(100, 0)},
		{V(10, 20), V(200, -40), V(300, 300)},
		{V(-5, 5), V(50, 100), V(120, -30), V(256, 192)},
		{V(0, 0), V(0, 100), V(100, 100), V(100, 0), V(50, 50)},
	}
	for _, pts := range curves {
		if p := CalculatePoint(pts, 0, 0); !p.AlmostEquals(pts[0], DoubleEpsilon) {
			t.Errorf("expected start %v, got %v", pts[0], p)
		}
		last := pts[len(pts)-1]
		if p := CalculatePoint(pts, 1, 0); !p.AlmostEquals(last, DoubleEpsilon) {
			t.Errorf("expected end %v, got %v", last, p)
		}
	}
}

func TestBezierParallelOffset(t *testing.T) {
	pts := []Vector2{V(0, 0), V(50, 0), V(100, 0)}
	p := CalculatePoint(pts, 0, 10)
	if !p.AlmostEquals(V(0, -10), 1e-9) {
		t.Errorf("expected (0, -10), got %v", p)
	}
	p = CalculatePoint(pts, 0.5, 10)
	if !p.AlmostEquals(V(50, -10), 1e-9) {
		t.Errorf("expected (50, -10), got %v", p)
	}
}

func TestCalculateLength(t *testing.T) {
	l := CalculateLength([]Vector2{V(0, 0), V(30, 40)}, 0.01, 0)
	if !approxEqual(l, 50, 1e-6) {
		t.Errorf("expected length 50, got %v", l)
	}
	if l := CalculateLength([]Vector2{V(1, 1)}, 0.01, 0); l != 0 {
		t.Errorf("expected 0 for a single point, got %v", l)
	}
	if l := CalculateLength([]Vector2{V(1, 1), V(1, 1), V(1, 1)}, 0.1, 5); l != 0 {
		t.Errorf("expected 0 for a degenerate curve, got %v", l)
	}
	if l := QuadricLength(V(2, 2), V(2, 2), V(2, 2), 0.1, 5); l != 0 {
		t.Errorf("expected 0 for a degenerate quadric, got %v", l)
	}
	if l := CalculateLength([]Vector2{V(0, 0), V(1, 1)}, 0, 0); l != 0 {
		t.Errorf("expected 0 for non-positive precision, got %v", l)
	}

	coarse := CalculateLength([]Vector2{V(0, 0), V(100, 200), V(200, 0)}, 0.25, 0)
	fine := CalculateLength([]Vector2{V(0, 0), V(100, 200), V(200, 0)}, 0.001, 0)
	if coarse > fine {
		t.Errorf("expected coarse approximation %v to underestimate %v", coarse, fine)
	}
	quad := QuadricLength(V(0, 0), V(100, 200), V(200, 0), 0.001, 0)
	if !approxEqual(quad, fine, 1e-6) {
		t.Errorf("expected quadric length %v to match general length %v", quad, fine)
	}
}

func TestCalculatePointDegenerateOffset(t *testing.T) {
	pts := []Vector2{V(1, 1), V(1, 1), V(1, 1)}
	for _, tt := range []float64{0, 0.3, 0.7, 1} {
		if p := CalculatePoint(pts, tt, 5); !p.AlmostEquals(V(1, 1), 1e-9) {
			t.Errorf("t=%v: expected (1, 1), got %v", tt, p)
		}
	}
	if p := QuadricPoint(V(1, 1), V(1, 1), V(1, 1), 0.3, 5); !p.AlmostEquals(V(1, 1), 1e-9) {
		t.Errorf("expected (1, 1) from a degenerate quadric, got %v", p)
	}
}
