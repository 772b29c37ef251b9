package mathutil

import "math"

const (
	DoubleEpsilon = 1e-7
	FloatEpsilon  = 1e-3
)

// AlmostEquals reports whether |a-b| <= eps.
func AlmostEquals(a, b, eps float64) bool { return math.Abs(a-b) <= eps }

// AlmostBigger reports whether a > b, or a is within eps of b.
func AlmostBigger(a, b, eps float64) bool { return a > b-eps }

// AlmostSmaller reports whether a < b, or a is within eps of b.
func AlmostSmaller(a, b, eps float64) bool { return a-eps < b }

// DefinitelyBigger reports whether a exceeds b by more than eps.
func DefinitelyBigger(a, b, eps float64) bool { return a-eps > b }

// DefinitelySmaller reports whether a is below b by more than eps.
func DefinitelySmaller(a, b, eps float64) bool { return a < b-eps }

func Clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
