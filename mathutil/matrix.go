package mathutil

import "math"

// Matrix2 is a row-major 2x2 matrix.
type Matrix2 struct {
	Row0, Row1 Vector2
}

var Identity = Matrix2{Vector2{1, 0}, Vector2{0, 1}}

// Rotation returns a counter-clockwise rotation by angle radians.
func Rotation(angle float64) Matrix2 {
	sin, cos := math.Sincos(angle)
	return Matrix2{Vector2{cos, -sin}, Vector2{sin, cos}}
}

// Scaling returns a matrix scaling X by sx and Y by sy.
func Scaling(sx, sy float64) Matrix2 {
	return Matrix2{Vector2{sx, 0}, Vector2{0, sy}}
}

func (m Matrix2) Column0() Vector2 { return Vector2{m.Row0.X, m.Row1.X} }
func (m Matrix2) Column1() Vector2 { return Vector2{m.Row0.Y, m.Row1.Y} }

// Mul returns m * o.
func (m Matrix2) Mul(o Matrix2) Matrix2 {
	c0, c1 := o.Column0(), o.Column1()
	return Matrix2{
		Vector2{m.Row0.Dot(c0), m.Row0.Dot(c1)},
		Vector2{m.Row1.Dot(c0), m.Row1.Dot(c1)},
	}
}

// Transform returns m * v.
func (m Matrix2) Transform(v Vector2) Vector2 {
	return Vector2{m.Row0.Dot(v), m.Row1.Dot(v)}
}

func (m Matrix2) Determinant() float64 {
	return m.Row0.X*m.Row1.Y - m.Row0.Y*m.Row1.X
}

// Inverse returns the inverse of m. ok is false for singular matrices.
func (m Matrix2) Inverse() (inv Matrix2, ok bool) {
	det := m.Determinant()
	if AlmostEquals(det, 0, DoubleEpsilon) {
		return Matrix2{}, false
	}
	return Matrix2{
		Vector2{m.Row1.Y / det, -m.Row0.Y / det},
		Vector2{-m.Row1.X / det, m.Row0.X / det},
	}, true
}
