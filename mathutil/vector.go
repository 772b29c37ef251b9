package mathutil

import (
	"math"
	"strconv"
)

// Vector2 is a point or direction on the osu! playfield.
type Vector2 struct {
	X, Y float64
}

var (
	Zero = Vector2{}
	One  = Vector2{1, 1}
)

// V is shorthand for Vector2{x, y}.
func V(x, y float64) Vector2 { return Vector2{x, y} }

func (v Vector2) String() string {
	return "(" + strconv.FormatFloat(v.X, 'f', -1, 64) + ", " + strconv.FormatFloat(v.Y, 'f', -1, 64) + ")"
}

// Add returns v + o.
func (v Vector2) Add(o Vector2) Vector2 { return Vector2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vector2) Sub(o Vector2) Vector2 { return Vector2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vector2) Scale(s float64) Vector2 { return Vector2{v.X * s, v.Y * s} }

// Div returns v / s.
func (v Vector2) Div(s float64) Vector2 { return Vector2{v.X / s, v.Y / s} }

// Neg returns -v.
func (v Vector2) Neg() Vector2 { return Vector2{-v.X, -v.Y} }

// Dot returns the dot product of v and o.
func (v Vector2) Dot(o Vector2) float64 { return v.X*o.X + v.Y*o.Y }

// Cross returns the z component of the 3D cross product.
func (v Vector2) Cross(o Vector2) float64 { return v.X*o.Y - v.Y*o.X }

// Length returns the Euclidean length.
func (v Vector2) Length() float64 { return math.Hypot(v.X, v.Y) }

// LengthSquared returns the squared length.
func (v Vector2) LengthSquared() float64 { return v.X*v.X + v.Y*v.Y }

// Distance returns the distance between v and o.
func Distance(a, b Vector2) float64 { return a.Sub(b).Length() }

// Normalize returns the unit vector in the direction of v.
// The result for a zero vector is NaN; callers check Length first.
func (v Vector2) Normalize() Vector2 {
	l := v.Length()
	return Vector2{v.X / l, v.Y / l}
}

// PerpendicularRight rotates v by 90 degrees clockwise.
func (v Vector2) PerpendicularRight() Vector2 { return Vector2{v.Y, -v.X} }

// PerpendicularLeft rotates v by 90 degrees counter-clockwise.
func (v Vector2) PerpendicularLeft() Vector2 { return Vector2{-v.Y, v.X} }

// Lerp interpolates between v and o by t.
func (v Vector2) Lerp(o Vector2, t float64) Vector2 {
	return Vector2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Round rounds both components half away from zero.
func (v Vector2) Round() Vector2 { return Vector2{math.Round(v.X), math.Round(v.Y)} }

// IsNaN reports whether either component is NaN.
func (v Vector2) IsNaN() bool { return math.IsNaN(v.X) || math.IsNaN(v.Y) }

// AlmostEquals compares both components with the given tolerance.
func (v Vector2) AlmostEquals(o Vector2, eps float64) bool {
	return AlmostEquals(v.X, o.X, eps) && AlmostEquals(v.Y, o.Y, eps)
}
