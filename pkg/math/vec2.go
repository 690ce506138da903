// Package math provides the small vector and matrix types used by the bake pipeline.
package math

import "math"

// Vec2 is a 2D vector, used for UV coordinates.
type Vec2 struct {
	X, Y float32
}

// Add returns v + other.
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Sub returns v - other.
func (v Vec2) Sub(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Scale returns v * scalar.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Dot returns the dot product.
func (v Vec2) Dot(other Vec2) float32 {
	return v.X*other.X + v.Y*other.Y
}

// Cross returns the z component of the 3D cross product of v and other.
func (v Vec2) Cross(other Vec2) float32 {
	return v.X*other.Y - v.Y*other.X
}

// Length returns the magnitude.
func (v Vec2) Length() float32 {
	return float32(math.Sqrt(float64(v.X*v.X + v.Y*v.Y)))
}

// Barycentric returns the weights (w0, w1, w2) of p relative to triangle a, b, c.
// ok is false when the triangle is degenerate.
func Barycentric(p, a, b, c Vec2) (w [3]float32, ok bool) {
	area := b.Sub(a).Cross(c.Sub(a))
	if area == 0 {
		return w, false
	}
	inv := 1 / area
	w[1] = p.Sub(a).Cross(c.Sub(a)) * inv
	w[2] = b.Sub(a).Cross(p.Sub(a)) * inv
	w[0] = 1 - w[1] - w[2]
	return w, true
}
