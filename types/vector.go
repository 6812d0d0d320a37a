package types

import (
	"math"

	"golang.org/x/image/math/f32"
)

type Vec3 f32.Vec3
type Vec4 f32.Vec4

// Define a 3 component vector.
func XYZ(x, y, z float32) Vec3 {
	return Vec3{x, y, z}
}

// Define a 4 component vector.
func XYZW(x, y, z, w float32) Vec4 {
	return Vec4{x, y, z, w}
}

// Expand a 3 component vector to a Vec4.
func (v Vec3) Vec4(w float32) Vec4 {
	return Vec4{v[0], v[1], v[2], w}
}

// Add a vector.
func (v Vec3) Add(v2 Vec3) Vec3 {
	return Vec3{v[0] + v2[0], v[1] + v2[1], v[2] + v2[2]}
}

// Subtract a vector.
func (v Vec3) Sub(v2 Vec3) Vec3 {
	return Vec3{v[0] - v2[0], v[1] - v2[1], v[2] - v2[2]}
}

// Multiply a 3 component vector with a scalar.
func (v Vec3) Mul(s float32) Vec3 {
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Component-wise multiply two vectors. Used for modulating colors.
func (v Vec3) MulVec(v2 Vec3) Vec3 {
	return Vec3{v[0] * v2[0], v[1] * v2[1], v[2] * v2[2]}
}

// Component-wise divide by another vector.
func (v Vec3) DivVec(v2 Vec3) Vec3 {
	return Vec3{v[0] / v2[0], v[1] / v2[1], v[2] / v2[2]}
}

// Negate a vector.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v[0], -v[1], -v[2]}
}

// Get 3 component vector length.
func (v Vec3) Len() float32 {
	return float32(math.Sqrt(float64(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])))
}

// Normalize 3 component vector. A degenerate input yields the zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l < floatCmpEpsilon {
		return Vec3{}
	}
	s := 1.0 / l
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// Reflect the vector around a unit normal.
func (v Vec3) Reflect(n Vec3) Vec3 {
	return v.Sub(n.Mul(2 * v.Dot(n)))
}

// Calculate dot product of 2 vectors.
func (v Vec3) Dot(v2 Vec3) float32 {
	return v[0]*v2[0] + v[1]*v2[1] + v[2]*v2[2]
}

// Calculate cross product of 2 vectors.
func (v Vec3) Cross(v2 Vec3) Vec3 {
	return Vec3{v[1]*v2[2] - v[2]*v2[1], v[2]*v2[0] - v[0]*v2[2], v[0]*v2[1] - v[1]*v2[0]}
}

// Reduce a 4 component vector to a Vec3.
func (v Vec4) Vec3() Vec3 {
	return Vec3{v[0], v[1], v[2]}
}