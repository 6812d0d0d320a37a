package types

import (
	"errors"
	"math"
)

var ErrZeroQuaternion = errors.New("types: cannot invert a zero-magnitude quaternion")

// Quat represents a rotation as a unit quaternion.
type Quat struct {
	V Vec3
	W float32
}

// Create identity quaternion.
func QuatIdent() Quat {
	return Quat{
		V: Vec3{},
		W: 1.0,
	}
}

// Create a quaternion from a unit axis vector and an angle in radians.
func QuatFromAxisAngle(axis Vec3, angle float32) Quat {
	sin := float32(math.Sin(float64(angle * 0.5)))
	cos := float32(math.Cos(float64(angle * 0.5)))
	return Quat{
		V: axis.Mul(sin),
		W: cos,
	}
}

// Rotates a vector by the rotation this quaternion represents.
func (q1 Quat) Rotate(v Vec3) Vec3 {
	cross := q1.V.Cross(v)
	// v + 2q_w * (q_v x v) + 2q_v x (q_v x v)
	return v.Add(cross.Mul(2 * q1.W)).Add(q1.V.Mul(2).Cross(cross))
}

// Multiplies two quaternions. Multiplication is NOT commutative, meaning
// q1.Mul(q2) does not necessarily equal q2.Mul(q1).
func (q1 Quat) Mul(q2 Quat) Quat {
	return Quat{
		q1.V.Cross(q2.V).Add(q2.V.Mul(q1.W)).Add(q1.V.Mul(q2.W)),
		q1.W*q2.W - q1.V.Dot(q2.V),
	}
}

// Returns the length (norm) of the quaternion.
func (q1 Quat) Len() float32 {
	return float32(math.Sqrt(float64(q1.W*q1.W + q1.V[0]*q1.V[0] + q1.V[1]*q1.V[1] + q1.V[2]*q1.V[2])))
}

// Normalizes the quaternion, returning its versor (unit quaternion).
func (q1 Quat) Normalize() Quat {
	length := q1.Len()

	absDelta := 1 - length
	if absDelta < 0 {
		absDelta = -absDelta
	}

	if absDelta < floatCmpEpsilon {
		return q1
	}
	if length == 0 {
		return QuatIdent()
	}
	if length == float32(math.Inf(1)) {
		length = math.MaxFloat32
	}

	return Quat{q1.V.Mul(1 / length), q1.W * 1 / length}
}

// Returns the conjugate of the quaternion.
func (q1 Quat) Conjugate() Quat {
	return Quat{q1.V.Mul(-1), q1.W}
}

// The inverse of a quaternion. The inverse is equivalent to the conjugate
// divided by the square of the length. Inverting a zero-magnitude
// quaternion is a precondition violation and yields ErrZeroQuaternion.
func (q1 Quat) Inverse() (Quat, error) {
	lenSq := q1.V.Dot(q1.V) + q1.W*q1.W
	if lenSq < floatCmpEpsilon {
		return Quat{}, ErrZeroQuaternion
	}

	conj := q1.Conjugate()
	scaler := 1.0 / lenSq
	return Quat{
		conj.V.Mul(scaler),
		conj.W * scaler,
	}, nil
}
