package gmath

import "math"

// Quat is a rotation quaternion. The zero value is NOT a valid rotation; use
// QuatIdentity for "no rotation".
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity returns the identity rotation.
func QuatIdentity() Quat {
	return Quat{W: 1}
}

// QuatFromAxisAngle builds a rotation of angle radians around axis. The axis
// must be unit length.
func QuatFromAxisAngle(axis Vec3, angle float64) Quat {
	s := math.Sin(angle / 2)
	return Quat{
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
		W: math.Cos(angle / 2),
	}
}

// Mul returns the Hamilton product q*o. Right-multiplication applies the new
// rotation in the local space of q, matching how local->world transforms
// compose.
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		X: q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		Y: q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		Z: q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		W: q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Inverse returns the inverse rotation. For unit quaternions this is the
// conjugate.
func (q Quat) Inverse() Quat {
	n := q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
	if n == 0 {
		return QuatIdentity()
	}
	return Quat{X: -q.X / n, Y: -q.Y / n, Z: -q.Z / n, W: q.W / n}
}

// Normalize rescales q to unit length, guarding against numeric drift after
// long chains of compositions.
func (q Quat) Normalize() Quat {
	n := math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
	if n == 0 {
		return QuatIdentity()
	}
	return Quat{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

// Rotate applies the rotation to v, computing q*v*q^-1 without building an
// intermediate matrix. q must be unit length.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}
