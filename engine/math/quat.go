package math

// Quaternion represents a rotation.
type Quaternion struct {
	X, Y, Z, W float32
}

func NewQuatIdentity() Quaternion {
	return Quaternion{W: 1.0}
}

// NewQuatFromAxisAngle builds a rotation of angleRadians around axis.
// The axis is expected to be normalized unless normalize is true.
func NewQuatFromAxisAngle(axis Vec3, angleRadians float32, normalize bool) Quaternion {
	halfAngle := 0.5 * angleRadians
	s := Sin(halfAngle)
	c := Cos(halfAngle)

	q := Quaternion{X: s * axis.X, Y: s * axis.Y, Z: s * axis.Z, W: c}
	if normalize {
		return q.Normalized()
	}
	return q
}

func (q Quaternion) Normal() float32 {
	return Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

func (q Quaternion) Normalized() Quaternion {
	n := q.Normal()
	if n == 0 {
		return NewQuatIdentity()
	}
	return Quaternion{X: q.X / n, Y: q.Y / n, Z: q.Z / n, W: q.W / n}
}

func (q Quaternion) Conjugate() Quaternion {
	return Quaternion{X: -q.X, Y: -q.Y, Z: -q.Z, W: q.W}
}

func (q Quaternion) Inverse() Quaternion {
	return q.Normalized().Conjugate()
}

func (q Quaternion) Mul(other Quaternion) Quaternion {
	out := Quaternion{}
	out.X = q.X*other.W + q.Y*other.Z - q.Z*other.Y + q.W*other.X
	out.Y = -q.X*other.Z + q.Y*other.W + q.Z*other.X + q.W*other.Y
	out.Z = q.X*other.Y - q.Y*other.X + q.Z*other.W + q.W*other.Z
	out.W = -q.X*other.X - q.Y*other.Y - q.Z*other.Z + q.W*other.W
	return out
}

func (q Quaternion) Dot(other Quaternion) float32 {
	return q.X*other.X + q.Y*other.Y + q.Z*other.Z + q.W*other.W
}

// ToMat4 converts the rotation into a row-major matrix compatible with
// the row-vector convention used by Mat4.
func (q Quaternion) ToMat4() Mat4 {
	n := q.Normalized()
	out := NewMat4Identity()

	out.Data[0] = 1.0 - 2.0*n.Y*n.Y - 2.0*n.Z*n.Z
	out.Data[1] = 2.0*n.X*n.Y + 2.0*n.Z*n.W
	out.Data[2] = 2.0*n.X*n.Z - 2.0*n.Y*n.W

	out.Data[4] = 2.0*n.X*n.Y - 2.0*n.Z*n.W
	out.Data[5] = 1.0 - 2.0*n.X*n.X - 2.0*n.Z*n.Z
	out.Data[6] = 2.0*n.Y*n.Z + 2.0*n.X*n.W

	out.Data[8] = 2.0*n.X*n.Z + 2.0*n.Y*n.W
	out.Data[9] = 2.0*n.Y*n.Z - 2.0*n.X*n.W
	out.Data[10] = 1.0 - 2.0*n.X*n.X - 2.0*n.Y*n.Y

	return out
}

// Slerp spherically interpolates between q and other by percentage in
// [0, 1].
func (q Quaternion) Slerp(other Quaternion, percentage float32) Quaternion {
	v0 := q.Normalized()
	v1 := other.Normalized()

	dot := v0.Dot(v1)
	if dot < 0 {
		v1 = Quaternion{X: -v1.X, Y: -v1.Y, Z: -v1.Z, W: -v1.W}
		dot = -dot
	}

	const dotThreshold = 0.9995
	if dot > dotThreshold {
		out := Quaternion{
			X: v0.X + (v1.X-v0.X)*percentage,
			Y: v0.Y + (v1.Y-v0.Y)*percentage,
			Z: v0.Z + (v1.Z-v0.Z)*percentage,
			W: v0.W + (v1.W-v0.W)*percentage,
		}
		return out.Normalized()
	}

	theta0 := Acos(dot)
	theta := theta0 * percentage
	sinTheta := Sin(theta)
	sinTheta0 := Sin(theta0)

	s0 := Cos(theta) - dot*sinTheta/sinTheta0
	s1 := sinTheta / sinTheta0

	return Quaternion{
		X: v0.X*s0 + v1.X*s1,
		Y: v0.Y*s0 + v1.Y*s1,
		Z: v0.Z*s0 + v1.Z*s1,
		W: v0.W*s0 + v1.W*s1,
	}
}
