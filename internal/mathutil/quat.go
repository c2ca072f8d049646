package mathutil

// Quat is a quaternion in the engine's on-disk order (w, x, y, z).
type Quat struct {
	W, X, Y, Z float32
}

func QuatIdentity() Quat {
	return Quat{W: 1}
}

// Rotate applies the rotation to v. Assumes q is (close to) unit length.
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// Blend is a plain component-wise linear blend of a toward b by t. The
// engine blends quaternion components linearly rather than slerping, and
// the result is intentionally left unnormalized to match it.
func (a Quat) Blend(b Quat, t float32) Quat {
	return Quat{
		a.W + (b.W-a.W)*t,
		a.X + (b.X-a.X)*t,
		a.Y + (b.Y-a.Y)*t,
		a.Z + (b.Z-a.Z)*t,
	}
}
