package motion

import "math"

// quat is a rotation quaternion in scalar-first (w, x, y, z) convention,
// matching the CORI telemetry stream.
type quat struct {
	w, x, y, z float64
}

func quatFromArray(q [4]float64) quat {
	return quat{w: q[0], x: q[1], y: q[2], z: q[3]}
}

// mul returns the Hamilton product a*b
func (a quat) mul(b quat) quat {
	return quat{
		w: a.w*b.w - a.x*b.x - a.y*b.y - a.z*b.z,
		x: a.w*b.x + a.x*b.w + a.y*b.z - a.z*b.y,
		y: a.w*b.y - a.x*b.z + a.y*b.w + a.z*b.x,
		z: a.w*b.z + a.x*b.y - a.y*b.x + a.z*b.w,
	}
}

// conj returns the conjugate, which inverts a unit rotation
func (a quat) conj() quat {
	return quat{w: a.w, x: -a.x, y: -a.y, z: -a.z}
}

// relativeTo returns the rotation taking prev to a (a composed with prev inverse)
func (a quat) relativeTo(prev quat) quat {
	return a.mul(prev.conj())
}

// angleDeg returns the rotation-vector magnitude of the quaternion in degrees.
// The angle is canonical, always in [0, 180], and insensitive to the overall
// quaternion scale, so slightly denormalized telemetry is fine.
func (a quat) angleDeg() float64 {
	vec := math.Sqrt(a.x*a.x + a.y*a.y + a.z*a.z)
	rad := 2 * math.Atan2(vec, math.Abs(a.w))
	return rad * 180 / math.Pi
}
