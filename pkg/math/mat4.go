package math

import "math"

// Mat4 is a 4x4 affine transform in column-major order.
// Layout: [m0 m4 m8  m12]
//
//	[m1 m5 m9  m13]
//	[m2 m6 m10 m14]
//	[m3 m7 m11 m15]
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate returns a translation matrix.
func Translate(t Vec3) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = t.X, t.Y, t.Z
	return m
}

// Scale returns a scale matrix.
func Scale(s Vec3) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = s.X, s.Y, s.Z
	return m
}

// RotateEuler returns the rotation for XYZ euler angles in radians,
// applied X first, then Y, then Z.
func RotateEuler(r Vec3) Mat4 {
	cx, sx := cosSin(r.X)
	cy, sy := cosSin(r.Y)
	cz, sz := cosSin(r.Z)

	rx := Mat3{1, 0, 0, 0, cx, sx, 0, -sx, cx}
	ry := Mat3{cy, 0, -sy, 0, 1, 0, sy, 0, cy}
	rz := Mat3{cz, sz, 0, -sz, cz, 0, 0, 0, 1}

	return FromMat3(mul3(rz, mul3(ry, rx)))
}

// Compose builds translate * rotate * scale.
func Compose(location, rotation, scale Vec3) Mat4 {
	return Translate(location).Mul(RotateEuler(rotation)).Mul(Scale(scale))
}

func cosSin(a float32) (float32, float32) {
	s, c := math.Sincos(float64(a))
	return float32(c), float32(s)
}

func mul3(a, b Mat3) Mat3 {
	var r Mat3
	for col := 0; col < 3; col++ {
		for row := 0; row < 3; row++ {
			r[col*3+row] = a[row]*b[col*3] + a[3+row]*b[col*3+1] + a[6+row]*b[col*3+2]
		}
	}
	return r
}

// FromMat3 embeds a 3x3 linear part in an affine matrix.
func FromMat3(m3 Mat3) Mat4 {
	return Mat4{
		m3[0], m3[1], m3[2], 0,
		m3[3], m3[4], m3[5], 0,
		m3[6], m3[7], m3[8], 0,
		0, 0, 0, 1,
	}
}

// Mat3 returns the upper-left 3x3 linear part.
func (m Mat4) Mat3() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Mul multiplies this matrix by another (m * other).
func (m Mat4) Mul(other Mat4) Mat4 {
	var result Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			result[col*4+row] =
				m[row]*other[col*4] +
					m[4+row]*other[col*4+1] +
					m[8+row]*other[col*4+2] +
					m[12+row]*other[col*4+3]
		}
	}
	return result
}

// TransformPoint transforms a point (w=1).
func (m Mat4) TransformPoint(p Vec3) Vec3 {
	return Vec3{
		m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}

// TransformDirection transforms a direction vector (ignores translation).
func (m Mat4) TransformDirection(d Vec3) Vec3 {
	return Vec3{
		m[0]*d.X + m[4]*d.Y + m[8]*d.Z,
		m[1]*d.X + m[5]*d.Y + m[9]*d.Z,
		m[2]*d.X + m[6]*d.Y + m[10]*d.Z,
	}
}

// NormalMatrix returns the inverse transpose of the linear part,
// used to carry surface normals through m.
func (m Mat4) NormalMatrix() Mat3 {
	inv, _ := m.Mat3().Inverse()
	return inv.Transpose()
}

// Inverse returns the inverse of an affine matrix.
// Returns identity if the linear part is singular.
func (m Mat4) Inverse() Mat4 {
	lin, ok := m.Mat3().Inverse()
	if !ok {
		return Identity()
	}
	t := lin.MulVec3(Vec3{m[12], m[13], m[14]}).Neg()
	out := FromMat3(lin)
	out[12], out[13], out[14] = t.X, t.Y, t.Z
	return out
}
