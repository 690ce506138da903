package mesh

import (
	"github.com/Faultbox/texbake/pkg/math"
)

// Tangent is a per-corner tangent with the handedness of the bitangent.
type Tangent struct {
	Vector math.Vec3
	Sign   float32 // +1 or -1; bitangent = Sign * cross(normal, tangent)
}

// ComputeTangents fills m.Tangents from UV derivatives. Contributions are
// accumulated per shared vertex and then orthogonalized against each corner
// normal, so UV seams keep continuous frames. Triangles with a degenerate UV
// area contribute nothing.
func ComputeTangents(m *Mesh) {
	tan := make([]math.Vec3, len(m.Positions))
	bit := make([]math.Vec3, len(m.Positions))

	for i := range m.Triangles {
		t := &m.Triangles[i]
		p0, p1, p2 := m.Corners(i)

		e1 := p1.Sub(p0)
		e2 := p2.Sub(p0)
		d1 := t.UV[1].Sub(t.UV[0])
		d2 := t.UV[2].Sub(t.UV[0])

		denom := d1.X*d2.Y - d2.X*d1.Y
		if denom == 0 {
			continue
		}
		r := 1 / denom

		tv := e1.Scale(d2.Y * r).Sub(e2.Scale(d1.Y * r))
		bv := e2.Scale(d1.X * r).Sub(e1.Scale(d2.X * r))
		for _, v := range t.Verts {
			tan[v] = tan[v].Add(tv)
			bit[v] = bit[v].Add(bv)
		}
	}

	m.Tangents = make([][3]Tangent, len(m.Triangles))
	for i := range m.Triangles {
		t := &m.Triangles[i]
		for c := 0; c < 3; c++ {
			m.Tangents[i][c] = orthogonalize(t.Normals[c].Normalize(), tan[t.Verts[c]], bit[t.Verts[c]])
		}
	}
}

// orthogonalize applies Gram-Schmidt to tangent t against normal n.
func orthogonalize(n, t, b math.Vec3) Tangent {
	t = t.Sub(n.Scale(n.Dot(t)))
	if t.LengthSqr() < 1e-12 {
		// Degenerate: pick any tangent perpendicular to N
		if abs(n.X) < 0.9 {
			t = math.Vec3{X: 1}.Sub(n.Scale(n.X))
		} else {
			t = math.Vec3{Y: 1}.Sub(n.Scale(n.Y))
		}
	}
	t = t.Normalize()

	sign := float32(1)
	if n.Cross(t).Dot(b) < 0 {
		sign = -1
	}
	return Tangent{Vector: t, Sign: sign}
}

// TangentFrame returns the interpolated object-space tangent, bitangent and
// normal at weights w of triangle i. ComputeTangents must have been called.
func (m *Mesh) TangentFrame(i int, w [3]float32) (t, b, n math.Vec3) {
	corners := &m.Tangents[i]
	n = m.Normal(i, w)
	t = math.Interpolate(corners[0].Vector, corners[1].Vector, corners[2].Vector, w)
	t = t.Sub(n.Scale(n.Dot(t))).Normalize()

	// Handedness follows the dominant corner
	sign := corners[0].Sign
	if w[1] > w[0] && w[1] >= w[2] {
		sign = corners[1].Sign
	} else if w[2] > w[0] && w[2] > w[1] {
		sign = corners[2].Sign
	}
	b = n.Cross(t).Scale(sign)
	return t, b, n
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}
