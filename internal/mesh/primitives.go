package mesh

import (
	"github.com/Faultbox/texbake/pkg/math"
)

// NewPlane returns a square in the XY plane facing +Z, centered at the
// origin, with UVs spanning the unit square.
func NewPlane(size float32) *Mesh {
	return NewStrips(size, 1)
}

// NewStrips returns a plane like NewPlane cut into n vertical strips, strip i
// using material slot i. UVs stay continuous across the whole plane.
func NewStrips(size float32, n int) *Mesh {
	if n < 1 {
		n = 1
	}
	h := size / 2
	up := math.Vec3{Z: 1}
	m := &Mesh{Name: "Plane"}

	for i := 0; i <= n; i++ {
		f := float32(i) / float32(n)
		x := -h + f*size
		m.Positions = append(m.Positions, math.Vec3{X: x, Y: -h}, math.Vec3{X: x, Y: h})
	}
	for i := 0; i < n; i++ {
		u0 := float32(i) / float32(n)
		u1 := float32(i+1) / float32(n)
		bl, tl := int32(2*i), int32(2*i+1)
		br, tr := int32(2*i+2), int32(2*i+3)
		normals := [3]math.Vec3{up, up, up}
		m.Triangles = append(m.Triangles,
			Triangle{
				Verts:    [3]int32{bl, br, tr},
				UV:       [3]math.Vec2{{X: u0, Y: 0}, {X: u1, Y: 0}, {X: u1, Y: 1}},
				Normals:  normals,
				Material: i,
			},
			Triangle{
				Verts:    [3]int32{bl, tr, tl},
				UV:       [3]math.Vec2{{X: u0, Y: 0}, {X: u1, Y: 1}, {X: u0, Y: 1}},
				Normals:  normals,
				Material: i,
			},
		)
	}
	return m
}

// NewCube returns an axis-aligned cube with flat face normals. Each face gets
// its own cell in a 3x2 UV atlas.
func NewCube(size float32) *Mesh {
	h := size / 2
	m := &Mesh{Name: "Cube"}

	faces := []struct {
		normal, u, v math.Vec3
	}{
		{math.Vec3{X: 1}, math.Vec3{Y: 1}, math.Vec3{Z: 1}},
		{math.Vec3{X: -1}, math.Vec3{Y: -1}, math.Vec3{Z: 1}},
		{math.Vec3{Y: 1}, math.Vec3{X: -1}, math.Vec3{Z: 1}},
		{math.Vec3{Y: -1}, math.Vec3{X: 1}, math.Vec3{Z: 1}},
		{math.Vec3{Z: 1}, math.Vec3{X: 1}, math.Vec3{Y: 1}},
		{math.Vec3{Z: -1}, math.Vec3{X: 1}, math.Vec3{Y: -1}},
	}

	for f, face := range faces {
		cellU := float32(f%3) / 3
		cellV := float32(f/3) / 2
		base := int32(len(m.Positions))

		center := face.normal.Scale(h)
		for _, c := range [4][2]float32{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}} {
			p := center.Add(face.u.Scale(c[0] * h)).Add(face.v.Scale(c[1] * h))
			m.Positions = append(m.Positions, p)
		}

		uv := [4]math.Vec2{
			{X: cellU, Y: cellV},
			{X: cellU + 1.0/3, Y: cellV},
			{X: cellU + 1.0/3, Y: cellV + 0.5},
			{X: cellU, Y: cellV + 0.5},
		}
		normals := [3]math.Vec3{face.normal, face.normal, face.normal}
		m.Triangles = append(m.Triangles,
			Triangle{Verts: [3]int32{base, base + 1, base + 2}, UV: [3]math.Vec2{uv[0], uv[1], uv[2]}, Normals: normals},
			Triangle{Verts: [3]int32{base, base + 2, base + 3}, UV: [3]math.Vec2{uv[0], uv[2], uv[3]}, Normals: normals},
		)
	}
	return m
}

// Transformed returns a copy of m with positions and normals carried through
// the affine matrix xf.
func (m *Mesh) Transformed(xf math.Mat4) *Mesh {
	nm := xf.NormalMatrix()
	out := &Mesh{
		Name:      m.Name,
		Positions: make([]math.Vec3, len(m.Positions)),
		Triangles: make([]Triangle, len(m.Triangles)),
	}
	for i, p := range m.Positions {
		out.Positions[i] = xf.TransformPoint(p)
	}
	for i, t := range m.Triangles {
		for c := range t.Normals {
			t.Normals[c] = nm.MulVec3(t.Normals[c]).Normalize()
		}
		out.Triangles[i] = t
	}
	return out
}
