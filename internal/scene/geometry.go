package scene

import (
	"fmt"
	"strings"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/mesh"
	"github.com/Faultbox/texbake/pkg/formats"
	"github.com/Faultbox/texbake/pkg/math"
)

// QuadMethod decides how quads are split into triangles.
type QuadMethod string

const (
	QuadBeauty    QuadMethod = "BEAUTY"    // shorter diagonal
	QuadFixed     QuadMethod = "FIXED"     // diagonal from the first corner
	QuadAlternate QuadMethod = "ALTERNATE" // diagonal from the second corner
)

// ModifierTriangulate is the triangulation modifier kind.
const ModifierTriangulate bake.ModifierKind = "TRIANGULATE"

func parseQuadMethod(s string) (QuadMethod, error) {
	switch q := QuadMethod(strings.ToUpper(s)); q {
	case "":
		return QuadFixed, nil
	case QuadBeauty, QuadFixed, QuadAlternate:
		return q, nil
	}
	return "", fmt.Errorf("unknown quad method %q", s)
}

func parseModifierKind(s string) (bake.ModifierKind, error) {
	switch k := bake.ModifierKind(strings.ToUpper(s)); k {
	case bake.ModifierEdgeSplit, bake.ModifierMultires, ModifierTriangulate:
		return k, nil
	}
	return "", fmt.Errorf("unknown modifier type %q", s)
}

type modifier struct {
	kind      bake.ModifierKind
	strength  float32
	quad      QuadMethod
	temporary bool
	suspended int
}

// geometry is the base data of a mesh object before modifiers.
type geometry struct {
	obj  *formats.OBJ
	prim *mesh.Mesh
}

func primitive(spec *PrimitiveSpec) (*mesh.Mesh, error) {
	size := spec.Size
	if size == 0 {
		size = 2
	}
	switch strings.ToLower(spec.Shape) {
	case "plane", "":
		return mesh.NewPlane(size), nil
	case "cube":
		return mesh.NewCube(size), nil
	case "strips":
		return mesh.NewStrips(size, spec.Strips), nil
	}
	return nil, fmt.Errorf("unknown primitive %q", spec.Shape)
}

// build triangulates the base geometry. Primitive shapes are already
// triangles and ignore the quad method.
func (g geometry) build(name string, quad QuadMethod) *mesh.Mesh {
	if g.prim != nil {
		m := &mesh.Mesh{
			Name:      name,
			Positions: append([]math.Vec3(nil), g.prim.Positions...),
			Triangles: append([]mesh.Triangle(nil), g.prim.Triangles...),
		}
		return m
	}

	o := g.obj
	m := &mesh.Mesh{Name: name, Positions: make([]math.Vec3, len(o.Vertices))}
	for i, v := range o.Vertices {
		m.Positions[i] = math.Vec3{X: v[0], Y: v[1], Z: v[2]}
	}
	smooth := smoothNormals(o, m.Positions)

	for _, f := range o.Faces {
		faceNormal := polygonNormal(m.Positions, f)
		for _, tri := range splitFace(m.Positions, f, quad) {
			t := mesh.Triangle{Material: f.Material}
			for k, ci := range tri {
				c := f.Corners[ci]
				t.Verts[k] = int32(c.Vertex)
				if c.TexCoord >= 0 {
					tc := o.TexCoords[c.TexCoord]
					t.UV[k] = math.Vec2{X: tc[0], Y: tc[1]}
				}
				switch {
				case c.Normal >= 0:
					n := o.Normals[c.Normal]
					t.Normals[k] = math.Vec3{X: n[0], Y: n[1], Z: n[2]}.Normalize()
				case f.Smooth:
					t.Normals[k] = smooth[c.Vertex]
				default:
					t.Normals[k] = faceNormal
				}
			}
			m.Triangles = append(m.Triangles, t)
		}
	}
	return m
}

// splitFace returns corner index triples for one polygon.
func splitFace(pos []math.Vec3, f formats.OBJFace, quad QuadMethod) [][3]int {
	n := len(f.Corners)
	if n == 4 {
		alt := quad == QuadAlternate
		if quad == QuadBeauty {
			p := func(i int) math.Vec3 { return pos[f.Corners[i].Vertex] }
			alt = p(1).Distance(p(3)) < p(0).Distance(p(2))
		}
		if alt {
			return [][3]int{{0, 1, 3}, {1, 2, 3}}
		}
	}
	tris := make([][3]int, 0, n-2)
	for i := 1; i+1 < n; i++ {
		tris = append(tris, [3]int{0, i, i + 1})
	}
	return tris
}

// polygonNormal uses Newell's method so concave and slightly non-planar
// faces still get a stable normal.
func polygonNormal(pos []math.Vec3, f formats.OBJFace) math.Vec3 {
	var n math.Vec3
	for i := range f.Corners {
		a := pos[f.Corners[i].Vertex]
		b := pos[f.Corners[(i+1)%len(f.Corners)].Vertex]
		n.X += (a.Y - b.Y) * (a.Z + b.Z)
		n.Y += (a.Z - b.Z) * (a.X + b.X)
		n.Z += (a.X - b.X) * (a.Y + b.Y)
	}
	return n.Normalize()
}

// smoothNormals averages area-weighted face normals per vertex.
func smoothNormals(o *formats.OBJ, pos []math.Vec3) []math.Vec3 {
	acc := make([]math.Vec3, len(pos))
	for _, f := range o.Faces {
		if !f.Smooth {
			continue
		}
		a := pos[f.Corners[0].Vertex]
		for i := 1; i+1 < len(f.Corners); i++ {
			b := pos[f.Corners[i].Vertex]
			c := pos[f.Corners[i+1].Vertex]
			w := b.Sub(a).Cross(c.Sub(a))
			for _, ci := range []int{0, i, i + 1} {
				v := f.Corners[ci].Vertex
				acc[v] = acc[v].Add(w)
			}
		}
	}
	for i := range acc {
		acc[i] = acc[i].Normalize()
	}
	return acc
}

// splitEdges gives every corner its face normal.
func splitEdges(m *mesh.Mesh) {
	for i := range m.Triangles {
		n := m.FaceNormal(i)
		m.Triangles[i].Normals = [3]math.Vec3{n, n, n}
	}
}

// displace pushes every vertex along its averaged corner normal.
func displace(m *mesh.Mesh, strength float32) {
	if strength == 0 {
		return
	}
	dirs := make([]math.Vec3, len(m.Positions))
	for _, t := range m.Triangles {
		for k, v := range t.Verts {
			dirs[v] = dirs[v].Add(t.Normals[k])
		}
	}
	for i, d := range dirs {
		m.Positions[i] = m.Positions[i].Add(d.Normalize().Scale(strength))
	}
}
