// Package mesh provides the triangulated mesh snapshots consumed by the bake
// pipeline, along with the spatial lookups built over them.
package mesh

import (
	"github.com/Faultbox/texbake/pkg/math"
)

// Triangle is one triangle of an evaluated mesh. Corner attributes are stored
// per triangle so split normals and UV seams survive triangulation.
type Triangle struct {
	Verts    [3]int32     // Indices into Mesh.Positions
	UV       [3]math.Vec2 // Active UV layer per corner
	Normals  [3]math.Vec3 // Object-space corner normals
	Material int          // Material slot index
}

// Mesh is an immutable, triangulated snapshot of an object after modifier
// evaluation. Positions and normals are in object space.
type Mesh struct {
	Name      string
	Positions []math.Vec3
	Triangles []Triangle

	// Tangents holds per-corner tangent frames once ComputeTangents has run.
	Tangents [][3]Tangent
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// emptyBounds returns an inverted box that grows on the first Extend.
func emptyBounds() Bounds {
	return Bounds{
		Min: math.Vec3{X: 1e30, Y: 1e30, Z: 1e30},
		Max: math.Vec3{X: -1e30, Y: -1e30, Z: -1e30},
	}
}

// Extend grows the box to include p.
func (b *Bounds) Extend(p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}

// Union grows the box to include other.
func (b *Bounds) Union(other Bounds) {
	b.Min = b.Min.Min(other.Min)
	b.Max = b.Max.Max(other.Max)
}

// Centroid returns the center of the box.
func (b Bounds) Centroid() math.Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Triangles)
}

// Corners returns the three corner positions of triangle i.
func (m *Mesh) Corners(i int) (a, b, c math.Vec3) {
	t := &m.Triangles[i]
	return m.Positions[t.Verts[0]], m.Positions[t.Verts[1]], m.Positions[t.Verts[2]]
}

// Point returns the object-space surface point at barycentric weights w.
func (m *Mesh) Point(i int, w [3]float32) math.Vec3 {
	a, b, c := m.Corners(i)
	return math.Interpolate(a, b, c, w)
}

// Normal returns the interpolated, normalized corner normal at weights w.
func (m *Mesh) Normal(i int, w [3]float32) math.Vec3 {
	t := &m.Triangles[i]
	return math.Interpolate(t.Normals[0], t.Normals[1], t.Normals[2], w).Normalize()
}

// FaceNormal returns the geometric normal of triangle i.
func (m *Mesh) FaceNormal(i int) math.Vec3 {
	a, b, c := m.Corners(i)
	return b.Sub(a).Cross(c.Sub(a)).Normalize()
}

// UV returns the interpolated UV coordinate at weights w.
func (m *Mesh) UV(i int, w [3]float32) math.Vec2 {
	t := &m.Triangles[i]
	return t.UV[0].Scale(w[0]).Add(t.UV[1].Scale(w[1])).Add(t.UV[2].Scale(w[2]))
}

// TriangleBounds returns the bounding box of triangle i.
func (m *Mesh) TriangleBounds(i int) Bounds {
	a, b, c := m.Corners(i)
	box := emptyBounds()
	box.Extend(a)
	box.Extend(b)
	box.Extend(c)
	return box
}

// Bounds returns the bounding box of the whole mesh.
func (m *Mesh) Bounds() Bounds {
	box := emptyBounds()
	for _, p := range m.Positions {
		box.Extend(p)
	}
	return box
}

// Weights expands the (u, v) barycentric pair used by texel locators into
// the three corner weights (1-u-v, u, v).
func Weights(u, v float32) [3]float32 {
	return [3]float32{1 - u - v, u, v}
}
