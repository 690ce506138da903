package mesh

import (
	"github.com/dhconnelly/rtreego"

	"github.com/Faultbox/texbake/pkg/math"
)

// uvEpsilon widens containment so texel centers on a shared edge are claimed
// by both neighbors; the lowest triangle index then wins.
const uvEpsilon = 1e-6

// uvTriangle is a triangle's UV footprint stored in the R-tree.
type uvTriangle struct {
	index int
	uv    [3]math.Vec2
	rect  rtreego.Rect
}

func (t *uvTriangle) Bounds() rtreego.Rect {
	return t.rect
}

// UVIndex answers "which triangle covers this UV point" for a subset of a
// mesh's triangles. Queries are read-only and safe for concurrent use.
type UVIndex struct {
	tree  *rtreego.Rtree
	count int
}

// NewUVIndex indexes the triangles of m accepted by include, in build order.
// Triangles with a degenerate UV footprint are skipped.
func NewUVIndex(m *Mesh, include func(tri int) bool) *UVIndex {
	var items []rtreego.Spatial
	for i := range m.Triangles {
		if include != nil && !include(i) {
			continue
		}
		t := &m.Triangles[i]
		if t.UV[1].Sub(t.UV[0]).Cross(t.UV[2].Sub(t.UV[0])) == 0 {
			continue
		}

		lo := t.UV[0]
		hi := t.UV[0]
		for _, p := range t.UV[1:] {
			lo = math.Vec2{X: min(lo.X, p.X), Y: min(lo.Y, p.Y)}
			hi = math.Vec2{X: max(hi.X, p.X), Y: max(hi.Y, p.Y)}
		}
		rect, err := rtreego.NewRectFromPoints(
			rtreego.Point{float64(lo.X) - uvEpsilon, float64(lo.Y) - uvEpsilon},
			rtreego.Point{float64(hi.X) + uvEpsilon, float64(hi.Y) + uvEpsilon},
		)
		if err != nil {
			continue
		}
		items = append(items, &uvTriangle{index: i, uv: t.UV, rect: rect})
	}

	return &UVIndex{
		tree:  rtreego.NewTree(2, 8, 32, items...),
		count: len(items),
	}
}

// Len returns the number of indexed triangles.
func (x *UVIndex) Len() int {
	return x.count
}

// Locate returns the lowest-index triangle containing p and the (u, v)
// barycentric pair of p within it.
func (x *UVIndex) Locate(p math.Vec2) (tri int, u, v float32, ok bool) {
	if x.count == 0 {
		return -1, 0, 0, false
	}

	query := rtreego.Point{float64(p.X), float64(p.Y)}.ToRect(uvEpsilon)
	tri = -1
	for _, s := range x.tree.SearchIntersect(query) {
		cand := s.(*uvTriangle)
		if tri >= 0 && cand.index > tri {
			continue
		}
		w, valid := math.Barycentric(p, cand.uv[0], cand.uv[1], cand.uv[2])
		if !valid || w[0] < -uvEpsilon || w[1] < -uvEpsilon || w[2] < -uvEpsilon {
			continue
		}
		tri, u, v = cand.index, w[1], w[2]
	}
	return tri, u, v, tri >= 0
}
