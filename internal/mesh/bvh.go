package mesh

import (
	"sort"
)

const bvhLeafSize = 4

// bvhNode is either an inner node (count == 0, children at left and left+1)
// or a leaf covering prims[first : first+count].
type bvhNode struct {
	bounds Bounds
	left   int32
	first  int32
	count  int32
}

// BVH is a bounding volume hierarchy over the triangles of one mesh, in the
// mesh's object space. It is immutable after Build and safe for concurrent
// queries.
type BVH struct {
	mesh  *Mesh
	nodes []bvhNode
	prims []int32
}

// Hit describes the closest ray intersection found by a BVH query.
type Hit struct {
	Triangle int
	T        float32
	U, V     float32 // Barycentric weights of corners 1 and 2
}

// BuildBVH builds a median-split BVH over all triangles of m.
func BuildBVH(m *Mesh) *BVH {
	n := len(m.Triangles)
	bvh := &BVH{
		mesh:  m,
		prims: make([]int32, n),
		nodes: make([]bvhNode, 0, 2*n/bvhLeafSize+1),
	}
	if n == 0 {
		return bvh
	}

	boxes := make([]Bounds, n)
	centers := make([]float32, 3*n)
	for i := range m.Triangles {
		bvh.prims[i] = int32(i)
		boxes[i] = m.TriangleBounds(i)
		c := boxes[i].Centroid()
		centers[3*i], centers[3*i+1], centers[3*i+2] = c.X, c.Y, c.Z
	}

	bvh.nodes = append(bvh.nodes, bvhNode{})
	bvh.build(0, 0, n, boxes, centers)
	return bvh
}

func (b *BVH) build(node, first, count int, boxes []Bounds, centers []float32) {
	box := emptyBounds()
	cbox := emptyBounds()
	for _, p := range b.prims[first : first+count] {
		box.Union(boxes[p])
		cbox.Extend(boxes[p].Centroid())
	}
	b.nodes[node].bounds = box

	if count <= bvhLeafSize {
		b.nodes[node].first = int32(first)
		b.nodes[node].count = int32(count)
		return
	}

	// Split on the widest centroid axis
	ext := cbox.Max.Sub(cbox.Min)
	axis := 0
	if ext.Y > ext.X {
		axis = 1
	}
	if ext.Z > ext.Axis(axis) {
		axis = 2
	}

	span := b.prims[first : first+count]
	sort.SliceStable(span, func(i, j int) bool {
		return centers[3*int(span[i])+axis] < centers[3*int(span[j])+axis]
	})

	half := count / 2
	left := len(b.nodes)
	b.nodes = append(b.nodes, bvhNode{}, bvhNode{})
	b.nodes[node].left = int32(left)

	b.build(left, first, half, boxes, centers)
	b.build(left+1, first+half, count-half, boxes, centers)
}

// Intersect returns the closest triangle hit with tMin <= t <= tMax. A
// negative tMin accepts hits slightly behind the origin. Equal distances keep
// the lowest triangle index.
func (b *BVH) Intersect(r Ray, tMin, tMax float32) (Hit, bool) {
	best := Hit{Triangle: -1, T: tMax}
	if len(b.nodes) == 0 {
		return best, false
	}

	stack := make([]int32, 0, 64)
	stack = append(stack, 0)
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &b.nodes[idx]

		if _, _, ok := r.IntersectBounds(node.bounds, tMin, best.T); !ok {
			continue
		}

		if node.count == 0 {
			stack = append(stack, node.left, node.left+1)
			continue
		}

		for _, p := range b.prims[node.first : node.first+node.count] {
			a, bb, c := b.mesh.Corners(int(p))
			t, u, v, hit := r.IntersectTriangle(a, bb, c)
			if !hit || t < tMin || t > best.T {
				continue
			}
			if t == best.T && best.Triangle >= 0 && int(p) > best.Triangle {
				continue
			}
			best = Hit{Triangle: int(p), T: t, U: u, V: v}
		}
	}
	return best, best.Triangle >= 0
}
