package mesh

import (
	"github.com/Faultbox/texbake/pkg/math"
)

// Ray represents a ray in 3D space with origin and direction.
type Ray struct {
	Origin    math.Vec3
	Direction math.Vec3 // Not required to be normalized; t is in units of Direction
}

// At returns the point Origin + t*Direction.
func (r Ray) At(t float32) math.Vec3 {
	return r.Origin.Add(r.Direction.Scale(t))
}

// Transform returns the ray carried through an affine matrix. Distances along
// the transformed ray keep the same parameterization.
func (r Ray) Transform(m math.Mat4) Ray {
	return Ray{
		Origin:    m.TransformPoint(r.Origin),
		Direction: m.TransformDirection(r.Direction),
	}
}

// IntersectBounds tests ray intersection with an axis-aligned bounding box
// using the slab method, clipped to [tMin, tMax]. It returns the entry and
// exit parameters of the clipped interval.
func (r Ray) IntersectBounds(box Bounds, tMin, tMax float32) (enter, exit float32, hit bool) {
	enter, exit = tMin, tMax

	for axis := 0; axis < 3; axis++ {
		o := r.Origin.Axis(axis)
		d := r.Direction.Axis(axis)
		lo := box.Min.Axis(axis)
		hi := box.Max.Axis(axis)

		if d == 0 {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}

		t1 := (lo - o) / d
		t2 := (hi - o) / d
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > enter {
			enter = t1
		}
		if t2 < exit {
			exit = t2
		}
		if exit < enter {
			return 0, 0, false
		}
	}
	return enter, exit, true
}

// edgeTolerance pads the barycentric range so a point on an edge shared by
// two triangles hits at least one of them after rounding.
const edgeTolerance = 1e-5

// IntersectTriangle is a two-sided Möller-Trumbore test. On a hit it returns
// the ray parameter t and the barycentric weights u, v of corners b and c.
func (r Ray) IntersectTriangle(a, b, c math.Vec3) (t, u, v float32, hit bool) {
	const eps = 1e-9

	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Direction.Cross(e2)
	det := e1.Dot(p)
	if det > -eps && det < eps {
		return 0, 0, 0, false
	}
	inv := 1 / det

	s := r.Origin.Sub(a)
	u = s.Dot(p) * inv
	if u < -edgeTolerance || u > 1+edgeTolerance {
		return 0, 0, 0, false
	}

	q := s.Cross(e1)
	v = r.Direction.Dot(q) * inv
	if v < -edgeTolerance || u+v > 1+edgeTolerance {
		return 0, 0, 0, false
	}

	t = e2.Dot(q) * inv
	return t, u, v, true
}
