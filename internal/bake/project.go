package bake

import (
	"context"
	gomath "math"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/texbake/internal/mesh"
	"github.com/Faultbox/texbake/pkg/math"
)

// HighPoly is one source object of a selected-to-active bake.
type HighPoly struct {
	Object Object
	Mesh   *mesh.Mesh

	// LowToHigh maps the low-poly object space into this object's space.
	LowToHigh math.Mat4

	// Pixels holds this object's locators: valid only where it won the
	// projection.
	Pixels []TexelLocator

	bvh        *mesh.BVH
	worldToObj math.Mat4
}

// NewHighPoly prepares a source object for projection against low, a low
// poly object with world matrix lowMatrix.
func NewHighPoly(obj Object, m *mesh.Mesh, lowMatrix math.Mat4, texels int) *HighPoly {
	inv := obj.Matrix().Inverse()
	return &HighPoly{
		Object:     obj,
		Mesh:       m,
		LowToHigh:  inv.Mul(lowMatrix),
		Pixels:     newLocators(texels),
		bvh:        mesh.BuildBVH(m),
		worldToObj: inv,
	}
}

const rayTolerance = 1e-4

// Projector casts rays from the low poly (or cage) surface onto the high poly
// sources.
type Projector struct {
	Low       *mesh.Mesh
	LowMatrix math.Mat4

	// Cage, when set, must have the same triangles as Low.
	Cage       *mesh.Mesh
	CageMatrix math.Mat4

	Extrusion   float32
	MaxDistance float32 // 0 means unlimited

	Sources []*HighPoly
	Workers int
}

// Project fills the per-source locator arrays from the low poly locators.
// Texels are independent: each writes only its own index in the winning array.
func (p *Projector) Project(ctx context.Context, low []TexelLocator) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(p.Workers))

	lowNormals := p.LowMatrix.NormalMatrix()
	cageNormals := p.CageMatrix.NormalMatrix()

	tMax := p.MaxDistance
	if tMax <= 0 {
		tMax = gomath.MaxFloat32
	}
	// Rounding in the object transforms can put the origin just behind a
	// coincident surface.
	tMin := float32(-rayTolerance) * max(1, p.Extrusion)

	const chunk = 4096
	for start := 0; start < len(low); start += chunk {
		start := start
		end := min(start+chunk, len(low))
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := start; i < end; i++ {
				loc := low[i]
				if !loc.Valid() {
					continue
				}
				r := p.ray(int(loc.PrimitiveID), loc.Weights(), lowNormals, cageNormals)
				p.castTexel(i, r, tMin, tMax)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if cerr := checkCancel(ctx); cerr != nil {
			return cerr
		}
		return err
	}
	return nil
}

// ray builds the world-space ray for a low poly surface point.
func (p *Projector) ray(tri int, w [3]float32, lowNormals, cageNormals math.Mat3) mesh.Ray {
	lowPoint := p.LowMatrix.TransformPoint(p.Low.Point(tri, w))
	if p.Cage == nil {
		n := lowNormals.MulVec3(p.Low.Normal(tri, w)).Normalize()
		return mesh.Ray{Origin: lowPoint.Add(n.Scale(p.Extrusion)), Direction: n.Neg()}
	}

	n := cageNormals.MulVec3(p.Cage.Normal(tri, w)).Normalize()
	origin := p.CageMatrix.TransformPoint(p.Cage.Point(tri, w)).Add(n.Scale(p.Extrusion))
	dir := lowPoint.Sub(origin)
	if dir.LengthSqr() < 1e-12 {
		dir = n.Neg()
	}
	return mesh.Ray{Origin: origin, Direction: dir.Normalize()}
}

// castTexel keeps the closest hit over all sources. Equal distances keep the
// earlier source.
func (p *Projector) castTexel(i int, world mesh.Ray, tMin, tMax float32) {
	best := -1
	var hit mesh.Hit
	for si, src := range p.Sources {
		// Directions are not renormalized, so t stays a world distance
		local := world.Transform(src.worldToObj)
		h, ok := src.bvh.Intersect(local, tMin, tMax)
		if !ok {
			continue
		}
		if best < 0 || h.T < hit.T {
			best, hit = si, h
		}
	}
	if best < 0 {
		return
	}
	p.Sources[best].Pixels[i] = TexelLocator{
		ObjectID:    int32(best),
		PrimitiveID: int32(hit.Triangle),
		U:           hit.U,
		V:           hit.V,
	}
}

// mergeSources returns, per texel, the locator of the source that won it.
func mergeSources(sources []*HighPoly, texels int) []TexelLocator {
	out := newLocators(texels)
	for _, src := range sources {
		for i, l := range src.Pixels {
			if l.Valid() {
				out[i] = l
			}
		}
	}
	return out
}
