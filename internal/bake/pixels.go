package bake

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Faultbox/texbake/internal/mesh"
	"github.com/Faultbox/texbake/pkg/math"
)

// TexelLocator maps one texel to a surface point. A negative PrimitiveID
// marks a texel no triangle covers. Barycentric weights are (1-U-V, U, V).
type TexelLocator struct {
	ObjectID    int32
	PrimitiveID int32
	U, V        float32
}

// Valid reports whether the locator references a triangle.
func (l TexelLocator) Valid() bool {
	return l.PrimitiveID >= 0
}

// Weights returns the barycentric weights of the locator.
func (l TexelLocator) Weights() [3]float32 {
	return mesh.Weights(l.U, l.V)
}

var invalidLocator = TexelLocator{ObjectID: -1, PrimitiveID: -1}

func newLocators(n int) []TexelLocator {
	out := make([]TexelLocator, n)
	for i := range out {
		out[i] = invalidLocator
	}
	return out
}

// countValid returns how many locators reference a triangle.
func countValid(pixels []TexelLocator) int {
	n := 0
	for _, l := range pixels {
		if l.Valid() {
			n++
		}
	}
	return n
}

func workerCount(n int) int {
	if n > 0 {
		return n
	}
	return runtime.GOMAXPROCS(0)
}

// BuildPixels resolves, for every texel of every surface, the triangle of m
// whose UV footprint contains the texel center. Texel (x, y) samples
// ((x+0.5)/w, (y+0.5)/h) and lands at Offset + y*w + x.
func BuildPixels(ctx context.Context, m *mesh.Mesh, t *Targets, workers int) ([]TexelLocator, error) {
	pixels := newLocators(t.Texels)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workerCount(workers))

	for si := range t.Surfaces {
		s := &t.Surfaces[si]
		surface := si
		index := mesh.NewUVIndex(m, func(tri int) bool {
			return t.surfaceOf(m.Triangles[tri].Material) == surface
		})
		if index.Len() == 0 {
			continue
		}

		const band = 16
		for y0 := 0; y0 < s.Height; y0 += band {
			y0 := y0
			y1 := min(y0+band, s.Height)
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				w, h := float32(s.Width), float32(s.Height)
				for y := y0; y < y1; y++ {
					row := s.Offset + y*s.Width
					for x := 0; x < s.Width; x++ {
						p := math.Vec2{X: (float32(x) + 0.5) / w, Y: (float32(y) + 0.5) / h}
						tri, u, v, ok := index.Locate(p)
						if !ok {
							continue
						}
						pixels[row+x] = TexelLocator{PrimitiveID: int32(tri), U: u, V: v}
					}
				}
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		if cerr := checkCancel(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	return pixels, nil
}
