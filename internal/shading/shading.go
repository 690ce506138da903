// Package shading implements the built-in evaluator used when no external
// renderer is configured. It only produces data that needs no lighting:
// geometric passes, indices and flat material colors.
package shading

import (
	"context"
	"errors"
	"fmt"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/pkg/math"
)

// ErrUnsupportedPass is returned for passes that need a renderer.
var ErrUnsupportedPass = errors.New("pass not supported by the internal evaluator")

// Supported lists the passes the internal evaluator can produce.
var Supported = []bake.PassType{
	bake.PassNormal,
	bake.PassUV,
	bake.PassObjectIndex,
	bake.PassMaterialIndex,
	bake.PassColor,
	bake.PassEmit,
}

// Evaluator is the internal evaluator. The zero value is ready to use.
type Evaluator struct{}

// Name identifies the evaluator in logs.
func (Evaluator) Name() string {
	return "internal"
}

// Bake fills result for each valid locator of in.
func (Evaluator) Bake(ctx context.Context, in bake.EvalInput, result []float32) error {
	sample, err := sampler(in)
	if err != nil {
		return err
	}
	if len(result) < len(in.Pixels)*in.Depth {
		return fmt.Errorf("result buffer holds %d floats, need %d", len(result), len(in.Pixels)*in.Depth)
	}

	for i, loc := range in.Pixels {
		if !loc.Valid() {
			continue
		}
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		sample(int(loc.PrimitiveID), loc.Weights(), result[i*in.Depth:(i+1)*in.Depth])
	}
	return nil
}

type sampleFunc func(tri int, w [3]float32, out []float32)

func sampler(in bake.EvalInput) (sampleFunc, error) {
	m := in.Mesh
	switch in.Pass {
	case bake.PassNormal:
		nm := in.Object.Matrix().NormalMatrix()
		return func(tri int, w [3]float32, out []float32) {
			n := nm.MulVec3(m.Normal(tri, w)).Normalize()
			out[0], out[1], out[2] = n.X*0.5+0.5, n.Y*0.5+0.5, n.Z*0.5+0.5
		}, nil

	case bake.PassUV:
		return func(tri int, w [3]float32, out []float32) {
			uv := m.UV(tri, w)
			out[0], out[1], out[2] = uv.X, uv.Y, 0
		}, nil

	case bake.PassObjectIndex:
		idx := float32(in.Object.PassIndex())
		return func(_ int, _ [3]float32, out []float32) {
			out[0] = idx
		}, nil

	case bake.PassMaterialIndex:
		return func(tri int, _ [3]float32, out []float32) {
			out[0] = float32(m.Triangles[tri].Material)
		}, nil

	case bake.PassColor, bake.PassEmit:
		slots := in.Object.Materials()
		emit := in.Pass == bake.PassEmit
		return func(tri int, _ [3]float32, out []float32) {
			c := slotColor(slots, m.Triangles[tri].Material, emit)
			out[0], out[1], out[2] = c.X, c.Y, c.Z
		}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedPass, in.Pass)
}

// slotColor returns the base or emission color of a material slot. Missing
// slots are white base and black emission.
func slotColor(slots []bake.MaterialSlot, material int, emit bool) math.Vec3 {
	if material < 0 || material >= len(slots) {
		if emit {
			return math.Vec3{}
		}
		return math.Vec3{X: 1, Y: 1, Z: 1}
	}
	s := slots[material]
	if emit {
		return math.Vec3{X: s.Emission[0], Y: s.Emission[1], Z: s.Emission[2]}
	}
	return math.Vec3{X: s.Color[0], Y: s.Color[1], Z: s.Color[2]}
}
