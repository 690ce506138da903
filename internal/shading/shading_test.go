package shading

import (
	"context"
	"errors"
	"testing"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/mesh"
	"github.com/Faultbox/texbake/pkg/math"
)

type object struct {
	matrix    math.Mat4
	materials []bake.MaterialSlot
	index     int
}

func (o *object) Name() string                   { return "obj" }
func (o *object) IsMesh() bool                   { return true }
func (o *object) Matrix() math.Mat4              { return o.matrix }
func (o *object) Materials() []bake.MaterialSlot { return o.materials }
func (o *object) PassIndex() int                 { return o.index }

func input(pass bake.PassType, obj *object, m *mesh.Mesh) bake.EvalInput {
	return bake.EvalInput{
		Object: obj,
		Mesh:   m,
		Pass:   pass,
		Depth:  pass.Depth(),
		Pixels: []bake.TexelLocator{
			{PrimitiveID: 0, U: 0.25, V: 0.25},
			{ObjectID: -1, PrimitiveID: -1},
			{PrimitiveID: 1, U: 0.5, V: 0.25},
		},
	}
}

func TestNormalPassWorldSpace(t *testing.T) {
	obj := &object{matrix: math.RotateEuler(math.Vec3{X: 3.14159265 / 2})}
	in := input(bake.PassNormal, obj, mesh.NewPlane(1))
	result := make([]float32, 3*len(in.Pixels))
	for i := range result {
		result[i] = -7
	}

	if err := (Evaluator{}).Bake(context.Background(), in, result); err != nil {
		t.Fatalf("Bake failed: %v", err)
	}

	// +Z rotated 90 degrees about X points along -Y
	if d := result[1] - 0; d > 1e-4 || d < -1e-4 {
		t.Errorf("expected encoded Y of 0, got %f", result[1])
	}
	if result[3] != -7 || result[4] != -7 || result[5] != -7 {
		t.Errorf("invalid texel was written: %v", result[3:6])
	}
}

func TestMaterialAndObjectIndex(t *testing.T) {
	obj := &object{matrix: math.Identity(), index: 3}
	m := mesh.NewStrips(1, 2)
	in := input(bake.PassObjectIndex, obj, m)
	result := make([]float32, len(in.Pixels))
	if err := (Evaluator{}).Bake(context.Background(), in, result); err != nil {
		t.Fatalf("Bake failed: %v", err)
	}
	if result[0] != 3 || result[2] != 3 {
		t.Errorf("expected object index 3, got %v", result)
	}

	in = input(bake.PassMaterialIndex, obj, m)
	in.Pixels[2].PrimitiveID = 2
	result = make([]float32, len(in.Pixels))
	if err := (Evaluator{}).Bake(context.Background(), in, result); err != nil {
		t.Fatalf("Bake failed: %v", err)
	}
	if result[0] != 0 || result[2] != 1 {
		t.Errorf("expected material indices 0 and 1, got %v", result)
	}
}

func TestColorPass(t *testing.T) {
	obj := &object{
		matrix: math.Identity(),
		materials: []bake.MaterialSlot{
			{Name: "Red", Color: [4]float32{1, 0, 0, 1}, Emission: [3]float32{0, 0, 2}},
		},
	}
	in := input(bake.PassColor, obj, mesh.NewPlane(1))
	result := make([]float32, 3*len(in.Pixels))
	if err := (Evaluator{}).Bake(context.Background(), in, result); err != nil {
		t.Fatalf("Bake failed: %v", err)
	}
	if result[0] != 1 || result[1] != 0 {
		t.Errorf("expected red, got %v", result[:3])
	}

	in.Pass = bake.PassEmit
	if err := (Evaluator{}).Bake(context.Background(), in, result); err != nil {
		t.Fatalf("Bake failed: %v", err)
	}
	if result[2] != 2 {
		t.Errorf("expected emission blue 2, got %v", result[:3])
	}
}

func TestUnsupportedPass(t *testing.T) {
	obj := &object{matrix: math.Identity()}
	in := input(bake.PassAO, obj, mesh.NewPlane(1))
	err := (Evaluator{}).Bake(context.Background(), in, make([]float32, 3*len(in.Pixels)))
	if !errors.Is(err, ErrUnsupportedPass) {
		t.Errorf("expected ErrUnsupportedPass, got %v", err)
	}
}

func TestNormalPassObjectRoundTrip(t *testing.T) {
	m := mesh.NewPlane(1).Transformed(math.RotateEuler(math.Vec3{X: -0.3, Y: 0.7}))
	obj := &object{matrix: math.Compose(
		math.Vec3{X: 3.3, Y: -7.1, Z: 11.7},
		math.Vec3{X: 0.37, Y: 1.1, Z: -0.6},
		math.Vec3{X: 3, Y: 0.5, Z: 1.8},
	)}
	in := input(bake.PassNormal, obj, m)
	result := make([]float32, 3*len(in.Pixels))

	if err := (Evaluator{}).Bake(context.Background(), in, result); err != nil {
		t.Fatalf("Bake failed: %v", err)
	}
	c := &bake.NormalConverter{Space: bake.SpaceObject, Swizzle: bake.IdentitySwizzle, Matrix: obj.matrix}
	c.Convert(result, 3, in.Pixels)

	want := m.Triangles[0].Normals[0]
	for _, i := range []int{0, 2} {
		got := math.Vec3{X: result[3*i]*2 - 1, Y: result[3*i+1]*2 - 1, Z: result[3*i+2]*2 - 1}
		if got.Distance(want) > 1e-4 {
			t.Errorf("texel %d: expected object normal %v, got %v", i, want, got)
		}
	}
}
