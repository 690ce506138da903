package math

import (
	"testing"
)

func TestVec2Cross(t *testing.T) {
	a := Vec2{1, 0}
	b := Vec2{0, 1}
	if got := a.Cross(b); got != 1 {
		t.Errorf("Vec2.Cross() = %v, want 1", got)
	}
	if got := b.Cross(a); got != -1 {
		t.Errorf("Vec2.Cross() = %v, want -1", got)
	}
}

func TestBarycentric(t *testing.T) {
	a, b, c := Vec2{0, 0}, Vec2{1, 0}, Vec2{0, 1}

	tests := []struct {
		name string
		p    Vec2
		want [3]float32
	}{
		{"vertex a", Vec2{0, 0}, [3]float32{1, 0, 0}},
		{"vertex b", Vec2{1, 0}, [3]float32{0, 1, 0}},
		{"vertex c", Vec2{0, 1}, [3]float32{0, 0, 1}},
		{"inside", Vec2{0.25, 0.25}, [3]float32{0.5, 0.25, 0.25}},
		{"outside", Vec2{1, 1}, [3]float32{-1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, ok := Barycentric(tt.p, a, b, c)
			if !ok {
				t.Fatal("expected non-degenerate triangle")
			}
			for i := range w {
				if absf(w[i]-tt.want[i]) > 1e-6 {
					t.Errorf("weight %d: got %f, want %f", i, w[i], tt.want[i])
				}
			}
		})
	}
}

func TestBarycentricDegenerate(t *testing.T) {
	if _, ok := Barycentric(Vec2{0.5, 0}, Vec2{0, 0}, Vec2{1, 0}, Vec2{2, 0}); ok {
		t.Error("collinear triangle should be degenerate")
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{3, 0, 4}.Normalize()
	if l := n.Length(); l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}
	if z := (Vec3{}).Normalize(); z != (Vec3{}) {
		t.Errorf("zero vector should normalize to zero, got %v", z)
	}
}

func TestInterpolate(t *testing.T) {
	got := Interpolate(Vec3{1, 0, 0}, Vec3{0, 1, 0}, Vec3{0, 0, 1}, [3]float32{0.2, 0.3, 0.5})
	want := Vec3{0.2, 0.3, 0.5}
	if got != want {
		t.Errorf("Interpolate() = %v, want %v", got, want)
	}
}
