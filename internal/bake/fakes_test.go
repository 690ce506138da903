package bake

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Faultbox/texbake/internal/imaging"
	"github.com/Faultbox/texbake/internal/mesh"
	"github.com/Faultbox/texbake/pkg/math"
)

type fakeImage struct {
	name     string
	raster   *imaging.Raster
	acquired int
	released int
	modified bool
}

func newFakeImage(name string, w, h int) *fakeImage {
	return &fakeImage{name: name, raster: imaging.NewRaster(w, h, false, imaging.Linear)}
}

func (i *fakeImage) Name() string { return i.name }

func (i *fakeImage) Acquire() (*imaging.Raster, error) {
	if i.raster == nil {
		return nil, errors.New("no buffer")
	}
	i.acquired++
	return i.raster, nil
}

func (i *fakeImage) Release(_ *imaging.Raster, modified bool) {
	i.released++
	if modified {
		i.modified = true
	}
}

// emptyImage acquires without error but has no buffer.
type emptyImage struct{ name string }

func (i *emptyImage) Name() string                      { return i.name }
func (i *emptyImage) Acquire() (*imaging.Raster, error) { return nil, nil }
func (i *emptyImage) Release(*imaging.Raster, bool)     {}

type fakeObject struct {
	name   string
	mesh   *mesh.Mesh
	matrix math.Mat4
	slots  []MaterialSlot
	index  int
	empty  bool // not a mesh
}

func newFakeObject(name string, m *mesh.Mesh, slots ...MaterialSlot) *fakeObject {
	return &fakeObject{name: name, mesh: m, matrix: math.Identity(), slots: slots}
}

func (o *fakeObject) Name() string              { return o.name }
func (o *fakeObject) IsMesh() bool              { return !o.empty }
func (o *fakeObject) Matrix() math.Mat4         { return o.matrix }
func (o *fakeObject) Materials() []MaterialSlot { return o.slots }
func (o *fakeObject) PassIndex() int            { return o.index }

// fakeHost tracks every temporary resource so tests can check for leaks.
type fakeHost struct {
	mu          sync.Mutex
	objects     map[string]*fakeObject
	live        map[*mesh.Mesh]string
	evaluations int
	suspended   map[string]int // object/kind -> active suspensions
	suspendLog  []string
	triangulate map[string]int
	render      map[string]bool
}

func newFakeHost(objects ...*fakeObject) *fakeHost {
	h := &fakeHost{
		objects:     map[string]*fakeObject{},
		live:        map[*mesh.Mesh]string{},
		suspended:   map[string]int{},
		triangulate: map[string]int{},
		render:      map[string]bool{},
	}
	for _, o := range objects {
		h.objects[o.name] = o
	}
	return h
}

func (h *fakeHost) EvaluateMesh(_ context.Context, obj Object) (*mesh.Mesh, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	o, ok := obj.(*fakeObject)
	if !ok || o.mesh == nil {
		return nil, errors.New("object has no mesh data")
	}
	cp := *o.mesh
	cp.Tangents = nil
	h.live[&cp] = o.name
	h.evaluations++
	return &cp, nil
}

func (h *fakeHost) ReleaseMesh(m *mesh.Mesh) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.live, m)
}

func (h *fakeHost) SuspendModifiers(obj Object, kind ModifierKind) (func(), error) {
	key := obj.Name() + "/" + string(kind)
	h.suspended[key]++
	h.suspendLog = append(h.suspendLog, key)
	return func() { h.suspended[key]-- }, nil
}

func (h *fakeHost) AddTriangulate(obj Object) (func(), error) {
	h.triangulate[obj.Name()]++
	return func() { h.triangulate[obj.Name()]-- }, nil
}

func (h *fakeHost) Renderable(obj Object) bool {
	v, ok := h.render[obj.Name()]
	return !ok || v
}

func (h *fakeHost) SetRenderable(obj Object, renderable bool) {
	h.render[obj.Name()] = renderable
}

func (h *fakeHost) FindObject(name string) (Object, bool) {
	o, ok := h.objects[name]
	return o, ok
}

// leaks describes any temporary state still held.
func (h *fakeHost) leaks() []string {
	var out []string
	for _, name := range h.live {
		out = append(out, "mesh of "+name)
	}
	for k, n := range h.suspended {
		if n != 0 {
			out = append(out, "suspended "+k)
		}
	}
	for k, n := range h.triangulate {
		if n != 0 {
			out = append(out, "triangulate on "+k)
		}
	}
	return out
}

// fakeEvaluator writes a constant color per object and records calls.
type fakeEvaluator struct {
	calls  []string
	colors map[string][]float32
	fail   error
	before func(ctx context.Context, call int)
}

func (e *fakeEvaluator) Name() string { return "fake" }

func (e *fakeEvaluator) Bake(ctx context.Context, in EvalInput, result []float32) error {
	e.calls = append(e.calls, in.Object.Name())
	if e.before != nil {
		e.before(ctx, len(e.calls))
	}
	if e.fail != nil {
		return e.fail
	}
	c := e.colors[in.Object.Name()]
	for i, l := range in.Pixels {
		if !l.Valid() {
			continue
		}
		for k := 0; k < in.Depth; k++ {
			v := float32(1)
			if k < len(c) {
				v = c[k]
			}
			result[i*in.Depth+k] = v
		}
	}
	return nil
}

// normalEvaluator writes encoded world-space normals.
type normalEvaluator struct{}

func (normalEvaluator) Name() string { return "normals" }

func (normalEvaluator) Bake(_ context.Context, in EvalInput, result []float32) error {
	nm := in.Object.Matrix().NormalMatrix()
	for i, l := range in.Pixels {
		if !l.Valid() {
			continue
		}
		n := nm.MulVec3(in.Mesh.Normal(int(l.PrimitiveID), l.Weights())).Normalize()
		encodeNormal(result[i*in.Depth:], n)
	}
	return nil
}

type fakeEncoder struct {
	paths  []string
	failOn string
	images map[string]*imaging.Raster
}

func (e *fakeEncoder) Encode(r *imaging.Raster, path string, _ imaging.Format) error {
	e.paths = append(e.paths, path)
	if e.failOn != "" && strings.Contains(path, e.failOn) {
		return errors.New("disk full")
	}
	if e.images == nil {
		e.images = map[string]*imaging.Raster{}
	}
	e.images[path] = r
	return nil
}
