package bake

import (
	"context"

	"github.com/Faultbox/texbake/internal/mesh"
)

// guard collects undo actions for every temporary resource a bake creates and
// runs them in reverse order exactly once.
type guard struct {
	host  Host
	undo  []func()
	freed bool
}

func newGuard(host Host) *guard {
	return &guard{host: host}
}

func (g *guard) push(fn func()) {
	if fn != nil {
		g.undo = append(g.undo, fn)
	}
}

// release runs all undo actions, last first. Later calls do nothing.
func (g *guard) release() {
	if g.freed {
		return
	}
	g.freed = true
	for i := len(g.undo) - 1; i >= 0; i-- {
		g.undo[i]()
	}
	g.undo = nil
}

// evaluate evaluates obj and schedules the mesh for release.
func (g *guard) evaluate(ctx context.Context, obj Object) (*mesh.Mesh, error) {
	m, err := g.host.EvaluateMesh(ctx, obj)
	if err != nil {
		return nil, err
	}
	g.push(func() { g.host.ReleaseMesh(m) })
	return m, nil
}

// evaluateWithout evaluates obj with one modifier kind suspended. The
// modifiers are restored as soon as the snapshot exists.
func (g *guard) evaluateWithout(ctx context.Context, obj Object, kind ModifierKind) (*mesh.Mesh, error) {
	restore, err := g.host.SuspendModifiers(obj, kind)
	if err != nil {
		return nil, err
	}
	m, err := g.evaluate(ctx, obj)
	if restore != nil {
		restore()
	}
	return m, err
}

// triangulate adds a temporary triangulation modifier to obj.
func (g *guard) triangulate(obj Object) error {
	remove, err := g.host.AddTriangulate(obj)
	if err != nil {
		return err
	}
	g.push(remove)
	return nil
}

// setRenderable changes obj's render flag and schedules the old value.
func (g *guard) setRenderable(obj Object, renderable bool) {
	prev := g.host.Renderable(obj)
	g.host.SetRenderable(obj, renderable)
	g.push(func() { g.host.SetRenderable(obj, prev) })
}
