package scene

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/mesh"
)

var _ bake.Host = (*Scene)(nil)

func (s *Scene) object(obj bake.Object) (*Object, error) {
	o, ok := obj.(*Object)
	if !ok || o.scene != s {
		return nil, fmt.Errorf("%w: %s", ErrUnknownObject, obj.Name())
	}
	return o, nil
}

// EvaluateMesh triangulates the object and runs its active modifiers. The
// last active triangulate modifier picks the quad split; without one quads
// use the shorter diagonal.
func (s *Scene) EvaluateMesh(ctx context.Context, obj bake.Object) (*mesh.Mesh, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	o, err := s.object(obj)
	if err != nil {
		return nil, err
	}
	if !o.isMesh {
		return nil, fmt.Errorf("%w: %s", ErrNoMeshData, o.name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	quad := QuadBeauty
	for _, m := range o.modifiers {
		if m.kind == ModifierTriangulate && m.suspended == 0 {
			quad = m.quad
		}
	}
	out := o.geo.build(o.name, quad)
	for _, m := range o.modifiers {
		if m.suspended > 0 {
			continue
		}
		switch m.kind {
		case bake.ModifierEdgeSplit:
			splitEdges(out)
		case bake.ModifierMultires:
			displace(out, m.strength)
		}
	}

	s.live[out] = o
	s.log.Debug("mesh evaluated",
		zap.String("object", o.name),
		zap.Int("triangles", out.TriangleCount()),
		zap.String("quad", string(quad)))
	return out, nil
}

// ReleaseMesh frees an evaluated mesh.
func (s *Scene) ReleaseMesh(m *mesh.Mesh) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.live[m]; !ok {
		s.log.Warn("release of unknown mesh", zap.String("mesh", m.Name))
		return
	}
	delete(s.live, m)
}

// SuspendModifiers disables every modifier of kind on obj until restore is
// called. Objects without such modifiers get a no-op restore.
func (s *Scene) SuspendModifiers(obj bake.Object, kind bake.ModifierKind) (func(), error) {
	o, err := s.object(obj)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	var hit []*modifier
	for _, m := range o.modifiers {
		if m.kind == kind {
			m.suspended++
			hit = append(hit, m)
		}
	}
	s.mu.Unlock()

	if len(hit) > 0 {
		s.log.Debug("modifiers suspended",
			zap.String("object", o.name),
			zap.String("kind", string(kind)),
			zap.Int("count", len(hit)))
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for _, m := range hit {
				m.suspended--
			}
		})
	}, nil
}

// AddTriangulate appends a temporary fixed-split triangulate modifier.
func (s *Scene) AddTriangulate(obj bake.Object) (func(), error) {
	o, err := s.object(obj)
	if err != nil {
		return nil, err
	}
	if !o.isMesh {
		return nil, fmt.Errorf("%w: %s", ErrNoMeshData, o.name)
	}

	tmp := &modifier{kind: ModifierTriangulate, quad: QuadFixed, temporary: true}
	s.mu.Lock()
	o.modifiers = append(o.modifiers, tmp)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, m := range o.modifiers {
				if m == tmp {
					o.modifiers = append(o.modifiers[:i], o.modifiers[i+1:]...)
					break
				}
			}
		})
	}, nil
}

func (s *Scene) Renderable(obj bake.Object) bool {
	o, err := s.object(obj)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return o.render
}

func (s *Scene) SetRenderable(obj bake.Object, renderable bool) {
	o, err := s.object(obj)
	if err != nil {
		return
	}
	s.mu.Lock()
	o.render = renderable
	s.mu.Unlock()
}

// FindObject looks up an object by name.
func (s *Scene) FindObject(name string) (bake.Object, bool) {
	o, ok := s.byName[name]
	if !ok {
		return nil, false
	}
	return o, true
}
