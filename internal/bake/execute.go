package bake

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/mesh"
)

// executor drives the shading evaluator into one shared result buffer.
type executor struct {
	eval   Evaluator
	pass   PassType
	result []float32
	onCall func(done, total int)
}

func newExecutor(eval Evaluator, pass PassType, texels int) *executor {
	return &executor{
		eval:   eval,
		pass:   pass,
		result: make([]float32, texels*pass.Depth()),
	}
}

// direct bakes obj's own surface.
func (e *executor) direct(ctx context.Context, obj Object, m *mesh.Mesh, pixels []TexelLocator) error {
	if err := checkCancel(ctx); err != nil {
		return err
	}
	if countValid(pixels) == 0 {
		return fmt.Errorf("%w: object %q has no texels inside its UV layout", ErrExecution, obj.Name())
	}
	if err := e.call(ctx, obj, 0, m, pixels); err != nil {
		return err
	}
	if e.onCall != nil {
		e.onCall(1, 1)
	}
	return nil
}

// highPoly runs one evaluator call per source. A later source overwrites the
// texels it won, which are disjoint from every other source's.
func (e *executor) highPoly(ctx context.Context, sources []*HighPoly) error {
	log := logger.Named("bake")
	baked := 0
	for i, src := range sources {
		if err := checkCancel(ctx); err != nil {
			return err
		}
		n := countValid(src.Pixels)
		if n == 0 {
			log.Warn("skipping source without hits", zap.String("object", src.Object.Name()))
		} else {
			if err := e.call(ctx, src.Object, i, src.Mesh, src.Pixels); err != nil {
				return err
			}
			baked++
		}
		if e.onCall != nil {
			e.onCall(i+1, len(sources))
		}
	}
	if baked == 0 {
		return fmt.Errorf("%w: no selected object was hit by the projection", ErrExecution)
	}
	return nil
}

func (e *executor) call(ctx context.Context, obj Object, id int, m *mesh.Mesh, pixels []TexelLocator) error {
	in := EvalInput{
		Object:   obj,
		ObjectID: id,
		Mesh:     m,
		Pixels:   pixels,
		Depth:    e.pass.Depth(),
		Pass:     e.pass,
	}
	logger.Named("bake").Debug("evaluating",
		zap.String("evaluator", e.eval.Name()),
		zap.String("object", obj.Name()),
		zap.String("pass", string(e.pass)))

	if err := e.eval.Bake(ctx, in, e.result); err != nil {
		if cerr := checkCancel(ctx); cerr != nil {
			return cerr
		}
		return fmt.Errorf("%w: Problem baking object map %q: %v", ErrExecution, obj.Name(), err)
	}
	return nil
}
