// Package bake turns surface samples into baked texture maps. It resolves
// target images per material slot, maps texels to mesh surface points,
// optionally projects them onto high poly sources, drives a shading
// evaluator and writes the results with margin dilation and colorspace
// conversion.
package bake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/job"
	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/mesh"
)

// Pipeline holds the collaborators of a bake. A Pipeline may run many bakes
// but Run must not be called concurrently on the same scene.
type Pipeline struct {
	Host Host

	// Evaluator is used when set; Fallback otherwise.
	Evaluator Evaluator
	Fallback  Evaluator

	Transformer ColorTransformer
	Encoder     Encoder

	Workers int

	// Progress, when set, receives the completion fraction.
	Progress func(float32)
}

func (p *Pipeline) evaluator() Evaluator {
	if p.Evaluator != nil {
		return p.Evaluator
	}
	return p.Fallback
}

func (p *Pipeline) progress(f float32) {
	if p.Progress != nil {
		p.Progress(f)
	}
}

// Phase weights for progress reporting.
const (
	progressPixels  = 0.10
	progressProject = 0.25
	progressExecute = 0.80
)

// Run bakes active, sampling from selected when the request bakes selected
// to active. It blocks until the bake finishes, fails or ctx is cancelled.
// Every temporary resource is released before Run returns.
func (p *Pipeline) Run(ctx context.Context, req Request, active Object, selected []Object) Result {
	var res Result
	log := logger.Named("bake")
	start := time.Now()

	err := p.run(ctx, req, active, selected, &res)
	if err != nil {
		res.fail(err)
	}

	fields := []zap.Field{
		zap.String("status", res.Status.String()),
		zap.String("pass", string(req.Pass)),
		zap.Int("written", len(res.Written)),
		zap.Duration("elapsed", time.Since(start)),
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	log.Info("bake finished", fields...)
	return res
}

func (p *Pipeline) run(ctx context.Context, req Request, active Object, selected []Object, res *Result) error {
	if err := req.Validate(); err != nil {
		return err
	}
	eval := p.evaluator()
	if eval == nil {
		return fmt.Errorf("%w: no shading evaluator available", ErrConfiguration)
	}
	if p.Host == nil {
		return fmt.Errorf("%w: no scene host", ErrConfiguration)
	}
	if active == nil || !active.IsMesh() {
		return fmt.Errorf("%w: no active mesh object", ErrConfiguration)
	}
	if req.SaveMode == SaveExternal && p.Encoder == nil {
		return fmt.Errorf("%w: no image encoder for external save", ErrConfiguration)
	}

	var sources []Object
	var cage Object
	if req.SelectedToActive {
		for _, obj := range selected {
			if obj != active && obj.IsMesh() {
				sources = append(sources, obj)
			}
		}
		if len(sources) == 0 {
			return fmt.Errorf("%w: No valid selected objects", ErrConfiguration)
		}
		if req.Cage != "" {
			obj, ok := p.Host.FindObject(req.Cage)
			if !ok || !obj.IsMesh() || obj == active {
				return fmt.Errorf("%w: No valid cage object", ErrConfiguration)
			}
			cage = obj
		}
	}

	targets, err := ResolveTargets(active, req)
	if err != nil {
		return err
	}

	g := newGuard(p.Host)
	defer g.release()

	if err := checkCancel(ctx); err != nil {
		return err
	}

	// Low poly snapshot. Without a cage, projection uses the unsplit surface.
	var low *mesh.Mesh
	if req.SelectedToActive && cage == nil {
		low, err = g.evaluateWithout(ctx, active, ModifierEdgeSplit)
	} else {
		low, err = g.evaluate(ctx, active)
	}
	if err != nil {
		return evalError(ctx, active, err)
	}

	pixels, err := BuildPixels(ctx, low, targets, p.Workers)
	if err != nil {
		return err
	}
	p.progress(progressPixels)
	logger.Named("bake").Debug("pixels built",
		zap.String("object", active.Name()),
		zap.Int("surfaces", len(targets.Surfaces)),
		zap.Int("texels", targets.Texels),
		zap.Int("covered", countValid(pixels)))

	exec := newExecutor(eval, req.Pass, targets.Texels)
	tangentMesh, tangentPixels := low, pixels
	baked := pixels

	if req.SelectedToActive {
		proj := &Projector{
			Low:         low,
			LowMatrix:   active.Matrix(),
			Extrusion:   req.CageExtrusion,
			MaxDistance: req.MaxRayDistance,
			Workers:     p.Workers,
		}

		if cage != nil {
			cm, err := g.evaluate(ctx, cage)
			if err != nil {
				return evalError(ctx, cage, err)
			}
			if cm.TriangleCount() != low.TriangleCount() {
				return fmt.Errorf("%w: Invalid cage object, the cage mesh must have the same number of faces as the active object", ErrConfiguration)
			}
			proj.Cage, proj.CageMatrix = cm, cage.Matrix()
			g.setRenderable(cage, false)
		}

		g.setRenderable(active, false)
		for _, obj := range sources {
			if err := checkCancel(ctx); err != nil {
				return err
			}
			if err := g.triangulate(obj); err != nil {
				return fmt.Errorf("%w: triangulating %q: %v", ErrConfiguration, obj.Name(), err)
			}
			hm, err := g.evaluate(ctx, obj)
			if err != nil {
				return evalError(ctx, obj, err)
			}
			g.setRenderable(obj, true)
			proj.Sources = append(proj.Sources, NewHighPoly(obj, hm, proj.LowMatrix, targets.Texels))
		}

		if err := proj.Project(ctx, pixels); err != nil {
			return err
		}
		p.progress(progressProject)

		exec.onCall = func(done, total int) {
			p.progress(progressProject + (progressExecute-progressProject)*float32(done)/float32(total))
		}
		if err := exec.highPoly(ctx, proj.Sources); err != nil {
			return err
		}
		baked = mergeSources(proj.Sources, targets.Texels)
	} else {
		if req.tangentNormals() {
			// Tangent frames come from the mesh without multires displacement
			tangentMesh, err = g.evaluateWithout(ctx, active, ModifierMultires)
			if err != nil {
				return evalError(ctx, active, err)
			}
			tangentPixels, err = BuildPixels(ctx, tangentMesh, targets, p.Workers)
			if err != nil {
				return err
			}
		}

		exec.onCall = func(done, total int) {
			p.progress(progressExecute)
		}
		if err := exec.direct(ctx, active, low, pixels); err != nil {
			return err
		}
	}

	if err := checkCancel(ctx); err != nil {
		return err
	}

	if req.Pass == PassNormal {
		conv := &NormalConverter{
			Space:   req.NormalSpace,
			Swizzle: req.NormalSwizzle,
			Matrix:  active.Matrix(),
		}
		if req.NormalSpace == SpaceTangent {
			conv.TangentMesh, conv.TangentPixels = tangentMesh, tangentPixels
		}
		conv.Convert(exec.result, req.Pass.Depth(), baked)
	}

	w := &Writer{
		Request:     req,
		Object:      active.Name(),
		Transformer: p.Transformer,
		Encoder:     p.Encoder,
	}
	if err := w.WriteAll(ctx, targets, exec.result, pixels, res); err != nil {
		return err
	}
	p.progress(1)
	return nil
}

func evalError(ctx context.Context, obj Object, err error) error {
	if cerr := checkCancel(ctx); cerr != nil {
		return cerr
	}
	if errors.Is(err, ErrConfiguration) || errors.Is(err, ErrExecution) {
		return err
	}
	return fmt.Errorf("%w: evaluating %q: %v", ErrExecution, obj.Name(), err)
}

// Start runs the bake as a background job admitted through gate.
func (p *Pipeline) Start(ctx context.Context, gate *job.Gate, req Request, active Object, selected []Object) (*job.Job[Result], error) {
	name := "bake"
	if active != nil {
		name = "bake " + active.Name()
	}
	return job.Start(ctx, gate, name, func(ctx context.Context, report func(float32)) Result {
		run := *p
		run.Progress = func(f float32) {
			report(f)
			p.progress(f)
		}
		return run.Run(ctx, req, active, selected)
	})
}
