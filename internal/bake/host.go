package bake

import (
	"context"

	"github.com/Faultbox/texbake/internal/imaging"
	"github.com/Faultbox/texbake/internal/mesh"
	"github.com/Faultbox/texbake/pkg/math"
)

// MaterialSlot is one material slot of an object. Image is nil when the slot
// has no bound image.
type MaterialSlot struct {
	Name     string
	Image    Image
	Color    [4]float32
	Emission [3]float32
}

// Object is a scene object the pipeline can bake to or from.
type Object interface {
	Name() string
	IsMesh() bool
	Matrix() math.Mat4 // Object to world
	Materials() []MaterialSlot
	PassIndex() int
}

// Image is an internal image resource. Images are deduplicated by identity,
// so implementations must be comparable (typically pointers).
type Image interface {
	Name() string

	// Acquire locks the raster for exclusive use. It fails for images whose
	// buffer was never initialized.
	Acquire() (*imaging.Raster, error)
	Release(r *imaging.Raster, modified bool)
}

// ModifierKind names a modifier type the pipeline may suspend.
type ModifierKind string

const (
	ModifierEdgeSplit ModifierKind = "EDGE_SPLIT"
	ModifierMultires  ModifierKind = "MULTIRES"
)

// MeshEvaluator produces triangulated mesh snapshots after modifier
// evaluation. Every evaluated mesh must be released.
type MeshEvaluator interface {
	EvaluateMesh(ctx context.Context, obj Object) (*mesh.Mesh, error)
	ReleaseMesh(m *mesh.Mesh)
}

// ModifierStack applies reversible modifier edits. The returned functions
// undo the edit.
type ModifierStack interface {
	SuspendModifiers(obj Object, kind ModifierKind) (restore func(), err error)
	AddTriangulate(obj Object) (remove func(), err error)
}

// RenderVisibility exposes an object's render flag.
type RenderVisibility interface {
	Renderable(obj Object) bool
	SetRenderable(obj Object, renderable bool)
}

// ObjectFinder looks up objects by name.
type ObjectFinder interface {
	FindObject(name string) (Object, bool)
}

// Host bundles the scene collaborators.
type Host interface {
	MeshEvaluator
	ModifierStack
	RenderVisibility
	ObjectFinder
}

// EvalInput is one shading request. Pixels refer to triangles of Mesh.
type EvalInput struct {
	Object   Object
	ObjectID int
	Mesh     *mesh.Mesh
	Pixels   []TexelLocator
	Depth    int
	Pass     PassType
}

// Evaluator computes shading samples. Bake writes Depth floats per valid
// locator into result and must leave entries of invalid locators untouched.
type Evaluator interface {
	Name() string
	Bake(ctx context.Context, in EvalInput, result []float32) error
}

// ColorTransformer converts interleaved pixels between colorspaces in place.
type ColorTransformer interface {
	Transform(buf []float32, channels int, from, to imaging.Colorspace) error
}

// Encoder persists a raster to a file.
type Encoder interface {
	Encode(r *imaging.Raster, path string, f imaging.Format) error
}
