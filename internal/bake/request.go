package bake

import (
	"fmt"
	"strings"

	"github.com/Faultbox/texbake/internal/imaging"
)

// PassType identifies the kind of data being baked.
type PassType string

// Bake passes.
const (
	PassCombined      PassType = "COMBINED"
	PassZ             PassType = "Z"
	PassColor         PassType = "COLOR"
	PassDiffuse       PassType = "DIFFUSE"
	PassSpecular      PassType = "SPECULAR"
	PassShadow        PassType = "SHADOW"
	PassAO            PassType = "AO"
	PassReflection    PassType = "REFLECTION"
	PassNormal        PassType = "NORMAL"
	PassVector        PassType = "VECTOR"
	PassRefraction    PassType = "REFRACTION"
	PassObjectIndex   PassType = "OBJECT_INDEX"
	PassUV            PassType = "UV"
	PassMist          PassType = "MIST"
	PassEmit          PassType = "EMIT"
	PassEnvironment   PassType = "ENVIRONMENT"
	PassMaterialIndex PassType = "MATERIAL_INDEX"
)

type passInfo struct {
	depth    int
	nonColor bool
}

var passes = map[PassType]passInfo{
	PassCombined:      {4, false},
	PassZ:             {1, true},
	PassColor:         {3, false},
	PassDiffuse:       {3, false},
	PassSpecular:      {3, false},
	PassShadow:        {3, false},
	PassAO:            {3, false},
	PassReflection:    {3, false},
	PassNormal:        {3, true},
	PassVector:        {4, true},
	PassRefraction:    {3, false},
	PassObjectIndex:   {1, true},
	PassUV:            {3, true},
	PassMist:          {1, false},
	PassEmit:          {3, false},
	PassEnvironment:   {3, false},
	PassMaterialIndex: {1, true},
}

// Passes lists every known pass in declaration order.
func Passes() []PassType {
	return []PassType{
		PassCombined, PassZ, PassColor, PassDiffuse, PassSpecular, PassShadow,
		PassAO, PassReflection, PassNormal, PassVector, PassRefraction,
		PassObjectIndex, PassUV, PassMist, PassEmit, PassEnvironment, PassMaterialIndex,
	}
}

// ParsePass accepts pass identifiers case-insensitively.
func ParsePass(s string) (PassType, error) {
	p := PassType(strings.ToUpper(s))
	if _, ok := passes[p]; !ok {
		return "", fmt.Errorf("%w: unknown bake type %q", ErrConfiguration, s)
	}
	return p, nil
}

// Depth returns the number of float channels per texel for the pass.
func (p PassType) Depth() int {
	return passes[p].depth
}

// NonColor reports whether the pass holds geometric or utility data that
// must bypass colorspace conversion.
func (p PassType) NonColor() bool {
	return passes[p].nonColor
}

// SaveMode selects where baked maps go.
type SaveMode string

const (
	SaveInternal SaveMode = "INTERNAL"
	SaveExternal SaveMode = "EXTERNAL"
)

// NormalSpace is the output space of a normal bake.
type NormalSpace string

const (
	SpaceWorld   NormalSpace = "WORLD"
	SpaceObject  NormalSpace = "OBJECT"
	SpaceTangent NormalSpace = "TANGENT"
)

// Axis is a signed axis used by the normal swizzle.
type Axis string

const (
	PosX Axis = "POS_X"
	PosY Axis = "POS_Y"
	PosZ Axis = "POS_Z"
	NegX Axis = "NEG_X"
	NegY Axis = "NEG_Y"
	NegZ Axis = "NEG_Z"
)

// IdentitySwizzle maps X, Y, Z to R, G, B unchanged.
var IdentitySwizzle = [3]Axis{PosX, PosY, PosZ}

func (a Axis) split() (index int, sign float32, ok bool) {
	switch a {
	case PosX:
		return 0, 1, true
	case PosY:
		return 1, 1, true
	case PosZ:
		return 2, 1, true
	case NegX:
		return 0, -1, true
	case NegY:
		return 1, -1, true
	case NegZ:
		return 2, -1, true
	}
	return 0, 0, false
}

// Request is the immutable configuration of one bake invocation.
type Request struct {
	Pass   PassType
	Margin int
	Clear  bool

	SplitMaterials   bool
	AutomaticName    bool
	SelectedToActive bool

	CageExtrusion  float32
	MaxRayDistance float32 // 0 means unlimited
	Cage           string  // Optional cage object name

	NormalSpace   NormalSpace
	NormalSwizzle [3]Axis

	// External output
	Width      int
	Height     int
	FilePath   string
	Format     imaging.Format
	ColorDepth int // Bits per channel: 8 or 16

	SaveMode SaveMode
}

// DefaultRequest returns the default bake settings.
func DefaultRequest() Request {
	return Request{
		Pass:          PassCombined,
		Margin:        16,
		NormalSpace:   SpaceTangent,
		NormalSwizzle: IdentitySwizzle,
		Width:         512,
		Height:        512,
		Format:        imaging.PNG,
		ColorDepth:    8,
		SaveMode:      SaveInternal,
	}
}

// Validate checks enums and ranges. Errors wrap ErrConfiguration.
func (r Request) Validate() error {
	if _, ok := passes[r.Pass]; !ok {
		return fmt.Errorf("%w: unknown bake type %q", ErrConfiguration, r.Pass)
	}
	if r.Margin < 0 {
		return fmt.Errorf("%w: margin must not be negative", ErrConfiguration)
	}
	if r.CageExtrusion < 0 {
		return fmt.Errorf("%w: cage extrusion must not be negative", ErrConfiguration)
	}
	if r.MaxRayDistance < 0 {
		return fmt.Errorf("%w: max ray distance must not be negative", ErrConfiguration)
	}

	switch r.NormalSpace {
	case SpaceWorld, SpaceObject, SpaceTangent:
	default:
		return fmt.Errorf("%w: unknown normal space %q", ErrConfiguration, r.NormalSpace)
	}
	for _, a := range r.NormalSwizzle {
		if _, _, ok := a.split(); !ok {
			return fmt.Errorf("%w: unknown normal swizzle axis %q", ErrConfiguration, a)
		}
	}

	switch r.SaveMode {
	case SaveInternal:
	case SaveExternal:
		if r.Width <= 0 || r.Height <= 0 {
			return fmt.Errorf("%w: output size must be positive, got %dx%d", ErrConfiguration, r.Width, r.Height)
		}
		if r.FilePath == "" {
			return fmt.Errorf("%w: output file path is empty", ErrConfiguration)
		}
		if _, err := imaging.ParseFormat(string(r.Format)); err != nil {
			return fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		if r.ColorDepth != 8 && r.ColorDepth != 16 {
			return fmt.Errorf("%w: color depth must be 8 or 16, got %d", ErrConfiguration, r.ColorDepth)
		}
	default:
		return fmt.Errorf("%w: unknown save mode %q", ErrConfiguration, r.SaveMode)
	}
	return nil
}

// tangentNormals reports whether the bake produces tangent-space normals.
func (r Request) tangentNormals() bool {
	return r.Pass == PassNormal && r.NormalSpace == SpaceTangent
}

// floatOutput reports whether external files store more than 8 bits.
func (r Request) floatOutput() bool {
	return r.ColorDepth > 8
}
