package bake

import (
	"fmt"

	"github.com/Faultbox/texbake/internal/imaging"
)

// Surface is one destination raster of a bake.
type Surface struct {
	Width  int
	Height int
	Offset int // First texel of this surface in the shared arena

	// Image is the bound internal image, nil for surfaces synthesized in
	// external mode.
	Image Image

	// Name discriminates split external files.
	Name string

	Float      bool
	Colorspace imaging.Colorspace
}

// PixelCount returns width * height.
func (s *Surface) PixelCount() int {
	return s.Width * s.Height
}

// Targets is the resolved set of surfaces plus the slot-to-surface map.
type Targets struct {
	Surfaces []Surface
	SlotMap  []int // One entry per material slot, each < len(Surfaces)
	Texels   int   // Total texel count over all surfaces
}

// surfaceOf maps a triangle's material index to a surface, clamping
// out-of-range indices the way renderers treat missing slots.
func (t *Targets) surfaceOf(material int) int {
	if material < 0 {
		material = 0
	}
	if material >= len(t.SlotMap) {
		material = len(t.SlotMap) - 1
	}
	return t.SlotMap[material]
}

// ResolveTargets maps the material slots of obj to target surfaces.
// Internal images are locked briefly to read their dimensions.
func ResolveTargets(obj Object, req Request) (*Targets, error) {
	slots := obj.Materials()
	t := &Targets{}

	switch {
	case req.SaveMode == SaveExternal && !req.SplitMaterials:
		n := max(len(slots), 1)
		t.SlotMap = make([]int, n)
		t.Surfaces = []Surface{{
			Width:      req.Width,
			Height:     req.Height,
			Float:      req.floatOutput(),
			Colorspace: externalColorspace(req),
		}}

	case len(slots) == 0:
		if req.SaveMode == SaveExternal {
			return nil, fmt.Errorf("%w: No active image found. Add a material or bake without the Split Materials option", ErrMissingTarget)
		}
		return nil, fmt.Errorf("%w: No active image found. Add a material or bake to an external file", ErrMissingTarget)

	default:
		t.SlotMap = make([]int, len(slots))
		for i, slot := range slots {
			idx := -1
			if slot.Image != nil {
				for j := range t.Surfaces {
					if t.Surfaces[j].Image == slot.Image {
						idx = j
						break
					}
				}
			} else if req.SaveMode == SaveInternal {
				return nil, fmt.Errorf("%w: No active image found in material %q (%d) for object %q",
					ErrMissingTarget, slot.Name, i, obj.Name())
			}

			if idx < 0 {
				idx = len(t.Surfaces)
				t.Surfaces = append(t.Surfaces, Surface{Image: slot.Image, Name: surfaceName(slot, i)})
			}
			t.SlotMap[i] = idx
		}

		for i := range t.Surfaces {
			s := &t.Surfaces[i]
			if req.SaveMode == SaveExternal {
				s.Width, s.Height = req.Width, req.Height
				s.Float = req.floatOutput()
				s.Colorspace = externalColorspace(req)
				continue
			}
			if err := initInternal(s); err != nil {
				return nil, err
			}
		}
	}

	for i := range t.Surfaces {
		t.Surfaces[i].Offset = t.Texels
		t.Texels += t.Surfaces[i].PixelCount()
	}
	return t, nil
}

// initInternal copies size and storage from the image raster.
func initInternal(s *Surface) error {
	r, err := s.Image.Acquire()
	if err != nil || r == nil {
		return fmt.Errorf("%w: Not initialized image %s", ErrConfiguration, s.Image.Name())
	}
	s.Width, s.Height = r.Width, r.Height
	s.Float = r.Float
	s.Colorspace = r.Colorspace
	s.Image.Release(r, false)
	return nil
}

// surfaceName picks the image name, else the material name, else the slot
// number.
func surfaceName(slot MaterialSlot, index int) string {
	if slot.Image != nil && slot.Image.Name() != "" {
		return slot.Image.Name()
	}
	if slot.Name != "" {
		return slot.Name
	}
	return fmt.Sprintf("%03d", index%1000)
}

// externalColorspace is the colorspace of freshly encoded files. High depth
// files keep scene-linear data.
func externalColorspace(req Request) imaging.Colorspace {
	if req.Pass.NonColor() {
		return imaging.NonColor
	}
	if req.floatOutput() {
		return imaging.Linear
	}
	return imaging.SRGB
}
