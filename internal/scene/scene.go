// Package scene is a file-backed bake host. A scene file lists images,
// objects and the current selection; the scene evaluates object meshes
// through their modifier stacks and keeps track of every temporary mesh and
// modifier the pipeline creates.
package scene

import (
	"errors"
	"fmt"
	stdmath "math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/imaging"
	"github.com/Faultbox/texbake/internal/logger"
	"github.com/Faultbox/texbake/internal/mesh"
	"github.com/Faultbox/texbake/pkg/formats"
	"github.com/Faultbox/texbake/pkg/math"
)

// Scene errors.
var (
	ErrUnknownObject = errors.New("unknown object")
	ErrUnknownImage  = errors.New("unknown image")
	ErrDuplicateName = errors.New("duplicate name")
	ErrNoMeshData    = errors.New("object has no mesh data")
	ErrUninitialized = errors.New("image buffer not initialized")
)

// Scene holds the objects and images of one scene file.
type Scene struct {
	Path string

	mu       sync.Mutex
	objects  []*Object
	byName   map[string]*Object
	images   []*Image
	active   string
	selected []string
	live     map[*mesh.Mesh]*Object
	files    []string
	log      *zap.Logger
}

// Object is a scene object.
type Object struct {
	scene     *Scene
	name      string
	isMesh    bool
	matrix    math.Mat4
	passIndex int
	render    bool
	geo       geometry
	modifiers []*modifier
	slots     []bake.MaterialSlot
}

// Image is an internal image. Acquire holds its lock until Release.
type Image struct {
	name     string
	path     string
	lock     sync.Mutex
	raster   *imaging.Raster
	modified bool
}

// Load reads a scene file. Relative mesh and image paths resolve against the
// scene file's directory.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scene: %w", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing scene %s: %w", path, err)
	}
	s, err := New(f, filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	s.Path = path
	s.files = append([]string{path}, s.files...)
	return s, nil
}

// New builds a scene from a parsed description.
func New(f File, dir string) (*Scene, error) {
	s := &Scene{
		byName:   map[string]*Object{},
		live:     map[*mesh.Mesh]*Object{},
		active:   f.Active,
		selected: f.Selected,
		log:      logger.Named("scene"),
	}
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(dir, p)
	}

	images := map[string]*Image{}
	for _, spec := range f.Images {
		if _, dup := images[spec.Name]; dup {
			return nil, fmt.Errorf("%w: image %q", ErrDuplicateName, spec.Name)
		}
		img, err := newImage(spec, resolve(spec.Path))
		if err != nil {
			return nil, err
		}
		if img.path != "" {
			s.files = append(s.files, img.path)
		}
		images[spec.Name] = img
		s.images = append(s.images, img)
	}

	for _, spec := range f.Objects {
		if _, dup := s.byName[spec.Name]; dup {
			return nil, fmt.Errorf("%w: object %q", ErrDuplicateName, spec.Name)
		}
		o, err := s.newObject(spec, resolve(spec.Mesh), images)
		if err != nil {
			return nil, fmt.Errorf("object %q: %w", spec.Name, err)
		}
		if spec.Mesh != "" {
			s.files = append(s.files, resolve(spec.Mesh))
		}
		s.byName[o.name] = o
		s.objects = append(s.objects, o)
	}

	s.log.Debug("scene loaded",
		zap.Int("objects", len(s.objects)),
		zap.Int("images", len(s.images)))
	return s, nil
}

func newImage(spec ImageSpec, path string) (*Image, error) {
	cs := imaging.SRGB
	if spec.Colorspace != "" {
		var err error
		if cs, err = imaging.ParseColorspace(spec.Colorspace); err != nil {
			return nil, fmt.Errorf("image %q: %w", spec.Name, err)
		}
	}
	img := &Image{name: spec.Name, path: path}

	switch {
	case path != "":
		if _, err := os.Stat(path); err == nil {
			r, err := imaging.Load(path, spec.Float, cs)
			if err != nil {
				return nil, fmt.Errorf("image %q: %w", spec.Name, err)
			}
			img.raster = r
		} else if spec.Width > 0 && spec.Height > 0 {
			// Created on first save.
			img.raster = imaging.NewRaster(spec.Width, spec.Height, spec.Float, cs)
		}
	case spec.Width > 0 && spec.Height > 0:
		img.raster = imaging.NewRaster(spec.Width, spec.Height, spec.Float, cs)
	}
	return img, nil
}

func (s *Scene) newObject(spec ObjectSpec, meshPath string, images map[string]*Image) (*Object, error) {
	o := &Object{
		scene:     s,
		name:      spec.Name,
		isMesh:    spec.Type == "" || spec.Type == "mesh",
		passIndex: spec.PassIndex,
		render:    spec.Render == nil || *spec.Render,
	}
	if !o.isMesh && spec.Type != "empty" {
		return nil, fmt.Errorf("unknown object type %q", spec.Type)
	}

	scale := math.Vec3{X: spec.Scale[0], Y: spec.Scale[1], Z: spec.Scale[2]}
	if scale == (math.Vec3{}) {
		scale = math.Vec3{X: 1, Y: 1, Z: 1}
	}
	rot := math.Vec3{
		X: radians(spec.Rotation[0]),
		Y: radians(spec.Rotation[1]),
		Z: radians(spec.Rotation[2]),
	}
	loc := math.Vec3{X: spec.Location[0], Y: spec.Location[1], Z: spec.Location[2]}
	o.matrix = math.Compose(loc, rot, scale)

	var objMaterials []string
	if o.isMesh {
		switch {
		case meshPath != "":
			obj, err := formats.ParseOBJFile(meshPath)
			if err != nil {
				return nil, err
			}
			o.geo.obj = obj
			objMaterials = obj.Materials
		case spec.Primitive != nil:
			m, err := primitive(spec.Primitive)
			if err != nil {
				return nil, err
			}
			o.geo.prim = m
		default:
			return nil, ErrNoMeshData
		}
	}

	for _, ms := range spec.Modifiers {
		kind, err := parseModifierKind(ms.Type)
		if err != nil {
			return nil, err
		}
		quad, err := parseQuadMethod(ms.QuadMethod)
		if err != nil {
			return nil, err
		}
		o.modifiers = append(o.modifiers, &modifier{kind: kind, strength: ms.Strength, quad: quad})
	}

	for _, ms := range spec.Materials {
		slot := bake.MaterialSlot{Name: ms.Name, Color: [4]float32{1, 1, 1, 1}, Emission: ms.Emission}
		if ms.Color != nil {
			slot.Color = *ms.Color
		}
		if ms.Image != "" {
			img, ok := images[ms.Image]
			if !ok {
				return nil, fmt.Errorf("%w: %q in material %q", ErrUnknownImage, ms.Image, ms.Name)
			}
			slot.Image = img
		}
		o.slots = append(o.slots, slot)
	}
	if len(spec.Materials) == 0 {
		// Fall back to the usemtl names of the mesh file.
		for _, name := range objMaterials {
			o.slots = append(o.slots, bake.MaterialSlot{Name: name, Color: [4]float32{1, 1, 1, 1}})
		}
	}
	return o, nil
}

func radians(deg float32) float32 {
	return deg * stdmath.Pi / 180
}

// Objects returns the objects in file order.
func (s *Scene) Objects() []*Object {
	return append([]*Object(nil), s.objects...)
}

// Images returns the images in file order.
func (s *Scene) Images() []*Image {
	return append([]*Image(nil), s.images...)
}

// Files lists the files the scene was built from.
func (s *Scene) Files() []string {
	return append([]string(nil), s.files...)
}

// Active returns the active object named in the scene file.
func (s *Scene) Active() (*Object, error) {
	if s.active == "" {
		return nil, errors.New("scene has no active object")
	}
	o, ok := s.byName[s.active]
	if !ok {
		return nil, fmt.Errorf("%w: active %q", ErrUnknownObject, s.active)
	}
	return o, nil
}

// Selected returns the selected objects other than the active one. Unknown
// names are skipped.
func (s *Scene) Selected() []bake.Object {
	var out []bake.Object
	for _, name := range s.selected {
		if name == s.active {
			continue
		}
		o, ok := s.byName[name]
		if !ok {
			s.log.Warn("selected object not found", zap.String("object", name))
			continue
		}
		out = append(out, o)
	}
	return out
}

// LiveMeshes returns the names of objects with unreleased evaluated meshes.
func (s *Scene) LiveMeshes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for _, o := range s.live {
		names = append(names, o.name)
	}
	sort.Strings(names)
	return names
}

// Pending reports temporary or suspended modifiers that were never undone.
func (s *Scene) Pending() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, o := range s.objects {
		for _, m := range o.modifiers {
			if m.temporary {
				out = append(out, o.name+": temporary "+string(m.kind))
			}
			if m.suspended > 0 {
				out = append(out, o.name+": suspended "+string(m.kind))
			}
		}
	}
	return out
}

// SaveImages writes every modified image that has a file path and returns
// the paths written.
func (s *Scene) SaveImages(enc bake.Encoder) ([]string, error) {
	var written []string
	for _, img := range s.images {
		if !img.modified || img.path == "" {
			continue
		}
		f, err := imaging.ParseFormat(filepath.Ext(img.path))
		if err != nil {
			return written, fmt.Errorf("image %q: %w", img.name, err)
		}
		img.lock.Lock()
		err = enc.Encode(img.raster, img.path, f)
		if err == nil {
			img.modified = false
		}
		img.lock.Unlock()
		if err != nil {
			return written, fmt.Errorf("saving image %q: %w", img.name, err)
		}
		s.log.Info("image saved", zap.String("image", img.name), zap.String("path", img.path))
		written = append(written, img.path)
	}
	return written, nil
}

func (o *Object) Name() string                   { return o.name }
func (o *Object) IsMesh() bool                   { return o.isMesh }
func (o *Object) Matrix() math.Mat4              { return o.matrix }
func (o *Object) Materials() []bake.MaterialSlot { return o.slots }
func (o *Object) PassIndex() int                 { return o.passIndex }

// Modifiers lists the modifier kinds in stack order.
func (o *Object) Modifiers() []bake.ModifierKind {
	kinds := make([]bake.ModifierKind, len(o.modifiers))
	for i, m := range o.modifiers {
		kinds[i] = m.kind
	}
	return kinds
}

func (i *Image) Name() string { return i.name }

// Path is the file the image loads from and saves to.
func (i *Image) Path() string { return i.path }

// Raster returns the image buffer without locking it.
func (i *Image) Raster() *imaging.Raster { return i.raster }

// Modified reports whether the image changed since it was loaded or saved.
func (i *Image) Modified() bool { return i.modified }

func (i *Image) Acquire() (*imaging.Raster, error) {
	if i.raster == nil {
		return nil, fmt.Errorf("%w: %s", ErrUninitialized, i.name)
	}
	i.lock.Lock()
	return i.raster, nil
}

func (i *Image) Release(_ *imaging.Raster, modified bool) {
	if modified {
		i.modified = true
	}
	i.lock.Unlock()
}
