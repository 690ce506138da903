package scene

// File is the on-disk scene description.
type File struct {
	Images   []ImageSpec  `yaml:"images"`
	Objects  []ObjectSpec `yaml:"objects"`
	Active   string       `yaml:"active"`
	Selected []string     `yaml:"selected"`
}

// ImageSpec declares an internal image. An image with a Path is loaded from
// disk; otherwise Width and Height create a blank buffer. An image with
// neither stays uninitialized.
type ImageSpec struct {
	Name       string `yaml:"name"`
	Path       string `yaml:"path"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Float      bool   `yaml:"float"`
	Colorspace string `yaml:"colorspace"`
}

// ObjectSpec declares a scene object. Mesh objects take geometry from an OBJ
// file or a built-in primitive.
type ObjectSpec struct {
	Name      string         `yaml:"name"`
	Type      string         `yaml:"type"` // "mesh" (default) or "empty"
	Mesh      string         `yaml:"mesh"`
	Primitive *PrimitiveSpec `yaml:"primitive"`
	Location  [3]float32     `yaml:"location"`
	Rotation  [3]float32     `yaml:"rotation"` // Euler XYZ in degrees
	Scale     [3]float32     `yaml:"scale"`    // zero means unit scale
	PassIndex int            `yaml:"pass_index"`
	Render    *bool          `yaml:"render"`
	Modifiers []ModifierSpec `yaml:"modifiers"`
	Materials []MaterialSpec `yaml:"materials"`
}

// PrimitiveSpec selects a built-in shape.
type PrimitiveSpec struct {
	Shape  string  `yaml:"shape"` // plane, cube or strips
	Size   float32 `yaml:"size"`
	Strips int     `yaml:"strips"`
}

// ModifierSpec is one entry of an object's modifier stack.
type ModifierSpec struct {
	Type       string  `yaml:"type"` // edge_split, multires or triangulate
	Strength   float32 `yaml:"strength"`
	QuadMethod string  `yaml:"quad_method"`
}

// MaterialSpec is one material slot.
type MaterialSpec struct {
	Name     string      `yaml:"name"`
	Image    string      `yaml:"image"`
	Color    *[4]float32 `yaml:"color"`
	Emission [3]float32  `yaml:"emission"`
}
