// Package config handles bake settings loading and management.
package config

// Config holds all texbake settings.
type Config struct {
	Bake    BakeConfig    `yaml:"bake" toml:"bake"`
	Output  OutputConfig  `yaml:"output" toml:"output"`
	Logging LoggingConfig `yaml:"logging" toml:"logging"`
	Workers int           `yaml:"workers" toml:"workers"` // 0 uses every CPU
}

// BakeConfig holds what to bake and how to sample it.
type BakeConfig struct {
	Type             string   `yaml:"type" toml:"type"`
	Margin           int      `yaml:"margin" toml:"margin"`
	Clear            bool     `yaml:"clear" toml:"clear"`
	SelectedToActive bool     `yaml:"selected_to_active" toml:"selected_to_active"`
	CageExtrusion    float32  `yaml:"cage_extrusion" toml:"cage_extrusion"`
	MaxRayDistance   float32  `yaml:"max_ray_distance" toml:"max_ray_distance"`
	Cage             string   `yaml:"cage" toml:"cage"`
	NormalSpace      string   `yaml:"normal_space" toml:"normal_space"`
	NormalSwizzle    []string `yaml:"normal_swizzle" toml:"normal_swizzle"`
}

// OutputConfig holds where baked maps are saved.
type OutputConfig struct {
	SaveMode       string `yaml:"save_mode" toml:"save_mode"`
	FilePath       string `yaml:"file_path" toml:"file_path"`
	Format         string `yaml:"format" toml:"format"`
	Width          int    `yaml:"width" toml:"width"`
	Height         int    `yaml:"height" toml:"height"`
	ColorDepth     int    `yaml:"color_depth" toml:"color_depth"`
	SplitMaterials bool   `yaml:"split_materials" toml:"split_materials"`
	AutomaticName  bool   `yaml:"automatic_name" toml:"automatic_name"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level" toml:"level"`
	LogFile string `yaml:"log_file" toml:"log_file"`
}

// Default returns a Config with the default bake settings.
func Default() *Config {
	return &Config{
		Bake: BakeConfig{
			Type:          "COMBINED",
			Margin:        16,
			NormalSpace:   "TANGENT",
			NormalSwizzle: []string{"POS_X", "POS_Y", "POS_Z"},
		},
		Output: OutputConfig{
			SaveMode:   "INTERNAL",
			Format:     "PNG",
			Width:      512,
			Height:     512,
			ColorDepth: 8,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
