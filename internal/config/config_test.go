package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/imaging"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test bake defaults
	if cfg.Bake.Type != "COMBINED" {
		t.Errorf("expected type COMBINED, got %s", cfg.Bake.Type)
	}
	if cfg.Bake.Margin != 16 {
		t.Errorf("expected margin 16, got %d", cfg.Bake.Margin)
	}
	if cfg.Bake.Clear || cfg.Bake.SelectedToActive {
		t.Error("expected clear and selected_to_active to be off by default")
	}
	if cfg.Bake.NormalSpace != "TANGENT" {
		t.Errorf("expected normal space TANGENT, got %s", cfg.Bake.NormalSpace)
	}

	// Test output defaults
	if cfg.Output.Width != 512 || cfg.Output.Height != 512 {
		t.Errorf("expected 512x512, got %dx%d", cfg.Output.Width, cfg.Output.Height)
	}
	if cfg.Output.SaveMode != "INTERNAL" {
		t.Errorf("expected save mode INTERNAL, got %s", cfg.Output.SaveMode)
	}
	if cfg.Output.ColorDepth != 8 {
		t.Errorf("expected color depth 8, got %d", cfg.Output.ColorDepth)
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestDefaultRequest(t *testing.T) {
	req, err := Default().Request()
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if req != bake.DefaultRequest() {
		t.Errorf("expected default request %+v, got %+v", bake.DefaultRequest(), req)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "texbake.yaml")

	yamlContent := `
bake:
  type: normal
  margin: 4
  selected_to_active: true
  cage_extrusion: 0.1
  normal_space: object
  normal_swizzle: [POS_X, NEG_Y, POS_Z]

output:
  save_mode: external
  file_path: bakes/normal.png
  format: tiff
  color_depth: 16

logging:
  level: "debug"
  log_file: "bake.log"

workers: 3
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Bake.Margin != 4 {
		t.Errorf("expected margin 4, got %d", cfg.Bake.Margin)
	}
	if cfg.Output.Width != 512 {
		t.Errorf("expected width 512 kept from defaults, got %d", cfg.Output.Width)
	}
	if cfg.Workers != 3 {
		t.Errorf("expected 3 workers, got %d", cfg.Workers)
	}
	if cfg.Logging.LogFile != "bake.log" {
		t.Errorf("expected log file 'bake.log', got %s", cfg.Logging.LogFile)
	}

	req, err := cfg.Request()
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if req.Pass != bake.PassNormal || req.NormalSpace != bake.SpaceObject {
		t.Errorf("expected NORMAL in OBJECT space, got %s in %s", req.Pass, req.NormalSpace)
	}
	if req.NormalSwizzle != [3]bake.Axis{bake.PosX, bake.NegY, bake.PosZ} {
		t.Errorf("unexpected swizzle %v", req.NormalSwizzle)
	}
	if req.SaveMode != bake.SaveExternal || req.Format != imaging.TIFF || req.ColorDepth != 16 {
		t.Errorf("unexpected output %s %s %d", req.SaveMode, req.Format, req.ColorDepth)
	}
	if req.CageExtrusion != 0.1 || !req.SelectedToActive {
		t.Errorf("unexpected projection settings %v %v", req.CageExtrusion, req.SelectedToActive)
	}
}

func TestLoadFromTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "texbake.toml")

	tomlContent := `
workers = 2

[bake]
type = "UV"
margin = 0

[output]
width = 256
split_materials = true
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Bake.Type != "UV" || cfg.Bake.Margin != 0 {
		t.Errorf("expected UV with margin 0, got %s with %d", cfg.Bake.Type, cfg.Bake.Margin)
	}
	if cfg.Output.Width != 256 || cfg.Output.Height != 512 {
		t.Errorf("expected 256x512, got %dx%d", cfg.Output.Width, cfg.Output.Height)
	}
	if !cfg.Output.SplitMaterials || cfg.Workers != 2 {
		t.Errorf("expected split materials and 2 workers, got %v and %d", cfg.Output.SplitMaterials, cfg.Workers)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
bake:
  margin: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	err := loadFromFile(cfg, configPath)
	if err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	err := loadFromFile(cfg, "/nonexistent/path/texbake.yaml")
	if err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()

	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}

	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	os.Chdir(tmpDir)
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	// No config file exists - should return empty
	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, "texbake.yaml")
	if err := os.WriteFile(configPath, []byte("bake:\n  margin: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Error("expected to find texbake.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name   string
		args   []string
		verify func(t *testing.T, cfg *Config)
	}{
		{
			name: "debug flag",
			args: []string{"-debug"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
		},
		{
			name: "zero margin overrides default",
			args: []string{"-margin", "0"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Bake.Margin != 0 {
					t.Errorf("expected margin 0, got %d", cfg.Bake.Margin)
				}
			},
		},
		{
			name: "unset flags keep values",
			args: []string{"-type", "AO"},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Bake.Type != "AO" {
					t.Errorf("expected type AO, got %s", cfg.Bake.Type)
				}
				if cfg.Bake.Margin != 16 || cfg.Output.Width != 512 {
					t.Errorf("expected defaults kept, got margin %d width %d", cfg.Bake.Margin, cfg.Output.Width)
				}
			},
		},
		{
			name: "external output",
			args: []string{"-save-mode", "EXTERNAL", "-o", "out/map.tga", "-format", "tga", "-width", "64", "-height", "32", "-split"},
			verify: func(t *testing.T, cfg *Config) {
				o := cfg.Output
				if o.SaveMode != "EXTERNAL" || o.FilePath != "out/map.tga" || o.Format != "tga" {
					t.Errorf("unexpected output %+v", o)
				}
				if o.Width != 64 || o.Height != 32 || !o.SplitMaterials {
					t.Errorf("unexpected size or split %+v", o)
				}
			},
		},
		{
			name: "swizzle list",
			args: []string{"-normal-swizzle", "NEG_X,POS_Y,NEG_Z"},
			verify: func(t *testing.T, cfg *Config) {
				s := cfg.Bake.NormalSwizzle
				if len(s) != 3 || s[0] != "NEG_X" || s[2] != "NEG_Z" {
					t.Errorf("unexpected swizzle %v", s)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := flag.NewFlagSet("test", flag.ContinueOnError)
			flags := RegisterFlags(fs)
			if err := fs.Parse(tt.args); err != nil {
				t.Fatalf("parse failed: %v", err)
			}

			cfg := Default()
			flags.Apply(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "texbake.yaml")

	yamlContent := `
output:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	flags := RegisterFlags(fs)
	if err := fs.Parse([]string{"-config", configPath, "-width", "1920"}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	cfg, err := Load(flags.Config)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	flags.Apply(cfg)

	// Width should be from flag (1920), not file (1600)
	if cfg.Output.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Output.Width)
	}

	// Height should be from file (900) since no flag override
	if cfg.Output.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Output.Height)
	}
}

func TestRequestInvalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown pass", func(c *Config) { c.Bake.Type = "SHINY" }},
		{"unknown format", func(c *Config) { c.Output.Format = "webp" }},
		{"short swizzle", func(c *Config) { c.Bake.NormalSwizzle = []string{"POS_X"} }},
		{"bad axis", func(c *Config) { c.Bake.NormalSwizzle = []string{"POS_X", "POS_W", "POS_Z"} }},
		{"negative margin", func(c *Config) { c.Bake.Margin = -1 }},
		{"external without path", func(c *Config) { c.Output.SaveMode = "external" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if _, err := cfg.Request(); !errors.Is(err, bake.ErrConfiguration) {
				t.Errorf("expected configuration error, got %v", err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	for _, name := range []string{"out.yaml", "out.toml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)

			cfg := Default()
			cfg.Bake.Type = "EMIT"
			cfg.Bake.MaxRayDistance = 0.5
			cfg.Output.AutomaticName = true
			if err := cfg.SaveTo(path); err != nil {
				t.Fatalf("SaveTo failed: %v", err)
			}

			loaded, err := Load(path)
			if err != nil {
				t.Fatalf("failed to load saved config: %v", err)
			}
			if loaded.Bake.Type != "EMIT" || loaded.Bake.MaxRayDistance != 0.5 || !loaded.Output.AutomaticName {
				t.Errorf("expected saved values back, got %+v %+v", loaded.Bake, loaded.Output)
			}
			if len(loaded.Bake.NormalSwizzle) != 3 {
				t.Errorf("expected swizzle kept, got %v", loaded.Bake.NormalSwizzle)
			}
		})
	}
}
