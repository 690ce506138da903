package config

import (
	"flag"
	"strings"
)

// Flags holds command-line overrides bound to a flag set.
type Flags struct {
	fs *flag.FlagSet

	Config string
	Debug  bool

	typ            string
	margin         int
	clear          bool
	selected       bool
	extrusion      float64
	maxRay         float64
	cage           string
	normalSpace    string
	normalSwizzle  string
	saveMode       string
	filePath       string
	format         string
	width          int
	height         int
	colorDepth     int
	splitMaterials bool
	automaticName  bool
	workers        int
	logFile        string
}

// RegisterFlags binds the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{fs: fs}
	fs.StringVar(&f.Config, "config", "", "Path to config file (.yaml or .toml)")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.StringVar(&f.logFile, "log-file", "", "Write logs to a rotating file")

	fs.StringVar(&f.typ, "type", "", "Bake pass type (COMBINED, NORMAL, UV, ...)")
	fs.IntVar(&f.margin, "margin", 0, "Dilation margin in pixels")
	fs.BoolVar(&f.clear, "clear", false, "Clear uncovered pixels before writing")
	fs.BoolVar(&f.selected, "selected-to-active", false, "Bake selected objects onto the active one")
	fs.Float64Var(&f.extrusion, "cage-extrusion", 0, "Ray origin offset along the low poly normal")
	fs.Float64Var(&f.maxRay, "max-ray-distance", 0, "Projection search range (0 = unlimited)")
	fs.StringVar(&f.cage, "cage", "", "Cage object name")
	fs.StringVar(&f.normalSpace, "normal-space", "", "Normal space: WORLD, OBJECT or TANGENT")
	fs.StringVar(&f.normalSwizzle, "normal-swizzle", "", "Normal swizzle, e.g. POS_X,NEG_Y,POS_Z")

	fs.StringVar(&f.saveMode, "save-mode", "", "INTERNAL or EXTERNAL")
	fs.StringVar(&f.filePath, "o", "", "Output file path for external saves")
	fs.StringVar(&f.format, "format", "", "Output format: PNG, JPEG, BMP, TIFF, TARGA")
	fs.IntVar(&f.width, "width", 0, "External output width")
	fs.IntVar(&f.height, "height", 0, "External output height")
	fs.IntVar(&f.colorDepth, "depth", 0, "Bits per channel: 8 or 16")
	fs.BoolVar(&f.splitMaterials, "split", false, "Write one file per material")
	fs.BoolVar(&f.automaticName, "auto-name", false, "Append object and pass names to the file name")
	fs.IntVar(&f.workers, "workers", 0, "Worker goroutines (0 = all CPUs)")
	return f
}

// Apply copies the flags that were set on the command line into cfg.
func (f *Flags) Apply(cfg *Config) {
	set := map[string]bool{}
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if set["log-file"] {
		cfg.Logging.LogFile = f.logFile
	}
	if set["type"] {
		cfg.Bake.Type = f.typ
	}
	if set["margin"] {
		cfg.Bake.Margin = f.margin
	}
	if set["clear"] {
		cfg.Bake.Clear = f.clear
	}
	if set["selected-to-active"] {
		cfg.Bake.SelectedToActive = f.selected
	}
	if set["cage-extrusion"] {
		cfg.Bake.CageExtrusion = float32(f.extrusion)
	}
	if set["max-ray-distance"] {
		cfg.Bake.MaxRayDistance = float32(f.maxRay)
	}
	if set["cage"] {
		cfg.Bake.Cage = f.cage
	}
	if set["normal-space"] {
		cfg.Bake.NormalSpace = f.normalSpace
	}
	if set["normal-swizzle"] {
		cfg.Bake.NormalSwizzle = strings.Split(f.normalSwizzle, ",")
	}
	if set["save-mode"] {
		cfg.Output.SaveMode = f.saveMode
	}
	if set["o"] {
		cfg.Output.FilePath = f.filePath
	}
	if set["format"] {
		cfg.Output.Format = f.format
	}
	if set["width"] {
		cfg.Output.Width = f.width
	}
	if set["height"] {
		cfg.Output.Height = f.height
	}
	if set["depth"] {
		cfg.Output.ColorDepth = f.colorDepth
	}
	if set["split"] {
		cfg.Output.SplitMaterials = f.splitMaterials
	}
	if set["auto-name"] {
		cfg.Output.AutomaticName = f.automaticName
	}
	if set["workers"] {
		cfg.Workers = f.workers
	}
}
