// texbake bakes shading data of scene objects into textures.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/texbake/internal/bake"
	"github.com/Faultbox/texbake/internal/config"
	"github.com/Faultbox/texbake/internal/logger"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "bake":
		os.Exit(cmdBake(args))
	case "info":
		cmdInfo(args)
	case "watch":
		cmdWatch(args)
	case "config":
		cmdConfig(args)
	case "passes":
		cmdPasses()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`texbake - bake scene shading into textures

Usage:
  texbake <command> [options]

Commands:
  bake [options] <scene.yaml>    Bake the active object of a scene
  info <scene.yaml>              Show objects, materials and images
  watch [options] <scene.yaml>   Rebake whenever the scene or its files change
  config [options] [output]      Print or write the effective configuration
  passes                         List bake pass types

Examples:
  texbake bake -type NORMAL -normal-space TANGENT scene.yaml
  texbake bake -save-mode EXTERNAL -o bakes/ao.png -auto-name scene.yaml
  texbake watch -config texbake.toml scene.yaml
  texbake config -margin 4 texbake.yaml`)
}

// setup loads the configuration, applies flag overrides and starts logging.
func setup(flags *config.Flags) (*config.Config, bake.Request) {
	cfg, err := config.Load(flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	flags.Apply(cfg)

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	req, err := cfg.Request()
	if err != nil {
		logger.Error("invalid bake settings", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	logger.Sugar.Debugf("Config: %+v", cfg)
	return cfg, req
}

func cmdPasses() {
	for _, p := range bake.Passes() {
		kind := "color"
		if p.NonColor() {
			kind = "data"
		}
		fmt.Printf("  %-15s %d channel(s), %s\n", p, p.Depth(), kind)
	}
}
