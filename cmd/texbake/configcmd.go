package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Faultbox/texbake/internal/config"
)

func cmdConfig(args []string) {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	asTOML := fs.Bool("toml", false, "Print TOML instead of YAML")
	fs.Parse(args)

	cfg, err := config.Load(flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	flags.Apply(cfg)

	if _, err := cfg.Request(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if fs.NArg() > 0 {
		if err := cfg.SaveTo(fs.Arg(0)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", fs.Arg(0))
		return
	}

	data, err := cfg.Marshal(*asTOML)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	os.Stdout.Write(data)
}
