//go:build mage

package main

import (
	"fmt"
	"path/filepath"
	"runtime"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default builds the CLI.
var Default = Build.Texbake

type Build mg.Namespace

// Builds cmd/texbake into bin/.
func (Build) Texbake() error {
	out := filepath.Join("bin", "texbake")
	if runtime.GOOS == "windows" {
		out += ".exe"
	}
	fmt.Printf("Building %s\n", out)
	return sh.RunV("go", "build", "-trimpath", "-o", out, "./cmd/texbake")
}

// Runs go mod tidy and then builds every package.
func (Build) All() error {
	if err := sh.Run("go", "mod", "tidy"); err != nil {
		return fmt.Errorf("failed to run go mod tidy: %w", err)
	}
	return sh.RunV("go", "build", "./...")
}

// Removes build output.
func Clean() error {
	return sh.Rm("bin")
}
