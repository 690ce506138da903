//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Test mg.Namespace

// Runs the unit tests.
func (Test) Unit() error {
	return sh.RunV("go", "test", "./...")
}

// Runs the internal package tests with the race detector.
func (Test) Race() error {
	return sh.RunV("go", "test", "-race", "./internal/...")
}

// Runs go vet and then the unit tests.
func (Test) All() {
	mg.SerialDeps(Vet, Test.Unit)
}

// Runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}
