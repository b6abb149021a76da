//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Build mg.Namespace

// Compiles the baker binary into bin/lume.
func (Build) Binary() error {
	return sh.RunV("go", "build", "-o", "bin/lume", ".")
}

// Runs go vet across the module.
func (Build) Vet() error {
	return sh.RunV("go", "vet", "./...")
}
