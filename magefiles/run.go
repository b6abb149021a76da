//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

type Run mg.Namespace

// Builds the baker and runs it with the default config.
func (Run) Demo() error {
	mg.Deps(Build.Binary)
	return sh.RunV("./bin/lume", "lume.toml")
}
