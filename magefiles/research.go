//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Research builds the CLI and prints the context block for query.
func Research(query string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "research", query)
}

// Snapshot researches query and saves the result under snapshots/.
func Snapshot(name, query string) error {
	mg.Deps(Build, Init)
	out := filepath.Join("snapshots", name+".yaml")
	return sh.RunV(filepath.Join(binDir, binName), "research", "--save", out, query)
}

// Classify prints the intent flags for message.
func Classify(message string) error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "classify", message)
}
