//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, race, integration).
type Test mg.Namespace

// All runs all tests (unit and integration).
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs only unit tests, excluding the tests/ directory.
func (Test) Unit() error {
	pkgs, err := unitPackages()
	if err != nil {
		return err
	}
	if len(pkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	return sh.RunV(binGo, append([]string{"test", "-v"}, pkgs...)...)
}

// Race runs unit tests with the race detector; the store is shared by
// concurrent request handlers.
func (Test) Race() error {
	pkgs, err := unitPackages()
	if err != nil {
		return err
	}
	return sh.RunV(binGo, append([]string{"test", "-race"}, pkgs...)...)
}

// Integration builds first, then runs only integration tests.
func (Test) Integration() error {
	if _, err := os.Stat("tests"); os.IsNotExist(err) {
		fmt.Println("No integration test directory found (tests/).")
		return nil
	}
	mg.Deps(Build)
	return sh.RunV(binGo, "test", "-v", "./tests/...")
}

func unitPackages() ([]string, error) {
	out, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return nil, err
	}
	var pkgs []string
	for pkg := range strings.SplitSeq(out, "\n") {
		if pkg != "" && !strings.Contains(pkg, "/tests/") && !strings.HasSuffix(pkg, "/tests") {
			pkgs = append(pkgs, pkg)
		}
	}
	return pkgs, nil
}
