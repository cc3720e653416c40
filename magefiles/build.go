//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Build compiles the socialdb binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-o", binaryPath(), cmdDir)
}

// Serve builds the binary and runs the HTTP server in the foreground.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(binaryPath(), "serve")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(gopath, "bin", binaryName), binaryPath())
}

func binaryPath() string {
	return filepath.Join(binaryDir, binaryName)
}
