//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the socialdb project using Mage.
//
// Usage:
//
//	mage build             Compile the socialdb binary to bin/
//	mage test:all          Run all tests (unit + integration)
//	mage test:unit         Run only unit tests (exclude integration)
//	mage test:race         Run unit tests with the race detector
//	mage test:integration  Run only integration tests (builds first)
//	mage lint              Run go vet and golangci-lint
//	mage serve             Build and run socialdb serve
//	mage clean             Remove build artifacts
//	mage install           Install socialdb to GOPATH/bin
package main

const (
	binGo      = "go"
	binaryName = "socialdb"
	binaryDir  = "bin"
	cmdDir     = "./cmd/socialdb"
)
