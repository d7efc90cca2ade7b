//go:build mage

package main

import (
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const distDir = "dist"

// Default target to run when none is specified
var Default = Build

// Build builds the glossa binary
func Build() error {
	return sh.RunV("go", "build", "-o", "glossa", "./cmd/glossa")
}

// Wasm builds the content script and copies the Go loader next to it
func Wasm() error {
	env := map[string]string{"GOOS": "js", "GOARCH": "wasm"}
	if err := sh.RunWithV(env, "go", "build", "-o", filepath.Join(distDir, "glossa.wasm"), "./cmd/glossa-wasm"); err != nil {
		return err
	}

	goroot, err := sh.Output("go", "env", "GOROOT")
	if err != nil {
		return err
	}
	return sh.Copy(filepath.Join(distDir, "wasm_exec.js"),
		filepath.Join(strings.TrimSpace(goroot), "lib", "wasm", "wasm_exec.js"))
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Install tests and installs glossa into GOPATH/bin
func Install() error {
	mg.Deps(Test)
	return sh.RunV("go", "install", "./cmd/glossa")
}

// Clean removes build artifacts
func Clean() error {
	if err := sh.Rm("glossa"); err != nil {
		return err
	}
	return sh.Rm(distDir)
}
