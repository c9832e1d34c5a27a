// Package testutil provides testing utilities for cargodeck tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"
)

// SkipIfNoShell skips tests that drive shell scripts standing in for cargo.
func SkipIfNoShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake cargo scripts need a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping test")
	}
}

// FakeCargo writes an executable shell script named cargo whose body is
// body, and returns its path. The script is removed with the test.
func FakeCargo(t *testing.T, body string) string {
	t.Helper()
	SkipIfNoShell(t)

	path := filepath.Join(t.TempDir(), "cargo")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("failed to write fake cargo: %v", err)
	}
	return path
}

// SetupTestProject creates a directory holding a minimal Cargo.toml for a
// package called name. Returns the project root.
func SetupTestProject(t *testing.T, name string) string {
	t.Helper()
	return SetupTestProjectWithContent(t, name, nil)
}

// SetupTestProjectWithContent creates a test project with additional files.
// The files map contains relative paths to file contents.
func SetupTestProjectWithContent(t *testing.T, name string, files map[string]string) string {
	t.Helper()

	dir := filepath.Join(t.TempDir(), name)
	manifest := "[package]\nname = \"" + name + "\"\nversion = \"0.1.0\"\nedition = \"2021\"\n"
	WriteFile(t, dir, "Cargo.toml", manifest)
	for path, content := range files {
		WriteFile(t, dir, path, content)
	}
	return dir
}

// WriteFile creates or replaces root/path, creating parent directories.
func WriteFile(t *testing.T, root, path, content string) {
	t.Helper()

	fullPath := filepath.Join(root, path)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", path, err)
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
}
