// Package testutil provides test helpers for registry and command tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/opmodel/devenv/internal/environment"
	"github.com/opmodel/devenv/internal/registry"
)

// NewRegistry returns a registry rooted in a fresh temporary directory. The
// root itself is not created, as on a first run.
func NewRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	return registry.New(filepath.Join(t.TempDir(), "registry"))
}

// Seed stores cfg under id and records it in dir's index.
func Seed(t *testing.T, reg *registry.Registry, dir, id string, cfg *environment.Configuration) {
	t.Helper()
	if err := reg.Put(id, cfg); err != nil {
		t.Fatalf("failed to store %s: %v", id, err)
	}
	if err := reg.RegisterDirectory(dir, id); err != nil {
		t.Fatalf("failed to index %s under %s: %v", id, dir, err)
	}
}

// WriteFile creates a file with the given content in the specified directory.
func WriteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create parent dirs for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write file %s: %v", path, err)
	}
	return path
}

// Mkdir creates a directory, with parents, under dir.
func Mkdir(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", path, err)
	}
	return path
}

// Project creates a temporary project directory holding files (name to
// content) and empty directories.
func Project(t *testing.T, files map[string]string, dirs ...string) string {
	t.Helper()
	root := t.TempDir()
	for name, content := range files {
		WriteFile(t, root, name, content)
	}
	for _, d := range dirs {
		Mkdir(t, root, d)
	}
	return root
}
