// Package testutil provides reusable test utilities for building throwaway vaults.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestVault represents a temporary vault for testing.
type TestVault struct {
	Path   string
	t      *testing.T
	config string
	files  map[string]string
	mtimes map[string]time.Time
}

// NewTestVault creates a new test vault builder.
// Call Build() to create the actual vault directory.
func NewTestVault(t *testing.T) *TestVault {
	t.Helper()
	return &TestVault{
		t:      t,
		files:  make(map[string]string),
		mtimes: make(map[string]time.Time),
	}
}

// WithFile adds a file to the vault.
// The path is relative to the vault root.
func (v *TestVault) WithFile(path, content string) *TestVault {
	v.files[path] = content
	return v
}

// WithModTime pins the modification time of a file added with WithFile.
func (v *TestVault) WithModTime(path string, mtime time.Time) *TestVault {
	v.mtimes[path] = mtime
	return v
}

// WithConfig sets the mdvault.yaml content for the vault.
func (v *TestVault) WithConfig(yaml string) *TestVault {
	v.config = yaml
	return v
}

// Build creates the vault directory and all configured files.
// Returns the TestVault for method chaining.
func (v *TestVault) Build() *TestVault {
	v.t.Helper()

	v.Path = v.t.TempDir()

	if v.config != "" {
		v.writeFile("mdvault.yaml", v.config)
	}

	for path, content := range v.files {
		v.writeFile(path, content)
	}

	for path, mtime := range v.mtimes {
		full := v.Abs(path)
		if err := os.Chtimes(full, mtime, mtime); err != nil {
			v.t.Fatalf("failed to set mtime on %s: %v", full, err)
		}
	}

	return v
}

// Abs returns the absolute path of a vault-relative path.
func (v *TestVault) Abs(relPath string) string {
	return filepath.Join(v.Path, filepath.FromSlash(relPath))
}

// WriteFile writes (or overwrites) a file in an already built vault.
func (v *TestVault) WriteFile(relPath, content string) {
	v.t.Helper()
	v.writeFile(relPath, content)
}

// ReadFile reads a file from the vault.
func (v *TestVault) ReadFile(relPath string) string {
	v.t.Helper()
	content, err := os.ReadFile(v.Abs(relPath))
	if err != nil {
		v.t.Fatalf("failed to read file %s: %v", relPath, err)
	}
	return string(content)
}

func (v *TestVault) writeFile(relPath, content string) {
	v.t.Helper()
	fullPath := v.Abs(relPath)

	dir := filepath.Dir(fullPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.t.Fatalf("failed to create directory %s: %v", dir, err)
	}

	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		v.t.Fatalf("failed to write file %s: %v", fullPath, err)
	}
}
