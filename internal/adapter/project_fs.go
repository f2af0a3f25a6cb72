// Package adapter contains the infrastructure adapters that back the gpgen
// domain layer: local file-system access, scene-file parsing, file-system
// notifications and tracker-state persistence.
package adapter

import (
	"os"
	"path/filepath"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

// ProjectFS abstracts the file-system operations the domain layer needs when
// reading project files and writing generated code. It hides direct `os`
// access so the generation logic can be tested against a temp directory and
// never grows hidden dependencies on the working directory.
type ProjectFS interface {
	// Exists reports whether a file or directory is present at path.
	Exists(path m.Path) bool

	// IsDir reports whether path exists and is a directory.
	IsDir(path m.Path) bool

	// MkdirAll creates a directory and any missing parents.
	MkdirAll(path m.Path) error

	// ReadFile loads a file from disk and returns its contents.
	ReadFile(path m.Path) ([]byte, error)

	// WriteFile writes content to a file, truncating any previous content.
	WriteFile(path m.Path, content []byte) error

	// Remove deletes the file at path. Absence is not an error.
	Remove(path m.Path) error

	// Rename moves a file from oldPath to newPath.
	Rename(oldPath, newPath m.Path) error

	// Walk traverses the tree rooted at root, calling fn for every entry.
	Walk(root m.Path, fn FilepathWalkFunc) error

	// RelPath returns the relative path from base to target.
	RelPath(base, target m.Path) (m.Path, error)

	// JoinPath joins path elements into a single path.
	JoinPath(elem ...string) m.Path
}

// FilepathWalkFunc mirrors the callback shape used by filepath.Walk. It is
// defined here to avoid leaking the standard-library type directly into the
// domain layer.
type FilepathWalkFunc func(path string, info os.FileInfo, err error) error

// LocalProjectFS is the os-backed ProjectFS implementation.
type LocalProjectFS struct{}

// NewLocalProjectFS constructs a LocalProjectFS ready to be wired into the
// orchestrator.
func NewLocalProjectFS() *LocalProjectFS {
	return &LocalProjectFS{}
}

// Exists reports whether a file or directory is present at path.
func (a *LocalProjectFS) Exists(path m.Path) bool {
	_, err := os.Stat(string(path))
	return err == nil
}

// IsDir reports whether path exists and is a directory.
func (a *LocalProjectFS) IsDir(path m.Path) bool {
	info, err := os.Stat(string(path))
	return err == nil && info.IsDir()
}

// MkdirAll creates a directory and any missing parents.
func (a *LocalProjectFS) MkdirAll(path m.Path) error {
	return os.MkdirAll(string(path), 0o750)
}

// ReadFile loads file contents from disk.
func (a *LocalProjectFS) ReadFile(path m.Path) ([]byte, error) {
	return os.ReadFile(string(path))
}

// WriteFile writes content to a file, truncating any previous content.
func (a *LocalProjectFS) WriteFile(path m.Path, content []byte) error {
	return os.WriteFile(string(path), content, 0o600)
}

// Remove deletes the file at path. A missing file is not an error.
func (a *LocalProjectFS) Remove(path m.Path) error {
	err := os.Remove(string(path))
	if err != nil && os.IsNotExist(err) {
		return nil
	}

	return err
}

// Rename moves a file from oldPath to newPath.
func (a *LocalProjectFS) Rename(oldPath, newPath m.Path) error {
	return os.Rename(string(oldPath), string(newPath))
}

// Walk traverses the tree rooted at root.
func (a *LocalProjectFS) Walk(root m.Path, fn FilepathWalkFunc) error {
	return filepath.Walk(string(root), func(path string, info os.FileInfo, err error) error {
		return fn(path, info, err)
	})
}

// RelPath returns the relative path from base to target.
func (a *LocalProjectFS) RelPath(base, target m.Path) (m.Path, error) {
	rel, err := filepath.Rel(string(base), string(target))
	if err != nil {
		return "", err
	}

	return m.Path(rel), nil
}

// JoinPath joins path elements into a single path.
func (a *LocalProjectFS) JoinPath(elem ...string) m.Path {
	return m.Path(filepath.Join(elem...))
}
