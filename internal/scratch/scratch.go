// Package scratch manages the run directory shared by every pipeline stage.
package scratch

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Dir is a run directory. A run owns it exclusively.
type Dir struct {
	path string
}

// Reset deletes path with everything in it and creates it empty.
func Reset(path string) (*Dir, error) {
	clean := filepath.Clean(path)
	if clean == "." || clean == string(filepath.Separator) || clean == "" {
		return nil, fmt.Errorf("refusing to reset %q", path)
	}
	if err := os.RemoveAll(clean); err != nil {
		return nil, fmt.Errorf("clearing %s: %w", clean, err)
	}
	if err := os.MkdirAll(clean, 0o755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", clean, err)
	}
	return &Dir{path: clean}, nil
}

// Path returns the directory path.
func (d *Dir) Path() string {
	return d.path
}

// Join returns the path of name inside the directory.
func (d *Dir) Join(name string) string {
	return filepath.Join(d.path, name)
}

// Unique returns a fresh file path with the given extension.
func (d *Dir) Unique(ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return d.Join(uuid.NewString() + ext)
}

// WriteAtomic writes data to name through a temporary file renamed into
// place, so name never holds partial content.
func (d *Dir) WriteAtomic(name string, write func(f *os.File) error) error {
	tmp, err := os.CreateTemp(d.path, "."+filepath.Base(name)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), d.Join(name))
}
