// Package atomicfile writes files through a temporary file in the target
// directory, which is renamed into place on Close. Readers never observe a
// partially written file.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is a temporary file that becomes path on Close.
type File struct {
	*os.File
	path   string
	closed bool
}

// New creates a temporary file next to path. The directory must exist.
func New(path string) (*File, error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("atomicfile: %w", err)
	}
	return &File{File: f, path: path}, nil
}

// Path returns the final destination.
func (f *File) Path() string {
	return f.path
}

// Close syncs and closes the temporary file and renames it to its final
// path. On failure the temporary file is removed.
func (f *File) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	tmp := f.File.Name()
	if err := f.File.Sync(); err != nil {
		_ = f.File.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("atomicfile: sync %s: %w", f.path, err)
	}
	if err := f.File.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomicfile: close %s: %w", f.path, err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomicfile: chmod %s: %w", f.path, err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomicfile: rename %s: %w", f.path, err)
	}
	return nil
}

// Abort closes and removes the temporary file, leaving any existing file at
// path untouched.
func (f *File) Abort() error {
	if f.closed {
		return nil
	}
	f.closed = true
	_ = f.File.Close()
	return os.Remove(f.File.Name())
}
