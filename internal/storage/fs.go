package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"

	"github.com/starford/binsite/internal/apperr"
)

// Paths locates the files of a site on disk.
type Paths struct {
	Template string
	Bins     string
	// Output defaults to Template when empty.
	Output string
}

// FS implements Provider backed by the local file system.
type FS struct {
	template    string
	bins        string
	output      string
	atomicWrite bool
}

// NewFS creates a new FS provider. When atomicWrite is false the output is
// truncated and rewritten in place.
func NewFS(p Paths, atomicWrite bool) (*FS, error) {
	if p.Template == "" {
		return nil, fmt.Errorf("storage: template path is empty")
	}
	if p.Bins == "" {
		return nil, fmt.Errorf("storage: artifacts path is empty")
	}
	out := p.Output
	if out == "" {
		out = p.Template
	}
	f := &FS{atomicWrite: atomicWrite}
	for _, pair := range []struct {
		dst *string
		src string
	}{{&f.template, p.Template}, {&f.bins, p.Bins}, {&f.output, out}} {
		abs, err := filepath.Abs(pair.src)
		if err != nil {
			return nil, fmt.Errorf("storage: resolve %s: %w", pair.src, err)
		}
		*pair.dst = abs
	}
	return f, nil
}

// ReadTemplate reads the template document.
func (f *FS) ReadTemplate() ([]byte, error) {
	data, err := os.ReadFile(f.template)
	if err != nil {
		return nil, wrap("read template", err)
	}
	return data, nil
}

// ListArtifacts lists the artifacts directory. Files and subdirectories are
// both reported and nothing is filtered.
func (f *FS) ListArtifacts() ([]string, error) {
	dir, err := os.Open(f.bins)
	if err != nil {
		return nil, wrap("open artifacts dir", err)
	}
	defer dir.Close()

	// Readdirnames keeps the order the OS returns instead of sorting.
	names, err := dir.Readdirnames(-1)
	if err != nil {
		return nil, wrap("list artifacts", err)
	}
	return names, nil
}

// ReadOutput reads the current output document.
func (f *FS) ReadOutput() ([]byte, error) {
	data, err := os.ReadFile(f.output)
	if err != nil {
		return nil, wrap("read output", err)
	}
	return data, nil
}

// WriteOutput overwrites the output document, keeping the mode of an
// existing output and using 0644 for a new one. Atomic mode writes a temp
// file in the same directory, fsyncs it and replaces the output with it.
func (f *FS) WriteOutput(content []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(f.output); err == nil {
		mode = info.Mode().Perm()
	}

	if !f.atomicWrite {
		if err := os.WriteFile(f.output, content, mode); err != nil {
			return wrap("write output", err)
		}
		return nil
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.output), ".binsite-tmp-*")
	if err != nil {
		return wrap("create temp", err)
	}
	tmpName := tmp.Name()

	// Clean up on any failure path.
	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(content); err != nil {
		return wrap("write temp", err)
	}
	if err := tmp.Sync(); err != nil {
		return wrap("fsync", err)
	}
	if err := tmp.Close(); err != nil {
		return wrap("close temp", err)
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return wrap("chmod temp", err)
	}
	if err := atomic.ReplaceFile(tmpName, f.output); err != nil {
		return wrap("replace output", err)
	}
	success = true
	return nil
}

func wrap(op string, err error) error {
	if kind := apperr.Classify(err); kind != nil {
		return fmt.Errorf("storage: %s: %w: %w", op, kind, err)
	}
	return fmt.Errorf("storage: %s: %w", op, err)
}
