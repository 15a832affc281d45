// Package safeio confines file operations to a fixed root directory.
package safeio

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Root resolves paths relative to a fixed directory and refuses traversal
// outside it.
type Root struct {
	abs string
}

// New binds all future operations to dir, creating it if needed.
func New(dir string) (*Root, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("safeio: empty root")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	abs, err = filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, err
	}
	return &Root{abs: abs}, nil
}

// Dir returns the absolute root directory.
func (r *Root) Dir() string {
	if r == nil {
		return ""
	}
	return r.abs
}

// ReadFile reads a file relative to the root.
func (r *Root) ReadFile(rel string) ([]byte, error) {
	p, err := r.resolve(rel)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(p)
}

// WriteFileAtomic writes content to a temp file in the target directory and
// renames it into place, so readers never observe a torn write.
func (r *Root) WriteFileAtomic(rel string, content []byte) error {
	p, err := r.resolve(rel)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, p); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}

// Remove deletes a file relative to the root. Missing files are not an error.
func (r *Root) Remove(rel string) error {
	p, err := r.resolve(rel)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (r *Root) resolve(rel string) (string, error) {
	if r == nil {
		return "", errors.New("safeio: root not configured")
	}
	rel = strings.TrimSpace(rel)
	if rel == "" {
		return "", errors.New("safeio: empty path")
	}
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) {
		return "", errors.New("safeio: absolute paths not allowed")
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.New("safeio: path traversal not allowed")
	}
	joined := filepath.Join(r.abs, clean)
	if !strings.HasPrefix(joined, r.abs+string(filepath.Separator)) && joined != r.abs {
		return "", fmt.Errorf("safeio: resolved outside root (root=%s, path=%s)", r.abs, joined)
	}
	return joined, nil
}
