// Package imagestore keeps card reference images as <card id>.png files in a
// flat directory and resolves them for the scan pipeline.
package imagestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Dir is a plain directory-backed store. Resolve stats the file on every
// call, which is fine for CLI tools and sync jobs.
type Dir struct {
	base string
}

// NewDir ensures the directory exists and returns a store over it.
func NewDir(base string) (*Dir, error) {
	if base == "" {
		return nil, errors.New("image dir is required")
	}
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("create image dir %s: %w", base, err)
	}
	return &Dir{base: base}, nil
}

// FileName returns the stored file name for a card id.
func FileName(cardID string) string {
	return cardID + ".png"
}

// Base returns the backing directory.
func (d *Dir) Base() string {
	return d.base
}

// Resolve returns the reference image path for a card, or false when the
// image has not been downloaded yet. Absence is a normal outcome while the
// library is still syncing.
func (d *Dir) Resolve(cardID string) (string, bool) {
	path := filepath.Join(d.base, FileName(cardID))
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// Has reports whether a reference image exists for the card.
func (d *Dir) Has(cardID string) bool {
	_, ok := d.Resolve(cardID)
	return ok
}

// Save writes a reference image through a temp file and rename, so a reader
// never sees a half-written png. Returns the stored file name.
func (d *Dir) Save(cardID string, r io.Reader) (string, error) {
	name := FileName(cardID)
	tmp, err := os.CreateTemp(d.base, ".download-*")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write image %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp image: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(d.base, name)); err != nil {
		return "", fmt.Errorf("store image %s: %w", name, err)
	}
	return name, nil
}
