package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/kondate/internal/apperr"
)

const thumbExt = ".jpg"

// Thumbs implements ImageStore backed by a flat directory of JPEG files
// named after the recipe (not its cache key).
type Thumbs struct {
	root string
}

// NewThumbs creates a thumbnail store rooted at an existing directory.
func NewThumbs(root string) (*Thumbs, error) {
	abs, err := resolveDir(root)
	if err != nil {
		return nil, err
	}
	return &Thumbs{root: abs}, nil
}

// Root returns the absolute thumbnail directory.
func (t *Thumbs) Root() string { return t.root }

// safeName rejects names that would leave the thumbnail directory.
func (t *Thumbs) safeName(name string) (string, error) {
	if name == "" || name == "." || strings.Contains(name, "..") ||
		strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("storage: %w: %q", apperr.ErrInvalidName, name)
	}
	return filepath.Join(t.root, name+thumbExt), nil
}

// Exists reports whether <name>.jpg is present.
func (t *Thumbs) Exists(name string) bool {
	p, err := t.safeName(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

// Write atomically stores an encoded JPEG as <name>.jpg.
func (t *Thumbs) Write(name string, jpeg []byte) error {
	p, err := t.safeName(name)
	if err != nil {
		return err
	}
	return writeAtomic(p, jpeg)
}

// EnsureDirs creates each directory (and parents) if absent.
func EnsureDirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("storage: create dir %s: %w", d, err)
		}
	}
	return nil
}
