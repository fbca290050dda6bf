package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/starford/kondate/internal/apperr"
	"github.com/starford/kondate/internal/checksum"
	"github.com/starford/kondate/internal/models"
)

const docExt = ".json"

// FS implements Provider backed by a flat directory of JSON files.
type FS struct {
	root string // absolute path to the recipes directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := resolveDir(root)
	if err != nil {
		return nil, err
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute directory the provider is rooted at.
func (f *FS) Root() string { return f.root }

// docPath maps a cache key to its file. Keys that are not 8 lowercase hex
// characters are rejected, which also keeps paths inside root.
func (f *FS) docPath(key string) (string, error) {
	if !checksum.IsKey(key) {
		return "", fmt.Errorf("storage: %w: %q", apperr.ErrInvalidKey, key)
	}
	return filepath.Join(f.root, key+docExt), nil
}

// Exists reports whether <key>.json is present as a regular file.
func (f *FS) Exists(key string) bool {
	p, err := f.docPath(key)
	if err != nil {
		return false
	}
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

// ReadRaw returns the stored bytes of a document.
func (f *FS) ReadRaw(key string) ([]byte, error) {
	p, err := f.docPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("storage: read %s: %w", key, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("storage: read %s: %w", key, err)
	}
	return data, nil
}

// Read decodes the document stored under key. Any JSON object is accepted;
// its keys and values come back as they were written.
func (f *FS) Read(key string) (*models.Document, error) {
	data, err := f.ReadRaw(key)
	if err != nil {
		return nil, err
	}
	doc, err := models.ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("storage: decode %s: %w: %v", key, apperr.ErrCorruptData, err)
	}
	return doc, nil
}

// Write encodes doc with 4-space indentation, leaving non-ASCII and HTML
// characters unescaped, and writes it atomically.
func (f *FS) Write(key string, doc *models.Document) error {
	p, err := f.docPath(key)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("storage: encode %s: %w", key, err)
	}
	return writeAtomic(p, buf.Bytes())
}

// List returns metadata for every <key>.json file in root. Files whose stem
// is not a cache key are ignored.
func (f *FS) List() ([]models.CachedRecipe, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, fmt.Errorf("storage: list: %w", err)
	}
	var out []models.CachedRecipe
	for _, e := range entries {
		key, ok := KeyFromFilename(e.Name())
		if !ok || !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		data, err := os.ReadFile(filepath.Join(f.root, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("storage: list: %w", err)
		}
		out = append(out, models.CachedRecipe{
			Key:       key,
			Checksum:  checksum.Sum(data),
			UpdatedAt: info.ModTime(),
		})
	}
	return out, nil
}

// KeyFromFilename returns the cache key of a document filename such as
// "0a1b2c3d.json".
func KeyFromFilename(name string) (string, bool) {
	stem, ok := strings.CutSuffix(filepath.Base(name), docExt)
	if !ok || !checksum.IsKey(stem) {
		return "", false
	}
	return stem, true
}

// writeAtomic writes content: tmp file → fsync → rename.
func writeAtomic(abs string, content []byte) error {
	dir := filepath.Dir(abs)
	tmp, err := os.CreateTemp(dir, ".kondate-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
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
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod: %w", err)
	}
	if err := os.Rename(tmpName, abs); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

func resolveDir(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return abs, nil
}
