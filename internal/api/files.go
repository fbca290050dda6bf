package api

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FileHandler serves plain files from one flat directory.
type FileHandler struct {
	root string
	ext  string
}

// NewFileHandler creates a handler for files under root ending in ext.
func NewFileHandler(root, ext string) *FileHandler {
	return &FileHandler{root: filepath.Clean(root), ext: ext}
}

// safeName validates that the filename is a plain name (no path separators,
// no traversal) with the expected extension and returns its absolute path.
func (h *FileHandler) safeName(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("filename is required")
	}
	cleaned := filepath.Clean(name)
	if cleaned != filepath.Base(cleaned) || strings.Contains(cleaned, "..") {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	if h.ext != "" && filepath.Ext(cleaned) != h.ext {
		return "", fmt.Errorf("invalid filename: %s", name)
	}
	abs := filepath.Join(h.root, cleaned)
	if !strings.HasPrefix(abs, h.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("path escapes %s", h.root)
	}
	return abs, nil
}

// ServeFile handles GET <prefix>/{filename}.
func (h *FileHandler) ServeFile(w http.ResponseWriter, r *http.Request) {
	filename := pathParam(r, "filename")
	abs, err := h.safeName(filename)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if _, statErr := os.Stat(abs); os.IsNotExist(statErr) {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, abs)
}
