// Package storage defines the on-disk content store for recipe documents
// and thumbnail images.
package storage

import "github.com/starford/kondate/internal/models"

// Provider is the interface for recipe document operations. Documents are
// addressed by cache key and stored as <key>.json.
type Provider interface {
	// Exists reports whether a document is stored under key.
	Exists(key string) bool
	// Read returns the document stored under key.
	Read(key string) (*models.Document, error)
	// ReadRaw returns the stored bytes for key without decoding them.
	ReadRaw(key string) ([]byte, error)
	// Write atomically stores doc under key.
	Write(key string, doc *models.Document) error
	// List returns key, checksum and modification time for every stored document.
	List() ([]models.CachedRecipe, error)
}

// ImageStore is the interface for thumbnail operations. Thumbnails are
// addressed by the literal recipe name and stored as <name>.jpg.
type ImageStore interface {
	Exists(name string) bool
	Write(name string, jpeg []byte) error
}
