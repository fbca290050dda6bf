package catalog

import "github.com/starford/kondate/internal/models"

// Catalog is the read side used by the API and MCP layers.
type Catalog interface {
	List(limit, offset int, query string) ([]models.CachedRecipe, int, error)
	Get(key string) (*models.CachedRecipe, error)
	Count() (int, error)
}

// Verify *DB satisfies Catalog at compile time.
var _ Catalog = (*DB)(nil)
