package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/starford/kondate/internal/apperr"
	"github.com/starford/kondate/internal/models"
)

const (
	defaultLimit = 50
	maxLimit     = 500
)

// Upsert inserts or replaces a catalog row.
func (db *DB) Upsert(r models.CachedRecipe) error {
	if r.UpdatedAt.IsZero() {
		r.UpdatedAt = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO recipes (key, recipe_name, description, checksum, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			recipe_name = excluded.recipe_name,
			description = excluded.description,
			checksum    = excluded.checksum,
			updated_at  = excluded.updated_at
	`, r.Key, r.RecipeName, r.Description, r.Checksum, r.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("catalog: upsert %s: %w", r.Key, err)
	}
	return nil
}

// Delete removes a catalog row. Deleting a missing key is not an error.
func (db *DB) Delete(key string) error {
	if _, err := db.conn.Exec(`DELETE FROM recipes WHERE key = ?`, key); err != nil {
		return fmt.Errorf("catalog: delete %s: %w", key, err)
	}
	return nil
}

// Get returns one catalog row.
func (db *DB) Get(key string) (*models.CachedRecipe, error) {
	var r models.CachedRecipe
	err := db.conn.QueryRow(`
		SELECT key, recipe_name, description, checksum, updated_at
		FROM recipes WHERE key = ?
	`, key).Scan(&r.Key, &r.RecipeName, &r.Description, &r.Checksum, &r.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", key, err)
	}
	return &r, nil
}

// AllChecksums returns key → checksum for every row.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT key, checksum FROM recipes`)
	if err != nil {
		return nil, fmt.Errorf("catalog: all checksums: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var k, cs string
		if err := rows.Scan(&k, &cs); err != nil {
			return nil, err
		}
		out[k] = cs
	}
	return out, rows.Err()
}

// Count returns the number of catalogued recipes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM recipes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("catalog: count: %w", err)
	}
	return n, nil
}

// List returns a page of recipes, newest first, optionally filtered by a
// substring of the name or description, plus the total number of matches.
func (db *DB) List(limit, offset int, query string) ([]models.CachedRecipe, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	if offset < 0 {
		offset = 0
	}
	like := "%" + query + "%"

	var total int
	if err := db.conn.QueryRow(`
		SELECT count(*) FROM recipes
		WHERE recipe_name LIKE ? OR description LIKE ?
	`, like, like).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("catalog: list count: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT key, recipe_name, description, checksum, updated_at
		FROM recipes
		WHERE recipe_name LIKE ? OR description LIKE ?
		ORDER BY updated_at DESC, key
		LIMIT ? OFFSET ?
	`, like, like, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("catalog: list: %w", err)
	}
	defer rows.Close()

	out := []models.CachedRecipe{}
	for rows.Next() {
		var r models.CachedRecipe
		if err := rows.Scan(&r.Key, &r.RecipeName, &r.Description, &r.Checksum, &r.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, r)
	}
	return out, total, rows.Err()
}
