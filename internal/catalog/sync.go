package catalog

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/kondate/internal/apperr"
	"github.com/starford/kondate/internal/checksum"
	"github.com/starford/kondate/internal/models"
	"github.com/starford/kondate/internal/storage"
)

// Sync walks the content store and brings the catalog up to date:
//   - new/changed documents are decoded and upserted
//   - documents removed from disk are deleted from the catalog
func Sync(db *DB, store storage.Provider, logger *slog.Logger) error {
	metas, err := store.List()
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Key] = struct{}{}

		if checksums[m.Key] == m.Checksum {
			continue
		}
		if _, err := indexKey(db, store, m.Key, m.UpdatedAt); err != nil {
			logger.Warn("sync: index failed", slog.String("key", m.Key), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("key", m.Key))
		}
	}

	for k := range checksums {
		if _, ok := disk[k]; !ok {
			if err := db.Delete(k); err != nil {
				logger.Warn("sync: delete failed", slog.String("key", k), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("key", k))
			}
		}
	}

	return nil
}

// indexKey reads one stored document, upserts its catalog row and returns
// the row.
func indexKey(db *DB, store storage.Provider, key string, updated time.Time) (models.CachedRecipe, error) {
	data, err := store.ReadRaw(key)
	if err != nil {
		return models.CachedRecipe{}, err
	}
	doc, err := models.ParseDocument(data)
	if err != nil {
		return models.CachedRecipe{}, fmt.Errorf("catalog: decode %s: %w", key, apperr.ErrCorruptData)
	}
	row := models.CachedRecipe{
		Key:         key,
		RecipeName:  doc.RecipeName(),
		Description: doc.Description(),
		Checksum:    checksum.Sum(data),
		UpdatedAt:   updated,
	}
	if err := db.Upsert(row); err != nil {
		return models.CachedRecipe{}, err
	}
	return row, nil
}
