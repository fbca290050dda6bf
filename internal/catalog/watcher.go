package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/starford/kondate/internal/models"
	"github.com/starford/kondate/internal/storage"
)

// Event kinds passed to EventCallback.
const (
	EventCached  = "cached"
	EventRemoved = "removed"
)

// EventCallback is called after a watcher-driven catalog change with the
// row just indexed. For EventRemoved only rec.Key is set.
type EventCallback func(kind string, rec models.CachedRecipe)

// Watch starts an fsnotify watcher on the recipes directory and keeps the
// catalog in step with it until ctx is cancelled. Only <key>.json files are
// considered; the temp files of atomic writes are ignored and their final
// rename arrives as a Create of the target.
func Watch(ctx context.Context, db *DB, store storage.Provider, dir string, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("dir", dir))

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			key, isDoc := storage.KeyFromFilename(ev.Name)
			if !isDoc {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				if !store.Exists(key) {
					continue
				}
				row, idxErr := indexKey(db, store, key, time.Now())
				if idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("key", key), slog.String("error", idxErr.Error()))
					continue
				}
				logger.Debug("watcher: indexed", slog.String("key", key), slog.String("name", row.RecipeName))
				if cb != nil {
					cb(EventCached, row)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				if delErr := db.Delete(key); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("key", key), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("key", key))
				if cb != nil {
					cb(EventRemoved, models.CachedRecipe{Key: key})
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
