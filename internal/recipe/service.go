// Package recipe implements recipe suggestions and the read-through detail
// cache that sits in front of the oracle.
package recipe

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/kondate/internal/checksum"
	"github.com/starford/kondate/internal/metrics"
	"github.com/starford/kondate/internal/models"
	"github.com/starford/kondate/internal/storage"
)

// DefaultSuggestionCount is the number of overviews returned by Suggest.
const DefaultSuggestionCount = 2

// Oracle is the subset of the oracle client the service needs.
type Oracle interface {
	SuggestRecipes(ctx context.Context, ingredients []string, count int) ([]models.RecipeOverview, error)
	FetchRecipeDetail(ctx context.Context, name string) (*models.Document, error)
	FetchRecipeImage(ctx context.Context, name string) ([]byte, error)
}

// KeyFunc derives a cache key from a recipe name.
type KeyFunc func(name string) string

// Option configures the Service.
type Option func(*Service)

// WithSuggestionCount sets how many overviews Suggest asks for.
func WithSuggestionCount(n int) Option {
	return func(s *Service) { s.count = n }
}

// WithThumbnails enables thumbnail generation for suggested recipes and
// sets where thumbnails go.
func WithThumbnails(thumbs storage.ImageStore) Option {
	return func(s *Service) { s.thumbs = thumbs }
}

// WithKeyFunc replaces checksum.Key.
func WithKeyFunc(fn KeyFunc) Option {
	return func(s *Service) { s.key = fn }
}

// WithMetrics records cache and oracle metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service coordinates the oracle and the content store.
type Service struct {
	oracle  Oracle
	store   storage.Provider
	thumbs  storage.ImageStore // nil: thumbnails disabled
	key     KeyFunc
	count   int
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewService creates a new recipe service.
func NewService(oracle Oracle, store storage.Provider, opts ...Option) *Service {
	s := &Service{
		oracle: oracle,
		store:  store,
		key:    checksum.Key,
		count:  DefaultSuggestionCount,
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Key returns the cache key used for name.
func (s *Service) Key(name string) string {
	return s.key(name)
}

// GetDetail returns the recipe called name, from the content store when it
// is cached and from the oracle otherwise. Oracle documents are stored once
// and never revalidated or reshaped. The empty sentinel is returned but never stored,
// so the next call retries the oracle.
func (s *Service) GetDetail(ctx context.Context, name string) (*models.Document, error) {
	key := s.key(name)

	if s.store.Exists(key) {
		doc, err := s.store.Read(key)
		if err != nil {
			return nil, fmt.Errorf("recipe: read cached %s: %w", key, err)
		}
		s.metrics.CacheHit()
		s.logger.Debug("recipe: cache hit", slog.String("key", key), slog.String("name", name))
		return doc, nil
	}

	s.metrics.CacheMiss()
	s.logger.Debug("recipe: cache miss", slog.String("key", key), slog.String("name", name))

	start := time.Now()
	doc, err := s.oracle.FetchRecipeDetail(ctx, name)
	if err != nil {
		s.metrics.ObserveOracle("detail", "error", start)
		return nil, fmt.Errorf("recipe: fetch %q: %w", name, err)
	}
	if doc.IsEmpty() {
		s.metrics.ObserveOracle("detail", "empty", start)
		return doc, nil
	}
	s.metrics.ObserveOracle("detail", "ok", start)

	if err := s.store.Write(key, doc); err != nil {
		return nil, fmt.Errorf("recipe: store %s: %w", key, err)
	}
	s.logger.Info("recipe: cached", slog.String("key", key), slog.String("name", name))
	return doc, nil
}

// Suggest asks the oracle for fresh overviews every time; overviews are
// never cached. With thumbnails enabled, missing thumbnails are drawn
// before returning; thumbnail failures are logged only.
func (s *Service) Suggest(ctx context.Context, ingredients []string) ([]models.RecipeOverview, error) {
	start := time.Now()
	overviews, err := s.oracle.SuggestRecipes(ctx, ingredients, s.count)
	if err != nil {
		s.metrics.ObserveOracle("suggest", "error", start)
		return nil, fmt.Errorf("recipe: suggest: %w", err)
	}
	s.metrics.ObserveOracle("suggest", "ok", start)

	if s.thumbs != nil {
		names := make([]string, 0, len(overviews))
		for _, o := range overviews {
			names = append(names, o.Name)
		}
		s.FetchThumbnails(ctx, names)
	}
	return overviews, nil
}

// FetchThumbnails draws and stores a thumbnail for every name that does not
// have one yet. It returns the names that were written.
func (s *Service) FetchThumbnails(ctx context.Context, names []string) []string {
	if s.thumbs == nil {
		return nil
	}
	var written []string
	for _, name := range names {
		if name == "" || s.thumbs.Exists(name) {
			continue
		}
		start := time.Now()
		img, err := s.oracle.FetchRecipeImage(ctx, name)
		if err != nil {
			s.metrics.ObserveOracle("image", "error", start)
			s.logger.Warn("recipe: thumbnail failed", slog.String("name", name), slog.String("error", err.Error()))
			continue
		}
		s.metrics.ObserveOracle("image", "ok", start)
		if err := s.thumbs.Write(name, img); err != nil {
			s.logger.Warn("recipe: thumbnail write failed", slog.String("name", name), slog.String("error", err.Error()))
			continue
		}
		written = append(written, name)
	}
	return written
}
