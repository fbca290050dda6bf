package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/starford/kondate/internal/catalog"
	"github.com/starford/kondate/internal/metrics"
	"github.com/starford/kondate/internal/recipe"
)

// RouterConfig carries the optional parts of the router.
type RouterConfig struct {
	AuthEnabled bool
	Token       string
	CORSOrigins []string

	// Catalog, if non-nil, is mounted at GET /catalog.
	Catalog catalog.Catalog
	// Events, if non-nil, is mounted at GET /events.
	Events http.Handler
	// Metrics, if non-nil, instruments every route.
	Metrics *metrics.Metrics

	RecipesDir string
	ThumbsDir  string
}

// NewRouter creates a chi router with all API routes mounted.
func NewRouter(svc *recipe.Service, cfg RouterConfig) chi.Router {
	h := NewHandler(svc, cfg.Catalog)

	r := chi.NewRouter()
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Authorization", "Content-Type"},
			MaxAge:         300,
		}))
	}
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware)
	}
	r.Use(AuthMiddleware(cfg.AuthEnabled, cfg.Token))

	r.Post("/overview", h.Overview)
	r.Get("/details/{recipe_name}", h.Details)

	if cfg.Catalog != nil {
		r.Get("/catalog", h.Catalog)
		r.Get("/catalog/{key}", h.CatalogEntry)
	}

	if cfg.RecipesDir != "" {
		r.Get("/recipes/{filename}", NewFileHandler(cfg.RecipesDir, ".json").ServeFile)
	}
	if cfg.ThumbsDir != "" {
		r.Get("/thumbs/{filename}", NewFileHandler(cfg.ThumbsDir, ".jpg").ServeFile)
	}

	if cfg.Events != nil {
		r.Get("/events", cfg.Events.ServeHTTP)
	}

	return r
}
