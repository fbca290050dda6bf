// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/starford/kondate/internal/api"
	"github.com/starford/kondate/internal/catalog"
	"github.com/starford/kondate/internal/mcpserver"
	"github.com/starford/kondate/internal/metrics"
	"github.com/starford/kondate/internal/models"
	"github.com/starford/kondate/internal/oracle"
	"github.com/starford/kondate/internal/recipe"
	"github.com/starford/kondate/internal/sse"
	"github.com/starford/kondate/internal/storage"
)

// components are the long-lived pieces shared by the HTTP and MCP entry points.
type components struct {
	store   *storage.FS
	thumbs  *storage.Thumbs
	db      *catalog.DB
	metrics *metrics.Metrics
	svc     *recipe.Service
}

func (c *components) Close() {
	if c.db != nil {
		_ = c.db.Close()
	}
}

func (a *application) init(opts []Option) error {
	for _, opt := range opts {
		opt(a)
	}
	if a.config == nil {
		return fmt.Errorf("config is required")
	}
	return nil
}

// build creates the stores, catalog, oracle client and recipe service.
func (a *application) build(ctx context.Context, logger *slog.Logger) (*components, error) {
	cfg := a.config

	if err := storage.EnsureDirs(cfg.Storage.RecipesDir, cfg.Storage.ThumbsDir); err != nil {
		return nil, fmt.Errorf("create storage dirs: %w", err)
	}
	store, err := storage.NewFS(cfg.Storage.RecipesDir)
	if err != nil {
		return nil, fmt.Errorf("init recipe store: %w", err)
	}
	thumbs, err := storage.NewThumbs(cfg.Storage.ThumbsDir)
	if err != nil {
		return nil, fmt.Errorf("init thumbnail store: %w", err)
	}

	gen := a.generator
	if gen == nil {
		if cfg.Oracle.APIKey == "" {
			return nil, fmt.Errorf("oracle: api_key is required")
		}
		gen, err = oracle.NewGemini(ctx, oracle.GeminiConfig{
			APIKey:  cfg.Oracle.APIKey,
			BaseURL: cfg.Oracle.BaseURL,
			Timeout: cfg.Oracle.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("init oracle: %w", err)
		}
	}
	client := oracle.NewClient(gen,
		oracle.WithTextModel(cfg.Oracle.TextModel),
		oracle.WithImageModel(cfg.Oracle.ImageModel),
		oracle.WithLanguage(cfg.Oracle.LanguageTag()),
		oracle.WithCuisine(cfg.Oracle.Cuisine),
		oracle.WithLogger(logger),
	)

	c := &components{store: store, thumbs: thumbs}
	if cfg.Metrics.Enabled {
		c.metrics = metrics.New()
	}

	svcOpts := []recipe.Option{
		recipe.WithSuggestionCount(cfg.Suggest.Count),
		recipe.WithMetrics(c.metrics),
		recipe.WithLogger(logger),
	}
	if cfg.Thumbnails.Enabled {
		svcOpts = append(svcOpts, recipe.WithThumbnails(thumbs))
	}
	c.svc = recipe.NewService(client, store, svcOpts...)

	c.db, err = catalog.Open(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("init catalog: %w", err)
	}
	if err := catalog.Sync(c.db, store, logger); err != nil {
		logger.Warn("initial catalog sync failed", slog.String("error", err.Error()))
	}
	c.refreshCatalogSize(logger)

	return c, nil
}

func (c *components) refreshCatalogSize(logger *slog.Logger) {
	if c.metrics == nil {
		return
	}
	n, err := c.db.Count()
	if err != nil {
		logger.Warn("catalog count failed", slog.String("error", err.Error()))
		return
	}
	c.metrics.SetCatalogSize(n)
}

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

func writeStatus(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}
	if err := app.init(opts); err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("recipes_dir", cfg.Storage.RecipesDir),
		slog.String("thumbs_dir", cfg.Storage.ThumbsDir),
		slog.String("catalog_path", cfg.Catalog.Path),
		slog.String("text_model", cfg.Oracle.TextModel),
		slog.String("language", cfg.Oracle.Language),
		slog.Bool("thumbnails", cfg.Thumbnails.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := app.build(ctx, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	// SSE broker.
	broker := sse.NewBroker(
		sse.WithSummaryInterval(2*time.Second),
		sse.WithHeartbeat(30*time.Second),
	)
	defer broker.Close()

	apiRouter := api.NewRouter(c.svc, api.RouterConfig{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		CORSOrigins: cfg.App.HTTP.CORSOrigins,
		Catalog:     c.db,
		Events:      broker,
		Metrics:     c.metrics,
		RecipesDir:  c.store.Root(),
		ThumbsDir:   c.thumbs.Root(),
	})

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, `{"status":"ok"}`)
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		if _, err := c.db.Count(); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, `{"status":"catalog unavailable"}`)
			return
		}
		writeStatus(w, http.StatusOK, `{"status":"ok"}`)
	})
	if c.metrics != nil {
		r.Handle("/metrics", c.metrics.Handler())
	}

	r.Mount("/", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Keep the catalog in step with the recipes directory.
	if cfg.Catalog.Watch {
		g.Go(func() error {
			err := catalog.Watch(gCtx, c.db, c.store, c.store.Root(), logger, func(kind string, rec models.CachedRecipe) {
				switch kind {
				case catalog.EventCached:
					broker.RecipeCached(rec)
				case catalog.EventRemoved:
					broker.RecipeRemoved(rec.Key)
				}
				c.refreshCatalogSize(logger)
			})
			if err != nil {
				logger.Warn("catalog watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

// RunMCP serves the MCP tools on stdin/stdout. Logs go to stderr since
// stdout carries the protocol.
func RunMCP(ctx context.Context, opts ...Option) error {
	app := &application{}
	if err := app.init(opts); err != nil {
		return err
	}

	logger := newLogger(app.config, os.Stderr)
	slog.SetDefault(logger)

	c, err := app.build(ctx, logger)
	if err != nil {
		return err
	}
	defer c.Close()

	logger.Info("MCP server starting on stdio")
	return mcpserver.New(c.svc, c.db).ServeStdio()
}
