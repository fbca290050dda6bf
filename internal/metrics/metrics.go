// Package metrics defines the Prometheus collectors for kondate and
// exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	OracleRequestsTotal *prometheus.CounterVec
	OracleLatency       *prometheus.HistogramVec
	CatalogRecipes      prometheus.Gauge
}

// New creates all collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kondate_http_requests_total",
				Help: "Total number of HTTP requests by method, route, and status.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kondate_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds.",
				Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method", "route"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kondate_recipe_cache_hits_total",
				Help: "Detail lookups served from the content store.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "kondate_recipe_cache_misses_total",
				Help: "Detail lookups that went to the oracle.",
			},
		),
		OracleRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kondate_oracle_requests_total",
				Help: "Oracle calls by operation and result (ok, empty, error).",
			},
			[]string{"op", "result"},
		),
		OracleLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kondate_oracle_latency_seconds",
				Help:    "Oracle call latency in seconds.",
				Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
			},
			[]string{"op"},
		),
		CatalogRecipes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "kondate_catalog_recipes",
				Help: "Number of recipe documents in the catalog.",
			},
		),
	}

	m.registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.OracleRequestsTotal,
		m.OracleLatency,
		m.CatalogRecipes,
	)
	return m
}

// ObserveOracle records one oracle call.
func (m *Metrics) ObserveOracle(op, result string, start time.Time) {
	if m == nil {
		return
	}
	m.OracleRequestsTotal.WithLabelValues(op, result).Inc()
	m.OracleLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// CacheHit counts a detail lookup served from disk.
func (m *Metrics) CacheHit() {
	if m != nil {
		m.CacheHitsTotal.Inc()
	}
}

// CacheMiss counts a detail lookup that needed the oracle.
func (m *Metrics) CacheMiss() {
	if m != nil {
		m.CacheMissesTotal.Inc()
	}
}

// SetCatalogSize records the number of catalogued recipes.
func (m *Metrics) SetCatalogSize(n int) {
	if m != nil {
		m.CatalogRecipes.Set(float64(n))
	}
}

// Handler returns the scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per chi route pattern.
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		m.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
	})
}
