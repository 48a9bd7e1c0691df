// Package http assembles the public and admin routes of the service.
package http

import (
	"log/slog"
	nethttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/preston-bernstein/nba-stats-service/internal/http/handlers"
	"github.com/preston-bernstein/nba-stats-service/internal/http/middleware"
	"github.com/preston-bernstein/nba-stats-service/internal/metrics"
)

// DefaultRequestTimeout bounds public reads. Admin syncs run without it.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig carries the handlers and cross-cutting settings of the router.
type RouterConfig struct {
	Handler        *handlers.Handler
	Admin          *handlers.AdminHandler
	Logger         *slog.Logger
	Metrics        *metrics.Recorder
	CORSOrigins    []string
	RequestTimeout time.Duration
}

// NewRouter registers HTTP routes on a chi router.
func NewRouter(cfg RouterConfig) nethttp.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}
	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Logging(cfg.Logger, cfg.Metrics))
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", middleware.HeaderRequestID},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         300,
	}))

	h := cfg.Handler
	r.Get("/health", h.Health)
	r.Get("/ready", h.Ready)

	r.Route("/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

		r.Get("/games/resolve", h.ResolveGame)
		r.Get("/games/{gameID}/boxscore", h.BoxScore)
		r.Get("/games/{gameID}/playbyplay", h.PlayByPlay)
		r.Get("/games/{gameID}/analysis", h.Analysis)
		r.Get("/schedule", h.Schedule)
		r.Get("/standings", h.Standings)
		r.Get("/teams/{team}", h.Team)
		r.Get("/players/{name}", h.Player)
		r.Get("/cache/stats", h.CacheStats)
	})

	if cfg.Admin != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(cfg.Admin.Authorize)

			r.Post("/cache/invalidate", cfg.Admin.InvalidateCache)
			r.Post("/season/sync", cfg.Admin.Sync)
			r.Post("/season/rollover", cfg.Admin.Rollover)
			r.Get("/season/status", cfg.Admin.SyncStatus)
		})
	}
	return r
}
