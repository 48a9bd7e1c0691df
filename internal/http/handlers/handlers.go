package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/players"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
	"github.com/preston-bernstein/nba-stats-service/internal/orchestrator"
	"github.com/preston-bernstein/nba-stats-service/internal/poller"
	"github.com/preston-bernstein/nba-stats-service/internal/views"
)

// Service is the read side of the orchestrator.
type Service interface {
	Resolve(ctx context.Context, req orchestrator.Request) (orchestrator.Result, error)
	ResolveBoxScore(ctx context.Context, gameID string) (orchestrator.Resolved[stats.BoxScore], error)
	ResolvePlayByPlay(ctx context.Context, gameID string) (orchestrator.Resolved[stats.PlayByPlay], error)
	ResolveSchedule(ctx context.Context) (orchestrator.Resolved[games.Schedule], error)
	ResolveStandings(ctx context.Context, season string) (orchestrator.Resolved[teams.Standings], error)
	ResolveTeam(ctx context.Context, query string) (orchestrator.Resolved[teams.Details], error)
	ResolvePlayer(ctx context.Context, name string) (orchestrator.Resolved[players.Player], error)
	AnalysisView(ctx context.Context, gameID, language string) (views.AnalysisView, error)
	CacheStats() cache.Stats
}

// Envelope wraps a cached record with its cache key and degradation flag.
type Envelope[T any] struct {
	Key      string `json:"key"`
	Data     T      `json:"data"`
	Degraded bool   `json:"degraded"`
}

func envelope[T any](r orchestrator.Resolved[T]) Envelope[T] {
	return Envelope[T]{Key: r.Key, Data: r.Value, Degraded: r.Degraded}
}

// Handler wires the public routes to the orchestrator.
type Handler struct {
	svc      Service
	logger   *slog.Logger
	statusFn func() poller.Status
}

// NewHandler constructs a Handler. statusFn may be nil when no warm-up poller runs.
func NewHandler(svc Service, logger *slog.Logger, statusFn func() poller.Status) *Handler {
	return &Handler{
		svc:      svc,
		logger:   logger,
		statusFn: statusFn,
	}
}

// Health reports the service health.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic once the cache has been warmed.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.statusFn == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	status := h.statusFn()
	if status.IsReady() {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "poller": status}, h.logger)
		return
	}
	msg := status.LastError
	if msg == "" {
		msg = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, msg, h.logger)
}

// ResolveGame answers "which game": by team (default) or by player, on a date selector.
func (h *Handler) ResolveGame(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := orchestrator.Request{
		Team:     strings.TrimSpace(q.Get("team")),
		Player:   strings.TrimSpace(q.Get("player")),
		Date:     strings.TrimSpace(q.Get("date")),
		ByPlayer: strings.EqualFold(q.Get("by"), "player"),
	}
	logger := loggerFromContext(r, h.logger)
	res, err := h.svc.Resolve(r.Context(), req)
	if err != nil {
		writeFailure(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, res, logger)
}

// BoxScore returns the box score of a game.
func (h *Handler) BoxScore(w http.ResponseWriter, r *http.Request) {
	serveResolved(w, r, h, func(ctx context.Context) (orchestrator.Resolved[stats.BoxScore], error) {
		return h.svc.ResolveBoxScore(ctx, chi.URLParam(r, "gameID"))
	})
}

// PlayByPlay returns the play-by-play feed of a game.
func (h *Handler) PlayByPlay(w http.ResponseWriter, r *http.Request) {
	serveResolved(w, r, h, func(ctx context.Context) (orchestrator.Resolved[stats.PlayByPlay], error) {
		return h.svc.ResolvePlayByPlay(ctx, chi.URLParam(r, "gameID"))
	})
}

// Analysis returns the analysis view of a game in the requested language.
func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	view, err := h.svc.AnalysisView(r.Context(), chi.URLParam(r, "gameID"), r.URL.Query().Get("lang"))
	if err != nil {
		writeFailure(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, view, logger)
}

// Schedule returns the current season schedule.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	serveResolved(w, r, h, h.svc.ResolveSchedule)
}

// Standings returns league standings; season defaults to the current one.
func (h *Handler) Standings(w http.ResponseWriter, r *http.Request) {
	serveResolved(w, r, h, func(ctx context.Context) (orchestrator.Resolved[teams.Standings], error) {
		return h.svc.ResolveStandings(ctx, r.URL.Query().Get("season"))
	})
}

// Team returns team details.
func (h *Handler) Team(w http.ResponseWriter, r *http.Request) {
	serveResolved(w, r, h, func(ctx context.Context) (orchestrator.Resolved[teams.Details], error) {
		return h.svc.ResolveTeam(ctx, chi.URLParam(r, "team"))
	})
}

// Player looks a player up by name.
func (h *Handler) Player(w http.ResponseWriter, r *http.Request) {
	serveResolved(w, r, h, func(ctx context.Context) (orchestrator.Resolved[players.Player], error) {
		return h.svc.ResolvePlayer(ctx, chi.URLParam(r, "name"))
	})
}

// CacheStats reports cache counters.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.CacheStats(), h.logger)
}

func serveResolved[T any](w http.ResponseWriter, r *http.Request, h *Handler, load func(context.Context) (orchestrator.Resolved[T], error)) {
	logger := loggerFromContext(r, h.logger)
	res, err := load(r.Context())
	if err != nil {
		writeFailure(w, r, err, logger)
		return
	}
	writeJSON(w, http.StatusOK, envelope(res), logger)
}
