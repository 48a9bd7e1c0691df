package handlers

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/http/requestutil"
	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/seasonsync"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

// Invalidator drops cache entries.
type Invalidator interface {
	Invalidate(match func(cache.Key) bool) int
}

// SeasonSyncer runs season syncs and rollovers. *seasonsync.Syncer satisfies it.
type SeasonSyncer interface {
	Sync(ctx context.Context, season string) (seasonsync.Report, error)
	Rollover(ctx context.Context, season string) (seasonsync.RolloverResult, error)
	State() seasonsync.State
	LastReport() (seasonsync.Report, bool)
}

// AdminHandler exposes admin-only endpoints for cache control and season sync.
type AdminHandler struct {
	cache  Invalidator
	syncer SeasonSyncer
	token  string
	logger *slog.Logger
	now    func() time.Time
}

// NewAdminHandler constructs an AdminHandler. syncer may be nil when season sync is disabled.
func NewAdminHandler(c Invalidator, syncer SeasonSyncer, token string, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		cache:  c,
		syncer: syncer,
		token:  token,
		logger: logger,
		now:    time.Now,
	}
}

// Authorize rejects requests without the admin bearer token. An empty token locks the
// admin routes entirely.
func (h *AdminHandler) Authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !h.authorized(r) {
			logging.Warn(h.logger, "admin unauthorized",
				slog.String(logging.FieldPath, r.URL.Path),
				slog.String("client_ip", requestutil.ClientIP(r)),
			)
			writeError(w, r, http.StatusUnauthorized, "unauthorized", h.logger)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.token == "" {
		return false
	}
	want := "Bearer " + h.token
	return subtle.ConstantTimeCompare([]byte(r.Header.Get("Authorization")), []byte(want)) == 1
}

// InvalidateCache drops cache entries. With neither season nor kind every entry goes;
// otherwise only entries matching all given filters.
func (h *AdminHandler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	logger := loggerFromContext(r, h.logger)
	q := r.URL.Query()
	var filters []func(cache.Key) bool

	if raw := strings.TrimSpace(q.Get("season")); raw != "" {
		season, err := timeutil.NormalizeSeason(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error(), logger)
			return
		}
		filters = append(filters, cache.SeasonScope(season))
	}
	if raw := strings.TrimSpace(q.Get("kind")); raw != "" {
		kind, err := domain.ParseKind(raw)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err.Error(), logger)
			return
		}
		filters = append(filters, cache.OfKind(kind))
	}

	removed := h.cache.Invalidate(func(k cache.Key) bool {
		for _, f := range filters {
			if !f(k) {
				return false
			}
		}
		return true
	})
	logging.Info(logger, "admin cache invalidated",
		logging.FieldCount, removed,
		logging.FieldSeason, q.Get("season"),
		logging.FieldKind, q.Get("kind"),
	)
	writeJSON(w, http.StatusOK, map[string]any{"invalidated": removed, "status": "ok"}, logger)
}

// Sync backfills a season; season defaults to the one in progress.
func (h *AdminHandler) Sync(w http.ResponseWriter, r *http.Request) {
	season, ok := h.season(w, r)
	if !ok {
		return
	}
	logger := loggerFromContext(r, h.logger)
	report, err := h.syncer.Sync(r.Context(), season)
	if err != nil {
		h.writeSyncFailure(w, r, err, report, logger)
		return
	}
	writeJSON(w, http.StatusOK, report, logger)
}

// Rollover switches the cache to a new season and syncs it.
func (h *AdminHandler) Rollover(w http.ResponseWriter, r *http.Request) {
	season, ok := h.season(w, r)
	if !ok {
		return
	}
	logger := loggerFromContext(r, h.logger)
	res, err := h.syncer.Rollover(r.Context(), season)
	if err != nil {
		h.writeSyncFailure(w, r, err, res, logger)
		return
	}
	writeJSON(w, http.StatusOK, res, logger)
}

// SyncStatus reports the sync state and the last run.
func (h *AdminHandler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	if h.syncer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "season sync not configured", h.logger)
		return
	}
	body := map[string]any{"state": h.syncer.State()}
	if last, ok := h.syncer.LastReport(); ok {
		body["lastRun"] = last
	}
	writeJSON(w, http.StatusOK, body, h.logger)
}

func (h *AdminHandler) season(w http.ResponseWriter, r *http.Request) (string, bool) {
	if h.syncer == nil {
		writeError(w, r, http.StatusServiceUnavailable, "season sync not configured", h.logger)
		return "", false
	}
	raw := strings.TrimSpace(r.URL.Query().Get("season"))
	if raw == "" {
		raw = timeutil.SeasonForDate(h.now().In(timeutil.LocationOrDefault("")))
	}
	season, err := timeutil.NormalizeSeason(raw)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error(), h.logger)
		return "", false
	}
	return season, true
}

// writeSyncFailure keeps the partial report in the body of a failed sync.
func (h *AdminHandler) writeSyncFailure(w http.ResponseWriter, r *http.Request, err error, partial any, logger *slog.Logger) {
	if _, ok := seasonsync.AsSyncError(err); !ok {
		writeFailure(w, r, err, logger)
		return
	}
	logging.Warn(logger, "admin season sync failed", "error", err)
	writeJSON(w, http.StatusBadGateway, map[string]any{
		"error":  err.Error(),
		"result": partial,
	}, logger)
}
