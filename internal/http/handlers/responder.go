package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	jsoniter "github.com/json-iterator/go"

	"github.com/preston-bernstein/nba-stats-service/internal/http/middleware"
	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/orchestrator"
	"github.com/preston-bernstein/nba-stats-service/internal/parser"
	"github.com/preston-bernstein/nba-stats-service/internal/seasonsync"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w http.ResponseWriter, status int, payload any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warn(logger, "failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, message string, logger *slog.Logger) {
	reqID := middleware.RequestIDFromContext(r.Context())
	if reqID == "" {
		reqID = r.Header.Get(middleware.HeaderRequestID)
	}
	body := map[string]string{"error": message}
	if reqID != "" {
		body["requestId"] = reqID
	}
	writeJSON(w, status, body, logger)
}

// writeFailure maps a service error onto a status code and a client-safe message.
func writeFailure(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status, msg := classify(err)
	if status >= http.StatusInternalServerError {
		logging.Warn(logger, "request failed", slog.Int(logging.FieldStatusCode, status), "error", err)
	}
	writeError(w, r, status, msg, logger)
}

func classify(err error) (int, string) {
	if nf, ok := orchestrator.AsNotFound(err); ok {
		return http.StatusNotFound, nf.Error()
	}
	if errors.Is(err, orchestrator.ErrInvalidRequest) {
		return http.StatusBadRequest, err.Error()
	}
	if errors.Is(err, seasonsync.ErrSyncInProgress) {
		return http.StatusConflict, err.Error()
	}
	if _, ok := parser.AsParseError(err); ok {
		return http.StatusBadGateway, "data unavailable"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "upstream timeout"
	}
	if _, ok := orchestrator.AsUnavailable(err); ok {
		return http.StatusServiceUnavailable, "upstream unavailable"
	}
	if _, ok := seasonsync.AsSyncError(err); ok {
		return http.StatusBadGateway, err.Error()
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable, "request cancelled"
	}
	return http.StatusInternalServerError, "internal error"
}

func loggerFromContext(r *http.Request, fallback *slog.Logger) *slog.Logger {
	if r == nil {
		return fallback
	}
	return logging.FromContext(r.Context(), fallback)
}
