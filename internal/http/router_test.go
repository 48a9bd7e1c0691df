package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/http/handlers"
	"github.com/preston-bernstein/nba-stats-service/internal/metrics"
	"github.com/preston-bernstein/nba-stats-service/internal/orchestrator"
	"github.com/preston-bernstein/nba-stats-service/internal/providers/fixture"
	"github.com/preston-bernstein/nba-stats-service/internal/testutil"
)

func newTestRouter(t *testing.T, withAdmin bool) http.Handler {
	t.Helper()
	clock := testutil.NewClock(time.Date(2024, 3, 3, 12, 0, 0, 0, time.UTC))
	o := orchestrator.New(fixture.New(), cache.New(cache.Options{Now: clock.Now}), orchestrator.Options{Now: clock.Now})
	logger, _ := testutil.NewBufferLogger()
	cfg := RouterConfig{
		Handler:     handlers.NewHandler(o, logger, nil),
		Logger:      logger,
		Metrics:     metrics.NewRecorder(),
		CORSOrigins: []string{"https://app.example"},
	}
	if withAdmin {
		cfg.Admin = handlers.NewAdminHandler(o, nil, "secret", logger)
	}
	return NewRouter(cfg)
}

func TestRouterRoutesKnownPaths(t *testing.T) {
	router := newTestRouter(t, true)

	cases := map[string]int{
		"/health":                             http.StatusOK,
		"/ready":                              http.StatusOK,
		"/v1/games/resolve?team=LAL":          http.StatusOK,
		"/v1/games/0022300851/boxscore":       http.StatusOK,
		"/v1/games/0022300851/analysis":       http.StatusOK,
		"/v1/teams/nuggets":                   http.StatusOK,
		"/v1/cache/stats":                     http.StatusOK,
		"/v1/games/0022300999/boxscore":       http.StatusNotFound,
		"/admin/season/status":                http.StatusUnauthorized,
		"/v1/games/resolve?team=LAL&date=bad": http.StatusBadRequest,
	}

	for path, expected := range cases {
		rr := testutil.Serve(router, http.MethodGet, path, nil)
		if rr.Code != expected {
			t.Fatalf("route %s expected status %d, got %d", path, expected, rr.Code)
		}
		if rr.Header().Get("X-Request-ID") == "" {
			t.Fatalf("route %s missing request id header", path)
		}
	}
}

func TestRouterUnknownRouteAndMethod(t *testing.T) {
	router := newTestRouter(t, false)

	testutil.AssertStatus(t, testutil.Serve(router, http.MethodGet, "/unknown", nil), http.StatusNotFound)
	testutil.AssertStatus(t, testutil.Serve(router, http.MethodPost, "/health", nil), http.StatusMethodNotAllowed)
	testutil.AssertStatus(t, testutil.Serve(router, http.MethodPost, "/admin/cache/invalidate", nil), http.StatusNotFound)
}

func TestRouterAdminWithToken(t *testing.T) {
	router := newTestRouter(t, true)

	req := httptest.NewRequest(http.MethodPost, "/admin/cache/invalidate", nil)
	req.Header.Set("Authorization", "Bearer secret")
	testutil.AssertStatus(t, testutil.ServeRequest(router, req), http.StatusOK)

	req = httptest.NewRequest(http.MethodPost, "/admin/season/rollover", nil)
	req.Header.Set("Authorization", "Bearer secret")
	testutil.AssertStatus(t, testutil.ServeRequest(router, req), http.StatusServiceUnavailable)
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter(t, false)

	req := httptest.NewRequest(http.MethodOptions, "/v1/cache/stats", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := testutil.ServeRequest(router, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("expected allowed origin echoed, got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rr = testutil.ServeRequest(router, req)
	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("expected no cors header for unknown origin, got %q", got)
	}
}

func TestRouterRecoversFromPanics(t *testing.T) {
	router := NewRouter(RouterConfig{Handler: handlers.NewHandler(nil, nil, nil)})
	// A nil service panics inside the handler; the recoverer turns it into a 500.
	testutil.AssertStatus(t, testutil.Serve(router, http.MethodGet, "/v1/cache/stats", nil), http.StatusInternalServerError)
}
