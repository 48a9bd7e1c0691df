package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/orchestrator"
	"github.com/preston-bernstein/nba-stats-service/internal/providers"
	"github.com/preston-bernstein/nba-stats-service/internal/providers/fixture"
	"github.com/preston-bernstein/nba-stats-service/internal/seasonsync"
	"github.com/preston-bernstein/nba-stats-service/internal/testutil"
)

const adminToken = "secret"

type adminEnv struct {
	fx    *fixture.Provider
	o     *orchestrator.Orchestrator
	admin *AdminHandler
}

func newAdminEnv(t *testing.T, withSyncer bool) *adminEnv {
	t.Helper()
	clock := testutil.NewClock(sunday)
	env := &adminEnv{fx: fixture.New()}
	env.o = orchestrator.New(env.fx, cache.New(cache.Options{Now: clock.Now}), orchestrator.Options{Now: clock.Now, FetchTimeout: time.Second})
	var syncer SeasonSyncer
	if withSyncer {
		cursors, err := seasonsync.NewFileCursorStore(t.TempDir(), 0)
		if err != nil {
			t.Fatalf("cursor store: %v", err)
		}
		syncer = seasonsync.NewSyncer(env.o, cursors, seasonsync.Options{BatchSize: 2, Now: clock.Now})
	}
	env.admin = NewAdminHandler(env.o, syncer, adminToken, nil)
	env.admin.now = clock.Now
	return env
}

func adminRequest(method, path string) *http.Request {
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	return req
}

func TestAdminRequiresBearerToken(t *testing.T) {
	env := newAdminEnv(t, true)
	guarded := env.admin.Authorize(http.HandlerFunc(env.admin.InvalidateCache))

	rr := testutil.Serve(guarded, http.MethodPost, "/admin/cache/invalidate", nil)
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)

	req := httptest.NewRequest(http.MethodPost, "/admin/cache/invalidate", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	testutil.AssertStatus(t, testutil.ServeRequest(guarded, req), http.StatusUnauthorized)

	testutil.AssertStatus(t, testutil.ServeRequest(guarded, adminRequest(http.MethodPost, "/admin/cache/invalidate")), http.StatusOK)

	locked := NewAdminHandler(env.o, nil, "", nil)
	rr = testutil.ServeRequest(locked.Authorize(http.HandlerFunc(locked.InvalidateCache)), adminRequest(http.MethodPost, "/admin/cache/invalidate"))
	testutil.AssertStatus(t, rr, http.StatusUnauthorized)
}

func TestAdminInvalidateCacheFilters(t *testing.T) {
	env := newAdminEnv(t, false)
	ctx := context.Background()
	if _, err := env.o.ResolveTeam(ctx, "LAL"); err != nil {
		t.Fatalf("resolve team: %v", err)
	}
	if _, err := env.o.ResolveStandings(ctx, ""); err != nil {
		t.Fatalf("resolve standings: %v", err)
	}

	rr := testutil.ServeRequest(http.HandlerFunc(env.admin.InvalidateCache), adminRequest(http.MethodPost, "/admin/cache/invalidate?kind=team"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var body map[string]any
	testutil.DecodeJSON(t, rr, &body)
	if body["invalidated"] != float64(1) {
		t.Fatalf("expected one team entry dropped, got %v", body["invalidated"])
	}

	rr = testutil.ServeRequest(http.HandlerFunc(env.admin.InvalidateCache), adminRequest(http.MethodPost, "/admin/cache/invalidate?season=2023-24&kind=standings"))
	testutil.DecodeJSON(t, rr, &body)
	if body["invalidated"] != float64(1) {
		t.Fatalf("expected standings entry dropped, got %v", body["invalidated"])
	}
	if got := env.o.CacheStats().Entries; got != 0 {
		t.Fatalf("expected empty cache, got %d entries", got)
	}

	for _, path := range []string{"/admin/cache/invalidate?season=soon", "/admin/cache/invalidate?kind=highlights"} {
		rr = testutil.ServeRequest(http.HandlerFunc(env.admin.InvalidateCache), adminRequest(http.MethodPost, path))
		testutil.AssertStatus(t, rr, http.StatusBadRequest)
	}
}

func TestAdminSyncAndStatus(t *testing.T) {
	env := newAdminEnv(t, true)

	rr := testutil.ServeRequest(http.HandlerFunc(env.admin.Sync), adminRequest(http.MethodPost, "/admin/season/sync"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var report seasonsync.Report
	testutil.DecodeJSON(t, rr, &report)
	if report.Season != fixture.Season || len(report.Committed) != 3 {
		t.Fatalf("unexpected report %+v", report)
	}

	rr = testutil.ServeRequest(http.HandlerFunc(env.admin.SyncStatus), adminRequest(http.MethodGet, "/admin/season/status"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	var status struct {
		State   seasonsync.State  `json:"state"`
		LastRun seasonsync.Report `json:"lastRun"`
	}
	testutil.DecodeJSON(t, rr, &status)
	if status.State != seasonsync.StateIdle || status.LastRun.RunID != report.RunID {
		t.Fatalf("unexpected status %+v", status)
	}

	rr = testutil.ServeRequest(http.HandlerFunc(env.admin.Sync), adminRequest(http.MethodPost, "/admin/season/sync?season=2023-25"))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestAdminRolloverReportsPartialFailure(t *testing.T) {
	env := newAdminEnv(t, true)
	env.fx.Fail(providers.Request{Kind: domain.KindBoxScore, ID: fixture.GameNuggetsAtLAL},
		&providers.FetchError{Kind: domain.KindBoxScore, ID: fixture.GameNuggetsAtLAL, StatusCode: http.StatusServiceUnavailable, Err: errors.New("upstream down")})

	rr := testutil.ServeRequest(http.HandlerFunc(env.admin.Rollover), adminRequest(http.MethodPost, "/admin/season/rollover?season=2023-24"))
	testutil.AssertStatus(t, rr, http.StatusBadGateway)
	var body struct {
		Error  string                    `json:"error"`
		Result seasonsync.RolloverResult `json:"result"`
	}
	testutil.DecodeJSON(t, rr, &body)
	if body.Error == "" || body.Result.Season != fixture.Season {
		t.Fatalf("unexpected body %+v", body)
	}
	if len(body.Result.Report.Committed) != 2 || len(body.Result.Report.Failed) != 1 {
		t.Fatalf("expected first batch committed and nuggets failed, got %+v", body.Result.Report)
	}

	env.fx.Recover(providers.Request{Kind: domain.KindBoxScore, ID: fixture.GameNuggetsAtLAL})
	rr = testutil.ServeRequest(http.HandlerFunc(env.admin.Rollover), adminRequest(http.MethodPost, "/admin/season/rollover?season=2023-24"))
	testutil.AssertStatus(t, rr, http.StatusOK)
}

func TestAdminSyncNotConfigured(t *testing.T) {
	env := newAdminEnv(t, false)
	for _, h := range []http.HandlerFunc{env.admin.Sync, env.admin.Rollover, env.admin.SyncStatus} {
		rr := testutil.ServeRequest(h, adminRequest(http.MethodPost, "/admin/season/sync"))
		testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	}
}
