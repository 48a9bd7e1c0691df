package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/archive"
	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/config"
	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/metrics"
	"github.com/preston-bernstein/nba-stats-service/internal/orchestrator"
	"github.com/preston-bernstein/nba-stats-service/internal/providers"
	"github.com/preston-bernstein/nba-stats-service/internal/providers/fixture"
	"github.com/preston-bernstein/nba-stats-service/internal/providers/nbacdn"
	"github.com/preston-bernstein/nba-stats-service/internal/seasonsync"
)

// Overridable in tests.
var (
	archiveOpen       = archive.Open
	openPostgresStore = seasonsync.OpenPostgresCursorStore
)

// Core is the data core built from configuration: the fetch stack, the cache store,
// the orchestrator and the season syncer. Close releases everything it acquired, in
// reverse order of acquisition.
type Core struct {
	Cache        *cache.Store
	Orchestrator *orchestrator.Orchestrator
	Syncer       *seasonsync.Syncer

	logger    *slog.Logger
	closers   []closer
	closeOnce sync.Once
	closeErr  error
}

type closer struct {
	name string
	fn   func(context.Context) error
}

// OpenCore wires the data core. On error every resource acquired so far is released
// before returning.
func OpenCore(ctx context.Context, cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (_ *Core, err error) {
	c := &Core{logger: logger}
	defer func() {
		if err != nil {
			_ = c.Close(context.Background())
		}
	}()

	policy, err := cfg.Core.Policy()
	if err != nil {
		return nil, fmt.Errorf("cache policy: %w", err)
	}
	c.Cache = cache.New(cache.Options{
		Capacity:      cfg.Core.CacheSizeLimit,
		Policy:        policy,
		SweepInterval: cfg.Core.SweepInterval,
		Logger:        logger,
		Metrics:       recorder,
	})
	c.push("cache", func(context.Context) error { return c.Cache.Close() })

	opts := orchestrator.Options{
		DefaultTeam:   cfg.Core.DefaultTeam,
		DefaultPlayer: cfg.Core.DefaultPlayer,
		DateSelector:  cfg.Core.DateSelector,
		Language:      cfg.Core.Language,
		FetchTimeout:  fetchBudget(cfg.Upstream),
		Logger:        logger,
		Metrics:       recorder,
	}
	if cfg.Archive.RedisURL != "" {
		arc, err := archiveOpen(ctx, cfg.Archive.RedisURL, archive.Options{TTL: cfg.Archive.TTL, Logger: logger})
		if err != nil {
			return nil, fmt.Errorf("open archive: %w", err)
		}
		c.push("archive", func(context.Context) error { return arc.Close() })
		opts.Archive = arc
	}
	c.Orchestrator = orchestrator.New(buildFetcher(cfg, logger, recorder), c.Cache, opts)

	store, err := openCursorStore(ctx, cfg.Sync)
	if err != nil {
		return nil, fmt.Errorf("open cursor store: %w", err)
	}
	c.push("cursor store", func(context.Context) error { return store.Close() })
	c.Syncer = seasonsync.NewSyncer(c.Orchestrator, store, seasonsync.Options{
		BatchSize:   cfg.Sync.BatchSize,
		Concurrency: cfg.Sync.Concurrency,
		Logger:      logger,
		Metrics:     recorder,
	})
	return c, nil
}

func (c *Core) push(name string, fn func(context.Context) error) {
	c.closers = append(c.closers, closer{name: name, fn: fn})
}

// Close releases the core's resources. Every closer runs even when an earlier one fails;
// the failures are joined. Calls after the first return the first result.
func (c *Core) Close(ctx context.Context) error {
	c.closeOnce.Do(func() {
		steps := make([]closer, 0, len(c.closers))
		for i := len(c.closers) - 1; i >= 0; i-- {
			steps = append(steps, c.closers[i])
		}
		c.closeErr = runSteps(ctx, c.logger, steps)
	})
	return c.closeErr
}

func runSteps(ctx context.Context, logger *slog.Logger, steps []closer) error {
	var errs []error
	for _, cl := range steps {
		if err := cl.fn(ctx); err != nil {
			logging.Error(logger, cl.name+" close failed", err)
			errs = append(errs, fmt.Errorf("%s: %w", cl.name, err))
		}
	}
	return errors.Join(errs...)
}

// buildFetcher selects the upstream and wraps it for production use.
func buildFetcher(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) providers.Fetcher {
	var (
		base providers.Fetcher
		name string
	)
	switch cfg.Provider {
	case config.ProviderFixture:
		base, name = fixture.New(), fixture.ProviderName
	default:
		base = nbacdn.NewClient(nbacdn.Config{
			CDNBaseURL:   cfg.Upstream.CDNBaseURL,
			StatsBaseURL: cfg.Upstream.StatsBaseURL,
			Timeout:      cfg.Upstream.Timeout,
		})
		name = nbacdn.ProviderName
	}
	logging.Info(logger, "fetch provider selected", "provider", name)
	return layerFetcher(base, name, cfg.Upstream, logger, recorder)
}

// layerFetcher puts the rate limiter under the retries, so every attempt waits for a token.
func layerFetcher(base providers.Fetcher, name string, cfg config.UpstreamConfig, logger *slog.Logger, recorder *metrics.Recorder) providers.Fetcher {
	limited := providers.NewRateLimitedFetcher(base, cfg.RatePerSecond, cfg.Burst, logger)
	return providers.NewRetryingFetcher(limited, logger, recorder, name, providers.RetryConfig{
		MaxAttempts:    cfg.MaxAttempts,
		Backoff:        cfg.Backoff,
		AttemptTimeout: cfg.Timeout,
	})
}

// fetchBudget bounds one logical fetch: every attempt timing out plus the doubling
// waits between attempts. Zero leaves the orchestrator default in place.
func fetchBudget(u config.UpstreamConfig) time.Duration {
	if u.MaxAttempts <= 0 || u.Timeout <= 0 {
		return 0
	}
	budget := time.Duration(u.MaxAttempts) * u.Timeout
	wait := u.Backoff
	for i := 1; i < u.MaxAttempts; i++ {
		budget += wait
		wait *= 2
	}
	return budget
}

func openCursorStore(ctx context.Context, cfg config.SyncConfig) (seasonsync.CursorStore, error) {
	if cfg.CursorStore == config.CursorStorePostgres {
		return openPostgresStore(ctx, cfg.PostgresDSN)
	}
	return seasonsync.NewFileCursorStore(cfg.CursorPath, seasonsync.DefaultRunRetention)
}
