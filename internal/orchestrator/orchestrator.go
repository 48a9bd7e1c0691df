// Package orchestrator turns logical requests into records: it serves fresh cache hits,
// coalesces concurrent misses into one upstream fetch, writes results back and falls back to
// stale entries when the upstream fails.
package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/preston-bernstein/nba-stats-service/internal/archive"
	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/metrics"
	"github.com/preston-bernstein/nba-stats-service/internal/providers"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

const (
	DefaultTeam         = "Lakers"
	DefaultPlayer       = "LeBron James"
	DefaultDateSelector = "last"
	DefaultLanguage     = "en_US"
	DefaultFetchTimeout = 30 * time.Second
)

// Archive persists raw payloads of finished games.
type Archive interface {
	Load(ctx context.Context, doc archive.Doc) ([]byte, bool, error)
	Save(ctx context.Context, doc archive.Doc, raw []byte) error
}

// Options configures an Orchestrator. Zero values select the defaults.
type Options struct {
	DefaultTeam   string
	DefaultPlayer string
	DateSelector  string
	Language      string
	Location      *time.Location
	FetchTimeout  time.Duration
	Archive       Archive
	Logger        *slog.Logger
	Metrics       *metrics.Recorder
	Now           func() time.Time
}

// Orchestrator is safe for concurrent use.
type Orchestrator struct {
	fetcher  providers.Fetcher
	cache    *cache.Store
	archive  Archive
	flights  singleflight.Group
	defaults Request
	language string
	loc      *time.Location
	timeout  time.Duration
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
}

// New wires an orchestrator over a fetcher and a cache store.
func New(fetcher providers.Fetcher, store *cache.Store, opts Options) *Orchestrator {
	if opts.DefaultTeam == "" {
		opts.DefaultTeam = DefaultTeam
	}
	if opts.DefaultPlayer == "" {
		opts.DefaultPlayer = DefaultPlayer
	}
	if opts.DateSelector == "" {
		opts.DateSelector = DefaultDateSelector
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}
	if opts.Location == nil {
		opts.Location = timeutil.LocationOrDefault("")
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		fetcher:  fetcher,
		cache:    store,
		archive:  opts.Archive,
		defaults: Request{Team: opts.DefaultTeam, Player: opts.DefaultPlayer, Date: opts.DateSelector},
		language: opts.Language,
		loc:      opts.Location,
		timeout:  opts.FetchTimeout,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
}

// Resolved is a record served by the orchestrator. Degraded is set when the record is a
// stale cache entry returned because the refresh failed.
type Resolved[T any] struct {
	Key      string
	Value    T
	Degraded bool
}

// Invalidate removes matching cache entries.
func (o *Orchestrator) Invalidate(match func(cache.Key) bool) int {
	return o.cache.Invalidate(match)
}

// CacheStats reports cache activity.
func (o *Orchestrator) CacheStats() cache.Stats {
	return o.cache.Stats()
}

// Language is the configured default view language.
func (o *Orchestrator) Language() string {
	return o.language
}

func (o *Orchestrator) log(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, o.logger)
}

// load serves key from the cache or runs fetch once for all concurrent callers. The fetch
// runs detached from the callers' contexts and is bounded by the fetch timeout; a caller
// whose ctx ends stops waiting without cancelling it.
func load[T any](ctx context.Context, o *Orchestrator, key cache.Key, fetch func(context.Context) (T, cache.Category, error)) (Resolved[T], error) {
	k := key.String()
	if entry, state := o.cache.Lookup(key); state == cache.StateFresh {
		if v, ok := entry.Value.(T); ok {
			return Resolved[T]{Key: k, Value: v}, nil
		}
	}

	started := false
	ch := o.flights.DoChan(k, func() (any, error) {
		started = true
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), o.timeout)
		defer cancel()

		start := time.Now()
		v, category, err := fetch(fctx)
		if err != nil {
			return nil, err
		}
		if _, err := o.cache.Put(key, v, category); err != nil {
			return nil, err
		}
		logging.Info(o.log(ctx), "record fetched",
			logging.FieldKey, k,
			logging.FieldCategory, string(category),
			logging.FieldDurationMS, time.Since(start).Milliseconds(),
		)
		return v, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		return Resolved[T]{Key: k}, ctx.Err()
	case res = <-ch:
	}
	if !started {
		o.metrics.RecordCoalesced(string(key.Kind))
	}
	if res.Err == nil {
		return Resolved[T]{Key: k, Value: res.Val.(T)}, nil
	}
	if _, ok := AsNotFound(res.Err); ok {
		return Resolved[T]{Key: k}, res.Err
	}
	if entry, ok := o.cache.Get(key); ok {
		if v, ok := entry.Value.(T); ok {
			logging.Warn(o.log(ctx), "serving stale record",
				logging.FieldKey, k,
				"age", entry.Age(o.now()).String(),
				"error", res.Err,
			)
			return Resolved[T]{Key: k, Value: v, Degraded: true}, nil
		}
	}
	return Resolved[T]{Key: k}, &UnavailableError{Kind: key.Kind, Key: k, Err: res.Err}
}

// peek returns a fresh cached value without fetching.
func peek[T any](o *Orchestrator, key cache.Key) (T, bool) {
	var zero T
	entry, state := o.cache.Lookup(key)
	if state != cache.StateFresh {
		return zero, false
	}
	v, ok := entry.Value.(T)
	return v, ok
}
