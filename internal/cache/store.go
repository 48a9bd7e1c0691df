// Package cache is the in-process record cache: per-category TTLs with a stale grace
// window, a least-recently-used size cap and a background sweeper.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/simplelru"

	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/metrics"
)

const (
	DefaultCapacity      = 5000
	DefaultSweepInterval = time.Minute

	reasonExpired     = "expired"
	reasonCapacity    = "capacity"
	reasonInvalidated = "invalidated"
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Capacity      int
	Policy        Policy
	SweepInterval time.Duration
	Now           func() time.Time
	Logger        *slog.Logger
	Metrics       *metrics.Recorder
}

// Stats is a point-in-time view of store activity.
type Stats struct {
	Entries       int   `json:"entries"`
	Capacity      int   `json:"capacity"`
	Hits          int64 `json:"hits"`
	StaleHits     int64 `json:"staleHits"`
	Misses        int64 `json:"misses"`
	Puts          int64 `json:"puts"`
	Expirations   int64 `json:"expirations"`
	Evictions     int64 `json:"evictions"`
	Invalidations int64 `json:"invalidations"`
}

// Store is safe for concurrent use. Every operation holds mu, since a lookup also moves
// the entry to the front of the recency list.
type Store struct {
	mu       sync.Mutex
	entries  *simplelru.LRU[string, Entry]
	policy   Policy
	capacity int
	now      func() time.Time
	logger   *slog.Logger
	metrics  *metrics.Recorder

	hits, staleHits, misses, puts        atomic.Int64
	expirations, evictions, invalidation atomic.Int64

	interval  time.Duration
	startMu   sync.Mutex
	started   bool
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// New constructs an empty store.
func New(opts Options) *Store {
	if opts.Capacity <= 0 {
		opts.Capacity = DefaultCapacity
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	// The recency list never evicts on its own: Put sweeps expired entries first and
	// removes the oldest itself, so its bound only needs to exceed the capacity.
	entries, _ := simplelru.NewLRU[string, Entry](opts.Capacity+1, nil)
	return &Store{
		entries:  entries,
		policy:   opts.Policy,
		capacity: opts.Capacity,
		now:      opts.Now,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		interval: opts.SweepInterval,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

// Get returns the entry for key when it is fresh or usable-stale.
func (s *Store) Get(key Key) (Entry, bool) {
	e, state := s.Lookup(key)
	return e, state != StateMissing
}

// Lookup returns the entry for key with its freshness. Expired entries are removed and
// reported as missing.
func (s *Store) Lookup(key Key) (Entry, State) {
	k := key.String()
	now := s.now()

	s.mu.Lock()
	entry, ok := s.entries.Peek(k)
	var state State
	if ok {
		state = entry.State(now)
		if state == StateMissing {
			s.entries.Remove(k)
		} else {
			s.entries.Get(k)
		}
	}
	s.mu.Unlock()

	switch {
	case !ok:
		s.misses.Add(1)
	case state == StateMissing:
		s.misses.Add(1)
		s.expirations.Add(1)
		s.metrics.RecordCacheEviction(reasonExpired, 1)
	case state == StateStale:
		s.staleHits.Add(1)
	default:
		s.hits.Add(1)
	}
	s.metrics.RecordCacheLookup(string(key.Kind), state.String())
	if state == StateMissing {
		return Entry{}, StateMissing
	}
	return entry, state
}

// Put stores value under key, replacing any existing entry and restarting its clock.
func (s *Store) Put(key Key, value any, category Category) (Entry, error) {
	rule, ok := s.policy.Rule(category)
	if !ok {
		return Entry{}, fmt.Errorf("cache put %s: unknown category %q", key, category)
	}
	k := key.String()
	entry := Entry{
		Key:      key,
		Value:    value,
		Category: category,
		StoredAt: s.now(),
		TTL:      rule.TTL,
		Grace:    rule.Grace,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries.Add(k, entry)
	s.puts.Add(1)
	s.enforceCapacity(k)
	logging.Debug(s.logger, "cache put",
		logging.FieldKey, k,
		logging.FieldCategory, string(category),
	)
	return entry, nil
}

// enforceCapacity sweeps expired entries first and then evicts from the LRU tail, never
// evicting keep. Callers hold mu.
func (s *Store) enforceCapacity(keep string) {
	if s.entries.Len() <= s.capacity {
		return
	}
	if n := s.sweepLocked(s.now()); n > 0 {
		logging.Debug(s.logger, "cache swept before eviction", logging.FieldCount, n)
	}
	evicted := 0
	for s.entries.Len() > s.capacity {
		k, _, ok := s.entries.GetOldest()
		if !ok || k == keep {
			break
		}
		s.entries.RemoveOldest()
		evicted++
	}
	if evicted > 0 {
		s.evictions.Add(int64(evicted))
		s.metrics.RecordCacheEviction(reasonCapacity, evicted)
	}
}

// Invalidate removes every entry whose key matches and returns how many were removed.
func (s *Store) Invalidate(match func(Key) bool) int {
	if match == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, k := range s.entries.Keys() {
		if e, ok := s.entries.Peek(k); ok && match(e.Key) {
			s.entries.Remove(k)
			n++
		}
	}
	if n > 0 {
		s.invalidation.Add(int64(n))
		s.metrics.RecordCacheEviction(reasonInvalidated, n)
		logging.Info(s.logger, "cache invalidated", logging.FieldCount, n)
	}
	return n
}

// Sweep removes entries past their grace period.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(s.now())
}

func (s *Store) sweepLocked(now time.Time) int {
	n := 0
	for _, k := range s.entries.Keys() {
		if e, ok := s.entries.Peek(k); ok && e.Expired(now) {
			s.entries.Remove(k)
			n++
		}
	}
	if n > 0 {
		s.expirations.Add(int64(n))
		s.metrics.RecordCacheEviction(reasonExpired, n)
	}
	return n
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.Len()
}

// Keys returns the stored keys from most to least recently used.
func (s *Store) Keys() []string {
	s.mu.Lock()
	keys := s.entries.Keys()
	s.mu.Unlock()
	slices.Reverse(keys)
	return keys
}

// Stats returns activity counters.
func (s *Store) Stats() Stats {
	return Stats{
		Entries:       s.Len(),
		Capacity:      s.capacity,
		Hits:          s.hits.Load(),
		StaleHits:     s.staleHits.Load(),
		Misses:        s.misses.Load(),
		Puts:          s.puts.Load(),
		Expirations:   s.expirations.Load(),
		Evictions:     s.evictions.Load(),
		Invalidations: s.invalidation.Load(),
	}
}

// Start runs the sweeper until ctx is done or Close is called.
func (s *Store) Start(ctx context.Context) {
	s.startMu.Lock()
	if s.started {
		s.startMu.Unlock()
		return
	}
	s.started = true
	s.startMu.Unlock()

	ticker := time.NewTicker(s.interval)
	go func() {
		defer close(s.stopped)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.done:
				return
			case <-ticker.C:
				if n := s.Sweep(); n > 0 {
					logging.Debug(s.logger, "cache sweep", logging.FieldCount, n)
				}
			}
		}
	}()
}

// Close stops the sweeper and waits for it to exit. It is safe to call more than once.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
	})
	s.startMu.Lock()
	started := s.started
	s.startMu.Unlock()
	if started {
		<-s.stopped
	}
	return nil
}
