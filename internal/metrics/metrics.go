package metrics

import (
	"sync"
	"time"
)

type providerStats struct {
	calls           int
	errors          int
	rateLimitHits   int
	lastRetryAfter  time.Duration
	lastCallLatency time.Duration
}

// Recorder captures in-memory counters about provider calls, cache lookups and season
// syncs, mirroring them to OpenTelemetry instruments when configured.
type Recorder struct {
	mu        sync.Mutex
	stats     map[string]*providerStats
	lookups   map[string]int
	evictions map[string]int
	coalesced int
	syncRuns  int
	syncFails int
	otel      *otelInstruments
}

func NewRecorder() *Recorder {
	return newRecorder(nil)
}

func newRecorder(otel *otelInstruments) *Recorder {
	return &Recorder{
		stats:     make(map[string]*providerStats),
		lookups:   make(map[string]int),
		evictions: make(map[string]int),
		otel:      otel,
	}
}

// RecordProviderAttempt increments counters for a provider call and stores the last observed latency.
func (r *Recorder) RecordProviderAttempt(provider string, duration time.Duration, err error) {
	if r == nil {
		return
	}

	stats := r.ensureStats(provider)
	stats.calls++
	stats.lastCallLatency = duration
	if err != nil {
		stats.errors++
	}
	if r.otel != nil {
		r.otel.recordProviderAttempt(provider, duration, err)
	}
}

// RecordRateLimit tracks that a provider response hit a rate limit and stores the last Retry-After.
func (r *Recorder) RecordRateLimit(provider string, retryAfter time.Duration) {
	if r == nil {
		return
	}

	stats := r.ensureStats(provider)
	stats.rateLimitHits++
	if retryAfter > 0 {
		stats.lastRetryAfter = retryAfter
	}
	if r.otel != nil {
		r.otel.recordRateLimit(provider, retryAfter)
	}
}

// ProviderCalls returns the total attempts recorded for a provider.
func (r *Recorder) ProviderCalls(provider string) int {
	return r.Snapshot(provider).Calls
}

// ProviderErrors returns the total failed attempts recorded for a provider.
func (r *Recorder) ProviderErrors(provider string) int {
	return r.Snapshot(provider).Errors
}

// RateLimitHits returns the number of rate limit events seen for a provider.
func (r *Recorder) RateLimitHits(provider string) int {
	return r.Snapshot(provider).RateLimitHits
}

// LastRetryAfter returns the most recent Retry-After recorded for a provider.
func (r *Recorder) LastRetryAfter(provider string) time.Duration {
	return r.Snapshot(provider).LastRetryAfter
}

// LastCallLatency returns the last recorded latency for a provider call.
func (r *Recorder) LastCallLatency(provider string) time.Duration {
	return r.Snapshot(provider).LastCallLatency
}

// Snapshot returns a copy of the current stats for the provider.
type Snapshot struct {
	Calls           int
	Errors          int
	RateLimitHits   int
	LastRetryAfter  time.Duration
	LastCallLatency time.Duration
}

func (r *Recorder) Snapshot(provider string) Snapshot {
	if r == nil {
		return Snapshot{}
	}
	stats := r.snapshot(provider)
	return Snapshot{
		Calls:           stats.calls,
		Errors:          stats.errors,
		RateLimitHits:   stats.rateLimitHits,
		LastRetryAfter:  stats.lastRetryAfter,
		LastCallLatency: stats.lastCallLatency,
	}
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordHTTPRequest(method, path, status, duration)
}

// RecordPollerCycle tracks poller cycles and errors.
func (r *Recorder) RecordPollerCycle(duration time.Duration, err error) {
	if r == nil || r.otel == nil {
		return
	}
	r.otel.recordPoller(duration, err)
}

// RecordCacheLookup counts a cache lookup by kind and outcome (fresh, stale, miss).
func (r *Recorder) RecordCacheLookup(kind, state string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.lookups[state]++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCacheLookup(kind, state)
	}
}

// RecordCacheEviction counts an entry leaving the cache (expired, capacity, invalidated).
func (r *Recorder) RecordCacheEviction(reason string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.mu.Lock()
	r.evictions[reason] += n
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCacheEviction(reason, n)
	}
}

// RecordCoalesced counts a caller that joined an in-flight fetch instead of starting one.
func (r *Recorder) RecordCoalesced(kind string) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.coalesced++
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordCoalesced(kind)
	}
}

// RecordSyncRun tracks a finished season sync run.
func (r *Recorder) RecordSyncRun(season string, committed int, duration time.Duration, err error) {
	if r == nil {
		return
	}
	r.mu.Lock()
	r.syncRuns++
	if err != nil {
		r.syncFails++
	}
	r.mu.Unlock()
	if r.otel != nil {
		r.otel.recordSyncRun(season, committed, duration, err)
	}
}

// CacheSnapshot summarizes cache and sync counters.
type CacheSnapshot struct {
	Lookups   map[string]int
	Evictions map[string]int
	Coalesced int
	SyncRuns  int
	SyncFails int
}

// Cache returns a copy of the cache and sync counters.
func (r *Recorder) Cache() CacheSnapshot {
	if r == nil {
		return CacheSnapshot{}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := CacheSnapshot{
		Lookups:   make(map[string]int, len(r.lookups)),
		Evictions: make(map[string]int, len(r.evictions)),
		Coalesced: r.coalesced,
		SyncRuns:  r.syncRuns,
		SyncFails: r.syncFails,
	}
	for k, v := range r.lookups {
		out.Lookups[k] = v
	}
	for k, v := range r.evictions {
		out.Evictions[k] = v
	}
	return out
}

func (r *Recorder) ensureStats(provider string) *providerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[provider]
	if !ok {
		stats = &providerStats{}
		r.stats[provider] = stats
	}
	return stats
}

func (r *Recorder) snapshot(provider string) providerStats {
	r.mu.Lock()
	defer r.mu.Unlock()

	if stats, ok := r.stats[provider]; ok && stats != nil {
		return *stats
	}
	return providerStats{}
}
