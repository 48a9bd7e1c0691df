package providers

import (
	"context"
	"log/slog"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/metrics"
)

const (
	defaultRetryAttempts  = 3
	defaultBackoff        = 200 * time.Millisecond
	defaultMaxBackoff     = 5 * time.Second
	defaultAttemptTimeout = 10 * time.Second
)

type backoffFunc func(attempt int) time.Duration

// RetryConfig tunes the retrying decorator. Zero values select the defaults.
type RetryConfig struct {
	MaxAttempts    int
	Backoff        time.Duration
	AttemptTimeout time.Duration
}

// retryingFetcher wraps a Fetcher with per-attempt timeouts and retry/backoff behavior.
type retryingFetcher struct {
	inner          Fetcher
	logger         *slog.Logger
	metrics        *metrics.Recorder
	providerName   string
	maxAttempts    int
	attemptTimeout time.Duration
	backoffFn      backoffFunc

	rngMu sync.Mutex
	rng   *rand.Rand
}

// NewRetryingFetcher wraps the given fetcher with retries.
func NewRetryingFetcher(inner Fetcher, logger *slog.Logger, recorder *metrics.Recorder, providerName string, cfg RetryConfig) Fetcher {
	return NewRetryingFetcherWithRNG(inner, logger, recorder, providerName, nil, cfg)
}

// NewRetryingFetcherWithRNG allows tests to inject a deterministic jitter source.
func NewRetryingFetcherWithRNG(inner Fetcher, logger *slog.Logger, recorder *metrics.Recorder, providerName string, rng *rand.Rand, cfg RetryConfig) Fetcher {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultRetryAttempts
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = defaultBackoff
	}
	if cfg.AttemptTimeout <= 0 {
		cfg.AttemptTimeout = defaultAttemptTimeout
	}
	if providerName == "" {
		providerName = "provider"
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	base := cfg.Backoff
	return &retryingFetcher{
		inner:          inner,
		logger:         logger,
		metrics:        recorder,
		providerName:   providerName,
		maxAttempts:    cfg.MaxAttempts,
		attemptTimeout: cfg.AttemptTimeout,
		rng:            rng,
		backoffFn: func(attempt int) time.Duration {
			d := base << (attempt - 1)
			if d <= 0 || d > defaultMaxBackoff {
				return defaultMaxBackoff
			}
			return d
		},
	}
}

func (r *retryingFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if r.inner == nil {
		return nil, &FetchError{Kind: req.Kind, ID: req.ID, Err: ErrProviderUnavailable}
	}
	policy := &delayPolicy{fetcher: r, max: r.maxAttempts}
	metricKey := r.providerName + ":" + string(req.Kind)

	var body []byte
	operation := func() error {
		policy.attempt++
		start := time.Now()
		attemptCtx, cancel := context.WithTimeout(ctx, r.attemptTimeout)
		out, err := r.inner.Fetch(attemptCtx, req)
		cancel()
		r.metrics.RecordProviderAttempt(metricKey, time.Since(start), err)
		if err == nil {
			body = out
			return nil
		}
		if rlErr, ok := AsRateLimitError(err); ok {
			r.metrics.RecordRateLimit(metricKey, rlErr.RetryAfter)
		}
		policy.lastErr = err
		if !Retryable(err) || ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, delay time.Duration) {
		logWithProvider(ctx, r.logger, slog.LevelWarn, r.providerName, "provider fetch retry",
			slog.String(logging.FieldKind, string(req.Kind)),
			slog.Int(logging.FieldAttempt, policy.attempt),
			slog.Int("max_attempts", r.maxAttempts),
			slog.Int64("delay_ms", delay.Milliseconds()),
			slog.Any("error", err),
		)
	}

	err := backoff.RetryNotify(operation, backoff.WithContext(policy, ctx), notify)
	if err == nil {
		return body, nil
	}
	if !IsNotFound(err) {
		logWithProvider(ctx, r.logger, slog.LevelWarn, r.providerName, "provider fetch failed",
			slog.String(logging.FieldKind, string(req.Kind)),
			slog.Int(logging.FieldAttempt, policy.attempt),
			slog.Any("error", err),
		)
	}
	return nil, r.wrap(req, policy.attempt, err)
}

// wrap normalizes the final error into a FetchError carrying the attempt count.
func (r *retryingFetcher) wrap(req Request, attempts int, err error) error {
	if fErr, ok := AsFetchError(err); ok {
		out := *fErr
		out.Attempts = attempts
		return &out
	}
	out := &FetchError{Kind: req.Kind, ID: req.ID, Attempts: attempts, Err: err}
	if rlErr, ok := AsRateLimitError(err); ok {
		out.StatusCode = rlErr.StatusCode
		if out.StatusCode == 0 {
			out.StatusCode = http.StatusTooManyRequests
		}
	}
	return out
}

// computeDelay honours Retry-After from rate limit errors and otherwise applies
// jitter between half and all of the backoff for the attempt.
func (r *retryingFetcher) computeDelay(err error, attempt int) time.Duration {
	if rlErr, ok := AsRateLimitError(err); ok && rlErr.RetryAfter > 0 {
		return rlErr.RetryAfter
	}
	base := r.backoffFn(attempt)
	if base <= 0 {
		return 0
	}
	half := base / 2
	r.rngMu.Lock()
	jitter := time.Duration(r.rng.Int63n(int64(half) + 1))
	r.rngMu.Unlock()
	return half + jitter
}

// delayPolicy adapts computeDelay to backoff.BackOff and stops after maxAttempts.
type delayPolicy struct {
	fetcher *retryingFetcher
	max     int
	attempt int
	lastErr error
}

func (d *delayPolicy) NextBackOff() time.Duration {
	if d.attempt >= d.max {
		return backoff.Stop
	}
	return d.fetcher.computeDelay(d.lastErr, d.attempt)
}

func (d *delayPolicy) Reset() {
	d.attempt = 0
	d.lastErr = nil
}
