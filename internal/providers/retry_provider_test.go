package providers

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"net/http"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/metrics"
)

var boxReq = Request{Kind: domain.KindBoxScore, ID: "0022300851"}

type flakeyFetcher struct {
	failures int
	err      error
	calls    int
}

func (f *flakeyFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	_ = ctx
	_ = req
	f.calls++
	if f.calls <= f.failures {
		if f.err != nil {
			return nil, f.err
		}
		return nil, errors.New("boom")
	}
	return []byte(`{"ok":true}`), nil
}

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{MaxAttempts: attempts, Backoff: time.Millisecond}
}

func TestRetryingFetcherRetriesAndSucceeds(t *testing.T) {
	fp := &flakeyFetcher{failures: 2}
	rp := NewRetryingFetcher(fp, slog.Default(), metrics.NewRecorder(), "flakey", fastRetry(3))

	body, err := rp.Fetch(context.Background(), boxReq)
	if err != nil {
		t.Fatalf("expected success, got error %v", err)
	}
	if string(body) != `{"ok":true}` {
		t.Fatalf("unexpected body %s", body)
	}
	if fp.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", fp.calls)
	}
}

func TestRetryingFetcherStopsAfterMaxAttempts(t *testing.T) {
	fp := &flakeyFetcher{failures: 5}
	rp := NewRetryingFetcher(fp, nil, metrics.NewRecorder(), "flakey", fastRetry(2))

	_, err := rp.Fetch(context.Background(), boxReq)
	if err == nil {
		t.Fatal("expected error after retries")
	}
	if fp.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", fp.calls)
	}
	fErr, ok := AsFetchError(err)
	if !ok {
		t.Fatalf("expected FetchError, got %T", err)
	}
	if fErr.Attempts != 2 || fErr.Kind != domain.KindBoxScore || fErr.ID != "0022300851" {
		t.Fatalf("unexpected fetch error %+v", fErr)
	}
}

func TestRetryingFetcherDoesNotRetryNotFound(t *testing.T) {
	notFound := &FetchError{Kind: domain.KindBoxScore, StatusCode: http.StatusNotFound, Err: ErrUpstreamNotFound}
	fp := &flakeyFetcher{failures: 5, err: notFound}
	rp := NewRetryingFetcher(fp, nil, nil, "flakey", fastRetry(3))

	_, err := rp.Fetch(context.Background(), boxReq)
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	if fp.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", fp.calls)
	}
}

func TestRetryingFetcherRetriesServerErrors(t *testing.T) {
	fp := &flakeyFetcher{failures: 1, err: &FetchError{Kind: domain.KindSchedule, StatusCode: http.StatusBadGateway}}
	rp := NewRetryingFetcher(fp, nil, nil, "flakey", fastRetry(3))

	if _, err := rp.Fetch(context.Background(), Request{Kind: domain.KindSchedule}); err != nil {
		t.Fatalf("expected success after 502, got %v", err)
	}
	if fp.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", fp.calls)
	}
}

func TestRetryingFetcherRespectsContextCancel(t *testing.T) {
	fp := &flakeyFetcher{failures: 5}
	rp := NewRetryingFetcher(fp, nil, metrics.NewRecorder(), "flakey", RetryConfig{MaxAttempts: 3, Backoff: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := rp.Fetch(ctx, boxReq)
	if err == nil {
		t.Fatal("expected context error")
	}
	if fp.calls != 1 {
		t.Fatalf("expected no retries on canceled context, got %d calls", fp.calls)
	}
}

func TestRetryingFetcherAppliesAttemptTimeout(t *testing.T) {
	slow := FetcherFunc(func(ctx context.Context, req Request) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	rp := NewRetryingFetcher(slow, nil, nil, "slow", RetryConfig{MaxAttempts: 2, Backoff: time.Millisecond, AttemptTimeout: 5 * time.Millisecond})

	start := time.Now()
	_, err := rp.Fetch(context.Background(), boxReq)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if _, ok := AsFetchError(err); !ok {
		t.Fatalf("expected timeout surfaced as FetchError")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("attempt timeout not applied")
	}
}

func TestRetryingFetcherUsesCustomBackoff(t *testing.T) {
	fp := &flakeyFetcher{failures: 1}
	rp := NewRetryingFetcher(fp, nil, metrics.NewRecorder(), "flakey", RetryConfig{MaxAttempts: 2, Backoff: time.Hour}).(*retryingFetcher)

	calls := 0
	rp.backoffFn = func(attempt int) time.Duration {
		calls++
		return 0
	}

	_, _ = rp.Fetch(context.Background(), boxReq)

	if calls == 0 {
		t.Fatalf("expected custom backoff to be invoked")
	}
}

func TestRetryingFetcherRecordsRateLimitMetrics(t *testing.T) {
	rec := metrics.NewRecorder()
	rp := NewRetryingFetcher(&rateLimitThenSuccessFetcher{}, nil, rec, "rl", fastRetry(2)).(*retryingFetcher)
	rp.backoffFn = func(attempt int) time.Duration {
		_ = attempt
		return 0
	}

	if _, err := rp.Fetch(context.Background(), boxReq); err != nil {
		t.Fatalf("expected success after retry, got %v", err)
	}

	key := "rl:boxscore"
	if got := rec.RateLimitHits(key); got != 1 {
		t.Fatalf("expected 1 rate limit hit, got %d", got)
	}
	if got := rec.ProviderCalls(key); got != 2 {
		t.Fatalf("expected 2 provider calls, got %d", got)
	}
	if got := rec.ProviderErrors(key); got != 1 {
		t.Fatalf("expected 1 error, got %d", got)
	}
}

func TestRetryingFetcherWrapsRateLimitExhaustion(t *testing.T) {
	fp := &flakeyFetcher{failures: 5, err: &RateLimitError{Provider: "nbacdn"}}
	rp := NewRetryingFetcher(fp, nil, nil, "rl", fastRetry(2))

	_, err := rp.Fetch(context.Background(), boxReq)
	fErr, ok := AsFetchError(err)
	if !ok || fErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 fetch error, got %v", err)
	}
	if _, ok := AsRateLimitError(err); !ok {
		t.Fatalf("expected rate limit error to remain reachable")
	}
}

func TestRetryingFetcherDelaySelection(t *testing.T) {
	rp := NewRetryingFetcherWithRNG(&flakeyFetcher{}, nil, nil, "rl", rand.New(rand.NewSource(1)), fastRetry(2)).(*retryingFetcher)
	rp.backoffFn = func(attempt int) time.Duration {
		_ = attempt
		return 50 * time.Millisecond
	}

	if delay := rp.computeDelay(&RateLimitError{RetryAfter: 3 * time.Second}, 1); delay != 3*time.Second {
		t.Fatalf("expected retry-after delay 3s, got %s", delay)
	}
	for i := 0; i < 20; i++ {
		delay := rp.computeDelay(errors.New("boom"), 1)
		if delay < 25*time.Millisecond || delay > 50*time.Millisecond {
			t.Fatalf("expected jittered delay between 25ms and 50ms, got %s", delay)
		}
	}
}

func TestDefaultBackoffGrowsAndCaps(t *testing.T) {
	rp := NewRetryingFetcher(&flakeyFetcher{}, nil, nil, "", RetryConfig{}).(*retryingFetcher)
	if rp.providerName != "provider" {
		t.Fatalf("expected fallback provider name, got %s", rp.providerName)
	}
	if rp.maxAttempts != defaultRetryAttempts {
		t.Fatalf("expected default attempts, got %d", rp.maxAttempts)
	}
	if rp.backoffFn(1) != defaultBackoff || rp.backoffFn(2) != 2*defaultBackoff {
		t.Fatalf("expected exponential default backoff")
	}
	if rp.backoffFn(30) != defaultMaxBackoff {
		t.Fatalf("expected backoff capped at %s", defaultMaxBackoff)
	}
}

func TestRetryingFetcherWithNilInner(t *testing.T) {
	rp := NewRetryingFetcher(nil, nil, nil, "", RetryConfig{})
	if _, err := rp.Fetch(context.Background(), boxReq); !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

type rateLimitThenSuccessFetcher struct {
	calls int
}

func (f *rateLimitThenSuccessFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	_ = ctx
	_ = req
	f.calls++
	if f.calls == 1 {
		return nil, &RateLimitError{
			Provider:   "test",
			StatusCode: 429,
		}
	}
	return []byte(`{}`), nil
}
