package providers

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
)

type countingFetcher struct {
	calls atomic.Int32
}

func (c *countingFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	c.calls.Add(1)
	return []byte(`{}`), nil
}

func TestRateLimitedFetcherSpacesCallsBeyondBurst(t *testing.T) {
	inner := &countingFetcher{}
	rl := NewRateLimitedFetcher(inner, 100, 1, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := rl.Fetch(context.Background(), Request{Kind: domain.KindSchedule}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Fatalf("expected calls beyond burst to wait, elapsed %s", elapsed)
	}
	if inner.calls.Load() != 3 {
		t.Fatalf("expected inner fetcher called 3 times, got %d", inner.calls.Load())
	}
}

func TestRateLimitedFetcherRespectsCanceledContext(t *testing.T) {
	inner := &countingFetcher{}
	rl := NewRateLimitedFetcher(inner, 0.001, 1, nil)
	_, _ = rl.Fetch(context.Background(), Request{Kind: domain.KindSchedule}) // drain the burst

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := rl.Fetch(ctx, Request{Kind: domain.KindSchedule}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled error, got %v", err)
	}
	if inner.calls.Load() != 1 {
		t.Fatalf("expected inner fetcher not called on canceled context")
	}
}

func TestRateLimitedFetcherHandlesNilInner(t *testing.T) {
	rl := NewRateLimitedFetcher(nil, 1, 1, nil)

	_, err := rl.Fetch(context.Background(), Request{Kind: domain.KindSchedule})
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestRateLimitedFetcherDefaults(t *testing.T) {
	rl := NewRateLimitedFetcher(&countingFetcher{}, 0, 0, nil).(*rateLimitedFetcher)
	if rl.limiter.Limit() != defaultRatePerSecond || rl.limiter.Burst() != defaultBurst {
		t.Fatalf("expected defaults, got %v/%d", rl.limiter.Limit(), rl.limiter.Burst())
	}
}
