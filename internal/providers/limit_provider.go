package providers

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/preston-bernstein/nba-stats-service/internal/logging"
)

const (
	defaultRatePerSecond = 2.0
	defaultBurst         = 4
)

// rateLimitedFetcher enforces a shared token bucket across every resource kind.
type rateLimitedFetcher struct {
	next    Fetcher
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewRateLimitedFetcher returns a Fetcher that waits for a token before each call so
// upstream quotas are respected. Non-positive arguments select the defaults.
func NewRateLimitedFetcher(next Fetcher, perSecond float64, burst int, logger *slog.Logger) Fetcher {
	if perSecond <= 0 {
		perSecond = defaultRatePerSecond
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return &rateLimitedFetcher{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger,
	}
}

func (p *rateLimitedFetcher) Fetch(ctx context.Context, req Request) ([]byte, error) {
	if p == nil || p.next == nil {
		logWithProvider(ctx, nil, slog.LevelWarn, "rate-limited", "provider unavailable")
		return nil, ErrProviderUnavailable
	}
	start := time.Now()
	if err := p.limiter.Wait(ctx); err != nil {
		logWithProvider(ctx, p.logger, slog.LevelWarn, "rate-limited", "rate-limited fetch canceled",
			slog.String(logging.FieldKind, string(req.Kind)))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}
	if waited := time.Since(start); waited > 100*time.Millisecond {
		logWithProvider(ctx, p.logger, slog.LevelDebug, "rate-limited", "rate limiter delayed fetch",
			slog.String(logging.FieldKind, string(req.Kind)),
			slog.Int64(logging.FieldDurationMS, waited.Milliseconds()))
	}
	return p.next.Fetch(ctx, req)
}
