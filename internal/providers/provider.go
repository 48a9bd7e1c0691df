package providers

import (
	"context"
	"strings"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
)

// Request identifies one upstream resource. ID is the game id for game, boxscore and
// playbyplay requests and the team id for team requests; Season selects the standings table.
type Request struct {
	Kind   domain.Kind
	ID     string
	Season string
}

func (r Request) String() string {
	parts := []string{string(r.Kind)}
	if r.ID != "" {
		parts = append(parts, r.ID)
	}
	if r.Season != "" {
		parts = append(parts, r.Season)
	}
	return strings.Join(parts, ":")
}

// Fetcher retrieves raw provider-native payloads. Implementations must be safe for
// concurrent use and must honour ctx cancellation.
type Fetcher interface {
	Fetch(ctx context.Context, req Request) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, req Request) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}
