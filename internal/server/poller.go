package server

import (
	"context"

	"github.com/preston-bernstein/nba-stats-service/internal/poller"
)

// Poller defines the minimal poller behavior needed by the server.
type Poller interface {
	Start(ctx context.Context)
	Stop(ctx context.Context) error
	Status() poller.Status
}

// scheduler is the season sync trigger; *seasonsync.Scheduler satisfies it.
type scheduler interface {
	Start()
	Stop(ctx context.Context) error
}
