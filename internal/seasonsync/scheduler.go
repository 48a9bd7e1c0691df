package seasonsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

// DefaultSchedule runs the daily sync at 09:30 UTC, after the last West Coast games end.
const DefaultSchedule = "30 9 * * *"

// Scheduler triggers Sync for the current season on a cron schedule.
type Scheduler struct {
	cron   *cron.Cron
	syncer *Syncer
	logger *slog.Logger
	now    func() time.Time
	ctx    context.Context
	cancel context.CancelFunc
}

// NewScheduler parses spec (standard five-field cron, evaluated in UTC).
func NewScheduler(syncer *Syncer, spec string, logger *slog.Logger) (*Scheduler, error) {
	if syncer == nil {
		return nil, errors.New("syncer required")
	}
	if spec == "" {
		spec = DefaultSchedule
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:   cron.New(cron.WithLocation(time.UTC)),
		syncer: syncer,
		logger: logger,
		now:    syncer.now,
		ctx:    ctx,
		cancel: cancel,
	}
	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid sync schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *Scheduler) tick() {
	season := timeutil.SeasonForDate(s.now().In(timeutil.LocationOrDefault("")))
	_, err := s.syncer.Sync(s.ctx, season)
	if errors.Is(err, ErrSyncInProgress) {
		logging.Info(s.logger, "scheduled sync skipped; a sync is running", logging.FieldSeason, season)
	}
}

// Next reports the next activation time.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Start runs the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	logging.Info(s.logger, "season sync scheduled", "next", s.Next())
}

// Stop cancels a running sync and waits for it to return, or for ctx to end.
func (s *Scheduler) Stop(ctx context.Context) error {
	s.cancel()
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
