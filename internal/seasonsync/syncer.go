// Package seasonsync backfills a season's finished games into the cache and archive,
// one batch at a time, behind a persistent cursor.
package seasonsync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/metrics"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

const (
	DefaultBatchSize   = 10
	DefaultConcurrency = 4
	recordRunTimeout   = 5 * time.Second

	// lateTipWindow is how long a game still listed as scheduled after its tip time counts
	// as about to start. Older listings are treated as postponed and do not hold the cursor.
	lateTipWindow = 12 * time.Hour
)

// State is the phase of a running sync.
type State string

const (
	StateIdle       State = "idle"
	StateScanning   State = "scanning"
	StateFetching   State = "fetching"
	StateCommitting State = "committing"
)

// Source reads from upstream and writes through the cache. *orchestrator.Orchestrator
// satisfies it.
type Source interface {
	FetchSchedule(ctx context.Context) (games.Schedule, error)
	FetchBoxScore(ctx context.Context, gameID string) (stats.BoxScore, error)
	FetchPlayByPlay(ctx context.Context, gameID string) (stats.PlayByPlay, error)
	CommitBoxScore(ctx context.Context, box stats.BoxScore) error
	CommitPlayByPlay(ctx context.Context, pbp stats.PlayByPlay) error
	Invalidate(match func(cache.Key) bool) int
}

// gameDocs is everything a batch writes for one game. PlayByPlay is nil for games that
// have no feed upstream.
type gameDocs struct {
	box        stats.BoxScore
	playByPlay *stats.PlayByPlay
}

// Options configures a Syncer.
type Options struct {
	BatchSize   int
	Concurrency int
	Logger      *slog.Logger
	Metrics     *metrics.Recorder
	Now         func() time.Time
}

// Syncer runs one season sync at a time.
type Syncer struct {
	source      Source
	store       CursorStore
	batchSize   int
	concurrency int
	logger      *slog.Logger
	metrics     *metrics.Recorder
	now         func() time.Time

	running atomic.Bool
	mu      sync.RWMutex
	state   State
	last    *Report
}

// NewSyncer constructs a syncer.
func NewSyncer(source Source, store CursorStore, opts Options) *Syncer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Syncer{
		source:      source,
		store:       store,
		batchSize:   opts.BatchSize,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
		metrics:     opts.Metrics,
		now:         opts.Now,
		state:       StateIdle,
	}
}

// State reports the current phase.
func (s *Syncer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// LastReport returns the report of the most recent run, if any.
func (s *Syncer) LastReport() (Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return Report{}, false
	}
	return *s.last, true
}

func (s *Syncer) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// Sync commits the season's finished games that lie past the cursor. The cursor only
// moves after a whole batch has been written through; a failing batch leaves it in place
// and the call returns a *SyncError.
func (s *Syncer) Sync(ctx context.Context, season string) (Report, error) {
	label, err := timeutil.NormalizeSeason(season)
	if err != nil {
		return Report{}, err
	}
	release, err := s.acquire()
	if err != nil {
		return Report{}, err
	}
	defer release()
	return s.sync(ctx, label)
}

// acquire claims the single run slot. The returned func releases it.
func (s *Syncer) acquire() (func(), error) {
	if s.source == nil || s.store == nil {
		return nil, errNotConfigured
	}
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrSyncInProgress
	}
	return func() {
		s.setState(StateIdle)
		s.running.Store(false)
	}, nil
}

// sync runs one pass for a normalized season. Callers hold the run slot.
func (s *Syncer) sync(ctx context.Context, label string) (Report, error) {
	report := Report{
		RunID:     uuid.NewString(),
		Season:    label,
		StartedAt: s.now().UTC(),
		Committed: []string{},
		Succeeded: []string{},
		Failed:    []string{},
	}
	logger := s.logger
	if logger != nil {
		logger = logger.With(logging.FieldRunID, report.RunID, logging.FieldSeason, label)
	}
	logging.Info(logger, "season sync starting")

	runErr := s.run(ctx, logger, &report)
	if runErr != nil {
		report.Error = runErr.Error()
	}
	report.FinishedAt = s.now().UTC()

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordRunTimeout)
	if err := s.store.RecordRun(recordCtx, report); err != nil {
		logging.Warn(logger, "failed to record sync run", "error", err)
	}
	cancel()
	s.metrics.RecordSyncRun(label, len(report.Committed), report.Duration(), runErr)

	s.mu.Lock()
	saved := report
	s.last = &saved
	s.mu.Unlock()

	if runErr != nil {
		logging.Error(logger, "season sync failed", runErr,
			"committed", len(report.Committed),
			"failed", len(report.Failed),
		)
		return report, runErr
	}
	logging.Info(logger, "season sync finished",
		"scanned", report.Scanned,
		"committed", len(report.Committed),
		"batches", report.Batches,
		logging.FieldDurationMS, report.Duration().Milliseconds(),
	)
	return report, nil
}

func (s *Syncer) run(ctx context.Context, logger *slog.Logger, report *Report) error {
	season := report.Season
	fail := func(err error) error {
		return &SyncError{
			Season:    season,
			Committed: report.Committed,
			Succeeded: report.Succeeded,
			Failed:    report.Failed,
			Err:       err,
		}
	}

	s.setState(StateScanning)
	cur, err := s.store.Load(ctx)
	if err != nil {
		return fail(fmt.Errorf("load cursor: %w", err))
	}
	if cur.Season != season {
		cur = Cursor{Season: season}
	}
	report.CursorBefore = cur
	report.CursorAfter = cur

	schedule, err := s.source.FetchSchedule(ctx)
	if err != nil {
		return fail(fmt.Errorf("fetch schedule: %w", err))
	}
	if schedule.Season != "" && schedule.Season != season {
		return fail(fmt.Errorf("upstream schedule covers %s", schedule.Season))
	}
	pending, heldBy := candidates(schedule, cur, s.now())
	report.Scanned = len(pending)
	report.HeldBy = heldBy
	logging.Debug(logger, "season sync scanned", logging.FieldCount, len(pending), "held_by", heldBy)

	for start := 0; start < len(pending); start += s.batchSize {
		if err := ctx.Err(); err != nil {
			return fail(err)
		}
		batch := pending[start:min(start+s.batchSize, len(pending))]
		report.Batches++

		s.setState(StateFetching)
		docs, errs := s.fetchBatch(ctx, batch)
		var batchErr error
		for i, g := range batch {
			if errs[i] != nil {
				report.Failed = append(report.Failed, g.ID)
				batchErr = errors.Join(batchErr, fmt.Errorf("%s: %w", g.ID, errs[i]))
				logging.Warn(logger, "game fetch failed", logging.FieldGameID, g.ID, "error", errs[i])
				continue
			}
			report.Succeeded = append(report.Succeeded, g.ID)
		}
		if batchErr != nil {
			return fail(batchErr)
		}

		s.setState(StateCommitting)
		for i, d := range docs {
			if err := s.commit(ctx, d); err != nil {
				report.Failed = append(report.Failed, batch[i].ID)
				return fail(fmt.Errorf("commit: %w", err))
			}
		}
		next := cur.advance(batch[len(batch)-1], s.now())
		if err := s.store.Save(ctx, next); err != nil {
			return fail(fmt.Errorf("save cursor: %w", err))
		}
		cur = next
		report.CursorAfter = cur
		for _, g := range batch {
			report.Committed = append(report.Committed, g.ID)
		}
		logging.Debug(logger, "season sync batch committed",
			logging.FieldCount, len(batch),
			logging.FieldGameID, cur.LastGameID,
		)
	}
	return nil
}

// fetchBatch fetches the box score and play-by-play of every game in the batch; one
// failure does not stop the others.
func (s *Syncer) fetchBatch(ctx context.Context, batch []games.Game) ([]gameDocs, []error) {
	docs := make([]gameDocs, len(batch))
	errs := make([]error, len(batch))
	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, game := range batch {
		g.Go(func() error {
			docs[i], errs[i] = s.fetchGame(ctx, game.ID)
			return nil
		})
	}
	_ = g.Wait()
	return docs, errs
}

func (s *Syncer) fetchGame(ctx context.Context, gameID string) (gameDocs, error) {
	box, err := s.source.FetchBoxScore(ctx, gameID)
	if err != nil {
		return gameDocs{}, err
	}
	if !box.Game.Final() {
		return gameDocs{}, fmt.Errorf("box score of %s is not final", gameID)
	}
	d := gameDocs{box: box}
	if !games.HasPlayByPlay(gameID) {
		return d, nil
	}
	pbp, err := s.source.FetchPlayByPlay(ctx, gameID)
	if err != nil {
		return gameDocs{}, fmt.Errorf("play-by-play: %w", err)
	}
	if !pbp.Finished() {
		return gameDocs{}, fmt.Errorf("play-by-play of %s is not finished", gameID)
	}
	d.playByPlay = &pbp
	return d, nil
}

func (s *Syncer) commit(ctx context.Context, d gameDocs) error {
	if err := s.source.CommitBoxScore(ctx, d.box); err != nil {
		return err
	}
	if d.playByPlay == nil {
		return nil
	}
	return s.source.CommitPlayByPlay(ctx, *d.playByPlay)
}

// candidates returns the season's finished regular and postseason games past the cursor,
// ordered by (start time, id). The list stops before the first game that has started but
// is not final, so the cursor never moves past it; heldBy names that game.
func candidates(schedule games.Schedule, cur Cursor, now time.Time) (out []games.Game, heldBy string) {
	var season []games.Game
	for _, g := range schedule.Games {
		if g.Season != "" && g.Season != cur.Season {
			continue
		}
		if g.SeasonType == games.SeasonPreseason || g.SeasonType == games.SeasonAllStar {
			continue
		}
		season = append(season, g)
	}
	sort.Slice(season, func(i, j int) bool {
		if !season[i].StartTime.Equal(season[j].StartTime) {
			return season[i].StartTime.Before(season[j].StartTime)
		}
		return season[i].ID < season[j].ID
	})
	for _, g := range season {
		if cur.Passed(g) {
			continue
		}
		if g.Final() {
			out = append(out, g)
			continue
		}
		if underway(g, now) {
			return out, g.ID
		}
	}
	return out, ""
}

// underway reports whether an unfinished game has tipped off or is about to.
func underway(g games.Game, now time.Time) bool {
	switch g.Status {
	case games.StatusLive:
		return true
	case games.StatusScheduled:
		return !g.StartTime.After(now) && now.Sub(g.StartTime) < lateTipWindow
	default:
		return false
	}
}
