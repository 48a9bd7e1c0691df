package seasonsync

import (
	"context"

	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

// RolloverResult pairs the invalidation count with the follow-up sync report.
type RolloverResult struct {
	Season      string `json:"season"`
	Invalidated int    `json:"invalidated"`
	Report      Report `json:"report"`
}

// Rollover switches the service to a new season: it drops season-scoped cache entries
// of every other season and then syncs the new one, holding the run slot throughout.
func (s *Syncer) Rollover(ctx context.Context, season string) (RolloverResult, error) {
	label, err := timeutil.NormalizeSeason(season)
	if err != nil {
		return RolloverResult{}, err
	}
	release, err := s.acquire()
	if err != nil {
		return RolloverResult{}, err
	}
	defer release()

	res := RolloverResult{Season: label}
	res.Invalidated = s.source.Invalidate(cache.OtherSeasons(label))
	logging.Info(s.logger, "season rollover",
		logging.FieldSeason, label,
		logging.FieldCount, res.Invalidated,
	)
	res.Report, err = s.sync(ctx, label)
	return res, err
}
