package orchestrator

import (
	"context"
	"fmt"

	"github.com/preston-bernstein/nba-stats-service/internal/archive"
	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/parser"
	"github.com/preston-bernstein/nba-stats-service/internal/providers"
)

// The methods below serve batch writers such as the season sync. They bypass the cache on
// read and write nothing until a Commit method is called.

// FetchSchedule fetches the league schedule from upstream.
func (o *Orchestrator) FetchSchedule(ctx context.Context) (games.Schedule, error) {
	s, _, err := fetchAs[games.Schedule](ctx, o, providers.Request{Kind: domain.KindSchedule})
	return s, err
}

// FetchBoxScore returns a game's box score from the archive or upstream without caching it.
func (o *Orchestrator) FetchBoxScore(ctx context.Context, gameID string) (stats.BoxScore, error) {
	return fetchGameDoc(ctx, o, domain.KindBoxScore, gameID, boxScoreFinal, false)
}

// CommitBoxScore writes a box score and its game summary through the cache and, for
// finished games, the archive.
func (o *Orchestrator) CommitBoxScore(ctx context.Context, box stats.BoxScore) error {
	g := box.Game
	season, err := gameSeason(g.ID)
	if err != nil {
		return err
	}
	category := gameCategory(g)
	if _, err := o.cache.Put(BoxScoreKey(g.ID, season), box, category); err != nil {
		return err
	}
	if _, err := o.cache.Put(GameKey(g.ID, season), g, category); err != nil {
		return err
	}
	if o.archive == nil || !g.Final() {
		return nil
	}
	raw, err := parser.Serialize(box)
	if err != nil {
		return fmt.Errorf("commit %s: %w", g.ID, err)
	}
	if err := o.archive.Save(ctx, archive.Doc{Kind: domain.KindBoxScore, Season: season, ID: g.ID}, raw); err != nil {
		return fmt.Errorf("commit %s: %w", g.ID, err)
	}
	return nil
}

// FetchPlayByPlay returns a game's play-by-play feed from the archive or upstream without
// caching it.
func (o *Orchestrator) FetchPlayByPlay(ctx context.Context, gameID string) (stats.PlayByPlay, error) {
	return fetchGameDoc(ctx, o, domain.KindPlayByPlay, gameID, playByPlayFinal, false)
}

// CommitPlayByPlay writes a play-by-play feed through the cache and, once the feed holds
// the game-end marker, the archive.
func (o *Orchestrator) CommitPlayByPlay(ctx context.Context, pbp stats.PlayByPlay) error {
	season, err := gameSeason(pbp.GameID)
	if err != nil {
		return err
	}
	if _, err := o.cache.Put(PlayByPlayKey(pbp.GameID, season), pbp, playByPlayCategory(pbp)); err != nil {
		return err
	}
	if o.archive == nil || !pbp.Finished() {
		return nil
	}
	raw, err := parser.Serialize(pbp)
	if err != nil {
		return fmt.Errorf("commit play-by-play %s: %w", pbp.GameID, err)
	}
	if err := o.archive.Save(ctx, archive.Doc{Kind: domain.KindPlayByPlay, Season: season, ID: pbp.GameID}, raw); err != nil {
		return fmt.Errorf("commit play-by-play %s: %w", pbp.GameID, err)
	}
	return nil
}

// InvalidateSeason drops every cache entry of one season.
func (o *Orchestrator) InvalidateSeason(season string) int {
	return o.cache.Invalidate(cache.SeasonScope(season))
}
