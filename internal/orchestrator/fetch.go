package orchestrator

import (
	"context"
	"fmt"

	"github.com/preston-bernstein/nba-stats-service/internal/archive"
	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/players"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/logging"
	"github.com/preston-bernstein/nba-stats-service/internal/parser"
	"github.com/preston-bernstein/nba-stats-service/internal/providers"
)

// fetchAs fetches and parses one upstream document.
func fetchAs[T any](ctx context.Context, o *Orchestrator, req providers.Request) (T, []byte, error) {
	var zero T
	if o.fetcher == nil {
		return zero, nil, providers.ErrProviderUnavailable
	}
	raw, err := o.fetcher.Fetch(ctx, req)
	if err != nil {
		if providers.IsNotFound(err) {
			return zero, nil, &NotFoundError{Kind: req.Kind, Key: req.String(), Reason: "upstream has no such resource"}
		}
		return zero, nil, err
	}
	rec, err := parser.Parse(raw, req.Kind)
	if err != nil {
		logging.Error(o.log(ctx), "upstream payload rejected", err,
			logging.FieldKind, string(req.Kind),
			logging.FieldGameID, req.ID,
		)
		return zero, nil, err
	}
	v, ok := rec.(T)
	if !ok {
		return zero, nil, fmt.Errorf("parse %s: unexpected record %T", req.Kind, rec)
	}
	return v, raw, nil
}

// fetchGameDoc serves a per-game document from the archive when present and otherwise from
// upstream. When save is set, finished documents fetched upstream are archived.
func fetchGameDoc[T any](ctx context.Context, o *Orchestrator, kind domain.Kind, gameID string, finished func(T) bool, save bool) (T, error) {
	season, err := games.SeasonFromID(gameID)
	if err != nil {
		var zero T
		return zero, invalid("%v", err)
	}
	doc := archive.Doc{Kind: kind, Season: season, ID: gameID}
	if v, ok := loadArchived[T](ctx, o, doc); ok {
		return v, nil
	}
	v, raw, err := fetchAs[T](ctx, o, providers.Request{Kind: kind, ID: gameID})
	if err != nil {
		return v, err
	}
	if save && o.archive != nil && finished(v) {
		if err := o.archive.Save(ctx, doc, raw); err != nil {
			logging.Warn(o.log(ctx), "archive write failed", logging.FieldGameID, gameID, "error", err)
		}
	}
	return v, nil
}

func loadArchived[T any](ctx context.Context, o *Orchestrator, doc archive.Doc) (T, bool) {
	var zero T
	if o.archive == nil {
		return zero, false
	}
	raw, ok, err := o.archive.Load(ctx, doc)
	if err != nil {
		logging.Warn(o.log(ctx), "archive read failed", logging.FieldGameID, doc.ID, "error", err)
		return zero, false
	}
	if !ok {
		return zero, false
	}
	rec, err := parser.Parse(raw, doc.Kind)
	if err != nil {
		logging.Warn(o.log(ctx), "archived payload rejected", logging.FieldGameID, doc.ID, "error", err)
		return zero, false
	}
	v, ok := rec.(T)
	return v, ok
}

func boxScoreFinal(b stats.BoxScore) bool { return b.Game.Final() }

func playByPlayFinal(p stats.PlayByPlay) bool { return p.Finished() }

// schedule returns the current league schedule, from cache when fresh.
func (o *Orchestrator) schedule(ctx context.Context) (games.Schedule, error) {
	if s, ok := peek[games.Schedule](o, o.scheduleKey()); ok {
		return s, nil
	}
	s, _, err := fetchAs[games.Schedule](ctx, o, providers.Request{Kind: domain.KindSchedule})
	return s, err
}

// playerIndex returns the player index, from cache when fresh.
func (o *Orchestrator) playerIndex(ctx context.Context) (players.Index, error) {
	if idx, ok := peek[players.Index](o, playerIndexKey()); ok {
		return idx, nil
	}
	idx, _, err := fetchAs[players.Index](ctx, o, providers.Request{Kind: domain.KindPlayer})
	return idx, err
}
