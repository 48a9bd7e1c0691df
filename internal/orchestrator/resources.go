package orchestrator

import (
	"context"
	"strings"

	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/players"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
	"github.com/preston-bernstein/nba-stats-service/internal/providers"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
	"github.com/preston-bernstein/nba-stats-service/internal/views"
)

// BoxScoreKey is the cache key of a game's box score.
func BoxScoreKey(gameID, season string) cache.Key {
	return cache.NewKey(domain.KindBoxScore, "game", gameID, cache.ParamSeason, season)
}

// GameKey is the cache key of a single game summary.
func GameKey(gameID, season string) cache.Key {
	return cache.NewKey(domain.KindGame, "id", gameID, cache.ParamSeason, season)
}

// PlayByPlayKey is the cache key of a game's play-by-play feed.
func PlayByPlayKey(gameID, season string) cache.Key {
	return cache.NewKey(domain.KindPlayByPlay, "game", gameID, cache.ParamSeason, season)
}

func (o *Orchestrator) scheduleKey() cache.Key {
	return cache.NewKey(domain.KindSchedule, cache.ParamSeason, o.currentSeason())
}

func playerIndexKey() cache.Key {
	return cache.NewKey(domain.KindPlayer)
}

func (o *Orchestrator) currentSeason() string {
	return timeutil.SeasonForDate(o.now().In(o.loc))
}

func gameSeason(gameID string) (string, error) {
	season, err := games.SeasonFromID(strings.TrimSpace(gameID))
	if err != nil {
		return "", invalid("%v", err)
	}
	return season, nil
}

// ResolveGame returns the summary of one game.
func (o *Orchestrator) ResolveGame(ctx context.Context, gameID string) (Resolved[games.Game], error) {
	gameID = strings.TrimSpace(gameID)
	season, err := gameSeason(gameID)
	if err != nil {
		return Resolved[games.Game]{}, err
	}
	return load(ctx, o, GameKey(gameID, season), func(ctx context.Context) (games.Game, cache.Category, error) {
		g, _, err := fetchAs[games.Game](ctx, o, providers.Request{Kind: domain.KindGame, ID: gameID})
		return g, gameCategory(g), err
	})
}

// ResolveBoxScore returns the box score of one game.
func (o *Orchestrator) ResolveBoxScore(ctx context.Context, gameID string) (Resolved[stats.BoxScore], error) {
	gameID = strings.TrimSpace(gameID)
	season, err := gameSeason(gameID)
	if err != nil {
		return Resolved[stats.BoxScore]{}, err
	}
	return load(ctx, o, BoxScoreKey(gameID, season), func(ctx context.Context) (stats.BoxScore, cache.Category, error) {
		box, err := fetchGameDoc(ctx, o, domain.KindBoxScore, gameID, boxScoreFinal, true)
		return box, gameCategory(box.Game), err
	})
}

// ResolvePlayByPlay returns the play-by-play feed of one game.
func (o *Orchestrator) ResolvePlayByPlay(ctx context.Context, gameID string) (Resolved[stats.PlayByPlay], error) {
	gameID = strings.TrimSpace(gameID)
	season, err := gameSeason(gameID)
	if err != nil {
		return Resolved[stats.PlayByPlay]{}, err
	}
	return load(ctx, o, PlayByPlayKey(gameID, season), func(ctx context.Context) (stats.PlayByPlay, cache.Category, error) {
		pbp, err := fetchGameDoc(ctx, o, domain.KindPlayByPlay, gameID, playByPlayFinal, true)
		return pbp, playByPlayCategory(pbp), err
	})
}

// ResolveSchedule returns the current league schedule.
func (o *Orchestrator) ResolveSchedule(ctx context.Context) (Resolved[games.Schedule], error) {
	return load(ctx, o, o.scheduleKey(), func(ctx context.Context) (games.Schedule, cache.Category, error) {
		s, _, err := fetchAs[games.Schedule](ctx, o, providers.Request{Kind: domain.KindSchedule})
		return s, cache.CategorySchedule, err
	})
}

// ResolveStandings returns the standings of a season; an empty season means the current one.
func (o *Orchestrator) ResolveStandings(ctx context.Context, season string) (Resolved[teams.Standings], error) {
	if strings.TrimSpace(season) == "" {
		season = o.currentSeason()
	}
	season, err := timeutil.NormalizeSeason(season)
	if err != nil {
		return Resolved[teams.Standings]{}, invalid("%v", err)
	}
	key := cache.NewKey(domain.KindStandings, cache.ParamSeason, season)
	return load(ctx, o, key, func(ctx context.Context) (teams.Standings, cache.Category, error) {
		s, _, err := fetchAs[teams.Standings](ctx, o, providers.Request{Kind: domain.KindStandings, Season: season})
		return s, cache.CategoryStandings, err
	})
}

// ResolveTeam returns team background details. The team may be named by tricode, id,
// nickname, full name, city or Chinese name.
func (o *Orchestrator) ResolveTeam(ctx context.Context, query string) (Resolved[teams.Details], error) {
	team, ok := teams.Lookup(query)
	if !ok {
		return Resolved[teams.Details]{}, &NotFoundError{Kind: domain.KindTeam, Key: query, Reason: "unknown team"}
	}
	key := cache.NewKey(domain.KindTeam, "team", team.ID)
	return load(ctx, o, key, func(ctx context.Context) (teams.Details, cache.Category, error) {
		d, _, err := fetchAs[teams.Details](ctx, o, providers.Request{Kind: domain.KindTeam, ID: team.ID})
		return d, cache.CategoryTeam, err
	})
}

// ResolvePlayerIndex returns the league player index.
func (o *Orchestrator) ResolvePlayerIndex(ctx context.Context) (Resolved[players.Index], error) {
	return load(ctx, o, playerIndexKey(), func(ctx context.Context) (players.Index, cache.Category, error) {
		idx, _, err := fetchAs[players.Index](ctx, o, providers.Request{Kind: domain.KindPlayer})
		return idx, cache.CategoryPlayer, err
	})
}

// ResolvePlayer finds one player by name.
func (o *Orchestrator) ResolvePlayer(ctx context.Context, name string) (Resolved[players.Player], error) {
	normalized := players.NormalizeName(name)
	if normalized == "" {
		return Resolved[players.Player]{}, invalid("player name required")
	}
	key := cache.NewKey(domain.KindPlayer, "name", normalized)
	return load(ctx, o, key, func(ctx context.Context) (players.Player, cache.Category, error) {
		idx, err := o.playerIndex(ctx)
		if err != nil {
			return players.Player{}, "", err
		}
		p, ok := idx.Find(normalized)
		if !ok {
			return players.Player{}, "", &NotFoundError{Kind: domain.KindPlayer, Key: key.String(), Reason: "unknown player " + normalized}
		}
		return p, cache.CategoryPlayer, nil
	})
}

// AnalysisView builds the consumer projection of one game: box score totals and leaders plus
// the play-by-play event list. Games without a feed yet yield an empty event list.
func (o *Orchestrator) AnalysisView(ctx context.Context, gameID, language string) (views.AnalysisView, error) {
	if language == "" {
		language = o.language
	}
	if !views.SupportedLanguage(language) {
		return views.AnalysisView{}, invalid("unsupported language %q", language)
	}
	box, err := o.ResolveBoxScore(ctx, gameID)
	if err != nil {
		return views.AnalysisView{}, err
	}
	pbp, err := o.ResolvePlayByPlay(ctx, gameID)
	if err != nil && !isNotFound(err) {
		return views.AnalysisView{}, err
	}
	view := views.Build(box.Value, pbp.Value, language)
	view.Degraded = box.Degraded || pbp.Degraded
	return view, nil
}
