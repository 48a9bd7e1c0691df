package orchestrator

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/players"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

// Request names a game by team or player plus a date selector. A request is in player mode
// when Player is set or ByPlayer is true; empty fields fall back to the configured defaults.
type Request struct {
	Team     string
	Player   string
	Date     string
	ByPlayer bool
}

// Result is a resolved game. Provisional marks a game that is not final yet, so its data
// may still change.
type Result struct {
	Key         string     `json:"key"`
	Game        games.Game `json:"game"`
	Provisional bool       `json:"provisional"`
	Degraded    bool       `json:"degraded"`
}

type resolution struct {
	game        games.Game
	provisional bool
}

type target struct {
	tricode  string
	player   string
	selector timeutil.Selector
	season   string
}

func (t target) key() cache.Key {
	subject, value := "team", t.tricode
	if t.player != "" {
		subject, value = "player", t.player
	}
	return cache.NewKey(domain.KindGame, subject, value, "date", t.selector.String(), cache.ParamSeason, t.season)
}

// Resolve returns the game a request refers to.
func (o *Orchestrator) Resolve(ctx context.Context, req Request) (Result, error) {
	t, err := o.normalize(req)
	if err != nil {
		return Result{}, err
	}
	key := t.key()
	r, err := load(ctx, o, key, func(ctx context.Context) (resolution, cache.Category, error) {
		return o.resolveGame(ctx, key.String(), t)
	})
	if err != nil {
		return Result{Key: r.Key}, err
	}
	return Result{Key: r.Key, Game: r.Value.game, Provisional: r.Value.provisional, Degraded: r.Degraded}, nil
}

func (o *Orchestrator) normalize(req Request) (target, error) {
	var t target
	if strings.TrimSpace(req.Player) != "" || req.ByPlayer {
		name := req.Player
		if strings.TrimSpace(name) == "" {
			name = o.defaults.Player
		}
		t.player = players.NormalizeName(name)
	} else {
		query := req.Team
		if strings.TrimSpace(query) == "" {
			query = o.defaults.Team
		}
		team, ok := teams.Lookup(query)
		if !ok {
			return target{}, &NotFoundError{Kind: domain.KindTeam, Key: query, Reason: "unknown team"}
		}
		t.tricode = team.Abbreviation
	}

	raw := req.Date
	if strings.TrimSpace(raw) == "" {
		raw = o.defaults.Date
	}
	sel, err := timeutil.ParseSelector(raw)
	if err != nil {
		return target{}, invalid("%v", err)
	}
	now := o.now()
	t.selector = sel.Canonical(now, o.loc)
	t.season = t.selector.Season(now, o.loc)
	return t, nil
}

func (o *Orchestrator) resolveGame(ctx context.Context, key string, t target) (resolution, cache.Category, error) {
	tricode := t.tricode
	if t.player != "" {
		idx, err := o.playerIndex(ctx)
		if err != nil {
			return resolution{}, "", err
		}
		p, ok := idx.Find(t.player)
		if !ok {
			return resolution{}, "", &NotFoundError{Kind: domain.KindPlayer, Key: key, Reason: "unknown player " + t.player}
		}
		if p.Team.Abbreviation == "" {
			return resolution{}, "", &NotFoundError{Kind: domain.KindPlayer, Key: key, Reason: p.FullName() + " is not on a roster"}
		}
		tricode = p.Team.Abbreviation
	}

	sched, err := o.schedule(ctx)
	if err != nil {
		return resolution{}, "", err
	}
	now := o.now()
	var (
		g  games.Game
		ok bool
	)
	if t.selector.Kind == timeutil.SelectorLast {
		g, ok = LastGame(sched.ForTeam(tricode), now)
	} else {
		g, ok = gameOnDate(sched.ForTeam(tricode), t.selector.Date, o.loc)
	}
	if !ok {
		return resolution{}, "", &NotFoundError{Kind: domain.KindGame, Key: key, Reason: "no game for " + tricode + " on " + t.selector.String()}
	}

	if !g.StartTime.After(now) {
		box, err := fetchGameDoc(ctx, o, domain.KindBoxScore, g.ID, boxScoreFinal, true)
		switch {
		case err == nil:
			g = box.Game
		case isNotFound(err) && !g.Final():
			// The live feed appears only once a game tips off.
		default:
			return resolution{}, "", err
		}
	}

	category := gameCategory(g)
	if g.Final() && t.selector.Kind == timeutil.SelectorLast {
		category = cache.CategoryLatest
	}
	return resolution{game: g, provisional: !g.Final()}, category, nil
}

func isNotFound(err error) bool {
	_, ok := AsNotFound(err)
	return ok
}

// LastGame applies the most-recent-game rule to one team's games: among games that started
// at or before now, the final game with the latest end wins; when none is final, the latest
// started game is returned. Ties break on game id.
func LastGame(candidates []games.Game, now time.Time) (games.Game, bool) {
	var started []games.Game
	for _, g := range candidates {
		if !g.StartTime.After(now) {
			started = append(started, g)
		}
	}
	if len(started) == 0 {
		return games.Game{}, false
	}
	sort.Slice(started, func(i, j int) bool {
		a, b := started[i].EndTimestamp(), started[j].EndTimestamp()
		if !a.Equal(b) {
			return a.After(b)
		}
		return started[i].ID > started[j].ID
	})
	for _, g := range started {
		if g.Final() {
			return g, true
		}
	}
	return started[0], true
}

func gameOnDate(candidates []games.Game, date string, loc *time.Location) (games.Game, bool) {
	for _, g := range candidates {
		if timeutil.FormatDate(g.StartTime.In(loc)) == date {
			return g, true
		}
	}
	return games.Game{}, false
}

func gameCategory(g games.Game) cache.Category {
	switch g.Status {
	case games.StatusFinal:
		return cache.CategoryFinal
	case games.StatusLive:
		return cache.CategoryLive
	default:
		return cache.CategoryScheduled
	}
}

func playByPlayCategory(p stats.PlayByPlay) cache.Category {
	switch {
	case p.Finished():
		return cache.CategoryFinal
	case len(p.Actions) > 0:
		return cache.CategoryLive
	default:
		return cache.CategoryScheduled
	}
}
