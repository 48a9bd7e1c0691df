package games

import (
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

// GameStatus mirrors the shared contract for game lifecycle states.
type GameStatus string

const (
	StatusScheduled GameStatus = "scheduled"
	StatusLive      GameStatus = "live"
	StatusFinal     GameStatus = "final"
)

// SeasonType is encoded in the third digit of an NBA game id.
type SeasonType string

const (
	SeasonPreseason SeasonType = "preseason"
	SeasonRegular   SeasonType = "regular"
	SeasonAllStar   SeasonType = "allstar"
	SeasonPlayoffs  SeasonType = "playoffs"
	SeasonPlayIn    SeasonType = "playin"
)

// Score captures home and away points.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Game is an immutable snapshot of one game.
type Game struct {
	ID         string     `json:"id"`
	Season     string     `json:"season"`
	SeasonType SeasonType `json:"seasonType"`
	HomeTeam   teams.Team `json:"homeTeam"`
	AwayTeam   teams.Team `json:"awayTeam"`
	StartTime  time.Time  `json:"startTime"`
	Status     GameStatus `json:"status"`
	Score      Score      `json:"score"`
	Period     int        `json:"period"`
	Clock      string     `json:"clock"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Final reports whether the game has finished.
func (g Game) Final() bool {
	return g.Status == StatusFinal
}

// Involves reports whether the team (by tricode) plays in the game.
func (g Game) Involves(tricode string) bool {
	return g.HomeTeam.Abbreviation == tricode || g.AwayTeam.Abbreviation == tricode
}

// EndTimestamp orders finished games. The upstream feed publishes no end time, so the
// tip-off time stands in for it.
func (g Game) EndTimestamp() time.Time {
	return g.StartTime
}

// Schedule is the league schedule for one season.
type Schedule struct {
	Season    string    `json:"season"`
	UpdatedAt time.Time `json:"updatedAt"`
	Games     []Game    `json:"games"`
}

// ForTeam returns the team's games in schedule order.
func (s Schedule) ForTeam(tricode string) []Game {
	var out []Game
	for _, g := range s.Games {
		if g.Involves(tricode) {
			out = append(out, g)
		}
	}
	return out
}
