package stats

import (
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

// PlayerLine is one player's box score line.
type PlayerLine struct {
	PersonID       int    `json:"personId"`
	Name           string `json:"name"`
	JerseyNum      string `json:"jerseyNum"`
	Position       string `json:"position"`
	Starter        bool   `json:"starter"`
	Played         bool   `json:"played"`
	Minutes        string `json:"minutes"`
	Points         int    `json:"points"`
	Rebounds       int    `json:"rebounds"`
	Assists        int    `json:"assists"`
	Steals         int    `json:"steals"`
	Blocks         int    `json:"blocks"`
	Turnovers      int    `json:"turnovers"`
	Fouls          int    `json:"fouls"`
	FieldGoalsMade int    `json:"fieldGoalsMade"`
	FieldGoalsAtt  int    `json:"fieldGoalsAttempted"`
	ThreesMade     int    `json:"threePointersMade"`
	ThreesAtt      int    `json:"threePointersAttempted"`
	FreeThrowsMade int    `json:"freeThrowsMade"`
	FreeThrowsAtt  int    `json:"freeThrowsAttempted"`
	PlusMinus      int    `json:"plusMinus"`
}

// Totals aggregates counting stats for a team.
type Totals struct {
	Points         int `json:"points"`
	Rebounds       int `json:"rebounds"`
	Assists        int `json:"assists"`
	Steals         int `json:"steals"`
	Blocks         int `json:"blocks"`
	Turnovers      int `json:"turnovers"`
	FieldGoalsMade int `json:"fieldGoalsMade"`
	FieldGoalsAtt  int `json:"fieldGoalsAttempted"`
	ThreesMade     int `json:"threePointersMade"`
	ThreesAtt      int `json:"threePointersAttempted"`
	FreeThrowsMade int `json:"freeThrowsMade"`
	FreeThrowsAtt  int `json:"freeThrowsAttempted"`
}

// TeamBox is one side of a box score.
type TeamBox struct {
	Team    teams.Team   `json:"team"`
	Players []PlayerLine `json:"players"`
	Totals  Totals       `json:"totals"`
}

// BoxScore is the per-game statistics record.
type BoxScore struct {
	Game games.Game `json:"game"`
	Home TeamBox    `json:"home"`
	Away TeamBox    `json:"away"`
}

// Action is one play-by-play event.
type Action struct {
	Number      int       `json:"actionNumber"`
	Clock       string    `json:"clock"`
	Period      int       `json:"period"`
	TeamTricode string    `json:"teamTricode,omitempty"`
	PersonID    int       `json:"personId,omitempty"`
	PlayerName  string    `json:"playerName,omitempty"`
	ActionType  string    `json:"actionType"`
	SubType     string    `json:"subType,omitempty"`
	Description string    `json:"description"`
	ScoreHome   int       `json:"scoreHome"`
	ScoreAway   int       `json:"scoreAway"`
	TimeActual  time.Time `json:"timeActual"`
}

// Shot reports whether the action is a field goal or free throw attempt.
func (a Action) Shot() bool {
	return a.ActionType == "2pt" || a.ActionType == "3pt" || a.ActionType == "freethrow"
}

// PlayByPlay is the ordered event sequence of one game.
type PlayByPlay struct {
	GameID  string   `json:"gameId"`
	Actions []Action `json:"actions"`
}

// Finished reports whether the feed contains the game-end marker.
func (p PlayByPlay) Finished() bool {
	if len(p.Actions) == 0 {
		return false
	}
	last := p.Actions[len(p.Actions)-1]
	return last.ActionType == "game" && last.SubType == "end"
}

// Sum builds team totals from player lines.
func Sum(lines []PlayerLine) Totals {
	var t Totals
	for _, l := range lines {
		t.Points += l.Points
		t.Rebounds += l.Rebounds
		t.Assists += l.Assists
		t.Steals += l.Steals
		t.Blocks += l.Blocks
		t.Turnovers += l.Turnovers
		t.FieldGoalsMade += l.FieldGoalsMade
		t.FieldGoalsAtt += l.FieldGoalsAtt
		t.ThreesMade += l.ThreesMade
		t.ThreesAtt += l.ThreesAtt
		t.FreeThrowsMade += l.FreeThrowsMade
		t.FreeThrowsAtt += l.FreeThrowsAtt
	}
	return t
}
