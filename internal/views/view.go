// Package views projects game records into the read-only shapes handed to reporting
// consumers.
package views

import (
	"sort"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

const (
	// MinRunPoints is the smallest unanswered scoring streak reported as a run.
	MinRunPoints  = 7
	topPerformers = 3
)

// AnalysisView summarizes one game for reporting consumers.
type AnalysisView struct {
	Language   string       `json:"language"`
	Labels     Labels       `json:"labels"`
	Game       Header       `json:"game"`
	Home       TeamSummary  `json:"home"`
	Away       TeamSummary  `json:"away"`
	Performers []Performer  `json:"topPerformers"`
	Events     []Event      `json:"events"`
	Runs       []ScoringRun `json:"runs"`
	Degraded   bool         `json:"degraded"`
}

// Header identifies the game.
type Header struct {
	ID        string    `json:"id"`
	Season    string    `json:"season"`
	Status    string    `json:"status"`
	StartTime time.Time `json:"startTime"`
	Period    int       `json:"period"`
	Clock     string    `json:"clock"`
	HomeScore int       `json:"homeScore"`
	AwayScore int       `json:"awayScore"`
}

// TeamSummary is one side's totals with shooting percentages.
type TeamSummary struct {
	Tricode      string       `json:"tricode"`
	Name         string       `json:"name"`
	Totals       stats.Totals `json:"totals"`
	FieldGoalPct float64      `json:"fieldGoalPct"`
	ThreePct     float64      `json:"threePct"`
	FreeThrowPct float64      `json:"freeThrowPct"`
}

// Performer is a box score leader.
type Performer struct {
	PersonID int    `json:"personId"`
	Name     string `json:"name"`
	Team     string `json:"team"`
	Points   int    `json:"points"`
	Rebounds int    `json:"rebounds"`
	Assists  int    `json:"assists"`
}

// Event is one play-by-play action.
type Event struct {
	Number      int    `json:"number"`
	Period      int    `json:"period"`
	Clock       string `json:"clock"`
	Team        string `json:"team,omitempty"`
	Player      string `json:"player,omitempty"`
	Type        string `json:"type"`
	Description string `json:"description"`
	ScoreHome   int    `json:"scoreHome"`
	ScoreAway   int    `json:"scoreAway"`
	Scoring     bool   `json:"scoring"`
}

// ScoringRun is an unanswered scoring streak by one team.
type ScoringRun struct {
	Team        string `json:"team"`
	Points      int    `json:"points"`
	Period      int    `json:"period"`
	StartAction int    `json:"startAction"`
	EndAction   int    `json:"endAction"`
}

// Build assembles the view. Unknown languages render in English.
func Build(box stats.BoxScore, pbp stats.PlayByPlay, language string) AnalysisView {
	if !SupportedLanguage(language) {
		language = LanguageEnglish
	}
	g := box.Game
	v := AnalysisView{
		Language: language,
		Labels:   labelsFor(language, string(g.Status)),
		Game: Header{
			ID:        g.ID,
			Season:    g.Season,
			Status:    string(g.Status),
			StartTime: g.StartTime,
			Period:    g.Period,
			Clock:     g.Clock,
			HomeScore: g.Score.Home,
			AwayScore: g.Score.Away,
		},
		Home:       summarize(box.Home, language),
		Away:       summarize(box.Away, language),
		Performers: leaders(box),
		Events:     events(pbp),
	}
	v.Runs = runs(pbp, box.Home.Team.Abbreviation, box.Away.Team.Abbreviation)
	return v
}

func summarize(side stats.TeamBox, language string) TeamSummary {
	t := side.Totals
	return TeamSummary{
		Tricode:      side.Team.Abbreviation,
		Name:         teams.LocalName(side.Team, language),
		Totals:       t,
		FieldGoalPct: pct(t.FieldGoalsMade, t.FieldGoalsAtt),
		ThreePct:     pct(t.ThreesMade, t.ThreesAtt),
		FreeThrowPct: pct(t.FreeThrowsMade, t.FreeThrowsAtt),
	}
}

// pct returns a percentage rounded to one decimal.
func pct(made, attempted int) float64 {
	if attempted <= 0 {
		return 0
	}
	return float64(made*1000/attempted) / 10
}

func leaders(box stats.BoxScore) []Performer {
	var all []Performer
	for _, side := range []stats.TeamBox{box.Home, box.Away} {
		for _, l := range side.Players {
			if !l.Played {
				continue
			}
			all = append(all, Performer{
				PersonID: l.PersonID,
				Name:     l.Name,
				Team:     side.Team.Abbreviation,
				Points:   l.Points,
				Rebounds: l.Rebounds,
				Assists:  l.Assists,
			})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.Rebounds+a.Assists != b.Rebounds+b.Assists {
			return a.Rebounds+a.Assists > b.Rebounds+b.Assists
		}
		return a.PersonID < b.PersonID
	})
	if len(all) > topPerformers {
		all = all[:topPerformers]
	}
	return all
}

func events(pbp stats.PlayByPlay) []Event {
	out := make([]Event, 0, len(pbp.Actions))
	prevHome, prevAway := 0, 0
	for _, a := range pbp.Actions {
		out = append(out, Event{
			Number:      a.Number,
			Period:      a.Period,
			Clock:       a.Clock,
			Team:        a.TeamTricode,
			Player:      a.PlayerName,
			Type:        a.ActionType,
			Description: a.Description,
			ScoreHome:   a.ScoreHome,
			ScoreAway:   a.ScoreAway,
			Scoring:     a.ScoreHome > prevHome || a.ScoreAway > prevAway,
		})
		prevHome, prevAway = max(prevHome, a.ScoreHome), max(prevAway, a.ScoreAway)
	}
	return out
}

// runs finds streaks of at least MinRunPoints scored by one team without an answer.
func runs(pbp stats.PlayByPlay, home, away string) []ScoringRun {
	var (
		out      []ScoringRun
		current  ScoringRun
		prevHome int
		prevAway int
	)
	flush := func() {
		if current.Points >= MinRunPoints {
			out = append(out, current)
		}
		current = ScoringRun{}
	}
	score := func(team string, points int, a stats.Action) {
		if current.Team != team {
			flush()
			current = ScoringRun{Team: team, Period: a.Period, StartAction: a.Number}
		}
		current.Points += points
		current.EndAction = a.Number
	}
	for _, a := range pbp.Actions {
		if d := a.ScoreHome - prevHome; d > 0 {
			score(home, d, a)
		}
		if d := a.ScoreAway - prevAway; d > 0 {
			score(away, d, a)
		}
		prevHome, prevAway = max(prevHome, a.ScoreHome), max(prevAway, a.ScoreAway)
	}
	flush()
	return out
}
