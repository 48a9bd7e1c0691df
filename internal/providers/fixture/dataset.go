package fixture

import (
	"strconv"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/players"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

// Season is the season covered by the bundled dataset.
const Season = "2023-24"

// Bundled game ids.
const (
	GamePreseason    = "0012300001"
	GameLakersAtWiz  = "0022300840"
	GameNuggetsAtLAL = "0022300851"
	GameCelticsAtGSW = "0022300852"
	GameLakersAtWolf = "0022300870"
)

// UpdatedAt is the meta.time stamped on every bundled payload.
var UpdatedAt = time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)

// Dataset is the bundled league snapshot.
type Dataset struct {
	Schedule   games.Schedule
	BoxScores  map[string]stats.BoxScore
	PlayByPlay map[string]stats.PlayByPlay
	Standings  teams.Standings
	Players    players.Index
	Teams      map[string]teams.Details
}

func team(tricode string) teams.Team {
	t, _ := teams.ByTricode(tricode)
	return t
}

func game(id, home, away string, start time.Time, status games.GameStatus, homeScore, awayScore int) games.Game {
	season, _ := games.SeasonFromID(id)
	seasonType, _ := games.SeasonTypeFromID(id)
	g := games.Game{
		ID:         id,
		Season:     season,
		SeasonType: seasonType,
		HomeTeam:   team(home),
		AwayTeam:   team(away),
		StartTime:  start,
		Status:     status,
		Score:      games.Score{Home: homeScore, Away: awayScore},
		UpdatedAt:  UpdatedAt,
	}
	if status == games.StatusFinal {
		g.Period = 4
		g.Clock = "PT00M00.00S"
	}
	return g
}

type stat struct {
	id       int
	name     string
	position string
	pts      int
	reb      int
	ast      int
}

func lines(rows ...stat) []stats.PlayerLine {
	out := make([]stats.PlayerLine, 0, len(rows))
	for i, r := range rows {
		fgm := r.pts * 2 / 5
		out = append(out, stats.PlayerLine{
			PersonID:       r.id,
			Name:           r.name,
			Position:       r.position,
			Starter:        r.position != "",
			Played:         true,
			Minutes:        "PT" + strconv.Itoa(36-i*4) + "M00.00S",
			Points:         r.pts,
			Rebounds:       r.reb,
			Assists:        r.ast,
			FieldGoalsMade: fgm,
			FieldGoalsAtt:  fgm*2 + 1,
		})
	}
	return out
}

func box(g games.Game, home, away []stats.PlayerLine) stats.BoxScore {
	return stats.BoxScore{
		Game: g,
		Home: stats.TeamBox{Team: g.HomeTeam, Players: home, Totals: stats.Sum(home)},
		Away: stats.TeamBox{Team: g.AwayTeam, Players: away, Totals: stats.Sum(away)},
	}
}

// Load builds the bundled dataset.
func Load() Dataset {
	preseason := game(GamePreseason, "LAL", "GSW", time.Date(2023, 10, 8, 2, 0, 0, 0, time.UTC), games.StatusFinal, 108, 101)
	wiz := game(GameLakersAtWiz, "WAS", "LAL", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), games.StatusFinal, 130, 134)
	nuggets := game(GameNuggetsAtLAL, "LAL", "DEN", time.Date(2024, 3, 2, 3, 30, 0, 0, time.UTC), games.StatusFinal, 114, 105)
	celtics := game(GameCelticsAtGSW, "GSW", "BOS", time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC), games.StatusFinal, 110, 118)
	wolves := game(GameLakersAtWolf, "MIN", "LAL", time.Date(2024, 3, 4, 0, 30, 0, 0, time.UTC), games.StatusScheduled, 0, 0)

	d := Dataset{
		Schedule: games.Schedule{
			Season:    Season,
			UpdatedAt: UpdatedAt,
			Games:     []games.Game{preseason, wiz, celtics, nuggets, wolves},
		},
		BoxScores: map[string]stats.BoxScore{
			GamePreseason: box(preseason,
				lines(stat{1630559, "Austin Reaves", "G", 20, 3, 5}, stat{1641733, "Maxwell Lewis", "", 88, 6, 1}),
				lines(stat{201939, "Stephen Curry", "G", 25, 4, 6}, stat{1630228, "Jonathan Kuminga", "", 76, 8, 2})),
			GameLakersAtWiz: box(wiz,
				lines(stat{1628398, "Kyle Kuzma", "F", 28, 9, 3}, stat{1629655, "Daniel Gafford", "C", 102, 7, 1}),
				lines(stat{2544, "LeBron James", "F", 31, 7, 8}, stat{203076, "Anthony Davis", "C", 40, 15, 4}, stat{1630559, "Austin Reaves", "", 63, 4, 6})),
			GameNuggetsAtLAL: box(nuggets,
				lines(stat{2544, "LeBron James", "F", 27, 8, 10}, stat{203076, "Anthony Davis", "C", 31, 13, 4}, stat{1630559, "Austin Reaves", "", 56, 11, 6}),
				lines(stat{203999, "Nikola Jokic", "C", 33, 14, 9}, stat{1627750, "Jamal Murray", "G", 25, 4, 7}, stat{203932, "Aaron Gordon", "", 47, 6, 3})),
			GameCelticsAtGSW: box(celtics,
				lines(stat{201939, "Stephen Curry", "G", 34, 5, 6}, stat{203952, "Andrew Wiggins", "", 76, 6, 1}),
				lines(stat{1628369, "Jayson Tatum", "F", 32, 9, 5}, stat{1627759, "Jaylen Brown", "", 86, 5, 4})),
		},
		PlayByPlay: map[string]stats.PlayByPlay{
			GameLakersAtWiz:  bookends(wiz),
			GameCelticsAtGSW: bookends(celtics),
			GameNuggetsAtLAL: nuggetsPlayByPlay(nuggets),
		},
		Standings: teams.Standings{
			Season: Season,
			Rows: []teams.Standing{
				{Team: team("BOS"), Conference: "East", PlayoffRank: 1, Wins: 64, Losses: 18, WinPct: 0.78},
				{Team: team("DEN"), Conference: "West", PlayoffRank: 2, Wins: 57, Losses: 25, WinPct: 0.695},
				{Team: team("MIN"), Conference: "West", PlayoffRank: 3, Wins: 56, Losses: 26, WinPct: 0.683},
				{Team: team("LAL"), Conference: "West", PlayoffRank: 8, Wins: 47, Losses: 35, WinPct: 0.573},
				{Team: team("GSW"), Conference: "West", PlayoffRank: 10, Wins: 46, Losses: 36, WinPct: 0.561},
				{Team: team("WAS"), Conference: "East", PlayoffRank: 15, Wins: 15, Losses: 67, WinPct: 0.183},
			},
		},
		Players: players.Index{Players: []players.Player{
			player(2544, "LeBron", "James", "F", 6, 9, 250, "LAL", "23"),
			player(203076, "Anthony", "Davis", "F-C", 6, 10, 253, "LAL", "3"),
			player(1630559, "Austin", "Reaves", "G", 6, 5, 197, "LAL", "15"),
			player(203999, "Nikola", "Jokic", "C", 6, 11, 284, "DEN", "15"),
			player(201939, "Stephen", "Curry", "G", 6, 2, 185, "GSW", "30"),
			player(1628369, "Jayson", "Tatum", "F", 6, 8, 210, "BOS", "0"),
			player(1630162, "Anthony", "Edwards", "G", 6, 4, 225, "MIN", "5"),
			player(1628398, "Kyle", "Kuzma", "F", 6, 9, 221, "WAS", "33"),
		}},
		Teams: map[string]teams.Details{},
	}
	for _, det := range []teams.Details{
		{Team: team("LAL"), YearFounded: 1948, Arena: "Crypto.com Arena", ArenaCapacity: 19060, Owner: "Jeanie Buss", GeneralManager: "Rob Pelinka", HeadCoach: "Darvin Ham"},
		{Team: team("DEN"), YearFounded: 1976, Arena: "Ball Arena", ArenaCapacity: 19520, Owner: "Stan Kroenke", GeneralManager: "Calvin Booth", HeadCoach: "Michael Malone"},
		{Team: team("BOS"), YearFounded: 1946, Arena: "TD Garden", ArenaCapacity: 18624, Owner: "Wyc Grousbeck", GeneralManager: "Brad Stevens", HeadCoach: "Joe Mazzulla"},
	} {
		d.Teams[det.Team.ID] = det
	}
	return d
}

func player(id int, first, last, position string, feet, inches, weight int, tricode, jersey string) players.Player {
	return players.Player{
		ID:           strconv.Itoa(id),
		FirstName:    first,
		LastName:     last,
		Position:     position,
		HeightFeet:   feet,
		HeightInches: inches,
		WeightPounds: weight,
		Team:         team(tricode),
		Meta: players.PlayerMeta{
			UpstreamPlayerID: id,
			Slug:             players.Slug(first + " " + last),
			JerseyNumber:     jersey,
			Active:           true,
		},
	}
}

// bookends is a finished feed holding only the opening tip and the game-end marker.
func bookends(g games.Game) stats.PlayByPlay {
	tip := g.StartTime.Add(10 * time.Minute)
	return stats.PlayByPlay{
		GameID: g.ID,
		Actions: []stats.Action{
			{Number: 1, Clock: "PT12M00.00S", Period: 1, ActionType: "period", SubType: "start", Description: "Period Start", TimeActual: tip},
			{Number: 700, Clock: "PT00M00.00S", Period: 4, ActionType: "game", SubType: "end", Description: "Game End", ScoreHome: g.Score.Home, ScoreAway: g.Score.Away, TimeActual: tip.Add(150 * time.Minute)},
		},
	}
}

func nuggetsPlayByPlay(g games.Game) stats.PlayByPlay {
	tip := g.StartTime.Add(10 * time.Minute)
	at := func(sec int) time.Time { return tip.Add(time.Duration(sec) * time.Second) }
	return stats.PlayByPlay{
		GameID: g.ID,
		Actions: []stats.Action{
			{Number: 1, Clock: "PT12M00.00S", Period: 1, ActionType: "period", SubType: "start", Description: "Period Start", TimeActual: at(0)},
			{Number: 4, Clock: "PT11M40.00S", Period: 1, TeamTricode: "LAL", PersonID: 2544, PlayerName: "James", ActionType: "2pt", SubType: "Layup", Description: "James Driving Layup (2 PTS)", ScoreHome: 2, TimeActual: at(25)},
			{Number: 6, Clock: "PT11M15.00S", Period: 1, TeamTricode: "DEN", PersonID: 203999, PlayerName: "Jokic", ActionType: "3pt", SubType: "Jump Shot", Description: "MISS Jokic 26' 3PT", ScoreHome: 2, TimeActual: at(52)},
			{Number: 8, Clock: "PT10M58.00S", Period: 1, TeamTricode: "LAL", PersonID: 203076, PlayerName: "Davis", ActionType: "2pt", SubType: "DUNK", Description: "Davis Dunk (2 PTS)", ScoreHome: 4, TimeActual: at(70)},
			{Number: 11, Clock: "PT10M31.00S", Period: 1, TeamTricode: "LAL", PersonID: 1630559, PlayerName: "Reaves", ActionType: "3pt", SubType: "Jump Shot", Description: "Reaves 25' 3PT (3 PTS)", ScoreHome: 7, TimeActual: at(101)},
			{Number: 14, Clock: "PT10M02.00S", Period: 1, TeamTricode: "DEN", PersonID: 203999, PlayerName: "Jokic", ActionType: "2pt", SubType: "Hook", Description: "Jokic Hook Shot (2 PTS)", ScoreHome: 7, ScoreAway: 2, TimeActual: at(133)},
			{Number: 17, Clock: "PT09M40.00S", Period: 1, TeamTricode: "DEN", PersonID: 1627750, PlayerName: "Murray", ActionType: "3pt", SubType: "Jump Shot", Description: "Murray 27' 3PT (3 PTS)", ScoreHome: 7, ScoreAway: 5, TimeActual: at(160)},
			{Number: 19, Clock: "PT09M21.00S", Period: 1, TeamTricode: "DEN", PersonID: 203999, PlayerName: "Jokic", ActionType: "freethrow", SubType: "1 of 2", Description: "Jokic Free Throw 1 of 2 (3 PTS)", ScoreHome: 7, ScoreAway: 6, TimeActual: at(190)},
			{Number: 20, Clock: "PT09M21.00S", Period: 1, TeamTricode: "DEN", PersonID: 203999, PlayerName: "Jokic", ActionType: "freethrow", SubType: "2 of 2", Description: "Jokic Free Throw 2 of 2 (4 PTS)", ScoreHome: 7, ScoreAway: 7, TimeActual: at(205)},
			{Number: 24, Clock: "PT08M55.00S", Period: 1, TeamTricode: "LAL", PersonID: 2544, PlayerName: "James", ActionType: "turnover", SubType: "bad pass", Description: "James Bad Pass Turnover (P1.T1)", ScoreHome: 7, ScoreAway: 7, TimeActual: at(231)},
			{Number: 900, Clock: "PT00M00.00S", Period: 4, ActionType: "period", SubType: "end", Description: "Period End", ScoreHome: 114, ScoreAway: 105, TimeActual: at(9000)},
			{Number: 901, Clock: "PT00M00.00S", Period: 4, ActionType: "game", SubType: "end", Description: "Game End", ScoreHome: 114, ScoreAway: 105, TimeActual: at(9010)},
		},
	}
}
