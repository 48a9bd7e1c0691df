package parser

import (
	"strconv"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

type cdnMeta struct {
	Time string `json:"time,omitempty"`
}

type cdnBoxScore struct {
	Meta cdnMeta `json:"meta"`
	Game cdnGame `json:"game"`
}

type cdnGame struct {
	GameID      string     `json:"gameId"`
	GameTimeUTC string     `json:"gameTimeUTC"`
	GameStatus  flexInt    `json:"gameStatus"`
	Period      flexInt    `json:"period"`
	GameClock   string     `json:"gameClock"`
	HomeTeam    cdnTeamBox `json:"homeTeam"`
	AwayTeam    cdnTeamBox `json:"awayTeam"`
}

type cdnTeamBox struct {
	TeamID      flexInt     `json:"teamId"`
	TeamName    string      `json:"teamName"`
	TeamCity    string      `json:"teamCity"`
	TeamTricode string      `json:"teamTricode"`
	Score       flexInt     `json:"score"`
	Players     []cdnPlayer `json:"players,omitempty"`
}

type cdnPlayer struct {
	PersonID   flexInt       `json:"personId"`
	Name       string        `json:"name"`
	JerseyNum  string        `json:"jerseyNum"`
	Position   string        `json:"position,omitempty"`
	Starter    string        `json:"starter"`
	Played     string        `json:"played"`
	Statistics cdnStatistics `json:"statistics"`
}

type cdnStatistics struct {
	Minutes                string  `json:"minutes"`
	Points                 flexInt `json:"points"`
	ReboundsTotal          flexInt `json:"reboundsTotal"`
	Assists                flexInt `json:"assists"`
	Steals                 flexInt `json:"steals"`
	Blocks                 flexInt `json:"blocks"`
	Turnovers              flexInt `json:"turnovers"`
	FoulsPersonal          flexInt `json:"foulsPersonal"`
	FieldGoalsMade         flexInt `json:"fieldGoalsMade"`
	FieldGoalsAttempted    flexInt `json:"fieldGoalsAttempted"`
	ThreePointersMade      flexInt `json:"threePointersMade"`
	ThreePointersAttempted flexInt `json:"threePointersAttempted"`
	FreeThrowsMade         flexInt `json:"freeThrowsMade"`
	FreeThrowsAttempted    flexInt `json:"freeThrowsAttempted"`
	PlusMinusPoints        flexInt `json:"plusMinusPoints"`
}

// ParseGame extracts the game summary from a boxscore-shaped payload.
func ParseGame(raw []byte) (games.Game, error) {
	var env cdnBoxScore
	if err := json.Unmarshal(raw, &env); err != nil {
		return games.Game{}, decodeError(domain.KindGame, err)
	}
	updated, err := parseTime(env.Meta.Time)
	if err != nil {
		return games.Game{}, &ParseError{Kind: domain.KindGame, Field: "meta.time", Err: err}
	}
	return gameFromNative(domain.KindGame, "game", env.Game, updated)
}

// ParseBoxScore decodes a liveData boxscore payload.
func ParseBoxScore(raw []byte) (stats.BoxScore, error) {
	var env cdnBoxScore
	if err := json.Unmarshal(raw, &env); err != nil {
		return stats.BoxScore{}, decodeError(domain.KindBoxScore, err)
	}
	updated, err := parseTime(env.Meta.Time)
	if err != nil {
		return stats.BoxScore{}, &ParseError{Kind: domain.KindBoxScore, Field: "meta.time", Err: err}
	}
	game, err := gameFromNative(domain.KindBoxScore, "game", env.Game, updated)
	if err != nil {
		return stats.BoxScore{}, err
	}
	home, err := linesFromNative("game.homeTeam", env.Game.HomeTeam.Players)
	if err != nil {
		return stats.BoxScore{}, err
	}
	away, err := linesFromNative("game.awayTeam", env.Game.AwayTeam.Players)
	if err != nil {
		return stats.BoxScore{}, err
	}
	return stats.BoxScore{
		Game: game,
		Home: stats.TeamBox{Team: game.HomeTeam, Players: home, Totals: stats.Sum(home)},
		Away: stats.TeamBox{Team: game.AwayTeam, Players: away, Totals: stats.Sum(away)},
	}, nil
}

func gameFromNative(kind domain.Kind, path string, g cdnGame, updated time.Time) (games.Game, error) {
	if g.GameID == "" {
		return games.Game{}, fieldError(kind, path+".gameId", "missing")
	}
	season, err := games.SeasonFromID(g.GameID)
	if err != nil {
		return games.Game{}, &ParseError{Kind: kind, Field: path + ".gameId", Err: err}
	}
	seasonType, err := games.SeasonTypeFromID(g.GameID)
	if err != nil {
		return games.Game{}, &ParseError{Kind: kind, Field: path + ".gameId", Err: err}
	}
	status, ok := statusFromCode(int(g.GameStatus))
	if !ok {
		return games.Game{}, fieldError(kind, path+".gameStatus", "unknown status "+strconv.Itoa(int(g.GameStatus)))
	}
	if g.GameTimeUTC == "" {
		return games.Game{}, fieldError(kind, path+".gameTimeUTC", "missing")
	}
	start, err := parseTime(g.GameTimeUTC)
	if err != nil {
		return games.Game{}, &ParseError{Kind: kind, Field: path + ".gameTimeUTC", Err: err}
	}
	home, err := teamFromNative(kind, path+".homeTeam", g.HomeTeam)
	if err != nil {
		return games.Game{}, err
	}
	away, err := teamFromNative(kind, path+".awayTeam", g.AwayTeam)
	if err != nil {
		return games.Game{}, err
	}
	return games.Game{
		ID:         g.GameID,
		Season:     season,
		SeasonType: seasonType,
		HomeTeam:   home,
		AwayTeam:   away,
		StartTime:  start,
		Status:     status,
		Score:      games.Score{Home: int(g.HomeTeam.Score), Away: int(g.AwayTeam.Score)},
		Period:     int(g.Period),
		Clock:      g.GameClock,
		UpdatedAt:  updated,
	}, nil
}

func teamFromNative(kind domain.Kind, path string, t cdnTeamBox) (teams.Team, error) {
	if t.TeamID <= 0 {
		return teams.Team{}, fieldError(kind, path+".teamId", "missing")
	}
	if t.TeamTricode == "" {
		return teams.Team{}, fieldError(kind, path+".teamTricode", "missing")
	}
	return teams.Enrich(teams.Team{
		ID:           strconv.Itoa(int(t.TeamID)),
		Name:         t.TeamName,
		City:         t.TeamCity,
		Abbreviation: t.TeamTricode,
	}), nil
}

func linesFromNative(path string, in []cdnPlayer) ([]stats.PlayerLine, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]stats.PlayerLine, 0, len(in))
	for i, p := range in {
		if p.PersonID <= 0 {
			return nil, fieldError(domain.KindBoxScore, path+".players["+strconv.Itoa(i)+"].personId", "missing")
		}
		s := p.Statistics
		out = append(out, stats.PlayerLine{
			PersonID:       int(p.PersonID),
			Name:           p.Name,
			JerseyNum:      p.JerseyNum,
			Position:       p.Position,
			Starter:        boolFlag(p.Starter),
			Played:         boolFlag(p.Played),
			Minutes:        s.Minutes,
			Points:         int(s.Points),
			Rebounds:       int(s.ReboundsTotal),
			Assists:        int(s.Assists),
			Steals:         int(s.Steals),
			Blocks:         int(s.Blocks),
			Turnovers:      int(s.Turnovers),
			Fouls:          int(s.FoulsPersonal),
			FieldGoalsMade: int(s.FieldGoalsMade),
			FieldGoalsAtt:  int(s.FieldGoalsAttempted),
			ThreesMade:     int(s.ThreePointersMade),
			ThreesAtt:      int(s.ThreePointersAttempted),
			FreeThrowsMade: int(s.FreeThrowsMade),
			FreeThrowsAtt:  int(s.FreeThrowsAttempted),
			PlusMinus:      int(s.PlusMinusPoints),
		})
	}
	return out, nil
}

func statusFromCode(code int) (games.GameStatus, bool) {
	switch code {
	case 1:
		return games.StatusScheduled, true
	case 2:
		return games.StatusLive, true
	case 3:
		return games.StatusFinal, true
	default:
		return "", false
	}
}

func statusCode(status games.GameStatus) int {
	switch status {
	case games.StatusLive:
		return 2
	case games.StatusFinal:
		return 3
	default:
		return 1
	}
}

func gameEnvelope(g games.Game, home, away []stats.PlayerLine) cdnBoxScore {
	return cdnBoxScore{
		Meta: cdnMeta{Time: formatTime(g.UpdatedAt)},
		Game: gameToNative(g, home, away),
	}
}

func gameToNative(g games.Game, home, away []stats.PlayerLine) cdnGame {
	return cdnGame{
		GameID:      g.ID,
		GameTimeUTC: formatTime(g.StartTime),
		GameStatus:  flexInt(statusCode(g.Status)),
		Period:      flexInt(g.Period),
		GameClock:   g.Clock,
		HomeTeam:    teamToBox(g.HomeTeam, g.Score.Home, home),
		AwayTeam:    teamToBox(g.AwayTeam, g.Score.Away, away),
	}
}

func teamToBox(t teams.Team, score int, lines []stats.PlayerLine) cdnTeamBox {
	id, _ := strconv.Atoi(t.ID)
	box := cdnTeamBox{
		TeamID:      flexInt(id),
		TeamName:    t.Name,
		TeamCity:    t.City,
		TeamTricode: t.Abbreviation,
		Score:       flexInt(score),
	}
	for _, l := range lines {
		box.Players = append(box.Players, cdnPlayer{
			PersonID:  flexInt(l.PersonID),
			Name:      l.Name,
			JerseyNum: l.JerseyNum,
			Position:  l.Position,
			Starter:   flag(l.Starter),
			Played:    flag(l.Played),
			Statistics: cdnStatistics{
				Minutes:                l.Minutes,
				Points:                 flexInt(l.Points),
				ReboundsTotal:          flexInt(l.Rebounds),
				Assists:                flexInt(l.Assists),
				Steals:                 flexInt(l.Steals),
				Blocks:                 flexInt(l.Blocks),
				Turnovers:              flexInt(l.Turnovers),
				FoulsPersonal:          flexInt(l.Fouls),
				FieldGoalsMade:         flexInt(l.FieldGoalsMade),
				FieldGoalsAttempted:    flexInt(l.FieldGoalsAtt),
				ThreePointersMade:      flexInt(l.ThreesMade),
				ThreePointersAttempted: flexInt(l.ThreesAtt),
				FreeThrowsMade:         flexInt(l.FreeThrowsMade),
				FreeThrowsAttempted:    flexInt(l.FreeThrowsAtt),
				PlusMinusPoints:        flexInt(l.PlusMinus),
			},
		})
	}
	return box
}
