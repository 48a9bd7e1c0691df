package parser

import (
	"strconv"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

const scheduleDateLayout = "01/02/2006 00:00:00"

type cdnSchedule struct {
	Meta           cdnMeta           `json:"meta"`
	LeagueSchedule cdnLeagueSchedule `json:"leagueSchedule"`
}

type cdnLeagueSchedule struct {
	SeasonYear string        `json:"seasonYear"`
	GameDates  []cdnGameDate `json:"gameDates"`
}

type cdnGameDate struct {
	GameDate string            `json:"gameDate"`
	Games    []cdnScheduleGame `json:"games"`
}

type cdnScheduleGame struct {
	GameID          string     `json:"gameId"`
	GameStatus      flexInt    `json:"gameStatus"`
	GameDateTimeUTC string     `json:"gameDateTimeUTC"`
	Period          flexInt    `json:"period,omitempty"`
	GameClock       string     `json:"gameClock,omitempty"`
	HomeTeam        cdnTeamBox `json:"homeTeam"`
	AwayTeam        cdnTeamBox `json:"awayTeam"`
}

// ParseSchedule decodes the league schedule payload. Placeholder games whose opponents
// are not yet known (team id 0) are skipped.
func ParseSchedule(raw []byte) (games.Schedule, error) {
	var env cdnSchedule
	if err := json.Unmarshal(raw, &env); err != nil {
		return games.Schedule{}, decodeError(domain.KindSchedule, err)
	}
	if env.LeagueSchedule.SeasonYear == "" {
		return games.Schedule{}, fieldError(domain.KindSchedule, "leagueSchedule.seasonYear", "missing")
	}
	season, err := timeutil.NormalizeSeason(env.LeagueSchedule.SeasonYear)
	if err != nil {
		return games.Schedule{}, &ParseError{Kind: domain.KindSchedule, Field: "leagueSchedule.seasonYear", Err: err}
	}
	updated, err := parseTime(env.Meta.Time)
	if err != nil {
		return games.Schedule{}, &ParseError{Kind: domain.KindSchedule, Field: "meta.time", Err: err}
	}
	out := games.Schedule{Season: season, UpdatedAt: updated}
	for di, day := range env.LeagueSchedule.GameDates {
		for gi, g := range day.Games {
			if g.HomeTeam.TeamID == 0 || g.AwayTeam.TeamID == 0 {
				continue
			}
			path := "leagueSchedule.gameDates[" + strconv.Itoa(di) + "].games[" + strconv.Itoa(gi) + "]"
			game, err := gameFromNative(domain.KindSchedule, path, cdnGame{
				GameID:      g.GameID,
				GameTimeUTC: g.GameDateTimeUTC,
				GameStatus:  g.GameStatus,
				Period:      g.Period,
				GameClock:   g.GameClock,
				HomeTeam:    g.HomeTeam,
				AwayTeam:    g.AwayTeam,
			}, updated)
			if err != nil {
				return games.Schedule{}, err
			}
			out.Games = append(out.Games, game)
		}
	}
	return out, nil
}

// scheduleToNative groups consecutive games sharing an Eastern calendar date.
func scheduleToNative(s games.Schedule) cdnSchedule {
	env := cdnSchedule{
		Meta:           cdnMeta{Time: formatTime(s.UpdatedAt)},
		LeagueSchedule: cdnLeagueSchedule{SeasonYear: s.Season},
	}
	loc := timeutil.LocationOrDefault("")
	for _, g := range s.Games {
		date := g.StartTime.In(loc).Format(scheduleDateLayout)
		days := env.LeagueSchedule.GameDates
		if len(days) == 0 || days[len(days)-1].GameDate != date {
			env.LeagueSchedule.GameDates = append(days, cdnGameDate{GameDate: date})
		}
		last := &env.LeagueSchedule.GameDates[len(env.LeagueSchedule.GameDates)-1]
		native := gameToNative(g, nil, nil)
		last.Games = append(last.Games, cdnScheduleGame{
			GameID:          native.GameID,
			GameStatus:      native.GameStatus,
			GameDateTimeUTC: native.GameTimeUTC,
			Period:          native.Period,
			GameClock:       native.GameClock,
			HomeTeam:        native.HomeTeam,
			AwayTeam:        native.AwayTeam,
		})
	}
	return env
}
