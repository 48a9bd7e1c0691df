package parser

import (
	"strconv"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

var standingsHeaders = []string{
	"TeamID", "TeamCity", "TeamName", "TeamSlug", "Conference", "PlayoffRank", "WINS", "LOSSES", "WinPCT",
}

// ParseStandings decodes a leaguestandingsv3 payload.
func ParseStandings(raw []byte) (teams.Standings, error) {
	payload, tbl, err := decodeTable(domain.KindStandings, raw, "Standings",
		"TeamID", "TeamCity", "TeamName", "Conference", "PlayoffRank", "WINS", "LOSSES", "WinPCT")
	if err != nil {
		return teams.Standings{}, err
	}
	label, _ := payload.Parameters["Season"].(string)
	if label == "" {
		return teams.Standings{}, fieldError(domain.KindStandings, "parameters.Season", "missing")
	}
	season, err := timeutil.NormalizeSeason(label)
	if err != nil {
		return teams.Standings{}, &ParseError{Kind: domain.KindStandings, Field: "parameters.Season", Err: err}
	}
	out := teams.Standings{Season: season}
	for i, row := range tbl.rows {
		id, err := tbl.integer(row, "TeamID")
		if err != nil {
			return teams.Standings{}, tbl.rowError(i, "TeamID", err)
		}
		if id <= 0 {
			return teams.Standings{}, tbl.rowError(i, "TeamID", errMissing)
		}
		rank, err := tbl.integer(row, "PlayoffRank")
		if err != nil {
			return teams.Standings{}, tbl.rowError(i, "PlayoffRank", err)
		}
		wins, err := tbl.integer(row, "WINS")
		if err != nil {
			return teams.Standings{}, tbl.rowError(i, "WINS", err)
		}
		losses, err := tbl.integer(row, "LOSSES")
		if err != nil {
			return teams.Standings{}, tbl.rowError(i, "LOSSES", err)
		}
		pct, err := tbl.number(row, "WinPCT")
		if err != nil {
			return teams.Standings{}, tbl.rowError(i, "WinPCT", err)
		}
		out.Rows = append(out.Rows, teams.Standing{
			Team:        teamFromRow(strconv.Itoa(id), tbl.str(row, "TeamName"), tbl.str(row, "TeamCity")),
			Conference:  tbl.str(row, "Conference"),
			PlayoffRank: rank,
			Wins:        wins,
			Losses:      losses,
			WinPct:      pct,
		})
	}
	return out, nil
}

// teamFromRow builds a team from stats API columns, which carry no tricode; the
// directory supplies it by id.
func teamFromRow(id, name, city string) teams.Team {
	t := teams.Team{ID: id, Name: name, City: city}
	if known, ok := teams.Lookup(id); ok {
		t.Abbreviation = known.Abbreviation
	}
	return teams.Enrich(t)
}

func standingsToNative(s teams.Standings) statsPayload {
	set := statsResultSet{Name: "Standings", Headers: standingsHeaders, RowSet: [][]any{}}
	for _, r := range s.Rows {
		id, _ := strconv.Atoi(r.Team.ID)
		set.RowSet = append(set.RowSet, []any{
			id, r.Team.City, r.Team.Name, nullable(slug(r.Team.Name)), r.Conference,
			r.PlayoffRank, r.Wins, r.Losses, r.WinPct,
		})
	}
	return statsPayload{
		Resource:   "leaguestandingsv3",
		Parameters: map[string]any{"Season": s.Season, "SeasonType": "Regular Season", "LeagueID": "00"},
		ResultSets: []statsResultSet{set},
	}
}
