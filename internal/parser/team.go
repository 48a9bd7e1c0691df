package parser

import (
	"strconv"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

var teamBackgroundHeaders = []string{
	"TEAM_ID", "ABBREVIATION", "NICKNAME", "YEARFOUNDED", "CITY", "ARENA",
	"ARENACAPACITY", "OWNER", "GENERALMANAGER", "HEADCOACH",
}

// ParseTeam decodes the TeamBackground result set of a teamdetails payload.
func ParseTeam(raw []byte) (teams.Details, error) {
	_, tbl, err := decodeTable(domain.KindTeam, raw, "TeamBackground", "TEAM_ID", "ABBREVIATION")
	if err != nil {
		return teams.Details{}, err
	}
	if len(tbl.rows) == 0 {
		return teams.Details{}, fieldError(domain.KindTeam, "resultSets.TeamBackground.rowSet", "empty")
	}
	row := tbl.rows[0]
	id, err := tbl.integer(row, "TEAM_ID")
	if err != nil {
		return teams.Details{}, tbl.rowError(0, "TEAM_ID", err)
	}
	if id <= 0 {
		return teams.Details{}, tbl.rowError(0, "TEAM_ID", errMissing)
	}
	tricode := tbl.str(row, "ABBREVIATION")
	if tricode == "" {
		return teams.Details{}, tbl.rowError(0, "ABBREVIATION", errMissing)
	}
	founded, err := tbl.integer(row, "YEARFOUNDED")
	if err != nil {
		return teams.Details{}, tbl.rowError(0, "YEARFOUNDED", err)
	}
	capacity, err := tbl.integer(row, "ARENACAPACITY")
	if err != nil {
		return teams.Details{}, tbl.rowError(0, "ARENACAPACITY", err)
	}
	return teams.Details{
		Team: teams.Enrich(teams.Team{
			ID:           strconv.Itoa(id),
			Name:         tbl.str(row, "NICKNAME"),
			City:         tbl.str(row, "CITY"),
			Abbreviation: tricode,
		}),
		YearFounded:    founded,
		Arena:          tbl.str(row, "ARENA"),
		ArenaCapacity:  capacity,
		Owner:          tbl.str(row, "OWNER"),
		GeneralManager: tbl.str(row, "GENERALMANAGER"),
		HeadCoach:      tbl.str(row, "HEADCOACH"),
	}, nil
}

func teamToNative(d teams.Details) statsPayload {
	id, _ := strconv.Atoi(d.Team.ID)
	capacity := any(nil)
	if d.ArenaCapacity > 0 {
		capacity = strconv.Itoa(d.ArenaCapacity)
	}
	return statsPayload{
		Resource:   "teamdetails",
		Parameters: map[string]any{"TeamID": id},
		ResultSets: []statsResultSet{{
			Name:    "TeamBackground",
			Headers: teamBackgroundHeaders,
			RowSet: [][]any{{
				id, d.Team.Abbreviation, d.Team.Name, d.YearFounded, nullable(d.Team.City), nullable(d.Arena),
				capacity, nullable(d.Owner), nullable(d.GeneralManager), nullable(d.HeadCoach),
			}},
		}},
	}
}
