package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/players"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

var playerIndexHeaders = []string{
	"PERSON_ID", "PLAYER_LAST_NAME", "PLAYER_FIRST_NAME", "PLAYER_SLUG",
	"TEAM_ID", "TEAM_CITY", "TEAM_NAME", "TEAM_ABBREVIATION",
	"JERSEY_NUMBER", "POSITION", "HEIGHT", "WEIGHT", "COLLEGE", "COUNTRY", "ROSTER_STATUS",
}

// ParsePlayers decodes a playerindex payload. Rows without a person id are skipped.
func ParsePlayers(raw []byte) (players.Index, error) {
	_, tbl, err := decodeTable(domain.KindPlayer, raw, "",
		"PERSON_ID", "PLAYER_LAST_NAME", "PLAYER_FIRST_NAME", "TEAM_ID")
	if err != nil {
		return players.Index{}, err
	}
	var out players.Index
	for i, row := range tbl.rows {
		personID, err := tbl.integer(row, "PERSON_ID")
		if err != nil {
			return players.Index{}, tbl.rowError(i, "PERSON_ID", err)
		}
		if personID <= 0 {
			continue
		}
		teamID, err := tbl.integer(row, "TEAM_ID")
		if err != nil {
			return players.Index{}, tbl.rowError(i, "TEAM_ID", err)
		}
		feet, inches, err := parseHeight(tbl.str(row, "HEIGHT"))
		if err != nil {
			return players.Index{}, tbl.rowError(i, "HEIGHT", err)
		}
		weight, err := tbl.integer(row, "WEIGHT")
		if err != nil {
			return players.Index{}, tbl.rowError(i, "WEIGHT", err)
		}
		status, err := tbl.integer(row, "ROSTER_STATUS")
		if err != nil {
			return players.Index{}, tbl.rowError(i, "ROSTER_STATUS", err)
		}
		p := players.Player{
			ID:           strconv.Itoa(personID),
			FirstName:    tbl.str(row, "PLAYER_FIRST_NAME"),
			LastName:     tbl.str(row, "PLAYER_LAST_NAME"),
			Position:     tbl.str(row, "POSITION"),
			HeightFeet:   feet,
			HeightInches: inches,
			WeightPounds: weight,
			Meta: players.PlayerMeta{
				UpstreamPlayerID: personID,
				Slug:             tbl.str(row, "PLAYER_SLUG"),
				College:          tbl.str(row, "COLLEGE"),
				Country:          tbl.str(row, "COUNTRY"),
				JerseyNumber:     tbl.str(row, "JERSEY_NUMBER"),
				Active:           status == 1,
			},
		}
		if teamID > 0 {
			p.Team = teams.Enrich(teams.Team{
				ID:           strconv.Itoa(teamID),
				Name:         tbl.str(row, "TEAM_NAME"),
				City:         tbl.str(row, "TEAM_CITY"),
				Abbreviation: tbl.str(row, "TEAM_ABBREVIATION"),
			})
		}
		out.Players = append(out.Players, p)
	}
	return out, nil
}

// parseHeight splits "6-9" into feet and inches.
func parseHeight(raw string) (int, int, error) {
	if raw == "" {
		return 0, 0, nil
	}
	ft, in, ok := strings.Cut(raw, "-")
	if !ok {
		return 0, 0, fmt.Errorf("height %q", raw)
	}
	feet, err := strconv.Atoi(ft)
	if err != nil {
		return 0, 0, fmt.Errorf("height %q", raw)
	}
	inches, err := strconv.Atoi(in)
	if err != nil {
		return 0, 0, fmt.Errorf("height %q", raw)
	}
	return feet, inches, nil
}

func playersToNative(idx players.Index) statsPayload {
	set := statsResultSet{Name: "PlayerIndex", Headers: playerIndexHeaders, RowSet: [][]any{}}
	for _, p := range idx.Players {
		id := p.Meta.UpstreamPlayerID
		if id == 0 {
			id, _ = strconv.Atoi(p.ID)
		}
		teamID, _ := strconv.Atoi(p.Team.ID)
		height := ""
		if p.HeightFeet > 0 {
			height = fmt.Sprintf("%d-%d", p.HeightFeet, p.HeightInches)
		}
		weight := ""
		if p.WeightPounds > 0 {
			weight = strconv.Itoa(p.WeightPounds)
		}
		status := 0
		if p.Meta.Active {
			status = 1
		}
		set.RowSet = append(set.RowSet, []any{
			id, p.LastName, p.FirstName, nullable(p.Meta.Slug),
			teamID, nullable(p.Team.City), nullable(p.Team.Name), nullable(p.Team.Abbreviation),
			nullable(p.Meta.JerseyNumber), nullable(p.Position), nullable(height), nullable(weight),
			nullable(p.Meta.College), nullable(p.Meta.Country), status,
		})
	}
	return statsPayload{
		Resource:   "playerindex",
		Parameters: map[string]any{"LeagueID": "00"},
		ResultSets: []statsResultSet{set},
	}
}
