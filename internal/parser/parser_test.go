package parser

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/players"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/stats"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture %s: %v", name, err)
	}
	return raw
}

func TestParseBoxScore(t *testing.T) {
	box, err := ParseBoxScore(readFixture(t, "boxscore.json"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	g := box.Game
	if g.ID != "0022300851" || g.Season != "2023-24" || g.SeasonType != games.SeasonRegular {
		t.Fatalf("unexpected game identity %+v", g)
	}
	if g.Status != games.StatusFinal || g.Score.Home != 114 || g.Score.Away != 105 {
		t.Fatalf("unexpected status/score %+v", g)
	}
	if !g.StartTime.Equal(time.Date(2024, 3, 2, 3, 30, 0, 0, time.UTC)) {
		t.Fatalf("unexpected start %s", g.StartTime)
	}
	if !g.UpdatedAt.Equal(time.Date(2024, 3, 2, 6, 12, 44, 123e6, time.UTC)) {
		t.Fatalf("unexpected updatedAt %s", g.UpdatedAt)
	}
	if g.HomeTeam.Abbreviation != "LAL" || g.HomeTeam.Conference != "West" || g.HomeTeam.FullName != "Los Angeles Lakers" {
		t.Fatalf("home team not enriched: %+v", g.HomeTeam)
	}
	if len(box.Home.Players) != 3 || len(box.Away.Players) != 2 {
		t.Fatalf("unexpected player counts %d/%d", len(box.Home.Players), len(box.Away.Players))
	}
	lebron := box.Home.Players[0]
	if lebron.PersonID != 2544 || !lebron.Starter || lebron.Points != 27 || lebron.PlusMinus != 6 {
		t.Fatalf("unexpected line %+v", lebron)
	}
	if box.Home.Players[1].Points != 31 {
		t.Fatalf("expected string points coerced, got %d", box.Home.Players[1].Points)
	}
	if box.Home.Totals.Points != 114 {
		t.Fatalf("expected totals summed from lines, got %d", box.Home.Totals.Points)
	}
	if box.Away.Players[1].Played {
		t.Fatalf("inactive player should not be marked played")
	}
}

func TestParseGameIgnoresPlayers(t *testing.T) {
	g, err := ParseGame(readFixture(t, "boxscore.json"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if g.ID != "0022300851" || g.Period != 4 || g.Clock != "PT00M00.00S" {
		t.Fatalf("unexpected game %+v", g)
	}
}

func TestParsePlayByPlay(t *testing.T) {
	pbp, err := ParsePlayByPlay(readFixture(t, "playbyplay.json"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if pbp.GameID != "0022300851" || len(pbp.Actions) != 5 {
		t.Fatalf("unexpected pbp %+v", pbp)
	}
	if a := pbp.Actions[1]; a.PersonID != 2544 || a.ScoreHome != 2 || !a.Shot() {
		t.Fatalf("unexpected action %+v", a)
	}
	if !pbp.Finished() {
		t.Fatalf("expected game end marker")
	}
}

func TestParseScheduleSkipsPlaceholders(t *testing.T) {
	s, err := ParseSchedule(readFixture(t, "schedule.json"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if s.Season != "2023-24" {
		t.Fatalf("unexpected season %q", s.Season)
	}
	if len(s.Games) != 4 {
		t.Fatalf("expected 4 games (placeholder skipped), got %d", len(s.Games))
	}
	lal := s.ForTeam("LAL")
	if len(lal) != 3 {
		t.Fatalf("expected 3 Lakers games, got %d", len(lal))
	}
	live := s.Games[2]
	if live.Status != games.StatusLive || live.Period != 3 {
		t.Fatalf("unexpected live game %+v", live)
	}
	for _, g := range s.Games {
		if !g.UpdatedAt.Equal(s.UpdatedAt) {
			t.Fatalf("expected game updatedAt to follow the payload")
		}
	}
}

func TestParseStandings(t *testing.T) {
	st, err := ParseStandings(readFixture(t, "standings.json"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if st.Season != "2023-24" || len(st.Rows) != 3 {
		t.Fatalf("unexpected standings %+v", st)
	}
	lal := st.Rows[2]
	if lal.Team.Abbreviation != "LAL" || lal.Wins != 47 || lal.Losses != 35 || lal.PlayoffRank != 8 || lal.WinPct != 0.573 {
		t.Fatalf("unexpected row %+v", lal)
	}
}

func TestParsePlayers(t *testing.T) {
	idx, err := ParsePlayers(readFixture(t, "playerindex.json"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(idx.Players) != 3 {
		t.Fatalf("expected row without person id skipped, got %d players", len(idx.Players))
	}
	lebron, ok := idx.Find("lebron james")
	if !ok {
		t.Fatalf("expected LeBron James in index")
	}
	if lebron.HeightFeet != 6 || lebron.HeightInches != 9 || lebron.WeightPounds != 250 || !lebron.Meta.Active {
		t.Fatalf("unexpected player %+v", lebron)
	}
	if lebron.Team.Abbreviation != "LAL" {
		t.Fatalf("unexpected team %+v", lebron.Team)
	}
	kobe, _ := idx.Find("Kobe Bryant")
	if kobe.Team != (teams.Team{}) || kobe.Meta.Active {
		t.Fatalf("expected retired player without team, got %+v", kobe)
	}
}

func TestParseTeam(t *testing.T) {
	d, err := ParseTeam(readFixture(t, "teamdetails.json"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Team.Abbreviation != "LAL" || d.YearFounded != 1948 || d.ArenaCapacity != 19060 || d.HeadCoach != "Darvin Ham" {
		t.Fatalf("unexpected details %+v", d)
	}
}

func TestParseDispatchesByKind(t *testing.T) {
	fixtures := map[domain.Kind]string{
		domain.KindGame:       "boxscore.json",
		domain.KindBoxScore:   "boxscore.json",
		domain.KindPlayByPlay: "playbyplay.json",
		domain.KindSchedule:   "schedule.json",
		domain.KindStandings:  "standings.json",
		domain.KindPlayer:     "playerindex.json",
		domain.KindTeam:       "teamdetails.json",
	}
	for kind, name := range fixtures {
		rec, err := Parse(readFixture(t, name), kind)
		if err != nil {
			t.Fatalf("parse %s: %v", kind, err)
		}
		got, err := KindOf(rec)
		if err != nil || got != kind {
			t.Fatalf("expected kind %s, got %s (%v)", kind, got, err)
		}
	}
}

func TestRoundTripFixtures(t *testing.T) {
	fixtures := map[domain.Kind]string{
		domain.KindGame:       "boxscore.json",
		domain.KindBoxScore:   "boxscore.json",
		domain.KindPlayByPlay: "playbyplay.json",
		domain.KindSchedule:   "schedule.json",
		domain.KindStandings:  "standings.json",
		domain.KindPlayer:     "playerindex.json",
		domain.KindTeam:       "teamdetails.json",
	}
	for kind, name := range fixtures {
		t.Run(string(kind), func(t *testing.T) {
			rec, err := Parse(readFixture(t, name), kind)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			assertRoundTrip(t, kind, rec)
		})
	}
}

func TestRoundTripConstructedRecords(t *testing.T) {
	lal, _ := teams.ByTricode("LAL")
	den, _ := teams.ByTricode("DEN")
	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	game := games.Game{
		ID:         "0042300105",
		Season:     "2023-24",
		SeasonType: games.SeasonPlayoffs,
		HomeTeam:   den,
		AwayTeam:   lal,
		StartTime:  time.Date(2024, 4, 30, 2, 0, 0, 0, time.UTC),
		Status:     games.StatusScheduled,
		UpdatedAt:  updated,
	}
	lines := []stats.PlayerLine{{PersonID: 2544, Name: "LeBron James", Starter: true, Played: true, Points: 30, Minutes: "PT40M00.00S"}}
	records := []Record{
		game,
		stats.BoxScore{
			Game: game,
			Home: stats.TeamBox{Team: den},
			Away: stats.TeamBox{Team: lal, Players: lines, Totals: stats.Sum(lines)},
		},
		stats.PlayByPlay{GameID: game.ID, Actions: []stats.Action{{Number: 1, Period: 1, ActionType: "period", SubType: "start"}}},
		games.Schedule{Season: "2023-24", UpdatedAt: updated, Games: []games.Game{game}},
		teams.Standings{Season: "2023-24", Rows: []teams.Standing{{Team: lal, Conference: "West", PlayoffRank: 7, Wins: 47, Losses: 35, WinPct: 0.573}}},
		players.Index{Players: []players.Player{{
			ID: "2544", FirstName: "LeBron", LastName: "James", HeightFeet: 6, HeightInches: 9,
			Team: lal, Meta: players.PlayerMeta{UpstreamPlayerID: 2544, Slug: "lebron-james", Active: true},
		}}},
		teams.Details{Team: lal, YearFounded: 1948, Arena: "Crypto.com Arena"},
	}
	for _, rec := range records {
		kind, err := KindOf(rec)
		if err != nil {
			t.Fatalf("kind: %v", err)
		}
		t.Run(string(kind), func(t *testing.T) {
			assertRoundTrip(t, kind, rec)
		})
	}
}

func assertRoundTrip(t *testing.T, kind domain.Kind, rec Record) {
	t.Helper()
	raw, err := Serialize(rec)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	back, err := Parse(raw, kind)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, raw)
	}
	if diff := cmp.Diff(rec, back, cmpopts.EquateEmpty()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
	again, err := Serialize(back)
	if err != nil {
		t.Fatalf("serialize again: %v", err)
	}
	if string(again) != string(raw) {
		t.Fatalf("serialization not stable")
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		kind  domain.Kind
		raw   string
		field string
	}{
		{"malformed json", domain.KindBoxScore, `{"game":`, ""},
		{"missing game id", domain.KindBoxScore, `{"game":{"gameStatus":3}}`, "game.gameId"},
		{"bad game id", domain.KindGame, `{"game":{"gameId":"abc"}}`, "game.gameId"},
		{"unknown status", domain.KindGame, `{"game":{"gameId":"0022300851","gameStatus":9}}`, "game.gameStatus"},
		{"missing start", domain.KindGame, `{"game":{"gameId":"0022300851","gameStatus":1}}`, "game.gameTimeUTC"},
		{"missing home team", domain.KindGame, `{"game":{"gameId":"0022300851","gameStatus":1,"gameTimeUTC":"2024-03-02T03:30:00Z","awayTeam":{"teamId":1,"teamTricode":"DEN"}}}`, "game.homeTeam.teamId"},
		{"bad meta time", domain.KindGame, `{"meta":{"time":"yesterday"},"game":{}}`, "meta.time"},
		{"pbp missing action number", domain.KindPlayByPlay, `{"game":{"gameId":"0022300851","actions":[{"actionType":"2pt"}]}}`, "game.actions[0].actionNumber"},
		{"schedule missing season", domain.KindSchedule, `{"leagueSchedule":{"gameDates":[]}}`, "leagueSchedule.seasonYear"},
		{"standings missing column", domain.KindStandings, `{"parameters":{"Season":"2023-24"},"resultSets":[{"name":"Standings","headers":["TeamID"],"rowSet":[]}]}`, "resultSets.Standings.headers"},
		{"standings missing season", domain.KindStandings, `{"resultSets":[{"name":"Standings","headers":["TeamID","TeamCity","TeamName","Conference","PlayoffRank","WINS","LOSSES","WinPCT"],"rowSet":[]}]}`, "parameters.Season"},
		{"team without rows", domain.KindTeam, `{"resultSets":[{"name":"TeamBackground","headers":["TEAM_ID","ABBREVIATION"],"rowSet":[]}]}`, "resultSets.TeamBackground.rowSet"},
		{"player bad height", domain.KindPlayer, `{"resultSets":[{"name":"PlayerIndex","headers":["PERSON_ID","PLAYER_LAST_NAME","PLAYER_FIRST_NAME","TEAM_ID","HEIGHT"],"rowSet":[[1,"A","B",0,"tall"]]}]}`, "resultSets.PlayerIndex.rowSet[0].HEIGHT"},
		{"unsupported kind", domain.Kind("odds"), `{}`, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.raw), tc.kind)
			if err == nil {
				t.Fatalf("expected error")
			}
			pErr, ok := AsParseError(err)
			if !ok {
				t.Fatalf("expected ParseError, got %T", err)
			}
			if pErr.Kind != tc.kind {
				t.Fatalf("expected kind %s, got %s", tc.kind, pErr.Kind)
			}
			if tc.field != "" && pErr.Field != tc.field {
				t.Fatalf("expected field %q, got %q", tc.field, pErr.Field)
			}
			if !strings.Contains(err.Error(), "parse "+string(tc.kind)) {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestParseErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := error(&ParseError{Kind: domain.KindTeam, Err: cause})
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to unwrap")
	}
	if _, ok := AsParseError(errors.New("plain")); ok {
		t.Fatalf("plain error should not be a ParseError")
	}
}

func TestSerializeRejectsUnknownRecord(t *testing.T) {
	if _, err := Serialize(struct{}{}); err == nil {
		t.Fatalf("expected error")
	}
	if _, err := KindOf(42); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFlexIntCoercion(t *testing.T) {
	var v struct {
		A flexInt `json:"a"`
		B flexInt `json:"b"`
		C flexInt `json:"c"`
		D flexInt `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"a":"12","b":3.0,"c":null,"d":""}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v.A != 12 || v.B != 3 || v.C != 0 || v.D != 0 {
		t.Fatalf("unexpected values %+v", v)
	}
	if err := json.Unmarshal([]byte(`{"a":"twelve"}`), &v); err == nil {
		t.Fatalf("expected error for non-numeric string")
	}
}
