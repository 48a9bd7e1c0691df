package games

import (
	"reflect"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

func TestGameStatusValues(t *testing.T) {
	expected := map[GameStatus]string{
		StatusScheduled: "scheduled",
		StatusLive:      "live",
		StatusFinal:     "final",
	}

	for status, want := range expected {
		if string(status) != want {
			t.Fatalf("expected %q got %q", want, status)
		}
	}
}

func TestGameJSONTags(t *testing.T) {
	type fieldCheck struct {
		name string
		tag  string
	}

	gameType := reflect.TypeOf(Game{})
	fields := []fieldCheck{
		{"ID", "id"},
		{"Season", "season"},
		{"HomeTeam", "homeTeam"},
		{"AwayTeam", "awayTeam"},
		{"StartTime", "startTime"},
		{"Status", "status"},
		{"Score", "score"},
		{"UpdatedAt", "updatedAt"},
	}
	for _, fc := range fields {
		f, ok := gameType.FieldByName(fc.name)
		if !ok {
			t.Fatalf("missing field %s", fc.name)
		}
		if tag := f.Tag.Get("json"); tag != fc.tag {
			t.Fatalf("field %s expected tag %s, got %s", fc.name, fc.tag, tag)
		}
	}
}

func TestScheduleForTeam(t *testing.T) {
	lal := teams.Team{Abbreviation: "LAL"}
	bos := teams.Team{Abbreviation: "BOS"}
	mia := teams.Team{Abbreviation: "MIA"}
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	s := Schedule{Games: []Game{
		{ID: "1", HomeTeam: lal, AwayTeam: bos, StartTime: start},
		{ID: "2", HomeTeam: mia, AwayTeam: bos, StartTime: start},
		{ID: "3", HomeTeam: mia, AwayTeam: lal, StartTime: start.Add(48 * time.Hour)},
	}}

	got := s.ForTeam("LAL")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("unexpected games %+v", got)
	}
	if !got[1].Involves("MIA") || got[1].Final() {
		t.Fatalf("unexpected helpers on %+v", got[1])
	}
	if !got[0].EndTimestamp().Equal(start) {
		t.Fatalf("expected end timestamp to follow start time")
	}
}
