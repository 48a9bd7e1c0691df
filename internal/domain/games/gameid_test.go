package games

import "testing"

func TestSeasonFromID(t *testing.T) {
	cases := map[string]string{
		"0022400123": "2024-25",
		"0042300401": "2023-24",
		"0029900001": "1999-00",
		"0024600001": "1946-47",
	}
	for id, want := range cases {
		got, err := SeasonFromID(id)
		if err != nil {
			t.Fatalf("SeasonFromID(%s) error: %v", id, err)
		}
		if got != want {
			t.Fatalf("SeasonFromID(%s) = %s, want %s", id, got, want)
		}
	}
}

func TestHasPlayByPlay(t *testing.T) {
	cases := map[string]bool{
		"0022300851": true,
		"0042300401": true,
		"0029600001": true,
		"0029500001": false,
		"0012300001": false,
		"bogus":      false,
	}
	for id, want := range cases {
		if got := HasPlayByPlay(id); got != want {
			t.Fatalf("HasPlayByPlay(%s) = %v, want %v", id, got, want)
		}
	}
}

func TestSeasonTypeFromID(t *testing.T) {
	cases := map[string]SeasonType{
		"0012400001": SeasonPreseason,
		"0022400123": SeasonRegular,
		"0032400001": SeasonAllStar,
		"0042400101": SeasonPlayoffs,
		"0052400101": SeasonPlayIn,
	}
	for id, want := range cases {
		got, err := SeasonTypeFromID(id)
		if err != nil {
			t.Fatalf("SeasonTypeFromID(%s) error: %v", id, err)
		}
		if got != want {
			t.Fatalf("SeasonTypeFromID(%s) = %s, want %s", id, got, want)
		}
	}
	if _, err := SeasonTypeFromID("0092400001"); err == nil {
		t.Fatal("expected error for unknown season type")
	}
}

func TestValidateID(t *testing.T) {
	for _, bad := range []string{"", "123", "00224001234", "00224abc23"} {
		if err := ValidateID(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
	if err := ValidateID("0022400123"); err != nil {
		t.Fatalf("expected valid id, got %v", err)
	}
}
