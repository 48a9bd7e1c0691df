package timeutil

import "testing"

func TestSeasonForDate(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2024-03-01", "2023-24"},
		{"2024-07-31", "2023-24"},
		{"2024-08-01", "2024-25"},
		{"2024-10-22", "2024-25"},
		{"1999-12-25", "1999-00"},
	}
	for _, tc := range cases {
		d, _ := ParseDate(tc.date)
		if got := SeasonForDate(d); got != tc.want {
			t.Fatalf("SeasonForDate(%s) = %s, want %s", tc.date, got, tc.want)
		}
	}
}

func TestParseSeason(t *testing.T) {
	year, err := ParseSeason("2025-26")
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if year != 2025 {
		t.Fatalf("expected 2025, got %d", year)
	}

	for _, bad := range []string{"", "2025", "2025-27", "20x5-26", "2025/26"} {
		if _, err := ParseSeason(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestNormalizeSeason(t *testing.T) {
	got, err := NormalizeSeason("2024")
	if err != nil || got != "2024-25" {
		t.Fatalf("expected 2024-25, got %q (%v)", got, err)
	}
	got, err = NormalizeSeason(" 2024-25 ")
	if err != nil || got != "2024-25" {
		t.Fatalf("expected 2024-25, got %q (%v)", got, err)
	}
	if _, err := NormalizeSeason("next"); err == nil {
		t.Fatal("expected error for invalid season")
	}
}

func TestSeasonFromStartYearWrapsCentury(t *testing.T) {
	if got := SeasonFromStartYear(2099); got != "2099-00" {
		t.Fatalf("expected 2099-00, got %s", got)
	}
}
