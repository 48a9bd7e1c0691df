package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// seasonRolloverMonth is the first month that belongs to the next season.
const seasonRolloverMonth = time.August

// SeasonForDate returns the season label ("2024-25") a calendar date belongs to.
func SeasonForDate(t time.Time) string {
	year := t.Year()
	if t.Month() < seasonRolloverMonth {
		year--
	}
	return SeasonFromStartYear(year)
}

// SeasonFromStartYear formats the season that starts in the given year.
func SeasonFromStartYear(year int) string {
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// ParseSeason validates a "YYYY-YY" season label and returns its start year.
func ParseSeason(label string) (int, error) {
	label = strings.TrimSpace(label)
	start, end, ok := strings.Cut(label, "-")
	if !ok || len(start) != 4 || len(end) != 2 {
		return 0, fmt.Errorf("invalid season %q (expected YYYY-YY)", label)
	}
	year, err := strconv.Atoi(start)
	if err != nil {
		return 0, fmt.Errorf("invalid season %q: %w", label, err)
	}
	suffix, err := strconv.Atoi(end)
	if err != nil {
		return 0, fmt.Errorf("invalid season %q: %w", label, err)
	}
	if (year+1)%100 != suffix {
		return 0, fmt.Errorf("invalid season %q: years are not consecutive", label)
	}
	return year, nil
}

// NormalizeSeason returns the canonical label for a season, accepting "2024" as shorthand.
func NormalizeSeason(label string) (string, error) {
	label = strings.TrimSpace(label)
	if len(label) == 4 {
		year, err := strconv.Atoi(label)
		if err != nil {
			return "", fmt.Errorf("invalid season %q: %w", label, err)
		}
		return SeasonFromStartYear(year), nil
	}
	year, err := ParseSeason(label)
	if err != nil {
		return "", err
	}
	return SeasonFromStartYear(year), nil
}
