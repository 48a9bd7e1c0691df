package games

import (
	"fmt"
	"strconv"

	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
)

// GameIDLength is the length of an NBA game id such as "0022400123".
const GameIDLength = 10

// ValidateID checks the shape of an NBA game id.
func ValidateID(id string) error {
	if len(id) != GameIDLength {
		return fmt.Errorf("game id %q must have %d digits", id, GameIDLength)
	}
	if _, err := strconv.ParseUint(id, 10, 64); err != nil {
		return fmt.Errorf("game id %q must be numeric", id)
	}
	return nil
}

// SeasonFromID decodes the season label from a game id ("0022400123" -> "2024-25").
func SeasonFromID(id string) (string, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	return timeutil.SeasonFromStartYear(startYear(id)), nil
}

// startYear decodes the season start year of a validated id. Two-digit years before 46
// are this century; the league's first season was 1946-47.
func startYear(id string) int {
	yy, _ := strconv.Atoi(id[3:5])
	if yy >= 46 {
		return 1900 + yy
	}
	return 2000 + yy
}

// FirstPlayByPlaySeason is the start year of the first season with play-by-play feeds.
const FirstPlayByPlaySeason = 1996

// HasPlayByPlay reports whether upstream publishes a play-by-play feed for the game.
// Preseason games and seasons before 1996-97 have none.
func HasPlayByPlay(id string) bool {
	if ValidateID(id) != nil {
		return false
	}
	return id[2] != '1' && startYear(id) >= FirstPlayByPlaySeason
}

// SeasonTypeFromID decodes the season type digit of a game id.
func SeasonTypeFromID(id string) (SeasonType, error) {
	if err := ValidateID(id); err != nil {
		return "", err
	}
	switch id[2] {
	case '1':
		return SeasonPreseason, nil
	case '2':
		return SeasonRegular, nil
	case '3':
		return SeasonAllStar, nil
	case '4':
		return SeasonPlayoffs, nil
	case '5':
		return SeasonPlayIn, nil
	default:
		return "", fmt.Errorf("game id %q has unknown season type %q", id, id[2])
	}
}
