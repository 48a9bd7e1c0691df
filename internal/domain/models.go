package domain

import (
	"fmt"
	"strings"
)

// Kind identifies a category of upstream resource and the record parsed from it.
type Kind string

const (
	KindBoxScore   Kind = "boxscore"
	KindPlayByPlay Kind = "playbyplay"
	KindSchedule   Kind = "schedule"
	KindStandings  Kind = "standings"
	KindPlayer     Kind = "player"
	KindTeam       Kind = "team"
	// KindGame is a single-game summary carried in a boxscore-shaped payload.
	KindGame Kind = "game"
)

// Kinds lists every supported resource kind in a stable order.
func Kinds() []Kind {
	return []Kind{KindBoxScore, KindPlayByPlay, KindSchedule, KindStandings, KindPlayer, KindTeam, KindGame}
}

// ParseKind validates a kind name.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	for _, known := range Kinds() {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown resource kind %q", raw)
}

func (k Kind) String() string {
	return string(k)
}
