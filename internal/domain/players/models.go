package players

import (
	"strings"

	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
)

// Player represents one row of the league player index.
type Player struct {
	ID           string     `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	Position     string     `json:"position"`
	HeightFeet   int        `json:"heightFeet"`
	HeightInches int        `json:"heightInches"`
	WeightPounds int        `json:"weightPounds"`
	Team         teams.Team `json:"team"`
	Meta         PlayerMeta `json:"meta"`
}

// PlayerMeta holds upstream metadata.
type PlayerMeta struct {
	UpstreamPlayerID int    `json:"upstreamPlayerId"`
	Slug             string `json:"slug"`
	College          string `json:"college"`
	Country          string `json:"country"`
	JerseyNumber     string `json:"jerseyNumber"`
	Active           bool   `json:"active"`
}

// Index is the parsed player index.
type Index struct {
	Players []Player `json:"players"`
}

// FullName joins first and last name.
func (p Player) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// NormalizeName lower-cases a player name and collapses whitespace so lookups are stable.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Slug renders a name the way the player index slugs it ("LeBron James" -> "lebron-james").
func Slug(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), "-")
}

// Find returns the best match for a player name: active players win over retired ones
// sharing the same name.
func (idx Index) Find(name string) (Player, bool) {
	want := NormalizeName(name)
	if want == "" {
		return Player{}, false
	}
	var (
		found Player
		ok    bool
	)
	for _, p := range idx.Players {
		if NormalizeName(p.FullName()) != want && p.Meta.Slug != Slug(want) {
			continue
		}
		if !ok || (p.Meta.Active && !found.Meta.Active) {
			found, ok = p, true
		}
	}
	return found, ok
}
