package cache

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
)

// Category selects the TTL rule applied to an entry.
type Category string

const (
	CategoryLive      Category = "live"
	CategoryScheduled Category = "scheduled"
	CategoryFinal     Category = "final"
	CategoryLatest    Category = "latest"
	CategorySchedule  Category = "schedule"
	CategoryStandings Category = "standings"
	CategoryPlayer    Category = "player"
	CategoryTeam      Category = "team"
)

const day = 24 * time.Hour

// Rule is the freshness window of a category.
type Rule struct {
	TTL   time.Duration
	Grace time.Duration
}

var defaultRules = map[Category]Rule{
	CategoryLive:      {TTL: 15 * time.Second, Grace: 2 * time.Minute},
	CategoryScheduled: {TTL: time.Minute, Grace: 10 * time.Minute},
	CategoryFinal:     {TTL: 365 * day, Grace: 30 * day},
	CategoryLatest:    {TTL: 10 * time.Minute, Grace: time.Hour},
	CategorySchedule:  {TTL: time.Hour, Grace: 6 * time.Hour},
	CategoryStandings: {TTL: time.Hour, Grace: 6 * time.Hour},
	CategoryPlayer:    {TTL: day, Grace: 3 * day},
	CategoryTeam:      {TTL: 7 * day, Grace: 7 * day},
}

// Categories lists every category in a stable order.
func Categories() []Category {
	out := make([]Category, 0, len(defaultRules))
	for c := range defaultRules {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseCategory validates a category name.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := defaultRules[c]; !ok {
		return "", fmt.Errorf("unknown cache category %q", raw)
	}
	return c, nil
}

// KindCategory returns the category used for records of a kind that does not depend on
// game state. Game-shaped kinds report false.
func KindCategory(kind domain.Kind) (Category, bool) {
	switch kind {
	case domain.KindSchedule:
		return CategorySchedule, true
	case domain.KindStandings:
		return CategoryStandings, true
	case domain.KindPlayer:
		return CategoryPlayer, true
	case domain.KindTeam:
		return CategoryTeam, true
	default:
		return "", false
	}
}

// Policy maps categories to rules.
type Policy struct {
	rules map[Category]Rule
}

// DefaultPolicy returns the built-in rules.
func DefaultPolicy() Policy {
	p, _ := NewPolicy(nil)
	return p
}

// NewPolicy applies TTL overrides on top of the built-in rules. Override keys must name a
// known category and durations must be positive.
func NewPolicy(ttlOverrides map[string]time.Duration) (Policy, error) {
	rules := make(map[Category]Rule, len(defaultRules))
	for c, r := range defaultRules {
		rules[c] = r
	}
	for name, ttl := range ttlOverrides {
		c, err := ParseCategory(name)
		if err != nil {
			return Policy{}, err
		}
		if ttl <= 0 {
			return Policy{}, fmt.Errorf("cache ttl for %s must be positive, got %s", c, ttl)
		}
		r := rules[c]
		r.TTL = ttl
		rules[c] = r
	}
	return Policy{rules: rules}, nil
}

// Rule returns the rule for a category.
func (p Policy) Rule(c Category) (Rule, bool) {
	if p.rules == nil {
		r, ok := defaultRules[c]
		return r, ok
	}
	r, ok := p.rules[c]
	return r, ok
}
