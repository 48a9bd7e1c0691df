package cache

import "time"

// State classifies a lookup result.
type State int

const (
	StateMissing State = iota
	StateFresh
	StateStale
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateStale:
		return "stale"
	default:
		return "miss"
	}
}

// Entry is one cached record. Entries are never mutated in place; a Put replaces the entry.
type Entry struct {
	Key      Key
	Value    any
	Category Category
	StoredAt time.Time
	TTL      time.Duration
	Grace    time.Duration
}

// Age is the time elapsed since the entry was stored.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.StoredAt)
}

// State reports whether the entry is fresh, usable-stale or expired (StateMissing) at now.
func (e Entry) State(now time.Time) State {
	age := e.Age(now)
	switch {
	case age < e.TTL:
		return StateFresh
	case age < e.TTL+e.Grace:
		return StateStale
	default:
		return StateMissing
	}
}

// Expired reports whether the entry is past its grace period.
func (e Entry) Expired(now time.Time) bool {
	return e.State(now) == StateMissing
}

// ExpiresAt is the instant the entry stops being fresh.
func (e Entry) ExpiresAt() time.Time {
	return e.StoredAt.Add(e.TTL)
}
