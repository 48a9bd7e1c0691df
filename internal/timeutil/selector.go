package timeutil

import (
	"fmt"
	"strings"
	"time"
)

// SelectorKind enumerates the ways a request may pick a date.
type SelectorKind string

const (
	SelectorToday SelectorKind = "today"
	SelectorLast  SelectorKind = "last"
	SelectorDate  SelectorKind = "date"
)

// Selector is a parsed date selector: "today", "last" or an ISO date.
type Selector struct {
	Kind SelectorKind
	Date string
}

// ParseSelector parses a date selector string. Empty input is rejected.
func ParseSelector(raw string) (Selector, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return Selector{}, fmt.Errorf("date selector required")
	case string(SelectorToday):
		return Selector{Kind: SelectorToday}, nil
	case string(SelectorLast), "latest":
		return Selector{Kind: SelectorLast}, nil
	}
	if _, err := ParseDate(value); err != nil {
		return Selector{}, fmt.Errorf("invalid date selector %q (expected today, last or YYYY-MM-DD)", raw)
	}
	return Selector{Kind: SelectorDate, Date: value}, nil
}

// Canonical pins "today" to a concrete date in loc; "last" and explicit dates are returned unchanged.
func (s Selector) Canonical(now time.Time, loc *time.Location) Selector {
	if s.Kind != SelectorToday {
		return s
	}
	if loc == nil {
		loc = time.UTC
	}
	return Selector{Kind: SelectorDate, Date: FormatDate(now.In(loc))}
}

// Season returns the season a selector refers to; "last" and "today" use now.
func (s Selector) Season(now time.Time, loc *time.Location) string {
	if s.Kind == SelectorDate {
		if parsed, err := ParseDate(s.Date); err == nil {
			return SeasonForDate(parsed)
		}
	}
	if loc == nil {
		loc = time.UTC
	}
	return SeasonForDate(now.In(loc))
}

// String renders the key form of a selector.
func (s Selector) String() string {
	if s.Kind == SelectorDate {
		return s.Date
	}
	return string(s.Kind)
}
