package seasonsync

import (
	"context"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain/games"
)

// Cursor marks the last game of a season whose batch was fully committed.
// Positions are ordered by (LastGameTime, LastGameID).
type Cursor struct {
	Season       string    `json:"season"`
	LastGameID   string    `json:"lastGameId,omitempty"`
	LastGameTime time.Time `json:"lastGameTime,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt,omitempty"`
}

// IsZero reports whether the cursor sits at the start of its season.
func (c Cursor) IsZero() bool {
	return c.LastGameID == "" && c.LastGameTime.IsZero()
}

// Passed reports whether g lies at or before the cursor position.
func (c Cursor) Passed(g games.Game) bool {
	if c.IsZero() {
		return false
	}
	if !g.StartTime.Equal(c.LastGameTime) {
		return g.StartTime.Before(c.LastGameTime)
	}
	return g.ID <= c.LastGameID
}

// advance returns the cursor positioned at g.
func (c Cursor) advance(g games.Game, now time.Time) Cursor {
	return Cursor{
		Season:       c.Season,
		LastGameID:   g.ID,
		LastGameTime: g.StartTime.UTC(),
		UpdatedAt:    now.UTC(),
	}
}

// CursorStore persists the sync cursor and the history of runs.
type CursorStore interface {
	// Load returns the most recently saved cursor, or a zero cursor when none exists.
	Load(ctx context.Context) (Cursor, error)
	// Save replaces the stored cursor.
	Save(ctx context.Context, c Cursor) error
	// RecordRun appends a finished run to the history.
	RecordRun(ctx context.Context, r Report) error
	Close() error
}

// Report describes one sync run. Succeeded lists every game whose documents were fetched,
// committed or not; Committed lists the games written through and covered by the cursor.
// HeldBy is the unfinished game the run stopped in front of, if any.
type Report struct {
	RunID        string    `json:"runId"`
	Season       string    `json:"season"`
	StartedAt    time.Time `json:"startedAt"`
	FinishedAt   time.Time `json:"finishedAt"`
	Scanned      int       `json:"scanned"`
	Batches      int       `json:"batches"`
	Committed    []string  `json:"committed"`
	Succeeded    []string  `json:"succeeded"`
	Failed       []string  `json:"failed"`
	HeldBy       string    `json:"heldBy,omitempty"`
	CursorBefore Cursor    `json:"cursorBefore"`
	CursorAfter  Cursor    `json:"cursorAfter"`
	Error        string    `json:"error,omitempty"`
}

// Duration is the wall time of the run.
func (r Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
