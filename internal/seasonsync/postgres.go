package seasonsync

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

const (
	createCursorsTable = `CREATE TABLE IF NOT EXISTS sync_cursors (
	season         TEXT PRIMARY KEY,
	last_game_id   TEXT NOT NULL DEFAULT '',
	last_game_time TIMESTAMPTZ,
	updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	createRunsTable = `CREATE TABLE IF NOT EXISTS sync_runs (
	run_id      TEXT PRIMARY KEY,
	season      TEXT NOT NULL,
	started_at  TIMESTAMPTZ NOT NULL,
	finished_at TIMESTAMPTZ NOT NULL,
	scanned     INTEGER NOT NULL,
	committed   INTEGER NOT NULL,
	failed      INTEGER NOT NULL,
	error       TEXT NOT NULL DEFAULT '',
	report      JSONB NOT NULL
)`

	selectCursor = `SELECT season, last_game_id, last_game_time, updated_at
FROM sync_cursors ORDER BY updated_at DESC LIMIT 1`
	upsertCursor = `INSERT INTO sync_cursors (season, last_game_id, last_game_time, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (season) DO UPDATE SET
	last_game_id = EXCLUDED.last_game_id,
	last_game_time = EXCLUDED.last_game_time,
	updated_at = EXCLUDED.updated_at`
	insertRun = `INSERT INTO sync_runs (run_id, season, started_at, finished_at, scanned, committed, failed, error, report)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (run_id) DO NOTHING`
)

// PostgresCursorStore keeps cursors in sync_cursors and run reports in sync_runs.
type PostgresCursorStore struct {
	db *sql.DB
}

// OpenPostgresCursorStore connects to dsn and ensures the schema.
func OpenPostgresCursorStore(ctx context.Context, dsn string) (*PostgresCursorStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s, err := NewPostgresCursorStore(ctx, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewPostgresCursorStore wraps an open database and ensures the schema.
func NewPostgresCursorStore(ctx context.Context, db *sql.DB) (*PostgresCursorStore, error) {
	if db == nil {
		return nil, errors.New("database required")
	}
	for _, stmt := range []string{createCursorsTable, createRunsTable} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return nil, fmt.Errorf("ensure sync schema: %w", err)
		}
	}
	return &PostgresCursorStore{db: db}, nil
}

// Load returns the cursor updated last.
func (s *PostgresCursorStore) Load(ctx context.Context) (Cursor, error) {
	var (
		c        Cursor
		lastTime sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, selectCursor).Scan(&c.Season, &c.LastGameID, &lastTime, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Cursor{}, nil
	}
	if err != nil {
		return Cursor{}, fmt.Errorf("load cursor: %w", err)
	}
	if lastTime.Valid {
		c.LastGameTime = lastTime.Time.UTC()
	}
	c.UpdatedAt = c.UpdatedAt.UTC()
	return c, nil
}

// Save upserts the season's cursor.
func (s *PostgresCursorStore) Save(ctx context.Context, c Cursor) error {
	if c.Season == "" {
		return errors.New("cursor season required")
	}
	lastTime := sql.NullTime{Time: c.LastGameTime, Valid: !c.LastGameTime.IsZero()}
	if _, err := s.db.ExecContext(ctx, upsertCursor, c.Season, c.LastGameID, lastTime, c.UpdatedAt); err != nil {
		return fmt.Errorf("save cursor: %w", err)
	}
	return nil
}

// RecordRun stores the report. Recording the same run twice is a no-op.
func (s *PostgresCursorStore) RecordRun(ctx context.Context, r Report) error {
	doc, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, insertRun,
		r.RunID, r.Season, r.StartedAt, r.FinishedAt,
		r.Scanned, len(r.Committed), len(r.Failed), r.Error, doc)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *PostgresCursorStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
