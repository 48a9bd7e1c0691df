package seasonsync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// DefaultRunRetention is the number of run reports kept per season.
const DefaultRunRetention = 30

// FileCursorStore keeps cursors and run reports as JSON files under a base directory:
//
//	manifest.json                 current season, per-season cursor and run index
//	cursors/<season>.json         cursor of one season
//	runs/<season>/<run id>.json   report of one run
//
// Every file is written to a temp file first and renamed into place.
type FileCursorStore struct {
	mu        sync.Mutex
	basePath  string
	retention int
	now       func() time.Time
}

// NewFileCursorStore constructs a store rooted at basePath. Retention bounds the run
// reports kept per season.
func NewFileCursorStore(basePath string, retention int) (*FileCursorStore, error) {
	if basePath == "" {
		return nil, errors.New("cursor store path required")
	}
	if retention <= 0 {
		retention = DefaultRunRetention
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("cursor store: %w", err)
	}
	return &FileCursorStore{basePath: basePath, retention: retention, now: time.Now}, nil
}

// BasePath exposes the store root.
func (s *FileCursorStore) BasePath() string {
	if s == nil {
		return ""
	}
	return s.basePath
}

func (s *FileCursorStore) cursorPath(season string) string {
	return filepath.Join(s.basePath, "cursors", season+".json")
}

func (s *FileCursorStore) runPath(season, runID string) string {
	return filepath.Join(s.basePath, "runs", season, runID+".json")
}

// Load returns the cursor of the season saved last.
func (s *FileCursorStore) Load(ctx context.Context) (Cursor, error) {
	if err := ctx.Err(); err != nil {
		return Cursor{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.readManifest()
	if err != nil {
		return Cursor{}, err
	}
	if m.Current == "" {
		return Cursor{}, nil
	}
	var c Cursor
	data, err := os.ReadFile(s.cursorPath(m.Current))
	if errors.Is(err, os.ErrNotExist) {
		return Cursor{Season: m.Current}, nil
	}
	if err != nil {
		return Cursor{}, fmt.Errorf("read cursor: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return Cursor{}, fmt.Errorf("decode cursor: %w", err)
	}
	return c, nil
}

// Save writes the cursor and makes its season current.
func (s *FileCursorStore) Save(ctx context.Context, c Cursor) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.Season == "" {
		return errors.New("cursor season required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSON(s.cursorPath(c.Season), c); err != nil {
		return err
	}
	m, err := s.readManifest()
	if err != nil {
		return err
	}
	m.Current = c.Season
	meta := m.Seasons[c.Season]
	meta.LastGameID = c.LastGameID
	meta.CursorUpdatedAt = c.UpdatedAt
	m.Seasons[c.Season] = meta
	return s.writeManifest(m)
}

// RecordRun writes the report and prunes the season's oldest reports beyond retention.
func (s *FileCursorStore) RecordRun(ctx context.Context, r Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.RunID == "" || r.Season == "" {
		return errors.New("run id and season required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := writeJSON(s.runPath(r.Season, r.RunID), r); err != nil {
		return err
	}
	m, err := s.readManifest()
	if err != nil {
		return err
	}
	meta := m.Seasons[r.Season]
	meta.Runs = append(meta.Runs, RunMeta{
		ID:         r.RunID,
		FinishedAt: r.FinishedAt,
		Committed:  len(r.Committed),
		Failed:     len(r.Failed),
		Error:      r.Error,
	})
	sort.SliceStable(meta.Runs, func(i, j int) bool {
		return meta.Runs[i].FinishedAt.Before(meta.Runs[j].FinishedAt)
	})
	if over := len(meta.Runs) - s.retention; over > 0 {
		for _, old := range meta.Runs[:over] {
			_ = os.Remove(s.runPath(r.Season, old.ID))
		}
		meta.Runs = append([]RunMeta(nil), meta.Runs[over:]...)
	}
	m.Seasons[r.Season] = meta
	return s.writeManifest(m)
}

// Runs returns the run index of a season, oldest first.
func (s *FileCursorStore) Runs(season string) ([]RunMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.readManifest()
	if err != nil {
		return nil, err
	}
	return append([]RunMeta(nil), m.Seasons[season].Runs...), nil
}

// Close is a no-op; files are closed after every write.
func (s *FileCursorStore) Close() error {
	return nil
}

func writeJSON(target string, payload any) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	if existing, err := os.ReadFile(target); err == nil && bytes.Equal(existing, data) {
		return nil
	}
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, target)
}
