package seasonsync

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const manifestVersion = 1

// Manifest indexes the seasons a FileCursorStore has seen.
type Manifest struct {
	Version     int                   `json:"version"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Current     string                `json:"current"`
	Seasons     map[string]SeasonMeta `json:"seasons"`
}

// SeasonMeta summarizes one season's cursor and recent runs.
type SeasonMeta struct {
	LastGameID      string    `json:"lastGameId,omitempty"`
	CursorUpdatedAt time.Time `json:"cursorUpdatedAt,omitempty"`
	Runs            []RunMeta `json:"runs"`
}

// RunMeta is the manifest entry of one run report.
type RunMeta struct {
	ID         string    `json:"id"`
	FinishedAt time.Time `json:"finishedAt"`
	Committed  int       `json:"committed"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

func defaultManifest() Manifest {
	return Manifest{
		Version: manifestVersion,
		Seasons: map[string]SeasonMeta{},
	}
}

func (s *FileCursorStore) manifestPath() string {
	return filepath.Join(s.basePath, "manifest.json")
}

// readManifest returns an empty manifest when none has been written yet.
func (s *FileCursorStore) readManifest() (Manifest, error) {
	data, err := os.ReadFile(s.manifestPath())
	if errors.Is(err, os.ErrNotExist) {
		return defaultManifest(), nil
	}
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	m := defaultManifest()
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Seasons == nil {
		m.Seasons = map[string]SeasonMeta{}
	}
	return m, nil
}

func (s *FileCursorStore) writeManifest(m Manifest) error {
	m.Version = manifestVersion
	m.GeneratedAt = s.now().UTC()
	return writeJSON(s.manifestPath(), m)
}
