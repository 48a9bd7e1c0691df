package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/nba-stats-service/internal/providers/fixture"
	"github.com/preston-bernstein/nba-stats-service/internal/seasonsync"
)

func fixtureEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PROVIDER", "fixture")
	t.Setenv("SYNC_CURSOR_STORE", "file")
	t.Setenv("SYNC_CURSOR_PATH", t.TempDir())
	t.Setenv("LOG_LEVEL", "error")
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{"--season", "2024", "--sync-only"})
	require.NoError(t, err)
	assert.Equal(t, "2024-25", opts.season)
	assert.True(t, opts.syncOnly)

	opts, err = parseFlags(nil)
	require.NoError(t, err)
	assert.NotEmpty(t, opts.season, "defaults to the season in progress")

	_, err = parseFlags([]string{"-s", "2023-25"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"--season", "2023-24", "extra"})
	assert.Error(t, err)
	_, err = parseFlags([]string{"--no-such-flag"})
	assert.Error(t, err)
}

func TestRunRolloverIsIdempotent(t *testing.T) {
	fixtureEnv(t)

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"--season", fixture.Season}, &out))
	var first seasonsync.RolloverResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &first))
	assert.Equal(t, fixture.Season, first.Season)
	assert.Len(t, first.Report.Committed, 3)

	out.Reset()
	require.NoError(t, run(context.Background(), []string{"--season", fixture.Season}, &out))
	var second seasonsync.RolloverResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &second))
	assert.Empty(t, second.Report.Committed, "cursor already covers every finished game")
}

func TestRunSyncOnlyReportsFailure(t *testing.T) {
	fixtureEnv(t)

	var out bytes.Buffer
	err := run(context.Background(), []string{"--season", "2025-26", "--sync-only"}, &out)
	require.Error(t, err)
	_, ok := seasonsync.AsSyncError(err)
	assert.True(t, ok, "got %v", err)

	var report seasonsync.Report
	require.NoError(t, json.Unmarshal(out.Bytes(), &report))
	assert.Equal(t, "2025-26", report.Season)
	assert.NotEmpty(t, report.Error)
}

func TestRunRejectsBadConfig(t *testing.T) {
	fixtureEnv(t)
	t.Setenv("SYNC_CURSOR_STORE", "carrier-pigeon")

	err := run(context.Background(), []string{"--season", fixture.Season}, &bytes.Buffer{})
	assert.ErrorContains(t, err, "load config")
}
