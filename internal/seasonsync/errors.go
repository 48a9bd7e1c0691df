package seasonsync

import (
	"errors"
	"fmt"
)

// ErrSyncInProgress is returned when a sync is started while another one runs.
var ErrSyncInProgress = errors.New("season sync already in progress")

var errNotConfigured = errors.New("season sync not configured")

// SyncError reports a run that stopped before reaching the end of the season.
// Committed games are covered by the cursor; Succeeded games were fetched but may
// belong to the batch that was not committed.
type SyncError struct {
	Season    string
	Committed []string
	Succeeded []string
	Failed    []string
	Err       error
}

func (e *SyncError) Error() string {
	if len(e.Failed) > 0 {
		return fmt.Sprintf("sync %s: %d committed, %d failed: %v", e.Season, len(e.Committed), len(e.Failed), e.Err)
	}
	return fmt.Sprintf("sync %s: %d committed: %v", e.Season, len(e.Committed), e.Err)
}

func (e *SyncError) Unwrap() error {
	return e.Err
}

// AsSyncError unwraps a SyncError.
func AsSyncError(err error) (*SyncError, bool) {
	var target *SyncError
	if errors.As(err, &target) {
		return target, true
	}
	return nil, false
}
