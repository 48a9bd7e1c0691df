package orchestrator

import (
	"context"
	"errors"
	"fmt"
)

// Warm refreshes the records most requests depend on: the schedule, the player index and
// the default request. It reports how many were served without error. A default request
// with no matching game is not a failure.
func (o *Orchestrator) Warm(ctx context.Context) (int, error) {
	var (
		warmed int
		errs   []error
	)
	if _, err := o.ResolveSchedule(ctx); err != nil {
		errs = append(errs, fmt.Errorf("schedule: %w", err))
	} else {
		warmed++
	}
	if _, err := o.ResolvePlayerIndex(ctx); err != nil {
		errs = append(errs, fmt.Errorf("player index: %w", err))
	} else {
		warmed++
	}
	if _, err := o.Resolve(ctx, Request{}); err != nil && !isNotFound(err) {
		errs = append(errs, fmt.Errorf("default request: %w", err))
	} else if err == nil {
		warmed++
	}
	return warmed, errors.Join(errs...)
}
