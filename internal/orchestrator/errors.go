package orchestrator

import (
	"errors"
	"fmt"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
)

// ErrInvalidRequest marks requests that cannot be normalized (bad date selector, game id or season).
var ErrInvalidRequest = errors.New("invalid request")

// NotFoundError reports a logical request with no matching record. It is never masked by
// stale data.
type NotFoundError struct {
	Kind   domain.Kind
	Key    string
	Reason string
}

func (e *NotFoundError) Error() string {
	msg := fmt.Sprintf("%s not found", e.Kind)
	if e.Key != "" {
		msg += " for " + e.Key
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

// AsNotFound attempts to unwrap an error into a NotFoundError.
func AsNotFound(err error) (*NotFoundError, bool) {
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return nf, true
	}
	return nil, false
}

// UnavailableError reports a request that could be served neither from upstream nor from
// stale cache. Err is the underlying FetchError, ParseError or timeout.
type UnavailableError struct {
	Kind domain.Kind
	Key  string
	Err  error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("%s data unavailable for %s: %v", e.Kind, e.Key, e.Err)
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

// AsUnavailable attempts to unwrap an error into an UnavailableError.
func AsUnavailable(err error) (*UnavailableError, bool) {
	var ue *UnavailableError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, fmt.Sprintf(format, args...))
}
