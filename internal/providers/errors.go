package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
)

var (
	// ErrProviderUnavailable is returned when no upstream is configured.
	ErrProviderUnavailable = errors.New("provider unavailable")
	// ErrUpstreamNotFound marks a resource the upstream does not have (404/403).
	ErrUpstreamNotFound = errors.New("upstream resource not found")
	// ErrInvalidRequest marks a request missing the identifier its kind needs.
	ErrInvalidRequest = errors.New("invalid provider request")
)

// RateLimitError captures rate limit responses from upstream providers.
type RateLimitError struct {
	Provider   string
	StatusCode int
	RetryAfter time.Duration
	Remaining  string
	Message    string
}

func (e *RateLimitError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "provider rate limited"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s (status=%d)", msg, e.StatusCode)
	}
	return msg
}

// AsRateLimitError attempts to unwrap an error into a RateLimitError.
func AsRateLimitError(err error) (*RateLimitError, bool) {
	var rlErr *RateLimitError
	if errors.As(err, &rlErr) {
		return rlErr, true
	}
	return nil, false
}

// FetchError describes a failed upstream call for one resource.
type FetchError struct {
	Kind       domain.Kind
	ID         string
	StatusCode int
	Attempts   int
	Err        error
}

func (e *FetchError) Error() string {
	target := string(e.Kind)
	if e.ID != "" {
		target += " " + e.ID
	}
	msg := "fetch " + target
	if e.StatusCode > 0 {
		msg += fmt.Sprintf(" (status=%d)", e.StatusCode)
	}
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// AsFetchError attempts to unwrap an error into a FetchError.
func AsFetchError(err error) (*FetchError, bool) {
	var fErr *FetchError
	if errors.As(err, &fErr) {
		return fErr, true
	}
	return nil, false
}

// IsNotFound reports whether err marks a resource the upstream does not have.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUpstreamNotFound)
}

// Retryable reports whether another attempt could succeed: rate limits, timeouts,
// transport failures and 5xx responses are retryable; missing resources and other 4xx are not.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || IsNotFound(err) ||
		errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrInvalidRequest) {
		return false
	}
	if _, ok := AsRateLimitError(err); ok {
		return true
	}
	if fErr, ok := AsFetchError(err); ok && fErr.StatusCode > 0 {
		return fErr.StatusCode >= http.StatusInternalServerError
	}
	return true
}
