package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
)

func TestRateLimitErrorString(t *testing.T) {
	err := &RateLimitError{
		Provider:   "p",
		StatusCode: 429,
		Message:    "rate limited",
	}
	if got := err.Error(); got == "" || got == "rate limited" {
		t.Fatalf("expected status in error string, got %q", got)
	}

	rl, ok := AsRateLimitError(err)
	if !ok || rl == nil {
		t.Fatalf("expected to unwrap rate limit error")
	}

	noStatus := &RateLimitError{}
	if got := noStatus.Error(); got == "" {
		t.Fatalf("expected fallback message")
	}
}

func TestFetchErrorString(t *testing.T) {
	err := &FetchError{Kind: domain.KindBoxScore, ID: "0022300851", StatusCode: 503, Attempts: 3, Err: errors.New("unavailable")}
	msg := err.Error()
	for _, want := range []string{"boxscore 0022300851", "status=503", "3 attempts", "unavailable"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in %q", want, msg)
		}
	}
	wrapped := fmt.Errorf("resolve: %w", err)
	if fErr, ok := AsFetchError(wrapped); !ok || fErr != err {
		t.Fatalf("expected to unwrap fetch error")
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"canceled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, true},
		{"not found", &FetchError{StatusCode: http.StatusNotFound, Err: ErrUpstreamNotFound}, false},
		{"bad request", &FetchError{StatusCode: http.StatusBadRequest}, false},
		{"server error", &FetchError{StatusCode: http.StatusServiceUnavailable}, true},
		{"rate limit", &RateLimitError{StatusCode: 429}, true},
		{"transport", errors.New("connection reset"), true},
		{"unavailable", ErrProviderUnavailable, false},
		{"invalid", &FetchError{Err: ErrInvalidRequest}, false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Fatalf("%s: Retryable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestRequestString(t *testing.T) {
	if got := (Request{Kind: domain.KindStandings, Season: "2024-25"}).String(); got != "standings:2024-25" {
		t.Fatalf("unexpected %q", got)
	}
	if got := (Request{Kind: domain.KindBoxScore, ID: "0022300851"}).String(); got != "boxscore:0022300851" {
		t.Fatalf("unexpected %q", got)
	}
}
