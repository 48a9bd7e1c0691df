package parser

import (
	"errors"
	"fmt"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
)

// ParseError reports a malformed upstream payload. It is never retried.
type ParseError struct {
	Kind   domain.Kind
	Field  string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("parse %s", e.Kind)
	if e.Field != "" {
		msg += ": field " + e.Field
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// AsParseError attempts to unwrap an error into a ParseError.
func AsParseError(err error) (*ParseError, bool) {
	var pErr *ParseError
	if errors.As(err, &pErr) {
		return pErr, true
	}
	return nil, false
}

func fieldError(kind domain.Kind, field, reason string) *ParseError {
	return &ParseError{Kind: kind, Field: field, Reason: reason}
}

func decodeError(kind domain.Kind, err error) *ParseError {
	return &ParseError{Kind: kind, Reason: "invalid json", Err: err}
}

var errMissing = errors.New("missing")
