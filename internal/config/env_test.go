package config

import (
	"testing"
	"time"
)

func TestBoolOrDefault(t *testing.T) {
	s, err := newSource("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Setenv("BOOL_TEST", "")
	if got := s.boolOrDefault("BOOL_TEST", true); !got {
		t.Fatalf("expected default true when unset")
	}

	cases := []struct {
		val      string
		expected bool
	}{
		{"true", true},
		{"TRUE", true},
		{"1", true},
		{"yes", true},
		{"false", false},
		{"FALSE", false},
		{"0", false},
		{"no", false},
		{"maybe", true}, // falls back to default on unknown
	}

	for _, tc := range cases {
		t.Setenv("BOOL_TEST", tc.val)
		if got := s.boolOrDefault("BOOL_TEST", true); got != tc.expected {
			t.Fatalf("expected %v for %s, got %v", tc.expected, tc.val, got)
		}
	}
}

func TestDurationMapFromString(t *testing.T) {
	s, err := newSource("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Setenv("TTL_TEST", " Live=15s,,final=720h ")
	got, err := s.durationMap("TTL_TEST")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got["live"] != 15*time.Second || got["final"] != 720*time.Hour {
		t.Fatalf("unexpected map %v", got)
	}

	t.Setenv("TTL_TEST", "live=soon")
	if _, err := s.durationMap("TTL_TEST"); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}

func TestFloatOrDefault(t *testing.T) {
	s, err := newSource("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Setenv("RATE_TEST", "1.5")
	if got := s.floatOrDefault("RATE_TEST", 2); got != 1.5 {
		t.Fatalf("expected 1.5, got %v", got)
	}
	t.Setenv("RATE_TEST", "0")
	if got := s.floatOrDefault("RATE_TEST", 2); got != 2 {
		t.Fatalf("expected default for non-positive rate, got %v", got)
	}
}
