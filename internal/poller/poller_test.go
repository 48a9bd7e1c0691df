package poller

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/metrics"
	"github.com/preston-bernstein/nba-stats-service/internal/teststubs"
)

func TestPollerWarmsOnStartAndTick(t *testing.T) {
	warmer := &teststubs.StubWarmer{Warmed: 3, Notify: make(chan struct{})}
	recorder := metrics.NewRecorder()

	p := New(warmer, nil, recorder, 10*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)

	select {
	case <-warmer.Notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial warm")
	}

	deadline := time.Now().Add(time.Second)
	for warmer.Calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	if warmer.Calls.Load() < 2 {
		t.Fatalf("expected the ticker to warm again, got %d calls", warmer.Calls.Load())
	}
	status := p.Status()
	if !status.IsReady() || status.Warmed != 3 {
		t.Fatalf("expected ready status with 3 warmed, got %+v", status)
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	warmer := &teststubs.StubWarmer{Notify: make(chan struct{})}

	p := New(warmer, nil, nil, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	p.Start(ctx)

	select {
	case <-warmer.Notify:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial warm")
	}

	cancel()
	_ = p.Stop(context.Background())

	callsAfterStop := warmer.Calls.Load()
	time.Sleep(20 * time.Millisecond)
	if warmer.Calls.Load() != callsAfterStop {
		t.Fatalf("expected no additional warms after stop; before=%d after=%d", callsAfterStop, warmer.Calls.Load())
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := New(&teststubs.StubWarmer{}, nil, nil, time.Hour)

	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
}

func TestPollerStartIsIdempotent(t *testing.T) {
	warmer := &teststubs.StubWarmer{Notify: make(chan struct{})}
	p := New(warmer, nil, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	p.Start(ctx) // should no-op

	<-warmer.Notify
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}
	if warmer.Calls.Load() != 1 {
		t.Fatalf("expected a single warm loop, got %d calls", warmer.Calls.Load())
	}
}

func TestPollerDefaultsInterval(t *testing.T) {
	p := New(&teststubs.StubWarmer{}, nil, nil, 0)
	if p.interval != defaultInterval {
		t.Fatalf("expected default interval %s, got %s", defaultInterval, p.interval)
	}
}

func TestPollerStopHonoursContext(t *testing.T) {
	p := New(&teststubs.StubWarmer{}, nil, nil, time.Hour)
	p.started = true // loop never launched, so stopped is never closed

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Stop(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
}

func TestPollerStatusTracksFailuresAndSuccess(t *testing.T) {
	warmer := &teststubs.StubWarmer{Warmed: 1, Err: errors.New("boom")}
	recorder := metrics.NewRecorder()

	p := New(warmer, nil, recorder, time.Millisecond)
	ctx := context.Background()

	for i := 0; i < readyFailures; i++ {
		p.fetchOnce(ctx)
	}
	status := p.Status()
	if status.ConsecutiveFailures != readyFailures {
		t.Fatalf("expected %d failures, got %d", readyFailures, status.ConsecutiveFailures)
	}
	if status.LastError != "boom" {
		t.Fatalf("expected last error recorded, got %q", status.LastError)
	}
	if !status.LastSuccess.IsZero() || status.IsReady() {
		t.Fatalf("expected not ready without a success")
	}

	warmer.SetErr(nil)
	p.fetchOnce(ctx)
	status = p.Status()
	if status.ConsecutiveFailures != 0 || status.LastError != "" {
		t.Fatalf("expected failures reset, got %+v", status)
	}
	if !status.IsReady() {
		t.Fatalf("expected ready after success")
	}

	warmer.SetErr(errors.New("again"))
	for i := 0; i < readyFailures; i++ {
		p.fetchOnce(ctx)
	}
	if p.Status().IsReady() {
		t.Fatalf("expected not ready after repeated failures")
	}
}

func TestPollerLogsOnErrorAndSuccess(t *testing.T) {
	warmer := &teststubs.StubWarmer{Err: errors.New("fail")}
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))

	p := New(warmer, logger, nil, time.Second)
	p.fetchOnce(context.Background()) // should log error

	warmer.SetErr(nil)
	p.fetchOnce(context.Background()) // should log debug
}

func BenchmarkPollerFetchOnce(b *testing.B) {
	p := New(&teststubs.StubWarmer{Warmed: 3}, nil, nil, time.Second)
	ctx := context.Background()

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		p.fetchOnce(ctx)
	}
}
