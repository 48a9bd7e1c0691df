package teststubs

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/preston-bernstein/nba-stats-service/internal/providers"
)

// StubWarmer is a test double for poller.Warmer.
type StubWarmer struct {
	mu     sync.Mutex
	Warmed int
	Err    error
	Calls  atomic.Int32
	Notify chan struct{}
}

// Warm returns the configured count and error while tracking calls. Notify is closed on
// the first call.
func (s *StubWarmer) Warm(ctx context.Context) (int, error) {
	_ = ctx
	if s.Notify != nil {
		select {
		case <-s.Notify:
		default:
			close(s.Notify)
		}
	}
	s.Calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Warmed, s.Err
}

// SetErr swaps the error returned by later calls.
func (s *StubWarmer) SetErr(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Err = err
}

// StubFetcher is a providers.Fetcher serving one payload for every request.
type StubFetcher struct {
	Body  []byte
	Err   error
	Calls atomic.Int32
	Last  atomic.Value
}

// Fetch records the request and returns the configured payload.
func (s *StubFetcher) Fetch(ctx context.Context, req providers.Request) ([]byte, error) {
	s.Calls.Add(1)
	s.Last.Store(req)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.Body, s.Err
}

// LastRequest returns the most recent request, if any.
func (s *StubFetcher) LastRequest() (providers.Request, bool) {
	req, ok := s.Last.Load().(providers.Request)
	return req, ok
}
