// Package fixture serves a bundled league snapshot through the providers.Fetcher
// interface. Payloads are rendered with parser.Serialize, so they share the upstream shape.
package fixture

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/parser"
	"github.com/preston-bernstein/nba-stats-service/internal/providers"
)

// ProviderName labels this provider in logs and metrics.
const ProviderName = "fixture"

// Provider is an in-memory Fetcher. Tests can override payloads, inject errors, add
// latency and count calls per request.
type Provider struct {
	mu       sync.Mutex
	payloads map[string][]byte
	errs     map[string]error
	calls    map[string]int
	delay    time.Duration
	gate     chan struct{}
}

var _ providers.Fetcher = (*Provider)(nil)

// New returns a provider loaded with the bundled dataset.
func New() *Provider {
	p := NewEmpty()
	if err := p.Load(Load()); err != nil {
		panic(fmt.Sprintf("fixture: bundled dataset does not serialize: %v", err))
	}
	return p
}

// NewEmpty returns a provider with no payloads; every fetch is a 404 until Set is called.
func NewEmpty() *Provider {
	return &Provider{
		payloads: make(map[string][]byte),
		errs:     make(map[string]error),
		calls:    make(map[string]int),
	}
}

// Load registers every record of the dataset.
func (p *Provider) Load(d Dataset) error {
	if err := p.Set(providers.Request{Kind: domain.KindSchedule}, d.Schedule); err != nil {
		return err
	}
	if err := p.Set(providers.Request{Kind: domain.KindStandings}, d.Standings); err != nil {
		return err
	}
	if err := p.Set(providers.Request{Kind: domain.KindStandings, Season: d.Standings.Season}, d.Standings); err != nil {
		return err
	}
	if err := p.Set(providers.Request{Kind: domain.KindPlayer}, d.Players); err != nil {
		return err
	}
	for id, box := range d.BoxScores {
		if err := p.Set(providers.Request{Kind: domain.KindBoxScore, ID: id}, box); err != nil {
			return err
		}
	}
	for id, pbp := range d.PlayByPlay {
		if err := p.Set(providers.Request{Kind: domain.KindPlayByPlay, ID: id}, pbp); err != nil {
			return err
		}
	}
	for id, det := range d.Teams {
		if err := p.Set(providers.Request{Kind: domain.KindTeam, ID: id}, det); err != nil {
			return err
		}
	}
	return nil
}

// Set serializes record and serves it for req.
func (p *Provider) Set(req providers.Request, record parser.Record) error {
	raw, err := parser.Serialize(record)
	if err != nil {
		return err
	}
	p.SetRaw(req, raw)
	return nil
}

// SetRaw serves raw bytes for req, which allows malformed payloads in tests.
func (p *Provider) SetRaw(req providers.Request, raw []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.payloads[key(req)] = raw
}

// Fail makes every fetch of req return err until Recover is called.
func (p *Provider) Fail(req providers.Request, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errs[key(req)] = err
}

// Recover clears an injected error.
func (p *Provider) Recover(req providers.Request) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.errs, key(req))
}

// SetDelay adds latency to every fetch.
func (p *Provider) SetDelay(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delay = d
}

// Hold blocks every fetch until the returned release function is called.
func (p *Provider) Hold() (release func()) {
	gate := make(chan struct{})
	p.mu.Lock()
	p.gate = gate
	p.mu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			p.mu.Lock()
			if p.gate == gate {
				p.gate = nil
			}
			p.mu.Unlock()
			close(gate)
		})
	}
}

// Calls reports how many fetches were made for req.
func (p *Provider) Calls(req providers.Request) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[key(req)]
}

// TotalCalls reports the number of fetches across all requests.
func (p *Provider) TotalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	total := 0
	for _, n := range p.calls {
		total += n
	}
	return total
}

// Fetch serves the registered payload for req.
func (p *Provider) Fetch(ctx context.Context, req providers.Request) ([]byte, error) {
	k := key(req)
	p.mu.Lock()
	p.calls[k]++
	delay, gate := p.delay, p.gate
	p.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if err, ok := p.errs[k]; ok {
		return nil, err
	}
	if raw, ok := p.payloads[k]; ok {
		return raw, nil
	}
	if req.Kind == domain.KindGame {
		if raw, ok := p.payloads[key(providers.Request{Kind: domain.KindBoxScore, ID: req.ID})]; ok {
			return raw, nil
		}
	}
	if req.Kind == domain.KindStandings && req.Season != "" {
		if raw, ok := p.payloads[key(providers.Request{Kind: domain.KindStandings})]; ok {
			return raw, nil
		}
	}
	return nil, &providers.FetchError{Kind: req.Kind, ID: req.ID, StatusCode: http.StatusNotFound, Err: providers.ErrUpstreamNotFound}
}

// key ignores the season for kinds whose upstream document is not season-addressed.
func key(req providers.Request) string {
	switch req.Kind {
	case domain.KindSchedule, domain.KindPlayer:
		return string(req.Kind)
	default:
		return req.String()
	}
}
