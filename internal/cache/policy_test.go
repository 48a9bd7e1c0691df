package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
)

func TestDefaultPolicyRules(t *testing.T) {
	p := DefaultPolicy()
	for _, c := range Categories() {
		r, ok := p.Rule(c)
		require.True(t, ok, c)
		assert.Positive(t, r.TTL, c)
		assert.Positive(t, r.Grace, c)
	}
	r, _ := p.Rule(CategoryFinal)
	assert.Equal(t, 365*24*time.Hour, r.TTL)
	r, _ = p.Rule(CategoryScheduled)
	assert.Equal(t, time.Minute, r.TTL)

	var zero Policy
	r, ok := zero.Rule(CategoryLive)
	require.True(t, ok)
	assert.Equal(t, 15*time.Second, r.TTL)
}

func TestNewPolicyOverrides(t *testing.T) {
	p, err := NewPolicy(map[string]time.Duration{"LIVE": 5 * time.Second, "final": 720 * time.Hour})
	require.NoError(t, err)
	r, _ := p.Rule(CategoryLive)
	assert.Equal(t, 5*time.Second, r.TTL)
	assert.Equal(t, 2*time.Minute, r.Grace)
	r, _ = p.Rule(CategoryFinal)
	assert.Equal(t, 720*time.Hour, r.TTL)

	// Overrides never leak into the defaults.
	r, _ = DefaultPolicy().Rule(CategoryLive)
	assert.Equal(t, 15*time.Second, r.TTL)
}

func TestNewPolicyRejectsInvalid(t *testing.T) {
	_, err := NewPolicy(map[string]time.Duration{"forever": time.Hour})
	assert.ErrorContains(t, err, "unknown cache category")
	_, err = NewPolicy(map[string]time.Duration{"live": 0})
	assert.ErrorContains(t, err, "must be positive")
}

func TestKindCategory(t *testing.T) {
	c, ok := KindCategory(domain.KindStandings)
	assert.True(t, ok)
	assert.Equal(t, CategoryStandings, c)
	_, ok = KindCategory(domain.KindBoxScore)
	assert.False(t, ok)
}
