// Package config loads runtime settings from the environment and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/preston-bernstein/nba-stats-service/internal/cache"
	"github.com/preston-bernstein/nba-stats-service/internal/domain/teams"
	"github.com/preston-bernstein/nba-stats-service/internal/timeutil"
	"github.com/preston-bernstein/nba-stats-service/internal/views"
)

// Config holds runtime configuration for the server.
type Config struct {
	Port         string
	PollInterval Duration
	Provider     string
	AdminToken   string
	CORSOrigins  []string
	Log          LogConfig
	Upstream     UpstreamConfig
	Core         CoreConfig
	Archive      ArchiveConfig
	Sync         SyncConfig
	Metrics      MetricsConfig
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string
	Format string
}

// UpstreamConfig controls how the NBA endpoints are reached.
type UpstreamConfig struct {
	CDNBaseURL    string
	StatsBaseURL  string
	Timeout       Duration
	RatePerSecond float64
	Burst         int
	MaxAttempts   int
	Backoff       Duration
}

// CoreConfig holds the request defaults and cache sizing of the data core.
type CoreConfig struct {
	DefaultTeam    string
	DefaultPlayer  string
	DateSelector   string
	CacheSizeLimit int
	TTLOverrides   map[string]Duration
	SweepInterval  Duration
	Language       string
}

// ArchiveConfig enables the Redis archive of finished games when RedisURL is set.
type ArchiveConfig struct {
	RedisURL string
	TTL      Duration
}

// SyncConfig controls the scheduled season sync and where its cursor lives.
type SyncConfig struct {
	Enabled     bool
	Schedule    string
	BatchSize   int
	Concurrency int
	CursorStore string
	CursorPath  string
	PostgresDSN string
}

// Load reads configuration from the environment and the file named by CONFIG_FILE, if any.
func Load() (Config, error) {
	return LoadFile(os.Getenv(envConfigFile))
}

// LoadFile reads configuration with path as the YAML file; environment variables win over
// the file. Malformed numbers and durations fall back to their defaults; unknown
// enumerations and TTL categories are errors.
func LoadFile(path string) (Config, error) {
	s, err := newSource(path)
	if err != nil {
		return Config{}, err
	}
	ttl, err := s.durationMap(envTTLOverrides)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Port:         s.stringOrDefault(envPort, defaultPort),
		PollInterval: s.durationOrDefault(envPollInterval, defaultPollInterval),
		Provider:     strings.ToLower(s.stringOrDefault(envProvider, defaultProvider)),
		AdminToken:   s.stringOrDefault(envAdminToken, ""),
		CORSOrigins:  splitList(s.stringOrDefault(envCORSOrigins, defaultCORSOrigins)),
		Log: LogConfig{
			Level:  s.stringOrDefault(envLogLevel, defaultLogLevel),
			Format: s.stringOrDefault(envLogFormat, defaultLogFormat),
		},
		Upstream: UpstreamConfig{
			CDNBaseURL:    s.stringOrDefault(envCDNBaseURL, ""),
			StatsBaseURL:  s.stringOrDefault(envStatsBaseURL, ""),
			Timeout:       s.durationOrDefault(envFetchTimeout, defaultFetchTimeout),
			RatePerSecond: s.floatOrDefault(envRatePerSecond, defaultRatePerSecond),
			Burst:         s.intOrDefault(envRateBurst, defaultRateBurst),
			MaxAttempts:   s.intOrDefault(envMaxAttempts, defaultMaxAttempts),
			Backoff:       s.durationOrDefault(envBackoff, defaultBackoff),
		},
		Core: CoreConfig{
			DefaultTeam:    s.stringOrDefault(envDefaultTeam, defaultTeam),
			DefaultPlayer:  s.stringOrDefault(envDefaultPlayer, defaultPlayer),
			DateSelector:   strings.ToLower(s.stringOrDefault(envDateSelector, defaultDateSelector)),
			CacheSizeLimit: s.intOrDefault(envCacheSizeLimit, defaultCacheSizeLimit),
			TTLOverrides:   ttl,
			SweepInterval:  s.durationOrDefault(envSweepInterval, defaultSweepInterval),
			Language:       s.stringOrDefault(envLanguage, defaultLanguage),
		},
		Archive: ArchiveConfig{
			RedisURL: s.stringOrDefault(envRedisURL, ""),
			TTL:      s.durationOrDefault(envArchiveTTL, defaultArchiveTTL),
		},
		Sync: SyncConfig{
			Enabled:     s.boolOrDefault(envSyncEnabled, defaultSyncEnabled),
			Schedule:    s.stringOrDefault(envSyncSchedule, defaultSyncSchedule),
			BatchSize:   s.intOrDefault(envSyncBatchSize, defaultSyncBatchSize),
			Concurrency: s.intOrDefault(envSyncParallel, defaultSyncParallel),
			CursorStore: strings.ToLower(s.stringOrDefault(envCursorStore, defaultCursorStore)),
			CursorPath:  s.stringOrDefault(envCursorPath, defaultCursorPath),
			PostgresDSN: s.stringOrDefault(envPostgresDSN, ""),
		},
		Metrics: loadMetrics(s),
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated settings.
func (c Config) Validate() error {
	var errs []error
	switch c.Provider {
	case ProviderNBACDN, ProviderFixture:
	default:
		errs = append(errs, fmt.Errorf("%s: unknown provider %q", envProvider, c.Provider))
	}
	if _, ok := teams.Lookup(c.Core.DefaultTeam); c.Core.DefaultTeam != "" && !ok {
		errs = append(errs, fmt.Errorf("%s: unknown or ambiguous team %q", envDefaultTeam, c.Core.DefaultTeam))
	}
	if _, err := timeutil.ParseSelector(c.Core.DateSelector); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", envDateSelector, err))
	}
	if !views.SupportedLanguage(c.Core.Language) {
		errs = append(errs, fmt.Errorf("%s: unsupported language %q (zh_CN or en_US)", envLanguage, c.Core.Language))
	}
	if _, err := c.Core.Policy(); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", envTTLOverrides, err))
	}
	switch c.Sync.CursorStore {
	case CursorStoreFile:
	case CursorStorePostgres:
		if c.Sync.PostgresDSN == "" {
			errs = append(errs, fmt.Errorf("%s required for the postgres cursor store", envPostgresDSN))
		}
	default:
		errs = append(errs, fmt.Errorf("%s: unknown cursor store %q", envCursorStore, c.Sync.CursorStore))
	}
	return errors.Join(errs...)
}

// Policy builds the cache TTL policy with the configured overrides applied.
func (c CoreConfig) Policy() (cache.Policy, error) {
	return cache.NewPolicy(c.TTLOverrides)
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
