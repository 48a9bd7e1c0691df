package config

import "time"

const (
	envConfigFile     = "CONFIG_FILE"
	envPort           = "PORT"
	envPollInterval   = "POLL_INTERVAL"
	envProvider       = "PROVIDER"
	envAdminToken     = "ADMIN_TOKEN"
	envLogLevel       = "LOG_LEVEL"
	envLogFormat      = "LOG_FORMAT"
	envMetricsPort    = "METRICS_PORT"
	envMetricsOn      = "METRICS_ENABLED"
	envOtelEndpoint   = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService    = "OTEL_SERVICE_NAME"
	envOtelInsecure   = "OTEL_EXPORTER_OTLP_INSECURE"
	envCDNBaseURL     = "NBA_CDN_BASE_URL"
	envStatsBaseURL   = "NBA_STATS_BASE_URL"
	envFetchTimeout   = "FETCH_TIMEOUT"
	envRatePerSecond  = "UPSTREAM_RATE_PER_SECOND"
	envRateBurst      = "UPSTREAM_RATE_BURST"
	envMaxAttempts    = "UPSTREAM_MAX_ATTEMPTS"
	envBackoff        = "UPSTREAM_BACKOFF"
	envDefaultTeam    = "DEFAULT_TEAM"
	envDefaultPlayer  = "DEFAULT_PLAYER"
	envDateSelector   = "DATE_SELECTOR"
	envCacheSizeLimit = "CACHE_SIZE_LIMIT"
	envTTLOverrides   = "CACHE_TTL_OVERRIDES"
	envSweepInterval  = "CACHE_SWEEP_INTERVAL"
	envLanguage       = "LANGUAGE"
	envRedisURL       = "ARCHIVE_REDIS_URL"
	envArchiveTTL     = "ARCHIVE_TTL"
	envSyncEnabled    = "SYNC_ENABLED"
	envSyncSchedule   = "SYNC_SCHEDULE"
	envSyncBatchSize  = "SYNC_BATCH_SIZE"
	envSyncParallel   = "SYNC_CONCURRENCY"
	envCursorStore    = "SYNC_CURSOR_STORE"
	envCursorPath     = "SYNC_CURSOR_PATH"
	envPostgresDSN    = "SYNC_POSTGRES_DSN"
	envCORSOrigins    = "CORS_ALLOWED_ORIGINS"

	defaultPort = "4000"
	// Warms the schedule and the default team well inside the shortest non-live TTL.
	defaultPollInterval   = 2 * Duration(time.Minute)
	defaultProvider       = ProviderNBACDN
	defaultLogLevel       = "info"
	defaultLogFormat      = "text"
	defaultMetricsPort    = "9090"
	defaultServiceName    = "nba-stats-service"
	defaultFetchTimeout   = 10 * Duration(time.Second)
	defaultRatePerSecond  = 2.0
	defaultRateBurst      = 4
	defaultMaxAttempts    = 3
	defaultBackoff        = 200 * Duration(time.Millisecond)
	defaultTeam           = "Lakers"
	defaultPlayer         = "LeBron James"
	defaultDateSelector   = "last"
	defaultCacheSizeLimit = 5000
	defaultSweepInterval  = Duration(time.Minute)
	defaultLanguage       = "en_US"
	defaultArchiveTTL     = 400 * 24 * Duration(time.Hour)
	defaultSyncEnabled    = true
	defaultSyncSchedule   = "30 9 * * *"
	defaultSyncBatchSize  = 10
	defaultSyncParallel   = 4
	defaultCursorStore    = CursorStoreFile
	defaultCursorPath     = "data/sync"
	defaultCORSOrigins    = "*"
)

// Provider names.
const (
	ProviderNBACDN  = "nbacdn"
	ProviderFixture = "fixture"
)

// Cursor store backends.
const (
	CursorStoreFile     = "file"
	CursorStorePostgres = "postgres"
)
