// Package archive keeps raw upstream payloads of finished games in Redis so that a restart
// or an evicted cache entry does not cost another upstream call.
package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/nba-stats-service/internal/domain"
	"github.com/preston-bernstein/nba-stats-service/internal/logging"
)

const (
	DefaultPrefix = "nba:archive"
	DefaultTTL    = 400 * 24 * time.Hour
	pingTimeout   = 5 * time.Second
)

// ErrInvalidDocument is returned for documents without a kind, season or id.
var ErrInvalidDocument = errors.New("archive: kind, season and id are required")

// Doc addresses one archived payload.
type Doc struct {
	Kind   domain.Kind
	Season string
	ID     string
}

func (d Doc) valid() bool {
	return d.Kind != "" && d.Season != "" && d.ID != ""
}

// Options configures a RedisArchive.
type Options struct {
	Prefix string
	TTL    time.Duration
	Logger *slog.Logger
}

// RedisArchive stores payloads as plain strings and tracks the keys of each season in a set.
type RedisArchive struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

// Open connects to the Redis server at url and verifies it answers a PING.
func Open(ctx context.Context, url string, opts Options) (*RedisArchive, error) {
	redisOpts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("archive: parse url: %w", err)
	}
	client := redis.NewClient(redisOpts)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("archive: ping: %w", err)
	}
	return New(client, opts), nil
}

// New wraps an existing client.
func New(client *redis.Client, opts Options) *RedisArchive {
	if opts.Prefix == "" {
		opts.Prefix = DefaultPrefix
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	return &RedisArchive{
		client: client,
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		logger: opts.Logger,
	}
}

func (a *RedisArchive) key(d Doc) string {
	return fmt.Sprintf("%s:%s:%s:%s", a.prefix, d.Season, d.Kind, d.ID)
}

func (a *RedisArchive) indexKey(season string) string {
	return fmt.Sprintf("%s:%s:index", a.prefix, season)
}

// Load returns the archived payload. A missing document reports false without error.
func (a *RedisArchive) Load(ctx context.Context, d Doc) ([]byte, bool, error) {
	if !d.valid() {
		return nil, false, ErrInvalidDocument
	}
	raw, err := a.client.Get(ctx, a.key(d)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("archive: get %s: %w", a.key(d), err)
	}
	return raw, true, nil
}

// Save stores a payload, replacing any earlier version.
func (a *RedisArchive) Save(ctx context.Context, d Doc, raw []byte) error {
	if !d.valid() {
		return ErrInvalidDocument
	}
	key := a.key(d)
	pipe := a.client.TxPipeline()
	pipe.Set(ctx, key, raw, a.ttl)
	pipe.SAdd(ctx, a.indexKey(d.Season), key)
	pipe.Expire(ctx, a.indexKey(d.Season), a.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("archive: save %s: %w", key, err)
	}
	logging.Debug(a.logger, "archived payload",
		logging.FieldKind, string(d.Kind),
		logging.FieldGameID, d.ID,
		logging.FieldSeason, d.Season,
	)
	return nil
}

// DeleteSeason drops every document archived for season and returns how many were removed.
func (a *RedisArchive) DeleteSeason(ctx context.Context, season string) (int, error) {
	if season == "" {
		return 0, ErrInvalidDocument
	}
	index := a.indexKey(season)
	keys, err := a.client.SMembers(ctx, index).Result()
	if err != nil {
		return 0, fmt.Errorf("archive: list %s: %w", index, err)
	}
	if len(keys) == 0 {
		return 0, nil
	}
	removed, err := a.client.Del(ctx, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("archive: delete season %s: %w", season, err)
	}
	if err := a.client.Del(ctx, index).Err(); err != nil {
		return int(removed), fmt.Errorf("archive: delete index %s: %w", index, err)
	}
	logging.Info(a.logger, "archive season deleted", logging.FieldSeason, season, logging.FieldCount, removed)
	return int(removed), nil
}

// Ping checks connectivity for readiness probes.
func (a *RedisArchive) Ping(ctx context.Context) error {
	return a.client.Ping(ctx).Err()
}

// Close releases the client.
func (a *RedisArchive) Close() error {
	return a.client.Close()
}
