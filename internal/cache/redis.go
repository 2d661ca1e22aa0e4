package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ytlens/sponsorlens/internal/logger"
)

// ErrEmptyAddress is returned when the Redis address is not configured.
var ErrEmptyAddress = errors.New("redis address is required")

const connectionTimeout = 5 * time.Second

// RedisConfig holds connection settings for the Redis-backed reply cache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	// Timeout bounds each Get/Put round trip.
	Timeout time.Duration
	// TTL bounds how long a reply stays cached. Zero means no expiry.
	TTL time.Duration
}

// Redis is a ReplyCache shared across processes. Within a single run it
// behaves like Memory; across runs it additionally avoids re-paying for
// text already classified by an earlier run.
type Redis struct {
	client  *redis.Client
	timeout time.Duration
	ttl     time.Duration
	logger  logger.Logger
}

// NewRedis creates a Redis-backed reply cache and verifies the connection.
func NewRedis(cfg RedisConfig, log logger.Logger) (*Redis, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = connectionTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Redis{
		client:  client,
		timeout: cfg.Timeout,
		ttl:     cfg.TTL,
		logger:  log,
	}, nil
}

// Get returns the cached reply for text, if any. Backend failures are
// reported as misses: a degraded cache must never fail a classification.
func (r *Redis) Get(text string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	reply, err := r.client.Get(ctx, r.key(text)).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.Warn("reply cache get failed", logger.Error(err))
		}
		return "", false
	}
	return reply, true
}

// Put stores the raw reply for text.
func (r *Redis) Put(text, reply string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.client.Set(ctx, r.key(text), reply, r.ttl).Err(); err != nil {
		r.logger.Warn("reply cache put failed", logger.Error(err))
	}
}

// Close releases the underlying connection pool.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) key(text string) string {
	return "sponsorlens:reply:" + Key(text)
}
