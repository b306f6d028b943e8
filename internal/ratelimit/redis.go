package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisStore backs the counter table with a shared Redis instance so rate
// limits stay consistent across workers. Each window is one key with a TTL;
// INCR on a fresh key starts the window and sets its expiry.
type RedisStore struct {
	client redis.UniversalClient
	cfg    Config
	prefix string
}

// NewRedisStore wraps an existing client. The caller owns the client's
// lifecycle; Close here is a no-op.
func NewRedisStore(client redis.UniversalClient, cfg Config) *RedisStore {
	return &RedisStore{client: client, cfg: cfg, prefix: "ratelimit:"}
}

// NewRedisStoreFromURL dials Redis from a URL and verifies the connection.
func NewRedisStoreFromURL(ctx context.Context, redisURL string, cfg Config) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return NewRedisStore(client, cfg), nil
}

func (s *RedisStore) Allow(ctx context.Context, clientID string) (bool, *Status, error) {
	key := s.prefix + clientID

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	ttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, nil, fmt.Errorf("rate limit incr: %w", err)
	}

	count := int(incr.Val())
	resetAt := time.Now().Add(s.cfg.Window)
	if d := ttl.Val(); d > 0 {
		resetAt = time.Now().Add(d)
	} else {
		// First request of the window: start its expiry. A key without a
		// TTL (crash between INCR and EXPIRE) is healed the same way.
		if err := s.client.PExpire(ctx, key, s.cfg.Window).Err(); err != nil {
			return false, nil, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	status := &Status{
		Count:     count,
		Limit:     s.cfg.Limit,
		ResetAt:   resetAt,
		Remaining: s.cfg.Limit - count,
	}
	if status.Remaining < 0 {
		status.Remaining = 0
	}
	return count <= s.cfg.Limit, status, nil
}

// Close is a no-op: the Redis client is shared and closed by its owner.
func (s *RedisStore) Close() error { return nil }
