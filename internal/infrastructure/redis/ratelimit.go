package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ratelimit:"

// RateLimitStore keeps fixed-window request counters in Redis so every API
// replica shares the same budget per client.
// Key format: ratelimit:<client key>
type RateLimitStore struct {
	client *redis.Client
}

// NewRateLimitStore creates a RateLimitStore wrapping the given Redis client.
func NewRateLimitStore(client *redis.Client) *RateLimitStore {
	return &RateLimitStore{client: client}
}

// Hit counts one request for key and returns the updated count together with
// the moment the current window ends. The window starts on the first hit.
func (s *RateLimitStore) Hit(ctx context.Context, key string, window time.Duration) (int, time.Time, error) {
	k := keyPrefix + key

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, window)
	ttl := pipe.PTTL(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, fmt.Errorf("rate limit hit: %w", err)
	}

	remaining := ttl.Val()
	if remaining <= 0 {
		remaining = window
	}
	return int(incr.Val()), time.Now().Add(remaining), nil
}

// Ping reports whether Redis is reachable.
func (s *RateLimitStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
