package services

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// FixedWindowLimiter counts hits per key in Redis and resets the count when
// the key's TTL runs out.
type FixedWindowLimiter struct {
	rdb    redis.Cmdable
	prefix string
	limit  int64
	window time.Duration
}

func NewFixedWindowLimiter(rdb redis.Cmdable, prefix string, limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{rdb: rdb, prefix: prefix, limit: int64(limit), window: window}
}

// Allow records one hit for key. When the limit is exceeded it returns false
// and the time until the window resets.
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	userKey := l.prefix + ":" + key

	count, err := l.rdb.Incr(ctx, userKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("redis error incrementing count: %w", err)
	}

	// TTL is set only on the first hit of a window
	if count == 1 {
		if err := l.rdb.Expire(ctx, userKey, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("redis error setting TTL: %w", err)
		}
	}

	if count > l.limit {
		retryAfter, err := l.rdb.TTL(ctx, userKey).Result()
		if err != nil {
			return false, 0, fmt.Errorf("redis error reading TTL: %w", err)
		}
		return false, retryAfter, nil
	}
	return true, 0, nil
}
