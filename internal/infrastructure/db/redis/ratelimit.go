package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter is a fixed-window request counter backed by Redis.
// Key format: ratelimit:<client>:<window_start_unix>
type RateLimiter struct {
	client *redis.Client
	limit  int64
	window time.Duration
	now    func() time.Time
}

// NewRateLimiter allows at most limit requests per client in each window.
func NewRateLimiter(client *redis.Client, limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{client: client, limit: int64(limit), window: window, now: time.Now}
}

// Allow counts one request for client and reports whether it fits in the
// current window. The second return value is the time until the window resets.
func (l *RateLimiter) Allow(ctx context.Context, client string) (bool, time.Duration, error) {
	now := l.now()
	start := now.Truncate(l.window)
	key := l.key(client, start)

	pipe := l.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, fmt.Errorf("rate limit: %w", err)
	}

	return incr.Val() <= l.limit, start.Add(l.window).Sub(now), nil
}

func (l *RateLimiter) key(client string, windowStart time.Time) string {
	return fmt.Sprintf("ratelimit:%s:%d", client, windowStart.Unix())
}
