package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRateLimiter(client, limit, window), mr
}

func TestRateLimiter_AllowsUpToLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, 3, time.Minute)
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return base.Add(10 * time.Second) }

	for i := 0; i < 3; i++ {
		ok, _, err := limiter.Allow(context.Background(), "10.0.0.1")
		if err != nil {
			t.Fatalf("Allow returned error: %v", err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, retryAfter, err := limiter.Allow(context.Background(), "10.0.0.1")
	if err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}
	if ok {
		t.Fatalf("4th request should be rejected")
	}
	if retryAfter != 50*time.Second {
		t.Fatalf("expected retry after 50s, got %s", retryAfter)
	}
}

func TestRateLimiter_ClientsAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if ok, _, _ := limiter.Allow(context.Background(), "a"); !ok {
		t.Fatalf("first request for a should be allowed")
	}
	if ok, _, _ := limiter.Allow(context.Background(), "b"); !ok {
		t.Fatalf("first request for b should be allowed")
	}
	if ok, _, _ := limiter.Allow(context.Background(), "a"); ok {
		t.Fatalf("second request for a should be rejected")
	}
}

func TestRateLimiter_NewWindowResets(t *testing.T) {
	limiter, _ := newTestLimiter(t, 1, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 30, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if ok, _, _ := limiter.Allow(context.Background(), "a"); !ok {
		t.Fatalf("first request should be allowed")
	}
	if ok, _, _ := limiter.Allow(context.Background(), "a"); ok {
		t.Fatalf("second request should be rejected")
	}

	now = now.Add(time.Minute)
	if ok, _, _ := limiter.Allow(context.Background(), "a"); !ok {
		t.Fatalf("request in next window should be allowed")
	}
}

func TestRateLimiter_SetsExpiry(t *testing.T) {
	limiter, mr := newTestLimiter(t, 5, time.Minute)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }

	if _, _, err := limiter.Allow(context.Background(), "a"); err != nil {
		t.Fatalf("Allow returned error: %v", err)
	}

	key := limiter.key("a", now)
	if ttl := mr.TTL(key); ttl != time.Minute {
		t.Fatalf("expected ttl 1m, got %s", ttl)
	}

	mr.FastForward(time.Minute)
	if mr.Exists(key) {
		t.Fatalf("expected key to expire")
	}
}

func TestRateLimiter_StoreUnavailable(t *testing.T) {
	limiter, mr := newTestLimiter(t, 5, time.Minute)
	mr.Close()

	if _, _, err := limiter.Allow(context.Background(), "a"); err == nil {
		t.Fatalf("expected error when store is down")
	}
}
