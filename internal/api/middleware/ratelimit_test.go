package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/bioren/user-directory/internal/api/metrics"
)

type stubLimiter struct {
	allowed    bool
	retryAfter time.Duration
	err        error
	clients    []string
}

func (l *stubLimiter) Allow(_ context.Context, client string) (bool, time.Duration, error) {
	l.clients = append(l.clients, client)
	return l.allowed, l.retryAfter, l.err
}

func runRateLimit(t *testing.T, limiter *stubLimiter) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	return runRateLimitWith(t, limiter, metrics.New(prometheus.NewRegistry()), nil, "")
}

func runRateLimitWith(t *testing.T, limiter *stubLimiter, m *metrics.Metrics, extractor echo.IPExtractor, forwardedFor string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	e.IPExtractor = extractor
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	req.RemoteAddr = "203.0.113.7:5555"
	if forwardedFor != "" {
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := RateLimit(limiter, m, zerolog.Nop())(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestRateLimit_Allows(t *testing.T) {
	limiter := &stubLimiter{allowed: true}
	rec, called := runRateLimit(t, limiter)

	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(limiter.clients) != 1 || limiter.clients[0] != "203.0.113.7" {
		t.Fatalf("expected client ip key, got %v", limiter.clients)
	}
}

func TestRateLimit_Rejects(t *testing.T) {
	rec, called := runRateLimit(t, &stubLimiter{allowed: false, retryAfter: 1500 * time.Millisecond})

	if called {
		t.Fatalf("should not reach next")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "2" {
		t.Fatalf("expected Retry-After 2, got %q", got)
	}
}

func TestRateLimit_FailsOpen(t *testing.T) {
	rec, called := runRateLimit(t, &stubLimiter{err: errors.New("redis down")})

	if !called {
		t.Fatalf("next should be called when the limiter fails")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimit_RecordsDecisions(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())

	runRateLimitWith(t, &stubLimiter{allowed: true}, m, nil, "")
	runRateLimitWith(t, &stubLimiter{allowed: false}, m, nil, "")
	runRateLimitWith(t, &stubLimiter{err: errors.New("redis down")}, m, nil, "")

	for _, decision := range []string{metrics.DecisionAllowed, metrics.DecisionRejected, metrics.DecisionBypassed} {
		if got := testutil.ToFloat64(m.RateLimitDecisionsTotal.WithLabelValues(decision)); got != 1 {
			t.Fatalf("decision %s: expected 1, got %v", decision, got)
		}
	}
}

func TestRateLimit_DirectExtractorIgnoresForwardedFor(t *testing.T) {
	limiter := &stubLimiter{allowed: true}
	runRateLimitWith(t, limiter, metrics.New(prometheus.NewRegistry()), echo.ExtractIPDirect(), "10.9.8.7")

	if len(limiter.clients) != 1 || limiter.clients[0] != "203.0.113.7" {
		t.Fatalf("expected the peer address as key, got %v", limiter.clients)
	}
}
