package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/bioren/user-directory/internal/api/metrics"
)

// Limiter decides whether a client may issue another request.
type Limiter interface {
	Allow(ctx context.Context, client string) (allowed bool, retryAfter time.Duration, err error)
}

// RateLimit rejects clients that exceed the limiter's budget with 429. The
// client is identified by c.RealIP(), so the Echo instance's IPExtractor
// decides which forwarding headers are trusted. When the limiter itself fails
// the request is let through.
func RateLimit(limiter Limiter, m *metrics.Metrics, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			client := c.RealIP()

			allowed, retryAfter, err := limiter.Allow(c.Request().Context(), client)
			if err != nil {
				log.Warn().Err(err).Str("client", client).Msg("rate limiter unavailable, allowing request")
				m.ObserveRateLimit(metrics.DecisionBypassed)
				return next(c)
			}
			if !allowed {
				m.ObserveRateLimit(metrics.DecisionRejected)
				secs := int(math.Ceil(retryAfter.Seconds()))
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many requests")
			}

			m.ObserveRateLimit(metrics.DecisionAllowed)
			return next(c)
		}
	}
}
