package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/bioren/user-directory/docs"
	"github.com/bioren/user-directory/internal/api/handler"
	"github.com/bioren/user-directory/internal/api/metrics"
	"github.com/bioren/user-directory/internal/api/middleware"
	"github.com/bioren/user-directory/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer is built from.
type Dependencies struct {
	Users ports.UserService
	// Limiter throttles /api routes per client IP. Nil disables rate limiting.
	Limiter      middleware.Limiter
	HealthChecks map[string]handler.PingFunc
	Log          zerolog.Logger

	// IPExtractor resolves the client address used for rate limiting. Nil
	// uses the peer address and ignores forwarding headers.
	IPExtractor echo.IPExtractor

	// Registerer and Gatherer back the HTTP metrics, the directory metrics and
	// /metrics. They default to the Prometheus default registry.
	Registerer prometheus.Registerer
	Gatherer   prometheus.Gatherer
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	if deps.Registerer == nil {
		deps.Registerer = prometheus.DefaultRegisterer
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	if deps.IPExtractor == nil {
		deps.IPExtractor = echo.ExtractIPDirect()
	}
	m := metrics.New(deps.Registerer)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.IPExtractor = deps.IPExtractor
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(deps.Log))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "user_directory",
		Registerer: deps.Registerer,
		Skipper: func(c echo.Context) bool {
			return c.Path() == "/metrics"
		},
	}))

	// --- Directory routes ---
	userHandler := handler.NewUserHandler(deps.Users, m)

	apiGroup := e.Group("/api")
	if deps.Limiter != nil {
		apiGroup.Use(middleware.RateLimit(deps.Limiter, m, deps.Log))
	}
	apiGroup.POST("/auth/register", userHandler.Register)
	apiGroup.POST("/auth/login", userHandler.Login)
	apiGroup.GET("/users/me", userHandler.Me)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: deps.Gatherer,
	}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
