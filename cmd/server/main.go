// @title                       Bioren User Directory API
// @version                     1.0
// @description                 Login and registration backed by an external identity provider.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Provider ID token, sent as "Bearer <token>".
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/bioren/user-directory/internal/api"
	"github.com/bioren/user-directory/internal/api/handler"
	"github.com/bioren/user-directory/internal/api/middleware"
	"github.com/bioren/user-directory/internal/core/service"
	"github.com/bioren/user-directory/internal/infrastructure/config"
	"github.com/bioren/user-directory/internal/infrastructure/db/mongo"
	"github.com/bioren/user-directory/internal/infrastructure/db/redis"
	"github.com/bioren/user-directory/internal/infrastructure/identity"
	"github.com/bioren/user-directory/pkg/logger"
)

const serviceName = "user-directory"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		bootLog := zerolog.New(os.Stderr)
		bootLog.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: serviceName,
		Env:     cfg.Env,
	})

	log := logger.Get()
	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped cleanly")
}

func run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()

	mongoClient, db, err := mongo.Connect(ctx, mongo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
		AppName:  serviceName,
		Timeout:  cfg.Mongo.Timeout,
	})
	if err != nil {
		return err
	}
	defer func() {
		disconnectCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
		defer cancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect failed")
		}
	}()

	rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, DB: cfg.Redis.DB})
	if err != nil {
		return err
	}
	defer func() { _ = rdb.Close() }()

	verifier, err := identity.New(ctx, identity.Config{
		Provider:  cfg.Identity.Provider,
		IssuerURL: cfg.Identity.IssuerURL,
		Audience:  cfg.Identity.Audience,
		RoleClaim: cfg.Identity.RoleClaim,
		Secret:    cfg.Identity.JWTSecret,
		Timeout:   cfg.Identity.Timeout,
	}, log)
	if err != nil {
		return err
	}

	users := service.NewUserService(verifier, mongo.NewUserRepository(db), log)

	var limiter middleware.Limiter
	if cfg.RateLimit.Requests > 0 {
		limiter = redis.NewRateLimiter(rdb, cfg.RateLimit.Requests, cfg.RateLimit.Window)
	}

	ipExtractor, err := api.ClientIPExtractor(cfg.TrustedProxies)
	if err != nil {
		return err
	}

	e := api.NewRouter(api.Dependencies{
		Users:       users,
		Limiter:     limiter,
		Log:         log,
		IPExtractor: ipExtractor,
		HealthChecks: map[string]handler.PingFunc{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
	})

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout(cfg))
	defer cancel()

	return e.Shutdown(shutdownCtx)
}

func shutdownTimeout(cfg *config.Config) time.Duration {
	if cfg.ShutdownTimeout <= 0 {
		return 10 * time.Second
	}
	return cfg.ShutdownTimeout
}
