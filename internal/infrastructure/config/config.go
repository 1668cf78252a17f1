package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	LogLevel        string        `env:"LOG_LEVEL,        default=info"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	// TrustedProxies lists CIDR ranges whose X-Forwarded-For entries are
	// believed. Empty means the peer address identifies the client.
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	Mongo     MongoConfig
	Redis     RedisConfig
	Identity  IdentityConfig
	RateLimit RateLimitConfig
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017"`
	Database string        `env:"MONGO_DB,      default=bioren"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IdentityConfig selects the token verifier. With the oidc provider, a
// Firebase project uses IssuerURL https://securetoken.google.com/<project-id>
// and Audience <project-id>.
type IdentityConfig struct {
	Provider  string        `env:"IDENTITY_PROVIDER,   default=oidc"`
	IssuerURL string        `env:"IDENTITY_ISSUER_URL"`
	Audience  string        `env:"IDENTITY_AUDIENCE"`
	RoleClaim string        `env:"IDENTITY_ROLE_CLAIM, default=role"`
	Timeout   time.Duration `env:"IDENTITY_TIMEOUT,    default=5s"`
	JWTSecret string        `env:"JWT_SECRET"`
}

// RateLimitConfig bounds requests per client IP. Requests <= 0 disables it.
type RateLimitConfig struct {
	Requests int           `env:"RATE_LIMIT_REQUESTS, default=60"`
	Window   time.Duration `env:"RATE_LIMIT_WINDOW,   default=1m"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate checks settings that depend on each other.
func (c *Config) Validate() error {
	switch c.Identity.Provider {
	case "oidc":
		if c.Identity.IssuerURL == "" || c.Identity.Audience == "" {
			return errors.New("IDENTITY_ISSUER_URL and IDENTITY_AUDIENCE are required for the oidc provider")
		}
	case "hs256":
		if c.Identity.JWTSecret == "" {
			return errors.New("JWT_SECRET is required for the hs256 provider")
		}
	default:
		return fmt.Errorf("unsupported IDENTITY_PROVIDER %q", c.Identity.Provider)
	}
	if c.RateLimit.Requests > 0 && c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	for _, cidr := range c.TrustedProxies {
		if _, _, err := net.ParseCIDR(cidr); err != nil {
			return fmt.Errorf("TRUSTED_PROXIES: invalid CIDR %q", cidr)
		}
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}
