package config

import (
	"errors"
	"os"
	"strings"
)

// AppConfig is the main application configuration struct that composes
// domain-specific configuration from separate files.
//
// Configuration is loaded from environment variables using the
// github.com/caarlos0/env library. See individual domain config
// files for details on available environment variables:
//   - auth.go: token keys, TTLs and password hashing
//   - database.go: Postgres and Redis
//   - http.go: HTTP server, cookies and CORS
//   - metrics.go: StatsD emission
type AppConfig struct {
	// IsDev relaxes cookie security for local development.
	// Set DEV=true or NODE_ENV=development for development mode.
	IsDev bool `env:"DEV" envDefault:"false"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	Auth AuthConfig `envPrefix:"AUTH_"`

	Postgres DBConfig    `envPrefix:"DB_"`
	Redis    RedisConfig `envPrefix:"REDIS_"`

	HTTP HTTPConfig

	Metrics MetricsConfig `envPrefix:"METRICS_"`
}

// Sanitize applies guardrails to configuration values loaded from env.
// This should be called after loading configuration from environment variables.
func (c *AppConfig) Sanitize() {
	c.detectDevMode()

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	c.Auth.Sanitize()
	c.Redis.Sanitize()
	c.HTTP.Sanitize(c.IsDev)
	c.Metrics.Sanitize()
}

// Validate reports settings the service cannot start without.
func (c *AppConfig) Validate() error {
	return errors.Join(
		c.Auth.Validate(),
		c.HTTP.ValidateCookieDomain(),
	)
}

// detectDevMode falls back to NODE_ENV when DEV is unset, so the frontend
// dev stack can share one .env file.
func (c *AppConfig) detectDevMode() {
	if c.IsDev {
		return
	}
	switch strings.ToLower(strings.TrimSpace(os.Getenv("NODE_ENV"))) {
	case "development", "dev":
		c.IsDev = true
	}
}
