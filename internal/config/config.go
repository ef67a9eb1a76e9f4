package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config interface {
	EnvConfig
	CorsConfig
	BackendConfig
	SessionConfig
	SecurityConfig
}

type EnvConfig interface {
	GetPort() string
	GetAppName() string
	GetEnv() string
	GetLogLevel() string
	IsDevelopment() bool
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

type BackendConfig interface {
	GetBackendURL() string
}

type SessionConfig interface {
	GetSessionDriver() string
	GetSessionTTL() time.Duration
	GetSessionJanitorInterval() time.Duration
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisPrefix() string
	GetSQLiteDSN() string
}

type SecurityConfig interface {
	GetResendCooldown() time.Duration
	GetSecureCookies() bool
}

type mainConfig struct {
	EnvVars
	Cors
	Backend
	Session
	Security
}

// Load reads the optional dotenv files (".env" when none are given) and then parses the
// environment. Variables already set in the environment win over dotenv values.
func Load(dotEnvFiles ...string) (Config, error) {
	if err := godotenv.Load(dotEnvFiles...); err != nil {
		log.Debug().Err(err).Msg("No .env file loaded, using the process environment")
	}

	cfg := mainConfig{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("[config.Load] failed to parse environment variables: %w", err)
	}

	backendURL, err := url.Parse(cfg.Backend.URL)
	if err != nil || backendURL.Scheme == "" || backendURL.Host == "" {
		return nil, fmt.Errorf("[config.Load] BACKEND_URL must be an absolute URL, got %q", cfg.Backend.URL)
	}

	switch strings.ToLower(cfg.Session.Driver) {
	case "memory", "redis", "sqlite":
	default:
		return nil, fmt.Errorf("[config.Load] SESSION_DRIVER must be memory, redis or sqlite, got %q", cfg.Session.Driver)
	}

	return cfg, nil
}
