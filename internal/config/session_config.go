package config

import (
	"strings"
	"time"
)

type Session struct {
	Driver          string        `env:"SESSION_DRIVER"           envDefault:"memory"`
	TTL             time.Duration `env:"SESSION_TTL"              envDefault:"12h"`
	JanitorInterval time.Duration `env:"SESSION_JANITOR_INTERVAL" envDefault:"5m"`
	RedisAddr       string        `env:"REDIS_ADDR"               envDefault:"localhost:6379"`
	RedisPassword   string        `env:"REDIS_PASSWORD"`
	RedisDB         int           `env:"REDIS_DB"                 envDefault:"0"`
	RedisPrefix     string        `env:"REDIS_PREFIX"             envDefault:"library:session:"`
	SQLiteDSN       string        `env:"SQLITE_DSN"               envDefault:"file:sessions.db?cache=shared"`
}

var _ SessionConfig = Session{}

func (s Session) GetSessionDriver() string {
	return strings.ToLower(s.Driver)
}

// GetSessionTTL is the absolute lifetime of a stored session, counted from the last Save.
// Loading a session does not extend it.
func (s Session) GetSessionTTL() time.Duration {
	return s.TTL
}

func (s Session) GetSessionJanitorInterval() time.Duration {
	return s.JanitorInterval
}

func (s Session) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Session) GetRedisPassword() string {
	return s.RedisPassword
}

func (s Session) GetRedisDB() int {
	return s.RedisDB
}

func (s Session) GetRedisPrefix() string {
	return s.RedisPrefix
}

func (s Session) GetSQLiteDSN() string {
	return s.SQLiteDSN
}
