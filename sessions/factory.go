package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Driver identifiers for session storage
const (
	DriverMemory = "memory"
	DriverRedis  = "redis"
	DriverSQLite = "sqlite"
)

// RepoConfig selects and configures the session repo
type RepoConfig struct {
	Driver    string
	Redis     RedisConfig
	SQLiteDSN string
}

// NewRepo creates the session repo for the configured driver
func NewRepo(ctx context.Context, cfg RepoConfig) (Repo, error) {
	switch cfg.Driver {
	case "", DriverMemory:
		return NewInMemoryRepo(), nil
	case DriverRedis:
		return NewRedisRepo(ctx, cfg.Redis)
	case DriverSQLite:
		dsn := cfg.SQLiteDSN
		if dsn == "" {
			dsn = "file:sessions.db?cache=shared"
		}
		db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
		if err != nil {
			return nil, fmt.Errorf("[NewRepo] open sqlite: %w", err)
		}
		return NewSQLiteRepo(db)
	default:
		return nil, fmt.Errorf("[NewRepo] unsupported session driver: %s", cfg.Driver)
	}
}

type expiringRepo interface {
	DeleteExpired(ctx context.Context) error
}

// StartJanitor periodically purges expired sessions for repos that cannot expire entries
// themselves. It stops when ctx is cancelled. Redis expires keys natively and is skipped.
func StartJanitor(ctx context.Context, repo Repo, interval time.Duration) {
	expiring, ok := repo.(expiringRepo)
	if !ok || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := expiring.DeleteExpired(ctx); err != nil {
					log.Err(err).Msg("Failed to purge expired sessions")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}
