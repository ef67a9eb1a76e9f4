package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig captures connection options
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisRepo keeps one hash per session, one field per entry
type RedisRepo struct {
	client *redis.Client
	prefix string
}

// NewRedisRepo connects to redis and verifies the connection
func NewRedisRepo(ctx context.Context, cfg RedisConfig) (*RedisRepo, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("[NewRedisRepo] redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[NewRedisRepo] redis ping failed: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "library:session:"
	}
	return &RedisRepo{client: client, prefix: prefix}, nil
}

func (r *RedisRepo) key(sessionID string) string {
	return r.prefix + sessionID
}

// Put replaces the session hash inside a MULTI/EXEC block
func (r *RedisRepo) Put(ctx context.Context, sessionID string, entries map[string]string, ttl time.Duration) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if len(entries) == 0 {
		return r.Delete(ctx, sessionID)
	}

	key := r.key(sessionID)
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, entries)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("[RedisRepo Put] %w", err)
	}
	return nil
}

// Get returns all session fields; a missing key yields an empty map
func (r *RedisRepo) Get(ctx context.Context, sessionID string) (map[string]string, error) {
	if sessionID == "" {
		return map[string]string{}, nil
	}
	entries, err := r.client.HGetAll(ctx, r.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("[RedisRepo Get] %w", err)
	}
	return entries, nil
}

// Delete drops the whole session hash with a single DEL
func (r *RedisRepo) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("[RedisRepo Delete] %w", err)
	}
	return nil
}

// Close closes the redis client
func (r *RedisRepo) Close() error {
	return r.client.Close()
}
