// Package redis provides a Redis-backed serial counter for deployments where
// several processes allocate identifiers against a shared Redis.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Config holds Redis connection settings.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects to Redis and verifies the connection.
func NewClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}
	return client, nil
}

// CounterStore keeps per-key serial counters with INCR, which creates the key
// at zero and increments it atomically.
type CounterStore struct {
	client redis.Cmdable
	prefix string
}

// NewCounterStore creates a counter store. Keys are stored under prefix.
func NewCounterStore(client redis.Cmdable, prefix string) *CounterStore {
	if prefix == "" {
		prefix = "freight:seq:"
	}
	return &CounterStore{client: client, prefix: prefix}
}

// Next increments the counter for key and returns the new value.
func (s *CounterStore) Next(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Incr(ctx, s.prefix+key).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter %s: %w", key, err)
	}
	return value, nil
}
