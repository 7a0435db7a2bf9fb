// Package cache keeps the latest sync result of each kind, in Redis when
// one is configured and in process memory otherwise.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	syncapp "github.com/tallysync/backend/internal/application/sync"
	"github.com/tallysync/backend/internal/infrastructure/tally"
)

// DefaultKeyPrefix namespaces the status keys
const DefaultKeyPrefix = "tallysync:last:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisStatusStore implements syncapp.StatusStore with one JSON value per kind.
// Instances behind a load balancer share it.
type RedisStatusStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisStatusStore connects to Redis and verifies the connection
func NewRedisStatusStore(cfg RedisConfig) (*RedisStatusStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStatusStoreWithClient(client, ""), nil
}

// NewRedisStatusStoreWithClient creates a store with an existing Redis client
func NewRedisStatusStoreWithClient(client *redis.Client, keyPrefix string) *RedisStatusStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisStatusStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       30 * 24 * time.Hour,
	}
}

// Save stores result as the latest run of its kind
func (s *RedisStatusStore) Save(ctx context.Context, result syncapp.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode sync status: %w", err)
	}
	if err := s.client.Set(ctx, s.keyPrefix+string(result.Kind), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store sync status: %w", err)
	}
	return nil
}

// Last returns the latest run of kind, or nil when none is stored
func (s *RedisStatusStore) Last(ctx context.Context, kind tally.Kind) (*syncapp.Result, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+string(kind)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sync status: %w", err)
	}

	var result syncapp.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode sync status: %w", err)
	}
	return &result, nil
}

// Close closes the Redis client
func (s *RedisStatusStore) Close() error {
	return s.client.Close()
}

var _ syncapp.StatusStore = (*RedisStatusStore)(nil)
