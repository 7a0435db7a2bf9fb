package cache

import (
	"fmt"

	syncapp "github.com/tallysync/backend/internal/application/sync"
	"github.com/tallysync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// StatusStoreFactory creates sync status stores based on configuration
type StatusStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StatusStoreFactoryOption is a functional option for configuring the factory
type StatusStoreFactoryOption func(*StatusStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StatusStoreFactoryOption {
	return func(f *StatusStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) StatusStoreFactoryOption {
	return func(f *StatusStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStatusStoreFactory creates a new factory
func NewStatusStoreFactory(cfg config.RedisConfig, opts ...StatusStoreFactoryOption) *StatusStoreFactory {
	f := &StatusStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is configured and reachable,
// otherwise an in-memory store (unless fallback is disabled)
func (f *StatusStoreFactory) CreateStore() (syncapp.StatusStore, error) {
	addr := f.redisConfig.Addr()
	if addr == "" {
		f.logger.Info("Redis not configured, keeping sync status in memory")
		return NewInMemoryStatusStore(), nil
	}

	store, err := NewRedisStatusStore(RedisConfig{
		Addr:     addr,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("Using Redis sync status store", zap.String("addr", addr))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("failed to create Redis status store: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory sync status",
		zap.String("addr", addr),
		zap.Error(err),
	)
	return NewInMemoryStatusStore(), nil
}
