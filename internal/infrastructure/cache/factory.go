package cache

import (
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/anuraga/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// NewIdempotencyStore creates the idempotency store selected by configuration.
// When the redis backend is requested but unreachable, it falls back to the
// in-memory store so a Redis outage does not block startup; redeliveries are
// still caught by the database-side guards.
func NewIdempotencyStore(cfg *config.Config, logger *zap.Logger) shared.IdempotencyStore {
	if cfg.Idempotency.Backend == "redis" {
		store, err := NewRedisIdempotencyStore(cfg.Redis)
		if err == nil {
			logger.Info("Using Redis idempotency store", zap.String("addr", cfg.Redis.Addr()))
			return store
		}
		logger.Warn("Redis unavailable, falling back to in-memory idempotency store", zap.Error(err))
	}
	return NewInMemoryIdempotencyStore()
}
