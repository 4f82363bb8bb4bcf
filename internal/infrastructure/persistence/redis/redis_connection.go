// Package redis provides the Redis client and the Redis-backed session store.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// RedisConnection manages Redis client lifecycle and health monitoring.
type RedisConnection struct {
	config *config.RedisConfig
	client redis.UniversalClient
	logger logger.Logger
}

// NewRedisConnection creates a new Redis connection manager instance.
func NewRedisConnection(cfg *config.RedisConfig, log logger.Logger) *RedisConnection {
	return &RedisConnection{
		config: cfg,
		logger: log.WithComponent("redis"),
	}
}

// Connect dials Redis and verifies it answers PING.
func (rc *RedisConnection) Connect(ctx context.Context) error {
	opts := &redis.Options{
		Addr:         rc.config.Address,
		Password:     rc.config.Password,
		DB:           rc.config.DB,
		PoolSize:     rc.config.PoolSize,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
	rc.client = redis.NewClient(opts)

	if err := rc.Ping(ctx); err != nil {
		_ = rc.client.Close()
		rc.client = nil
		rc.logger.Error(ctx, "Failed to connect to Redis", err, logger.Fields{"address": rc.config.Address})
		return err
	}

	rc.logger.Info(ctx, "Connected to Redis", logger.Fields{
		"address": rc.config.Address,
		"db":      rc.config.DB,
	})
	return nil
}

// Client returns the connected client, or nil before Connect succeeds.
func (rc *RedisConnection) Client() redis.UniversalClient {
	return rc.client
}

// Ping checks connectivity with a short timeout.
func (rc *RedisConnection) Ping(ctx context.Context) error {
	if rc.client == nil {
		return errors.ErrUnavailable.WithMessage("redis client not initialized")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rc.client.Ping(pingCtx).Err(); err != nil {
		return errors.ErrUnavailable.WithMessage("redis ping failed").WithCause(err)
	}
	return nil
}

// Close releases the client's connections.
func (rc *RedisConnection) Close() error {
	if rc.client == nil {
		return nil
	}
	err := rc.client.Close()
	rc.client = nil
	rc.logger.Info(context.Background(), "Redis connection closed", nil)
	return err
}
