// Package persistence assembles the configured storage backends.
package persistence

import (
	"context"
	stderrors "errors"

	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/internal/domain/repository"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/internal/infrastructure/persistence/csvfile"
	"github.com/turtacn/oralrisk/internal/infrastructure/persistence/memory"
	"github.com/turtacn/oralrisk/internal/infrastructure/persistence/redis"
	"github.com/turtacn/oralrisk/internal/infrastructure/persistence/sqldb"
	"github.com/turtacn/oralrisk/internal/infrastructure/ratelimit"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// Stores bundles the repositories and session store selected by configuration.
type Stores struct {
	Accounts    repository.AccountRepository
	Predictions repository.PredictionRepository
	// Migrator is nil for backends without a versioned layout.
	Migrator repository.SchemaMigrator
	Sessions service.SessionStore
	// Limiter is nil when rate limiting is disabled.
	Limiter service.RateLimiter

	closers []func() error
}

// NewStores opens the account and prediction backends and the session store.
// Partially opened resources are released when a later step fails.
func NewStores(ctx context.Context, cfg *config.Config, log logger.Logger) (*Stores, error) {
	s := &Stores{}
	if err := s.openRepositories(ctx, cfg, log); err != nil {
		_ = s.Close()
		return nil, err
	}
	if err := s.openSessions(ctx, cfg, log); err != nil {
		_ = s.Close()
		return nil, err
	}
	log.Info(ctx, "Storage initialized", logger.Fields{
		"storage_backend": cfg.Storage.Backend,
		"session_backend": cfg.Session.Backend,
	})
	return s, nil
}

func (s *Stores) openRepositories(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	switch constants.StorageBackend(cfg.Storage.Backend) {
	case constants.StorageMemory:
		s.Accounts = memory.NewAccountRepository()
		s.Predictions = memory.NewPredictionRepository()

	case constants.StorageSQL:
		conn, err := sqldb.NewDBConnection(ctx, &cfg.Database, log)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, conn.Close)
		predictions := sqldb.NewPredictionRepository(conn.DB(), log)
		s.Accounts = sqldb.NewAccountRepository(conn.DB(), log)
		s.Predictions = predictions
		s.Migrator = predictions

	case constants.StorageCSV, "":
		predictions := csvfile.NewPredictionRepository(cfg.Storage.PredictionsPath, log)
		s.Accounts = csvfile.NewAccountRepository(cfg.Storage.AccountsPath, log)
		s.Predictions = predictions
		s.Migrator = predictions

	default:
		return errors.ErrInvalidField("storage.backend", "unsupported backend "+cfg.Storage.Backend)
	}
	return nil
}

func (s *Stores) openSessions(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	switch constants.SessionBackend(cfg.Session.Backend) {
	case constants.SessionRedis:
		conn := redis.NewRedisConnection(&cfg.Redis, log)
		if err := conn.Connect(ctx); err != nil {
			return err
		}
		s.closers = append(s.closers, conn.Close)
		s.Sessions = redis.NewSessionStore(conn.Client(), cfg.Session.KeyPrefix, cfg.Session.TTLDuration(), log)
		if cfg.Limits.Enabled {
			s.Limiter = ratelimit.NewRedisRateLimiter(conn.Client(), limiterConfig(cfg, "oralrisk:ratelimit:"), log)
		}

	case constants.SessionMemory, "":
		s.Sessions = memory.NewSessionStore(cfg.Session.TTLDuration())
		if cfg.Limits.Enabled {
			s.Limiter = ratelimit.NewLocalRateLimiter(limiterConfig(cfg, ""))
		}

	default:
		return errors.ErrInvalidField("session.backend", "unsupported backend "+cfg.Session.Backend)
	}
	return nil
}

func limiterConfig(cfg *config.Config, prefix string) ratelimit.Config {
	return ratelimit.Config{
		Capacity:  cfg.Limits.Requests,
		Window:    cfg.Limits.WindowDuration(),
		KeyPrefix: prefix,
	}
}

// Close releases every opened backend in reverse order.
func (s *Stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return stderrors.Join(errs...)
}
