package redis

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// sessionStoreImpl keeps sessions as JSON values under prefix+id with a TTL,
// so every replica behind a load balancer sees the same logins.
type sessionStoreImpl struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
	logger logger.Logger
}

// NewSessionStore creates a Redis-backed session store.
func NewSessionStore(client redis.UniversalClient, prefix string, ttl time.Duration, log logger.Logger) service.SessionStore {
	return &sessionStoreImpl{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: log.WithComponent("redis-sessions"),
	}
}

func (s *sessionStoreImpl) key(id string) string {
	return s.prefix + id
}

func (s *sessionStoreImpl) Create(ctx context.Context, username string) (*service.Session, error) {
	sess := &service.Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: time.Now(),
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, errors.ErrInternalServer.WithCause(err)
	}
	if err := s.client.Set(ctx, s.key(sess.ID), data, s.ttl).Err(); err != nil {
		s.logger.Error(ctx, "Failed to store session", err, nil)
		return nil, errors.ErrUnavailable.WithMessage("session store unavailable").WithCause(err)
	}
	return sess, nil
}

func (s *sessionStoreImpl) Get(ctx context.Context, id string) (*service.Session, error) {
	if id == "" {
		return nil, errors.ErrSessionNotFound
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if stderrors.Is(err, redis.Nil) {
			return nil, errors.ErrSessionNotFound
		}
		s.logger.Error(ctx, "Failed to read session", err, nil)
		return nil, errors.ErrUnavailable.WithMessage("session store unavailable").WithCause(err)
	}
	var sess service.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Warn(ctx, "Discarding corrupt session", logger.Fields{"error": err.Error()})
		return nil, errors.ErrSessionNotFound
	}
	return &sess, nil
}

func (s *sessionStoreImpl) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return errors.ErrUnavailable.WithMessage("session store unavailable").WithCause(err)
	}
	return nil
}

func (s *sessionStoreImpl) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return errors.ErrUnavailable.WithMessage("redis ping failed").WithCause(err)
	}
	return nil
}
