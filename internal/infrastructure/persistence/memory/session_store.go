package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/errors"
)

// SessionStore keeps sessions in a go-cache map with per-entry expiry.
type SessionStore struct {
	cache *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewSessionStore creates a session store whose sessions expire after ttl.
func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		cache: cache.New(ttl, ttl/2+time.Minute),
		ttl:   ttl,
		now:   time.Now,
	}
}

var _ service.SessionStore = (*SessionStore)(nil)

func (s *SessionStore) Create(ctx context.Context, username string) (*service.Session, error) {
	sess := &service.Session{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: s.now(),
	}
	s.cache.Set(sess.ID, *sess, s.ttl)
	return sess, nil
}

func (s *SessionStore) Get(ctx context.Context, id string) (*service.Session, error) {
	v, ok := s.cache.Get(id)
	if !ok {
		return nil, errors.ErrSessionNotFound
	}
	sess := v.(service.Session)
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.cache.Delete(id)
	return nil
}

func (s *SessionStore) Ping(ctx context.Context) error {
	return nil
}
