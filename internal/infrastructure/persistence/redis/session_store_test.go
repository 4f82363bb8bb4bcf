package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

func newTestConnection(t *testing.T) (*miniredis.Miniredis, *RedisConnection) {
	t.Helper()
	mr := miniredis.RunT(t)
	conn := NewRedisConnection(&config.RedisConfig{Address: mr.Addr()}, logger.NewNoopLogger())
	require.NoError(t, conn.Connect(context.Background()))
	t.Cleanup(func() { _ = conn.Close() })
	return mr, conn
}

func TestRedisConnection(t *testing.T) {
	mr, conn := newTestConnection(t)
	require.NoError(t, conn.Ping(context.Background()))

	mr.Close()
	err := conn.Ping(context.Background())
	assert.True(t, errors.Is(err, errors.ErrUnavailable))

	bad := NewRedisConnection(&config.RedisConfig{Address: "127.0.0.1:1"}, logger.NewNoopLogger())
	assert.Error(t, bad.Connect(context.Background()))
	assert.Nil(t, bad.Client())
}

func TestSessionStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	mr, conn := newTestConnection(t)
	store := NewSessionStore(conn.Client(), "oralrisk:session:", time.Hour, logger.NewNoopLogger())

	sess, err := store.Create(ctx, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.ID)
	assert.True(t, mr.Exists("oralrisk:session:"+sess.ID))
	assert.Equal(t, time.Hour, mr.TTL("oralrisk:session:"+sess.ID))

	got, err := store.Get(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, store.Delete(ctx, sess.ID))
	_, err = store.Get(ctx, sess.ID)
	assert.True(t, errors.Is(err, errors.ErrSessionNotFound))
	assert.NoError(t, store.Delete(ctx, "unknown"))
}

func TestSessionStoreExpiryAndCorruption(t *testing.T) {
	ctx := context.Background()
	mr, conn := newTestConnection(t)
	store := NewSessionStore(conn.Client(), "s:", time.Minute, logger.NewNoopLogger())

	sess, err := store.Create(ctx, "bob")
	require.NoError(t, err)
	mr.FastForward(2 * time.Minute)
	_, err = store.Get(ctx, sess.ID)
	assert.True(t, errors.Is(err, errors.ErrSessionNotFound))

	require.NoError(t, mr.Set("s:broken", "{not json"))
	_, err = store.Get(ctx, "broken")
	assert.True(t, errors.Is(err, errors.ErrSessionNotFound))

	_, err = store.Get(ctx, "")
	assert.True(t, errors.Is(err, errors.ErrSessionNotFound))
}
