package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/oralrisk/pkg/logger"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newClock() *clock {
	return &clock{t: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func testConfig() Config {
	return Config{Capacity: 3, Window: 30 * time.Second, KeyPrefix: "t:"}
}

func TestLocalRateLimiter(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	l := NewLocalRateLimiter(testConfig())
	l.now = clk.now

	for i := 0; i < 3; i++ {
		ok, _, err := l.Allow(ctx, "ip:1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i)
	}
	ok, retry, err := l.Allow(ctx, "ip:1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 10*time.Second, retry)

	// other keys have their own budget
	ok, _, _ = l.Allow(ctx, "ip:2")
	assert.True(t, ok)

	clk.advance(10 * time.Second)
	ok, _, _ = l.Allow(ctx, "ip:1")
	assert.True(t, ok)
}

func TestLocalRateLimiterSweepsIdleBuckets(t *testing.T) {
	ctx := context.Background()
	clk := newClock()
	l := NewLocalRateLimiter(testConfig())
	l.now = clk.now

	_, _, _ = l.Allow(ctx, "a")
	_, _, _ = l.Allow(ctx, "b")
	assert.Equal(t, 2, l.Size())

	clk.advance(time.Minute)
	_, _, _ = l.Allow(ctx, "c")
	assert.Equal(t, 1, l.Size())
}

func TestRedisRateLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	clk := newClock()
	rl := NewRedisRateLimiter(client, testConfig(), logger.NewNoopLogger())
	rl.now = clk.now

	for i := 0; i < 3; i++ {
		ok, _, err := rl.Allow(ctx, "ip:1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d", i)
	}
	ok, retry, err := rl.Allow(ctx, "ip:1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 10*time.Second, retry)
	assert.True(t, mr.Exists("t:ip:1"))

	clk.advance(10 * time.Second)
	ok, _, err = rl.Allow(ctx, "ip:1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisRateLimiterFallsBackWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	rl := NewRedisRateLimiter(client, testConfig(), logger.NewNoopLogger())
	ok, _, err := rl.Allow(context.Background(), "ip:1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, rl.fallback.Size())
}
