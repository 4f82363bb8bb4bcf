package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// Lua script for atomic token bucket operations
const tokenBucketLuaScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local bucket = redis.call('HMGET', key, 'tokens', 'last_refill')
local tokens = tonumber(bucket[1]) or capacity
local last_refill = tonumber(bucket[2]) or now

-- rate is per second, elapsed in ms
local elapsed = math.max(0, now - last_refill)
tokens = math.min(tokens + elapsed * rate / 1000, capacity)

local allowed = 0
local retry_ms = 0
if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
else
    retry_ms = math.ceil((1 - tokens) / rate * 1000)
end

local full_ms = math.ceil((capacity - tokens) / rate * 1000)
redis.call('HSET', key, 'tokens', tostring(tokens), 'last_refill', now)
redis.call('PEXPIRE', key, full_ms + 1000)

return {allowed, retry_ms}
`

var tokenBucketScript = redis.NewScript(tokenBucketLuaScript)

// RedisRateLimiter shares buckets between replicas through Redis.
// When Redis fails it falls back to a per-process limiter instead of rejecting logins.
type RedisRateLimiter struct {
	client   redis.UniversalClient
	cfg      Config
	fallback *LocalRateLimiter
	logger   logger.Logger
	now      func() time.Time
}

var _ service.RateLimiter = (*RedisRateLimiter)(nil)

// NewRedisRateLimiter creates a new Redis-based rate limiter.
func NewRedisRateLimiter(client redis.UniversalClient, cfg Config, log logger.Logger) *RedisRateLimiter {
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ratelimit:"
	}
	return &RedisRateLimiter{
		client:   client,
		cfg:      cfg,
		fallback: NewLocalRateLimiter(cfg),
		logger:   log.WithComponent("rate_limiter"),
		now:      time.Now,
	}
}

// Allow consumes one token from key's shared bucket.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	res, err := tokenBucketScript.Run(ctx, rl.client, []string{rl.cfg.KeyPrefix + key},
		rl.cfg.Capacity, rl.cfg.rate(), rl.now().UnixMilli()).Int64Slice()
	if err == nil && len(res) != 2 {
		err = fmt.Errorf("unexpected script result %v", res)
	}
	if err != nil {
		rl.logger.Warn(ctx, "Rate limiter falling back to local buckets", logger.Fields{"error": err.Error()})
		return rl.fallback.Allow(ctx, key)
	}
	return res[0] == 1, time.Duration(res[1]) * time.Millisecond, nil
}
