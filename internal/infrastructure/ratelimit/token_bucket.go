// Package ratelimit throttles credential endpoints with token buckets, in process or in Redis.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/oralrisk/internal/domain/service"
)

// Config sizes every bucket: Capacity requests, refilled evenly over Window.
type Config struct {
	Capacity int
	Window   time.Duration
	// KeyPrefix namespaces Redis keys; unused by the local limiter.
	KeyPrefix string
}

// rate returns tokens per second.
func (c Config) rate() float64 {
	return float64(c.Capacity) / c.Window.Seconds()
}

// TokenBucket implements the token bucket algorithm for rate limiting.
// It is safe for concurrent use.
type TokenBucket struct {
	mu         sync.Mutex
	capacity   float64   // Maximum number of tokens
	tokens     float64   // Current number of tokens
	rate       float64   // Tokens added per second
	lastRefill time.Time // Last time tokens were refilled
}

// NewTokenBucket creates a full bucket.
func NewTokenBucket(capacity, rate float64, now time.Time) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity, // Start with full bucket
		rate:       rate,
		lastRefill: now,
	}
}

// Take consumes one token at now. When the bucket is empty it reports how long until one is available.
func (tb *TokenBucket) Take(now time.Time) (bool, time.Duration) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refill(now)
	if tb.tokens >= 1 {
		tb.tokens--
		return true, 0
	}
	seconds := (1 - tb.tokens) / tb.rate
	return false, time.Duration(seconds * float64(time.Second))
}

// refill adds tokens for the time elapsed since the last refill. Must be called with lock held.
func (tb *TokenBucket) refill(now time.Time) {
	elapsed := now.Sub(tb.lastRefill).Seconds()
	if elapsed <= 0 {
		return
	}
	tb.tokens += elapsed * tb.rate
	if tb.tokens > tb.capacity {
		tb.tokens = tb.capacity
	}
	tb.lastRefill = now
}

// full reports whether the bucket has refilled completely at now.
func (tb *TokenBucket) full(now time.Time) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	tb.refill(now)
	return tb.tokens >= tb.capacity
}

// LocalRateLimiter keeps one bucket per key in process memory.
// Buckets that have refilled completely are dropped on a periodic sweep.
type LocalRateLimiter struct {
	cfg Config
	now func() time.Time

	mu        sync.Mutex
	buckets   map[string]*TokenBucket
	lastSweep time.Time
}

var _ service.RateLimiter = (*LocalRateLimiter)(nil)

// NewLocalRateLimiter creates an in-process limiter.
func NewLocalRateLimiter(cfg Config) *LocalRateLimiter {
	return &LocalRateLimiter{
		cfg:     cfg,
		now:     time.Now,
		buckets: make(map[string]*TokenBucket),
	}
}

// Allow consumes one token from key's bucket.
func (l *LocalRateLimiter) Allow(_ context.Context, key string) (bool, time.Duration, error) {
	now := l.now()
	allowed, retry := l.bucket(key, now).Take(now)
	return allowed, retry, nil
}

func (l *LocalRateLimiter) bucket(key string, now time.Time) *TokenBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.cfg.Window {
		for k, b := range l.buckets {
			if b.full(now) {
				delete(l.buckets, k)
			}
		}
		l.lastSweep = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = NewTokenBucket(float64(l.cfg.Capacity), l.cfg.rate(), now)
		l.buckets[key] = b
	}
	return b
}

// Size returns the number of tracked keys.
func (l *LocalRateLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
