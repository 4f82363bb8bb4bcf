package service

import (
	"context"
	"time"
)

// PasswordHasher produces salted one-way password hashes.
// PasswordHasher 生成加盐的单向密码哈希。
type PasswordHasher interface {
	// Hash returns an encoded hash that embeds its own salt and cost.
	Hash(password string) (string, error)

	// Compare checks password against hash in constant time. It returns nil on a match.
	Compare(hash, password string) error
}

// Session is the server-side state behind a session cookie.
type Session struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore keeps server-side sessions keyed by an opaque id.
// SessionStore 以不透明 ID 为键保存服务端会话。
type SessionStore interface {
	// Create starts a session for username and returns it.
	Create(ctx context.Context, username string) (*Session, error)

	// Get returns the live session for id, or errors.ErrSessionNotFound.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete ends a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// TokenClaims is what a verified bearer token asserts.
type TokenClaims struct {
	Subject   string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenManager issues and verifies API bearer tokens.
// TokenManager 颁发并验证 API 持有者令牌。
type TokenManager interface {
	// Issue returns a signed token for subject and its expiry.
	Issue(ctx context.Context, subject string) (token string, expiresAt time.Time, err error)

	// Verify validates signature, issuer and expiry, returning errors.ErrUnauthorized on failure.
	Verify(ctx context.Context, token string) (*TokenClaims, error)
}

// RateLimiter throttles credential endpoints per client key.
type RateLimiter interface {
	// Allow consumes one request for key. When denied, retryAfter says when the next one fits.
	Allow(ctx context.Context, key string) (allowed bool, retryAfter time.Duration, err error)
}
