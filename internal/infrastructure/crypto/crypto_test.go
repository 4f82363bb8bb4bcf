package crypto

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(bcrypt.MinCost)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret", hash)
	assert.True(t, strings.HasPrefix(hash, "$2a$"))

	again, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes must be salted")

	assert.NoError(t, h.Compare(hash, "s3cret"))
	err = h.Compare(hash, "S3cret")
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))

	_, err = h.Hash(strings.Repeat("x", 80))
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestJWTManagerRoundTrip(t *testing.T) {
	ctx := context.Background()
	m := NewJWTManager([]byte("test-secret"), "oralrisk", time.Hour, logger.NewNoopLogger())

	token, exp, err := m.Issue(ctx, "alice")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.NotEmpty(t, claims.TokenID)
}

func TestJWTManagerRejects(t *testing.T) {
	ctx := context.Background()
	m := NewJWTManager([]byte("test-secret"), "oralrisk", time.Hour, logger.NewNoopLogger())

	t.Run("wrong secret", func(t *testing.T) {
		other := NewJWTManager([]byte("other"), "oralrisk", time.Hour, logger.NewNoopLogger())
		token, _, err := other.Issue(ctx, "alice")
		require.NoError(t, err)
		_, err = m.Verify(ctx, token)
		assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	})

	t.Run("expired", func(t *testing.T) {
		impl := m.(*jwtManagerImpl)
		past := &jwtManagerImpl{secret: impl.secret, issuer: impl.issuer, ttl: time.Minute,
			now: func() time.Time { return time.Now().Add(-2 * time.Hour) }, log: impl.log}
		token, _, err := past.Issue(ctx, "alice")
		require.NoError(t, err)
		_, err = m.Verify(ctx, token)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expired")
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
			Subject: "alice", Issuer: "oralrisk", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = m.Verify(ctx, token)
		assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Verify(ctx, "not.a.token")
		assert.True(t, errors.Is(err, errors.ErrUnauthorized))
	})
}

func newVaultServer(t *testing.T, data map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/secret/data/oralrisk/jwt" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors":[]}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"data":     data,
				"metadata": map[string]interface{}{"version": 1},
			},
		})
	}))
}

func TestVaultSecretResolution(t *testing.T) {
	ts := newVaultServer(t, map[string]interface{}{"jwt_secret": "from-vault"})
	defer ts.Close()

	cfg := &config.Config{Vault: config.VaultConfig{
		Enabled: true, Address: ts.URL, Token: "dev", MountPath: "secret",
		SecretPath: "oralrisk/jwt", SecretKey: "jwt_secret",
	}}
	source, err := NewVaultClient(&cfg.Vault, logger.NewNoopLogger())
	require.NoError(t, err)

	secret, err := ResolveSigningSecret(context.Background(), cfg, source, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, "from-vault", string(secret))

	_, err = source.GetSecret(context.Background(), "oralrisk/jwt", "missing")
	assert.True(t, errors.Is(err, errors.ErrUnavailable))

	_, err = source.GetSecret(context.Background(), "other/path", "jwt_secret")
	assert.Error(t, err)
}

func TestResolveSigningSecretFallbacks(t *testing.T) {
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "configured"}}
	secret, err := ResolveSigningSecret(context.Background(), cfg, nil, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.Equal(t, "configured", string(secret))

	cfg.JWT.Secret = ""
	secret, err = ResolveSigningSecret(context.Background(), cfg, nil, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.Len(t, secret, 32)
}
