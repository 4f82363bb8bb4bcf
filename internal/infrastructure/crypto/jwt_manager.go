package crypto

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

type jwtManagerImpl struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
	log    logger.Logger
}

// NewJWTManager creates an HS256 token manager.
func NewJWTManager(secret []byte, issuer string, ttl time.Duration, log logger.Logger) service.TokenManager {
	return &jwtManagerImpl{
		secret: secret,
		issuer: issuer,
		ttl:    ttl,
		now:    time.Now,
		log:    log,
	}
}

// Issue creates and signs a new JWT.
func (j *jwtManagerImpl) Issue(ctx context.Context, subject string) (string, time.Time, error) {
	now := j.now()
	expiresAt := now.Add(j.ttl)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		j.log.Error(ctx, "Failed to sign JWT", err)
		return "", time.Time{}, errors.ErrInternalServer.WithCause(err)
	}
	return signed, expiresAt, nil
}

// Verify parses and validates a JWT string.
func (j *jwtManagerImpl) Verify(ctx context.Context, tokenString string) (*service.TokenClaims, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(j.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil || !token.Valid {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errors.ErrUnauthorized.WithMessage("token has expired").WithCause(err)
		}
		return nil, errors.ErrUnauthorized.WithMessage("invalid token").WithCause(err)
	}
	if claims.Subject == "" {
		return nil, errors.ErrUnauthorized.WithMessage("token has no subject")
	}

	out := &service.TokenClaims{
		Subject: claims.Subject,
		TokenID: claims.ID,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
