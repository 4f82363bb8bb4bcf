package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/oralrisk/internal/application/dto"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/internal/domain/service/mocks"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

func TestIssueToken(t *testing.T) {
	ctx := context.Background()
	accounts, _ := newTestAccountService(t)
	_, err := accounts.Register(ctx, &dto.RegisterRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	issued := time.Unix(1700000000, 0)
	tokens := new(mocks.MockTokenManager)
	tokens.On("Issue", mock.Anything, "alice").Return("signed.jwt.value", issued.Add(time.Hour), nil)

	svc := NewTokenAppService(accounts, tokens, logger.NewNoopLogger())
	svc.(*tokenAppServiceImpl).now = func() time.Time { return issued }

	resp, err := svc.IssueToken(ctx, &dto.LoginRequest{Identifier: "alice", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "signed.jwt.value", resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)
	assert.Equal(t, issued.Unix(), resp.IssuedAt)
}

func TestIssueTokenRejectsBadCredentials(t *testing.T) {
	accounts, _ := newTestAccountService(t)
	tokens := new(mocks.MockTokenManager)
	svc := NewTokenAppService(accounts, tokens, logger.NewNoopLogger())

	_, err := svc.IssueToken(context.Background(), &dto.LoginRequest{Identifier: "ghost", Password: "pw"})
	assert.True(t, errors.Is(err, errors.ErrInvalidCredentials))
	tokens.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestVerifyToken(t *testing.T) {
	tokens := new(mocks.MockTokenManager)
	tokens.On("Verify", mock.Anything, "good").Return(&service.TokenClaims{Subject: "alice"}, nil)
	tokens.On("Verify", mock.Anything, "bad").Return(nil, errors.ErrUnauthorized)
	accounts, _ := newTestAccountService(t)
	svc := NewTokenAppService(accounts, tokens, logger.NewNoopLogger())

	claims, err := svc.VerifyToken(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)

	_, err = svc.VerifyToken(context.Background(), "bad")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	_, err = svc.VerifyToken(context.Background(), "")
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}
