package service

import (
	"context"
	"time"

	"github.com/turtacn/oralrisk/internal/application/dto"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// TokenAppService issues bearer tokens for the JSON API.
// TokenAppService API 令牌应用服务接口。
type TokenAppService interface {
	// IssueToken authenticates the credentials and returns a signed token for the account.
	// IssueToken 校验凭据并颁发令牌。
	IssueToken(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)

	// VerifyToken validates a bearer token and returns its claims.
	// VerifyToken 验证令牌。
	VerifyToken(ctx context.Context, token string) (*service.TokenClaims, error)
}

type tokenAppServiceImpl struct {
	accounts AccountAppService
	tokens   service.TokenManager
	logger   logger.Logger
	now      func() time.Time
}

// NewTokenAppService creates a new instance of TokenAppService.
func NewTokenAppService(accounts AccountAppService, tokens service.TokenManager, log logger.Logger) TokenAppService {
	return &tokenAppServiceImpl{
		accounts: accounts,
		tokens:   tokens,
		logger:   log.WithComponent("token_service"),
		now:      time.Now,
	}
}

func (s *tokenAppServiceImpl) IssueToken(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	account, err := s.accounts.Authenticate(ctx, req)
	if err != nil {
		return nil, err
	}

	issuedAt := s.now()
	token, expiresAt, err := s.tokens.Issue(ctx, account.Username)
	if err != nil {
		s.logger.Error(ctx, "Failed to issue token", err, logger.Fields{"username": account.Username})
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(expiresAt.Sub(issuedAt).Seconds()),
		IssuedAt:    issuedAt.Unix(),
	}, nil
}

func (s *tokenAppServiceImpl) VerifyToken(ctx context.Context, token string) (*service.TokenClaims, error) {
	if token == "" {
		return nil, errors.ErrUnauthorized.WithMessage("missing bearer token")
	}
	claims, err := s.tokens.Verify(ctx, token)
	if err != nil {
		s.logger.Debug(ctx, "Token rejected", logger.Fields{"error": err.Error()})
		return nil, err
	}
	return claims, nil
}
