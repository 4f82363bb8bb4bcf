// Package service implements the application use cases of the screening service.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/oralrisk/internal/application/dto"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/repository"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
	"github.com/turtacn/oralrisk/pkg/utils"
)

// AccountAppService defines the account use cases: registration, login and lookup.
// AccountAppService 账户应用服务接口。
type AccountAppService interface {
	// Register creates an account with a freshly hashed password.
	// Register 注册新账户。
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AccountResponse, error)

	// Authenticate checks a credential pair and returns the matching account.
	// Any mismatch, including an unknown identifier, yields errors.ErrInvalidCredentials.
	// Authenticate 校验登录凭据。
	Authenticate(ctx context.Context, req *dto.LoginRequest) (*dto.AccountResponse, error)

	// Lookup finds an account by one of its identifiers.
	// Lookup 按标识查找账户。
	Lookup(ctx context.Context, loginType constants.LoginType, value string) (*dto.AccountResponse, error)
}

type accountAppServiceImpl struct {
	accounts repository.AccountRepository
	hasher   service.PasswordHasher
	metrics  service.Metrics
	logger   logger.Logger
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

// NewAccountAppService creates a new instance of AccountAppService.
// NewAccountAppService 创建账户应用服务实例。
func NewAccountAppService(
	accounts repository.AccountRepository,
	hasher service.PasswordHasher,
	metrics service.Metrics,
	log logger.Logger,
) AccountAppService {
	return &accountAppServiceImpl{
		accounts: accounts,
		hasher:   hasher,
		metrics:  metrics,
		logger:   log.WithComponent("account_service"),
		now:      time.Now,
	}
}

func (s *accountAppServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AccountResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		s.metrics.RecordRegistration("invalid")
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		s.metrics.RecordRegistration("invalid")
		return nil, err
	}

	account := &models.Account{
		Username:     req.Username,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, errors.ErrAccountExists) {
			s.metrics.RecordRegistration("exists")
			s.logger.Info(ctx, "Registration rejected, account exists", logger.Fields{"username": req.Username})
			return nil, err
		}
		s.metrics.RecordRegistration("error")
		s.logger.Error(ctx, "Failed to create account", err, logger.Fields{"username": req.Username})
		return nil, err
	}

	s.metrics.RecordRegistration("created")
	resp := dto.NewAccountResponse(account)
	masked := resp.Masked()
	s.logger.Info(ctx, "Account registered", logger.Fields{
		"username": masked.Username,
		"email":    masked.Email,
		"phone":    masked.Phone,
	})
	return resp, nil
}

func (s *accountAppServiceImpl) Authenticate(ctx context.Context, req *dto.LoginRequest) (*dto.AccountResponse, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, err
	}
	loginType := constants.ParseLoginType(req.LoginType)

	account, err := s.accounts.FindByIdentifier(ctx, loginType, req.Identifier)
	if err != nil {
		if !errors.Is(err, errors.ErrAccountNotFound) {
			s.logger.Error(ctx, "Account lookup failed", err, logger.Fields{"login_type": string(loginType)})
			return nil, err
		}
		// keep the unknown-identifier path as slow as a wrong password
		_ = s.hasher.Compare(s.dummy(), req.Password)
		s.metrics.RecordLogin(string(loginType), false)
		return nil, errors.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(account.PasswordHash, req.Password); err != nil {
		s.metrics.RecordLogin(string(loginType), false)
		s.logger.Info(ctx, "Login rejected", logger.Fields{"login_type": string(loginType)})
		return nil, errors.ErrInvalidCredentials
	}

	s.metrics.RecordLogin(string(loginType), true)
	s.logger.Info(ctx, "Login succeeded", logger.Fields{"username": account.Username, "login_type": string(loginType)})
	return dto.NewAccountResponse(account), nil
}

func (s *accountAppServiceImpl) Lookup(ctx context.Context, loginType constants.LoginType, value string) (*dto.AccountResponse, error) {
	account, err := s.accounts.FindByIdentifier(ctx, loginType, value)
	if err != nil {
		return nil, err
	}
	return dto.NewAccountResponse(account), nil
}

func (s *accountAppServiceImpl) dummy() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("oralrisk-placeholder-password")
	})
	return s.dummyHash
}
