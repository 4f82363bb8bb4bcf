package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/pkg/constants"
)

type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindByIdentifier(ctx context.Context, loginType constants.LoginType, value string) (*models.Account, error) {
	args := m.Called(ctx, loginType, value)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, account *models.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockPredictionRepository struct {
	mock.Mock
}

func (m *MockPredictionRepository) Append(ctx context.Context, record models.PredictionRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockPredictionRepository) List(ctx context.Context) ([]models.PredictionRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PredictionRecord), args.Error(1)
}

func (m *MockPredictionRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
