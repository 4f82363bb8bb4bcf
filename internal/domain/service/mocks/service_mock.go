package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/oralrisk/internal/domain/service"
)

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishPrediction(ctx context.Context, event service.PredictionEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

type MockMetrics struct {
	mock.Mock
}

func (m *MockMetrics) RecordPrediction(label string, duration time.Duration) {
	m.Called(label, duration)
}

func (m *MockMetrics) RecordPredictionFailure(stage string) {
	m.Called(stage)
}

func (m *MockMetrics) RecordLogin(loginType string, success bool) {
	m.Called(loginType, success)
}

func (m *MockMetrics) RecordRegistration(result string) {
	m.Called(result)
}

func (m *MockMetrics) RecordEventPublish(event string, success bool) {
	m.Called(event, success)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Create(ctx context.Context, username string) (*service.Session, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*service.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type MockTokenManager struct {
	mock.Mock
}

func (m *MockTokenManager) Issue(ctx context.Context, subject string) (string, time.Time, error) {
	args := m.Called(ctx, subject)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenManager) Verify(ctx context.Context, token string) (*service.TokenClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TokenClaims), args.Error(1)
}
