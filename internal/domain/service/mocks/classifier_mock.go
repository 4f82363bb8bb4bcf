package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/turtacn/oralrisk/internal/domain/models"
)

type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) Classes() []string {
	args := m.Called()
	return args.Get(0).([]string)
}

func (m *MockClassifier) PredictProba(ctx context.Context, row models.FeatureRow) ([]float64, error) {
	args := m.Called(ctx, row)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float64), args.Error(1)
}
