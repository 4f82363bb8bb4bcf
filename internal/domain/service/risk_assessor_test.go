package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/internal/domain/service/mocks"
	"github.com/turtacn/oralrisk/pkg/errors"
)

func TestAssessPicksArgMaxAndRounds(t *testing.T) {
	clf := new(mocks.MockClassifier)
	clf.On("Classes").Return([]string{"high", "low", "medium"})
	clf.On("PredictProba", mock.Anything, mock.AnythingOfType("models.FeatureRow")).
		Return([]float64{0.71234, 0.08766, 0.2}, nil)

	p, err := service.NewRiskAssessor(clf).Assess(context.Background(), models.RiskFactorInput{Age: 45})
	require.NoError(t, err)

	assert.Equal(t, "high", p.Label)
	assert.Equal(t, 0.71, p.Confidence)
	assert.Equal(t, 0.71234, p.RawConfidence)
	assert.Equal(t, map[string]float64{"high": 0.712, "low": 0.088, "medium": 0.2}, p.Distribution)
	assert.Equal(t, []string{"high", "low", "medium"}, p.SortedClasses())
	clf.AssertExpectations(t)
}

func TestAssessTieGoesToFirstClass(t *testing.T) {
	clf := new(mocks.MockClassifier)
	clf.On("Classes").Return([]string{"high", "low", "medium"})
	clf.On("PredictProba", mock.Anything, mock.Anything).Return([]float64{0.2, 0.4, 0.4}, nil)

	p, err := service.NewRiskAssessor(clf).Assess(context.Background(), models.RiskFactorInput{})
	require.NoError(t, err)
	assert.Equal(t, "low", p.Label)
}

func TestAssessPassesOnlyFeatureColumns(t *testing.T) {
	clf := new(mocks.MockClassifier)
	clf.On("Classes").Return([]string{"low"})
	clf.On("PredictProba", mock.Anything, mock.MatchedBy(func(row models.FeatureRow) bool {
		_, hasName := row[models.FieldName]
		return !hasName && row[models.FieldAge] == "61" && row[models.FieldHPV] == "yes"
	})).Return([]float64{1}, nil)

	_, err := service.NewRiskAssessor(clf).Assess(context.Background(),
		models.RiskFactorInput{Name: "Ann", Age: 61, HPV: "yes"})
	require.NoError(t, err)
	clf.AssertExpectations(t)
}

func TestAssessClassifierFailures(t *testing.T) {
	t.Run("inference error", func(t *testing.T) {
		clf := new(mocks.MockClassifier)
		clf.On("Classes").Return([]string{"low", "high"})
		clf.On("PredictProba", mock.Anything, mock.Anything).Return(nil, errors.New("bad row"))
		_, err := service.NewRiskAssessor(clf).Assess(context.Background(), models.RiskFactorInput{})
		assert.True(t, errors.Is(err, errors.ErrModel))
	})
	t.Run("length mismatch", func(t *testing.T) {
		clf := new(mocks.MockClassifier)
		clf.On("Classes").Return([]string{"low", "high"})
		clf.On("PredictProba", mock.Anything, mock.Anything).Return([]float64{1}, nil)
		_, err := service.NewRiskAssessor(clf).Assess(context.Background(), models.RiskFactorInput{})
		assert.True(t, errors.Is(err, errors.ErrModel))
	})
}
