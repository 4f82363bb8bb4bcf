package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/internal/infrastructure/ml"
	"github.com/turtacn/oralrisk/internal/infrastructure/persistence/csvfile"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// Trains on the seeded synthetic data, screens a clearly high-risk form and checks the stored row.
func TestScreeningWithTrainedPipeline(t *testing.T) {
	if testing.Short() {
		t.Skip("trains a model")
	}
	ctx := context.Background()
	pipeline, _, err := ml.Fit(ctx, ml.GenerateDataset(1000, 42), ml.DefaultTrainOptions())
	require.NoError(t, err)

	log := logger.NewNoopLogger()
	repo := csvfile.NewPredictionRepository(filepath.Join(t.TempDir(), "data", "predictions.csv"), log)
	svc := NewPredictionAppService(pipeline, repo, nil, service.NewNoopMetrics(), log)

	in := models.RiskFactorInput{
		Age: 45, Smoker: "yes", WhitePatches: "yes", HPV: "no", Genetics: "no",
		ChronicIrritation: "yes", Alcohol: "heavy", OralCondition: "poor",
	}
	first, err := svc.Submit(ctx, "clinician", in)
	require.NoError(t, err)
	assert.Equal(t, "high", first.Label)
	assert.Greater(t, first.Confidence, 0.5)

	var sum, top float64
	for _, p := range first.Distribution {
		sum += p
		if p > top {
			top = p
		}
	}
	assert.InDelta(t, 1, sum, 0.005)
	assert.InDelta(t, top, first.Confidence, 0.01)

	second, err := svc.Submit(ctx, "clinician", in)
	require.NoError(t, err)
	assert.Equal(t, first.Label, second.Label)
	assert.Equal(t, first.Confidence, second.Confidence)

	records, err := svc.History(ctx)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "high", records[0].Label())
	assert.Equal(t, "clinician", records[0].Get(models.FieldUsername))
}
