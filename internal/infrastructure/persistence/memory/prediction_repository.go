package memory

import (
	"context"
	"sync"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/repository"
)

// PredictionRepository is an append-only slice of records.
type PredictionRepository struct {
	mu      sync.RWMutex
	records []models.PredictionRecord
}

// NewPredictionRepository creates an empty in-memory prediction log.
func NewPredictionRepository() repository.PredictionRepository {
	return &PredictionRepository{}
}

func (r *PredictionRepository) Append(ctx context.Context, record models.PredictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, models.CurrentSchema.Migrate(models.CurrentSchema.Project(record)))
	return nil
}

func (r *PredictionRepository) List(ctx context.Context) ([]models.PredictionRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.PredictionRecord, 0, len(r.records))
	for i := len(r.records) - 1; i >= 0; i-- {
		out = append(out, r.records[i].Clone())
	}
	return out, nil
}

func (r *PredictionRepository) Ping(ctx context.Context) error {
	return nil
}
