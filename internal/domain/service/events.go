package service

import (
	"context"
	"time"

	"github.com/turtacn/oralrisk/internal/domain/models"
)

// PredictionEvent is published after a prediction has been stored.
type PredictionEvent struct {
	EventID    string                  `json:"event_id"`
	EventType  string                  `json:"event_type"`
	OccurredAt time.Time               `json:"occurred_at"`
	Record     models.PredictionRecord `json:"record"`
	// Distribution is included in events even though the log does not persist it.
	Distribution map[string]float64 `json:"distribution"`
}

// EventPublisher delivers domain events to downstream consumers.
// Delivery is best effort: callers log failures and carry on.
type EventPublisher interface {
	PublishPrediction(ctx context.Context, event PredictionEvent) error
	Close() error
}

type noopPublisher struct{}

// NewNoopPublisher returns a publisher that drops every event.
func NewNoopPublisher() EventPublisher {
	return noopPublisher{}
}

func (noopPublisher) PublishPrediction(context.Context, PredictionEvent) error { return nil }
func (noopPublisher) Close() error                                             { return nil }
