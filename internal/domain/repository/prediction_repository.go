package repository

import (
	"context"

	"github.com/turtacn/oralrisk/internal/domain/models"
)

// PredictionRepository is the append-only prediction log.
type PredictionRepository interface {
	// Append durably stores one record. Records are never mutated afterwards.
	Append(ctx context.Context, record models.PredictionRecord) error

	// List returns every stored record migrated to the current schema, newest first.
	// A log that does not exist yet yields an empty slice and no error.
	List(ctx context.Context) ([]models.PredictionRecord, error)

	// Ping checks that the backing store is reachable.
	Ping(ctx context.Context) error
}

// SchemaMigrator is implemented by logs whose on-disk layout can lag behind the current schema.
type SchemaMigrator interface {
	// Migrate rewrites the log in the current schema and reports the version it migrated from.
	Migrate(ctx context.Context) (fromVersion int, err error)
}
