package csvfile

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"sync"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/repository"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// PredictionRepository is the CSV prediction log.
// Appends are written by column name against whatever header the file already has,
// so older logs keep their layout until Migrate rewrites them.
type PredictionRepository struct {
	path   string
	mu     sync.Mutex
	logger logger.Logger
}

// NewPredictionRepository returns a CSV-backed prediction log at path.
func NewPredictionRepository(path string, log logger.Logger) *PredictionRepository {
	return &PredictionRepository{
		path:   path,
		logger: log.WithComponent("csv-predictions"),
	}
}

var (
	_ repository.PredictionRepository = (*PredictionRepository)(nil)
	_ repository.SchemaMigrator       = (*PredictionRepository)(nil)
)

// header returns the file's schema, or nil when the file is missing or empty.
func (r *PredictionRepository) header() (*models.Schema, error) {
	f, err := os.Open(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Storage("open predictions", err)
	}
	defer f.Close()

	cr := csv.NewReader(f)
	cr.FieldsPerRecord = -1
	row, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Storage("read predictions header", err)
	}
	return models.DetectSchema(row)
}

func (r *PredictionRepository) Append(ctx context.Context, record models.PredictionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	schema, err := r.header()
	if err != nil {
		r.logger.Error(ctx, "Failed to inspect prediction log header", err, logger.Fields{"path": r.path})
		return err
	}
	var header []string
	if schema == nil {
		schema = models.CurrentSchema
		header = schema.Fields
	}

	if err := appendRows(r.path, header, schema.Project(record)); err != nil {
		r.logger.Error(ctx, "Failed to append prediction", err, logger.Fields{"path": r.path})
		return err
	}
	r.logger.Debug(ctx, "Prediction appended", logger.Fields{
		"schema_version": schema.Version,
		"label":          record.Label(),
	})
	return nil
}

func (r *PredictionRepository) List(ctx context.Context) ([]models.PredictionRecord, error) {
	rows, err := readAll(r.path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return []models.PredictionRecord{}, nil
	}
	schema, err := models.DetectSchema(rows[0])
	if err != nil {
		r.logger.Error(ctx, "Unrecognized prediction log", err, logger.Fields{"path": r.path})
		return nil, err
	}

	out := make([]models.PredictionRecord, 0, len(rows)-1)
	for i := len(rows) - 1; i >= 1; i-- {
		if models.IsEmptyRow(rows[i]) {
			continue
		}
		out = append(out, schema.Migrate(rows[i]))
	}
	return out, nil
}

// Migrate rewrites an older log in the current schema. Empty rows are dropped and row
// order is preserved. A missing or already current log is left untouched.
func (r *PredictionRepository) Migrate(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := readAll(r.path)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return models.CurrentSchema.Version, nil
	}
	schema, err := models.DetectSchema(rows[0])
	if err != nil {
		return 0, err
	}
	if schema.IsCurrent() {
		return schema.Version, nil
	}

	migrated := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if models.IsEmptyRow(row) {
			continue
		}
		migrated = append(migrated, models.CurrentSchema.Project(schema.Migrate(row)))
	}
	if err := rewrite(r.path, models.CurrentSchema.Fields, migrated); err != nil {
		r.logger.Error(ctx, "Prediction log migration failed", err, logger.Fields{"path": r.path})
		return schema.Version, err
	}
	r.logger.Info(ctx, "Prediction log migrated", logger.Fields{
		"from_version": schema.Version,
		"to_version":   models.CurrentSchema.Version,
		"rows":         len(migrated),
	})
	return schema.Version, nil
}

func (r *PredictionRepository) Ping(ctx context.Context) error {
	_, err := r.header()
	return err
}
