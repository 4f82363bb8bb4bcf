package sqldb

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/repository"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// PredictionRow is the table layout of the prediction log.
// Age and PredictedProb are typed columns; every other answer is kept as the string
// that was submitted, mirroring the CSV log. A blank or unparsable number is stored as NULL.
type PredictionRow struct {
	ID                   uint   `gorm:"primaryKey;autoIncrement"`
	SchemaVersion        int    `gorm:"not null;default:3"`
	Username             string `gorm:"size:128;index"`
	Timestamp            string `gorm:"size:32"`
	Name                 string
	Age                  *int
	Gender               string `gorm:"size:32"`
	Country              string `gorm:"size:64"`
	Smoker               string `gorm:"size:16"`
	Alcohol              string `gorm:"size:16"`
	BetelQuidUse         string `gorm:"size:16"`
	WhitePatches         string `gorm:"size:16"`
	HPV                  string `gorm:"column:hpv;size:16"`
	Genetics             string `gorm:"size:16"`
	ImmuneCompromised    string `gorm:"size:16"`
	ChronicIrritation    string `gorm:"size:16"`
	PoorOralHygiene      string `gorm:"size:16"`
	Diet                 string `gorm:"size:16"`
	OralLesions          string `gorm:"size:16"`
	DifficultySwallowing string `gorm:"size:16"`
	OralCondition        string `gorm:"size:16"`
	SymptomsText         string
	PredictedLabel       string `gorm:"size:16"`
	PredictedProb        *float64
}

// TableName pins the gorm table name.
func (PredictionRow) TableName() string {
	return "predictions"
}

func (p *PredictionRow) columns() map[string]*string {
	return map[string]*string{
		models.FieldUsername:             &p.Username,
		models.FieldTimestamp:            &p.Timestamp,
		models.FieldName:                 &p.Name,
		models.FieldGender:               &p.Gender,
		models.FieldCountry:              &p.Country,
		models.FieldSmoker:               &p.Smoker,
		models.FieldAlcohol:              &p.Alcohol,
		models.FieldBetelQuidUse:         &p.BetelQuidUse,
		models.FieldWhitePatches:         &p.WhitePatches,
		models.FieldHPV:                  &p.HPV,
		models.FieldGenetics:             &p.Genetics,
		models.FieldImmuneCompromised:    &p.ImmuneCompromised,
		models.FieldChronicIrritation:    &p.ChronicIrritation,
		models.FieldPoorOralHygiene:      &p.PoorOralHygiene,
		models.FieldDiet:                 &p.Diet,
		models.FieldOralLesions:          &p.OralLesions,
		models.FieldDifficultySwallowing: &p.DifficultySwallowing,
		models.FieldOralCondition:        &p.OralCondition,
		models.FieldSymptomsText:         &p.SymptomsText,
		models.FieldPredictedLabel:       &p.PredictedLabel,
	}
}

func rowFromRecord(rec models.PredictionRecord) *PredictionRow {
	row := &PredictionRow{SchemaVersion: models.CurrentSchema.Version}
	for field, dst := range row.columns() {
		*dst = rec.Get(field)
	}
	if age, err := strconv.Atoi(strings.TrimSpace(rec.Get(models.FieldAge))); err == nil {
		row.Age = &age
	}
	if prob, err := strconv.ParseFloat(strings.TrimSpace(rec.Get(models.FieldPredictedProb)), 64); err == nil {
		row.PredictedProb = &prob
	}
	return row
}

func (p *PredictionRow) record() models.PredictionRecord {
	rec := make(models.PredictionRecord, len(models.CurrentSchema.Fields))
	for field, src := range p.columns() {
		rec[field] = *src
	}
	rec[models.FieldAge] = ""
	if p.Age != nil {
		rec[models.FieldAge] = strconv.Itoa(*p.Age)
	}
	rec[models.FieldPredictedProb] = ""
	if p.PredictedProb != nil {
		rec[models.FieldPredictedProb] = strconv.FormatFloat(*p.PredictedProb, 'f', -1, 64)
	}
	return rec
}

func (p *PredictionRow) empty() bool {
	if p.Age != nil || p.PredictedProb != nil {
		return false
	}
	for _, v := range p.columns() {
		if *v != "" {
			return false
		}
	}
	return true
}

// PredictionRepoImpl implements PredictionRepository on top of gorm.
type PredictionRepoImpl struct {
	db     *gorm.DB
	logger logger.Logger
}

// NewPredictionRepository creates a new prediction repository instance.
func NewPredictionRepository(db *gorm.DB, log logger.Logger) *PredictionRepoImpl {
	return &PredictionRepoImpl{
		db:     db,
		logger: log.WithComponent("sql-predictions"),
	}
}

var (
	_ repository.PredictionRepository = (*PredictionRepoImpl)(nil)
	_ repository.SchemaMigrator       = (*PredictionRepoImpl)(nil)
)

func (r *PredictionRepoImpl) Append(ctx context.Context, record models.PredictionRecord) error {
	start := time.Now()
	row := rowFromRecord(record)
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		r.logger.Error(ctx, "Failed to append prediction", err, nil)
		return errors.Storage("append prediction", err)
	}
	r.logger.Debug(ctx, "Prediction appended", logger.Fields{
		"id":         row.ID,
		"label":      row.PredictedLabel,
		"latency_ms": time.Since(start).Milliseconds(),
	})
	return nil
}

func (r *PredictionRepoImpl) List(ctx context.Context) ([]models.PredictionRecord, error) {
	var rows []PredictionRow
	if err := r.db.WithContext(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		r.logger.Error(ctx, "Failed to list predictions", err, nil)
		return nil, errors.Storage("list predictions", err)
	}
	out := make([]models.PredictionRecord, 0, len(rows))
	for i := range rows {
		if rows[i].empty() {
			continue
		}
		out = append(out, rows[i].record())
	}
	return out, nil
}

// Migrate brings the table layout up to date and stamps older rows with the current
// schema version. It reports the oldest version found before the update.
func (r *PredictionRepoImpl) Migrate(ctx context.Context) (int, error) {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&PredictionRow{}); err != nil {
		return 0, errors.Storage("migrate predictions", err)
	}

	var lowest sql.NullInt64
	if err := db.Model(&PredictionRow{}).Select("MIN(schema_version)").Row().Scan(&lowest); err != nil {
		return 0, errors.Storage("inspect schema versions", err)
	}
	if !lowest.Valid || int(lowest.Int64) >= models.CurrentSchema.Version {
		return models.CurrentSchema.Version, nil
	}
	oldest := int(lowest.Int64)

	res := db.Model(&PredictionRow{}).
		Where("schema_version < ?", models.CurrentSchema.Version).
		Update("schema_version", models.CurrentSchema.Version)
	if res.Error != nil {
		return oldest, errors.Storage("update schema versions", res.Error)
	}
	r.logger.Info(ctx, "Prediction table migrated", logger.Fields{
		"from_version": oldest,
		"rows":         res.RowsAffected,
	})
	return oldest, nil
}

func (r *PredictionRepoImpl) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return errors.Storage("database handle", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Storage("ping database", err)
	}
	return nil
}
