package models

import (
	"strings"

	"github.com/turtacn/oralrisk/pkg/errors"
)

// Schema describes one version of the prediction log layout.
type Schema struct {
	// Version is 0 for headers that match no released layout.
	Version int
	Fields  []string
}

var (
	// SchemaV1 is the layout written before accounts existed.
	SchemaV1 = &Schema{Version: 1, Fields: []string{
		FieldTimestamp, FieldName, FieldAge, FieldGender, FieldSmoker, FieldAlcohol,
		FieldWhitePatches, FieldHPV, FieldGenetics, FieldChronicIrritation, FieldOralCondition,
		FieldSymptomsText, FieldPredictedLabel, FieldPredictedProb,
	}}

	// SchemaV2 adds the submitting username.
	SchemaV2 = &Schema{Version: 2, Fields: append([]string{FieldUsername}, SchemaV1.Fields...)}

	// SchemaV3 is the full risk-factor form.
	SchemaV3 = &Schema{Version: 3, Fields: []string{
		FieldUsername, FieldTimestamp, FieldName, FieldAge, FieldGender, FieldCountry,
		FieldSmoker, FieldAlcohol, FieldBetelQuidUse, FieldWhitePatches, FieldHPV,
		FieldGenetics, FieldImmuneCompromised, FieldChronicIrritation, FieldPoorOralHygiene,
		FieldDiet, FieldOralLesions, FieldDifficultySwallowing, FieldOralCondition,
		FieldSymptomsText, FieldPredictedLabel, FieldPredictedProb,
	}}

	// CurrentSchema is what new logs are created with and what readers migrate to.
	CurrentSchema = SchemaV3

	knownSchemas = []*Schema{SchemaV1, SchemaV2, SchemaV3}
)

// DetectSchema identifies the layout of a log from its header row.
// Headers that match no released version are accepted as long as they name at least
// one canonical field; rows are then mapped by column name.
func DetectSchema(header []string) (*Schema, error) {
	clean := make([]string, len(header))
	for i, h := range header {
		clean[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	for _, s := range knownSchemas {
		if equalFields(s.Fields, clean) {
			return s, nil
		}
	}
	for _, h := range clean {
		if CurrentSchema.Has(h) {
			return &Schema{Version: 0, Fields: clean}, nil
		}
	}
	return nil, errors.ErrUnknownSchema.WithMetadata("header", strings.Join(header, ","))
}

// Has reports whether field is part of this schema.
func (s *Schema) Has(field string) bool {
	for _, f := range s.Fields {
		if f == field {
			return true
		}
	}
	return false
}

// IsCurrent reports whether rows of this schema need no migration.
func (s *Schema) IsCurrent() bool {
	return s.Version == CurrentSchema.Version && equalFields(s.Fields, CurrentSchema.Fields)
}

// Migrate lifts a raw row of this schema into the current shape: every canonical
// field present, missing ones empty, unknown columns dropped. Short rows are padded.
func (s *Schema) Migrate(row []string) PredictionRecord {
	rec := make(PredictionRecord, len(CurrentSchema.Fields))
	for _, f := range CurrentSchema.Fields {
		rec[f] = ""
	}
	for i, f := range s.Fields {
		if i >= len(row) {
			break
		}
		if _, known := rec[f]; known {
			rec[f] = row[i]
		}
	}
	return rec
}

// Project renders rec against this schema's columns. Fields the schema lacks are dropped.
func (s *Schema) Project(rec PredictionRecord) []string {
	return rec.Ordered(s.Fields)
}

// IsEmptyRow reports whether every cell of row is blank.
func IsEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func equalFields(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
