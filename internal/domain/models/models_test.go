package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
)

func formGetter(values map[string]string) func(string) string {
	return func(k string) string { return values[k] }
}

func TestParseRiskFactorInput(t *testing.T) {
	in, err := ParseRiskFactorInput(formGetter(map[string]string{
		"age":           " 45 ",
		"smoker":        "yes",
		"symptoms_text": "lump in mouth",
		"unexpected":    "ignored",
	}))
	require.NoError(t, err)
	assert.Equal(t, 45, in.Age)
	assert.Equal(t, "yes", in.Smoker)
	assert.Equal(t, "lump in mouth", in.SymptomsText)
	assert.Equal(t, "", in.Gender)

	for _, bad := range []string{"", "forty", "4.5"} {
		_, err := ParseRiskFactorInput(formGetter(map[string]string{"age": bad}))
		require.Error(t, err, bad)
		assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
	}
}

func TestFeaturesExcludeIdentity(t *testing.T) {
	in := RiskFactorInput{Name: "Jane", Age: 30, Country: "IN", Smoker: "no"}
	row := in.Features()
	assert.Len(t, row, len(FeatureColumns))
	assert.Equal(t, "30", row[FieldAge])
	assert.Equal(t, "no", row[FieldSmoker])
	_, hasName := row[FieldName]
	_, hasCountry := row[FieldCountry]
	assert.False(t, hasName)
	assert.False(t, hasCountry)
}

func TestNewPredictionRecord(t *testing.T) {
	at := time.Date(2024, 3, 1, 9, 30, 0, 123456000, time.Local)
	rec := NewPredictionRecord("alice", at, RiskFactorInput{Age: 50, HPV: "yes"}, "high", 0.875)

	assert.Equal(t, "alice", rec.Get(FieldUsername))
	assert.Equal(t, "2024-03-01T09:30:00.123456", rec.Get(FieldTimestamp))
	assert.Equal(t, "50", rec.Get(FieldAge))
	assert.Equal(t, "high", rec.Label())
	assert.Equal(t, "0.875", rec.Get(FieldPredictedProb))
	assert.Len(t, CurrentSchema.Project(rec), 22)
}

func TestDetectSchema(t *testing.T) {
	s, err := DetectSchema(SchemaV1.Fields)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Version)

	withBOM := append([]string{"\ufeffusername"}, SchemaV1.Fields...)
	s, err = DetectSchema(withBOM)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Version)

	s, err = DetectSchema(CurrentSchema.Fields)
	require.NoError(t, err)
	assert.True(t, s.IsCurrent())

	s, err = DetectSchema([]string{"predicted_label", "name", "extra"})
	require.NoError(t, err)
	assert.Equal(t, 0, s.Version)
	assert.False(t, s.IsCurrent())

	_, err = DetectSchema([]string{"foo", "bar"})
	assert.True(t, errors.Is(err, errors.ErrUnknownSchema))
}

func TestMigrateFillsMissingFieldsInCanonicalOrder(t *testing.T) {
	row := []string{"2023-01-01T10:00:00.000000", "Old Patient", "61", "Male", "yes", "heavy",
		"yes", "no", "no", "yes", "poor", "red patch in mouth", "high", "0.91"}

	rec := SchemaV1.Migrate(row)

	assert.Len(t, rec, len(CurrentSchema.Fields))
	assert.Equal(t, "", rec.Get(FieldUsername))
	assert.Equal(t, "", rec.Get(FieldCountry))
	assert.Equal(t, "", rec.Get(FieldDiet))
	assert.Equal(t, "61", rec.Get(FieldAge))
	assert.Equal(t, "high", rec.Label())

	ordered := CurrentSchema.Project(rec)
	assert.Equal(t, "", ordered[0])
	assert.Equal(t, "2023-01-01T10:00:00.000000", ordered[1])
	assert.Equal(t, "0.91", ordered[len(ordered)-1])
}

func TestMigrateShortRowAndUnknownColumns(t *testing.T) {
	s := &Schema{Fields: []string{"name", "legacy_score", "predicted_label"}}
	rec := s.Migrate([]string{"Bob", "17"})
	assert.Equal(t, "Bob", rec.Get(FieldName))
	assert.Equal(t, "", rec.Label())
	_, kept := rec["legacy_score"]
	assert.False(t, kept)
}

func TestProjectAgainstOlderSchemaDropsNewFields(t *testing.T) {
	rec := NewPredictionRecord("bob", time.Now(), RiskFactorInput{Age: 33, Country: "KE", Smoker: "yes"}, "low", 0.6)
	row := SchemaV2.Project(rec)
	require.Len(t, row, len(SchemaV2.Fields))
	assert.Equal(t, "bob", row[0])
	assert.Equal(t, "33", row[3])
	assert.Equal(t, "yes", row[5])
	assert.NotContains(t, row, "KE")
}

func TestIsEmptyRow(t *testing.T) {
	assert.True(t, IsEmptyRow([]string{"", " ", ""}))
	assert.True(t, IsEmptyRow(nil))
	assert.False(t, IsEmptyRow([]string{"", "x"}))
}

func TestAccountIdentifiers(t *testing.T) {
	a := &Account{Username: "alice", Email: "a@x.io", Phone: "555"}
	assert.Equal(t, "alice", a.Identifier(constants.LoginTypeUsername))
	assert.Equal(t, "a@x.io", a.Identifier(constants.LoginTypeEmail))
	assert.Equal(t, "555", a.Identifier(constants.LoginTypePhone))

	assert.True(t, a.Collides(&Account{Username: "alice"}))
	assert.True(t, a.Collides(&Account{Username: "other", Email: "a@x.io"}))
	assert.False(t, a.Collides(&Account{Username: "Alice"}))
	assert.False(t, (&Account{Username: "x"}).Collides(&Account{Username: "y"}))
}
