package models

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/oralrisk/pkg/errors"
)

// Field names shared by the HTML form, the JSON API, the prediction log and the classifier.
const (
	FieldUsername             = "username"
	FieldTimestamp            = "timestamp"
	FieldName                 = "name"
	FieldAge                  = "age"
	FieldGender               = "gender"
	FieldCountry              = "country"
	FieldSmoker               = "smoker"
	FieldAlcohol              = "alcohol"
	FieldBetelQuidUse         = "betel_quid_use"
	FieldWhitePatches         = "white_patches"
	FieldHPV                  = "hpv"
	FieldGenetics             = "genetics"
	FieldImmuneCompromised    = "immune_compromised"
	FieldChronicIrritation    = "chronic_irritation"
	FieldPoorOralHygiene      = "poor_oral_hygiene"
	FieldDiet                 = "diet"
	FieldOralLesions          = "oral_lesions"
	FieldDifficultySwallowing = "difficulty_swallowing"
	FieldOralCondition        = "oral_condition"
	FieldSymptomsText         = "symptoms_text"
	FieldPredictedLabel       = "predicted_label"
	FieldPredictedProb        = "predicted_prob"
)

// TimestampLayout is the ISO-8601 local time layout used for stored records.
const TimestampLayout = "2006-01-02T15:04:05.000000"

// FeatureColumns is the classifier's input contract, in training column order.
// Identity, timestamp, name and country never reach the classifier.
var FeatureColumns = []string{
	FieldAge, FieldGender, FieldSmoker, FieldAlcohol, FieldBetelQuidUse,
	FieldWhitePatches, FieldHPV, FieldGenetics, FieldImmuneCompromised,
	FieldChronicIrritation, FieldPoorOralHygiene, FieldDiet,
	FieldOralLesions, FieldDifficultySwallowing, FieldOralCondition, FieldSymptomsText,
}

// RiskFactorInput is one submitted screening form. Absent fields are empty strings.
type RiskFactorInput struct {
	Name                 string `json:"name" form:"name"`
	Age                  int    `json:"age" form:"age"`
	Gender               string `json:"gender" form:"gender"`
	Country              string `json:"country" form:"country"`
	Smoker               string `json:"smoker" form:"smoker"`
	Alcohol              string `json:"alcohol" form:"alcohol"`
	BetelQuidUse         string `json:"betel_quid_use" form:"betel_quid_use"`
	WhitePatches         string `json:"white_patches" form:"white_patches"`
	HPV                  string `json:"hpv" form:"hpv"`
	Genetics             string `json:"genetics" form:"genetics"`
	ImmuneCompromised    string `json:"immune_compromised" form:"immune_compromised"`
	ChronicIrritation    string `json:"chronic_irritation" form:"chronic_irritation"`
	PoorOralHygiene      string `json:"poor_oral_hygiene" form:"poor_oral_hygiene"`
	Diet                 string `json:"diet" form:"diet"`
	OralLesions          string `json:"oral_lesions" form:"oral_lesions"`
	DifficultySwallowing string `json:"difficulty_swallowing" form:"difficulty_swallowing"`
	OralCondition        string `json:"oral_condition" form:"oral_condition"`
	SymptomsText         string `json:"symptoms_text" form:"symptoms_text"`
}

// ParseRiskFactorInput builds an input from a field getter such as a form lookup.
// Age is the only coerced field; a missing or non-integer age is an input error.
func ParseRiskFactorInput(get func(field string) string) (RiskFactorInput, error) {
	rawAge := strings.TrimSpace(get(FieldAge))
	age, err := strconv.Atoi(rawAge)
	if err != nil {
		return RiskFactorInput{}, errors.ErrInvalidField(FieldAge, "must be an integer").WithCause(err)
	}
	in := RiskFactorInput{Age: age}
	for field, dst := range in.stringFields() {
		*dst = get(field)
	}
	return in, nil
}

func (in *RiskFactorInput) stringFields() map[string]*string {
	return map[string]*string{
		FieldName:                 &in.Name,
		FieldGender:               &in.Gender,
		FieldCountry:              &in.Country,
		FieldSmoker:               &in.Smoker,
		FieldAlcohol:              &in.Alcohol,
		FieldBetelQuidUse:         &in.BetelQuidUse,
		FieldWhitePatches:         &in.WhitePatches,
		FieldHPV:                  &in.HPV,
		FieldGenetics:             &in.Genetics,
		FieldImmuneCompromised:    &in.ImmuneCompromised,
		FieldChronicIrritation:    &in.ChronicIrritation,
		FieldPoorOralHygiene:      &in.PoorOralHygiene,
		FieldDiet:                 &in.Diet,
		FieldOralLesions:          &in.OralLesions,
		FieldDifficultySwallowing: &in.DifficultySwallowing,
		FieldOralCondition:        &in.OralCondition,
		FieldSymptomsText:         &in.SymptomsText,
	}
}

// Values returns every input field keyed by field name, age rendered in decimal.
func (in RiskFactorInput) Values() map[string]string {
	out := make(map[string]string, 18)
	for field, src := range in.stringFields() {
		out[field] = *src
	}
	out[FieldAge] = strconv.Itoa(in.Age)
	return out
}

// FeatureRow is a single classifier input row keyed by column name.
type FeatureRow map[string]string

// Features assembles the classifier row for this input.
func (in RiskFactorInput) Features() FeatureRow {
	all := in.Values()
	row := make(FeatureRow, len(FeatureColumns))
	for _, col := range FeatureColumns {
		row[col] = all[col]
	}
	return row
}

// Prediction is the outcome of one classifier call.
type Prediction struct {
	// Label is the arg-max class.
	Label string `json:"label"`
	// Confidence is the probability of Label rounded to 2 decimals.
	Confidence float64 `json:"confidence"`
	// Distribution maps every class to its probability rounded to 3 decimals.
	Distribution map[string]float64 `json:"distribution"`
	// RawConfidence is the unrounded probability of Label, which is what gets persisted.
	RawConfidence float64 `json:"-"`
}

// SortedClasses returns the distribution's classes in a stable order for rendering.
func (p Prediction) SortedClasses() []string {
	classes := make([]string, 0, len(p.Distribution))
	for c := range p.Distribution {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}

// PredictionRecord is one row of the prediction log keyed by field name.
// Records read from older schema versions carry every canonical field, missing ones as "".
type PredictionRecord map[string]string

// NewPredictionRecord stamps an input with its submitter, time and outcome.
func NewPredictionRecord(username string, at time.Time, in RiskFactorInput, label string, prob float64) PredictionRecord {
	rec := PredictionRecord(in.Values())
	rec[FieldUsername] = username
	rec[FieldTimestamp] = at.Format(TimestampLayout)
	rec[FieldPredictedLabel] = label
	rec[FieldPredictedProb] = strconv.FormatFloat(prob, 'f', -1, 64)
	return rec
}

// Get returns the value of field, or "" when absent.
func (r PredictionRecord) Get(field string) string {
	return r[field]
}

// Label returns the stored predicted label.
func (r PredictionRecord) Label() string {
	return r[FieldPredictedLabel]
}

// Ordered returns the record's values in the order of fields.
func (r PredictionRecord) Ordered(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = r[f]
	}
	return out
}

// Clone returns an independent copy.
func (r PredictionRecord) Clone() PredictionRecord {
	c := make(PredictionRecord, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}
