// Package ml implements the oral-cancer risk classifier: synthetic training data,
// feature transformers, multinomial logistic regression and the serialized pipeline
// that the web service loads at startup.
package ml

import (
	"encoding/csv"
	"io"
	"math/rand"
	"strconv"
	"strings"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
)

// Sample is one labelled training row.
type Sample struct {
	Name     string
	Features models.FeatureRow
	Label    string
}

// LabelColumn names the target column of dataset files.
const LabelColumn = "label"

var symptomPhrases = []string{
	"white patch on inner cheek",
	"red patch in mouth",
	"mouth ulcer not healing",
	"persistent pain in mouth",
	"difficulty swallowing",
	"lump in mouth",
	"bleeding from mouth",
}

var yesNo = []string{"yes", "no"}

const nameAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

type sampler struct {
	rng *rand.Rand
}

func (s sampler) choice(options []string) string {
	return options[s.rng.Intn(len(options))]
}

func (s sampler) weighted(options []string, weights []float64) string {
	var total float64
	for _, w := range weights {
		total += w
	}
	r := s.rng.Float64() * total
	for i, w := range weights {
		if r < w {
			return options[i]
		}
		r -= w
	}
	return options[len(options)-1]
}

func (s sampler) name() string {
	var b strings.Builder
	b.WriteString("user_")
	for i := 0; i < 6; i++ {
		b.WriteByte(nameAlphabet[s.rng.Intn(len(nameAlphabet))])
	}
	return b.String()
}

// GenerateDataset builds n synthetic labelled rows. The same seed always yields the same rows.
func GenerateDataset(n int, seed int64) []Sample {
	s := sampler{rng: rand.New(rand.NewSource(seed))}
	samples := make([]Sample, 0, n)
	for i := 0; i < n; i++ {
		name := s.name()
		row := models.FeatureRow{
			models.FieldAge:                  strconv.Itoa(18 + s.rng.Intn(63)),
			models.FieldGender:               s.choice([]string{"Male", "Female"}),
			models.FieldSmoker:               s.weighted(yesNo, []float64{0.35, 0.65}),
			models.FieldAlcohol:              s.weighted([]string{"none", "light", "heavy"}, []float64{0.6, 0.25, 0.15}),
			models.FieldBetelQuidUse:         s.choice(yesNo),
			models.FieldSymptomsText:         s.choice(symptomPhrases),
			models.FieldWhitePatches:         s.choice(yesNo),
			models.FieldHPV:                  s.choice(yesNo),
			models.FieldGenetics:             s.choice(yesNo),
			models.FieldImmuneCompromised:    s.choice(yesNo),
			models.FieldChronicIrritation:    s.choice(yesNo),
			models.FieldPoorOralHygiene:      s.choice(yesNo),
			models.FieldDiet:                 s.choice([]string{"low", "moderate", "high"}),
			models.FieldOralLesions:          s.choice(yesNo),
			models.FieldDifficultySwallowing: s.choice(yesNo),
			models.FieldOralCondition:        s.choice([]string{"good", "moderate", "poor"}),
		}
		samples = append(samples, Sample{Name: name, Features: row, Label: HeuristicLabel(row)})
	}
	return samples
}

// HeuristicLabel scores a row by counting present risk factors:
// white patches, HPV, family history, chronic irritation, smoking, heavy drinking
// and poor oral condition. At most one factor is low risk, up to three medium, more is high.
func HeuristicLabel(row models.FeatureRow) string {
	score := 0
	for _, f := range []string{
		models.FieldWhitePatches, models.FieldHPV, models.FieldGenetics,
		models.FieldChronicIrritation, models.FieldSmoker,
	} {
		if row[f] == "yes" {
			score++
		}
	}
	if row[models.FieldAlcohol] == "heavy" {
		score++
	}
	if row[models.FieldOralCondition] == "poor" {
		score++
	}

	switch {
	case score <= 1:
		return string(constants.RiskLow)
	case score <= 3:
		return string(constants.RiskMedium)
	default:
		return string(constants.RiskHigh)
	}
}

func datasetHeader() []string {
	header := append([]string{models.FieldName}, models.FeatureColumns...)
	return append(header, LabelColumn)
}

// WriteDatasetCSV writes samples as name, the feature columns and label.
func WriteDatasetCSV(w io.Writer, samples []Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(datasetHeader()); err != nil {
		return errors.Storage("write dataset header", err)
	}
	for _, s := range samples {
		rec := make([]string, 0, len(models.FeatureColumns)+2)
		rec = append(rec, s.Name)
		for _, col := range models.FeatureColumns {
			rec = append(rec, s.Features[col])
		}
		rec = append(rec, s.Label)
		if err := cw.Write(rec); err != nil {
			return errors.Storage("write dataset row", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Storage("flush dataset", err)
	}
	return nil
}

// ReadDatasetCSV parses a dataset written by WriteDatasetCSV or any CSV carrying the
// feature columns and a label column. Columns are matched by name.
func ReadDatasetCSV(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Storage("read dataset", err)
	}
	if len(rows) == 0 {
		return nil, errors.ErrInvalidRequest.WithMessage("dataset is empty")
	}

	index := make(map[string]int, len(rows[0]))
	for i, h := range rows[0] {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	labelIdx, ok := index[LabelColumn]
	if !ok {
		return nil, errors.ErrMissingField(LabelColumn)
	}
	for _, col := range models.FeatureColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.ErrMissingField(col)
		}
	}

	samples := make([]Sample, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if models.IsEmptyRow(row) || labelIdx >= len(row) {
			continue
		}
		features := make(models.FeatureRow, len(models.FeatureColumns))
		for _, col := range models.FeatureColumns {
			if i := index[col]; i < len(row) {
				features[col] = row[i]
			}
		}
		s := Sample{Features: features, Label: row[labelIdx]}
		if i, ok := index[models.FieldName]; ok && i < len(row) {
			s.Name = row[i]
		}
		samples = append(samples, s)
	}
	return samples, nil
}
