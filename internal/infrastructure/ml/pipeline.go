package ml

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/errors"
)

// ArtifactVersion is bumped whenever the serialized Pipeline layout changes.
const ArtifactVersion = 1

// Pipeline is the fitted preprocessing plus classifier. Feature vectors are laid out
// as the scaled numeric column, then the one-hot indicators, then the TF-IDF weights.
// A Pipeline is read-only after Fit or Load and safe for concurrent use.
type Pipeline struct {
	Version        int                 `json:"version"`
	TrainedAt      time.Time           `json:"trained_at"`
	ClassLabels    []string            `json:"classes"`
	NumericColumn  string              `json:"numeric_column"`
	TextColumn     string              `json:"text_column"`
	Scaler         StandardScaler      `json:"scaler"`
	Encoder        OneHotEncoder       `json:"encoder"`
	Tfidf          *TfidfVectorizer    `json:"tfidf"`
	Model          *LogisticRegression `json:"model"`
	TrainingRows   int                 `json:"training_rows"`
	EvaluationRows int                 `json:"evaluation_rows"`
}

var _ service.Classifier = (*Pipeline)(nil)

// CategoricalColumns are every feature column except age and the free text.
func CategoricalColumns() []string {
	var cols []string
	for _, c := range models.FeatureColumns {
		if c != models.FieldAge && c != models.FieldSymptomsText {
			cols = append(cols, c)
		}
	}
	return cols
}

// Width is the length of the feature vector.
func (p *Pipeline) Width() int {
	return 1 + p.Encoder.Width() + p.Tfidf.Width()
}

// Vectorize transforms one feature row.
func (p *Pipeline) Vectorize(row models.FeatureRow) ([]float64, error) {
	raw := strings.TrimSpace(row[p.NumericColumn])
	age, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, errors.ErrInvalidField(p.NumericColumn, "not a number: "+raw)
	}

	x := make([]float64, p.Width())
	x[0] = p.Scaler.Transform(age)
	offset := 1
	p.Encoder.Transform(row, x[offset:offset+p.Encoder.Width()])
	offset += p.Encoder.Width()
	p.Tfidf.Transform(row[p.TextColumn], x[offset:])
	return x, nil
}

// Classes returns the labels in sorted order, the order of PredictProba.
func (p *Pipeline) Classes() []string {
	out := make([]string, len(p.ClassLabels))
	copy(out, p.ClassLabels)
	return out
}

// PredictProba returns the class distribution for row.
func (p *Pipeline) PredictProba(ctx context.Context, row models.FeatureRow) ([]float64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	x, err := p.Vectorize(row)
	if err != nil {
		return nil, err
	}
	return p.Model.PredictProba(x), nil
}

// Predict returns the most probable label, ties going to the earlier class.
func (p *Pipeline) Predict(row models.FeatureRow) (string, error) {
	probs, err := p.PredictProba(context.Background(), row)
	if err != nil {
		return "", err
	}
	best := 0
	for i := range probs {
		if probs[i] > probs[best] {
			best = i
		}
	}
	return p.ClassLabels[best], nil
}

// Save writes the pipeline as JSON.
func (p *Pipeline) Save(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return errors.ErrModel.WithMessage("encode artifact").WithCause(err)
	}
	return nil
}

// LoadPipeline reads a pipeline written by Save and checks it is usable.
func LoadPipeline(r io.Reader) (*Pipeline, error) {
	var p Pipeline
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, errors.ErrModel.WithMessage("decode artifact").WithCause(err)
	}
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Pipeline) validate() error {
	fail := func(msg string) error {
		return errors.ErrModel.WithMessage("invalid artifact: " + msg)
	}
	switch {
	case p.Version != ArtifactVersion:
		return fail("unsupported version " + strconv.Itoa(p.Version))
	case len(p.ClassLabels) == 0:
		return fail("no classes")
	case p.Tfidf == nil || p.Model == nil:
		return fail("missing transformer or model")
	case len(p.Encoder.Columns) != len(p.Encoder.Categories):
		return fail("encoder columns and categories differ")
	case len(p.Model.Weights) != len(p.ClassLabels) || len(p.Model.Intercepts) != len(p.ClassLabels):
		return fail("model does not match classes")
	case len(p.Tfidf.IDF) != len(p.Tfidf.Vocabulary):
		return fail("vocabulary and idf differ")
	case p.Scaler.Scale == 0:
		return fail("zero scale")
	}
	for _, w := range p.Model.Weights {
		if len(w) != p.Width() {
			return fail("weight width does not match features")
		}
	}
	return nil
}
