package ml

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/pkg/errors"
)

// TrainOptions controls the split and the optimizer.
type TrainOptions struct {
	TestSize    float64
	Seed        int64
	C           float64
	MaxIter     int
	NGramMax    int
	MaxFeatures int
}

// DefaultTrainOptions returns the settings the shipped artifact is trained with.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		TestSize:    0.2,
		Seed:        42,
		C:           1.0,
		MaxIter:     1000,
		NGramMax:    2,
		MaxFeatures: 1000,
	}
}

// StratifiedSplit partitions samples into train and test sets, keeping each label's share
// of the test set proportional to its share of the data. The split depends only on seed.
func StratifiedSplit(samples []Sample, testSize float64, seed int64) (train, test []Sample) {
	byLabel := map[string][]int{}
	var labels []string
	for i, s := range samples {
		if _, ok := byLabel[s.Label]; !ok {
			labels = append(labels, s.Label)
		}
		byLabel[s.Label] = append(byLabel[s.Label], i)
	}
	sort.Strings(labels)

	rng := rand.New(rand.NewSource(seed))
	for _, label := range labels {
		idx := byLabel[label]
		rng.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
		nTest := int(float64(len(idx))*testSize + 0.5)
		if nTest >= len(idx) && len(idx) > 1 {
			nTest = len(idx) - 1
		}
		for k, i := range idx {
			if k < nTest {
				test = append(test, samples[i])
			} else {
				train = append(train, samples[i])
			}
		}
	}
	rng.Shuffle(len(train), func(i, j int) { train[i], train[j] = train[j], train[i] })
	return train, test
}

// Fit trains a pipeline on samples and evaluates it on a held-out split.
func Fit(ctx context.Context, samples []Sample, opts TrainOptions) (*Pipeline, *Evaluation, error) {
	if len(samples) < 2 {
		return nil, nil, errors.ErrInvalidRequest.WithMessage("need at least two samples to train")
	}
	train, test := StratifiedSplit(samples, opts.TestSize, opts.Seed)

	classes := distinctLabels(train)
	if len(classes) < 2 {
		return nil, nil, errors.ErrInvalidRequest.WithMessage("training data has a single class")
	}
	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	ages := make([]float64, len(train))
	rows := make([]map[string]string, len(train))
	docs := make([]string, len(train))
	for i, s := range train {
		age, err := strconv.ParseFloat(strings.TrimSpace(s.Features[models.FieldAge]), 64)
		if err != nil {
			return nil, nil, errors.ErrInvalidField(models.FieldAge, fmt.Sprintf("row %d: %q", i, s.Features[models.FieldAge]))
		}
		ages[i] = age
		rows[i] = s.Features
		docs[i] = s.Features[models.FieldSymptomsText]
	}

	tfidf := NewTfidfVectorizer(1, opts.NGramMax, opts.MaxFeatures)
	tfidf.Fit(docs)

	p := &Pipeline{
		Version:        ArtifactVersion,
		TrainedAt:      time.Now().UTC(),
		ClassLabels:    classes,
		NumericColumn:  models.FieldAge,
		TextColumn:     models.FieldSymptomsText,
		Scaler:         FitStandardScaler(ages),
		Encoder:        FitOneHotEncoder(CategoricalColumns(), rows),
		Tfidf:          tfidf,
		Model:          NewLogisticRegression(opts.C, opts.MaxIter),
		TrainingRows:   len(train),
		EvaluationRows: len(test),
	}

	X := make([][]float64, len(train))
	y := make([]int, len(train))
	for i, s := range train {
		x, err := p.Vectorize(s.Features)
		if err != nil {
			return nil, nil, err
		}
		X[i] = x
		y[i] = classIndex[s.Label]
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	p.Model.Fit(X, y, len(classes))

	yTrue := make([]string, 0, len(test))
	yPred := make([]string, 0, len(test))
	for _, s := range test {
		label, err := p.Predict(s.Features)
		if err != nil {
			return nil, nil, err
		}
		yTrue = append(yTrue, s.Label)
		yPred = append(yPred, label)
	}
	return p, Evaluate(classes, yTrue, yPred), nil
}

func distinctLabels(samples []Sample) []string {
	seen := map[string]struct{}{}
	for _, s := range samples {
		seen[s.Label] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
