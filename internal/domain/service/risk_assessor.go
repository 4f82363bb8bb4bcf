package service

import (
	"context"
	"fmt"
	"math"

	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/utils"
)

const (
	confidencePlaces   = 2
	distributionPlaces = 3
)

// RiskAssessor turns a screening form into a labelled prediction using a Classifier.
// It keeps no state between calls; every call runs full inference.
type RiskAssessor struct {
	classifier Classifier
}

// NewRiskAssessor creates a RiskAssessor around clf.
func NewRiskAssessor(clf Classifier) *RiskAssessor {
	return &RiskAssessor{classifier: clf}
}

// Classes exposes the underlying label set.
func (a *RiskAssessor) Classes() []string {
	return a.classifier.Classes()
}

// Assess runs the classifier and picks the most probable label.
// Ties go to the class that comes first in Classes().
func (a *RiskAssessor) Assess(ctx context.Context, in models.RiskFactorInput) (models.Prediction, error) {
	classes := a.classifier.Classes()
	probs, err := a.classifier.PredictProba(ctx, in.Features())
	if err != nil {
		return models.Prediction{}, errors.ErrModel.WithMessage("inference failed").WithCause(err)
	}
	if len(probs) != len(classes) || len(classes) == 0 {
		return models.Prediction{}, errors.ErrModel.WithMessage(
			fmt.Sprintf("classifier returned %d probabilities for %d classes", len(probs), len(classes)))
	}

	best := 0
	for i := 1; i < len(probs); i++ {
		if probs[i] > probs[best] {
			best = i
		}
	}
	if math.IsNaN(probs[best]) {
		return models.Prediction{}, errors.ErrModel.WithMessage("classifier returned NaN")
	}

	dist := make(map[string]float64, len(classes))
	for i, c := range classes {
		dist[c] = utils.Round(probs[i], distributionPlaces)
	}
	return models.Prediction{
		Label:         classes[best],
		Confidence:    utils.Round(probs[best], confidencePlaces),
		Distribution:  dist,
		RawConfidence: probs[best],
	}, nil
}
