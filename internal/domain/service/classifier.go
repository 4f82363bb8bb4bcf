package service

import (
	"context"

	"github.com/turtacn/oralrisk/internal/domain/models"
)

// Classifier maps one feature row to a probability distribution over risk tiers.
// Implementations are immutable after construction and safe for concurrent use.
// Classifier 将一行特征映射为风险等级上的概率分布。
// 实现在构造后不可变，可安全并发使用。
type Classifier interface {
	// Classes returns the label set in the classifier's internal order.
	// The order breaks ties when picking the most probable label.
	Classes() []string

	// PredictProba returns one probability per class, aligned with Classes.
	PredictProba(ctx context.Context, row models.FeatureRow) ([]float64, error)
}
