package dto

import (
	"github.com/turtacn/oralrisk/internal/domain/models"
)

// PredictionResponse 预测结果 DTO
type PredictionResponse struct {
	Label        string                  `json:"label"`
	Confidence   float64                 `json:"confidence"`
	Distribution map[string]float64      `json:"distribution"`
	Record       models.PredictionRecord `json:"record"`
}

// HistoryResponse 预测历史 DTO. Records are newest first.
type HistoryResponse struct {
	Fields  []string                  `json:"fields"`
	Records []models.PredictionRecord `json:"records"`
	Count   int                       `json:"count"`
}

// NewHistoryResponse wraps records with the canonical field order.
func NewHistoryResponse(records []models.PredictionRecord) *HistoryResponse {
	if records == nil {
		records = []models.PredictionRecord{}
	}
	return &HistoryResponse{
		Fields:  models.CurrentSchema.Fields,
		Records: records,
		Count:   len(records),
	}
}
