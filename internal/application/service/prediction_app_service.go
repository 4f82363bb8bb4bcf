package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/turtacn/oralrisk/internal/application/dto"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/repository"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// PredictionAppService defines the screening use cases.
// PredictionAppService 风险预测应用服务接口。
type PredictionAppService interface {
	// Submit scores a form for username, appends it to the prediction log and announces it.
	// Nothing is stored when inference fails.
	// Submit 评估表单并写入预测日志。
	Submit(ctx context.Context, username string, in models.RiskFactorInput) (*dto.PredictionResponse, error)

	// History returns every stored prediction, newest first.
	// History 返回全部预测记录（最新在前）。
	History(ctx context.Context) ([]models.PredictionRecord, error)

	// Classes returns the classifier's label set.
	Classes() []string
}

type predictionAppServiceImpl struct {
	assessor    *service.RiskAssessor
	predictions repository.PredictionRepository
	publisher   service.EventPublisher
	metrics     service.Metrics
	logger      logger.Logger
	now         func() time.Time
}

// NewPredictionAppService creates a new instance of PredictionAppService.
// NewPredictionAppService 创建预测应用服务实例。
func NewPredictionAppService(
	classifier service.Classifier,
	predictions repository.PredictionRepository,
	publisher service.EventPublisher,
	metrics service.Metrics,
	log logger.Logger,
) PredictionAppService {
	if publisher == nil {
		publisher = service.NewNoopPublisher()
	}
	return &predictionAppServiceImpl{
		assessor:    service.NewRiskAssessor(classifier),
		predictions: predictions,
		publisher:   publisher,
		metrics:     metrics,
		logger:      log.WithComponent("prediction_service"),
		now:         time.Now,
	}
}

func (s *predictionAppServiceImpl) Submit(ctx context.Context, username string, in models.RiskFactorInput) (*dto.PredictionResponse, error) {
	ctx, span := monitoring.StartSpan(ctx, "PredictionAppService.Submit")
	defer span.End()

	start := s.now()
	prediction, err := s.assessor.Assess(ctx, in)
	if err != nil {
		s.metrics.RecordPredictionFailure("model")
		monitoring.RecordError(span, err)
		s.logger.Error(ctx, "Inference failed", err, logger.Fields{"username": username})
		return nil, err
	}
	elapsed := s.now().Sub(start)
	span.SetAttributes(
		attribute.String("prediction.label", prediction.Label),
		attribute.Float64("prediction.confidence", prediction.Confidence),
	)

	record := models.NewPredictionRecord(username, s.now(), in, prediction.Label, prediction.RawConfidence)
	if err := s.predictions.Append(ctx, record); err != nil {
		s.metrics.RecordPredictionFailure("storage")
		monitoring.RecordError(span, err)
		s.logger.Error(ctx, "Failed to append prediction", err, logger.Fields{"username": username})
		return nil, err
	}
	s.metrics.RecordPrediction(prediction.Label, elapsed)

	s.publish(ctx, record, prediction.Distribution)

	s.logger.Info(ctx, "Prediction stored", logger.Fields{
		"username":   username,
		"label":      prediction.Label,
		"confidence": prediction.Confidence,
		"latency_ms": elapsed.Milliseconds(),
	})

	return &dto.PredictionResponse{
		Label:        prediction.Label,
		Confidence:   prediction.Confidence,
		Distribution: prediction.Distribution,
		Record:       record,
	}, nil
}

// publish announces a stored prediction. Failures are logged and counted, never returned.
func (s *predictionAppServiceImpl) publish(ctx context.Context, record models.PredictionRecord, dist map[string]float64) {
	event := service.PredictionEvent{
		EventID:      uuid.NewString(),
		EventType:    constants.EventPredictionCreated,
		OccurredAt:   s.now().UTC(),
		Record:       record.Clone(),
		Distribution: dist,
	}
	if err := s.publisher.PublishPrediction(ctx, event); err != nil {
		s.metrics.RecordEventPublish(constants.EventPredictionCreated, false)
		s.logger.Warn(ctx, "Failed to publish prediction event", logger.Fields{
			"event_id": event.EventID,
			"error":    err.Error(),
		})
		return
	}
	s.metrics.RecordEventPublish(constants.EventPredictionCreated, true)
}

func (s *predictionAppServiceImpl) History(ctx context.Context) ([]models.PredictionRecord, error) {
	ctx, span := monitoring.StartSpan(ctx, "PredictionAppService.History")
	defer span.End()

	records, err := s.predictions.List(ctx)
	if err != nil {
		monitoring.RecordError(span, err)
		s.logger.Error(ctx, "Failed to list predictions", err)
		if _, ok := errors.AsAppError(err); !ok {
			return nil, errors.Storage("list predictions", err)
		}
		return nil, err
	}
	span.SetAttributes(attribute.Int("prediction.count", len(records)))
	return records, nil
}

func (s *predictionAppServiceImpl) Classes() []string {
	return s.assessor.Classes()
}
