// Package events publishes domain events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// messageWriter is the part of kafka.Writer the producer uses.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer is a Kafka-backed implementation of the EventPublisher.
type KafkaProducer struct {
	writer messageWriter
	logger logger.Logger
}

// NewKafkaProducer creates a producer writing to cfg.Topic.
func NewKafkaProducer(cfg config.KafkaConfig, log logger.Logger) (service.EventPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.ErrMissingField("kafka.brokers")
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.LeastBytes{},
		WriteTimeout:           5 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		BatchTimeout:           50 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return newKafkaProducer(writer, log), nil
}

func newKafkaProducer(w messageWriter, log logger.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer: w,
		logger: log.WithComponent("KafkaProducer"),
	}
}

// PublishPrediction sends the event keyed by the submitting username, so one
// user's predictions stay ordered within a partition.
func (p *KafkaProducer) PublishPrediction(ctx context.Context, event service.PredictionEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error(ctx, "failed to marshal prediction event", err, nil)
		return errors.ErrInternalServer.WithCause(err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.Record.Get(models.FieldUsername)),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.EventType)},
			{Key: "event_id", Value: []byte(event.EventID)},
		},
	})
	if err != nil {
		p.logger.Error(ctx, "failed to write message to Kafka", err, logger.Fields{"event_id": event.EventID})
		return errors.ErrUnavailable.WithMessage("event broker unavailable").WithCause(err)
	}
	return nil
}

// Close flushes and closes the underlying Kafka writer.
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
