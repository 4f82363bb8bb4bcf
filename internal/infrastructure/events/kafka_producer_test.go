package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/turtacn/oralrisk/internal/config"
	"github.com/turtacn/oralrisk/internal/domain/models"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/constants"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaProducerPublishPrediction(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaProducer(w, logger.NewNoopLogger())

	event := service.PredictionEvent{
		EventID:    "evt-1",
		EventType:  constants.EventPredictionCreated,
		OccurredAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Record: models.PredictionRecord{
			models.FieldUsername:       "alice",
			models.FieldPredictedLabel: "high",
		},
		Distribution: map[string]float64{"high": 0.8, "low": 0.05, "medium": 0.15},
	}
	require.NoError(t, p.PublishPrediction(context.Background(), event))

	require.Len(t, w.messages, 1)
	msg := w.messages[0]
	assert.Equal(t, "alice", string(msg.Key))
	assert.Equal(t, event.OccurredAt, msg.Time)

	var decoded service.PredictionEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "evt-1", decoded.EventID)
	assert.Equal(t, "high", decoded.Record.Label())
	assert.InDelta(t, 0.8, decoded.Distribution["high"], 1e-9)

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, constants.EventPredictionCreated, headers["event_type"])

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestKafkaProducerWriteFailure(t *testing.T) {
	w := &recordingWriter{err: kafka.LeaderNotAvailable}
	p := newKafkaProducer(w, logger.NewNoopLogger())

	err := p.PublishPrediction(context.Background(), service.PredictionEvent{EventID: "x"})
	assert.True(t, errors.Is(err, errors.ErrUnavailable))
}

func TestNewKafkaProducerRequiresBrokers(t *testing.T) {
	_, err := NewKafkaProducer(config.KafkaConfig{Topic: "t"}, logger.NewNoopLogger())
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	p, err := NewKafkaProducer(config.KafkaConfig{Brokers: []string{"localhost:9092"}, Topic: "t"}, logger.NewNoopLogger())
	require.NoError(t, err)
	assert.NoError(t, p.Close())
}
