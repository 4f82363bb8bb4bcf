package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/turtacn/oralrisk/internal/domain/service"
)

// Metrics manages the Prometheus metrics.
type Metrics struct {
	Predictions        *prometheus.CounterVec
	PredictionLatency  *prometheus.HistogramVec
	PredictionFailures *prometheus.CounterVec
	Logins             *prometheus.CounterVec
	Registrations      *prometheus.CounterVec
	EventsPublished    *prometheus.CounterVec
	HTTPRequests       *prometheus.CounterVec
	HTTPLatency        *prometheus.HistogramVec
}

var _ service.Metrics = (*Metrics)(nil)

// NewRegistry returns a registry with the Go runtime and process collectors attached.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oralrisk_predictions_total",
				Help: "Total number of predictions served, by predicted label.",
			},
			[]string{"label"},
		),
		PredictionLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oralrisk_prediction_latency_seconds",
				Help:    "Latency of classifier inference.",
				Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"label"},
		),
		PredictionFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oralrisk_prediction_failures_total",
				Help: "Total number of failed predictions, by failing stage.",
			},
			[]string{"stage"},
		),
		Logins: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oralrisk_logins_total",
				Help: "Total number of login attempts.",
			},
			[]string{"login_type", "success"},
		),
		Registrations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oralrisk_registrations_total",
				Help: "Total number of registration attempts, by result.",
			},
			[]string{"result"},
		),
		EventsPublished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oralrisk_events_published_total",
				Help: "Total number of domain events handed to the broker.",
			},
			[]string{"event", "success"},
		),
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "oralrisk_http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "oralrisk_http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// RecordPrediction records a successful prediction.
func (m *Metrics) RecordPrediction(label string, duration time.Duration) {
	m.Predictions.WithLabelValues(label).Inc()
	m.PredictionLatency.WithLabelValues(label).Observe(duration.Seconds())
}

// RecordPredictionFailure records a failed prediction.
func (m *Metrics) RecordPredictionFailure(stage string) {
	m.PredictionFailures.WithLabelValues(stage).Inc()
}

// RecordLogin records a login attempt.
func (m *Metrics) RecordLogin(loginType string, success bool) {
	m.Logins.WithLabelValues(loginType, strconv.FormatBool(success)).Inc()
}

// RecordRegistration records a registration attempt.
func (m *Metrics) RecordRegistration(result string) {
	m.Registrations.WithLabelValues(result).Inc()
}

// RecordEventPublish records an event publish attempt.
func (m *Metrics) RecordEventPublish(event string, success bool) {
	m.EventsPublished.WithLabelValues(event, strconv.FormatBool(success)).Inc()
}

// RecordHTTPRequest records one served request. route is the matched route pattern.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}
