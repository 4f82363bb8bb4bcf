// Package service defines the interfaces for domain services.
package service

import (
	"time"
)

// Metrics defines the interface for collecting business metrics.
// This abstraction allows the application layer to remain independent of the specific monitoring implementation (e.g., Prometheus).
// Metrics 定义了收集业务指标的接口。
// 这种抽象使应用层能够独立于具体的监控实现（例如 Prometheus）。
type Metrics interface {
	// RecordPrediction records a successful prediction and its inference latency.
	// RecordPrediction 记录一次成功的预测及其推理延迟。
	RecordPrediction(label string, duration time.Duration)

	// RecordPredictionFailure records a failed prediction by the stage that failed (input, model, storage).
	// RecordPredictionFailure 按失败阶段记录一次失败的预测。
	RecordPredictionFailure(stage string)

	// RecordLogin records a login attempt outcome.
	// RecordLogin 记录登录尝试的结果。
	RecordLogin(loginType string, success bool)

	// RecordRegistration records a registration outcome (created, exists, invalid, error).
	// RecordRegistration 记录注册结果。
	RecordRegistration(result string)

	// RecordEventPublish records the outcome of publishing a domain event.
	// RecordEventPublish 记录发布领域事件的结果。
	RecordEventPublish(event string, success bool)
}

type noopMetrics struct{}

// NewNoopMetrics returns a Metrics that discards everything.
func NewNoopMetrics() Metrics {
	return noopMetrics{}
}

func (noopMetrics) RecordPrediction(string, time.Duration) {}
func (noopMetrics) RecordPredictionFailure(string)         {}
func (noopMetrics) RecordLogin(string, bool)               {}
func (noopMetrics) RecordRegistration(string)              {}
func (noopMetrics) RecordEventPublish(string, bool)        {}
