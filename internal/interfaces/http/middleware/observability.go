package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/oralrisk/internal/infrastructure/monitoring"
	"github.com/turtacn/oralrisk/pkg/constants"
)

// HTTPRecorder receives one observation per finished request.
type HTTPRecorder interface {
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}

// Observability starts a server span per request and records request count and latency.
// Routes are labelled by their template so metric cardinality stays bounded.
// Observability 为每个请求开启 Span 并记录请求数与耗时。
func Observability(recorder HTTPRecorder) gin.HandlerFunc {
	propagator := propagation.TraceContext{}
	return func(c *gin.Context) {
		start := time.Now()
		ctx := propagator.Extract(c.Request.Context(), propagation.HeaderCarrier(c.Request.Header))

		route := c.FullPath()
		if route == "" {
			route = "not_found"
		}
		ctx, span := monitoring.StartSpan(ctx, c.Request.Method+" "+route, trace.WithSpanKind(trace.SpanKindServer))
		defer span.End()

		if traceID := monitoring.GetTraceID(ctx); traceID != "" {
			c.Set(string(constants.ContextKeyTraceID), traceID)
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		status := c.Writer.Status()
		recorder.RecordHTTPRequest(c.Request.Method, route, status, time.Since(start))
		span.SetAttributes(
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.Int("http.status_code", status),
			attribute.String("http.client_ip", c.ClientIP()),
		)
		if err := c.Errors.Last(); err != nil && status >= 500 {
			monitoring.RecordError(span, err)
		}
	}
}
