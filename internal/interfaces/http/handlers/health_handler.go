package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/oralrisk/pkg/logger"
)

// Pinger is anything readiness can probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	checks  map[string]Pinger
	timeout time.Duration
	log     logger.Logger
}

// NewHealthHandler creates a new HealthHandler probing the given dependencies by name.
func NewHealthHandler(checks map[string]Pinger, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 3 * time.Second,
		log:     log.WithComponent("health_handler"),
	}
}

// LivenessCheck reports that the process is serving requests.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC(),
	})
}

// ReadinessCheck probes every dependency concurrently and reports 503 if any fails.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	checks := h.performChecks(ctx)
	status := "ready"
	httpStatus := http.StatusOK
	for name, result := range checks {
		if result != "ok" {
			status = "not_ready"
			httpStatus = http.StatusServiceUnavailable
			h.log.Warn(ctx, "Readiness check failed", logger.Fields{"check": name, "result": result})
		}
	}

	c.JSON(httpStatus, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC(),
		"checks":    checks,
	})
}

func (h *HealthHandler) performChecks(ctx context.Context) map[string]string {
	var wg sync.WaitGroup
	mu := &sync.Mutex{}
	checks := make(map[string]string, len(h.checks))

	wg.Add(len(h.checks))
	for name, p := range h.checks {
		go func(name string, p Pinger) {
			defer wg.Done()
			status := "ok"
			if err := p.Ping(ctx); err != nil {
				status = "error: " + err.Error()
			}
			mu.Lock()
			checks[name] = status
			mu.Unlock()
		}(name, p)
	}
	wg.Wait()
	return checks
}
