package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/oralrisk/internal/application/dto"
	"github.com/turtacn/oralrisk/internal/domain/service"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// RateLimit throttles a route per client IP. A nil limiter disables it.
// Limiter errors let the request through.
func RateLimit(limiter service.RateLimiter, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := c.FullPath() + ":" + c.ClientIP()
		allowed, retryAfter, err := limiter.Allow(ctx, key)
		if err != nil {
			log.Error(ctx, "Rate limiter failed", err, logger.Fields{"key": key})
			c.Next()
			return
		}
		if allowed {
			c.Next()
			return
		}

		log.Warn(ctx, "Rate limit exceeded", logger.Fields{"key": key, "retry_after": retryAfter.String()})
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
		if wantsHTML(c) {
			_ = c.Error(errors.ErrRateLimited)
			c.HTML(http.StatusTooManyRequests, "error.html", gin.H{
				"Title":      "Too many attempts",
				"Username":   Username(c),
				"Status":     http.StatusTooManyRequests,
				"StatusText": http.StatusText(http.StatusTooManyRequests),
				"Message":    "Too many attempts, try again later.",
			})
			c.Abort()
			return
		}
		dto.SendError(c, errors.ErrRateLimited)
	}
}
