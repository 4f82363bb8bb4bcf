package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/oralrisk/internal/application/dto"
	"github.com/turtacn/oralrisk/pkg/errors"
	"github.com/turtacn/oralrisk/pkg/logger"
)

// Logger logs one line per request once the handler chain has finished.
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logger.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"route":      c.FullPath(),
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
		}
		if user := c.GetString(usernameKey); user != "" {
			fields["username"] = user
		}
		var err error
		if last := c.Errors.Last(); last != nil {
			err = last.Err
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			log.Error(c.Request.Context(), "Request failed", err, fields)
		case err != nil:
			fields["error"] = err.Error()
			log.Warn(c.Request.Context(), "Request rejected", fields)
		default:
			log.Info(c.Request.Context(), "Request processed", fields)
		}
	}
}

// Recovery turns a panic into a 500. Browsers get the error page, API clients the JSON envelope.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				err := errors.ErrInternalServer.WithCause(fmt.Errorf("panic: %v", rec))
				log.Error(c.Request.Context(), "Panic recovered", err, logger.Fields{"path": c.Request.URL.Path})
				if c.Writer.Written() {
					c.Abort()
					return
				}
				if wantsHTML(c) {
					_ = c.Error(err)
					c.HTML(http.StatusInternalServerError, "error.html", gin.H{
						"Title":      "Error",
						"Username":   "",
						"Status":     http.StatusInternalServerError,
						"StatusText": http.StatusText(http.StatusInternalServerError),
						"Message":    "Something went wrong while handling your request.",
					})
					c.Abort()
					return
				}
				dto.SendError(c, err)
			}
		}()
		c.Next()
	}
}

func wantsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}
