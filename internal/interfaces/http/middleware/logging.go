// Package middleware holds the gin middleware for the HTTP interface.
package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/turtacn/MedReg-Intelligence/internal/infrastructure/monitoring/logging"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a request ID to the context and response, reusing the
// caller's header when present.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one structured line per request after it completes.
func RequestLogger(log logging.Logger) gin.HandlerFunc {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []logging.Field{
			logging.String("method", c.Request.Method),
			logging.String("path", path),
			logging.Int("status", c.Writer.Status()),
			logging.Duration("duration", time.Since(start)),
			logging.String("client_ip", c.ClientIP()),
		}
		if id := c.GetString("request_id"); id != "" {
			fields = append(fields, logging.String("request_id", id))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, logging.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			log.Error("request completed", fields...)
		case c.Writer.Status() >= 400:
			log.Warn("request completed", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}
