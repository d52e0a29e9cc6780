package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"sla-monitor/internal/logging"
)

// RequestLoggingMiddleware tags each request with an id and logs method,
// path, status and latency once the handler chain finishes.
func RequestLoggingMiddleware(logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.New().String()
		c.Set("request_id", requestID)
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		logger.Infof("Request: %s %s, Status: %d, Latency: %v, request_id=%s",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), requestID)
	}
}
