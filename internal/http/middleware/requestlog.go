package middleware

import (
	"time"

	"taskboard/internal/logger"

	"github.com/gin-gonic/gin"
)

// RequestLog logs every request with its status and latency.
func RequestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
