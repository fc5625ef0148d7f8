package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentatproj/mentat/pkg/logger"
)

// AccessLogger logs one structured line per request.
func AccessLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.WithFields(map[string]interface{}{
			"method":     c.Request.Method,
			"path":       path,
			"status":     c.Writer.Status(),
			"latency_ms": time.Since(start).Milliseconds(),
			"client_ip":  c.ClientIP(),
			"request_id": c.GetString(XRequestIDKey),
		}).Info("access")
	}
}
