package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shinjadong/careon-blog-ai/internal/logger"
)

// LoggingMiddleware logs HTTP requests.
func LoggingMiddleware() gin.HandlerFunc {
	log := logger.With("http")
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		if raw != "" {
			path = path + "?" + raw
		}
		log.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
