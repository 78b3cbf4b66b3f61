package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/glisignoli/ai-yt-dlp-web/logging"
)

// Logging returns a request logging middleware backed by the service logger
func Logging() gin.HandlerFunc {
	logger := logging.Component("http")

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request")
	}
}
