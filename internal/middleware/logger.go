package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Logger returns a Gin middleware that logs each request using zap.
// Streaming endpoints are logged on connect instead: their handlers only
// return once the observer disconnects, which can be hours later.
func Logger(log *zap.Logger, streamPaths ...string) gin.HandlerFunc {
	streaming := make(map[string]bool, len(streamPaths))
	for _, p := range streamPaths {
		streaming[p] = true
	}

	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		if streaming[path] {
			log.Info("stream opened",
				zap.String("method", c.Request.Method),
				zap.String("path", path),
				zap.String("ip", c.ClientIP()),
			)
			c.Next()
			return
		}

		c.Next()

		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
	}
}
