package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

func RequestLog(baseLog *logger.Logger) gin.HandlerFunc {
	log := baseLog.With("middleware", "RequestLog")
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.Info("http request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
