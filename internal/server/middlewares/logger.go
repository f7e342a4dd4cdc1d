package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// Logger 请求日志中间件
func Logger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		log.Infof(c.Request.Context(), "[HTTP] %s %s status=%d duration=%v",
			c.Request.Method, path, c.Writer.Status(), time.Since(start))
	}
}
