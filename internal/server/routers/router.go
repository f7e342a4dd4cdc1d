package routers

import (
	"github.com/gin-gonic/gin"

	"github.com/s2265681/Project-Auto-Testing/internal/server/handlers/run"
	"github.com/s2265681/Project-Auto-Testing/internal/server/middlewares"
	"github.com/s2265681/Project-Auto-Testing/pkg/logger"
)

// SetupRoutes 配置所有路由，使用 Route Group 分类
func SetupRoutes(runHandler *run.RunHandler, log logger.Logger) *gin.Engine {
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middlewares.CORS())
	r.Use(middlewares.Logger(log))
	r.Use(middlewares.ErrorHandler())

	// 存活探针：不触达浏览器与外部依赖
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "apiserver",
			"message": "Service is running",
		})
	})

	v1 := r.Group("/api/v1")
	{
		runs := v1.Group("/runs")
		{
			runs.POST("", runHandler.Create)
			runs.GET("/:id", runHandler.Get)
		}
	}

	return r
}
