package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/reroute/reroute-backend-go/internal/config"
	"github.com/reroute/reroute-backend-go/internal/handler"
	"github.com/reroute/reroute-backend-go/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(cfg *config.Config, routeHandler *handler.RouteHandler) *gin.Engine {
	r := gin.Default()

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "(re)Route API is running",
		})
	})

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(60, time.Minute))
	if cfg.AuthRequired {
		api.Use(middleware.Auth(cfg.JWTSecret))
	}
	{
		// 路线规划接口
		routes := api.Group("/routes")
		{
			routes.POST("/plan", routeHandler.PlanRoute)
			routes.POST("/loop", routeHandler.PlanLoop)
		}

		// 意图列表接口
		api.GET("/intents", routeHandler.ListIntents)
	}

	return r
}
