package server

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/talentvine/talentvine-backend/internal/http/handlers"
	"github.com/talentvine/talentvine-backend/internal/http/middleware"
	"github.com/talentvine/talentvine-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log               *logger.Logger
	AuthMiddleware    *middleware.AuthMiddleware
	AllocationHandler *handlers.AllocationHandler
	ServiceName       string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog(cfg.Log))
	router.Use(middleware.CORS())
	router.Use(otelgin.Middleware(cfg.ServiceName))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	api.Use(cfg.AuthMiddleware.RequireAuth())
	{
		allocation := api.Group("/allocation")
		allocation.POST("/jobs/:id/assign", cfg.AllocationHandler.AssignJob)
		allocation.POST("/jobs/:id/auto-assign", cfg.AllocationHandler.AutoAssignJob)
		allocation.POST("/jobs/:id/unassign", cfg.AllocationHandler.UnassignJob)
		allocation.GET("/jobs", cfg.AllocationHandler.ListJobs)
		allocation.GET("/jobs/:id/consultants", cfg.AllocationHandler.ListJobConsultants)
		allocation.GET("/consultants", cfg.AllocationHandler.ListConsultants)
		allocation.GET("/stats", cfg.AllocationHandler.GetStats)
	}

	return router
}
