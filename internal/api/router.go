package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/atolyeshop/etsysync/internal/api/handlers"
	"github.com/atolyeshop/etsysync/internal/api/middleware"
	"github.com/atolyeshop/etsysync/internal/config"
	"github.com/atolyeshop/etsysync/internal/repository"
	"github.com/atolyeshop/etsysync/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(
	cfg *config.Config,
	repos *repository.Repositories,
	syncSvc *service.SyncService,
	orderSvc *service.OrderService,
	logger *zap.Logger,
) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes
	v1 := router.Group("/v1")
	{
		authed := v1.Group("")
		authed.Use(middleware.AuthMiddleware(repos, logger))
		{
			authed.POST("/orders/sync", handlers.HandleSyncOrders(syncSvc, logger))
			authed.GET("/orders", handlers.HandleListOrders(cfg, repos, logger))
			authed.GET("/orders/:id", handlers.HandleGetOrder(repos, logger))
			authed.POST("/orders/:id/close", handlers.HandleCloseOrder(orderSvc, logger))
			authed.POST("/orders/:id/archive", handlers.HandleArchiveOrder(orderSvc, logger))
		}
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
		)
	}
}
