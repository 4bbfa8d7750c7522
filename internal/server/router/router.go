package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/tarekpos/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(salesHandler *handlers.SalesHandler, stockHandler *handlers.StockHandler, reportHandler *handlers.ReportHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.POST("/sales", salesHandler.Create)
		api.GET("/sales", salesHandler.List)

		api.GET("/products", stockHandler.Products)

		api.POST("/stock/:category", stockHandler.Restock)
		api.GET("/stock/:category", stockHandler.List)
		api.GET("/stock/:category/summary", stockHandler.Summary)
		api.PUT("/stock/:category/:id", stockHandler.Update)
		api.DELETE("/stock/:category/:id", stockHandler.Delete)

		api.POST("/reports/export", reportHandler.Export)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
