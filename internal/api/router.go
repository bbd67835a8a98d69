package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/runterra/territory-backend/internal/config"
	"github.com/runterra/territory-backend/internal/handler"
	"github.com/runterra/territory-backend/internal/middleware"
)

// SetupRouter builds the HTTP router
func SetupRouter(cfg *config.Config, runHandler *handler.RunHandler, zoneHandler *handler.ZoneHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(middleware.RateLimit(cfg.RateLimit, time.Minute))

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Territory Backend API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		runs := api.Group("/runs")
		{
			runs.POST("", runHandler.Upload)
			runs.GET("/:id", runHandler.Get)
			runs.POST("/:id/finalize", runHandler.Finalize)
			runs.GET("/:id/path", runHandler.GetPath)
		}

		zones := api.Group("/zones")
		{
			zones.GET("/ownership", zoneHandler.GetOwnership)
			zones.POST("/ownership/recompute", zoneHandler.RecomputeOwnership)
			zones.GET("/leaderboard", zoneHandler.GetLeaderboard)
			zones.GET("/boundary/:h3Index", zoneHandler.GetBoundary)
		}
	}

	return r
}
