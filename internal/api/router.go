package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/siteforge/content-pipeline/internal/config"
	"github.com/siteforge/content-pipeline/internal/service"
)

// NewRouter creates and configures the Gin router
func NewRouter(services *service.Services, cfg *config.Config, log zerolog.Logger) *gin.Engine {
	// Set Gin mode
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(recoveryMiddleware(log))
	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware())

	// Handlers
	projectHandler := NewProjectHandler(services, log)
	runHandler := NewRunHandler(services, log)
	versionHandler := NewVersionHandler(services, log)
	publishHandler := NewPublishHandler(services, log)
	domainHandler := NewDomainHandler(services, log)
	marketingHandler := NewMarketingHandler(services, log)

	// Health check
	router.GET("/health", healthCheck)

	// API v1 (authenticated)
	v1 := router.Group("/v1")
	v1.Use(authMiddleware(cfg.Auth.JWTSecret, log))
	{
		projects := v1.Group("/projects")
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:project_id", projectHandler.GetProject)
			projects.DELETE("/:project_id", projectHandler.DeleteProject)

			projects.POST("/:project_id/runs", runHandler.CreateRun)
			projects.GET("/:project_id/runs", runHandler.ListRuns)
			projects.GET("/:project_id/runs/:run_id", runHandler.GetRun)
			projects.POST("/:project_id/runs/:run_id/execute", runHandler.ExecuteRun)

			projects.GET("/:project_id/versions", versionHandler.ListVersions)
			projects.POST("/:project_id/versions/:version_id/rollback", versionHandler.Rollback)

			projects.POST("/:project_id/publish", publishHandler.Publish)

			projects.POST("/:project_id/domains", domainHandler.AttachDomain)
			projects.GET("/:project_id/domains", domainHandler.GetDomain)
			projects.POST("/:project_id/domains/check", domainHandler.CheckDomain)

			projects.POST("/:project_id/marketing", marketingHandler.CreateItem)
			projects.GET("/:project_id/marketing", marketingHandler.ListItems)
			projects.POST("/:project_id/marketing/:item_id/approve", marketingHandler.ApproveItem)
			projects.POST("/:project_id/marketing/:item_id/schedule", marketingHandler.ScheduleItem)
			projects.POST("/:project_id/marketing/sweep", marketingHandler.Sweep)
		}
	}

	return router
}

// healthCheck returns the health status
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"service":   "content-pipeline",
	})
}

// recoveryMiddleware handles panics
func recoveryMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error().Interface("error", err).Msg("Panic recovered")
				c.JSON(http.StatusInternalServerError, gin.H{
					"ok":    false,
					"error": "Internal server error",
				})
				c.Abort()
			}
		}()
		c.Next()
	}
}

// loggingMiddleware logs requests
func loggingMiddleware(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()

		event := log.Info()
		if statusCode >= 400 {
			event = log.Warn()
		}
		if statusCode >= 500 {
			event = log.Error()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", path).
			Int("status", statusCode).
			Dur("duration", duration).
			Str("client_ip", c.ClientIP()).
			Msg("Request completed")
	}
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
