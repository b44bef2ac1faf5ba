package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/personalization/internal/handler"
	"github.com/jonesrussell/north-cloud/personalization/internal/middleware"
)

// Dependencies are the handlers and endpoints mounted by SetupRoutes.
type Dependencies struct {
	Sessions    *handler.SessionHandler
	Preferences *handler.PreferencesHandler
	Health      *handler.HealthHandler
	Metrics     http.Handler
}

// RouteOptions tune the click ingest rate limiter.
type RouteOptions struct {
	MaxClicksPerWindow int
	RateLimitWindow    time.Duration
	Done               <-chan struct{}
}

// SetupRoutes configures all API routes.
func SetupRoutes(router *gin.Engine, deps Dependencies, opts RouteOptions) {
	router.GET("/health", deps.Health.HealthCheck)
	router.HEAD("/health", deps.Health.HealthCheck)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics))
	}

	v1 := router.Group("/api/v1")
	v1.GET("/preferences", deps.Preferences.GetPreferences)
	v1.PUT("/preferences", deps.Preferences.SetPreferences)

	sessions := v1.Group("/sessions/:id")

	clicks := sessions.Group("")
	clicks.Use(middleware.BotFilter())
	clicks.Use(middleware.RateLimiter(opts.MaxClicksPerWindow, opts.RateLimitWindow, opts.Done))
	clicks.POST("/clicks", deps.Sessions.RecordClick)

	sessions.PUT("/tracking", deps.Sessions.SetTracking)
	sessions.POST("/personalization", deps.Sessions.ProcessClickStream)
	sessions.GET("/personalization", deps.Sessions.GetPersonalization)
}
