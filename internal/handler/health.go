package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const healthCheckTimeout = 2 * time.Second

// Pinger is a dependency whose reachability is reported by the health check.
type Pinger func(ctx context.Context) error

// HealthHandler handles health check requests.
type HealthHandler struct {
	service string
	version string
	checks  map[string]Pinger
}

// NewHealthHandler creates a HealthHandler for the named dependencies.
func NewHealthHandler(service, version string, checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{service: service, version: version, checks: checks}
}

// HealthCheck pings every dependency and reports 503 if any is unreachable.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, ping := range h.checks {
		if err := ping(ctx); err != nil {
			results[name] = "unhealthy"
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		results[name] = "healthy"
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   h.service,
		"version":   h.version,
		"checks":    results,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
