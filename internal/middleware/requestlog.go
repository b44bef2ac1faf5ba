package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	infralogger "github.com/jonesrussell/north-cloud/personalization/internal/logger"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

const requestIDKey = "request_id"

// RequestID propagates the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

// Logger writes one structured entry per request. Health probes and metric
// scrapes are logged at debug.
func Logger(log infralogger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.Request.URL.Path
		fields := []infralogger.Field{
			infralogger.String("method", c.Request.Method),
			infralogger.String("path", path),
			infralogger.Int("status", c.Writer.Status()),
			infralogger.Duration("duration", time.Since(start)),
			infralogger.String("client_ip", c.ClientIP()),
			infralogger.String("request_id", c.GetString(requestIDKey)),
		}

		switch {
		case len(c.Errors) > 0:
			fields = append(fields, infralogger.Strings("errors", c.Errors.Errors()))
			log.Error("HTTP request with errors", fields...)
		case strings.HasPrefix(path, "/health") || path == "/metrics":
			log.Debug("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// Recovery turns a handler panic into a logged 500 response.
func Recovery(log infralogger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error("Panic recovered",
					infralogger.Any("error", rec),
					infralogger.String("path", c.Request.URL.Path),
					infralogger.String("request_id", c.GetString(requestIDKey)),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
