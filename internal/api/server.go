// Package api wires the HTTP routes and server lifecycle.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonesrussell/north-cloud/personalization/internal/config"
	infralogger "github.com/jonesrussell/north-cloud/personalization/internal/logger"
	"github.com/jonesrussell/north-cloud/personalization/internal/middleware"
)

const (
	defaultReadTimeout     = 10 * time.Second
	defaultWriteTimeout    = 10 * time.Second
	defaultIdleTimeout     = 60 * time.Second
	defaultShutdownTimeout = 15 * time.Second
)

// Server is the HTTP server with lifecycle management.
type Server struct {
	router *gin.Engine
	server *http.Server
	logger infralogger.Logger
	cfg    *config.Config
}

// NewServer creates the HTTP server with standard middleware and all routes.
// done is closed on shutdown to stop background middleware goroutines.
func NewServer(deps Dependencies, cfg *config.Config, log infralogger.Logger, done <-chan struct{}) *Server {
	if cfg.Service.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	SetupRoutes(router, deps, RouteOptions{
		MaxClicksPerWindow: cfg.RateLimit.MaxClicksPerMinute,
		RateLimitWindow:    time.Duration(cfg.RateLimit.WindowSeconds) * time.Second,
		Done:               done,
	})

	return &Server{
		router: router,
		server: &http.Server{
			Addr:         fmt.Sprintf(":%d", cfg.Service.Port),
			Handler:      router,
			ReadTimeout:  defaultReadTimeout,
			WriteTimeout: defaultWriteTimeout,
			IdleTimeout:  defaultIdleTimeout,
		},
		logger: log,
		cfg:    cfg,
	}
}

// Router returns the underlying Gin engine.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start serves until the server is shut down or fails.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server",
		infralogger.String("address", s.server.Addr),
		infralogger.String("version", s.cfg.Service.Version),
	)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, defaultShutdownTimeout)
	defer cancel()

	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.logger.Info("HTTP server stopped gracefully")
	return nil
}

// Run serves until SIGINT, SIGTERM or a server error, then shuts down.
func (s *Server) Run() error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		s.logger.Info("Shutdown signal received", infralogger.String("signal", sig.String()))
	}

	return s.Shutdown(context.Background())
}
