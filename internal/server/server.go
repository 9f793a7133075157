package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Muhammadurasheed/genesis-os-26/internal/config"
	"github.com/Muhammadurasheed/genesis-os-26/internal/monitor"
)

const (
	serviceVersion = "1.0.0"
	apiVersion     = "v1"
)

// Server exposes the read side of the monitoring subsystem over HTTP.
// Recording stays in-process; the only write path the server owns is
// its own request instrumentation middleware.
type Server struct {
	logger  *zap.Logger
	monitor *monitor.Service
	http    *http.Server
}

// New builds the router and the underlying HTTP server
func New(cfg config.Server, svc *monitor.Service, logger *zap.Logger) *Server {
	s := &Server{
		logger:  logger.Named("http"),
		monitor: svc,
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware(cfg.AllowedOrigins))
	engine.Use(trackRequests(svc, s.logger))

	engine.GET("/", s.handleRoot)
	engine.GET("/version", s.handleVersion)

	api := engine.Group("/" + apiVersion)
	{
		monitoring := api.Group("/monitoring")
		{
			monitoring.GET("/health", s.handleHealth)
			monitoring.GET("/metrics", s.handleMetrics)
			monitoring.GET("/execution/:id", s.handleExecutionReport)
			monitoring.GET("/alerts", s.handleAlerts)
		}
	}

	s.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: engine,
	}
	return s
}

// Run serves until Shutdown is called
func (s *Server) Run() error {
	s.logger.Info("HTTP server listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server failed: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests until ctx expires
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
