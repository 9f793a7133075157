package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Muhammadurasheed/genesis-os-26/internal/monitor"
)

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "GenesisOS Agent Service is running",
		"version": serviceVersion,
	})
}

func (s *Server) handleVersion(c *gin.Context) {
	build := os.Getenv("BUILD_VERSION")
	if build == "" {
		build = "development"
	}
	c.JSON(http.StatusOK, gin.H{
		"version": apiVersion,
		"build":   build,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"health":    s.monitor.GetSystemHealth(),
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleMetrics(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"metrics":   s.monitor.GetMetricsSummary(),
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleExecutionReport(c *gin.Context) {
	id := c.Param("id")

	report, err := s.monitor.GetPerformanceReport(id)
	if err != nil {
		if errors.Is(err, monitor.ErrExecutionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   fmt.Sprintf("Execution %s not found", id),
				"success": false,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   fmt.Sprintf("Report generation failed: %v", err),
			"success": false,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"report":    report,
		"timestamp": time.Now().Unix(),
	})
}

func (s *Server) handleAlerts(c *gin.Context) {
	window := time.Hour
	if raw := c.Query("window_seconds"); raw != "" {
		seconds, err := strconv.ParseFloat(raw, 64)
		if err != nil || seconds <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   fmt.Sprintf("Invalid window_seconds: %q", raw),
				"success": false,
			})
			return
		}
		window = time.Duration(seconds * float64(time.Second))
	}

	alerts := s.monitor.ListActiveAlerts(window)
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"alerts":    alerts,
		"count":     len(alerts),
		"timestamp": time.Now().Unix(),
	})
}
