package server

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Muhammadurasheed/genesis-os-26/internal/model"
	"github.com/Muhammadurasheed/genesis-os-26/internal/monitor"
)

// corsMiddleware configures cross-origin access for the monitoring
// surface. A single "*" origin allows everything without credentials;
// an explicit list allows credentialed requests.
func corsMiddleware(origins []string) gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization")
	cfg.ExposeHeaders = []string{"Content-Type", "Authorization"}

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cors.New(cfg)
}

// trackRequests instruments every HTTP request as a tracked execution:
// a req-<uuid> record with method/path metadata, request counter and
// latency timer metrics, and a terminal status derived from the
// response code.
func trackRequests(svc *monitor.Service, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		execID := "req-" + uuid.New().String()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		start := time.Now()
		err := svc.StartExecution(execID, map[string]interface{}{
			"method":    c.Request.Method,
			"path":      path,
			"client_ip": c.ClientIP(),
		})
		if err != nil {
			logger.Warn("Failed to start request tracking",
				zap.String("execution_id", execID),
				zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-Execution-ID", execID)

		c.Next()

		durationMS := float64(time.Since(start)) / float64(time.Millisecond)
		status := c.Writer.Status()
		labels := map[string]string{
			"method": c.Request.Method,
			"path":   path,
			"status": strconv.Itoa(status),
		}

		recordMetric(svc, logger, "http_requests_total", 1, labels, model.MetricKindCounter)
		recordMetric(svc, logger, "http_request_duration_ms", durationMS, map[string]string{
			"method": c.Request.Method,
			"path":   path,
		}, model.MetricKindTimer)

		if status >= 500 || len(c.Errors) > 0 {
			recordMetric(svc, logger, "http_request_error", 1, labels, model.MetricKindCounter)
			message := fmt.Sprintf("request failed with status %d", status)
			if len(c.Errors) > 0 {
				message = c.Errors.String()
			}
			svc.EndExecution(execID, model.ExecutionStatusError, message)
			return
		}
		svc.EndExecution(execID, model.ExecutionStatusCompleted, "")
	}
}

// recordMetric logs instead of failing; instrumentation must not
// interfere with serving the request.
func recordMetric(svc *monitor.Service, logger *zap.Logger, name string, value float64, labels map[string]string, kind model.MetricKind) {
	if err := svc.RecordMetric(name, value, labels, kind); err != nil {
		logger.Warn("Failed to record request metric",
			zap.String("metric", name),
			zap.Error(err))
	}
}
