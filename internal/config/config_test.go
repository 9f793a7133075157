package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Muhammadurasheed/genesis-os-26/internal/model"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Server.Port)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 16, cfg.Monitoring.MetricShards)
	assert.Equal(t, time.Hour, cfg.Monitoring.ExecutionRetention)
	assert.Equal(t, 10000, cfg.Monitoring.ExecutionMaxRecords)
	assert.Equal(t, 24*time.Hour, cfg.Monitoring.ExecutionStaleAfter)
	assert.Equal(t, time.Hour, cfg.Monitoring.AlertWindow)
	assert.Equal(t, 5*time.Minute, cfg.Monitoring.AlertResolveAfter)
	assert.Equal(t, time.Minute, cfg.Monitoring.SweepInterval)
	assert.Empty(t, cfg.Monitoring.Rules)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  port: 9000
  allowed_origins:
    - "https://app.example.com"

monitoring:
  execution_retention: 30m
  execution_max_records: 500
  alert_rules:
    - name: request_errors
      metric: http_request_error
      comparator: ">="
      threshold: 10
      severity: warning
      resolve_after: 30s
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 30*time.Minute, cfg.Monitoring.ExecutionRetention)
	assert.Equal(t, 500, cfg.Monitoring.ExecutionMaxRecords)

	// Untouched keys keep their defaults
	assert.Equal(t, 24*time.Hour, cfg.Monitoring.ExecutionStaleAfter)

	require.Len(t, cfg.Monitoring.Rules, 1)
	rule := cfg.Monitoring.Rules[0]
	assert.Equal(t, "request_errors", rule.Name)
	assert.Equal(t, "http_request_error", rule.Metric)
	assert.Equal(t, model.ComparatorGreaterEqual, rule.Comparator)
	assert.Equal(t, 10.0, rule.Threshold)
	assert.Equal(t, model.AlertSeverityWarning, rule.Severity)
	assert.Equal(t, 30*time.Second, rule.ResolveAfter)
}
