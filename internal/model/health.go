package model

import "time"

// HealthStatus represents the overall derived system status
type HealthStatus string

const (
	HealthStatusHealthy  HealthStatus = "healthy"
	HealthStatusDegraded HealthStatus = "degraded"
	HealthStatusError    HealthStatus = "error"
)

// ExecutionCounts holds per-status counts of retained executions
type ExecutionCounts struct {
	Running   int `json:"running"`
	Completed int `json:"completed"`
	Error     int `json:"error"`
}

// SystemUsage holds host-level resource usage sampled for the snapshot
type SystemUsage struct {
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent"`
}

// HealthSnapshot is a point-in-time composite view of metrics,
// execution counts and active alerts
type HealthSnapshot struct {
	Status       HealthStatus             `json:"status"`
	GeneratedAt  time.Time                `json:"generated_at"`
	Executions   ExecutionCounts          `json:"executions"`
	ActiveAlerts []Alert                  `json:"active_alerts"`
	Metrics      map[string]MetricSummary `json:"metrics"`
	System       SystemUsage              `json:"system"`
}
