package monitor

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/Muhammadurasheed/genesis-os-26/internal/model"
)

// GetSystemHealth composes a point-in-time snapshot from the metric
// store, execution tracker and alert engine. Overall status is error
// when any active alert is critical, degraded when any active alert
// exists, healthy otherwise. Pure read: no mutation.
func (s *Service) GetSystemHealth() model.HealthSnapshot {
	alerts := s.alerts.ActiveAlerts(s.cfg.AlertWindow)

	status := model.HealthStatusHealthy
	for _, alert := range alerts {
		if alert.Severity == model.AlertSeverityCritical {
			status = model.HealthStatusError
			break
		}
		status = model.HealthStatusDegraded
	}

	return model.HealthSnapshot{
		Status:       status,
		GeneratedAt:  time.Now(),
		Executions:   s.executions.Counts(),
		ActiveAlerts: alerts,
		Metrics:      s.metrics.Summary(),
		System:       s.systemUsage(),
	}
}

// systemUsage samples host CPU and memory utilization. Sampling errors
// degrade to zero values; the snapshot must never fail or block on
// them.
func (s *Service) systemUsage() model.SystemUsage {
	var usage model.SystemUsage

	// Interval 0 reports usage since the previous call without blocking.
	percents, err := cpu.Percent(0, false)
	if err != nil {
		s.logger.Warn("Failed to sample CPU usage", zap.Error(err))
	} else if len(percents) > 0 {
		usage.CPUPercent = percents[0]
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		s.logger.Warn("Failed to sample memory usage", zap.Error(err))
	} else {
		usage.MemoryPercent = memInfo.UsedPercent
	}
	return usage
}
