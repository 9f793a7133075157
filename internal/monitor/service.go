package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Muhammadurasheed/genesis-os-26/internal/config"
	"github.com/Muhammadurasheed/genesis-os-26/internal/model"
)

// Service is the observability subsystem handed to the request-handling
// layer: one instance per process, constructed at startup and passed by
// reference. It composes the metric store, execution tracker and alert
// engine and runs their retention sweeps.
type Service struct {
	logger     *zap.Logger
	cfg        config.Monitoring
	metrics    *MetricStore
	executions *ExecutionTracker
	alerts     *AlertEngine
	cron       *cron.Cron
}

// cronLogger adapts zap.Logger to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err))
}

// NewService wires the subsystem from configuration. The alert engine
// is registered as the metric store's synchronous observer.
func NewService(cfg config.Monitoring, logger *zap.Logger) (*Service, error) {
	metrics := NewMetricStore(cfg.MetricShards, logger)
	executions := NewExecutionTracker(TrackerConfig{
		Shards:     cfg.ExecutionShards,
		Retention:  cfg.ExecutionRetention,
		MaxRecords: cfg.ExecutionMaxRecords,
		StaleAfter: cfg.ExecutionStaleAfter,
	}, logger)

	alerts, err := NewAlertEngine(cfg.Rules, cfg.AlertResolveAfter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create alert engine: %w", err)
	}
	metrics.SetObserver(alerts)

	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.AlertWindow <= 0 {
		cfg.AlertWindow = time.Hour
	}

	adapter := &cronLogger{logger: logger.Named("cron")}
	return &Service{
		logger:     logger.Named("monitoring"),
		cfg:        cfg,
		metrics:    metrics,
		executions: executions,
		alerts:     alerts,
		cron:       cron.New(cron.WithChain(cron.Recover(adapter))),
	}, nil
}

// Start launches the background retention sweep
func (s *Service) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.cfg.SweepInterval)
	if _, err := s.cron.AddFunc(spec, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule sweep: %w", err)
	}
	s.cron.Start()

	s.logger.Info("Monitoring service started",
		zap.Duration("sweep_interval", s.cfg.SweepInterval),
		zap.Int("alert_rules", len(s.cfg.Rules)))
	return nil
}

// Stop halts the background sweep and waits for a running one to finish
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Monitoring service stopped")
}

// sweep applies execution retention and alert quiet-period resolution
func (s *Service) sweep() {
	now := time.Now()
	s.executions.Sweep(now)
	s.alerts.ResolveQuiet(now)
}

// StartExecution creates a running execution record for id
func (s *Service) StartExecution(id string, metadata map[string]interface{}) error {
	return s.executions.Start(id, metadata)
}

// RecordFunctionCall appends a timed sub-call to the execution's log.
// Best-effort: never errors observably.
func (s *Service) RecordFunctionCall(id, name string, durationMS float64, success bool) {
	s.executions.RecordCall(id, name, durationMS, success)
}

// EndExecution finalizes the execution as completed or error.
// Best-effort: never errors observably.
func (s *Service) EndExecution(id string, status model.ExecutionStatus, errorMessage string) {
	s.executions.End(id, status, errorMessage)
}

// RecordMetric updates a metric series and synchronously hands the new
// aggregate to the alert engine
func (s *Service) RecordMetric(name string, value float64, labels map[string]string, kind model.MetricKind) error {
	return s.metrics.Record(name, value, labels, kind)
}

// GetMetricsSummary returns a snapshot of every known metric series
func (s *Service) GetMetricsSummary() map[string]model.MetricSummary {
	return s.metrics.Summary()
}

// GetPerformanceReport returns the full record for one execution
func (s *Service) GetPerformanceReport(id string) (*model.ExecutionReport, error) {
	return s.executions.Report(id)
}

// ListActiveAlerts returns unresolved alerts triggered within window of
// now, newest first. A non-positive window falls back to the configured
// default.
func (s *Service) ListActiveAlerts(window time.Duration) []model.Alert {
	if window <= 0 {
		window = s.cfg.AlertWindow
	}
	return s.alerts.ActiveAlerts(window)
}
