package monitor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Muhammadurasheed/genesis-os-26/internal/model"
)

// ruleState carries one rule plus its alert bookkeeping. At most one
// unresolved alert exists per rule; re-triggering updates it in place.
type ruleState struct {
	rule model.AlertRule

	mu          sync.Mutex
	active      *model.Alert
	resolved    []model.Alert
	lastCrossed time.Time
}

// AlertEngine evaluates a fixed rule set against metric updates. Rules
// are indexed by metric name at construction and the index is never
// mutated afterwards, so the hot write path reads it without locking
// and evaluation is O(rules bound to that metric).
type AlertEngine struct {
	logger        *zap.Logger
	rulesByMetric map[string][]*ruleState
	states        []*ruleState
}

// NewAlertEngine creates an alert engine for the given rule set.
// Rules without a ResolveAfter inherit defaultResolveAfter.
func NewAlertEngine(rules []model.AlertRule, defaultResolveAfter time.Duration, logger *zap.Logger) (*AlertEngine, error) {
	if defaultResolveAfter <= 0 {
		defaultResolveAfter = 5 * time.Minute
	}

	engine := &AlertEngine{
		logger:        logger.Named("alert-engine"),
		rulesByMetric: make(map[string][]*ruleState),
	}
	for _, rule := range rules {
		if rule.Name == "" || rule.Metric == "" {
			return nil, fmt.Errorf("alert rule %q: name and metric are required", rule.Name)
		}
		if !rule.Comparator.Valid() {
			return nil, fmt.Errorf("alert rule %q: unknown comparator %q", rule.Name, rule.Comparator)
		}
		if rule.ResolveAfter <= 0 {
			rule.ResolveAfter = defaultResolveAfter
		}
		state := &ruleState{rule: rule}
		engine.states = append(engine.states, state)
		engine.rulesByMetric[rule.Metric] = append(engine.rulesByMetric[rule.Metric], state)
	}
	return engine, nil
}

// MetricRecorded implements the synchronous hand-off from the metric
// store. A crossing creates or refreshes the rule's unresolved alert;
// a false evaluation resolves it.
func (e *AlertEngine) MetricRecorded(name string, kind model.MetricKind, value float64, at time.Time) {
	states := e.rulesByMetric[name]
	if len(states) == 0 {
		return
	}

	for _, rs := range states {
		rs.mu.Lock()
		crossed := rs.rule.Comparator.Compare(value, rs.rule.Threshold)
		switch {
		case crossed && rs.active == nil:
			rs.lastCrossed = at
			rs.active = &model.Alert{
				ID:        uuid.New().String(),
				RuleName:  rs.rule.Name,
				Severity:  rs.rule.Severity,
				Message:   alertMessage(rs.rule, value),
				Metric:    name,
				Value:     value,
				Timestamp: at,
			}
			e.logger.Info("Alert triggered",
				zap.String("id", rs.active.ID),
				zap.String("rule", rs.rule.Name),
				zap.String("metric", name),
				zap.Float64("value", value),
				zap.String("severity", string(rs.rule.Severity)))
		case crossed:
			rs.lastCrossed = at
			rs.active.Timestamp = at
			rs.active.Value = value
			rs.active.Message = alertMessage(rs.rule, value)
		case rs.active != nil:
			e.resolveLocked(rs, at)
		}
		rs.mu.Unlock()
	}
}

// ResolveQuiet resolves unresolved alerts whose rule has not crossed
// its threshold within the rule's quiet period. This is the only way a
// monotonic counter alert can clear.
func (e *AlertEngine) ResolveQuiet(now time.Time) {
	for _, rs := range e.states {
		rs.mu.Lock()
		if rs.active != nil && now.Sub(rs.lastCrossed) > rs.rule.ResolveAfter {
			e.resolveLocked(rs, now)
		}
		rs.mu.Unlock()
	}
}

// resolveLocked finalizes the rule's active alert. Caller holds rs.mu.
func (e *AlertEngine) resolveLocked(rs *ruleState, at time.Time) {
	alert := rs.active
	resolvedAt := at
	alert.Resolved = true
	alert.ResolvedAt = &resolvedAt
	rs.resolved = append(rs.resolved, *alert)
	rs.active = nil

	e.logger.Info("Alert resolved",
		zap.String("id", alert.ID),
		zap.String("rule", rs.rule.Name),
		zap.Time("resolved_at", resolvedAt))
}

// ActiveAlerts returns copies of unresolved alerts triggered within
// window of now, newest first.
func (e *AlertEngine) ActiveAlerts(window time.Duration) []model.Alert {
	cutoff := time.Now().Add(-window)

	alerts := make([]model.Alert, 0)
	for _, rs := range e.states {
		rs.mu.Lock()
		if rs.active != nil && rs.active.Timestamp.After(cutoff) {
			alerts = append(alerts, *rs.active)
		}
		rs.mu.Unlock()
	}
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})
	return alerts
}

// Alerts returns copies of every alert the engine has created,
// resolved ones included, newest first.
func (e *AlertEngine) Alerts() []model.Alert {
	alerts := make([]model.Alert, 0)
	for _, rs := range e.states {
		rs.mu.Lock()
		alerts = append(alerts, rs.resolved...)
		if rs.active != nil {
			alerts = append(alerts, *rs.active)
		}
		rs.mu.Unlock()
	}
	sort.Slice(alerts, func(i, j int) bool {
		return alerts[i].Timestamp.After(alerts[j].Timestamp)
	})
	return alerts
}

func alertMessage(rule model.AlertRule, value float64) string {
	return fmt.Sprintf("metric %s value %.2f %s threshold %.2f",
		rule.Metric, value, rule.Comparator, rule.Threshold)
}
