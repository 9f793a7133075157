package model

import "time"

// AlertSeverity represents the severity level of an alert
type AlertSeverity string

const (
	AlertSeverityInfo     AlertSeverity = "info"
	AlertSeverityWarning  AlertSeverity = "warning"
	AlertSeverityError    AlertSeverity = "error"
	AlertSeverityCritical AlertSeverity = "critical"
)

// Comparator represents the comparison applied between a metric value
// and a rule threshold
type Comparator string

const (
	ComparatorGreater      Comparator = ">"
	ComparatorGreaterEqual Comparator = ">="
	ComparatorLess         Comparator = "<"
	ComparatorLessEqual    Comparator = "<="
	ComparatorEqual        Comparator = "=="
)

// Valid reports whether the comparator is one of the known operators
func (c Comparator) Valid() bool {
	switch c {
	case ComparatorGreater, ComparatorGreaterEqual, ComparatorLess, ComparatorLessEqual, ComparatorEqual:
		return true
	}
	return false
}

// Compare evaluates value against threshold
func (c Comparator) Compare(value, threshold float64) bool {
	switch c {
	case ComparatorGreater:
		return value > threshold
	case ComparatorGreaterEqual:
		return value >= threshold
	case ComparatorLess:
		return value < threshold
	case ComparatorLessEqual:
		return value <= threshold
	case ComparatorEqual:
		return value == threshold
	}
	return false
}

// AlertRule defines a threshold condition over one metric name.
// ResolveAfter is the quiet period after which an unresolved alert is
// resolved when the condition has not been crossed again; monotonic
// counters can only decay this way.
type AlertRule struct {
	Name         string        `json:"name"`
	Metric       string        `json:"metric"`
	Comparator   Comparator    `json:"comparator"`
	Threshold    float64       `json:"threshold"`
	Severity     AlertSeverity `json:"severity"`
	ResolveAfter time.Duration `json:"resolve_after,omitempty"`
}

// Alert represents a threshold crossing derived from recorded metrics
type Alert struct {
	ID         string        `json:"id"`
	RuleName   string        `json:"rule_name"`
	Severity   AlertSeverity `json:"severity"`
	Message    string        `json:"message"`
	Metric     string        `json:"triggering_metric"`
	Value      float64       `json:"value"`
	Timestamp  time.Time     `json:"timestamp"`
	Resolved   bool          `json:"resolved"`
	ResolvedAt *time.Time    `json:"resolved_at,omitempty"`
}
