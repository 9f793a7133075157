package model

import "time"

// MetricKind represents the aggregation behavior of a metric series
type MetricKind string

const (
	MetricKindCounter MetricKind = "counter"
	MetricKindTimer   MetricKind = "timer"
	MetricKindGauge   MetricKind = "gauge"
)

// Valid reports whether the kind is one of the known metric kinds
func (k MetricKind) Valid() bool {
	switch k {
	case MetricKindCounter, MetricKindTimer, MetricKindGauge:
		return true
	}
	return false
}

// MetricSummary is a point-in-time copy of one metric series aggregate.
// Which fields are meaningful depends on the kind: counters carry Sum,
// timers carry Count/Sum/Min/Max, gauges carry Value.
type MetricSummary struct {
	Name        string            `json:"name"`
	Labels      map[string]string `json:"labels,omitempty"`
	Kind        MetricKind        `json:"kind"`
	Count       int64             `json:"count,omitempty"`
	Sum         float64           `json:"sum,omitempty"`
	Min         float64           `json:"min,omitempty"`
	Max         float64           `json:"max,omitempty"`
	Value       float64           `json:"value,omitempty"`
	LastUpdated time.Time         `json:"last_updated"`
}
