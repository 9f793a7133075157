package monitor

import (
	"fmt"
	"hash/fnv"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Muhammadurasheed/genesis-os-26/internal/model"
)

// metricObserver is notified synchronously after every successful metric
// update with the value used for threshold evaluation: the running sum
// for counters, the observed sample for timers, the stored value for
// gauges.
type metricObserver interface {
	MetricRecorded(name string, kind model.MetricKind, value float64, at time.Time)
}

// metricEntry holds the running aggregate for one (name, label-set) key.
// All mutable fields are guarded by mu so that unrelated keys never
// contend on a shared lock.
type metricEntry struct {
	mu     sync.Mutex
	name   string
	labels map[string]string
	kind   model.MetricKind

	count       int64
	sum         float64
	min         float64
	max         float64
	value       float64
	lastUpdated time.Time
}

type metricShard struct {
	mu      sync.RWMutex
	entries map[string]*metricEntry
}

// MetricStore aggregates named, labeled numeric series. Keys are
// partitioned across a fixed number of shards, each entry carries its
// own lock, so writers on different keys proceed in parallel.
type MetricStore struct {
	logger   *zap.Logger
	shards   []*metricShard
	observer metricObserver
}

// NewMetricStore creates a metric store with the given shard count
func NewMetricStore(shardCount int, logger *zap.Logger) *MetricStore {
	if shardCount < 1 {
		shardCount = 1
	}
	shards := make([]*metricShard, shardCount)
	for i := range shards {
		shards[i] = &metricShard{entries: make(map[string]*metricEntry)}
	}
	return &MetricStore{
		logger: logger.Named("metric-store"),
		shards: shards,
	}
}

// SetObserver wires the synchronous per-update observer. Must be called
// during construction, before any writer runs.
func (s *MetricStore) SetObserver(o metricObserver) {
	s.observer = o
}

// metricKey builds the canonical series key: the metric name followed
// by the label set in sorted order.
func metricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}

// fnvIndex maps a key onto one of n shards
func fnvIndex(key string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(n))
}

func (s *MetricStore) shardFor(key string) *metricShard {
	return s.shards[fnvIndex(key, len(s.shards))]
}

// entry returns the series entry for key, creating it with the caller's
// kind on first use.
func (s *MetricStore) entry(key, name string, labels map[string]string, kind model.MetricKind) *metricEntry {
	shard := s.shardFor(key)

	shard.mu.RLock()
	e, ok := shard.entries[key]
	shard.mu.RUnlock()
	if ok {
		return e
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()
	if e, ok = shard.entries[key]; ok {
		return e
	}

	labelsCopy := make(map[string]string, len(labels))
	for k, v := range labels {
		labelsCopy[k] = v
	}
	e = &metricEntry{
		name:   name,
		labels: labelsCopy,
		kind:   kind,
	}
	shard.entries[key] = e

	s.logger.Debug("New metric series",
		zap.String("key", key),
		zap.String("kind", string(kind)))

	return e
}

// Record updates the series identified by (name, labels) with value.
// Counter and timer values must be >= 0; a key keeps the kind it was
// first recorded with for its lifetime.
func (s *MetricStore) Record(name string, value float64, labels map[string]string, kind model.MetricKind) error {
	if name == "" {
		return fmt.Errorf("%w: empty metric name", ErrInvalidMetric)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: non-finite value for %q", ErrInvalidMetric, name)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unknown kind %q for %q", ErrInvalidMetric, kind, name)
	}
	if (kind == model.MetricKindCounter || kind == model.MetricKindTimer) && value < 0 {
		return fmt.Errorf("%w: negative value %.2f for %s %q", ErrInvalidMetric, value, kind, name)
	}

	key := metricKey(name, labels)
	e := s.entry(key, name, labels, kind)
	now := time.Now()

	e.mu.Lock()
	if e.kind != kind {
		established := e.kind
		e.mu.Unlock()
		return fmt.Errorf("%w: %q recorded as %s, established as %s", ErrKindMismatch, key, kind, established)
	}

	var current float64
	switch kind {
	case model.MetricKindCounter:
		e.count++
		e.sum += value
		current = e.sum
	case model.MetricKindTimer:
		e.count++
		e.sum += value
		if e.count == 1 || value < e.min {
			e.min = value
		}
		if e.count == 1 || value > e.max {
			e.max = value
		}
		current = value
	case model.MetricKindGauge:
		e.count++
		e.value = value
		current = value
	}
	e.lastUpdated = now
	e.mu.Unlock()

	if s.observer != nil {
		s.observer.MetricRecorded(name, kind, current, now)
	}
	return nil
}

// Summary returns a snapshot of every known series. Each entry is
// locked only for the duration of copying it; the view is per-key
// atomic, not globally consistent.
func (s *MetricStore) Summary() map[string]model.MetricSummary {
	out := make(map[string]model.MetricSummary)

	for _, shard := range s.shards {
		shard.mu.RLock()
		keys := make([]string, 0, len(shard.entries))
		entries := make([]*metricEntry, 0, len(shard.entries))
		for k, e := range shard.entries {
			keys = append(keys, k)
			entries = append(entries, e)
		}
		shard.mu.RUnlock()

		for i, e := range entries {
			out[keys[i]] = e.snapshot()
		}
	}
	return out
}

func (e *metricEntry) snapshot() model.MetricSummary {
	e.mu.Lock()
	defer e.mu.Unlock()

	labels := make(map[string]string, len(e.labels))
	for k, v := range e.labels {
		labels[k] = v
	}

	summary := model.MetricSummary{
		Name:        e.name,
		Labels:      labels,
		Kind:        e.kind,
		LastUpdated: e.lastUpdated,
	}
	switch e.kind {
	case model.MetricKindCounter:
		summary.Count = e.count
		summary.Sum = e.sum
	case model.MetricKindTimer:
		summary.Count = e.count
		summary.Sum = e.sum
		summary.Min = e.min
		summary.Max = e.max
	case model.MetricKindGauge:
		summary.Count = e.count
		summary.Value = e.value
	}
	return summary
}
