package monitor

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Muhammadurasheed/genesis-os-26/internal/model"
)

// executionRecord is the mutable per-execution state. The shard map
// holds the pointer; all fields are guarded by mu.
type executionRecord struct {
	mu           sync.Mutex
	id           string
	metadata     map[string]interface{}
	status       model.ExecutionStatus
	startedAt    time.Time
	completedAt  *time.Time
	errorMessage string
	calls        []model.FunctionCall
}

type executionShard struct {
	mu      sync.RWMutex
	records map[string]*executionRecord
}

// TrackerConfig holds the retention tunables of the execution tracker
type TrackerConfig struct {
	Shards     int
	Retention  time.Duration
	MaxRecords int
	StaleAfter time.Duration
}

// ExecutionTracker owns the lifecycle records of tracked executions.
// Start is the only recording operation that surfaces errors; call and
// end updates are best-effort and route failures to a diagnostic log
// so instrumentation can never break the instrumented path.
type ExecutionTracker struct {
	logger     *zap.Logger
	shards     []*executionShard
	retention  time.Duration
	maxRecords int
	staleAfter time.Duration

	retained atomic.Int64
	dropped  atomic.Int64
}

// NewExecutionTracker creates an execution tracker
func NewExecutionTracker(cfg TrackerConfig, logger *zap.Logger) *ExecutionTracker {
	if cfg.Shards < 1 {
		cfg.Shards = 1
	}
	if cfg.Retention <= 0 {
		cfg.Retention = time.Hour
	}
	if cfg.MaxRecords <= 0 {
		cfg.MaxRecords = 10000
	}
	if cfg.StaleAfter <= 0 {
		cfg.StaleAfter = 24 * time.Hour
	}

	shards := make([]*executionShard, cfg.Shards)
	for i := range shards {
		shards[i] = &executionShard{records: make(map[string]*executionRecord)}
	}
	return &ExecutionTracker{
		logger:     logger.Named("execution-tracker"),
		shards:     shards,
		retention:  cfg.Retention,
		maxRecords: cfg.MaxRecords,
		staleAfter: cfg.StaleAfter,
	}
}

func (t *ExecutionTracker) shardFor(id string) *executionShard {
	return t.shards[fnvIndex(id, len(t.shards))]
}

// Start creates a record in running state. The id must be unique among
// retained records; collisions are rejected.
func (t *ExecutionTracker) Start(id string, metadata map[string]interface{}) error {
	if id == "" {
		return fmt.Errorf("%w: empty execution id", ErrInvalidExecution)
	}

	shard := t.shardFor(id)
	now := time.Now()

	// Opportunistic eviction keeps the hot path bounded without
	// waiting for the periodic sweep.
	t.evictShardExpired(shard, now)

	metaCopy := make(map[string]interface{}, len(metadata))
	for k, v := range metadata {
		metaCopy[k] = v
	}

	shard.mu.Lock()
	defer shard.mu.Unlock()

	if _, ok := shard.records[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateExecution, id)
	}
	shard.records[id] = &executionRecord{
		id:        id,
		metadata:  metaCopy,
		status:    model.ExecutionStatusRunning,
		startedAt: now,
	}
	t.retained.Add(1)
	return nil
}

// RecordCall appends a function call record to the execution. Unknown
// or already finalized ids are discarded, never surfaced.
func (t *ExecutionTracker) RecordCall(id, name string, durationMS float64, success bool) {
	rec := t.lookup(id)
	if rec == nil {
		t.discard("record_function_call", id, "unknown execution")
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.status.Terminal() {
		t.discard("record_function_call", id, "execution already finalized")
		return
	}
	rec.calls = append(rec.calls, model.FunctionCall{
		Name:       name,
		DurationMS: durationMS,
		Success:    success,
		RecordedAt: time.Now(),
	})
}

// End finalizes the execution. Status must be completed or error, and
// an error status requires a message; violations are discarded like
// unknown ids.
func (t *ExecutionTracker) End(id string, status model.ExecutionStatus, errorMessage string) {
	if !status.Terminal() {
		t.discard("end_execution", id, fmt.Sprintf("non-terminal status %q", status))
		return
	}
	if status == model.ExecutionStatusError && errorMessage == "" {
		t.discard("end_execution", id, "error status without message")
		return
	}

	rec := t.lookup(id)
	if rec == nil {
		t.discard("end_execution", id, "unknown execution")
		return
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	if rec.status.Terminal() {
		t.discard("end_execution", id, "execution already finalized")
		return
	}
	now := time.Now()
	rec.status = status
	rec.completedAt = &now
	if status == model.ExecutionStatusError {
		rec.errorMessage = errorMessage
	}
}

// Report returns a copy of the full execution record
func (t *ExecutionTracker) Report(id string) (*model.ExecutionReport, error) {
	rec := t.lookup(id)
	if rec == nil {
		return nil, fmt.Errorf("%w: %s", ErrExecutionNotFound, id)
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()

	meta := make(map[string]interface{}, len(rec.metadata))
	for k, v := range rec.metadata {
		meta[k] = v
	}
	calls := make([]model.FunctionCall, len(rec.calls))
	copy(calls, rec.calls)

	report := &model.ExecutionReport{
		ExecutionID:  rec.id,
		Metadata:     meta,
		Status:       rec.status,
		StartedAt:    rec.startedAt,
		ErrorMessage: rec.errorMessage,
		Calls:        calls,
	}
	if rec.completedAt != nil {
		end := *rec.completedAt
		report.CompletedAt = &end
		report.DurationMS = float64(end.Sub(rec.startedAt)) / float64(time.Millisecond)
	} else {
		report.DurationMS = float64(time.Since(rec.startedAt)) / float64(time.Millisecond)
	}
	return report, nil
}

// Counts returns per-status counts of all retained executions
func (t *ExecutionTracker) Counts() model.ExecutionCounts {
	var counts model.ExecutionCounts
	for _, shard := range t.shards {
		shard.mu.RLock()
		records := make([]*executionRecord, 0, len(shard.records))
		for _, rec := range shard.records {
			records = append(records, rec)
		}
		shard.mu.RUnlock()

		for _, rec := range records {
			rec.mu.Lock()
			switch rec.status {
			case model.ExecutionStatusRunning:
				counts.Running++
			case model.ExecutionStatusCompleted:
				counts.Completed++
			case model.ExecutionStatusError:
				counts.Error++
			}
			rec.mu.Unlock()
		}
	}
	return counts
}

// DiscardedUpdates returns how many best-effort updates were dropped
func (t *ExecutionTracker) DiscardedUpdates() int64 {
	return t.dropped.Load()
}

// Sweep applies the full retention policy: terminal records older than
// the retention window are evicted, the retained count is capped by
// evicting the oldest terminal records, and running records past the
// staleness ceiling are force-terminated as errors.
func (t *ExecutionTracker) Sweep(now time.Time) {
	t.terminateStale(now)
	for _, shard := range t.shards {
		t.evictShardExpired(shard, now)
	}
	t.enforceLimit()
}

func (t *ExecutionTracker) lookup(id string) *executionRecord {
	shard := t.shardFor(id)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	return shard.records[id]
}

func (t *ExecutionTracker) discard(op, id, reason string) {
	t.dropped.Add(1)
	t.logger.Warn("Discarded instrumentation update",
		zap.String("operation", op),
		zap.String("execution_id", id),
		zap.String("reason", reason))
}

// evictShardExpired removes terminal records whose completion is older
// than the retention window. Running records are exempt.
func (t *ExecutionTracker) evictShardExpired(shard *executionShard, now time.Time) {
	cutoff := now.Add(-t.retention)

	shard.mu.Lock()
	defer shard.mu.Unlock()

	for id, rec := range shard.records {
		rec.mu.Lock()
		expired := rec.status.Terminal() && rec.completedAt != nil && rec.completedAt.Before(cutoff)
		rec.mu.Unlock()
		if expired {
			delete(shard.records, id)
			t.retained.Add(-1)
		}
	}
}

// terminateStale force-terminates running records older than the
// staleness ceiling so abandoned executions cannot pin memory forever.
func (t *ExecutionTracker) terminateStale(now time.Time) {
	cutoff := now.Add(-t.staleAfter)

	for _, shard := range t.shards {
		shard.mu.RLock()
		records := make([]*executionRecord, 0, len(shard.records))
		for _, rec := range shard.records {
			records = append(records, rec)
		}
		shard.mu.RUnlock()

		for _, rec := range records {
			rec.mu.Lock()
			if rec.status == model.ExecutionStatusRunning && rec.startedAt.Before(cutoff) {
				end := now
				rec.status = model.ExecutionStatusError
				rec.completedAt = &end
				rec.errorMessage = "stale execution force-terminated after exceeding staleness ceiling"
				t.logger.Warn("Force-terminated stale execution",
					zap.String("execution_id", rec.id),
					zap.Time("started_at", rec.startedAt))
			}
			rec.mu.Unlock()
		}
	}
}

// enforceLimit evicts the oldest terminal records until the retained
// count fits the configured maximum.
func (t *ExecutionTracker) enforceLimit() {
	excess := int(t.retained.Load()) - t.maxRecords
	if excess <= 0 {
		return
	}

	type candidate struct {
		shard       *executionShard
		id          string
		completedAt time.Time
	}
	var candidates []candidate

	for _, shard := range t.shards {
		shard.mu.RLock()
		for id, rec := range shard.records {
			rec.mu.Lock()
			if rec.status.Terminal() && rec.completedAt != nil {
				candidates = append(candidates, candidate{shard: shard, id: id, completedAt: *rec.completedAt})
			}
			rec.mu.Unlock()
		}
		shard.mu.RUnlock()
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].completedAt.Before(candidates[j].completedAt)
	})
	if excess > len(candidates) {
		excess = len(candidates)
	}

	for _, c := range candidates[:excess] {
		c.shard.mu.Lock()
		if _, ok := c.shard.records[c.id]; ok {
			delete(c.shard.records, c.id)
			t.retained.Add(-1)
		}
		c.shard.mu.Unlock()
	}
}
