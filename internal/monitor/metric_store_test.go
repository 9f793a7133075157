package monitor

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Muhammadurasheed/genesis-os-26/internal/model"
)

func TestMetricStore_CounterConcurrency(t *testing.T) {
	store := NewMetricStore(8, zaptest.NewLogger(t))

	const workers = 16
	const perWorker = 250

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				err := store.Record("agent_execution_started", 1, map[string]string{"agent_id": "agent-1"}, model.MetricKindCounter)
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	summary := store.Summary()
	entry, ok := summary["agent_execution_started{agent_id=agent-1}"]
	require.True(t, ok)
	assert.Equal(t, float64(workers*perWorker), entry.Sum)
	assert.Equal(t, int64(workers*perWorker), entry.Count)
}

func TestMetricStore_KindMismatch(t *testing.T) {
	store := NewMetricStore(4, zaptest.NewLogger(t))

	err := store.Record("queue_depth", 3, nil, model.MetricKindCounter)
	require.NoError(t, err)

	err = store.Record("queue_depth", 5, nil, model.MetricKindGauge)
	require.ErrorIs(t, err, ErrKindMismatch)

	// The established series is untouched by the rejected write
	summary := store.Summary()
	assert.Equal(t, model.MetricKindCounter, summary["queue_depth"].Kind)
	assert.Equal(t, 3.0, summary["queue_depth"].Sum)
}

func TestMetricStore_Validation(t *testing.T) {
	store := NewMetricStore(4, zaptest.NewLogger(t))

	tests := []struct {
		name    string
		metric  string
		value   float64
		kind    model.MetricKind
		wantErr bool
	}{
		{name: "empty name", metric: "", value: 1, kind: model.MetricKindCounter, wantErr: true},
		{name: "nan value", metric: "m", value: math.NaN(), kind: model.MetricKindGauge, wantErr: true},
		{name: "infinite value", metric: "m", value: math.Inf(1), kind: model.MetricKindGauge, wantErr: true},
		{name: "negative counter", metric: "m", value: -1, kind: model.MetricKindCounter, wantErr: true},
		{name: "negative timer", metric: "m", value: -0.5, kind: model.MetricKindTimer, wantErr: true},
		{name: "unknown kind", metric: "m", value: 1, kind: model.MetricKind("histogram"), wantErr: true},
		{name: "negative gauge", metric: "temperature", value: -12.5, kind: model.MetricKindGauge, wantErr: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := store.Record(tt.metric, tt.value, nil, tt.kind)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMetric)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestMetricStore_TimerAggregates(t *testing.T) {
	store := NewMetricStore(4, zaptest.NewLogger(t))

	for _, v := range []float64{12.5, 7.5, 30} {
		require.NoError(t, store.Record("agent_response_time_ms", v, nil, model.MetricKindTimer))
	}

	entry := store.Summary()["agent_response_time_ms"]
	assert.Equal(t, int64(3), entry.Count)
	assert.Equal(t, 50.0, entry.Sum)
	assert.Equal(t, 7.5, entry.Min)
	assert.Equal(t, 30.0, entry.Max)
	assert.False(t, entry.LastUpdated.IsZero())
}

func TestMetricStore_GaugeLastWrite(t *testing.T) {
	store := NewMetricStore(4, zaptest.NewLogger(t))

	require.NoError(t, store.Record("active_connections", 5, nil, model.MetricKindGauge))
	require.NoError(t, store.Record("active_connections", 2, nil, model.MetricKindGauge))

	entry := store.Summary()["active_connections"]
	assert.Equal(t, 2.0, entry.Value)
	assert.Equal(t, int64(2), entry.Count)
}

func TestMetricStore_LabelsSeparateSeries(t *testing.T) {
	store := NewMetricStore(4, zaptest.NewLogger(t))

	require.NoError(t, store.Record("requests", 1, map[string]string{"path": "/a"}, model.MetricKindCounter))
	require.NoError(t, store.Record("requests", 1, map[string]string{"path": "/b"}, model.MetricKindCounter))
	require.NoError(t, store.Record("requests", 1, map[string]string{"path": "/a"}, model.MetricKindCounter))

	summary := store.Summary()
	assert.Equal(t, 2.0, summary["requests{path=/a}"].Sum)
	assert.Equal(t, 1.0, summary["requests{path=/b}"].Sum)
}

func TestMetricStore_SummaryReturnsCopies(t *testing.T) {
	store := NewMetricStore(4, zaptest.NewLogger(t))
	require.NoError(t, store.Record("requests", 1, map[string]string{"path": "/a"}, model.MetricKindCounter))

	first := store.Summary()
	first["requests{path=/a}"].Labels["path"] = "/mutated"

	second := store.Summary()
	assert.Equal(t, "/a", second["requests{path=/a}"].Labels["path"])
}

type observedUpdate struct {
	name  string
	kind  model.MetricKind
	value float64
}

type recordingObserver struct {
	mu      sync.Mutex
	updates []observedUpdate
}

func (o *recordingObserver) MetricRecorded(name string, kind model.MetricKind, value float64, at time.Time) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updates = append(o.updates, observedUpdate{name: name, kind: kind, value: value})
}

func TestMetricStore_ObserverHandOff(t *testing.T) {
	store := NewMetricStore(4, zaptest.NewLogger(t))
	observer := &recordingObserver{}
	store.SetObserver(observer)

	require.NoError(t, store.Record("errors", 2, nil, model.MetricKindCounter))
	require.NoError(t, store.Record("errors", 3, nil, model.MetricKindCounter))
	require.NoError(t, store.Record("latency_ms", 42, nil, model.MetricKindTimer))
	require.NoError(t, store.Record("depth", 7, nil, model.MetricKindGauge))

	// Counters hand off the running sum, timers the observed sample,
	// gauges the stored value.
	require.Len(t, observer.updates, 4)
	assert.Equal(t, observedUpdate{name: "errors", kind: model.MetricKindCounter, value: 2}, observer.updates[0])
	assert.Equal(t, observedUpdate{name: "errors", kind: model.MetricKindCounter, value: 5}, observer.updates[1])
	assert.Equal(t, observedUpdate{name: "latency_ms", kind: model.MetricKindTimer, value: 42}, observer.updates[2])
	assert.Equal(t, observedUpdate{name: "depth", kind: model.MetricKindGauge, value: 7}, observer.updates[3])
}
