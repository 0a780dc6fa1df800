package monitoring

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsIndependentRegistries(t *testing.T) {
	// Two collectors must not collide on registration.
	a := NewMetrics("tracer")
	b := NewMetrics("tracer")

	a.NodeRecorded("aten::add")

	assert.Equal(t, 1.0, testutil.ToFloat64(a.NodesRecorded.WithLabelValues("aten::add")))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.NodesRecorded.WithLabelValues("aten::add")))
}

func TestTraceLifecycle(t *testing.T) {
	m := NewMetrics("")

	m.TraceStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ActiveTraces))

	m.TraceFinished("positional", 5*time.Millisecond, nil)
	m.TraceStarted()
	m.TraceFinished("keyed", time.Millisecond, errors.New("boom"))

	assert.Equal(t, 0.0, testutil.ToFloat64(m.ActiveTraces))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TracesTotal.WithLabelValues("positional", StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TracesTotal.WithLabelValues("keyed", StatusError)))

	snap := m.GetSnapshot()
	assert.Equal(t, int64(2), snap.Traces)
	assert.Equal(t, int64(1), snap.FailedTraces)
	assert.Equal(t, 6*time.Millisecond, snap.TotalTime)
}

func TestCounters(t *testing.T) {
	m := NewMetrics("jit")

	m.ForeignCallRecorded()
	m.WarningEmitted()
	m.WarningEmitted()

	snap := m.GetSnapshot()
	assert.Equal(t, int64(1), snap.ForeignCalls)
	assert.Equal(t, int64(2), snap.Warnings)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "jit_warnings_total")
	assert.Contains(t, names, "jit_foreign_calls_total")
}
