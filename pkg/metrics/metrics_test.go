package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMetrics(t *testing.T) (*Metrics, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	return New(reg, "test", "reliability"), reg
}

func TestRecordOperation(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordOperation("estimate", nil, 100*time.Millisecond)
	m.RecordOperation("estimate", nil, 200*time.Millisecond)
	m.RecordOperation("sweep", errors.New("boom"), time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("estimate", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("sweep", "error")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.OperationDuration))
}

func TestRecordTrials(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordTrials("disconnected", 12)
	m.RecordTrials("disconnected", 3)
	m.RecordTrials("over_capacity", 0)

	assert.Equal(t, 15.0, testutil.ToFloat64(m.TrialsTotal.WithLabelValues("disconnected")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TrialsTotal), "zero counts do not create series")
}

func TestRecordRoutesAndReliability(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordRoutes(90, 10)
	m.RecordReliability(0.95, 0.94, 0.96)

	assert.Equal(t, 90.0, testutil.ToFloat64(m.RouteLookupsTotal.WithLabelValues("cached")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.RouteLookupsTotal.WithLabelValues("fallback")))
	assert.Equal(t, 0.95, testutil.ToFloat64(m.ReliabilityLast))
	assert.InDelta(t, 0.01, testutil.ToFloat64(m.ConfidenceHalfSpan), 1e-12)
}

func TestRecordCacheLookupAndTopology(t *testing.T) {
	m, _ := newTestMetrics(t)

	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.RecordCacheLookup(false)
	m.RecordTopology(20, 28)
	m.SetServiceInfo("1.0.0", "test")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ServiceInfo.WithLabelValues("1.0.0", "test")))
}

func TestRuntimeCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, reg.Register(NewRuntimeCollector("test", "")))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 3)
}

func TestTimer(t *testing.T) {
	m, _ := newTestMetrics(t)

	timer := m.StartOperation("grow")
	time.Sleep(5 * time.Millisecond)
	d := timer.Stop(nil)
	assert.GreaterOrEqual(t, d, 5*time.Millisecond)

	m.StartOperation("grow").Stop(errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("grow", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OperationsTotal.WithLabelValues("grow", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.OperationDuration))
}

func TestGet(t *testing.T) {
	reg := prometheus.NewRegistry()
	prometheus.DefaultRegisterer = reg
	prometheus.DefaultGatherer = reg
	defaultMetrics = nil

	m := Get()
	require.NotNil(t, m)
	assert.Same(t, m, Get())
}
