package metrics

import (
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// RuntimeCollector отдаёт состояние рантайма в момент сбора
type RuntimeCollector struct {
	goroutines *prometheus.Desc
	heapAlloc  *prometheus.Desc
	gcRuns     *prometheus.Desc
}

// NewRuntimeCollector создаёт новый коллектор runtime метрик
func NewRuntimeCollector(namespace, subsystem string) *RuntimeCollector {
	return &RuntimeCollector{
		goroutines: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "runtime_goroutines"),
			"Number of goroutines",
			nil, nil,
		),
		heapAlloc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "runtime_heap_alloc_bytes"),
			"Heap bytes allocated and still in use",
			nil, nil,
		),
		gcRuns: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, subsystem, "runtime_gc_runs_total"),
			"Total number of completed GC cycles",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *RuntimeCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.goroutines
	ch <- c.heapAlloc
	ch <- c.gcRuns
}

// Collect implements prometheus.Collector
func (c *RuntimeCollector) Collect(ch chan<- prometheus.Metric) {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	ch <- prometheus.MustNewConstMetric(c.goroutines, prometheus.GaugeValue, float64(runtime.NumGoroutine()))
	ch <- prometheus.MustNewConstMetric(c.heapAlloc, prometheus.GaugeValue, float64(stats.HeapAlloc))
	ch <- prometheus.MustNewConstMetric(c.gcRuns, prometheus.CounterValue, float64(stats.NumGC))
}

// Timer измеряет одну операцию сервиса
type Timer struct {
	start     time.Time
	operation string
	metrics   *Metrics
}

// StartOperation запускает таймер операции. Длительность и статус
// записываются в Stop.
func (m *Metrics) StartOperation(operation string) *Timer {
	return &Timer{
		start:     time.Now(),
		operation: operation,
		metrics:   m,
	}
}

// Stop записывает операцию со статусом по err и возвращает её длительность
func (t *Timer) Stop(err error) time.Duration {
	duration := time.Since(t.start)
	t.metrics.RecordOperation(t.operation, err, duration)
	return duration
}
