package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics контейнер метрик оценки надёжности
type Metrics struct {
	// Операции
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec

	// Испытания
	TrialsTotal        *prometheus.CounterVec
	RouteLookupsTotal  *prometheus.CounterVec
	ReliabilityLast    prometheus.Gauge
	ConfidenceHalfSpan prometheus.Gauge

	// Входные данные
	TopologyNodes prometheus.Histogram
	TopologyEdges prometheus.Histogram

	// Кэш результатов
	CacheLookupsTotal *prometheus.CounterVec

	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics регистрирует метрики в prometheus.DefaultRegisterer
func InitMetrics(namespace, subsystem string) *Metrics {
	m := New(prometheus.DefaultRegisterer, namespace, subsystem)
	defaultMetrics = m
	return m
}

// New регистрирует метрики в указанном реестре
func New(reg prometheus.Registerer, namespace, subsystem string) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operations_total",
				Help:      "Total number of reliability operations",
			},
			[]string{"operation", "status"},
		),

		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "operation_duration_seconds",
				Help:      "Duration of reliability operations",
				Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"operation"},
		),

		TrialsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "trials_total",
				Help:      "Monte Carlo trials by outcome",
			},
			[]string{"outcome"},
		),

		RouteLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "route_lookups_total",
				Help:      "Route lookups served from the precomputed table or by a fresh search",
			},
			[]string{"path"},
		),

		ReliabilityLast: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reliability_probability",
				Help:      "Last estimated reliability",
			},
		),

		ConfidenceHalfSpan: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reliability_confidence_half_width",
				Help:      "Half width of the last confidence interval",
			},
		),

		TopologyNodes: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "topology_nodes",
				Help:      "Number of nodes in evaluated networks",
				Buckets:   []float64{5, 10, 20, 50, 100, 200, 500},
			},
		),

		TopologyEdges: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "topology_edges",
				Help:      "Number of edges in evaluated networks",
				Buckets:   []float64{10, 20, 50, 100, 200, 500, 1000, 5000},
			},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_lookups_total",
				Help:      "Result cache lookups",
			},
			[]string{"result"},
		),

		ServiceInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("netreliability", "")
	}
	return defaultMetrics
}

// RecordOperation записывает итог операции
func (m *Metrics) RecordOperation(operation string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.OperationsTotal.WithLabelValues(operation, status).Inc()
	m.OperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordTrials добавляет число испытаний с исходом outcome
func (m *Metrics) RecordTrials(outcome string, n int64) {
	if n > 0 {
		m.TrialsTotal.WithLabelValues(outcome).Add(float64(n))
	}
}

// RecordRoutes записывает обращения к таблице маршрутов
func (m *Metrics) RecordRoutes(hits, fallbacks int64) {
	m.RouteLookupsTotal.WithLabelValues("cached").Add(float64(hits))
	m.RouteLookupsTotal.WithLabelValues("fallback").Add(float64(fallbacks))
}

// RecordReliability записывает последнюю оценку и полуширину её интервала
func (m *Metrics) RecordReliability(probability, low, high float64) {
	m.ReliabilityLast.Set(probability)
	m.ConfidenceHalfSpan.Set((high - low) / 2)
}

// RecordTopology записывает размер сети
func (m *Metrics) RecordTopology(nodes, edges int) {
	m.TopologyNodes.Observe(float64(nodes))
	m.TopologyEdges.Observe(float64(edges))
}

// RecordCacheLookup записывает попадание или промах кэша
func (m *Metrics) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// Handler возвращает HTTP handler для /metrics
func Handler() http.Handler {
	return promhttp.Handler()
}

// StartMetricsServer отдаёт /metrics и /health до отмены ctx
func StartMetricsServer(ctx context.Context, port int) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK")) //nolint:errcheck // health endpoint
	})

	server := &http.Server{
		Addr:         ":" + strconv.Itoa(port),
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx) //nolint:errcheck // process is exiting
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
