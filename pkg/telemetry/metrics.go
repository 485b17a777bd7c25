package telemetry

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the bridge.
// Every method is safe on a nil or disabled Metrics.
type Metrics struct {
	config MetricsConfig

	// Commit metrics
	commits        *prometheus.CounterVec
	commitDuration *prometheus.HistogramVec
	committed      *prometheus.GaugeVec

	// Instance metrics
	instances *prometheus.CounterVec

	// Render metrics
	rendersDiscarded *prometheus.CounterVec

	// Error metrics
	errorsByClass *prometheus.CounterVec
	errorsByCode  *prometheus.CounterVec

	// Root metrics
	activeRoots   prometheus.Gauge
	finalizations prometheus.Counter

	registry *prometheus.Registry
	server   *http.Server
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		// Return a no-op metrics instance
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.CommitBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		commits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "commits_total",
				Help:      "Total number of commits applied to engine instances",
			},
			[]string{"status"},
		),
		commitDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "commit_duration_seconds",
				Help:      "Duration of flatten, classify and apply in seconds",
				Buckets:   buckets,
			},
			[]string{"status"},
		),
		committed: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "committed_objects",
				Help:      "Number of views or layers in the last commit of a root",
			},
			[]string{"root_id", "category"},
		),
		instances: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "instances_total",
				Help:      "Total number of engine objects built, by class and operation",
			},
			[]string{"class", "operation"},
		),
		rendersDiscarded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "renders_discarded_total",
				Help:      "Total number of renders dropped before commit",
			},
			[]string{"reason"},
		),
		errorsByClass: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_class_total",
				Help:      "Total number of errors by error class",
			},
			[]string{"class"},
		),
		errorsByCode: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_by_code_total",
				Help:      "Total number of errors by error code",
			},
			[]string{"code"},
		),
		activeRoots: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_roots",
				Help:      "Current number of registered mount roots",
			},
		),
		finalizations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "engine_finalizations_total",
				Help:      "Total number of engine instances finalized",
			},
		),
	}

	registry.MustRegister(
		m.commits,
		m.commitDuration,
		m.committed,
		m.instances,
		m.rendersDiscarded,
		m.errorsByClass,
		m.errorsByCode,
		m.activeRoots,
		m.finalizations,
	)

	return m, nil
}

// Commit Metrics

// RecordCommit records one commit attempt and, on success, the sizes of the
// applied lists.
func (m *Metrics) RecordCommit(rootID, status string, duration time.Duration, views, layers int) {
	if m == nil || m.commits == nil {
		return
	}
	m.commits.WithLabelValues(status).Inc()
	m.commitDuration.WithLabelValues(status).Observe(duration.Seconds())
	if status == "success" {
		m.committed.WithLabelValues(rootID, "view").Set(float64(views))
		m.committed.WithLabelValues(rootID, "layer").Set(float64(layers))
	}
}

// RecordInstance records an engine object built by create or clone.
func (m *Metrics) RecordInstance(class, operation string) {
	if m == nil || m.instances == nil {
		return
	}
	m.instances.WithLabelValues(class, operation).Inc()
}

// RecordDiscardedRender records a render dropped before commit.
func (m *Metrics) RecordDiscardedRender(reason string) {
	if m == nil || m.rendersDiscarded == nil {
		return
	}
	m.rendersDiscarded.WithLabelValues(reason).Inc()
}

// Error Metrics

// RecordError records an error by class and optionally by code.
func (m *Metrics) RecordError(errorClass, errorCode string) {
	if m == nil || m.errorsByClass == nil {
		return
	}
	m.errorsByClass.WithLabelValues(errorClass).Inc()
	if errorCode != "" && m.errorsByCode != nil {
		m.errorsByCode.WithLabelValues(errorCode).Inc()
	}
}

// Root Metrics

// RootRegistered increments the active root gauge.
func (m *Metrics) RootRegistered() {
	if m == nil || m.activeRoots == nil {
		return
	}
	m.activeRoots.Inc()
}

// RootRemoved decrements the active root gauge and drops the root's
// committed object gauges.
func (m *Metrics) RootRemoved(rootID string) {
	if m == nil || m.activeRoots == nil {
		return
	}
	m.activeRoots.Dec()
	m.committed.DeleteLabelValues(rootID, "view")
	m.committed.DeleteLabelValues(rootID, "layer")
}

// RecordFinalization counts a finalized engine instance.
func (m *Metrics) RecordFinalization() {
	if m == nil || m.finalizations == nil {
		return
	}
	m.finalizations.Inc()
}

// Registry returns the Prometheus registry, nil when metrics are disabled.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Timer provides a convenient way to time operations.
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// StartMetricsServer starts an HTTP server to expose metrics. Serve errors
// are reported to errFn, which may be nil.
func (m *Metrics) StartMetricsServer(errFn func(error)) error {
	if m == nil || !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	m.server = &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	server := m.server
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) && errFn != nil {
			errFn(err)
		}
	}()

	return nil
}

// StopMetricsServer shuts the metrics server down if it was started.
func (m *Metrics) StopMetricsServer(ctx context.Context) error {
	if m == nil || m.server == nil {
		return nil
	}
	return m.server.Shutdown(ctx)
}
