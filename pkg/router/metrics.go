package router

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the loader metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "fsroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "router").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for scan duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the loader metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "fsroute",
		Subsystem: "router",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors updated by loaders. One Metrics
// may be shared by loaders for different frameworks; a nil *Metrics records
// nothing.
//
// Metrics collected:
//   - fsroute_router_scans_total: scans by framework and status
//   - fsroute_router_scan_duration_seconds: scan duration by framework
//   - fsroute_router_routes_bound_total: successful bindings
//   - fsroute_router_routes_unbound_total: successful unbindings
//   - fsroute_router_import_failures_total: files with no registered module
//   - fsroute_router_route_failures_total: other per-file failures
//   - fsroute_router_routes_active: routes currently bound
type Metrics struct {
	scansTotal     *prometheus.CounterVec
	scanDuration   *prometheus.HistogramVec
	routesBound    *prometheus.CounterVec
	routesUnbound  *prometheus.CounterVec
	importFailures *prometheus.CounterVec
	routeFailures  *prometheus.CounterVec
	routesActive   *prometheus.GaugeVec
}

// NewMetrics registers the loader collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		scansTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scans_total",
			Help:        "Total number of route scans",
			ConstLabels: config.ConstLabels,
		}, []string{"framework", "status"}),

		scanDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scan_duration_seconds",
			Help:        "Route scan duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"framework"}),

		routesBound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes_bound_total",
			Help:        "Total number of routes bound into a host",
			ConstLabels: config.ConstLabels,
		}, []string{"framework"}),

		routesUnbound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes_unbound_total",
			Help:        "Total number of routes removed from a host",
			ConstLabels: config.ConstLabels,
		}, []string{"framework"}),

		importFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "import_failures_total",
			Help:        "Total number of route files with no registered module",
			ConstLabels: config.ConstLabels,
		}, []string{"framework"}),

		routeFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "route_failures_total",
			Help:        "Total number of route files that failed to bind",
			ConstLabels: config.ConstLabels,
		}, []string{"framework"}),

		routesActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "routes_active",
			Help:        "Number of routes currently bound",
			ConstLabels: config.ConstLabels,
		}, []string{"framework"}),
	}
}

// observe records the outcome of one scan.
func (m *Metrics) observe(report *Report, active int, err error) {
	if m == nil || report == nil {
		return
	}
	fw := string(report.Framework)

	status := "ok"
	if err != nil {
		status = "error"
	}
	m.scansTotal.WithLabelValues(fw, status).Inc()
	m.scanDuration.WithLabelValues(fw).Observe(report.Duration.Seconds())

	m.routesBound.WithLabelValues(fw).Add(float64(len(report.Diff.Added) + len(report.Diff.Changed)))
	m.routesUnbound.WithLabelValues(fw).Add(float64(len(report.Diff.Removed)))

	for _, f := range report.Failures {
		if isImportFailure(f.Err) {
			m.importFailures.WithLabelValues(fw).Inc()
		} else {
			m.routeFailures.WithLabelValues(fw).Inc()
		}
	}
	m.routesActive.WithLabelValues(fw).Set(float64(active))
}
