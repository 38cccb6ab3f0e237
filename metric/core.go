package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "persistgraphql"

// Metrics contains the service and persisted query metrics
type Metrics struct {
	// Service metrics
	ServiceStatus     *prometheus.GaugeVec
	HealthCheckStatus *prometheus.GaugeVec
	ErrorsTotal       *prometheus.CounterVec

	// Request metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Persisted query metrics
	ResolutionsTotal *prometheus.CounterVec
	LearnedTotal     prometheus.Counter
	RegistrySize     prometheus.Gauge
}

// NewMetrics creates a new Metrics instance
func NewMetrics() *Metrics {
	return &Metrics{
		ServiceStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "service",
				Name:      "status",
				Help:      "Service status (0=stopped, 1=starting, 2=running, 3=stopping, 4=failed)",
			},
			[]string{"service"},
		),

		HealthCheckStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "health",
				Name:      "status",
				Help:      "Health check status (0=unhealthy, 1=healthy)",
			},
			[]string{"service"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of request errors by type",
			},
			[]string{"type"},
		),

		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "requests",
				Name:      "total",
				Help:      "Total number of GraphQL HTTP requests",
			},
			[]string{"transport", "status"},
		),

		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "requests",
				Name:      "duration_seconds",
				Help:      "GraphQL HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"transport"},
		),

		ResolutionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "persisted",
				Name:      "resolutions_total",
				Help:      "Persisted query resolutions by outcome",
			},
			[]string{"outcome"},
		),

		LearnedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "persisted",
				Name:      "learned_total",
				Help:      "Total number of hashes learned from clients",
			},
		),

		RegistrySize: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "persisted",
				Name:      "registry_size",
				Help:      "Number of queries in the persisted query registry",
			},
		),
	}
}

// RecordServiceStatus updates service status metric
func (c *Metrics) RecordServiceStatus(service string, status int) {
	c.ServiceStatus.WithLabelValues(service).Set(float64(status))
}

// RecordHealthStatus updates health check status
func (c *Metrics) RecordHealthStatus(service string, healthy bool) {
	value := 0.0
	if healthy {
		value = 1.0
	}
	c.HealthCheckStatus.WithLabelValues(service).Set(value)
}

// RecordError increments error counter
func (c *Metrics) RecordError(errorType string) {
	c.ErrorsTotal.WithLabelValues(errorType).Inc()
}

// RecordRequest counts one HTTP request
func (c *Metrics) RecordRequest(transport, status string) {
	c.RequestsTotal.WithLabelValues(transport, status).Inc()
}

// RecordRequestDuration records request time
func (c *Metrics) RecordRequestDuration(transport string, duration time.Duration) {
	c.RequestDuration.WithLabelValues(transport).Observe(duration.Seconds())
}

// RecordResolution counts one resolved request. Learned hashes are also
// counted in LearnedTotal.
func (c *Metrics) RecordResolution(outcome string) {
	c.ResolutionsTotal.WithLabelValues(outcome).Inc()
	if outcome == "learned" {
		c.LearnedTotal.Inc()
	}
}

// RecordRegistrySize updates the registry size gauge
func (c *Metrics) RecordRegistrySize(size int) {
	c.RegistrySize.Set(float64(size))
}
