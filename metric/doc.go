// Package metric provides Prometheus-based metrics collection and an HTTP
// server exposing them.
//
// The registry holds the core metrics of the persisted query service plus
// any component-specific metrics registered through the Register methods.
// Go runtime and process collectors are registered automatically.
//
// # Basic Usage
//
//	registry := metric.NewMetricsRegistry()
//	server := metric.NewServer(9090, "/metrics", registry)
//
//	go func() {
//	    if err := server.Start(); err != nil {
//	        logger.Error("Metrics server error", "error", err)
//	    }
//	}()
//
//	m := registry.CoreMetrics()
//	m.RecordRequest("http", "200")
//	m.RecordResolution("hit")
//	m.RecordRegistrySize(42)
//
// # Core Metrics
//
// All names live under the persistgraphql namespace:
//
//   - service_status, health_status: lifecycle gauges per service
//   - requests_total{transport,status}, requests_duration_seconds{transport}
//   - persisted_resolutions_total{outcome}: one per resolved request
//   - persisted_learned_total: hashes learned from clients
//   - persisted_registry_size: queries currently registered
//   - errors_total{type}: request errors by class
//
// # Component Metrics
//
// Components register their own collectors under a service name. The
// registry rejects a second registration of the same service and metric
// name:
//
//	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "cache_hits_total", Help: "Cache hits"})
//	if err := registry.RegisterCounter("cache", "hits", hits); err != nil {
//	    return err
//	}
package metric
