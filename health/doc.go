// Package health reports component health for the GraphQL gateway.
//
// A Status is healthy, degraded or unhealthy. Degraded components keep
// serving: a gateway in whitelist mode with an empty registry answers every
// request, if only with PersistedQueryNotAllowed. A Monitor tracks named
// components and aggregates them:
//
//	monitor := health.NewMonitor()
//	monitor.UpdateHealthy("server", "Serving on :8080")
//	monitor.UpdateDegraded("registry", "Whitelist mode with an empty registry")
//
//	status := monitor.AggregateHealth("graphql-gateway")
//	w.WriteHeader(status.HTTPStatus()) // 200: degraded is still up
//
// Error messages passed through FromError have URLs, file paths, IP
// addresses, ports and credentials replaced before they are exposed.
package health
