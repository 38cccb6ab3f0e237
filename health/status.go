package health

import (
	"net/http"
	"regexp"
	"time"
)

// Health states
const (
	StateHealthy   = "healthy"
	StateDegraded  = "degraded"
	StateUnhealthy = "unhealthy"
)

var (
	urlRegex        = regexp.MustCompile(`[a-z]+://[^\s]+`)
	pathRegex       = regexp.MustCompile(`/[a-zA-Z0-9/_.-]+`)
	ipAddrRegex     = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	portRegex       = regexp.MustCompile(`:\d{2,5}\b`)
	credentialRegex = regexp.MustCompile(`(?i)(password|token|key|secret)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status is the health of one component, or of a system of components when
// SubStatuses is set
type Status struct {
	Component   string    `json:"component"`
	Healthy     bool      `json:"healthy"`
	Status      string    `json:"status"`
	Message     string    `json:"message"`
	Timestamp   time.Time `json:"timestamp"`
	SubStatuses []Status  `json:"sub_statuses,omitempty"`
	Metrics     *Metrics  `json:"metrics,omitempty"`
}

// Metrics are the gateway figures reported alongside its health
type Metrics struct {
	Uptime        time.Duration `json:"uptime"`
	RegistrySize  int           `json:"registry_size"`
	OnlyWhiteList bool          `json:"only_whitelist"`
}

// IsHealthy returns true if the status is healthy
func (s Status) IsHealthy() bool {
	return s.Status == StateHealthy
}

// IsDegraded returns true if the status is degraded
func (s Status) IsDegraded() bool {
	return s.Status == StateDegraded
}

// IsUnhealthy returns true if the status is unhealthy
func (s Status) IsUnhealthy() bool {
	return s.Status == StateUnhealthy
}

// WithMetrics returns a copy of the status with metrics attached
func (s Status) WithMetrics(metrics *Metrics) Status {
	s.Metrics = metrics
	return s
}

// HTTPStatus is the response code a health endpoint answers with. A degraded
// component still serves traffic.
func (s Status) HTTPStatus() int {
	if s.IsUnhealthy() {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

// FromError returns an unhealthy status for component carrying err with
// addresses, paths and credentials removed
func FromError(component string, err error) Status {
	if err == nil {
		return NewHealthy(component, "")
	}
	return NewUnhealthy(component, sanitizeErrorMessage(err.Error()))
}

func sanitizeErrorMessage(msg string) string {
	msg = urlRegex.ReplaceAllString(msg, "[URL]")
	msg = credentialRegex.ReplaceAllString(msg, "[REDACTED]")
	msg = pathRegex.ReplaceAllString(msg, "[PATH]")
	msg = ipAddrRegex.ReplaceAllString(msg, "[IP]")
	return portRegex.ReplaceAllString(msg, "[PORT]")
}
