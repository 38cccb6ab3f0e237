package health

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		status  Status
		state   string
		healthy bool
		code    int
	}{
		{"healthy", NewHealthy("server", "ok"), StateHealthy, true, http.StatusOK},
		{"degraded", NewDegraded("registry", "empty"), StateDegraded, false, http.StatusOK},
		{"unhealthy", NewUnhealthy("server", "down"), StateUnhealthy, false, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.state, tt.status.Status)
			assert.Equal(t, tt.healthy, tt.status.Healthy)
			assert.Equal(t, tt.healthy, tt.status.IsHealthy())
			assert.Equal(t, tt.code, tt.status.HTTPStatus())
			assert.WithinDuration(t, time.Now(), tt.status.Timestamp, time.Second)
		})
	}
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name  string
		subs  []Status
		state string
	}{
		{"empty", nil, StateHealthy},
		{"all healthy", []Status{NewHealthy("a", ""), NewHealthy("b", "")}, StateHealthy},
		{"degraded wins over healthy", []Status{NewHealthy("a", ""), NewDegraded("b", "")}, StateDegraded},
		{"unhealthy wins", []Status{NewDegraded("a", ""), NewUnhealthy("b", ""), NewHealthy("c", "")}, StateUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Aggregate("system", tt.subs)
			assert.Equal(t, "system", status.Component)
			assert.Equal(t, tt.state, status.Status)
			assert.Len(t, status.SubStatuses, len(tt.subs))
		})
	}
}

func TestAggregate_SortsAndCopies(t *testing.T) {
	subs := []Status{NewHealthy("zeta", ""), NewHealthy("alpha", "")}
	status := Aggregate("system", subs)

	require.Len(t, status.SubStatuses, 2)
	assert.Equal(t, "alpha", status.SubStatuses[0].Component)
	assert.Equal(t, "zeta", subs[0].Component)
}

func TestStatus_WithMetrics(t *testing.T) {
	original := NewHealthy("gateway", "ok")
	withMetrics := original.WithMetrics(&Metrics{RegistrySize: 3})

	assert.Nil(t, original.Metrics)
	require.NotNil(t, withMetrics.Metrics)
	assert.Equal(t, 3, withMetrics.Metrics.RegistrySize)
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
		excludes []string
	}{
		{
			name:     "address",
			err:      fmt.Errorf("bind 10.0.0.5:8080 failed"),
			contains: []string{"[IP]", "[PORT]"},
			excludes: []string{"10.0.0.5", "8080"},
		},
		{
			name:     "url",
			err:      fmt.Errorf("fetch https://internal.example/schema failed"),
			contains: []string{"[URL]"},
			excludes: []string{"internal.example"},
		},
		{
			name:     "path",
			err:      fmt.Errorf("open /etc/persistgraphql/queries.json: permission denied"),
			contains: []string{"[PATH]", "permission denied"},
			excludes: []string{"/etc/"},
		},
		{
			name:     "credential",
			err:      fmt.Errorf("auth failed token=abc123"),
			contains: []string{"[REDACTED]"},
			excludes: []string{"abc123"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := FromError("server", tt.err)
			assert.True(t, status.IsUnhealthy())
			for _, s := range tt.contains {
				assert.Contains(t, status.Message, s)
			}
			for _, s := range tt.excludes {
				assert.NotContains(t, status.Message, s)
			}
		})
	}

	assert.True(t, FromError("server", nil).IsHealthy())
}

func TestMonitor(t *testing.T) {
	m := NewMonitor()

	_, ok := m.Get("server")
	assert.False(t, ok)

	m.UpdateHealthy("server", "serving")
	m.UpdateDegraded("registry", "empty")

	status, ok := m.Get("registry")
	require.True(t, ok)
	assert.True(t, status.IsDegraded())

	agg := m.AggregateHealth("gateway")
	assert.True(t, agg.IsDegraded())
	require.Len(t, agg.SubStatuses, 2)
	assert.Equal(t, "registry", agg.SubStatuses[0].Component)

	m.UpdateUnhealthy("server", "stopped")
	assert.True(t, m.AggregateHealth("gateway").IsUnhealthy())

	m.UpdateHealthy("server", "serving")
	m.UpdateHealthy("registry", "3 persisted queries")
	assert.True(t, m.AggregateHealth("gateway").IsHealthy())
}

func TestMonitor_UpdateOverridesName(t *testing.T) {
	m := NewMonitor()
	m.Update("server", Status{Component: "other", Status: StateHealthy})

	status, ok := m.Get("server")
	require.True(t, ok)
	assert.Equal(t, "server", status.Component)
	assert.False(t, status.Timestamp.IsZero())
}

func TestMonitor_ConcurrentAccess(t *testing.T) {
	m := NewMonitor()
	var wg sync.WaitGroup

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := fmt.Sprintf("component-%d", i%4)
			for j := 0; j < 100; j++ {
				m.UpdateHealthy(name, "ok")
				m.AggregateHealth("system")
				m.Get(name)
			}
		}(i)
	}
	wg.Wait()

	assert.Len(t, m.AggregateHealth("system").SubStatuses, 4)
}
