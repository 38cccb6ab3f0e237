package graphql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/persistgraphql/errors"
	"github.com/c360/persistgraphql/health"
	"github.com/c360/persistgraphql/metric"
	"github.com/c360/persistgraphql/persisted"
)

// Service status values recorded in metrics
const (
	StatusStopped = iota
	StatusStarting
	StatusRunning
	StatusStopping
	StatusFailed
)

const serviceName = "graphql-gateway"

// Gateway ties a persisted query engine to an HTTP server and manages its
// lifecycle
type Gateway struct {
	config  Config
	engine  *persisted.Engine
	handler *Handler
	server  *Server
	metrics *metric.Metrics
	monitor *health.Monitor
	logger  *slog.Logger

	running   atomic.Bool
	mu        sync.RWMutex
	startTime time.Time
}

// NewGateway creates a gateway serving engine with config
func NewGateway(config Config, engine *persisted.Engine, opts HandlerOptions) (*Gateway, error) {
	if err := config.Validate(); err != nil {
		return nil, errors.WrapInvalid(err, "Gateway", "NewGateway", "config validation")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", serviceName)
	opts.Logger = logger

	handler, err := NewHandler(engine, config, opts)
	if err != nil {
		return nil, errors.Wrap(err, "Gateway", "NewGateway", "create handler")
	}

	server, err := NewServer(config, handler, logger)
	if err != nil {
		return nil, errors.WrapFatal(err, "Gateway", "NewGateway", "create server")
	}

	return &Gateway{
		config:  config,
		engine:  engine,
		handler: handler,
		server:  server,
		metrics: opts.Metrics,
		monitor: health.NewMonitor(),
		logger:  logger,
	}, nil
}

// Initialize prepares the HTTP server
func (g *Gateway) Initialize() error {
	if err := g.server.Setup(); err != nil {
		return errors.WrapFatal(err, "Gateway", "Initialize", "server setup")
	}
	g.server.SetHealthCheck(g.Health)

	g.logger.Info("GraphQL gateway initialized",
		"address", g.config.BindAddress,
		"path", g.config.Path,
		"only_whitelist", g.config.OnlyWhiteList,
		"error_type", g.engine.ErrorType())
	return nil
}

// Start runs the gateway until ctx is cancelled
func (g *Gateway) Start(ctx context.Context) error {
	if g.running.Load() {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "Gateway", "Start",
			"gateway already running")
	}

	g.mu.Lock()
	g.running.Store(true)
	g.startTime = time.Now()
	g.mu.Unlock()
	g.recordStatus(StatusStarting)

	ready := make(chan struct{})
	errChan := make(chan error, 1)

	go func() {
		errChan <- g.server.Start(ctx, ready)
	}()

	select {
	case <-ready:
		g.recordStatus(StatusRunning)
		g.logger.Info("GraphQL gateway started", "address", g.server.Addr().String())
	case err := <-errChan:
		g.fail(err)
		return err
	case <-time.After(5 * time.Second):
		err := errors.WrapFatal(errors.ErrConnectionTimeout, "Gateway", "Start",
			"server failed to start within timeout")
		g.fail(err)
		return err
	}

	err := <-errChan
	g.running.Store(false)
	if err != nil {
		g.fail(err)
		return err
	}
	g.recordStatus(StatusStopped)
	return nil
}

// Stop gracefully stops the gateway
func (g *Gateway) Stop(timeout time.Duration) error {
	if !g.running.Load() {
		return nil
	}

	g.recordStatus(StatusStopping)
	if err := g.server.Stop(timeout); err != nil {
		g.logger.Error("Failed to stop server", "error", err)
		return err
	}
	return nil
}

// Health returns the aggregated status of the server and the registry
func (g *Gateway) Health() health.Status {
	g.mu.RLock()
	startTime := g.startTime
	g.mu.RUnlock()

	running := g.running.Load() && g.server.IsRunning()
	if running {
		g.monitor.UpdateHealthy("server", "Serving on "+g.server.Addr().String())
	} else if last, ok := g.monitor.Get("server"); !ok || !last.IsUnhealthy() {
		g.monitor.UpdateUnhealthy("server", "Server not running")
	}

	size := g.engine.Registry().Len()
	if g.config.OnlyWhiteList && size == 0 {
		g.monitor.UpdateDegraded("registry", "Whitelist mode with an empty registry")
	} else {
		g.monitor.UpdateHealthy("registry", fmt.Sprintf("%d persisted queries", size))
	}

	metrics := &health.Metrics{
		RegistrySize:  size,
		OnlyWhiteList: g.config.OnlyWhiteList,
	}
	if running {
		metrics.Uptime = time.Since(startTime)
	}
	status := g.monitor.AggregateHealth(serviceName).WithMetrics(metrics)

	if g.metrics != nil {
		g.metrics.RecordHealthStatus(serviceName, status.Healthy)
	}
	return status
}

// Handler returns the gateway's GraphQL handler
func (g *Gateway) Handler() *Handler {
	return g.handler
}

// Server returns the gateway's HTTP server
func (g *Gateway) Server() *Server {
	return g.server
}

func (g *Gateway) fail(err error) {
	g.running.Store(false)
	g.recordStatus(StatusFailed)
	g.monitor.Update("server", health.FromError("server", err))
}

func (g *Gateway) recordStatus(status int) {
	if g.metrics != nil {
		g.metrics.RecordServiceStatus(serviceName, status)
	}
}
