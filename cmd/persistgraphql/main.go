// Package main implements persistgraphql, a GraphQL server that accepts
// automatic persisted queries.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/c360/persistgraphql/config"
	"github.com/c360/persistgraphql/gateway/graphql"
	"github.com/c360/persistgraphql/metric"
	"github.com/c360/persistgraphql/persisted"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "persistgraphql"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(os.Args[1:]); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run(args []string) error {
	cliCfg, logger, shouldExit, err := initializeCLI(args)
	if shouldExit || err != nil {
		return err
	}

	cfg, err := initializeConfiguration(cliCfg)
	if err != nil {
		return err
	}

	metricsRegistry := metric.NewMetricsRegistry()
	engine, err := setupEngine(cfg, logger)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		logger.Info("Configuration is valid", "persisted_queries", engine.Registry().Len())
		return nil
	}

	gateway, err := graphql.NewGateway(cfg.GraphQL, engine, graphql.HandlerOptions{
		Metrics: metricsRegistry.CoreMetrics(),
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("create gateway: %w", err)
	}
	if err := gateway.Initialize(); err != nil {
		return fmt.Errorf("initialize gateway: %w", err)
	}

	if cfg.Metrics.Enabled {
		metricsServer := metric.NewServer(cfg.Metrics.Port, cfg.Metrics.Path, metricsRegistry)
		go func() {
			if err := metricsServer.Start(); err != nil {
				logger.Error("Metrics server failed", "error", err)
			}
		}()
		defer func() {
			if err := metricsServer.Stop(); err != nil {
				logger.Warn("Failed to stop metrics server", "error", err)
			}
		}()
		logger.Info("Metrics server started", "address", metricsServer.Address())
	}

	return runWithSignalHandling(context.Background(), gateway, cliCfg.ShutdownTimeout)
}

// initializeCLI parses flags and sets up logging
func initializeCLI(args []string) (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg, err := parseFlags(args, os.Stderr)
	if err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		return nil, nil, true, nil
	}

	logger := setupLogger(os.Stdout, cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	logger.Info("Starting persistgraphql",
		"build_time", BuildTime,
		"config_path", cliCfg.ConfigPath)

	return cliCfg, logger, false, nil
}

// initializeConfiguration loads configuration and applies flag overrides
func initializeConfiguration(cliCfg *CLIConfig) (*config.Config, error) {
	cfg, err := config.Load(cliCfg.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	applyFlags(cfg, cliCfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlags(cfg *config.Config, cliCfg *CLIConfig) {
	cfg.Persisted.QueryPaths = append(cfg.Persisted.QueryPaths, cliCfg.QueryPaths...)
	if cliCfg.OnlyWhiteList != nil {
		cfg.GraphQL.OnlyWhiteList = *cliCfg.OnlyWhiteList
	}
}

// setupEngine creates the persisted query engine over the built-in schema and
// loads every configured query path
func setupEngine(cfg *config.Config, logger *slog.Logger) (*persisted.Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	registry := persisted.NewRegistry()

	schema, err := newSchema(registry)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	engine, err := persisted.New(schema,
		persisted.WithErrorType(cfg.Persisted.ErrorType),
		persisted.WithRegistry(registry),
		persisted.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	for _, path := range cfg.Persisted.QueryPaths {
		if err := engine.AddQueryFiles(path); err != nil {
			return nil, fmt.Errorf("load queries from %s: %w", path, err)
		}
	}

	if cfg.GraphQL.OnlyWhiteList && registry.Len() == 0 {
		logger.Warn("Whitelist mode with an empty registry rejects every request")
	}
	return engine, nil
}

// runWithSignalHandling runs the gateway until SIGINT or SIGTERM. Cancelling
// the gateway context starts its graceful shutdown; shutdownTimeout bounds the
// wait for it.
func runWithSignalHandling(ctx context.Context, gateway *graphql.Gateway, shutdownTimeout time.Duration) error {
	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- gateway.Start(signalCtx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("gateway: %w", err)
		}
		return nil
	case <-signalCtx.Done():
		slog.Info("Received shutdown signal")
	}

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	case <-time.After(shutdownTimeout):
		return fmt.Errorf("gateway did not stop within %s", shutdownTimeout)
	}

	slog.Info("persistgraphql shutdown complete")
	return nil
}
