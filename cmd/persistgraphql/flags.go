package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath      string
	LogLevel        string
	LogFormat       string
	QueryPaths      []string
	OnlyWhiteList   *bool
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags(args []string, output io.Writer) (*CLIConfig, error) {
	cfg := &CLIConfig{}
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.SetOutput(output)

	// Define flags with environment variable fallback
	fs.StringVar(&cfg.ConfigPath, "config",
		getEnv("PERSISTGRAPHQL_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: PERSISTGRAPHQL_CONFIG)")

	fs.StringVar(&cfg.ConfigPath, "c",
		getEnv("PERSISTGRAPHQL_CONFIG", ""),
		"Path to a JSON or YAML configuration file (env: PERSISTGRAPHQL_CONFIG)")

	fs.StringVar(&cfg.LogLevel, "log-level",
		getEnv("PERSISTGRAPHQL_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: PERSISTGRAPHQL_LOG_LEVEL)")

	fs.StringVar(&cfg.LogFormat, "log-format",
		getEnv("PERSISTGRAPHQL_LOG_FORMAT", "json"),
		"Log format: json, text (env: PERSISTGRAPHQL_LOG_FORMAT)")

	var queries string
	fs.StringVar(&queries, "queries", "",
		"Comma-separated query files or directories, added to persisted.query_paths")

	onlyWhiteList := fs.Bool("only-whitelist", false,
		"Execute registered queries only, overrides graphql.only_whitelist")

	fs.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("PERSISTGRAPHQL_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: PERSISTGRAPHQL_SHUTDOWN_TIMEOUT)")

	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	fs.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	fs.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and query files, then exit")

	fs.Usage = func() {
		printDetailedHelp(fs, output)
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	for _, q := range strings.Split(queries, ",") {
		if q = strings.TrimSpace(q); q != "" {
			cfg.QueryPaths = append(cfg.QueryPaths, q)
		}
	}

	// Only an explicit flag overrides the configuration file
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "only-whitelist" {
			cfg.OnlyWhiteList = onlyWhiteList
		}
	})

	return cfg, nil
}

func validateFlags(cfg *CLIConfig) error {
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	if cfg.ConfigPath != "" {
		if _, err := os.Stat(cfg.ConfigPath); err != nil {
			return fmt.Errorf("config file not found: %s", cfg.ConfigPath)
		}
	}

	if !contains([]string{"debug", "info", "warn", "error"}, strings.ToLower(cfg.LogLevel)) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	if !contains([]string{"json", "text"}, strings.ToLower(cfg.LogFormat)) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid shutdown timeout: %s", cfg.ShutdownTimeout)
	}

	return nil
}

func printDetailedHelp(fs *flag.FlagSet, w io.Writer) {
	_, _ = fmt.Fprintf(w, `%s - GraphQL server with automatic persisted queries

Usage: %s [options]

Options:
`, appName, appName)
	fs.PrintDefaults()
	_, _ = fmt.Fprintf(w, `
Examples:
  # Serve with a config file and a directory of queries
  %s --config=persistgraphql.yaml --queries=./queries

  # Only execute queries shipped with the client build
  %s --queries=./extracted_queries.json --only-whitelist

  # Validate configuration and query files only
  %s --config=persistgraphql.yaml --validate

Every configuration key can be set from the environment, e.g.
  PERSISTGRAPHQL_GRAPHQL_BIND_ADDRESS=:9000

Version: %s
Build: %s
`, appName, appName, appName, Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
