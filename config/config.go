package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/c360/persistgraphql/errors"
	"github.com/c360/persistgraphql/gateway/graphql"
	"github.com/c360/persistgraphql/persisted"
)

// EnvPrefix prefixes every environment override, e.g.
// PERSISTGRAPHQL_GRAPHQL_ONLY_WHITELIST=true
const EnvPrefix = "PERSISTGRAPHQL"

// Config represents the complete service configuration
type Config struct {
	GraphQL   graphql.Config  `json:"graphql" mapstructure:"graphql"`
	Persisted PersistedConfig `json:"persisted" mapstructure:"persisted"`
	Metrics   MetricsConfig   `json:"metrics" mapstructure:"metrics"`
}

// PersistedConfig configures the persisted query engine
type PersistedConfig struct {
	// ErrorType names the root field carrying protocol errors
	ErrorType string `json:"error_type" mapstructure:"error_type"`

	// QueryPaths are files or directories loaded into the registry at startup
	QueryPaths []string `json:"query_paths,omitempty" mapstructure:"query_paths"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Port    int    `json:"port" mapstructure:"port"`
	Path    string `json:"path" mapstructure:"path"`
}

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		GraphQL: graphql.DefaultConfig(),
		Persisted: PersistedConfig{
			ErrorType: persisted.DefaultErrorType,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration, filling defaults for unset fields
func (c *Config) Validate() error {
	if err := c.GraphQL.Validate(); err != nil {
		return errors.WrapInvalid(err, "Config", "Validate", "graphql")
	}

	if c.Persisted.ErrorType == "" {
		c.Persisted.ErrorType = persisted.DefaultErrorType
	}
	for _, p := range c.Persisted.QueryPaths {
		if strings.TrimSpace(p) == "" {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				"persisted.query_paths cannot contain empty paths")
		}
	}

	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"metrics.path must start with /")
	}
	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			fmt.Sprintf("metrics.port out of range: %d", c.Metrics.Port))
	}

	return nil
}

// String returns the configuration as indented JSON
func (c *Config) String() string {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}

// Load reads configuration from path, then applies PERSISTGRAPHQL_*
// environment overrides. An empty path loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := newViper()

	if path != "" {
		data, err := safeReadFile(path)
		if err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
				"Config", "Load", "read config file")
		}
		kind, _ := configType(path)
		if kind == "json" {
			if err := validateJSONDepth(data); err != nil {
				return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
					"Config", "Load", "check JSON depth")
			}
		}
		v.SetConfigType(kind)
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
				"Config", "Load", "parse config file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.WrapInvalid(fmt.Errorf("%w: %w", errors.ErrInvalidConfig, err),
			"Config", "Load", "decode config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newViper returns a viper instance seeded with defaults. Every key needs a
// default so that AutomaticEnv overrides reach Unmarshal.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	d := Default()
	v.SetDefault("graphql.bind_address", d.GraphQL.BindAddress)
	v.SetDefault("graphql.path", d.GraphQL.Path)
	v.SetDefault("graphql.enable_playground", d.GraphQL.EnablePlayground)
	v.SetDefault("graphql.enable_cors", d.GraphQL.EnableCORS)
	v.SetDefault("graphql.cors_origins", d.GraphQL.CORSOrigins)
	v.SetDefault("graphql.timeout", d.GraphQL.TimeoutStr)
	v.SetDefault("graphql.max_body_bytes", d.GraphQL.MaxBodyBytes)
	v.SetDefault("graphql.only_whitelist", d.GraphQL.OnlyWhiteList)
	v.SetDefault("persisted.error_type", d.Persisted.ErrorType)
	v.SetDefault("persisted.query_paths", []string{})
	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.port", d.Metrics.Port)
	v.SetDefault("metrics.path", d.Metrics.Path)
	return v
}
