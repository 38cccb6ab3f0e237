package graphql

import (
	"fmt"
	"time"

	"github.com/c360/persistgraphql/errors"
)

// Config holds configuration for the GraphQL gateway
type Config struct {
	// BindAddress is the HTTP bind address (default: ":8080")
	BindAddress string `json:"bind_address" mapstructure:"bind_address"`

	// Path is the GraphQL endpoint path (default: "/graphql")
	Path string `json:"path" mapstructure:"path"`

	// EnablePlayground enables the GraphQL Playground UI at "/"
	EnablePlayground bool `json:"enable_playground" mapstructure:"enable_playground"`

	// EnableCORS enables CORS headers
	EnableCORS bool `json:"enable_cors" mapstructure:"enable_cors"`

	// CORSOrigins lists allowed CORS origins (default: ["*"])
	CORSOrigins []string `json:"cors_origins,omitempty" mapstructure:"cors_origins"`

	// TimeoutStr is the read/write timeout (default: "30s")
	TimeoutStr string `json:"timeout,omitempty" mapstructure:"timeout"`

	// MaxBodyBytes limits the size of a request body (default: 1MB)
	MaxBodyBytes int64 `json:"max_body_bytes,omitempty" mapstructure:"max_body_bytes"`

	// OnlyWhiteList restricts execution to registered hashes
	OnlyWhiteList bool `json:"only_whitelist" mapstructure:"only_whitelist"`

	// timeout is the parsed duration (internal use)
	timeout time.Duration
}

const (
	defaultMaxBodyBytes = 1 << 20
	maxMaxBodyBytes     = 64 << 20
)

// Validate ensures the configuration is valid, filling defaults for unset fields
func (c *Config) Validate() error {
	if c.BindAddress == "" {
		c.BindAddress = ":8080"
	}

	if c.Path == "" {
		c.Path = "/graphql"
	}
	if c.Path[0] != '/' {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"path must start with /")
	}
	if c.Path == "/" && c.EnablePlayground {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"path / is taken by the playground")
	}

	if c.TimeoutStr == "" {
		c.timeout = 30 * time.Second
	} else {
		timeout, err := time.ParseDuration(c.TimeoutStr)
		if err != nil {
			return errors.WrapInvalid(err, "Config", "Validate",
				fmt.Sprintf("invalid timeout format: %s", c.TimeoutStr))
		}
		if timeout < 100*time.Millisecond || timeout > 5*time.Minute {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				"timeout must be between 100ms and 5m")
		}
		c.timeout = timeout
	}

	if c.MaxBodyBytes == 0 {
		c.MaxBodyBytes = defaultMaxBodyBytes
	}
	if c.MaxBodyBytes < 0 || c.MaxBodyBytes > maxMaxBodyBytes {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"max_body_bytes must be between 1 and 64MB")
	}

	if c.EnableCORS && len(c.CORSOrigins) == 0 {
		c.CORSOrigins = []string{"*"}
	}

	return nil
}

// Timeout returns the parsed timeout duration
func (c *Config) Timeout() time.Duration {
	return c.timeout
}

// DefaultConfig returns default GraphQL gateway configuration
func DefaultConfig() Config {
	return Config{
		BindAddress:      ":8080",
		Path:             "/graphql",
		EnablePlayground: true,
		EnableCORS:       true,
		CORSOrigins:      []string{"*"},
		TimeoutStr:       "30s",
		MaxBodyBytes:     defaultMaxBodyBytes,
	}
}
