package graphql

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/persistgraphql/errors"
)

func TestConfig_ValidateDefaults(t *testing.T) {
	var cfg Config
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ":8080", cfg.BindAddress)
	assert.Equal(t, "/graphql", cfg.Path)
	assert.Equal(t, 30*time.Second, cfg.Timeout())
	assert.Equal(t, int64(defaultMaxBodyBytes), cfg.MaxBodyBytes)
	assert.Empty(t, cfg.CORSOrigins)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default", func(*Config) {}, false},
		{"custom timeout", func(c *Config) { c.TimeoutStr = "2s" }, false},
		{"unparsable timeout", func(c *Config) { c.TimeoutStr = "soon" }, true},
		{"timeout too short", func(c *Config) { c.TimeoutStr = "10ms" }, true},
		{"timeout too long", func(c *Config) { c.TimeoutStr = "1h" }, true},
		{"relative path", func(c *Config) { c.Path = "graphql" }, true},
		{"root path with playground", func(c *Config) { c.Path = "/" }, true},
		{"root path without playground", func(c *Config) {
			c.Path = "/"
			c.EnablePlayground = false
		}, false},
		{"negative body limit", func(c *Config) { c.MaxBodyBytes = -1 }, true},
		{"body limit too large", func(c *Config) { c.MaxBodyBytes = 1 << 30 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsInvalid(err))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestConfig_CORSOriginsDefault(t *testing.T) {
	cfg := Config{EnableCORS: true}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}
