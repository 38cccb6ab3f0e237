package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/persistgraphql/config"
	"github.com/c360/persistgraphql/gateway/graphql"
	"github.com/c360/persistgraphql/persisted"
)

const testQueryHash = "b64e723fc9713bdf669f79a2e32b844965bd33c4500b8ce74713967e1ddb3fe7"

func TestParseFlags(t *testing.T) {
	cfg, err := parseFlags([]string{
		"-log-level", "debug",
		"-log-format", "text",
		"-queries", "a.graphql, ./dir,,",
		"-validate",
	}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, []string{"a.graphql", "./dir"}, cfg.QueryPaths)
	assert.True(t, cfg.Validate)
	assert.Nil(t, cfg.OnlyWhiteList)
	assert.Equal(t, 30*time.Second, cfg.ShutdownTimeout)
}

func TestParseFlags_OnlyWhiteList(t *testing.T) {
	cfg, err := parseFlags([]string{"-only-whitelist"}, io.Discard)
	require.NoError(t, err)
	require.NotNil(t, cfg.OnlyWhiteList)
	assert.True(t, *cfg.OnlyWhiteList)

	cfg, err = parseFlags([]string{"-only-whitelist=false"}, io.Discard)
	require.NoError(t, err)
	require.NotNil(t, cfg.OnlyWhiteList)
	assert.False(t, *cfg.OnlyWhiteList)
}

func TestParseFlags_Env(t *testing.T) {
	t.Setenv("PERSISTGRAPHQL_LOG_LEVEL", "warn")
	t.Setenv("PERSISTGRAPHQL_SHUTDOWN_TIMEOUT", "5")

	cfg, err := parseFlags(nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
}

func TestParseFlags_Unknown(t *testing.T) {
	_, err := parseFlags([]string{"-nope"}, io.Discard)
	assert.Error(t, err)
}

func TestValidateFlags(t *testing.T) {
	valid := func() *CLIConfig {
		return &CLIConfig{LogLevel: "info", LogFormat: "json", ShutdownTimeout: time.Second}
	}

	tests := []struct {
		name    string
		mutate  func(*CLIConfig)
		wantErr bool
	}{
		{"valid", func(*CLIConfig) {}, false},
		{"upper case level", func(c *CLIConfig) { c.LogLevel = "DEBUG" }, false},
		{"bad level", func(c *CLIConfig) { c.LogLevel = "loud" }, true},
		{"bad format", func(c *CLIConfig) { c.LogFormat = "xml" }, true},
		{"missing config file", func(c *CLIConfig) { c.ConfigPath = "/does/not/exist.yaml" }, true},
		{"zero shutdown timeout", func(c *CLIConfig) { c.ShutdownTimeout = 0 }, true},
		{"version skips checks", func(c *CLIConfig) {
			c.ShowVersion = true
			c.LogLevel = "loud"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateFlags(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger(&buf, "warn", "json")

	logger.Info("hidden")
	logger.Warn("shown", "key", "value")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, appName, entry["service"])
	assert.Equal(t, Version, entry["version"])
	assert.Equal(t, "value", entry["key"])

	buf.Reset()
	setupLogger(&buf, "info", "text").Info("plain")
	assert.Contains(t, buf.String(), "msg=plain")
}

func TestApplyFlags(t *testing.T) {
	cfg := config.Default()
	cfg.Persisted.QueryPaths = []string{"from-config"}

	on := true
	applyFlags(cfg, &CLIConfig{QueryPaths: []string{"from-flag"}, OnlyWhiteList: &on})
	assert.Equal(t, []string{"from-config", "from-flag"}, cfg.Persisted.QueryPaths)
	assert.True(t, cfg.GraphQL.OnlyWhiteList)

	applyFlags(cfg, &CLIConfig{})
	assert.True(t, cfg.GraphQL.OnlyWhiteList)
}

func newTestHandler(t *testing.T, onlyWhiteList bool, queryPaths ...string) http.Handler {
	t.Helper()
	cfg := config.Default()
	cfg.GraphQL.OnlyWhiteList = onlyWhiteList
	cfg.Persisted.QueryPaths = queryPaths
	require.NoError(t, cfg.Validate())

	engine, err := setupEngine(cfg, nil)
	require.NoError(t, err)

	handler, err := graphql.NewHandler(engine, cfg.GraphQL, graphql.HandlerOptions{})
	require.NoError(t, err)
	return handler
}

func post(t *testing.T, h http.Handler, body string) string {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/graphql", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return rec.Body.String()
}

func persistedBody(hash, query string) string {
	req := map[string]interface{}{
		"extensions": map[string]interface{}{
			"persistedQuery": map[string]interface{}{"version": 1, "sha256Hash": hash},
		},
	}
	if query != "" {
		req["query"] = query
	}
	data, _ := json.Marshal(req)
	return string(data)
}

func TestSchema_Registry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "version.graphql"), []byte("{ version }"), 0600))

	h := newTestHandler(t, false, dir)
	versionHash := persisted.Hash("{\n  version\n}\n")

	assert.JSONEq(t, `{"data":{"version":"`+Version+`"}}`, post(t, h, persistedBody(versionHash, "")))

	assert.JSONEq(t,
		`{"data":{"persistedQueries":[{"sha256Hash":"`+versionHash+`"}]}}`,
		post(t, h, `{"query":"{ persistedQueries { sha256Hash } }"}`))

	assert.JSONEq(t,
		`{"data":{"persistedQuery":{"query":"{\n  version\n}\n"}}}`,
		post(t, h, `{"query":"{ persistedQuery(sha256Hash: \"`+versionHash+`\") { query } }"}`))

	assert.JSONEq(t,
		`{"data":{"persistedQuery":null}}`,
		post(t, h, `{"query":"{ persistedQuery(sha256Hash: \"nope\") { query } }"}`))
}

func TestSchema_LearnsThroughHandler(t *testing.T) {
	h := newTestHandler(t, false)
	hash := persisted.Hash("{\n  version\n}\n")

	assert.JSONEq(t, `{"errors":[{"message":"PersistedQueryNotFound"}]}`, post(t, h, persistedBody(hash, "")))
	assert.JSONEq(t, `{"data":{"version":"`+Version+`"}}`, post(t, h, persistedBody(hash, "{ version }")))
	assert.JSONEq(t,
		`{"data":{"persistedQueries":[{"sha256Hash":"`+hash+`"}]}}`,
		post(t, h, `{"query":"{ persistedQueries { sha256Hash } }"}`))
}

func TestSchema_Whitelist(t *testing.T) {
	h := newTestHandler(t, true)
	assert.JSONEq(t,
		`{"errors":[{"message":"PersistedQueryNotAllowed"}]}`,
		post(t, h, `{"query":"{ version }"}`))
	assert.JSONEq(t,
		`{"errors":[{"message":"PersistedQueryNotAllowed"}]}`,
		post(t, h, persistedBody(testQueryHash, "{ version }")))
}

func TestSetupEngine_BadQueryPath(t *testing.T) {
	cfg := config.Default()
	cfg.Persisted.QueryPaths = []string{filepath.Join(t.TempDir(), "missing")}

	_, err := setupEngine(cfg, nil)
	assert.Error(t, err)
}
