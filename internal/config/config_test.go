package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parthkaria14/GenAdvisor/internal/types"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	// Core defaults
	assert.NotEmpty(t, cfg.Core.HomeDir, "HomeDir should not be empty")
	assert.Contains(t, cfg.Core.HomeDir, ".genadvisor", "HomeDir should contain .genadvisor")
	assert.Equal(t, filepath.Join(cfg.Core.HomeDir, "data"), cfg.Core.DataDir)
	assert.Equal(t, 10, cfg.Core.ParallelLimit)
	assert.Equal(t, 2*time.Minute, cfg.Core.Timeout)
	assert.False(t, cfg.Core.Debug)

	// Logging defaults
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)

	// Observability off by default
	assert.False(t, cfg.Tracing.Enabled)
	assert.False(t, cfg.Metrics.Enabled)

	// Market defaults keep everything offline
	assert.Equal(t, "file", cfg.Market.Source)
	assert.Equal(t, "stocks.json", cfg.Market.StocksFile)
	assert.Equal(t, "news.csv", cfg.Market.NewsFile)
	assert.Equal(t, 15*time.Minute, cfg.Market.RefreshInterval)
	assert.Equal(t, 2*time.Second, cfg.Market.WatchDebounce)

	// Retrieval defaults keep everything offline
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.Equal(t, "embedded", cfg.Retrieval.VectorStore.Type)
	assert.Equal(t, "tfidf", cfg.Retrieval.Embedder.Type)
	assert.True(t, cfg.Retrieval.Keyword.Enabled)

	// Cache defaults
	assert.Equal(t, "memory", cfg.Cache.Type)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, 1000, cfg.Cache.MaxEntries)

	// Empty provider selects the template generator
	assert.Empty(t, cfg.LLM.Provider)
	assert.False(t, cfg.NER.Enabled)

	// Advisor defaults
	assert.Equal(t, "balanced", cfg.Advisor.DefaultStrategy)
	assert.InDelta(t, 0.05, cfg.Advisor.DriftThreshold, 1e-9)

	// Server defaults
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "release", cfg.Server.Mode)
}

func TestDefaultConfigIsValid(t *testing.T) {
	validator := NewValidator()
	require.NoError(t, validator.Validate(DefaultConfig()))
}

func TestLoadValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
core:
  home_dir: /tmp/genadvisor-test
  data_dir: /tmp/genadvisor-test/data
  parallel_limit: 20
  timeout: 10m
  debug: true

logging:
  level: debug
  format: text

market:
  source: file
  data_dir: /tmp/genadvisor-test/feeds
  refresh_interval: 5m
  watch_debounce: 500ms

retrieval:
  top_k: 8
  vector_store:
    type: sqlite
    path: /tmp/genadvisor-test/vectors.db
  embedder:
    type: tfidf

cache:
  type: memory
  ttl: 90s
  max_entries: 50

advisor:
  default_strategy: aggressive
  drift_threshold: 0.1

server:
  host: 127.0.0.1
  port: 9000
  mode: test
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	validator := NewValidator()
	loader := NewConfigLoader(validator)
	cfg, err := loader.Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "/tmp/genadvisor-test", cfg.Core.HomeDir)
	assert.Equal(t, 20, cfg.Core.ParallelLimit)
	assert.Equal(t, 10*time.Minute, cfg.Core.Timeout)
	assert.True(t, cfg.Core.Debug)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)

	assert.Equal(t, "/tmp/genadvisor-test/feeds", cfg.Market.DataDir)
	assert.Equal(t, 5*time.Minute, cfg.Market.RefreshInterval)
	assert.Equal(t, 500*time.Millisecond, cfg.Market.WatchDebounce)

	assert.Equal(t, 8, cfg.Retrieval.TopK)
	assert.Equal(t, "sqlite", cfg.Retrieval.VectorStore.Type)
	assert.Equal(t, "/tmp/genadvisor-test/vectors.db", cfg.Retrieval.VectorStore.Path)

	assert.Equal(t, 90*time.Second, cfg.Cache.TTL)
	assert.Equal(t, 50, cfg.Cache.MaxEntries)

	assert.Equal(t, "aggressive", cfg.Advisor.DefaultStrategy)
	assert.Equal(t, 9000, cfg.Server.Port)

	// Keys absent from the file keep their defaults.
	assert.Equal(t, "stocks.json", cfg.Market.StocksFile)
	assert.Equal(t, "tfidf", cfg.Retrieval.Embedder.Type)
}

func TestLoadWithEnvironmentVariableInterpolation(t *testing.T) {
	t.Setenv("GENADVISOR_HOME", "/custom/genadvisor")
	t.Setenv("GENADVISOR_REDIS_ADDR", "redis.internal:6379")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
core:
  home_dir: ${GENADVISOR_HOME}
  data_dir: ${GENADVISOR_HOME}/data

cache:
  type: redis
  redis:
    addr: ${GENADVISOR_REDIS_ADDR}
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	validator := NewValidator()
	loader := NewConfigLoader(validator)
	cfg, err := loader.Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, "/custom/genadvisor", cfg.Core.HomeDir)
	assert.Equal(t, "/custom/genadvisor/data", cfg.Core.DataDir)
	assert.Equal(t, "redis.internal:6379", cfg.Cache.Redis.Addr)
}

func TestLoadWithMissingEnvironmentVariables(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
core:
  home_dir: ${GENADVISOR_NONEXISTENT_VAR}
`

	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	validator := NewValidator()
	loader := NewConfigLoader(validator)
	cfg, err := loader.Load(configPath)
	require.NoError(t, err)

	// Unset variables leave the placeholder untouched.
	assert.Equal(t, "${GENADVISOR_NONEXISTENT_VAR}", cfg.Core.HomeDir)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantMsg string
	}{
		{
			name: "parallel limit too high",
			content: `
core:
  parallel_limit: 500
`,
			wantMsg: "core.parallel_limit",
		},
		{
			name: "unknown cache type",
			content: `
cache:
  type: memcached
`,
			wantMsg: "cache.type",
		},
		{
			name: "sqlite store without path",
			content: `
retrieval:
  vector_store:
    type: sqlite
    path: ""
`,
			wantMsg: "retrieval.vector_store.path",
		},
		{
			name: "server port out of range",
			content: `
server:
  port: 70000
`,
			wantMsg: "server.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0644))

			loader := NewConfigLoader(NewValidator())
			cfg, err := loader.Load(configPath)
			require.Error(t, err)
			assert.Nil(t, cfg)
			assert.Equal(t, types.CONFIG_VALIDATION_FAILED, types.CodeOf(err))
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestLoadWithDefaultsMissingFile(t *testing.T) {
	loader := NewConfigLoader(NewValidator())
	cfg, err := loader.LoadWithDefaults(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultConfig().Retrieval.TopK, cfg.Retrieval.TopK)
}

func TestLoadNonexistentFile(t *testing.T) {
	loader := NewConfigLoader(NewValidator())
	cfg, err := loader.Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
	assert.Nil(t, cfg)
	assert.Equal(t, types.CONFIG_LOAD_FAILED, types.CodeOf(err))
}

func TestValidatorNilConfig(t *testing.T) {
	err := NewValidator().Validate(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nil")
}

func TestFormatFieldPath(t *testing.T) {
	assert.Equal(t, "core.parallel_limit", formatFieldPath("Config.Core.ParallelLimit"))
	assert.Equal(t, "retrieval.vector_store.type", formatFieldPath("Config.Retrieval.VectorStore.Type"))
}
