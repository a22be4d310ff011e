package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/concierge/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "concierge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":8100", cfg.Addr)
	assert.Equal(t, config.StoreMemory, cfg.Store.Kind)
	assert.Equal(t, 25, cfg.Engine.MaxSteps)
	assert.Equal(t, 4, cfg.Engine.ToolConcurrency)
	assert.Equal(t, 30*time.Second, cfg.CTS.Timeout)
	assert.Equal(t, "es", cfg.Locale.Language)
	assert.Equal(t, "CLP", cfg.Locale.Currency)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.CTSEnabled())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
addr: ":9000"
log:
  level: debug
  format: json
store:
  kind: redis
  redis:
    addr: redis:6379
    db: 2
    ttl: 24h
openai:
  model: gpt-4o
  temperature: 0.2
cts:
  api_v1: https://api.example/v1
  api_v2: https://api.example/v2
session:
  discard_on_close: true
`)

	cfg, err := config.Load(config.New(), path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, config.StoreRedis, cfg.Store.Kind)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Store.Redis.TTL)
	assert.Equal(t, "concierge:session:", cfg.Store.Redis.Prefix, "unset keys keep their default")
	assert.Equal(t, "gpt-4o", cfg.OpenAI.Model)
	assert.InDelta(t, 0.2, cfg.OpenAI.Temperature, 0.0001)
	assert.True(t, cfg.CTSEnabled())
	assert.True(t, cfg.Session.DiscardOnClose)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "store:\n  kind: file\n")
	t.Setenv("CONCIERGE_STORE_KIND", "memory")
	t.Setenv("CONCIERGE_ENGINE_MAX_STEPS", "7")

	cfg, err := config.Load(config.New(), path)
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Store.Kind)
	assert.Equal(t, 7, cfg.Engine.MaxSteps)
}

func TestLoad_LegacyEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("OPENAI_API_KEY", "sk-legacy")
	t.Setenv("CTS_API_V1", "https://legacy/v1")
	t.Setenv("FRONT_HOST", "https://front")

	cfg, err := config.Load(config.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sk-legacy", cfg.OpenAI.APIKey)
	assert.Equal(t, "https://legacy/v1", cfg.CTS.APIV1)
	assert.Equal(t, "https://front", cfg.CTS.FrontHost)

	t.Setenv("CONCIERGE_OPENAI_API_KEY", "sk-new")
	cfg, err = config.Load(config.New(), "")
	require.NoError(t, err)
	assert.Equal(t, "sk-new", cfg.OpenAI.APIKey, "the prefixed variable wins")
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(config.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")

	path := writeConfig(t, "store:\n  kind: postgres\n")
	_, err = config.Load(config.New(), path)
	assert.ErrorContains(t, err, "invalid store.kind")

	path = writeConfig(t, "engine:\n  max_steps: 0\n")
	_, err = config.Load(config.New(), path)
	assert.ErrorContains(t, err, "engine.max_steps")
}
