package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("FOODREEL_API_BASE_URL", "")
	t.Setenv("FOODREEL_API_TIMEOUT", "")

	cfg := FromEnv()

	assert.Equal(t, DefaultBaseURL, cfg.Backend.BaseURL)
	assert.Equal(t, DefaultTimeout, cfg.Backend.Timeout)
	assert.Equal(t, StorageFile, cfg.Storage.Backend)
	assert.NotEmpty(t, cfg.Storage.Path)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("FOODREEL_API_BASE_URL", "https://api.example.com/v1")
	t.Setenv("FOODREEL_API_TIMEOUT", "3s")
	t.Setenv("FOODREEL_STORAGE", StorageMemory)
	t.Setenv("FOODREEL_ADDR", ":9000")

	cfg := FromEnv()

	assert.Equal(t, "https://api.example.com/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, StorageMemory, cfg.Storage.Backend)
	assert.Equal(t, ":9000", cfg.Server.Addr)
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foodreel.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
backend:
  base_url: https://file.example.com/api
  timeout: 20s
storage:
  backend: redis
redis:
  url: redis://localhost:6379/0
tracing:
  enabled: true
  sample_ratio: 0.25
`), 0o600))

	t.Setenv("FOODREEL_CONFIG", path)
	t.Setenv("FOODREEL_API_BASE_URL", "")
	t.Setenv("FOODREEL_API_TIMEOUT", "5s")
	t.Setenv("FOODREEL_STORAGE", "")
	t.Setenv("REDIS_URL", "")
	t.Setenv("FOODREEL_TRACING_ENABLED", "")
	t.Setenv("FOODREEL_TRACING_SAMPLE_RATIO", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "https://file.example.com/api", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Backend.Timeout, "env wins over file")
	assert.Equal(t, StorageRedis, cfg.Storage.Backend)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Redis.URL)
	assert.Equal(t, "foodreel:", cfg.Redis.KeyPrefix, "defaults survive the overlay")
	assert.True(t, cfg.Tracing.Enabled)
	assert.Equal(t, 0.25, cfg.Tracing.SampleRatio)
	assert.Equal(t, "foodreel-shell", cfg.Tracing.ServiceName)
}

func TestValidate(t *testing.T) {
	t.Run("redis backend needs url", func(t *testing.T) {
		cfg := Defaults()
		cfg.Storage.Backend = StorageRedis
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown backend", func(t *testing.T) {
		cfg := Defaults()
		cfg.Storage.Backend = "cookie"
		assert.Error(t, cfg.Validate())
	})

	t.Run("non-positive timeout", func(t *testing.T) {
		cfg := Defaults()
		cfg.Backend.Timeout = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("sample ratio out of range", func(t *testing.T) {
		cfg := Defaults()
		cfg.Tracing.SampleRatio = 1.5
		assert.Error(t, cfg.Validate())
	})

	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, Defaults().Validate())
	})
}
