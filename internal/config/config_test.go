package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"API_PORT", "API_ENV", "STATIC_DIR", "CORS_ORIGINS",
	"MARKETSTACK_API_KEY", "MARKETSTACK_API_KEY_FREE", "MARKETSTACK_BASE_URL",
	"MARKETSTACK_RATE_LIMIT", "MARKETSTACK_TIMEOUT",
	"ENABLE_MARKETSTACK_CACHE", "MARKETSTACK_CACHE_TTL", "MAX_SYMBOLS", "LOG_LEVEL",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Server.Port)
	assert.Equal(t, "http://api.marketstack.com/v1", c.Marketstack.BaseURL)
	assert.Equal(t, 10, c.Limits.MaxSymbols)
	assert.False(t, c.CacheEnabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "9000"
  env: development
marketstack:
  timeout: 10s
  max_pages: 3
cache:
  enabled: true
  ttl: 15m
limits:
  max_symbols: 5
log:
  level: debug
`), 0o644))

	t.Setenv("MARKETSTACK_API_KEY_FREE", "free-key")
	t.Setenv("MAX_SYMBOLS", "7")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://example.com")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "9000", c.Server.Port)
	assert.Equal(t, 10*time.Second, c.Marketstack.Timeout)
	assert.Equal(t, 3, c.Marketstack.MaxPages)
	assert.Equal(t, 1000, c.Marketstack.PageLimit)
	assert.Equal(t, 15*time.Minute, c.Cache.TTL)
	assert.Equal(t, 7, c.Limits.MaxSymbols)
	assert.Equal(t, "free-key", c.Marketstack.APIKey)
	assert.Equal(t, []string{"http://localhost:5173", "https://example.com"}, c.Server.CORSOrigins)
	assert.True(t, c.CacheEnabled())

	t.Run("primary key wins over fallback", func(t *testing.T) {
		t.Setenv("MARKETSTACK_API_KEY", "paid-key")
		c, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "paid-key", c.Marketstack.APIKey)
	})

	t.Run("cache is never enabled in production", func(t *testing.T) {
		t.Setenv("API_ENV", "production")
		c, err := Load(path)
		require.NoError(t, err)
		assert.False(t, c.CacheEnabled())
	})
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	t.Run("bad env value", func(t *testing.T) {
		t.Setenv("MAX_SYMBOLS", "many")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("fails validation", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "verbose")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})

	t.Run("nil config", func(t *testing.T) {
		var c *Config
		assert.Error(t, c.Validate())
	})
}
