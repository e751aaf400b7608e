package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.ErrorIs(t, cfg.RequireTelegram(), ErrMissingToken)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	path := writeFile(t, "datadesk.yaml", `
telegram:
  token: "123:abc"
  workers: 4
store:
  backend: redis
  ttl: 90m
  redis:
    addr: "redis:6379"
    db: 2
log:
  level: debug
`)

	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, 4, cfg.Telegram.Workers)
	assert.Equal(t, 60, cfg.Telegram.PollTimeout, "unset keys keep their defaults")
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, 90*time.Minute, cfg.Store.TTL)
	assert.Equal(t, "redis:6379", cfg.Store.Redis.Addr)
	assert.Equal(t, 2, cfg.Store.Redis.DB)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.NoError(t, cfg.RequireTelegram())
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeFile(t, "datadesk.yaml", "http:\n  addr: \":9000\"\n")
	envFile := writeFile(t, ".env", "DATADESK_TELEGRAM_TOKEN=from-dotenv\nDATADESK_LOG_LEVEL=warn\n")
	t.Setenv("DATADESK_HTTP_ADDR", ":7000")
	t.Setenv("DATADESK_STORE_TTL", "0s")
	t.Setenv("DATADESK_MAX_INPUT_SIZE", "128")
	t.Setenv("DATADESK_LOG_LEVEL", "error")
	t.Setenv("DATADESK_HTTP_SESSION_ADMIN", "true")
	t.Cleanup(func() { os.Unsetenv("DATADESK_TELEGRAM_TOKEN") })

	cfg, err := Load(path, envFile)
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.HTTP.Addr)
	assert.True(t, cfg.HTTP.SessionAdmin)
	assert.Equal(t, time.Duration(0), cfg.Store.TTL)
	assert.Equal(t, 128, cfg.Limits.MaxInputSize)
	assert.Equal(t, "from-dotenv", cfg.Telegram.Token)
	assert.Equal(t, "error", cfg.Log.Level, "process environment wins over .env")
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{name: "Unknown Backend", yaml: "store:\n  backend: etcd\n"},
		{name: "Unknown Level", yaml: "log:\n  level: verbose\n"},
		{name: "No Workers", yaml: "telegram:\n  workers: 0\n"},
		{name: "Redis Without Addr", yaml: "store:\n  backend: redis\n  redis:\n    addr: \"\"\n"},
		{name: "Bad Redis Addr", yaml: "store:\n  redis:\n    addr: nope\n"},
		{name: "Malformed YAML", yaml: "store: [\n"},
		{name: "Bad Encryption Key", env: map[string]string{"DATADESK_ENCRYPTION_KEY": "not base64!"}},
		{name: "Bad Fallback Key", yaml: "store:\n  encryption:\n    fallback_keys: [\"%%%\"]\n"},
		{name: "Bad Env Int", env: map[string]string{"DATADESK_REDIS_DB": "two"}},
		{name: "Bad Env Duration", env: map[string]string{"DATADESK_STORE_TTL": "forever"}},
		{name: "Bad Env Bool", env: map[string]string{"DATADESK_HTTP_SESSION_ADMIN": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			path := writeFile(t, "datadesk.yaml", tt.yaml)
			_, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
