package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"equity-backtest/internal/data"

	"github.com/stretchr/testify/assert"
)

var serverKeys = []string{
	"API_PORT", "API_ENV", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS", "UNIVERSE_FILE",
	"DATA_SOURCE", "BARS_PATH", "BAR_CACHE_TTL",
	"APCA_API_KEY_ID", "APCA_API_SECRET_KEY", "APCA_API_DATA_URL", "APCA_DATA_FEED",
	"CLICKHOUSE_ADDR", "CLICKHOUSE_DATABASE", "CLICKHOUSE_USER", "CLICKHOUSE_PASSWORD", "CLICKHOUSE_TABLE",
}

func clearServerEnv(t *testing.T) {
	t.Helper()
	for _, k := range serverKeys {
		t.Setenv(k, "")
	}
}

func TestLoadServerEnv_Defaults(t *testing.T) {
	clearServerEnv(t)

	env, found := LoadServerEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.False(t, found)
	assert.Equal(t, "8080", env.Port)
	assert.Equal(t, "development", env.Env)
	assert.False(t, env.Production())
	assert.Equal(t, "info", env.LogLevel)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, env.AllowedOrigins)
	assert.Equal(t, data.KindJSON, env.Data.Source)
	assert.Equal(t, "./data/bars", env.Data.Path)
	assert.Equal(t, time.Hour, env.Data.CacheTTL)
	assert.Equal(t, "iex", env.Data.Alpaca.Feed)
	assert.Equal(t, "daily_bars", env.Data.ClickHouse.Table)
}

func TestLoadServerEnv_Overrides(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("API_PORT", "9090")
	t.Setenv("API_ENV", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("DATA_SOURCE", "clickhouse")
	t.Setenv("CLICKHOUSE_ADDR", "ch:9000")
	t.Setenv("APCA_API_KEY_ID", "key")

	env, _ := LoadServerEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "9090", env.Port)
	assert.True(t, env.Production())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, env.AllowedOrigins)
	assert.Equal(t, data.KindClickHouse, env.Data.Source)
	assert.Equal(t, "ch:9000", env.Data.ClickHouse.Addr)
	assert.Equal(t, "key", env.Data.Alpaca.KeyID)
	// Production shortens the default cache lifetime.
	assert.Equal(t, 15*time.Minute, env.Data.CacheTTL)
}

func TestGetEnvAsDuration(t *testing.T) {
	t.Setenv("X_TTL", "90m")
	assert.Equal(t, 90*time.Minute, getEnvAsDuration("X_TTL", time.Hour))

	t.Setenv("X_TTL", "120")
	assert.Equal(t, 2*time.Minute, getEnvAsDuration("X_TTL", time.Hour))

	t.Setenv("X_TTL", "soon")
	assert.Equal(t, time.Hour, getEnvAsDuration("X_TTL", time.Hour))

	t.Setenv("X_TTL", "")
	assert.Equal(t, time.Hour, getEnvAsDuration("X_TTL", time.Hour))
}

func TestLoadServerEnv_DotenvFile(t *testing.T) {
	clearServerEnv(t)
	t.Setenv("API_PORT", "7000")
	os.Unsetenv("LOG_LEVEL") // t.Setenv restores it on cleanup
	path := writeFile(t, t.TempDir(), ".env", "LOG_LEVEL=debug\nAPI_PORT=9999\n")

	env, found := LoadServerEnv(path)
	assert.True(t, found)
	assert.Equal(t, "debug", env.LogLevel)
	// Variables already in the environment win over the file.
	assert.Equal(t, "7000", env.Port)
}
