package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"equity-backtest/internal/data"

	"github.com/joho/godotenv"
)

// ServerEnv is the API server's environment-derived configuration.
type ServerEnv struct {
	Port           string
	Env            string // "production" disables debug output
	LogLevel       string
	AllowedOrigins []string
	UniverseFile   string
	Data           data.Options
}

// Production reports whether API_ENV=production.
func (e ServerEnv) Production() bool { return e.Env == "production" }

// LoadServerEnv reads an optional .env file into the process environment
// (existing variables win) and collects server settings. It reports whether
// a .env file was found.
func LoadServerEnv(files ...string) (ServerEnv, bool) {
	found := godotenv.Load(files...) == nil

	cacheTTL := getEnvAsDuration("BAR_CACHE_TTL", time.Hour)
	if getEnv("API_ENV", "development") == "production" && os.Getenv("BAR_CACHE_TTL") == "" {
		cacheTTL = 15 * time.Minute
	}

	env := ServerEnv{
		Port:           getEnv("API_PORT", "8080"),
		Env:            getEnv("API_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		UniverseFile:   data.DefaultUniversePath(),
		Data: data.Options{
			Source:   getEnv("DATA_SOURCE", data.KindJSON),
			Path:     getEnv("BARS_PATH", "./data/bars"),
			CacheTTL: cacheTTL,
			Alpaca: data.AlpacaOptions{
				KeyID:     os.Getenv("APCA_API_KEY_ID"),
				SecretKey: os.Getenv("APCA_API_SECRET_KEY"),
				BaseURL:   os.Getenv("APCA_API_DATA_URL"),
				Feed:      getEnv("APCA_DATA_FEED", "iex"),
			},
			ClickHouse: data.ClickHouseOptions{
				Addr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
				Database: getEnv("CLICKHOUSE_DATABASE", "market"),
				Username: getEnv("CLICKHOUSE_USER", "default"),
				Password: os.Getenv("CLICKHOUSE_PASSWORD"),
				Table:    getEnv("CLICKHOUSE_TABLE", "daily_bars"),
			},
		},
	}
	return env, found
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

// getEnvAsFloat64 returns fallback when key is unset or not a number.
func getEnvAsFloat64(key string, fallback float64) float64 {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	v, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return fallback
	}
	return v
}

// getEnvAsDuration accepts Go durations ("90m") or plain seconds.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return fallback
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	return time.Duration(getEnvAsFloat64(key, fallback.Seconds()) * float64(time.Second))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
