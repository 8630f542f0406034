package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL    string
	UserAgent      string
	RequestTimeout int
	RateLimit      int
	Workers        int
	ViewportWidth  int
	ListenAddr     string
	LogLevel       string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		UserAgent:      getEnv("USER_AGENT", "SEOToolkit/1.0"),
		RequestTimeout: getEnvInt("REQUEST_TIMEOUT", 30),
		RateLimit:      getEnvInt("RATE_LIMIT", 10),
		Workers:        getEnvInt("WORKERS", 4),
		ViewportWidth:  getEnvInt("VIEWPORT_WIDTH", 375),
		ListenAddr:     getEnv("LISTEN_ADDR", ":8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
	}
}

// SlogLevel maps LogLevel onto a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n < 0 {
		slog.Warn("ignoring invalid integer setting", "key", key, "value", val)
		return defaultVal
	}
	return n
}
