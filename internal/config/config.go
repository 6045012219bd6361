package config

import (
	"time"

	"github.com/joho/godotenv"

	pkgconfig "github.com/feedscope/hermes-adapter/pkg/config"
)

// Config holds the runtime configuration for the adapter.
// It supports environment-based initialization, with sensible defaults.
type Config struct {
	ServiceName string // e.g. "hermes-adapter"
	Env         string // e.g. "dev", "uat", "prod"
	LogLevel    string // "debug", "info", etc.
	Port        int    // service HTTP port
	MetricsPort int    // prometheus /metrics port

	HermesBaseURL     string // price discovery + updates API
	BenchmarksBaseURL string // tradingview charting shim

	DirectoryTTL time.Duration // feed directory cache entry lifetime
	HTTPTimeout  time.Duration // per-request upstream timeout

	RateLimitRPS   int
	RateLimitBurst int
}

// Load loads configuration from environment variables and .env file if present.
func Load() *Config {
	// load .env silently (no error if missing)
	_ = godotenv.Load()

	return &Config{
		ServiceName:       pkgconfig.GetEnv("SERVICE_NAME", "hermes-adapter"),
		Env:               pkgconfig.GetEnv("ENV", "dev"),
		LogLevel:          pkgconfig.GetEnv("LOG_LEVEL", "info"),
		Port:              pkgconfig.GetEnvInt("PORT", 9020),
		MetricsPort:       pkgconfig.GetEnvInt("METRICS_PORT", 9120),
		HermesBaseURL:     pkgconfig.GetEnv("HERMES_BASE_URL", "https://hermes.pyth.network"),
		BenchmarksBaseURL: pkgconfig.GetEnv("BENCHMARKS_BASE_URL", "https://benchmarks.pyth.network"),
		DirectoryTTL:      pkgconfig.GetEnvDuration("DIRECTORY_TTL", 24*time.Hour),
		HTTPTimeout:       pkgconfig.GetEnvDuration("HTTP_TIMEOUT", 10*time.Second),
		RateLimitRPS:      pkgconfig.GetEnvInt("RATE_LIMIT_RPS", 10),
		RateLimitBurst:    pkgconfig.GetEnvInt("RATE_LIMIT_BURST", 20),
	}
}
