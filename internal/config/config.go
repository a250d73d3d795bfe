package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	HTTPAddr string

	Reports ReportsConfig
}

// ReportsConfig carries the report windows and limits. Heuristic thresholds
// live separately in Heuristics so they can be hot reloaded.
type ReportsConfig struct {
	// MoverWindowDays is the default current-window length for the
	// period mover analysis.
	MoverWindowDays int
	// StockoutWindowDays is the trailing day-series length for the
	// stockout detector.
	StockoutWindowDays int
	// TopN bounds ranked lists (movers, routes, drivers, sources).
	TopN int
	// CacheTTL is how long a computed report stays fresh before the
	// dashboard recomputes it.
	CacheTTL time.Duration
	// RefreshInterval is how often the background refresher re-warms
	// the report cache.
	RefreshInterval time.Duration
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "vendhub"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),
		Reports: ReportsConfig{
			MoverWindowDays:    getenvInt("REPORT_MOVER_WINDOW_DAYS", 30),
			StockoutWindowDays: getenvInt("REPORT_STOCKOUT_WINDOW_DAYS", 14),
			TopN:               getenvInt("REPORT_TOP_N", 5),
			CacheTTL:           getenvDuration("REPORT_CACHE_TTL", 5*time.Minute),
			RefreshInterval:    getenvDuration("REPORT_REFRESH_INTERVAL", 10*time.Minute),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

var Module = fx.Module("config",
	fx.Provide(
		Load,
		NewHeuristicsHolder,
	),
)
