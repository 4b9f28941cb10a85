package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/i474232898/weather-gateway/internal/common"
)

type AppConfig struct {
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	YouTubeAPIKey      string
	GoogleMapsAPIKey   string

	// FrontendOrigins is the CORS allow-list.
	FrontendOrigins []string
	BackendURL      string
	Port            string

	DBPath string

	// Outbound calls.
	HTTPTimeout        time.Duration
	UpstreamMaxRetries int

	// Consecutive upstream failures that open a provider's circuit breaker (0 = no breaker).
	UpstreamBreakerFailures uint32

	// Periodic refresh of tracked locations (empty = disabled).
	TrackedLocations []string
	RefreshInterval  time.Duration

	LogLevel  string
	LogFormat string
}

// Load reads configuration from environment with sensible defaults.
// A .env file in the working directory is loaded first when present.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from the process environment only.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.OpenWeatherBaseURL = getenvDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org")
	cfg.YouTubeAPIKey = os.Getenv("YOUTUBE_API_KEY")
	cfg.GoogleMapsAPIKey = os.Getenv("GOOGLE_MAPS_API_KEY")

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.BackendURL = getenvDefault("BACKEND_URL", "http://localhost:"+cfg.Port)
	cfg.FrontendOrigins = common.SplitList(getenvDefault("FRONTEND_URL", "http://localhost:3000"))
	cfg.DBPath = getenvDefault("DB_PATH", "weather.db")

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.UpstreamMaxRetries = getenvInt("UPSTREAM_MAX_RETRIES", 0)
	if cfg.UpstreamMaxRetries < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_MAX_RETRIES: must not be negative")
	}
	failures := getenvInt("UPSTREAM_BREAKER_FAILURES", 0)
	if failures < 0 {
		return nil, fmt.Errorf("invalid UPSTREAM_BREAKER_FAILURES: must not be negative")
	}
	cfg.UpstreamBreakerFailures = uint32(failures)

	cfg.TrackedLocations = common.SplitList(os.Getenv("TRACKED_LOCATIONS"))
	interval, err := time.ParseDuration(getenvDefault("REFRESH_INTERVAL", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	cfg.RefreshInterval = interval

	cfg.LogLevel = getenvDefault("LOG_LEVEL", "info")
	cfg.LogFormat = getenvDefault("LOG_FORMAT", "json")

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
