package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"OPENWEATHER_API_KEY", "OPENWEATHER_BASE_URL", "YOUTUBE_API_KEY", "GOOGLE_MAPS_API_KEY",
		"PORT", "BACKEND_URL", "FRONTEND_URL", "DB_PATH", "HTTP_TIMEOUT", "UPSTREAM_MAX_RETRIES",
		"UPSTREAM_BREAKER_FAILURES",
		"TRACKED_LOCATIONS", "REFRESH_INTERVAL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.BackendURL)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.FrontendOrigins)
	assert.Equal(t, "https://api.openweathermap.org", cfg.OpenWeatherBaseURL)
	assert.Equal(t, "weather.db", cfg.DBPath)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 0, cfg.UpstreamMaxRetries)
	assert.Zero(t, cfg.UpstreamBreakerFailures)
	assert.Empty(t, cfg.TrackedLocations)
	assert.Equal(t, time.Hour, cfg.RefreshInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OPENWEATHER_API_KEY", "ow")
	t.Setenv("PORT", "9090")
	t.Setenv("FRONTEND_URL", "http://a.test, http://b.test ,")
	t.Setenv("HTTP_TIMEOUT", "3s")
	t.Setenv("UPSTREAM_MAX_RETRIES", "2")
	t.Setenv("UPSTREAM_BREAKER_FAILURES", "5")
	t.Setenv("TRACKED_LOCATIONS", "Paris,London")
	t.Setenv("REFRESH_INTERVAL", "30m")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "ow", cfg.OpenWeatherAPIKey)
	assert.Equal(t, "http://localhost:9090", cfg.BackendURL)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.FrontendOrigins)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, 2, cfg.UpstreamMaxRetries)
	assert.Equal(t, uint32(5), cfg.UpstreamBreakerFailures)
	assert.Equal(t, []string{"Paris", "London"}, cfg.TrackedLocations)
	assert.Equal(t, 30*time.Minute, cfg.RefreshInterval)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"HTTP_TIMEOUT":              "soon",
		"REFRESH_INTERVAL":          "hourly",
		"UPSTREAM_MAX_RETRIES":      "-1",
		"UPSTREAM_BREAKER_FAILURES": "-3",
	}
	for key, val := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, val)

			_, err := FromEnv()
			assert.ErrorContains(t, err, key)
		})
	}
}
