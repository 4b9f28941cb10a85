package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-gateway/internal/api/http"
	"github.com/i474232898/weather-gateway/internal/config"
	"github.com/i474232898/weather-gateway/internal/logging"
	"github.com/i474232898/weather-gateway/internal/media"
	"github.com/i474232898/weather-gateway/internal/scheduler"
	"github.com/i474232898/weather-gateway/internal/store"
	"github.com/i474232898/weather-gateway/internal/weather"
	"github.com/i474232898/weather-gateway/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}

	err = run(cfg, logger)
	if err != nil {
		logger.Error("weather-gateway stopped", zap.Error(err))
	}
	_ = logger.Sync()
	if err != nil {
		log.Fatal(err)
	}
}

func run(cfg *config.AppConfig, logger *zap.Logger) error {
	// Shared HTTP settings for outbound provider calls.
	httpCfg := providers.HTTPClientConfig{
		Client: &http.Client{Timeout: cfg.HTTPTimeout},
		Backoff: providers.BackoffConfig{
			MaxRetries:      cfg.UpstreamMaxRetries,
			InitialInterval: 500 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		},
		BreakerFailures: cfg.UpstreamBreakerFailures,
	}

	// SQLite store, created once and injected.
	sqlStore, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening store %s: %w", cfg.DBPath, err)
	}
	defer sqlStore.Close()

	if cfg.OpenWeatherAPIKey == "" {
		logger.Warn("OPENWEATHER_API_KEY is not set; weather requests will be rejected upstream")
	}

	provider := providers.NewOpenWeatherProvider(httpCfg, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
	geocoder := providers.NewOpenWeatherGeocoder(httpCfg, cfg.OpenWeatherAPIKey, cfg.OpenWeatherBaseURL)
	resolver := weather.NewResolver(geocoder, logger.Named("resolver"))

	// Core service orchestrating resolver, provider and store.
	service := weather.NewService(sqlStore, provider, resolver, logger.Named("weather"))

	var searcher media.VideoSearcher
	if cfg.YouTubeAPIKey != "" {
		searcher = providers.NewYouTubeProvider(httpCfg, cfg.YouTubeAPIKey)
	}
	var locator media.PlaceLocator
	if cfg.GoogleMapsAPIKey != "" {
		locator = providers.NewGoogleMapsProvider(cfg.GoogleMapsAPIKey, cfg.UpstreamBreakerFailures)
	}

	// Scheduler that periodically refreshes tracked locations.
	sched := scheduler.New(cfg.TrackedLocations, cfg.RefreshInterval, service, logger.Named("scheduler"))
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp(httpapi.Deps{
		Weather:    service,
		Videos:     media.NewVideoService(searcher, logger.Named("videos")),
		Maps:       media.NewMapService(locator, logger.Named("maps")),
		Logger:     logger.Named("http"),
		BackendURL: cfg.BackendURL,
	}, httpapi.Options{
		AllowOrigins: cfg.FrontendOrigins,
	})

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("server listening",
			zap.String("port", cfg.Port),
			zap.String("backendUrl", cfg.BackendURL),
			zap.Strings("allowedOrigins", cfg.FrontendOrigins))
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("fiber server stopped: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
