package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/weather-gateway/internal/weather"
)

const (
	jobTag         = "weather-refresh"
	refreshTimeout = 30 * time.Second
)

// Fetcher is the part of weather.Service the scheduler drives.
type Fetcher interface {
	FetchAndStore(ctx context.Context, req weather.Request) (*weather.Record, error)
}

// Scheduler periodically fetches and stores weather for tracked locations.
type Scheduler struct {
	scheduler *gocron.Scheduler
	fetcher   Fetcher
	locations []string
	interval  time.Duration
	logger    *zap.Logger
}

// New creates a new Scheduler.
func New(locations []string, interval time.Duration, fetcher Fetcher, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		fetcher:   fetcher,
		locations: locations,
		interval:  interval,
		logger:    logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.locations) == 0 {
		s.logger.Info("no tracked locations configured; refresh disabled")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	// Singleton mode skips a tick while the previous refresh is still running.
	_, err := s.scheduler.Every(minutes).Minutes().
		Tag(jobTag).
		SingletonMode().
		Do(func() { s.RunOnce() })
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started",
		zap.Int("locations", len(s.locations)),
		zap.Int("everyMinutes", minutes))
	return nil
}

// RunOnce refreshes every tracked location concurrently and returns how many
// succeeded. A failed location never stops the others.
func (s *Scheduler) RunOnce() int {
	started := time.Now()

	var (
		wg sync.WaitGroup
		ok atomic.Int32
	)
	for _, loc := range s.locations {
		wg.Add(1)
		go func(loc string) {
			defer wg.Done()

			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()

			if _, err := s.fetcher.FetchAndStore(ctx, weather.Request{Location: loc}); err != nil {
				s.logger.Warn("refresh failed", zap.String("location", loc), zap.Error(err))
				return
			}
			ok.Add(1)
		}(loc)
	}
	wg.Wait()

	s.logger.Info("refresh completed",
		zap.Int("succeeded", int(ok.Load())),
		zap.Int("total", len(s.locations)),
		zap.Duration("took", time.Since(started)))
	return int(ok.Load())
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
