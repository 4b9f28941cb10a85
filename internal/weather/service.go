package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Service orchestrates the resolver, the weather provider and the query store.
type Service struct {
	store    Store
	provider Provider
	resolver *Resolver
	logger   *zap.Logger

	now func() time.Time
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, resolver *Resolver, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		provider: provider,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// Fetch validates the request, fetches current conditions and the forecast
// concurrently, and merges them into a Record. Enrichment runs alongside the
// weather calls and never fails the operation.
func (s *Service) Fetch(ctx context.Context, req Request) (*Record, error) {
	req.Location = strings.TrimSpace(req.Location)
	req.Type = strings.TrimSpace(req.Type)
	if err := validateRequest(req, s.now()); err != nil {
		return nil, err
	}

	q := buildQuery(req)

	var enrich func(context.Context) Resolution
	hasCoords := req.Lat != nil && req.Lon != nil
	switch {
	case req.Location != "" && !hasCoords:
		enrich = func(ctx context.Context) Resolution { return s.resolver.ResolveForward(ctx, req.Location) }
	case req.Location == "" && hasCoords:
		lat, lon := *req.Lat, *req.Lon
		enrich = func(ctx context.Context) Resolution { return s.resolver.ResolveReverse(ctx, lat, lon) }
	}

	rec, res, err := s.aggregate(ctx, q, enrich)
	if err != nil {
		return nil, err
	}
	rec.SearchedLocation = searchedLocation(req)

	s.logger.Debug("weather fetched",
		zap.String("location", rec.SearchedLocation),
		zap.String("mode", string(q.Mode)),
		zap.String("enrichment", string(res.Status)))
	return rec, nil
}

// FetchAndStore fetches a record and persists it as a new query row.
// The insert is awaited but its failure is only logged: persistence is
// best-effort and at most once, and the caller still receives the record.
func (s *Service) FetchAndStore(ctx context.Context, req Request) (*Record, error) {
	rec, err := s.Fetch(ctx, req)
	if err != nil {
		return nil, err
	}

	id, err := s.store.Insert(ctx, WeatherQuery{
		Location:    rec.SearchedLocation,
		DateFrom:    optional(strings.TrimSpace(req.DateFrom)),
		DateTo:      optional(strings.TrimSpace(req.DateTo)),
		WeatherData: rec,
	})
	if err != nil {
		s.logger.Error("failed to persist weather query",
			zap.String("location", rec.SearchedLocation),
			zap.Error(err))
		return rec, nil
	}

	s.logger.Info("weather query stored",
		zap.Int64("id", id),
		zap.String("location", rec.SearchedLocation))
	return rec, nil
}

// UpdateQuery re-fetches weather for a free-text location and overwrites the
// row identified by id. Unknown ids fail before any upstream call.
func (s *Service) UpdateQuery(ctx context.Context, id int64, req UpdateRequest) (*Record, error) {
	req.Location = strings.TrimSpace(req.Location)
	if err := validateUpdate(req, s.now()); err != nil {
		return nil, err
	}

	if _, err := s.store.GetByID(ctx, id); err != nil {
		return nil, s.storeError(id, err)
	}

	rec, _, err := s.aggregate(ctx, Query{Mode: ModeName, Text: req.Location}, nil)
	if err != nil {
		return nil, err
	}

	err = s.store.Update(ctx, id, WeatherQuery{
		Location:    req.Location,
		DateFrom:    optional(strings.TrimSpace(req.DateFrom)),
		DateTo:      optional(strings.TrimSpace(req.DateTo)),
		WeatherData: rec,
	})
	if err != nil {
		return nil, s.storeError(id, err)
	}

	s.logger.Info("weather query updated", zap.Int64("id", id), zap.String("location", req.Location))
	return rec, nil
}

// ListQueries returns every stored query, newest first.
func (s *Service) ListQueries(ctx context.Context) ([]WeatherQuery, error) {
	return s.store.List(ctx)
}

// GetQuery returns one stored query.
func (s *Service) GetQuery(ctx context.Context, id int64) (WeatherQuery, error) {
	q, err := s.store.GetByID(ctx, id)
	if err != nil {
		return WeatherQuery{}, s.storeError(id, err)
	}
	return q, nil
}

// DeleteQuery removes exactly one stored query.
func (s *Service) DeleteQuery(ctx context.Context, id int64) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return s.storeError(id, err)
	}
	s.logger.Info("weather query deleted", zap.Int64("id", id))
	return nil
}

func (s *Service) storeError(id int64, err error) error {
	if errors.Is(err, ErrNotFound) {
		return &NotFoundError{ID: id}
	}
	return err
}

// aggregate issues the current and forecast calls concurrently. The first
// failure cancels the other call and is returned as an *UpstreamError.
func (s *Service) aggregate(ctx context.Context, q Query, enrich func(context.Context) Resolution) (*Record, Resolution, error) {
	if s.provider == nil {
		return nil, Resolution{}, fmt.Errorf("no weather provider configured")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error

		current  Payload
		forecast Payload
		res      = Resolution{Status: ResolveSkipped}
	)

	fail := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
			cancel()
		}
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		p, err := s.provider.Current(ctx, q)
		if err != nil {
			fail(err)
			return
		}
		current = p
	}()
	go func() {
		defer wg.Done()
		p, err := s.provider.Forecast(ctx, q)
		if err != nil {
			fail(err)
			return
		}
		forecast = p
	}()

	if enrich != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res = enrich(ctx)
		}()
	}

	wg.Wait()

	if firstErr != nil {
		ue := asUpstreamError(s.provider.Name(), firstErr)
		s.logger.Warn("weather fetch failed", zap.String("mode", string(q.Mode)), zap.Error(ue))
		return nil, res, ue
	}

	return MergeRecord(current, forecast, res), res, nil
}
