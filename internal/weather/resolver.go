package weather

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// ResolveStatus tells apart the outcomes of a best-effort geocoding lookup.
type ResolveStatus string

const (
	ResolveFound    ResolveStatus = "found"
	ResolveNotFound ResolveStatus = "not_found"
	ResolveFailed   ResolveStatus = "failed"
	ResolveSkipped  ResolveStatus = "skipped"
)

// Resolution is the result of a resolver lookup. Info is set only when Status is ResolveFound.
type Resolution struct {
	Status ResolveStatus
	Info   *LocationInfo
	Err    error
}

// Resolver enriches weather lookups with a display name. It never fails the caller.
type Resolver struct {
	geocoder Geocoder
	logger   *zap.Logger
}

// NewResolver creates a Resolver. A nil geocoder makes every lookup skipped.
func NewResolver(geocoder Geocoder, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{geocoder: geocoder, logger: logger}
}

// ResolveForward looks up a free-text location.
func (r *Resolver) ResolveForward(ctx context.Context, text string) Resolution {
	if r == nil || r.geocoder == nil {
		return Resolution{Status: ResolveSkipped}
	}

	places, err := r.geocoder.Forward(ctx, text)
	if err != nil {
		r.logger.Warn("forward geocoding failed", zap.String("location", text), zap.Error(err))
		return Resolution{Status: ResolveFailed, Err: err}
	}
	if len(places) == 0 {
		return Resolution{Status: ResolveNotFound}
	}

	p := places[0]
	return Resolution{Status: ResolveFound, Info: newLocationInfo(p, p.Lat, p.Lon)}
}

// ResolveReverse looks up a coordinate pair. The returned info keeps the
// input coordinates rather than the provider's.
func (r *Resolver) ResolveReverse(ctx context.Context, lat, lon float64) Resolution {
	if r == nil || r.geocoder == nil {
		return Resolution{Status: ResolveSkipped}
	}

	places, err := r.geocoder.Reverse(ctx, lat, lon)
	if err != nil {
		r.logger.Warn("reverse geocoding failed",
			zap.Float64("lat", lat),
			zap.Float64("lon", lon),
			zap.Error(err))
		return Resolution{Status: ResolveFailed, Err: err}
	}
	if len(places) == 0 {
		return Resolution{Status: ResolveNotFound}
	}

	return Resolution{Status: ResolveFound, Info: newLocationInfo(places[0], lat, lon)}
}

func newLocationInfo(p Place, lat, lon float64) *LocationInfo {
	return &LocationInfo{
		Lat:      lat,
		Lon:      lon,
		Name:     p.Name,
		Country:  p.Country,
		State:    optional(p.State),
		FullName: FullName(p.Name, p.State, p.Country),
	}
}

// FullName renders "name, state, country", dropping the state when empty.
func FullName(name, state, country string) string {
	parts := []string{name}
	if state != "" {
		parts = append(parts, state)
	}
	parts = append(parts, country)
	return strings.Join(parts, ", ")
}
