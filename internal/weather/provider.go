package weather

import (
	"context"
	"errors"
)

// ErrNotFound is wrapped by Store implementations when an id does not exist.
var ErrNotFound = errors.New("weather query not found")

// Provider abstracts the current-conditions and forecast source (e.g. OpenWeatherMap).
type Provider interface {
	Name() string
	Current(ctx context.Context, q Query) (Payload, error)
	Forecast(ctx context.Context, q Query) (Payload, error)
}

// Place is a single geocoding match.
type Place struct {
	Name    string
	Country string
	State   string
	Lat     float64
	Lon     float64
}

// Geocoder abstracts forward and reverse geocoding. Both return at most one
// place; an empty slice means the provider found nothing.
type Geocoder interface {
	Forward(ctx context.Context, text string) ([]Place, error)
	Reverse(ctx context.Context, lat, lon float64) ([]Place, error)
}

// Store is the contract the query store must satisfy.
type Store interface {
	Insert(ctx context.Context, q WeatherQuery) (int64, error)
	List(ctx context.Context) ([]WeatherQuery, error)
	GetByID(ctx context.Context, id int64) (WeatherQuery, error)
	Update(ctx context.Context, id int64, q WeatherQuery) error
	Delete(ctx context.Context, id int64) error
}
