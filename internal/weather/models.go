package weather

import (
	"time"
)

// Payload is an upstream JSON object kept in the shape the provider sent it.
type Payload map[string]any

// Record is the merged current + forecast view returned to callers and
// persisted as the weather_data column of a query row.
type Record struct {
	Current  Payload `json:"current"`
	Forecast Payload `json:"forecast"`

	// SearchedLocation is only set when a record is created, never on update.
	SearchedLocation string `json:"searchedLocation,omitempty"`
}

// Coordinates is attached to Record.Current when the provider reports a coord.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationInfo is the human-readable location produced by the resolver.
type LocationInfo struct {
	Lat      float64 `json:"lat"`
	Lon      float64 `json:"lon"`
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	State    *string `json:"state"`
	FullName string  `json:"fullName"`
}

// QueryMode selects how the upstream weather query identifies a location.
type QueryMode string

const (
	ModeName   QueryMode = "name"
	ModeZip    QueryMode = "zip"
	ModeCoords QueryMode = "coords"
)

// Query is the provider-facing form of a location lookup.
type Query struct {
	Mode QueryMode
	Text string
	Lat  float64
	Lon  float64
}

// Request is the input of a weather fetch.
// Either Location or both Lat and Lon must be provided.
type Request struct {
	Location string   `json:"location" validate:"max=200"`
	Lat      *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon      *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
	Type     string   `json:"type"`
	DateFrom string   `json:"dateFrom"`
	DateTo   string   `json:"dateTo"`
}

// UpdateRequest re-fetches an existing query by free-text location.
type UpdateRequest struct {
	Location string `json:"location" validate:"required,max=200"`
	DateFrom string `json:"dateFrom"`
	DateTo   string `json:"dateTo"`
}

// WeatherQuery is a persisted weather lookup.
type WeatherQuery struct {
	ID          int64     `json:"id"`
	Location    string    `json:"location"`
	DateFrom    *string   `json:"dateFrom"`
	DateTo      *string   `json:"dateTo"`
	WeatherData *Record   `json:"weatherData"`
	CreatedAt   time.Time `json:"createdAt"` // always UTC
}

// optional maps an empty string to a nil pointer.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
