package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kelvins/geocoder"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-gateway/internal/media"
)

const mapsEmbedBaseURL = "https://www.google.com/maps/embed/v1/place"

// GoogleMapsProvider implements media.PlaceLocator with the Google Geocoding
// API (through kelvins/geocoder) and builds a Maps Embed URL for the result.
// The geocoder package takes no context, so a lookup in flight cannot be cancelled.
type GoogleMapsProvider struct {
	apiKey  string
	circuit *gobreaker.CircuitBreaker

	geocode func(geocoder.Address) (geocoder.Location, error)
	reverse func(geocoder.Location) ([]geocoder.Address, error)
}

// NewGoogleMapsProvider sets the geocoder package key once; it is process-wide.
// breakerFailures works as in HTTPClientConfig.
func NewGoogleMapsProvider(apiKey string, breakerFailures uint32) *GoogleMapsProvider {
	geocoder.ApiKey = apiKey
	return &GoogleMapsProvider{
		apiKey:  apiKey,
		circuit: newBreaker("googlemaps", breakerFailures),
		geocode: geocoder.Geocoding,
		reverse: geocoder.GeocodingReverse,
	}
}

func (p *GoogleMapsProvider) Locate(ctx context.Context, location string) (media.MapInfo, error) {
	location = strings.TrimSpace(location)
	if p.apiKey == "" {
		return media.MapInfo{}, fmt.Errorf("google maps api key is not configured")
	}
	if location == "" {
		return media.MapInfo{}, fmt.Errorf("location is empty")
	}
	if err := ctx.Err(); err != nil {
		return media.MapInfo{}, err
	}

	result, err := guarded(p.circuit, func() (interface{}, error) {
		return p.geocode(geocoder.Address{City: location})
	})
	if err != nil {
		return media.MapInfo{}, fmt.Errorf("geocoding %q: %w", location, err)
	}
	loc, ok := result.(geocoder.Location)
	if !ok {
		return media.MapInfo{}, fmt.Errorf("unexpected result type from circuit breaker")
	}

	address := location
	if addrs, err := p.reverse(loc); err == nil && len(addrs) > 0 && addrs[0].FormattedAddress != "" {
		address = addrs[0].FormattedAddress
	}

	return media.MapInfo{
		EmbedURL: p.embedURL(address),
		Lat:      loc.Latitude,
		Lng:      loc.Longitude,
		Address:  address,
	}, nil
}

func (p *GoogleMapsProvider) embedURL(address string) string {
	values := url.Values{}
	values.Set("key", p.apiKey)
	values.Set("q", address)
	return mapsEmbedBaseURL + "?" + values.Encode()
}
