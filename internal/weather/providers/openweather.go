package providers

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// DefaultOpenWeatherBaseURL is the OpenWeatherMap API root.
const DefaultOpenWeatherBaseURL = "https://api.openweathermap.org"

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap
// current conditions and the 5-day / 3-hour forecast.
type OpenWeatherProvider struct {
	*Client
	apiKey  string
	baseURL string
}

func NewOpenWeatherProvider(cfg HTTPClientConfig, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	return &OpenWeatherProvider{
		Client:  NewClient("openweathermap", cfg),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (p *OpenWeatherProvider) Current(ctx context.Context, q weather.Query) (weather.Payload, error) {
	return p.get(ctx, "/data/2.5/weather", q)
}

func (p *OpenWeatherProvider) Forecast(ctx context.Context, q weather.Query) (weather.Payload, error) {
	return p.get(ctx, "/data/2.5/forecast", q)
}

func (p *OpenWeatherProvider) get(ctx context.Context, path string, q weather.Query) (weather.Payload, error) {
	values := queryValues(q)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	var payload weather.Payload
	if err := p.GetJSON(ctx, p.baseURL+path, values, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// queryValues maps a query mode onto OpenWeatherMap parameters.
func queryValues(q weather.Query) url.Values {
	values := url.Values{}
	switch q.Mode {
	case weather.ModeCoords:
		values.Set("lat", formatFloat(q.Lat))
		values.Set("lon", formatFloat(q.Lon))
	case weather.ModeZip:
		values.Set("zip", q.Text)
	default:
		values.Set("q", q.Text)
	}
	return values
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// OpenWeatherGeocoder implements weather.Geocoder with the OpenWeatherMap
// geocoding API. It uses its own breaker so enrichment failures never trip
// the weather calls.
type OpenWeatherGeocoder struct {
	*Client
	apiKey  string
	baseURL string
}

func NewOpenWeatherGeocoder(cfg HTTPClientConfig, apiKey, baseURL string) *OpenWeatherGeocoder {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherBaseURL
	}
	return &OpenWeatherGeocoder{
		Client:  NewClient("openweathermap-geocoding", cfg),
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

type geocodeResult struct {
	Name    string  `json:"name"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	Country string  `json:"country"`
	State   string  `json:"state"`
}

func (g *OpenWeatherGeocoder) Forward(ctx context.Context, text string) ([]weather.Place, error) {
	values := url.Values{}
	values.Set("q", text)
	return g.lookup(ctx, "/geo/1.0/direct", values)
}

func (g *OpenWeatherGeocoder) Reverse(ctx context.Context, lat, lon float64) ([]weather.Place, error) {
	values := url.Values{}
	values.Set("lat", formatFloat(lat))
	values.Set("lon", formatFloat(lon))
	return g.lookup(ctx, "/geo/1.0/reverse", values)
}

func (g *OpenWeatherGeocoder) lookup(ctx context.Context, path string, values url.Values) ([]weather.Place, error) {
	values.Set("limit", "1")
	values.Set("appid", g.apiKey)

	var results []geocodeResult
	if err := g.GetJSON(ctx, g.baseURL+path, values, &results); err != nil {
		return nil, fmt.Errorf("geocoding %s: %w", path, err)
	}

	places := make([]weather.Place, 0, len(results))
	for _, r := range results {
		places = append(places, weather.Place{
			Name:    r.Name,
			Country: r.Country,
			State:   r.State,
			Lat:     r.Lat,
			Lon:     r.Lon,
		})
	}
	return places, nil
}
