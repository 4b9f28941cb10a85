package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// recorder captures the requests an httptest server receives.
type recorder struct {
	mu       sync.Mutex
	requests []*url.URL
}

func (r *recorder) add(u *url.URL) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, u)
}

func (r *recorder) all() []*url.URL {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*url.URL(nil), r.requests...)
}

func newOpenWeatherServer(t *testing.T, rec *recorder) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/data/2.5/weather", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Paris","coord":{"lat":48.8534,"lon":2.3488},"main":{"temp":21.5}}`))
	})
	mux.HandleFunc("/data/2.5/forecast", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"cnt":1,"list":[{"dt":1718445600}]}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestOpenWeatherQueryModes(t *testing.T) {
	rec := &recorder{}
	srv := newOpenWeatherServer(t, rec)
	p := NewOpenWeatherProvider(HTTPClientConfig{Client: srv.Client()}, "secret", srv.URL+"/")

	tests := []struct {
		name  string
		query weather.Query
		want  map[string]string
	}{
		{name: "name", query: weather.Query{Mode: weather.ModeName, Text: "Paris"}, want: map[string]string{"q": "Paris"}},
		{name: "zip", query: weather.Query{Mode: weather.ModeZip, Text: "94040,us"}, want: map[string]string{"zip": "94040,us"}},
		{name: "coords", query: weather.Query{Mode: weather.ModeCoords, Lat: 48.85, Lon: 2.35}, want: map[string]string{"lat": "48.85", "lon": "2.35"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(rec.all())
			_, err := p.Current(context.Background(), tt.query)
			require.NoError(t, err)

			got := rec.all()[before].Query()
			assert.Equal(t, "secret", got.Get("appid"))
			assert.Equal(t, "metric", got.Get("units"))
			for k, v := range tt.want {
				assert.Equal(t, v, got.Get(k), k)
			}
		})
	}
}

func TestOpenWeatherDecodesPayloads(t *testing.T) {
	srv := newOpenWeatherServer(t, &recorder{})
	p := NewOpenWeatherProvider(HTTPClientConfig{Client: srv.Client()}, "secret", srv.URL)
	q := weather.Query{Mode: weather.ModeName, Text: "Paris"}

	current, err := p.Current(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "Paris", current["name"])

	forecast, err := p.Forecast(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, float64(1), forecast["cnt"])
}

func TestOpenWeatherPropagatesUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"cod":401,"message":"Invalid API key."}`))
	}))
	defer srv.Close()

	p := NewOpenWeatherProvider(HTTPClientConfig{Client: srv.Client()}, "bad", srv.URL)
	_, err := p.Forecast(context.Background(), weather.Query{Mode: weather.ModeName, Text: "Paris"})

	var ue *weather.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, http.StatusUnauthorized, ue.Status)
	assert.Equal(t, "Invalid API key.", ue.Message)
	assert.Equal(t, "openweathermap", ue.Provider)
}

func TestOpenWeatherGeocoder(t *testing.T) {
	rec := &recorder{}
	mux := http.NewServeMux()
	mux.HandleFunc("/geo/1.0/direct", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL)
		_, _ = w.Write([]byte(`[{"name":"Paris","lat":48.8589,"lon":2.32,"country":"FR","state":"Ile-de-France"}]`))
	})
	mux.HandleFunc("/geo/1.0/reverse", func(w http.ResponseWriter, r *http.Request) {
		rec.add(r.URL)
		_, _ = w.Write([]byte(`[]`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	g := NewOpenWeatherGeocoder(HTTPClientConfig{Client: srv.Client()}, "secret", srv.URL)

	places, err := g.Forward(context.Background(), "Paris")
	require.NoError(t, err)
	require.Len(t, places, 1)
	assert.Equal(t, weather.Place{Name: "Paris", Country: "FR", State: "Ile-de-France", Lat: 48.8589, Lon: 2.32}, places[0])

	places, err = g.Reverse(context.Background(), 48.85, 2.35)
	require.NoError(t, err)
	assert.Empty(t, places)

	reqs := rec.all()
	require.Len(t, reqs, 2)
	assert.Equal(t, "Paris", reqs[0].Query().Get("q"))
	assert.Equal(t, "1", reqs[0].Query().Get("limit"))
	assert.Equal(t, "48.85", reqs[1].Query().Get("lat"))
	assert.Equal(t, "2.35", reqs[1].Query().Get("lon"))
	assert.Equal(t, "1", reqs[1].Query().Get("limit"))
}
