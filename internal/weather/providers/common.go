package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-gateway/internal/weather"
)

// BackoffConfig controls exponential backoff behaviour.
// MaxRetries of zero means a single attempt.
type BackoffConfig struct {
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// HTTPClientConfig bundles HTTP client and resilience settings.
// BreakerFailures is the number of consecutive failed calls that opens the
// circuit breaker; zero disables the breaker.
type HTTPClientConfig struct {
	Client          *http.Client
	Backoff         BackoffConfig
	BreakerFailures uint32
}

var (
	errNoHTTPClient  = errors.New("http client not configured")
	errInvalidConfig = errors.New("invalid backoff configuration")
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client issues GET requests to one upstream provider, optionally behind a circuit breaker.
type Client struct {
	name    string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a Client.
func NewClient(name string, cfg HTTPClientConfig) *Client {
	if cfg.Backoff.InitialInterval <= 0 {
		cfg.Backoff.InitialInterval = 500 * time.Millisecond
	}

	return &Client{name: name, httpCfg: cfg, circuit: newBreaker(name, cfg.BreakerFailures)}
}

// newBreaker returns nil when failures is zero. Client-side 4xx responses
// (other than 429) and cancelled calls do not count against the breaker.
func newBreaker(name string, failures uint32) *gobreaker.CircuitBreaker {
	if failures == 0 {
		return nil
	}
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var ue *weather.UpstreamError
			if errors.As(err, &ue) && ue.Status >= 400 && ue.Status < 500 {
				return ue.Status != http.StatusTooManyRequests
			}
			return false
		},
	})
}

// guarded runs fn through cb, or directly when cb is nil.
func guarded(cb *gobreaker.CircuitBreaker, fn func() (interface{}, error)) (interface{}, error) {
	if cb == nil {
		return fn()
	}
	return cb.Execute(fn)
}

// Name returns the provider name used in errors.
func (c *Client) Name() string {
	return c.name
}

// GetJSON fetches endpoint?params and decodes the JSON body into out.
// Non-2xx responses become *weather.UpstreamError carrying the provider's
// status and message.
func (c *Client) GetJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	buildRequest := func() (*http.Request, error) {
		u := endpoint
		if len(params) > 0 {
			u = fmt.Sprintf("%s?%s", endpoint, params.Encode())
		}
		return http.NewRequest(http.MethodGet, u, nil)
	}

	body, err := c.doRequestWithResilience(ctx, buildRequest)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &weather.UpstreamError{Provider: c.name, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// doRequestWithResilience executes the request with optional retries,
// exponential backoff, and an optional circuit breaker. Only network errors,
// 429 and 5xx responses are retried.
func (c *Client) doRequestWithResilience(ctx context.Context, buildRequest func() (*http.Request, error)) ([]byte, error) {
	cfg := c.httpCfg
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}
	if cfg.Backoff.MaxRetries < 0 {
		return nil, errInvalidConfig
	}

	var attempt int

	for {
		if ctx.Err() != nil {
			return nil, &weather.UpstreamError{Provider: c.name, Err: ctx.Err()}
		}

		req, err := buildRequest()
		if err != nil {
			return nil, err
		}
		req = req.WithContext(ctx)
		req.Header.Set("Accept", "application/json")

		result, err := guarded(c.circuit, func() (interface{}, error) {
			resp, execErr := cfg.Client.Do(req)
			if execErr != nil {
				return nil, &weather.UpstreamError{Provider: c.name, Err: execErr}
			}
			defer resp.Body.Close()

			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
				return nil, &weather.UpstreamError{
					Provider: c.name,
					Status:   resp.StatusCode,
					Message:  extractMessage(raw),
				}
			}

			raw, readErr := io.ReadAll(resp.Body)
			if readErr != nil {
				return nil, &weather.UpstreamError{Provider: c.name, Err: readErr}
			}
			return raw, nil
		})

		if err == nil {
			body, ok := result.([]byte)
			if !ok {
				return nil, fmt.Errorf("unexpected result type from circuit breaker")
			}
			return body, nil
		}

		// If circuit is open, propagate immediately.
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, &weather.UpstreamError{
				Provider: c.name,
				Status:   http.StatusServiceUnavailable,
				Err:      err,
			}
		}

		if !retryable(err) || attempt >= cfg.Backoff.MaxRetries {
			return nil, err
		}

		delay := cfg.Backoff.InitialInterval * time.Duration(math.Pow(2, float64(attempt)))
		if delay > cfg.Backoff.MaxInterval && cfg.Backoff.MaxInterval > 0 {
			delay = cfg.Backoff.MaxInterval
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &weather.UpstreamError{Provider: c.name, Err: ctx.Err()}
		case <-timer.C:
		}

		attempt++
	}
}

func retryable(err error) bool {
	var ue *weather.UpstreamError
	if !errors.As(err, &ue) {
		return false
	}
	if ue.Status == 0 {
		return true
	}
	return ue.Status == http.StatusTooManyRequests || ue.Status >= 500
}

// extractMessage pulls a human-readable message out of an error body.
// OpenWeatherMap sends {"message": ...}; Google APIs send {"error": {"message": ...}}.
func extractMessage(raw []byte) string {
	var body struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	if len(body.Error) == 0 {
		return ""
	}

	var nested struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body.Error, &nested); err == nil && nested.Message != "" {
		return nested.Message
	}
	var plain string
	if err := json.Unmarshal(body.Error, &plain); err == nil {
		return plain
	}
	return ""
}
