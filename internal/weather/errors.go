package weather

import (
	"errors"
	"fmt"
	"net/http"
)

// DefaultUpstreamMessage is reported when a provider failed without a message of its own.
const DefaultUpstreamMessage = "Failed to fetch weather data"

// ValidationError reports bad or missing input. It is raised before any upstream call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// NotFoundError reports an unknown query id.
type NotFoundError struct {
	ID int64
}

func (e *NotFoundError) Error() string { return "Query not found" }

// UpstreamError reports a failed provider call. Status and Message carry what
// the provider returned, when it returned anything.
type UpstreamError struct {
	Provider string
	Status   int
	Message  string
	Err      error
}

func (e *UpstreamError) Error() string {
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s: status %d", e.Provider, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Provider, e.Err)
	default:
		return e.Provider + ": request failed"
	}
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// HTTPStatus is the status a gateway response should mirror.
func (e *UpstreamError) HTTPStatus() int {
	if e.Status >= http.StatusBadRequest {
		return e.Status
	}
	return http.StatusInternalServerError
}

// PublicMessage is the message a gateway response should carry.
func (e *UpstreamError) PublicMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return DefaultUpstreamMessage
}

// asUpstreamError keeps provider errors intact and wraps anything else.
func asUpstreamError(provider string, err error) *UpstreamError {
	var ue *UpstreamError
	if errors.As(err, &ue) {
		return ue
	}
	return &UpstreamError{Provider: provider, Err: err}
}
