package client

import (
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/tair/furniture-storefront/internal/catalog/domain"
)

// ErrUnauthorized is returned for 401 and 403 answers. The caller is
// expected to drop the admin session and send the user to the login page.
var ErrUnauthorized = errors.New("catalog: unauthorized")

// ErrEmptyResponse is returned when a write succeeded but the backend sent no
// resource back
var ErrEmptyResponse = errors.New("catalog: empty response")

// ValidationError carries the field errors of a 422 answer
type ValidationError struct {
	Message string
	Fields  domain.FieldErrors
}

func (e *ValidationError) Error() string {
	if e.Message != "" {
		return "catalog: validation failed: " + e.Message
	}
	return "catalog: validation failed"
}

// APIError is any other unsuccessful answer
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("catalog: backend error (%d): %s", e.Status, msg)
}

// IsUnavailable reports whether err means the backend could not be reached
// or failed on its side, as opposed to rejecting the request
func IsUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrCircuitOpen) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status >= http.StatusInternalServerError
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
