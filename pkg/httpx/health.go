package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

// Check probes one dependency; a nil error means healthy
type Check func(ctx context.Context) error

// HealthOption configures the health endpoint
type HealthOption func(*healthReport)

type healthReport struct {
	details map[string]func() interface{}
}

// WithDetail adds the value returned by fn under name to every health
// response, healthy or not
func WithDetail(name string, fn func() interface{}) HealthOption {
	return func(h *healthReport) { h.details[name] = fn }
}

// RegisterHealthCheck exposes GET /health running every named check
func RegisterHealthCheck(router *mux.Router, service string, checks map[string]Check, opts ...HealthOption) {
	report := &healthReport{details: make(map[string]func() interface{})}
	for _, opt := range opts {
		opt(report)
	}

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		failed := make(map[string]string)
		for name, check := range checks {
			if err := check(ctx); err != nil {
				failed[name] = err.Error()
			}
		}

		var data interface{}
		if len(report.details) > 0 {
			details := make(map[string]interface{}, len(report.details))
			for name, fn := range report.details {
				details[name] = fn()
			}
			data = details
		}

		if len(failed) > 0 {
			RespondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   service + " is degraded",
				Errors:  failed,
				Data:    data,
			})
			return
		}

		RespondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: service + " is healthy",
			Data:    data,
		})
	}).Methods("GET")
}
