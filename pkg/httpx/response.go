package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/tair/furniture-storefront/pkg/logger"
)

// Response is the JSON envelope every endpoint answers with
type Response struct {
	Success  bool        `json:"success"`
	Message  string      `json:"message,omitempty"`
	Data     interface{} `json:"data,omitempty"`
	Error    string      `json:"error,omitempty"`
	Errors   interface{} `json:"errors,omitempty"`
	Redirect string      `json:"redirect,omitempty"`
}

// RespondJSON sends a JSON response
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to write response")
	}
}

// RespondError sends an unsuccessful Response
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, Response{Success: false, Error: message})
}
