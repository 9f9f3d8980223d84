package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kbecker42/intrigue-engine/pkg/apperr"
)

// ErrorResponse is the JSON error body for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

// writeError maps an error through the taxonomy to its status code
// and a {error, kind} body.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := apperr.HTTPStatus(err)
	body := ErrorResponse{Error: err.Error()}
	if kind := apperr.KindOf(err); kind != "" {
		body.Kind = string(kind)
	}
	if status >= 500 {
		logger.Error("Request failed", "error", err, "status", status)
	} else {
		logger.Warn("Request rejected", "error", err, "status", status)
	}
	writeJSON(w, logger, status, body)
}

func methodNotAllowed(w http.ResponseWriter, logger *slog.Logger, supported string) {
	writeJSON(w, logger, http.StatusMethodNotAllowed, ErrorResponse{
		Error: "Method not allowed. Supported methods: " + supported,
	})
}
