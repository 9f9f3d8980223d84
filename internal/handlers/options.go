package handlers

import (
	"log/slog"
	"net/http"

	"github.com/kbecker42/intrigue-engine/pkg/story"
)

// OptionsHandler serves the story parameter catalog the client
// renders its selection screen from.
type OptionsHandler struct {
	logger *slog.Logger
}

func NewOptionsHandler(logger *slog.Logger) *OptionsHandler {
	return &OptionsHandler{logger: logger}
}

func (h *OptionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, h.logger, "GET")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, story.DefaultOptions())
}
