package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kbecker42/intrigue-engine/internal/storage"
	"github.com/kbecker42/intrigue-engine/pkg/apperr"
	"github.com/kbecker42/intrigue-engine/pkg/game"
)

// ProgressHandler serves per-user game progress. A user with no saved
// progress reads back the documented starting state.
type ProgressHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewProgressHandler(storage storage.Storage, logger *slog.Logger) *ProgressHandler {
	return &ProgressHandler{storage: storage, logger: logger}
}

// ServeHTTP handles progress operations.
// Routes:
// GET  /v1/progress/{userID} - Current progress, defaults for new users
// POST /v1/progress/{userID} - Replace the stored progress wholesale
func (h *ProgressHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/progress"), "/")
	if userID == "" {
		writeError(w, h.logger, apperr.Validation("user id is required"))
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.handleGet(w, r, userID)
	case http.MethodPost:
		h.handleReplace(w, r, userID)
	default:
		methodNotAllowed(w, h.logger, "GET, POST")
	}
}

func (h *ProgressHandler) handleGet(w http.ResponseWriter, r *http.Request, userID string) {
	progress, err := h.storage.GetProgress(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.KindPersistence, "failed to load progress", err))
		return
	}
	if progress == nil {
		progress = game.NewProgress(userID)
	}
	writeJSON(w, h.logger, http.StatusOK, progress)
}

// handleReplace overwrites the stored progress with the request body.
// This is an administrative escape hatch; normal play mutates progress
// only through story turns and mission resolution.
func (h *ProgressHandler) handleReplace(w http.ResponseWriter, r *http.Request, userID string) {
	var progress game.UserProgress
	if err := json.NewDecoder(r.Body).Decode(&progress); err != nil {
		writeError(w, h.logger, apperr.Validation("invalid request body"))
		return
	}

	if progress.UserID == "" {
		progress.UserID = userID
	}
	if progress.UserID != userID {
		writeError(w, h.logger, apperr.Validation("user id in body does not match path"))
		return
	}

	if err := h.storage.SaveProgress(r.Context(), &progress); err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.KindPersistence, "failed to save progress", err))
		return
	}

	h.logger.Info("Progress replaced", "user_id", userID)
	writeJSON(w, h.logger, http.StatusOK, &progress)
}
