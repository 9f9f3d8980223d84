package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/kbecker42/intrigue-engine/internal/engine"
	"github.com/kbecker42/intrigue-engine/internal/storage"
	"github.com/kbecker42/intrigue-engine/pkg/apperr"
)

type MissionsHandler struct {
	engine  *engine.Engine
	storage storage.Storage
	logger  *slog.Logger
}

func NewMissionsHandler(eng *engine.Engine, storage storage.Storage, logger *slog.Logger) *MissionsHandler {
	return &MissionsHandler{
		engine:  eng,
		storage: storage,
		logger:  logger,
	}
}

// MissionResolutionRequest resolves an active mission.
type MissionResolutionRequest struct {
	UserID string `json:"userId"`
	Reason string `json:"reason,omitempty"`
}

// ServeHTTP handles mission operations.
// Routes:
// GET  /v1/missions?user_id=         - Active missions for a user
// GET  /v1/missions/{id}             - Mission by id
// POST /v1/missions/{id}/complete    - Resolve as completed
// POST /v1/missions/{id}/fail        - Resolve as failed
func (h *MissionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/missions"), "/")

	switch r.Method {
	case http.MethodGet:
		if path == "" {
			h.handleList(w, r)
			return
		}
		h.handleGet(w, r, path)

	case http.MethodPost:
		parts := strings.SplitN(path, "/", 2)
		if len(parts) != 2 {
			writeError(w, h.logger, apperr.NotFound("route", r.URL.Path))
			return
		}
		id, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil {
			writeError(w, h.logger, apperr.Validation("invalid mission id"))
			return
		}
		switch parts[1] {
		case "complete":
			h.handleComplete(w, r, id)
		case "fail":
			h.handleFail(w, r, id)
		default:
			writeError(w, h.logger, apperr.NotFound("route", r.URL.Path))
		}

	default:
		methodNotAllowed(w, h.logger, "GET, POST")
	}
}

func (h *MissionsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, h.logger, apperr.Validation("user_id query parameter is required"))
		return
	}

	missions, err := h.storage.GetActiveMissions(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.KindPersistence, "failed to list missions", err))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, missions)
}

func (h *MissionsHandler) handleGet(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, h.logger, apperr.Validation("invalid mission id"))
		return
	}

	mission, err := h.storage.GetMission(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.KindPersistence, "failed to load mission", err))
		return
	}
	if mission == nil {
		writeError(w, h.logger, apperr.NotFound("mission", id))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, mission)
}

func (h *MissionsHandler) handleComplete(w http.ResponseWriter, r *http.Request, id int64) {
	var req MissionResolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.Validation("invalid request body"))
		return
	}
	if req.UserID == "" {
		writeError(w, h.logger, apperr.Validation("userId is required"))
		return
	}

	outcome, err := h.engine.CompleteMission(r.Context(), req.UserID, id)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, outcome)
}

func (h *MissionsHandler) handleFail(w http.ResponseWriter, r *http.Request, id int64) {
	var req MissionResolutionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.Validation("invalid request body"))
		return
	}
	if req.UserID == "" {
		writeError(w, h.logger, apperr.Validation("userId is required"))
		return
	}

	outcome, err := h.engine.FailMission(r.Context(), req.UserID, id, req.Reason)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, outcome)
}
