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
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

type StoryHandler struct {
	engine  *engine.Engine
	storage storage.Storage
	logger  *slog.Logger
}

func NewStoryHandler(eng *engine.Engine, storage storage.Storage, logger *slog.Logger) *StoryHandler {
	return &StoryHandler{
		engine:  eng,
		storage: storage,
		logger:  logger,
	}
}

// StartStoryRequest begins a new story line.
type StartStoryRequest struct {
	UserID string `json:"userId"`
	story.Params
}

// ChoiceRequest advances the user's current story.
type ChoiceRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
	Custom bool   `json:"custom,omitempty"`
}

// ServeHTTP handles story operations.
// Routes:
// POST /v1/stories          - Start a new story
// POST /v1/stories/choice   - Apply a choice to the current story
// GET  /v1/stories/current  - Current story node (?user_id=)
// GET  /v1/stories/{id}     - Story node by id
func (h *StoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/stories"), "/")

	switch r.Method {
	case http.MethodPost:
		switch path {
		case "":
			h.handleStart(w, r)
		case "choice":
			h.handleChoice(w, r)
		default:
			writeError(w, h.logger, apperr.NotFound("route", r.URL.Path))
		}

	case http.MethodGet:
		switch path {
		case "current":
			h.handleCurrent(w, r)
		case "":
			writeError(w, h.logger, apperr.Validation("story id is required"))
		default:
			h.handleGet(w, r, path)
		}

	default:
		methodNotAllowed(w, h.logger, "GET, POST")
	}
}

func (h *StoryHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartStoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.Validation("invalid request body"))
		return
	}

	result, err := h.engine.StartStory(r.Context(), req.UserID, req.Params)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, result)
}

func (h *StoryHandler) handleChoice(w http.ResponseWriter, r *http.Request) {
	var req ChoiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, apperr.Validation("invalid request body"))
		return
	}

	result, err := h.engine.ApplyChoice(r.Context(), req.UserID, engine.ChoiceRequest{
		Text:   req.Text,
		Custom: req.Custom,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, result)
}

func (h *StoryHandler) handleCurrent(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeError(w, h.logger, apperr.Validation("user_id query parameter is required"))
		return
	}

	progress, err := h.storage.GetProgress(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.KindPersistence, "failed to load progress", err))
		return
	}
	if progress == nil || progress.CurrentStoryID == 0 {
		writeError(w, h.logger, apperr.NotFound("active story for user", userID))
		return
	}

	s, err := h.storage.GetStory(r.Context(), progress.CurrentStoryID)
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.KindPersistence, "failed to load story", err))
		return
	}
	if s == nil {
		writeError(w, h.logger, apperr.NotFound("story", progress.CurrentStoryID))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}

func (h *StoryHandler) handleGet(w http.ResponseWriter, r *http.Request, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, h.logger, apperr.Validation("invalid story id"))
		return
	}

	s, err := h.storage.GetStory(r.Context(), id)
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.KindPersistence, "failed to load story", err))
		return
	}
	if s == nil {
		writeError(w, h.logger, apperr.NotFound("story", id))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s)
}
