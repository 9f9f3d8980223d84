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

// CharactersHandler serves character evolution records.
type CharactersHandler struct {
	storage storage.Storage
	logger  *slog.Logger
}

func NewCharactersHandler(storage storage.Storage, logger *slog.Logger) *CharactersHandler {
	return &CharactersHandler{storage: storage, logger: logger}
}

// ServeHTTP handles character evolution operations.
// Routes:
// GET  /v1/characters/{userID}                - All characters known to the user
// GET  /v1/characters/{userID}/{characterID}  - One character
// POST /v1/characters/{userID}/{characterID}  - Replace the stored record wholesale
func (h *CharactersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/characters"), "/")
	if path == "" {
		writeError(w, h.logger, apperr.Validation("user id is required"))
		return
	}

	parts := strings.SplitN(path, "/", 2)
	userID := parts[0]

	switch r.Method {
	case http.MethodGet:
		if len(parts) == 1 {
			h.handleList(w, r, userID)
			return
		}
		h.handleGet(w, r, userID, parts[1])

	case http.MethodPost:
		if len(parts) == 1 {
			writeError(w, h.logger, apperr.Validation("character id is required"))
			return
		}
		h.handleReplace(w, r, userID, parts[1])

	default:
		methodNotAllowed(w, h.logger, "GET, POST")
	}
}

func (h *CharactersHandler) handleList(w http.ResponseWriter, r *http.Request, userID string) {
	characters, err := h.storage.ListCharacters(r.Context(), userID)
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.KindPersistence, "failed to list characters", err))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, characters)
}

func (h *CharactersHandler) handleGet(w http.ResponseWriter, r *http.Request, userID, characterID string) {
	ce, err := h.storage.GetCharacter(r.Context(), userID, characterID)
	if err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.KindPersistence, "failed to load character", err))
		return
	}
	if ce == nil {
		writeError(w, h.logger, apperr.NotFound("character", characterID))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, ce)
}

// handleReplace overwrites the stored evolution record with the request
// body. Story turns only ever append to a character's history; this is
// the one path that may rewrite it.
func (h *CharactersHandler) handleReplace(w http.ResponseWriter, r *http.Request, userID, characterID string) {
	var ce game.CharacterEvolution
	if err := json.NewDecoder(r.Body).Decode(&ce); err != nil {
		writeError(w, h.logger, apperr.Validation("invalid request body"))
		return
	}

	if ce.UserID == "" {
		ce.UserID = userID
	}
	if ce.CharacterID == "" {
		ce.CharacterID = characterID
	}
	if ce.UserID != userID || ce.CharacterID != characterID {
		writeError(w, h.logger, apperr.Validation("ids in body do not match path"))
		return
	}

	if err := h.storage.SaveCharacter(r.Context(), &ce); err != nil {
		writeError(w, h.logger, apperr.Wrap(apperr.KindPersistence, "failed to save character", err))
		return
	}

	h.logger.Info("Character record replaced", "user_id", userID, "character_id", characterID)
	writeJSON(w, h.logger, http.StatusOK, &ce)
}
