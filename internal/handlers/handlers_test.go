package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbecker42/intrigue-engine/internal/services"
	"github.com/kbecker42/intrigue-engine/internal/storage"
	"github.com/kbecker42/intrigue-engine/pkg/game"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

func TestOptionsHandler(t *testing.T) {
	handler := NewOptionsHandler(testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/options", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var opts story.Options
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &opts))
	assert.Len(t, opts.Conflicts, 8)
	assert.Len(t, opts.Settings, 8)
	assert.Len(t, opts.NarrativeStyles, 6)
	assert.Len(t, opts.Moods, 8)

	req = httptest.NewRequest(http.MethodPost, "/v1/options", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHealthHandler(t *testing.T) {
	store := storage.NewMockStore()
	handler := NewHealthHandler(store, services.NewMockLLM(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "intrigue-engine", resp.Service)
	assert.Equal(t, "mock", resp.Model)
	assert.Equal(t, "healthy", resp.Components["storage"])
}

func TestHealthHandler_Degraded(t *testing.T) {
	store := storage.NewMockStore()
	store.SetPingError(errors.New("connection refused"))
	handler := NewHealthHandler(store, services.NewMockLLM(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/health", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "unhealthy", resp.Components["storage"])
}

func TestProgressHandler_DefaultsForNewUser(t *testing.T) {
	handler := NewProgressHandler(storage.NewMockStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/progress/fresh-user", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var p game.UserProgress
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "fresh-user", p.UserID)
	assert.Equal(t, 1, p.Level)
	assert.Equal(t, game.DefaultCurrencyBalances(), p.CurrencyBalances)
	assert.Empty(t, p.ChoiceHistory)
}

func TestProgressHandler_SavedProgress(t *testing.T) {
	store := storage.NewMockStore()
	p := game.NewProgress("user-1")
	p.AddExperience(500)
	require.NoError(t, store.SaveProgress(context.Background(), p))
	handler := NewProgressHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/progress/user-1", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var loaded game.UserProgress
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &loaded))
	assert.Equal(t, p.Level, loaded.Level)
	assert.Equal(t, 500, loaded.ExperiencePoints)
}

func TestProgressHandler_Replace(t *testing.T) {
	store := storage.NewMockStore()
	require.NoError(t, store.SaveProgress(context.Background(), game.NewProgress("user-1")))
	handler := NewProgressHandler(store, testLogger())

	replacement := game.NewProgress("user-1")
	replacement.CurrencyBalances["💵"] = 9000
	replacement.AddExperience(150)
	body, err := json.Marshal(replacement)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/progress/user-1", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	saved, err := store.GetProgress(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 9000, saved.CurrencyBalances["💵"])
	assert.Equal(t, 150, saved.ExperiencePoints)
}

func TestProgressHandler_ReplaceRejectsMismatchedUser(t *testing.T) {
	store := storage.NewMockStore()
	handler := NewProgressHandler(store, testLogger())

	body, err := json.Marshal(game.NewProgress("someone-else"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/progress/user-1", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	saved, err := store.GetProgress(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Nil(t, saved, "rejected replace must not persist anything")
}

func TestProgressHandler_MissingUserID(t *testing.T) {
	handler := NewProgressHandler(storage.NewMockStore(), testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/progress", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCharactersHandler(t *testing.T) {
	store := storage.NewMockStore()
	ce := game.NewCharacterEvolution("user-1", "vesper_moreau", 1, "ally")
	require.NoError(t, store.SaveCharacter(context.Background(), ce))
	handler := NewCharactersHandler(store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/characters/user-1", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var list []*game.CharacterEvolution
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "vesper_moreau", list[0].CharacterID)

	req = httptest.NewRequest(http.MethodGet, "/v1/characters/user-1/vesper_moreau", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/characters/user-1/nobody", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCharactersHandler_Replace(t *testing.T) {
	store := storage.NewMockStore()
	ce := game.NewCharacterEvolution("user-1", "vesper_moreau", 1, "ally")
	ce.RecordInteraction(2, "Vesper vanishes during the firefight.")
	require.NoError(t, store.SaveCharacter(context.Background(), ce))
	handler := NewCharactersHandler(store, testLogger())

	// A replace may rewrite history that story turns only append to.
	replacement := game.NewCharacterEvolution("user-1", "vesper_moreau", 3, "double agent")
	replacement.Status = game.CharacterStatusMissing
	body, err := json.Marshal(replacement)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/v1/characters/user-1/vesper_moreau", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	saved, err := store.GetCharacter(context.Background(), "user-1", "vesper_moreau")
	require.NoError(t, err)
	assert.Equal(t, "double agent", saved.Role)
	assert.Equal(t, game.CharacterStatusMissing, saved.Status)
	assert.Empty(t, saved.EvolutionLog, "replacement history wins")
}

func TestCharactersHandler_ReplaceValidation(t *testing.T) {
	store := storage.NewMockStore()
	handler := NewCharactersHandler(store, testLogger())

	// Body ids must match the path.
	body, err := json.Marshal(game.NewCharacterEvolution("user-1", "dmitri_volkov", 1, ""))
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/v1/characters/user-1/vesper_moreau", bytes.NewReader(body))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// A character id is required for a replace.
	req = httptest.NewRequest(http.MethodPost, "/v1/characters/user-1", bytes.NewReader(body))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodDelete, "/v1/characters/user-1/vesper_moreau", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}
