package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kbecker42/intrigue-engine/internal/engine"
	"github.com/kbecker42/intrigue-engine/internal/services"
	"github.com/kbecker42/intrigue-engine/internal/storage"
	"github.com/kbecker42/intrigue-engine/pkg/game"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(responses ...string) (*engine.Engine, *storage.MockStore) {
	store := storage.NewMockStore()
	llm := services.NewMockLLM(responses...)
	return engine.New(store, llm, 10*time.Second, testLogger()), store
}

const startStoryBody = `{
	"userId": "user-1",
	"conflict": "Corporate espionage",
	"setting": "Monaco casino",
	"narrativeStyle": "Pulp thriller",
	"mood": "Tense"
}`

func TestStoryHandler_Start(t *testing.T) {
	eng, store := newTestEngine()
	handler := NewStoryHandler(eng, store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/stories", strings.NewReader(startStoryBody))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var result engine.TurnResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(1), result.Story.ID)
	assert.NotEmpty(t, result.Story.Payload.Title)
	assert.NotNil(t, result.NewMission)
	assert.Equal(t, int64(1), result.Progress.CurrentStoryID)
}

func TestStoryHandler_Start_MissingParams(t *testing.T) {
	eng, store := newTestEngine()
	handler := NewStoryHandler(eng, store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/stories", strings.NewReader(`{"userId": "user-1"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation", body.Kind)
}

func TestStoryHandler_Choice(t *testing.T) {
	eng, store := newTestEngine()
	handler := NewStoryHandler(eng, store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/stories", strings.NewReader(startStoryBody))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	choiceBody := `{"userId": "user-1", "text": "Approach the man directly"}`
	req = httptest.NewRequest(http.MethodPost, "/v1/stories/choice", strings.NewReader(choiceBody))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var result engine.TurnResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(2), result.Story.ID)
	assert.Equal(t, int64(1), result.Story.ParentStoryID)
}

func TestStoryHandler_Choice_NoActiveStory(t *testing.T) {
	eng, store := newTestEngine()
	handler := NewStoryHandler(eng, store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/stories/choice",
		strings.NewReader(`{"userId": "nobody", "text": "Anything"}`))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "not_found", body.Kind)
}

func TestStoryHandler_Current(t *testing.T) {
	eng, store := newTestEngine()
	handler := NewStoryHandler(eng, store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/stories", strings.NewReader(startStoryBody))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/stories/current?user_id=user-1", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"id":1`)
}

func TestStoryHandler_GetByID(t *testing.T) {
	eng, store := newTestEngine()
	handler := NewStoryHandler(eng, store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/stories", strings.NewReader(startStoryBody))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/stories/1", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/stories/42", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusNotFound, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/stories/not-a-number", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStoryHandler_MethodNotAllowed(t *testing.T) {
	eng, store := newTestEngine()
	handler := NewStoryHandler(eng, store, testLogger())

	req := httptest.NewRequest(http.MethodDelete, "/v1/stories/1", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMissionsHandler_CompleteAndFail(t *testing.T) {
	eng, store := newTestEngine()
	storyHandler := NewStoryHandler(eng, store, testLogger())
	handler := NewMissionsHandler(eng, store, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/v1/stories", strings.NewReader(startStoryBody))
	w := httptest.NewRecorder()
	storyHandler.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/v1/missions?user_id=user-1", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var missions []*game.Mission
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &missions))
	require.Len(t, missions, 1)
	missionID := missions[0].ID

	req = httptest.NewRequest(http.MethodPost, "/v1/missions/1/complete",
		strings.NewReader(`{"userId": "user-1"}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var outcome engine.MissionOutcome
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &outcome))
	assert.Equal(t, game.MissionStatusCompleted, outcome.Mission.Status)
	assert.Equal(t, missionID, outcome.Mission.ID)
	assert.Positive(t, outcome.XPAwarded)

	// A resolved mission cannot be failed afterwards.
	req = httptest.NewRequest(http.MethodPost, "/v1/missions/1/fail",
		strings.NewReader(`{"userId": "user-1", "reason": "Too late"}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMissionsHandler_Validation(t *testing.T) {
	eng, store := newTestEngine()
	handler := NewMissionsHandler(eng, store, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/v1/missions", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/missions/abc/complete",
		strings.NewReader(`{"userId": "user-1"}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req = httptest.NewRequest(http.MethodPost, "/v1/missions/1/explode",
		strings.NewReader(`{"userId": "user-1"}`))
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
