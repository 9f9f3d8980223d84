package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/kbecker42/intrigue-engine/internal/engine"
	"github.com/kbecker42/intrigue-engine/pkg/game"
	"github.com/kbecker42/intrigue-engine/pkg/story"
)

func testConnection(client *http.Client, baseURL string) bool {
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusServiceUnavailable
}

func readAPIError(statusCode int, body []byte) error {
	var errorResp ErrorResponse
	if err := json.Unmarshal(body, &errorResp); err != nil || errorResp.Error == "" {
		return fmt.Errorf("API returned status %d: %s", statusCode, string(body))
	}
	return fmt.Errorf("%s", errorResp.Error)
}

func getOptions(client *http.Client, baseURL string) (*story.Options, error) {
	resp, err := client.Get(baseURL + "/v1/options")
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp.StatusCode, body)
	}

	var opts story.Options
	if err := json.Unmarshal(body, &opts); err != nil {
		return nil, fmt.Errorf("failed to parse options response: %w", err)
	}
	return &opts, nil
}

// StartStoryRequest matches the API request structure.
type StartStoryRequest struct {
	UserID string `json:"userId"`
	story.Params
}

func startStory(client *http.Client, baseURL string, userID string, params story.Params) (*engine.TurnResult, error) {
	req := StartStoryRequest{
		UserID: userID,
		Params: params,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/stories",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, readAPIError(resp.StatusCode, body)
	}

	var result engine.TurnResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse story response: %w", err)
	}
	return &result, nil
}

// ApplyChoiceRequest matches the API request structure.
type ApplyChoiceRequest struct {
	UserID string `json:"userId"`
	Text   string `json:"text"`
	Custom bool   `json:"custom,omitempty"`
}

func applyChoice(client *http.Client, baseURL string, userID, text string, custom bool) (*engine.TurnResult, error) {
	req := ApplyChoiceRequest{
		UserID: userID,
		Text:   text,
		Custom: custom,
	}

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		baseURL+"/v1/stories/choice",
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusCreated {
		return nil, readAPIError(resp.StatusCode, body)
	}

	var result engine.TurnResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse story response: %w", err)
	}
	return &result, nil
}

func getProgress(client *http.Client, baseURL string, userID string) (*game.UserProgress, error) {
	resp, err := client.Get(baseURL + "/v1/progress/" + userID)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp.StatusCode, body)
	}

	var progress game.UserProgress
	if err := json.Unmarshal(body, &progress); err != nil {
		return nil, fmt.Errorf("failed to parse progress response: %w", err)
	}
	return &progress, nil
}

func completeMission(client *http.Client, baseURL string, userID string, missionID int64) (*engine.MissionOutcome, error) {
	jsonData, err := json.Marshal(map[string]string{"userId": userID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	resp, err := client.Post(
		fmt.Sprintf("%s/v1/missions/%d/complete", baseURL, missionID),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp.StatusCode, body)
	}

	var outcome engine.MissionOutcome
	if err := json.Unmarshal(body, &outcome); err != nil {
		return nil, fmt.Errorf("failed to parse mission response: %w", err)
	}
	return &outcome, nil
}
