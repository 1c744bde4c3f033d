package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/hyu460659-glitch/paoTuanGame/internal/session"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

// APIClient talks to the session API.
type APIClient struct {
	baseURL string
	client  *http.Client
}

func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	return &APIClient{baseURL: baseURL, client: client}
}

func (a *APIClient) Healthy() bool {
	resp, err := a.client.Get(a.baseURL + "/health")
	if err != nil {
		return false
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()
	return resp.StatusCode == http.StatusOK
}

func (a *APIClient) CreateSession() (*session.View, error) {
	return a.do(http.MethodPost, "/v1/sessions", nil, http.StatusCreated)
}

func (a *APIClient) GetSession(id string) (*session.View, error) {
	return a.do(http.MethodGet, "/v1/sessions/"+id, nil, http.StatusOK)
}

func (a *APIClient) SendMessage(id, message string) (*session.View, error) {
	return a.do(http.MethodPost, "/v1/sessions/"+id+"/messages", chat.ChatRequest{Message: message}, http.StatusOK)
}

func (a *APIClient) Roll(id string, sides int) (*session.View, error) {
	return a.do(http.MethodPost, "/v1/sessions/"+id+"/roll", chat.RollRequest{Sides: sides}, http.StatusOK)
}

func (a *APIClient) ResolveCheck(id string) (*session.View, error) {
	return a.do(http.MethodPost, "/v1/sessions/"+id+"/check", nil, http.StatusOK)
}

func (a *APIClient) Equip(id, itemID string) (*session.View, error) {
	return a.do(http.MethodPost, "/v1/sessions/"+id+"/equip", map[string]string{"item_id": itemID}, http.StatusOK)
}

func (a *APIClient) Unequip(id string, slot character.Slot) (*session.View, error) {
	return a.do(http.MethodPost, "/v1/sessions/"+id+"/unequip", map[string]string{"slot": string(slot)}, http.StatusOK)
}

func (a *APIClient) UpdateProfile(id string, u character.ProfileUpdate) (*session.View, error) {
	return a.do(http.MethodPatch, "/v1/sessions/"+id+"/profile", u, http.StatusOK)
}

func (a *APIClient) SaveSettings(id, world, script string) (*session.View, error) {
	body := map[string]string{"world_setting": world, "script_content": script}
	return a.do(http.MethodPut, "/v1/sessions/"+id+"/settings", body, http.StatusOK)
}

func (a *APIClient) do(method, path string, body interface{}, want int) (*session.View, error) {
	var reader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequest(method, a.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close() // Ignore error in defer
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != want {
		var errorResp ErrorResponse
		if err := json.Unmarshal(respBody, &errorResp); err != nil || errorResp.Error == "" {
			return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(respBody))
		}
		return nil, fmt.Errorf("%s", errorResp.Error)
	}

	var view session.View
	if err := json.Unmarshal(respBody, &view); err != nil {
		return nil, fmt.Errorf("failed to parse session response: %w", err)
	}
	return &view, nil
}
