package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
)

func TestNewVeniceService(t *testing.T) {
	service := NewVeniceService("test-api-key", "test-model", 30*time.Second)

	if service.apiKey != "test-api-key" {
		t.Errorf("Expected apiKey %s, got %s", "test-api-key", service.apiKey)
	}
	if service.modelName != "test-model" {
		t.Errorf("Expected modelName %s, got %s", "test-model", service.modelName)
	}
	if service.baseURL != veniceBaseURL {
		t.Errorf("Expected default base URL, got %s", service.baseURL)
	}
	if service.httpClient == nil || service.httpClient.Timeout != 30*time.Second {
		t.Error("Expected httpClient with configured timeout")
	}
	if !service.SupportsResponseSchema() {
		t.Error("Expected Venice to support response schema")
	}
}

func TestVeniceService_GenerateGMResponse(t *testing.T) {
	var got VeniceChatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"1","choices":[{"index":0,"message":{"role":"assistant","content":"{\"narrative\":\"ok\"}"},"finish_reason":"stop"}]}`))
	}))
	defer server.Close()

	service := NewVeniceService("key", "venice-model", 5*time.Second).WithBaseURL(server.URL)
	out, err := service.GenerateGMResponse(context.Background(), []chat.ChatMessage{
		{Role: chat.ChatRoleSystem, Content: "be the GM"},
		{Role: chat.ChatRoleUser, Content: "hello"},
	})

	require.NoError(t, err)
	assert.Equal(t, `{"narrative":"ok"}`, out)
	assert.Equal(t, "venice-model", got.Model)
	assert.Len(t, got.Messages, 2)
	assert.Equal(t, DefaultVeniceTemperature, got.Temperature)
	require.NotNil(t, got.ResponseFormat)
	assert.Equal(t, "json_schema", got.ResponseFormat.Type)
	assert.Equal(t, "gm_response", got.ResponseFormat.JSONSchema.Name)
	assert.Contains(t, got.ResponseFormat.JSONSchema.Schema, "properties")
}

func TestVeniceService_Errors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "http error", status: http.StatusUnauthorized, body: `{"error":"bad key"}`, wantErr: "status 401"},
		{name: "api error", status: http.StatusOK, body: `{"error":{"message":"overloaded"}}`, wantErr: "overloaded"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no choices"},
		{name: "bad json", status: http.StatusOK, body: `not json`, wantErr: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			service := NewVeniceService("key", "m", 5*time.Second).WithBaseURL(server.URL)
			_, err := service.GenerateGMResponse(context.Background(), []chat.ChatMessage{{Role: chat.ChatRoleUser, Content: "hi"}})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
