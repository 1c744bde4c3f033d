package services

import (
	"context"
	"sync"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
)

// MockLLMAPI is a mock implementation of LLMService for testing
type MockLLMAPI struct {
	InitModelFunc          func(ctx context.Context, modelName string) error
	GenerateGMResponseFunc func(ctx context.Context, messages []chat.ChatMessage) (string, error)

	// Track calls for testing
	InitModelCalls          []string
	GenerateGMResponseCalls []GenerateResponseCall

	responses []string
	mu        sync.Mutex // protects all fields above
}

var _ LLMService = (*MockLLMAPI)(nil)

type GenerateResponseCall struct {
	Messages []chat.ChatMessage
}

// NewMockLLMAPI creates a new mock LLM service
func NewMockLLMAPI() *MockLLMAPI {
	return &MockLLMAPI{
		InitModelCalls:          make([]string, 0),
		GenerateGMResponseCalls: make([]GenerateResponseCall, 0),
	}
}

// InitModel mocks model initialization
func (m *MockLLMAPI) InitModel(ctx context.Context, modelName string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.InitModelCalls = append(m.InitModelCalls, modelName)

	if m.InitModelFunc != nil {
		return m.InitModelFunc(ctx, modelName)
	}

	// Default behavior - success
	return nil
}

// GenerateGMResponse returns queued replies in order, then falls back to
// GenerateGMResponseFunc, then to a plain narrative.
func (m *MockLLMAPI) GenerateGMResponse(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.GenerateGMResponseCalls = append(m.GenerateGMResponseCalls, GenerateResponseCall{
		Messages: messages,
	})

	if len(m.responses) > 0 {
		next := m.responses[0]
		m.responses = m.responses[1:]
		return next, nil
	}

	if m.GenerateGMResponseFunc != nil {
		return m.GenerateGMResponseFunc(ctx, messages)
	}

	return `{"narrative": "Mock response"}`, nil
}

// QueueResponses appends raw replies to be returned by later calls.
func (m *MockLLMAPI) QueueResponses(raw ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = append(m.responses, raw...)
}

// Reset clears all call tracking
func (m *MockLLMAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelCalls = make([]string, 0)
	m.GenerateGMResponseCalls = make([]GenerateResponseCall, 0)
	m.responses = nil
}

// SetInitModelError sets up the mock to return an error on InitModel
func (m *MockLLMAPI) SetInitModelError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InitModelFunc = func(ctx context.Context, modelName string) error {
		return err
	}
}

// SetGenerateResponseError sets up the mock to return an error on GenerateGMResponse
func (m *MockLLMAPI) SetGenerateResponseError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GenerateGMResponseFunc = func(ctx context.Context, messages []chat.ChatMessage) (string, error) {
		return "", err
	}
}

// GetCalls returns a copy of the call tracking data in a thread-safe way
func (m *MockLLMAPI) GetCalls() ([]string, []GenerateResponseCall) {
	m.mu.Lock()
	defer m.mu.Unlock()

	initCalls := make([]string, len(m.InitModelCalls))
	copy(initCalls, m.InitModelCalls)

	respCalls := make([]GenerateResponseCall, len(m.GenerateGMResponseCalls))
	copy(respCalls, m.GenerateGMResponseCalls)

	return initCalls, respCalls
}
