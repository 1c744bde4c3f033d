package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
)

func TestMockLLMService(t *testing.T) {
	mockService := NewMockLLMAPI()

	err := mockService.InitModel(context.Background(), "test-model")
	if err != nil {
		t.Errorf("InitModel failed: %v", err)
	}

	if len(mockService.InitModelCalls) != 1 {
		t.Errorf("Expected 1 InitModel call, got %d", len(mockService.InitModelCalls))
	}

	if mockService.InitModelCalls[0] != "test-model" {
		t.Errorf("Expected model name 'test-model', got '%s'", mockService.InitModelCalls[0])
	}

	messages := []chat.ChatMessage{
		{Role: chat.ChatRoleUser, Content: "Hello"},
	}

	mockService.QueueResponses(`{"narrative": "first"}`)

	first, err := mockService.GenerateGMResponse(context.Background(), messages)
	if err != nil {
		t.Errorf("GenerateGMResponse failed: %v", err)
	}
	if first != `{"narrative": "first"}` {
		t.Errorf("Expected queued response, got '%s'", first)
	}

	second, err := mockService.GenerateGMResponse(context.Background(), messages)
	if err != nil {
		t.Errorf("GenerateGMResponse failed: %v", err)
	}
	if second != `{"narrative": "Mock response"}` {
		t.Errorf("Expected default response, got '%s'", second)
	}

	_, generateCalls := mockService.GetCalls()
	if len(generateCalls) != 2 {
		t.Errorf("Expected 2 GenerateGMResponse calls, got %d", len(generateCalls))
	}

	mockService.Reset()
	_, generateCalls = mockService.GetCalls()
	if len(generateCalls) != 0 {
		t.Errorf("Expected calls to be cleared, got %d", len(generateCalls))
	}
}

func TestMockLLMService_ErrorHandling(t *testing.T) {
	mockService := NewMockLLMAPI()

	expectedErr := fmt.Errorf("initialization failed")
	mockService.SetInitModelError(expectedErr)

	err := mockService.InitModel(context.Background(), "test-model")
	if err == nil {
		t.Fatalf("Expected error, got nil")
	}

	if err.Error() != expectedErr.Error() {
		t.Errorf("Expected error '%s', got '%s'", expectedErr.Error(), err.Error())
	}

	mockService.SetGenerateResponseError(fmt.Errorf("connection reset"))
	if _, err := mockService.GenerateGMResponse(context.Background(), nil); err == nil {
		t.Error("Expected generate error, got nil")
	}
}
