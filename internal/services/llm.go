package services

import (
	"context"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
)

// LLMService defines the interface for interacting with the LLM API
type LLMService interface {
	// InitModel prepares the model on startup
	InitModel(ctx context.Context, modelName string) error

	// GenerateGMResponse returns the raw Game Master reply for the messages.
	// The reply is expected to be a JSON object; callers parse it.
	GenerateGMResponse(ctx context.Context, messages []chat.ChatMessage) (string, error)
}

// StructuredOutput is implemented by providers that enforce the reply
// schema themselves.
type StructuredOutput interface {
	SupportsResponseSchema() bool
}
