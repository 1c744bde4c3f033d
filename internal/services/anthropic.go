package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
)

const (
	DefaultAnthropicTemperature = 0.7
	DefaultAnthropicMaxTokens   = 2048
)

// AnthropicService implements LLMService for Anthropic Claude
type AnthropicService struct {
	client    anthropic.Client
	modelName string
	logger    *slog.Logger
}

var _ LLMService = (*AnthropicService)(nil)

// NewAnthropicService creates a Claude-backed service. Extra request options
// (base URL, HTTP client) are passed through to the SDK client.
func NewAnthropicService(apiKey string, modelName string, timeout time.Duration, logger *slog.Logger, opts ...option.RequestOption) *AnthropicService {
	clientOpts := append([]option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithRequestTimeout(timeout),
	}, opts...)

	return &AnthropicService{
		client:    anthropic.NewClient(clientOpts...),
		modelName: modelName,
		logger:    logger,
	}
}

func (a *AnthropicService) InitModel(ctx context.Context, modelName string) error {
	if modelName != "" {
		a.modelName = modelName
	}
	return nil
}

// splitChatMessages extracts and combines all system messages into a single system prompt
// and returns the remaining non-system messages
func (a *AnthropicService) splitChatMessages(messages []chat.ChatMessage) (string, []chat.ChatMessage) {
	var systemParts []string
	var nonSystemMessages []chat.ChatMessage

	for _, msg := range messages {
		if msg.Role == chat.ChatRoleSystem {
			systemParts = append(systemParts, msg.Content)
		} else {
			nonSystemMessages = append(nonSystemMessages, msg)
		}
	}

	systemPrompt := strings.Join(systemParts, "\n\n")
	return systemPrompt, nonSystemMessages
}

// toMessageParams merges consecutive same-role messages and drops leading
// assistant messages, since the conversation must open with the user.
func toMessageParams(messages []chat.ChatMessage) []anthropic.MessageParam {
	type turn struct {
		role  string
		parts []string
	}
	var turns []turn
	for _, msg := range messages {
		if len(turns) == 0 && msg.Role != chat.ChatRoleUser {
			continue
		}
		if n := len(turns); n > 0 && turns[n-1].role == msg.Role {
			turns[n-1].parts = append(turns[n-1].parts, msg.Content)
			continue
		}
		turns = append(turns, turn{role: msg.Role, parts: []string{msg.Content}})
	}

	params := make([]anthropic.MessageParam, 0, len(turns))
	for _, t := range turns {
		block := anthropic.NewTextBlock(strings.Join(t.parts, "\n\n"))
		if t.role == chat.ChatRoleAgent {
			params = append(params, anthropic.NewAssistantMessage(block))
		} else {
			params = append(params, anthropic.NewUserMessage(block))
		}
	}
	return params
}

// GenerateGMResponse sends the conversation to Claude and returns the text reply
func (a *AnthropicService) GenerateGMResponse(ctx context.Context, messages []chat.ChatMessage) (string, error) {
	systemPrompt, conversation := a.splitChatMessages(messages)

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.modelName),
		MaxTokens:   DefaultAnthropicMaxTokens,
		Messages:    toMessageParams(conversation),
		Temperature: anthropic.Float(DefaultAnthropicTemperature),
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("anthropic returned no text content")
	}

	if a.logger != nil {
		a.logger.Debug("Anthropic response received",
			"model", a.modelName,
			"stop_reason", msg.StopReason,
			"input_tokens", msg.Usage.InputTokens,
			"output_tokens", msg.Usage.OutputTokens)
	}
	return sb.String(), nil
}
