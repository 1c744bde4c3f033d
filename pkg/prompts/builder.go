package prompts

import (
	"fmt"
	"strings"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/gm"
)

// Builder constructs chat messages for LLM interaction using a fluent interface.
type Builder struct {
	req            *gm.Request
	historyLimit   int
	responseFormat bool
	messages       []chat.ChatMessage
}

// New creates a new prompt builder with default settings.
func New() *Builder {
	return &Builder{
		historyLimit: chat.DefaultHistoryLimit,
		messages:     make([]chat.ChatMessage, 0),
	}
}

// WithRequest sets the Game Master request for this turn.
func (b *Builder) WithRequest(req *gm.Request) *Builder {
	b.req = req
	return b
}

// WithHistoryLimit caps how many prior turns are included.
func (b *Builder) WithHistoryLimit(limit int) *Builder {
	b.historyLimit = limit
	return b
}

// WithResponseFormat appends the reply field list to the system prompt.
// Use it for providers that cannot enforce a JSON schema.
func (b *Builder) WithResponseFormat() *Builder {
	b.responseFormat = true
	return b
}

// Build constructs and returns the final message array for LLM consumption.
func (b *Builder) Build() ([]chat.ChatMessage, error) {
	if b.req == nil {
		return nil, fmt.Errorf("request is required")
	}
	if strings.TrimSpace(b.req.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	b.messages = make([]chat.ChatMessage, 0, len(b.req.PriorTurns)+2)

	// 1. System prompt
	b.addSystemPrompt()

	// 2. Windowed prior turns
	b.addHistory()

	// 3. Player prompt
	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleUser,
		Content: b.req.Prompt,
	})

	return b.messages, nil
}

func (b *Builder) addSystemPrompt() {
	var sb strings.Builder
	sb.WriteString(BaseSystemPrompt)
	if b.responseFormat {
		sb.WriteString("\n\n" + ResponseFormatPrompt)
	}
	sb.WriteString("\n\n" + BuildSettingsPrompt(b.req.Settings))
	sb.WriteString("\n\n" + BuildCharacterPrompt(b.req.Character))

	b.messages = append(b.messages, chat.ChatMessage{
		Role:    chat.ChatRoleSystem,
		Content: sb.String(),
	})
}

// addHistory maps prior turns to LLM roles, keeping the newest historyLimit.
func (b *Builder) addHistory() {
	turns := b.req.PriorTurns
	if b.historyLimit >= 0 && len(turns) > b.historyLimit {
		turns = turns[len(turns)-b.historyLimit:]
	}
	for _, t := range turns {
		role := chat.ChatRoleUser
		if t.Role == chat.TurnRoleModel {
			role = chat.ChatRoleAgent
		}
		b.messages = append(b.messages, chat.ChatMessage{Role: role, Content: t.Text})
	}
}

// BuildMessages is a convenience function for the common case.
func BuildMessages(req *gm.Request, historyLimit int) ([]chat.ChatMessage, error) {
	return New().
		WithRequest(req).
		WithHistoryLimit(historyLimit).
		Build()
}
