package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ChatRequest is a free-text message sent by the player.
type ChatRequest struct {
	Message string `json:"message"`
}

func (cr *ChatRequest) Validate() error {
	if strings.TrimSpace(cr.Message) == "" {
		return fmt.Errorf("message cannot be empty")
	}
	return nil
}

// RollRequest asks for a free roll of one die.
type RollRequest struct {
	Sides int `json:"sides"`
}

func (rr *RollRequest) Validate() error {
	if rr.Sides < 2 {
		return fmt.Errorf("sides must be at least 2")
	}
	return nil
}

// Sender identifies who wrote a log entry.
type Sender string

const (
	SenderUser   Sender = "user"
	SenderAI     Sender = "ai"
	SenderSystem Sender = "system"
)

// Message is one entry in the adventure log. Entries are never edited.
type Message struct {
	ID        uuid.UUID `json:"id"`
	Sender    Sender    `json:"sender"`
	Content   string    `json:"content"` // markdown when Sender is ai
	Timestamp time.Time `json:"timestamp"`
	IsRoll    bool      `json:"isRoll,omitempty"`
}

// NewMessage stamps a new log entry.
func NewMessage(sender Sender, content string, isRoll bool) Message {
	return Message{
		ID:        uuid.New(),
		Sender:    sender,
		Content:   content,
		Timestamp: time.Now().UTC(),
		IsRoll:    isRoll,
	}
}

const (
	ChatRoleUser   = "user"      // Player
	ChatRoleAgent  = "assistant" // Game Master
	ChatRoleSystem = "system"    // Instructions
)

// ChatMessage is a single message in the conversation sent to the LLM.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

// Turn roles used in the Game Master request history.
const (
	TurnRoleUser  = "user"
	TurnRoleModel = "model"
)

// Turn is a prior exchange passed to the Game Master.
type Turn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}
