package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/check"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeChatMessage      EventType = "chat.message"
	EventTypeTurnState        EventType = "turn.state"
	EventTypeCheckRequested   EventType = "check.requested"
	EventTypeCheckResolved    EventType = "check.resolved"
	EventTypeCharacterUpdated EventType = "character.updated"
)

// DefaultHistorySize is how many recent events are kept per session for
// clients that connect late.
const DefaultHistorySize = 50

// Event represents a generic event structure
type Event struct {
	Type      EventType              `json:"type"`
	SessionID string                 `json:"session_id"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data,omitempty"`
}

// Broadcaster publishes session events to Redis Pub/Sub for SSE distribution
// and keeps a short replay list per session.
type Broadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
	historySize int
}

// NewBroadcaster creates a new event broadcaster
func NewBroadcaster(redisClient *redis.Client, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		redisClient: redisClient,
		logger:      logger,
		historySize: DefaultHistorySize,
	}
}

// Channel is the Pub/Sub channel for a session.
func Channel(sessionID uuid.UUID) string {
	return fmt.Sprintf("session-events:%s", sessionID.String())
}

func historyKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("session-events-history:%s", sessionID.String())
}

// PublishChatMessage publishes a chat.message event
func (b *Broadcaster) PublishChatMessage(ctx context.Context, sessionID uuid.UUID, msg chat.Message) error {
	return b.publish(ctx, sessionID, EventTypeChatMessage, map[string]interface{}{
		"message": msg,
	})
}

// PublishTurnState publishes a turn.state event
func (b *Broadcaster) PublishTurnState(ctx context.Context, sessionID uuid.UUID, state string) error {
	return b.publish(ctx, sessionID, EventTypeTurnState, map[string]interface{}{
		"state": state,
	})
}

// PublishCheckRequested publishes a check.requested event
func (b *Broadcaster) PublishCheckRequested(ctx context.Context, sessionID uuid.UUID, req check.Request) error {
	return b.publish(ctx, sessionID, EventTypeCheckRequested, map[string]interface{}{
		"check": req,
	})
}

// PublishCheckResolved publishes a check.resolved event
func (b *Broadcaster) PublishCheckResolved(ctx context.Context, sessionID uuid.UUID, res check.Result) error {
	return b.publish(ctx, sessionID, EventTypeCheckResolved, map[string]interface{}{
		"result": res,
	})
}

// PublishCharacterUpdated publishes a character.updated event
func (b *Broadcaster) PublishCharacterUpdated(ctx context.Context, sessionID uuid.UUID, c character.Character) error {
	return b.publish(ctx, sessionID, EventTypeCharacterUpdated, map[string]interface{}{
		"character": c,
	})
}

// Recent returns up to n of the newest events for a session, oldest first.
func (b *Broadcaster) Recent(ctx context.Context, sessionID uuid.UUID, n int) ([]Event, error) {
	if n <= 0 {
		return nil, nil
	}
	raw, err := b.redisClient.LRange(ctx, historyKey(sessionID), int64(-n), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event history: %w", err)
	}

	out := make([]Event, 0, len(raw))
	for _, r := range raw {
		var e Event
		if err := json.Unmarshal([]byte(r), &e); err != nil {
			b.logger.Warn("Skipping unreadable event", "error", err, "session_id", sessionID.String())
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Forget drops the replay list for a session.
func (b *Broadcaster) Forget(ctx context.Context, sessionID uuid.UUID) error {
	if err := b.redisClient.Del(ctx, historyKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete event history: %w", err)
	}
	return nil
}

// publish sends an event to the session channel and appends it to the
// replay list.
func (b *Broadcaster) publish(ctx context.Context, sessionID uuid.UUID, eventType EventType, data map[string]interface{}) error {
	event := Event{
		Type:      eventType,
		SessionID: sessionID.String(),
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	channel := Channel(sessionID)

	payload, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event_type", eventType)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := b.redisClient.TxPipeline()
	pipe.RPush(ctx, historyKey(sessionID), payload)
	pipe.LTrim(ctx, historyKey(sessionID), int64(-b.historySize), -1)
	pipe.Publish(ctx, channel, payload)
	if _, err := pipe.Exec(ctx); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published",
		"channel", channel,
		"event_type", eventType,
	)

	return nil
}
