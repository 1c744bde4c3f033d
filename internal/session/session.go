// Package session runs the turn loop of one adventure: player input, the
// Game Master call, applying the reply, and the check gate in between.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/KirkDiggler/rpg-toolkit/dice"
	"github.com/google/uuid"

	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/check"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/gm"
)

var (
	ErrBusy           = errors.New("waiting for the Game Master")
	ErrCheckPending   = errors.New("a check must be resolved first")
	ErrEmptyMessage   = errors.New("message cannot be empty")
	ErrNoPendingCheck = errors.New("no check is pending")
	ErrInvalidDie     = check.ErrInvalidDie
)

// InterruptedMessage is logged when a Game Master call fails for any reason.
const InterruptedMessage = "Connection to the Game Master was interrupted, please retry."

// State is the turn state of a session.
type State string

const (
	StateIdle                    State = "idle"
	StateAwaitingAIResponse      State = "awaiting_ai_response"
	StateAwaitingCheckResolution State = "awaiting_check_resolution"
)

// GameMaster produces a validated reply for one turn.
type GameMaster interface {
	Respond(ctx context.Context, req *gm.Request) (*gm.Response, error)
}

// Publisher receives session events. Failures are logged and ignored.
type Publisher interface {
	PublishChatMessage(ctx context.Context, sessionID uuid.UUID, msg chat.Message) error
	PublishTurnState(ctx context.Context, sessionID uuid.UUID, state string) error
	PublishCheckRequested(ctx context.Context, sessionID uuid.UUID, req check.Request) error
	PublishCheckResolved(ctx context.Context, sessionID uuid.UUID, res check.Result) error
	PublishCharacterUpdated(ctx context.Context, sessionID uuid.UUID, c character.Character) error
}

// Options configures new sessions.
type Options struct {
	GameMaster   GameMaster
	Roller       dice.Roller // defaults to dice.DefaultRoller
	Publisher    Publisher   // optional
	Logger       *slog.Logger
	HistoryLimit int // defaults to chat.DefaultHistoryLimit
}

// Session is one player's adventure. All methods are safe for concurrent
// use; the lock is not held while the Game Master is thinking.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time

	mu           sync.Mutex
	state        State
	pendingCheck *check.Request
	lastCheck    *check.Result
	character    character.Character
	settings     gm.Settings
	log          chat.Log

	gm           GameMaster
	roller       dice.Roller
	publisher    Publisher
	logger       *slog.Logger
	historyLimit int
}

// View is a point-in-time copy of a session.
type View struct {
	ID           uuid.UUID           `json:"id"`
	State        State               `json:"state"`
	PendingCheck *check.Request      `json:"pendingCheck,omitempty"`
	LastCheck    *check.Result       `json:"lastCheck,omitempty"`
	Character    character.Character `json:"character"`
	Settings     gm.Settings         `json:"settings"`
	Messages     []chat.Message      `json:"messages"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// New creates an idle session with the default character and settings.
func New(opts Options) *Session {
	if opts.Roller == nil {
		opts.Roller = dice.DefaultRoller
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = chat.DefaultHistoryLimit
	}
	id := uuid.New()
	return &Session{
		ID:           id,
		CreatedAt:    time.Now().UTC(),
		state:        StateIdle,
		character:    character.Default(),
		settings:     gm.DefaultSettings(),
		gm:           opts.GameMaster,
		roller:       opts.Roller,
		publisher:    opts.Publisher,
		logger:       opts.Logger.With("session_id", id.String()),
		historyLimit: opts.HistoryLimit,
	}
}

// Snapshot returns a copy of the session.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

func (s *Session) viewLocked() View {
	v := View{
		ID:        s.ID,
		State:     s.state,
		Character: s.character.Clone(),
		Settings:  s.settings,
		Messages:  s.log.Messages(),
		CreatedAt: s.CreatedAt,
	}
	if s.pendingCheck != nil {
		pc := *s.pendingCheck
		v.PendingCheck = &pc
	}
	if s.lastCheck != nil {
		lc := *s.lastCheck
		v.LastCheck = &lc
	}
	return v
}

// State returns the current turn state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// guardInputLocked rejects player input unless the session is idle.
func (s *Session) guardInputLocked() error {
	switch s.state {
	case StateAwaitingAIResponse:
		return ErrBusy
	case StateAwaitingCheckResolution:
		return ErrCheckPending
	}
	return nil
}

// SendMessage logs the player's text and plays a turn with it.
func (s *Session) SendMessage(ctx context.Context, text string) (View, error) {
	if strings.TrimSpace(text) == "" {
		return s.Snapshot(), ErrEmptyMessage
	}

	s.mu.Lock()
	if err := s.guardInputLocked(); err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	req := s.beginTurnLocked(text)
	msg := chat.NewMessage(chat.SenderUser, text, false)
	s.log.Append(msg)
	s.mu.Unlock()

	s.publishMessages(ctx, msg)
	s.publishState(ctx, StateAwaitingAIResponse)

	return s.finishTurn(ctx, req), nil
}

// RollDice makes a free roll, logs it and asks the Game Master to rule on it.
func (s *Session) RollDice(ctx context.Context, sides int) (View, error) {
	s.mu.Lock()
	if err := s.guardInputLocked(); err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	roll, err := check.RollLoose(s.roller, sides)
	if err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	req := s.beginTurnLocked(roll.Prompt())
	msg := chat.NewMessage(chat.SenderSystem, roll.AuditMessage(), true)
	s.log.Append(msg)
	s.mu.Unlock()

	s.logger.Info("Free roll", "sides", roll.Sides, "result", roll.Result)
	s.publishMessages(ctx, msg)
	s.publishState(ctx, StateAwaitingAIResponse)

	return s.finishTurn(ctx, req), nil
}

// ResolveCheck rolls the pending check, logs the result and asks the Game
// Master to narrate the consequence.
func (s *Session) ResolveCheck(ctx context.Context) (View, check.Result, error) {
	s.mu.Lock()
	switch s.state {
	case StateAwaitingAIResponse:
		s.mu.Unlock()
		return s.Snapshot(), check.Result{}, ErrBusy
	case StateIdle:
		s.mu.Unlock()
		return s.Snapshot(), check.Result{}, ErrNoPendingCheck
	}

	pending := *s.pendingCheck
	score, err := s.character.Score(pending.Attribute)
	if err != nil {
		s.mu.Unlock()
		return s.Snapshot(), check.Result{}, fmt.Errorf("failed to read %s: %w", pending.Attribute, err)
	}
	roll, err := check.RollD20(s.roller)
	if err != nil {
		s.mu.Unlock()
		return s.Snapshot(), check.Result{}, err
	}
	result := check.Resolve(pending, score, roll)

	s.pendingCheck = nil
	s.lastCheck = &result
	req := s.beginTurnLocked(result.FollowUpPrompt())
	msg := chat.NewMessage(chat.SenderSystem, result.AuditMessage(), true)
	s.log.Append(msg)
	s.mu.Unlock()

	s.logger.Info("Check resolved",
		"attribute", result.Attribute,
		"roll", result.Roll,
		"modifier", result.Modifier,
		"total", result.Total,
		"dc", result.DC,
		"success", result.Success)
	if s.publisher != nil {
		if err := s.publisher.PublishCheckResolved(ctx, s.ID, result); err != nil {
			s.logger.Warn("Failed to publish check result", "error", err)
		}
	}
	s.publishMessages(ctx, msg)
	s.publishState(ctx, StateAwaitingAIResponse)

	return s.finishTurn(ctx, req), result, nil
}

// beginTurnLocked moves to AwaitingAIResponse and snapshots the request.
// History is read before the caller appends this turn's log entry.
func (s *Session) beginTurnLocked(prompt string) *gm.Request {
	s.state = StateAwaitingAIResponse
	return &gm.Request{
		Prompt:     prompt,
		PriorTurns: s.log.PriorTurns(s.historyLimit),
		Character:  s.character.Clone(),
		Settings:   s.settings,
	}
}

// finishTurn calls the Game Master without holding the lock, then applies
// the reply. Any failure leaves the character untouched and returns to Idle.
func (s *Session) finishTurn(ctx context.Context, req *gm.Request) View {
	start := time.Now()
	resp, err := s.respond(ctx, req)

	s.mu.Lock()
	var (
		appended []chat.Message
		applied  gm.Result
	)
	if err != nil {
		s.logger.Error("Game Master call failed", "error", err, "duration", time.Since(start))
		msg := chat.NewMessage(chat.SenderSystem, InterruptedMessage, false)
		appended = append(appended, msg)
		s.state = StateIdle
	} else {
		applied = gm.Apply(s.character, resp, s.logger)
		s.character = applied.Character
		if applied.Narrative != "" {
			appended = append(appended, chat.NewMessage(chat.SenderAI, applied.Narrative, false))
		}
		if applied.Notice != "" {
			appended = append(appended, chat.NewMessage(chat.SenderSystem, applied.Notice, false))
		}
		if applied.PendingCheck != nil {
			s.pendingCheck = applied.PendingCheck
			s.state = StateAwaitingCheckResolution
		} else {
			s.state = StateIdle
		}
		s.logger.Debug("Turn applied",
			"duration", time.Since(start),
			"state", s.state,
			"notice", applied.Notice)
	}
	s.log.Append(appended...)
	state := s.state
	c := s.character.Clone()
	view := s.viewLocked()
	s.mu.Unlock()

	s.publishMessages(ctx, appended...)
	if err == nil && s.publisher != nil {
		if applied.PendingCheck != nil {
			if perr := s.publisher.PublishCheckRequested(ctx, s.ID, *applied.PendingCheck); perr != nil {
				s.logger.Warn("Failed to publish check request", "error", perr)
			}
		} else if applied.Notice != "" || resp.HasStateChanges() {
			s.publishCharacter(ctx, c)
		}
	}
	s.publishState(ctx, state)
	return view
}

func (s *Session) respond(ctx context.Context, req *gm.Request) (resp *gm.Response, err error) {
	if s.gm == nil {
		return nil, errors.New("no Game Master configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("game master panicked: %v", r)
		}
	}()
	resp, err = s.gm.Respond(ctx, req)
	if err == nil && resp == nil {
		err = gm.ErrInvalidResponse
	}
	return resp, err
}

// Equip moves an inventory item into its slot.
func (s *Session) Equip(ctx context.Context, itemID string) (View, error) {
	s.mu.Lock()
	if err := s.character.Equip(itemID); err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	c := s.character.Clone()
	view := s.viewLocked()
	s.mu.Unlock()

	s.logger.Debug("Item equipped", "item_id", itemID)
	s.publishCharacter(ctx, c)
	return view, nil
}

// Unequip moves whatever is in slot back to the inventory.
func (s *Session) Unequip(ctx context.Context, slot character.Slot) (View, error) {
	s.mu.Lock()
	if err := s.character.Unequip(slot); err != nil {
		s.mu.Unlock()
		return s.Snapshot(), err
	}
	c := s.character.Clone()
	view := s.viewLocked()
	s.mu.Unlock()

	s.logger.Debug("Slot cleared", "slot", slot)
	s.publishCharacter(ctx, c)
	return view, nil
}

// UpdateProfile edits name, class and gender. Name and class changes are
// logged.
func (s *Session) UpdateProfile(ctx context.Context, u character.ProfileUpdate) View {
	s.mu.Lock()
	notes := s.character.ApplyProfile(u)
	msgs := make([]chat.Message, 0, len(notes))
	for _, n := range notes {
		msgs = append(msgs, chat.NewMessage(chat.SenderSystem, n, false))
	}
	s.log.Append(msgs...)
	c := s.character.Clone()
	view := s.viewLocked()
	s.mu.Unlock()

	s.publishMessages(ctx, msgs...)
	s.publishCharacter(ctx, c)
	return view
}

// SaveSettings replaces the world and script text used from the next turn.
func (s *Session) SaveSettings(settings gm.Settings) View {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	return s.viewLocked()
}

func (s *Session) publishMessages(ctx context.Context, msgs ...chat.Message) {
	if s.publisher == nil {
		return
	}
	for _, m := range msgs {
		if err := s.publisher.PublishChatMessage(ctx, s.ID, m); err != nil {
			s.logger.Warn("Failed to publish chat message", "error", err)
			return
		}
	}
}

func (s *Session) publishState(ctx context.Context, state State) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishTurnState(ctx, s.ID, string(state)); err != nil {
		s.logger.Warn("Failed to publish turn state", "error", err, "state", state)
	}
}

func (s *Session) publishCharacter(ctx context.Context, c character.Character) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishCharacterUpdated(ctx, s.ID, c); err != nil {
		s.logger.Warn("Failed to publish character", "error", err)
	}
}
