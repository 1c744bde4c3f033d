package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyu460659-glitch/paoTuanGame/internal/services"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/check"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/gm"
)

type stubGM struct {
	mu       sync.Mutex
	replies  []*gm.Response
	err      error
	requests []*gm.Request
}

func (g *stubGM) Respond(_ context.Context, req *gm.Request) (*gm.Response, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, req)
	if g.err != nil {
		return nil, g.err
	}
	if len(g.replies) == 0 {
		return &gm.Response{Narrative: "Nothing happens."}, nil
	}
	r := g.replies[0]
	g.replies = g.replies[1:]
	return r, nil
}

func (g *stubGM) lastRequest() *gm.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.requests) == 0 {
		return nil
	}
	return g.requests[len(g.requests)-1]
}

type stubRoller struct {
	value int
	sizes []int
}

func (s *stubRoller) Roll(size int) (int, error) {
	s.sizes = append(s.sizes, size)
	return s.value, nil
}

func (s *stubRoller) RollN(count, size int) ([]int, error) {
	out := make([]int, count)
	for i := range out {
		out[i] = s.value
	}
	return out, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	states []string
	err    error
}

func (p *recordingPublisher) add(kind string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, kind)
	return p.err
}

func (p *recordingPublisher) PublishChatMessage(_ context.Context, _ uuid.UUID, _ chat.Message) error {
	return p.add("chat.message")
}

func (p *recordingPublisher) PublishTurnState(_ context.Context, _ uuid.UUID, state string) error {
	p.mu.Lock()
	p.states = append(p.states, state)
	p.mu.Unlock()
	return p.add("turn.state")
}

func (p *recordingPublisher) PublishCheckRequested(_ context.Context, _ uuid.UUID, _ check.Request) error {
	return p.add("check.requested")
}

func (p *recordingPublisher) PublishCheckResolved(_ context.Context, _ uuid.UUID, _ check.Result) error {
	return p.add("check.resolved")
}

func (p *recordingPublisher) PublishCharacterUpdated(_ context.Context, _ uuid.UUID, _ character.Character) error {
	return p.add("character.updated")
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestSession(g GameMaster, roll int) (*Session, *stubRoller) {
	r := &stubRoller{value: roll}
	return New(Options{GameMaster: g, Roller: r, Logger: testLogger()}), r
}

func intPtr(v int) *int { return &v }

func contents(msgs []chat.Message) []string {
	out := make([]string, len(msgs))
	for i, m := range msgs {
		out[i] = m.Content
	}
	return out
}

func TestNew(t *testing.T) {
	s, _ := newTestSession(&stubGM{}, 10)
	v := s.Snapshot()

	assert.Equal(t, StateIdle, v.State)
	assert.Nil(t, v.PendingCheck)
	assert.Empty(t, v.Messages)
	assert.Equal(t, character.Default(), v.Character)
	assert.Equal(t, gm.DefaultSettings(), v.Settings)
}

func TestSendMessage_AppliesReply(t *testing.T) {
	g := &stubGM{replies: []*gm.Response{{Narrative: "A goblin slashes you.", HPChange: intPtr(-10)}}}
	s, _ := newTestSession(g, 10)

	v, err := s.SendMessage(context.Background(), "I open the door")
	require.NoError(t, err)

	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, 25, v.Character.CurrentStats.HP)
	require.Len(t, v.Messages, 3)
	assert.Equal(t, chat.SenderUser, v.Messages[0].Sender)
	assert.Equal(t, chat.SenderAI, v.Messages[1].Sender)
	assert.Equal(t, "A goblin slashes you.", v.Messages[1].Content)
	assert.Equal(t, chat.SenderSystem, v.Messages[2].Sender)
	assert.Equal(t, "Status update: HP -10", v.Messages[2].Content)

	req := g.lastRequest()
	require.NotNil(t, req)
	assert.Equal(t, "I open the door", req.Prompt)
	assert.Empty(t, req.PriorTurns)
	assert.Equal(t, 35, req.Character.CurrentStats.HP)
	assert.Equal(t, gm.DefaultSettings(), req.Settings)
}

func TestSendMessage_Empty(t *testing.T) {
	g := &stubGM{}
	s, _ := newTestSession(g, 10)

	_, err := s.SendMessage(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyMessage)
	assert.Empty(t, s.Snapshot().Messages)
	assert.Nil(t, g.lastRequest())
}

func TestSendMessage_FailureIsAbsorbed(t *testing.T) {
	tests := []struct {
		name string
		gm   GameMaster
	}{
		{"transport error", &stubGM{err: errors.New("connection reset")}},
		{"invalid reply", &stubGM{err: gm.ErrInvalidResponse}},
		{"nil reply", gmFunc(func(context.Context, *gm.Request) (*gm.Response, error) { return nil, nil })},
		{"panic", gmFunc(func(context.Context, *gm.Request) (*gm.Response, error) { panic("boom") })},
		{"no game master", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestSession(tt.gm, 10)
			before := s.Snapshot().Character

			v, err := s.SendMessage(context.Background(), "hello")
			require.NoError(t, err)

			assert.Equal(t, StateIdle, v.State)
			assert.Equal(t, before, v.Character)
			assert.Equal(t, []string{"hello", InterruptedMessage}, contents(v.Messages))
			assert.Equal(t, chat.SenderSystem, v.Messages[1].Sender)
		})
	}
}

type gmFunc func(context.Context, *gm.Request) (*gm.Response, error)

func (f gmFunc) Respond(ctx context.Context, req *gm.Request) (*gm.Response, error) {
	return f(ctx, req)
}

func TestCheckFlow(t *testing.T) {
	g := &stubGM{replies: []*gm.Response{
		{
			Narrative:    "The ledge is narrow.",
			CheckRequest: &check.Request{Attribute: character.Dexterity, Difficulty: 15, Reason: "jump the gap"},
			HPChange:     intPtr(-5),
		},
		{Narrative: "You land safely.", NewItems: []character.Item{{ID: "rope", Name: "Rope", Type: character.ItemMisc}}},
	}}
	s, roller := newTestSession(g, 14)
	ctx := context.Background()

	v, err := s.SendMessage(ctx, "I jump")
	require.NoError(t, err)
	assert.Equal(t, StateAwaitingCheckResolution, v.State)
	require.NotNil(t, v.PendingCheck)
	assert.Equal(t, 15, v.PendingCheck.Difficulty)
	assert.Equal(t, 35, v.Character.CurrentStats.HP, "state changes alongside a check are dropped")
	assert.Equal(t, []string{"I jump", "The ledge is narrow."}, contents(v.Messages))

	_, err = s.SendMessage(ctx, "I wait")
	assert.ErrorIs(t, err, ErrCheckPending)
	_, err = s.RollDice(ctx, 6)
	assert.ErrorIs(t, err, ErrCheckPending)

	v, result, err := s.ResolveCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{20}, roller.sizes)
	assert.Equal(t, check.Result{Attribute: character.Dexterity, Roll: 14, Modifier: 1, Total: 15, DC: 15, Success: true}, result)

	assert.Equal(t, StateIdle, v.State)
	assert.Nil(t, v.PendingCheck)
	require.NotNil(t, v.LastCheck)
	assert.Equal(t, result, *v.LastCheck)
	assert.Equal(t, []string{
		"I jump",
		"The ledge is narrow.",
		"[System] Dexterity check: 1d20(14) + modifier(1) = 15 (DC 15) -> [Success]",
		"You land safely.",
		"Status update: Items gained: Rope",
	}, contents(v.Messages))
	assert.True(t, v.Messages[2].IsRoll)
	assert.True(t, v.Character.HasItem("rope"))

	req := g.lastRequest()
	assert.Equal(t, "[System message] The player completed a dexterity check. Total: 15 (DC: 15). Result: Success. Narrate what happens next based on this result.", req.Prompt)
	assert.Equal(t, []chat.Turn{
		{Role: chat.TurnRoleUser, Text: "I jump"},
		{Role: chat.TurnRoleModel, Text: "The ledge is narrow."},
	}, req.PriorTurns)
}

func TestResolveCheck_Failure(t *testing.T) {
	g := &stubGM{replies: []*gm.Response{
		{Narrative: "Lift it.", CheckRequest: &check.Request{Attribute: character.Charisma, Difficulty: 10, Reason: "persuade"}},
	}}
	s, _ := newTestSession(g, 10)
	ctx := context.Background()

	_, err := s.SendMessage(ctx, "I ask nicely")
	require.NoError(t, err)

	_, result, err := s.ResolveCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, -1, result.Modifier)
	assert.Equal(t, 9, result.Total)
	assert.False(t, result.Success)
	assert.Contains(t, g.lastRequest().Prompt, "Result: Failure.")
}

func TestResolveCheck_NoPendingCheck(t *testing.T) {
	s, roller := newTestSession(&stubGM{}, 10)

	_, _, err := s.ResolveCheck(context.Background())
	assert.ErrorIs(t, err, ErrNoPendingCheck)
	assert.Empty(t, roller.sizes)
	assert.Empty(t, s.Snapshot().Messages)
}

func TestResolveCheck_FailedFollowUpReturnsToIdle(t *testing.T) {
	g := &stubGM{replies: []*gm.Response{
		{Narrative: "Careful.", CheckRequest: &check.Request{Attribute: character.Wisdom, Difficulty: 12, Reason: "notice"}},
	}}
	s, _ := newTestSession(g, 12)
	ctx := context.Background()

	_, err := s.SendMessage(ctx, "I look around")
	require.NoError(t, err)

	g.mu.Lock()
	g.err = errors.New("timeout")
	g.mu.Unlock()

	v, _, err := s.ResolveCheck(ctx)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, v.State)
	assert.Nil(t, v.PendingCheck)
	last := v.Messages[len(v.Messages)-1]
	assert.Equal(t, InterruptedMessage, last.Content)
}

func TestRollDice(t *testing.T) {
	g := &stubGM{}
	s, roller := newTestSession(g, 4)

	v, err := s.RollDice(context.Background(), 6)
	require.NoError(t, err)

	assert.Equal(t, []int{6}, roller.sizes)
	require.Len(t, v.Messages, 2)
	assert.Equal(t, "[System] Player freely rolled a D6, result: 4", v.Messages[0].Content)
	assert.True(t, v.Messages[0].IsRoll)
	assert.Equal(t, chat.SenderSystem, v.Messages[0].Sender)
	assert.Equal(t, "I rolled a D6 and got 4. Decide the outcome based on the current situation.", g.lastRequest().Prompt)
}

func TestRollDice_InvalidDie(t *testing.T) {
	g := &stubGM{}
	s, roller := newTestSession(g, 1)

	for _, sides := range []int{-3, 0, 1} {
		_, err := s.RollDice(context.Background(), sides)
		assert.ErrorIs(t, err, ErrInvalidDie)
	}
	assert.Empty(t, roller.sizes)
	assert.Empty(t, s.Snapshot().Messages)
	assert.Equal(t, StateIdle, s.State())
}

type blockingGM struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingGM) Respond(ctx context.Context, _ *gm.Request) (*gm.Response, error) {
	close(b.entered)
	<-b.release
	return &gm.Response{Narrative: "Done."}, nil
}

func TestSingleFlight(t *testing.T) {
	b := &blockingGM{entered: make(chan struct{}), release: make(chan struct{})}
	s, _ := newTestSession(b, 10)
	ctx := context.Background()

	done := make(chan View)
	go func() {
		v, _ := s.SendMessage(ctx, "first")
		done <- v
	}()
	<-b.entered

	assert.Equal(t, StateAwaitingAIResponse, s.State())
	_, err := s.SendMessage(ctx, "second")
	assert.ErrorIs(t, err, ErrBusy)
	_, err = s.RollDice(ctx, 20)
	assert.ErrorIs(t, err, ErrBusy)
	_, _, err = s.ResolveCheck(ctx)
	assert.ErrorIs(t, err, ErrBusy)

	// Non-turn edits stay available while the Game Master is thinking.
	_, err = s.Equip(ctx, "1")
	assert.NoError(t, err)

	close(b.release)
	v := <-done
	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, []string{"first", "Done."}, contents(v.Messages))
	assert.NotNil(t, v.Character.Equipment.Get(character.SlotMainHand))
}

func TestPriorTurns_WindowTakenBeforeNewMessage(t *testing.T) {
	g := &stubGM{}
	s, _ := newTestSession(g, 10)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := s.SendMessage(ctx, "again")
		require.NoError(t, err)
	}
	_, err := s.RollDice(ctx, 4)
	require.NoError(t, err)

	req := g.lastRequest()
	assert.Len(t, req.PriorTurns, 10)
	assert.Equal(t, chat.TurnRoleUser, req.PriorTurns[0].Role)
	assert.Equal(t, chat.TurnRoleModel, req.PriorTurns[9].Role)
}

func TestEquipUnequip(t *testing.T) {
	p := &recordingPublisher{}
	s := New(Options{GameMaster: &stubGM{}, Logger: testLogger(), Publisher: p})
	ctx := context.Background()

	v, err := s.Equip(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, "2", v.Character.Equipment.Get(character.SlotChest).ID)

	_, err = s.Equip(ctx, "3")
	assert.ErrorIs(t, err, character.ErrNotEquipable)
	_, err = s.Equip(ctx, "nope")
	assert.ErrorIs(t, err, character.ErrItemNotFound)

	v, err = s.Unequip(ctx, character.SlotChest)
	require.NoError(t, err)
	assert.Nil(t, v.Character.Equipment.Get(character.SlotChest))
	assert.Equal(t, "2", v.Character.Inventory[len(v.Character.Inventory)-1].ID)

	_, err = s.Unequip(ctx, character.Slot("tail"))
	assert.ErrorIs(t, err, character.ErrInvalidSlot)

	assert.Equal(t, []string{"character.updated", "character.updated"}, p.events)
	assert.Empty(t, s.Snapshot().Messages)
}

func TestUpdateProfile(t *testing.T) {
	s, _ := newTestSession(&stubGM{}, 10)
	name, class, gender := "Lin", "Ranger", "female"

	v := s.UpdateProfile(context.Background(), character.ProfileUpdate{Name: &name, Class: &class, Gender: &gender})

	assert.Equal(t, "Lin", v.Character.Name)
	assert.Equal(t, "female", v.Character.Gender)
	assert.Equal(t, []string{
		"[Profile] Class changed to: Ranger",
		"[Profile] Name changed to: Lin",
	}, contents(v.Messages))

	v = s.UpdateProfile(context.Background(), character.ProfileUpdate{Name: &name})
	assert.Len(t, v.Messages, 2)
}

func TestSaveSettings(t *testing.T) {
	g := &stubGM{}
	s, _ := newTestSession(g, 10)
	settings := gm.Settings{WorldSetting: "A drowned city.", ScriptContent: "Find the bell."}

	v := s.SaveSettings(settings)
	assert.Equal(t, settings, v.Settings)

	_, err := s.SendMessage(context.Background(), "I dive")
	require.NoError(t, err)
	assert.Equal(t, settings, g.lastRequest().Settings)
}

func TestSnapshotIsACopy(t *testing.T) {
	s, _ := newTestSession(&stubGM{}, 10)
	v := s.Snapshot()
	v.Character.Inventory[0].Name = "changed"
	v.Character.CurrentStats.HP = 1

	fresh := s.Snapshot()
	assert.Equal(t, "Worn Short Sword", fresh.Character.Inventory[0].Name)
	assert.Equal(t, 35, fresh.Character.CurrentStats.HP)
}

func TestPublisher_TurnEvents(t *testing.T) {
	p := &recordingPublisher{}
	g := &stubGM{replies: []*gm.Response{
		{Narrative: "Ouch.", HPChange: intPtr(-1)},
		{Narrative: "Steady.", CheckRequest: &check.Request{Attribute: character.Strength, Difficulty: 10, Reason: "hold"}},
	}}
	s := New(Options{GameMaster: g, Roller: &stubRoller{value: 10}, Logger: testLogger(), Publisher: p})
	ctx := context.Background()

	_, err := s.SendMessage(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"chat.message", "turn.state",
		"chat.message", "chat.message", "character.updated", "turn.state",
	}, p.events)

	p.events = nil
	_, err = s.SendMessage(ctx, "push")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"chat.message", "turn.state",
		"chat.message", "check.requested", "turn.state",
	}, p.events)
	assert.Equal(t, "awaiting_check_resolution", p.states[len(p.states)-1])
}

func TestPublisherErrorsAreIgnored(t *testing.T) {
	p := &recordingPublisher{err: errors.New("redis down")}
	s := New(Options{GameMaster: &stubGM{}, Logger: testLogger(), Publisher: p})

	v, err := s.SendMessage(context.Background(), "hi")
	require.NoError(t, err)
	assert.Len(t, v.Messages, 2)
}

func TestWithGameMasterService(t *testing.T) {
	mock := &services.MockLLMAPI{}
	mock.QueueResponses(
		"```json\n{\"narrative\": \"A wolf bites.\", \"hpChange\": -4, \"newSkills\": [{\"name\": \"Tracking\", \"description\": \"Follow prints\"}]}\n```",
		"not json at all",
	)
	master := services.NewGameMasterService(mock, 10, testLogger())
	s := New(Options{GameMaster: master, Logger: testLogger()})
	ctx := context.Background()

	v, err := s.SendMessage(ctx, "I walk into the woods")
	require.NoError(t, err)
	assert.Equal(t, 31, v.Character.CurrentStats.HP)
	assert.True(t, v.Character.HasSkill("Tracking"))
	assert.Equal(t, "Status update: HP -4 | Skills learned: Tracking", v.Messages[2].Content)

	v, err = s.SendMessage(ctx, "I keep going")
	require.NoError(t, err)
	assert.Equal(t, StateIdle, v.State)
	assert.Equal(t, InterruptedMessage, v.Messages[len(v.Messages)-1].Content)
	assert.Equal(t, 31, v.Character.CurrentStats.HP)
}
