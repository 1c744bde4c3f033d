package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hyu460659-glitch/paoTuanGame/internal/session"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/chat"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/gm"
)

// Forgetter drops replayable events of a deleted session.
type Forgetter interface {
	Forget(ctx context.Context, sessionID uuid.UUID) error
}

type SessionHandler struct {
	sessions  *session.Manager
	forgetter Forgetter // optional
	logger    *slog.Logger
}

func NewSessionHandler(sessions *session.Manager, forgetter Forgetter, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		forgetter: forgetter,
		logger:    logger,
	}
}

// EquipRequest names an inventory item to equip.
type EquipRequest struct {
	ItemID string `json:"item_id"`
}

type UnequipRequest struct {
	Slot character.Slot `json:"slot"`
}

type SettingsRequest struct {
	WorldSetting  string `json:"world_setting"`
	ScriptContent string `json:"script_content"`
}

// ServeHTTP handles HTTP requests for sessions
// Routes:
// POST   /v1/sessions                - Create new session
// GET    /v1/sessions/{id}           - Read session
// DELETE /v1/sessions/{id}           - Delete session
// POST   /v1/sessions/{id}/messages  - Send player text
// POST   /v1/sessions/{id}/roll      - Free dice roll
// POST   /v1/sessions/{id}/check     - Resolve the pending check
// POST   /v1/sessions/{id}/equip     - Equip an inventory item
// POST   /v1/sessions/{id}/unequip   - Clear an equipment slot
// PATCH  /v1/sessions/{id}/profile   - Edit name, class, gender
// PUT    /v1/sessions/{id}/settings  - Replace world and script text
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/sessions"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	if len(parts) > 2 {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}
	id, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return
	}

	if len(parts) == 1 {
		switch r.Method {
		case http.MethodGet:
			h.handleRead(w, id)
		case http.MethodDelete:
			h.handleDelete(w, r, id)
		default:
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Supported methods: GET, DELETE")
		}
		return
	}

	s, err := h.sessions.Get(id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}

	type route struct {
		method string
		handle func(http.ResponseWriter, *http.Request, *session.Session)
	}
	routes := map[string]route{
		"messages": {http.MethodPost, h.handleMessage},
		"roll":     {http.MethodPost, h.handleRoll},
		"check":    {http.MethodPost, h.handleCheck},
		"equip":    {http.MethodPost, h.handleEquip},
		"unequip":  {http.MethodPost, h.handleUnequip},
		"profile":  {http.MethodPatch, h.handleProfile},
		"settings": {http.MethodPut, h.handleSettings},
	}
	rt, ok := routes[parts[1]]
	if !ok {
		writeError(w, h.logger, http.StatusNotFound, "Not found")
		return
	}
	if r.Method != rt.method {
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only "+rt.method+" is supported.")
		return
	}
	rt.handle(w, r, s)
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	s := h.sessions.Create()
	h.logger.Info("Session created via API",
		"session_id", s.ID.String(),
		"remote_addr", r.RemoteAddr)
	writeJSON(w, h.logger, http.StatusCreated, s.Snapshot())
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, id uuid.UUID) {
	s, err := h.sessions.Get(id)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.Snapshot())
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	if err := h.sessions.Delete(id); err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	if h.forgetter != nil {
		if err := h.forgetter.Forget(r.Context(), id); err != nil {
			h.logger.Warn("Failed to drop session events", "error", err, "session_id", id.String())
		}
	}
	h.logger.Info("Session deleted", "session_id", id.String())
	w.WriteHeader(http.StatusNoContent)
}

// turnContext detaches the turn from the client connection; the provider
// transport enforces its own timeout.
func turnContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func (h *SessionHandler) handleMessage(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req chat.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'message' field.")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Message cannot be empty.")
		return
	}
	view, err := s.SendMessage(turnContext(r), req.Message)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *SessionHandler) handleRoll(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req chat.RollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'sides' field.")
		return
	}
	view, err := s.RollDice(turnContext(r), req.Sides)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *SessionHandler) handleCheck(w http.ResponseWriter, r *http.Request, s *session.Session) {
	view, _, err := s.ResolveCheck(turnContext(r))
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *SessionHandler) handleEquip(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req EquipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ItemID == "" {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'item_id' field.")
		return
	}
	view, err := s.Equip(r.Context(), req.ItemID)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *SessionHandler) handleUnequip(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req UnequipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body. Expected JSON with 'slot' field.")
		return
	}
	view, err := s.Unequip(r.Context(), req.Slot)
	if err != nil {
		writeDomainError(w, h.logger, err)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *SessionHandler) handleProfile(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req character.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.UpdateProfile(r.Context(), req))
}

func (h *SessionHandler) handleSettings(w http.ResponseWriter, r *http.Request, s *session.Session) {
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	view := s.SaveSettings(gm.Settings{
		WorldSetting:  req.WorldSetting,
		ScriptContent: req.ScriptContent,
	})
	writeJSON(w, h.logger, http.StatusOK, view)
}
