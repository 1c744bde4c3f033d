package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hyu460659-glitch/paoTuanGame/internal/session"
	"github.com/hyu460659-glitch/paoTuanGame/pkg/character"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, msg string) {
	writeJSON(w, logger, status, ErrorResponse{Error: msg})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrNotFound),
		errors.Is(err, character.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrBusy),
		errors.Is(err, session.ErrCheckPending),
		errors.Is(err, session.ErrNoPendingCheck):
		return http.StatusConflict
	case errors.Is(err, session.ErrEmptyMessage),
		errors.Is(err, session.ErrInvalidDie),
		errors.Is(err, character.ErrNotEquipable),
		errors.Is(err, character.ErrInvalidSlot):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "error", err)
		writeError(w, logger, status, "Internal server error")
		return
	}
	logger.Debug("Request rejected", "error", err, "status", status)
	writeError(w, logger, status, err.Error())
}
