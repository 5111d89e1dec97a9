package intake

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Kolmo-Construction/Kolmo-Design-Portal-sub001/pkg/logging"
)

// Handler wires HTTP requests to the intake service.
type Handler struct {
	service Service
	logger  *logging.Logger
}

// NewHandler creates an intake handler.
func NewHandler(service Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger.Component("intake_handler"),
	}
}

// Start handles POST /sessions/start.
func (h *Handler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode start request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	resp, err := h.service.StartSession(r.Context(), req)
	if err != nil {
		h.writeError(w, "start session", err)
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
}

// Turn handles POST /sessions/turn.
func (h *Handler) Turn(w http.ResponseWriter, r *http.Request) {
	var req TurnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode turn request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		http.Error(w, "sessionId is required", http.StatusBadRequest)
		return
	}

	resp, err := h.service.ProcessTurn(r.Context(), req)
	if err != nil {
		h.writeError(w, "process turn", err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// Get handles GET /sessions/{sessionID}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.service.GetSession(r.Context(), sessionID)
	if err != nil {
		h.writeError(w, "get session", err)
		return
	}

	h.writeJSON(w, http.StatusOK, session)
}

// Abandon handles POST /sessions/{sessionID}/abandon.
func (h *Handler) Abandon(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	if err := h.service.AbandonSession(r.Context(), sessionID); err != nil {
		h.writeError(w, "abandon session", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": string(StatusAbandoned)})
}

func (h *Handler) writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrSessionNotFound):
		http.Error(w, "Session not found", http.StatusNotFound)
	case errors.Is(err, ErrSessionInactive):
		http.Error(w, "Session is no longer active", http.StatusConflict)
	case errors.Is(err, ErrSessionExpired):
		http.Error(w, "Session expired", http.StatusGone)
	case errors.Is(err, ErrOwnerRequired):
		http.Error(w, "ownerId is required", http.StatusBadRequest)
	default:
		h.logger.Error("failed to "+op, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}
