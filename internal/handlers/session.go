package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"advisor-ai/internal/contextutil"
	"advisor-ai/internal/session"
)

// SessionResetHandler clears a session's conversation state.
type SessionResetHandler struct {
	sessions *session.Store
}

// NewSessionResetHandler creates a new SessionResetHandler.
func NewSessionResetHandler(sessions *session.Store) *SessionResetHandler {
	return &SessionResetHandler{sessions: sessions}
}

// SessionResetRequest identifies the session to reset.
type SessionResetRequest struct {
	SessionID string `json:"session_id"`
}

// SessionResetResponse carries the replacement session identity.
type SessionResetResponse struct {
	SessionID string `json:"session_id"`
}

// ServeHTTP handles session reset requests.
func (h *SessionResetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req SessionResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	fresh := h.sessions.Reset(req.SessionID)
	logger.InfoContext(ctx, "session reset", "session_id", req.SessionID, "new_session_id", fresh)
	writeJSON(w, http.StatusOK, SessionResetResponse{SessionID: fresh})
}

// SessionHistoryHandler returns a session's conversation log.
type SessionHistoryHandler struct {
	sessions *session.Store
}

// NewSessionHistoryHandler creates a new SessionHistoryHandler.
func NewSessionHistoryHandler(sessions *session.Store) *SessionHistoryHandler {
	return &SessionHistoryHandler{sessions: sessions}
}

// TurnPayload is one conversation turn in the history response.
type TurnPayload struct {
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Timestamp    time.Time `json:"timestamp"`
	Grounded     *bool     `json:"grounded,omitempty"`
	SourceLabels []string  `json:"source_labels,omitempty"`
}

// SessionHistoryResponse represents a session's history.
type SessionHistoryResponse struct {
	SessionID string        `json:"session_id"`
	Turns     []TurnPayload `json:"turns"`
}

// ServeHTTP handles session history requests.
func (h *SessionHistoryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session id is required")
		return
	}

	history := h.sessions.History(sessionID)
	turns := make([]TurnPayload, len(history))
	for i, t := range history {
		turns[i] = TurnPayload{
			Role:         t.Role,
			Content:      t.Content,
			Timestamp:    t.Timestamp,
			Grounded:     t.Grounded,
			SourceLabels: t.SourceLabels,
		}
	}

	writeJSON(w, http.StatusOK, SessionHistoryResponse{
		SessionID: sessionID,
		Turns:     turns,
	})
}
