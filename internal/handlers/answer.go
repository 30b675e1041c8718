// Package handlers contains the HTTP handlers for the advisor API.
package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"advisor-ai/internal/contextutil"
	"advisor-ai/internal/engine"
	"advisor-ai/internal/session"
)

// maxQuestionLen bounds the accepted question length in bytes.
const maxQuestionLen = 4096

// AnswerHandler handles question-answering requests.
type AnswerHandler struct {
	engine   engine.Service
	renderer goldmark.Markdown
}

// NewAnswerHandler creates a new AnswerHandler.
func NewAnswerHandler(svc engine.Service) *AnswerHandler {
	return &AnswerHandler{
		engine:   svc,
		renderer: goldmark.New(goldmark.WithExtensions(extension.Table)),
	}
}

// ProfilePayload carries optional user hints for prompt personalization.
type ProfilePayload struct {
	Name   string   `json:"name,omitempty"`
	Role   string   `json:"role,omitempty"`
	Traits []string `json:"traits,omitempty"`
	Notes  string   `json:"notes,omitempty"`
}

// AnswerRequest represents the HTTP request payload for questions.
type AnswerRequest struct {
	Question  string          `json:"question"`
	SessionID string          `json:"session_id,omitempty"`
	WebSearch bool            `json:"web_search,omitempty"`
	Render    bool            `json:"render,omitempty"`
	Profile   *ProfilePayload `json:"profile,omitempty"`
}

// AnswerResponse represents the HTTP response payload for questions.
type AnswerResponse struct {
	Answer             string   `json:"answer"`
	AnswerHTML         string   `json:"answer_html,omitempty"`
	SessionID          string   `json:"session_id"`
	SourceLabels       []string `json:"source_labels"`
	WebSourceLabels    []string `json:"web_source_labels,omitempty"`
	IsGrounded         bool     `json:"is_grounded"`
	HasRelevantContent bool     `json:"has_relevant_content"`
	Confidence         float64  `json:"confidence"`
	UsedWebSearch      bool     `json:"used_web_search"`
	Tier               string   `json:"tier,omitempty"`
	LearnedReuse       bool     `json:"learned_reuse"`
}

// ServeHTTP handles question-answering requests.
func (h *AnswerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}
	if len(question) > maxQuestionLen {
		writeError(w, http.StatusBadRequest, "Question is too long")
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	var profile *session.Profile
	if req.Profile != nil {
		profile = &session.Profile{
			Name:   req.Profile.Name,
			Role:   req.Profile.Role,
			Traits: req.Profile.Traits,
			Notes:  req.Profile.Notes,
		}
	}

	res := h.engine.Answer(ctx, engine.Request{
		Question:         question,
		SessionID:        sessionID,
		WebSearchEnabled: req.WebSearch,
		Profile:          profile,
	})

	resp := AnswerResponse{
		Answer:             res.Text,
		SessionID:          sessionID,
		SourceLabels:       res.SourceLabels,
		WebSourceLabels:    res.WebSourceLabels,
		IsGrounded:         res.IsGrounded,
		HasRelevantContent: res.HasRelevantContent,
		Confidence:         res.Confidence,
		UsedWebSearch:      res.UsedWebSearch,
		Tier:               res.Tier,
		LearnedReuse:       res.LearnedReuse,
	}

	if req.Render {
		var buf bytes.Buffer
		if err := h.renderer.Convert([]byte(res.Text), &buf); err != nil {
			logger.WarnContext(ctx, "failed to render answer as HTML", "error", err)
		} else {
			resp.AnswerHTML = buf.String()
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
