package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"advisor-ai/internal/contextutil"
	"advisor-ai/internal/feedback"
)

// FeedbackHandler records user ratings on answers.
type FeedbackHandler struct {
	learner *feedback.Learner
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(learner *feedback.Learner) *FeedbackHandler {
	return &FeedbackHandler{learner: learner}
}

// FeedbackRequest represents the HTTP request payload for feedback.
type FeedbackRequest struct {
	Question      string `json:"question"`
	Answer        string `json:"answer"`
	Rating        string `json:"rating"`
	GroundingUsed bool   `json:"grounding_used,omitempty"`
}

// FeedbackResponse acknowledges a recorded rating.
type FeedbackResponse struct {
	Recorded bool `json:"recorded"`
}

// ServeHTTP handles feedback submissions.
func (h *FeedbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var req FeedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	question := strings.TrimSpace(req.Question)
	answer := strings.TrimSpace(req.Answer)
	if question == "" || answer == "" {
		writeError(w, http.StatusBadRequest, "Question and answer are required")
		return
	}

	rating := feedback.Rating(strings.ToLower(strings.TrimSpace(req.Rating)))
	if !rating.Valid() {
		writeError(w, http.StatusBadRequest, "Rating must be positive, negative, or neutral")
		return
	}

	h.learner.Record(ctx, question, answer, rating, req.GroundingUsed)
	writeJSON(w, http.StatusOK, FeedbackResponse{Recorded: true})
}

// FeedbackStatsHandler exposes running feedback counters.
type FeedbackStatsHandler struct {
	learner *feedback.Learner
}

// NewFeedbackStatsHandler creates a new FeedbackStatsHandler.
func NewFeedbackStatsHandler(learner *feedback.Learner) *FeedbackStatsHandler {
	return &FeedbackStatsHandler{learner: learner}
}

// FeedbackStatsResponse represents aggregate feedback statistics.
type FeedbackStatsResponse struct {
	Total    int `json:"total"`
	Positive int `json:"positive"`
	Negative int `json:"negative"`
	Neutral  int `json:"neutral"`
	Grounded int `json:"grounded"`
	General  int `json:"general"`
	Patterns int `json:"learned_patterns"`
}

// ServeHTTP handles feedback statistics requests.
func (h *FeedbackStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats := h.learner.Stats()
	writeJSON(w, http.StatusOK, FeedbackStatsResponse{
		Total:    stats.Total,
		Positive: stats.Positive,
		Negative: stats.Negative,
		Neutral:  stats.Neutral,
		Grounded: stats.Grounded,
		General:  stats.General,
		Patterns: stats.Patterns,
	})
}
