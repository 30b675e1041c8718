package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisor-ai/internal/engine"
	"advisor-ai/internal/feedback"
	"advisor-ai/internal/ingest"
	"advisor-ai/internal/llm"
	"advisor-ai/internal/session"
	"advisor-ai/internal/vectorstore"
)

type echoEngine struct{}

func (echoEngine) Answer(ctx context.Context, req engine.Request) engine.Result {
	return engine.Result{Text: "echo: " + req.Question, Confidence: 0.6}
}

func newTestRouter() http.Handler {
	index := vectorstore.NewMemoryIndex()
	return NewRouter(&Deps{
		Engine:   echoEngine{},
		Learner:  feedback.NewLearner(0, nil),
		Sessions: session.NewStore(0, nil),
		Pipeline: ingest.NewPipeline(llm.NewDemoEmbedder(768), index),
		Index:    index,
	})
}

func TestRouterRoutes(t *testing.T) {
	router := newTestRouter()

	cases := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
	}{
		{"answer", http.MethodPost, "/api/v1/answer", `{"question": "Học phí bao nhiêu?"}`, http.StatusOK},
		{"answer missing question", http.MethodPost, "/api/v1/answer", `{}`, http.StatusBadRequest},
		{"feedback", http.MethodPost, "/api/v1/feedback", `{"question": "q", "answer": "a", "rating": "positive"}`, http.StatusOK},
		{"feedback stats", http.MethodGet, "/api/v1/feedback/stats", "", http.StatusOK},
		{"session reset", http.MethodPost, "/api/v1/session/reset", `{"session_id": "s1"}`, http.StatusOK},
		{"session history", http.MethodGet, "/api/v1/session/s1/history", "", http.StatusOK},
		{"index stats", http.MethodGet, "/api/v1/index/stats", "", http.StatusOK},
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", http.StatusOK},
		{"unknown route", http.MethodGet, "/api/v1/unknown", "", http.StatusNotFound},
		{"wrong method", http.MethodGet, "/api/v1/answer", "", http.StatusMethodNotAllowed},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var req *http.Request
			if tc.body != "" {
				req = httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
				req.Header.Set("Content-Type", "application/json")
			} else {
				req = httptest.NewRequest(tc.method, tc.path, nil)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tc.wantStatus, rec.Code)
		})
	}
}

func TestRouterCORSPreflight(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/answer", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}
