package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"advisor-ai/internal/engine"
	"advisor-ai/internal/feedback"
	"advisor-ai/internal/handlers"
	"advisor-ai/internal/ingest"
	"advisor-ai/internal/metrics"
	"advisor-ai/internal/session"
	"advisor-ai/internal/vectorstore"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Engine   engine.Service
	Learner  *feedback.Learner
	Sessions *session.Store
	Pipeline *ingest.Pipeline
	Index    vectorstore.Index
	DocsDir  string
}

// NewRouter creates the HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(CORS)
	r.Use(LoggerMiddleware)
	r.Use(metrics.Middleware())

	answerHandler := handlers.NewAnswerHandler(deps.Engine)
	feedbackHandler := handlers.NewFeedbackHandler(deps.Learner)
	feedbackStatsHandler := handlers.NewFeedbackStatsHandler(deps.Learner)
	resetHandler := handlers.NewSessionResetHandler(deps.Sessions)
	historyHandler := handlers.NewSessionHistoryHandler(deps.Sessions)
	ingestHandler := handlers.NewIngestHandler(deps.Pipeline, deps.Index, deps.DocsDir)
	indexStatsHandler := handlers.NewIndexStatsHandler(deps.Index)
	healthHandler := handlers.NewHealthHandler(deps.Index)

	r.Route("/api/v1", func(r chi.Router) {
		r.Method(http.MethodPost, "/answer", answerHandler)
		r.Method(http.MethodPost, "/feedback", feedbackHandler)
		r.Method(http.MethodGet, "/feedback/stats", feedbackStatsHandler)
		r.Method(http.MethodPost, "/session/reset", resetHandler)
		r.Method(http.MethodGet, "/session/{id}/history", historyHandler)
		r.Method(http.MethodPost, "/ingest", ingestHandler)
		r.Method(http.MethodGet, "/index/stats", indexStatsHandler)
	})

	r.Method(http.MethodGet, "/healthz", healthHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}
