package handlers

import (
	"net/http"

	"advisor-ai/internal/contextutil"
	"advisor-ai/internal/ingest"
	"advisor-ai/internal/vectorstore"
)

// IngestHandler triggers a documents-directory ingestion run.
type IngestHandler struct {
	pipeline *ingest.Pipeline
	index    vectorstore.Index
	docsDir  string
}

// NewIngestHandler creates a new IngestHandler.
func NewIngestHandler(pipeline *ingest.Pipeline, index vectorstore.Index, docsDir string) *IngestHandler {
	return &IngestHandler{pipeline: pipeline, index: index, docsDir: docsDir}
}

// IngestResponse summarizes an ingestion run.
type IngestResponse struct {
	Files    int `json:"files"`
	Segments int `json:"segments"`
	Errors   int `json:"errors"`
}

// ServeHTTP handles ingestion requests. The run is synchronous; clients
// ingest small document sets and want the outcome in the response. The
// reset=true query parameter clears the index before loading, for full
// rebuilds after document edits.
func (h *IngestHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if h.docsDir == "" {
		writeError(w, http.StatusConflict, "No documents directory configured")
		return
	}

	if r.URL.Query().Get("reset") == "true" {
		if err := h.index.Clear(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to clear index", "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to clear index")
			return
		}
		logger.InfoContext(ctx, "index cleared before ingestion")
	}

	report, err := h.pipeline.IngestDir(ctx, h.docsDir)
	if err != nil {
		logger.ErrorContext(ctx, "ingestion run failed", "dir", h.docsDir, "error", err)
		writeError(w, http.StatusInternalServerError, "Ingestion failed")
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		Files:    report.Files,
		Segments: report.Segments,
		Errors:   report.Errors,
	})
}

// IndexStatsHandler reports the vector index size.
type IndexStatsHandler struct {
	index vectorstore.Index
}

// NewIndexStatsHandler creates a new IndexStatsHandler.
func NewIndexStatsHandler(index vectorstore.Index) *IndexStatsHandler {
	return &IndexStatsHandler{index: index}
}

// IndexStatsResponse represents the vector index size.
type IndexStatsResponse struct {
	Points int `json:"points"`
}

// ServeHTTP handles index statistics requests.
func (h *IndexStatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	count, err := h.index.Count(ctx)
	if err != nil {
		logger.ErrorContext(ctx, "failed to count index points", "error", err)
		writeError(w, http.StatusServiceUnavailable, "Vector index unavailable")
		return
	}

	writeJSON(w, http.StatusOK, IndexStatsResponse{Points: count})
}
