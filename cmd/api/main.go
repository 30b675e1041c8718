package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"advisor-ai/internal/classifier"
	"advisor-ai/internal/config"
	"advisor-ai/internal/engine"
	"advisor-ai/internal/feedback"
	"advisor-ai/internal/generator"
	"advisor-ai/internal/http"
	"advisor-ai/internal/ingest"
	"advisor-ai/internal/llm"
	"advisor-ai/internal/retriever"
	"advisor-ai/internal/session"
	"advisor-ai/internal/storage"
	"advisor-ai/internal/vectorstore"
	"advisor-ai/internal/websearch"
)

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel, "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	feedbackRepo := storage.NewFeedbackRepo(db)
	turnRepo := storage.NewTurnRepo(db)

	ctx := context.Background()

	// Mode-selected collaborators: live services or deterministic
	// in-process implementations.
	var (
		index    vectorstore.Index
		embedder retriever.Embedder
		genSvc   generator.Service
		batchEmb ingest.Embedder
	)
	switch cfg.Mode {
	case config.ModeLive:
		qdrantIndex, err := vectorstore.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantIndex.EnsureCollection(ctx, cfg.VectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.VectorSize)

		embClient := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModel, cfg.VectorSize)
		index = qdrantIndex
		embedder = embClient
		batchEmb = embClient
		genSvc = llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel)
	case config.ModeDemo:
		demoEmb := llm.NewDemoEmbedder(cfg.VectorSize)
		index = vectorstore.NewMemoryIndex()
		embedder = demoEmb
		batchEmb = demoEmb
		genSvc = llm.NewDemoGenerator()
		slog.Info("Demo mode: using in-memory index and deterministic services")
	}

	var searcher engine.WebSearcher
	if cfg.WebSearchURL != "" {
		searcher = websearch.NewClient(cfg.WebSearchURL)
		slog.Info("Web search enabled", "url", cfg.WebSearchURL)
	}

	sessions := session.NewStore(cfg.SessionCapacity, turnRepo)
	learner := feedback.NewLearner(cfg.LearnedCapacity, feedbackRepo)

	// Rehydrate the learned-answer index from persisted positive feedback.
	if records, err := feedbackRepo.ListPositive(ctx); err != nil {
		slog.Warn("Failed to load persisted feedback", "error", err)
	} else if len(records) > 0 {
		learner.Warm(records)
		slog.Info("Learned answers restored", "records", len(records))
	}

	pipeline := ingest.NewPipeline(batchEmb, index)

	svc := engine.New(
		classifier.New(),
		retriever.New(embedder, index),
		generator.New(genSvc),
		searcher,
		learner,
		sessions,
	)
	slog.Info("Answer engine initialized", "mode", string(cfg.Mode))

	deps := &http.Deps{
		Engine:   svc,
		Learner:  learner,
		Sessions: sessions,
		Pipeline: pipeline,
		Index:    index,
		DocsDir:  cfg.DocsDir,
	}
	router := http.NewRouter(deps)

	// Start document ingestion in background after router is ready
	if cfg.DocsDir != "" {
		go func() {
			ingestCtx := context.Background()
			slog.Info("Starting background document ingestion", "dir", cfg.DocsDir)
			if report, err := pipeline.IngestDir(ingestCtx, cfg.DocsDir); err != nil {
				slog.Error("Ingestion failed", "error", err)
			} else {
				slog.Info("Ingestion completed", "files", report.Files, "segments", report.Segments, "errors", report.Errors)
			}
		}()
	}

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
