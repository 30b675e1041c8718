package ingest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"advisor-ai/internal/contextutil"
	"advisor-ai/internal/vectorstore"
)

// Embedder turns segment texts into vectors.
type Embedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Report summarizes one ingestion run.
type Report struct {
	Files    int `json:"files"`
	Segments int `json:"segments"`
	Errors   int `json:"errors"`
}

// Pipeline walks a documents directory and loads every markdown and text
// file into the vector index.
type Pipeline struct {
	embedder  Embedder
	index     vectorstore.Index
	segmenter *Segmenter
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(embedder Embedder, index vectorstore.Index) *Pipeline {
	return &Pipeline{
		embedder:  embedder,
		index:     index,
		segmenter: NewSegmenter(),
	}
}

// IngestFile segments, embeds, and indexes one file. The source label
// stored with each point is the file's base name.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (int, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	markdown := strings.EqualFold(filepath.Ext(path), ".md")
	segments := p.segmenter.Segment(content, markdown)
	if len(segments) == 0 {
		return 0, nil
	}

	vectors, err := p.embedder.EmbedBatch(ctx, segments)
	if err != nil {
		return 0, fmt.Errorf("embed %s: %w", path, err)
	}
	if len(vectors) != len(segments) {
		return 0, fmt.Errorf("embed %s: got %d vectors for %d segments", path, len(vectors), len(segments))
	}

	source := filepath.Base(path)
	points := make([]vectorstore.Point, len(segments))
	for i, seg := range segments {
		points[i] = vectorstore.Point{
			ID:  uuid.New().String(),
			Vec: vectors[i],
			Meta: map[string]any{
				"text":   seg,
				"source": source,
			},
		}
	}

	if err := p.index.Upsert(ctx, points); err != nil {
		return 0, fmt.Errorf("upsert %s: %w", path, err)
	}
	return len(points), nil
}

// IngestDir walks dir recursively and ingests every .md and .txt file.
// Per-file failures are logged and counted; the walk continues.
func (p *Pipeline) IngestDir(ctx context.Context, dir string) (Report, error) {
	logger := contextutil.LoggerFromContext(ctx)
	var report Report

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".md" && ext != ".txt" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := p.IngestFile(ctx, path)
		if err != nil {
			report.Errors++
			logger.ErrorContext(ctx, "failed to ingest file", "path", path, "error", err)
			return nil
		}
		report.Files++
		report.Segments += n
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("walk %s: %w", dir, err)
	}

	logger.InfoContext(ctx, "ingestion completed",
		"files", report.Files, "segments", report.Segments, "errors", report.Errors)
	return report, nil
}
