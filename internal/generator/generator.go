// Package generator invokes the generation service and attaches a
// rule-computed confidence score to each answer.
package generator

import (
	"context"
	"errors"
	"fmt"

	"advisor-ai/internal/contextutil"
)

// ErrGeneration marks a failed or empty generation. It is the only error
// class the user ever observes, surfaced as the apology answer.
var ErrGeneration = errors.New("generation failed")

// Service is the generation capability the answer generator wraps.
// Implementations must be safe for the caller to retry; this layer does
// not retry internally.
type Service interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Result is a generated answer with its derived confidence.
type Result struct {
	Text       string
	Confidence float64
}

// Generator produces answers from assembled prompts.
type Generator struct {
	svc Service
}

// New creates a Generator.
func New(svc Service) *Generator {
	return &Generator{svc: svc}
}

// Answer calls the generation service and scores the result. An empty
// generation is an error; the orchestrator substitutes the apology answer.
func (g *Generator) Answer(ctx context.Context, promptText string, in ConfidenceInput) (Result, error) {
	logger := contextutil.LoggerFromContext(ctx)

	text, err := g.svc.Generate(ctx, promptText)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrGeneration, err)
	}
	if text == "" {
		return Result{}, fmt.Errorf("%w: service returned empty text", ErrGeneration)
	}

	conf := Confidence(in)
	logger.DebugContext(ctx, "answer generated",
		"tier", string(in.Tier),
		"mean_score", in.MeanScore,
		"web_used", in.WebUsed,
		"confidence", conf,
	)
	return Result{Text: text, Confidence: conf}, nil
}
