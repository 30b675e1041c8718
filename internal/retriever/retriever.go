// Package retriever queries the vector index for passages supporting a
// question, applying a tiered acceptance policy so low-relevance
// institutional content still beats open-domain generation.
package retriever

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"advisor-ai/internal/contextutil"
	"advisor-ai/internal/vectorstore"
)

// ErrRetrieval marks embedding or index failures. The orchestrator treats
// any error carrying it as "no relevant documents", not a hard failure.
var ErrRetrieval = errors.New("retrieval failed")

const (
	// topK is the number of nearest neighbors fetched per question.
	topK = 8
	// highThreshold admits passages into the high tier.
	highThreshold = 0.15
	// lowThreshold admits passages into the low-tier fallback.
	lowThreshold = 0.05
)

// Tier is the relevance-threshold bucket that admitted the passages.
type Tier string

const (
	TierHigh Tier = "high"
	TierLow  Tier = "low"
	TierNone Tier = "none"
)

// Passage is one retrieved text segment with provenance.
type Passage struct {
	ID          string
	Text        string
	SourceLabel string
	Score       float64
}

// Outcome is the result of one retrieval call.
// Passages are sorted by descending score; SourceLabels is deduplicated in
// first-seen order.
type Outcome struct {
	Passages     []Passage
	Tier         Tier
	UsedFallback bool
	SourceLabels []string
}

// HasRelevantContent reports whether any tier admitted passages.
// Low-tier answers still count as grounded; only TierNone falls back to
// open-domain generation.
func (o Outcome) HasRelevantContent() bool {
	return o.Tier != TierNone
}

// MeanScore is the mean relevance score of the admitted passages, 0 when
// empty. The generator's confidence arithmetic consumes this.
func (o Outcome) MeanScore() float64 {
	if len(o.Passages) == 0 {
		return 0
	}
	var sum float64
	for _, p := range o.Passages {
		sum += p.Score
	}
	return sum / float64(len(o.Passages))
}

// Embedder is the embedding capability the retriever needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Retriever embeds questions and queries the vector index.
type Retriever struct {
	embedder Embedder
	index    vectorstore.Index
}

// New creates a Retriever.
func New(embedder Embedder, index vectorstore.Index) *Retriever {
	return &Retriever{embedder: embedder, index: index}
}

// Retrieve embeds the question, fetches the topK nearest neighbors once,
// then applies the tier policy in-process: high tier (> 0.15), low tier
// (> 0.05) re-filtered from the same result set, else none. Exactly one
// embed call and one index query per question; transient failures
// propagate to the orchestrator, which treats them as TierNone.
func (r *Retriever) Retrieve(ctx context.Context, question string) (Outcome, error) {
	logger := contextutil.LoggerFromContext(ctx)

	vec, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: embed question: %w", ErrRetrieval, err)
	}

	matches, err := r.index.Query(ctx, vec, topK)
	if err != nil {
		return Outcome{}, fmt.Errorf("%w: query index: %w", ErrRetrieval, err)
	}

	if passages := filterMatches(matches, highThreshold); len(passages) > 0 {
		logger.DebugContext(ctx, "retrieval hit high tier", "passages", len(passages))
		return newOutcome(passages, TierHigh, false), nil
	}

	if passages := filterMatches(matches, lowThreshold); len(passages) > 0 {
		logger.InfoContext(ctx, "retrieval fell back to low tier", "passages", len(passages))
		return newOutcome(passages, TierLow, true), nil
	}

	logger.InfoContext(ctx, "retrieval exhausted, no relevant passages", "fetched", len(matches))
	return Outcome{Tier: TierNone, UsedFallback: true}, nil
}

// filterMatches keeps matches scoring strictly above the threshold.
func filterMatches(matches []vectorstore.Match, threshold float64) []Passage {
	passages := make([]Passage, 0, len(matches))
	for _, m := range matches {
		score := float64(m.Score)
		if score <= threshold {
			continue
		}
		text, _ := m.Meta["text"].(string)
		source, _ := m.Meta["source"].(string)
		passages = append(passages, Passage{
			ID:          m.ID,
			Text:        text,
			SourceLabel: source,
			Score:       score,
		})
	}
	return passages
}

// newOutcome sorts passages by descending score and deduplicates sources.
func newOutcome(passages []Passage, tier Tier, usedFallback bool) Outcome {
	sort.SliceStable(passages, func(i, j int) bool {
		return passages[i].Score > passages[j].Score
	})

	seen := make(map[string]bool)
	labels := make([]string, 0, len(passages))
	for _, p := range passages {
		if p.SourceLabel == "" || seen[p.SourceLabel] {
			continue
		}
		seen[p.SourceLabel] = true
		labels = append(labels, p.SourceLabel)
	}

	return Outcome{
		Passages:     passages,
		Tier:         tier,
		UsedFallback: usedFallback,
		SourceLabels: labels,
	}
}
