package llm

import (
	"context"
	"hash/fnv"
	"strings"
)

// DemoEmbedder produces deterministic vectors without a model server.
// Each word hashes into a handful of dimensions, so texts sharing words
// land near each other in the vector space. Good enough for demo and tests,
// useless for real retrieval quality.
type DemoEmbedder struct {
	dim int
}

// NewDemoEmbedder creates a demo embedder with the given dimension.
func NewDemoEmbedder(dim int) *DemoEmbedder {
	return &DemoEmbedder{dim: dim}
}

// Embed returns a deterministic vector for the text.
func (e *DemoEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(word))
		sum := h.Sum32()
		for i := 0; i < 3; i++ {
			vec[int(sum>>uint(i*8))%e.dim] += 1
		}
	}
	return vec, nil
}

// EmbedBatch returns one vector per input text.
func (e *DemoEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vecs := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := e.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		vecs[i] = v
	}
	return vecs, nil
}

// DemoGenerator returns a canned answer that echoes whether grounding
// context was present in the prompt. It never fails.
type DemoGenerator struct{}

// NewDemoGenerator creates a demo generator.
func NewDemoGenerator() *DemoGenerator {
	return &DemoGenerator{}
}

// Generate returns deterministic demo text derived from the prompt. The
// colon distinguishes the passages section marker from the persona
// header's mention of the same phrase.
func (g *DemoGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "TÀI LIỆU THAM KHẢO:") {
		return "Dựa trên tài liệu của trường, đây là thông tin bạn cần. (demo mode)", nil
	}
	return "Cảm ơn câu hỏi của bạn! Mình sẵn sàng hỗ trợ. (demo mode)", nil
}
