package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// EmbeddingsClient embeds text via an OpenAI-compatible embeddings API.
// All vectors are validated against the expected dimension; a mismatch
// between index and embedder dimensions corrupts retrieval silently.
type EmbeddingsClient struct {
	client       *openai.Client
	model        string
	expectedSize int
}

// NewEmbeddingsClient creates an embeddings client.
// expectedSize is the vector dimension the index was created with.
func NewEmbeddingsClient(baseURL, apiKey, model string, expectedSize int) *EmbeddingsClient {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &EmbeddingsClient{
		client:       openai.NewClientWithConfig(cfg),
		model:        model,
		expectedSize: expectedSize,
	}
}

// Embed returns the embedding vector for a single text.
func (c *EmbeddingsClient) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch returns one vector per input text, in input order.
func (c *EmbeddingsClient) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:          texts,
		Model:          openai.EmbeddingModel(c.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(resp.Data))
	}

	vecs := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		if c.expectedSize > 0 && len(d.Embedding) != c.expectedSize {
			return nil, fmt.Errorf("embedding size mismatch: expected %d, got %d", c.expectedSize, len(d.Embedding))
		}
		vecs[i] = d.Embedding
	}
	return vecs, nil
}
