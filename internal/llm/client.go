// Package llm provides clients for the external embedding and generation
// services. Live implementations speak the OpenAI-compatible API; demo
// implementations are deterministic and in-process.
package llm

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Client generates text via an OpenAI-compatible chat completions API
// (llama.cpp server, OpenRouter, etc.).
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a generation client.
// baseURL must include the API prefix (e.g. "http://localhost:8080/v1").
func NewClient(baseURL, apiKey, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &Client{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

// Generate sends the prompt as a single user message and returns the reply.
// An empty reply is an error; callers rely on a non-empty answer text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}
	text := resp.Choices[0].Message.Content
	if text == "" {
		return "", fmt.Errorf("empty completion returned")
	}
	return text, nil
}
