package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "cmpl-1",
			"object": "chat.completion",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": "Xin chào!"},
					"finish_reason": "stop",
				},
			},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/v1", "test-key", "test-model")
	got, err := client.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if got != "Xin chào!" {
		t.Errorf("Generate() = %q, want %q", got, "Xin chào!")
	}
}

func TestClientGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer srv.Close()

	client := NewClient(srv.URL+"/v1", "test-key", "test-model")
	if _, err := client.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestEmbeddingsClientSizeMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"embedding": []float32{0.1, 0.2}, "index": 0},
			},
		})
	}))
	defer srv.Close()

	client := NewEmbeddingsClient(srv.URL+"/v1", "test-key", "test-model", 768)
	if _, err := client.Embed(context.Background(), "hello"); err == nil {
		t.Fatal("expected error for vector size mismatch")
	}
}

func TestDemoEmbedderDeterministic(t *testing.T) {
	e := NewDemoEmbedder(768)

	a, _ := e.Embed(context.Background(), "học phí fpt school")
	b, _ := e.Embed(context.Background(), "học phí fpt school")

	if len(a) != 768 {
		t.Fatalf("got dimension %d, want 768", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("demo embedder not deterministic at dim %d", i)
		}
	}
}
