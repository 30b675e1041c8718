// Package websearch provides best-effort web augmentation. Search failures
// must never abort an answer turn; the orchestrator swallows them.
package websearch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrWebSearch marks search-service failures. Augmentation is best-effort;
// callers swallow errors carrying it and answer without web content.
var ErrWebSearch = errors.New("web search failed")

// Snippet is one ranked web result.
type Snippet struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher is the capability interface for the web search service.
type Searcher interface {
	// Search returns up to k ranked snippets for the query.
	Search(ctx context.Context, query string, k int) ([]Snippet, error)
}

// Client queries a SearxNG-compatible JSON endpoint.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a web search client against the given instance URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type searchResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search performs a search and returns at most k snippets.
func (c *Client) Search(ctx context.Context, query string, k int) ([]Snippet, error) {
	u := fmt.Sprintf("%s/search?q=%s&format=json", c.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", ErrWebSearch, err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: send request: %w", ErrWebSearch, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: bad status %s: %s", ErrWebSearch, strconv.Itoa(resp.StatusCode), string(raw))
	}

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("%w: decode response: %w", ErrWebSearch, err)
	}

	snippets := make([]Snippet, 0, k)
	for _, r := range sr.Results {
		if len(snippets) >= k {
			break
		}
		if r.Content == "" {
			continue
		}
		snippets = append(snippets, Snippet{Title: r.Title, URL: r.URL, Snippet: r.Content})
	}
	return snippets, nil
}
