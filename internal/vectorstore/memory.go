package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// MemoryIndex is an in-memory Index using brute-force cosine similarity.
// It backs demo mode and tests; the Qdrant index is the production
// implementation.
type MemoryIndex struct {
	mu     sync.RWMutex
	points map[string]Point
}

// NewMemoryIndex creates an empty in-memory index.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{points: make(map[string]Point)}
}

// Query returns the topK nearest neighbors of vec by cosine similarity.
func (s *MemoryIndex) Query(ctx context.Context, vec []float32, topK int) ([]Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]Match, 0, len(s.points))
	for _, p := range s.points {
		matches = append(matches, Match{
			ID:    p.ID,
			Score: cosineSimilarity(vec, p.Vec),
			Meta:  p.Meta,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Upsert inserts or updates points.
func (s *MemoryIndex) Upsert(ctx context.Context, points []Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range points {
		s.points[p.ID] = p
	}
	return nil
}

// Clear removes all points.
func (s *MemoryIndex) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.points = make(map[string]Point)
	return nil
}

// Count returns the number of stored points.
func (s *MemoryIndex) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.points), nil
}

// cosineSimilarity computes the cosine similarity between two vectors.
// Mismatched lengths or zero vectors yield 0.
func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
