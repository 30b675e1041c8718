package vectorstore

import "context"

// Point represents a vector point with metadata.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// Match represents a nearest-neighbor result from a query.
type Match struct {
	ID    string
	Score float32
	Meta  map[string]any
}

// Index defines the interface for the document vector index.
// The collection is fixed at construction; business logic never chooses
// between implementations at call time.
type Index interface {
	// Query returns the topK nearest neighbors of vec by cosine similarity,
	// ordered by descending score.
	Query(ctx context.Context, vec []float32, topK int) ([]Match, error)

	// Upsert inserts or updates points.
	Upsert(ctx context.Context, points []Point) error

	// Clear removes all points.
	Clear(ctx context.Context) error

	// Count returns the number of stored points.
	Count(ctx context.Context) (int, error)
}
