package vectorstore

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"advisor-ai/internal/contextutil"
)

// QdrantIndex implements Index using Qdrant.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantIndex creates a Qdrant-backed index for one collection.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port is derived from the HTTP port.
func NewQdrantIndex(urlStr, collection string) (*QdrantIndex, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	// gRPC port is typically the HTTP port + 1.
	port := 6334
	if parsedURL.Port() != "" {
		if httpPort, err := strconv.Atoi(parsedURL.Port()); err == nil {
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantIndex{client: client, collection: collection}, nil
}

// EnsureCollection creates the collection with the given vector size if it
// does not exist yet. Cosine distance, matching the retrieval contract.
func (s *QdrantIndex) EnsureCollection(ctx context.Context, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if exists {
		return nil
	}

	logger.InfoContext(ctx, "creating collection", "collection", s.collection, "vector_size", vectorSize)
	err = s.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: s.collection,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     uint64(vectorSize),
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	return nil
}

// Query returns the topK nearest neighbors of vec.
func (s *QdrantIndex) Query(ctx context.Context, vec []float32, topK int) ([]Match, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if topK <= 0 {
		return nil, fmt.Errorf("topK must be greater than 0")
	}

	limit := uint64(topK)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to query points", "collection", s.collection, "top_k", topK, "error", err)
		return nil, fmt.Errorf("failed to query points: %w", err)
	}

	matches := make([]Match, 0, len(scoredPoints))
	for _, p := range scoredPoints {
		id := ""
		if p.Id != nil {
			id = p.Id.GetUuid()
		}
		meta := make(map[string]any)
		if p.Payload != nil {
			meta = convertPayloadToMap(p.Payload)
		}
		matches = append(matches, Match{ID: id, Score: p.Score, Meta: meta})
	}

	logger.DebugContext(ctx, "query completed", "collection", s.collection, "top_k", topK, "matches", len(matches))
	return matches, nil
}

// Upsert inserts or updates points.
func (s *QdrantIndex) Upsert(ctx context.Context, points []Point) error {
	logger := contextutil.LoggerFromContext(ctx)

	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]*qdrant.PointStruct, 0, len(points))
	for _, point := range points {
		qp := &qdrant.PointStruct{
			Id:      qdrant.NewID(point.ID),
			Vectors: qdrant.NewVectors(point.Vec...),
		}
		if len(point.Meta) > 0 {
			qp.Payload = qdrant.NewValueMap(point.Meta)
		}
		qdrantPoints = append(qdrantPoints, qp)
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         qdrantPoints,
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert points", "collection", s.collection, "count", len(points), "error", err)
		return fmt.Errorf("failed to upsert points: %w", err)
	}

	logger.InfoContext(ctx, "upserted points", "collection", s.collection, "count", len(points))
	return nil
}

// Clear removes all points. Delete-by-filter with an empty filter matches
// every point in the collection.
func (s *QdrantIndex) Clear(ctx context.Context) error {
	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points:         qdrant.NewPointsSelectorFilter(&qdrant.Filter{}),
	})
	if err != nil {
		return fmt.Errorf("failed to clear collection: %w", err)
	}
	return nil
}

// Count returns the number of stored points.
func (s *QdrantIndex) Count(ctx context.Context) (int, error) {
	count, err := s.client.Count(ctx, &qdrant.CountPoints{
		CollectionName: s.collection,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count points: %w", err)
	}
	return int(count), nil
}

// convertPayloadToMap converts a Qdrant payload to a plain map.
func convertPayloadToMap(payload map[string]*qdrant.Value) map[string]any {
	meta := make(map[string]any, len(payload))
	for key, value := range payload {
		switch v := value.Kind.(type) {
		case *qdrant.Value_StringValue:
			meta[key] = v.StringValue
		case *qdrant.Value_IntegerValue:
			meta[key] = v.IntegerValue
		case *qdrant.Value_DoubleValue:
			meta[key] = v.DoubleValue
		case *qdrant.Value_BoolValue:
			meta[key] = v.BoolValue
		}
	}
	return meta
}
