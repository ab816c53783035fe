package retrieval

import (
	"context"

	"github.com/modlens/modlens/internal/vectordb"
)

// StoreSource serves similarity searches from a vector store.
type StoreSource struct {
	store vectordb.VectorStore
}

// NewStoreSource wraps store as a SimilaritySource.
func NewStoreSource(store vectordb.VectorStore) *StoreSource {
	return &StoreSource{store: store}
}

// Search runs an unfiltered vector search and converts the results to hits.
func (s *StoreSource) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	results, err := s.store.Search(ctx, query, limit, nil)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		hits = append(hits, HitFromResult(r))
	}
	return hits, nil
}

// HitFromResult converts a store result, clamping the similarity to [0,1].
func HitFromResult(r vectordb.SearchResult) Hit {
	md := r.Document.Metadata
	return Hit{
		ID:    r.Document.ID,
		Score: clamp01(float64(r.Similarity)),
		Payload: Payload{
			Title:    md.Title,
			Content:  r.Document.Content,
			Provider: md.Provider,
			Type:     md.PolicyType,
		},
	}
}
