package vectordb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	chromem "github.com/philippgille/chromem-go"

	"github.com/modlens/modlens/internal/embeddings"
)

// CollectionName is the single collection holding all policies.
const CollectionName = "policies"

const snapshotFile = "chromem.gob.gz"

// ChromemStore implements VectorStore using chromem-go.
type ChromemStore struct {
	mu         sync.RWMutex
	db         *chromem.DB
	collection *chromem.Collection
	embedFunc  chromem.EmbeddingFunc
}

// NewChromemStore creates an in-memory store and its policy collection.
// Creating the collection is idempotent.
func NewChromemStore(embedder embeddings.Embedder) (*ChromemStore, error) {
	db := chromem.NewDB()
	ef := embeddings.ToChromemFunc(embedder)

	col, err := db.GetOrCreateCollection(CollectionName, nil, ef)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	return &ChromemStore{
		db:         db,
		collection: col,
		embedFunc:  ef,
	}, nil
}

func (s *ChromemStore) col() *chromem.Collection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collection
}

func (s *ChromemStore) AddDocuments(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	chromDocs := make([]chromem.Document, len(docs))
	for i, doc := range docs {
		if doc.ID == "" {
			return fmt.Errorf("document %d has no id", i)
		}
		chromDocs[i] = chromem.Document{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: metadataToMap(doc.Metadata),
		}
	}

	return s.col().AddDocuments(ctx, chromDocs, 1)
}

func (s *ChromemStore) Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 10
	}

	col := s.col()

	// chromem-go requires nResults <= collection size.
	count := col.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := col.Query(ctx, query, limit, buildWhereClause(filter), nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	searchResults := make([]SearchResult, len(results))
	for i, r := range results {
		searchResults[i] = SearchResult{
			Document: Document{
				ID:       r.ID,
				Content:  r.Content,
				Metadata: mapToMetadata(r.Metadata),
			},
			Similarity: r.Similarity,
		}
	}

	return searchResults, nil
}

func (s *ChromemStore) GetByID(ctx context.Context, id string) (*Document, error) {
	doc, err := s.col().GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get document %s: %w", id, err)
	}
	return &Document{
		ID:       doc.ID,
		Content:  doc.Content,
		Metadata: mapToMetadata(doc.Metadata),
	}, nil
}

func (s *ChromemStore) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	return s.col().Delete(ctx, nil, nil, ids...)
}

func (s *ChromemStore) Persist(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create vector dir: %w", err)
	}
	return s.db.ExportToFile(filepath.Join(dir, snapshotFile), true, "")
}

func (s *ChromemStore) Load(ctx context.Context, dir string) error {
	path := filepath.Join(dir, snapshotFile)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("no snapshot at %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.ImportFromFile(path, ""); err != nil {
		return fmt.Errorf("import from file: %w", err)
	}

	// Re-acquire collection reference after import.
	col := s.db.GetCollection(CollectionName, s.embedFunc)
	if col == nil {
		return fmt.Errorf("collection %q not found after import", CollectionName)
	}
	s.collection = col
	return nil
}

func (s *ChromemStore) Count() int {
	return s.col().Count()
}

// metadataToMap converts PolicyMetadata to a flat map[string]string for chromem.
func metadataToMap(m PolicyMetadata) map[string]string {
	md := map[string]string{
		"title":      m.Title,
		"provider":   m.Provider,
		"type":       m.PolicyType,
		"filename":   m.Filename,
		"word_count": strconv.Itoa(m.WordCount),
	}
	if !m.AddedAt.IsZero() {
		md["added_at"] = m.AddedAt.UTC().Format(time.RFC3339)
	}
	return md
}

// mapToMetadata converts a flat map[string]string back to PolicyMetadata.
func mapToMetadata(m map[string]string) PolicyMetadata {
	wordCount, _ := strconv.Atoi(m["word_count"])
	addedAt, _ := time.Parse(time.RFC3339, m["added_at"])

	return PolicyMetadata{
		Title:      m["title"],
		Provider:   m["provider"],
		PolicyType: m["type"],
		Filename:   m["filename"],
		WordCount:  wordCount,
		AddedAt:    addedAt,
	}
}

// buildWhereClause converts a SearchFilter to a chromem where clause.
func buildWhereClause(filter *SearchFilter) map[string]string {
	if filter == nil {
		return nil
	}

	where := make(map[string]string)
	if filter.Provider != nil {
		where["provider"] = *filter.Provider
	}
	if filter.PolicyType != nil {
		where["type"] = *filter.PolicyType
	}

	if len(where) == 0 {
		return nil
	}
	return where
}
