package vectordb

import "context"

// VectorStore stores policy documents and searches them by embedding.
type VectorStore interface {
	// AddDocuments adds or replaces documents, embedding their content.
	AddDocuments(ctx context.Context, docs []Document) error

	// Search returns up to limit documents nearest to query. An empty
	// collection yields no results and no error.
	Search(ctx context.Context, query string, limit int, filter *SearchFilter) ([]SearchResult, error)

	// GetByID returns the document with the given id.
	GetByID(ctx context.Context, id string) (*Document, error)

	// Delete removes the documents with the given ids.
	Delete(ctx context.Context, ids ...string) error

	// Persist saves the store's data to the given directory.
	Persist(ctx context.Context, dir string) error

	// Load restores the store's data from the given directory.
	Load(ctx context.Context, dir string) error

	// Count returns the total number of documents in the store.
	Count() int
}
