package vectordb

import "time"

// PolicyMetadata describes where a stored policy came from.
type PolicyMetadata struct {
	Title      string
	Provider   string
	PolicyType string
	Filename   string
	WordCount  int
	AddedAt    time.Time
}

// Document is a policy text stored and searched by embedding.
type Document struct {
	ID       string
	Content  string
	Metadata PolicyMetadata
}

// SearchResult pairs a document with its cosine similarity to the query.
type SearchResult struct {
	Document   Document
	Similarity float32
}

// SearchFilter narrows a search by exact metadata match.
type SearchFilter struct {
	Provider   *string
	PolicyType *string
}
