package policy

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/modlens/modlens/internal/moderation"
	"github.com/modlens/modlens/internal/progress"
	"github.com/modlens/modlens/internal/vectordb"
)

// ingestBatch is how many documents are embedded per store call.
const ingestBatch = 16

// AddRequest is a single policy submitted through the API.
type AddRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
}

// IngestRecorder logs policy additions.
type IngestRecorder interface {
	RecordIngest(ctx context.Context, source string, count int) error
}

// Store writes policies to the vector store and persists the snapshot.
type Store struct {
	vs         vectordb.VectorStore
	persistDir string
	recorder   IngestRecorder
	reporter   progress.Reporter
	logger     *slog.Logger
	now        func() time.Time
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithPersistDir saves a snapshot to dir after every write.
func WithPersistDir(dir string) StoreOption {
	return func(s *Store) { s.persistDir = dir }
}

// WithIngestRecorder logs each write.
func WithIngestRecorder(r IngestRecorder) StoreOption {
	return func(s *Store) { s.recorder = r }
}

// WithIngestReporter reports embedding progress during Ingest.
func WithIngestReporter(r progress.Reporter) StoreOption {
	return func(s *Store) { s.reporter = r }
}

// WithStoreLogger sets the logger.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(s *Store) { s.logger = l }
}

// NewStore creates a Store over vs.
func NewStore(vs vectordb.VectorStore, opts ...StoreOption) *Store {
	s := &Store{
		vs:       vs,
		reporter: progress.Nop{},
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add embeds and stores one policy, returning its new id. Text, provider and
// type are required.
func (s *Store) Add(ctx context.Context, req AddRequest) (string, error) {
	text := strings.TrimSpace(req.Text)
	provider := strings.TrimSpace(req.Provider)
	typ := strings.TrimSpace(req.Type)
	if text == "" || provider == "" || typ == "" {
		return "", moderation.NewInvalidInput("missing_fields", "Missing required fields: text, provider and type are required.")
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = provider + " Policy"
	}

	doc := vectordb.Document{
		ID:      uuid.New().String(),
		Content: text,
		Metadata: vectordb.PolicyMetadata{
			Title:      title,
			Provider:   provider,
			PolicyType: typ,
			WordCount:  len(strings.Fields(text)),
			AddedAt:    s.now().UTC(),
		},
	}
	if err := s.vs.AddDocuments(ctx, []vectordb.Document{doc}); err != nil {
		return "", &moderation.PolicyLoadError{Msg: "storing policy", Err: err}
	}
	if err := s.afterWrite(ctx, "api", 1); err != nil {
		return "", err
	}

	s.logger.Info("policy stored", "id", doc.ID, "provider", provider, "type", typ)
	return doc.ID, nil
}

// Ingest embeds and stores docs in batches, returning how many were stored.
func (s *Store) Ingest(ctx context.Context, source string, docs []vectordb.Document) (int, error) {
	if len(docs) == 0 {
		return 0, &moderation.PolicyLoadError{Msg: "no documents to ingest"}
	}

	s.reporter.Start(len(docs), "Embedding policies")
	defer s.reporter.Finish()

	stored := 0
	for start := 0; start < len(docs); start += ingestBatch {
		end := min(start+ingestBatch, len(docs))
		batch := docs[start:end]
		if err := s.vs.AddDocuments(ctx, batch); err != nil {
			return stored, &moderation.PolicyLoadError{Msg: "storing policies", Err: err}
		}
		for _, d := range batch {
			s.reporter.Advance(d.Metadata.Title)
			s.logger.Debug("policy stored", "id", d.ID, "title", d.Metadata.Title)
		}
		stored += len(batch)
	}

	if err := s.afterWrite(ctx, source, stored); err != nil {
		return stored, err
	}
	return stored, nil
}

func (s *Store) afterWrite(ctx context.Context, source string, count int) error {
	if s.persistDir != "" {
		if err := s.vs.Persist(ctx, s.persistDir); err != nil {
			return &moderation.PolicyLoadError{Msg: "saving vector snapshot", Err: err}
		}
	}
	if s.recorder != nil {
		if err := s.recorder.RecordIngest(ctx, source, count); err != nil {
			s.logger.Warn("recording ingest failed", "source", source, "error", err)
		}
	}
	return nil
}
