package vectordb

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/modlens/modlens/internal/embeddings"
)

// Open creates a chromem store and restores the snapshot in dir if present.
// A missing snapshot yields an empty store.
func Open(ctx context.Context, embedder embeddings.Embedder, dir string) (*ChromemStore, error) {
	store, err := NewChromemStore(embedder)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(filepath.Join(dir, snapshotFile)); errors.Is(err, os.ErrNotExist) {
		return store, nil
	}
	if err := store.Load(ctx, dir); err != nil {
		return nil, fmt.Errorf("loading vector store from %s: %w", dir, err)
	}
	return store, nil
}
