package embeddings

import (
	"context"
	"sync"
)

// Lazy builds its embedder on first use. Construction happens at most once
// per process even under concurrent calls; a failed construction is sticky.
type Lazy struct {
	build func() (Embedder, error)
	name  string
	dims  int

	once sync.Once
	emb  Embedder
	err  error
}

// NewLazy returns an Embedder that calls build on first Embed. name and dims
// are reported before the real embedder exists.
func NewLazy(name string, dims int, build func() (Embedder, error)) *Lazy {
	return &Lazy{build: build, name: name, dims: dims}
}

// Get returns the underlying embedder, building it if needed.
func (l *Lazy) Get() (Embedder, error) {
	l.once.Do(func() {
		l.emb, l.err = l.build()
	})
	return l.emb, l.err
}

func (l *Lazy) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	e, err := l.Get()
	if err != nil {
		return nil, err
	}
	return e.Embed(ctx, texts)
}

func (l *Lazy) Name() string    { return l.name }
func (l *Lazy) Dimensions() int { return l.dims }
