package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// countingEmbedder returns one-dimensional vectors holding each text's length
// and records every text it was asked to embed.
type countingEmbedder struct {
	mu    sync.Mutex
	seen  []string
	calls int
	err   error
}

func (c *countingEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	c.seen = append(c.seen, texts...)
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func (c *countingEmbedder) Dimensions() int { return 1 }
func (c *countingEmbedder) Name() string    { return "counting" }

func TestCachedEmbedder_ReusesVectors(t *testing.T) {
	inner := &countingEmbedder{}
	cached := NewCachedEmbedder(inner, time.Minute)
	ctx := context.Background()

	if _, err := cached.Embed(ctx, []string{"alpha", "beta"}); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	out, err := cached.Embed(ctx, []string{"beta", "gamma!", "alpha"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}

	if inner.calls != 2 {
		t.Errorf("inner calls = %d, want 2", inner.calls)
	}
	if len(inner.seen) != 3 {
		t.Errorf("inner embedded %v, want alpha, beta, gamma! once each", inner.seen)
	}
	want := []float32{4, 6, 5}
	for i, v := range out {
		if v[0] != want[i] {
			t.Errorf("out[%d] = %v, want %v", i, v[0], want[i])
		}
	}
	if cached.Len() != 3 {
		t.Errorf("cache size = %d, want 3", cached.Len())
	}
}

func TestCachedEmbedder_PropagatesErrors(t *testing.T) {
	boom := errors.New("quota exceeded")
	cached := NewCachedEmbedder(&countingEmbedder{err: boom}, time.Minute)

	if _, err := cached.Embed(context.Background(), []string{"x"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
	if cached.Len() != 0 {
		t.Error("failed embeddings must not be cached")
	}
}

func TestEmbedRejectsEmptyText(t *testing.T) {
	cached := NewCachedEmbedder(&countingEmbedder{}, time.Minute)
	if _, err := cached.Embed(context.Background(), []string{"ok", "   "}); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}

	o := NewOllamaEmbedder("nomic-embed-text", 768, "")
	if _, err := o.Embed(context.Background(), []string{""}); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText from ollama, got %v", err)
	}
}

func TestLazy_BuildsOnce(t *testing.T) {
	var builds int32
	inner := &countingEmbedder{}
	lazy := NewLazy("counting", 1, func() (Embedder, error) {
		atomic.AddInt32(&builds, 1)
		return inner, nil
	})

	if lazy.Name() != "counting" || lazy.Dimensions() != 1 {
		t.Errorf("unexpected name/dims before build: %s/%d", lazy.Name(), lazy.Dimensions())
	}
	if atomic.LoadInt32(&builds) != 0 {
		t.Fatal("embedder built before first use")
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := lazy.Embed(context.Background(), []string{"text"}); err != nil {
				t.Errorf("Embed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("build called %d times, want 1", n)
	}
}

func TestLazy_StickyError(t *testing.T) {
	boom := errors.New("no api key")
	calls := 0
	lazy := NewLazy("x", 0, func() (Embedder, error) {
		calls++
		return nil, boom
	})

	for i := 0; i < 2; i++ {
		if _, err := lazy.Embed(context.Background(), []string{"a"}); !errors.Is(err, boom) {
			t.Fatalf("expected build error, got %v", err)
		}
	}
	if calls != 1 {
		t.Errorf("build called %d times, want 1", calls)
	}
}

func TestOllamaEmbedder_Batch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		resp := ollamaEmbedResponse{}
		for range req.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{0.1, 0.2})
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	e := NewOllamaEmbedder("nomic-embed-text", 2, srv.URL)
	out, err := e.Embed(context.Background(), []string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(out) != 3 {
		t.Errorf("got %d vectors, want 3", len(out))
	}
	if e.Name() != "ollama/nomic-embed-text" {
		t.Errorf("Name = %q", e.Name())
	}
}

func TestToChromemFunc(t *testing.T) {
	fn := ToChromemFunc(&countingEmbedder{})
	vec, err := fn(context.Background(), "four")
	if err != nil {
		t.Fatalf("embedding func: %v", err)
	}
	if len(vec) != 1 || vec[0] != 4 {
		t.Errorf("unexpected vector %v", vec)
	}
}

func TestToChromemFunc_PropagatesError(t *testing.T) {
	fn := ToChromemFunc(&countingEmbedder{err: errors.New("boom")})
	if _, err := fn(context.Background(), "x"); err == nil || !strings.Contains(err.Error(), "counting") {
		t.Errorf("expected wrapped error naming the embedder, got %v", err)
	}
}

// shortEmbedder returns a single vector no matter how many texts it gets.
type shortEmbedder struct{}

func (shortEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	return [][]float32{{1, 2}}, nil
}
func (shortEmbedder) Dimensions() int { return 2 }
func (shortEmbedder) Name() string    { return "short" }

func TestCachedEmbedder_RejectsShortBatch(t *testing.T) {
	cached := NewCachedEmbedder(shortEmbedder{}, time.Minute)

	out, err := cached.Embed(context.Background(), []string{"a", "b", "c"})
	if err == nil {
		t.Fatalf("expected error for short batch, got %v", out)
	}
	if !strings.Contains(err.Error(), "1 embeddings for 3 texts") {
		t.Errorf("unexpected error %v", err)
	}
	if cached.Len() != 0 {
		t.Errorf("short batch should not populate the cache, got %d entries", cached.Len())
	}
}
