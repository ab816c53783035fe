package retrieval

import (
	"context"
	"strings"

	"github.com/modlens/modlens/internal/moderation"
)

// DefaultCandidateLimit is how many raw hits are fetched before reranking.
// It is larger than MaxPolicies to leave room for the diversity pass.
const DefaultCandidateLimit = 10

// Payload is the metadata stored alongside a policy in the index.
type Payload struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	Provider string `json:"provider"`
	Type     string `json:"type"`
}

// Hit is one raw similarity result. Score is in [0,1].
type Hit struct {
	ID      string  `json:"id"`
	Score   float64 `json:"score"`
	Payload Payload `json:"data"`
}

// SimilaritySource returns up to limit nearest policies for query. An empty
// slice with a nil error means nothing matched.
type SimilaritySource interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}

// Input is what the retriever needs from earlier pipeline stages.
type Input struct {
	Text           string
	Classification moderation.ClassificationResult
}

// Retriever runs the hybrid search: build query, fetch candidates, rerank
// and pick a diverse top three.
type Retriever struct {
	source SimilaritySource
	scorer *Scorer
	limit  int
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithCandidateLimit overrides DefaultCandidateLimit.
func WithCandidateLimit(n int) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithWeights overrides DefaultWeights.
func WithWeights(w Weights) Option {
	return func(r *Retriever) { r.scorer = NewScorer(w) }
}

// NewRetriever creates a Retriever backed by source.
func NewRetriever(source SimilaritySource, opts ...Option) *Retriever {
	r := &Retriever{
		source: source,
		scorer: NewScorer(DefaultWeights),
		limit:  DefaultCandidateLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Retriever) Name() string { return "policy_retriever" }

// Execute retrieves supporting policies for in. Every failure is returned as
// a *moderation.RetrievalError.
func (r *Retriever) Execute(ctx context.Context, in Input) (moderation.RetrievalResult, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return moderation.RetrievalResult{}, &moderation.RetrievalError{Msg: "text is empty"}
	}

	query := BuildQuery(text, in.Classification)

	hits, err := r.source.Search(ctx, query, r.limit)
	if err != nil {
		return moderation.RetrievalResult{}, &moderation.RetrievalError{Msg: "similarity search", Err: err}
	}

	result := moderation.RetrievalResult{
		QueryUsed:       query,
		Policies:        []moderation.PolicyDocument{},
		TotalCandidates: len(hits),
	}
	if len(hits) == 0 {
		return result, nil
	}

	candidates := make([]moderation.PolicyCandidate, len(hits))
	for i, h := range hits {
		candidates[i] = moderation.PolicyCandidate{
			ID:         h.ID,
			Title:      h.Payload.Title,
			Content:    h.Payload.Content,
			Provider:   h.Payload.Provider,
			PolicyType: h.Payload.Type,
			BaseScore:  h.Score,
		}
	}

	scored := r.scorer.Score(candidates, text, in.Classification)
	for _, c := range SelectDiverse(scored, MaxPolicies) {
		result.Policies = append(result.Policies, toDocument(c, in.Classification.Label))
	}
	return result, nil
}

func toDocument(c moderation.PolicyCandidate, label moderation.Label) moderation.PolicyDocument {
	title := c.Title
	if title == "" {
		title = "Untitled Policy"
	}
	source := c.Provider
	if source == "" {
		source = unknownProvider
	}
	policyType := c.PolicyType
	if policyType == "" {
		policyType = "general"
	}

	return moderation.PolicyDocument{
		ID:             c.ID,
		Title:          title,
		Content:        c.Content,
		Category:       Category(policyType, c.Provider),
		RelevanceScore: c.CompositeScore,
		Source:         source,
		PolicyType:     policyType,
		Explanation:    Explain(c, label),
	}
}

var platformProviders = []string{"reddit", "meta", "youtube", "google"}

// Category groups a policy as "legal", "platform" or "community".
func Category(policyType, provider string) string {
	pt := strings.ToLower(policyType)
	if strings.Contains(pt, "legal") || strings.Contains(pt, "law") {
		return "legal"
	}
	p := strings.ToLower(provider)
	for _, name := range platformProviders {
		if strings.Contains(p, name) {
			return "platform"
		}
	}
	return "community"
}
