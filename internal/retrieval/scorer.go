package retrieval

import (
	"sort"
	"strings"

	"github.com/modlens/modlens/internal/moderation"
)

// Weights blends the sub-scores into a composite relevance score.
type Weights struct {
	Base           float64
	TextSimilarity float64
	LabelRelevance float64
	PolicyType     float64
}

// DefaultWeights favours vector similarity and lets lexical signals reorder
// close candidates.
var DefaultWeights = Weights{
	Base:           0.6,
	TextSimilarity: 0.2,
	LabelRelevance: 0.15,
	PolicyType:     0.05,
}

// Scorer recomputes candidate scores with lexical and label-specific boosts.
type Scorer struct {
	weights Weights
}

// NewScorer returns a Scorer using w.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score annotates every candidate with its composite score and matched
// keywords, then returns them sorted by composite score, highest first.
// Candidates with equal scores keep their original order.
func (s *Scorer) Score(candidates []moderation.PolicyCandidate, text string, c moderation.ClassificationResult) []moderation.PolicyCandidate {
	textTokens := words(text)
	textSet := wordSet(text)
	rationale := reasoningKeywords(c.Reasoning, len(c.Reasoning))

	scored := make([]moderation.PolicyCandidate, len(candidates))
	for i, cand := range candidates {
		combined := words(cand.Title + " " + cand.Content)

		sim := jaccard(textSet, wordSet(cand.Content))
		rel := labelRelevance(c.Label, combined, rationale)
		typ := policyTypeScore(c.Label, cand.PolicyType)

		composite := s.weights.Base*clamp01(cand.BaseScore) +
			s.weights.TextSimilarity*sim +
			s.weights.LabelRelevance*rel +
			s.weights.PolicyType*typ

		cand.CompositeScore = clamp01(composite)
		cand.MatchedKeywords = matchedKeywords(textTokens, combined, rationale)
		scored[i] = cand
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].CompositeScore > scored[j].CompositeScore
	})
	return scored
}

// labelRelevance sums per-match weights for label terms and rationale
// keywords found in the candidate, capped at 1.
func labelRelevance(label moderation.Label, candidate []string, rationale []string) float64 {
	var score float64
	if lt, ok := labelRelevanceTerms[label]; ok {
		for _, term := range lt.Terms {
			if containsTerm(candidate, term) {
				score += lt.Weight
			}
		}
	}

	set := make(map[string]bool, len(candidate))
	for _, w := range candidate {
		set[w] = true
	}
	for _, w := range rationale {
		if set[w] {
			score += rationaleMatchWeight
		}
	}
	return clamp01(score)
}

func policyTypeScore(label moderation.Label, policyType string) float64 {
	if byType, ok := policyTypeBoost[label]; ok {
		if v, ok := byType[strings.ToLower(policyType)]; ok {
			return v
		}
	}
	return defaultPolicyTypeBoost
}

// matchedKeywords lists taxonomy keywords present in both the text and the
// candidate, followed by rationale keywords the candidate mentions.
func matchedKeywords(text, candidate, rationale []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, group := range hateSpeechTaxonomy {
		for _, kw := range group.Keywords {
			if !seen[kw] && matchesKeyword(text, kw) && matchesKeyword(candidate, kw) {
				seen[kw] = true
				out = append(out, kw)
			}
		}
	}
	for _, w := range rationale {
		if !seen[w] && matchesKeyword(candidate, w) {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}

// jaccard is |a ∩ b| / |a ∪ b|, or 0 when either set is empty.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for w := range a {
		if b[w] {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}

func clamp01(v float64) float64 {
	switch {
	case v != v, v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
