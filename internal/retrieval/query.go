package retrieval

import (
	"sort"
	"strings"

	"github.com/modlens/modlens/internal/moderation"
)

const (
	maxQueryTextChars  = 200
	maxKeyPhrases      = 5
	maxReasoningTerms  = 3
	maxQueryTokens     = 50
	minReasoningLength = 4
)

// BuildQuery composes the search query for text and its classification:
// a text prefix, the label's boost terms, taxonomy keywords found in the
// text and the most frequent words of the classifier's rationale. Words are
// deduplicated case-insensitively and the query is capped at 50 tokens.
func BuildQuery(text string, c moderation.ClassificationResult) string {
	var parts []string

	parts = append(parts, truncateRunes(text, maxQueryTextChars))
	parts = append(parts, boostTerms(c.Label)...)

	phrases := extractKeyPhrases(text)
	if len(phrases) > maxKeyPhrases {
		phrases = phrases[:maxKeyPhrases]
	}
	parts = append(parts, phrases...)

	if c.Reasoning != "" {
		parts = append(parts, reasoningKeywords(c.Reasoning, maxReasoningTerms)...)
	}

	return cleanQuery(strings.Join(parts, " "))
}

func boostTerms(label moderation.Label) []string {
	if terms, ok := labelBoostTerms[label]; ok {
		return terms
	}
	return defaultBoostTerms
}

// extractKeyPhrases returns taxonomy keywords present in text, in taxonomy order.
func extractKeyPhrases(text string) []string {
	tokens := words(text)
	seen := make(map[string]bool)
	var found []string
	for _, group := range hateSpeechTaxonomy {
		for _, kw := range group.Keywords {
			if seen[kw] {
				continue
			}
			if matchesKeyword(tokens, kw) {
				seen[kw] = true
				found = append(found, kw)
			}
		}
	}
	return found
}

// reasoningKeywords returns up to n of the most frequent non-stopword words
// longer than three letters. Ties keep first-seen order.
func reasoningKeywords(reasoning string, n int) []string {
	counts := make(map[string]int)
	var order []string
	for _, w := range words(reasoning) {
		if len(w) < minReasoningLength || stopwords[w] {
			continue
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

// cleanQuery collapses whitespace, drops case-insensitive duplicate words
// and caps the result at maxQueryTokens words.
func cleanQuery(q string) string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.Fields(q) {
		key := strings.ToLower(w)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
		if len(out) == maxQueryTokens {
			break
		}
	}
	return strings.Join(out, " ")
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
