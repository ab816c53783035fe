package retrieval

import (
	"fmt"
	"strings"

	"github.com/modlens/modlens/internal/moderation"
)

const maxExplainedKeywords = 3

// Explain renders a short, deterministic reason for a selected policy.
func Explain(c moderation.PolicyCandidate, label moderation.Label) string {
	title := c.Title
	if title == "" {
		title = "Unknown Policy"
	}
	provider := c.Provider
	if provider == "" {
		provider = unknownProvider
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Retrieved '%s' from %s", title, provider)

	if len(c.MatchedKeywords) > 0 {
		kws := c.MatchedKeywords
		if len(kws) > maxExplainedKeywords {
			kws = kws[:maxExplainedKeywords]
		}
		fmt.Fprintf(&sb, " due to matching terms: %s", strings.Join(kws, ", "))
	} else {
		sb.WriteString(" for general relevance")
	}

	if label == moderation.LabelHate || label == moderation.LabelToxic {
		fmt.Fprintf(&sb, ", relevant for %s classification", label)
	}

	fmt.Fprintf(&sb, " (relevance: %.2f)", c.CompositeScore)
	return sb.String()
}
