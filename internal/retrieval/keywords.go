package retrieval

import (
	"strings"
	"unicode"

	"github.com/modlens/modlens/internal/moderation"
)

// keywordGroup is one branch of the hate-speech taxonomy. Groups and their
// keywords are scanned in declaration order so query building stays
// deterministic.
type keywordGroup struct {
	Name     string
	Keywords []string
}

var hateSpeechTaxonomy = []keywordGroup{
	{
		Name: "identity_targets",
		Keywords: []string{
			"race", "religion", "gender", "sexuality", "disability",
			"ethnicity", "nationality", "caste", "age",
		},
	},
	{
		Name: "harmful_actions",
		Keywords: []string{
			"hate", "harassment", "violence", "discrimination",
			"threat", "intimidation", "dehumanize", "attack",
		},
	},
	{
		Name: "content_types",
		Keywords: []string{
			"slur", "epithet", "insult", "stereotype", "degrading",
			"offensive", "toxic", "abusive",
		},
	},
}

// labelBoostTerms are appended to the search query for each label.
var labelBoostTerms = map[moderation.Label][]string{
	moderation.LabelHate:      {"hate speech", "harassment", "discrimination", "violation"},
	moderation.LabelToxic:     {"toxic content", "harmful", "abusive", "moderation"},
	moderation.LabelOffensive: {"offensive content", "inappropriate", "community standards"},
	moderation.LabelAmbiguous: {"borderline content", "review", "guidelines"},
	moderation.LabelNeutral:   {"content policy", "community guidelines"},
}

var defaultBoostTerms = []string{"content policy"}

// labelRelevanceTerms are looked up in a candidate's title and content, each
// hit adding its weight to the label relevance sub-score.
var labelRelevanceTerms = map[moderation.Label]struct {
	Terms  []string
	Weight float64
}{
	moderation.LabelHate:  {Terms: []string{"hate", "speech", "harassment", "discrimination", "violence"}, Weight: 0.2},
	moderation.LabelToxic: {Terms: []string{"toxic", "harmful", "abusive", "offensive"}, Weight: 0.25},
}

// rationaleMatchWeight is added per rationale keyword found in a candidate.
const rationaleMatchWeight = 0.1

// policyTypeBoost scores how well a policy type suits a label. Pairs not
// listed get defaultPolicyTypeBoost.
var policyTypeBoost = map[moderation.Label]map[string]float64{
	moderation.LabelHate: {
		"legal_framework":      0.9,
		"community_guidelines": 0.8,
		"community_standards":  0.8,
		"platform_policy":      0.7,
	},
	moderation.LabelToxic: {
		"community_guidelines": 0.9,
		"community_standards":  0.9,
		"platform_policy":      0.8,
		"legal_framework":      0.6,
	},
	moderation.LabelOffensive: {
		"community_guidelines": 0.8,
		"community_standards":  0.8,
		"platform_policy":      0.7,
		"legal_framework":      0.5,
	},
}

const defaultPolicyTypeBoost = 0.5

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "and": true, "or": true, "but": true,
	"in": true, "on": true, "at": true, "to": true, "for": true,
	"of": true, "with": true, "by": true, "this": true, "that": true,
	"these": true, "those": true, "from": true, "into": true, "about": true,
	"have": true, "has": true, "had": true, "been": true, "being": true,
	"will": true, "would": true, "could": true, "should": true, "there": true,
	"their": true, "they": true, "them": true, "which": true, "what": true,
	"when": true, "where": true, "while": true, "also": true, "such": true,
	"very": true, "some": true, "more": true, "most": true, "other": true,
	"than": true, "then": true, "text": true, "contains": true, "content": true,
}

// words splits s into lowercase runs of letters and digits, keeping
// duplicates and order.
func words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

// wordSet returns the distinct words of s.
func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range words(s) {
		set[w] = true
	}
	return set
}

// matchesKeyword reports whether any token is the keyword or an inflection of
// it ("threats" for "threat"). Keywords shorter than four letters must match
// exactly so "age" does not match "message".
func matchesKeyword(tokens []string, keyword string) bool {
	for _, tok := range tokens {
		if tok == keyword {
			return true
		}
		if len(keyword) >= 4 && strings.HasPrefix(tok, keyword) {
			return true
		}
	}
	return false
}

// containsTerm reports whether a (possibly multi-word) term appears in the
// token stream.
func containsTerm(tokens []string, term string) bool {
	parts := words(term)
	if len(parts) == 0 {
		return false
	}
	if len(parts) == 1 {
		return matchesKeyword(tokens, parts[0])
	}
	for i := 0; i+len(parts) <= len(tokens); i++ {
		ok := true
		for j, p := range parts {
			if tokens[i+j] != p {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}
