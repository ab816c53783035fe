// Package policy loads moderation policy documents from disk and adds them to
// the vector store.
package policy

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Info is the descriptive metadata attached to a policy file.
type Info struct {
	Provider string
	Type     string
	Title    string
}

// knownFiles maps the bundled policy filenames to their metadata.
var knownFiles = map[string]Info{
	"reddit_policy": {
		Provider: "Reddit",
		Type:     "community_guidelines",
		Title:    "Reddit Content Policy - Hate Speech and Harassment",
	},
	"meta_community_standards": {
		Provider: "Meta",
		Type:     "community_standards",
		Title:    "Meta Community Standards - Hate Speech Policy",
	},
	"indian_legal_framework": {
		Provider: "India",
		Type:     "legal_framework",
		Title:    "Indian Legal Framework - Hate Speech and Online Content",
	},
	"youtube_community_guidelines": {
		Provider: "YouTube",
		Type:     "community_guidelines",
		Title:    "YouTube Community Guidelines - Hate Speech Policy",
	},
	"google_prohibited_content": {
		Provider: "Google",
		Type:     "platform_policy",
		Title:    "Google Ads and Search - Prohibited Content Policy",
	},
}

// GeneralPolicyType is used for files without known metadata.
const GeneralPolicyType = "general_policy"

// InfoFor returns metadata for a policy file. Known files are matched by
// name without extension; any other file gets a provider derived from its
// name, e.g. "twitch_rules.md" -> "Twitch Rules".
func InfoFor(filename string) Info {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if info, ok := knownFiles[strings.ToLower(stem)]; ok {
		return info
	}
	provider := titleWords(strings.NewReplacer("_", " ", "-", " ").Replace(stem))
	return Info{
		Provider: provider,
		Type:     GeneralPolicyType,
		Title:    provider + " Policy",
	}
}

// titleWords upper-cases the first letter of each word and lower-cases the rest.
func titleWords(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
