package vectordb

import (
	"fmt"
	"strings"
)

// FormatResults renders policy search results as human-readable text.
func FormatResults(results []SearchResult) string {
	if len(results) == 0 {
		return "No results found."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d polic%s:\n\n", len(results), pluralY(len(results)))

	for i, r := range results {
		md := r.Document.Metadata
		fmt.Fprintf(&sb, "--- Policy %d (similarity: %.4f) ---\n", i+1, r.Similarity)

		if md.Title != "" {
			fmt.Fprintf(&sb, "Title: %s\n", md.Title)
		}
		if md.Provider != "" {
			fmt.Fprintf(&sb, "Provider: %s\n", md.Provider)
		}
		if md.PolicyType != "" {
			fmt.Fprintf(&sb, "Type: %s\n", md.PolicyType)
		}
		if md.Filename != "" {
			fmt.Fprintf(&sb, "File: %s\n", md.Filename)
		}

		sb.WriteString("\n")
		sb.WriteString(Snippet(r.Document.Content, 400))
		sb.WriteString("\n\n")
	}

	return sb.String()
}

// Snippet shortens content to at most n runes, appending "..." when cut.
func Snippet(content string, n int) string {
	r := []rune(strings.TrimSpace(content))
	if n <= 0 || len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
