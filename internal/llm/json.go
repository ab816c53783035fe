package llm

import "strings"

// ExtractJSON returns the outermost JSON object in content, dropping any
// markdown code fences or prose the model wrapped around it. Content with no
// object is returned trimmed.
func ExtractJSON(content string) string {
	content = strings.TrimSpace(content)
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return content
	}
	return content[start : end+1]
}
