package agents

import (
	"fmt"
	"strings"

	"github.com/modlens/modlens/internal/moderation"
)

const classifySystemPrompt = `You are a hate speech classifier. Analyze the text and return ONLY a JSON object with exactly these fields:
{
  "label": "hate|toxic|offensive|neutral|ambiguous",
  "confidence": 0.85,
  "reasoning": "Brief explanation"
}
confidence is a number between 0 and 1.`

const reasonSystemPrompt = "You are a content policy analyst. Return only JSON."

// maxPolicyPromptChars bounds how much of each policy is sent to the reasoner.
const maxPolicyPromptChars = 1000

func classifyUserPrompt(text string) string {
	return "Classify this text: " + text
}

func reasonUserPrompt(text string, policies []moderation.PolicyDocument, c moderation.ClassificationResult) string {
	var sb strings.Builder

	sb.WriteString("You are a senior content policy analyst. Explain a classification decision using real platform or legal policies.\n\n")
	fmt.Fprintf(&sb, "User Input:\n\"\"\"%s\"\"\"\n\n", text)
	sb.WriteString("Classification:\n")
	fmt.Fprintf(&sb, "- Label: %s\n", strings.ToUpper(string(c.Label)))
	fmt.Fprintf(&sb, "- Confidence: %.2f\n", c.Confidence)
	fmt.Fprintf(&sb, "- Reasoning: %s\n\n", c.Reasoning)

	sb.WriteString("Relevant Policies:\n")
	if len(policies) == 0 {
		sb.WriteString("No specific policy matched this text. Explain the classification on its own merits.\n\n")
	} else {
		for i, p := range policies {
			if i > 0 {
				sb.WriteString("\n")
			}
			fmt.Fprintf(&sb, "ID: %s\nTitle: %s\nContent: %s\n", p.ID, p.Title, truncate(strings.TrimSpace(p.Content), maxPolicyPromptChars))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(`Instructions:
- First, summarize overall why these policies justify the classification.
- Then, write 1-2 sentence explanations for each policy ID showing its specific relevance.
- Do NOT invent IDs. Use only the ones provided.
- Respond ONLY with this JSON object:

{
  "explanation": "High-level summary of why these policies support the decision.",
  "policy_summaries": {
    "<policy id>": "This policy addresses..."
  }
}
`)
	return sb.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
