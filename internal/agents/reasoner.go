package agents

import (
	"context"
	"strings"

	"github.com/modlens/modlens/internal/llm"
	"github.com/modlens/modlens/internal/moderation"
)

// ReasonInput is what the reasoner needs from earlier stages.
type ReasonInput struct {
	Text           string
	Policies       []moderation.PolicyDocument
	Classification moderation.ClassificationResult
}

// Reasoner explains a classification with reference to retrieved policies.
type Reasoner struct {
	provider llm.Provider
	opts     LLMOptions
}

// NewReasoner creates a Reasoner backed by provider.
func NewReasoner(provider llm.Provider, opts LLMOptions) *Reasoner {
	return &Reasoner{provider: provider, opts: opts}
}

func (r *Reasoner) Name() string { return "policy_reasoner" }

type reasonerReply struct {
	Explanation     *string           `json:"explanation"`
	PolicySummaries map[string]string `json:"policy_summaries"`
}

// Execute produces an overall explanation and per-policy summaries. LLM and
// decoding failures are *moderation.ReasoningError; a reply without an
// explanation is a *moderation.AgentExecutionError.
func (r *Reasoner) Execute(ctx context.Context, in ReasonInput) (moderation.ReasoningResult, error) {
	prompt := reasonUserPrompt(in.Text, in.Policies, in.Classification)

	resp, err := r.provider.Complete(ctx, r.opts.request(reasonSystemPrompt, prompt))
	if err != nil {
		return moderation.ReasoningResult{}, &moderation.ReasoningError{
			Msg: "llm call failed",
			Err: &moderation.LLMServiceError{Provider: r.provider.Name(), Err: err},
		}
	}

	if resp.Truncated() {
		return moderation.ReasoningResult{}, &moderation.ReasoningError{Msg: "invalid llm response", Err: errTruncated}
	}

	var reply reasonerReply
	if err := decodeStrict(resp.Content, &reply); err != nil {
		return moderation.ReasoningResult{}, &moderation.ReasoningError{Msg: "invalid llm response", Err: err}
	}

	if reply.Explanation == nil || strings.TrimSpace(*reply.Explanation) == "" {
		return moderation.ReasoningResult{}, &moderation.AgentExecutionError{
			Agent: r.Name(),
			Msg:   "missing 'explanation' in llm response",
		}
	}

	summaries := make(map[string]string, len(reply.PolicySummaries))
	known := make(map[string]bool, len(in.Policies))
	for _, p := range in.Policies {
		known[p.ID] = true
	}
	for id, s := range reply.PolicySummaries {
		s = strings.TrimSpace(s)
		if known[id] && s != "" {
			summaries[id] = s
		}
	}

	return moderation.ReasoningResult{
		Explanation:     strings.TrimSpace(*reply.Explanation),
		PolicySummaries: summaries,
	}, nil
}
