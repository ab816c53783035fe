// Package agents holds the pipeline stages that sit between validation and
// assembly: classification, reasoning and recommendation.
package agents

import (
	"context"
	"errors"

	"github.com/modlens/modlens/internal/llm"
)

// Agent is one stage of the analysis pipeline.
type Agent[In, Out any] interface {
	Name() string
	Execute(ctx context.Context, in In) (Out, error)
}

// LLMOptions are the completion parameters shared by the LLM-backed agents.
type LLMOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

func (o LLMOptions) request(system, user string) llm.CompletionRequest {
	req := llm.JSONRequest(system, user)
	req.Model = o.Model
	req.MaxTokens = o.MaxTokens
	req.Temperature = o.Temperature
	return req
}

// errTruncated is returned when the token limit cut a reply short.
var errTruncated = errors.New("llm reply truncated by max_tokens")
