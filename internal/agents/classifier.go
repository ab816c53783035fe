package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/modlens/modlens/internal/llm"
	"github.com/modlens/modlens/internal/moderation"
)

// Classifier asks an LLM to label text.
type Classifier struct {
	provider llm.Provider
	opts     LLMOptions
}

// NewClassifier creates a Classifier backed by provider.
func NewClassifier(provider llm.Provider, opts LLMOptions) *Classifier {
	return &Classifier{provider: provider, opts: opts}
}

func (c *Classifier) Name() string { return "classification_agent" }

// classifierReply is the only JSON shape accepted from the model.
type classifierReply struct {
	Label      *string  `json:"label"`
	Confidence *float64 `json:"confidence"`
	Reasoning  *string  `json:"reasoning"`
}

// Execute classifies text. Every failure is a *moderation.ClassificationError.
func (c *Classifier) Execute(ctx context.Context, text string) (moderation.ClassificationResult, error) {
	if strings.TrimSpace(text) == "" {
		return moderation.ClassificationResult{}, &moderation.ClassificationError{Msg: "text is empty"}
	}

	resp, err := c.provider.Complete(ctx, c.opts.request(classifySystemPrompt, classifyUserPrompt(text)))
	if err != nil {
		return moderation.ClassificationResult{}, &moderation.ClassificationError{
			Msg: "llm call failed",
			Err: &moderation.LLMServiceError{Provider: c.provider.Name(), Err: err},
		}
	}

	if resp.Truncated() {
		return moderation.ClassificationResult{}, &moderation.ClassificationError{Msg: "invalid llm response", Err: errTruncated}
	}

	result, err := parseClassification(resp.Content)
	if err != nil {
		return moderation.ClassificationResult{}, &moderation.ClassificationError{Msg: "invalid llm response", Err: err}
	}
	return result, nil
}

func parseClassification(content string) (moderation.ClassificationResult, error) {
	var reply classifierReply
	if err := decodeStrict(content, &reply); err != nil {
		return moderation.ClassificationResult{}, err
	}

	switch {
	case reply.Label == nil:
		return moderation.ClassificationResult{}, errors.New(`missing field "label"`)
	case reply.Confidence == nil:
		return moderation.ClassificationResult{}, errors.New(`missing field "confidence"`)
	case reply.Reasoning == nil:
		return moderation.ClassificationResult{}, errors.New(`missing field "reasoning"`)
	}

	label := moderation.Label(strings.ToLower(strings.TrimSpace(*reply.Label)))
	if !label.Valid() {
		return moderation.ClassificationResult{}, fmt.Errorf("unknown label %q", *reply.Label)
	}

	conf := *reply.Confidence
	if math.IsNaN(conf) || conf < 0 || conf > 1 {
		return moderation.ClassificationResult{}, fmt.Errorf("confidence %v outside [0,1]", conf)
	}

	return moderation.ClassificationResult{
		Label:      label,
		Confidence: conf,
		Reasoning:  strings.TrimSpace(*reply.Reasoning),
	}, nil
}

// decodeStrict decodes the JSON object in content into v, rejecting unknown
// fields and trailing data.
func decodeStrict(content string, v any) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(llm.ExtractJSON(content))))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	if dec.More() {
		return errors.New("unexpected data after json object")
	}
	return nil
}
