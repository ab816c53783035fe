// Package orchestrator sequences the analysis pipeline: validate, classify,
// retrieve, reason, recommend and assemble.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/modlens/modlens/internal/agents"
	"github.com/modlens/modlens/internal/moderation"
	"github.com/modlens/modlens/internal/retrieval"
)

// Default input limits, in characters.
const (
	DefaultMinLength = 3
	DefaultMaxLength = 5000
)

// NoSummaryPlaceholder is used for policies the reasoner did not summarize.
const NoSummaryPlaceholder = "No specific summary provided."

// Recorder persists completed analyses. Recording is best effort.
type Recorder interface {
	Record(ctx context.Context, text string, resp *moderation.DetailedAnalyzeResponse) error
}

// Stages are the agents run by the orchestrator.
type Stages struct {
	Classifier  agents.Agent[string, moderation.ClassificationResult]
	Retriever   agents.Agent[retrieval.Input, moderation.RetrievalResult]
	Reasoner    agents.Agent[agents.ReasonInput, moderation.ReasoningResult]
	Recommender agents.Agent[moderation.ClassificationResult, moderation.ActionRecommendation]
}

var _ agents.Agent[retrieval.Input, moderation.RetrievalResult] = (*retrieval.Retriever)(nil)

// Orchestrator runs one analysis per call. It holds no per-request state and
// is safe for concurrent use.
type Orchestrator struct {
	stages       Stages
	logger       *slog.Logger
	recorder     Recorder
	minLength    int
	maxLength    int
	stageTimeout time.Duration
	onTransition func(from, to State)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithRecorder stores every successful analysis.
func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithLengthLimits overrides the accepted input length. Non-positive values
// keep the defaults.
func WithLengthLimits(minLen, maxLen int) Option {
	return func(o *Orchestrator) {
		if minLen > 0 {
			o.minLength = minLen
		}
		if maxLen > 0 {
			o.maxLength = maxLen
		}
	}
}

// WithStageTimeout bounds each stage. Zero disables the bound.
func WithStageTimeout(d time.Duration) Option {
	return func(o *Orchestrator) { o.stageTimeout = d }
}

// WithTransitionHook is called on every state change.
func WithTransitionHook(fn func(from, to State)) Option {
	return func(o *Orchestrator) { o.onTransition = fn }
}

// New creates an Orchestrator over the given stages.
func New(stages Stages, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		stages:    stages,
		logger:    slog.Default(),
		minLength: DefaultMinLength,
		maxLength: DefaultMaxLength,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// run tracks the state of a single analysis.
type run struct {
	o     *Orchestrator
	state State
	log   *slog.Logger
}

func (r *run) advance() {
	to := next[r.state]
	r.transition(to)
}

func (r *run) transition(to State) {
	from := r.state
	r.state = to
	r.log.Debug("pipeline transition", "from", from.String(), "to", to.String())
	if r.o.onTransition != nil {
		r.o.onTransition(from, to)
	}
}

// fail moves to Failed, logs err once and returns it unchanged.
func (r *run) fail(err error) error {
	stage := r.state
	r.transition(Failed)
	r.log.Error("analysis failed", "stage", stage.String(), "error", err)
	return err
}

func (r *run) stageCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.o.stageTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.o.stageTimeout)
}

// Analyze runs the full pipeline on text. Errors are returned exactly as the
// failing stage produced them.
func (o *Orchestrator) Analyze(ctx context.Context, text string) (*moderation.DetailedAnalyzeResponse, error) {
	r := &run{o: o, state: Validating, log: o.logger}
	r.log.Debug("pipeline transition", "to", Validating.String())

	clean, err := o.validate(text)
	if err != nil {
		return nil, r.fail(err)
	}
	r.advance()

	sctx, cancel := r.stageCtx(ctx)
	classification, err := o.stages.Classifier.Execute(sctx, clean)
	cancel()
	if err != nil {
		return nil, r.fail(err)
	}
	r.log = r.log.With("label", string(classification.Label))
	r.advance()

	sctx, cancel = r.stageCtx(ctx)
	retrieved, err := o.stages.Retriever.Execute(sctx, retrieval.Input{Text: clean, Classification: classification})
	cancel()
	if err != nil {
		return nil, r.fail(err)
	}
	r.advance()

	sctx, cancel = r.stageCtx(ctx)
	reasoning, err := o.stages.Reasoner.Execute(sctx, agents.ReasonInput{
		Text:           clean,
		Policies:       retrieved.Policies,
		Classification: classification,
	})
	cancel()
	if err != nil {
		return nil, r.fail(err)
	}
	policies := mergeSummaries(retrieved.Policies, reasoning.PolicySummaries)
	r.advance()

	sctx, cancel = r.stageCtx(ctx)
	action, err := o.stages.Recommender.Execute(sctx, classification)
	cancel()
	if err != nil {
		return nil, r.fail(err)
	}
	r.advance()

	retrieved.Policies = policies
	resp := assemble(classification, retrieved, reasoning, action)
	r.advance()

	r.log.Info("analysis complete",
		"action", string(action.Action),
		"policies", len(resp.Policies),
		"candidates", retrieved.TotalCandidates)

	if o.recorder != nil {
		if err := o.recorder.Record(ctx, clean, resp); err != nil {
			r.log.Warn("recording analysis failed", "error", err)
		}
	}
	return resp, nil
}

// validate enforces the length limits and returns the trimmed text.
func (o *Orchestrator) validate(text string) (string, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "", moderation.NewInvalidInput("empty", "Please enter some text to analyze.")
	}
	if utf8.RuneCountInString(text) > o.maxLength {
		return "", moderation.NewInvalidInput("too_long",
			fmt.Sprintf("Please limit input to %d characters or less.", o.maxLength))
	}
	if utf8.RuneCountInString(trimmed) < o.minLength {
		return "", moderation.NewInvalidInput("too_short",
			fmt.Sprintf("Please enter at least %d characters for analysis.", o.minLength))
	}
	return trimmed, nil
}

// mergeSummaries returns copies of policies whose Explanation is the
// reasoner's summary for that id, or NoSummaryPlaceholder.
func mergeSummaries(policies []moderation.PolicyDocument, summaries map[string]string) []moderation.PolicyDocument {
	out := make([]moderation.PolicyDocument, len(policies))
	for i, p := range policies {
		if s, ok := summaries[p.ID]; ok && s != "" {
			p.Explanation = s
		} else {
			p.Explanation = NoSummaryPlaceholder
		}
		out[i] = p
	}
	return out
}

func assemble(
	c moderation.ClassificationResult,
	retrieved moderation.RetrievalResult,
	reasoning moderation.ReasoningResult,
	action moderation.ActionRecommendation,
) *moderation.DetailedAnalyzeResponse {
	summaries := make([]moderation.PolicySummary, 0, len(retrieved.Policies))
	for _, p := range retrieved.Policies {
		summaries = append(summaries, moderation.PolicySummary{
			Source:         p.Source,
			Summary:        p.Title + ": " + p.Explanation,
			RelevanceScore: percent(p.RelevanceScore),
		})
	}

	return &moderation.DetailedAnalyzeResponse{
		HateSpeech: moderation.HateSpeechClassification{
			Classification: c.Label.Title(),
			Confidence:     moderation.BucketConfidence(c.Confidence),
			Reason:         c.Reasoning,
		},
		Policies:  summaries,
		Reasoning: reasoning.Explanation,
		Action:    action,
		Retrieval: retrieved,
	}
}

// percent converts a [0,1] score to a percentage with one decimal.
func percent(score float64) float64 {
	return math.Round(score*1000) / 10
}
