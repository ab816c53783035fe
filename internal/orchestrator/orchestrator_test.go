package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/modlens/modlens/internal/agents"
	"github.com/modlens/modlens/internal/llm"
	"github.com/modlens/modlens/internal/logging"
	"github.com/modlens/modlens/internal/moderation"
	"github.com/modlens/modlens/internal/retrieval"
)

// scriptedLLM answers classification prompts with classify and every other
// prompt with reason.
type scriptedLLM struct {
	mu       sync.Mutex
	classify string
	reason   string
	calls    int
}

func (s *scriptedLLM) Name() string { return "scripted" }

func (s *scriptedLLM) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	user := req.Messages[len(req.Messages)-1].Content
	if strings.HasPrefix(user, "Classify this text:") {
		return &llm.CompletionResponse{Content: s.classify}, nil
	}
	return &llm.CompletionResponse{Content: s.reason}, nil
}

func (s *scriptedLLM) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type staticSource struct {
	hits  []retrieval.Hit
	calls int
}

func (s *staticSource) Search(context.Context, string, int) ([]retrieval.Hit, error) {
	s.calls++
	return s.hits, nil
}

type memRecorder struct {
	texts []string
	err   error
}

func (m *memRecorder) Record(_ context.Context, text string, _ *moderation.DetailedAnalyzeResponse) error {
	m.texts = append(m.texts, text)
	return m.err
}

func policyHits() []retrieval.Hit {
	return []retrieval.Hit{
		{ID: "reddit-1", Score: 0.91, Payload: retrieval.Payload{Title: "Reddit Content Policy - Hate Speech and Harassment", Content: "Do not promote hate or harassment based on identity.", Provider: "Reddit", Type: "community_guidelines"}},
		{ID: "meta-1", Score: 0.84, Payload: retrieval.Payload{Title: "Meta Community Standards", Content: "We remove hateful conduct and threats.", Provider: "Meta", Type: "community_standards"}},
		{ID: "india-1", Score: 0.72, Payload: retrieval.Payload{Title: "Indian Legal Framework", Content: "Promoting enmity between groups is punishable.", Provider: "India", Type: "legal_framework"}},
		{ID: "reddit-2", Score: 0.65, Payload: retrieval.Payload{Title: "Reddit Rules", Content: "Remember the human.", Provider: "Reddit", Type: "community_guidelines"}},
	}
}

func newTestOrchestrator(provider llm.Provider, source retrieval.SimilaritySource, opts ...Option) *Orchestrator {
	stages := Stages{
		Classifier:  agents.NewClassifier(provider, agents.LLMOptions{}),
		Retriever:   retrieval.NewRetriever(source),
		Reasoner:    agents.NewReasoner(provider, agents.LLMOptions{}),
		Recommender: agents.NewRecommender(),
	}
	opts = append([]Option{WithLogger(logging.Discard())}, opts...)
	return New(stages, opts...)
}

func TestAnalyze_HateEscalates(t *testing.T) {
	provider := &scriptedLLM{
		classify: `{"label": "hate", "confidence": 0.92, "reasoning": "Contains slurs or threats."}`,
		reason:   `{"explanation": "The text attacks a person and matches hate speech policies.", "policy_summaries": {"reddit-1": "Prohibits hate based on identity.", "meta-1": "Removes hateful conduct."}}`,
	}
	rec := &memRecorder{}

	var transitions []State
	o := newTestOrchestrator(provider, &staticSource{hits: policyHits()},
		WithRecorder(rec),
		WithTransitionHook(func(_, to State) { transitions = append(transitions, to) }))

	resp, err := o.Analyze(context.Background(), "  I hate you and everything you stand for.  ")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if resp.HateSpeech.Classification != "Hate" {
		t.Errorf("classification = %q, want Hate", resp.HateSpeech.Classification)
	}
	if resp.HateSpeech.Confidence != moderation.ConfidenceHigh {
		t.Errorf("confidence = %q, want High", resp.HateSpeech.Confidence)
	}
	if resp.Action.Action != moderation.ActionEscalate || resp.Action.Severity != moderation.SeverityHigh {
		t.Errorf("action = %s/%s, want ESCALATE/High", resp.Action.Action, resp.Action.Severity)
	}
	if resp.Reasoning == "" {
		t.Error("expected overall reasoning")
	}

	if len(resp.Policies) != 3 {
		t.Fatalf("got %d policies, want 3", len(resp.Policies))
	}
	placeholders := 0
	for _, p := range resp.Policies {
		if p.RelevanceScore < 0 || p.RelevanceScore > 100 {
			t.Errorf("relevance %v outside [0,100]", p.RelevanceScore)
		}
		if !strings.Contains(p.Summary, ": ") {
			t.Errorf("summary %q not in '<title>: <summary>' form", p.Summary)
		}
		if strings.HasSuffix(p.Summary, NoSummaryPlaceholder) {
			placeholders++
		}
	}
	if placeholders != 1 {
		t.Errorf("expected one placeholder summary, got %d", placeholders)
	}

	want := []State{Classifying, Retrieving, Reasoning, Recommending, Assembling, Done}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Errorf("transition %d = %s, want %s", i, transitions[i], want[i])
		}
	}

	if len(rec.texts) != 1 || rec.texts[0] != "I hate you and everything you stand for." {
		t.Errorf("recorder got %q, want trimmed text", rec.texts)
	}
}

func TestAnalyze_EmptyInputStopsEarly(t *testing.T) {
	provider := &scriptedLLM{}
	source := &staticSource{}

	var last State
	o := newTestOrchestrator(provider, source, WithTransitionHook(func(_, to State) { last = to }))

	for _, text := range []string{"", "   \n\t"} {
		_, err := o.Analyze(context.Background(), text)
		if !moderation.IsInvalidInput(err) {
			t.Fatalf("Analyze(%q): expected InvalidInputError, got %v", text, err)
		}
	}
	if provider.callCount() != 0 || source.calls != 0 {
		t.Error("no downstream stage may run after invalid input")
	}
	if last != Failed {
		t.Errorf("final state = %s, want failed", last)
	}
}

func TestAnalyze_LengthLimits(t *testing.T) {
	o := newTestOrchestrator(&scriptedLLM{}, &staticSource{})

	var ierr *moderation.InvalidInputError
	_, err := o.Analyze(context.Background(), " hi ")
	if !errors.As(err, &ierr) || ierr.Reason != "too_short" {
		t.Errorf("expected too_short, got %v", err)
	}

	_, err = o.Analyze(context.Background(), strings.Repeat("a", DefaultMaxLength+1))
	if !errors.As(err, &ierr) || ierr.Reason != "too_long" {
		t.Errorf("expected too_long, got %v", err)
	}

	o = newTestOrchestrator(&scriptedLLM{}, &staticSource{}, WithLengthLimits(10, 20))
	_, err = o.Analyze(context.Background(), "short")
	if !errors.As(err, &ierr) || !strings.Contains(ierr.Message, "10 characters") {
		t.Errorf("expected custom minimum in message, got %v", err)
	}
}

func TestAnalyze_NoCandidates(t *testing.T) {
	provider := &scriptedLLM{
		classify: `{"label": "toxic", "confidence": 0.75, "reasoning": "Rude tone."}`,
		reason:   `{"explanation": "No policy matched, but the tone is hostile.", "policy_summaries": {}}`,
	}
	o := newTestOrchestrator(provider, &staticSource{})

	resp, err := o.Analyze(context.Background(), "you are all idiots")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.Retrieval.Policies == nil || len(resp.Retrieval.Policies) != 0 {
		t.Errorf("expected empty policies, got %v", resp.Retrieval.Policies)
	}
	if resp.Retrieval.TotalCandidates != 0 {
		t.Errorf("TotalCandidates = %d, want 0", resp.Retrieval.TotalCandidates)
	}
	if len(resp.Policies) != 0 {
		t.Errorf("expected no policy summaries, got %d", len(resp.Policies))
	}
	if resp.Reasoning == "" {
		t.Error("expected non-empty overall explanation")
	}
	if resp.Action.Action != moderation.ActionWarn {
		t.Errorf("action = %s, want WARN", resp.Action.Action)
	}
}

func TestAnalyze_NeutralAllows(t *testing.T) {
	provider := &scriptedLLM{
		classify: `{"label": "neutral", "confidence": 0.95, "reasoning": "Friendly greeting."}`,
		reason:   `{"explanation": "The text is harmless.", "policy_summaries": {"reddit-1": "Not violated."}}`,
	}
	o := newTestOrchestrator(provider, &staticSource{hits: policyHits()})

	resp, err := o.Analyze(context.Background(), "Have a wonderful day, friends!")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.Action.Action != moderation.ActionAllow || resp.Action.Severity != moderation.SeverityNone {
		t.Errorf("action = %s/%s, want ALLOW/None", resp.Action.Action, resp.Action.Severity)
	}
	if resp.HateSpeech.Classification != "Neutral" {
		t.Errorf("classification = %q", resp.HateSpeech.Classification)
	}
}

func TestAnalyze_StageErrorsReturnedUnchanged(t *testing.T) {
	provider := &scriptedLLM{classify: `{"label": "maybe"}`}

	var last State
	o := newTestOrchestrator(provider, &staticSource{}, WithTransitionHook(func(_, to State) { last = to }))

	_, err := o.Analyze(context.Background(), "some text here")
	var cerr *moderation.ClassificationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ClassificationError, got %v", err)
	}
	if last != Failed {
		t.Errorf("final state = %s, want failed", last)
	}

	provider = &scriptedLLM{
		classify: `{"label": "hate", "confidence": 0.9, "reasoning": "x"}`,
		reason:   `{"policy_summaries": {}}`,
	}
	o = newTestOrchestrator(provider, &staticSource{hits: policyHits()})
	_, err = o.Analyze(context.Background(), "some text here")
	var aerr *moderation.AgentExecutionError
	if !errors.As(err, &aerr) {
		t.Fatalf("expected AgentExecutionError, got %v", err)
	}
}

func TestAnalyze_RecorderFailureIgnored(t *testing.T) {
	provider := &scriptedLLM{
		classify: `{"label": "offensive", "confidence": 0.6, "reasoning": "Crude language."}`,
		reason:   `{"explanation": "Crude but not hateful.", "policy_summaries": {}}`,
	}
	rec := &memRecorder{err: errors.New("disk full")}
	o := newTestOrchestrator(provider, &staticSource{}, WithRecorder(rec))

	resp, err := o.Analyze(context.Background(), "what a dumb idea")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if resp.HateSpeech.Confidence != moderation.ConfidenceMedium {
		t.Errorf("confidence = %s, want Medium", resp.HateSpeech.Confidence)
	}
	if len(rec.texts) != 1 {
		t.Error("recorder not called")
	}
}

// slowClassifier blocks until its context is done.
type slowClassifier struct{}

func (slowClassifier) Name() string { return "slow" }

func (slowClassifier) Execute(ctx context.Context, _ string) (moderation.ClassificationResult, error) {
	<-ctx.Done()
	return moderation.ClassificationResult{}, &moderation.ClassificationError{Msg: "timed out", Err: ctx.Err()}
}

func TestAnalyze_StageTimeout(t *testing.T) {
	o := New(Stages{
		Classifier:  slowClassifier{},
		Retriever:   retrieval.NewRetriever(&staticSource{}),
		Reasoner:    agents.NewReasoner(&scriptedLLM{}, agents.LLMOptions{}),
		Recommender: agents.NewRecommender(),
	}, WithLogger(logging.Discard()), WithStageTimeout(20*time.Millisecond))

	_, err := o.Analyze(context.Background(), "some text here")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestPercent(t *testing.T) {
	tests := map[float64]float64{
		0.8734: 87.3,
		0.8736: 87.4,
		1:      100,
		0:      0,
	}
	for in, want := range tests {
		if got := percent(in); got != want {
			t.Errorf("percent(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestStateString(t *testing.T) {
	if Reasoning.String() != "reasoning" || Failed.String() != "failed" || State(42).String() != "unknown" {
		t.Error("unexpected state names")
	}
	if !Done.Terminal() || !Failed.Terminal() || Assembling.Terminal() {
		t.Error("unexpected terminal states")
	}
}
