package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/modlens/modlens/internal/moderation"
	"github.com/modlens/modlens/internal/vectordb"
)

// mockStore implements vectordb.VectorStore for testing.
type mockStore struct {
	docs      []vectordb.Document
	searchErr error
}

func (m *mockStore) AddDocuments(_ context.Context, docs []vectordb.Document) error {
	m.docs = append(m.docs, docs...)
	return nil
}

func (m *mockStore) Search(_ context.Context, query string, limit int, filter *vectordb.SearchFilter) ([]vectordb.SearchResult, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	var results []vectordb.SearchResult
	for _, doc := range m.docs {
		if filter != nil && filter.Provider != nil && doc.Metadata.Provider != *filter.Provider {
			continue
		}
		if filter != nil && filter.PolicyType != nil && doc.Metadata.PolicyType != *filter.PolicyType {
			continue
		}
		results = append(results, vectordb.SearchResult{Document: doc, Similarity: 0.95})
		if len(results) >= limit {
			break
		}
	}
	return results, nil
}

func (m *mockStore) GetByID(_ context.Context, id string) (*vectordb.Document, error) {
	for _, d := range m.docs {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockStore) Delete(_ context.Context, _ ...string) error { return nil }
func (m *mockStore) Persist(_ context.Context, _ string) error   { return nil }
func (m *mockStore) Load(_ context.Context, _ string) error      { return nil }
func (m *mockStore) Count() int                                  { return len(m.docs) }

type analyzerFunc func(ctx context.Context, text string) (*moderation.DetailedAnalyzeResponse, error)

func (f analyzerFunc) Analyze(ctx context.Context, text string) (*moderation.DetailedAnalyzeResponse, error) {
	return f(ctx, text)
}

func sampleStore() *mockStore {
	return &mockStore{docs: []vectordb.Document{
		{
			ID:      "meta",
			Content: "We remove hateful conduct that attacks people based on protected characteristics.",
			Metadata: vectordb.PolicyMetadata{
				Title:      "Meta Community Standards - Hate Speech Policy",
				Provider:   "Meta",
				PolicyType: "community_standards",
			},
		},
		{
			ID:      "india",
			Content: "Section 153A penalizes promoting enmity between groups.",
			Metadata: vectordb.PolicyMetadata{
				Title:      "Indian Legal Framework",
				Provider:   "India",
				PolicyType: "legal_framework",
			},
		},
	}}
}

func resultText(t *testing.T, r *mcp.CallToolResult) string {
	t.Helper()
	if len(r.Content) == 0 {
		t.Fatal("empty tool result")
	}
	tc, ok := mcp.AsTextContent(r.Content[0])
	if !ok {
		t.Fatalf("unexpected content type %T", r.Content[0])
	}
	return tc.Text
}

func call(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func TestToolDefinitions(t *testing.T) {
	tests := []struct {
		tool     mcp.Tool
		wantName string
	}{
		{analyzeTextTool, "analyze_text"},
		{searchPoliciesTool, "search_policies"},
		{getPolicyTool, "get_policy"},
	}

	for _, tt := range tests {
		t.Run(tt.wantName, func(t *testing.T) {
			if tt.tool.Name != tt.wantName {
				t.Errorf("tool name = %q, want %q", tt.tool.Name, tt.wantName)
			}
			if tt.tool.Description == "" {
				t.Error("tool description should not be empty")
			}
		})
	}
}

func TestNewServer(t *testing.T) {
	store := &mockStore{}
	srv := NewServer(nil, store)
	if srv.mcp == nil {
		t.Fatal("MCP server not initialized")
	}
	if srv.store != store {
		t.Error("store not set correctly")
	}
}

func TestHandleAnalyzeText(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv := NewServer(analyzerFunc(func(_ context.Context, text string) (*moderation.DetailedAnalyzeResponse, error) {
			return &moderation.DetailedAnalyzeResponse{
				HateSpeech: moderation.HateSpeechClassification{Classification: "Neutral", Confidence: moderation.ConfidenceHigh},
				Action:     moderation.ActionRecommendation{Action: moderation.ActionAllow, Severity: moderation.SeverityNone},
			}, nil
		}), sampleStore())

		result, err := srv.handleAnalyzeText(ctx, call(map[string]any{"text": "have a nice day"}))
		if err != nil {
			t.Fatal(err)
		}
		if result.IsError {
			t.Fatalf("unexpected tool error: %s", resultText(t, result))
		}
		text := resultText(t, result)
		if !strings.Contains(text, `"classification": "Neutral"`) || !strings.Contains(text, `"action": "ALLOW"`) {
			t.Errorf("unexpected output: %s", text)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		srv := NewServer(analyzerFunc(func(context.Context, string) (*moderation.DetailedAnalyzeResponse, error) {
			return nil, moderation.NewInvalidInput("too_short", "Please enter at least 3 characters for analysis.")
		}), sampleStore())

		result, _ := srv.handleAnalyzeText(ctx, call(map[string]any{"text": "hi"}))
		if !result.IsError {
			t.Fatal("expected tool error")
		}
		if !strings.Contains(resultText(t, result), "at least 3 characters") {
			t.Errorf("message = %q", resultText(t, result))
		}
	})

	t.Run("missing text", func(t *testing.T) {
		srv := NewServer(nil, sampleStore())
		result, _ := srv.handleAnalyzeText(ctx, call(map[string]any{}))
		if !result.IsError {
			t.Error("expected error for missing text")
		}
	})
}

func TestHandleSearchPolicies(t *testing.T) {
	srv := NewServer(nil, sampleStore())
	ctx := context.Background()

	t.Run("basic search", func(t *testing.T) {
		result, err := srv.handleSearchPolicies(ctx, call(map[string]any{"query": "hate"}))
		if err != nil {
			t.Fatal(err)
		}
		text := resultText(t, result)
		if result.IsError || !strings.Contains(text, "Found 2 policies") {
			t.Errorf("unexpected result: %s", text)
		}
	})

	t.Run("filtered", func(t *testing.T) {
		result, _ := srv.handleSearchPolicies(ctx, call(map[string]any{"query": "law", "policy_type": "legal_framework"}))
		text := resultText(t, result)
		if !strings.Contains(text, "Found 1 policy") || !strings.Contains(text, "Indian Legal Framework") {
			t.Errorf("unexpected result: %s", text)
		}
	})

	t.Run("limit", func(t *testing.T) {
		result, _ := srv.handleSearchPolicies(ctx, call(map[string]any{"query": "x", "limit": 1}))
		if !strings.Contains(resultText(t, result), "Found 1 policy") {
			t.Errorf("limit not applied: %s", resultText(t, result))
		}
	})

	t.Run("missing query", func(t *testing.T) {
		result, _ := srv.handleSearchPolicies(ctx, call(map[string]any{}))
		if !result.IsError {
			t.Error("expected error for missing query")
		}
	})

	t.Run("empty store", func(t *testing.T) {
		empty := NewServer(nil, &mockStore{})
		result, _ := empty.handleSearchPolicies(ctx, call(map[string]any{"query": "anything"}))
		if result.IsError {
			t.Error("empty results should not be an error")
		}
		if !strings.Contains(resultText(t, result), "modlens ingest") {
			t.Errorf("expected ingest hint, got %s", resultText(t, result))
		}
	})

	t.Run("store failure", func(t *testing.T) {
		broken := NewServer(nil, &mockStore{searchErr: errors.New("offline")})
		result, _ := broken.handleSearchPolicies(ctx, call(map[string]any{"query": "x"}))
		if !result.IsError {
			t.Error("expected tool error")
		}
	})
}

func TestHandleGetPolicy(t *testing.T) {
	srv := NewServer(nil, sampleStore())
	ctx := context.Background()

	result, _ := srv.handleGetPolicy(ctx, call(map[string]any{"id": "meta"}))
	text := resultText(t, result)
	if result.IsError || !strings.Contains(text, "Provider: Meta") || !strings.Contains(text, "hateful conduct") {
		t.Errorf("unexpected result: %s", text)
	}

	result, _ = srv.handleGetPolicy(ctx, call(map[string]any{"id": "nope"}))
	if !result.IsError {
		t.Error("expected error for unknown id")
	}
}
