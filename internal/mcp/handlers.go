package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/modlens/modlens/internal/moderation"
	"github.com/modlens/modlens/internal/vectordb"
)

const defaultSearchLimit = 3

func (s *Server) handleAnalyzeText(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: text"), nil
	}

	resp, err := s.analyzer.Analyze(ctx, text)
	if err != nil {
		report := moderation.Describe(err)
		return mcp.NewToolResultError(fmt.Sprintf("%s: %s %s", report.Type, report.Message, report.Suggestion)), nil
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) handleSearchPolicies(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", defaultSearchLimit)
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	var filter *vectordb.SearchFilter
	provider := request.GetString("provider", "")
	policyType := request.GetString("policy_type", "")
	if provider != "" || policyType != "" {
		filter = &vectordb.SearchFilter{}
		if provider != "" {
			filter.Provider = &provider
		}
		if policyType != "" {
			filter.PolicyType = &policyType
		}
	}

	results, err := s.store.Search(ctx, query, limit, filter)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No policies found. The index may be empty. Run `modlens ingest` to load policies."), nil
	}

	return mcp.NewToolResultText(vectordb.FormatResults(results)), nil
}

func (s *Server) handleGetPolicy(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}

	doc, err := s.store.GetByID(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("No policy found with id %q.", id)), nil
	}

	md := doc.Metadata
	return mcp.NewToolResultText(fmt.Sprintf("Title: %s\nProvider: %s\nType: %s\n\n%s",
		md.Title, md.Provider, md.PolicyType, doc.Content)), nil
}
