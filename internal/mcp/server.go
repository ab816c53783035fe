// Package mcp exposes analysis and policy search as Model Context Protocol
// tools over stdio.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/modlens/modlens/internal/moderation"
	"github.com/modlens/modlens/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Analyzer runs the analysis pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*moderation.DetailedAnalyzeResponse, error)
}

// Server wraps an MCP server that exposes moderation tools.
type Server struct {
	analyzer Analyzer
	store    vectordb.VectorStore
	mcp      *server.MCPServer
}

// NewServer creates a new MCP server with the given dependencies.
func NewServer(analyzer Analyzer, store vectordb.VectorStore) *Server {
	s := &Server{
		analyzer: analyzer,
		store:    store,
	}

	s.mcp = server.NewMCPServer(
		"modlens",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(analyzeTextTool, s.handleAnalyzeText)
	s.mcp.AddTool(searchPoliciesTool, s.handleSearchPolicies)
	s.mcp.AddTool(getPolicyTool, s.handleGetPolicy)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
