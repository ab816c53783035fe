package mcp

import "github.com/mark3labs/mcp-go/mcp"

var analyzeTextTool = mcp.NewTool("analyze_text",
	mcp.WithDescription("Classify text for hate speech, explain which moderation policies apply, and recommend an action."),
	mcp.WithString("text",
		mcp.Required(),
		mcp.Description("The text to analyze"),
	),
)

var searchPoliciesTool = mcp.NewTool("search_policies",
	mcp.WithDescription("Search indexed moderation policies semantically."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 3)"),
	),
	mcp.WithString("provider",
		mcp.Description("Only return policies from this provider, e.g. Meta"),
	),
	mcp.WithString("policy_type",
		mcp.Description("Only return policies of this type, e.g. legal_framework"),
	),
)

var getPolicyTool = mcp.NewTool("get_policy",
	mcp.WithDescription("Get the full text of a policy by id."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Policy id as returned by search_policies"),
	),
)
