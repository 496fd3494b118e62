package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/audit"
)

// ActivityTool handles the worksync_activity MCP tool. It surfaces the
// SQLite activity log so agents can see what other agents changed.
type ActivityTool struct {
	audit *audit.Log
}

// NewActivityTool creates an ActivityTool.
func NewActivityTool(log *audit.Log) *ActivityTool {
	return &ActivityTool{audit: log}
}

// Definition returns the MCP tool definition for worksync_activity.
func (t *ActivityTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_activity",
		mcp.WithDescription(
			"Show recent mutation activity across agents: who changed what, and when.",
		),
		mcp.WithString("project",
			mcp.Description("Project name to filter. If omitted, shows all projects."),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum entries to return (default: 20)"),
		),
	)
}

// Handle processes the worksync_activity tool call.
func (t *ActivityTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.audit == nil {
		return mcp.NewToolResultError("activity log is disabled (WORKSYNC_AUDIT_LOG=0)"), nil
	}

	project := req.GetString("project", "")
	limit := intArg(req, "limit", 20)

	entries, err := t.audit.Recent(project, limit)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	return jsonResult(map[string]any{"activity": entries})
}
