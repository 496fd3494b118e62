package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/audit"
	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// HistoryTool handles the worksync_history MCP tool.
type HistoryTool struct {
	registry *registry.Store
	engine   *workindex.Engine
	audit    *audit.Log
}

// NewHistoryTool creates a HistoryTool.
func NewHistoryTool(reg *registry.Store, engine *workindex.Engine, log *audit.Log) *HistoryTool {
	return &HistoryTool{registry: reg, engine: engine, audit: log}
}

// Definition returns the MCP tool definition for worksync_history.
func (t *HistoryTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_history",
		mcp.WithDescription("View or append project history."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("action",
			mcp.Description("'list' to view, 'add' to append a new entry (default: list)"),
		),
		mcp.WithString("summary",
			mcp.Description("Summary text (required when action='add')"),
		),
		mcp.WithArray("related_sprints",
			mcp.Description("Sprint IDs related to the entry"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_history tool call.
func (t *HistoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	if project == "" {
		return mcp.NewToolResultError("'project' is required"), nil
	}

	if _, err := t.registry.Require(project); err != nil {
		return resultForError(err)
	}

	switch action := req.GetString("action", "list"); action {
	case "list":
		entries, err := t.engine.History(project)
		if err != nil {
			return resultForError(err)
		}
		return jsonResult(map[string]any{"history": entries})

	case "add":
		summary := req.GetString("summary", "")
		if summary == "" {
			return mcp.NewToolResultError("summary is required when action='add'"), nil
		}
		agent := agentArg(req)
		related, _, err := stringSliceArg(req, "related_sprints")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		entry, err := t.engine.AppendHistory(project, agent, summary, related)
		if err != nil {
			return resultForError(err)
		}
		t.audit.Record(project, agent, "add_history", summary)
		return jsonResult(map[string]any{"created": entry})

	default:
		return mcp.NewToolResultError("Invalid action '" + action + "'. Must be 'list' or 'add'"), nil
	}
}
