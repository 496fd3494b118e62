package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/audit"
	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// DoneTool handles the worksync_done MCP tool.
type DoneTool struct {
	registry *registry.Store
	engine   *workindex.Engine
	audit    *audit.Log
}

// NewDoneTool creates a DoneTool.
func NewDoneTool(reg *registry.Store, engine *workindex.Engine, log *audit.Log) *DoneTool {
	return &DoneTool{registry: reg, engine: engine, audit: log}
}

// Definition returns the MCP tool definition for worksync_done.
func (t *DoneTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_done",
		mcp.WithDescription(
			"Mark a story as done, add notes, and append a history entry. "+
				"If sprint_id is not provided, searches all sprints for the story.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("story_id",
			mcp.Required(),
			mcp.Description("Story to mark as done"),
		),
		mcp.WithString("notes",
			mcp.Description("Completion notes"),
		),
		mcp.WithString("sprint_id",
			mcp.Description("Sprint containing the story (auto-detected if omitted)"),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_done tool call.
func (t *DoneTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	storyID := req.GetString("story_id", "")
	if project == "" || storyID == "" {
		return mcp.NewToolResultError("'project' and 'story_id' are required"), nil
	}
	agent := agentArg(req)

	if _, err := t.registry.Require(project); err != nil {
		return resultForError(err)
	}

	result, err := t.engine.MarkDone(project, agent, storyID, req.GetString("notes", ""), req.GetString("sprint_id", ""))
	if err != nil {
		return resultForError(err)
	}

	t.audit.Record(project, agent, "done", storyID+" in "+result.SprintID)
	return jsonResult(result)
}
