package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/audit"
	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// AddStoryTool handles the worksync_add_story MCP tool.
type AddStoryTool struct {
	registry *registry.Store
	engine   *workindex.Engine
	audit    *audit.Log
}

// NewAddStoryTool creates an AddStoryTool.
func NewAddStoryTool(reg *registry.Store, engine *workindex.Engine, log *audit.Log) *AddStoryTool {
	return &AddStoryTool{registry: reg, engine: engine, audit: log}
}

// Definition returns the MCP tool definition for worksync_add_story.
func (t *AddStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_add_story",
		mcp.WithDescription("Add a story to a sprint."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("sprint_id",
			mcp.Required(),
			mcp.Description("Sprint to add the story to"),
		),
		mcp.WithString("story_id",
			mcp.Required(),
			mcp.Description("Story identifier (e.g. 'STORY-1')"),
		),
		mcp.WithString("status",
			mcp.Description("Initial status (planned | in_progress | done, default: planned)"),
		),
		mcp.WithString("notes",
			mcp.Description("Optional notes about scope or context"),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_add_story tool call.
func (t *AddStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	sprintID := req.GetString("sprint_id", "")
	storyID := req.GetString("story_id", "")
	if project == "" || sprintID == "" || storyID == "" {
		return mcp.NewToolResultError("'project', 'sprint_id' and 'story_id' are required"), nil
	}
	agent := agentArg(req)

	if _, err := t.registry.Require(project); err != nil {
		return resultForError(err)
	}

	story, err := t.engine.AddStory(project, agent, workindex.AddStoryParams{
		SprintID: sprintID,
		StoryID:  storyID,
		Status:   workindex.StoryStatus(req.GetString("status", string(workindex.StoryPlanned))),
		Notes:    req.GetString("notes", ""),
	})
	if err != nil {
		return resultForError(err)
	}

	t.audit.Record(project, agent, "add_story", storyID+" in "+sprintID)
	return jsonResult(map[string]any{"created": story, "sprint": sprintID})
}

// UpdateStoryTool handles the worksync_update_story MCP tool.
type UpdateStoryTool struct {
	registry *registry.Store
	engine   *workindex.Engine
	audit    *audit.Log
}

// NewUpdateStoryTool creates an UpdateStoryTool.
func NewUpdateStoryTool(reg *registry.Store, engine *workindex.Engine, log *audit.Log) *UpdateStoryTool {
	return &UpdateStoryTool{registry: reg, engine: engine, audit: log}
}

// Definition returns the MCP tool definition for worksync_update_story.
func (t *UpdateStoryTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_update_story",
		mcp.WithDescription("Update a story within a sprint. Only provided fields are changed."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("sprint_id",
			mcp.Required(),
			mcp.Description("Sprint containing the story"),
		),
		mcp.WithString("story_id",
			mcp.Required(),
			mcp.Description("Story ID to update"),
		),
		mcp.WithString("status",
			mcp.Description("New status (planned | in_progress | done)"),
		),
		mcp.WithString("notes",
			mcp.Description("New notes (replaces existing)"),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_update_story tool call.
func (t *UpdateStoryTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	sprintID := req.GetString("sprint_id", "")
	storyID := req.GetString("story_id", "")
	if project == "" || sprintID == "" || storyID == "" {
		return mcp.NewToolResultError("'project', 'sprint_id' and 'story_id' are required"), nil
	}
	agent := agentArg(req)

	if _, err := t.registry.Require(project); err != nil {
		return resultForError(err)
	}

	var p workindex.UpdateStoryParams
	args := req.GetArguments()
	if _, ok := args["status"]; ok {
		s := workindex.StoryStatus(req.GetString("status", ""))
		p.Status = &s
	}
	if _, ok := args["notes"]; ok {
		s := req.GetString("notes", "")
		p.Notes = &s
	}

	story, err := t.engine.UpdateStory(project, agent, sprintID, storyID, p)
	if err != nil {
		return resultForError(err)
	}

	t.audit.Record(project, agent, "update_story", storyID+" in "+sprintID)
	return jsonResult(map[string]any{"updated": story, "sprint": sprintID})
}
