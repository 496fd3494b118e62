package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/audit"
	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// CreateSprintTool handles the worksync_create_sprint MCP tool.
type CreateSprintTool struct {
	registry *registry.Store
	engine   *workindex.Engine
	audit    *audit.Log
}

// NewCreateSprintTool creates a CreateSprintTool.
func NewCreateSprintTool(reg *registry.Store, engine *workindex.Engine, log *audit.Log) *CreateSprintTool {
	return &CreateSprintTool{registry: reg, engine: engine, audit: log}
}

// Definition returns the MCP tool definition for worksync_create_sprint.
func (t *CreateSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_create_sprint",
		mcp.WithDescription("Create a new sprint."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Sprint identifier (kebab-case)"),
		),
		mcp.WithString("title",
			mcp.Required(),
			mcp.Description("Human-readable sprint title"),
		),
		mcp.WithString("goal",
			mcp.Description("What the sprint aims to achieve"),
		),
		mcp.WithArray("themes",
			mcp.Description("Cross-cutting themes this sprint relates to"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("status",
			mcp.Description("Initial status (planned | active | reference | completed, default: planned)"),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_create_sprint tool call.
func (t *CreateSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	id := req.GetString("id", "")
	title := req.GetString("title", "")
	if project == "" || id == "" || title == "" {
		return mcp.NewToolResultError("'project', 'id' and 'title' are required"), nil
	}
	agent := agentArg(req)

	if _, err := t.registry.Require(project); err != nil {
		return resultForError(err)
	}

	themes, _, err := stringSliceArg(req, "themes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sprint, err := t.engine.CreateSprint(project, agent, workindex.CreateSprintParams{
		ID:     id,
		Title:  title,
		Goal:   req.GetString("goal", ""),
		Themes: themes,
		Status: workindex.SprintStatus(req.GetString("status", string(workindex.SprintPlanned))),
	})
	if err != nil {
		return resultForError(err)
	}

	t.audit.Record(project, agent, "create_sprint", id)
	return jsonResult(map[string]any{"created": sprint})
}

// UpdateSprintTool handles the worksync_update_sprint MCP tool.
type UpdateSprintTool struct {
	registry *registry.Store
	engine   *workindex.Engine
	audit    *audit.Log
}

// NewUpdateSprintTool creates an UpdateSprintTool.
func NewUpdateSprintTool(reg *registry.Store, engine *workindex.Engine, log *audit.Log) *UpdateSprintTool {
	return &UpdateSprintTool{registry: reg, engine: engine, audit: log}
}

// Definition returns the MCP tool definition for worksync_update_sprint.
func (t *UpdateSprintTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_update_sprint",
		mcp.WithDescription("Update a sprint. Only provided fields are changed."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Sprint ID to update"),
		),
		mcp.WithString("status",
			mcp.Description("New status (planned | active | reference | completed)"),
		),
		mcp.WithString("title",
			mcp.Description("New title"),
		),
		mcp.WithString("goal",
			mcp.Description("New goal"),
		),
		mcp.WithArray("themes",
			mcp.Description("New themes list (replaces existing)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_update_sprint tool call.
func (t *UpdateSprintTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	id := req.GetString("id", "")
	if project == "" || id == "" {
		return mcp.NewToolResultError("'project' and 'id' are required"), nil
	}
	agent := agentArg(req)

	if _, err := t.registry.Require(project); err != nil {
		return resultForError(err)
	}

	var p workindex.UpdateSprintParams
	args := req.GetArguments()
	if _, ok := args["status"]; ok {
		s := workindex.SprintStatus(req.GetString("status", ""))
		p.Status = &s
	}
	if _, ok := args["title"]; ok {
		s := req.GetString("title", "")
		p.Title = &s
	}
	if _, ok := args["goal"]; ok {
		s := req.GetString("goal", "")
		p.Goal = &s
	}
	themes, ok, err := stringSliceArg(req, "themes")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		p.Themes = themes
	}

	sprint, err := t.engine.UpdateSprint(project, agent, id, p)
	if err != nil {
		return resultForError(err)
	}

	t.audit.Record(project, agent, "update_sprint", id)
	return jsonResult(map[string]any{"updated": sprint})
}
