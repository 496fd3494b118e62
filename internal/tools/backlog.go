package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/audit"
	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// AddBacklogTool handles the worksync_add_backlog MCP tool.
type AddBacklogTool struct {
	registry *registry.Store
	engine   *workindex.Engine
	audit    *audit.Log
}

// NewAddBacklogTool creates an AddBacklogTool.
func NewAddBacklogTool(reg *registry.Store, engine *workindex.Engine, log *audit.Log) *AddBacklogTool {
	return &AddBacklogTool{registry: reg, engine: engine, audit: log}
}

// Definition returns the MCP tool definition for worksync_add_backlog.
func (t *AddBacklogTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_add_backlog",
		mcp.WithDescription("Add a new item to the project backlog."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name (must be registered)"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Unique identifier (kebab-case, e.g. 'cicd-sha-pinning')"),
		),
		mcp.WithString("summary",
			mcp.Required(),
			mcp.Description("Short description of the work"),
		),
		mcp.WithString("theme",
			mcp.Required(),
			mcp.Description("Category (e.g. 'security', 'devops', 'infrastructure')"),
		),
		mcp.WithString("status",
			mcp.Description("Initial status. One of: todo, in_progress, done (default: todo)"),
		),
		mcp.WithArray("related_sprints",
			mcp.Description("Optional list of sprint IDs this relates to"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_add_backlog tool call.
func (t *AddBacklogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	id := req.GetString("id", "")
	summary := req.GetString("summary", "")
	theme := req.GetString("theme", "")
	if project == "" || id == "" || summary == "" || theme == "" {
		return mcp.NewToolResultError("'project', 'id', 'summary' and 'theme' are required"), nil
	}
	agent := agentArg(req)

	if _, err := t.registry.Require(project); err != nil {
		return resultForError(err)
	}

	related, _, err := stringSliceArg(req, "related_sprints")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	item, err := t.engine.AddBacklog(project, agent, workindex.AddBacklogParams{
		ID:             id,
		Summary:        summary,
		Theme:          theme,
		Status:         workindex.BacklogStatus(req.GetString("status", string(workindex.BacklogTodo))),
		RelatedSprints: related,
	})
	if err != nil {
		return resultForError(err)
	}

	t.audit.Record(project, agent, "add_backlog", id)
	return jsonResult(map[string]any{"created": item})
}

// UpdateBacklogTool handles the worksync_update_backlog MCP tool.
type UpdateBacklogTool struct {
	registry *registry.Store
	engine   *workindex.Engine
	audit    *audit.Log
}

// NewUpdateBacklogTool creates an UpdateBacklogTool.
func NewUpdateBacklogTool(reg *registry.Store, engine *workindex.Engine, log *audit.Log) *UpdateBacklogTool {
	return &UpdateBacklogTool{registry: reg, engine: engine, audit: log}
}

// Definition returns the MCP tool definition for worksync_update_backlog.
func (t *UpdateBacklogTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_update_backlog",
		mcp.WithDescription("Update a backlog item. Only provided fields are changed."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Backlog item ID to update"),
		),
		mcp.WithString("status",
			mcp.Description("New status (todo | in_progress | done)"),
		),
		mcp.WithString("summary",
			mcp.Description("New summary text"),
		),
		mcp.WithString("theme",
			mcp.Description("New theme"),
		),
		mcp.WithArray("related_sprints",
			mcp.Description("New related sprints list (replaces existing)"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_update_backlog tool call.
func (t *UpdateBacklogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	id := req.GetString("id", "")
	if project == "" || id == "" {
		return mcp.NewToolResultError("'project' and 'id' are required"), nil
	}
	agent := agentArg(req)

	if _, err := t.registry.Require(project); err != nil {
		return resultForError(err)
	}

	var p workindex.UpdateBacklogParams
	args := req.GetArguments()
	if _, ok := args["status"]; ok {
		s := workindex.BacklogStatus(req.GetString("status", ""))
		p.Status = &s
	}
	if _, ok := args["summary"]; ok {
		s := req.GetString("summary", "")
		p.Summary = &s
	}
	if _, ok := args["theme"]; ok {
		s := req.GetString("theme", "")
		p.Theme = &s
	}
	related, ok, err := stringSliceArg(req, "related_sprints")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if ok {
		p.RelatedSprints = related
	}

	item, err := t.engine.UpdateBacklog(project, agent, id, p)
	if err != nil {
		return resultForError(err)
	}

	t.audit.Record(project, agent, "update_backlog", id)
	return jsonResult(map[string]any{"updated": item})
}

// RemoveBacklogTool handles the worksync_remove_backlog MCP tool.
type RemoveBacklogTool struct {
	registry *registry.Store
	engine   *workindex.Engine
	audit    *audit.Log
}

// NewRemoveBacklogTool creates a RemoveBacklogTool.
func NewRemoveBacklogTool(reg *registry.Store, engine *workindex.Engine, log *audit.Log) *RemoveBacklogTool {
	return &RemoveBacklogTool{registry: reg, engine: engine, audit: log}
}

// Definition returns the MCP tool definition for worksync_remove_backlog.
func (t *RemoveBacklogTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_remove_backlog",
		mcp.WithDescription("Remove a backlog item by ID."),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Backlog item ID to remove"),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_remove_backlog tool call.
func (t *RemoveBacklogTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")
	id := req.GetString("id", "")
	if project == "" || id == "" {
		return mcp.NewToolResultError("'project' and 'id' are required"), nil
	}
	agent := agentArg(req)

	if _, err := t.registry.Require(project); err != nil {
		return resultForError(err)
	}

	item, err := t.engine.RemoveBacklog(project, agent, id)
	if err != nil {
		return resultForError(err)
	}

	t.audit.Record(project, agent, "remove_backlog", fmt.Sprintf("%s (%s)", id, item.Summary))
	return jsonResult(map[string]any{"removed": item})
}
