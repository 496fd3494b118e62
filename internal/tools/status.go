package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// StatusTool handles the worksync_status MCP tool.
type StatusTool struct {
	registry *registry.Store
	engine   *workindex.Engine
}

// NewStatusTool creates a StatusTool.
func NewStatusTool(reg *registry.Store, engine *workindex.Engine) *StatusTool {
	return &StatusTool{registry: reg, engine: engine}
}

// Definition returns the MCP tool definition for worksync_status.
func (t *StatusTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_status",
		mcp.WithDescription(
			"Show active sprints and in-progress work. Returns per-project sprints, "+
				"in-progress stories, and backlog stats.",
		),
		mcp.WithString("project",
			mcp.Description("Project name to filter. If omitted, shows all projects."),
		),
	)
}

type statusError struct {
	Error string `json:"error"`
}

// Handle processes the worksync_status tool call.
func (t *StatusTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")

	reg, err := t.registry.Load()
	if err != nil {
		return nil, err
	}

	var names []string
	if project != "" {
		if _, ok := reg.Lookup(project); !ok {
			return mcp.NewToolResultError("Project '" + project + "' not found"), nil
		}
		names = []string{project}
	} else {
		names = reg.Names()
	}

	projects := map[string]any{}
	for _, name := range names {
		status, err := t.engine.Status(name)
		if err != nil {
			// A registered project without an index yet is reported
			// inline, not fatal for the whole listing.
			projects[name] = statusError{Error: err.Error()}
			continue
		}
		projects[name] = status
	}

	return jsonResult(map[string]any{"projects": projects})
}
