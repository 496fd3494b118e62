package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/registry"
)

// ProjectsTool handles the worksync_projects MCP tool.
type ProjectsTool struct {
	registry *registry.Store
}

// NewProjectsTool creates a ProjectsTool.
func NewProjectsTool(reg *registry.Store) *ProjectsTool {
	return &ProjectsTool{registry: reg}
}

// Definition returns the MCP tool definition for worksync_projects.
func (t *ProjectsTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_projects",
		mcp.WithDescription(
			"List all registered projects or get details for one. Returns repo paths, "+
				"descriptions, and guidance config.",
		),
		mcp.WithString("project",
			mcp.Description("Specific project name. If omitted, lists all."),
		),
	)
}

type projectDetail struct {
	Name string `json:"project"`
	registry.Project
}

// Handle processes the worksync_projects tool call.
func (t *ProjectsTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("project", "")

	reg, err := t.registry.Load()
	if err != nil {
		return nil, err
	}

	if name != "" {
		project, ok := reg.Lookup(name)
		if !ok {
			return mcp.NewToolResultError("Project '" + name + "' not found"), nil
		}
		return jsonResult(projectDetail{Name: name, Project: project})
	}

	projects := map[string]registry.Project{}
	for _, n := range reg.Names() {
		p, _ := reg.Lookup(n)
		projects[n] = p
	}
	return jsonResult(map[string]any{"projects": projects})
}
