package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/registry"
)

// GuidanceTool handles the worksync_guidance MCP tool.
type GuidanceTool struct {
	root     string
	registry *registry.Store
}

// NewGuidanceTool creates a GuidanceTool reading foundational guidance
// from root/guidance.
func NewGuidanceTool(root string, reg *registry.Store) *GuidanceTool {
	return &GuidanceTool{root: root, registry: reg}
}

// Definition returns the MCP tool definition for worksync_guidance.
func (t *GuidanceTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_guidance",
		mcp.WithDescription(
			"Get coding guidance for a project. Returns foundational guidance "+
				"(general, golang, typescript, ai-collaboration) merged with any "+
				"project-specific guidance configured for the project.",
		),
		mcp.WithString("project",
			mcp.Required(),
			mcp.Description("Project name"),
		),
		mcp.WithString("topic",
			mcp.Description("Optional filter: a foundational guidance name or a project-specific guidance name. If omitted, returns all applicable."),
		),
	)
}

// Handle processes the worksync_guidance tool call.
func (t *GuidanceTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("project", "")
	if name == "" {
		return mcp.NewToolResultError("'project' is required"), nil
	}
	topic := req.GetString("topic", "")

	project, err := t.registry.Require(name)
	if err != nil {
		return resultForError(err)
	}

	inherit := project.Guidance.Inherit
	if len(inherit) == 0 {
		inherit = []string{"general", "ai-collaboration"}
	}

	guidanceDir := filepath.Join(t.root, "guidance")
	result := map[string]string{}

	for _, n := range inherit {
		if topic != "" && topic != n {
			continue
		}
		content, err := os.ReadFile(filepath.Join(guidanceDir, n+".md"))
		if err != nil {
			continue
		}
		result[n] = string(content)
	}

	repoPath := expandHome(project.Repo)
	for _, ref := range project.Guidance.Project {
		if topic != "" && topic != ref.Name {
			continue
		}
		if ref.Source != "" && ref.Source != "repo" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(repoPath, ref.Path))
		if err != nil {
			continue
		}
		result[ref.Name] = string(content)
	}

	if len(result) == 0 {
		if topic != "" {
			return mcp.NewToolResultError("No guidance found for topic '" + topic + "'"), nil
		}
		return mcp.NewToolResultError("No guidance configured for this project"), nil
	}

	return jsonResult(map[string]any{"project": name, "guidance": result})
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}
