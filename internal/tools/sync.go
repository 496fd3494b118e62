package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/syncsched"
)

// SyncTool handles the worksync_sync MCP tool. Unlike the debounced
// auto-sync after mutations, this runs the regeneration immediately and
// reports the outcome to the caller.
type SyncTool struct {
	registry *registry.Store
	runner   syncsched.Runner
}

// NewSyncTool creates a SyncTool.
func NewSyncTool(reg *registry.Store, runner syncsched.Runner) *SyncTool {
	return &SyncTool{registry: reg, runner: runner}
}

// Definition returns the MCP tool definition for worksync_sync.
func (t *SyncTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_sync",
		mcp.WithDescription(
			"Regenerate the Obsidian vault from YAML source files. Idempotent.",
		),
		mcp.WithString("project",
			mcp.Description("Specific project to sync. If omitted, syncs all."),
		),
	)
}

// Handle processes the worksync_sync tool call.
func (t *SyncTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	project := req.GetString("project", "")

	if project != "" {
		if _, err := t.registry.Require(project); err != nil {
			return resultForError(err)
		}
	}

	runCtx, cancel := context.WithTimeout(ctx, syncsched.SyncTimeout)
	defer cancel()

	result := t.runner.Run(runCtx, project)
	return jsonResult(result)
}
