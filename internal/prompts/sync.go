package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// SyncPrompt handles the work_sync MCP prompt.
type SyncPrompt struct{}

// NewSyncPrompt creates a SyncPrompt.
func NewSyncPrompt() *SyncPrompt {
	return &SyncPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *SyncPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("work_sync",
		mcp.WithPromptDescription("Regenerate the Obsidian vault from YAML source files."),
		mcp.WithArgument("project",
			mcp.ArgumentDescription("Specific project to sync. If omitted, syncs all."),
		),
	)
}

// Handle processes the work_sync prompt request.
func (p *SyncPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	text := "Call worksync_sync with no arguments to sync all projects. " +
		"Report whether the sync succeeded and summarize the output."
	if project := promptArg(req, "project"); project != "" {
		text = fmt.Sprintf(
			"Call worksync_sync with project='%s'. "+
				"Report whether the sync succeeded and summarize the output.",
			project,
		)
	}
	return textPrompt("Sync the vault", text), nil
}
