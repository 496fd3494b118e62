// Package prompts implements the MCP prompt handlers for WorkSync.
//
// MCP prompts are user-triggered workflows (like slash commands) that
// instruct the AI to execute a specific sequence. Unlike tools (which
// the AI calls), prompts are initiated by the user.
package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// promptArg extracts a named argument from a prompt request.
func promptArg(req mcp.GetPromptRequest, key string) string {
	if args := req.Params.Arguments; args != nil {
		return args[key]
	}
	return ""
}

// textPrompt wraps a single user message into a prompt result.
func textPrompt(description, text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Description: description,
		Messages: []mcp.PromptMessage{
			{
				Role:    mcp.RoleUser,
				Content: mcp.NewTextContent(text),
			},
		},
	}
}

// StatusPrompt handles the work_status MCP prompt.
type StatusPrompt struct{}

// NewStatusPrompt creates a StatusPrompt.
func NewStatusPrompt() *StatusPrompt {
	return &StatusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *StatusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("work_status",
		mcp.WithPromptDescription(
			"Check work status across projects. Shows active sprints, in-progress stories, and backlog stats.",
		),
		mcp.WithArgument("project",
			mcp.ArgumentDescription("Project name to filter. If omitted, shows all projects."),
		),
	)
}

// Handle processes the work_status prompt request.
func (p *StatusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	projectArg := "no arguments (all projects)"
	if project := promptArg(req, "project"); project != "" {
		projectArg = fmt.Sprintf("project='%s'", project)
	}

	text := fmt.Sprintf(
		"Call worksync_status with %s. "+
			"Display the results using this exact structure:\n\n"+
			"```\n"+
			"## <project-name>\n"+
			"\n"+
			"**Active Sprints:**\n"+
			"  <id> — <title> (<N stories, M in progress>)\n"+
			"  (or 'None' if no active sprints)\n"+
			"\n"+
			"**In Progress:**\n"+
			"| ID | Sprint | Notes |\n"+
			"|-----|---------|-------|\n"+
			"| STORY-1 | sprint-id | truncated notes... |\n"+
			"  (include in-progress backlog items with Sprint='backlog')\n"+
			"  (or 'None' if nothing in progress)\n"+
			"\n"+
			"**Backlog:** <total> total — <todo> todo, <in_progress> active, <done> done\n"+
			"\n"+
			"**Recent History:** (last 3 entries)\n"+
			"  - <date>: <summary>\n"+
			"```\n\n"+
			"Rules:\n"+
			"- One section per project, separated by a horizontal rule\n"+
			"- Truncate notes to 60 chars max\n"+
			"- If no active sprints and no in-progress work, show a one-liner: "+
			"'<project>: idle — <N> backlog items'\n"+
			"- Keep it compact for CLI readability",
		projectArg,
	)

	return textPrompt("Check work status", text), nil
}
