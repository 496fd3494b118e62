package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// AddProjectPrompt handles the add_project MCP prompt.
type AddProjectPrompt struct{}

// NewAddProjectPrompt creates an AddProjectPrompt.
func NewAddProjectPrompt() *AddProjectPrompt {
	return &AddProjectPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *AddProjectPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("add_project",
		mcp.WithPromptDescription("Register a new project for work tracking."),
		mcp.WithArgument("name",
			mcp.ArgumentDescription("Project identifier (kebab-case)"),
		),
		mcp.WithArgument("repo",
			mcp.ArgumentDescription("Path to the source repository"),
		),
	)
}

// Handle processes the add_project prompt request.
func (p *AddProjectPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	name := promptArg(req, "name")
	repo := promptArg(req, "repo")

	text := fmt.Sprintf(
		"Call worksync_register_project with name='%s', repo='%s'. "+
			"The tool handles everything: directory creation, the work index scaffold, "+
			"registry update, language detection, and guidance inheritance. "+
			"Report what was created from the response.",
		name, repo,
	)
	return textPrompt("Register a project", text), nil
}
