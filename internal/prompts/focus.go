package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// FocusPrompt handles the work_focus MCP prompt.
type FocusPrompt struct{}

// NewFocusPrompt creates a FocusPrompt.
func NewFocusPrompt() *FocusPrompt {
	return &FocusPrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *FocusPrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("work_focus",
		mcp.WithPromptDescription("Load context for a specific story to prepare for focused work."),
		mcp.WithArgument("story_id",
			mcp.ArgumentDescription("Story to focus on (e.g. 'STORY-1')"),
		),
		mcp.WithArgument("project",
			mcp.ArgumentDescription("Project containing the story"),
		),
	)
}

// Handle processes the work_focus prompt request.
func (p *FocusPrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	storyID := promptArg(req, "story_id")
	if storyID == "" {
		storyID = "STORY-1"
	}
	projectHint := ""
	if project := promptArg(req, "project"); project != "" {
		projectHint = fmt.Sprintf(" in project '%s'", project)
	}

	text := fmt.Sprintf(
		"I want to focus on story %s%s. "+
			"1. Call worksync_status to find which project and sprint contains %s. "+
			"2. Extract the story notes, sprint goal, and themes. "+
			"3. Call worksync_guidance for the project to load coding context. "+
			"4. Present a summary: story status, sprint context, related work, and applicable guidance.",
		storyID, projectHint, storyID,
	)
	return textPrompt(fmt.Sprintf("Focus on %s", storyID), text), nil
}
