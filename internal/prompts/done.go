package prompts

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// DonePrompt handles the work_done MCP prompt.
type DonePrompt struct{}

// NewDonePrompt creates a DonePrompt.
func NewDonePrompt() *DonePrompt {
	return &DonePrompt{}
}

// Definition returns the MCP prompt definition for registration.
func (p *DonePrompt) Definition() mcp.Prompt {
	return mcp.NewPrompt("work_done",
		mcp.WithPromptDescription("Mark a story as done with completion notes."),
		mcp.WithArgument("story_id",
			mcp.ArgumentDescription("Story to mark as done"),
		),
		mcp.WithArgument("notes",
			mcp.ArgumentDescription("Completion notes"),
		),
		mcp.WithArgument("project",
			mcp.ArgumentDescription("Project containing the story"),
		),
	)
}

// Handle processes the work_done prompt request.
func (p *DonePrompt) Handle(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	storyID := promptArg(req, "story_id")
	if storyID == "" {
		storyID = "STORY-1"
	}
	projectHint := ""
	if project := promptArg(req, "project"); project != "" {
		projectHint = fmt.Sprintf(", project='%s'", project)
	}
	notesHint := ""
	if notes := promptArg(req, "notes"); notes != "" {
		notesHint = fmt.Sprintf(", notes='%s'", notes)
	}

	text := fmt.Sprintf(
		"Call worksync_done with story_id='%s'%s%s. "+
			"The server will mark the story as done, append a history entry, and sync the vault. "+
			"Report the result and suggest the next story in the same sprint if one exists.",
		storyID, projectHint, notesHint,
	)
	return textPrompt(fmt.Sprintf("Complete %s", storyID), text), nil
}
