// Package server wires all MCP components and creates the server instance.
//
// This is the composition root: it creates concrete implementations and
// injects them into the tools and prompts that depend on abstractions.
// No business logic lives here, only wiring.
package server

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/worksync/worksync/internal/audit"
	"github.com/worksync/worksync/internal/config"
	"github.com/worksync/worksync/internal/prompts"
	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/resources"
	"github.com/worksync/worksync/internal/syncsched"
	"github.com/worksync/worksync/internal/tools"
	"github.com/worksync/worksync/internal/workindex"
)

// Version is set at build time via ldflags.
var Version = "dev"

// New creates and configures the MCP server with all tools and prompts
// registered. This is the single place where all dependencies are
// resolved.
//
// The returned cleanup function stops pending sync timers and closes the
// activity log. It is always non-nil and safe to call even if parts of
// the setup were skipped.
func New(cfg config.Config) (*server.MCPServer, func(), error) {
	if err := os.MkdirAll(cfg.DataRoot, 0o755); err != nil {
		return nil, noop, fmt.Errorf("creating data root: %w", err)
	}

	// --- Create shared dependencies ---

	reg := registry.NewStore(cfg.DataRoot)
	docs := workindex.NewFileStore(cfg.DataRoot, cfg.AutoSync)
	engine := workindex.NewEngine(docs)

	invoker := syncsched.NewInvoker(syncCommand(cfg))
	scheduler := syncsched.NewScheduler(invoker, cfg.SyncDebounce)
	if cfg.AutoSync {
		docs.SetNotifier(scheduler)
	}

	// --- Activity log ---
	//
	// The audit log is an optional subsystem: if it fails to open, the
	// server still works. A nil *audit.Log records nothing.

	cleanup := func() { scheduler.Stop() }
	var activity *audit.Log
	if cfg.AuditLog {
		var err error
		activity, err = audit.Open(cfg.DataRoot)
		if err != nil {
			log.Printf("WARNING: activity log disabled: %v", err)
			activity = nil
		} else {
			closeLog := activity
			cleanup = func() {
				scheduler.Stop()
				if err := closeLog.Close(); err != nil {
					log.Printf("WARNING: activity log close: %v", err)
				}
			}
		}
	}

	// --- Create the MCP server ---

	s := server.NewMCPServer(
		"worksync",
		Version,
		server.WithToolCapabilities(true),
		server.WithPromptCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithRecovery(),
		server.WithInstructions(serverInstructions()),
	)

	// --- Register tools ---

	statusTool := tools.NewStatusTool(reg, engine)
	s.AddTool(statusTool.Definition(), statusTool.Handle)

	projectsTool := tools.NewProjectsTool(reg)
	s.AddTool(projectsTool.Definition(), projectsTool.Handle)

	addBacklog := tools.NewAddBacklogTool(reg, engine, activity)
	s.AddTool(addBacklog.Definition(), addBacklog.Handle)

	updateBacklog := tools.NewUpdateBacklogTool(reg, engine, activity)
	s.AddTool(updateBacklog.Definition(), updateBacklog.Handle)

	removeBacklog := tools.NewRemoveBacklogTool(reg, engine, activity)
	s.AddTool(removeBacklog.Definition(), removeBacklog.Handle)

	createSprint := tools.NewCreateSprintTool(reg, engine, activity)
	s.AddTool(createSprint.Definition(), createSprint.Handle)

	updateSprint := tools.NewUpdateSprintTool(reg, engine, activity)
	s.AddTool(updateSprint.Definition(), updateSprint.Handle)

	addStory := tools.NewAddStoryTool(reg, engine, activity)
	s.AddTool(addStory.Definition(), addStory.Handle)

	updateStory := tools.NewUpdateStoryTool(reg, engine, activity)
	s.AddTool(updateStory.Definition(), updateStory.Handle)

	doneTool := tools.NewDoneTool(reg, engine, activity)
	s.AddTool(doneTool.Definition(), doneTool.Handle)

	historyTool := tools.NewHistoryTool(reg, engine, activity)
	s.AddTool(historyTool.Definition(), historyTool.Handle)

	syncTool := tools.NewSyncTool(reg, invoker)
	s.AddTool(syncTool.Definition(), syncTool.Handle)

	guidanceTool := tools.NewGuidanceTool(cfg.DataRoot, reg)
	s.AddTool(guidanceTool.Definition(), guidanceTool.Handle)

	registerTool := tools.NewRegisterProjectTool(cfg.DataRoot, reg, docs, activity)
	s.AddTool(registerTool.Definition(), registerTool.Handle)

	unregisterTool := tools.NewUnregisterProjectTool(cfg.DataRoot, reg, activity)
	s.AddTool(unregisterTool.Definition(), unregisterTool.Handle)

	activityTool := tools.NewActivityTool(activity)
	s.AddTool(activityTool.Definition(), activityTool.Handle)

	// --- Register prompts ---

	statusPrompt := prompts.NewStatusPrompt()
	s.AddPrompt(statusPrompt.Definition(), statusPrompt.Handle)

	syncPrompt := prompts.NewSyncPrompt()
	s.AddPrompt(syncPrompt.Definition(), syncPrompt.Handle)

	focusPrompt := prompts.NewFocusPrompt()
	s.AddPrompt(focusPrompt.Definition(), focusPrompt.Handle)

	donePrompt := prompts.NewDonePrompt()
	s.AddPrompt(donePrompt.Definition(), donePrompt.Handle)

	addProjectPrompt := prompts.NewAddProjectPrompt()
	s.AddPrompt(addProjectPrompt.Definition(), addProjectPrompt.Handle)

	// --- Register resources ---

	resourceHandler := resources.NewHandler(reg, docs)
	s.AddResource(resourceHandler.RegistryResource(), resourceHandler.HandleRegistry)
	s.AddResourceTemplate(resourceHandler.WorkIndexTemplate(), resourceHandler.HandleWorkIndex)

	return s, cleanup, nil
}

// noop is the default cleanup when nothing needs tearing down.
func noop() {}

// syncCommand resolves the regeneration command: an explicit override
// from the environment, or this binary's own sync subcommand.
func syncCommand(cfg config.Config) []string {
	if cfg.SyncCommand != "" {
		return strings.Fields(cfg.SyncCommand)
	}
	exe, err := os.Executable()
	if err != nil {
		log.Printf("WARNING: resolving executable path: %v", err)
		exe = "worksync"
	}
	return []string{exe, "sync", "--root", cfg.DataRoot}
}

// serverInstructions returns the system instructions that tell connected
// agents how to use WorkSync effectively.
func serverInstructions() string {
	return `WorkSync is a shared work tracking system for multi-agent coordination with Obsidian vault sync.

## Data Model

Each project has a work-index.yaml with three sections:

- **sprints[]**: Work iterations. Fields: id, title, file, status, goal, themes[], stories[]
- **backlog[]**: Unscheduled work items. Fields: id, theme, summary, status, related_sprints[]
- **history[]**: Append-only log. Fields: date, summary, related_sprints[]

## Statuses

| Entity  | Valid Statuses                        |
|---------|---------------------------------------|
| Sprint  | planned, active, reference, completed |
| Story   | planned, in_progress, done            |
| Backlog | todo, in_progress, done               |

## Conventions

- IDs are kebab-case (e.g. cicd-sha-pinning, feature-sprint-1)
- Story IDs are uppercase (e.g. STORY-1, STORY-2)
- Always pass your agent name in the agent parameter for attribution
- All mutations are atomic (validated YAML, atomic rename) with debounced vault sync

## Guardrails

- **All writes go through MCP tools.** Never write work-index.yaml directly.
- **Reads are allowed directly** via rg/grep on the projects/ directory for fast search.
- The server is single-writer. Concurrent tool calls are serialized.
- External (human) edits are detected via mtime and accepted on next read.

## Typical Session Workflow

1. **Start**: Call worksync_status() to see active sprints and in-progress work
2. **Focus**: Read sprint/story context from the status response
3. **Work**: Update story status with worksync_update_story() as you progress
4. **Complete**: Call worksync_done() to mark stories done (auto-appends history)
5. **Sync**: Vault auto-syncs after mutations. Call worksync_sync() to force.

## Guidance

Call worksync_guidance(project) to get coding guidance for a project. Guidance is layered: foundational patterns (general, golang, typescript, ai-collaboration) merged with project-specific docs from the repo.
`
}
