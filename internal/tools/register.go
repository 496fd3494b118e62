package tools

import (
	"context"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/audit"
	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// Project subdirectories created on registration.
var projectSubdirs = []string{"BACKLOG", "COMPLETE", "PROMPTS", "SCHEMA"}

// RegisterProjectTool handles the worksync_register_project MCP tool.
type RegisterProjectTool struct {
	root     string
	registry *registry.Store
	docs     workindex.Store
	audit    *audit.Log
}

// NewRegisterProjectTool creates a RegisterProjectTool.
func NewRegisterProjectTool(root string, reg *registry.Store, docs workindex.Store, log *audit.Log) *RegisterProjectTool {
	return &RegisterProjectTool{root: root, registry: reg, docs: docs, audit: log}
}

// Definition returns the MCP tool definition for worksync_register_project.
func (t *RegisterProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_register_project",
		mcp.WithDescription(
			"Register a new project for work tracking. Creates the project directory "+
				"structure, an empty work index, and the registry entry. Deterministic: "+
				"any agent produces identical results.",
		),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project identifier (kebab-case, e.g. 'my-new-project')"),
		),
		mcp.WithString("repo",
			mcp.Required(),
			mcp.Description("Path to the source repository (e.g. '~/dev/my-project')"),
		),
		mcp.WithString("description",
			mcp.Description("Short project description"),
		),
		mcp.WithArray("languages",
			mcp.Description("Programming languages used (e.g. ['golang', 'typescript']). Sets guidance inheritance. Auto-detected from the repo if omitted."),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_register_project tool call.
func (t *RegisterProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	repo := req.GetString("repo", "")
	if name == "" || repo == "" {
		return mcp.NewToolResultError("'name' and 'repo' are required"), nil
	}
	description := req.GetString("description", "")
	agent := agentArg(req)

	reg, err := t.registry.Load()
	if err != nil {
		return nil, err
	}
	if _, ok := reg.Lookup(name); ok {
		return mcp.NewToolResultError("Project '" + name + "' already registered"), nil
	}

	repoPath := expandHome(repo)
	languages, provided, err := stringSliceArg(req, "languages")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !provided {
		languages = registry.DetectLanguages(repoPath)
	}
	inherit := registry.InheritList(languages)

	projectDir := filepath.Join(t.root, workindex.ProjectsDir, name)
	createdDirs := []string{projectDir}
	if err := os.MkdirAll(projectDir, 0o755); err != nil {
		return nil, err
	}
	for _, subdir := range projectSubdirs {
		d := filepath.Join(projectDir, subdir)
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, err
		}
		createdDirs = append(createdDirs, d)
	}

	if _, err := t.docs.Bootstrap(name, agent); err != nil {
		return nil, err
	}

	entry := registry.Project{
		Repo:        repo,
		Description: description,
		Guidance:    registry.Guidance{Inherit: inherit},
	}
	if err := reg.Add(name, entry); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := t.registry.Save(reg); err != nil {
		return nil, err
	}

	t.audit.Record(name, agent, "register_project", repo)
	return jsonResult(map[string]any{
		"registered":         name,
		"repo":               repoPath,
		"description":        description,
		"languages_detected": languages,
		"guidance_inherit":   inherit,
		"created_dirs":       createdDirs,
		"work_index":         t.docs.DocumentPath(name),
	})
}

// UnregisterProjectTool handles the worksync_unregister_project MCP tool.
type UnregisterProjectTool struct {
	root     string
	registry *registry.Store
	audit    *audit.Log
}

// NewUnregisterProjectTool creates an UnregisterProjectTool.
func NewUnregisterProjectTool(root string, reg *registry.Store, log *audit.Log) *UnregisterProjectTool {
	return &UnregisterProjectTool{root: root, registry: reg, audit: log}
}

// Definition returns the MCP tool definition for worksync_unregister_project.
func (t *UnregisterProjectTool) Definition() mcp.Tool {
	return mcp.NewTool("worksync_unregister_project",
		mcp.WithDescription("Remove a project from WorkSync registration."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Project name to unregister"),
		),
		mcp.WithBoolean("delete_data",
			mcp.Description("If true, also delete the project data directory and vault artifacts. Default: false (safe)."),
		),
		mcp.WithString("agent", agentOption()),
	)
}

// Handle processes the worksync_unregister_project tool call.
func (t *UnregisterProjectTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := req.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("'name' is required"), nil
	}
	deleteData := boolArg(req, "delete_data", false)
	agent := agentArg(req)

	reg, err := t.registry.Load()
	if err != nil {
		return nil, err
	}

	projectDir := filepath.Join(t.root, workindex.ProjectsDir, name)
	vaultDir := filepath.Join(t.root, reg.VaultPath, "projects", name)

	removed, inConfig := reg.Lookup(name)
	onDisk := dirExists(projectDir)
	inVault := dirExists(vaultDir)

	if !inConfig && !onDisk && !inVault {
		return mcp.NewToolResultError("Project '" + name + "' not found (not in config, no data on disk, no vault artifacts)"), nil
	}

	result := map[string]any{"unregistered": name}

	if inConfig {
		reg.Remove(name)
		if err := t.registry.Save(reg); err != nil {
			return nil, err
		}
		result["config_removed"] = removed
	} else {
		result["config_removed"] = nil
		result["note"] = "Was not in config (already unregistered). Cleaning orphaned data."
	}

	if deleteData {
		if onDisk {
			if err := os.RemoveAll(projectDir); err != nil {
				return nil, err
			}
			result["data_deleted"] = projectDir
		}
		if inVault {
			if err := os.RemoveAll(vaultDir); err != nil {
				return nil, err
			}
			result["vault_deleted"] = vaultDir
		}
	}

	t.audit.Record(name, agent, "unregister_project", "")
	return jsonResult(result)
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
