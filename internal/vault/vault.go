// Package vault regenerates the browsable Obsidian vault from the
// canonical work-index documents. Generation is one-directional and
// idempotent: it always re-derives from the current on-disk documents,
// never mutates them, and producing the same input twice yields the
// same vault.
//
// This package is the body of the `worksync sync` subcommand: the
// external process the scheduler invokes after commits.
package vault

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// Generator renders vault content for the projects under one data root.
type Generator struct {
	root     string
	registry *registry.Store
	docs     workindex.Store
}

// New creates a generator over the given data root.
func New(root string) *Generator {
	return &Generator{
		root:     root,
		registry: registry.NewStore(root),
		docs:     workindex.NewFileStore(root, false),
	}
}

// Run regenerates the vault. An empty project name regenerates every
// registered project plus the global dashboard. Progress goes to out;
// a missing work-index for one project is reported and skipped, but a
// project name that isn't registered is an error.
func (g *Generator) Run(project string, out io.Writer) error {
	reg, err := g.registry.Load()
	if err != nil {
		return err
	}

	vaultPath := filepath.Join(g.root, reg.VaultPath)
	if err := os.MkdirAll(vaultPath, 0o755); err != nil {
		return fmt.Errorf("creating vault directory: %w", err)
	}

	var projects []string
	if project != "" {
		if _, ok := reg.Lookup(project); !ok {
			return fmt.Errorf("%w: %q", registry.ErrUnknownProject, project)
		}
		projects = []string{project}
	} else {
		projects = reg.Names()
	}

	fmt.Fprintf(out, "Vault path: %s\n", vaultPath)
	fmt.Fprintf(out, "Projects to sync: %s\n", strings.Join(projects, ", "))

	synced := 0
	for _, name := range projects {
		if err := g.syncProject(name, reg, vaultPath, out); err != nil {
			fmt.Fprintf(out, "  Error syncing %s: %v\n", name, err)
			continue
		}
		synced++
	}

	// The dashboard lists every registered project, so even a
	// single-project run rewrites it: registrations must show up
	// without waiting for a full sync.
	content := generateGlobalDashboard(reg)
	if err := os.WriteFile(filepath.Join(vaultPath, "Global Dashboard.md"), []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing global dashboard: %w", err)
	}

	fmt.Fprintf(out, "Sync complete: %d/%d projects\n", synced, len(projects))
	if project != "" && synced == 0 {
		return fmt.Errorf("sync failed for project %q", project)
	}
	return nil
}

// syncProject renders every artifact for one project.
func (g *Generator) syncProject(name string, reg *registry.Registry, vaultPath string, out io.Writer) error {
	fmt.Fprintf(out, "Syncing project: %s\n", name)

	doc, err := g.docs.Load(name)
	if err != nil {
		return err
	}

	vaultProject := filepath.Join(vaultPath, "projects", name)
	for _, subdir := range []string{"Sprints", "Stories", "Backlog", "Themes"} {
		if err := os.MkdirAll(filepath.Join(vaultProject, subdir), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", subdir, err)
		}
	}

	themes := make(map[string]bool)

	for _, sprint := range doc.Sprints {
		content := generateSprintFile(&sprint, name)
		path := filepath.Join(vaultProject, "Sprints", sprint.ID+".md")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing sprint %s: %w", sprint.ID, err)
		}
		for _, t := range sprint.Themes {
			themes[t] = true
		}
		for _, story := range sprint.Stories {
			content := generateStoryFile(&story, &sprint, name)
			path := filepath.Join(vaultProject, "Stories", story.ID+".md")
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return fmt.Errorf("writing story %s: %w", story.ID, err)
			}
		}
	}

	for _, item := range doc.Backlog {
		content := generateBacklogFile(&item, name)
		path := filepath.Join(vaultProject, "Backlog", item.ID+".md")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing backlog %s: %w", item.ID, err)
		}
		if item.Theme != "" {
			themes[item.Theme] = true
		}
	}

	// Sorted for deterministic output across runs.
	themeNames := make([]string, 0, len(themes))
	for t := range themes {
		themeNames = append(themeNames, t)
	}
	sort.Strings(themeNames)
	for _, theme := range themeNames {
		content := generateThemeFile(theme, name, doc)
		path := filepath.Join(vaultProject, "Themes", theme+".md")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing theme %s: %w", theme, err)
		}
	}

	dashboard := generateProjectDashboard(name)
	if err := os.WriteFile(filepath.Join(vaultProject, "Dashboard.md"), []byte(dashboard), 0o644); err != nil {
		return fmt.Errorf("writing dashboard: %w", err)
	}

	if project, ok := reg.Lookup(name); ok {
		if n, err := g.syncGuidance(name, project, vaultProject); err != nil {
			fmt.Fprintf(out, "  Warning: guidance sync: %v\n", err)
		} else if n > 0 {
			fmt.Fprintf(out, "  Synced %d guidance files\n", n)
		}
	}

	fmt.Fprintf(out, "  Done: %s\n", vaultProject)
	return nil
}

// syncGuidance copies inherited foundational guidance and repo-sourced
// project guidance into the vault, each wrapped in frontmatter, plus an
// index file.
func (g *Generator) syncGuidance(name string, project registry.Project, vaultProject string) (int, error) {
	guidanceDir := filepath.Join(vaultProject, "Guidance")
	if err := os.MkdirAll(guidanceDir, 0o755); err != nil {
		return 0, err
	}

	synced := 0

	for _, inherited := range project.Guidance.Inherit {
		source := filepath.Join(g.root, "guidance", inherited+".md")
		content, err := os.ReadFile(source)
		if err != nil {
			continue // foundational doc not present, skip
		}
		wrapped := generateGuidanceFile(inherited, string(content), name, "foundational")
		if err := os.WriteFile(filepath.Join(guidanceDir, inherited+".md"), []byte(wrapped), 0o644); err != nil {
			return synced, err
		}
		synced++
	}

	repoPath := expandHome(project.Repo)
	for _, ref := range project.Guidance.Project {
		if ref.Source != "repo" {
			continue
		}
		content, err := os.ReadFile(filepath.Join(repoPath, ref.Path))
		if err != nil {
			continue
		}
		wrapped := generateGuidanceFile(ref.Name, string(content), name, "project")
		if err := os.WriteFile(filepath.Join(guidanceDir, ref.Name+".md"), []byte(wrapped), 0o644); err != nil {
			return synced, err
		}
		synced++
	}

	if synced > 0 {
		index := generateGuidanceIndex(name, project.Guidance)
		if err := os.WriteFile(filepath.Join(guidanceDir, "_index.md"), []byte(index), 0o644); err != nil {
			return synced, err
		}
	}
	return synced, nil
}

// expandHome resolves a leading ~/ against the user's home directory.
func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
		}
	}
	return path
}
