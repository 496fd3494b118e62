package vault

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/workindex"
)

// setupDataRoot builds a data root with one registered project and a
// populated work index.
func setupDataRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	config := `vault_path: ./vault
projects:
  demo:
    repo: /nonexistent/demo
    description: Demo project
    guidance:
      inherit:
        - general
`
	if err := os.WriteFile(filepath.Join(root, registry.ConfigFile), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := os.MkdirAll(filepath.Join(root, workindex.ProjectsDir, "demo"), 0o755); err != nil {
		t.Fatal(err)
	}
	fs := workindex.NewFileStore(root, false)
	doc := &workindex.Document{
		Sprints: []workindex.Sprint{
			{
				ID:     "auth-sprint-1",
				Title:  "Authentication Sprint",
				File:   "AUTH-SPRINT-1.md",
				Status: workindex.SprintActive,
				Goal:   "Ship token refresh",
				Themes: []string{"security"},
				Stories: []workindex.Story{
					{ID: "STORY-1", Status: workindex.StoryInProgress, Notes: "JWT rotation\nwith long notes"},
				},
			},
		},
		Backlog: []workindex.BacklogItem{
			{ID: "pin-deps", Theme: "security", Summary: "Pin dependencies", Status: workindex.BacklogTodo, RelatedSprints: []string{"auth-sprint-1"}},
		},
		History: []workindex.HistoryEntry{
			{Date: "2026-08-01", Summary: "Registered demo in WorkSync."},
		},
	}
	if err := fs.Save("demo", doc, "test"); err != nil {
		t.Fatal(err)
	}

	// One foundational guidance doc.
	if err := os.MkdirAll(filepath.Join(root, "guidance"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "guidance", "general.md"), []byte("# General\nKeep it simple.\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	return root
}

func readVaultFile(t *testing.T, root string, parts ...string) string {
	t.Helper()
	path := filepath.Join(append([]string{root, "vault"}, parts...)...)
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(content)
}

func TestRun_GeneratesProjectArtifacts(t *testing.T) {
	root := setupDataRoot(t)
	g := New(root)

	var out bytes.Buffer
	if err := g.Run("demo", &out); err != nil {
		t.Fatalf("Run: %v\n%s", err, out.String())
	}

	sprint := readVaultFile(t, root, "projects", "demo", "Sprints", "auth-sprint-1.md")
	if !strings.Contains(sprint, "# Authentication Sprint") {
		t.Errorf("sprint file missing title:\n%s", sprint)
	}
	if !strings.Contains(sprint, "[[STORY-1]]") {
		t.Errorf("sprint file missing story wiki-link:\n%s", sprint)
	}
	if !strings.Contains(sprint, "type: sprint") || !strings.Contains(sprint, "status: active") {
		t.Errorf("sprint frontmatter incomplete:\n%s", sprint)
	}

	story := readVaultFile(t, root, "projects", "demo", "Stories", "STORY-1.md")
	if !strings.Contains(story, "**Sprint:** [[auth-sprint-1]]") {
		t.Errorf("story file missing sprint link:\n%s", story)
	}
	if !strings.Contains(story, "JWT rotation") {
		t.Errorf("story file missing notes:\n%s", story)
	}

	backlog := readVaultFile(t, root, "projects", "demo", "Backlog", "pin-deps.md")
	if !strings.Contains(backlog, "**Related Sprints:** [[auth-sprint-1]]") {
		t.Errorf("backlog file missing related sprints:\n%s", backlog)
	}

	theme := readVaultFile(t, root, "projects", "demo", "Themes", "security.md")
	if !strings.Contains(theme, "- [[auth-sprint-1]] (active)") {
		t.Errorf("theme file missing sprint listing:\n%s", theme)
	}
	if !strings.Contains(theme, "- [[pin-deps]] (todo)") {
		t.Errorf("theme file missing backlog listing:\n%s", theme)
	}

	dashboard := readVaultFile(t, root, "projects", "demo", "Dashboard.md")
	if !strings.Contains(dashboard, "```dataview") {
		t.Errorf("dashboard missing dataview blocks:\n%s", dashboard)
	}

	guidance := readVaultFile(t, root, "projects", "demo", "Guidance", "general.md")
	if !strings.Contains(guidance, "source: foundational") || !strings.Contains(guidance, "Keep it simple.") {
		t.Errorf("guidance file not wrapped:\n%s", guidance)
	}
	index := readVaultFile(t, root, "projects", "demo", "Guidance", "_index.md")
	if !strings.Contains(index, "- [[general]]") {
		t.Errorf("guidance index missing entry:\n%s", index)
	}
}

func TestRun_AllGeneratesGlobalDashboard(t *testing.T) {
	root := setupDataRoot(t)
	g := New(root)

	var out bytes.Buffer
	if err := g.Run("", &out); err != nil {
		t.Fatalf("Run: %v\n%s", err, out.String())
	}

	global := readVaultFile(t, root, "Global Dashboard.md")
	if !strings.Contains(global, "[[demo Dashboard|demo]]") {
		t.Errorf("global dashboard missing project entry:\n%s", global)
	}
}

func TestRun_SingleProjectRefreshesGlobalDashboard(t *testing.T) {
	root := setupDataRoot(t)
	g := New(root)

	var out bytes.Buffer
	if err := g.Run("", &out); err != nil {
		t.Fatalf("initial Run: %v\n%s", err, out.String())
	}

	// Register a second project after the full sync, then sync only
	// that project. The dashboard must pick it up without a full run.
	config := `vault_path: ./vault
projects:
  demo:
    repo: /nonexistent/demo
    description: Demo project
    guidance:
      inherit:
        - general
  beta:
    repo: /nonexistent/beta
    description: Beta project
    guidance:
      inherit:
        - general
`
	if err := os.WriteFile(filepath.Join(root, registry.ConfigFile), []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(root, workindex.ProjectsDir, "beta"), 0o755); err != nil {
		t.Fatal(err)
	}
	fs := workindex.NewFileStore(root, false)
	if _, err := fs.Bootstrap("beta", "test"); err != nil {
		t.Fatal(err)
	}

	if err := g.Run("beta", &out); err != nil {
		t.Fatalf("Run beta: %v\n%s", err, out.String())
	}

	global := readVaultFile(t, root, "Global Dashboard.md")
	if !strings.Contains(global, "[[beta Dashboard|beta]]") {
		t.Errorf("global dashboard not refreshed by single-project run:\n%s", global)
	}
	if !strings.Contains(global, "[[demo Dashboard|demo]]") {
		t.Errorf("global dashboard lost existing project:\n%s", global)
	}
}

func TestRun_UnknownProject(t *testing.T) {
	root := setupDataRoot(t)
	g := New(root)

	var out bytes.Buffer
	if err := g.Run("ghost", &out); err == nil {
		t.Fatal("expected error for unregistered project")
	}
}

func TestRun_Idempotent(t *testing.T) {
	root := setupDataRoot(t)
	g := New(root)

	old := timeNow
	timeNow = func() time.Time { return time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC) }
	defer func() { timeNow = old }()

	var out bytes.Buffer
	if err := g.Run("", &out); err != nil {
		t.Fatalf("first Run: %v", err)
	}
	first := readVaultFile(t, root, "projects", "demo", "Sprints", "auth-sprint-1.md")
	firstDash := readVaultFile(t, root, "projects", "demo", "Dashboard.md")

	if err := g.Run("", &out); err != nil {
		t.Fatalf("second Run: %v", err)
	}
	second := readVaultFile(t, root, "projects", "demo", "Sprints", "auth-sprint-1.md")
	secondDash := readVaultFile(t, root, "projects", "demo", "Dashboard.md")

	if first != second || firstDash != secondDash {
		t.Error("regenerating an unchanged document produced different output")
	}
}

func TestTruncateNotes(t *testing.T) {
	long := strings.Repeat("x", 60)
	got := truncateNotes(long)
	if len(got) != 53 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncateNotes = %q (len %d)", got, len(got))
	}
	if got := truncateNotes("line1\nline2"); got != "line1 line2" {
		t.Errorf("newlines not collapsed: %q", got)
	}

	// Multi-byte runes stay intact at the cut.
	wide := strings.Repeat("é", 60)
	got = truncateNotes(wide)
	if got != strings.Repeat("é", 50)+"..." {
		t.Errorf("rune truncation = %q", got)
	}
	if !utf8.ValidString(got) {
		t.Errorf("truncated notes are not valid UTF-8: %q", got)
	}
}
