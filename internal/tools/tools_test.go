package tools

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/worksync/worksync/internal/registry"
	"github.com/worksync/worksync/internal/syncsched"
	"github.com/worksync/worksync/internal/workindex"
)

// ─── Test helpers ────────────────────────────────────────────────────────────

type testEnv struct {
	root     string
	registry *registry.Store
	store    workindex.Store
	engine   *workindex.Engine
}

// newTestEnv builds a data root with one registered project ("demo")
// and a bootstrapped work index.
func newTestEnv(t *testing.T) *testEnv {
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

	store := workindex.NewFileStore(root, false)
	if _, err := store.Bootstrap("demo", "test"); err != nil {
		t.Fatal(err)
	}

	return &testEnv{
		root:     root,
		registry: registry.NewStore(root),
		store:    store,
		engine:   workindex.NewEngine(store),
	}
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil || len(r.Content) == 0 {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

// decodeResult unmarshals a JSON tool result into out.
func decodeResult(t *testing.T, r *mcp.CallToolResult, out any) {
	t.Helper()
	if r.IsError {
		t.Fatalf("tool returned error: %s", resultText(r))
	}
	if err := json.Unmarshal([]byte(resultText(r)), out); err != nil {
		t.Fatalf("decoding result: %v\n%s", err, resultText(r))
	}
}

// ─── AddBacklogTool ──────────────────────────────────────────────────────────

func TestAddBacklogTool_Definition(t *testing.T) {
	env := newTestEnv(t)
	tool := NewAddBacklogTool(env.registry, env.engine, nil)
	def := tool.Definition()

	if def.Name != "worksync_add_backlog" {
		t.Errorf("tool name = %q", def.Name)
	}
	props := def.InputSchema.Properties
	for _, p := range []string{"project", "id", "summary", "theme", "status", "related_sprints", "agent"} {
		if _, ok := props[p]; !ok {
			t.Errorf("missing %q parameter", p)
		}
	}
	required := strings.Join(def.InputSchema.Required, ",")
	for _, p := range []string{"project", "id", "summary", "theme"} {
		if !strings.Contains(required, p) {
			t.Errorf("%q should be required", p)
		}
	}
}

func TestAddBacklogTool_CreatesItem(t *testing.T) {
	env := newTestEnv(t)
	tool := NewAddBacklogTool(env.registry, env.engine, nil)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project":         "demo",
		"id":              "pin-deps",
		"summary":         "Pin dependencies",
		"theme":           "security",
		"related_sprints": []any{"auth-sprint-1"},
		"agent":           "claude",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var out struct {
		Created workindex.BacklogItem `json:"created"`
	}
	decodeResult(t, res, &out)
	if out.Created.ID != "pin-deps" || out.Created.Status != workindex.BacklogTodo {
		t.Errorf("created = %+v", out.Created)
	}
	if len(out.Created.RelatedSprints) != 1 || out.Created.RelatedSprints[0] != "auth-sprint-1" {
		t.Errorf("related_sprints = %v", out.Created.RelatedSprints)
	}

	doc, err := env.store.Load("demo")
	if err != nil {
		t.Fatal(err)
	}
	if item, _ := doc.FindBacklog("pin-deps"); item == nil {
		t.Error("item not persisted")
	}
}

func TestAddBacklogTool_UnknownProject(t *testing.T) {
	env := newTestEnv(t)
	tool := NewAddBacklogTool(env.registry, env.engine, nil)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "ghost",
		"id":      "x",
		"summary": "y",
		"theme":   "z",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for unknown project")
	}
	if !strings.Contains(resultText(res), "ghost") {
		t.Errorf("error should name the project: %s", resultText(res))
	}
}

func TestAddBacklogTool_InvalidStatus(t *testing.T) {
	env := newTestEnv(t)
	tool := NewAddBacklogTool(env.registry, env.engine, nil)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo",
		"id":      "x",
		"summary": "y",
		"theme":   "z",
		"status":  "blocked",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for invalid status")
	}
}

func TestAddBacklogTool_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	tool := NewAddBacklogTool(env.registry, env.engine, nil)

	args := map[string]interface{}{
		"project": "demo",
		"id":      "pin-deps",
		"summary": "Pin dependencies",
		"theme":   "security",
	}
	if _, err := tool.Handle(context.Background(), makeReq(args)); err != nil {
		t.Fatal(err)
	}
	res, err := tool.Handle(context.Background(), makeReq(args))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for duplicate id")
	}
}

// ─── UpdateBacklogTool ───────────────────────────────────────────────────────

func TestUpdateBacklogTool_PartialUpdate(t *testing.T) {
	env := newTestEnv(t)
	add := NewAddBacklogTool(env.registry, env.engine, nil)
	update := NewUpdateBacklogTool(env.registry, env.engine, nil)

	if _, err := add.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo", "id": "pin-deps", "summary": "Pin dependencies", "theme": "security",
	})); err != nil {
		t.Fatal(err)
	}

	res, err := update.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo",
		"id":      "pin-deps",
		"status":  "in_progress",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var out struct {
		Updated workindex.BacklogItem `json:"updated"`
	}
	decodeResult(t, res, &out)
	if out.Updated.Status != workindex.BacklogInProgress {
		t.Errorf("status = %s", out.Updated.Status)
	}
	if out.Updated.Summary != "Pin dependencies" {
		t.Errorf("summary changed on partial update: %q", out.Updated.Summary)
	}
}

// ─── Sprint and story tools ──────────────────────────────────────────────────

func TestCreateSprintAndStoryFlow(t *testing.T) {
	env := newTestEnv(t)
	createSprint := NewCreateSprintTool(env.registry, env.engine, nil)
	addStory := NewAddStoryTool(env.registry, env.engine, nil)
	done := NewDoneTool(env.registry, env.engine, nil)

	res, err := createSprint.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo",
		"id":      "auth-sprint-1",
		"title":   "Authentication Sprint",
		"goal":    "Ship token refresh",
		"themes":  []any{"security"},
		"status":  "active",
		"agent":   "claude",
	}))
	if err != nil {
		t.Fatal(err)
	}
	var created struct {
		Created workindex.Sprint `json:"created"`
	}
	decodeResult(t, res, &created)
	if created.Created.File != "AUTH-SPRINT-1.md" {
		t.Errorf("file = %q", created.Created.File)
	}

	res, err = addStory.Handle(context.Background(), makeReq(map[string]interface{}{
		"project":   "demo",
		"sprint_id": "auth-sprint-1",
		"story_id":  "STORY-1",
		"status":    "in_progress",
		"agent":     "claude",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("add_story failed: %s", resultText(res))
	}

	res, err = done.Handle(context.Background(), makeReq(map[string]interface{}{
		"project":  "demo",
		"story_id": "STORY-1",
		"notes":    "JWT rotation shipped",
		"agent":    "codex",
	}))
	if err != nil {
		t.Fatal(err)
	}
	var doneOut workindex.DoneResult
	decodeResult(t, res, &doneOut)
	if doneOut.Story.Status != workindex.StoryDone {
		t.Errorf("story status = %s", doneOut.Story.Status)
	}
	if doneOut.SprintID != "auth-sprint-1" {
		t.Errorf("sprint = %s", doneOut.SprintID)
	}
	if !strings.Contains(doneOut.Entry.Summary, "Completed STORY-1") {
		t.Errorf("history summary = %q", doneOut.Entry.Summary)
	}
}

// ─── HistoryTool ─────────────────────────────────────────────────────────────

func TestHistoryTool_ListAndAdd(t *testing.T) {
	env := newTestEnv(t)
	tool := NewHistoryTool(env.registry, env.engine, nil)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo",
	}))
	if err != nil {
		t.Fatal(err)
	}
	var listed struct {
		History []workindex.HistoryEntry `json:"history"`
	}
	decodeResult(t, res, &listed)
	if len(listed.History) != 1 {
		t.Fatalf("bootstrap history missing: %v", listed.History)
	}

	res, err = tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo",
		"action":  "add",
		"summary": "Kicked off sprint planning",
	}))
	if err != nil {
		t.Fatal(err)
	}
	var added struct {
		Created workindex.HistoryEntry `json:"created"`
	}
	decodeResult(t, res, &added)
	if added.Created.Summary != "Kicked off sprint planning" {
		t.Errorf("created = %+v", added.Created)
	}
}

func TestHistoryTool_AddRequiresSummary(t *testing.T) {
	env := newTestEnv(t)
	tool := NewHistoryTool(env.registry, env.engine, nil)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo",
		"action":  "add",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected tool error when summary is missing")
	}
}

// ─── StatusTool ──────────────────────────────────────────────────────────────

func TestStatusTool_SingleProject(t *testing.T) {
	env := newTestEnv(t)
	tool := NewStatusTool(env.registry, env.engine)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo",
	}))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Projects map[string]workindex.ProjectStatus `json:"projects"`
	}
	decodeResult(t, res, &out)
	status, ok := out.Projects["demo"]
	if !ok {
		t.Fatalf("demo missing from status: %s", resultText(res))
	}
	if status.Stats.Total != 0 {
		t.Errorf("stats = %+v", status.Stats)
	}
}

func TestStatusTool_UnknownProject(t *testing.T) {
	env := newTestEnv(t)
	tool := NewStatusTool(env.registry, env.engine)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "ghost",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for unknown project")
	}
}

// ─── ProjectsTool ────────────────────────────────────────────────────────────

func TestProjectsTool_ListsAll(t *testing.T) {
	env := newTestEnv(t)
	tool := NewProjectsTool(env.registry)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{}))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Projects map[string]registry.Project `json:"projects"`
	}
	decodeResult(t, res, &out)
	if _, ok := out.Projects["demo"]; !ok {
		t.Errorf("demo missing: %s", resultText(res))
	}
}

// ─── RegisterProjectTool ─────────────────────────────────────────────────────

func TestRegisterProjectTool_CreatesEverything(t *testing.T) {
	env := newTestEnv(t)
	tool := NewRegisterProjectTool(env.root, env.registry, env.store, nil)

	repo := t.TempDir()
	if err := os.WriteFile(filepath.Join(repo, "go.mod"), []byte("module example.com/svc\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"name":        "new-service",
		"repo":        repo,
		"description": "A new service",
		"agent":       "claude",
	}))
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	var out struct {
		Registered      string   `json:"registered"`
		GuidanceInherit []string `json:"guidance_inherit"`
		WorkIndex       string   `json:"work_index"`
	}
	decodeResult(t, res, &out)
	if out.Registered != "new-service" {
		t.Errorf("registered = %q", out.Registered)
	}
	want := []string{"general", "golang", "ai-collaboration"}
	if len(out.GuidanceInherit) != len(want) {
		t.Fatalf("inherit = %v, want %v", out.GuidanceInherit, want)
	}
	for i := range want {
		if out.GuidanceInherit[i] != want[i] {
			t.Errorf("inherit[%d] = %q, want %q", i, out.GuidanceInherit[i], want[i])
		}
	}

	if _, err := os.Stat(out.WorkIndex); err != nil {
		t.Errorf("work index not created: %v", err)
	}
	for _, subdir := range projectSubdirs {
		if !dirExists(filepath.Join(env.root, workindex.ProjectsDir, "new-service", subdir)) {
			t.Errorf("subdir %s missing", subdir)
		}
	}

	reg, err := env.registry.Load()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Lookup("new-service"); !ok {
		t.Error("project not in registry after register")
	}
}

func TestRegisterProjectTool_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	tool := NewRegisterProjectTool(env.root, env.registry, env.store, nil)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"name": "demo",
		"repo": "/tmp/demo",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for already-registered project")
	}
}

// ─── UnregisterProjectTool ───────────────────────────────────────────────────

func TestUnregisterProjectTool_RemovesConfigKeepsData(t *testing.T) {
	env := newTestEnv(t)
	tool := NewUnregisterProjectTool(env.root, env.registry, nil)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"name": "demo",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unregister failed: %s", resultText(res))
	}

	reg, err := env.registry.Load()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := reg.Lookup("demo"); ok {
		t.Error("demo still in registry")
	}
	if !dirExists(filepath.Join(env.root, workindex.ProjectsDir, "demo")) {
		t.Error("data directory should survive without delete_data")
	}
}

func TestUnregisterProjectTool_DeleteData(t *testing.T) {
	env := newTestEnv(t)
	tool := NewUnregisterProjectTool(env.root, env.registry, nil)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"name":        "demo",
		"delete_data": true,
	}))
	if err != nil {
		t.Fatal(err)
	}
	if res.IsError {
		t.Fatalf("unregister failed: %s", resultText(res))
	}
	if dirExists(filepath.Join(env.root, workindex.ProjectsDir, "demo")) {
		t.Error("data directory should be deleted")
	}
}

func TestUnregisterProjectTool_NotFound(t *testing.T) {
	env := newTestEnv(t)
	tool := NewUnregisterProjectTool(env.root, env.registry, nil)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"name": "ghost",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for unknown project")
	}
}

// ─── GuidanceTool ────────────────────────────────────────────────────────────

func TestGuidanceTool_ReturnsInherited(t *testing.T) {
	env := newTestEnv(t)
	if err := os.MkdirAll(filepath.Join(env.root, "guidance"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(env.root, "guidance", "general.md"), []byte("# General\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	tool := NewGuidanceTool(env.root, env.registry)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo",
	}))
	if err != nil {
		t.Fatal(err)
	}
	var out struct {
		Guidance map[string]string `json:"guidance"`
	}
	decodeResult(t, res, &out)
	if !strings.Contains(out.Guidance["general"], "# General") {
		t.Errorf("guidance = %v", out.Guidance)
	}
}

func TestGuidanceTool_UnknownTopic(t *testing.T) {
	env := newTestEnv(t)
	tool := NewGuidanceTool(env.root, env.registry)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo",
		"topic":   "erlang",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for unknown topic")
	}
}

// ─── SyncTool ────────────────────────────────────────────────────────────────

type fakeRunner struct {
	project string
	result  syncsched.Result
}

func (f *fakeRunner) Run(ctx context.Context, project string) syncsched.Result {
	f.project = project
	return f.result
}

func TestSyncTool_RunsImmediately(t *testing.T) {
	env := newTestEnv(t)
	runner := &fakeRunner{result: syncsched.Result{
		RunID:   "abc123",
		Project: "demo",
		Status:  syncsched.StatusSuccess,
		Output:  "synced",
	}}
	tool := NewSyncTool(env.registry, runner)

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "demo",
	}))
	if err != nil {
		t.Fatal(err)
	}
	var out syncsched.Result
	decodeResult(t, res, &out)
	if out.Status != syncsched.StatusSuccess || runner.project != "demo" {
		t.Errorf("result = %+v, runner project = %q", out, runner.project)
	}
}

func TestSyncTool_UnknownProject(t *testing.T) {
	env := newTestEnv(t)
	tool := NewSyncTool(env.registry, &fakeRunner{})

	res, err := tool.Handle(context.Background(), makeReq(map[string]interface{}{
		"project": "ghost",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for unknown project")
	}
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func TestStringSliceArg(t *testing.T) {
	req := makeReq(map[string]interface{}{
		"themes":  []any{"security", "devops"},
		"bad":     []any{"ok", 42},
		"notlist": "security",
	})

	got, ok, err := stringSliceArg(req, "themes")
	if err != nil || !ok || len(got) != 2 || got[0] != "security" {
		t.Errorf("themes = %v, %v, %v", got, ok, err)
	}
	if _, ok, err := stringSliceArg(req, "missing"); ok || err != nil {
		t.Errorf("missing key: ok=%v err=%v, want absent without error", ok, err)
	}
	if _, ok, err := stringSliceArg(req, "bad"); !ok || err == nil {
		t.Errorf("mixed-type array: ok=%v err=%v, want present with error", ok, err)
	}
	if _, ok, err := stringSliceArg(req, "notlist"); !ok || err == nil {
		t.Errorf("non-array value: ok=%v err=%v, want present with error", ok, err)
	}
}

func TestAddBacklogTool_MalformedRelatedSprints(t *testing.T) {
	env := newTestEnv(t)
	tool := NewAddBacklogTool(env.registry, env.engine, nil)

	req := makeReq(map[string]interface{}{
		"project":         "demo",
		"id":              "pin-deps",
		"summary":         "Pin dependencies",
		"theme":           "security",
		"related_sprints": []any{"auth-sprint-1", 7},
	})
	res, err := tool.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if !res.IsError {
		t.Fatal("expected tool error for malformed related_sprints")
	}
	if msg := resultText(res); !strings.Contains(msg, "related_sprints") {
		t.Errorf("error does not name the bad argument: %q", msg)
	}

	// Nothing was committed.
	doc, loadErr := env.store.Load("demo")
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if item, _ := doc.FindBacklog("pin-deps"); item != nil {
		t.Error("malformed request still created the backlog item")
	}
}
