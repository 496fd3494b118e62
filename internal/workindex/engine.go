package workindex

import (
	"fmt"
	"strings"
)

// dateLayout is how history entries record their date.
const dateLayout = "2006-01-02"

// Engine applies validated mutations to a project's document. Every
// operation follows the same skeleton: load a fresh document from the
// store, locate the target entity, validate enumerated fields, apply
// only the fields the caller supplied, and commit. If the commit fails
// the in-memory change is discarded and the prior on-disk state stands.
type Engine struct {
	store Store
}

// NewEngine creates an Engine backed by the given store.
func NewEngine(store Store) *Engine {
	return &Engine{store: store}
}

// --- Backlog ---

// AddBacklogParams holds the input for creating a backlog item.
type AddBacklogParams struct {
	ID             string
	Summary        string
	Theme          string
	Status         BacklogStatus
	RelatedSprints []string
}

// AddBacklog appends a new backlog item. The id must be unique within
// the document's backlog.
func (e *Engine) AddBacklog(project, agent string, p AddBacklogParams) (*BacklogItem, error) {
	if err := ValidateBacklogStatus(p.Status); err != nil {
		return nil, err
	}

	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}

	if existing, _ := doc.FindBacklog(p.ID); existing != nil {
		return nil, fmt.Errorf("%w: backlog item %q", ErrConflict, p.ID)
	}

	related := p.RelatedSprints
	if related == nil {
		related = []string{}
	}
	item := BacklogItem{
		ID:             p.ID,
		Theme:          p.Theme,
		Summary:        p.Summary,
		Status:         p.Status,
		RelatedSprints: related,
	}
	doc.Backlog = append(doc.Backlog, item)

	if err := e.store.Save(project, doc, agent); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateBacklogParams holds partial update fields for a backlog item.
// Nil fields are left untouched.
type UpdateBacklogParams struct {
	Status         *BacklogStatus
	Summary        *string
	Theme          *string
	RelatedSprints []string // replaces the existing list when non-nil
}

// UpdateBacklog applies a partial update to a backlog item.
func (e *Engine) UpdateBacklog(project, agent, id string, p UpdateBacklogParams) (*BacklogItem, error) {
	if p.Status != nil {
		if err := ValidateBacklogStatus(*p.Status); err != nil {
			return nil, err
		}
	}

	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}

	item, _ := doc.FindBacklog(id)
	if item == nil {
		return nil, fmt.Errorf("%w: backlog item %q", ErrNotFound, id)
	}

	if p.Status != nil {
		item.Status = *p.Status
	}
	if p.Summary != nil {
		item.Summary = *p.Summary
	}
	if p.Theme != nil {
		item.Theme = *p.Theme
	}
	if p.RelatedSprints != nil {
		item.RelatedSprints = p.RelatedSprints
	}

	if err := e.store.Save(project, doc, agent); err != nil {
		return nil, err
	}
	updated := *item
	return &updated, nil
}

// RemoveBacklog deletes a backlog item by id and returns the removed
// item for confirmation.
func (e *Engine) RemoveBacklog(project, agent, id string) (*BacklogItem, error) {
	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}

	item, idx := doc.FindBacklog(id)
	if item == nil {
		return nil, fmt.Errorf("%w: backlog item %q", ErrNotFound, id)
	}
	removed := *item
	doc.Backlog = append(doc.Backlog[:idx], doc.Backlog[idx+1:]...)

	if err := e.store.Save(project, doc, agent); err != nil {
		return nil, err
	}
	return &removed, nil
}

// --- Sprints ---

// CreateSprintParams holds the input for creating a sprint.
type CreateSprintParams struct {
	ID     string
	Title  string
	Goal   string
	Themes []string
	Status SprintStatus
}

// CreateSprint appends a new sprint. The id must be unique within the
// document. The sprint's companion file name is derived from the id.
func (e *Engine) CreateSprint(project, agent string, p CreateSprintParams) (*Sprint, error) {
	if err := ValidateSprintStatus(p.Status); err != nil {
		return nil, err
	}

	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}

	if doc.FindSprint(p.ID) != nil {
		return nil, fmt.Errorf("%w: sprint %q", ErrConflict, p.ID)
	}

	themes := p.Themes
	if themes == nil {
		themes = []string{}
	}
	sprint := Sprint{
		ID:      p.ID,
		Title:   p.Title,
		File:    strings.ToUpper(p.ID) + ".md",
		Status:  p.Status,
		Goal:    p.Goal,
		Themes:  themes,
		Stories: []Story{},
	}
	doc.Sprints = append(doc.Sprints, sprint)

	if err := e.store.Save(project, doc, agent); err != nil {
		return nil, err
	}
	return &sprint, nil
}

// UpdateSprintParams holds partial update fields for a sprint.
type UpdateSprintParams struct {
	Status *SprintStatus
	Title  *string
	Goal   *string
	Themes []string // replaces the existing list when non-nil
}

// UpdateSprint applies a partial update to a sprint.
func (e *Engine) UpdateSprint(project, agent, id string, p UpdateSprintParams) (*Sprint, error) {
	if p.Status != nil {
		if err := ValidateSprintStatus(*p.Status); err != nil {
			return nil, err
		}
	}

	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}

	sprint := doc.FindSprint(id)
	if sprint == nil {
		return nil, fmt.Errorf("%w: sprint %q", ErrNotFound, id)
	}

	if p.Status != nil {
		sprint.Status = *p.Status
	}
	if p.Title != nil {
		sprint.Title = *p.Title
	}
	if p.Goal != nil {
		sprint.Goal = *p.Goal
	}
	if p.Themes != nil {
		sprint.Themes = p.Themes
	}

	if err := e.store.Save(project, doc, agent); err != nil {
		return nil, err
	}
	updated := *sprint
	return &updated, nil
}

// --- Stories ---

// AddStoryParams holds the input for adding a story to a sprint.
type AddStoryParams struct {
	SprintID string
	StoryID  string
	Status   StoryStatus
	Notes    string
}

// AddStory appends a story to a sprint. The story id must be unique
// within that sprint.
func (e *Engine) AddStory(project, agent string, p AddStoryParams) (*Story, error) {
	if err := ValidateStoryStatus(p.Status); err != nil {
		return nil, err
	}

	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}

	sprint := doc.FindSprint(p.SprintID)
	if sprint == nil {
		return nil, fmt.Errorf("%w: sprint %q", ErrNotFound, p.SprintID)
	}
	if sprint.FindStory(p.StoryID) != nil {
		return nil, fmt.Errorf("%w: story %q in sprint %q", ErrConflict, p.StoryID, p.SprintID)
	}

	story := Story{ID: p.StoryID, Status: p.Status, Notes: p.Notes}
	sprint.Stories = append(sprint.Stories, story)

	if err := e.store.Save(project, doc, agent); err != nil {
		return nil, err
	}
	return &story, nil
}

// UpdateStoryParams holds partial update fields for a story.
type UpdateStoryParams struct {
	Status *StoryStatus
	Notes  *string
}

// UpdateStory applies a partial update to a story within a sprint.
func (e *Engine) UpdateStory(project, agent, sprintID, storyID string, p UpdateStoryParams) (*Story, error) {
	if p.Status != nil {
		if err := ValidateStoryStatus(*p.Status); err != nil {
			return nil, err
		}
	}

	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}

	sprint := doc.FindSprint(sprintID)
	if sprint == nil {
		return nil, fmt.Errorf("%w: sprint %q", ErrNotFound, sprintID)
	}
	story := sprint.FindStory(storyID)
	if story == nil {
		return nil, fmt.Errorf("%w: story %q in sprint %q", ErrNotFound, storyID, sprintID)
	}

	if p.Status != nil {
		story.Status = *p.Status
	}
	if p.Notes != nil {
		story.Notes = *p.Notes
	}

	if err := e.store.Save(project, doc, agent); err != nil {
		return nil, err
	}
	updated := *story
	return &updated, nil
}

// --- Done (composite) ---

// DoneResult is the output of marking a story done: the updated story,
// the sprint it was found in, and the history entry appended alongside.
type DoneResult struct {
	Story    Story        `json:"updated_story"`
	SprintID string       `json:"sprint"`
	Entry    HistoryEntry `json:"history_entry"`
}

// MarkDone sets a story's status to done and appends a history entry
// recording the completion. Both land in the same commit, never split
// across two saves. If sprintID is empty, all sprints are searched.
func (e *Engine) MarkDone(project, agent, storyID, notes, sprintID string) (*DoneResult, error) {
	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}

	var foundSprint *Sprint
	var foundStory *Story
	for i := range doc.Sprints {
		sprint := &doc.Sprints[i]
		if sprintID != "" && sprint.ID != sprintID {
			continue
		}
		if story := sprint.FindStory(storyID); story != nil {
			foundSprint = sprint
			foundStory = story
			break
		}
	}
	if foundStory == nil {
		scope := "any sprint"
		if sprintID != "" {
			scope = fmt.Sprintf("sprint %q", sprintID)
		}
		return nil, fmt.Errorf("%w: story %q in %s", ErrNotFound, storyID, scope)
	}

	foundStory.Status = StoryDone
	if notes != "" {
		foundStory.Notes = notes
	}

	summary := fmt.Sprintf("Completed %s", storyID)
	if strings.TrimSpace(notes) != "" {
		summary = fmt.Sprintf("Completed %s: %s", storyID, notes)
	}
	entry := HistoryEntry{
		Date:           timeNow().UTC().Format(dateLayout),
		Summary:        summary,
		RelatedSprints: []string{foundSprint.ID},
	}
	doc.History = append(doc.History, entry)

	if err := e.store.Save(project, doc, agent); err != nil {
		return nil, err
	}
	return &DoneResult{Story: *foundStory, SprintID: foundSprint.ID, Entry: entry}, nil
}

// --- History ---

// History returns a project's full history, oldest first.
func (e *Engine) History(project string) ([]HistoryEntry, error) {
	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}
	return doc.History, nil
}

// AppendHistory appends a new history entry. History is append-only:
// there is no operation that edits or removes a past entry.
func (e *Engine) AppendHistory(project, agent, summary string, relatedSprints []string) (*HistoryEntry, error) {
	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}

	entry := HistoryEntry{
		Date:           timeNow().UTC().Format(dateLayout),
		Summary:        summary,
		RelatedSprints: relatedSprints,
	}
	doc.History = append(doc.History, entry)

	if err := e.store.Save(project, doc, agent); err != nil {
		return nil, err
	}
	return &entry, nil
}

// --- Status (read-side aggregation) ---

// StoryRef is a story annotated with its owning sprint.
type StoryRef struct {
	Story
	Sprint string `json:"sprint"`
}

// BacklogStats counts backlog items by status.
type BacklogStats struct {
	Total      int `json:"total_backlog"`
	Todo       int `json:"todo"`
	InProgress int `json:"in_progress"`
	Done       int `json:"done"`
}

// ProjectStatus is the aggregated view of a project's in-flight work.
type ProjectStatus struct {
	ActiveSprints     []Sprint      `json:"sprints"`
	InProgressStories []StoryRef    `json:"in_progress_stories"`
	InProgressBacklog []BacklogItem `json:"in_progress_backlog"`
	Stats             BacklogStats  `json:"stats"`
}

// Status aggregates active sprints, in-progress stories and backlog
// items, and backlog counts for a project.
func (e *Engine) Status(project string) (*ProjectStatus, error) {
	doc, err := e.store.Load(project)
	if err != nil {
		return nil, err
	}

	status := &ProjectStatus{
		ActiveSprints:     []Sprint{},
		InProgressStories: []StoryRef{},
		InProgressBacklog: []BacklogItem{},
	}

	for _, sprint := range doc.Sprints {
		if sprint.Status == SprintActive {
			status.ActiveSprints = append(status.ActiveSprints, sprint)
		}
		for _, story := range sprint.Stories {
			if story.Status == StoryInProgress {
				status.InProgressStories = append(status.InProgressStories, StoryRef{Story: story, Sprint: sprint.ID})
			}
		}
	}

	for _, item := range doc.Backlog {
		status.Stats.Total++
		switch item.Status {
		case BacklogTodo:
			status.Stats.Todo++
		case BacklogInProgress:
			status.Stats.InProgress++
			status.InProgressBacklog = append(status.InProgressBacklog, item)
		case BacklogDone:
			status.Stats.Done++
		}
	}

	return status, nil
}
