// Package workindex owns the canonical work-index.yaml document for each
// project: its typed schema, the order-preserving YAML encoding, the
// atomic file store with external-edit detection, and the mutation
// operations that the MCP tools delegate to.
//
// The package follows the same split as the rest of the server:
// - types, codec, store, and engine in separate files
// - Store is an interface; tools and the engine depend on the abstraction
// - all enum validation happens here, before anything touches disk
package workindex

import (
	"errors"
	"fmt"
)

// --- Error taxonomy ---
//
// Sentinels so callers can classify failures with errors.Is. Tools map
// these to user-facing error results; anything else is an internal error.

var (
	// ErrNotFound covers a missing project, document, or entity.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a create supplies a duplicate id.
	ErrConflict = errors.New("already exists")
	// ErrInvalidValue is returned for a status outside its enumerated set.
	ErrInvalidValue = errors.New("invalid value")
	// ErrCorrupt is returned when an on-disk document fails to parse.
	ErrCorrupt = errors.New("document corrupt")
)

// --- Sprint status enum ---

// SprintStatus is the lifecycle state of a sprint.
type SprintStatus string

const (
	SprintPlanned   SprintStatus = "planned"
	SprintActive    SprintStatus = "active"
	SprintReference SprintStatus = "reference"
	SprintCompleted SprintStatus = "completed"
)

var validSprintStatuses = map[SprintStatus]bool{
	SprintPlanned:   true,
	SprintActive:    true,
	SprintReference: true,
	SprintCompleted: true,
}

// ValidateSprintStatus returns ErrInvalidValue if the status is not recognized.
func ValidateSprintStatus(s SprintStatus) error {
	if !validSprintStatuses[s] {
		return fmt.Errorf("%w: sprint status %q (must be one of: planned, active, reference, completed)", ErrInvalidValue, s)
	}
	return nil
}

// --- Story status enum ---

// StoryStatus is the lifecycle state of a story within a sprint.
type StoryStatus string

const (
	StoryPlanned    StoryStatus = "planned"
	StoryInProgress StoryStatus = "in_progress"
	StoryDone       StoryStatus = "done"
)

var validStoryStatuses = map[StoryStatus]bool{
	StoryPlanned:    true,
	StoryInProgress: true,
	StoryDone:       true,
}

// ValidateStoryStatus returns ErrInvalidValue if the status is not recognized.
func ValidateStoryStatus(s StoryStatus) error {
	if !validStoryStatuses[s] {
		return fmt.Errorf("%w: story status %q (must be one of: planned, in_progress, done)", ErrInvalidValue, s)
	}
	return nil
}

// --- Backlog status enum ---

// BacklogStatus is the lifecycle state of a backlog item.
type BacklogStatus string

const (
	BacklogTodo       BacklogStatus = "todo"
	BacklogInProgress BacklogStatus = "in_progress"
	BacklogDone       BacklogStatus = "done"
)

var validBacklogStatuses = map[BacklogStatus]bool{
	BacklogTodo:       true,
	BacklogInProgress: true,
	BacklogDone:       true,
}

// ValidateBacklogStatus returns ErrInvalidValue if the status is not recognized.
func ValidateBacklogStatus(s BacklogStatus) error {
	if !validBacklogStatuses[s] {
		return fmt.Errorf("%w: backlog status %q (must be one of: todo, in_progress, done)", ErrInvalidValue, s)
	}
	return nil
}

// --- Core data structures ---
//
// Field order in these structs is load-bearing: yaml.v3 emits struct
// fields in declaration order, and the on-disk format is hand-edited and
// diffed by humans, so declaration order is the canonical key order.

// Story is a unit of work within a sprint. IDs are unique within the
// owning sprint and immutable once created.
type Story struct {
	ID     string      `yaml:"id" json:"id"`
	Status StoryStatus `yaml:"status" json:"status"`
	Notes  string      `yaml:"notes,omitempty" json:"notes,omitempty"`
}

// Sprint is a work iteration. IDs are unique within the document and
// immutable once created. File points at the sprint's companion doc and
// is derived from the ID at creation time.
type Sprint struct {
	ID      string       `yaml:"id" json:"id"`
	Title   string       `yaml:"title" json:"title"`
	File    string       `yaml:"file,omitempty" json:"file,omitempty"`
	Status  SprintStatus `yaml:"status" json:"status"`
	Goal    string       `yaml:"goal" json:"goal"`
	Themes  []string     `yaml:"themes" json:"themes"`
	Stories []Story      `yaml:"stories" json:"stories"`
}

// BacklogItem is an unscheduled piece of work. RelatedSprints holds soft
// references to sprint IDs; existence is not validated.
type BacklogItem struct {
	ID             string        `yaml:"id" json:"id"`
	Theme          string        `yaml:"theme" json:"theme"`
	Summary        string        `yaml:"summary" json:"summary"`
	Status         BacklogStatus `yaml:"status" json:"status"`
	RelatedSprints []string      `yaml:"related_sprints" json:"related_sprints"`
}

// HistoryEntry is one line of the append-only project log. Date is set
// at creation and never edited.
type HistoryEntry struct {
	Date           string   `yaml:"date" json:"date"`
	Summary        string   `yaml:"summary" json:"summary"`
	RelatedSprints []string `yaml:"related_sprints,omitempty" json:"related_sprints,omitempty"`
}

// Document is the canonical per-project record: sprints, backlog, and
// history, persisted as work-index.yaml. Top-level key order is fixed.
type Document struct {
	Sprints []Sprint       `yaml:"sprints" json:"sprints"`
	Backlog []BacklogItem  `yaml:"backlog" json:"backlog"`
	History []HistoryEntry `yaml:"history" json:"history"`
}

// FindSprint returns the sprint with the given id, or nil.
func (d *Document) FindSprint(id string) *Sprint {
	for i := range d.Sprints {
		if d.Sprints[i].ID == id {
			return &d.Sprints[i]
		}
	}
	return nil
}

// FindBacklog returns the backlog item with the given id and its index,
// or nil and -1.
func (d *Document) FindBacklog(id string) (*BacklogItem, int) {
	for i := range d.Backlog {
		if d.Backlog[i].ID == id {
			return &d.Backlog[i], i
		}
	}
	return nil, -1
}

// FindStory returns the story with the given id within the sprint, or nil.
func (s *Sprint) FindStory(id string) *Story {
	for i := range s.Stories {
		if s.Stories[i].ID == id {
			return &s.Stories[i]
		}
	}
	return nil
}
