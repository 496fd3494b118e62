package workindex

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	// ProjectsDir is the subdirectory under the data root where project
	// directories live.
	ProjectsDir = "projects"
	// IndexFile is the filename of the canonical document.
	IndexFile = "work-index.yaml"
)

// timeNow is a package-level var to allow test injection.
var timeNow = time.Now

// Notifier receives a signal after every successful commit. The store
// never waits on it; regeneration is strictly downstream.
type Notifier interface {
	Notify(project string)
}

// Store defines the persistence interface for work-index documents.
// Abstracted for testability (DIP).
type Store interface {
	Load(project string) (*Document, error)
	Save(project string, doc *Document, agent string) error
	Bootstrap(project, agent string) (*Document, error)
	DocumentPath(project string) string
}

// FileStore implements Store on the local filesystem. It is the sole
// owner of on-disk document state: all commits pass through a single
// process-wide mutex covering the temp-write, validate, and rename
// sequence, and the mtime cache tracks the store's own writes so they
// are never mistaken for external edits.
type FileStore struct {
	root     string
	notifier Notifier
	autoSync bool

	writeMu sync.Mutex // serializes all commits, across projects

	mtimeMu sync.Mutex
	mtimes  map[string]time.Time
}

// NewFileStore creates a document store rooted at the given data
// directory. autoSync controls whether commits notify the regeneration
// scheduler (set later via SetNotifier).
func NewFileStore(root string, autoSync bool) *FileStore {
	return &FileStore{
		root:     root,
		autoSync: autoSync,
		mtimes:   make(map[string]time.Time),
	}
}

// SetNotifier wires the regeneration scheduler. Nil-safe: without a
// notifier, commits simply don't trigger regeneration.
func (fs *FileStore) SetNotifier(n Notifier) {
	fs.notifier = n
}

// ProjectDir returns the absolute path to a project's data directory.
func (fs *FileStore) ProjectDir(project string) string {
	return filepath.Join(fs.root, ProjectsDir, project)
}

// DocumentPath returns the absolute path to a project's work-index.yaml.
func (fs *FileStore) DocumentPath(project string) string {
	return filepath.Join(fs.ProjectDir(project), IndexFile)
}

// Load reads and parses a project's document. A previously cached
// modification timestamp that differs from the one on disk means the
// file was edited outside the store; the edit is logged and accepted
// wholesale; the on-disk content is the new truth.
func (fs *FileStore) Load(project string) (*Document, error) {
	path := fs.DocumentPath(project)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: work-index.yaml for project %q", ErrNotFound, project)
		}
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}

	fs.mtimeMu.Lock()
	cached, seen := fs.mtimes[path]
	fs.mtimeMu.Unlock()
	if seen && !cached.Equal(info.ModTime()) {
		log.Printf("WARNING: external edit detected on %s; reloading from disk (human edit accepted)", path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	doc, err := Decode(content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	fs.mtimeMu.Lock()
	fs.mtimes[path] = info.ModTime()
	fs.mtimeMu.Unlock()

	return doc, nil
}

// Save atomically commits a document: encode, write to a temp file in
// the target directory (same volume, so the rename is atomic), re-parse
// the temp file to validate it, then rename over the target. On any
// failure the temp file is removed and the original is left untouched.
// After a successful commit the mtime cache is updated from the renamed
// file, and the regeneration scheduler is notified.
func (fs *FileStore) Save(project string, doc *Document, agent string) error {
	path := fs.DocumentPath(project)

	content, err := Encode(doc)
	if err != nil {
		return err
	}

	if err := fs.commit(path, content); err != nil {
		return err
	}

	log.Printf("Wrote %s (agent: %s)", filepath.Base(path), agent)

	if fs.autoSync && fs.notifier != nil {
		fs.notifier.Notify(project)
	}
	return nil
}

// commit performs the serialized temp-write/validate/rename sequence.
func (fs *FileStore) commit(path string, content []byte) error {
	fs.writeMu.Lock()
	defer fs.writeMu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".work-index-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpName)
	}

	if _, err := tmp.Write(content); err != nil {
		cleanup()
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}

	// Validate before committing: the temp file must parse back into a
	// document, or the rename never happens.
	written, err := os.ReadFile(tmpName)
	if err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("re-reading %s: %w", tmpName, err)
	}
	if _, err := Decode(written); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("validating %s: %w", tmpName, err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	// Record our own write so the next Load doesn't flag it as external.
	if info, err := os.Stat(path); err == nil {
		fs.mtimeMu.Lock()
		fs.mtimes[path] = info.ModTime()
		fs.mtimeMu.Unlock()
	}

	return nil
}

// Bootstrap creates a project's initial document: all three sequences
// empty plus one history entry recording the registration. The project
// directory must already exist.
func (fs *FileStore) Bootstrap(project, agent string) (*Document, error) {
	doc := &Document{
		Sprints: []Sprint{},
		Backlog: []BacklogItem{},
		History: []HistoryEntry{
			{
				Date:    timeNow().UTC().Format(dateLayout),
				Summary: fmt.Sprintf("Registered %s in WorkSync.", project),
			},
		},
	}
	if err := fs.Save(project, doc, agent); err != nil {
		return nil, err
	}
	return doc, nil
}
