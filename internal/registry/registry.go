// Package registry handles the project registry (config.yaml): the
// read-only input that maps project names to repo paths, descriptions,
// and guidance configuration, plus the administrative register and
// unregister operations that rewrite it.
//
// The registry is deliberately separate from the work-index store: the
// core only ever reads it to validate project names and resolve paths.
// Rewrites preserve the file's insertion order; config.yaml is
// hand-edited, so a registration must not re-sort existing entries.
package registry

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// ConfigFile is the registry filename under the data root.
const ConfigFile = "config.yaml"

// DefaultVaultPath is used when config.yaml does not set vault_path.
const DefaultVaultPath = "./vault"

// ErrUnknownProject is returned when a project name is not registered.
var ErrUnknownProject = errors.New("project not registered")

// GuidanceRef points at a project-specific guidance document.
type GuidanceRef struct {
	Name   string `yaml:"name" json:"name"`
	Source string `yaml:"source" json:"source"` // currently only "repo"
	Path   string `yaml:"path" json:"path"`
}

// Guidance configures which guidance documents apply to a project:
// foundational docs inherited from the data root plus docs sourced from
// the project's own repository.
type Guidance struct {
	Inherit []string      `yaml:"inherit" json:"inherit"`
	Project []GuidanceRef `yaml:"project,omitempty" json:"project,omitempty"`
}

// Project is one registry entry.
type Project struct {
	Repo        string   `yaml:"repo" json:"repo"`
	Description string   `yaml:"description" json:"description"`
	Guidance    Guidance `yaml:"guidance" json:"guidance"`
}

// Registry is the decoded config.yaml. Project iteration order matches
// the file.
type Registry struct {
	VaultPath string

	names    []string
	projects map[string]Project
}

// Names returns project names in file order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Lookup returns a project entry by name.
func (r *Registry) Lookup(name string) (Project, bool) {
	p, ok := r.projects[name]
	return p, ok
}

// Add appends a new project entry. Fails if the name is taken.
func (r *Registry) Add(name string, p Project) error {
	if _, ok := r.projects[name]; ok {
		return fmt.Errorf("project %q already registered", name)
	}
	if r.projects == nil {
		r.projects = make(map[string]Project)
	}
	r.names = append(r.names, name)
	r.projects[name] = p
	return nil
}

// Remove deletes a project entry, returning it if it was present.
func (r *Registry) Remove(name string) (Project, bool) {
	p, ok := r.projects[name]
	if !ok {
		return Project{}, false
	}
	delete(r.projects, name)
	for i, n := range r.names {
		if n == name {
			r.names = append(r.names[:i], r.names[i+1:]...)
			break
		}
	}
	return p, true
}

// Store reads and rewrites config.yaml.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a registry store for the given data root.
func NewStore(root string) *Store {
	return &Store{path: filepath.Join(root, ConfigFile)}
}

// Path returns the config.yaml path.
func (s *Store) Path() string {
	return s.path
}

// Load parses config.yaml. A missing file is an error: the registry is
// the server's source of truth for which projects exist.
func (s *Store) Load() (*Registry, error) {
	content, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("registry not found at %s", s.path)
		}
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}

	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}

	reg := &Registry{
		VaultPath: DefaultVaultPath,
		projects:  make(map[string]Project),
	}
	if len(root.Content) == 0 {
		return reg, nil
	}

	doc := root.Content[0]
	if doc.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("parsing %s: top level is not a mapping", s.path)
	}
	for i := 0; i+1 < len(doc.Content); i += 2 {
		key, value := doc.Content[i], doc.Content[i+1]
		switch key.Value {
		case "vault_path":
			reg.VaultPath = value.Value
		case "projects":
			if value.Kind != yaml.MappingNode {
				continue
			}
			for j := 0; j+1 < len(value.Content); j += 2 {
				name := value.Content[j].Value
				var p Project
				if err := value.Content[j+1].Decode(&p); err != nil {
					return nil, fmt.Errorf("parsing project %q in %s: %w", name, s.path, err)
				}
				reg.names = append(reg.names, name)
				reg.projects[name] = p
			}
		}
	}
	return reg, nil
}

// Save atomically rewrites config.yaml, keeping projects in registry
// order (temp file in the same directory, then rename).
func (s *Store) Save(reg *Registry) error {
	projects := &yaml.Node{Kind: yaml.MappingNode}
	for _, name := range reg.names {
		var entry yaml.Node
		if err := entry.Encode(reg.projects[name]); err != nil {
			return fmt.Errorf("encoding project %q: %w", name, err)
		}
		projects.Content = append(projects.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: name},
			&entry,
		)
	}
	doc := &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "vault_path"},
			{Kind: yaml.ScalarNode, Value: reg.VaultPath},
			{Kind: yaml.ScalarNode, Value: "projects"},
			projects,
		},
	}

	var buf strings.Builder
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding registry: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.yaml.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", s.path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(buf.String()); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing %s: %w", tmpName, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing %s: %w", tmpName, err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}

// Require loads the registry and returns the named project, or an
// ErrUnknownProject listing what is available.
func (s *Store) Require(name string) (Project, error) {
	reg, err := s.Load()
	if err != nil {
		return Project{}, err
	}
	p, ok := reg.Lookup(name)
	if !ok {
		available := strings.Join(reg.Names(), ", ")
		if available == "" {
			available = "(none)"
		}
		return Project{}, fmt.Errorf("%w: %q (available: %s)", ErrUnknownProject, name, available)
	}
	return p, nil
}

// DetectLanguages inspects a repository for well-known build files and
// returns the language list used to build guidance inheritance.
func DetectLanguages(repoPath string) []string {
	languages := []string{}
	if _, err := os.Stat(filepath.Join(repoPath, "go.mod")); err == nil {
		languages = append(languages, "golang")
	}
	if _, err := os.Stat(filepath.Join(repoPath, "package.json")); err == nil {
		languages = append(languages, "typescript")
	}
	if _, err := os.Stat(filepath.Join(repoPath, "pyproject.toml")); err == nil {
		languages = append(languages, "python")
	} else if _, err := os.Stat(filepath.Join(repoPath, "setup.py")); err == nil {
		languages = append(languages, "python")
	}
	return languages
}

// InheritList builds the foundational guidance list for a set of
// languages: general first, ai-collaboration last, language docs in
// between.
func InheritList(languages []string) []string {
	inherit := []string{"general"}
	for _, lang := range languages {
		if lang == "golang" || lang == "typescript" {
			inherit = append(inherit, lang)
		}
	}
	return append(inherit, "ai-collaboration")
}
