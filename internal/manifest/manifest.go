// Package manifest loads npm-style project manifests and models the
// declared dependencies the engine resolves usage for.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// FileName is the manifest filename looked up in every project and
// workspace member directory.
const FileName = "package.json"

// Category classifies where a dependency was declared in the manifest.
type Category string

const (
	CategoryRuntime Category = "dependencies"
	CategoryDev     Category = "devDependencies"
	CategoryPeer    Category = "peerDependencies"
)

// Error wraps a missing or malformed manifest. It is fatal: the engine
// refuses to produce verdicts without a trustworthy declaration list.
type Error struct {
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Manifest is a single parsed package.json. Loaded once per run and
// immutable thereafter.
type Manifest struct {
	Name    string
	Version string
	Path    string // path to the package.json file
	Dir     string // directory containing it

	Dependencies     map[string]string
	DevDependencies  map[string]string
	PeerDependencies map[string]string

	Workspaces []string
	Scripts    map[string]string
}

// Dependency is one declared dependency: a name plus the manifest and
// section that declared it. Usage evidence is accumulated separately by
// the engine's merge phase; the declaration itself never changes.
type Dependency struct {
	Name     string
	Version  string
	Category Category
	Manifest string // path of the declaring package.json
}

type rawManifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Dependencies     map[string]string `json:"dependencies"`
	DevDependencies  map[string]string `json:"devDependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
	Workspaces       workspacesField   `json:"workspaces"`
	Scripts          map[string]string `json:"scripts"`
}

// workspacesField accepts both manifest shapes: a bare array of globs or
// the yarn-style object form {"packages": [...]}.
type workspacesField []string

func (w *workspacesField) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*w = list
		return nil
	}
	var obj struct {
		Packages []string `json:"packages"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("workspaces: expected array or {packages: [...]}: %w", err)
	}
	*w = obj.Packages
	return nil
}

// Load reads and parses the package.json at path. Any failure is returned
// as a *Error so callers can distinguish the fatal manifest class.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, &Error{Path: path, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	m := &Manifest{
		Name:             raw.Name,
		Version:          raw.Version,
		Path:             abs,
		Dir:              filepath.Dir(abs),
		Dependencies:     raw.Dependencies,
		DevDependencies:  raw.DevDependencies,
		PeerDependencies: raw.PeerDependencies,
		Workspaces:       raw.Workspaces,
		Scripts:          raw.Scripts,
	}
	return m, nil
}

// Declared returns the manifest's dependencies across all three sections,
// sorted by name for deterministic downstream processing.
func (m *Manifest) Declared() []Dependency {
	var deps []Dependency
	appendSection := func(section map[string]string, cat Category) {
		for name, version := range section {
			deps = append(deps, Dependency{
				Name:     name,
				Version:  version,
				Category: cat,
				Manifest: m.Path,
			})
		}
	}
	appendSection(m.Dependencies, CategoryRuntime)
	appendSection(m.DevDependencies, CategoryDev)
	appendSection(m.PeerDependencies, CategoryPeer)

	sort.Slice(deps, func(i, j int) bool {
		if deps[i].Name != deps[j].Name {
			return deps[i].Name < deps[j].Name
		}
		return deps[i].Category < deps[j].Category
	})
	return deps
}

// DeclaresName reports whether any section of the manifest declares name.
func (m *Manifest) DeclaresName(name string) bool {
	if _, ok := m.Dependencies[name]; ok {
		return true
	}
	if _, ok := m.DevDependencies[name]; ok {
		return true
	}
	_, ok := m.PeerDependencies[name]
	return ok
}
