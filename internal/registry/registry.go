// Package registry holds the protection registry: dependencies that must
// never be auto-flagged unused unless the user explicitly overrides. The
// builtin registry is embedded, loaded once at process start, and treated
// as immutable; per-project additions are merged into a derived run-scoped
// copy rather than mutating the global.
package registry

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed registry.yaml
var builtinYAML []byte

// LoadError wraps a failure to load or parse the protection registry.
// It is fatal: the engine's safety guarantees depend on the registry.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("protection registry: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Registry maps protection categories to the names and patterns they
// cover. Immutable after construction and safe for concurrent reads.
type Registry struct {
	version    string
	categories map[string][]string
}

type registryFile struct {
	Version    string              `yaml:"version"`
	Categories map[string][]string `yaml:"categories"`
}

var (
	builtinOnce sync.Once
	builtin     *Registry
	builtinErr  error
)

// Builtin returns the embedded registry, parsing it on first use.
func Builtin() (*Registry, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = parse(builtinYAML)
	})
	return builtin, builtinErr
}

func parse(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, &LoadError{Err: err}
	}
	if len(file.Categories) == 0 {
		return nil, &LoadError{Err: fmt.Errorf("no categories defined")}
	}
	return &Registry{version: file.Version, categories: file.Categories}, nil
}

// Version returns the registry's declared version string.
func (r *Registry) Version() string { return r.version }

// WithCategoryExtensions returns a derived copy with extra entries
// merged into the named categories. New category names are allowed; the
// receiver is not modified.
func (r *Registry) WithCategoryExtensions(ext map[string][]string) *Registry {
	if len(ext) == 0 {
		return r
	}
	categories := make(map[string][]string, len(r.categories)+len(ext))
	for cat, entries := range r.categories {
		categories[cat] = entries
	}
	for cat, names := range ext {
		merged := append([]string{}, categories[cat]...)
		merged = append(merged, names...)
		categories[cat] = merged
	}
	return &Registry{version: r.version, categories: categories}
}

// Match reports whether name is protected, and under which category.
// Entries ending in "*" are prefix patterns ("@types/*"); everything
// else is an exact name. Categories are checked in sorted order so a
// name listed in two categories always reports the same one.
func (r *Registry) Match(name string) (string, bool) {
	for _, cat := range r.Categories() {
		for _, entry := range r.categories[cat] {
			if matchEntry(entry, name) {
				return cat, true
			}
		}
	}
	return "", false
}

func matchEntry(entry, name string) bool {
	if strings.HasSuffix(entry, "*") {
		return strings.HasPrefix(name, strings.TrimSuffix(entry, "*"))
	}
	return entry == name
}

// Categories returns the category names in sorted order.
func (r *Registry) Categories() []string {
	out := make([]string, 0, len(r.categories))
	for cat := range r.categories {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// Entries returns the entries of one category in sorted order.
func (r *Registry) Entries(category string) []string {
	out := append([]string{}, r.categories[category]...)
	sort.Strings(out)
	return out
}
