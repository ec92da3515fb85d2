package manifest

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// Project is a workspace: the root manifest plus any member manifests
// discovered through the root's workspaces globs. For a single-package
// project Members is empty.
type Project struct {
	Root    *Manifest
	Members []*Manifest
}

// LoadProject loads the package.json under rootDir and expands its
// workspaces globs into member manifests. Member directories without a
// package.json are skipped; a member with a malformed package.json is a
// fatal manifest error, same as the root.
func LoadProject(rootDir string) (*Project, error) {
	root, err := Load(filepath.Join(rootDir, FileName))
	if err != nil {
		return nil, err
	}
	p := &Project{Root: root}

	seen := map[string]bool{}
	for _, pattern := range root.Workspaces {
		matches, err := doublestar.Glob(os.DirFS(root.Dir), pattern)
		if err != nil {
			return nil, &Error{Path: root.Path, Err: err}
		}
		for _, rel := range matches {
			dir := filepath.Join(root.Dir, filepath.FromSlash(rel))
			if seen[dir] || dir == root.Dir {
				continue
			}
			info, err := os.Stat(dir)
			if err != nil || !info.IsDir() {
				continue
			}
			memberPath := filepath.Join(dir, FileName)
			if _, err := os.Stat(memberPath); err != nil {
				continue
			}
			member, err := Load(memberPath)
			if err != nil {
				return nil, err
			}
			seen[dir] = true
			p.Members = append(p.Members, member)
		}
	}

	sort.Slice(p.Members, func(i, j int) bool {
		return p.Members[i].Dir < p.Members[j].Dir
	})
	return p, nil
}

// Manifests returns the root followed by all members.
func (p *Project) Manifests() []*Manifest {
	out := make([]*Manifest, 0, len(p.Members)+1)
	out = append(out, p.Root)
	out = append(out, p.Members...)
	return out
}

// Declared returns every dependency declared anywhere in the project,
// root first, members in directory order.
func (p *Project) Declared() []Dependency {
	var deps []Dependency
	for _, m := range p.Manifests() {
		deps = append(deps, m.Declared()...)
	}
	return deps
}

// Owner returns the manifest whose directory most closely contains path:
// the deepest member directory that is a prefix of the file's directory,
// falling back to the root. Used to attribute per-file evidence to the
// package that declared the dependency.
func (p *Project) Owner(path string) *Manifest {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	dir := filepath.Dir(abs)

	owner := p.Root
	best := -1
	for _, m := range p.Members {
		rel, err := filepath.Rel(m.Dir, dir)
		if err != nil || rel == ".." || filepath.IsAbs(rel) || (len(rel) > 1 && rel[:2] == "..") {
			continue
		}
		if len(m.Dir) > best {
			best = len(m.Dir)
			owner = m
		}
	}
	return owner
}
