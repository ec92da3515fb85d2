// Package scanner enumerates a project's source and configuration file
// candidates for the usage resolution engine. Traversal is read-only,
// deterministic (lexicographic order), and tolerant: symlink cycles and
// binary files are skipped without error. Only an unreadable project
// root is fatal.
package scanner

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/blackwell-systems/depprune/internal/extractor"
)

// SourceFile is one source candidate: its location, content fingerprint,
// and parsing dialect. Immutable once produced.
type SourceFile struct {
	Path        string
	Rel         string // root-relative, forward slashes
	Fingerprint string // hex SHA-256 of content
	Dialect     extractor.Dialect
	Size        int64
}

// Inventory is the scanner's output: source candidates for the AST
// extractor and config candidates for the config reference scanner,
// both in deterministic order.
type Inventory struct {
	Sources []*SourceFile
	Configs []string
}

// Scanner walks a project root applying ignore rules.
type Scanner struct {
	root   string
	ignore []string
}

// alwaysIgnored are directory names excluded regardless of user patterns.
var alwaysIgnored = map[string]bool{
	"node_modules": true,
	".git":         true,
	".hg":          true,
	".svn":         true,
	"dist":         true,
	"build":        true,
	"coverage":     true,
	".next":        true,
	".nuxt":        true,
	".cache":       true,
	".turbo":       true,
}

// IsIgnoredDir reports whether a directory name is excluded from every
// scan regardless of user patterns (node_modules, VCS metadata, build
// output). The watch mode uses it to skip subscribing to those trees.
func IsIgnoredDir(name string) bool { return alwaysIgnored[name] }

// New creates a scanner for root with additional glob-style ignore
// patterns matched against root-relative paths.
func New(root string, ignore []string) *Scanner {
	return &Scanner{root: root, ignore: ignore}
}

// Scan traverses the project and returns the inventory. It fails only if
// the root itself is unreadable; everything else degrades to skipping.
func (s *Scanner) Scan() (*Inventory, error) {
	rootInfo, err := os.Stat(s.root)
	if err != nil {
		return nil, fmt.Errorf("project root %s: %w", s.root, err)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf("project root %s: not a directory", s.root)
	}

	inv := &Inventory{}
	visited := map[string]bool{}
	if real, err := filepath.EvalSymlinks(s.root); err == nil {
		visited[real] = true
	}
	s.walkTree(s.root, "", visited, inv)

	sort.Slice(inv.Sources, func(i, j int) bool { return inv.Sources[i].Rel < inv.Sources[j].Rel })
	sort.Strings(inv.Configs)
	return inv, nil
}

// walkTree walks the subtree at dir, recording files into inv. Symlinked
// directories are followed at most once: visited tracks resolved targets
// so cycles terminate. Per-entry errors are logged and skipped.
func (s *Scanner) walkTree(dir, relPrefix string, visited map[string]bool, inv *Inventory) {
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			slog.Debug("skipping unreadable path", "path", path, "error", err)
			if d != nil && d.IsDir() && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if path == dir {
			return nil
		}

		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return nil
		}
		rel = joinRel(relPrefix, rel)

		if d.IsDir() {
			if alwaysIgnored[d.Name()] || s.ignored(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			s.followSymlink(path, rel, visited, inv)
			return nil
		}

		if s.ignored(rel) {
			return nil
		}
		s.collect(inv, path, rel)
		return nil
	})
}

// followSymlink resolves a symlink entry. Targets already visited are
// dropped (cycle); directory targets are walked; file targets are
// collected like any other file.
func (s *Scanner) followSymlink(path, rel string, visited map[string]bool, inv *Inventory) {
	real, err := filepath.EvalSymlinks(path)
	if err != nil {
		return
	}
	info, err := os.Stat(real)
	if err != nil {
		return
	}
	if info.IsDir() {
		if visited[real] {
			return
		}
		visited[real] = true
		if alwaysIgnored[filepath.Base(path)] || s.ignored(rel) {
			return
		}
		s.walkTree(real, rel, visited, inv)
		return
	}
	if !s.ignored(rel) {
		s.collect(inv, path, rel)
	}
}

// collect classifies one regular file as a source candidate, a config
// candidate, or neither, and appends it to the inventory.
func (s *Scanner) collect(inv *Inventory, path, rel string) {
	isConfig := IsConfigCandidate(filepath.Base(path))
	dialect, isSource := extractor.DialectForPath(path)
	if !isConfig && !isSource {
		return
	}

	content, err := os.ReadFile(path)
	if err != nil {
		slog.Debug("skipping unreadable file", "path", path, "error", err)
		return
	}
	if isBinary(content) {
		return
	}

	// A *.config.js file is evidence territory for the config scanner,
	// not a regular source candidate.
	if isConfig {
		inv.Configs = append(inv.Configs, path)
		return
	}

	sum := sha256.Sum256(content)
	inv.Sources = append(inv.Sources, &SourceFile{
		Path:        path,
		Rel:         rel,
		Fingerprint: hex.EncodeToString(sum[:]),
		Dialect:     dialect,
		Size:        int64(len(content)),
	})
}

// ignored reports whether the root-relative path matches any user ignore
// pattern. Patterns are doublestar globs; a pattern also matches
// everything under a directory it names.
func (s *Scanner) ignored(rel string) bool {
	for _, pattern := range s.ignore {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
		if !strings.HasSuffix(pattern, "/**") {
			if ok, err := doublestar.Match(pattern+"/**", rel); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func joinRel(prefix, rel string) string {
	rel = filepath.ToSlash(rel)
	if prefix == "" {
		return rel
	}
	return prefix + "/" + rel
}

// isBinary sniffs for a NUL byte in the first 8 KiB.
func isBinary(content []byte) bool {
	limit := len(content)
	if limit > 8192 {
		limit = 8192
	}
	return bytes.IndexByte(content[:limit], 0) >= 0
}
