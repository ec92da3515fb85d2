// Package patterns expands a dependency name into the set of import
// specifiers and textual forms that count as usage of that dependency.
//
// Matching is segment-based on "/"-separated specifiers, never raw
// substring containment: the dependency "a" must not match "ab", and
// "lodash" matches "lodash/fp" but not "lodash-es". Over-matching hides
// a truly-unused dependency; under-matching can flag a used dependency
// as removable, which is the failure mode this package is biased against.
package patterns

import (
	"regexp"
	"strings"
)

// Set is the compiled pattern set for one dependency: its literal name,
// subpath forms, and any framework-family patterns. Sets are immutable
// and safe for concurrent use.
type Set struct {
	name     string
	families []*regexp.Regexp
}

// Compile derives the Set for a dependency name. Pure; derived once per
// dependency per run.
func Compile(name string) *Set {
	return &Set{
		name:     name,
		families: familyPatterns(name),
	}
}

// Name returns the dependency name the set was compiled for.
func (s *Set) Name() string { return s.name }

// Matches reports whether specifier counts as usage of the dependency.
// Relative and absolute specifiers and node builtins never match.
func (s *Set) Matches(specifier string) bool {
	pkg, ok := PackageOf(specifier)
	if !ok {
		return false
	}
	if pkg == s.name {
		return true
	}
	for _, fam := range s.families {
		if fam.MatchString(pkg) {
			return true
		}
	}
	return false
}

// PackageOf extracts the package name from an import specifier: the first
// path segment, or the first two for scoped packages ("@scope/name/x" ->
// "@scope/name"). It returns ok=false for specifiers that cannot reference
// a dependency: relative or absolute paths, node builtins, URLs, and
// empty strings.
func PackageOf(specifier string) (string, bool) {
	if specifier == "" {
		return "", false
	}
	if strings.HasPrefix(specifier, ".") || strings.HasPrefix(specifier, "/") {
		return "", false
	}
	if strings.HasPrefix(specifier, "node:") {
		return "", false
	}
	if strings.Contains(specifier, "://") {
		return "", false
	}
	// Strip webpack-style loader chains ("style-loader!./x") down to the
	// leading loader reference.
	if bang := strings.IndexByte(specifier, '!'); bang >= 0 {
		specifier = specifier[:bang]
		if specifier == "" {
			return "", false
		}
	}
	// Strip query suffixes ("pkg/file?raw").
	if q := strings.IndexByte(specifier, '?'); q >= 0 {
		specifier = specifier[:q]
	}

	segments := strings.Split(specifier, "/")
	if strings.HasPrefix(specifier, "@") {
		if len(segments) < 2 || segments[0] == "@" || segments[1] == "" {
			return "", false
		}
		return segments[0] + "/" + segments[1], true
	}
	if segments[0] == "" {
		return "", false
	}
	if nodeBuiltins[segments[0]] {
		return "", false
	}
	return segments[0], true
}
