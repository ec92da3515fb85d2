package engine

import (
	"sort"

	"github.com/blackwell-systems/depprune/internal/classifier"
	"github.com/blackwell-systems/depprune/internal/extractor"
	"github.com/blackwell-systems/depprune/internal/manifest"
	"github.com/blackwell-systems/depprune/internal/patterns"
)

// aggregate is the reduce-phase output: per-dependency usage state plus
// the files carrying unresolved dynamic specifiers.
type aggregate struct {
	usages             []*classifier.DepUsage
	indeterminateFiles []string
}

// depState pairs a declared dependency with its compiled pattern set and
// accumulating evidence. Only merge touches it, single-threaded.
type depState struct {
	usage *classifier.DepUsage
	set   *patterns.Set
	files map[string]bool
	kinds map[extractor.RefKind]bool
	owner *manifest.Manifest
}

// merge folds every usage record into the declared-dependency map. A
// record attributes to a dependency when its specifier matches the
// dependency's pattern set; evidence from a file owned by the declaring
// manifest counts directly, evidence from a sibling workspace member is
// tracked as a cross-reference. Records never attribute across
// dependencies: each declared dependency is tested independently.
func merge(project *manifest.Project, results []*extractor.Result, extra []extractor.UsageRecord) *aggregate {
	manifestsByPath := map[string]*manifest.Manifest{}
	for _, m := range project.Manifests() {
		manifestsByPath[m.Path] = m
	}

	// Pattern sets are derived once per dependency; dependencies sharing
	// a name across manifests share the compiled set.
	sets := map[string]*patterns.Set{}
	var states []*depState
	for _, dep := range project.Declared() {
		dep := dep
		set, ok := sets[dep.Name]
		if !ok {
			set = patterns.Compile(dep.Name)
			sets[dep.Name] = set
		}
		states = append(states, &depState{
			usage: &classifier.DepUsage{Dep: dep},
			set:   set,
			files: map[string]bool{},
			kinds: map[extractor.RefKind]bool{},
			owner: manifestsByPath[dep.Manifest],
		})
	}

	indeterminate := map[string]bool{}

	apply := func(rec extractor.UsageRecord) {
		owner := project.Owner(rec.File)
		for _, st := range states {
			if !st.set.Matches(rec.Specifier) {
				continue
			}
			if st.owner != nil && owner.Path == st.owner.Path {
				st.usage.UsageCount++
				st.files[rec.File] = true
				st.kinds[rec.Kind] = true
			} else {
				// Evidence from another workspace member: hoisted
				// visibility, kept separate so classification precedence
				// stays intact.
				st.usage.CrossReferenced = true
				st.files[rec.File] = true
				st.kinds[extractor.WorkspaceCrossRef] = true
			}
		}
	}

	for _, res := range results {
		if res.Indeterminate {
			indeterminate[res.File] = true
		}
		for _, rec := range res.Records {
			apply(rec)
		}
	}
	for _, rec := range extra {
		apply(rec)
	}

	agg := &aggregate{}
	for _, st := range states {
		for f := range st.files {
			st.usage.UsedInFiles = append(st.usage.UsedInFiles, f)
		}
		sort.Strings(st.usage.UsedInFiles)
		for k := range st.kinds {
			st.usage.EvidenceKinds = append(st.usage.EvidenceKinds, k)
		}
		sort.Slice(st.usage.EvidenceKinds, func(i, j int) bool {
			return st.usage.EvidenceKinds[i] < st.usage.EvidenceKinds[j]
		})
		agg.usages = append(agg.usages, st.usage)
	}

	for f := range indeterminate {
		agg.indeterminateFiles = append(agg.indeterminateFiles, f)
	}
	sort.Strings(agg.indeterminateFiles)
	return agg
}
