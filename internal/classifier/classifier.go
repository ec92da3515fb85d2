// Package classifier turns aggregated usage evidence into per-dependency
// verdicts. Precedence is fixed: protection beats evidence, evidence
// beats workspace visibility, and an unresolved dynamic specifier beats
// "unused". The engine never defaults an unexplained dependency to
// removable.
package classifier

import (
	"sort"

	"github.com/blackwell-systems/depprune/internal/extractor"
	"github.com/blackwell-systems/depprune/internal/registry"
)

// Options carries the caller-supplied classification inputs.
type Options struct {
	// SafeList names dependencies the user has marked protected for this
	// run, equivalent to a project-scoped registry entry.
	SafeList []string
	// Aggressive disables protection entirely: registry and safe-list
	// members are evaluated purely on evidence like any other dependency.
	Aggressive bool
}

// Classify produces the final verdict for every aggregated dependency.
// hasIndeterminate reports whether any scanned file carried an unresolved
// dynamic specifier; while such a marker exists, no evidence-free
// dependency can be called unused.
func Classify(usages []*DepUsage, reg *registry.Registry, opts Options, hasIndeterminate bool) []Verdict {
	safe := make(map[string]bool, len(opts.SafeList))
	for _, name := range opts.SafeList {
		safe[name] = true
	}

	verdicts := make([]Verdict, 0, len(usages))
	for _, u := range usages {
		v := Verdict{
			Name:          u.Dep.Name,
			Category:      u.Dep.Category,
			Manifest:      u.Dep.Manifest,
			UsageCount:    u.UsageCount,
			UsedInFiles:   sortedCopy(u.UsedInFiles),
			EvidenceKinds: sortedKinds(u.EvidenceKinds),
		}

		switch {
		case !opts.Aggressive && safe[u.Dep.Name]:
			v.Verdict = VerdictProtected
			v.ProtectionCategory = "safe-list"
		case !opts.Aggressive && matchRegistry(reg, u.Dep.Name, &v):
			v.Verdict = VerdictProtected
		case u.UsageCount > 0:
			v.Verdict = VerdictUsed
		case u.CrossReferenced:
			v.Verdict = VerdictUsed
			v.EvidenceKinds = appendKind(v.EvidenceKinds, extractor.WorkspaceCrossRef)
		case hasIndeterminate:
			v.Verdict = VerdictIndeterminate
		default:
			v.Verdict = VerdictUnused
		}

		verdicts = append(verdicts, v)
	}

	sort.Slice(verdicts, func(i, j int) bool {
		if verdicts[i].Name != verdicts[j].Name {
			return verdicts[i].Name < verdicts[j].Name
		}
		if verdicts[i].Manifest != verdicts[j].Manifest {
			return verdicts[i].Manifest < verdicts[j].Manifest
		}
		return verdicts[i].Category < verdicts[j].Category
	})
	return verdicts
}

func matchRegistry(reg *registry.Registry, name string, v *Verdict) bool {
	if reg == nil {
		return false
	}
	cat, ok := reg.Match(name)
	if ok {
		v.ProtectionCategory = cat
	}
	return ok
}

func sortedCopy(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := append([]string{}, in...)
	sort.Strings(out)
	return out
}

func sortedKinds(in []extractor.RefKind) []extractor.RefKind {
	if len(in) == 0 {
		return nil
	}
	out := append([]extractor.RefKind{}, in...)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func appendKind(kinds []extractor.RefKind, kind extractor.RefKind) []extractor.RefKind {
	for _, k := range kinds {
		if k == kind {
			return kinds
		}
	}
	out := append(kinds, kind)
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
