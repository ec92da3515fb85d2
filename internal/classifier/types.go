package classifier

import (
	"github.com/blackwell-systems/depprune/internal/extractor"
	"github.com/blackwell-systems/depprune/internal/manifest"
)

// VerdictKind is the final classification of a dependency.
type VerdictKind string

const (
	VerdictUsed          VerdictKind = "used"
	VerdictUnused        VerdictKind = "unused"
	VerdictProtected     VerdictKind = "protected"
	VerdictIndeterminate VerdictKind = "indeterminate"
)

// DepUsage is the aggregated evidence for one declared dependency, as
// produced by the engine's single-threaded merge phase. UsageCount covers
// evidence from files owned by the declaring manifest; evidence from
// sibling workspace members is tracked separately as a cross-reference so
// classification precedence can distinguish the two.
type DepUsage struct {
	Dep             manifest.Dependency
	UsageCount      int
	UsedInFiles     []string
	EvidenceKinds   []extractor.RefKind
	CrossReferenced bool
}

// Verdict is the engine's output contract for one declared dependency.
type Verdict struct {
	Name               string              `json:"name"`
	Category           manifest.Category   `json:"category"`
	Manifest           string              `json:"manifest"`
	Verdict            VerdictKind         `json:"verdict"`
	UsageCount         int                 `json:"usageCount"`
	UsedInFiles        []string            `json:"usedInFiles,omitempty"`
	EvidenceKinds      []extractor.RefKind `json:"evidenceKinds,omitempty"`
	ProtectionCategory string              `json:"protectionCategory,omitempty"`
}
