package output

import (
	"strings"
	"testing"

	"github.com/blackwell-systems/depprune/internal/classifier"
	"github.com/blackwell-systems/depprune/internal/extractor"
	"github.com/blackwell-systems/depprune/internal/manifest"
)

func sampleVerdicts() []classifier.Verdict {
	return []classifier.Verdict{
		{
			Name:          "lodash",
			Category:      manifest.CategoryRuntime,
			Manifest:      "package.json",
			Verdict:       classifier.VerdictUsed,
			UsageCount:    3,
			UsedInFiles:   []string{"src/a.js", "src/b.js"},
			EvidenceKinds: []extractor.RefKind{extractor.RequireCall, extractor.StaticImport},
		},
		{
			Name:     "left-pad",
			Category: manifest.CategoryRuntime,
			Manifest: "package.json",
			Verdict:  classifier.VerdictUnused,
		},
		{
			Name:               "typescript",
			Category:           manifest.CategoryDev,
			Manifest:           "package.json",
			Verdict:            classifier.VerdictProtected,
			ProtectionCategory: "compilers",
		},
		{
			Name:     "mystery",
			Category: manifest.CategoryRuntime,
			Manifest: "package.json",
			Verdict:  classifier.VerdictIndeterminate,
		},
	}
}

func TestRenderVerdictTable(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	out := RenderVerdictTable(sampleVerdicts())

	for _, want := range []string{
		"Dependency", "lodash", "✓ used", "left-pad", "✗ unused",
		"typescript", "⛨ protected (compilers)", "mystery", "? indeterminate",
		"requireCall,staticImport", "runtime", "dev",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\033[") {
		t.Error("expected no ANSI codes with NO_COLOR set")
	}
}

func TestRenderVerdictTable_Empty(t *testing.T) {
	out := RenderVerdictTable(nil)
	if !strings.Contains(out, "No dependencies") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestRenderUnusedList(t *testing.T) {
	out := RenderUnusedList(sampleVerdicts())
	if out != "left-pad\n" {
		t.Errorf("expected only left-pad, got %q", out)
	}

	out = RenderUnusedList(nil)
	if !strings.Contains(out, "No unused dependencies") {
		t.Errorf("unexpected output for empty list: %q", out)
	}
}

func TestCountVerdicts(t *testing.T) {
	c := CountVerdicts(sampleVerdicts())
	if c.Used != 1 || c.Unused != 1 || c.Protected != 1 || c.Indeterminate != 1 {
		t.Errorf("unexpected counts: %+v", c)
	}
}

func TestRenderSummary(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	out := RenderSummary(VerdictCounts{Used: 12, Unused: 3, Protected: 2})
	want := "USED: 12 \u00b7 UNUSED: 3 \u00b7 PROTECTED: 2 \u00b7 INDETERMINATE: 0"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestRenderExplain(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	out := RenderExplain(sampleVerdicts()[0])

	for _, want := range []string{
		"Dependency: lodash", "package.json", "✓ used",
		"3 references", "requireCall", "src/a.js", "src/b.js",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("explain missing %q:\n%s", want, out)
		}
	}
}

func TestRenderExplain_Protected(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	out := RenderExplain(sampleVerdicts()[2])
	if !strings.Contains(out, `Protected as "compilers"`) {
		t.Errorf("missing protection rationale:\n%s", out)
	}
}

func TestShortCategory(t *testing.T) {
	cases := map[manifest.Category]string{
		manifest.CategoryRuntime:                  "runtime",
		manifest.CategoryDev:                      "dev",
		manifest.CategoryPeer:                     "peer",
		manifest.Category("optionalDependencies"): "optionalDependencies",
	}
	for cat, want := range cases {
		if got := shortCategory(cat); got != want {
			t.Errorf("shortCategory(%q) = %q, want %q", cat, got, want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncate("a-very-long-package-name", 10); got != "a-very-..." {
		t.Errorf("got %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc" {
		t.Errorf("got %q", got)
	}
}
