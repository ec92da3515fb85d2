// Package output provides terminal output utilities for depprune.
//
// This package includes:
//   - Table rendering for dependency verdicts and run summaries
//   - An explain view showing the evidence behind a single verdict
//   - A JSON writer for machine-readable reports
//   - Spinners for indeterminate operations
//
// All rendering uses ASCII characters and ANSI color codes for terminal
// output. Progress indicators are thread-safe.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/blackwell-systems/depprune/internal/classifier"
	"github.com/blackwell-systems/depprune/internal/extractor"
	"github.com/blackwell-systems/depprune/internal/manifest"
)

// ANSI color codes for verdict display
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorGray   = "\033[90m"
)

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// verdictColor returns the ANSI color code for a verdict.
func verdictColor(v classifier.VerdictKind) string {
	switch v {
	case classifier.VerdictUsed:
		return colorGreen
	case classifier.VerdictProtected:
		return colorYellow
	case classifier.VerdictUnused:
		return colorRed
	default: // indeterminate
		return colorGray
	}
}

// verdictLabel returns the display label for a verdict.
func verdictLabel(v classifier.VerdictKind) string {
	switch v {
	case classifier.VerdictUsed:
		return "✓ used"
	case classifier.VerdictProtected:
		return "⛨ protected"
	case classifier.VerdictUnused:
		return "✗ unused"
	default:
		return "? indeterminate"
	}
}

// RenderVerdictTable renders one row per declared dependency. Verdicts
// arrive pre-sorted from the classifier; rendering preserves that order.
func RenderVerdictTable(verdicts []classifier.Verdict) string {
	if len(verdicts) == 0 {
		return "No dependencies declared.\n"
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%-28s %-18s %-6s %-24s %s\n",
		"Dependency", "Category", "Uses", "Evidence", "Verdict"))
	sb.WriteString(strings.Repeat("─", 96))
	sb.WriteString("\n")

	for _, v := range verdicts {
		label := verdictLabel(v.Verdict)
		if v.Verdict == classifier.VerdictProtected && v.ProtectionCategory != "" {
			label = fmt.Sprintf("%s (%s)", label, v.ProtectionCategory)
		}

		sb.WriteString(fmt.Sprintf("%-28s %-18s %-6d %-24s %s%s%s\n",
			truncate(v.Name, 28),
			shortCategory(v.Category),
			v.UsageCount,
			truncate(formatEvidence(v.EvidenceKinds), 24),
			maybeColor(verdictColor(v.Verdict)),
			label,
			maybeReset()))
	}

	return sb.String()
}

func maybeColor(color string) string {
	if IsColorEnabled() {
		return color
	}
	return ""
}

func maybeReset() string {
	if IsColorEnabled() {
		return colorReset
	}
	return ""
}

// RenderUnusedList renders only the removable dependencies, one per
// line, suitable for piping into npm uninstall.
func RenderUnusedList(verdicts []classifier.Verdict) string {
	var sb strings.Builder
	for _, v := range verdicts {
		if v.Verdict == classifier.VerdictUnused {
			sb.WriteString(v.Name)
			sb.WriteString("\n")
		}
	}
	if sb.Len() == 0 {
		return "No unused dependencies found.\n"
	}
	return sb.String()
}

// VerdictCounts aggregates a verdict list for the summary line.
type VerdictCounts struct {
	Used          int
	Unused        int
	Protected     int
	Indeterminate int
}

// CountVerdicts tallies a verdict slice.
func CountVerdicts(verdicts []classifier.Verdict) VerdictCounts {
	var c VerdictCounts
	for _, v := range verdicts {
		switch v.Verdict {
		case classifier.VerdictUsed:
			c.Used++
		case classifier.VerdictUnused:
			c.Unused++
		case classifier.VerdictProtected:
			c.Protected++
		default:
			c.Indeterminate++
		}
	}
	return c
}

// RenderSummary renders the one-line verdict breakdown shown under the
// table. Format:
// "USED: 12 · UNUSED: 3 · PROTECTED: 2 · INDETERMINATE: 0"
func RenderSummary(c VerdictCounts) string {
	parts := []struct {
		label string
		count int
		color string
	}{
		{"USED", c.Used, colorGreen},
		{"UNUSED", c.Unused, colorRed},
		{"PROTECTED", c.Protected, colorYellow},
		{"INDETERMINATE", c.Indeterminate, colorGray},
	}

	var sb strings.Builder
	for i, p := range parts {
		if i > 0 {
			sb.WriteString(" · ")
		}
		sb.WriteString(colorize(p.color, p.label))
		sb.WriteString(fmt.Sprintf(": %d", p.count))
	}
	return sb.String()
}

// RenderExplain renders the full evidence view for a single dependency.
func RenderExplain(v classifier.Verdict) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Dependency: %s\n", v.Name))
	sb.WriteString(fmt.Sprintf("Declared:   %s (%s)\n", v.Manifest, v.Category))
	sb.WriteString(fmt.Sprintf("Verdict:    %s%s%s\n",
		maybeColor(verdictColor(v.Verdict)), verdictLabel(v.Verdict), maybeReset()))

	switch v.Verdict {
	case classifier.VerdictProtected:
		sb.WriteString(fmt.Sprintf("\nProtected as %q: referenced by tooling rather than source code,\n", v.ProtectionCategory))
		sb.WriteString("so missing import evidence does not mean it is removable.\n")
	case classifier.VerdictIndeterminate:
		sb.WriteString("\nThe project contains dynamic imports whose targets could not be\n")
		sb.WriteString("resolved, so absence of evidence is not proof of absence.\n")
	case classifier.VerdictUnused:
		sb.WriteString("\nNo reference found in source files, config files, or scripts.\n")
	}

	if len(v.EvidenceKinds) > 0 {
		sb.WriteString(fmt.Sprintf("\nEvidence (%d reference", v.UsageCount))
		if v.UsageCount != 1 {
			sb.WriteString("s")
		}
		sb.WriteString("):\n")
		for _, k := range v.EvidenceKinds {
			sb.WriteString(fmt.Sprintf("  - %s\n", k))
		}
	}

	if len(v.UsedInFiles) > 0 {
		sb.WriteString("\nReferenced from:\n")
		files := make([]string, len(v.UsedInFiles))
		copy(files, v.UsedInFiles)
		sort.Strings(files)
		for _, f := range files {
			sb.WriteString(fmt.Sprintf("  %s\n", f))
		}
	}

	return sb.String()
}

// formatEvidence joins evidence kinds for the table column.
func formatEvidence(kinds []extractor.RefKind) string {
	if len(kinds) == 0 {
		return "—"
	}
	parts := make([]string, len(kinds))
	for i, k := range kinds {
		parts[i] = string(k)
	}
	return strings.Join(parts, ",")
}

// shortCategory maps manifest category keys to compact column labels.
func shortCategory(category manifest.Category) string {
	switch category {
	case "dependencies":
		return "runtime"
	case "devDependencies":
		return "dev"
	case "peerDependencies":
		return "peer"
	default:
		return string(category)
	}
}

// truncate truncates a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
