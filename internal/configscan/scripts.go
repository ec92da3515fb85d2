package configscan

import (
	"strings"

	"github.com/blackwell-systems/depprune/internal/extractor"
	"github.com/blackwell-systems/depprune/internal/manifest"
)

// shellOperators split a script command into sub-commands.
var shellOperators = map[string]bool{
	"&&": true, "||": true, "|": true, ";": true, "&": true,
}

// runnerPrefixes are commands whose first argument is itself a command
// reference worth testing (npx jest, yarn eslint).
var runnerPrefixes = map[string]bool{
	"npx": true, "yarn": true, "pnpm": true, "bunx": true,
}

// ScanScripts tokenizes the manifest's script entries and emits a
// scriptReference record for every token that could name a dependency's
// CLI. A dependency invoked only as a command-line tool leaves no import
// trace, so this is its only evidence channel. Tokens are matched by the
// pattern matcher downstream; over-collecting here is harmless.
func ScanScripts(m *manifest.Manifest) []extractor.UsageRecord {
	seen := map[string]bool{}
	var records []extractor.UsageRecord
	add := func(specifier string) {
		if specifier == "" || seen[specifier] {
			return
		}
		seen[specifier] = true
		records = append(records, extractor.UsageRecord{
			Specifier: specifier,
			Kind:      extractor.ScriptReference,
			File:      m.Path,
		})
	}

	for _, command := range m.Scripts {
		for _, token := range scriptTokens(command) {
			add(token)
		}
	}
	return records
}

// scriptTokens extracts dependency-name candidates from one shell
// command: the command word of each pipeline segment, arguments of
// runner commands, and node_modules/.bin references anywhere.
func scriptTokens(command string) []string {
	fields := strings.Fields(command)
	var out []string

	expectCommand := true
	for i := 0; i < len(fields); i++ {
		token := fields[i]

		if shellOperators[token] {
			expectCommand = true
			continue
		}
		// Quoted or env-assignment prefixes never name a tool.
		if strings.ContainsRune(token, '=') {
			continue
		}
		if !expectCommand {
			// Still catch explicit .bin paths in argument position.
			if name, ok := binName(token); ok {
				out = append(out, name)
			}
			continue
		}
		expectCommand = false

		token = strings.Trim(token, `"'`)
		if name, ok := binName(token); ok {
			out = append(out, name)
			continue
		}
		if strings.HasPrefix(token, "-") || strings.HasPrefix(token, ".") || strings.HasPrefix(token, "/") {
			continue
		}
		out = append(out, token)
		if runnerPrefixes[token] {
			expectCommand = true
		}
	}
	return out
}

// binName resolves explicit node_modules/.bin/tool paths to the tool name.
func binName(token string) (string, bool) {
	idx := strings.Index(token, "node_modules/.bin/")
	if idx < 0 {
		return "", false
	}
	name := token[idx+len("node_modules/.bin/"):]
	if name == "" {
		return "", false
	}
	return name, true
}
