// Package configscan inspects recognized configuration files for textual
// dependency references that never show up as imports: loader and plugin
// lists, preset shorthands, extends chains, alias maps, and manifest
// script commands. Parsing is format-aware per dialect (JSON, YAML, TOML,
// JS-module-shaped) rather than blind substring search, so a dependency
// name inside an unrelated string literal does not count.
package configscan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/depprune/internal/extractor"
)

// usageKeys are configuration fields whose values (or keys, for map-shaped
// plugin blocks) name dependencies in a usage position.
var usageKeys = map[string]bool{
	"plugins":            true,
	"presets":            true,
	"extends":            true,
	"parser":             true,
	"loader":             true,
	"loaders":            true,
	"use":                true,
	"transform":          true,
	"preprocessors":      true,
	"setupFiles":         true,
	"setupFilesAfterEnv": true,
	"testEnvironment":    true,
	"reporters":          true,
	"require":            true,
	"framework":          true,
	"frameworks":         true,
	"alias":              true,
	"customSyntax":       true,
	"syntax":             true,
}

// Scanner emits configReference records from configuration files.
type Scanner struct {
	extractor *extractor.Extractor
}

// New returns a config reference scanner.
func New() *Scanner {
	return &Scanner{extractor: extractor.New()}
}

// ScanFile parses one configuration file candidate and returns the usage
// records found in it. A malformed file returns an error the caller
// records as a diagnostic; it never aborts the run.
func (s *Scanner) ScanFile(ctx context.Context, path string) ([]extractor.UsageRecord, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	name := filepath.Base(path)
	var candidates []string

	switch configDialect(name) {
	case dialectJSON:
		candidates, err = scanStructured(content, json.Unmarshal)
	case dialectYAML:
		candidates, err = scanStructured(content, yaml.Unmarshal)
	case dialectTOML:
		candidates, err = scanStructured(content, toml.Unmarshal)
	case dialectRC:
		// rc files without an extension are JSON or YAML in the wild;
		// JSON is valid YAML, so one YAML pass covers both.
		candidates, err = scanStructured(content, yaml.Unmarshal)
	case dialectJS:
		return s.scanJS(ctx, path, content)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return recordsFor(path, name, candidates), nil
}

type dialect int

const (
	dialectUnknown dialect = iota
	dialectJSON
	dialectYAML
	dialectTOML
	dialectRC
	dialectJS
)

func configDialect(name string) dialect {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		return dialectJSON
	case ".yml", ".yaml":
		return dialectYAML
	case ".toml":
		return dialectTOML
	case ".js", ".cjs", ".mjs", ".ts", ".mts":
		return dialectJS
	}
	// Extensionless rc files: .babelrc, .eslintrc, .prettierrc, ...
	if strings.HasPrefix(name, ".") && strings.HasSuffix(name, "rc") {
		return dialectRC
	}
	return dialectUnknown
}

// scanStructured decodes the file with the given unmarshal function and
// collects candidate strings from usage-key positions at any depth.
func scanStructured(content []byte, unmarshal func([]byte, any) error) ([]string, error) {
	var doc any
	if err := unmarshal(content, &doc); err != nil {
		return nil, err
	}
	var out []string
	walkValue(doc, false, &out)
	return out, nil
}

// walkValue walks a decoded config tree. inUsage marks that an ancestor
// key was a usage position, in which case every string below it (and the
// keys of plugin-options maps, e.g. postcss's {autoprefixer: {}}) is a
// candidate.
func walkValue(v any, inUsage bool, out *[]string) {
	switch val := v.(type) {
	case string:
		if inUsage {
			*out = append(*out, val)
		}
	case []any:
		for _, item := range val {
			walkValue(item, inUsage, out)
		}
	case map[string]any:
		for key, item := range val {
			childUsage := inUsage || usageKeys[key]
			if inUsage {
				*out = append(*out, key)
			}
			walkValue(item, childUsage, out)
		}
	case map[any]any:
		for key, item := range val {
			ks, ok := key.(string)
			if !ok {
				continue
			}
			childUsage := inUsage || usageKeys[ks]
			if inUsage {
				*out = append(*out, ks)
			}
			walkValue(item, childUsage, out)
		}
	}
}

// recordsFor turns candidate strings into deduplicated configReference
// records, applying tool-specific shorthand expansion.
func recordsFor(path, name string, candidates []string) []extractor.UsageRecord {
	seen := map[string]bool{}
	var records []extractor.UsageRecord
	add := func(specifier string) {
		if specifier == "" || seen[specifier] {
			return
		}
		seen[specifier] = true
		records = append(records, extractor.UsageRecord{
			Specifier: specifier,
			Kind:      extractor.ConfigReference,
			File:      path,
		})
	}
	for _, c := range candidates {
		add(c)
		for _, expanded := range expandShorthand(name, c) {
			add(expanded)
		}
	}
	return records
}

// expandShorthand maps tool-specific short names to the package names
// they resolve to: babel's presets/plugins ("react" ->
// "babel-preset-react", "@babel/preset-react") and eslint's configs and
// "plugin:" prefixes. Expansion only adds candidates; the pattern matcher
// decides whether any declared dependency actually matches.
func expandShorthand(configName, value string) []string {
	lower := strings.ToLower(configName)
	switch {
	case strings.Contains(lower, "babel"):
		if strings.HasPrefix(value, "@") || strings.HasPrefix(value, ".") || strings.HasPrefix(value, "/") {
			return nil
		}
		return []string{
			"babel-preset-" + value,
			"babel-plugin-" + value,
			"@babel/preset-" + value,
			"@babel/plugin-" + value,
		}
	case strings.Contains(lower, "eslint"):
		if rest, ok := strings.CutPrefix(value, "plugin:"); ok {
			plugin := rest
			if idx := strings.IndexByte(plugin, '/'); idx >= 0 {
				plugin = plugin[:idx]
			}
			if strings.HasPrefix(plugin, "@") {
				return []string{plugin, plugin + "/eslint-plugin"}
			}
			return []string{"eslint-plugin-" + plugin}
		}
		if strings.HasPrefix(value, "@") || strings.HasPrefix(value, ".") || strings.HasPrefix(value, "/") {
			return nil
		}
		return []string{
			"eslint-config-" + value,
			"eslint-plugin-" + value,
		}
	}
	return nil
}
