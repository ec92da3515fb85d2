package scanner

import "strings"

// knownConfigNames are configuration files inspected for dependency
// references that never show up as imports: build-tool, linter, compiler,
// and test-runner configs.
var knownConfigNames = map[string]bool{
	"tsconfig.json":      true,
	"jsconfig.json":      true,
	".babelrc":           true,
	".babelrc.json":      true,
	"babel.config.json":  true,
	".eslintrc":          true,
	".eslintrc.json":     true,
	".eslintrc.yml":      true,
	".eslintrc.yaml":     true,
	".prettierrc":        true,
	".prettierrc.json":   true,
	".prettierrc.yml":    true,
	".prettierrc.yaml":   true,
	".prettierrc.toml":   true,
	".stylelintrc":       true,
	".stylelintrc.json":  true,
	".stylelintrc.yml":   true,
	".stylelintrc.yaml":  true,
	"nodemon.json":       true,
	"netlify.toml":       true,
	".releaserc":         true,
	".releaserc.json":    true,
	"renovate.json":      true,
	"lerna.json":         true,
	"nx.json":            true,
	"tslint.json":        true,
	"karma.conf.js":      true,
	"protractor.conf.js": true,
	"gulpfile.js":        true,
	"gruntfile.js":       true,
	"Gruntfile.js":       true,
}

// configSuffixes recognize the *.config.<ext> convention used by webpack,
// vite, rollup, jest, vitest, postcss, tailwind, and most modern tools.
var configSuffixes = []string{
	".config.js",
	".config.cjs",
	".config.mjs",
	".config.ts",
	".config.mts",
	".config.json",
}

// IsConfigCandidate reports whether a file name looks like a recognized
// configuration file for the config reference scanner.
func IsConfigCandidate(name string) bool {
	if knownConfigNames[name] {
		return true
	}
	for _, suffix := range configSuffixes {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			return true
		}
	}
	// .eslintrc.js / .babelrc.js / .prettierrc.js style.
	if strings.HasPrefix(name, ".") && (strings.HasSuffix(name, "rc.js") || strings.HasSuffix(name, "rc.cjs")) {
		return true
	}
	return false
}
