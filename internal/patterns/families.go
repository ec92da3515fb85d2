package patterns

import "regexp"

// frameworkFamilies maps a framework-core dependency name to the naming
// family of its plugins, loaders, and presets. A specifier matching a
// family counts as usage of the core it is keyed under and of nothing
// else: family matches are never cross-attributed to another declared
// dependency.
var frameworkFamilies = map[string][]string{
	"webpack": {
		`^webpack-[a-z0-9.-]+$`,
		`^[a-z0-9.-]+-loader$`,
	},
	"babel-core": {
		`^babel-(plugin|preset)-[a-z0-9.-]+$`,
	},
	"@babel/core": {
		`^@babel/(plugin|preset)-[a-z0-9.-]+$`,
		`^babel-(plugin|preset)-[a-z0-9.-]+$`,
	},
	"eslint": {
		`^eslint-(plugin|config|parser)-[a-z0-9.-]+$`,
		`^@[a-z0-9.-]+/eslint-(plugin|config)$`,
	},
	"rollup": {
		`^rollup-plugin-[a-z0-9.-]+$`,
		`^@rollup/plugin-[a-z0-9.-]+$`,
	},
	"vite": {
		`^vite-plugin-[a-z0-9.-]+$`,
		`^@vitejs/plugin-[a-z0-9.-]+$`,
	},
	"postcss": {
		`^postcss-[a-z0-9.-]+$`,
	},
	"prettier": {
		`^prettier-plugin-[a-z0-9.-]+$`,
	},
	"jest": {
		`^jest-(environment|preset|runner|transform)-[a-z0-9.-]+$`,
	},
	"gulp": {
		`^gulp-[a-z0-9.-]+$`,
	},
	"grunt": {
		`^grunt-[a-z0-9.-]+$`,
	},
}

var compiledFamilies = func() map[string][]*regexp.Regexp {
	out := make(map[string][]*regexp.Regexp, len(frameworkFamilies))
	for core, sources := range frameworkFamilies {
		res := make([]*regexp.Regexp, 0, len(sources))
		for _, src := range sources {
			res = append(res, regexp.MustCompile(src))
		}
		out[core] = res
	}
	return out
}()

// familyPatterns returns the compiled family patterns for name, or nil
// when name is not a known framework core.
func familyPatterns(name string) []*regexp.Regexp {
	return compiledFamilies[name]
}
