package patterns

import "testing"

func TestPackageOf(t *testing.T) {
	tests := []struct {
		specifier string
		want      string
		ok        bool
	}{
		{"lodash", "lodash", true},
		{"lodash/fp", "lodash", true},
		{"@babel/core", "@babel/core", true},
		{"@babel/core/lib/parser", "@babel/core", true},
		{"./local", "", false},
		{"../up", "", false},
		{"/abs/path", "", false},
		{"node:fs", "", false},
		{"fs", "", false},
		{"path", "", false},
		{"", "", false},
		{"@", "", false},
		{"@scope", "", false},
		{"https://cdn.example.com/mod.js", "", false},
		{"style-loader!./styles.css", "style-loader", true},
		{"pkg/asset?raw", "pkg", true},
	}
	for _, tt := range tests {
		got, ok := PackageOf(tt.specifier)
		if ok != tt.ok || got != tt.want {
			t.Errorf("PackageOf(%q) = (%q, %v), want (%q, %v)", tt.specifier, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMatches_Literal(t *testing.T) {
	set := Compile("lodash")

	if !set.Matches("lodash") {
		t.Error("expected lodash to match itself")
	}
	if !set.Matches("lodash/fp") {
		t.Error("expected subpath lodash/fp to match")
	}
	if set.Matches("lodash-es") {
		t.Error("lodash must not match lodash-es")
	}
	if set.Matches("lodash.merge") {
		t.Error("lodash must not match lodash.merge")
	}
}

func TestMatches_NeverSubstring(t *testing.T) {
	// A one-letter dependency is the degenerate case for substring bugs.
	set := Compile("a")
	if set.Matches("ab") {
		t.Error("a must not match ab")
	}
	if !set.Matches("a/sub") {
		t.Error("a should match a/sub")
	}
}

func TestMatches_Scoped(t *testing.T) {
	set := Compile("@scope/name")

	if !set.Matches("@scope/name") {
		t.Error("expected full scoped form to match")
	}
	if !set.Matches("@scope/name/deep/file") {
		t.Error("expected scoped subpath to match")
	}
	if set.Matches("@scope/namely") {
		t.Error("@scope/name must not match @scope/namely")
	}
	if set.Matches("@other/name") {
		t.Error("@scope/name must not match @other/name")
	}
}

func TestMatches_FrameworkFamily(t *testing.T) {
	webpack := Compile("webpack")
	if !webpack.Matches("babel-loader") {
		t.Error("expected babel-loader to count toward webpack")
	}
	if !webpack.Matches("webpack-dev-server") {
		t.Error("expected webpack-dev-server to count toward webpack")
	}

	eslint := Compile("eslint")
	if !eslint.Matches("eslint-plugin-react") {
		t.Error("expected eslint-plugin-react to count toward eslint")
	}

	// Family matches are scoped to the matching core only.
	lodash := Compile("lodash")
	if lodash.Matches("babel-loader") {
		t.Error("family match must not cross-attribute to lodash")
	}

	// A non-core dependency gains no family patterns.
	plugin := Compile("eslint-plugin-react")
	if plugin.Matches("eslint-plugin-import") {
		t.Error("plugin sets must not match sibling plugins")
	}
}

func TestMatches_RelativeAndBuiltin(t *testing.T) {
	set := Compile("fs-extra")
	if set.Matches("fs") {
		t.Error("builtin fs must not match fs-extra")
	}
	if !set.Matches("fs-extra/esm") {
		t.Error("expected fs-extra/esm to match")
	}
	if set.Matches("./fs-extra") {
		t.Error("relative specifier must not match")
	}
}
