package configscan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/blackwell-systems/depprune/internal/extractor"
)

func writeConfig(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func scanOne(t *testing.T, path string) []extractor.UsageRecord {
	t.Helper()
	records, err := New().ScanFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ScanFile(%s) failed: %v", path, err)
	}
	return records
}

func hasSpecifier(records []extractor.UsageRecord, specifier string) bool {
	for _, r := range records {
		if r.Specifier == specifier && r.Kind == extractor.ConfigReference {
			return true
		}
	}
	return false
}

func TestScanFile_JSONBabel(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "babel.config.json", `{
		"presets": ["@babel/preset-env", "react"],
		"plugins": ["transform-runtime"]
	}`)

	records := scanOne(t, path)

	if !hasSpecifier(records, "@babel/preset-env") {
		t.Error("expected @babel/preset-env reference")
	}
	// Shorthand expansion: "react" in a babel presets list.
	if !hasSpecifier(records, "babel-preset-react") {
		t.Error("expected babel-preset-react expansion")
	}
	if !hasSpecifier(records, "babel-plugin-transform-runtime") {
		t.Error("expected babel-plugin-transform-runtime expansion")
	}
}

func TestScanFile_YAMLESLint(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".eslintrc.yml", `
extends:
  - airbnb
  - "plugin:react/recommended"
plugins:
  - import
parser: "@typescript-eslint/parser"
`)

	records := scanOne(t, path)

	if !hasSpecifier(records, "eslint-config-airbnb") {
		t.Error("expected eslint-config-airbnb expansion")
	}
	if !hasSpecifier(records, "eslint-plugin-react") {
		t.Error("expected plugin: prefix to expand to eslint-plugin-react")
	}
	if !hasSpecifier(records, "eslint-plugin-import") {
		t.Error("expected eslint-plugin-import expansion")
	}
	if !hasSpecifier(records, "@typescript-eslint/parser") {
		t.Error("expected parser reference")
	}
}

func TestScanFile_TOML(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".prettierrc.toml", `
plugins = ["prettier-plugin-organize-imports"]
printWidth = 100
`)

	records := scanOne(t, path)
	if !hasSpecifier(records, "prettier-plugin-organize-imports") {
		t.Error("expected prettier plugin reference")
	}
	if hasSpecifier(records, "100") {
		t.Error("non-usage values must not be collected")
	}
}

func TestScanFile_JSWebpack(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "webpack.config.js", `
const TerserPlugin = require('terser-webpack-plugin');

module.exports = {
	mode: 'production',
	module: {
		rules: [
			{ test: /\.js$/, use: ['babel-loader'] },
			{ test: /\.css$/, loader: 'css-loader' }
		]
	},
	resolve: {
		alias: { components: 'my-component-lib' }
	},
	plugins: [new TerserPlugin()]
};
`)

	records := scanOne(t, path)

	if !hasSpecifier(records, "terser-webpack-plugin") {
		t.Error("expected required plugin to be a config reference")
	}
	if !hasSpecifier(records, "babel-loader") {
		t.Error("expected loader list entry")
	}
	if !hasSpecifier(records, "css-loader") {
		t.Error("expected loader field value")
	}
	if !hasSpecifier(records, "my-component-lib") {
		t.Error("expected alias target")
	}
	// "production" sits in a non-usage position.
	if hasSpecifier(records, "production") {
		t.Error("mode value must not be collected")
	}
}

func TestScanFile_MalformedJSON(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "tsconfig.json", `{"extends": `)

	_, err := New().ScanFile(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestScanFile_ExtensionlessRC(t *testing.T) {
	path := writeConfig(t, t.TempDir(), ".babelrc", `{"presets": ["env"]}`)

	records := scanOne(t, path)
	if !hasSpecifier(records, "babel-preset-env") {
		t.Error("expected .babelrc JSON to parse via the rc path")
	}
}
