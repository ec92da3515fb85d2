package extractor

import (
	"context"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// Dialect identifies the grammar used to parse a source file.
type Dialect string

const (
	DialectJS  Dialect = "js"
	DialectJSX Dialect = "jsx"
	DialectTS  Dialect = "ts"
	DialectTSX Dialect = "tsx"
)

// DialectForPath maps a file path to its parsing dialect by extension.
// ok is false for extensions the extractor does not handle.
func DialectForPath(path string) (Dialect, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".mjs", ".cjs":
		return DialectJS, true
	case ".jsx":
		return DialectJSX, true
	case ".ts", ".mts", ".cts":
		return DialectTS, true
	case ".tsx":
		return DialectTSX, true
	default:
		return "", false
	}
}

// ParseTree parses content as the given dialect and returns the syntax
// tree root, for callers that need their own walk (the config scanner
// harvests string literals from JS-shaped configs this way).
func ParseTree(ctx context.Context, content []byte, d Dialect) (*sitter.Node, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(d.language())
	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, err
	}
	return tree.RootNode(), nil
}

// language returns the tree-sitter grammar for the dialect. The
// javascript grammar handles JSX natively; TSX needs its own grammar.
func (d Dialect) language() *sitter.Language {
	switch d {
	case DialectTS:
		return typescript.GetLanguage()
	case DialectTSX:
		return tsx.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}
