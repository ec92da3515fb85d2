// Package extractor parses JavaScript and TypeScript sources with
// tree-sitter and yields the structural usage records (imports, requires,
// dynamic imports, type-only imports) the engine aggregates into
// dependency usage evidence.
package extractor

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

// RefKind classifies how a dependency reference was found.
type RefKind string

const (
	StaticImport      RefKind = "staticImport"
	RequireCall       RefKind = "requireCall"
	DynamicImport     RefKind = "dynamicImport"
	TypeOnlyImport    RefKind = "typeOnlyImport"
	ConfigReference   RefKind = "configReference"
	ScriptReference   RefKind = "scriptReference"
	WorkspaceCrossRef RefKind = "workspaceCrossReference"
)

// UsageRecord is one observed reference. The specifier is the raw module
// string as written in the source; attribution to a declared dependency
// happens later, in the engine's merge phase.
type UsageRecord struct {
	Specifier string  `json:"specifier"`
	Kind      RefKind `json:"kind"`
	File      string  `json:"file"`
}

// Result is the extraction outcome for one file. Records are deduplicated
// per (specifier, kind). Indeterminate is set when the file contains a
// dynamically computed specifier that cannot be resolved statically; such
// a file suppresses "unused" verdicts but is never attributed to any
// specific dependency. A Result is immutable once returned and safe to
// share across goroutines and cache layers.
type Result struct {
	File          string        `json:"file"`
	Records       []UsageRecord `json:"records"`
	Indeterminate bool          `json:"indeterminate"`
	Failed        bool          `json:"failed"`
	FailReason    string        `json:"failReason,omitempty"`
}

// Extractor parses source files. Each Extract call creates its own
// tree-sitter parser, so a single Extractor is safe for concurrent use.
type Extractor struct{}

// New returns an import extractor.
func New() *Extractor { return &Extractor{} }

// Extract parses content as the given dialect and returns every usage
// record found. A hard parse failure is local: the result is marked
// failed-with-reason with zero records, and the error return stays nil
// so one bad file never aborts a run. Only context cancellation is
// returned as an error.
func (e *Extractor) Extract(ctx context.Context, file string, content []byte, dialect Dialect) (*Result, error) {
	res := &Result{File: file}

	parser := sitter.NewParser()
	parser.SetLanguage(dialect.language())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		res.Failed = true
		res.FailReason = fmt.Sprintf("parse: %v", err)
		return res, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		res.Failed = true
		res.FailReason = "parser returned no syntax tree"
		return res, nil
	}

	w := &importWalker{content: content, file: file, seen: map[recordKey]bool{}}
	w.walk(root)

	res.Records = w.records
	res.Indeterminate = w.indeterminate
	return res, nil
}

type recordKey struct {
	specifier string
	kind      RefKind
}

type importWalker struct {
	content       []byte
	file          string
	records       []UsageRecord
	seen          map[recordKey]bool
	indeterminate bool
}

func (w *importWalker) add(specifier string, kind RefKind) {
	key := recordKey{specifier, kind}
	if specifier == "" || w.seen[key] {
		return
	}
	w.seen[key] = true
	w.records = append(w.records, UsageRecord{Specifier: specifier, Kind: kind, File: w.file})
}

// walk visits every node; imports can appear at any nesting depth
// (requires inside functions, dynamic imports inside promise chains).
func (w *importWalker) walk(n *sitter.Node) {
	switch n.Type() {
	case "import_statement":
		w.importStatement(n)
	case "export_statement":
		w.exportStatement(n)
	case "call_expression":
		w.callExpression(n)
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.walk(n.NamedChild(i))
	}
}

// importStatement handles ES module imports, distinguishing type-only
// imports (statement-level "import type" and all-inline-type specifier
// lists) from value imports. Both count as usage; the kind differs for
// diagnostics only.
func (w *importWalker) importStatement(n *sitter.Node) {
	source := n.ChildByFieldName("source")
	if source == nil {
		return
	}
	specifier, ok := stringValue(source, w.content)
	if !ok {
		return
	}

	kind := StaticImport
	if hasKeywordChild(n, "type") || allSpecifiersTypeOnly(n) {
		kind = TypeOnlyImport
	}
	w.add(specifier, kind)
}

// exportStatement handles re-exports: export ... from "x" is usage of x.
func (w *importWalker) exportStatement(n *sitter.Node) {
	source := n.ChildByFieldName("source")
	if source == nil {
		return
	}
	specifier, ok := stringValue(source, w.content)
	if !ok {
		return
	}
	kind := StaticImport
	if hasKeywordChild(n, "type") {
		kind = TypeOnlyImport
	}
	w.add(specifier, kind)
}

// callExpression handles require("x") and dynamic import("x"). Arguments
// that are not a plain literal (identifiers, concatenations, templates
// with substitutions) mark the file indeterminate instead of guessing.
func (w *importWalker) callExpression(n *sitter.Node) {
	fn := n.ChildByFieldName("function")
	if fn == nil {
		return
	}

	var kind RefKind
	switch {
	case fn.Type() == "import":
		kind = DynamicImport
	case fn.Type() == "identifier" && fn.Content(w.content) == "require":
		kind = RequireCall
	default:
		return
	}

	args := n.ChildByFieldName("arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return
	}
	arg := args.NamedChild(0)

	specifier, ok := stringValue(arg, w.content)
	if !ok {
		w.indeterminate = true
		return
	}
	w.add(specifier, kind)
}

// hasKeywordChild reports whether n has an anonymous child token equal to
// keyword (tree-sitter exposes keywords like "type" as unnamed nodes).
func hasKeywordChild(n *sitter.Node, keyword string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() && c.Type() == keyword {
			return true
		}
	}
	return false
}

// allSpecifiersTypeOnly reports whether an import statement's specifier
// list exists and consists solely of inline "type" specifiers
// (import { type A, type B } from "x").
func allSpecifiersTypeOnly(stmt *sitter.Node) bool {
	clause := firstNamedOfType(stmt, "import_clause")
	if clause == nil {
		return false
	}
	named := firstNamedOfType(clause, "named_imports")
	if named == nil {
		return false
	}
	total := 0
	for i := 0; i < int(named.NamedChildCount()); i++ {
		spec := named.NamedChild(i)
		if spec.Type() != "import_specifier" {
			continue
		}
		total++
		if !hasKeywordChild(spec, "type") {
			return false
		}
	}
	return total > 0
}

func firstNamedOfType(n *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == nodeType {
			return c
		}
	}
	return nil
}

// stringValue returns the literal value of a string or substitution-free
// template string node. ok is false for any other node, including
// templates with interpolation.
func stringValue(n *sitter.Node, content []byte) (string, bool) {
	switch n.Type() {
	case "string":
		return stripQuotes(n.Content(content)), true
	case "template_string":
		for i := 0; i < int(n.NamedChildCount()); i++ {
			if n.NamedChild(i).Type() == "template_substitution" {
				return "", false
			}
		}
		return stripQuotes(n.Content(content)), true
	default:
		return "", false
	}
}

func stripQuotes(s string) string {
	if len(s) >= 2 {
		switch s[0] {
		case '\'', '"', '`':
			return s[1 : len(s)-1]
		}
	}
	return s
}
