package configscan

import (
	"context"
	"fmt"
	"path/filepath"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/blackwell-systems/depprune/internal/extractor"
)

// scanJS handles JS-module-shaped configs (webpack.config.js and friends).
// Two passes over one parse-equivalent view:
//  1. the regular import extractor: a config that requires a plugin is
//     using it, same as source code;
//  2. a tree walk collecting string literals assigned to usage-position
//     keys ("use: ['babel-loader']"), which the extractor cannot see.
func (s *Scanner) scanJS(ctx context.Context, path string, content []byte) ([]extractor.UsageRecord, error) {
	dia, ok := extractor.DialectForPath(path)
	if !ok {
		dia = "js"
	}

	res, err := s.extractor.Extract(ctx, path, content, dia)
	if err != nil {
		return nil, err
	}
	if res.Failed {
		return nil, fmt.Errorf("parse config %s: %s", path, res.FailReason)
	}

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

	// Imports and requires inside a config file count as config
	// references: the kind reflects where the evidence came from.
	for _, r := range res.Records {
		add(r.Specifier)
	}

	name := filepath.Base(path)
	for _, literal := range usageKeyLiterals(ctx, content, dia) {
		add(literal)
		for _, expanded := range expandShorthand(name, literal) {
			add(expanded)
		}
	}
	return records, nil
}

// usageKeyLiterals parses the config with tree-sitter and returns every
// string literal nested under an object key in usageKeys.
func usageKeyLiterals(ctx context.Context, content []byte, dia extractor.Dialect) []string {
	root, err := extractor.ParseTree(ctx, content, dia)
	if err != nil || root == nil {
		return nil
	}
	var out []string
	collectUsagePairs(root, content, &out)
	return out
}

// collectUsagePairs finds "key: value" pairs whose key is a usage
// position and harvests string literals from the value subtree.
func collectUsagePairs(n *sitter.Node, content []byte, out *[]string) {
	if n.Type() == "pair" {
		key := n.ChildByFieldName("key")
		value := n.ChildByFieldName("value")
		if key != nil && value != nil && usageKeys[pairKeyName(key, content)] {
			stringLiterals(value, content, out)
			// Fall through: nested pairs inside the value are walked
			// below so deeper usage keys are still found.
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		collectUsagePairs(n.NamedChild(i), content, out)
	}
}

func pairKeyName(key *sitter.Node, content []byte) string {
	text := key.Content(content)
	if len(text) >= 2 {
		switch text[0] {
		case '\'', '"', '`':
			return text[1 : len(text)-1]
		}
	}
	return text
}

// stringLiterals appends all plain string literals in the subtree.
func stringLiterals(n *sitter.Node, content []byte, out *[]string) {
	if n.Type() == "string" {
		text := n.Content(content)
		if len(text) >= 2 {
			*out = append(*out, text[1:len(text)-1])
		}
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		stringLiterals(n.NamedChild(i), content, out)
	}
}
