// Package tsvalidate provides a secondary, syntax-only validation pass
// over source text using tree-sitter's JavaScript grammar. It runs
// alongside otto's own parse (internal/frontend.FromOtto) as a sanity
// check: tree-sitter accepts the full modern grammar otto does not, so
// a syntax error tree-sitter reports but otto's parser missed (or vice
// versa) is a signal worth surfacing rather than silently trusting one
// parser's opinion.
package tsvalidate

import (
	"context"
	"fmt"
	"io"

	ts "github.com/smacker/go-tree-sitter"
	javascript "github.com/smacker/go-tree-sitter/javascript"
)

// ValidateReader reads all of rdr and validates it as ValidateBytes does.
func ValidateReader(path string, rdr io.Reader) error {
	src, err := io.ReadAll(rdr)
	if err != nil {
		return err
	}
	return ValidateBytes(path, src)
}

// ValidateBytes parses src with tree-sitter's JavaScript grammar and
// reports the first ERROR node encountered, named with path for
// diagnostics. It reports only syntax-tree shape; it does not build or
// return an AST, since the compiler consumes internal/frontend's own
// tree instead.
func ValidateBytes(path string, src []byte) error {
	parser := ts.NewParser()
	parser.SetLanguage(javascript.GetLanguage())

	tree, err := parser.ParseCtx(context.Background(), nil, src)
	if err != nil {
		return err
	}

	iter := ts.NewIterator(tree.RootNode(), ts.DFSMode)
	err = iter.ForEach(func(node *ts.Node) error {
		if node.IsError() || node.IsMissing() {
			return fmt.Errorf("%s: syntax error near byte %d: %s", path, node.StartByte(), node.String())
		}
		return nil
	})
	if err == io.EOF {
		err = nil
	}
	return err
}
