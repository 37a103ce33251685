package frontend

import (
	"github.com/robertkrimen/otto/parser"
)

// Parse reads source through otto's own parser and adapts the result
// via FromOtto, so callers never touch otto's AST type directly. It is
// the one entry point cmd/escript and the test262 driver go through;
// everything downstream of it only ever sees this package's own tree.
func Parse(source, sourceFile string) (*Program, error) {
	prog, err := parser.ParseFile(nil, sourceFile, source, 0)
	if err != nil {
		return nil, err
	}
	return FromOtto(prog, sourceFile)
}
