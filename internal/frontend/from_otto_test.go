package frontend

import (
	"testing"

	"github.com/robertkrimen/otto/parser"
)

func TestFromOttoBasicArithmetic(t *testing.T) {
	prog, err := parser.ParseFile(nil, "test.js", `
		var x = 1 + 2 * 3;
		function add(a, b) { return a + b; }
		if (x > 0) { x = add(x, 1); } else { x = 0; }
	`, 0)
	if err != nil {
		t.Fatalf("otto parse failed: %v", err)
	}
	fp, err := FromOtto(prog, "test.js")
	if err != nil {
		t.Fatalf("FromOtto failed: %v", err)
	}
	if len(fp.Body) != 3 {
		t.Fatalf("expected 3 top-level statements, got %d", len(fp.Body))
	}
	if _, ok := fp.Body[0].(*VariableStatement); !ok {
		t.Fatalf("expected first statement to be a VariableStatement, got %T", fp.Body[0])
	}
	if _, ok := fp.Body[1].(*FunctionDeclaration); !ok {
		t.Fatalf("expected second statement to be a FunctionDeclaration, got %T", fp.Body[1])
	}
	if _, ok := fp.Body[2].(*IfStatement); !ok {
		t.Fatalf("expected third statement to be an IfStatement, got %T", fp.Body[2])
	}
}

func TestFromOttoForLoop(t *testing.T) {
	prog, err := parser.ParseFile(nil, "test.js", `
		var sum = 0;
		for (var i = 0; i < 10; i++) { sum += i; }
	`, 0)
	if err != nil {
		t.Fatalf("otto parse failed: %v", err)
	}
	fp, err := FromOtto(prog, "test.js")
	if err != nil {
		t.Fatalf("FromOtto failed: %v", err)
	}
	forStmt, ok := fp.Body[1].(*ForStatement)
	if !ok {
		t.Fatalf("expected ForStatement, got %T", fp.Body[1])
	}
	if forStmt.Test == nil || forStmt.Update == nil {
		t.Fatalf("expected for-loop test and update to be populated")
	}
}

// ES2015+ constructs otto cannot parse are exercised directly against
// hand-built frontend.Program fixtures instead of round-tripped through
// FromOtto (see DESIGN.md, "otto as the external parser").
func TestHandBuiltLetAndArrowFixture(t *testing.T) {
	prog := &Program{
		SourceFile: "fixture.js",
		Body: []Statement{
			&VariableStatement{
				Kind: VarKindLet,
				Declarations: []*VariableDeclarator{{
					Target:      &Identifier{Name: "double"},
					Initializer: &FunctionExpression{IsArrow: true,
						Params:         []*Param{{Target: &Identifier{Name: "x"}}},
						ExpressionBody: &BinaryExpression{Operator: OpMul, Left: &Identifier{Name: "x"}, Right: &NumberLiteral{Value: 2}},
					},
				}},
			},
		},
	}
	decl := prog.Body[0].(*VariableStatement)
	if decl.Kind != VarKindLet {
		t.Fatalf("expected let declaration")
	}
	fn := decl.Declarations[0].Initializer.(*FunctionExpression)
	if !fn.IsArrow || fn.ExpressionBody == nil {
		t.Fatalf("expected arrow function with expression body")
	}
}
