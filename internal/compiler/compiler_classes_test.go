package compiler

import (
	"testing"

	"github.com/cwbudde/escript/internal/frontend"
	"github.com/cwbudde/escript/internal/interp"
	"github.com/cwbudde/escript/internal/realm"
	"github.com/cwbudde/escript/internal/value"
)

// Classes, let/const, and arrow functions cannot reach frontend.Parse
// in these tests: otto only understands ES5, so its parser rejects
// `class`/`let`/`const`/`=>` outright (DESIGN.md's documented gap).
// These trees are hand-built the way go-dws's own compiler tests
// build AST nodes directly rather than going through a parser.

func fieldAssign(name string, value frontend.Expression) frontend.Statement {
	return &frontend.ExpressionStatement{
		Expression: &frontend.AssignExpression{
			Operator: frontend.AssignPlain,
			Target:   &frontend.MemberExpression{Object: &frontend.ThisExpression{}, Property: &frontend.Identifier{Name: name}},
			Value:    value,
		},
	}
}

func runProgram(t *testing.T, prog *frontend.Program) value.Value {
	t.Helper()
	fi, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	agent := realm.NewAgent(0)
	r := agent.NewRealm()
	result, err := interp.RunProgram(r, fi)
	if err != nil {
		t.Fatalf("RunProgram: %v", err)
	}
	return result
}

func TestCompileClassConstructorAndMethod(t *testing.T) {
	animal := &frontend.ClassDeclaration{
		Name: "Animal",
		Members: []*frontend.ClassMember{
			{
				Key:  &frontend.Identifier{Name: "constructor"},
				Kind: frontend.ClassMethod,
				Value: &frontend.FunctionExpression{
					Params: []*frontend.Param{{Target: &frontend.Identifier{Name: "name"}}},
					Body:   &frontend.BlockStatement{Body: []frontend.Statement{fieldAssign("name", &frontend.Identifier{Name: "name"})}},
				},
			},
			{
				Key:  &frontend.Identifier{Name: "speak"},
				Kind: frontend.ClassMethod,
				Value: &frontend.FunctionExpression{
					Body: &frontend.BlockStatement{Body: []frontend.Statement{
						&frontend.ReturnStatement{Argument: &frontend.BinaryExpression{
							Operator: frontend.OpAdd,
							Left:     &frontend.MemberExpression{Object: &frontend.ThisExpression{}, Property: &frontend.Identifier{Name: "name"}},
							Right:    &frontend.StringLiteral{Value: " makes a sound"},
						}},
					}},
				},
			},
		},
	}

	callSpeak := &frontend.ExpressionStatement{
		Expression: &frontend.CallExpression{
			Callee: &frontend.MemberExpression{
				Object:   &frontend.NewExpression{Callee: &frontend.Identifier{Name: "Animal"}, Arguments: []frontend.ArrayElement{{Expression: &frontend.StringLiteral{Value: "Cat"}}}},
				Property: &frontend.Identifier{Name: "speak"},
			},
		},
	}

	prog := &frontend.Program{SourceFile: "<test>", Body: []frontend.Statement{animal, callSpeak}}
	got := runProgram(t, prog)
	if !got.IsString() || got.AsString() != "Cat makes a sound" {
		t.Fatalf("got %s, want %q", got.DebugString(), "Cat makes a sound")
	}
}

func TestCompileDerivedClassSuperCallAndOverride(t *testing.T) {
	animal := &frontend.ClassDeclaration{
		Name: "Animal",
		Members: []*frontend.ClassMember{
			{
				Key:  &frontend.Identifier{Name: "constructor"},
				Kind: frontend.ClassMethod,
				Value: &frontend.FunctionExpression{
					Params: []*frontend.Param{{Target: &frontend.Identifier{Name: "name"}}},
					Body:   &frontend.BlockStatement{Body: []frontend.Statement{fieldAssign("name", &frontend.Identifier{Name: "name"})}},
				},
			},
			{
				Key:  &frontend.Identifier{Name: "speak"},
				Kind: frontend.ClassMethod,
				Value: &frontend.FunctionExpression{
					Body: &frontend.BlockStatement{Body: []frontend.Statement{
						&frontend.ReturnStatement{Argument: &frontend.StringLiteral{Value: "..."}},
					}},
				},
			},
		},
	}

	superCall := &frontend.ExpressionStatement{
		Expression: &frontend.CallExpression{
			Callee:    &frontend.SuperExpression{},
			Arguments: []frontend.ArrayElement{{Expression: &frontend.Identifier{Name: "name"}}},
		},
	}
	dog := &frontend.ClassDeclaration{
		Name:       "Dog",
		SuperClass: &frontend.Identifier{Name: "Animal"},
		Members: []*frontend.ClassMember{
			{
				Key:  &frontend.Identifier{Name: "constructor"},
				Kind: frontend.ClassMethod,
				Value: &frontend.FunctionExpression{
					Params: []*frontend.Param{{Target: &frontend.Identifier{Name: "name"}}},
					Body:   &frontend.BlockStatement{Body: []frontend.Statement{superCall}},
				},
			},
			{
				Key:  &frontend.Identifier{Name: "speak"},
				Kind: frontend.ClassMethod,
				Value: &frontend.FunctionExpression{
					Body: &frontend.BlockStatement{Body: []frontend.Statement{
						&frontend.ReturnStatement{Argument: &frontend.BinaryExpression{
							Operator: frontend.OpAdd,
							Left:     &frontend.MemberExpression{Object: &frontend.ThisExpression{}, Property: &frontend.Identifier{Name: "name"}},
							Right:    &frontend.StringLiteral{Value: " barks"},
						}},
					}},
				},
			},
		},
	}

	callSpeak := &frontend.ExpressionStatement{
		Expression: &frontend.CallExpression{
			Callee: &frontend.MemberExpression{
				Object:   &frontend.NewExpression{Callee: &frontend.Identifier{Name: "Dog"}, Arguments: []frontend.ArrayElement{{Expression: &frontend.StringLiteral{Value: "Rex"}}}},
				Property: &frontend.Identifier{Name: "speak"},
			},
		},
	}

	prog := &frontend.Program{SourceFile: "<test>", Body: []frontend.Statement{animal, dog, callSpeak}}
	got := runProgram(t, prog)
	if !got.IsString() || got.AsString() != "Rex barks" {
		t.Fatalf("got %s, want %q", got.DebugString(), "Rex barks")
	}
}

func TestCompileDerivedClassDefaultConstructorForwardsArgs(t *testing.T) {
	animal := &frontend.ClassDeclaration{
		Name: "Animal",
		Members: []*frontend.ClassMember{
			{
				Key:  &frontend.Identifier{Name: "constructor"},
				Kind: frontend.ClassMethod,
				Value: &frontend.FunctionExpression{
					Params: []*frontend.Param{{Target: &frontend.Identifier{Name: "name"}}},
					Body:   &frontend.BlockStatement{Body: []frontend.Statement{fieldAssign("name", &frontend.Identifier{Name: "name"})}},
				},
			},
		},
	}
	// No explicit constructor: the synthesized default derived
	// constructor must forward its arguments to super(...args).
	dog := &frontend.ClassDeclaration{
		Name:       "Dog",
		SuperClass: &frontend.Identifier{Name: "Animal"},
	}

	readName := &frontend.ExpressionStatement{
		Expression: &frontend.MemberExpression{
			Object:   &frontend.NewExpression{Callee: &frontend.Identifier{Name: "Dog"}, Arguments: []frontend.ArrayElement{{Expression: &frontend.StringLiteral{Value: "Fido"}}}},
			Property: &frontend.Identifier{Name: "name"},
		},
	}

	prog := &frontend.Program{SourceFile: "<test>", Body: []frontend.Statement{animal, dog, readName}}
	got := runProgram(t, prog)
	if !got.IsString() || got.AsString() != "Fido" {
		t.Fatalf("got %s, want %q", got.DebugString(), "Fido")
	}
}

func TestCompileClassInstanceFieldInitializer(t *testing.T) {
	counter := &frontend.ClassDeclaration{
		Name: "Counter",
		Members: []*frontend.ClassMember{
			{
				Key:   &frontend.Identifier{Name: "count"},
				Kind:  frontend.ClassField,
				Value: &frontend.NumberLiteral{Value: 0},
			},
		},
	}
	readCount := &frontend.ExpressionStatement{
		Expression: &frontend.MemberExpression{
			Object:   &frontend.NewExpression{Callee: &frontend.Identifier{Name: "Counter"}},
			Property: &frontend.Identifier{Name: "count"},
		},
	}

	prog := &frontend.Program{SourceFile: "<test>", Body: []frontend.Statement{counter, readCount}}
	got := runProgram(t, prog)
	if !got.IsNumber() || got.Num != 0 {
		t.Fatalf("got %s, want 0", got.DebugString())
	}
}

func TestCompileClassStaticFieldAndMethod(t *testing.T) {
	shape := &frontend.ClassDeclaration{
		Name: "Shape",
		Members: []*frontend.ClassMember{
			{
				Key:   &frontend.Identifier{Name: "sides"},
				Kind:  frontend.ClassField,
				Static: true,
				Value: &frontend.NumberLiteral{Value: 4},
			},
			{
				Key:    &frontend.Identifier{Name: "describe"},
				Kind:   frontend.ClassMethod,
				Static: true,
				Value: &frontend.FunctionExpression{
					Body: &frontend.BlockStatement{Body: []frontend.Statement{
						&frontend.ReturnStatement{Argument: &frontend.MemberExpression{Object: &frontend.Identifier{Name: "Shape"}, Property: &frontend.Identifier{Name: "sides"}}},
					}},
				},
			},
		},
	}
	callDescribe := &frontend.ExpressionStatement{
		Expression: &frontend.CallExpression{
			Callee: &frontend.MemberExpression{Object: &frontend.Identifier{Name: "Shape"}, Property: &frontend.Identifier{Name: "describe"}},
		},
	}

	prog := &frontend.Program{SourceFile: "<test>", Body: []frontend.Statement{shape, callDescribe}}
	got := runProgram(t, prog)
	if !got.IsNumber() || got.Num != 4 {
		t.Fatalf("got %s, want 4", got.DebugString())
	}
}

func TestCompileLetAndConstDeclarations(t *testing.T) {
	letStmt := &frontend.VariableStatement{
		Kind: frontend.VarKindLet,
		Declarations: []*frontend.VariableDeclarator{
			{Target: &frontend.Identifier{Name: "x"}, Initializer: &frontend.NumberLiteral{Value: 10}},
		},
	}
	constStmt := &frontend.VariableStatement{
		Kind: frontend.VarKindConst,
		Declarations: []*frontend.VariableDeclarator{
			{Target: &frontend.Identifier{Name: "y"}, Initializer: &frontend.NumberLiteral{Value: 32}},
		},
	}
	sumExpr := &frontend.ExpressionStatement{
		Expression: &frontend.BinaryExpression{
			Operator: frontend.OpAdd,
			Left:     &frontend.Identifier{Name: "x"},
			Right:    &frontend.Identifier{Name: "y"},
		},
	}

	prog := &frontend.Program{SourceFile: "<test>", Body: []frontend.Statement{letStmt, constStmt, sumExpr}}
	got := runProgram(t, prog)
	if !got.IsNumber() || got.Num != 42 {
		t.Fatalf("got %s, want 42", got.DebugString())
	}
}
