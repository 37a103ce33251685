package compiler

import (
	"testing"

	"github.com/cwbudde/escript/internal/frontend"
	"github.com/cwbudde/escript/internal/interp"
	"github.com/cwbudde/escript/internal/ir"
	"github.com/cwbudde/escript/internal/realm"
	"github.com/cwbudde/escript/internal/value"
)

// runSource parses, compiles, and executes source, returning the
// script's completion value.
func runSource(t *testing.T, source string) value.Value {
	t.Helper()
	prog, err := frontend.Parse(source, "<test>")
	if err != nil {
		t.Fatalf("Parse(%q): %v", source, err)
	}
	fi, err := Compile(prog)
	if err != nil {
		t.Fatalf("Compile(%q): %v", source, err)
	}
	agent := realm.NewAgent(0)
	r := agent.NewRealm()
	result, err := interp.RunProgram(r, fi)
	if err != nil {
		t.Fatalf("RunProgram(%q): %v", source, err)
	}
	return result
}

func TestCompileArithmeticCompletionValue(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   float64
	}{
		{"addition", "1 + 2;", 3},
		{"precedence", "1 + 2 * 3;", 7},
		{"parens", "(1 + 2) * 3;", 9},
		{"subtraction and division", "10 - 4 / 2;", 8},
		{"unary minus", "-5 + 10;", 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := runSource(t, tt.source)
			if !got.IsNumber() || got.Num != tt.want {
				t.Fatalf("got %s, want %v", got.DebugString(), tt.want)
			}
		})
	}
}

func TestCompileVarDeclarationAndAssignment(t *testing.T) {
	got := runSource(t, `
		var x = 1;
		var y = 2;
		x = x + y;
		x;
	`)
	if !got.IsNumber() || got.Num != 3 {
		t.Fatalf("got %s, want 3", got.DebugString())
	}
}

func TestCompileIfStatement(t *testing.T) {
	got := runSource(t, `
		var x = 10;
		var result;
		if (x > 5) {
			result = "big";
		} else {
			result = "small";
		}
		result;
	`)
	if !got.IsString() || got.AsString() != "big" {
		t.Fatalf("got %s, want %q", got.DebugString(), "big")
	}
}

func TestCompileWhileLoop(t *testing.T) {
	got := runSource(t, `
		var i = 0;
		var sum = 0;
		while (i < 5) {
			sum = sum + i;
			i = i + 1;
		}
		sum;
	`)
	if !got.IsNumber() || got.Num != 10 {
		t.Fatalf("got %s, want 10", got.DebugString())
	}
}

func TestCompileForLoopWithBreakAndContinue(t *testing.T) {
	got := runSource(t, `
		var sum = 0;
		for (var i = 0; i < 10; i = i + 1) {
			if (i === 5) { break; }
			if (i % 2 === 0) { continue; }
			sum = sum + i;
		}
		sum;
	`)
	// odd i in [0,5): 1 + 3 = 4
	if !got.IsNumber() || got.Num != 4 {
		t.Fatalf("got %s, want 4", got.DebugString())
	}
}

func TestCompileFunctionDeclarationAndCall(t *testing.T) {
	got := runSource(t, `
		function add(a, b) {
			return a + b;
		}
		add(3, 4);
	`)
	if !got.IsNumber() || got.Num != 7 {
		t.Fatalf("got %s, want 7", got.DebugString())
	}
}

func TestCompileClosureCapturesOuterVariable(t *testing.T) {
	got := runSource(t, `
		function makeCounter() {
			var count = 0;
			return function () {
				count = count + 1;
				return count;
			};
		}
		var counter = makeCounter();
		counter();
		counter();
		counter();
	`)
	if !got.IsNumber() || got.Num != 3 {
		t.Fatalf("got %s, want 3", got.DebugString())
	}
}

func TestCompileArrayAndObjectLiterals(t *testing.T) {
	got := runSource(t, `
		var arr = [1, 2, 3];
		var obj = { a: 1, b: arr[1] };
		obj.a + obj.b;
	`)
	if !got.IsNumber() || got.Num != 3 {
		t.Fatalf("got %s, want 3", got.DebugString())
	}
}

func TestCompileTryCatchRecoversThrownValue(t *testing.T) {
	got := runSource(t, `
		var result;
		try {
			throw "boom";
		} catch (e) {
			result = "caught " + e;
		}
		result;
	`)
	if !got.IsString() || got.AsString() != "caught boom" {
		t.Fatalf("got %s, want %q", got.DebugString(), "caught boom")
	}
}

func TestCompileTryFinallyRunsOnNormalCompletion(t *testing.T) {
	got := runSource(t, `
		var log = "";
		try {
			log = log + "a";
		} finally {
			log = log + "b";
		}
		log;
	`)
	if !got.IsString() || got.AsString() != "ab" {
		t.Fatalf("got %s, want %q", got.DebugString(), "ab")
	}
}

func TestCompileSwitchStatement(t *testing.T) {
	got := runSource(t, `
		function label(x) {
			switch (x) {
				case 1:
					return "one";
				case 2:
					return "two";
				default:
					return "other";
			}
		}
		label(2);
	`)
	if !got.IsString() || got.AsString() != "two" {
		t.Fatalf("got %s, want %q", got.DebugString(), "two")
	}
}

func TestCompileLogicalShortCircuit(t *testing.T) {
	got := runSource(t, `
		function sideEffect() {
			throw "should not run";
		}
		var a = false && sideEffect();
		var b = true || sideEffect();
		a === false && b === true;
	`)
	if !got.IsBoolean() || !got.AsBool() {
		t.Fatalf("got %s, want true", got.DebugString())
	}
}

func TestCompileScriptCompletionValueIgnoresNonExpressionStatements(t *testing.T) {
	got := runSource(t, `
		var x = 1;
		x + 1;
		var y = 2;
	`)
	if !got.IsNumber() || got.Num != 2 {
		t.Fatalf("got %s, want the last expression statement's value (2)", got.DebugString())
	}
}

func TestCompileParseErrorPropagates(t *testing.T) {
	_, err := frontend.Parse("var = ;", "<test>")
	if err == nil {
		t.Fatal("expected a parse error")
	}
}
