package cmd

import (
	"testing"

	"github.com/cwbudde/escript/internal/interp"
	"github.com/cwbudde/escript/internal/realm"
)

func TestReadSourceEval(t *testing.T) {
	source, file, err := readSource("1 + 2", nil)
	if err != nil {
		t.Fatalf("readSource: %v", err)
	}
	if source != "1 + 2" || file != "<eval>" {
		t.Fatalf("unexpected result: %q, %q", source, file)
	}
}

func TestReadSourceRejectsEvalAndFile(t *testing.T) {
	if _, _, err := readSource("1 + 2", []string{"script.js"}); err == nil {
		t.Fatal("expected an error combining -e with a file argument")
	}
}

func TestReadSourceRequiresSomething(t *testing.T) {
	if _, _, err := readSource("", nil); err == nil {
		t.Fatal("expected an error when neither -e nor a file is given")
	}
}

func TestCompileAndRunExpression(t *testing.T) {
	fi, err := compileSource("1 + 2 * 3;", "<test>")
	if err != nil {
		t.Fatalf("compileSource: %v", err)
	}

	agent := realm.NewAgent(0)
	r := agent.NewRealm()
	result, err := interp.RunProgram(r, fi)
	if err != nil {
		t.Fatalf("RunProgram: %v", err)
	}
	if !result.IsNumber() || result.Num != 7 {
		t.Fatalf("expected 7, got %s", result.DebugString())
	}
}

func TestCompileSourcePropagatesParseError(t *testing.T) {
	if _, err := compileSource("var = ;", "<test>"); err == nil {
		t.Fatal("expected a parse error")
	}
}
