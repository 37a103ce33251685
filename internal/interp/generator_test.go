package interp

import (
	"testing"

	"github.com/cwbudde/escript/internal/ir"
	"github.com/cwbudde/escript/internal/value"
)

// buildCountingGenerator builds a generator function body equivalent
// to:
//
//	function* gen() {
//	  yield 1
//	  yield 2
//	  return 3
//	}
func buildCountingGenerator() *ir.FunctionInfo {
	return &ir.FunctionInfo{
		Name:        "gen",
		IsGenerator: true,
		Constants:   []ir.Constant{numConst(1), numConst(2), numConst(3)},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			simple(ir.OpYield),
			simple(ir.OpPop), // drop the resume argument
			instB(ir.OpLoadConst, 1),
			simple(ir.OpYield),
			simple(ir.OpPop),
			instB(ir.OpLoadConst, 2),
			simple(ir.OpReturn),
		},
	}
}

func newGeneratorInstance(t *testing.T) *value.Object {
	t.Helper()
	r := newTestRealm()
	fn := makeClosure(r, buildCountingGenerator(), r.GlobalEnv)
	result, err := fn.Call(value.Undefined(), nil)
	if err != nil {
		t.Fatalf("calling a generator function: %v", err)
	}
	gen := result.AsObject()
	if gen == nil || gen.Class != "Generator" {
		t.Fatalf("expected a Generator object, got %v", result.DebugString())
	}
	return gen
}

func callMethod(t *testing.T, obj *value.Object, name string, arg value.Value) (value.Value, value.Value, bool) {
	t.Helper()
	methodVal, err := obj.Get(value.StringKey(name), value.FromObject(obj))
	if err != nil {
		t.Fatalf("Get(%q): %v", name, err)
	}
	method := methodVal.AsObject()
	result, err := method.Call(value.FromObject(obj), []value.Value{arg})
	if err != nil {
		t.Fatalf("%s(): %v", name, err)
	}
	resObj := result.AsObject()
	doneVal, _ := resObj.Get(value.StringKey("done"), result)
	valVal, _ := resObj.Get(value.StringKey("value"), result)
	return valVal, doneVal, doneVal.ToBoolean()
}

func TestGeneratorYieldsThenReturns(t *testing.T) {
	gen := newGeneratorInstance(t)

	v, _, done := callMethod(t, gen, "next", value.Undefined())
	if done {
		t.Fatal("expected not done after first next()")
	}
	if n, _ := value.ToNumber(v); n != 1 {
		t.Fatalf("first yield = %v, want 1", n)
	}

	v, _, done = callMethod(t, gen, "next", value.Undefined())
	if done {
		t.Fatal("expected not done after second next()")
	}
	if n, _ := value.ToNumber(v); n != 2 {
		t.Fatalf("second yield = %v, want 2", n)
	}

	v, _, done = callMethod(t, gen, "next", value.Undefined())
	if !done {
		t.Fatal("expected done after return")
	}
	if n, _ := value.ToNumber(v); n != 3 {
		t.Fatalf("return value = %v, want 3", n)
	}

	// Calling next() again on a completed generator yields undefined/done.
	v, _, done = callMethod(t, gen, "next", value.Undefined())
	if !done || !v.IsUndefined() {
		t.Fatalf("completed generator next() = (%v, done=%v), want (undefined, true)", v.DebugString(), done)
	}
}

func TestGeneratorReturnBeforeExhaustionSkipsToCompletion(t *testing.T) {
	gen := newGeneratorInstance(t)

	v, _, done := callMethod(t, gen, "next", value.Undefined())
	if done || v.IsUndefined() {
		t.Fatalf("expected a live first yield, got (%v, done=%v)", v.DebugString(), done)
	}

	v, _, done = callMethod(t, gen, "return", value.String("stopped"))
	if !done {
		t.Fatal("expected return() to complete the generator immediately")
	}
	s, _ := value.ToString(v)
	if s != "stopped" {
		t.Fatalf("return() value = %q, want %q", s, "stopped")
	}

	v, _, done = callMethod(t, gen, "next", value.Undefined())
	if !done || !v.IsUndefined() {
		t.Fatalf("next() after return() = (%v, done=%v), want (undefined, true)", v.DebugString(), done)
	}
}

func TestGeneratorThrowAtYieldPropagatesWhenUncaught(t *testing.T) {
	gen := newGeneratorInstance(t)

	_, _, done := callMethod(t, gen, "next", value.Undefined())
	if done {
		t.Fatal("expected a live first yield")
	}

	methodVal, _ := gen.Get(value.StringKey("throw"), value.FromObject(gen))
	method := methodVal.AsObject()
	_, err := method.Call(value.FromObject(gen), []value.Value{value.String("boom")})
	if err == nil {
		t.Fatal("expected throw() with no handler to propagate an error")
	}
	tv, ok := err.(*ThrownValue)
	if !ok {
		t.Fatalf("expected *ThrownValue, got %T", err)
	}
	s, _ := value.ToString(tv.Value)
	if s != "boom" {
		t.Fatalf("thrown value = %q, want %q", s, "boom")
	}
}
