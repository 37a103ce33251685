package interp

import (
	"math/big"
	"testing"

	"github.com/cwbudde/escript/internal/ir"
	"github.com/cwbudde/escript/internal/realm"
	"github.com/cwbudde/escript/internal/value"
)

func newTestRealm() *realm.Realm {
	return realm.NewAgent(256).NewRealm()
}

// runProgram runs fi as a top-level program and fails the test on error.
func runProgram(t *testing.T, r *realm.Realm, fi *ir.FunctionInfo) value.Value {
	t.Helper()
	result, err := RunProgram(r, fi)
	if err != nil {
		t.Fatalf("RunProgram: %v", err)
	}
	return result
}

func strConst(s string) ir.Constant { return ir.Constant{Kind: ir.ConstString, Str: s} }
func numConst(f float64) ir.Constant { return ir.Constant{Kind: ir.ConstNumber, Number: f} }

func inst(op ir.OpCode, a uint8, b uint16) ir.Instruction { return ir.MakeInstruction(op, a, b) }
func simple(op ir.OpCode) ir.Instruction                  { return ir.MakeSimpleInstruction(op) }
func instB(op ir.OpCode, b uint16) ir.Instruction         { return ir.MakeInstructionB(op, b) }

func TestArithmeticAdd(t *testing.T) {
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{numConst(1), numConst(2)},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			instB(ir.OpLoadConst, 1),
			simple(ir.OpAdd),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, err := value.ToNumber(result)
	if err != nil || n != 3 {
		t.Fatalf("1 + 2 = %v (err %v), want 3", result.DebugString(), err)
	}
}

func TestStringConcat(t *testing.T) {
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("foo"), strConst("bar")},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			instB(ir.OpLoadConst, 1),
			simple(ir.OpAdd),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	s, _ := value.ToString(result)
	if s != "foobar" {
		t.Fatalf("got %q, want %q", s, "foobar")
	}
}

func TestBigIntArithmetic(t *testing.T) {
	a := ir.Constant{Kind: ir.ConstBigInt, Str: "10"}
	b := ir.Constant{Kind: ir.ConstBigInt, Str: "3"}
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{a, b},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			instB(ir.OpLoadConst, 1),
			simple(ir.OpMod),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	bi, ok := result.Data.(*big.Int)
	if !ok || bi.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("10n %% 3n = %v, want 1n", result.DebugString())
	}
}

func TestRelationalWithNaNIsFalse(t *testing.T) {
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("abc")},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0), // "abc"
			simple(ir.OpLoadUndefined),
			simple(ir.OpLess),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	if result.ToBoolean() {
		t.Fatalf("\"abc\" < undefined should be false (NaN involved), got %v", result.DebugString())
	}
}

func TestJumpForwardSkipsDeadCode(t *testing.T) {
	// LOAD_TRUE; JUMP +2 (skip the next two instrs); LOAD_FALSE; POP; RETURN(true)
	fi := &ir.FunctionInfo{
		Code: []ir.Instruction{
			simple(ir.OpLoadTrue),
			instB(ir.OpJump, 2),
			simple(ir.OpLoadFalse),
			simple(ir.OpPop),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	if !result.ToBoolean() {
		t.Fatalf("expected jump to skip dead code, got %v", result.DebugString())
	}
}

func TestLocalsGetSetInit(t *testing.T) {
	fi := &ir.FunctionInfo{
		LocalCount: 1,
		Constants:  []ir.Constant{numConst(41)},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			instB(ir.OpInitLocal, 0), // locals[0] = 41, pops
			instB(ir.OpGetLocal, 0),
			simple(ir.OpInc),
			instB(ir.OpSetLocal, 0), // peek, locals[0] = 42
			simple(ir.OpPop),
			instB(ir.OpGetLocal, 0),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 42 {
		t.Fatalf("got %v, want 42", n)
	}
}

func TestVarDeclareAndGlobalBinding(t *testing.T) {
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("x"), numConst(7)},
		Code: []ir.Instruction{
			instB(ir.OpDeclareVar, 0), // var x
			instB(ir.OpLoadConst, 1),
			instB(ir.OpInitBinding, 0), // x = 7
			instB(ir.OpGetBinding, 0),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 7 {
		t.Fatalf("got %v, want 7", n)
	}
}

func TestUndeclaredBindingIsReferenceError(t *testing.T) {
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("nope")},
		Code: []ir.Instruction{
			instB(ir.OpGetBinding, 0),
			simple(ir.OpReturn),
		},
	}
	_, err := RunProgram(newTestRealm(), fi)
	if err == nil {
		t.Fatal("expected an uncaught ReferenceError, got nil")
	}
	tv, ok := err.(*ThrownValue)
	if !ok {
		t.Fatalf("expected *ThrownValue, got %T: %v", err, err)
	}
	name, _ := tv.Value.AsObject().Get(value.StringKey("name"), tv.Value)
	if s, _ := value.ToString(name); s != "ReferenceError" {
		t.Fatalf("expected ReferenceError, got %v", s)
	}
}

func TestDeclareVarRejectsRestrictedGlobalName(t *testing.T) {
	// var undefined; at top level must fail rather than silently
	// coexist with the realm's non-configurable `undefined` global.
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("undefined")},
		Code: []ir.Instruction{
			instB(ir.OpDeclareVar, 0),
			simple(ir.OpReturnUndef),
		},
	}
	_, err := RunProgram(newTestRealm(), fi)
	if err == nil {
		t.Fatal("expected an uncaught TypeError, got nil")
	}
	tv, ok := err.(*ThrownValue)
	if !ok {
		t.Fatalf("expected *ThrownValue, got %T: %v", err, err)
	}
	name, _ := tv.Value.AsObject().Get(value.StringKey("name"), tv.Value)
	if s, _ := value.ToString(name); s != "TypeError" {
		t.Fatalf("expected TypeError, got %v", s)
	}
}

func TestTryCatchHandlesThrownValue(t *testing.T) {
	// try { throw "boom" } catch (e) { return e }
	// Code offsets:
	// 0: LOAD_CONST "boom"
	// 1: THROW
	// 2: (handler) DECLARE_LET "e"
	// 3: INIT_BINDING "e" (value pushed by raiseAt)
	// 4: GET_BINDING "e"
	// 5: RETURN
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("boom"), strConst("e")},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			simple(ir.OpThrow),
			instB(ir.OpDeclareLet, 1),
			instB(ir.OpInitBinding, 1),
			instB(ir.OpGetBinding, 1),
			simple(ir.OpReturn),
		},
		Handlers: []ir.HandlerRegion{
			{Start: 0, End: 2, Handler: 2, StackDepth: 0},
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	s, _ := value.ToString(result)
	if s != "boom" {
		t.Fatalf("got %q, want %q", s, "boom")
	}
}

func TestUncaughtThrowPropagatesAsThrownValue(t *testing.T) {
	fi := &ir.FunctionInfo{
		Name:      "thrower",
		Constants: []ir.Constant{strConst("nope")},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			simple(ir.OpThrow),
		},
	}
	_, err := RunProgram(newTestRealm(), fi)
	tv, ok := err.(*ThrownValue)
	if !ok {
		t.Fatalf("expected *ThrownValue, got %T", err)
	}
	s, _ := value.ToString(tv.Value)
	if s != "nope" {
		t.Fatalf("thrown value = %q, want %q", s, "nope")
	}
	if len(tv.Trace) == 0 {
		t.Fatal("expected a non-empty stack trace")
	}
}

func TestNewObjectAndGetProp(t *testing.T) {
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("a"), numConst(1)},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			instB(ir.OpLoadConst, 1),
			instB(ir.OpNewObject, 1),
			instB(ir.OpGetProp, 0),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 1 {
		t.Fatalf("got %v, want 1", n)
	}
}

func TestNewArrayAndIteration(t *testing.T) {
	r := newTestRealm()
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{numConst(10), numConst(20)},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			instB(ir.OpLoadConst, 1),
			instB(ir.OpNewArray, 2),
			simple(ir.OpGetIterator),
			simple(ir.OpIterNext), // stack: [iter] -> [value, done]
			simple(ir.OpPop),      // drop done
			simple(ir.OpReturn),   // value on top
		},
	}
	result := runProgram(t, r, fi)
	n, _ := value.ToNumber(result)
	if n != 10 {
		t.Fatalf("got %v, want 10 (first array element)", n)
	}
}
