package interp

import (
	"testing"

	"github.com/cwbudde/escript/internal/ir"
	"github.com/cwbudde/escript/internal/value"
)

func TestComparisonAndEqualityOpcodes(t *testing.T) {
	cases := []struct {
		name string
		op   ir.OpCode
		a, b ir.Constant
		want bool
	}{
		{"eq loose number/string", ir.OpEq, numConst(1), strConst("1"), true},
		{"neq loose", ir.OpNotEq, numConst(1), strConst("2"), true},
		{"strict eq type mismatch", ir.OpStrictEq, numConst(1), strConst("1"), false},
		{"strict neq", ir.OpStrictNotEq, numConst(1), strConst("1"), true},
		{"less", ir.OpLess, numConst(1), numConst(2), true},
		{"lessEq equal", ir.OpLessEq, numConst(2), numConst(2), true},
		{"greater", ir.OpGreater, numConst(3), numConst(2), true},
		{"greaterEq equal", ir.OpGreaterEq, numConst(2), numConst(2), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fi := &ir.FunctionInfo{
				Constants: []ir.Constant{c.a, c.b},
				Code: []ir.Instruction{
					instB(ir.OpLoadConst, 0),
					instB(ir.OpLoadConst, 1),
					simple(c.op),
					simple(ir.OpReturn),
				},
			}
			result := runProgram(t, newTestRealm(), fi)
			if result.ToBoolean() != c.want {
				t.Fatalf("%s = %v, want %v", c.op, result.DebugString(), c.want)
			}
		})
	}
}

func TestBitwiseOpcodes(t *testing.T) {
	cases := []struct {
		name string
		op   ir.OpCode
		a, b float64
		want float64
	}{
		{"and", ir.OpBitAnd, 6, 3, 2},
		{"or", ir.OpBitOr, 6, 1, 7},
		{"xor", ir.OpBitXor, 6, 3, 5},
		{"shl", ir.OpShl, 1, 4, 16},
		{"shr", ir.OpShr, -8, 1, -4},
		{"ushr", ir.OpUShr, -1, 28, 15},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			fi := &ir.FunctionInfo{
				Constants: []ir.Constant{numConst(c.a), numConst(c.b)},
				Code: []ir.Instruction{
					instB(ir.OpLoadConst, 0),
					instB(ir.OpLoadConst, 1),
					simple(c.op),
					simple(ir.OpReturn),
				},
			}
			result := runProgram(t, newTestRealm(), fi)
			n, _ := value.ToNumber(result)
			if n != c.want {
				t.Fatalf("%s(%v, %v) = %v, want %v", c.op, c.a, c.b, n, c.want)
			}
		})
	}
}

func TestBitNot(t *testing.T) {
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{numConst(0)},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			simple(ir.OpBitNot),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != -1 {
		t.Fatalf("~0 = %v, want -1", n)
	}
}

func TestDeleteProp(t *testing.T) {
	// var o = {a: 1}; delete o.a; "a" in o
	fi := &ir.FunctionInfo{
		LocalCount: 1,
		Constants:  []ir.Constant{strConst("a"), numConst(1)},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			instB(ir.OpLoadConst, 1),
			instB(ir.OpNewObject, 1),
			instB(ir.OpInitLocal, 0), // o = {a: 1}
			instB(ir.OpGetLocal, 0),
			instB(ir.OpDeleteProp, 0), // delete o.a -> pushes bool, discarded
			simple(ir.OpPop),
			instB(ir.OpLoadConst, 0), // "a"
			instB(ir.OpGetLocal, 0),  // o
			simple(ir.OpInKeyword),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	if result.ToBoolean() {
		t.Fatal("expected \"a\" in o to be false after delete")
	}
}

func TestDeletePropComp(t *testing.T) {
	fi := &ir.FunctionInfo{
		LocalCount: 1,
		Constants:  []ir.Constant{strConst("a"), numConst(1)},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			instB(ir.OpLoadConst, 1),
			instB(ir.OpNewObject, 1),
			instB(ir.OpInitLocal, 0),
			instB(ir.OpGetLocal, 0),
			instB(ir.OpLoadConst, 0), // computed key "a"
			simple(ir.OpDeletePropComp),
			simple(ir.OpReturn), // returns the delete's bool result
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	if !result.ToBoolean() {
		t.Fatal("expected delete o[\"a\"] to report true")
	}
}

func TestInstanceOf(t *testing.T) {
	// function Foo() {}; new Foo() instanceof Foo
	// OpInstanceOf pops ctor first, then the tested value, so the
	// value must sit below the ctor on the stack: [value, ctor].
	ctorFI := &ir.FunctionInfo{
		Name: "Foo",
		Code: []ir.Instruction{simple(ir.OpReturnUndef)},
	}
	fi := &ir.FunctionInfo{
		LocalCount: 1,
		Children:   []*ir.FunctionInfo{ctorFI},
		Code: []ir.Instruction{
			instB(ir.OpMakeClosure, 0), // [Foo]
			instB(ir.OpInitLocal, 0),   // locals[0] = Foo
			instB(ir.OpGetLocal, 0),    // [Foo]
			inst(ir.OpNew, 0, 0),       // [instance]
			instB(ir.OpGetLocal, 0),    // [instance, Foo]
			simple(ir.OpInstanceOf),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	if !result.ToBoolean() {
		t.Fatal("expected new Foo() instanceof Foo to be true")
	}
}

func TestInKeywordMissingKey(t *testing.T) {
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("missing")},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0), // key
			instB(ir.OpNewObject, 0), // {} as obj
			simple(ir.OpInKeyword),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	if result.ToBoolean() {
		t.Fatal("expected \"missing\" in {} to be false")
	}
}

func TestArrayPushAppendsAtLength(t *testing.T) {
	// var a = [1]; a[1] = 2 (via ARRAY_PUSH); a.length
	fi := &ir.FunctionInfo{
		LocalCount: 1,
		Constants:  []ir.Constant{numConst(1), numConst(2), strConst("length")},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			instB(ir.OpNewArray, 1),
			instB(ir.OpInitLocal, 0),
			instB(ir.OpGetLocal, 0),
			instB(ir.OpLoadConst, 1),
			simple(ir.OpArrayPush), // pops value, peeks array, appends
			simple(ir.OpPop),       // drop the array left by ARRAY_PUSH
			instB(ir.OpGetLocal, 0),
			instB(ir.OpGetProp, 2), // .length
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 2 {
		t.Fatalf("array length after push = %v, want 2", n)
	}
}

func TestObjectDefineAccessorGetter(t *testing.T) {
	// var o = {}; Object.defineAccessor(o, "x", () => 42); o.x
	getterFI := &ir.FunctionInfo{
		IsArrow:   true,
		Constants: []ir.Constant{numConst(42)},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			simple(ir.OpReturn),
		},
	}
	fi := &ir.FunctionInfo{
		LocalCount: 1,
		Constants:  []ir.Constant{strConst("x")},
		Children:   []*ir.FunctionInfo{getterFI},
		Code: []ir.Instruction{
			instB(ir.OpNewObject, 0),
			instB(ir.OpInitLocal, 0),
			instB(ir.OpGetLocal, 0), // obj
			instB(ir.OpLoadConst, 0), // key "x"
			instB(ir.OpMakeClosure, 0), // getter fn
			inst(ir.OpObjectDefineAccessor, 0, 0), // A=0 -> getter
			simple(ir.OpPop), // drop obj left on stack
			instB(ir.OpGetLocal, 0),
			instB(ir.OpGetProp, 0),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 42 {
		t.Fatalf("o.x via getter = %v, want 42", n)
	}
}

func TestCollectRestCapturesTrailingArgs(t *testing.T) {
	// function f(a, ...rest) { return rest }  called as f(1, 2, 3)
	child := &ir.FunctionInfo{
		Name:       "f",
		ParamCount: 1,
		LocalCount: 1,
		Code: []ir.Instruction{
			instB(ir.OpCollectRest, 1), // consumed = 1 positional param
			simple(ir.OpReturn),
		},
	}
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{numConst(1), numConst(2), numConst(3)},
		Children:  []*ir.FunctionInfo{child},
		Code: []ir.Instruction{
			instB(ir.OpMakeClosure, 0),
			simple(ir.OpLoadUndefined),
			instB(ir.OpLoadConst, 0),
			instB(ir.OpLoadConst, 1),
			instB(ir.OpLoadConst, 2),
			inst(ir.OpCall, 0, 3),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	arr := result.AsObject()
	if arr == nil {
		t.Fatalf("rest is not an object: %v", result.DebugString())
	}
	n, _ := value.ToNumber(mustGetIndex(t, arr, 0))
	if n != 2 {
		t.Fatalf("rest[0] = %v, want 2", n)
	}
	n, _ = value.ToNumber(mustGetIndex(t, arr, 1))
	if n != 3 {
		t.Fatalf("rest[1] = %v, want 3", n)
	}
}

func mustGetIndex(t *testing.T, obj *value.Object, i int) value.Value {
	t.Helper()
	v, err := obj.Get(value.StringKey(itoaKey(i)), value.FromObject(obj))
	if err != nil {
		t.Fatalf("Get(%d): %v", i, err)
	}
	return v
}

func TestCreateArgumentsObjectLength(t *testing.T) {
	child := &ir.FunctionInfo{
		Name:      "f",
		Constants: []ir.Constant{strConst("length")},
		Code: []ir.Instruction{
			simple(ir.OpCreateArguments),
			instB(ir.OpGetProp, 0), // .length
			simple(ir.OpReturn),
		},
	}
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{numConst(5), numConst(6)},
		Children:  []*ir.FunctionInfo{child},
		Code: []ir.Instruction{
			instB(ir.OpMakeClosure, 0),
			simple(ir.OpLoadUndefined),
			instB(ir.OpLoadConst, 0),
			instB(ir.OpLoadConst, 1),
			inst(ir.OpCall, 0, 2),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 2 {
		t.Fatalf("arguments.length = %v, want 2", n)
	}
}

func TestCallSpread(t *testing.T) {
	// function add(a, b) { return a + b }; add(...[1, 2])
	addFI := &ir.FunctionInfo{
		Name:       "add",
		ParamCount: 2,
		LocalCount: 2,
		Code: []ir.Instruction{
			instB(ir.OpGetLocal, 0),
			instB(ir.OpGetLocal, 1),
			simple(ir.OpAdd),
			simple(ir.OpReturn),
		},
	}
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{numConst(1), numConst(2)},
		Children:  []*ir.FunctionInfo{addFI},
		Code: []ir.Instruction{
			instB(ir.OpMakeClosure, 0),
			simple(ir.OpLoadUndefined),
			instB(ir.OpLoadConst, 0),
			instB(ir.OpLoadConst, 1),
			instB(ir.OpNewArray, 2),
			simple(ir.OpCallSpread),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 3 {
		t.Fatalf("add(...[1,2]) = %v, want 3", n)
	}
}

func TestNewSpreadBuildsInstance(t *testing.T) {
	// function Point(x) { this.x = x }; new Point(...[9])
	ctorFI := &ir.FunctionInfo{
		Name:       "Point",
		ParamCount: 1,
		LocalCount: 1,
		Constants:  []ir.Constant{strConst("this"), strConst("x")},
		Code: []ir.Instruction{
			instB(ir.OpGetBinding, 0), // this
			instB(ir.OpGetLocal, 0),   // x param
			instB(ir.OpSetProp, 1),
			simple(ir.OpPop),
			simple(ir.OpReturnUndef),
		},
	}
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{numConst(9), strConst("x")},
		Children:  []*ir.FunctionInfo{ctorFI},
		Code: []ir.Instruction{
			instB(ir.OpMakeClosure, 0),
			instB(ir.OpLoadConst, 0),
			instB(ir.OpNewArray, 1),
			simple(ir.OpNewSpread),
			instB(ir.OpGetProp, 1),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 9 {
		t.Fatalf("new Point(...[9]).x = %v, want 9", n)
	}
}

func TestArrowClosureCapturesOuterBinding(t *testing.T) {
	// var y = 10; const add = (n) => n + y; add(5)
	arrowFI := &ir.FunctionInfo{
		IsArrow:    true,
		ParamCount: 1,
		LocalCount: 1,
		Constants:  []ir.Constant{strConst("y")},
		Code: []ir.Instruction{
			instB(ir.OpGetLocal, 0),
			instB(ir.OpGetBinding, 0),
			simple(ir.OpAdd),
			simple(ir.OpReturn),
		},
	}
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("y"), numConst(10), numConst(5)},
		Children:  []*ir.FunctionInfo{arrowFI},
		Code: []ir.Instruction{
			instB(ir.OpDeclareVar, 0),
			instB(ir.OpLoadConst, 1),
			instB(ir.OpInitBinding, 0), // y = 10
			instB(ir.OpMakeClosure, 0),
			simple(ir.OpLoadUndefined),
			instB(ir.OpLoadConst, 2), // 5
			inst(ir.OpCall, 0, 1),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 15 {
		t.Fatalf("add(5) = %v, want 15", n)
	}
}

func TestNullishCoalesce(t *testing.T) {
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("fallback")},
		Code: []ir.Instruction{
			simple(ir.OpLoadNull),
			instB(ir.OpLoadConst, 0),
			simple(ir.OpNullishCoalesce),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	s, _ := value.ToString(result)
	if s != "fallback" {
		t.Fatalf("null ?? \"fallback\" = %q, want %q", s, "fallback")
	}
}
