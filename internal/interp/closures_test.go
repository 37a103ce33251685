package interp

import (
	"testing"

	"github.com/cwbudde/escript/internal/ir"
	"github.com/cwbudde/escript/internal/value"
)

func TestClosureCallReturnsParam(t *testing.T) {
	// function add1(n) { return n + 1 }
	child := &ir.FunctionInfo{
		Name:       "add1",
		ParamCount: 1,
		LocalCount: 1,
		Constants:  []ir.Constant{numConst(1)},
		Code: []ir.Instruction{
			instB(ir.OpGetLocal, 0),
			instB(ir.OpLoadConst, 0),
			simple(ir.OpAdd),
			simple(ir.OpReturn),
		},
	}
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{numConst(41)},
		Children:  []*ir.FunctionInfo{child},
		Code: []ir.Instruction{
			instB(ir.OpMakeClosure, 0), // -> [fn]
			simple(ir.OpLoadUndefined), // this
			instB(ir.OpLoadConst, 0),   // 41
			inst(ir.OpCall, 0, 1),      // 1 arg
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 42 {
		t.Fatalf("add1(41) = %v, want 42", n)
	}
}

func TestConstructBuildsInstance(t *testing.T) {
	// function Point() { this.x = 5 }
	// new Point().x
	ctorFI := &ir.FunctionInfo{
		Name:      "Point",
		Constants: []ir.Constant{strConst("x"), numConst(5), strConst("this")},
		Code: []ir.Instruction{
			instB(ir.OpGetBinding, 2), // this
			instB(ir.OpLoadConst, 1), // 5
			instB(ir.OpSetProp, 0),   // this.x = 5
			simple(ir.OpPop),
			simple(ir.OpReturnUndef),
		},
	}
	fi := &ir.FunctionInfo{
		Constants: []ir.Constant{strConst("x")},
		Children:  []*ir.FunctionInfo{ctorFI},
		Code: []ir.Instruction{
			instB(ir.OpMakeClosure, 0),
			inst(ir.OpNew, 0, 0),
			instB(ir.OpGetProp, 0),
			simple(ir.OpReturn),
		},
	}
	result := runProgram(t, newTestRealm(), fi)
	n, _ := value.ToNumber(result)
	if n != 5 {
		t.Fatalf("new Point().x = %v, want 5", n)
	}
}

// TestMakeClassBaseConstructorAndMethod drives makeClass/makeClosure
// directly rather than through bytecode: compiled class bytecode emits
// OpMakeClass for the constructor and OpMakeClosure plus
// OpClassDefineMethod for each method, all indexing the enclosing
// function's Children - this just skips needing a compiler to produce
// that bytecode for the test.
func TestMakeClassBaseConstructorAndMethod(t *testing.T) {
	// class C { greet() { return "hi" } }
	// new C().greet()
	methodFI := &ir.FunctionInfo{
		Name:      "greet",
		Constants: []ir.Constant{strConst("hi")},
		Code: []ir.Instruction{
			instB(ir.OpLoadConst, 0),
			simple(ir.OpReturn),
		},
	}
	ctorFI := &ir.FunctionInfo{
		Name: "C",
		Code: []ir.Instruction{
			simple(ir.OpReturnUndef),
		},
	}

	r := newTestRealm()
	ctor, err := makeClass(r, ctorFI, r.GlobalEnv, value.Undefined())
	if err != nil {
		t.Fatalf("makeClass: %v", err)
	}
	method := makeClosure(r, methodFI, r.GlobalEnv)
	defineClassMethod(ctor, value.StringKey("greet"), method, 0)

	instanceVal, err := ctor.Construct(nil, ctor)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	instance := instanceVal.AsObject()
	greetVal, err := instance.Get(value.StringKey("greet"), instanceVal)
	if err != nil {
		t.Fatalf("Get greet: %v", err)
	}
	greet := greetVal.AsObject()
	result, err := greet.Call(instanceVal, nil)
	if err != nil {
		t.Fatalf("greet(): %v", err)
	}
	s, _ := value.ToString(result)
	if s != "hi" {
		t.Fatalf("greet() = %q, want %q", s, "hi")
	}
}

func TestDerivedClassSuperCallBindsThis(t *testing.T) {
	// class Base { constructor() { this.tag = "base" } }
	// class Derived extends Base {
	//   constructor() { super(); return this.tag }
	// }
	baseCtor := &ir.FunctionInfo{
		Name:      "Base",
		Constants: []ir.Constant{strConst("this"), strConst("tag"), strConst("base")},
		Code: []ir.Instruction{
			instB(ir.OpGetBinding, 0),
			instB(ir.OpLoadConst, 2),
			instB(ir.OpSetProp, 1),
			simple(ir.OpPop),
			simple(ir.OpReturnUndef),
		},
	}
	derivedCtor := &ir.FunctionInfo{
		Name:      "Derived",
		Constants: []ir.Constant{strConst("this"), strConst("tag")},
		Code: []ir.Instruction{
			inst(ir.OpSuperCall, 0, 0),
			instB(ir.OpGetBinding, 0),
			instB(ir.OpGetProp, 1),
			simple(ir.OpReturn),
		},
	}

	r := newTestRealm()
	baseClass, err := makeClass(r, baseCtor, r.GlobalEnv, value.Undefined())
	if err != nil {
		t.Fatalf("makeClass base: %v", err)
	}
	derivedClass, err := makeClass(r, derivedCtor, r.GlobalEnv, value.FromObject(baseClass))
	if err != nil {
		t.Fatalf("makeClass derived: %v", err)
	}
	result, err := derivedClass.Construct(nil, derivedClass)
	if err != nil {
		t.Fatalf("Construct derived: %v", err)
	}
	s, _ := value.ToString(result)
	if s != "base" {
		t.Fatalf("derived instance tag = %q, want %q", s, "base")
	}
}
