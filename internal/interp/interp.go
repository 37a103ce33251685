// Package interp executes compiled FunctionInfo bytecode (internal/ir)
// against a Realm: the stack-based dispatch loop, call/construct entry
// points bridging native and interpreted code, exception-handler
// dispatch, the iteration protocol, and generator suspend/resume.
package interp

import (
	"fmt"

	"github.com/cwbudde/escript/internal/env"
	"github.com/cwbudde/escript/internal/errs"
	"github.com/cwbudde/escript/internal/ir"
	"github.com/cwbudde/escript/internal/realm"
	"github.com/cwbudde/escript/internal/value"
)

// FunctionData is the Extra payload of every interpreted function
// object (Object.Extra), bridging an ir.FunctionInfo to the runtime
// state a call against it needs: the environment it closed over, the
// realm it runs against, and (for methods and class constructors) the
// home object used to resolve `super`.
type FunctionData struct {
	FI         *ir.FunctionInfo
	ClosureEnv env.Record
	Realm      *realm.Realm

	// HomeObject is the object a method was defined on (a class
	// prototype, or the class constructor itself for static methods);
	// `super.x` resolves against its [[Prototype]].
	HomeObject *value.Object

	// FuncObj points back at the function object this data is attached
	// to, set once by makeClosure/makeClass. super(...) calls resolve
	// the parent constructor via FuncObj.GetPrototypeOf().
	FuncObj *value.Object

	IsDerived bool
}

// Frame is one activation record: the operand stack, indexed locals,
// current environment record, and instruction pointer for a single
// FunctionInfo. Frames for generator calls outlive a single Call/next
// invocation, which is what makes generator resumption possible: run
// just continues the for-loop in ip where it left off.
type Frame struct {
	fd     *FunctionData
	locals []value.Value
	stack  []value.Value
	ip     int
	curEnv env.Record

	rawArgs   []value.Value
	newTarget *value.Object

	// homeObject mirrors fd.HomeObject for quick access during super
	// property lookups; identical for the lifetime of the frame.
	homeObject *value.Object
}

func (f *Frame) push(v value.Value) { f.stack = append(f.stack, v) }

func (f *Frame) pop() value.Value {
	n := len(f.stack) - 1
	v := f.stack[n]
	f.stack = f.stack[:n]
	return v
}

func (f *Frame) popN(n int) []value.Value {
	out := make([]value.Value, n)
	copy(out, f.stack[len(f.stack)-n:])
	f.stack = f.stack[:len(f.stack)-n]
	return out
}

func (f *Frame) peek() value.Value { return f.stack[len(f.stack)-1] }

func (f *Frame) truncate(depth int) {
	if depth < len(f.stack) {
		f.stack = f.stack[:depth]
	}
}

// outcome distinguishes why run returned control to its caller: a
// normal/explicit return, or a generator suspending at a yield point.
type outcome int

const (
	outcomeReturn outcome = iota
	outcomeYield
)

// RunProgram executes a top-level script's FunctionInfo (the implicit
// parameterless function the compiler produces for module/script
// bodies) directly against r's global environment record, so `this`
// at top level resolves to globalThis via GetThisBinding's own
// *env.Global case rather than through a synthetic function
// environment wrapping it.
func RunProgram(r *realm.Realm, fi *ir.FunctionInfo) (value.Value, error) {
	fd := &FunctionData{FI: fi, ClosureEnv: r.GlobalEnv, Realm: r}
	f := &Frame{fd: fd, locals: make([]value.Value, fi.LocalCount), curEnv: r.GlobalEnv}
	for i := range f.locals {
		f.locals[i] = value.Undefined()
	}

	result, oc, err := run(f)
	if err != nil {
		return value.Undefined(), err
	}
	if oc == outcomeYield {
		return value.Undefined(), errs.NewInternal("yield at top level")
	}
	if r.Agent != nil {
		if jobErr := r.Agent.RunJobs(); jobErr != nil {
			return result, jobErr
		}
	}
	return result, nil
}

// Call implements an ordinary function call against fd (ECMA-262
// 10.2.1's [[Call]] for an ECMAScript function object), usable both as
// a value.Object.Call hook and for OpCall's interpreter-to-interpreter
// fast path.
func Call(fd *FunctionData, thisArg value.Value, args []value.Value) (value.Value, error) {
	return callWithTarget(fd, thisArg, args, nil, env.ThisInitialized)
}

// callArrow is Call's counterpart for arrow functions: the function
// environment has no own `this`/`arguments`/new.target, so the frame's
// env is a plain Declarative extending the closure env directly and
// `this` resolution walks outward per GetThisBinding.
func callArrow(fd *FunctionData, args []value.Value) (value.Value, error) {
	return callWithTarget(fd, value.Undefined(), args, nil, env.ThisLexical)
}

func callWithTarget(fd *FunctionData, thisArg value.Value, args []value.Value, newTarget *value.Object, status env.ThisBindingStatus) (value.Value, error) {
	if fd.Realm.Agent != nil && !fd.Realm.Agent.EnterCall() {
		return value.Undefined(), &errs.RuntimeError{Message: "RangeError: Maximum call stack size exceeded"}
	}
	defer func() {
		if fd.Realm.Agent != nil {
			fd.Realm.Agent.ExitCall()
		}
	}()

	f := newFrame(fd, args, newTarget, status)
	if status == env.ThisInitialized {
		fnEnv := f.curEnv.(*env.Function)
		fnEnv.BindThisValue(thisArg)
	}
	if err := bindParameters(f); err != nil {
		return value.Undefined(), err
	}

	if fd.FI.IsGenerator {
		// Calling a generator function only instantiates the generator
		// (ECMA-262 27.5.3); the body itself runs lazily, driven by
		// next()/return()/throw(), each of which enters/exits the call
		// stack on its own for the duration of that resumption. The
		// deferred ExitCall above balances the EnterCall this
		// invocation made to get this far.
		return value.FromObject(newGeneratorObject(fd, f)), nil
	}

	result, oc, err := run(f)
	if err != nil {
		return value.Undefined(), err
	}
	if oc == outcomeYield {
		// A bare (non-generator) call must never observe a suspended
		// frame; generator bodies are only ever driven through
		// generator next()/return()/throw(), never Call directly.
		return value.Undefined(), errs.NewInternal("yield outside generator body")
	}

	// Microtasks drain only at the outermost activation (RunProgram),
	// never here: a nested call returning to Agent depth 0 would be
	// wrong when the call stack depth is tracked relative to Construct
	// calls made during script evaluation, since RunProgram itself
	// never increments it. See RunProgram's own drain call.
	return result, nil
}

// Construct implements [[Construct]] for an ECMAScript function
// object (ECMA-262 10.2.2): allocate (unless derived, in which case
// `this` is bound later by the body's super() call), run the body,
// and fall back to the allocated receiver when the body returns a
// non-object.
func Construct(fd *FunctionData, args []value.Value, newTarget *value.Object) (value.Value, error) {
	if fd.FI.IsGenerator || fd.FI.IsArrow {
		return value.Undefined(), typeErr("this function is not a constructor")
	}

	if fd.IsDerived {
		result, err := callWithTarget(fd, value.Undefined(), args, newTarget, env.ThisUninitialized)
		if err != nil {
			return value.Undefined(), err
		}
		return result, nil
	}

	proto := prototypeFromConstructor(newTarget, fd.Realm.ObjectPrototype)
	receiver := value.NewObject(proto)
	result, err := callWithTarget(fd, value.FromObject(receiver), args, newTarget, env.ThisInitialized)
	if err != nil {
		return value.Undefined(), err
	}
	if result.IsObject() {
		return result, nil
	}
	return value.FromObject(receiver), nil
}

// prototypeFromConstructor implements OrdinaryCreateFromConstructor's
// prototype lookup (ECMA-262 10.1.13): newTarget's own "prototype"
// property, falling back to fallback when it is missing or not an
// object (a plain function used as `new.target` with its prototype
// deleted, for instance).
func prototypeFromConstructor(newTarget *value.Object, fallback *value.Object) *value.Object {
	if newTarget == nil {
		return fallback
	}
	protoVal, err := newTarget.Get(value.StringKey("prototype"), value.FromObject(newTarget))
	if err != nil || !protoVal.IsObject() {
		return fallback
	}
	return protoVal.AsObject()
}

func newFrame(fd *FunctionData, args []value.Value, newTarget *value.Object, status env.ThisBindingStatus) *Frame {
	var parentEnv env.Record = fd.ClosureEnv
	// callWithTarget binds an ordinary call's `this` through
	// BindThisValue, which needs the record to start uninitialized.
	envStatus := status
	if status == env.ThisInitialized {
		envStatus = env.ThisUninitialized
	}
	fnEnv := env.NewFunction(parentEnv, envStatus, fd.FuncObj)
	fnEnv.HomeObject = fd.HomeObject
	fnEnv.NewTarget = newTarget

	f := &Frame{
		fd:         fd,
		locals:     make([]value.Value, fd.FI.LocalCount),
		curEnv:     fnEnv,
		rawArgs:    args,
		newTarget:  newTarget,
		homeObject: fd.HomeObject,
	}
	for i := range f.locals {
		f.locals[i] = value.Undefined()
	}
	return f
}

// bindParameters installs the call's raw arguments into the function's
// leading local slots (parameters always start in a local slot even
// when later promoted to an env binding by the function prologue; see
// DESIGN.md's closure-binding note). Missing trailing arguments bind
// to Undefined, matching ECMA-262 FunctionDeclarationInstantiation.
func bindParameters(f *Frame) error {
	n := f.fd.FI.ParamCount
	for i := 0; i < n && i < f.fd.LocalParamCount(); i++ {
		if i < len(f.rawArgs) {
			f.locals[i] = f.rawArgs[i]
		} else {
			f.locals[i] = value.Undefined()
		}
	}
	return nil
}

// LocalParamCount reports how many of FI.LocalCount leading slots are
// the positional parameter slots bindParameters should populate: this
// is just ParamCount, but named so the prologue bytecode (which may
// re-home a parameter into an env binding immediately after) and
// bindParameters agree on the contract without a magic number at the
// call site.
func (fd *FunctionData) LocalParamCount() int { return fd.FI.ParamCount }

func typeErr(format string, args ...interface{}) error {
	return &value.CoercionError{Message: fmt.Sprintf(format, args...)}
}
