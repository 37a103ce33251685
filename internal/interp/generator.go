package interp

import (
	"github.com/cwbudde/escript/internal/errs"
	"github.com/cwbudde/escript/internal/realm"
	"github.com/cwbudde/escript/internal/value"
)

// generatorState tracks where a generator sits relative to its four
// observable states in ECMA-262 27.5: it has not started running yet,
// it is parked at a yield waiting for the next resumption, it is
// actively running a turn of its own body, or it has run to completion
// (a return, an uncaught throw, or falling off the end all land here).
type generatorState int

const (
	generatorSuspendedStart generatorState = iota
	generatorSuspendedYield
	generatorExecuting
	generatorCompleted
)

// generatorData is the Extra payload of a generator object: the Frame
// that keeps its locals, operand stack, and instruction pointer alive
// across suspensions, plus enough state to reject concurrent or
// post-completion resumption attempts.
type generatorData struct {
	fd    *FunctionData
	frame *Frame
	state generatorState
}

func newGeneratorObject(fd *FunctionData, f *Frame) *value.Object {
	gd := &generatorData{fd: fd, frame: f, state: generatorSuspendedStart}
	obj := value.NewObject(fd.Realm.ObjectPrototype)
	obj.Class = "Generator"
	obj.Extra = gd

	defineGeneratorMethod(fd.Realm, obj, "next", gd.next)
	defineGeneratorMethod(fd.Realm, obj, "return", gd.doReturn)
	defineGeneratorMethod(fd.Realm, obj, "throw", gd.doThrow)
	obj.DefineOwnProperty(value.SymbolKey(fd.Realm.Symbols.Iterator), value.DataDescriptor(
		value.FromObject(value.NewNativeFunction("[Symbol.iterator]", 0, fd.Realm.FunctionPrototype, func(this value.Value, _ []value.Value) (value.Value, error) {
			return this, nil
		})), true, false, true))
	return obj
}

func defineGeneratorMethod(r *realm.Realm, obj *value.Object, name string, fn func(value.Value) (value.Value, error)) {
	obj.DefineDataProperty(value.StringKey(name), value.FromObject(
		value.NewNativeFunction(name, 1, r.FunctionPrototype, func(_ value.Value, args []value.Value) (value.Value, error) {
			var a value.Value
			if len(args) > 0 {
				a = args[0]
			}
			return fn(a)
		})))
}

func iterResult(r *realm.Realm, v value.Value, done bool) value.Value {
	obj := value.NewObject(r.ObjectPrototype)
	obj.DefineDataProperty(value.StringKey("value"), v)
	obj.DefineDataProperty(value.StringKey("done"), value.Bool(done))
	return value.FromObject(obj)
}

func (gd *generatorData) next(resumeArg value.Value) (value.Value, error) {
	if gd.state == generatorCompleted {
		return iterResult(gd.fd.Realm, value.Undefined(), true), nil
	}
	if gd.state == generatorExecuting {
		return value.Undefined(), typeErr("generator is already running")
	}
	if gd.state == generatorSuspendedYield {
		gd.frame.push(resumeArg)
	}
	return gd.resume()
}

func (gd *generatorData) doReturn(v value.Value) (value.Value, error) {
	if gd.state == generatorCompleted || gd.state == generatorSuspendedStart {
		gd.state = generatorCompleted
		return iterResult(gd.fd.Realm, v, true), nil
	}
	if gd.state == generatorExecuting {
		return value.Undefined(), typeErr("generator is already running")
	}
	// A return() while suspended at a yield skips straight to
	// completion rather than resuming the body to run any enclosing
	// finally blocks; see DESIGN.md for the scope of this simplification.
	gd.state = generatorCompleted
	return iterResult(gd.fd.Realm, v, true), nil
}

func (gd *generatorData) doThrow(thrown value.Value) (value.Value, error) {
	if gd.state == generatorCompleted || gd.state == generatorSuspendedStart {
		gd.state = generatorCompleted
		return value.Undefined(), &ThrownValue{RuntimeError: &errs.RuntimeError{Message: errorMessage(thrown)}, Value: thrown}
	}
	if gd.state == generatorExecuting {
		return value.Undefined(), typeErr("generator is already running")
	}

	handled, newIP, val, propagated := gd.frame.raiseAt(gd.frame.ip-1, &jsThrow{val: thrown})
	if !handled {
		gd.state = generatorCompleted
		return value.Undefined(), propagated
	}
	gd.frame.truncate(0)
	gd.frame.ip = newIP
	gd.frame.push(val)
	return gd.resume()
}

func (gd *generatorData) resume() (value.Value, error) {
	gd.state = generatorExecuting
	agent := gd.fd.Realm.Agent
	if agent != nil && !agent.EnterCall() {
		gd.state = generatorCompleted
		return value.Undefined(), &errs.RuntimeError{Message: "RangeError: Maximum call stack size exceeded"}
	}
	result, oc, err := run(gd.frame)
	if agent != nil {
		agent.ExitCall()
	}
	if err != nil {
		gd.state = generatorCompleted
		return value.Undefined(), err
	}
	if oc == outcomeYield {
		gd.state = generatorSuspendedYield
		return iterResult(gd.fd.Realm, result, false), nil
	}
	gd.state = generatorCompleted
	return iterResult(gd.fd.Realm, result, true), nil
}
