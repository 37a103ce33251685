package realm

import "github.com/cwbudde/escript/internal/value"

// installFunctionPrototype wires Function.prototype.call/apply/bind,
// the minimal set every non-trivial script ends up reaching for (bound
// callbacks, `Array.prototype.slice.call(arguments)`-style borrowing).
func (r *Realm) installFunctionPrototype() {
	r.defineStaticMethod(r.FunctionPrototype, "call", 1, r.functionCall)
	r.defineStaticMethod(r.FunctionPrototype, "apply", 2, r.functionApply)
	r.defineStaticMethod(r.FunctionPrototype, "bind", 1, r.functionBind)

	ctor := value.NewNativeFunction("Function", 1, r.FunctionPrototype, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Undefined(), typeErr("dynamic Function construction is not supported")
	})
	ctor.DefineDataProperty(value.StringKey("prototype"), value.FromObject(r.FunctionPrototype))
	r.FunctionPrototype.DefineOwnProperty(value.StringKey("constructor"), value.DataDescriptor(value.FromObject(ctor), true, false, true))
	r.GlobalObject.DefineDataProperty(value.StringKey("Function"), value.FromObject(ctor))
}

func (r *Realm) functionCall(this value.Value, args []value.Value) (value.Value, error) {
	fn := this.AsObject()
	if fn == nil || !fn.IsCallable() {
		return value.Undefined(), typeErr("Function.prototype.call called on non-callable")
	}
	var thisArg value.Value
	var rest []value.Value
	if len(args) > 0 {
		thisArg, rest = args[0], args[1:]
	}
	return fn.Call(thisArg, rest)
}

func (r *Realm) functionApply(this value.Value, args []value.Value) (value.Value, error) {
	fn := this.AsObject()
	if fn == nil || !fn.IsCallable() {
		return value.Undefined(), typeErr("Function.prototype.apply called on non-callable")
	}
	var thisArg value.Value
	if len(args) > 0 {
		thisArg = args[0]
	}
	var list []value.Value
	if len(args) > 1 && args[1].IsObject() {
		arr := args[1].AsObject()
		n := arrayLength(arr)
		list = make([]value.Value, n)
		for i := 0; i < n; i++ {
			list[i] = arrayGet(arr, i)
		}
	}
	return fn.Call(thisArg, list)
}

func (r *Realm) functionBind(this value.Value, args []value.Value) (value.Value, error) {
	target := this.AsObject()
	if target == nil || !target.IsCallable() {
		return value.Undefined(), typeErr("Function.prototype.bind called on non-callable")
	}
	var boundThis value.Value
	var boundArgs []value.Value
	if len(args) > 0 {
		boundThis, boundArgs = args[0], args[1:]
	}
	bound := value.NewNativeFunction("bound", 0, r.FunctionPrototype, func(_ value.Value, callArgs []value.Value) (value.Value, error) {
		return target.Call(boundThis, append(append([]value.Value{}, boundArgs...), callArgs...))
	})
	if target.IsConstructor() {
		bound.Construct = func(callArgs []value.Value, newTarget *value.Object) (value.Value, error) {
			return target.Construct(append(append([]value.Value{}, boundArgs...), callArgs...), newTarget)
		}
	}
	return value.FromObject(bound), nil
}
