package interp

import (
	"github.com/cwbudde/escript/internal/env"
	"github.com/cwbudde/escript/internal/ir"
	"github.com/cwbudde/escript/internal/realm"
	"github.com/cwbudde/escript/internal/value"
)

// makeClosure implements OpMakeClosure: build a function object closing
// over closureEnv, wiring its Call (and, for anything but an arrow or
// generator, Construct) hooks back into this package's Call/Construct.
func makeClosure(r *realm.Realm, fi *ir.FunctionInfo, closureEnv env.Record) *value.Object {
	obj := value.NewObject(r.FunctionPrototype)
	obj.Class = "Function"
	fd := &FunctionData{FI: fi, ClosureEnv: closureEnv, Realm: r, FuncObj: obj}
	obj.Extra = fd

	if fi.IsArrow {
		obj.Call = func(_ value.Value, args []value.Value) (value.Value, error) {
			return callArrow(fd, args)
		}
	} else {
		obj.Call = func(this value.Value, args []value.Value) (value.Value, error) {
			return Call(fd, this, args)
		}
		if !fi.IsGenerator {
			obj.Construct = func(args []value.Value, newTarget *value.Object) (value.Value, error) {
				return Construct(fd, args, newTarget)
			}
			proto := value.NewObject(r.ObjectPrototype)
			proto.DefineOwnProperty(value.StringKey("constructor"), value.DataDescriptor(value.FromObject(obj), true, false, true))
			obj.DefineOwnProperty(value.StringKey("prototype"), value.DataDescriptor(value.FromObject(proto), true, false, false))
		}
	}

	obj.DefineOwnProperty(value.StringKey("name"), value.DataDescriptor(value.String(fi.Name), false, false, true))
	obj.DefineOwnProperty(value.StringKey("length"), value.DataDescriptor(value.Number(float64(fi.ParamCount)), false, false, true))
	return obj
}

// makeClass implements OpMakeClass: build the class constructor
// function, wire its prototype chain to the superclass (or Object.prototype
// for a base class), and set the HomeObject instance methods get
// attached under resolve super against.
func makeClass(r *realm.Realm, fi *ir.FunctionInfo, closureEnv env.Record, superVal value.Value) (*value.Object, error) {
	var parentCtor *value.Object
	protoParent := r.ObjectPrototype
	isDerived := false

	if !superVal.IsUndefined() {
		isDerived = true
		switch {
		case superVal.IsNull():
			protoParent = nil
		case superVal.IsObject() && superVal.AsObject().IsConstructor():
			parentCtor = superVal.AsObject()
			protoVal, err := parentCtor.Get(value.StringKey("prototype"), superVal)
			if err != nil {
				return nil, err
			}
			switch {
			case protoVal.IsObject():
				protoParent = protoVal.AsObject()
			case protoVal.IsNull():
				protoParent = nil
			default:
				return nil, typeErr("Class extends value does not have a valid prototype property")
			}
		default:
			return nil, typeErr("Class extends value %s is not a constructor", superVal.DebugString())
		}
	}

	ctorProto := r.FunctionPrototype
	if parentCtor != nil {
		ctorProto = parentCtor
	}

	ctor := value.NewObject(ctorProto)
	ctor.Class = "Function"
	fd := &FunctionData{FI: fi, ClosureEnv: closureEnv, Realm: r, FuncObj: ctor, IsDerived: isDerived}
	ctor.Extra = fd
	ctor.Call = func(_ value.Value, _ []value.Value) (value.Value, error) {
		return value.Undefined(), typeErr("Class constructor %s cannot be invoked without 'new'", frameName(fi))
	}
	ctor.Construct = func(args []value.Value, newTarget *value.Object) (value.Value, error) {
		return Construct(fd, args, newTarget)
	}

	proto := value.NewObject(protoParent)
	proto.DefineOwnProperty(value.StringKey("constructor"), value.DataDescriptor(value.FromObject(ctor), true, false, true))
	ctor.DefineOwnProperty(value.StringKey("prototype"), value.DataDescriptor(value.FromObject(proto), false, false, false))
	fd.HomeObject = proto

	ctor.DefineOwnProperty(value.StringKey("name"), value.DataDescriptor(value.String(fi.Name), false, false, true))
	ctor.DefineOwnProperty(value.StringKey("length"), value.DataDescriptor(value.Number(float64(fi.ParamCount)), false, false, true))
	return ctor, nil
}
