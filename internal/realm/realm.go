package realm

import (
	"fmt"
	"math"

	"github.com/cwbudde/escript/internal/env"
	"github.com/cwbudde/escript/internal/value"
)

// Realm bundles a global object, its global environment, and the
// intrinsic objects every piece of compiled code implicitly depends
// on (ECMA-262 9.3). One Agent hosts one or more Realms (spec.md's
// Agent/Realm multiplicity); each Realm is fully independent (its own
// %Object.prototype%, its own globalThis).
type Realm struct {
	Agent *Agent

	GlobalObject *value.Object
	GlobalEnv    *env.Global

	ObjectPrototype   *value.Object
	FunctionPrototype *value.Object
	ArrayPrototype    *value.Object
	ErrorPrototype    *value.Object

	Errors ErrorPrototypes

	Symbols *WellKnownSymbols
}

// NewRealm builds a fresh realm: prototype objects, globalThis, the
// realm's global environment record, and the handful of intrinsic
// globals this engine's scope actually needs (spec.md's Non-goals
// exclude the standard-library surface, but `Object.freeze` and
// friends are language-level operations the TESTABLE PROPERTIES in
// spec.md §8 exercise directly, not stdlib).
func NewRealm(agent *Agent) *Realm {
	r := &Realm{Agent: agent, Symbols: newWellKnownSymbols()}

	r.ObjectPrototype = value.NewObject(nil)
	r.FunctionPrototype = value.NewObject(r.ObjectPrototype)
	r.FunctionPrototype.Class = "Function"
	r.FunctionPrototype.Call = func(this value.Value, args []value.Value) (value.Value, error) {
		return value.Undefined(), nil
	}
	r.ArrayPrototype = value.NewObject(r.ObjectPrototype)
	r.ArrayPrototype.Class = "Array"
	r.ErrorPrototype = value.NewObject(r.ObjectPrototype)
	r.ErrorPrototype.Class = "Error"

	r.GlobalObject = value.NewObject(r.ObjectPrototype)
	r.GlobalObject.Class = "global"
	r.GlobalEnv = env.NewGlobal(r.GlobalObject)

	r.installIntrinsics()
	return r
}

func (r *Realm) installIntrinsics() {
	r.defineGlobalFunction("Object", 1, r.objectConstructor)
	objectCtor, _ := r.GlobalObject.Get(value.StringKey("Object"), value.FromObject(r.GlobalObject))
	objectObj := objectCtor.AsObject()
	objectObj.DefineDataProperty(value.StringKey("prototype"), value.FromObject(r.ObjectPrototype))
	r.defineStaticMethod(objectObj, "freeze", 1, r.objectFreeze)
	r.defineStaticMethod(objectObj, "isFrozen", 1, r.objectIsFrozen)
	r.defineStaticMethod(objectObj, "getPrototypeOf", 1, r.objectGetPrototypeOf)
	r.defineStaticMethod(objectObj, "setPrototypeOf", 2, r.objectSetPrototypeOf)
	r.defineStaticMethod(objectObj, "keys", 1, r.objectKeys)
	r.defineStaticMethod(objectObj, "defineProperty", 3, r.objectDefineProperty)

	r.defineGlobalValue("globalThis", value.FromObject(r.GlobalObject))
	r.defineGlobalValue("undefined", value.Undefined())
	r.defineGlobalValue("NaN", value.Number(math.NaN()))
	r.defineGlobalValue("Infinity", value.Number(math.Inf(1)))

	r.installErrors()
	r.installArray()
	r.installFunctionPrototype()
}

func (r *Realm) defineGlobalFunction(name string, length int, fn value.CallFunc) {
	r.GlobalObject.DefineDataProperty(value.StringKey(name), value.FromObject(
		value.NewNativeFunction(name, length, r.FunctionPrototype, fn)))
}

func (r *Realm) defineGlobalValue(name string, v value.Value) {
	r.GlobalObject.DefineOwnProperty(value.StringKey(name), value.DataDescriptor(v, false, false, false))
}

func (r *Realm) defineStaticMethod(owner *value.Object, name string, length int, fn value.CallFunc) {
	owner.DefineDataProperty(value.StringKey(name), value.FromObject(
		value.NewNativeFunction(name, length, r.FunctionPrototype, fn)))
}

func (r *Realm) objectConstructor(this value.Value, args []value.Value) (value.Value, error) {
	if len(args) > 0 && args[0].IsObject() {
		return args[0], nil
	}
	return value.FromObject(value.NewObject(r.ObjectPrototype)), nil
}

func (r *Realm) objectFreeze(this value.Value, args []value.Value) (value.Value, error) {
	if len(args) == 0 || !args[0].IsObject() {
		if len(args) == 0 {
			return value.Undefined(), nil
		}
		return args[0], nil
	}
	obj := args[0].AsObject()
	obj.PreventExtensions()
	for _, k := range obj.OwnPropertyKeys() {
		d := obj.GetOwnProperty(k)
		if d.IsDataDescriptor() {
			obj.DefineOwnProperty(k, &value.PropertyDescriptor{
				Writable: false, Configurable: false, HasWritable: true, HasConfigurable: true,
			})
		} else {
			obj.DefineOwnProperty(k, &value.PropertyDescriptor{Configurable: false, HasConfigurable: true})
		}
	}
	return args[0], nil
}

func (r *Realm) objectIsFrozen(this value.Value, args []value.Value) (value.Value, error) {
	if len(args) == 0 || !args[0].IsObject() {
		return value.Bool(true), nil
	}
	obj := args[0].AsObject()
	if obj.IsExtensible() {
		return value.Bool(false), nil
	}
	for _, k := range obj.OwnPropertyKeys() {
		d := obj.GetOwnProperty(k)
		if d.Configurable {
			return value.Bool(false), nil
		}
		if d.IsDataDescriptor() && d.Writable {
			return value.Bool(false), nil
		}
	}
	return value.Bool(true), nil
}

func (r *Realm) objectGetPrototypeOf(this value.Value, args []value.Value) (value.Value, error) {
	if len(args) == 0 || !args[0].IsObject() {
		return value.Null(), nil
	}
	return value.FromObject(args[0].AsObject().GetPrototypeOf()), nil
}

func (r *Realm) objectSetPrototypeOf(this value.Value, args []value.Value) (value.Value, error) {
	if len(args) < 2 || !args[0].IsObject() {
		return value.Undefined(), fmt.Errorf("TypeError: Object.setPrototypeOf called on non-object")
	}
	var proto *value.Object
	if args[1].IsObject() {
		proto = args[1].AsObject()
	} else if !args[1].IsNull() {
		return value.Undefined(), fmt.Errorf("TypeError: prototype must be an object or null")
	}
	if !args[0].AsObject().SetPrototypeOf(proto) {
		return value.Undefined(), fmt.Errorf("TypeError: cyclic or non-extensible prototype chain")
	}
	return args[0], nil
}

func (r *Realm) objectKeys(this value.Value, args []value.Value) (value.Value, error) {
	if len(args) == 0 || !args[0].IsObject() {
		return value.FromObject(value.NewArray(r.ArrayPrototype)), nil
	}
	keys := args[0].AsObject().EnumerableStringKeys()
	vals := make([]value.Value, len(keys))
	for i, k := range keys {
		vals[i] = value.String(k.String())
	}
	return value.FromObject(value.NewArray(r.ArrayPrototype, vals...)), nil
}

func (r *Realm) objectDefineProperty(this value.Value, args []value.Value) (value.Value, error) {
	if len(args) < 3 || !args[0].IsObject() {
		return value.Undefined(), fmt.Errorf("TypeError: Object.defineProperty called on non-object")
	}
	obj := args[0].AsObject()
	key, err := value.ToPropertyKey(args[1])
	if err != nil {
		return value.Undefined(), err
	}
	desc, err := ToPropertyDescriptor(args[2])
	if err != nil {
		return value.Undefined(), err
	}
	if !obj.DefineOwnProperty(key, desc) {
		return value.Undefined(), fmt.Errorf("TypeError: cannot define property %s", key.DebugString())
	}
	return args[0], nil
}

// ToPropertyDescriptor implements ToPropertyDescriptor (ECMA-262
// 6.2.6.5) for the descriptor-literal objects passed to
// Object.defineProperty.
func ToPropertyDescriptor(v value.Value) (*value.PropertyDescriptor, error) {
	if !v.IsObject() {
		return nil, fmt.Errorf("TypeError: property descriptor must be an object")
	}
	obj := v.AsObject()
	d := &value.PropertyDescriptor{}
	if obj.HasProperty(value.StringKey("value")) {
		val, _ := obj.Get(value.StringKey("value"), v)
		d.Value, d.HasValue = val, true
	}
	if obj.HasProperty(value.StringKey("writable")) {
		val, _ := obj.Get(value.StringKey("writable"), v)
		d.Writable, d.HasWritable = val.ToBoolean(), true
	}
	if obj.HasProperty(value.StringKey("enumerable")) {
		val, _ := obj.Get(value.StringKey("enumerable"), v)
		d.Enumerable, d.HasEnumerable = val.ToBoolean(), true
	}
	if obj.HasProperty(value.StringKey("configurable")) {
		val, _ := obj.Get(value.StringKey("configurable"), v)
		d.Configurable, d.HasConfigurable = val.ToBoolean(), true
	}
	if obj.HasProperty(value.StringKey("get")) {
		val, _ := obj.Get(value.StringKey("get"), v)
		if val.IsObject() {
			d.Get, d.HasGet = val.AsObject(), true
		}
	}
	if obj.HasProperty(value.StringKey("set")) {
		val, _ := obj.Get(value.StringKey("set"), v)
		if val.IsObject() {
			d.Set, d.HasSet = val.AsObject(), true
		}
	}
	return d, nil
}
