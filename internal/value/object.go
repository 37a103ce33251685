package value

import (
	"fmt"
	"sort"
)

// CallFunc is the shape of a callable object's [[Call]] internal
// method. thisArg and args follow ECMAScript calling convention; the
// callable may be a native (Go) builtin or a bridge into the
// interpreter for a bytecode closure.
type CallFunc func(thisArg Value, args []Value) (Value, error)

// ConstructFunc is the shape of a constructor's [[Construct]] internal
// method. newTarget is the object Value identifying the constructor
// originally targeted by `new`, needed for correct prototype lookup
// when subclassing.
type ConstructFunc func(args []Value, newTarget *Object) (Value, error)

// Object is an ordinary object (ECMA-262 10.1): the shared
// representation backing plain objects, arrays, functions, and
// classes. Exotic behavior (arrays' length invariant, functions'
// callability) is layered on top via the Call/Construct hooks and the
// Class tag rather than a Go type hierarchy, mirroring how a single
// tagged Value/Object pair covers every runtime shape in the
// reference bytecode VM this package is modeled on.
type Object struct {
	proto      *Object
	extensible bool

	// Class is a debug-only tag ("Object", "Array", "Function",
	// "Error", ...) used by DebugString and Object.prototype.toString's
	// [[Class]] fallback. It has no effect on internal-method behavior.
	Class string

	props map[PropertyKey]*PropertyDescriptor
	order []PropertyKey

	// Call and Construct are non-nil exactly for function objects.
	// IsCallable/IsConstructor derive from their presence.
	Call      CallFunc
	Construct ConstructFunc

	// Extra carries exotic internal state: interp's *FunctionData for
	// ordinary function objects, its generator and array-iterator
	// state, arbitrary host data for FFI objects (arrays use none). Components that need it
	// type-assert on their own private type.
	Extra interface{}
}

// NewObject creates a plain ordinary object with the given prototype
// (nil for no prototype, i.e. %Object.prototype% itself).
func NewObject(proto *Object) *Object {
	return &Object{
		proto:      proto,
		extensible: true,
		Class:      "Object",
		props:      make(map[PropertyKey]*PropertyDescriptor),
	}
}

func (o *Object) IsCallable() bool   { return o != nil && o.Call != nil }
func (o *Object) IsConstructor() bool { return o != nil && o.Construct != nil }

func (o *Object) DebugString() string {
	if o == nil {
		return "null"
	}
	if o.IsCallable() {
		return fmt.Sprintf("[Function: %s]", o.Class)
	}
	return fmt.Sprintf("[object %s]", o.Class)
}

// ---- [[GetPrototypeOf]] / [[SetPrototypeOf]] (ECMA-262 10.1.1/10.1.2) ----

func (o *Object) GetPrototypeOf() *Object { return o.proto }

// SetPrototypeOf implements OrdinarySetPrototypeOf, including the
// cycle check required by the spec algorithm.
func (o *Object) SetPrototypeOf(proto *Object) bool {
	if proto == o.proto {
		return true
	}
	if !o.extensible {
		return false
	}
	for p := proto; p != nil; p = p.proto {
		if p == o {
			return false
		}
	}
	o.proto = proto
	return true
}

// ---- [[IsExtensible]] / [[PreventExtensions]] (ECMA-262 10.1.3/10.1.4) ----

func (o *Object) IsExtensible() bool { return o.extensible }

func (o *Object) PreventExtensions() bool {
	o.extensible = false
	return true
}

// ---- [[GetOwnProperty]] (ECMA-262 10.1.5) ----

// GetOwnProperty returns a copy of the own property descriptor for
// key, or nil if none exists.
func (o *Object) GetOwnProperty(key PropertyKey) *PropertyDescriptor {
	d, ok := o.props[key]
	if !ok {
		return nil
	}
	return d.clone()
}

// ---- [[DefineOwnProperty]] (ECMA-262 10.1.6, via ValidateAndApplyPropertyDescriptor 10.1.6.3) ----

// DefineOwnProperty validates desc against the current own property
// (if any) and, if valid, installs the merged descriptor. It returns
// false exactly where the spec algorithm returns false (the caller is
// responsible for throwing a TypeError when DefineOwnProperty is
// invoked via the throwing entry points such as Object.defineProperty).
func (o *Object) DefineOwnProperty(key PropertyKey, desc *PropertyDescriptor) bool {
	current := o.props[key]

	if current == nil {
		if !o.extensible {
			return false
		}
		merged := &PropertyDescriptor{}
		if desc.IsGenericDescriptor() || desc.IsDataDescriptor() {
			merged.HasValue, merged.HasWritable = true, true
			merged.Value = desc.Value
			merged.Writable = desc.Writable
		} else {
			merged.HasGet, merged.HasSet = true, true
			merged.Get, merged.Set = desc.Get, desc.Set
		}
		merged.Enumerable = desc.Enumerable
		merged.Configurable = desc.Configurable
		merged.HasEnumerable, merged.HasConfigurable = true, true
		o.setOwn(key, merged)
		return true
	}

	// No-op fast path: every present field in desc already matches.
	if isNoopUpdate(current, desc) {
		return true
	}

	if !current.Configurable {
		if desc.HasConfigurable && desc.Configurable {
			return false
		}
		if desc.HasEnumerable && desc.Enumerable != current.Enumerable {
			return false
		}
		if !desc.IsGenericDescriptor() && desc.IsAccessorDescriptor() != current.IsAccessorDescriptor() {
			return false
		}
		if current.IsAccessorDescriptor() {
			if desc.HasGet && desc.Get != current.Get {
				return false
			}
			if desc.HasSet && desc.Set != current.Set {
				return false
			}
		} else if !current.Writable {
			if desc.HasWritable && desc.Writable {
				return false
			}
			if desc.HasValue && !SameValue(desc.Value, current.Value) {
				return false
			}
		}
	}

	merged := current.clone()
	if desc.IsAccessorDescriptor() && current.IsDataDescriptor() {
		merged.HasValue, merged.HasWritable = false, false
		merged.Value, merged.Writable = Value{}, false
		merged.HasGet, merged.HasSet = true, true
	} else if desc.IsDataDescriptor() && current.IsAccessorDescriptor() {
		merged.HasGet, merged.HasSet = false, false
		merged.Get, merged.Set = nil, nil
		merged.HasValue, merged.HasWritable = true, true
	}
	if desc.HasValue {
		merged.Value, merged.HasValue = desc.Value, true
	}
	if desc.HasWritable {
		merged.Writable, merged.HasWritable = desc.Writable, true
	}
	if desc.HasGet {
		merged.Get, merged.HasGet = desc.Get, true
	}
	if desc.HasSet {
		merged.Set, merged.HasSet = desc.Set, true
	}
	if desc.HasEnumerable {
		merged.Enumerable = desc.Enumerable
	}
	if desc.HasConfigurable {
		merged.Configurable = desc.Configurable
	}
	o.setOwn(key, merged)
	return true
}

func isNoopUpdate(current, desc *PropertyDescriptor) bool {
	if desc.HasValue && !SameValue(desc.Value, current.Value) {
		return false
	}
	if desc.HasWritable && desc.Writable != current.Writable {
		return false
	}
	if desc.HasGet && desc.Get != current.Get {
		return false
	}
	if desc.HasSet && desc.Set != current.Set {
		return false
	}
	if desc.HasEnumerable && desc.Enumerable != current.Enumerable {
		return false
	}
	if desc.HasConfigurable && desc.Configurable != current.Configurable {
		return false
	}
	return true
}

func (o *Object) setOwn(key PropertyKey, d *PropertyDescriptor) {
	if _, exists := o.props[key]; !exists {
		o.order = append(o.order, key)
	}
	o.props[key] = d
}

// DefineDataProperty is a convenience used by realm bootstrap code and
// the compiler's object-literal opcode handler to install an ordinary
// writable/enumerable/configurable data property in one call.
func (o *Object) DefineDataProperty(key PropertyKey, v Value) {
	o.DefineOwnProperty(key, DataDescriptor(v, true, true, true))
}

// ---- [[HasProperty]] (ECMA-262 10.1.7) ----

func (o *Object) HasProperty(key PropertyKey) bool {
	for cur := o; cur != nil; cur = cur.proto {
		if _, ok := cur.props[key]; ok {
			return true
		}
	}
	return false
}

// ---- [[Get]] / [[Set]] (ECMA-262 10.1.8/10.1.9) ----

// Get implements OrdinaryGet, walking the prototype chain and
// invoking accessor getters against receiver (the original target of
// the property access, which may differ from o when walking up a
// chain, e.g. super property access).
func (o *Object) Get(key PropertyKey, receiver Value) (Value, error) {
	for cur := o; cur != nil; cur = cur.proto {
		d, ok := cur.props[key]
		if !ok {
			continue
		}
		if d.IsAccessorDescriptor() {
			if d.Get == nil {
				return Undefined(), nil
			}
			return d.Get.Call(receiver, nil)
		}
		return d.Value, nil
	}
	return Undefined(), nil
}

// Set implements OrdinarySet, returning false exactly where the spec
// algorithm's [[Set]] returns false (non-writable data property,
// missing setter, or a non-extensible receiver that can't gain the
// property).
func (o *Object) Set(key PropertyKey, v Value, receiver Value) (bool, error) {
	for cur := o; cur != nil; cur = cur.proto {
		d, ok := cur.props[key]
		if !ok {
			continue
		}
		if d.IsAccessorDescriptor() {
			if d.Set == nil {
				return false, nil
			}
			_, err := d.Set.Call(receiver, []Value{v})
			return err == nil, err
		}
		if cur == o {
			if !d.Writable {
				return false, nil
			}
			return o.DefineOwnProperty(key, &PropertyDescriptor{Value: v, HasValue: true}), nil
		}
		if !d.Writable {
			return false, nil
		}
		break
	}
	recvObj := receiver.AsObject()
	if recvObj == nil {
		return false, nil
	}
	existing := recvObj.GetOwnProperty(key)
	if existing != nil {
		if existing.IsAccessorDescriptor() || !existing.Writable {
			return false, nil
		}
		return recvObj.DefineOwnProperty(key, &PropertyDescriptor{Value: v, HasValue: true}), nil
	}
	return recvObj.DefineOwnProperty(key, DataDescriptor(v, true, true, true)), nil
}

// ---- [[Delete]] (ECMA-262 10.1.10) ----

func (o *Object) Delete(key PropertyKey) bool {
	d, ok := o.props[key]
	if !ok {
		return true
	}
	if !d.Configurable {
		return false
	}
	delete(o.props, key)
	for i, k := range o.order {
		if k == key {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
	return true
}

// ---- [[OwnPropertyKeys]] (ECMA-262 10.1.11) ----

// OwnPropertyKeys returns own keys ordered per OrdinaryOwnPropertyKeys:
// integer indices in ascending numeric order, then string keys in
// property-creation order, then symbol keys in property-creation
// order.
func (o *Object) OwnPropertyKeys() []PropertyKey {
	var indices []uint32
	var strs []PropertyKey
	var syms []PropertyKey
	for _, k := range o.order {
		if idx, ok := k.ArrayIndex(); ok {
			indices = append(indices, idx)
		} else if k.IsSymbol() {
			syms = append(syms, k)
		} else {
			strs = append(strs, k)
		}
	}
	sort.Slice(indices, func(i, j int) bool { return indices[i] < indices[j] })

	out := make([]PropertyKey, 0, len(o.order))
	for _, idx := range indices {
		out = append(out, StringKey(fmt.Sprintf("%d", idx)))
	}
	out = append(out, strs...)
	out = append(out, syms...)
	return out
}

// EnumerableStringKeys returns own enumerable string keys in
// OwnPropertyKeys order, the iteration order for `for...in` and
// Object.keys/values/entries.
func (o *Object) EnumerableStringKeys() []PropertyKey {
	var out []PropertyKey
	for _, k := range o.OwnPropertyKeys() {
		if k.IsSymbol() {
			continue
		}
		if d := o.props[k]; d != nil && d.Enumerable {
			out = append(out, k)
		}
	}
	return out
}
