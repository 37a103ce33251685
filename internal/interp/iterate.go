package interp

import (
	"github.com/cwbudde/escript/internal/realm"
	"github.com/cwbudde/escript/internal/value"
)

// getIterator implements GetIterator (ECMA-262 7.4.3): look up
// Symbol.iterator on the operand and call it. Arrays, generators, and
// anything else that exposes Symbol.iterator as an ordinary callable
// property all go through this one path - there is no array-specific
// fast path, since the array iterator returned by
// Array.prototype[Symbol.iterator] already conforms to the same
// next()-method protocol.
func getIterator(r *realm.Realm, iterableVal value.Value) (*value.Object, error) {
	if !iterableVal.IsObject() {
		return nil, typeErr("%s is not iterable", iterableVal.DebugString())
	}
	obj := iterableVal.AsObject()
	methodVal, err := obj.Get(value.SymbolKey(r.Symbols.Iterator), iterableVal)
	if err != nil {
		return nil, err
	}
	method := methodVal.AsObject()
	if method == nil || !method.IsCallable() {
		return nil, typeErr("%s is not iterable", iterableVal.DebugString())
	}
	result, err := method.Call(iterableVal, nil)
	if err != nil {
		return nil, err
	}
	if !result.IsObject() {
		return nil, typeErr("Result of the Symbol.iterator method is not an object")
	}
	return result.AsObject(), nil
}

// iterNext implements IteratorStep/IteratorValue (ECMA-262 7.4.5/7.4.7)
// by calling the iterator's own next() method and reading back its
// result object's done/value properties.
func iterNext(iteratorObj *value.Object) (value.Value, bool, error) {
	nextVal, err := iteratorObj.Get(value.StringKey("next"), value.FromObject(iteratorObj))
	if err != nil {
		return value.Undefined(), false, err
	}
	next := nextVal.AsObject()
	if next == nil || !next.IsCallable() {
		return value.Undefined(), false, typeErr("iterator.next is not a function")
	}
	result, err := next.Call(value.FromObject(iteratorObj), nil)
	if err != nil {
		return value.Undefined(), false, err
	}
	resObj := result.AsObject()
	if resObj == nil {
		return value.Undefined(), false, typeErr("iterator result is not an object")
	}
	doneVal, _ := resObj.Get(value.StringKey("done"), result)
	valVal, _ := resObj.Get(value.StringKey("value"), result)
	return valVal, doneVal.ToBoolean(), nil
}

// forInKeys snapshots the key list a for-in head iterates over
// (ECMA-262 14.7.5.6's EnumerateObjectProperties, approximated): own
// enumerable string keys of objVal and then of each object up its
// prototype chain, skipping any name already seen further down the
// chain. null/undefined (and non-objects) enumerate to nothing rather
// than raising, matching `for (x in null) {}` being a silent no-op.
func forInKeys(objVal value.Value) []value.Value {
	obj := objVal.AsObject()
	if obj == nil {
		return nil
	}
	seen := make(map[string]bool)
	var keys []value.Value
	for o := obj; o != nil; o = o.GetPrototypeOf() {
		for _, k := range o.EnumerableStringKeys() {
			name := k.String()
			if seen[name] {
				continue
			}
			seen[name] = true
			keys = append(keys, value.String(name))
		}
	}
	return keys
}

// iterClose implements IteratorClose (ECMA-262 7.4.8), best effort: a
// missing or non-callable return() is skipped, and
// any error it raises is swallowed since IterClose only ever runs
// while another completion (break, return, or an exception) is
// already in flight.
func iterClose(iteratorObj *value.Object) {
	if iteratorObj == nil {
		return
	}
	retVal, err := iteratorObj.Get(value.StringKey("return"), value.FromObject(iteratorObj))
	if err != nil {
		return
	}
	ret := retVal.AsObject()
	if ret == nil || !ret.IsCallable() {
		return
	}
	_, _ = ret.Call(value.FromObject(iteratorObj), nil)
}
