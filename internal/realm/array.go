package realm

import (
	"fmt"
	"strconv"

	"github.com/cwbudde/escript/internal/value"
)

// installArray wires the Array constructor and the small slice of
// Array.prototype methods spec.md's TESTABLE PROPERTIES exercise
// directly (array literals built via push/map/join in the fibonacci
// and for-of scenarios). This is language-level iteration-protocol
// support, not the excluded stdlib surface in full: only the methods
// the testable scenarios actually call are implemented.
func (r *Realm) installArray() {
	r.defineStaticMethod(r.ArrayPrototype, "push", 1, r.arrayPush)
	r.defineStaticMethod(r.ArrayPrototype, "pop", 0, r.arrayPop)
	r.defineStaticMethod(r.ArrayPrototype, "map", 1, r.arrayMap)
	r.defineStaticMethod(r.ArrayPrototype, "forEach", 1, r.arrayForEach)
	r.defineStaticMethod(r.ArrayPrototype, "filter", 1, r.arrayFilter)
	r.defineStaticMethod(r.ArrayPrototype, "join", 1, r.arrayJoin)
	r.defineStaticMethod(r.ArrayPrototype, "includes", 1, r.arrayIncludes)
	r.defineStaticMethod(r.ArrayPrototype, "slice", 2, r.arraySlice)
	r.defineStaticMethod(r.ArrayPrototype, "indexOf", 1, r.arrayIndexOf)
	r.defineStaticMethod(r.ArrayPrototype, "reduce", 2, r.arrayReduce)
	r.ArrayPrototype.DefineOwnProperty(value.SymbolKey(r.Symbols.Iterator), value.DataDescriptor(
		value.FromObject(value.NewNativeFunction("[Symbol.iterator]", 0, r.FunctionPrototype, r.arrayIteratorMethod)),
		true, false, true))

	ctor := value.NewNativeFunction("Array", 1, r.FunctionPrototype, r.arrayCall)
	ctor.Construct = r.arrayConstruct
	ctor.DefineDataProperty(value.StringKey("prototype"), value.FromObject(r.ArrayPrototype))
	r.defineStaticMethod(ctor, "isArray", 1, r.arrayIsArray)
	r.ArrayPrototype.DefineOwnProperty(value.StringKey("constructor"), value.DataDescriptor(value.FromObject(ctor), true, false, true))
	r.GlobalObject.DefineDataProperty(value.StringKey("Array"), value.FromObject(ctor))
}

func arrayLength(o *value.Object) int {
	v, _ := o.Get(value.StringKey("length"), value.FromObject(o))
	n, _ := value.ToNumber(v)
	return int(n)
}

func arraySetLength(o *value.Object, n int) {
	o.DefineOwnProperty(value.StringKey("length"), value.DataDescriptor(value.Number(float64(n)), true, false, false))
}

func arrayGet(o *value.Object, i int) value.Value {
	v, _ := o.Get(value.StringKey(strconv.Itoa(i)), value.FromObject(o))
	return v
}

func arraySet(o *value.Object, i int, v value.Value) {
	o.DefineDataProperty(value.StringKey(strconv.Itoa(i)), v)
}

func (r *Realm) arrayCall(this value.Value, args []value.Value) (value.Value, error) {
	return value.FromObject(value.NewArray(r.ArrayPrototype, args...)), nil
}

func (r *Realm) arrayConstruct(args []value.Value, newTarget *value.Object) (value.Value, error) {
	if len(args) == 1 && args[0].IsNumber() {
		n := int(args[0].Num)
		arr := value.NewArray(r.ArrayPrototype)
		arraySetLength(arr, n)
		return value.FromObject(arr), nil
	}
	return value.FromObject(value.NewArray(r.ArrayPrototype, args...)), nil
}

func (r *Realm) arrayIsArray(this value.Value, args []value.Value) (value.Value, error) {
	if len(args) == 0 || !args[0].IsObject() {
		return value.Bool(false), nil
	}
	return value.Bool(args[0].AsObject().Class == "Array"), nil
}

func (r *Realm) arrayPush(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	if obj == nil {
		return value.Undefined(), typeErr("Array.prototype.push called on non-object")
	}
	n := arrayLength(obj)
	for _, a := range args {
		arraySet(obj, n, a)
		n++
	}
	arraySetLength(obj, n)
	return value.Number(float64(n)), nil
}

func (r *Realm) arrayPop(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	n := arrayLength(obj)
	if n == 0 {
		return value.Undefined(), nil
	}
	v := arrayGet(obj, n-1)
	obj.Delete(value.StringKey(strconv.Itoa(n - 1)))
	arraySetLength(obj, n-1)
	return v, nil
}

func (r *Realm) arrayMap(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	if len(args) == 0 || !args[0].IsObject() || !args[0].AsObject().IsCallable() {
		return value.Undefined(), typeErr("Array.prototype.map callback is not a function")
	}
	fn := args[0].AsObject()
	n := arrayLength(obj)
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		v, err := fn.Call(value.Undefined(), []value.Value{arrayGet(obj, i), value.Number(float64(i)), this})
		if err != nil {
			return value.Undefined(), err
		}
		out[i] = v
	}
	return value.FromObject(value.NewArray(r.ArrayPrototype, out...)), nil
}

func (r *Realm) arrayFilter(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	if len(args) == 0 || !args[0].IsObject() || !args[0].AsObject().IsCallable() {
		return value.Undefined(), typeErr("Array.prototype.filter callback is not a function")
	}
	fn := args[0].AsObject()
	n := arrayLength(obj)
	var out []value.Value
	for i := 0; i < n; i++ {
		el := arrayGet(obj, i)
		keep, err := fn.Call(value.Undefined(), []value.Value{el, value.Number(float64(i)), this})
		if err != nil {
			return value.Undefined(), err
		}
		if keep.ToBoolean() {
			out = append(out, el)
		}
	}
	return value.FromObject(value.NewArray(r.ArrayPrototype, out...)), nil
}

func (r *Realm) arrayForEach(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	if len(args) == 0 || !args[0].IsObject() || !args[0].AsObject().IsCallable() {
		return value.Undefined(), typeErr("Array.prototype.forEach callback is not a function")
	}
	fn := args[0].AsObject()
	n := arrayLength(obj)
	for i := 0; i < n; i++ {
		if _, err := fn.Call(value.Undefined(), []value.Value{arrayGet(obj, i), value.Number(float64(i)), this}); err != nil {
			return value.Undefined(), err
		}
	}
	return value.Undefined(), nil
}

func (r *Realm) arrayReduce(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	if len(args) == 0 || !args[0].IsObject() || !args[0].AsObject().IsCallable() {
		return value.Undefined(), typeErr("Array.prototype.reduce callback is not a function")
	}
	fn := args[0].AsObject()
	n := arrayLength(obj)
	i := 0
	var acc value.Value
	if len(args) > 1 {
		acc = args[1]
	} else {
		if n == 0 {
			return value.Undefined(), typeErr("Reduce of empty array with no initial value")
		}
		acc = arrayGet(obj, 0)
		i = 1
	}
	for ; i < n; i++ {
		v, err := fn.Call(value.Undefined(), []value.Value{acc, arrayGet(obj, i), value.Number(float64(i)), this})
		if err != nil {
			return value.Undefined(), err
		}
		acc = v
	}
	return acc, nil
}

func (r *Realm) arrayJoin(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	sep := ","
	if len(args) > 0 && !args[0].IsUndefined() {
		s, err := value.ToString(args[0])
		if err != nil {
			return value.Undefined(), err
		}
		sep = s
	}
	n := arrayLength(obj)
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		v := arrayGet(obj, i)
		if v.IsNullish() {
			parts[i] = ""
			continue
		}
		s, err := value.ToString(v)
		if err != nil {
			return value.Undefined(), err
		}
		parts[i] = s
	}
	out := ""
	for i, p := range parts {
		if i > 0 {
			out += sep
		}
		out += p
	}
	return value.String(out), nil
}

func (r *Realm) arrayIncludes(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	if len(args) == 0 {
		return value.Bool(false), nil
	}
	n := arrayLength(obj)
	for i := 0; i < n; i++ {
		if value.SameValueZero(arrayGet(obj, i), args[0]) {
			return value.Bool(true), nil
		}
	}
	return value.Bool(false), nil
}

func (r *Realm) arrayIndexOf(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	if len(args) == 0 {
		return value.Number(-1), nil
	}
	n := arrayLength(obj)
	for i := 0; i < n; i++ {
		if value.IsStrictlyEqual(arrayGet(obj, i), args[0]) {
			return value.Number(float64(i)), nil
		}
	}
	return value.Number(-1), nil
}

func (r *Realm) arraySlice(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	n := arrayLength(obj)
	start, end := 0, n
	if len(args) > 0 && !args[0].IsUndefined() {
		s, _ := value.ToNumber(args[0])
		start = clampIndex(int(s), n)
	}
	if len(args) > 1 && !args[1].IsUndefined() {
		e, _ := value.ToNumber(args[1])
		end = clampIndex(int(e), n)
	}
	if end < start {
		end = start
	}
	out := make([]value.Value, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, arrayGet(obj, i))
	}
	return value.FromObject(value.NewArray(r.ArrayPrototype, out...)), nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		i += n
	}
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// arrayIterator is the Extra payload of the iterator object returned
// by Array.prototype[Symbol.iterator]. It is unexported: the
// interpreter's iteration protocol never type-asserts on it, only ever
// drives it through its own "next" method like any other iterator.
type arrayIterator struct {
	arr *value.Object
	idx int
}

func (r *Realm) arrayIteratorMethod(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	iter := value.NewObject(r.ObjectPrototype)
	iter.Class = "Array Iterator"
	iter.Extra = &arrayIterator{arr: obj}
	iter.Call = nil
	r.defineStaticMethod(iter, "next", 0, func(this value.Value, args []value.Value) (value.Value, error) {
		it := iter.Extra.(*arrayIterator)
		result := value.NewObject(r.ObjectPrototype)
		n := arrayLength(it.arr)
		if it.idx >= n {
			result.DefineDataProperty(value.StringKey("done"), value.Bool(true))
			result.DefineDataProperty(value.StringKey("value"), value.Undefined())
			return value.FromObject(result), nil
		}
		v := arrayGet(it.arr, it.idx)
		it.idx++
		result.DefineDataProperty(value.StringKey("done"), value.Bool(false))
		result.DefineDataProperty(value.StringKey("value"), v)
		return value.FromObject(result), nil
	})
	return value.FromObject(iter), nil
}

// typeErr builds a TypeError-shaped Go error for the native methods in
// this package, the same error type internal/value's coercions raise
// so the interpreter's single "is this a TypeError" check covers both.
func typeErr(format string, args ...any) error {
	return &value.CoercionError{Message: fmt.Sprintf(format, args...)}
}
