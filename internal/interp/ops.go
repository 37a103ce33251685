package interp

import (
	"math"
	"math/big"
	"strconv"

	"github.com/cwbudde/escript/internal/env"
	"github.com/cwbudde/escript/internal/errs"
	"github.com/cwbudde/escript/internal/value"
)

// addValues implements the `+` operator (ECMA-262 13.15.3): string
// concatenation if either operand's primitive form is a string,
// otherwise numeric (or BigInt) addition.
func addValues(a, b value.Value) (value.Value, error) {
	pa, err := value.ToPrimitive(a, "default")
	if err != nil {
		return value.Undefined(), err
	}
	pb, err := value.ToPrimitive(b, "default")
	if err != nil {
		return value.Undefined(), err
	}
	if pa.IsString() || pb.IsString() {
		sa, err := value.ToString(pa)
		if err != nil {
			return value.Undefined(), err
		}
		sb, err := value.ToString(pb)
		if err != nil {
			return value.Undefined(), err
		}
		return value.String(sa + sb), nil
	}
	return numericBinOp(pa, pb, func(x, y float64) float64 { return x + y }, func(x, y *big.Int) (*big.Int, error) {
		return new(big.Int).Add(x, y), nil
	})
}

// numericBinOp implements every arithmetic operator except `+`:
// operands are coerced with ToNumeric and dispatched to floatOp or
// bigOp depending on whether both turned out to be BigInt. Mixing a
// BigInt with a Number is a TypeError (ECMA-262 6.1.6.2's operators
// never silently mix the two numeric types).
func numericBinOp(a, b value.Value, floatOp func(x, y float64) float64, bigOp func(x, y *big.Int) (*big.Int, error)) (value.Value, error) {
	na, err := value.ToNumeric(a)
	if err != nil {
		return value.Undefined(), err
	}
	nb, err := value.ToNumeric(b)
	if err != nil {
		return value.Undefined(), err
	}
	if na.IsBigInt() || nb.IsBigInt() {
		if !na.IsBigInt() || !nb.IsBigInt() {
			return value.Undefined(), typeErr("Cannot mix BigInt and other types, use explicit conversions")
		}
		r, err := bigOp(na.AsBigInt(), nb.AsBigInt())
		if err != nil {
			return value.Undefined(), err
		}
		return value.BigInt(r), nil
	}
	fa, err := value.ToNumber(na)
	if err != nil {
		return value.Undefined(), err
	}
	fb, err := value.ToNumber(nb)
	if err != nil {
		return value.Undefined(), err
	}
	return value.Number(floatOp(fa, fb)), nil
}

func bigDiv(x, y *big.Int) (*big.Int, error) {
	if y.Sign() == 0 {
		return nil, typeErr("Division by zero")
	}
	return new(big.Int).Quo(x, y), nil
}

func bigMod(x, y *big.Int) (*big.Int, error) {
	if y.Sign() == 0 {
		return nil, typeErr("Division by zero")
	}
	return new(big.Int).Rem(x, y), nil
}

func bigModFloat(x, y float64) float64 { return math.Mod(x, y) }

func bigPow(x, y *big.Int) (*big.Int, error) {
	if y.Sign() < 0 {
		return nil, typeErr("Exponent must be non-negative")
	}
	return new(big.Int).Exp(x, y, nil), nil
}

func bigPowFloat(x, y float64) float64 { return math.Pow(x, y) }

func negateValue(a value.Value) (value.Value, error) {
	n, err := value.ToNumeric(a)
	if err != nil {
		return value.Undefined(), err
	}
	if n.IsBigInt() {
		return value.BigInt(new(big.Int).Neg(n.AsBigInt())), nil
	}
	f, err := value.ToNumber(n)
	if err != nil {
		return value.Undefined(), err
	}
	return value.Number(-f), nil
}

func incDecValue(a value.Value, delta int) (value.Value, error) {
	n, err := value.ToNumeric(a)
	if err != nil {
		return value.Undefined(), err
	}
	if n.IsBigInt() {
		return value.BigInt(new(big.Int).Add(n.AsBigInt(), big.NewInt(int64(delta)))), nil
	}
	f, err := value.ToNumber(n)
	if err != nil {
		return value.Undefined(), err
	}
	return value.Number(f + float64(delta)), nil
}

func (f *Frame) bitwiseOp(op func(a, b int32) int32) error {
	b := f.pop()
	a := f.pop()
	ai, err := value.ToInt32(a)
	if err != nil {
		return err
	}
	bi, err := value.ToInt32(b)
	if err != nil {
		return err
	}
	f.push(value.Number(float64(op(ai, bi))))
	return nil
}

func (f *Frame) shiftOp(op func(a int32, b uint32) float64) error {
	b := f.pop()
	a := f.pop()
	ai, err := value.ToInt32(a)
	if err != nil {
		return err
	}
	bu, err := value.ToUint32(b)
	if err != nil {
		return err
	}
	f.push(value.Number(op(ai, bu)))
	return nil
}

// getProperty implements GetValue's object-base case (ECMA-262 6.2.5.5):
// primitives are boxed transiently via the realm so the prototype-chain
// lookup has somewhere to walk, but the receiver passed to any accessor
// stays the original primitive value.
func (f *Frame) getProperty(objVal value.Value, key value.PropertyKey) (value.Value, error) {
	if objVal.IsNullish() {
		return value.Undefined(), typeErr("Cannot read properties of %s (reading '%s')", objVal.DebugString(), key.DebugString())
	}
	if objVal.IsObject() {
		return objVal.AsObject().Get(key, objVal)
	}
	obj, err := f.fd.Realm.ToObject(objVal)
	if err != nil {
		return value.Undefined(), err
	}
	return obj.Get(key, objVal)
}

func (f *Frame) setProperty(objVal value.Value, key value.PropertyKey, v value.Value) error {
	if objVal.IsNullish() {
		return typeErr("Cannot set properties of %s (setting '%s')", objVal.DebugString(), key.DebugString())
	}
	if !objVal.IsObject() {
		// writes through a primitive receiver land on a throwaway boxed
		// object and are simply lost, matching a property write to a
		// primitive in non-strict code.
		return nil
	}
	ok, err := objVal.AsObject().Set(key, v, objVal)
	if err != nil {
		return err
	}
	if !ok {
		return typeErr("Cannot assign to read only property '%s'", key.DebugString())
	}
	return nil
}

func deleteProperty(objVal value.Value, key value.PropertyKey) bool {
	obj := objVal.AsObject()
	if obj == nil {
		return true
	}
	return obj.Delete(key)
}

func arrayLenOf(o *value.Object) int {
	v, _ := o.Get(value.StringKey("length"), value.FromObject(o))
	n, _ := value.ToNumber(v)
	return int(n)
}

func setArrayLen(o *value.Object, n int) {
	o.DefineOwnProperty(value.StringKey("length"), value.DataDescriptor(value.Number(float64(n)), true, false, false))
}

func itoaKey(n int) string { return strconv.Itoa(n) }

func valuesFromArrayLike(o *value.Object) []value.Value {
	n := arrayLenOf(o)
	out := make([]value.Value, n)
	for i := 0; i < n; i++ {
		out[i], _ = o.Get(value.StringKey(itoaKey(i)), value.FromObject(o))
	}
	return out
}

func defineAccessor(obj *value.Object, key value.PropertyKey, fn *value.Object, isSetter bool) {
	existing := obj.GetOwnProperty(key)
	var get, set *value.Object
	if existing != nil && existing.IsAccessorDescriptor() {
		get, set = existing.Get, existing.Set
	}
	if isSetter {
		set = fn
	} else {
		get = fn
	}
	obj.DefineOwnProperty(key, value.AccessorDescriptor(get, set, true, true))
}

// defineClassMethod implements OpClassDefineMethod. a packs static
// (bit 0) and kind (bits 1-2: 0 method, 1 getter, 2 setter) the same
// way the compiler emits it.
func defineClassMethod(ctor *value.Object, key value.PropertyKey, fn *value.Object, a uint8) {
	isStatic := a&1 != 0
	kind := (a >> 1) & 0x3
	target := ctor
	if !isStatic {
		protoVal, _ := ctor.Get(value.StringKey("prototype"), value.FromObject(ctor))
		target = protoVal.AsObject()
	}
	if data, ok := fn.Extra.(*FunctionData); ok {
		data.HomeObject = target
	}
	switch kind {
	case 0:
		target.DefineOwnProperty(key, value.DataDescriptor(value.FromObject(fn), true, false, true))
	case 1:
		existing := target.GetOwnProperty(key)
		var setFn *value.Object
		if existing != nil && existing.IsAccessorDescriptor() {
			setFn = existing.Set
		}
		target.DefineOwnProperty(key, value.AccessorDescriptor(fn, setFn, false, true))
	case 2:
		existing := target.GetOwnProperty(key)
		var getFn *value.Object
		if existing != nil && existing.IsAccessorDescriptor() {
			getFn = existing.Get
		}
		target.DefineOwnProperty(key, value.AccessorDescriptor(getFn, fn, false, true))
	}
}

// doSuperCall implements the OpSuperCall/OpSuperCallSpread body: invoke
// the parent constructor (resolved via the derived constructor's own
// [[Prototype]], ECMA-262 10.2.2) and bind its result as `this` on the
// nearest enclosing function environment that still needs one.
func (f *Frame) doSuperCall(args []value.Value) error {
	parentCtor := f.fd.FuncObj.GetPrototypeOf()
	if parentCtor == nil || !parentCtor.IsConstructor() {
		return typeErr("super constructor is not a constructor")
	}
	newTarget := env.GetNewTarget(f.curEnv)
	result, err := parentCtor.Construct(args, newTarget)
	if err != nil {
		return err
	}
	fnEnv := nearestFunctionEnv(f.curEnv)
	if fnEnv == nil {
		return errs.NewInternal("super() called outside a derived constructor")
	}
	fnEnv.BindThisValue(result)
	return nil
}

func nearestFunctionEnv(r env.Record) *env.Function {
	for cur := r; cur != nil; cur = cur.Outer() {
		if fe, ok := cur.(*env.Function); ok && fe.HasThisBinding() {
			return fe
		}
	}
	return nil
}
