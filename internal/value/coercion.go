package value

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// CoercionError is a TypeError raised by a failed abstract coercion
// (ECMA-262 7.1.x). The interpreter converts it into a user-visible JS
// TypeError at the call site rather than letting it escape as a Go
// error, per spec.md §4.A.
type CoercionError struct {
	Message string
}

func (e *CoercionError) Error() string { return "TypeError: " + e.Message }

func typeError(format string, args ...any) error {
	return &CoercionError{Message: fmt.Sprintf(format, args...)}
}

// ToPrimitive implements OrdinaryToPrimitive (ECMA-262 7.1.1.1). This
// engine does not implement Symbol.toPrimitive exotic behavior (no
// built-in ever installs one, and spec.md's Non-goals exclude Date,
// the one standard object whose coercion genuinely depends on it); a
// plain object coerces via valueOf/toString in the hint-determined
// order, matching every ordinary object's default behavior.
func ToPrimitive(v Value, hint string) (Value, error) {
	if !v.IsObject() {
		return v, nil
	}
	obj := v.AsObject()
	methodNames := []string{"valueOf", "toString"}
	if hint == "string" {
		methodNames = []string{"toString", "valueOf"}
	}
	for _, name := range methodNames {
		m, err := obj.Get(StringKey(name), v)
		if err != nil {
			return Value{}, err
		}
		if m.IsObject() && m.AsObject().IsCallable() {
			result, err := m.AsObject().Call(v, nil)
			if err != nil {
				return Value{}, err
			}
			if !result.IsObject() {
				return result, nil
			}
		}
	}
	return Value{}, typeError("Cannot convert object to primitive value")
}

// ToNumber implements ToNumber (ECMA-262 7.1.4).
func ToNumber(v Value) (float64, error) {
	switch v.Kind {
	case KindUndefined:
		return math.NaN(), nil
	case KindNull:
		return 0, nil
	case KindBoolean:
		if v.AsBool() {
			return 1, nil
		}
		return 0, nil
	case KindNumber:
		return v.Num, nil
	case KindBigInt:
		return 0, typeError("cannot convert a BigInt to a number")
	case KindString:
		return stringToNumber(v.AsString()), nil
	case KindSymbol:
		return 0, typeError("cannot convert a Symbol to a number")
	case KindObject:
		prim, err := ToPrimitive(v, "number")
		if err != nil {
			return 0, err
		}
		if prim.IsObject() {
			return 0, typeError("cannot convert object to number")
		}
		return ToNumber(prim)
	default:
		return math.NaN(), nil
	}
}

// ToNumeric implements ToNumeric (ECMA-262 7.1.3): like ToNumber but
// passes BigInt values through unchanged instead of rejecting them.
// Returned as a Value since the result may be either a Number or a
// BigInt.
func ToNumeric(v Value) (Value, error) {
	if v.IsObject() {
		prim, err := ToPrimitive(v, "number")
		if err != nil {
			return Value{}, err
		}
		v = prim
	}
	if v.IsBigInt() {
		return v, nil
	}
	n, err := ToNumber(v)
	if err != nil {
		return Value{}, err
	}
	return Number(n), nil
}

func stringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if s == "Infinity" || s == "+Infinity" {
		return math.Inf(1)
	}
	if s == "-Infinity" {
		return math.Inf(-1)
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, err := strconv.ParseUint(s[2:], 16, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	if strings.HasPrefix(s, "0o") || strings.HasPrefix(s, "0O") {
		n, err := strconv.ParseUint(s[2:], 8, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	if strings.HasPrefix(s, "0b") || strings.HasPrefix(s, "0B") {
		n, err := strconv.ParseUint(s[2:], 2, 64)
		if err != nil {
			return math.NaN()
		}
		return float64(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// ToString implements ToString (ECMA-262 7.1.17). Symbols reject with
// a TypeError (they can only be coerced with String(sym) / explicit
// .toString(), which this abstract operation is not).
func ToString(v Value) (string, error) {
	switch v.Kind {
	case KindUndefined:
		return "undefined", nil
	case KindNull:
		return "null", nil
	case KindBoolean:
		if v.AsBool() {
			return "true", nil
		}
		return "false", nil
	case KindNumber:
		return NumberToString(v.Num), nil
	case KindBigInt:
		return v.AsBigInt().String(), nil
	case KindString:
		return v.AsString(), nil
	case KindSymbol:
		return "", typeError("cannot convert a Symbol to a string")
	case KindObject:
		prim, err := ToPrimitive(v, "string")
		if err != nil {
			return "", err
		}
		if prim.IsObject() {
			return "", typeError("cannot convert object to string")
		}
		return ToString(prim)
	default:
		return "", nil
	}
}

// NumberToString implements Number::toString with radix 10 (ECMA-262
// 6.1.6.1.20), covering the special cases (NaN, Infinity, -0) scripts
// observe via String(n) and template-literal interpolation.
func NumberToString(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	// Exponent form only outside [1e-6, 1e21); Go pads the exponent to
	// two digits, ECMAScript does not.
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		s = strings.Replace(s, "e-0", "e-", 1)
		return strings.Replace(s, "e+0", "e+", 1)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ToPropertyKey implements ToPropertyKey (ECMA-262 7.1.19).
func ToPropertyKey(v Value) (PropertyKey, error) {
	if v.IsSymbol() {
		return SymbolKey(v.AsSymbol()), nil
	}
	s, err := ToString(v)
	if err != nil {
		return PropertyKey{}, err
	}
	return StringKey(s), nil
}

// ToInt32 implements ToInt32 (ECMA-262 7.1.6), used by the bitwise
// operators.
func ToInt32(v Value) (int32, error) {
	n, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	return int32(toUint32Bits(n)), nil
}

// ToUint32 implements ToUint32 (ECMA-262 7.1.7).
func ToUint32(v Value) (uint32, error) {
	n, err := ToNumber(v)
	if err != nil {
		return 0, err
	}
	return toUint32Bits(n), nil
}

func toUint32Bits(n float64) uint32 {
	if math.IsNaN(n) || math.IsInf(n, 0) || n == 0 {
		return 0
	}
	n = math.Trunc(n)
	m := math.Mod(n, 4294967296)
	if m < 0 {
		m += 4294967296
	}
	return uint32(m)
}

// SameValue implements SameValue (ECMA-262 7.2.11): like
// SameValueZero, but distinguishes +0 from -0 and is used by
// DefineOwnProperty's value comparison and spec.md §8's reflexivity
// invariant.
func SameValue(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == KindNumber {
		if math.IsNaN(a.Num) && math.IsNaN(b.Num) {
			return true
		}
		if a.Num == 0 && b.Num == 0 {
			return math.Signbit(a.Num) == math.Signbit(b.Num)
		}
		return a.Num == b.Num
	}
	return SameValueZero(a, b)
}

// IsStrictlyEqual implements the Strict Equality Comparison algorithm
// (ECMA-262 7.2.16): like SameValue on numbers except NaN != NaN and
// +0 === -0.
func IsStrictlyEqual(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	if a.Kind == KindNumber {
		return a.Num == b.Num
	}
	return SameValueZero(a, b)
}

// IsLooselyEqual implements the Abstract Equality Comparison algorithm
// (ECMA-262 7.2.15), including the object-to-primitive coercion paths.
func IsLooselyEqual(a, b Value) (bool, error) {
	if a.Kind == b.Kind {
		return IsStrictlyEqual(a, b), nil
	}
	if a.IsNullish() && b.IsNullish() {
		return true, nil
	}
	if a.IsNullish() || b.IsNullish() {
		return false, nil
	}
	if a.IsNumber() && b.IsString() {
		bn, err := ToNumber(b)
		if err != nil {
			return false, err
		}
		return a.Num == bn, nil
	}
	if a.IsString() && b.IsNumber() {
		an, err := ToNumber(a)
		if err != nil {
			return false, err
		}
		return an == b.Num, nil
	}
	if a.IsBigInt() && b.IsString() {
		bi, ok := new(big.Int).SetString(strings.TrimSpace(b.AsString()), 10)
		if !ok {
			return false, nil
		}
		return a.AsBigInt().Cmp(bi) == 0, nil
	}
	if a.IsString() && b.IsBigInt() {
		return IsLooselyEqual(b, a)
	}
	if a.IsBoolean() {
		an, _ := ToNumber(a)
		return IsLooselyEqual(Number(an), b)
	}
	if b.IsBoolean() {
		bn, _ := ToNumber(b)
		return IsLooselyEqual(a, Number(bn))
	}
	if (a.IsNumber() || a.IsString() || a.IsBigInt() || a.IsSymbol()) && b.IsObject() {
		prim, err := ToPrimitive(b, "default")
		if err != nil {
			return false, err
		}
		return IsLooselyEqual(a, prim)
	}
	if a.IsObject() && (b.IsNumber() || b.IsString() || b.IsBigInt() || b.IsSymbol()) {
		prim, err := ToPrimitive(a, "default")
		if err != nil {
			return false, err
		}
		return IsLooselyEqual(prim, b)
	}
	if a.IsBigInt() && b.IsNumber() || a.IsNumber() && b.IsBigInt() {
		var bi *big.Int
		var f float64
		if a.IsBigInt() {
			bi, f = a.AsBigInt(), b.Num
		} else {
			bi, f = b.AsBigInt(), a.Num
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false, nil
		}
		bf := new(big.Float).SetInt(bi)
		return bf.Cmp(big.NewFloat(f)) == 0, nil
	}
	return false, nil
}

// IsLessThan implements the Abstract Relational Comparison algorithm
// (ECMA-262 7.2.13) for `<`. A nil result means "undefined" (at least
// one operand was NaN after ToPrimitive/ToNumeric); spec.md §8
// requires typeof-style totality so the interpreter treats a nil
// result as false for every relational operator, per the spec's own
// evaluation rules.
func IsLessThan(a, b Value, leftFirst bool) (*bool, error) {
	var pa, pb Value
	var err error
	if leftFirst {
		pa, err = ToPrimitive(a, "number")
		if err != nil {
			return nil, err
		}
		pb, err = ToPrimitive(b, "number")
	} else {
		pb, err = ToPrimitive(b, "number")
		if err != nil {
			return nil, err
		}
		pa, err = ToPrimitive(a, "number")
	}
	if err != nil {
		return nil, err
	}
	if pa.IsString() && pb.IsString() {
		r := pa.AsString() < pb.AsString()
		return &r, nil
	}
	if pa.IsBigInt() || pb.IsBigInt() {
		return compareNumericMixed(pa, pb)
	}
	an, err := ToNumber(pa)
	if err != nil {
		return nil, err
	}
	bn, err := ToNumber(pb)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(an) || math.IsNaN(bn) {
		return nil, nil
	}
	r := an < bn
	return &r, nil
}

func compareNumericMixed(a, b Value) (*bool, error) {
	if a.IsBigInt() && b.IsBigInt() {
		r := a.AsBigInt().Cmp(b.AsBigInt()) < 0
		return &r, nil
	}
	toFloat := func(v Value) (float64, bool) {
		if v.IsBigInt() {
			f, _ := new(big.Float).SetInt(v.AsBigInt()).Float64()
			return f, true
		}
		n, err := ToNumber(v)
		if err != nil || math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	af, ok1 := toFloat(a)
	bf, ok2 := toFloat(b)
	if !ok1 || !ok2 {
		return nil, nil
	}
	r := af < bf
	return &r, nil
}
