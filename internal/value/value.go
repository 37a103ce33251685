// Package value implements the ECMAScript runtime value model: the
// tagged Value union, property keys, property descriptors, and
// ordinary objects with their internal methods.
package value

import (
	"fmt"
	"math"
	"math/big"
)

// Kind is the tag of a Value.
type Kind uint8

const (
	// KindEmpty is not an ECMAScript language value. It marks an
	// environment-record binding that has been created but not yet
	// initialized (the temporal dead zone).
	KindEmpty Kind = iota
	KindUndefined
	KindNull
	KindBoolean
	KindNumber
	KindBigInt
	KindString
	KindSymbol
	KindObject
)

var kindNames = [...]string{
	KindEmpty:     "empty",
	KindUndefined: "undefined",
	KindNull:      "null",
	KindBoolean:   "boolean",
	KindNumber:    "number",
	KindBigInt:    "bigint",
	KindString:    "string",
	KindSymbol:    "symbol",
	KindObject:    "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Value is an ECMAScript language value (or the Empty non-value used
// internally for uninitialized bindings). It is a small tagged union:
// Number is stored inline, everything else lives behind Data.
type Value struct {
	Kind Kind
	Num  float64
	Data interface{}
}

// Empty is the TDZ sentinel. It must never be observed by user code;
// reading a binding still holding Empty is an engine-internal bug, not
// a catchable exception.
func Empty() Value { return Value{Kind: KindEmpty} }

func Undefined() Value { return Value{Kind: KindUndefined} }

func Null() Value { return Value{Kind: KindNull} }

func Bool(b bool) Value { return Value{Kind: KindBoolean, Data: b} }

func Number(f float64) Value { return Value{Kind: KindNumber, Num: f} }

func BigInt(b *big.Int) Value { return Value{Kind: KindBigInt, Data: b} }

func String(s string) Value { return Value{Kind: KindString, Data: s} }

func SymbolValue(s *Symbol) Value { return Value{Kind: KindSymbol, Data: s} }

func FromObject(o *Object) Value {
	if o == nil {
		return Null()
	}
	return Value{Kind: KindObject, Data: o}
}

func (v Value) IsEmpty() bool     { return v.Kind == KindEmpty }
func (v Value) IsUndefined() bool { return v.Kind == KindUndefined }
func (v Value) IsNull() bool      { return v.Kind == KindNull }
func (v Value) IsNullish() bool   { return v.Kind == KindUndefined || v.Kind == KindNull }
func (v Value) IsBoolean() bool   { return v.Kind == KindBoolean }
func (v Value) IsNumber() bool    { return v.Kind == KindNumber }
func (v Value) IsBigInt() bool    { return v.Kind == KindBigInt }
func (v Value) IsString() bool    { return v.Kind == KindString }
func (v Value) IsSymbol() bool    { return v.Kind == KindSymbol }
func (v Value) IsObject() bool    { return v.Kind == KindObject }

func (v Value) AsBool() bool {
	if b, ok := v.Data.(bool); ok {
		return b
	}
	return false
}

func (v Value) AsString() string {
	if s, ok := v.Data.(string); ok {
		return s
	}
	return ""
}

func (v Value) AsBigInt() *big.Int {
	if b, ok := v.Data.(*big.Int); ok {
		return b
	}
	return nil
}

func (v Value) AsSymbol() *Symbol {
	if s, ok := v.Data.(*Symbol); ok {
		return s
	}
	return nil
}

func (v Value) AsObject() *Object {
	if o, ok := v.Data.(*Object); ok {
		return o
	}
	return nil
}

// ToBoolean implements the abstract operation ToBoolean (ECMA-262 7.1.2).
func (v Value) ToBoolean() bool {
	switch v.Kind {
	case KindUndefined, KindNull:
		return false
	case KindBoolean:
		return v.AsBool()
	case KindNumber:
		return v.Num != 0 && !math.IsNaN(v.Num)
	case KindBigInt:
		return v.AsBigInt().Sign() != 0
	case KindString:
		return v.AsString() != ""
	case KindSymbol, KindObject:
		return true
	default:
		return false
	}
}

// SameValueZero implements SameValueZero (ECMA-262 7.2.12), used by
// Array.prototype.includes and, for non-number kinds, by SameValue and
// strict equality.
func SameValueZero(a, b Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindNumber:
		if math.IsNaN(a.Num) && math.IsNaN(b.Num) {
			return true
		}
		return a.Num == b.Num
	case KindBigInt:
		return a.AsBigInt().Cmp(b.AsBigInt()) == 0
	case KindString:
		return a.AsString() == b.AsString()
	case KindBoolean:
		return a.AsBool() == b.AsBool()
	case KindSymbol:
		return a.AsSymbol() == b.AsSymbol()
	case KindObject:
		return a.AsObject() == b.AsObject()
	case KindUndefined, KindNull, KindEmpty:
		return true
	default:
		return false
	}
}

// TypeOf implements the `typeof` operator (ECMA-262 13.5.3), including
// the "function" result for callable objects.
func (v Value) TypeOf() string {
	switch v.Kind {
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "object"
	case KindBoolean:
		return "boolean"
	case KindNumber:
		return "number"
	case KindBigInt:
		return "bigint"
	case KindString:
		return "string"
	case KindSymbol:
		return "symbol"
	case KindObject:
		if v.AsObject() != nil && v.AsObject().IsCallable() {
			return "function"
		}
		return "object"
	default:
		return "undefined"
	}
}

// DebugString renders a Value for diagnostics (disassembly, internal
// error messages). It is not the ECMAScript ToString operation.
func (v Value) DebugString() string {
	switch v.Kind {
	case KindEmpty:
		return "<empty>"
	case KindUndefined:
		return "undefined"
	case KindNull:
		return "null"
	case KindBoolean:
		return fmt.Sprintf("%t", v.AsBool())
	case KindNumber:
		return fmt.Sprintf("%v", v.Num)
	case KindBigInt:
		return v.AsBigInt().String() + "n"
	case KindString:
		return fmt.Sprintf("%q", v.AsString())
	case KindSymbol:
		return v.AsSymbol().String()
	case KindObject:
		return v.AsObject().DebugString()
	default:
		return "<unknown>"
	}
}
