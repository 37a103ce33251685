package value

import "fmt"

// PropertyKey is an ECMAScript property key: a string or a symbol.
// Array-index strings ("0", "1", ...) are kept as strings and
// recognized by ArrayIndex, matching the spec's treatment of
// integer-indexed properties as a subset of string keys.
type PropertyKey struct {
	str string
	sym *Symbol
}

func StringKey(s string) PropertyKey { return PropertyKey{str: s} }

func SymbolKey(s *Symbol) PropertyKey { return PropertyKey{sym: s} }

func (k PropertyKey) IsSymbol() bool { return k.sym != nil }

func (k PropertyKey) String() string { return k.str }

func (k PropertyKey) Symbol() *Symbol { return k.sym }

func (k PropertyKey) DebugString() string {
	if k.IsSymbol() {
		return k.sym.String()
	}
	return k.str
}

// ArrayIndex reports whether the key is a canonical numeric string in
// [0, 2^32-2], and returns its value (ECMA-262 6.1.7 array index).
func (k PropertyKey) ArrayIndex() (uint32, bool) {
	if k.IsSymbol() || k.str == "" {
		return 0, false
	}
	if k.str == "0" {
		return 0, true
	}
	if k.str[0] < '1' || k.str[0] > '9' {
		return 0, false
	}
	var n uint64
	for _, c := range k.str {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + uint64(c-'0')
		if n > 0xFFFFFFFE {
			return 0, false
		}
	}
	return uint32(n), true
}

// PropertyDescriptor is a Property Descriptor record (ECMA-262 6.2.6).
// The Has* flags track which fields were explicitly present in the
// original descriptor object, which DefineOwnProperty needs in order
// to distinguish "absent" from "explicitly false/undefined".
type PropertyDescriptor struct {
	Value Value
	Get   *Object
	Set   *Object

	Writable     bool
	Enumerable   bool
	Configurable bool

	HasValue        bool
	HasGet          bool
	HasSet          bool
	HasWritable     bool
	HasEnumerable   bool
	HasConfigurable bool
}

// DataDescriptor builds a complete data-property descriptor, the
// common case used by ordinary property creation.
func DataDescriptor(v Value, writable, enumerable, configurable bool) *PropertyDescriptor {
	return &PropertyDescriptor{
		Value: v, Writable: writable, Enumerable: enumerable, Configurable: configurable,
		HasValue: true, HasWritable: true, HasEnumerable: true, HasConfigurable: true,
	}
}

// AccessorDescriptor builds a complete accessor-property descriptor.
func AccessorDescriptor(get, set *Object, enumerable, configurable bool) *PropertyDescriptor {
	return &PropertyDescriptor{
		Get: get, Set: set, Enumerable: enumerable, Configurable: configurable,
		HasGet: true, HasSet: true, HasEnumerable: true, HasConfigurable: true,
	}
}

// IsDataDescriptor implements IsDataDescriptor (ECMA-262 6.2.6.2).
func (d *PropertyDescriptor) IsDataDescriptor() bool {
	return d != nil && (d.HasValue || d.HasWritable)
}

// IsAccessorDescriptor implements IsAccessorDescriptor (ECMA-262 6.2.6.1).
func (d *PropertyDescriptor) IsAccessorDescriptor() bool {
	return d != nil && (d.HasGet || d.HasSet)
}

// IsGenericDescriptor implements IsGenericDescriptor (ECMA-262 6.2.6.3).
func (d *PropertyDescriptor) IsGenericDescriptor() bool {
	return d != nil && !d.IsDataDescriptor() && !d.IsAccessorDescriptor()
}

func (d *PropertyDescriptor) String() string {
	if d == nil {
		return "<undefined>"
	}
	switch {
	case d.IsAccessorDescriptor():
		return fmt.Sprintf("{get/set enumerable:%t configurable:%t}", d.Enumerable, d.Configurable)
	default:
		return fmt.Sprintf("{value:%s writable:%t enumerable:%t configurable:%t}",
			d.Value.DebugString(), d.Writable, d.Enumerable, d.Configurable)
	}
}

// clone returns a shallow copy, used so callers can't mutate a
// descriptor that's already been installed on an object.
func (d *PropertyDescriptor) clone() *PropertyDescriptor {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
