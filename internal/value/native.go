package value

// NewNativeFunction builds a callable Object wrapping a Go function,
// the shape every intrinsic and host-provided (FFI) function in this
// engine takes. length is the function's declared arity, installed
// (with name) as a non-writable, non-enumerable, configurable own
// `length` property that scripts can read.
func NewNativeFunction(name string, length int, proto *Object, fn CallFunc) *Object {
	o := NewObject(proto)
	o.Class = "Function"
	o.Call = fn
	o.DefineOwnProperty(StringKey("name"), DataDescriptor(String(name), false, false, true))
	o.DefineOwnProperty(StringKey("length"), DataDescriptor(Number(float64(length)), false, false, true))
	return o
}

// NewArray builds an array exotic object: an ordinary object whose
// "length" property is kept consistent with its integer-indexed
// entries by the realm/interpreter layer rather than by a Go slice,
// matching ECMA-262's array exotic [[DefineOwnProperty]] (10.4.2)
// closely enough for this engine's scope (no explicit array-index
// deletion renumbering beyond what ordinary property semantics give
// for free).
func NewArray(proto *Object, elements ...Value) *Object {
	o := NewObject(proto)
	o.Class = "Array"
	for i, el := range elements {
		o.DefineDataProperty(StringKey(itoa(i)), el)
	}
	o.DefineOwnProperty(StringKey("length"), DataDescriptor(Number(float64(len(elements))), true, false, false))
	return o
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
