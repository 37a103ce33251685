package realm

import "github.com/cwbudde/escript/internal/value"

// ErrorPrototypes collects the per-realm Error.prototype and its
// built-in subtypes (ECMA-262 20.5), the minimum surface spec.md's
// TESTABLE PROPERTIES need: `try { null.x } catch (e) { e instanceof
// TypeError }` requires a real TypeError constructor wired to the
// prototype chain the interpreter's native-error values use.
type ErrorPrototypes struct {
	Error          *value.Object
	TypeError      *value.Object
	RangeError     *value.Object
	ReferenceError *value.Object
	SyntaxError    *value.Object
	EvalError      *value.Object
	URIError       *value.Object
}

func (r *Realm) installErrors() {
	r.ErrorPrototype.DefineDataProperty(value.StringKey("name"), value.String("Error"))
	r.ErrorPrototype.DefineDataProperty(value.StringKey("message"), value.String(""))
	r.defineStaticMethod(r.ErrorPrototype, "toString", 0, r.errorToString)
	r.Errors.Error = r.ErrorPrototype
	r.defineErrorConstructor("Error", r.ErrorPrototype)

	r.Errors.TypeError = r.newErrorSubtype("TypeError")
	r.Errors.RangeError = r.newErrorSubtype("RangeError")
	r.Errors.ReferenceError = r.newErrorSubtype("ReferenceError")
	r.Errors.SyntaxError = r.newErrorSubtype("SyntaxError")
	r.Errors.EvalError = r.newErrorSubtype("EvalError")
	r.Errors.URIError = r.newErrorSubtype("URIError")
}

func (r *Realm) newErrorSubtype(name string) *value.Object {
	proto := value.NewObject(r.ErrorPrototype)
	proto.Class = "Error"
	proto.DefineDataProperty(value.StringKey("name"), value.String(name))
	proto.DefineDataProperty(value.StringKey("message"), value.String(""))
	r.defineErrorConstructor(name, proto)
	return proto
}

func (r *Realm) defineErrorConstructor(name string, proto *value.Object) {
	ctor := value.NewNativeFunction(name, 1, r.FunctionPrototype, func(this value.Value, args []value.Value) (value.Value, error) {
		return value.FromObject(r.newErrorInstance(proto, args)), nil
	})
	ctor.Construct = func(args []value.Value, newTarget *value.Object) (value.Value, error) {
		return value.FromObject(r.newErrorInstance(proto, args)), nil
	}
	ctor.DefineDataProperty(value.StringKey("prototype"), value.FromObject(proto))
	proto.DefineOwnProperty(value.StringKey("constructor"), value.DataDescriptor(value.FromObject(ctor), true, false, true))
	r.GlobalObject.DefineDataProperty(value.StringKey(name), value.FromObject(ctor))
}

func (r *Realm) newErrorInstance(proto *value.Object, args []value.Value) *value.Object {
	o := value.NewObject(proto)
	o.Class = "Error"
	if len(args) > 0 && !args[0].IsUndefined() {
		msg, _ := value.ToString(args[0])
		o.DefineDataProperty(value.StringKey("message"), value.String(msg))
	}
	return o
}

func (r *Realm) errorToString(this value.Value, args []value.Value) (value.Value, error) {
	obj := this.AsObject()
	if obj == nil {
		return value.String("Error"), nil
	}
	nameVal, _ := obj.Get(value.StringKey("name"), this)
	name, _ := value.ToString(nameVal)
	if name == "" {
		name = "Error"
	}
	msgVal, _ := obj.Get(value.StringKey("message"), this)
	msg, _ := value.ToString(msgVal)
	if msg == "" {
		return value.String(name), nil
	}
	return value.String(name + ": " + msg), nil
}

// NewNativeError builds an instance of one of the realm's built-in
// error prototypes (kind is e.g. "TypeError", "RangeError"), the shape
// the interpreter throws for language-level faults (accessing a
// property of null, calling a non-callable value, exceeding the call
// stack, and similar ECMA-262 abstract-operation failures).
func (r *Realm) NewNativeError(kind, message string) *value.Object {
	return r.newErrorInstance(r.protoForKind(kind), []value.Value{value.String(message)})
}

func (r *Realm) protoForKind(kind string) *value.Object {
	switch kind {
	case "TypeError":
		return r.Errors.TypeError
	case "RangeError":
		return r.Errors.RangeError
	case "ReferenceError":
		return r.Errors.ReferenceError
	case "SyntaxError":
		return r.Errors.SyntaxError
	case "EvalError":
		return r.Errors.EvalError
	case "URIError":
		return r.Errors.URIError
	default:
		return r.Errors.Error
	}
}
