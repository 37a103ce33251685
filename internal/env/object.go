package env

import "github.com/cwbudde/escript/internal/value"

// ObjectRecord is an object environment record (ECMA-262 9.1.1.2),
// used for the global object's var/function bindings and for `with`
// statement scopes.
type ObjectRecord struct {
	Bindings        *value.Object
	withEnvironment bool
	outer           Record
}

func NewObjectRecord(obj *value.Object, withEnvironment bool, outer Record) *ObjectRecord {
	return &ObjectRecord{Bindings: obj, withEnvironment: withEnvironment, outer: outer}
}

func (o *ObjectRecord) Outer() Record { return o.outer }

func (o *ObjectRecord) HasBinding(name string) bool {
	key := value.StringKey(name)
	if !o.Bindings.HasProperty(key) {
		return false
	}
	if !o.withEnvironment {
		return true
	}
	// Per ECMA-262 9.1.1.2.1, a `with` scope hides bindings shadowed by
	// a Symbol.unscopables entry, which this engine does not implement
	// (no stdlib Array/Object surface is in scope); plain membership is
	// sufficient here.
	return true
}

func (o *ObjectRecord) CreateMutableBinding(name string, deletable bool) {
	o.Bindings.DefineOwnProperty(value.StringKey(name), value.DataDescriptor(value.Undefined(), true, true, deletable))
}

func (o *ObjectRecord) CreateImmutableBinding(name string, strict bool) {
	o.Bindings.DefineOwnProperty(value.StringKey(name), value.DataDescriptor(value.Undefined(), false, true, false))
}

func (o *ObjectRecord) InitializeBinding(name string, v value.Value) error {
	recv := value.FromObject(o.Bindings)
	_, err := o.Bindings.Set(value.StringKey(name), v, recv)
	return err
}

func (o *ObjectRecord) SetMutableBinding(name string, v value.Value, strict bool) error {
	key := value.StringKey(name)
	recv := value.FromObject(o.Bindings)
	if !o.Bindings.HasProperty(key) {
		if strict {
			return newUndeclared(name)
		}
		o.Bindings.DefineDataProperty(key, v)
		return nil
	}
	ok, err := o.Bindings.Set(key, v, recv)
	if err != nil {
		return err
	}
	if !ok && strict {
		return &TypeErrorBinding{Name: name}
	}
	return nil
}

func (o *ObjectRecord) GetBindingValue(name string, strict bool) (value.Value, error) {
	key := value.StringKey(name)
	if !o.Bindings.HasProperty(key) {
		if strict {
			return value.Undefined(), newUndeclared(name)
		}
		return value.Undefined(), nil
	}
	return o.Bindings.Get(key, value.FromObject(o.Bindings))
}

func (o *ObjectRecord) DeleteBinding(name string) bool {
	return o.Bindings.Delete(value.StringKey(name))
}
