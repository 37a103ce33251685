package env

import "github.com/cwbudde/escript/internal/value"

type binding struct {
	v           value.Value
	mutable     bool
	deletable   bool
	strict      bool
	initialized bool
}

// Declarative is a declarative environment record (ECMA-262 9.1.1.1):
// `let`/`const`/`var`/function-declaration bindings created directly
// by a lexical scope, a catch clause, or a function's top-level
// environment.
type Declarative struct {
	bindings map[string]*binding
	outer    Record
}

func NewDeclarative(outer Record) *Declarative {
	return &Declarative{bindings: make(map[string]*binding), outer: outer}
}

func (d *Declarative) Outer() Record { return d.outer }

func (d *Declarative) HasBinding(name string) bool {
	_, ok := d.bindings[name]
	return ok
}

// CreateMutableBinding implements `var`/function-parameter/`let`
// binding creation. The binding starts initialized to Undefined,
// matching `var` hoisting; `let`/`const` callers immediately follow up
// with an uninitialized declarative binding via CreateImmutableBinding
// or by marking initialized=false themselves (see CreateLexicalBinding).
func (d *Declarative) CreateMutableBinding(name string, deletable bool) {
	d.bindings[name] = &binding{v: value.Undefined(), mutable: true, deletable: deletable, initialized: true}
}

// CreateLexicalBinding creates an uninitialized mutable binding (the
// `let` case): reading or writing it before InitializeBinding raises a
// ReferenceError, implementing the temporal dead zone.
func (d *Declarative) CreateLexicalBinding(name string) {
	d.bindings[name] = &binding{v: value.Empty(), mutable: true, initialized: false}
}

// CreateImmutableBinding creates an uninitialized `const` binding.
func (d *Declarative) CreateImmutableBinding(name string, strict bool) {
	d.bindings[name] = &binding{v: value.Empty(), mutable: false, strict: strict, initialized: false}
}

func (d *Declarative) InitializeBinding(name string, v value.Value) error {
	b, ok := d.bindings[name]
	if !ok {
		return newUndeclared(name)
	}
	b.v = v
	b.initialized = true
	return nil
}

func (d *Declarative) SetMutableBinding(name string, v value.Value, strict bool) error {
	b, ok := d.bindings[name]
	if !ok {
		if strict {
			return newUndeclared(name)
		}
		d.bindings[name] = &binding{v: v, mutable: true, initialized: true}
		return nil
	}
	if !b.initialized {
		return newUninitialized(name)
	}
	if !b.mutable {
		if strict || b.strict {
			return &TypeErrorBinding{Name: name}
		}
		return nil
	}
	b.v = v
	return nil
}

func (d *Declarative) GetBindingValue(name string, strict bool) (value.Value, error) {
	b, ok := d.bindings[name]
	if !ok {
		return value.Undefined(), newUndeclared(name)
	}
	if !b.initialized {
		return value.Undefined(), newUninitialized(name)
	}
	return b.v, nil
}

func (d *Declarative) DeleteBinding(name string) bool {
	b, ok := d.bindings[name]
	if !ok {
		return true
	}
	if !b.deletable {
		return false
	}
	delete(d.bindings, name)
	return true
}
