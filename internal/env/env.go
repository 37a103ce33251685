// Package env implements ECMAScript environment records (ECMA-262 §9.1):
// the chained scopes the interpreter resolves identifier references
// against, including the temporal dead zone for lexical bindings.
package env

import (
	"fmt"

	"github.com/cwbudde/escript/internal/value"
)

// Record is an environment record (ECMA-262 9.1.1). Declarative,
// object, and function environment records all satisfy it; the
// interpreter never needs to know which kind it is holding.
type Record interface {
	HasBinding(name string) bool
	CreateMutableBinding(name string, deletable bool)
	CreateImmutableBinding(name string, strict bool)
	InitializeBinding(name string, v value.Value) error
	SetMutableBinding(name string, v value.Value, strict bool) error
	GetBindingValue(name string, strict bool) (value.Value, error)
	DeleteBinding(name string) bool
	Outer() Record
}

// ReferenceError is raised for unresolvable or uninitialized bindings.
// The interpreter surfaces it as a user-visible JS exception (spec.md
// §7 error kind 1), not an InternalError: referencing an undeclared
// identifier is ordinary script-level misbehavior.
type ReferenceError struct {
	Name   string
	Reason string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("ReferenceError: %s is not defined (%s)", e.Name, e.Reason)
}

func newUndeclared(name string) error {
	return &ReferenceError{Name: name, Reason: "undeclared"}
}

func newUninitialized(name string) error {
	return &ReferenceError{Name: name, Reason: "accessed before initialization"}
}

// TypeErrorBinding is raised by SetMutableBinding on a strict-mode
// assignment to an immutable binding (ECMA-262 9.1.1.1.5 step 5.a).
type TypeErrorBinding struct {
	Name string
}

func (e *TypeErrorBinding) Error() string {
	return fmt.Sprintf("TypeError: assignment to constant variable %s", e.Name)
}

// RestrictedGlobalError is raised by CreateGlobalVarBinding when name
// already exists as a non-configurable own property of the global
// object (ECMA-262 9.1.1.4.15's hasRestrictedGlobalProperty check),
// e.g. a `var undefined` or `var NaN` at top level.
type RestrictedGlobalError struct {
	Name string
}

func (e *RestrictedGlobalError) Error() string {
	return fmt.Sprintf("TypeError: cannot declare global var %s: restricted by an existing non-configurable property", e.Name)
}
