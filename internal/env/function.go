package env

import (
	"fmt"

	"github.com/cwbudde/escript/internal/value"
)

// ThisBindingStatus mirrors ECMA-262 9.1.1.3's three this-binding
// states for a function environment record.
type ThisBindingStatus int

const (
	ThisLexical ThisBindingStatus = iota // arrow functions: no own `this`
	ThisUninitialized
	ThisInitialized
)

// Function is a function environment record (ECMA-262 9.1.1.3): a
// Declarative record extended with a `this` binding, the function
// object (for `super` resolution), and an optional new.target.
type Function struct {
	*Declarative

	thisStatus ThisBindingStatus
	thisValue  value.Value

	FunctionObject *value.Object
	HomeObject     *value.Object // set for methods, used by `super.x`
	NewTarget      *value.Object
}

// NewFunction creates a function environment record. Arrow functions
// pass status=ThisLexical; ordinary functions pass ThisUninitialized
// (the `this` value is bound lazily by BindThisValue once the call's
// receiver has been computed).
func NewFunction(outer Record, status ThisBindingStatus, fn *value.Object) *Function {
	return &Function{
		Declarative:    NewDeclarative(outer),
		thisStatus:     status,
		FunctionObject: fn,
	}
}

func (f *Function) HasThisBinding() bool { return f.thisStatus != ThisLexical }

// BindThisValue implements BindThisValue (ECMA-262 9.1.1.3.1). It is a
// programming error to call it twice; that is always an engine bug,
// never user-observable, so it panics rather than returning an error.
func (f *Function) BindThisValue(v value.Value) {
	if f.thisStatus == ThisInitialized {
		panic("env: this already initialized")
	}
	f.thisValue = v
	f.thisStatus = ThisInitialized
}

// GetThisBinding implements GetThisBinding (ECMA-262 9.1.1.3.4),
// walking up to the nearest function/global record with its own
// `this`, as arrow functions require.
func GetThisBinding(r Record) (value.Value, error) {
	for cur := r; cur != nil; cur = cur.Outer() {
		switch e := cur.(type) {
		case *Function:
			if e.thisStatus == ThisLexical {
				continue
			}
			if e.thisStatus == ThisUninitialized {
				return value.Undefined(), fmt.Errorf("ReferenceError: must call super constructor before accessing 'this'")
			}
			return e.thisValue, nil
		case *Global:
			return value.FromObject(e.ObjectRec.Bindings), nil
		}
	}
	return value.Undefined(), fmt.Errorf("ReferenceError: no this binding in scope")
}

// GetNewTarget implements GetNewTarget (ECMA-262 9.1.1.3.3), walking
// past arrow function records (which have no own new.target) to the
// nearest ordinary function or top-level record.
func GetNewTarget(r Record) *value.Object {
	for cur := r; cur != nil; cur = cur.Outer() {
		if f, ok := cur.(*Function); ok {
			if f.thisStatus == ThisLexical {
				continue
			}
			return f.NewTarget
		}
	}
	return nil
}

// GetSuperBase implements GetSuperBase (ECMA-262 9.1.1.3.5): the
// prototype of the nearest enclosing method's home object, the
// receiver for `super.x` property lookups.
func GetSuperBase(r Record) *value.Object {
	for cur := r; cur != nil; cur = cur.Outer() {
		if f, ok := cur.(*Function); ok {
			if f.HomeObject == nil {
				continue
			}
			return f.HomeObject.GetPrototypeOf()
		}
	}
	return nil
}
